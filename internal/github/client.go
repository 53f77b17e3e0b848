package github

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-github/v66/github"
	"github.com/shaun/vac-tracker/internal/config"
	"github.com/shaun/vac-tracker/internal/contents"
	"golang.org/x/oauth2"
)

const userAgent = "vac-tracker"

type Client struct {
	hc *http.Client // optional; for tests
}

func NewClient() *Client {
	return &Client{}
}

// NewClientWithHTTPClient returns a client that uses the given http.Client for API calls (e.g. in tests).
// The bearer token is still attached on top of hc's transport.
func NewClientWithHTTPClient(hc *http.Client) *Client {
	return &Client{hc: hc}
}

// Store returns a contents.Store bound to the repository and branch in cfg.
func (c *Client) Store(cfg config.Config) (*Store, error) {
	base := http.DefaultTransport
	var timeout time.Duration
	if c.hc != nil {
		if c.hc.Transport != nil {
			base = c.hc.Transport
		}
		timeout = c.hc.Timeout
	}
	httpClient := &http.Client{
		Transport: &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token}),
			Base:   base,
		},
		Timeout: timeout,
	}
	client := github.NewClient(httpClient)
	client.UserAgent = userAgent
	if cfg.BaseURL != "" {
		u, err := url.Parse(strings.TrimSuffix(cfg.BaseURL, "/") + "/")
		if err != nil {
			return nil, fmt.Errorf("parse GH_API_URL: %w", err)
		}
		client.BaseURL = u
	}
	return &Store{gh: client, owner: cfg.Owner, repo: cfg.Repo, branch: cfg.Branch}, nil
}

// Store talks to the Contents API of one repository branch.
type Store struct {
	gh     *github.Client
	owner  string
	repo   string
	branch string
}

func (s *Store) getContents(ctx context.Context, path string) (*github.RepositoryContent, error) {
	file, dir, _, err := s.gh.Repositories.GetContents(ctx, s.owner, s.repo, path, &github.RepositoryContentGetOptions{Ref: s.branch})
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, backendError(http.MethodGet, path, err)
	}
	if file == nil {
		return nil, fmt.Errorf("%s is a directory with %d entries", path, len(dir))
	}
	return file, nil
}

func (s *Store) LookupSHA(ctx context.Context, path string) (string, bool, error) {
	file, err := s.getContents(ctx, path)
	if err != nil || file == nil {
		return "", false, err
	}
	return file.GetSHA(), true, nil
}

func (s *Store) Read(ctx context.Context, path string) (*contents.Blob, error) {
	file, err := s.getContents(ctx, path)
	if err != nil || file == nil {
		return nil, err
	}
	raw, err := s.content(ctx, file)
	if err != nil {
		return nil, err
	}
	return &contents.Blob{Path: path, SHA: file.GetSHA(), Content: raw}, nil
}

// content decodes the inline payload. Files too large to inline come back
// with encoding "none" and are fetched through the Git blobs API.
func (s *Store) content(ctx context.Context, file *github.RepositoryContent) ([]byte, error) {
	if file.GetEncoding() == "none" {
		raw, _, err := s.gh.Git.GetBlobRaw(ctx, s.owner, s.repo, file.GetSHA())
		if err != nil {
			return nil, backendError(http.MethodGet, "git/blobs/"+file.GetSHA(), err)
		}
		return raw, nil
	}
	text, err := file.GetContent()
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", file.GetPath(), err)
	}
	return []byte(text), nil
}

func (s *Store) Put(ctx context.Context, path string, content []byte, message string, expectedSHA *string) (*contents.Commit, error) {
	opts := &github.RepositoryContentFileOptions{
		Message: github.String(message),
		Content: content,
		Branch:  github.String(s.branch),
	}
	var (
		res *github.RepositoryContentResponse
		err error
	)
	escaped := escapePath(path)
	if expectedSHA == nil {
		res, _, err = s.gh.Repositories.CreateFile(ctx, s.owner, s.repo, escaped, opts)
	} else {
		opts.SHA = expectedSHA
		res, _, err = s.gh.Repositories.UpdateFile(ctx, s.owner, s.repo, escaped, opts)
	}
	if err != nil {
		return nil, backendError(http.MethodPut, path, err)
	}
	return &contents.Commit{SHA: res.Commit.GetSHA(), ContentSHA: res.Content.GetSHA()}, nil
}

// escapePath escapes path the way GetContents does internally. CreateFile and
// UpdateFile put the path into the URL verbatim, so without this a key with
// '?', '#' or '%' would be written somewhere other than where it is read.
func escapePath(path string) string {
	return (&url.URL{Path: strings.TrimSuffix(path, "/")}).String()
}

func isNotFound(err error) bool {
	resp := responseOf(err)
	return resp != nil && resp.StatusCode == http.StatusNotFound
}

func responseOf(err error) *http.Response {
	var ghErr *github.ErrorResponse
	if errors.As(err, &ghErr) {
		return ghErr.Response
	}
	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) {
		return rateErr.Response
	}
	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		return abuseErr.Response
	}
	return nil
}

// backendError keeps the status and raw body of a GitHub error response.
// Transport failures have no response and are wrapped as-is.
func backendError(method, path string, err error) error {
	resp := responseOf(err)
	if resp == nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	body := ""
	if resp.Body != nil {
		if b, rerr := io.ReadAll(io.LimitReader(resp.Body, 64<<10)); rerr == nil {
			body = strings.TrimSpace(string(b))
		}
	}
	if body == "" {
		var ghErr *github.ErrorResponse
		if errors.As(err, &ghErr) {
			body = ghErr.Message
		}
	}
	return &contents.BackendError{Method: method, Path: path, Status: resp.StatusCode, Body: body, Err: err}
}

var _ contents.Store = (*Store)(nil)
