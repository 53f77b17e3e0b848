// Package githubtest provides a fake of the GitHub Contents API for tests.
package githubtest

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/shaun/vac-tracker/internal/document"
)

// Request is one call the fake received.
type Request struct {
	Method        string
	Path          string // path inside the repository, or "git/blobs/<sha>"
	Ref           string
	Authorization string
	UserAgent     string
	Put           *PutBody
}

// PutBody is the decoded body of a contents PUT.
type PutBody struct {
	Message string  `json:"message"`
	Content string  `json:"content"`
	Branch  string  `json:"branch"`
	SHA     *string `json:"sha,omitempty"`
}

type file struct {
	content []byte
	sha     string
}

// Server serves /repos/{owner}/{repo}/contents/{path} and
// /repos/{owner}/{repo}/git/blobs/{sha} for a single repository.
type Server struct {
	*httptest.Server

	Owner string
	Repo  string

	mu       sync.Mutex
	files    map[string]*file
	requests []Request
	seq      int
	fail     map[string]failure // keyed by method
	inline   int
}

type failure struct {
	status int
	body   string
}

// NewServer starts a fake for owner/repo. Close it when done.
func NewServer(owner, repo string) *Server {
	s := &Server{Owner: owner, Repo: repo, files: make(map[string]*file), fail: make(map[string]failure)}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	return s
}

// Fail makes every request with method answer status with body.
func (s *Server) Fail(method string, status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail[method] = failure{status: status, body: body}
}

// InlineLimit makes files larger than n bytes come back with encoding
// "none", as GitHub does for files over 1 MB.
func (s *Server) InlineLimit(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inline = n
}

// Seed stores content at path without recording a request.
func (s *Server) Seed(path string, content []byte) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	sha := document.BlobSHA(content)
	s.files[path] = &file{content: content, sha: sha}
	return sha
}

// Content returns the stored bytes at path.
func (s *Server) Content(path string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.files[path]
	if !ok {
		return nil, false
	}
	return f.content, true
}

// Requests returns every request received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// Count returns how many requests used method.
func (s *Server) Count(method string) int {
	n := 0
	for _, r := range s.Requests() {
		if r.Method == method {
			n++
		}
	}
	return n
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prefix := fmt.Sprintf("/repos/%s/%s/", s.Owner, s.Repo)
	rest, ok := strings.CutPrefix(r.URL.Path, prefix)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Not Found"})
		return
	}
	req := Request{
		Method:        r.Method,
		Ref:           r.URL.Query().Get("ref"),
		Authorization: r.Header.Get("Authorization"),
		UserAgent:     r.Header.Get("User-Agent"),
	}

	switch {
	case strings.HasPrefix(rest, "contents/"):
		req.Path = strings.TrimPrefix(rest, "contents/")
	case strings.HasPrefix(rest, "git/blobs/"):
		req.Path = rest
	default:
		s.requests = append(s.requests, req)
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Not Found"})
		return
	}
	if r.Method == http.MethodPut {
		var body PutBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			s.requests = append(s.requests, req)
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Problems parsing JSON"})
			return
		}
		req.Put = &body
	}
	s.requests = append(s.requests, req)

	if f, ok := s.fail[r.Method]; ok {
		w.WriteHeader(f.status)
		io.WriteString(w, f.body)
		return
	}

	switch {
	case strings.HasPrefix(req.Path, "git/blobs/") && r.Method == http.MethodGet:
		s.getBlob(w, strings.TrimPrefix(req.Path, "git/blobs/"))
	case r.Method == http.MethodGet:
		s.getContents(w, req.Path)
	case r.Method == http.MethodPut:
		s.putContents(w, req.Path, req.Put)
	default:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"message": "Method not allowed"})
	}
}

func (s *Server) getContents(w http.ResponseWriter, path string) {
	f, ok := s.files[path]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Not Found"})
		return
	}
	res := map[string]any{
		"type":     "file",
		"path":     path,
		"name":     path[strings.LastIndex(path, "/")+1:],
		"sha":      f.sha,
		"size":     len(f.content),
		"encoding": "base64",
		"content":  wrapBase64(base64.StdEncoding.EncodeToString(f.content)),
	}
	if s.inline > 0 && len(f.content) > s.inline {
		res["encoding"] = "none"
		res["content"] = ""
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) getBlob(w http.ResponseWriter, sha string) {
	for _, f := range s.files {
		if f.sha == sha {
			w.Header().Set("Content-Type", "application/vnd.github.raw")
			w.WriteHeader(http.StatusOK)
			w.Write(f.content)
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"message": "Not Found"})
}

func (s *Server) putContents(w http.ResponseWriter, path string, body *PutBody) {
	content, err := base64.StdEncoding.DecodeString(body.Content)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"message": "content is not valid Base64"})
		return
	}
	existing, ok := s.files[path]
	switch {
	case ok && body.SHA == nil:
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"message": "Invalid request.\n\n\"sha\" wasn't supplied."})
		return
	case ok && *body.SHA != existing.sha:
		writeJSON(w, http.StatusConflict, map[string]string{"message": fmt.Sprintf("%s does not match %s", path, *body.SHA)})
		return
	}

	s.seq++
	sha := document.BlobSHA(content)
	s.files[path] = &file{content: content, sha: sha}
	status := http.StatusCreated
	if ok {
		status = http.StatusOK
	}
	writeJSON(w, status, map[string]any{
		"content": map[string]any{"path": path, "sha": sha},
		"commit":  map[string]any{"sha": fmt.Sprintf("c0ffee%034d", s.seq), "message": body.Message},
	})
}

// wrapBase64 breaks base64 into lines the way the Contents API returns it.
func wrapBase64(s string) string {
	var b strings.Builder
	for len(s) > 60 {
		b.WriteString(s[:60])
		b.WriteByte('\n')
		s = s[60:]
	}
	b.WriteString(s)
	return b.String()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
