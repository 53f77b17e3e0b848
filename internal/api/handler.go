package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/shaun/vac-tracker/internal/config"
	"github.com/shaun/vac-tracker/internal/contents"
	"github.com/shaun/vac-tracker/internal/document"
	"github.com/shaun/vac-tracker/internal/github"
)

// maxBodyBytes caps POST bodies; the Contents API inlines files up to 1 MB.
const maxBodyBytes = 1 << 20

// StoreFactory opens the backing store for one request's configuration.
// github.Client provides the production one; inject a fake in tests.
type StoreFactory func(cfg config.Config) (contents.Store, error)

type Handler struct {
	getenv   func(string) string
	newStore StoreFactory
	logger   *slog.Logger
}

// NewHandler builds a handler backed by the GitHub Contents API. getenv is
// consulted on every request.
func NewHandler(getenv func(string) string, logger *slog.Logger) *Handler {
	gh := github.NewClient()
	return NewHandlerWithStore(getenv, func(cfg config.Config) (contents.Store, error) {
		return gh.Store(cfg)
	}, logger)
}

// NewHandlerWithStore builds a handler with a custom StoreFactory (e.g. for tests).
func NewHandlerWithStore(getenv func(string) string, newStore StoreFactory, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{getenv: getenv, newStore: newStore, logger: logger}
}

// Config returns the configuration for the current request.
func (h *Handler) Config() config.Config {
	return config.Load(h.getenv)
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// State serves the document endpoint: GET reads, POST writes, OPTIONS
// answers preflight. The method is checked before configuration so an
// unsupported method is always a 405.
func (h *Handler) State(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodOptions:
		w.WriteHeader(http.StatusOK)
		return
	case http.MethodGet, http.MethodPost:
	default:
		h.methodNotAllowed(w, r)
		return
	}

	cfg := h.Config()
	if err := cfg.Validate(); err != nil {
		h.fail(w, r, "", &Error{Kind: KindConfiguration, Msg: err.Error(), Err: err})
		return
	}
	key, err := document.ResolveKey(r.URL.Query().Get("key"))
	if err != nil {
		h.fail(w, r, "", &Error{Kind: KindClientInput, Msg: err.Error(), Err: err})
		return
	}
	store, err := h.newStore(cfg)
	if err != nil {
		h.fail(w, r, key, err)
		return
	}
	path := document.Path(cfg.Dir, key)

	if r.Method == http.MethodGet {
		h.read(w, r, store, key, path)
		return
	}
	h.write(w, r, store, key, path)
}

func (h *Handler) read(w http.ResponseWriter, r *http.Request, store contents.Store, key, path string) {
	blob, err := store.Read(r.Context(), path)
	if err != nil {
		h.fail(w, r, key, backendFailure(StageRead, "GET file failed", err))
		return
	}
	if blob == nil {
		respondJSON(w, http.StatusOK, ReadResponse{Found: false, Key: key})
		return
	}
	data, err := document.DecodeContent(blob.Content)
	if err != nil {
		h.fail(w, r, key, &Error{Kind: KindParse, Msg: fmt.Sprintf("%s: %v", path, err), Err: err})
		return
	}
	h.logger.Info("document read", "key", key, "path", blob.Path, "sha", blob.SHA)
	sha := blob.SHA
	respondJSON(w, http.StatusOK, ReadResponse{Found: true, Key: key, Data: data, SHA: &sha})
}

func (h *Handler) write(w http.ResponseWriter, r *http.Request, store contents.Store, key, path string) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		h.fail(w, r, key, &Error{Kind: KindClientInput, Msg: "could not read body: " + err.Error(), Err: err})
		return
	}
	req, err := document.DecodeWriteRequest(body)
	if err != nil {
		h.fail(w, r, key, &Error{Kind: KindClientInput, Msg: err.Error(), Err: err})
		return
	}
	content, err := document.Encode(req.Payload)
	if err != nil {
		h.fail(w, r, key, &Error{Kind: KindClientInput, Msg: err.Error(), Err: err})
		return
	}
	message := req.CommitMessage
	if message == "" {
		message = document.DefaultCommitMessage(key)
	}

	commit, err := h.put(r.Context(), store, path, content, message)
	if err != nil {
		h.fail(w, r, key, err)
		return
	}
	h.logger.Info("document written", "key", key, "path", path, "commit", commit.SHA, "sha", commit.ContentSHA)
	respondJSON(w, http.StatusOK, WriteResponse{OK: true, Path: path, Commit: commit.SHA})
}

// put looks up the current sha and writes with it as the expected version.
// A concurrent writer that lands in between makes GitHub reject the write;
// that rejection is returned, not retried.
func (h *Handler) put(ctx context.Context, store contents.Store, path string, content []byte, message string) (*contents.Commit, error) {
	sha, found, err := store.LookupSHA(ctx, path)
	if err != nil {
		return nil, backendFailure(StageLookup, "GET sha failed", err)
	}
	var expected *string
	if found {
		expected = &sha
	}
	commit, err := store.Put(ctx, path, content, message, expected)
	if err != nil {
		return nil, backendFailure(StageWrite, "PUT failed", err)
	}
	return commit, nil
}

func backendFailure(stage Stage, prefix string, err error) error {
	var be *contents.BackendError
	if errors.As(err, &be) {
		return &Error{Kind: KindBackend, Stage: stage, Msg: fmt.Sprintf("%s: %d %s", prefix, be.Status, be.Body), Err: err}
	}
	return &Error{Kind: KindBackend, Stage: stage, Msg: fmt.Sprintf("%s: %v", prefix, err), Err: err}
}

func (h *Handler) methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	h.fail(w, r, "", &Error{Kind: KindUnsupportedMethod, Msg: "Method not allowed"})
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, key string, err error) {
	status := Status(err)
	attrs := []any{"method", r.Method, "status", status, "err", err}
	if key != "" {
		attrs = append(attrs, "key", key)
	}
	var e *Error
	if errors.As(err, &e) {
		attrs = append(attrs, "kind", e.Kind.String())
		if e.Stage != "" {
			attrs = append(attrs, "stage", string(e.Stage))
		}
	}
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", attrs...)
	} else {
		h.logger.Warn("request rejected", attrs...)
	}
	respondJSON(w, status, ErrorResponse{Error: err.Error()})
}
