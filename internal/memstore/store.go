// Package memstore is an in-process contents.Store with the same optimistic
// concurrency rules as the GitHub Contents API. It backs tests and offline
// development.
package memstore

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"net/http"
	"sync"

	"github.com/shaun/vac-tracker/internal/contents"
	"github.com/shaun/vac-tracker/internal/document"
)

type File struct {
	Path    string
	Content []byte
	SHA     string
	Commit  string
}

type Store struct {
	mu    sync.RWMutex
	files map[string]*File
	seq   int
}

func NewStore() *Store {
	return &Store{files: make(map[string]*File)}
}

func (s *Store) LookupSHA(_ context.Context, path string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.files[path]
	if !ok {
		return "", false, nil
	}
	return f.SHA, true, nil
}

func (s *Store) Read(_ context.Context, path string) (*contents.Blob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.files[path]
	if !ok {
		return nil, nil
	}
	return &contents.Blob{Path: f.Path, SHA: f.SHA, Content: append([]byte(nil), f.Content...)}, nil
}

// Put rejects a create over an existing file (422) and an update whose
// expected sha does not match (409), as GitHub does.
func (s *Store) Put(_ context.Context, path string, content []byte, message string, expectedSHA *string) (*contents.Commit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.files[path]
	switch {
	case ok && expectedSHA == nil:
		return nil, &contents.BackendError{
			Method: http.MethodPut, Path: path, Status: http.StatusUnprocessableEntity,
			Body: `{"message":"Invalid request.\n\n\"sha\" wasn't supplied."}`,
		}
	case ok && *expectedSHA != existing.SHA:
		return nil, &contents.BackendError{
			Method: http.MethodPut, Path: path, Status: http.StatusConflict,
			Body: fmt.Sprintf(`{"message":"%s does not match %s"}`, path, *expectedSHA),
		}
	case !ok && expectedSHA != nil:
		return nil, &contents.BackendError{
			Method: http.MethodPut, Path: path, Status: http.StatusNotFound,
			Body: `{"message":"Not Found"}`,
		}
	}

	s.seq++
	sha := document.BlobSHA(content)
	commit := commitID(s.seq, path, sha, message)
	s.files[path] = &File{
		Path:    path,
		Content: append([]byte(nil), content...),
		SHA:     sha,
		Commit:  commit,
	}
	return &contents.Commit{SHA: commit, ContentSHA: sha}, nil
}

// Files returns a snapshot of every stored file.
func (s *Store) Files() []*File {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var files []*File
	for _, f := range s.files {
		cp := *f
		files = append(files, &cp)
	}
	return files
}

func commitID(seq int, path, sha, message string) string {
	h := sha1.New()
	fmt.Fprintf(h, "commit %d\x00%s\x00%s\x00%s", seq, path, sha, message)
	return hex.EncodeToString(h.Sum(nil))
}

var _ contents.Store = (*Store)(nil)
