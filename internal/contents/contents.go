// Package contents defines the storage port the document handler writes
// through: a branch of a repository addressed by file path.
package contents

import (
	"context"
	"fmt"
)

// Blob is a file as stored on the backend.
type Blob struct {
	Path    string
	SHA     string
	Content []byte
}

// Commit is the result of a successful write.
type Commit struct {
	SHA        string // commit id
	ContentSHA string // sha of the written file
}

// Store reads and writes files on one branch.
//
// LookupSHA and Read report an absent file as ("", false, nil) and (nil, nil).
// Put creates the file when expectedSHA is nil and updates it otherwise; the
// backend rejects an update whose expectedSHA is stale.
type Store interface {
	LookupSHA(ctx context.Context, path string) (sha string, found bool, err error)
	Read(ctx context.Context, path string) (*Blob, error)
	Put(ctx context.Context, path string, content []byte, message string, expectedSHA *string) (*Commit, error)
}

// BackendError is a non-2xx answer from the backend. Body is the raw
// response text.
type BackendError struct {
	Method string
	Path   string
	Status int
	Body   string
	Err    error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Status, e.Body)
}

func (e *BackendError) Unwrap() error { return e.Err }
