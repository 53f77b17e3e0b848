package api

import "encoding/json"

// ReadResponse answers GET. Data and SHA are null when the document is absent.
type ReadResponse struct {
	Found bool            `json:"found"`
	Key   string          `json:"key"`
	Data  json.RawMessage `json:"data"`
	SHA   *string         `json:"sha"`
}

// WriteResponse answers a successful POST.
type WriteResponse struct {
	OK     bool   `json:"ok"`
	Path   string `json:"path"`
	Commit string `json:"commit"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
