package document

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrEmptyBody   = errors.New("no JSON body")
	ErrInvalidBody = errors.New("invalid JSON body")
)

// Payload is the value a write stores. It is either Wrapped, taken from the
// "data" member of the request, or Bare, the request body itself.
type Payload interface {
	Value() json.RawMessage
	isPayload()
}

// Wrapped is a payload sent as {"data": ...}.
type Wrapped struct {
	Data json.RawMessage
}

func (w Wrapped) Value() json.RawMessage { return w.Data }
func (Wrapped) isPayload()               {}

// Bare is a payload sent as the whole request body.
type Bare struct {
	Body json.RawMessage
}

func (b Bare) Value() json.RawMessage { return b.Body }
func (Bare) isPayload()               {}

// WriteRequest is a decoded POST body.
type WriteRequest struct {
	Payload       Payload
	CommitMessage string
}

// DecodeWriteRequest resolves a POST body into its payload. A top-level
// object with a non-null "data" member is Wrapped; anything else is Bare.
// A string "commitMessage" member is picked up in both cases.
func DecodeWriteRequest(body []byte) (WriteRequest, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return WriteRequest{}, ErrEmptyBody
	}
	var raw json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return WriteRequest{}, fmt.Errorf("%w: %v", ErrInvalidBody, err)
	}
	if isFalsy(raw) {
		return WriteRequest{}, ErrEmptyBody
	}

	req := WriteRequest{Payload: Bare{Body: raw}}
	if raw[0] != '{' {
		return req, nil
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return WriteRequest{}, fmt.Errorf("%w: %v", ErrInvalidBody, err)
	}
	if data, ok := fields["data"]; ok && !isNull(data) {
		req.Payload = Wrapped{Data: data}
	}
	if msg, ok := fields["commitMessage"]; ok {
		var s string
		if json.Unmarshal(msg, &s) == nil {
			req.CommitMessage = s
		}
	}
	return req, nil
}

// isFalsy reports bodies that carry nothing to store: null, false, 0 and "".
func isFalsy(raw json.RawMessage) bool {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return false
	}
	switch t := v.(type) {
	case nil:
		return true
	case bool:
		return !t
	case float64:
		return t == 0
	case string:
		return t == ""
	}
	return false
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
