package api

import (
	"errors"
	"net/http"
)

// Kind classifies a failed request.
type Kind int

const (
	KindConfiguration Kind = iota + 1
	KindClientInput
	KindBackend
	KindUnsupportedMethod
	KindParse
)

func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindClientInput:
		return "client_input"
	case KindBackend:
		return "backend"
	case KindUnsupportedMethod:
		return "unsupported_method"
	case KindParse:
		return "parse"
	}
	return "internal"
}

// Stage names the GitHub call a backend error came from.
type Stage string

const (
	StageRead   Stage = "read"
	StageLookup Stage = "lookup"
	StageWrite  Stage = "write"
)

// Error is what the handler renders as {"error": Msg}.
type Error struct {
	Kind  Kind
	Stage Stage // set for KindBackend
	Msg   string
	Err   error
}

func (e *Error) Error() string { return e.Msg }

func (e *Error) Unwrap() error { return e.Err }

// Status maps an error to its HTTP status. Anything that is not an *Error is
// an internal failure.
func Status(err error) int {
	var e *Error
	if !errors.As(err, &e) {
		return http.StatusInternalServerError
	}
	switch e.Kind {
	case KindClientInput:
		return http.StatusBadRequest
	case KindUnsupportedMethod:
		return http.StatusMethodNotAllowed
	}
	return http.StatusInternalServerError
}
