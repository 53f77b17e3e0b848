package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHandler_preflightAndMethod(t *testing.T) {
	t.Setenv("ALLOWED_ORIGIN", "https://pages.example")
	t.Setenv("API_TOKEN", "")

	rec := httptest.NewRecorder()
	Handler(rec, httptest.NewRequest(http.MethodOptions, "/api/state", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("OPTIONS: %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://pages.example" {
		t.Fatalf("allow-origin %q", got)
	}

	rec = httptest.NewRecorder()
	Handler(rec, httptest.NewRequest(http.MethodDelete, "/api/state", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("DELETE: %d", rec.Code)
	}
}

func TestHandler_missingConfig(t *testing.T) {
	t.Setenv("GH_TOKEN", "")
	t.Setenv("GH_OWNER", "")
	t.Setenv("GH_REPO", "")
	t.Setenv("API_TOKEN", "")

	rec := httptest.NewRecorder()
	Handler(rec, httptest.NewRequest(http.MethodGet, "/api/state", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("GET without config: %d %s", rec.Code, rec.Body.String())
	}
}
