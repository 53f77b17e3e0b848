package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRequireBearer(t *testing.T) {
	token := "s3cret"
	mw := RequireBearer(func() string { return token })
	var called bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	})
	handler := mw(next)

	tests := []struct {
		name   string
		method string
		path   string
		header string
		want   int
	}{
		{"health bypass", http.MethodGet, "/health", "", http.StatusOK},
		{"preflight bypass", http.MethodOptions, "/api/state", "", http.StatusOK},
		{"missing header", http.MethodGet, "/api/state", "", http.StatusUnauthorized},
		{"wrong scheme", http.MethodGet, "/api/state", "Basic czNjcmV0", http.StatusUnauthorized},
		{"wrong token", http.MethodPost, "/api/state", "Bearer nope", http.StatusUnauthorized},
		{"valid", http.MethodGet, "/api/state", "Bearer s3cret", http.StatusOK},
		{"scheme case-insensitive", http.MethodGet, "/api/state", "bearer s3cret", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called = false
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("got %d, want %d", rec.Code, tt.want)
			}
			if called != (tt.want == http.StatusOK) {
				t.Errorf("next called = %v", called)
			}
			if tt.want == http.StatusUnauthorized && rec.Header().Get("WWW-Authenticate") == "" {
				t.Error("missing WWW-Authenticate")
			}
		})
	}
}

func TestRequireBearer_disabledWithoutToken(t *testing.T) {
	handler := RequireBearer(func() string { return "" })(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	req := httptest.NewRequest(http.MethodGet, "/api/state", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusTeapot {
		t.Fatalf("got %d", rec.Code)
	}
}
