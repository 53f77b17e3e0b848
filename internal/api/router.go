package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// cors sets the CORS headers on every response before anything else runs and
// answers preflight requests itself. The allowed origin is read per request.
func (h *Handler) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", h.Config().AllowedOrigin)
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type,Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func NewRouter(h *Handler, authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(h.cors)
	if authMiddleware != nil {
		r.Use(authMiddleware)
	}
	r.MethodNotAllowed(h.methodNotAllowed)
	r.Get("/health", h.Health)
	r.Group(func(r chi.Router) {
		r.HandleFunc("/api/state", h.State)
		r.HandleFunc("/", h.State)
	})
	return r
}
