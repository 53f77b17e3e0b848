package handler

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/shaun/vac-tracker/internal/api"
	"github.com/shaun/vac-tracker/internal/auth"
)

var defaultHandler http.Handler

func init() {
	h := api.NewHandler(os.Getenv, slog.New(slog.NewJSONHandler(os.Stderr, nil)))
	defaultHandler = api.NewRouter(h, auth.RequireBearer(func() string { return h.Config().APIToken }))
}

// Handler is the entry point for Vercel's Go runtime. Configuration is read
// from the environment on every request.
func Handler(w http.ResponseWriter, r *http.Request) {
	defaultHandler.ServeHTTP(w, r)
}
