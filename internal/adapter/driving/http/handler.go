// Package httphandler is the HTTP driving adapter: the GitHub webhook
// endpoint and the health check.
package httphandler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// DefaultWebhookPath is where GitHub delivers webhooks unless configured otherwise.
const DefaultWebhookPath = "/webhooks/github"

// NewRouter creates an http.Handler with all routes registered and wrapped
// with request id, logging and recovery middleware.
func NewRouter(webhookPath string, webhook http.Handler, logger *slog.Logger) http.Handler {
	if webhookPath == "" {
		webhookPath = DefaultWebhookPath
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(loggingMiddleware(logger))
	// Recoverer innermost so panics are caught before logging.
	r.Use(middleware.Recoverer)

	r.Get("/api/v1/health", Health)
	r.Method(http.MethodPost, webhookPath, webhook)

	return r
}

// Health reports that the process is serving requests.
func Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}
