// Package http provides HTTP routing and middleware configuration
// for the GophDeck service.
package http

import (
	"net/http"
	"time"

	"github.com/atinyakov/GophDeck/internal/middleware"
	"go.uber.org/zap"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// NewRouter constructs and returns an HTTP handler that serves
// the GophDeck API.
//
// Routes:
//
//	GET  /healthz                     → liveness probe (public)
//	HEAD /api/documents/{identity}    → documentHandler.Head
//	GET  /api/documents/{identity}    → documentHandler.Get
//	PUT  /api/documents/{identity}    → documentHandler.Put
//
// Middleware chain (applied in order):
//  1. WithRequestLogging(logger)             : logs every request
//  2. AllowContentType("text/plain")         : rejects non-text bodies
//  3. SignatureAuth(now, skew) on /api routes: verifies signed requests
func NewRouter(
	documentHandler *DocumentHandler,
	logger *zap.Logger,
	now func() time.Time,
	skew time.Duration,
) http.Handler {
	r := chi.NewRouter()

	// Log each request and its metadata
	r.Use(middleware.WithRequestLogging(logger))
	// Bodies, when present, are plain text documents
	r.Use(chiMiddleware.AllowContentType("text/plain"))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	// Mount API routes
	r.Route("/api", func(r chi.Router) {
		// Every document request must be signed by its owner
		r.Use(middleware.SignatureAuth(now, skew))

		r.Head("/documents/{identity}", documentHandler.Head)
		r.Get("/documents/{identity}", documentHandler.Get)
		r.Put("/documents/{identity}", documentHandler.Put)
	})

	return r
}
