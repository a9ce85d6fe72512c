package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/ansuz/internal/docservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *docservice.Service, snapshot BuildSnapshot, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc, snapshot)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Documents (read-only).
	r.Get("/docs", h.ListDocuments)
	r.Get("/docs/*", h.GetDocument)

	// Search.
	r.Get("/search", h.Search)

	// Build artifacts.
	r.Get("/nav", h.Nav)
	r.Get("/report", h.Report)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
