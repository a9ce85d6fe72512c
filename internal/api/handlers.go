package api

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/docservice"
	"github.com/starford/ansuz/internal/site"
)

// BuildSnapshot returns the result of the most recent build pass, or nil
// when no build has completed yet.
type BuildSnapshot func() *site.Result

// Handler holds API route handlers.
type Handler struct {
	svc      *docservice.Service
	snapshot BuildSnapshot
}

// NewHandler creates a new Handler.
func NewHandler(svc *docservice.Service, snapshot BuildSnapshot) *Handler {
	return &Handler{svc: svc, snapshot: snapshot}
}

// docPath extracts the document path from the URL (everything after
// /api/docs/). Supports encoded slashes (e.g. react%2Fhooks.md).
func docPath(r *http.Request) string {
	raw := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if raw == "" {
		return ""
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// ListDocuments handles GET /api/docs.
func (h *Handler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))
	sort := q.Get("sort")

	items, total, err := h.svc.ListDocuments(r.Context(), limit, offset, sort)
	if err != nil {
		slog.Error("list documents failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, DocListResponse{Docs: items, Total: total})
}

// GetDocument handles GET /api/docs/*.
func (h *Handler) GetDocument(w http.ResponseWriter, r *http.Request) {
	path := docPath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	doc, err := h.svc.GetDocument(r.Context(), path)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("get document failed", slog.String("path", path), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// Search handles GET /api/search.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.svc.Search(r.Context(), q, limit)
	if err != nil {
		slog.Error("search failed", slog.String("query", q), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	out := make([]SearchResult, len(results))
	for i, res := range results {
		out[i] = SearchResult{Path: res.Path, Title: res.Title, Snippet: res.Snippet}
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: out})
}

// Nav handles GET /api/nav.
func (h *Handler) Nav(w http.ResponseWriter, r *http.Request) {
	res := h.snapshot()
	if res == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody("no build completed yet"))
		return
	}
	writeJSON(w, http.StatusOK, NavResponse{Nav: res.Nav})
}

// Report handles GET /api/report.
func (h *Handler) Report(w http.ResponseWriter, r *http.Request) {
	res := h.snapshot()
	if res == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody("no build completed yet"))
		return
	}
	writeJSON(w, http.StatusOK, ReportResponse{Pages: res.Pages, Problems: res.Report.Problems})
}
