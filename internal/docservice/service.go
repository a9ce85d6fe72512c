// Package docservice coordinates source storage and index reads for the
// API and MCP surfaces. It is strictly read-only: the build pipeline never
// mutates sources, and neither does any serving surface.
package docservice

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/index"
	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/parser"
	"github.com/starford/ansuz/internal/storage"
)

// DocDetail is the full representation of a document.
type DocDetail struct {
	Path         string         `json:"path"`
	Title        string         `json:"title"`
	Icon         string         `json:"icon,omitempty"`
	Content      string         `json:"content"`
	Checksum     string         `json:"checksum"`
	Frontmatter  map[string]any `json:"frontmatter,omitempty"`
	Refs         []models.Reference `json:"refs"`
	IncomingRefs []string       `json:"incoming_refs"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// DocListItem is a lightweight item in a list response.
type DocListItem struct {
	Path      string    `json:"path"`
	Title     string    `json:"title"`
	Icon      string    `json:"icon,omitempty"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Service coordinates storage and index operations.
type Service struct {
	store storage.Provider
	db    index.DocIndex
}

// NewService creates a new document service.
func NewService(store storage.Provider, db index.DocIndex) *Service {
	return &Service{store: store, db: db}
}

// GetDocument reads a document from storage, parses it, and enriches it
// with incoming references from the index.
func (s *Service) GetDocument(_ context.Context, path string) (*DocDetail, error) {
	data, err := s.store.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}

	res := parser.Parse(data)
	incoming, err := s.db.IncomingRefs(path)
	if err != nil {
		return nil, err
	}

	cs, _ := s.db.GetChecksum(path)
	return &DocDetail{
		Path:         path,
		Title:        res.Title,
		Icon:         res.Icon,
		Content:      string(data),
		Checksum:     cs,
		Frontmatter:  res.Frontmatter,
		Refs:         nonNilSlice(res.Refs),
		IncomingRefs: nonNilSlice(incoming),
		UpdatedAt:    time.Now(),
	}, nil
}

// ListDocuments returns paginated documents from the index.
func (s *Service) ListDocuments(_ context.Context, limit, offset int, sort string) ([]DocListItem, int, error) {
	rows, total, err := s.db.ListDocuments(limit, offset, sort)
	if err != nil {
		return nil, 0, err
	}
	items := make([]DocListItem, len(rows))
	for i, r := range rows {
		items[i] = DocListItem{
			Path:      r.Path,
			Title:     r.Title,
			Icon:      r.Icon,
			Checksum:  r.Checksum,
			UpdatedAt: r.UpdatedAt,
		}
	}
	return items, total, nil
}

// Search delegates full-text search to the index.
func (s *Service) Search(_ context.Context, query string, limit int) ([]index.SearchResult, error) {
	return s.db.Search(query, limit)
}

// IncomingRefs returns all document paths that reference the given target.
func (s *Service) IncomingRefs(_ context.Context, target string) ([]string, error) {
	return s.db.IncomingRefs(target)
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
