package api

import (
	"github.com/starford/ansuz/internal/docservice"
	"github.com/starford/ansuz/internal/nav"
	"github.com/starford/ansuz/internal/report"
)

// DocDetail is the full document response type (aliased from the domain layer).
type DocDetail = docservice.DocDetail

// DocListItem is a lightweight item in a list response (aliased from the domain layer).
type DocListItem = docservice.DocListItem

// DocListResponse wraps paginated document listings.
type DocListResponse struct {
	Docs  []DocListItem `json:"docs"`
	Total int           `json:"total"`
}

// SearchResult is a single search hit in the API response.
type SearchResult struct {
	Path    string `json:"path"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []SearchResult `json:"results"`
}

// NavResponse wraps the navigation tree of the latest build.
type NavResponse struct {
	Nav *nav.Node `json:"nav"`
}

// ReportResponse wraps the integrity report of the latest build.
type ReportResponse struct {
	Pages    int              `json:"pages"`
	Problems []report.Problem `json:"problems"`
}
