// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Ansuz tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/ansuz/internal/index"
	"github.com/starford/ansuz/internal/storage"
)

// Server wraps the MCP server with Ansuz tools. All tools are read-only:
// the documentation tree is authored by humans, not by the server.
type Server struct {
	mcp   *server.MCPServer
	store storage.Provider
	db    index.DocIndex
}

// New creates a new MCP server with all Ansuz tools registered.
func New(store storage.Provider, db index.DocIndex) *Server {
	s := &Server{store: store, db: db}

	s.mcp = server.NewMCPServer(
		"Ansuz",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("search_docs",
		mcp.WithDescription("Full-text search through documentation content and titles."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchDocs)

	s.mcp.AddTool(mcp.NewTool("read_doc",
		mcp.WithDescription("Read the full Markdown source of a documentation page."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path to the page (e.g. js/closures.md)")),
	), s.readDoc)

	s.mcp.AddTool(mcp.NewTool("list_docs",
		mcp.WithDescription("List all documentation pages, or pages under a specific directory."),
		mcp.WithString("dir", mcp.Description("Optional directory to list (empty for the whole tree)")),
	), s.listDocs)

	s.mcp.AddTool(mcp.NewTool("doc_references",
		mcp.WithDescription("Find all pages that link to the specified page."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Path of the page to find incoming references for")),
	), s.docReferences)

	s.mcp.AddTool(mcp.NewTool("get_authoring_guide",
		mcp.WithDescription("Returns the canonical Ansuz page authoring guide: frontmatter, "+
			"admonitions, icon shortcodes, code-block attributes, and linking rules."),
	), s.getAuthoringGuide)

	// Resource: page authoring guide.
	s.mcp.AddResource(
		mcp.NewResource("ansuz://authoring-guide", "Page Authoring Guide",
			mcp.WithResourceDescription("Canonical Markdown page format for Ansuz documentation trees."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readAuthoringGuideResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) searchDocs(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.db.Search(query, 20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(results, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readDoc(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	data, err := s.store.Read(path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", path)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) listDocs(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	dir := ""
	if d, err := req.RequireString("dir"); err == nil {
		dir = d
	}

	metas, err := s.store.Documents(dir)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var paths []string
	for _, m := range metas {
		paths = append(paths, m.Path)
	}
	return mcp.NewToolResultText(strings.Join(paths, "\n")), nil
}

func (s *Server) docReferences(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	refs, err := s.db.IncomingRefs(path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(refs) == 0 {
		return mcp.NewToolResultText("no incoming references found"), nil
	}
	return mcp.NewToolResultText(strings.Join(refs, "\n")), nil
}

func (s *Server) getAuthoringGuide(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(AuthoringGuide), nil
}

func (s *Server) readAuthoringGuideResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "ansuz://authoring-guide",
			MIMEType: "text/markdown",
			Text:     AuthoringGuide,
		},
	}, nil
}
