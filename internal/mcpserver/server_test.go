package mcpserver

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/ansuz/internal/index"
	"github.com/starford/ansuz/internal/storage"
)

func testServer(t *testing.T, files map[string]string) *Server {
	t.Helper()

	srcDir := t.TempDir()
	for name, content := range files {
		p := filepath.Join(srcDir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	store, err := storage.NewFS(srcDir)
	if err != nil {
		t.Fatal(err)
	}

	dbFile, err := os.CreateTemp("", "ansuz-mcp-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := index.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if err := index.Sync(db, store, logger); err != nil {
		t.Fatal(err)
	}

	return New(store, db)
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go does not expose a direct "call tool" test helper, so the tool
	// handler functions are exercised directly.
	var result *mcp.CallToolResult
	var err error

	switch name {
	case "search_docs":
		result, err = srv.searchDocs(ctx, req)
	case "read_doc":
		result, err = srv.readDoc(ctx, req)
	case "list_docs":
		result, err = srv.listDocs(ctx, req)
	case "doc_references":
		result, err = srv.docReferences(ctx, req)
	case "get_authoring_guide":
		result, err = srv.getAuthoringGuide(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestReadDoc(t *testing.T) {
	srv := testServer(t, map[string]string{"test.md": "# Test\nHello"})

	r := callTool(t, srv, "read_doc", map[string]interface{}{"path": "test.md"})
	if text := resultText(r); text != "# Test\nHello" {
		t.Errorf("read result = %q", text)
	}
}

func TestReadDocMissing(t *testing.T) {
	srv := testServer(t, nil)
	r := callTool(t, srv, "read_doc", map[string]interface{}{"path": "nope.md"})
	if !r.IsError {
		t.Error("expected error for missing doc")
	}
}

func TestListDocs(t *testing.T) {
	srv := testServer(t, map[string]string{
		"a.md":    "a",
		"js/b.md": "b",
	})

	r := callTool(t, srv, "list_docs", map[string]interface{}{})
	text := resultText(r)
	if !strings.Contains(text, "a.md") || !strings.Contains(text, "js/b.md") {
		t.Errorf("list = %q", text)
	}

	r = callTool(t, srv, "list_docs", map[string]interface{}{"dir": "js"})
	text = resultText(r)
	if text != "js/b.md" {
		t.Errorf("scoped list = %q", text)
	}
}

func TestSearchDocs(t *testing.T) {
	srv := testServer(t, map[string]string{"s.md": "# Searchable\nuniqueword here\n"})

	r := callTool(t, srv, "search_docs", map[string]interface{}{"query": "uniqueword"})
	if text := resultText(r); !strings.Contains(text, "s.md") {
		t.Errorf("search result = %q", text)
	}
}

func TestDocReferences(t *testing.T) {
	srv := testServer(t, map[string]string{
		"a.md": "[to b](b.md)\n",
		"b.md": "# B\n",
	})

	r := callTool(t, srv, "doc_references", map[string]interface{}{"path": "b.md"})
	if text := resultText(r); text != "a.md" {
		t.Errorf("references = %q, want a.md", text)
	}
}

func TestGetAuthoringGuide(t *testing.T) {
	srv := testServer(t, nil)
	r := callTool(t, srv, "get_authoring_guide", map[string]interface{}{})
	text := resultText(r)
	if !strings.Contains(text, "Admonitions") || !strings.Contains(text, "!!!") {
		t.Errorf("guide missing sections: %q", text)
	}
}
