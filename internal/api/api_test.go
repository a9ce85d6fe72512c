package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/ansuz/internal/docservice"
	"github.com/starford/ansuz/internal/index"
	"github.com/starford/ansuz/internal/nav"
	"github.com/starford/ansuz/internal/report"
	"github.com/starford/ansuz/internal/site"
	"github.com/starford/ansuz/internal/storage"
)

// testEnv builds a source tree, synced index, and router. snapshot is nil
// unless a build result is supplied.
func testEnv(t *testing.T, files map[string]string, result *site.Result, authEnabled bool, token string) http.Handler {
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
		t.Fatalf("NewFS: %v", err)
	}

	dbFile, err := os.CreateTemp("", "ansuz-api-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := index.Open(dbFile.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if err := index.Sync(db, store, logger); err != nil {
		t.Fatalf("Sync: %v", err)
	}

	svc := docservice.NewService(store, db)
	snapshot := func() *site.Result { return result }
	return NewRouter(svc, snapshot, authEnabled, token, nil)
}

func get(t *testing.T, router http.Handler, url string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, url, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestGetDocument(t *testing.T) {
	router := testEnv(t, map[string]string{
		"js/closures.md": "---\ntitle: Closures\nicon: thinking\n---\nSee [scope](scope.md).\n",
		"js/scope.md":    "# Scope\n",
	}, nil, false, "")

	w := get(t, router, "/docs/js/closures.md")
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d, body = %s", w.Code, w.Body.String())
	}
	var doc DocDetail
	_ = json.Unmarshal(w.Body.Bytes(), &doc)
	if doc.Path != "js/closures.md" {
		t.Errorf("path = %q", doc.Path)
	}
	if doc.Title != "Closures" || doc.Icon != "thinking" {
		t.Errorf("title = %q, icon = %q", doc.Title, doc.Icon)
	}
	if len(doc.Refs) != 1 || doc.Refs[0].Target != "scope.md" {
		t.Errorf("refs = %+v", doc.Refs)
	}
}

func TestGetDocument_IncomingRefs(t *testing.T) {
	router := testEnv(t, map[string]string{
		"a.md": "[link](b.md)\n",
		"b.md": "# B\n",
	}, nil, false, "")

	w := get(t, router, "/docs/b.md")
	if w.Code != http.StatusOK {
		t.Fatalf("get = %d", w.Code)
	}
	var doc DocDetail
	_ = json.Unmarshal(w.Body.Bytes(), &doc)
	if len(doc.IncomingRefs) != 1 || doc.IncomingRefs[0] != "a.md" {
		t.Errorf("incoming = %v, want [a.md]", doc.IncomingRefs)
	}
}

func TestGetDocument_NotFound(t *testing.T) {
	router := testEnv(t, nil, nil, false, "")
	w := get(t, router, "/docs/nope.md")
	if w.Code != http.StatusNotFound {
		t.Errorf("missing doc = %d, want 404", w.Code)
	}
}

func TestListDocuments(t *testing.T) {
	router := testEnv(t, map[string]string{
		"a.md": "# A\n",
		"b.md": "# B\n",
	}, nil, false, "")

	w := get(t, router, "/docs?limit=10")
	if w.Code != http.StatusOK {
		t.Fatalf("list = %d", w.Code)
	}
	var resp DocListResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Total != 2 || len(resp.Docs) != 2 {
		t.Errorf("total = %d, docs = %d, want 2/2", resp.Total, len(resp.Docs))
	}
}

func TestSearchEndpoint(t *testing.T) {
	router := testEnv(t, map[string]string{
		"find.md": "# Findable\nuniquetoken here\n",
	}, nil, false, "")

	w := get(t, router, "/search?q=uniquetoken")
	if w.Code != http.StatusOK {
		t.Fatalf("search = %d, body = %s", w.Code, w.Body.String())
	}
	var resp SearchResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Results) != 1 || resp.Results[0].Path != "find.md" {
		t.Errorf("results = %+v", resp.Results)
	}
}

func TestSearchMissingQuery(t *testing.T) {
	router := testEnv(t, nil, nil, false, "")
	w := get(t, router, "/search")
	if w.Code != http.StatusBadRequest {
		t.Errorf("search no query = %d, want 400", w.Code)
	}
}

func TestNavEndpoint(t *testing.T) {
	result := &site.Result{
		Pages:  1,
		Nav:    &nav.Node{Title: "/", Children: []*nav.Node{{Title: "Home", Path: "index.md"}}},
		Report: &report.Report{},
	}
	router := testEnv(t, nil, result, false, "")

	w := get(t, router, "/nav")
	if w.Code != http.StatusOK {
		t.Fatalf("nav = %d", w.Code)
	}
	var resp NavResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Nav == nil || len(resp.Nav.Children) != 1 || resp.Nav.Children[0].Title != "Home" {
		t.Errorf("nav = %+v", resp.Nav)
	}
}

func TestReportEndpoint(t *testing.T) {
	rep := &report.Report{}
	rep.Add(report.Problem{Kind: report.BrokenReference, Source: "a.md", Line: 3, Detail: "x"})
	result := &site.Result{Pages: 5, Report: rep}
	router := testEnv(t, nil, result, false, "")

	w := get(t, router, "/report")
	if w.Code != http.StatusOK {
		t.Fatalf("report = %d", w.Code)
	}
	var resp ReportResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Pages != 5 || len(resp.Problems) != 1 {
		t.Errorf("resp = %+v", resp)
	}
}

func TestNavEndpoint_NoBuildYet(t *testing.T) {
	router := testEnv(t, nil, nil, false, "")
	w := get(t, router, "/nav")
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("nav before build = %d, want 503", w.Code)
	}
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	router := testEnv(t, map[string]string{"a.md": "# A\n"}, nil, true, "secret123")

	req := httptest.NewRequest(http.MethodGet, "/docs", nil)
	req.Header.Set("Authorization", "Bearer secret123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("authed list = %d, want 200", w.Code)
	}
}

func TestAuthMiddleware_MissingToken(t *testing.T) {
	router := testEnv(t, nil, nil, true, "secret123")
	w := get(t, router, "/docs")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("unauthed = %d, want 401", w.Code)
	}
}

func TestAuthMiddleware_WrongToken(t *testing.T) {
	router := testEnv(t, nil, nil, true, "secret123")
	req := httptest.NewRequest(http.MethodGet, "/docs", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong token = %d, want 401", w.Code)
	}
}

func TestAuthMiddleware_Disabled(t *testing.T) {
	router := testEnv(t, nil, nil, false, "")
	w := get(t, router, "/docs")
	if w.Code != http.StatusOK {
		t.Errorf("no auth = %d, want 200", w.Code)
	}
}
