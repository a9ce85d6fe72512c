package nav

import (
	"testing"

	"github.com/starford/ansuz/internal/report"
)

func findChild(t *testing.T, n *Node, title string) *Node {
	t.Helper()
	for _, c := range n.Children {
		if c.Title == title {
			return c
		}
	}
	t.Fatalf("child %q not found in %q (have %v)", title, n.Title, titles(n))
	return nil
}

func titles(n *Node) []string {
	out := make([]string, len(n.Children))
	for i, c := range n.Children {
		out[i] = c.Title
	}
	return out
}

func TestAssemble_MirrorsDirectoryLayout(t *testing.T) {
	entries := []Entry{
		{Path: "index.md", Title: "Home"},
		{Path: "js/closures.md", Title: "Closures"},
		{Path: "js/scope.md", Title: "Scope"},
		{Path: "react/hooks.md", Title: "Hooks"},
	}
	root, problems := Assemble(entries, nil)
	if len(problems) != 0 {
		t.Fatalf("unexpected problems: %v", problems)
	}

	js := findChild(t, root, "Js")
	if !js.IsDir() || len(js.Children) != 2 {
		t.Errorf("js node = %+v", js)
	}
	closures := findChild(t, js, "Closures")
	if closures.Path != "js/closures.md" {
		t.Errorf("closures path = %q", closures.Path)
	}
}

func TestAssemble_IndexTitlesDirectory(t *testing.T) {
	entries := []Entry{
		{Path: "react/index.md", Title: "React Guide"},
		{Path: "react/hooks.md", Title: "Hooks"},
	}
	root, _ := Assemble(entries, nil)
	dir := findChild(t, root, "React Guide")
	if !dir.IsDir() {
		t.Fatalf("index.md must title its directory, got %+v", dir)
	}
	// The index document itself stays reachable as a leaf.
	leaf := findChild(t, dir, "React Guide")
	if leaf.Path != "react/index.md" {
		t.Errorf("index leaf path = %q", leaf.Path)
	}
}

func TestAssemble_OrderingFileRanksFirst(t *testing.T) {
	entries := []Entry{
		{Path: "alpha.md", Title: "Alpha"},
		{Path: "beta.md", Title: "Beta"},
		{Path: "gamma.md", Title: "Gamma"},
	}
	orders := map[string][]string{
		"": {"gamma.md", "beta.md"},
	}
	root, _ := Assemble(entries, orders)
	got := titles(root)
	want := []string{"Gamma", "Beta", "Alpha"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestAssemble_UnlistedEntriesLexical(t *testing.T) {
	entries := []Entry{
		{Path: "02-second.md", Title: ""},
		{Path: "01-first.md", Title: ""},
	}
	root, _ := Assemble(entries, nil)
	got := titles(root)
	if got[0] != "First" || got[1] != "Second" {
		t.Errorf("order = %v", got)
	}
}

func TestAssemble_DuplicateTitlesReported(t *testing.T) {
	entries := []Entry{
		{Path: "a.md", Title: "Intro"},
		{Path: "b.md", Title: "Intro"},
		{Path: "sub/c.md", Title: "Intro"}, // different level, no conflict
	}
	_, problems := Assemble(entries, nil)
	if len(problems) != 1 {
		t.Fatalf("len(problems) = %d, want 1: %v", len(problems), problems)
	}
	if problems[0].Kind != report.DuplicateNavigationTitle {
		t.Errorf("kind = %q", problems[0].Kind)
	}
}

func TestTitleFromFilename(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"closures.md", "Closures"},
		{"01-intro.md", "Intro"},
		{"2. getting-started.md", "Getting started"},
		{"async_await.md", "Async await"},
		{"react", "React"},
		{"07.md", "07"},
	}
	for _, c := range cases {
		if got := TitleFromFilename(c.in); got != c.want {
			t.Errorf("TitleFromFilename(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
