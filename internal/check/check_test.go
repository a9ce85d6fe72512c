package check

import (
	"testing"

	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/report"
)

func tree(paths ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		m[p] = struct{}{}
	}
	return m
}

func link(target string, line int) models.Reference {
	return models.Reference{Target: target, Kind: models.RefKindLink, Line: line}
}

func TestCheck_ResolvesSiblingsAndParents(t *testing.T) {
	c := New(tree("js/closures.md", "js/scope.md", "react/hooks.md"))
	problems := c.Check("js/closures.md", []models.Reference{
		link("scope.md", 3),
		link("../react/hooks.md", 7),
	})
	if len(problems) != 0 {
		t.Errorf("unexpected problems: %v", problems)
	}
}

func TestCheck_BrokenTargetReported(t *testing.T) {
	c := New(tree("js/closures.md"))
	problems := c.Check("js/closures.md", []models.Reference{link("missing.md", 9)})
	if len(problems) != 1 {
		t.Fatalf("len(problems) = %d, want 1", len(problems))
	}
	p := problems[0]
	if p.Kind != report.BrokenReference || p.Source != "js/closures.md" || p.Line != 9 {
		t.Errorf("problem = %+v", p)
	}
}

func TestCheck_ExternalTargetsSkipped(t *testing.T) {
	c := New(tree("index.md"))
	problems := c.Check("index.md", []models.Reference{
		link("https://example.com/page", 1),
		link("mailto:hi@example.com", 2),
		link("#fragment", 3),
		link("//cdn.example.com/x.png", 4),
	})
	if len(problems) != 0 {
		t.Errorf("external targets must not be reported: %v", problems)
	}
}

func TestCheck_FragmentAndQueryStripped(t *testing.T) {
	c := New(tree("js/closures.md", "js/scope.md"))
	problems := c.Check("js/closures.md", []models.Reference{
		link("scope.md#lexical", 1),
		link("scope.md?v=2", 2),
	})
	if len(problems) != 0 {
		t.Errorf("unexpected problems: %v", problems)
	}
}

func TestCheck_HTMLFallsBackToSource(t *testing.T) {
	c := New(tree("js/scope.md"))
	problems := c.Check("js/closures.md", []models.Reference{link("scope.html", 1)})
	if len(problems) != 0 {
		t.Errorf(".html link should resolve through the .md source: %v", problems)
	}
}

func TestCheck_DirectoryResolvesToIndex(t *testing.T) {
	c := New(tree("react/index.md"))
	problems := c.Check("index.md", []models.Reference{
		link("react/", 1),
		link("react", 2),
	})
	if len(problems) != 0 {
		t.Errorf("directory links should resolve via index.md: %v", problems)
	}
}

func TestCheck_EscapeAboveRootReported(t *testing.T) {
	c := New(tree("index.md"))
	problems := c.Check("index.md", []models.Reference{link("../outside.md", 5)})
	if len(problems) != 1 {
		t.Fatalf("escaping reference must be reported, got %v", problems)
	}
}

func TestResolve(t *testing.T) {
	cases := []struct {
		doc    string
		target string
		want   string
		ok     bool
	}{
		{"js/closures.md", "scope.md", "js/scope.md", true},
		{"js/closures.md", "../index.md", "index.md", true},
		{"js/closures.md", "/react/hooks.md", "react/hooks.md", true},
		{"index.md", "./", "index.md", true},
		{"js/a.md", "../../etc", "", false},
		{"js/a.md", "https://example.com", "", false},
		{"js/a.md", "#only-fragment", "", false},
	}
	for _, c := range cases {
		got, ok := Resolve(c.doc, c.target)
		if got != c.want || ok != c.ok {
			t.Errorf("Resolve(%q, %q) = (%q, %v), want (%q, %v)",
				c.doc, c.target, got, ok, c.want, c.ok)
		}
	}
}
