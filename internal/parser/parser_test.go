package parser

import (
	"testing"

	"github.com/starford/ansuz/internal/models"
)

func TestParse_FrontmatterAndBody(t *testing.T) {
	input := []byte("---\ntitle: Closures\nicon: thinking\n---\n# Closures\nBody text.\n")
	r := Parse(input)
	if r.Malformed {
		t.Fatal("unexpected malformed flag")
	}
	if r.Title != "Closures" {
		t.Errorf("title = %q, want %q", r.Title, "Closures")
	}
	if r.Icon != "thinking" {
		t.Errorf("icon = %q, want %q", r.Icon, "thinking")
	}
	if r.Body != "# Closures\nBody text.\n" {
		t.Errorf("body = %q", r.Body)
	}
}

func TestParse_NoFrontmatter(t *testing.T) {
	input := []byte("# Just a heading\nSome text.\n")
	r := Parse(input)
	if r.Frontmatter != nil {
		t.Errorf("expected nil frontmatter, got %v", r.Frontmatter)
	}
	if r.Malformed {
		t.Error("a file without frontmatter is not malformed")
	}
	if r.Title != "Just a heading" {
		t.Errorf("title = %q, want %q", r.Title, "Just a heading")
	}
}

func TestParse_InvalidYAMLFallback(t *testing.T) {
	input := []byte("---\n: invalid: yaml: {{{\n---\nBody\n")
	r := Parse(input)
	if r.Frontmatter != nil {
		t.Errorf("expected nil frontmatter on invalid YAML")
	}
	if !r.Malformed {
		t.Error("invalid YAML should set the malformed flag")
	}
	if r.Body != string(input) {
		t.Errorf("body should be the whole file, got %q", r.Body)
	}
}

func TestParse_UnterminatedFrontmatter(t *testing.T) {
	input := []byte("---\ntitle: never closed\n\nBody\n")
	r := Parse(input)
	if !r.Malformed {
		t.Error("unterminated block should set the malformed flag")
	}
	if r.Body != string(input) {
		t.Errorf("body should be the whole file, got %q", r.Body)
	}
}

func TestParse_HorizontalRuleIsNotFrontmatter(t *testing.T) {
	input := []byte("----\nnot frontmatter\n")
	r := Parse(input)
	if r.Frontmatter != nil || r.Malformed {
		t.Errorf("---- must not open a frontmatter block")
	}
}

func TestExtractRefs_LinksAndImages(t *testing.T) {
	body := "See [closures](closures.md) and ![pic](img/demo.png \"a title\").\nAlso [up](../react/hooks.md)."
	refs := extractRefs(body, 1)
	if len(refs) != 3 {
		t.Fatalf("len(refs) = %d, want 3: %v", len(refs), refs)
	}
	if refs[0].Target != "closures.md" || refs[0].Kind != models.RefKindLink || refs[0].Line != 1 {
		t.Errorf("refs[0] = %+v", refs[0])
	}
	if refs[1].Target != "img/demo.png" || refs[1].Kind != models.RefKindImage {
		t.Errorf("refs[1] = %+v", refs[1])
	}
	if refs[2].Target != "../react/hooks.md" || refs[2].Line != 2 {
		t.Errorf("refs[2] = %+v", refs[2])
	}
}

func TestExtractRefs_LineNumbersAfterFrontmatter(t *testing.T) {
	input := []byte("---\nicon: x\n---\nintro\n[a](a.md)\n")
	r := Parse(input)
	if len(r.Refs) != 1 {
		t.Fatalf("len(refs) = %d, want 1", len(r.Refs))
	}
	// ---, icon, ---, intro, link: the link sits on line 5 of the file.
	if r.Refs[0].Line != 5 {
		t.Errorf("line = %d, want 5", r.Refs[0].Line)
	}
}

func TestExtractRefs_AngleBracketTarget(t *testing.T) {
	refs := extractRefs("[spaced](<my file.md>)", 1)
	if len(refs) != 1 || refs[0].Target != "my file.md" {
		t.Errorf("refs = %v", refs)
	}
}

func TestDeriveTitle_FrontmatterOverH1(t *testing.T) {
	fm := map[string]interface{}{"title": "FM Title"}
	body := "# H1 Title\ntext"
	if got := deriveTitle(fm, body); got != "FM Title" {
		t.Errorf("title = %q, want %q", got, "FM Title")
	}
}

func TestDeriveTitle_H1Fallback(t *testing.T) {
	if got := deriveTitle(nil, "some text\n# My Heading\nmore"); got != "My Heading" {
		t.Errorf("title = %q, want %q", got, "My Heading")
	}
}

func TestDeriveTitle_Empty(t *testing.T) {
	if got := deriveTitle(nil, "no heading here"); got != "" {
		t.Errorf("title = %q, want empty", got)
	}
}
