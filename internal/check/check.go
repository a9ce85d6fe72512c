// Package check validates relative links and asset references against the
// enumerated file tree. It is a read-only pass: broken references become
// report problems, never repairs or failures of unrelated documents.
package check

import (
	"fmt"
	"path"
	"strings"

	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/report"
)

// Checker resolves references against a fixed snapshot of the source tree.
type Checker struct {
	files map[string]struct{}
}

// New creates a Checker over the given set of slash-separated relative
// paths (documents and assets alike).
func New(files map[string]struct{}) *Checker {
	return &Checker{files: files}
}

// Check resolves every reference of a document against the tree and returns
// one BrokenReference problem per unresolvable target.
func (c *Checker) Check(docPath string, refs []models.Reference) []report.Problem {
	var problems []report.Problem
	for _, ref := range refs {
		resolved, ok := Resolve(docPath, ref.Target)
		if !ok {
			if !external(ref.Target) {
				// A relative reference that escapes the source root
				// can never resolve.
				problems = append(problems, brokenRef(docPath, ref))
			}
			continue
		}
		if c.exists(resolved) {
			continue
		}
		// A link written against the rendered site resolves through the
		// source document; a directory link resolves through its index.
		if strings.HasSuffix(resolved, ".html") && c.exists(strings.TrimSuffix(resolved, ".html")+".md") {
			continue
		}
		if (strings.HasSuffix(ref.Target, "/") || path.Ext(resolved) == "") && c.exists(path.Join(resolved, "index.md")) {
			continue
		}
		problems = append(problems, brokenRef(docPath, ref))
	}
	return problems
}

func brokenRef(docPath string, ref models.Reference) report.Problem {
	return report.Problem{
		Kind:   report.BrokenReference,
		Source: docPath,
		Line:   ref.Line,
		Detail: fmt.Sprintf("unresolved %s target %q", ref.Kind, ref.Target),
	}
}

// Resolve maps a raw reference target to a root-relative tree path,
// resolving against the referencing document's directory and stripping
// fragments and queries. It returns false for targets that are not tree
// candidates at all (external URLs, mailto, pure fragments) and for
// relative paths that escape the source root.
func Resolve(docPath, target string) (string, bool) {
	if external(target) {
		return "", false
	}
	if i := strings.IndexAny(target, "#?"); i >= 0 {
		target = target[:i]
	}
	if target == "" {
		return "", false
	}

	var resolved string
	if strings.HasPrefix(target, "/") {
		resolved = path.Clean(strings.TrimPrefix(target, "/"))
	} else {
		resolved = path.Join(path.Dir(docPath), target)
	}
	if resolved == ".." || strings.HasPrefix(resolved, "../") {
		return "", false
	}
	if resolved == "." {
		resolved = "index.md"
	}
	return resolved, true
}

// external reports whether a target lives outside the tree entirely.
func external(target string) bool {
	return target == "" ||
		strings.HasPrefix(target, "#") ||
		strings.HasPrefix(target, "//") ||
		strings.HasPrefix(target, "mailto:") ||
		strings.Contains(target, "://")
}

func (c *Checker) exists(p string) bool {
	_, ok := c.files[p]
	return ok
}
