// Package report collects content-integrity problems found during a build.
// Problems are warnings: the build keeps going and reports them in aggregate.
package report

import (
	"fmt"
	"log/slog"
	"sort"
)

// Kind classifies a problem.
type Kind string

// Problem kinds.
const (
	BrokenReference          Kind = "broken_reference"
	MalformedFrontmatter     Kind = "malformed_frontmatter"
	UnrecognizedAdmonition   Kind = "unrecognized_admonition"
	DuplicateNavigationTitle Kind = "duplicate_navigation_title"
)

// Problem is a single integrity finding. Line is 1-based and 0 when the
// source line is not known.
type Problem struct {
	Kind   Kind   `json:"kind"`
	Source string `json:"source"`
	Line   int    `json:"line,omitempty"`
	Detail string `json:"detail"`
}

func (p Problem) String() string {
	if p.Line > 0 {
		return fmt.Sprintf("%s: %s:%d: %s", p.Kind, p.Source, p.Line, p.Detail)
	}
	return fmt.Sprintf("%s: %s: %s", p.Kind, p.Source, p.Detail)
}

// Report aggregates problems from a full build pass.
type Report struct {
	Problems []Problem `json:"problems"`
}

// Add appends problems to the report.
func (r *Report) Add(problems ...Problem) {
	r.Problems = append(r.Problems, problems...)
}

// Empty reports whether no problems were collected.
func (r *Report) Empty() bool {
	return len(r.Problems) == 0
}

// Count returns the number of problems of the given kind.
func (r *Report) Count(kind Kind) int {
	n := 0
	for _, p := range r.Problems {
		if p.Kind == kind {
			n++
		}
	}
	return n
}

// Sort orders problems by source path, line, then kind so repeated builds
// on the same input produce identical reports.
func (r *Report) Sort() {
	sort.SliceStable(r.Problems, func(i, j int) bool {
		a, b := r.Problems[i], r.Problems[j]
		if a.Source != b.Source {
			return a.Source < b.Source
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		return a.Detail < b.Detail
	})
}

// Log emits every problem as a warning on the given logger.
func (r *Report) Log(logger *slog.Logger) {
	for _, p := range r.Problems {
		logger.Warn("integrity problem",
			slog.String("kind", string(p.Kind)),
			slog.String("source", p.Source),
			slog.Int("line", p.Line),
			slog.String("detail", p.Detail))
	}
}
