// Package parser extracts frontmatter, link references, and titles from
// Markdown content.
package parser

import (
	"bytes"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/starford/ansuz/internal/models"
)

// refRe matches Markdown links and images: [text](target) and ![alt](target),
// with an optional quoted title after the target.
var refRe = regexp.MustCompile(`(!?)\[[^\]]*\]\(\s*(<[^>]*>|[^)\s]+)(?:\s+"[^"]*")?\s*\)`)

// Result holds the output of parsing a Markdown file.
type Result struct {
	Frontmatter map[string]interface{}
	Icon        string
	Title       string
	Body        string
	Refs        []models.Reference
	// Malformed is true when a frontmatter block was opened but could not
	// be parsed (unterminated delimiter or invalid YAML). The whole file is
	// then treated as body.
	Malformed bool
}

// Parse extracts frontmatter, body, and references from raw Markdown bytes.
// It never fails on malformed input: anything unparseable degrades to body.
func Parse(data []byte) *Result {
	fm, body, bodyLine, malformed := splitFrontmatter(data)

	res := &Result{
		Frontmatter: fm,
		Body:        body,
		Refs:        extractRefs(body, bodyLine),
		Malformed:   malformed,
	}
	res.Icon = stringField(fm, "icon")
	res.Title = deriveTitle(fm, body)
	return res
}

// splitFrontmatter separates YAML frontmatter (between leading --- delimiters)
// from the Markdown body. bodyLine is the 1-based line of the original file
// where the body starts. A file without a frontmatter block yields a nil map
// and the full content as body; that is not malformed. An opened but
// unterminated or invalid block also yields the full content as body, but
// with malformed set.
func splitFrontmatter(data []byte) (fm map[string]interface{}, body string, bodyLine int, malformed bool) {
	const delim = "---"
	trimmed := bytes.TrimLeft(data, "\n\r")
	leading := bytes.Count(data[:len(data)-len(trimmed)], []byte("\n"))

	if !bytes.HasPrefix(trimmed, []byte(delim)) {
		return nil, string(data), 1, false
	}
	// The opening line must be exactly "---"; a horizontal rule later in a
	// file never starts at byte zero.
	if rest := trimmed[len(delim):]; len(rest) > 0 && rest[0] != '\n' && rest[0] != '\r' {
		return nil, string(data), 1, false
	}

	rest := trimmed[len(delim):]
	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		// Opened but never closed.
		return nil, string(data), 1, true
	}

	yamlBlock := rest[:idx]
	afterDelim := rest[idx+1+len(delim):]
	stripped := strings.TrimLeft(string(afterDelim), "\n\r")

	if err := yaml.Unmarshal(yamlBlock, &fm); err != nil {
		return nil, string(data), 1, true
	}

	// Lines before the body: leading blanks, two delimiter lines, the YAML
	// block itself, and any blank lines trimmed after the closing delimiter.
	blanks := strings.Count(string(afterDelim)[:len(afterDelim)-len(stripped)], "\n")
	bodyLine = leading + 2 + bytes.Count(yamlBlock, []byte("\n")) + blanks
	return fm, stripped, bodyLine, false
}

// extractRefs returns every link and image reference in the body with its
// 1-based line number in the original file.
func extractRefs(body string, bodyLine int) []models.Reference {
	var out []models.Reference
	for i, line := range strings.Split(body, "\n") {
		for _, m := range refRe.FindAllStringSubmatch(line, -1) {
			target := strings.TrimSpace(m[2])
			target = strings.TrimPrefix(target, "<")
			target = strings.TrimSuffix(target, ">")
			if target == "" {
				continue
			}
			kind := models.RefKindLink
			if m[1] == "!" {
				kind = models.RefKindImage
			}
			out = append(out, models.Reference{
				Target: target,
				Kind:   kind,
				Line:   bodyLine + i,
			})
		}
	}
	return out
}

// deriveTitle returns the frontmatter "title" if present, otherwise the first
// H1 heading, otherwise empty string. Filename-derived fallbacks belong to
// the navigation assembler.
func deriveTitle(fm map[string]interface{}, body string) string {
	if t := stringField(fm, "title"); t != "" {
		return t
	}
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "# ") {
			return strings.TrimSpace(trimmed[2:])
		}
	}
	return ""
}

func stringField(fm map[string]interface{}, key string) string {
	if fm == nil {
		return ""
	}
	if v, ok := fm[key]; ok {
		if s, ok := v.(string); ok {
			return strings.TrimSpace(s)
		}
	}
	return ""
}
