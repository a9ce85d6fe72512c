// Package render turns Markdown document bodies into HTML using goldmark,
// extended with admonition blocks, icon shortcodes, and fenced-code-block
// attributes. Rendering is a pure function of the input bytes: identical
// input yields byte-identical output.
package render

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	gast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// Options configures a Renderer.
type Options struct {
	// Icons overrides the shortcode icon set. Nil means BuiltinIcons.
	Icons map[string]string
}

// Result is the output of rendering one document body.
type Result struct {
	HTML []byte
	// UnknownAdmonitions lists admonition kinds outside the recognized set.
	// They still render (as generic callouts); callers report them.
	UnknownAdmonitions []string
}

// Renderer is a reusable, stateless Markdown-to-HTML renderer. A single
// instance is safe for concurrent use.
type Renderer struct {
	md goldmark.Markdown
}

// New creates a Renderer with GFM extensions plus the documentation-corpus
// extensions (admonitions, icon shortcodes, code block attributes).
func New(opts Options) *Renderer {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			AdmonitionExtension,
			&IconExtension{Icons: opts.Icons},
			CodeBlockExtension,
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
			parser.WithASTTransformers(
				util.Prioritized(&mdLinkRewriter{}, 500),
			),
		),
	)
	return &Renderer{md: md}
}

// Render converts a Markdown body into HTML and collects unrecognized
// admonition kinds encountered in the document.
func (r *Renderer) Render(src []byte) (*Result, error) {
	doc := r.md.Parser().Parse(text.NewReader(src))

	var unknown []string
	_ = gast.Walk(doc, func(n gast.Node, entering bool) (gast.WalkStatus, error) {
		if entering {
			if adm, ok := n.(*Admonition); ok && !adm.Known {
				unknown = append(unknown, adm.AdmonitionKind)
			}
		}
		return gast.WalkContinue, nil
	})

	var buf bytes.Buffer
	if err := r.md.Renderer().Render(&buf, src, doc); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return &Result{HTML: buf.Bytes(), UnknownAdmonitions: unknown}, nil
}
