package render

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	gast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// admonitionKinds is the fixed set of callout kinds the theme styles.
// Anything else renders as a generic callout.
var admonitionKinds = map[string]struct{}{
	"note":     {},
	"tip":      {},
	"warning":  {},
	"danger":   {},
	"question": {},
	"answer":   {},
	"abstract": {},
	"success":  {},
	"info":     {},
	"quote":    {},
	"bug":      {},
}

// KnownAdmonitionKind reports whether kind is styled by the theme.
func KnownAdmonitionKind(kind string) bool {
	_, ok := admonitionKinds[kind]
	return ok
}

// An Admonition is a callout block opened by a `!!! kind "Title"` line and
// continued by 4-space-indented content. Nested blocks (code fences, lists,
// further admonitions) are regular children of the node.
type Admonition struct {
	gast.BaseBlock
	AdmonitionKind string
	Title          string
	Known          bool
}

// KindAdmonition is the node kind for admonition blocks.
var KindAdmonition = gast.NewNodeKind("Admonition")

// Kind implements ast.Node.
func (n *Admonition) Kind() gast.NodeKind { return KindAdmonition }

// Dump implements ast.Node.
func (n *Admonition) Dump(source []byte, level int) {
	gast.DumpHelper(n, source, level, map[string]string{
		"AdmonitionKind": n.AdmonitionKind,
		"Title":          n.Title,
	}, nil)
}

// NewAdmonition creates an admonition node. An empty title falls back to the
// capitalized kind at render time.
func NewAdmonition(kind, title string) *Admonition {
	return &Admonition{
		AdmonitionKind: kind,
		Title:          title,
		Known:          KnownAdmonitionKind(kind),
	}
}

var admonitionOpenRe = regexp.MustCompile(`^!!!\s+([A-Za-z][A-Za-z0-9_-]*)(?:\s+"([^"]*)")?\s*$`)

type admonitionParser struct{}

// NewAdmonitionParser returns a block parser for `!!!` admonitions.
func NewAdmonitionParser() parser.BlockParser {
	return &admonitionParser{}
}

func (p *admonitionParser) Trigger() []byte {
	return []byte{'!'}
}

func (p *admonitionParser) Open(parent gast.Node, reader text.Reader, pc parser.Context) (gast.Node, parser.State) {
	line, segment := reader.PeekLine()
	pos := pc.BlockOffset()
	if pos < 0 || line[pos] != '!' {
		return nil, parser.NoChildren
	}
	m := admonitionOpenRe.FindSubmatch(bytes.TrimRight(line[pos:], "\n\r"))
	if m == nil {
		return nil, parser.NoChildren
	}
	kind := strings.ToLower(string(m[1]))
	title := string(m[2])
	reader.Advance(segment.Len() - 1)
	return NewAdmonition(kind, title), parser.HasChildren
}

func (p *admonitionParser) Continue(node gast.Node, reader text.Reader, pc parser.Context) parser.State {
	line, _ := reader.PeekLine()
	if util.IsBlank(line) {
		return parser.Continue | parser.HasChildren
	}
	childPos, padding := util.IndentPosition(line, reader.LineOffset(), 4)
	if childPos < 0 {
		return parser.Close
	}
	reader.AdvanceAndSetPadding(childPos, padding)
	return parser.Continue | parser.HasChildren
}

func (p *admonitionParser) Close(node gast.Node, reader text.Reader, pc parser.Context) {
}

func (p *admonitionParser) CanInterruptParagraph() bool { return true }

func (p *admonitionParser) CanAcceptIndentedLine() bool { return false }

type admonitionHTMLRenderer struct{}

// NewAdmonitionHTMLRenderer returns the HTML renderer for admonition nodes.
func NewAdmonitionHTMLRenderer() renderer.NodeRenderer {
	return &admonitionHTMLRenderer{}
}

func (r *admonitionHTMLRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(KindAdmonition, r.renderAdmonition)
}

func (r *admonitionHTMLRenderer) renderAdmonition(w util.BufWriter, source []byte, node gast.Node, entering bool) (gast.WalkStatus, error) {
	n := node.(*Admonition)
	if !entering {
		_, _ = w.WriteString("</div>\n")
		return gast.WalkContinue, nil
	}

	if n.Known {
		_, _ = fmt.Fprintf(w, "<div class=\"admonition %s\">\n", n.AdmonitionKind)
	} else {
		_, _ = w.WriteString("<div class=\"admonition\">\n")
	}

	title := n.Title
	if title == "" {
		title = capitalize(n.AdmonitionKind)
	}
	_, _ = w.WriteString("<p class=\"admonition-title\">")
	_, _ = w.Write(util.EscapeHTML([]byte(title)))
	_, _ = w.WriteString("</p>\n")
	return gast.WalkContinue, nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

type admonitionExtension struct{}

// AdmonitionExtension enables `!!! kind "Title"` callout blocks.
var AdmonitionExtension goldmark.Extender = &admonitionExtension{}

func (e *admonitionExtension) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(parser.WithBlockParsers(
		util.Prioritized(NewAdmonitionParser(), 799),
	))
	m.Renderer().AddOptions(renderer.WithNodeRenderers(
		util.Prioritized(NewAdmonitionHTMLRenderer(), 500),
	))
}
