package render

import (
	"regexp"

	"github.com/yuin/goldmark"
	gast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// BuiltinIcons maps `:token:` shortcode names to glyphs. Tokens not in the
// active set pass through the renderer literally.
var BuiltinIcons = map[string]string{
	"thinking":         "\U0001F914",
	"warning":          "⚠️",
	"bulb":             "\U0001F4A1",
	"fire":             "\U0001F525",
	"rocket":           "\U0001F680",
	"check":            "✅",
	"white_check_mark": "✅",
	"x":                "❌",
	"question":         "❓",
	"star":             "⭐",
	"point_right":      "\U0001F449",
	"eyes":             "\U0001F440",
	"tada":             "\U0001F389",
	"memo":             "\U0001F4DD",
	"books":            "\U0001F4DA",
	"brain":            "\U0001F9E0",
	"zap":              "⚡",
	"heart":            "❤️",
	"smile":            "\U0001F604",
	"thumbsup":         "\U0001F44D",
}

// An IconShortcode is an inline `:token:` resolved against the icon set.
type IconShortcode struct {
	gast.BaseInline
	Name  string
	Glyph string
}

// KindIconShortcode is the node kind for icon shortcodes.
var KindIconShortcode = gast.NewNodeKind("IconShortcode")

// Kind implements ast.Node.
func (n *IconShortcode) Kind() gast.NodeKind { return KindIconShortcode }

// Dump implements ast.Node.
func (n *IconShortcode) Dump(source []byte, level int) {
	gast.DumpHelper(n, source, level, map[string]string{"Name": n.Name}, nil)
}

var shortcodeRe = regexp.MustCompile(`^:([a-z0-9][a-z0-9_+-]*):`)

type iconParser struct {
	icons map[string]string
}

func (p *iconParser) Trigger() []byte {
	return []byte{':'}
}

func (p *iconParser) Parse(parent gast.Node, block text.Reader, pc parser.Context) gast.Node {
	line, _ := block.PeekLine()
	m := shortcodeRe.FindSubmatch(line)
	if m == nil {
		return nil
	}
	name := string(m[1])
	glyph, ok := p.icons[name]
	if !ok {
		// Unknown token: leave it for the text parser so it appears
		// literally in the output.
		return nil
	}
	block.Advance(len(m[0]))
	return &IconShortcode{Name: name, Glyph: glyph}
}

type iconHTMLRenderer struct{}

func (r *iconHTMLRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(KindIconShortcode, r.renderIcon)
}

func (r *iconHTMLRenderer) renderIcon(w util.BufWriter, source []byte, node gast.Node, entering bool) (gast.WalkStatus, error) {
	if !entering {
		return gast.WalkContinue, nil
	}
	n := node.(*IconShortcode)
	_, _ = w.WriteString(`<span class="icon icon-`)
	_, _ = w.Write(util.EscapeHTML([]byte(n.Name)))
	_, _ = w.WriteString(`">`)
	_, _ = w.Write(util.EscapeHTML([]byte(n.Glyph)))
	_, _ = w.WriteString("</span>")
	return gast.WalkContinue, nil
}

// IconExtension enables `:token:` icon shortcodes against the given icon set.
type IconExtension struct {
	Icons map[string]string
}

func (e *IconExtension) Extend(m goldmark.Markdown) {
	icons := e.Icons
	if icons == nil {
		icons = BuiltinIcons
	}
	m.Parser().AddOptions(parser.WithInlineParsers(
		util.Prioritized(&iconParser{icons: icons}, 999),
	))
	m.Renderer().AddOptions(renderer.WithNodeRenderers(
		util.Prioritized(&iconHTMLRenderer{}, 500),
	))
}
