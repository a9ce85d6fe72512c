package render

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	gast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/util"
)

// fenceInfo is the parsed info string of a fenced code block, e.g.
// `javascript title="index.js" linenums="1"`. The language is advisory:
// it only becomes a CSS class, snippets are never compiled or executed.
type fenceInfo struct {
	Language string
	Title    string
	LineNums int // first line number; 0 disables numbering
}

var fenceAttrRe = regexp.MustCompile(`([A-Za-z][A-Za-z0-9_-]*)="([^"]*)"`)

func parseFenceInfo(info string) fenceInfo {
	fi := fenceInfo{}
	info = strings.TrimSpace(info)
	if info == "" {
		return fi
	}
	lang := info
	if i := strings.IndexAny(info, " \t"); i >= 0 {
		lang = info[:i]
	}
	if !strings.Contains(lang, "=") {
		fi.Language = lang
	}
	for _, m := range fenceAttrRe.FindAllStringSubmatch(info, -1) {
		switch m[1] {
		case "title":
			fi.Title = m[2]
		case "linenums":
			if n, err := strconv.Atoi(m[2]); err == nil && n > 0 {
				fi.LineNums = n
			}
		}
	}
	return fi
}

// codeBlockRenderer replaces the default fenced-code-block output so the
// `title` and `linenums` fence attributes become a caption element and
// per-line numbering.
type codeBlockRenderer struct{}

// NewCodeBlockRenderer returns the fenced-code-block HTML renderer.
func NewCodeBlockRenderer() renderer.NodeRenderer {
	return &codeBlockRenderer{}
}

func (r *codeBlockRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(gast.KindFencedCodeBlock, r.renderFencedCodeBlock)
}

func (r *codeBlockRenderer) renderFencedCodeBlock(w util.BufWriter, source []byte, node gast.Node, entering bool) (gast.WalkStatus, error) {
	n := node.(*gast.FencedCodeBlock)
	if !entering {
		return gast.WalkContinue, nil
	}

	var info string
	if n.Info != nil {
		info = string(n.Info.Segment.Value(source))
	}
	fi := parseFenceInfo(info)

	framed := fi.Title != ""
	if framed {
		_, _ = w.WriteString("<figure class=\"codeblock\">\n<figcaption class=\"codeblock-title\">")
		_, _ = w.Write(util.EscapeHTML([]byte(fi.Title)))
		_, _ = w.WriteString("</figcaption>\n")
	}

	_, _ = w.WriteString("<pre><code")
	if fi.Language != "" {
		_, _ = fmt.Fprintf(w, " class=\"language-%s\"", util.EscapeHTML([]byte(fi.Language)))
	}
	_, _ = w.WriteString(">")

	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		if fi.LineNums > 0 {
			_, _ = fmt.Fprintf(w, "<span class=\"ln\">%d</span>", fi.LineNums+i)
		}
		_, _ = w.Write(util.EscapeHTML(seg.Value(source)))
	}

	_, _ = w.WriteString("</code></pre>\n")
	if framed {
		_, _ = w.WriteString("</figure>\n")
	}
	return gast.WalkContinue, nil
}

type codeBlockExtension struct{}

// CodeBlockExtension enables `title` and `linenums` fence attributes.
var CodeBlockExtension goldmark.Extender = &codeBlockExtension{}

func (e *codeBlockExtension) Extend(m goldmark.Markdown) {
	m.Renderer().AddOptions(renderer.WithNodeRenderers(
		util.Prioritized(NewCodeBlockRenderer(), 200),
	))
}
