package render

import (
	"bytes"

	gast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// mdLinkRewriter rewrites relative link destinations that point at Markdown
// documents to their rendered .html form, preserving fragments and queries.
// Image destinations and external URLs are left untouched.
type mdLinkRewriter struct{}

func (t *mdLinkRewriter) Transform(doc *gast.Document, reader text.Reader, pc parser.Context) {
	_ = gast.Walk(doc, func(n gast.Node, entering bool) (gast.WalkStatus, error) {
		if !entering {
			return gast.WalkContinue, nil
		}
		if link, ok := n.(*gast.Link); ok {
			link.Destination = rewriteDestination(link.Destination)
		}
		return gast.WalkContinue, nil
	})
}

func rewriteDestination(dest []byte) []byte {
	if len(dest) == 0 || dest[0] == '#' {
		return dest
	}
	if bytes.HasPrefix(dest, []byte("//")) || bytes.Contains(dest, []byte("://")) || bytes.HasPrefix(dest, []byte("mailto:")) {
		return dest
	}

	pathEnd := len(dest)
	if i := bytes.IndexAny(dest, "#?"); i >= 0 {
		pathEnd = i
	}
	path, rest := dest[:pathEnd], dest[pathEnd:]
	if !bytes.HasSuffix(path, []byte(".md")) {
		return dest
	}

	out := make([]byte, 0, len(dest)+2)
	out = append(out, path[:len(path)-len(".md")]...)
	out = append(out, ".html"...)
	out = append(out, rest...)
	return out
}
