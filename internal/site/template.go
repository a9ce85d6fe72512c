package site

import (
	"bytes"
	"html"
	"html/template"
	"strings"

	"github.com/starford/ansuz/internal/nav"
)

const stylesheetPath = "assets/ansuz.css"

const shellHTML = `<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{if .Title}}{{.Title}} · {{end}}{{.SiteTitle}}</title>
<link rel="stylesheet" href="{{.CSS}}">
</head>
<body>
<div class="layout">
<nav class="sidebar">
{{.NavHTML}}
</nav>
<main class="content">
{{.Content}}
</main>
</div>
{{if .Reload}}<script>new EventSource("/api/events").addEventListener("site.rebuilt",function(){location.reload()});</script>
{{end}}</body>
</html>
`

var shellTmpl = template.Must(template.New("shell").Parse(shellHTML))

type shellData struct {
	SiteTitle string
	Title     string
	Icon      string
	Depth     int
	Nav       *nav.Node
	Active    string
	Content   []byte
	Reload    bool
}

// renderShell wraps rendered document HTML in the site shell. Output depends
// only on the inputs, keeping full builds byte-identical run to run.
func renderShell(d shellData) ([]byte, error) {
	prefix := strings.Repeat("../", d.Depth)

	var sb strings.Builder
	navList(&sb, d.Nav, prefix, d.Active)

	var buf bytes.Buffer
	err := shellTmpl.Execute(&buf, map[string]any{
		"SiteTitle": d.SiteTitle,
		"Title":     d.Title,
		"CSS":       prefix + stylesheetPath,
		"NavHTML":   template.HTML(sb.String()),
		"Content":   template.HTML(d.Content),
		"Reload":    d.Reload,
	})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// navList writes the navigation tree as nested lists. Directory nodes link
// through their index document when one exists; the index leaf itself is
// then omitted from the children.
func navList(sb *strings.Builder, n *nav.Node, prefix, active string) {
	if len(n.Children) == 0 {
		return
	}
	sb.WriteString("<ul>\n")
	for _, c := range n.Children {
		if c.IsDir() {
			index := indexChild(c)
			sb.WriteString(`<li class="section">`)
			if index != nil {
				navLink(sb, c.Title, prefix+htmlPath(index.Path), index.Path == active)
			} else {
				sb.WriteString("<span>" + html.EscapeString(c.Title) + "</span>")
			}
			sb.WriteString("\n")
			navChildren(sb, c, prefix, active, index)
			sb.WriteString("</li>\n")
			continue
		}
		sb.WriteString("<li>")
		navLink(sb, c.Title, prefix+htmlPath(c.Path), c.Path == active)
		sb.WriteString("</li>\n")
	}
	sb.WriteString("</ul>\n")
}

// navChildren renders a directory's children, skipping the index leaf that
// already labels the directory itself.
func navChildren(sb *strings.Builder, dir *nav.Node, prefix, active string, index *nav.Node) {
	rest := &nav.Node{Title: dir.Title}
	for _, c := range dir.Children {
		if c == index {
			continue
		}
		rest.Children = append(rest.Children, c)
	}
	navList(sb, rest, prefix, active)
}

func navLink(sb *strings.Builder, title, href string, active bool) {
	if active {
		sb.WriteString(`<a class="active" href="`)
	} else {
		sb.WriteString(`<a href="`)
	}
	sb.WriteString(html.EscapeString(href))
	sb.WriteString(`">`)
	sb.WriteString(html.EscapeString(title))
	sb.WriteString("</a>")
}

// indexChild returns the leaf for the directory's index document, if any.
func indexChild(dir *nav.Node) *nav.Node {
	for _, c := range dir.Children {
		if !c.IsDir() && (c.Path == "index.md" || strings.HasSuffix(c.Path, "/index.md")) {
			return c
		}
	}
	return nil
}

// stylesheet is the single built-in theme: enough styling for admonitions,
// code block captions, line numbers, and the sidebar to be usable without
// any external assets.
const stylesheet = `body{margin:0;font-family:system-ui,sans-serif;line-height:1.6;color:#222}
.layout{display:flex;min-height:100vh}
.sidebar{width:260px;padding:1rem;background:#f6f6f6;border-right:1px solid #ddd;overflow-y:auto}
.sidebar ul{list-style:none;padding-left:1rem;margin:0}
.sidebar a{color:#222;text-decoration:none;display:block;padding:.15rem 0}
.sidebar a.active{font-weight:700}
.sidebar .section>span{font-weight:600;display:block;padding:.15rem 0}
.content{flex:1;max-width:52rem;padding:2rem}
pre{background:#f2f2f2;padding:.75rem;overflow-x:auto;border-radius:4px}
code{font-family:ui-monospace,monospace;font-size:.92em}
.ln{display:inline-block;width:2.5em;color:#999;user-select:none;text-align:right;padding-right:.75em}
.codeblock{margin:1rem 0}
.codeblock-title{background:#e8e8e8;padding:.35rem .75rem;font-family:ui-monospace,monospace;font-size:.85em;border-radius:4px 4px 0 0}
.codeblock pre{margin:0;border-radius:0 0 4px 4px}
.admonition{border-left:4px solid #448aff;border-radius:4px;background:#f8f9fb;padding:.6rem 1rem;margin:1rem 0}
.admonition-title{font-weight:700;margin:.2rem 0}
.admonition.warning,.admonition.danger,.admonition.bug{border-left-color:#ff5252}
.admonition.tip,.admonition.success{border-left-color:#00c853}
.admonition.question,.admonition.answer{border-left-color:#64dd17}
.admonition.abstract,.admonition.info,.admonition.quote{border-left-color:#00b0ff}
.icon{display:inline-block}
table{border-collapse:collapse}
td,th{border:1px solid #ddd;padding:.3rem .6rem}
img{max-width:100%}
`
