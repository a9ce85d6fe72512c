// Package site orchestrates a full build: enumerate documents, parse and
// render them in parallel, assemble navigation, emit the HTML tree, and run
// the integrity checker as a final reduce step. Builds are deterministic
// and idempotent; the document set is treated as an immutable snapshot.
package site

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/starford/ansuz/internal/check"
	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/nav"
	"github.com/starford/ansuz/internal/parser"
	"github.com/starford/ansuz/internal/render"
	"github.com/starford/ansuz/internal/report"
	"github.com/starford/ansuz/internal/storage"
)

// Options configures a Builder.
type Options struct {
	SiteTitle string
	Workers   int  // parallel render workers; 0 means GOMAXPROCS
	Reload    bool // inject the live-reload snippet into every page
}

// Builder runs build passes over a source tree.
type Builder struct {
	store    storage.Provider
	out      *storage.OutputDir
	renderer *render.Renderer
	logger   *slog.Logger
	opts     Options
}

// Result is the outcome of one build pass.
type Result struct {
	Pages  int
	Assets int
	Nav    *nav.Node
	Report *report.Report
}

// page carries one document through the parallel stage.
type page struct {
	meta     models.DocumentMeta
	doc      *models.Document
	html     []byte
	problems []report.Problem
}

// NewBuilder creates a Builder. out may be nil for check-only passes that
// should not write anything.
func NewBuilder(store storage.Provider, out *storage.OutputDir, renderer *render.Renderer, logger *slog.Logger, opts Options) *Builder {
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	return &Builder{store: store, out: out, renderer: renderer, logger: logger, opts: opts}
}

// Build runs a full pass. Content problems never abort the build; they are
// collected into the returned report. Only environment failures (I/O,
// cancellation) produce an error.
func (b *Builder) Build(ctx context.Context) (*Result, error) {
	metas, err := b.store.Documents("")
	if err != nil {
		return nil, err
	}
	files, err := b.store.Files()
	if err != nil {
		return nil, err
	}
	orders, err := b.store.Orders()
	if err != nil {
		return nil, err
	}

	// Parse and render every document in parallel. Each worker writes only
	// its own slot, so no synchronization is needed beyond the group wait.
	pages := make([]page, len(metas))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(b.opts.Workers)
	for i, m := range metas {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			p, err := b.renderDocument(m)
			if err != nil {
				return err
			}
			pages[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	rep := &report.Report{}
	entries := make([]nav.Entry, len(pages))
	for i, p := range pages {
		entries[i] = nav.Entry{Path: p.meta.Path, Title: p.doc.Title}
		rep.Add(p.problems...)
	}

	tree, navProblems := nav.Assemble(entries, orders)
	rep.Add(navProblems...)

	// Reference integrity is the single-threaded reduce step: it needs the
	// complete path set, nothing else.
	checker := check.New(files)
	for _, p := range pages {
		rep.Add(checker.Check(p.meta.Path, p.doc.Refs)...)
	}

	assets := 0
	if b.out != nil {
		if err := b.writePages(pages, tree); err != nil {
			return nil, err
		}
		assets, err = b.copyAssets(files)
		if err != nil {
			return nil, err
		}
	}

	rep.Sort()
	return &Result{Pages: len(pages), Assets: assets, Nav: tree, Report: rep}, nil
}

// renderDocument reads, parses, and renders a single document.
func (b *Builder) renderDocument(m models.DocumentMeta) (page, error) {
	data, err := b.store.Read(m.Path)
	if err != nil {
		return page{}, err
	}

	res := parser.Parse(data)
	doc := &models.Document{
		Path:        m.Path,
		Title:       res.Title,
		Icon:        res.Icon,
		Frontmatter: res.Frontmatter,
		Body:        res.Body,
		Refs:        res.Refs,
		Checksum:    m.Checksum,
		UpdatedAt:   m.UpdatedAt,
	}

	var problems []report.Problem
	if res.Malformed {
		problems = append(problems, report.Problem{
			Kind:   report.MalformedFrontmatter,
			Source: m.Path,
			Line:   1,
			Detail: "frontmatter block is unterminated or not valid YAML; treated as body",
		})
	}

	rendered, err := b.renderer.Render([]byte(res.Body))
	if err != nil {
		return page{}, fmt.Errorf("site: render %s: %w", m.Path, err)
	}
	for _, kind := range rendered.UnknownAdmonitions {
		problems = append(problems, report.Problem{
			Kind:   report.UnrecognizedAdmonition,
			Source: m.Path,
			Detail: fmt.Sprintf("admonition kind %q is not recognized; rendered as a generic callout", kind),
		})
	}

	return page{meta: m, doc: doc, html: rendered.HTML, problems: problems}, nil
}

// writePages emits one HTML file per document plus the shared stylesheet.
func (b *Builder) writePages(pages []page, tree *nav.Node) error {
	for _, p := range pages {
		outPath := htmlPath(p.meta.Path)
		title := p.doc.Title
		if title == "" {
			title = nav.TitleFromFilename(pathBase(p.meta.Path))
		}
		html, err := renderShell(shellData{
			SiteTitle: b.opts.SiteTitle,
			Title:     title,
			Icon:      p.doc.Icon,
			Depth:     strings.Count(p.meta.Path, "/"),
			Nav:       tree,
			Active:    p.meta.Path,
			Content:   p.html,
			Reload:    b.opts.Reload,
		})
		if err != nil {
			return fmt.Errorf("site: shell %s: %w", p.meta.Path, err)
		}
		if err := b.out.Write(outPath, html); err != nil {
			return err
		}
	}
	return b.out.Write(stylesheetPath, []byte(stylesheet))
}

// copyAssets mirrors every non-Markdown file into the output tree.
func (b *Builder) copyAssets(files map[string]struct{}) (int, error) {
	n := 0
	for f := range files {
		if strings.HasSuffix(f, ".md") {
			continue
		}
		if err := b.out.CopyFrom(b.store, f); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// htmlPath maps a document path to its rendered page path.
func htmlPath(docPath string) string {
	return strings.TrimSuffix(docPath, ".md") + ".html"
}

func pathBase(p string) string {
	if i := strings.LastIndexByte(p, '/'); i >= 0 {
		return p[i+1:]
	}
	return p
}
