// Package nav derives the site navigation tree from the document set. The
// tree mirrors the directory layout and is recomputed on every build; it is
// never a source of truth on its own.
package nav

import (
	"fmt"
	"path"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/starford/ansuz/internal/report"
)

// OrderFile is the per-directory ordering file. It holds a plain YAML list
// of entry names; listed entries come first, the rest follow lexically.
const OrderFile = ".nav.yml"

// Entry is one document fed to the assembler.
type Entry struct {
	Path  string // slash-separated path relative to the source root
	Title string // frontmatter or H1 title; empty means derive from filename
}

// Node is a navigation tree node. Directory nodes have an empty Path and
// carry children; document nodes are leaves.
type Node struct {
	Title    string  `json:"title"`
	Path     string  `json:"path,omitempty"` // document path, empty for directories
	Children []*Node `json:"children,omitempty"`
}

// IsDir reports whether the node represents a directory.
func (n *Node) IsDir() bool { return n.Path == "" }

// Assemble builds the navigation tree for the given documents. orders maps a
// directory path ("" for the root) to the entry names listed in its ordering
// file. Sibling nodes resolving to the same display title are reported as
// problems; the tree is still produced.
func Assemble(entries []Entry, orders map[string][]string) (*Node, []report.Problem) {
	root := &Node{Title: "/"}
	dirs := map[string]*Node{"": root}

	byPath := make(map[string]Entry, len(entries))
	paths := make([]string, 0, len(entries))
	for _, e := range entries {
		byPath[e.Path] = e
		paths = append(paths, e.Path)
	}
	sort.Strings(paths)

	for _, p := range paths {
		e := byPath[p]
		dir := ensureDir(dirs, parentDir(p))
		title := e.Title
		if title == "" {
			title = TitleFromFilename(path.Base(p))
		}
		if path.Base(p) == "index.md" {
			// An index document names its directory instead of
			// appearing as a sibling leaf.
			dir.Title = title
			dir.Path = "" // directories stay directories
			dir.Children = append(dir.Children, &Node{Title: title, Path: p})
			continue
		}
		dir.Children = append(dir.Children, &Node{Title: title, Path: p})
	}

	var problems []report.Problem
	orderTree(root, "", orders)
	reportDuplicates(root, "", &problems)
	return root, problems
}

// ensureDir returns the node for dir, creating missing ancestors.
func ensureDir(dirs map[string]*Node, dir string) *Node {
	if n, ok := dirs[dir]; ok {
		return n
	}
	parent := ensureDir(dirs, parentDir(dir))
	n := &Node{Title: TitleFromFilename(path.Base(dir))}
	parent.Children = append(parent.Children, n)
	dirs[dir] = n
	return n
}

func parentDir(p string) string {
	d := path.Dir(p)
	if d == "." || d == "/" {
		return ""
	}
	return d
}

// orderTree sorts every directory's children: entries named in the ordering
// file first (in file order), everything else lexically by basename.
func orderTree(n *Node, dir string, orders map[string][]string) {
	rank := map[string]int{}
	for i, name := range orders[dir] {
		rank[name] = i + 1
	}

	sort.SliceStable(n.Children, func(i, j int) bool {
		a, b := baseName(n.Children[i], dir), baseName(n.Children[j], dir)
		ra, rb := rank[a], rank[b]
		switch {
		case ra > 0 && rb > 0:
			return ra < rb
		case ra > 0:
			return true
		case rb > 0:
			return false
		default:
			return a < b
		}
	})

	for _, c := range n.Children {
		if c.IsDir() {
			orderTree(c, childDir(dir, c), orders)
		}
	}
}

// baseName returns the filesystem name of a child within dir: the document
// filename for leaves, the directory name for directory nodes.
func baseName(n *Node, dir string) string {
	if !n.IsDir() {
		return path.Base(n.Path)
	}
	// Directory nodes do not store their path; recover the name from any
	// descendant leaf.
	if leaf := firstLeaf(n); leaf != nil {
		rel := strings.TrimPrefix(leaf.Path, dir)
		rel = strings.TrimPrefix(rel, "/")
		if i := strings.IndexByte(rel, '/'); i >= 0 {
			return rel[:i]
		}
	}
	return n.Title
}

func childDir(dir string, c *Node) string {
	name := baseName(c, dir)
	if dir == "" {
		return name
	}
	return dir + "/" + name
}

func firstLeaf(n *Node) *Node {
	if !n.IsDir() {
		return n
	}
	for _, c := range n.Children {
		if leaf := firstLeaf(c); leaf != nil {
			return leaf
		}
	}
	return nil
}

// reportDuplicates walks the tree and flags sibling nodes sharing a display
// title. Paths stay unique, so navigation still functions.
func reportDuplicates(n *Node, dir string, problems *[]report.Problem) {
	seen := map[string]string{}
	for _, c := range n.Children {
		source := c.Path
		if source == "" {
			source = dir
		}
		if prev, ok := seen[c.Title]; ok {
			*problems = append(*problems, report.Problem{
				Kind:   report.DuplicateNavigationTitle,
				Source: source,
				Detail: fmt.Sprintf("title %q also used by %q", c.Title, prev),
			})
		} else {
			seen[c.Title] = source
		}
		if c.IsDir() {
			reportDuplicates(c, childDir(dir, c), problems)
		}
	}
}

var orderPrefixRe = regexp.MustCompile(`^\d+\s*[-.]\s*`)

// TitleFromFilename derives a display title from a file or directory name:
// the extension and any numeric ordering prefix (`01 - `, `2.`) are
// stripped, separators become spaces, and the first letter is capitalized.
func TitleFromFilename(name string) string {
	stem := strings.TrimSuffix(name, path.Ext(name))
	clean := orderPrefixRe.ReplaceAllString(stem, "")
	if clean == "" {
		clean = stem
	}
	clean = strings.NewReplacer("-", " ", "_", " ").Replace(clean)
	clean = strings.Join(strings.Fields(clean), " ")
	if clean == "" {
		return stem
	}
	if r, _ := utf8.DecodeRuneInString(clean); r < utf8.RuneSelf {
		return strings.ToUpper(clean[:1]) + clean[1:]
	}
	return clean
}
