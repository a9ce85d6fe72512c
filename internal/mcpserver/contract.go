package mcpserver

// AuthoringGuide describes the canonical Markdown page format that
// LLM consumers should follow when drafting documentation pages.
const AuthoringGuide = `# Ansuz Page Authoring Guide

Every Markdown page in an Ansuz documentation tree SHOULD follow this structure.

## Structure

` + "```" + `markdown
---
icon: thinking                      # OPTIONAL – icon shortcode name shown next to the title
title: Human-readable title         # OPTIONAL – overrides the first H1 in navigation
---

# Page heading

Body text in standard Markdown (GFM tables and strikethrough are supported).

Link to other pages with relative Markdown links: [Closures](closures.md)
or [Hooks](../react/hooks.md). Targets keep their .md extension; the build
rewrites them to .html.
` + "```" + `

## Rules

1. **Frontmatter is optional.** When present, the ` + "```" + `---` + "```" + ` fences must be the
   first thing in the file (no leading blank lines before the opening fence).
2. **Title resolution:** frontmatter ` + "`" + `title` + "`" + ` wins, then the first H1,
   then a title derived from the filename.
3. **File paths** end with ` + "`" + `.md` + "`" + ` and use forward slashes. A numeric
   prefix like ` + "`" + `01-intro.md` + "`" + ` controls ordering and is stripped from titles.
4. **Links and images are relative.** Never link above the documentation root;
   ` + "`" + `../` + "`" + ` escapes are reported as broken references.
5. **Encoding** is UTF-8 with a trailing newline.

## Admonitions

Callout blocks use the ` + "`" + `!!!` + "`" + ` marker with a 4-space-indented body:

` + "```" + `markdown
!!! warning "Watch out"
    The body is indented by four spaces and may contain
    any Markdown, including nested admonitions.
` + "```" + `

Recognized kinds: note, tip, warning, danger, question, answer, abstract,
success, info, quote, bug. An unrecognized kind still renders but is flagged
in the build report.

## Icon shortcodes

Inline tokens of the form ` + "`" + `:name:` + "`" + ` render as icons, e.g. ` + "`" + `:thinking:` + "`" + `
or ` + "`" + `:warning:` + "`" + `. Unknown names pass through as literal text.

## Code blocks

Fenced code blocks accept attributes after the language:

` + "```" + `markdown
` + "```" + `js title="demo.js" linenums="1"
let x = 1;
` + "```" + `
` + "```" + `

## Navigation

- ` + "`" + `index.md` + "`" + ` titles its directory in the sidebar.
- An optional ` + "`" + `.nav.yml` + "`" + ` file (a YAML list of names) pins sibling order;
  unlisted entries follow alphabetically.
`
