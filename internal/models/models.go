// Package models defines the domain types for Ansuz.
package models

import "time"

// Reference kinds.
const (
	RefKindLink  = "link"
	RefKindImage = "image"
)

// Document represents a parsed Markdown file in the source tree.
type Document struct {
	Path        string                 `json:"path"`
	Title       string                 `json:"title,omitempty"`
	Icon        string                 `json:"icon,omitempty"`
	Frontmatter map[string]interface{} `json:"frontmatter,omitempty"`
	Body        string                 `json:"body"`
	Refs        []Reference            `json:"refs,omitempty"`
	Checksum    string                 `json:"checksum"`
	UpdatedAt   time.Time              `json:"updated_at"`
}

// DocumentMeta is a lightweight representation returned by list operations.
type DocumentMeta struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Reference is a relative link or image reference from one document to
// another file in the tree. Line is 1-based within the source file.
type Reference struct {
	Target string `json:"target"`
	Kind   string `json:"kind"` // "link" or "image"
	Line   int    `json:"line"`
}
