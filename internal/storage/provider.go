package storage

import "github.com/starford/ansuz/internal/models"

// Provider abstracts read access to the Markdown source tree. Consumers
// depend on this interface rather than the concrete *FS type to facilitate
// testing with mocks.
type Provider interface {
	// Documents returns metadata for every Markdown document under dir
	// ("" for the whole tree). Ordering-file entries are not documents.
	Documents(dir string) ([]models.DocumentMeta, error)
	// Files returns the relative path of every regular file in the tree,
	// documents and assets alike.
	Files() (map[string]struct{}, error)
	// Read returns the raw bytes of a source file.
	Read(path string) ([]byte, error)
	// Exists reports whether a relative path names an existing file.
	Exists(path string) bool
	// Orders returns per-directory ordering-file entries, keyed by
	// directory path ("" for the root).
	Orders() (map[string][]string, error)
	// Root returns the absolute source root.
	Root() string
}

// Verify *FS satisfies Provider at compile time.
var _ Provider = (*FS)(nil)
