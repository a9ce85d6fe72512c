package index

import "github.com/starford/ansuz/internal/models"

// DocIndex defines the interface for document indexing operations.
// Consumers should depend on this interface rather than the concrete *DB
// type to facilitate testing with mocks.
type DocIndex interface {
	UpsertDocument(d DocRow, body string, refs []models.Reference) error
	DeleteDocument(path string) error
	GetChecksum(path string) (string, error)
	ListDocuments(limit, offset int, sort string) ([]DocRow, int, error)
	Search(query string, limit int) ([]SearchResult, error)
	IncomingRefs(target string) ([]string, error)
	AllPaths() (map[string]struct{}, error)
	AllChecksums() (map[string]string, error)
	Close() error
}

// Verify *DB satisfies DocIndex at compile time.
var _ DocIndex = (*DB)(nil)
