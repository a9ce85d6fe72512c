package index

import (
	"log/slog"
	"time"

	"github.com/starford/ansuz/internal/check"
	"github.com/starford/ansuz/internal/checksum"
	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/parser"
	"github.com/starford/ansuz/internal/storage"
)

// Sync walks the source tree and brings the index up to date:
//   - new/changed documents are parsed and upserted
//   - documents removed from disk are deleted from the index
func Sync(db *DB, store storage.Provider, logger *slog.Logger) error {
	metas, err := store.Documents("")
	if err != nil {
		return err
	}

	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	disk := make(map[string]struct{}, len(metas))
	for _, m := range metas {
		disk[m.Path] = struct{}{}

		if checksums[m.Path] == m.Checksum {
			continue
		}

		data, err := store.Read(m.Path)
		if err != nil {
			logger.Warn("sync: read failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		if err := indexDocument(db, m.Path, data); err != nil {
			logger.Warn("sync: index failed", slog.String("path", m.Path), slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: indexed", slog.String("path", m.Path))
		}
	}

	// Remove stale entries.
	for p := range checksums {
		if _, ok := disk[p]; !ok {
			if err := db.DeleteDocument(p); err != nil {
				logger.Warn("sync: delete failed", slog.String("path", p), slog.String("error", err.Error()))
			} else {
				logger.Debug("sync: removed stale", slog.String("path", p))
			}
		}
	}

	return nil
}

// indexDocument parses data and upserts it into the DB. Reference targets
// are resolved against the document's directory so incoming-reference
// queries can match on canonical tree paths; external targets are skipped.
func indexDocument(db *DB, path string, data []byte) error {
	res := parser.Parse(data)

	var refs []models.Reference
	for _, ref := range res.Refs {
		resolved, ok := check.Resolve(path, ref.Target)
		if !ok {
			continue
		}
		refs = append(refs, models.Reference{Target: resolved, Kind: ref.Kind, Line: ref.Line})
	}

	row := DocRow{
		Path:      path,
		Title:     res.Title,
		Icon:      res.Icon,
		Checksum:  checksum.Sum(data),
		UpdatedAt: time.Now(),
	}
	return db.UpsertDocument(row, res.Body, refs)
}
