package internal

import (
	"context"
	"fmt"

	"github.com/starford/ansuz/internal/index"
	"github.com/starford/ansuz/internal/mcpserver"
	"github.com/starford/ansuz/internal/storage"
)

// RunMCP serves the documentation tools over MCP stdio. The index is
// synced once at startup so search and reference lookups are current.
func RunMCP(_ context.Context, cfg *Config) error {
	logger := newLogger(cfg.App.LogLevel)

	store, err := storage.NewFS(cfg.Source.Path)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}
	db, err := index.Open(cfg.SQLite.Path)
	if err != nil {
		return fmt.Errorf("init index: %w", err)
	}
	defer db.Close()

	if err := index.Sync(db, store, logger); err != nil {
		return fmt.Errorf("sync index: %w", err)
	}

	srv := mcpserver.New(store, db)
	return srv.ServeStdio()
}
