// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/ansuz/internal/api"
	"github.com/starford/ansuz/internal/docservice"
	"github.com/starford/ansuz/internal/index"
	"github.com/starford/ansuz/internal/render"
	"github.com/starford/ansuz/internal/site"
	"github.com/starford/ansuz/internal/sse"
	"github.com/starford/ansuz/internal/storage"
)

// rebuildDelay coalesces bursts of file events into a single build pass.
const rebuildDelay = 300 * time.Millisecond

// newLogger initializes the structured JSON logger and installs it as the
// process default.
func newLogger(level slog.Level) *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
	return logger
}

// newBuilder wires storage and rendering for a build pass. out may be nil
// for check-only passes.
func newBuilder(cfg *Config, out *storage.OutputDir, reload bool, logger *slog.Logger) (*site.Builder, storage.Provider, error) {
	store, err := storage.NewFS(cfg.Source.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("init storage: %w", err)
	}
	renderer := render.New(render.Options{})
	b := site.NewBuilder(store, out, renderer, logger, site.Options{
		SiteTitle: cfg.Site.Title,
		Workers:   cfg.Site.Workers,
		Reload:    reload,
	})
	return b, store, nil
}

// Build runs one full build pass into the configured output directory.
func Build(ctx context.Context, cfg *Config) (*site.Result, error) {
	logger := newLogger(cfg.App.LogLevel)

	out, err := storage.NewOutputDir(cfg.Output.Path)
	if err != nil {
		return nil, fmt.Errorf("init output: %w", err)
	}
	b, _, err := newBuilder(cfg, out, false, logger)
	if err != nil {
		return nil, err
	}

	res, err := b.Build(ctx)
	if err != nil {
		return nil, err
	}
	logger.Info("Build complete",
		slog.Int("pages", res.Pages),
		slog.Int("assets", res.Assets),
		slog.Int("problems", len(res.Report.Problems)))
	res.Report.Log(logger)
	return res, nil
}

// Check runs a validation-only pass: everything Build does except writing
// the output tree.
func Check(ctx context.Context, cfg *Config) (*site.Result, error) {
	logger := newLogger(cfg.App.LogLevel)

	b, _, err := newBuilder(cfg, nil, false, logger)
	if err != nil {
		return nil, err
	}

	res, err := b.Build(ctx)
	if err != nil {
		return nil, err
	}
	logger.Info("Check complete",
		slog.Int("pages", res.Pages),
		slog.Int("problems", len(res.Report.Problems)))
	res.Report.Log(logger)
	return res, nil
}

// Search opens the index and runs a full-text query. The index is synced
// first so results reflect the current tree.
func Search(ctx context.Context, cfg *Config, query string, limit int) ([]index.SearchResult, error) {
	logger := newLogger(cfg.App.LogLevel)

	store, err := storage.NewFS(cfg.Source.Path)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}
	db, err := index.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, fmt.Errorf("init index: %w", err)
	}
	defer db.Close()

	if err := index.Sync(db, store, logger); err != nil {
		return nil, fmt.Errorf("sync index: %w", err)
	}
	return db.Search(query, limit)
}

// Run starts the preview server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	logger := newLogger(cfg.App.LogLevel)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("source_path", cfg.Source.Path),
		slog.String("output_path", cfg.Output.Path),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// Initialize output and builder (live-reload snippet enabled).
	out, err := storage.NewOutputDir(cfg.Output.Path)
	if err != nil {
		return fmt.Errorf("init output: %w", err)
	}
	builder, store, err := newBuilder(cfg, out, true, logger)
	if err != nil {
		return err
	}

	// Initialize SQLite index.
	db, err := index.Open(cfg.SQLite.Path)
	if err != nil {
		return fmt.Errorf("init index: %w", err)
	}
	defer db.Close()

	// Run initial sync.
	if err := index.Sync(db, store, logger); err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}

	// Initial build. The latest result is shared with the API handlers.
	var mu sync.Mutex
	var latest *site.Result
	snapshot := func() *site.Result {
		mu.Lock()
		defer mu.Unlock()
		return latest
	}
	res, err := builder.Build(ctx)
	if err != nil {
		return fmt.Errorf("initial build: %w", err)
	}
	latest = res
	logger.Info("Initial build complete",
		slog.Int("pages", res.Pages),
		slog.Int("problems", len(res.Report.Problems)))
	res.Report.Log(logger)

	// SSE broker.
	broker := sse.NewBroker(2 * time.Second)

	// Build API service and router.
	svc := docservice.NewService(store, db)
	apiRouter := api.NewRouter(svc, api.BuildSnapshot(snapshot), cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	// Serve the generated site at the root.
	r.Handle("/*", http.FileServer(http.Dir(out.Root())))

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Rebuild requests from the watcher, coalesced below.
	rebuildCh := make(chan struct{}, 1)
	requestRebuild := func() {
		select {
		case rebuildCh <- struct{}{}:
		default:
		}
	}

	// Start file watcher with SSE callback.
	g.Go(func() error {
		err := index.Watch(gCtx, db, store, cfg.Source.Path, logger, func(kind, path string) {
			broker.PublishDocEvent(kind, path)
			requestRebuild()
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("watcher error: %w", err)
		}
		return nil
	})

	// Rebuild loop: debounce bursts, rebuild, publish site.rebuilt.
	g.Go(func() error {
		var timer *time.Timer
		var fire <-chan time.Time
		for {
			select {
			case <-gCtx.Done():
				return nil
			case <-rebuildCh:
				if timer == nil {
					timer = time.NewTimer(rebuildDelay)
					fire = timer.C
				} else {
					timer.Reset(rebuildDelay)
				}
			case <-fire:
				res, err := builder.Build(gCtx)
				if err != nil {
					if errors.Is(err, context.Canceled) {
						return nil
					}
					logger.Error("rebuild failed", slog.String("error", err.Error()))
					continue
				}
				mu.Lock()
				latest = res
				mu.Unlock()
				logger.Info("Rebuild complete",
					slog.Int("pages", res.Pages),
					slog.Int("problems", len(res.Report.Problems)))
				broker.PublishRebuilt()
			}
		}
	})

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		broker.Close()
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}
