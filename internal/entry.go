// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/mindvault/internal/api"
	"github.com/starford/mindvault/internal/cardservice"
	"github.com/starford/mindvault/internal/index"
	"github.com/starford/mindvault/internal/logging"
	"github.com/starford/mindvault/internal/mcpserver"
	"github.com/starford/mindvault/internal/metrics"
	"github.com/starford/mindvault/internal/search"
	"github.com/starford/mindvault/internal/sse"
	"github.com/starford/mindvault/internal/storage"
)

// core is the storage, index and service stack shared by every run mode.
type core struct {
	store *storage.FS
	db    *index.DB
	svc   *cardservice.Service
}

func (c *core) Close() error {
	return c.db.Close()
}

func openCore(cfg *Config, logger *slog.Logger, opts ...cardservice.Option) (*core, error) {
	// Ensure vault directory exists.
	if err := os.MkdirAll(cfg.Vault.Path, 0o755); err != nil {
		return nil, fmt.Errorf("create vault dir: %w", err)
	}

	store, err := storage.NewFS(cfg.Vault.Path)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	db, err := index.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, fmt.Errorf("init index: %w", err)
	}

	if err := index.Sync(db, store, logger); err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}

	searcher := search.New(
		search.WithLogger(logger),
		search.WithBlankQuery(cfg.Search.BlankQuery),
		search.WithMaxQueryLength(cfg.Search.MaxQueryLength),
	)
	opts = append([]cardservice.Option{cardservice.WithLogger(logger)}, opts...)
	svc := cardservice.New(store, db, searcher, opts...)

	return &core{store: store, db: db, svc: svc}, nil
}

func newLogger(cfg *Config, w io.Writer) *slog.Logger {
	logger := logging.NewJSON(w, cfg.App.LogLevel)
	slog.SetDefault(logger)
	return logger
}

// Run starts the HTTP server and the vault watcher with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	logger := newLogger(cfg, os.Stdout)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("vault_path", cfg.Vault.Path),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("log_level", cfg.App.LogLevel.String()),
		slog.String("blank_query", cfg.Search.BlankQuery),
		slog.Duration("events_throttle", cfg.Events.Throttle))

	broker := sse.NewBroker(cfg.Events.Throttle, logger)
	defer broker.Close()

	c, err := openCore(cfg, logger, cardservice.WithPublisher(broker))
	if err != nil {
		return err
	}
	defer c.Close()

	apiRouter := api.NewRouter(c.svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker, logger)

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware())

	// Health check and metrics endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, req *http.Request) {
		if err := c.db.Ping(req.Context()); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"index unavailable"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", metrics.Handler())

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Start file watcher with SSE callback.
	g.Go(func() error {
		err := index.Watch(gCtx, c.db, c.store, c.store.Root(), logger, func(ev index.Event) {
			broker.PublishCardEvent(ev.Kind, ev.ID, ev.Path)
		})
		if err != nil {
			logger.Error("watcher stopped", slog.String("error", err.Error()))
		}
		return nil
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
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		// SSE streams only end when their clients go away; closing the
		// broker first lets Shutdown finish.
		broker.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// errShutdown cancels the errgroup context so the watcher stops with the
// server.
var errShutdown = errors.New("shutdown")

// RunMCP serves the card search tools over stdio. Logs go to stderr because
// stdout carries the protocol.
func RunMCP(_ context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config
	logger := newLogger(cfg, os.Stderr)

	c, err := openCore(cfg, logger)
	if err != nil {
		return err
	}
	defer c.Close()

	srv := mcpserver.New(c.svc, app.version,
		mcpserver.WithLogger(logger),
		mcpserver.WithResultLimit(cfg.Search.MCPResultLimit),
	)
	logger.Info("MCP server starting", slog.String("vault_path", cfg.Vault.Path))
	if err := srv.ServeStdio(); err != nil {
		return fmt.Errorf("mcp: serve: %w", err)
	}
	return nil
}

// Search runs one card query against the vault. With outside set it returns
// the cards not in groupID; otherwise it searches the workspace, restricted
// to groupID when one is given.
func Search(ctx context.Context, query, groupID string, outside bool, opts ...Option) (search.Result, error) {
	app, err := newApplication(opts)
	if err != nil {
		return search.Result{}, err
	}
	logger := newLogger(app.config, os.Stderr)

	c, err := openCore(app.config, logger)
	if err != nil {
		return search.Result{}, err
	}
	defer c.Close()

	if outside {
		return c.svc.SearchOutside(ctx, query, groupID)
	}
	return c.svc.Search(ctx, query, groupID, search.TagFilter{})
}
