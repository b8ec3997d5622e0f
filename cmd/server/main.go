/*
main.go - Application entry point

PURPOSE:
  Starts the leave entitlement API server. Handles configuration, store
  selection, optional seeding and graceful shutdown.

STARTUP SEQUENCE:
  1. Load environment configuration, apply command-line overrides
  2. Open the record store (sqlite or memory)
  3. Import the seed dataset, if any
  4. Configure HTTP router
  5. Start server with graceful shutdown

COMMAND-LINE FLAGS (override the environment):
  -addr    listen address              APP_ADDR     (default :8080)
  -store   sqlite | memory             STORE        (default sqlite)
  -db      SQLite database path        DB_PATH      (default leave.db)
           Use ":memory:" for a throwaway database
  -seed    JSON dataset loaded at boot SEED_FILE

  LOG_LEVEL, CORS_ORIGINS, APP_ENV and SHUTDOWN_TIMEOUT are env only.

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (SHUTDOWN_TIMEOUT)
  3. Close the store
  4. Exit

EXAMPLES:
  ./server -db="./data/leave.db" -seed=./data/export.json
  ./server -store=memory -seed=./testdata/organization.json

SEE ALSO:
  - config/config.go: Environment variables
  - api/server.go: Router configuration
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/offday/leave-engine/api"
	"github.com/offday/leave-engine/config"
	"github.com/offday/leave-engine/entitlement"
	"github.com/offday/leave-engine/factory"
	"github.com/offday/leave-engine/store/memory"
	"github.com/offday/leave-engine/store/sqlite"
)

// recordStore is what the server needs from a backend.
type recordStore interface {
	entitlement.Source
	entitlement.Importer
}

func main() {
	cfg := config.Load()

	// Flags
	flag.StringVar(&cfg.Addr, "addr", cfg.Addr, "HTTP listen address")
	flag.StringVar(&cfg.Store, "store", cfg.Store, "record store: sqlite or memory")
	flag.StringVar(&cfg.DBPath, "db", cfg.DBPath, "SQLite database path")
	flag.StringVar(&cfg.SeedFile, "seed", cfg.SeedFile, "JSON dataset imported at startup")
	flag.Parse()

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(2)
	}
	level, _ := cfg.SlogLevel()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server failed", "err", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *slog.Logger) error {
	store, closeStore, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	if cfg.SeedFile != "" {
		if err := seed(context.Background(), store, cfg.SeedFile, logger); err != nil {
			return err
		}
	}

	handler := api.NewHandler(store, logger)
	router := api.NewRouter(handler, cfg.CORSOrigins)

	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", cfg.Addr, "store", cfg.Store, "env", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}

	logger.Info("server stopped")
	return nil
}

func openStore(cfg config.Config) (recordStore, func(), error) {
	if cfg.Store == config.StoreMemory {
		return memory.NewMemory(), func() {}, nil
	}
	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("initialize database: %w", err)
	}
	return store, func() { store.Close() }, nil
}

func seed(ctx context.Context, store entitlement.Importer, path string, logger *slog.Logger) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()

	ds, err := factory.NewDatasetFactory().Decode(f)
	if err != nil {
		return fmt.Errorf("seed %s: %w", path, err)
	}
	if err := store.Import(ctx, ds); err != nil {
		return fmt.Errorf("seed %s: %w", path, err)
	}
	logger.Info("seed imported", "file", path, "employees", len(ds.Employees), "requests", len(ds.Requests), "grants", len(ds.Grants))
	return nil
}
