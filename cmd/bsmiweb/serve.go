package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/cwhuang/bsmiweb/internal/bsmi"
	"github.com/cwhuang/bsmiweb/internal/config"
	"github.com/cwhuang/bsmiweb/internal/database"
	"github.com/cwhuang/bsmiweb/internal/log"
	"github.com/cwhuang/bsmiweb/internal/lookup"
	"github.com/cwhuang/bsmiweb/internal/refresh"
	"github.com/cwhuang/bsmiweb/internal/server"
)

// shutdownTimeout bounds how long in-flight requests may run after a
// shutdown signal.
const shutdownTimeout = 10 * time.Second

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the registration lookup HTTP server",
		Long: `Serve runs the HTTP server exposing cached registration lookups.

Routes:
  GET /bsmi/{id}      look up a registration mark code
  GET /taxid/{taxId}  list registrations sharing a tax identifier
  GET /sitemap.xml    every known mark code (requires --base-url)
  GET /healthz        liveness probe

Records are scraped from the BSMI lookup service on first access. Stale
records are served immediately while a background worker refreshes them.

Examples:
  # Serve on the default port 3000
  bsmiweb serve

  # Serve on a custom address with a public base URL
  bsmiweb serve --listen :8080 --base-url https://bsmi.example.com

  # Emit JSON logs for aggregation
  bsmiweb serve --json-log`,
		Args: cobra.NoArgs,
		RunE: runServeCmd,
	}

	cmd.Flags().StringP("listen", "l", "", "Listen address (default :3000, or $PORT)")
	cmd.Flags().String("db", "", "SQLite database file path (default XDG data dir, or $DATABASE_URL)")
	cmd.Flags().String("base-url", "", "Public base URL for sitemap links")
	cmd.Flags().Duration("freshness", 0, "How long stored records are served without re-scraping (default 24h)")
	cmd.Flags().Bool("json-log", false, "Emit JSON-formatted logs")

	return cmd
}

// runServeCmd executes the serve command.
func runServeCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := applyServeFlags(cmd, cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := log.NewLogger(os.Stderr, cfg.Verbose)
	if cfg.JSONLog {
		logger = log.NewJSONLogger(os.Stderr, cfg.Verbose)
	}

	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	scraper := newScraper(cfg)
	refresher := refresh.New(scraper, db,
		refresh.WithWorkers(cfg.RefreshWorkers),
		refresh.WithQueueSize(cfg.RefreshQueueSize),
		refresh.WithLogger(logger),
	)
	svc := lookup.NewService(db, scraper, refresher,
		lookup.WithFreshness(cfg.Freshness),
		lookup.WithLogger(logger),
	)
	srv := server.New(svc, db,
		server.WithBaseURL(cfg.BaseURL),
		server.WithLogger(logger),
	)

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	go func() {
		if err := refresher.Run(ctx); err != nil {
			logger.Error("refresh workers stopped", "error", err)
		}
	}()

	httpSrv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpSrv.ListenAndServe()
	}()
	logger.Info("listening", "addr", cfg.ListenAddr, "db", cfg.DBPath)

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown failed: %w", err)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	}
}

// applyServeFlags overrides config values from serve command flags.
func applyServeFlags(cmd *cobra.Command, cfg *config.Config) error {
	if listen, err := cmd.Flags().GetString("listen"); err == nil && listen != "" {
		cfg.ListenAddr = listen
	}
	if db, err := cmd.Flags().GetString("db"); err == nil && db != "" {
		cfg.DBPath = db
	}
	if baseURL, err := cmd.Flags().GetString("base-url"); err == nil && baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if freshness, err := cmd.Flags().GetDuration("freshness"); err == nil && freshness > 0 {
		cfg.Freshness = freshness
	}
	if jsonLog, err := cmd.Flags().GetBool("json-log"); err == nil && jsonLog {
		cfg.JSONLog = true
	}
	return nil
}

// openDatabase opens the SQLite store at the configured path, creating
// the parent directory when needed.
func openDatabase(cfg *config.Config) (*database.RegDB, error) {
	if dir := filepath.Dir(cfg.DBPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := database.OpenPath(cfg.DBPath, database.DefaultOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

// newScraper builds the registration scraper from the configuration.
func newScraper(cfg *config.Config) *bsmi.Scraper {
	client := bsmi.NewClient(
		bsmi.WithTimeout(cfg.Timeout),
		bsmi.WithUserAgent(cfg.UserAgent),
	)

	var opts []bsmi.ScraperOption
	if cfg.LookupURL != "" {
		opts = append(opts, bsmi.WithLookupURL(cfg.LookupURL))
	}
	return bsmi.NewScraper(client, opts...)
}
