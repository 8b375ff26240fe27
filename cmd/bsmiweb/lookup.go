package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cwhuang/bsmiweb/internal/log"
	"github.com/cwhuang/bsmiweb/internal/lookup"
	"github.com/cwhuang/bsmiweb/internal/model"
	"github.com/cwhuang/bsmiweb/internal/report"
)

// errConflictingFormats is returned when both --json and --markdown are set.
var errConflictingFormats = errors.New("conflicting output formats: --json and --markdown cannot be used together")

// noopEnqueuer discards refresh requests. The one-shot CLI exits before a
// background refresh could complete, so stale records are either served
// as-is or re-fetched synchronously via --refresh.
type noopEnqueuer struct{}

func (noopEnqueuer) Enqueue(_ model.Mark) bool { return false }

// NewLookupCmd creates the lookup command.
func NewLookupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lookup <mark-code>",
		Short: "Look up a registration mark code",
		Long: `Lookup resolves a registration mark code (e.g. R45879) to its vendor
record, certificates, and any resale authorizations.

The record is served from the local cache when present; otherwise it is
scraped from the BSMI lookup service and cached.

Examples:
  # Human-readable output
  bsmiweb lookup R45879

  # JSON output for scripting
  bsmiweb lookup --json R45879

  # Markdown output written to a file
  bsmiweb lookup --markdown -o report.md R45879

  # Bypass the cache and re-scrape the origin
  bsmiweb lookup --refresh R45879`,
		Args: cobra.ExactArgs(1),
		RunE: runLookupCmd,
	}

	cmd.Flags().String("db", "", "SQLite database file path (default XDG data dir, or $DATABASE_URL)")
	cmd.Flags().BoolP("json", "j", false, "Output JSON (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false, "Output Markdown (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "", "Write output to specified file path")
	cmd.Flags().BoolP("refresh", "r", false, "Re-scrape the origin even if a cached record exists")

	return cmd
}

// runLookupCmd executes the lookup command.
func runLookupCmd(cmd *cobra.Command, args []string) error {
	mark, err := model.NewMark(args[0])
	if err != nil {
		return fmt.Errorf("invalid mark code %q: %w", args[0], err)
	}

	jsonOut, _ := cmd.Flags().GetBool("json")
	markdownOut, _ := cmd.Flags().GetBool("markdown")
	if jsonOut && markdownOut {
		return errConflictingFormats
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if db, err := cmd.Flags().GetString("db"); err == nil && db != "" {
		cfg.DBPath = db
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := log.NewLogger(os.Stderr, cfg.Verbose)

	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	scraper := newScraper(cfg)
	svc := lookup.NewService(db, scraper, noopEnqueuer{},
		lookup.WithFreshness(cfg.Freshness),
		lookup.WithLogger(logger),
	)

	if refreshFlag, _ := cmd.Flags().GetBool("refresh"); refreshFlag {
		reg, err := scraper.FetchRecord(cmd.Context(), mark)
		if err != nil {
			return fmt.Errorf("failed to fetch registration: %w", err)
		}
		if reg == nil {
			return lookup.ErrNotFound
		}
		if err := db.UpsertRegistration(cmd.Context(), reg); err != nil {
			return fmt.Errorf("failed to store registration: %w", err)
		}
	}

	result, err := svc.Lookup(cmd.Context(), mark)
	if err != nil {
		return err
	}

	output := cmd.OutOrStdout()
	if path, _ := cmd.Flags().GetString("output"); path != "" {
		f, err := createOutputFile(path)
		if err != nil {
			return err
		}
		defer f.Close()
		output = f
	}

	var w report.Writer
	switch {
	case jsonOut:
		w = report.NewJSONWriter(output)
	case markdownOut:
		w = report.NewMarkdownWriter(output)
	default:
		w = report.NewSimpleWriter(output)
	}

	if _, err := w.Write(result); err != nil {
		return fmt.Errorf("failed to write result: %w", err)
	}
	return nil
}

// createOutputFile creates the output file, including parent directories.
func createOutputFile(path string) (io.WriteCloser, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}
	f, err := os.Create(path) //nolint:gosec // User-provided output path is intentional
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, nil
}
