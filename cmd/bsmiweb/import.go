package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cwhuang/bsmiweb/internal/bsmi"
	"github.com/cwhuang/bsmiweb/internal/importer"
	"github.com/cwhuang/bsmiweb/internal/log"
)

// NewImportCmd creates the import command.
func NewImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import the resale authorization open-data feed",
		Long: `Import downloads the BSMI resale authorization feed from the government
open-data portal and replaces the locally stored dataset with it.

The feed is a single XML document of around a hundred thousand rows.
The import is atomic: a failed run leaves the previous dataset intact.

Examples:
  # Import into the default database
  bsmiweb import

  # Import into a specific database file
  bsmiweb import --db /var/lib/bsmiweb/data.db`,
		Args: cobra.NoArgs,
		RunE: runImportCmd,
	}

	cmd.Flags().String("db", "", "SQLite database file path (default XDG data dir, or $DATABASE_URL)")
	cmd.Flags().String("url", "", "Feed download URL (default: the BSMI open-data endpoint)")
	cmd.Flags().Int("batch", 0, "Rows per insert batch (default 1000)")

	return cmd
}

// runImportCmd executes the import command.
func runImportCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if db, err := cmd.Flags().GetString("db"); err == nil && db != "" {
		cfg.DBPath = db
	}
	if url, err := cmd.Flags().GetString("url"); err == nil && url != "" {
		cfg.FeedURL = url
	}
	if batch, err := cmd.Flags().GetInt("batch"); err == nil && batch > 0 {
		cfg.ImportBatchSize = batch
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

	// The open-data endpoint serves a certificate chain the system roots
	// reject, so verification is relaxed for this one client.
	client := bsmi.NewClient(
		bsmi.WithTimeout(cfg.Timeout),
		bsmi.WithUserAgent(cfg.UserAgent),
		bsmi.WithInsecureTLS(),
	)

	var opts []importer.Option
	if cfg.FeedURL != "" {
		opts = append(opts, importer.WithFeedURL(cfg.FeedURL))
	}
	opts = append(opts,
		importer.WithBatchSize(cfg.ImportBatchSize),
		importer.WithOutput(cmd.OutOrStdout()),
		importer.WithLogger(logger),
	)

	result, err := importer.New(client, db, opts...).ImportAll(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Done: %d authorizations imported\n", result.RowsImported)
	return nil
}
