package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cwhuang/bsmiweb/internal/config"
)

// NewRootCmd creates the root command for bsmiweb.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bsmiweb",
		Short: "Taiwan BSMI product-safety registration lookup",
		Long: `bsmiweb looks up Taiwan BSMI product-safety registrations by their
six-character mark code (e.g. R45879), caches the scraped records in a
local SQLite database, and serves them over HTTP.

Records are scraped from the public BSMI registration lookup service on
first access and refreshed in the background once they go stale. The
resale authorization open-data feed can be imported with "bsmiweb import".`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().StringP("config", "c", "",
		"Configuration file path (default: .bsmiweb in current or home directory)")

	// Add subcommands
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewLookupCmd())
	cmd.AddCommand(NewImportCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig builds the configuration in precedence order: defaults, then
// the optional config file, then environment variables. Command flags are
// applied by each subcommand afterwards.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()

	configFlag, err := cmd.Flags().GetString("config")
	if err != nil {
		configFlag, _ = cmd.Root().PersistentFlags().GetString("config")
	}

	if path := config.FindConfigFile(configFlag); path != "" {
		cf, err := config.LoadConfigFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
		if err := cf.Apply(cfg); err != nil {
			return nil, fmt.Errorf("invalid value in %s: %w", path, err)
		}
		cfg.ConfigFilePath = path
	} else if configFlag != "" {
		return nil, fmt.Errorf("configuration file not found: %s", configFlag)
	}

	cfg.ApplyEnv()
	cfg.Verbose = getVerboseFlag(cmd)
	return cfg, nil
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}
