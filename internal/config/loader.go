package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".bsmiweb"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// File is the YAML configuration file structure. Every field is optional;
// an absent field keeps the built-in default.
type File struct {
	// Listen is the HTTP server listen address.
	Listen string `yaml:"listen"`

	// Database is the SQLite database file path.
	Database string `yaml:"database"`

	// Freshness is how long stored records are served without re-scraping,
	// as a Go duration string (e.g. "24h").
	Freshness string `yaml:"freshness"`

	// RefreshWorkers is the number of background refresh workers.
	RefreshWorkers int `yaml:"refresh_workers"`

	// LookupURL overrides the registration lookup endpoint.
	LookupURL string `yaml:"lookup_url"`

	// FeedURL overrides the open-data authorization feed endpoint.
	FeedURL string `yaml:"feed_url"`

	// BaseURL is the public base URL used for sitemap links.
	BaseURL string `yaml:"base_url"`
}

// LoadConfigFile loads configuration overrides from a YAML file.
// If the file does not exist, it returns ErrConfigNotFound.
// Callers should handle this error appropriately based on whether
// the config file path was explicitly specified by the user.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, err
	}

	return &cf, nil
}

// Apply merges the file's overrides into the config. Zero-valued fields
// leave the config untouched. An unparsable freshness string is reported
// rather than silently ignored.
func (f *File) Apply(c *Config) error {
	if f.Listen != "" {
		c.ListenAddr = f.Listen
	}
	if f.Database != "" {
		c.DBPath = f.Database
	}
	if f.Freshness != "" {
		d, err := time.ParseDuration(f.Freshness)
		if err != nil {
			return err
		}
		c.Freshness = d
	}
	if f.RefreshWorkers > 0 {
		c.RefreshWorkers = f.RefreshWorkers
	}
	if f.LookupURL != "" {
		c.LookupURL = f.LookupURL
	}
	if f.FeedURL != "" {
		c.FeedURL = f.FeedURL
	}
	if f.BaseURL != "" {
		c.BaseURL = f.BaseURL
	}
	return nil
}

// FindConfigFile searches for the configuration file in the following order:
// 1. If configPath is specified, use it directly
// 2. Look for .bsmiweb in the current directory
// 3. Look for .bsmiweb in the user's home directory
//
// Returns the path to the configuration file if found, or empty string if
// not found.
func FindConfigFile(configPath string) string {
	// If explicit path is provided, use it
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	// Check current directory
	cwd, err := os.Getwd()
	if err == nil {
		cwdConfig := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(cwdConfig); err == nil {
			return cwdConfig
		}
	}

	// Check home directory
	home, err := os.UserHomeDir()
	if err == nil {
		homeConfig := filepath.Join(home, DefaultConfigFile)
		if _, err := os.Stat(homeConfig); err == nil {
			return homeConfig
		}
	}

	return ""
}
