package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
// These values follow the behavior of the public BSMI endpoints where
// applicable.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "bsmiweb"

	// DefaultListenAddr is the HTTP server listen address.
	DefaultListenAddr = ":3000"

	// DefaultFreshness is how long a stored registration record is served
	// without re-scraping the origin. One day keeps records reasonably
	// current while holding upstream traffic to at most one fetch per
	// record per day.
	DefaultFreshness = 24 * time.Hour

	// DefaultTimeout is the timeout for each upstream HTTP request.
	// The registration lookup endpoint is slow under load; a generous
	// timeout avoids false negatives on working queries.
	DefaultTimeout = 60 * time.Second

	// DefaultRefreshWorkers is the number of concurrent background
	// refresh workers. Two workers drain a burst of stale lookups
	// without hammering the origin.
	DefaultRefreshWorkers = 2

	// DefaultRefreshQueueSize is the background refresh queue capacity.
	// Marks enqueued beyond this are dropped; the next lookup of the
	// record simply enqueues it again.
	DefaultRefreshQueueSize = 64

	// DefaultImportBatchSize is the number of authorization rows written
	// per insert batch during an open-data import.
	DefaultImportBatchSize = 1000

	// DefaultUserAgent identifies bsmiweb in upstream HTTP requests.
	DefaultUserAgent = "bsmiweb/1.0"
)

// Config holds all configuration options for bsmiweb.
// This struct is populated from defaults, the optional config file, and
// CLI flags, then passed through the application via dependency injection
// rather than global state.
//
// Design decision: We use a single flat struct instead of nested structs.
// The number of options is manageable, and nesting would add complexity
// without significant benefit.
type Config struct {
	// ListenAddr is the HTTP server listen address in "host:port" form.
	ListenAddr string

	// DBPath is the SQLite database file path. When empty, the database
	// lives in the XDG data directory.
	DBPath string

	// Freshness is how long a stored registration record is served
	// without re-scraping the origin.
	Freshness time.Duration

	// Timeout is the timeout for each upstream HTTP request.
	Timeout time.Duration

	// RefreshWorkers is the number of concurrent background refresh workers.
	RefreshWorkers int

	// RefreshQueueSize is the background refresh queue capacity.
	RefreshQueueSize int

	// ImportBatchSize is the insert batch size for open-data imports.
	ImportBatchSize int

	// LookupURL overrides the registration lookup endpoint.
	// Empty means the production endpoint.
	LookupURL string

	// FeedURL overrides the open-data authorization feed endpoint.
	// Empty means the production endpoint.
	FeedURL string

	// BaseURL is the public base URL of this server, used for absolute
	// links in the sitemap. Empty disables the sitemap.
	BaseURL string

	// UserAgent is the User-Agent header sent with upstream requests.
	UserAgent string

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, debug-level cache decisions are not logged.
	Verbose bool

	// JSONLog switches server log output to the JSON handler.
	JSONLog bool

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches for .bsmiweb in the current directory
	// and then in the user's home directory.
	ConfigFilePath string
}

// NewConfig creates a new Config with default values.
// All fields are set to safe, sensible defaults that work for most use
// cases. Users can override specific values after creation.
//
// Design decision: We use a constructor function instead of relying on
// zero values because many defaults are non-zero (e.g., timeout, listen
// address). This also serves as documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		ListenAddr:       DefaultListenAddr,
		DBPath:           filepath.Join(XDGDataDir(), "bsmiweb.db"),
		Freshness:        DefaultFreshness,
		Timeout:          DefaultTimeout,
		RefreshWorkers:   DefaultRefreshWorkers,
		RefreshQueueSize: DefaultRefreshQueueSize,
		ImportBatchSize:  DefaultImportBatchSize,
		UserAgent:        DefaultUserAgent,
	}
}

// ApplyEnv overrides configuration from the process environment.
//
// DATABASE_URL points at the SQLite database file; a "file:" prefix is
// accepted and stripped. PORT overrides the listen port. Both variables
// are honored for parity with common container platforms.
func (c *Config) ApplyEnv() {
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		c.DBPath = strings.TrimPrefix(dbURL, "file:")
	}
	if port := os.Getenv("PORT"); port != "" {
		c.ListenAddr = ":" + port
	}
}

// XDGDataDir returns the XDG data directory for bsmiweb.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.local/share/bsmiweb
// On macOS: ~/Library/Application Support/bsmiweb
// On Windows: %LOCALAPPDATA%\bsmiweb
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for bsmiweb.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.config/bsmiweb
// On macOS: ~/Library/Application Support/bsmiweb
// On Windows: %APPDATA%\bsmiweb
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns a specific error describing what is invalid.
//
// Design decision: We validate at the config level rather than at each
// point of use to fail fast and provide clear error messages upfront.
// This is called once after CLI parsing, before anything starts.
//
// We chose to return the first error found rather than collecting all
// errors because fixing one error often makes others irrelevant.
func (c *Config) Validate() error {
	if c.ListenAddr == "" {
		return ErrNoListenAddr
	}

	if c.Freshness <= 0 {
		return ErrInvalidFreshness
	}

	// Timeout must be positive; zero timeout would cause immediate failures
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.RefreshWorkers <= 0 {
		return ErrInvalidRefreshWorkers
	}

	if c.ImportBatchSize <= 0 {
		return ErrInvalidBatchSize
	}

	return nil
}
