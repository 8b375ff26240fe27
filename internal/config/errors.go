package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages.
var (
	// ErrNoListenAddr is returned when the server listen address is empty.
	ErrNoListenAddr = errors.New("no listen address specified")

	// ErrInvalidFreshness is returned when the freshness window is not
	// positive. A non-positive window would make every lookup re-scrape
	// the origin.
	ErrInvalidFreshness = errors.New("invalid freshness window: must be positive")

	// ErrInvalidTimeout is returned when the upstream timeout is not positive.
	// A timeout of zero or negative would cause immediate request failures.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidRefreshWorkers is returned when the refresh worker count is
	// not positive. Zero workers would mean stale records are never refreshed.
	ErrInvalidRefreshWorkers = errors.New("invalid refresh workers: must be positive")

	// ErrInvalidBatchSize is returned when the import batch size is not
	// positive. A batch size of zero would stall the import loop.
	ErrInvalidBatchSize = errors.New("invalid import batch size: must be positive")
)
