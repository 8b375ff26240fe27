package lookup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cwhuang/bsmiweb/internal/model"
)

// ErrNotFound is returned when neither the local store nor the origin has
// a record for the mark code.
var ErrNotFound = errors.New("lookup: registration not found")

// DefaultFreshness is how long a stored record is served without
// re-scraping the origin.
const DefaultFreshness = 24 * time.Hour

// Store provides registration and authorization reads plus the write path
// for records scraped during a lookup.
type Store interface {
	GetRegistration(ctx context.Context, id string) (*model.Registration, error)
	UpsertRegistration(ctx context.Context, reg *model.Registration) error
	ListAuthorizationsByCertificateIDs(ctx context.Context, certIDs []string) ([]model.Authorization, error)
}

// Fetcher retrieves a registration record from the origin.
// A nil record with a nil error means the origin has no data for the mark.
type Fetcher interface {
	FetchRecord(ctx context.Context, mark model.Mark) (*model.Registration, error)
}

// Enqueuer schedules a background refresh for a mark code.
type Enqueuer interface {
	Enqueue(mark model.Mark) bool
}

// Service resolves mark codes against the store and the origin.
type Service struct {
	// store is the local registration store.
	store Store

	// fetcher scrapes records from the origin on a cache miss.
	fetcher Fetcher

	// refresher receives stale mark codes for background re-scraping.
	refresher Enqueuer

	// freshness is how long a stored record is considered current.
	freshness time.Duration

	// logger is used for cache decision logging.
	logger *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithFreshness sets the freshness window for stored records.
// Default is DefaultFreshness if not specified.
func WithFreshness(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.freshness = d
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// NewService creates a lookup Service.
func NewService(store Store, fetcher Fetcher, refresher Enqueuer, opts ...Option) *Service {
	s := &Service{
		store:     store,
		fetcher:   fetcher,
		refresher: refresher,
		freshness: DefaultFreshness,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = slog.Default()
	}

	return s
}

// Lookup resolves a mark code to its registration record and the resale
// authorizations referencing its certificates.
//
// A stored record older than the freshness window is still returned
// immediately; a background refresh is enqueued so a later lookup sees the
// updated copy. Only a record absent from the store causes a synchronous
// origin fetch. Returns ErrNotFound when the origin has no data either.
func (s *Service) Lookup(ctx context.Context, mark model.Mark) (*model.LookupResult, error) {
	reg, err := s.store.GetRegistration(ctx, mark.String())
	if err != nil {
		return nil, fmt.Errorf("failed to read registration: %w", err)
	}

	switch {
	case reg == nil:
		s.logger.Info("registration not cached, fetching from origin", "mark", mark.String())
		reg, err = s.fetchAndStore(ctx, mark)
		if err != nil {
			return nil, err
		}
	case reg.IsStale(s.freshness, time.Now().UTC()):
		s.logger.Info("serving stale registration, refresh enqueued",
			"mark", mark.String(),
			"updated_at", reg.UpdatedAt,
		)
		s.refresher.Enqueue(mark)
	default:
		s.logger.Debug("serving fresh registration", "mark", mark.String())
	}

	auths, err := s.store.ListAuthorizationsByCertificateIDs(ctx, reg.CertificateIDs())
	if err != nil {
		return nil, fmt.Errorf("failed to read authorizations: %w", err)
	}

	return &model.LookupResult{Registration: reg, Authorizations: auths}, nil
}

// fetchAndStore scrapes the origin and persists the result.
//
// A store failure after a successful scrape is logged but not returned:
// the caller already has valid origin data, and the next lookup will
// simply fetch again.
func (s *Service) fetchAndStore(ctx context.Context, mark model.Mark) (*model.Registration, error) {
	reg, err := s.fetcher.FetchRecord(ctx, mark)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch registration: %w", err)
	}
	if reg == nil {
		return nil, ErrNotFound
	}

	if err := s.store.UpsertRegistration(ctx, reg); err != nil {
		s.logger.Warn("failed to store fetched registration", "mark", mark.String(), "error", err)
	}
	return reg, nil
}
