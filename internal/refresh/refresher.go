package refresh

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/cwhuang/bsmiweb/internal/model"
)

// Fetcher retrieves a registration record from the origin.
// A nil record with a nil error means the origin has no data for the mark.
type Fetcher interface {
	FetchRecord(ctx context.Context, mark model.Mark) (*model.Registration, error)
}

// Store persists refreshed registration records.
type Store interface {
	UpsertRegistration(ctx context.Context, reg *model.Registration) error
}

// Refresher re-scrapes stale registration records in the background.
//
// Design decision: We use a bounded channel drained by errgroup workers
// rather than spawning one goroutine per request. Lookup traffic can burst
// far faster than the origin tolerates; the bounded queue plus a small
// worker pool caps upstream pressure, and Enqueue simply reports false when
// the queue is full so callers never block.
type Refresher struct {
	// fetcher retrieves fresh records from the origin.
	fetcher Fetcher

	// store persists refreshed records.
	store Store

	// queue holds mark codes awaiting refresh.
	queue chan model.Mark

	// inflight tracks mark codes queued or being refreshed right now.
	// Access is synchronized via mutex.
	inflight map[string]struct{}
	mu       sync.Mutex

	// workers is the number of concurrent refresh workers.
	workers int

	// logger is used for refresh outcome logging.
	logger *slog.Logger
}

// Option configures a Refresher.
type Option func(*Refresher)

// WithWorkers sets the number of concurrent refresh workers.
// Default is 2 if not specified.
func WithWorkers(n int) Option {
	return func(r *Refresher) {
		if n > 0 {
			r.workers = n
		}
	}
}

// WithQueueSize sets the refresh queue capacity.
// Default is 64 if not specified.
func WithQueueSize(n int) Option {
	return func(r *Refresher) {
		if n > 0 {
			r.queue = make(chan model.Mark, n)
		}
	}
}

// WithLogger sets a custom logger for refresh outcomes.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Refresher) {
		r.logger = logger
	}
}

// New creates a Refresher. Call Run to start the workers.
func New(fetcher Fetcher, store Store, opts ...Option) *Refresher {
	r := &Refresher{
		fetcher:  fetcher,
		store:    store,
		queue:    make(chan model.Mark, 64),
		inflight: make(map[string]struct{}),
		workers:  2,
	}

	for _, opt := range opts {
		opt(r)
	}

	if r.logger == nil {
		r.logger = slog.Default()
	}

	return r
}

// Enqueue schedules a background refresh for the given mark code.
// It never blocks: the return value reports whether the mark was accepted.
// A mark already queued or in flight is deduplicated and reported as
// accepted, since a refresh for it is guaranteed to run.
func (r *Refresher) Enqueue(mark model.Mark) bool {
	r.mu.Lock()
	if _, ok := r.inflight[mark.String()]; ok {
		r.mu.Unlock()
		return true
	}
	r.inflight[mark.String()] = struct{}{}
	r.mu.Unlock()

	select {
	case r.queue <- mark:
		return true
	default:
		r.release(mark)
		r.logger.Warn("refresh queue full, dropping request", "mark", mark.String())
		return false
	}
}

// Run starts the worker pool and blocks until the context is cancelled.
// It always returns nil: individual refresh failures are logged, never
// propagated, because a failed refresh only delays freshness.
func (r *Refresher) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < r.workers; i++ {
		g.Go(func() error {
			for {
				select {
				case <-ctx.Done():
					return nil
				case mark := <-r.queue:
					r.refresh(ctx, mark)
				}
			}
		})
	}
	return g.Wait()
}

// refresh re-fetches one record and replaces the stored copy.
func (r *Refresher) refresh(ctx context.Context, mark model.Mark) {
	defer r.release(mark)

	reg, err := r.fetcher.FetchRecord(ctx, mark)
	if err != nil {
		r.logger.Warn("background refresh failed", "mark", mark.String(), "error", err)
		return
	}
	if reg == nil {
		// The origin no longer has the record. Keep the stored copy; a
		// transient origin-side gap should not erase known data.
		r.logger.Warn("background refresh found no record", "mark", mark.String())
		return
	}

	if err := r.store.UpsertRegistration(ctx, reg); err != nil {
		r.logger.Warn("failed to store refreshed record", "mark", mark.String(), "error", err)
		return
	}

	r.logger.Info("refreshed registration", "mark", mark.String(), "certificates", len(reg.Certificates))
}

// release removes a mark from the in-flight set.
func (r *Refresher) release(mark model.Mark) {
	r.mu.Lock()
	delete(r.inflight, mark.String())
	r.mu.Unlock()
}
