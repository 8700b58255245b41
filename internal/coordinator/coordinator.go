// Package coordinator guarantees at most one network fetch at a time and shares
// each fetch outcome with every caller waiting on it.
package coordinator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"ratesvc/internal/metrics"
	"ratesvc/internal/model"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

// ErrRateLimited is returned when a fetch is throttled and no table exists to fall back on.
var ErrRateLimited = errors.New("rate fetch throttled and no cached rates available")

// ErrClosed is returned once the coordinator has been closed.
var ErrClosed = errors.New("coordinator closed")

const defaultFetchTimeout = 15 * time.Second

// RateCache is the cache surface the coordinator drives.
type RateCache interface {
	Get(ctx context.Context, pivot string, maxAge time.Duration) (*model.RateTable, bool)
	Latest(ctx context.Context, pivot string) *model.RateTable
	Refresh(ctx context.Context, pivot string) (*model.RateTable, error)
	Invalidate(ctx context.Context) error
}

// Options tunes the coordinator.
type Options struct {
	// FetchTimeout bounds one shared network fetch.
	FetchTimeout time.Duration
	// MinFetchInterval, when positive, admits at most one network fetch per interval.
	MinFetchInterval time.Duration
}

// flight is one fetch generation for a pivot. Callers joining the same flight share its outcome.
type flight struct {
	gen     uint64
	forced  bool
	started bool
	waiters int
}

// Coordinator serializes rate fetches. Flights for successive generations run one after
// another behind a single gate.
type Coordinator struct {
	cache        RateCache
	logger       *zap.SugaredLogger
	metrics      *metrics.Metrics
	fetchTimeout time.Duration
	limiter      *rate.Limiter
	minInterval  time.Duration
	now          func() time.Time

	group singleflight.Group
	gate  chan struct{}

	mu      sync.Mutex
	flights map[string]*flight
	nextGen   uint64
	closed    bool
	lastFetch time.Time
}

// New creates a Coordinator over cache. m may be nil.
func New(cache RateCache, logger *zap.SugaredLogger, m *metrics.Metrics, opts Options) *Coordinator {
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = defaultFetchTimeout
	}
	c := &Coordinator{
		cache:        cache,
		logger:       logger,
		metrics:      m,
		fetchTimeout: opts.FetchTimeout,
		gate:         make(chan struct{}, 1),
		flights:      make(map[string]*flight),
		now:          time.Now,
	}
	if opts.MinFetchInterval > 0 {
		c.limiter = rate.NewLimiter(rate.Every(opts.MinFetchInterval), 1)
		c.minInterval = opts.MinFetchInterval
	}
	return c
}

// EnsureFresh returns a table for pivot no older than maxAge, fetching it when needed.
// With force the cache is invalidated before the call joins a fetch and a new fetch always
// runs; a forced call that arrives while a fetch is running waits for it and then starts the
// next one. A forced call the throttle would refuse leaves the cache untouched.
//
// If ctx ends before the shared fetch completes, the caller gets the last known table
// (SourceFallback) or SourceNone with a nil error. The fetch itself keeps running.
func (c *Coordinator) EnsureFresh(ctx context.Context, pivot string, maxAge time.Duration, force bool) (Result, error) {
	pivot = model.NormalizeCode(pivot)
	if c.isClosed() {
		return Result{Source: SourceNone}, ErrClosed
	}

	if !force {
		if table, ok := c.cache.Get(ctx, pivot, maxAge); ok {
			return Result{Table: table, Source: SourceCache}, nil
		}
	} else if !c.throttled() {
		// Invalidate now so no caller is served the old table while the forced fetch waits
		// for the running one.
		if err := c.cache.Invalidate(context.WithoutCancel(ctx)); err != nil {
			c.logger.Warnw("Failed to invalidate rate cache for forced refresh", "pivot", pivot, "error", err)
		}
	}

	ch := c.join(pivot, maxAge, force)

	select {
	case <-ctx.Done():
		c.logger.Debugw("Caller stopped waiting for rate fetch", "pivot", pivot, "error", ctx.Err())
		return c.fallback(context.WithoutCancel(ctx), pivot), nil
	case res := <-ch:
		if c.isClosed() {
			return Result{Source: SourceNone}, ErrClosed
		}
		if res.Err != nil {
			return Result{Source: SourceNone}, res.Err
		}
		return res.Val.(Result), nil
	}
}

// throttled reports whether a network fetch would be refused right now.
func (c *Coordinator) throttled() bool {
	return c.limiter != nil && c.limiter.Tokens() < 1
}

// NextFetchAt reports when the throttle next admits a network fetch. It is zero when a
// fetch is allowed now or no throttle is configured.
func (c *Coordinator) NextFetchAt() time.Time {
	if c.limiter == nil {
		return time.Time{}
	}
	c.mu.Lock()
	last := c.lastFetch
	c.mu.Unlock()
	if last.IsZero() {
		return time.Time{}
	}
	next := last.Add(c.minInterval)
	if !next.After(c.now()) {
		return time.Time{}
	}
	return next
}

// Fetching reports whether a fetch for pivot is running or queued.
func (c *Coordinator) Fetching(pivot string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.flights[model.NormalizeCode(pivot)]
	return ok
}

// Close ends the session. A running fetch completes and persists, but its result is not
// delivered and new calls fail with ErrClosed.
func (c *Coordinator) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
}

func (c *Coordinator) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// join attaches the caller to the current flight for pivot or opens a new generation.
func (c *Coordinator) join(pivot string, maxAge time.Duration, force bool) <-chan singleflight.Result {
	c.mu.Lock()
	defer c.mu.Unlock()

	f := c.flights[pivot]
	switch {
	case f == nil, force && f.started:
		c.nextGen++
		f = &flight{gen: c.nextGen, forced: force}
		c.flights[pivot] = f
	default:
		f.forced = f.forced || force
		c.metrics.ObserveCoalesced()
	}
	f.waiters++

	key := fmt.Sprintf("%s#%d", pivot, f.gen)
	// DoChan starts fn on its own goroutine, so holding mu here keeps key lookup
	// and flight registration atomic.
	return c.group.DoChan(key, func() (any, error) {
		return c.run(pivot, f, maxAge)
	})
}

// run performs one flight behind the gate on a context detached from every caller.
func (c *Coordinator) run(pivot string, f *flight, maxAge time.Duration) (Result, error) {
	c.gate <- struct{}{}
	defer func() { <-c.gate }()

	ctx, cancel := context.WithTimeout(context.Background(), c.fetchTimeout)
	defer cancel()

	c.mu.Lock()
	f.started = true
	forced := f.forced
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		if c.flights[pivot] == f {
			delete(c.flights, pivot)
		}
		waiters := f.waiters
		c.mu.Unlock()
		c.metrics.ObserveFlight(waiters)
		c.logger.Debugw("Rate flight completed", "pivot", pivot, "generation", f.gen, "forced", forced, "waiters", waiters)
	}()

	// A previous generation may have filled the cache while this one was queued.
	if !forced {
		if table, ok := c.cache.Get(ctx, pivot, maxAge); ok {
			return Result{Table: table, Source: SourceCache}, nil
		}
	}

	if c.limiter != nil && !c.limiter.Allow() {
		c.metrics.ObserveFetch(metrics.OutcomeThrottled, "", 0)
		if latest := c.cache.Latest(ctx, pivot); latest != nil {
			c.logger.Infow("Rate fetch throttled, serving last known rates", "pivot", pivot)
			return Result{Table: latest, Source: SourceFallback}, nil
		}
		return Result{}, ErrRateLimited
	}
	if c.limiter != nil {
		c.mu.Lock()
		c.lastFetch = c.now()
		c.mu.Unlock()
	}

	if forced {
		if err := c.cache.Invalidate(ctx); err != nil {
			c.logger.Warnw("Failed to invalidate rate cache before forced refresh", "pivot", pivot, "error", err)
		}
	}

	table, err := c.cache.Refresh(ctx, pivot)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return c.fallback(context.Background(), pivot), nil
		}
		c.logger.Warnw("Rate fetch failed", "pivot", pivot, "generation", f.gen, "error", err)
		return Result{}, err
	}
	return Result{Table: table, Source: SourceNetwork}, nil
}

func (c *Coordinator) fallback(ctx context.Context, pivot string) Result {
	if latest := c.cache.Latest(ctx, pivot); latest != nil {
		return Result{Table: latest, Source: SourceFallback}
	}
	return Result{Source: SourceNone}
}
