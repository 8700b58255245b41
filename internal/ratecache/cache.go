// Package ratecache combines the rate provider with the persisted rate record.
package ratecache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"ratesvc/internal/metrics"
	"ratesvc/internal/model"
	"ratesvc/internal/provider"
	"ratesvc/internal/repository"

	"go.uber.org/zap"
)

// Cache answers freshness questions from the persisted record and refreshes it from the provider.
// The last table it saw is kept in memory so a failed save does not lose it for this process.
type Cache struct {
	provider provider.RatesProvider
	store    repository.RateStore
	logger   *zap.SugaredLogger
	metrics  *metrics.Metrics
	now      func() time.Time

	mu       sync.RWMutex
	snapshot *model.RateTable
	epoch    uint64 // bumped on every replace or invalidate
}

// New creates a Cache. m may be nil.
func New(p provider.RatesProvider, store repository.RateStore, logger *zap.SugaredLogger, m *metrics.Metrics) *Cache {
	return &Cache{
		provider: p,
		store:    store,
		logger:   logger,
		metrics:  m,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Get returns the table for pivot when it is younger than maxAge. It never touches the network.
func (c *Cache) Get(ctx context.Context, pivot string, maxAge time.Duration) (*model.RateTable, bool) {
	table := c.Latest(ctx, pivot)
	fresh := table != nil && table.FreshAt(c.now(), maxAge)
	c.metrics.ObserveCacheLookup(fresh)
	if !fresh {
		return nil, false
	}
	return table, true
}

// Latest returns the last known table for pivot regardless of age, or nil.
func (c *Cache) Latest(ctx context.Context, pivot string) *model.RateTable {
	pivot = model.NormalizeCode(pivot)

	c.mu.RLock()
	snap, epoch := c.snapshot, c.epoch
	c.mu.RUnlock()
	if snap != nil {
		if snap.Pivot() != pivot {
			return nil
		}
		return snap
	}

	table, err := c.store.Load(ctx)
	if err != nil {
		c.metrics.ObserveStoreError("load")
		c.logger.Warnw("Failed to load cached rates, treating as miss", "error", err)
		return nil
	}
	if table == nil {
		return nil
	}

	// A record loaded before a concurrent refresh or invalidate is stale.
	c.mu.Lock()
	if c.epoch == epoch && c.snapshot == nil {
		c.snapshot = table
	}
	snap = c.snapshot
	c.mu.Unlock()

	if snap == nil || snap.Pivot() != pivot {
		return nil
	}
	return snap
}

// Refresh fetches a new table for pivot and persists it. A failed fetch leaves the
// stored record untouched and returns the provider error unchanged.
func (c *Cache) Refresh(ctx context.Context, pivot string) (*model.RateTable, error) {
	start := time.Now()
	table, err := c.provider.Fetch(ctx, pivot)
	if err != nil {
		c.metrics.ObserveFetch(metrics.OutcomeError, provider.KindOf(err), time.Since(start))
		return nil, err
	}
	c.metrics.ObserveFetch(metrics.OutcomeSuccess, "", time.Since(start))

	if err := c.store.Save(ctx, table); err != nil {
		c.metrics.ObserveStoreError("save")
		c.logger.Warnw("Failed to persist rates, keeping them in memory", "pivot", table.Pivot(), "error", err)
	}

	c.mu.Lock()
	c.snapshot = table
	c.epoch++
	c.mu.Unlock()
	c.metrics.SetTableFetchedAt(table.FetchedAt())

	c.logger.Infow("Rates refreshed", "pivot", table.Pivot(), "count", table.Len(), "fetched_at", table.FetchedAt())
	return table, nil
}

// Invalidate drops the in-memory table and clears the stored record.
func (c *Cache) Invalidate(ctx context.Context) error {
	c.mu.Lock()
	c.snapshot = nil
	c.epoch++
	c.mu.Unlock()

	if err := c.store.Clear(ctx); err != nil {
		c.metrics.ObserveStoreError("clear")
		return fmt.Errorf("invalidate rate cache: %w", err)
	}
	return nil
}

// Ping checks the backing store.
func (c *Cache) Ping(ctx context.Context) error {
	return c.store.Ping(ctx)
}
