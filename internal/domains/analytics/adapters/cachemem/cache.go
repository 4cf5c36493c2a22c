// Package cachemem provides an in-process TTL cache for per-party
// performance aggregates.
package cachemem

import (
	"context"
	"sync"
	"time"

	"github.com/chaintrack/shipment-tracking-api/internal/domains/analytics/domain"
	"github.com/chaintrack/shipment-tracking-api/internal/domains/analytics/ports"
)

type Cache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	clock   func() time.Time
}

type cacheEntry struct {
	value     domain.Performance
	expiresAt time.Time
	hasExpiry bool
}

// Option customizes the cache.
type Option func(*Cache)

// WithClock injects a deterministic time source for tests.
func WithClock(clock func() time.Time) Option {
	return func(c *Cache) {
		if clock != nil {
			c.clock = clock
		}
	}
}

func New(opts ...Option) *Cache {
	c := &Cache{
		entries: make(map[string]cacheEntry),
		clock:   time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Cache) Get(_ context.Context, partyID string) (domain.Performance, bool, error) {
	if c == nil {
		return domain.Performance{}, false, nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[partyID]
	if !ok {
		return domain.Performance{}, false, nil
	}
	if entry.hasExpiry && c.clock().After(entry.expiresAt) {
		delete(c.entries, partyID)
		return domain.Performance{}, false, nil
	}
	return entry.value, true, nil
}

func (c *Cache) Put(_ context.Context, partyID string, perf domain.Performance, ttl time.Duration) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	entry := cacheEntry{value: perf}
	if ttl > 0 {
		entry.hasExpiry = true
		entry.expiresAt = c.clock().Add(ttl)
	}
	c.entries[partyID] = entry
	return nil
}

var _ ports.PerformanceCache = (*Cache)(nil)
