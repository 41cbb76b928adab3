package weathercache

import (
	"context"
	"sync"
	"time"

	"github.com/yanqian/moodfit/internal/domain/weather"
)

type entry struct {
	report    weather.Report
	expiresAt time.Time
}

// MemoryCache keeps reports in process memory for dev and tests.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]entry
	now     func() time.Time
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]entry), now: time.Now}
}

// Get implements weather.Cache.
func (c *MemoryCache) Get(_ context.Context, key string) (weather.Report, bool, error) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return weather.Report{}, false, nil
	}
	if !e.expiresAt.IsZero() && e.expiresAt.Before(c.now()) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return weather.Report{}, false, nil
	}
	return e.report, true, nil
}

// Save stores the report; a non-positive ttl never expires.
func (c *MemoryCache) Save(_ context.Context, key string, report weather.Report, ttl time.Duration) error {
	exp := time.Time{}
	if ttl > 0 {
		exp = c.now().Add(ttl)
	}
	c.mu.Lock()
	c.entries[key] = entry{report: report, expiresAt: exp}
	c.mu.Unlock()
	return nil
}

var _ weather.Cache = (*MemoryCache)(nil)
