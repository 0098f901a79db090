package market

import (
	"context"
	"sync"
	"time"

	"github.com/ajitpratap0/cryptocore/core"
)

// MemCache is an in-process Cache used in tests and by operators who
// don't run Redis. It honors the same TTL semantics as RedisCache.
type MemCache struct {
	mu      sync.Mutex
	entries map[string]memEntry
}

type memEntry struct {
	candles []core.Candle
	expiry  time.Time
}

// NewMemCache returns an empty MemCache.
func NewMemCache() *MemCache {
	return &MemCache{entries: make(map[string]memEntry)}
}

func (c *MemCache) Get(_ context.Context, key string) ([]core.Candle, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok || time.Now().After(e.expiry) {
		return nil, false
	}
	return e.candles, true
}

func (c *MemCache) Set(_ context.Context, key string, candles []core.Candle, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = memEntry{candles: candles, expiry: time.Now().Add(ttl)}
}
