package market

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ajitpratap0/cryptocore/core"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// RedisCache is a Cache backed by Redis. A Redis error at read or write
// time degrades silently to a cache miss — the pipeline's correctness
// never depends on the cache being reachable.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache wraps client as a Cache.
func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]core.Candle, bool) {
	raw, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			log.Warn().Err(err).Str("key", key).Msg("redis cache read failed")
		}
		return nil, false
	}

	var candles []core.Candle
	if err := json.Unmarshal([]byte(raw), &candles); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("redis cache payload corrupt")
		return nil, false
	}
	return candles, true
}

func (c *RedisCache) Set(ctx context.Context, key string, candles []core.Candle, ttl time.Duration) {
	data, err := json.Marshal(candles)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("failed to marshal candles for cache")
		return
	}

	go func() {
		writeCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := c.client.Set(writeCtx, key, data, ttl).Err(); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("failed to write candle cache entry")
		}
	}()
}
