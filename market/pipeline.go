// Package market implements the market-data pipeline: fetch candles
// from an exchange, cache them with a short TTL, and degrade to the
// most recent cached value on a fetch failure. The pipeline never
// changes correctness based on whether a cache is configured — only
// freshness.
package market

import (
	"context"
	"fmt"
	"time"

	"github.com/ajitpratap0/cryptocore/core"
	"github.com/rs/zerolog/log"
)

// Source fetches live candles from an exchange.
type Source interface {
	FetchCandles(ctx context.Context, symbol, timeframe string, limit int) ([]core.Candle, error)
}

// Cache is a read-through cache keyed by (symbol, timeframe, limit). It
// must be safe to call with an empty/unreachable backend — the
// pipeline tolerates a cache that never returns a hit.
type Cache interface {
	Get(ctx context.Context, key string) ([]core.Candle, bool)
	Set(ctx context.Context, key string, candles []core.Candle, ttl time.Duration)
}

// Key builds the stable cache key for a (symbol, timeframe, limit)
// triple. The format is stable across process restarts within the
// cache's TTL.
func Key(symbol, timeframe string, limit int) string {
	return fmt.Sprintf("candles:%s:%s:%d", symbol, timeframe, limit)
}

// Pipeline is the get_candles operation: fetch-then-cache-then-degrade.
type Pipeline struct {
	Source Source
	Cache  Cache
	TTL    time.Duration
}

// New returns a Pipeline reading from source and caching through cache
// with the given TTL. cache may be nil, in which case the pipeline
// degrades to source-only.
func New(source Source, cache Cache, ttl time.Duration) *Pipeline {
	return &Pipeline{Source: source, Cache: cache, TTL: ttl}
}

// GetCandles fetches symbol's candles at timeframe, returning at most
// limit of the most recent bars. On a fetch failure it falls back to
// the cached value, if any; on a cache miss too, it returns (nil,
// false) and the caller is expected to drop the symbol for this tick.
func (p *Pipeline) GetCandles(ctx context.Context, symbol, timeframe string, limit int) ([]core.Candle, bool) {
	key := Key(symbol, timeframe, limit)

	candles, err := p.Source.FetchCandles(ctx, symbol, timeframe, limit)
	if err == nil {
		if p.Cache != nil {
			p.Cache.Set(ctx, key, candles, p.TTL)
		}
		return candles, true
	}

	log.Warn().Err(err).Str("symbol", symbol).Str("timeframe", timeframe).Msg("candle fetch failed, falling back to cache")

	if p.Cache == nil {
		return nil, false
	}
	cached, ok := p.Cache.Get(ctx, key)
	if !ok {
		log.Error().Str("symbol", symbol).Str("timeframe", timeframe).Msg("no cached candles available, dropping symbol this tick")
		return nil, false
	}
	return cached, true
}
