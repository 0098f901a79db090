package market

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ajitpratap0/cryptocore/core"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	candles []core.Candle
	err     error
}

func (f *fakeSource) FetchCandles(_ context.Context, _, _ string, _ int) ([]core.Candle, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.candles, nil
}

func sampleCandles(n int) []core.Candle {
	out := make([]core.Candle, n)
	for i := range out {
		c, _ := core.NewCandle(int64(i), 100, 101, 99, 100, 10)
		out[i] = c
	}
	return out
}

func TestPipelineCachesOnSuccess(t *testing.T) {
	src := &fakeSource{candles: sampleCandles(3)}
	cache := NewMemCache()
	p := New(src, cache, time.Minute)

	candles, ok := p.GetCandles(context.Background(), "BTCUSDT", "1h", 3)
	require.True(t, ok)
	assert.Len(t, candles, 3)

	cached, ok := cache.Get(context.Background(), Key("BTCUSDT", "1h", 3))
	require.True(t, ok)
	assert.Len(t, cached, 3)
}

func TestPipelineDegradesToCacheOnFetchFailure(t *testing.T) {
	cache := NewMemCache()
	cache.Set(context.Background(), Key("BTCUSDT", "1h", 3), sampleCandles(3), time.Minute)

	src := &fakeSource{err: errors.New("exchange unreachable")}
	p := New(src, cache, time.Minute)

	candles, ok := p.GetCandles(context.Background(), "BTCUSDT", "1h", 3)
	require.True(t, ok)
	assert.Len(t, candles, 3)
}

func TestPipelineReturnsNoneWithoutCacheOrFetch(t *testing.T) {
	src := &fakeSource{err: errors.New("exchange unreachable")}
	p := New(src, NewMemCache(), time.Minute)

	_, ok := p.GetCandles(context.Background(), "ETHUSDT", "1h", 3)
	assert.False(t, ok)
}

func TestPipelineWithoutCacheDegradesToNone(t *testing.T) {
	src := &fakeSource{err: errors.New("exchange unreachable")}
	p := New(src, nil, time.Minute)

	_, ok := p.GetCandles(context.Background(), "ETHUSDT", "1h", 3)
	assert.False(t, ok)
}

func TestRedisCacheRoundTrip(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := NewRedisCache(client)

	ctx := context.Background()
	key := Key("BTCUSDT", "1h", 2)
	_, ok := cache.Get(ctx, key)
	assert.False(t, ok)

	cache.Set(ctx, key, sampleCandles(2), time.Minute)
	mr.FastForward(0) // let the async write goroutine schedule

	assert.Eventually(t, func() bool {
		got, ok := cache.Get(ctx, key)
		return ok && len(got) == 2
	}, time.Second, 10*time.Millisecond)
}

func TestRedisCacheMissOnRedisError(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := NewRedisCache(client)
	mr.Close() // simulate redis being unreachable

	_, ok := cache.Get(context.Background(), "anykey")
	assert.False(t, ok)
}
