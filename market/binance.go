package market

import (
	"context"
	"fmt"
	"strconv"
	"time"

	binance "github.com/adshao/go-binance/v2"
	"github.com/ajitpratap0/cryptocore/core"
)

// BinanceSource fetches OHLCV candles from Binance's klines endpoint. It
// implements Source.
type BinanceSource struct {
	client *binance.Client
}

// NewBinanceSource wraps client as a candle Source.
func NewBinanceSource(client *binance.Client) *BinanceSource {
	return &BinanceSource{client: client}
}

// FetchCandles retrieves the most recent limit candles for symbol at
// the given timeframe (Binance interval string, e.g. "1h").
func (s *BinanceSource) FetchCandles(ctx context.Context, symbol, timeframe string, limit int) ([]core.Candle, error) {
	klines, err := s.client.NewKlinesService().
		Symbol(symbol).
		Interval(timeframe).
		Limit(limit).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("market: fetch klines for %s: %w", symbol, err)
	}

	candles := make([]core.Candle, 0, len(klines))
	for _, k := range klines {
		open, _ := strconv.ParseFloat(k.Open, 64)
		high, _ := strconv.ParseFloat(k.High, 64)
		low, _ := strconv.ParseFloat(k.Low, 64)
		close_, _ := strconv.ParseFloat(k.Close, 64)
		volume, _ := strconv.ParseFloat(k.Volume, 64)

		candle, err := core.NewCandle(k.OpenTime, open, high, low, close_, volume)
		if err != nil {
			return nil, fmt.Errorf("market: invalid candle for %s: %w", symbol, err)
		}
		candles = append(candles, candle)
	}
	return candles, nil
}

// FetchHistory pages through Binance's klines endpoint from start to
// end (inclusive), advancing the window's StartTime cursor one step
// past the last candle received each page so a window spanning more
// than one page's worth of bars isn't silently truncated.
func (s *BinanceSource) FetchHistory(ctx context.Context, symbol, timeframe string, start, end time.Time) ([]core.Candle, error) {
	const pageLimit = 1000

	stepSeconds, err := core.ParseTimeframeSeconds(timeframe)
	if err != nil {
		return nil, fmt.Errorf("market: fetch history for %s: %w", symbol, err)
	}
	stepMillis := stepSeconds * 1000

	sinceMs := start.UnixMilli()
	endMs := end.UnixMilli()
	lastSeenMs := int64(-1)

	var out []core.Candle
	for sinceMs <= endMs {
		klines, err := s.client.NewKlinesService().
			Symbol(symbol).
			Interval(timeframe).
			StartTime(sinceMs).
			EndTime(endMs).
			Limit(pageLimit).
			Do(ctx)
		if err != nil {
			return nil, fmt.Errorf("market: fetch klines for %s: %w", symbol, err)
		}
		if len(klines) == 0 {
			break
		}

		for _, k := range klines {
			if k.OpenTime <= lastSeenMs {
				continue
			}
			lastSeenMs = k.OpenTime

			open, _ := strconv.ParseFloat(k.Open, 64)
			high, _ := strconv.ParseFloat(k.High, 64)
			low, _ := strconv.ParseFloat(k.Low, 64)
			close_, _ := strconv.ParseFloat(k.Close, 64)
			volume, _ := strconv.ParseFloat(k.Volume, 64)

			candle, err := core.NewCandle(k.OpenTime, open, high, low, close_, volume)
			if err != nil {
				return nil, fmt.Errorf("market: invalid candle for %s: %w", symbol, err)
			}
			out = append(out, candle)
		}

		nextSince := lastSeenMs + stepMillis
		if nextSince <= sinceMs {
			nextSince = sinceMs + stepMillis
		}
		sinceMs = nextSince
	}
	return out, nil
}
