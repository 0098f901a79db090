// Package core holds the immutable value types shared by every component
// of the trading engine: candles, positions, signals, trade records and
// the portfolio/risk state the trading loop owns.
package core

import "fmt"

// Candle is one OHLCV bar. Timestamp is milliseconds since the Unix
// epoch, UTC. Candle is immutable once constructed.
type Candle struct {
	TimestampMs int64   `json:"timestamp_ms"`
	Open        float64 `json:"open"`
	High        float64 `json:"high"`
	Low         float64 `json:"low"`
	Close       float64 `json:"close"`
	Volume      float64 `json:"volume"`
}

// NewCandle validates and constructs a Candle. It rejects bars whose
// high/low do not bound the open/close range and negative volume.
func NewCandle(timestampMs int64, open, high, low, close, volume float64) (Candle, error) {
	c := Candle{
		TimestampMs: timestampMs,
		Open:        open,
		High:        high,
		Low:         low,
		Close:       close,
		Volume:      volume,
	}
	if err := c.Validate(); err != nil {
		return Candle{}, err
	}
	return c, nil
}

// Validate checks the candle invariant:
// low <= min(open, close) <= max(open, close) <= high, volume >= 0.
func (c Candle) Validate() error {
	lo := c.Open
	if c.Close < lo {
		lo = c.Close
	}
	hi := c.Open
	if c.Close > hi {
		hi = c.Close
	}
	if c.Low > lo {
		return fmt.Errorf("core: candle low %.8f exceeds min(open,close) %.8f", c.Low, lo)
	}
	if hi > c.High {
		return fmt.Errorf("core: candle max(open,close) %.8f exceeds high %.8f", hi, c.High)
	}
	if c.Volume < 0 {
		return fmt.Errorf("core: candle volume %.8f is negative", c.Volume)
	}
	return nil
}

// Closes extracts the close series from a window of candles, in order.
func Closes(candles []Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = c.Close
	}
	return out
}

// Volumes extracts the volume series from a window of candles, in order.
func Volumes(candles []Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = c.Volume
	}
	return out
}
