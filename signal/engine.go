// Package signal implements the stateless signal engine: it classifies
// a chronologically ordered window of candles into buy, sell or hold,
// using RSI, MACD histogram crossovers and a volume spike gate. The
// engine never mutates state, never sizes an order and never talks to
// an exchange.
package signal

import (
	"math"

	"github.com/ajitpratap0/cryptocore/core"
	"github.com/ajitpratap0/cryptocore/indicator"
)

// Engine generates trading signals from a candle window. Engine is
// stateless and safe for concurrent use — it reads only its Config and
// its arguments.
type Engine struct {
	Config Config
}

// New returns a signal Engine configured with cfg.
func New(cfg Config) *Engine {
	return &Engine{Config: cfg}
}

// Generate classifies the given candle window into a Signal. position
// is the current open Position for this symbol, or nil if none is open.
func (e *Engine) Generate(candles []core.Candle, position *core.Position) core.Signal {
	minHistory := e.Config.MinHistory()
	if len(candles) < minHistory {
		return core.Hold("insufficient candle history")
	}

	closes := core.Closes(candles)
	volumes := core.Volumes(candles)

	rsi := indicator.RSI(closes, e.Config.RSIPeriod)
	macd := indicator.MACD(closes, e.Config.MACDFast, e.Config.MACDSlow, e.Config.MACDSignal)
	volMean := indicator.RollingMean(volumes, e.Config.VolumeMAPeriod)

	n := len(closes)
	lastRSI := rsi[n-1]
	histPrev := macd.Histogram[n-2]
	histLast := macd.Histogram[n-1]
	lastVolume := volumes[n-1]
	lastVolMean := volMean[n-1]

	if math.IsNaN(lastRSI) || math.IsNaN(histPrev) || math.IsNaN(histLast) || math.IsNaN(lastVolMean) {
		return core.Hold("indicators not ready")
	}

	bullishCross := histPrev <= 0 && histLast > 0
	bearishCross := histPrev >= 0 && histLast < 0
	volumeSpike := lastVolume > lastVolMean*e.Config.VolumeSpikeMult

	if position == nil {
		if lastRSI <= e.Config.RSIOversold && bullishCross && volumeSpike {
			return core.Buy("oversold rsi with bullish macd cross and volume spike")
		}
		return core.Hold("no entry")
	}

	if lastRSI >= e.Config.RSIOverbought && bearishCross && volumeSpike {
		return core.Sell("overbought rsi with bearish macd cross and volume spike")
	}
	return core.Hold("hold position")
}
