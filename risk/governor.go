// Package risk implements the risk governor: the daily drawdown
// kill-switch, position sizing, and stop/take-profit construction and
// evaluation. It holds no exchange or cache dependency of its own — it
// is pure decision logic over the caller-supplied Portfolio and
// RiskState.
package risk

import (
	"time"

	"github.com/ajitpratap0/cryptocore/core"
)

// Limits holds the tunable risk parameters, mirroring the `risk`
// section of the external configuration file.
type Limits struct {
	DailyDrawdownLimit float64 // fraction, e.g. 0.05 for 5%
	MaxPositionPct     float64 // fraction of equity per new position
	StopLossPct        float64
	TakeProfitPct      float64
}

// Governor evaluates the kill-switch, sizing and stop/take rules
// against a Limits configuration. Governor itself is stateless; the
// RiskState it operates on is owned by the caller (the trading loop).
type Governor struct {
	Limits Limits
}

// New returns a Governor configured with limits.
func New(limits Limits) *Governor {
	return &Governor{Limits: limits}
}

// UpdateDailyEquity advances state for the given UTC instant and
// current equity mark. On a UTC date rollover it resets the day-open
// equity and clears the halt. Otherwise, if equity has fallen through
// the daily drawdown limit from the recorded day-open equity, it
// latches halted — there is no un-halting before the next date
// rollover.
func (g *Governor) UpdateDailyEquity(state *core.RiskState, nowUTC time.Time, equity float64) {
	today := nowUTC.Format("2006-01-02")
	if state.Date != today {
		state.Date = today
		state.DayOpenEquity = equity
		state.HasDayOpen = true
		state.Halted = false
		return
	}
	if state.HasDayOpen && equity <= state.DayOpenEquity*(1-g.Limits.DailyDrawdownLimit) {
		state.Halted = true
	}
}

// MaxQuoteAllocation returns the quote-currency amount available for a
// new position: equity times the configured max position percentage,
// clamped to freeQuote when hasFreeQuote is set. Returns 0 if the
// resulting allocation would be zero or negative.
func (g *Governor) MaxQuoteAllocation(equity float64, freeQuote float64, hasFreeQuote bool) float64 {
	alloc := equity * g.Limits.MaxPositionPct
	if alloc <= 0 {
		return 0
	}
	if hasFreeQuote && freeQuote < alloc {
		alloc = freeQuote
	}
	if alloc <= 0 {
		return 0
	}
	return alloc
}

// BuildPosition constructs a Position from a fill, attaching stop-loss
// and take-profit prices derived from the configured percentages.
func (g *Governor) BuildPosition(symbol string, amount, entryPrice, entryFee float64, entryTimestamp time.Time) core.Position {
	return core.Position{
		Symbol:         symbol,
		Amount:         amount,
		EntryPrice:     entryPrice,
		EntryTimestamp: entryTimestamp,
		StopLoss:       entryPrice * (1 - g.Limits.StopLossPct),
		TakeProfit:     entryPrice * (1 + g.Limits.TakeProfitPct),
		EntryFee:       entryFee,
	}
}

// ExitReason classifies why an open position should be closed, if at
// all.
type ExitReason string

const (
	ExitNone       ExitReason = ""
	ExitStopLoss   ExitReason = "stop-loss"
	ExitTakeProfit ExitReason = "take-profit"
)

// StopTakeReason evaluates lastPrice against the position's stop and
// take levels. Stop-loss takes priority over take-profit when both
// would trigger on the same price.
func StopTakeReason(position core.Position, lastPrice float64) ExitReason {
	if lastPrice <= position.StopLoss {
		return ExitStopLoss
	}
	if lastPrice >= position.TakeProfit {
		return ExitTakeProfit
	}
	return ExitNone
}
