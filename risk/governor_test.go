package risk

import (
	"testing"
	"time"

	"github.com/ajitpratap0/cryptocore/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLimits() Limits {
	return Limits{
		DailyDrawdownLimit: 0.05,
		MaxPositionPct:     0.1,
		StopLossPct:        0.02,
		TakeProfitPct:      0.04,
	}
}

func TestUpdateDailyEquityResetsOnDateRollover(t *testing.T) {
	g := New(testLimits())
	state := &core.RiskState{}

	day1 := time.Date(2026, 7, 1, 10, 0, 0, 0, time.UTC)
	g.UpdateDailyEquity(state, day1, 1000)
	require.True(t, state.HasDayOpen)
	assert.Equal(t, "2026-07-01", state.Date)
	assert.InDelta(t, 1000, state.DayOpenEquity, 1e-9)
	assert.False(t, state.Halted)

	day2 := time.Date(2026, 7, 2, 0, 5, 0, 0, time.UTC)
	g.UpdateDailyEquity(state, day2, 500) // huge drop, but a new day resets
	assert.Equal(t, "2026-07-02", state.Date)
	assert.InDelta(t, 500, state.DayOpenEquity, 1e-9)
	assert.False(t, state.Halted)
}

func TestUpdateDailyEquityLatchesHalt(t *testing.T) {
	g := New(testLimits())
	state := &core.RiskState{}
	day := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	g.UpdateDailyEquity(state, day, 1000)

	// drawdown limit is 5%; a drop to 940 breaches it
	g.UpdateDailyEquity(state, day.Add(time.Hour), 940)
	assert.True(t, state.Halted)

	// halt latches even if equity recovers within the same day
	g.UpdateDailyEquity(state, day.Add(2*time.Hour), 1000)
	assert.True(t, state.Halted)
}

func TestMaxQuoteAllocation(t *testing.T) {
	g := New(testLimits())

	assert.InDelta(t, 1000, g.MaxQuoteAllocation(10000, 0, false), 1e-9)

	// clamped by free quote
	assert.InDelta(t, 300, g.MaxQuoteAllocation(10000, 300, true), 1e-9)

	// zero equity yields zero allocation
	assert.InDelta(t, 0, g.MaxQuoteAllocation(0, 0, false), 1e-9)
}

func TestMaxQuoteAllocationZeroPositionPct(t *testing.T) {
	limits := testLimits()
	limits.MaxPositionPct = 0
	g := New(limits)
	assert.InDelta(t, 0, g.MaxQuoteAllocation(10000, 0, false), 1e-9)
}

func TestBuildPosition(t *testing.T) {
	g := New(testLimits())
	now := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	pos := g.BuildPosition("BTCUSDT", 1, 100, 0.1, now)

	require.NoError(t, pos.Validate())
	assert.InDelta(t, 98, pos.StopLoss, 1e-9)
	assert.InDelta(t, 104, pos.TakeProfit, 1e-9)
}

func TestStopTakeReasonPriority(t *testing.T) {
	pos := core.Position{
		Symbol:     "BTCUSDT",
		Amount:     1,
		EntryPrice: 100,
		StopLoss:   98,
		TakeProfit: 98, // contrived: both trigger at the same price
	}
	// stop-loss must win when both would fire
	assert.Equal(t, ExitStopLoss, StopTakeReason(pos, 98))
}

func TestStopTakeReasonNone(t *testing.T) {
	pos := core.Position{
		Symbol:     "BTCUSDT",
		Amount:     1,
		EntryPrice: 100,
		StopLoss:   98,
		TakeProfit: 104,
	}
	assert.Equal(t, ExitNone, StopTakeReason(pos, 101))
	assert.Equal(t, ExitTakeProfit, StopTakeReason(pos, 104))
	assert.Equal(t, ExitStopLoss, StopTakeReason(pos, 97))
}
