package backtest

import (
	"math"
	"testing"
	"time"

	"github.com/ajitpratap0/cryptocore/core"
	"github.com/stretchr/testify/assert"
)

func TestComputeMetricsTotalReturnAndDrawdown(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	curve := []EquityPoint{
		{Timestamp: base, Equity: 10000},
		{Timestamp: base.Add(time.Hour), Equity: 11000},
		{Timestamp: base.Add(2 * time.Hour), Equity: 9900},
		{Timestamp: base.Add(3 * time.Hour), Equity: 10500},
	}
	m := computeMetrics(10000, curve, nil, 3600)

	assert.InDelta(t, 5.0, m.TotalReturnPct, 1e-9)
	// peak 11000, trough 9900 -> drawdown 10%
	assert.InDelta(t, 10.0, m.MaxDrawdownPct, 1e-9)
}

func TestProfitFactorInfiniteWithNoLosses(t *testing.T) {
	trades := []core.TradeRecord{
		{Side: core.SideSell, RealizedPnL: 50},
		{Side: core.SideSell, RealizedPnL: 30},
	}
	pf := profitFactor(trades)
	assert.True(t, math.IsInf(pf, 1))
}

func TestProfitFactorZeroWithNoTrades(t *testing.T) {
	assert.Equal(t, 0.0, profitFactor(nil))
}

func TestProfitFactorRatio(t *testing.T) {
	trades := []core.TradeRecord{
		{Side: core.SideSell, RealizedPnL: 100},
		{Side: core.SideSell, RealizedPnL: -50},
	}
	pf := profitFactor(trades)
	assert.InDelta(t, 2.0, pf, 1e-9)
}

func TestWinRatePct(t *testing.T) {
	trades := []core.TradeRecord{
		{Side: core.SideSell, RealizedPnL: 5},
		{Side: core.SideSell, RealizedPnL: -5},
		{Side: core.SideSell, RealizedPnL: 1},
	}
	closed := closedTradesOnly(trades)
	assert.InDelta(t, 66.66666666, winRatePct(closed), 1e-6)
}

func TestSharpeAnnualizedZeroWithTooFewReturns(t *testing.T) {
	curve := []EquityPoint{{Equity: 10000}, {Equity: 10100}}
	assert.Equal(t, 0.0, sharpeAnnualized(curve, 3600))
}

func TestSharpeAnnualizedZeroWithZeroStdev(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	curve := []EquityPoint{
		{Timestamp: base, Equity: 10000},
		{Timestamp: base.Add(time.Hour), Equity: 10100},
		{Timestamp: base.Add(2 * time.Hour), Equity: 10201},
	}
	// constant 1% return every step -> stdev is zero
	assert.Equal(t, 0.0, sharpeAnnualized(curve, 3600))
}
