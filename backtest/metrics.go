package backtest

import (
	"math"

	"github.com/ajitpratap0/cryptocore/core"
)

// Metrics summarizes a completed backtest run. All percentage fields
// are expressed as whole percent, not fractions (a 12% return is 12.0).
type Metrics struct {
	TotalReturnPct   float64
	TradeCount       int
	WinRatePct       float64
	MaxDrawdownPct   float64
	SharpeAnnualized float64
	ProfitFactor     float64
}

// computeMetrics derives Metrics from the starting cash, the sampled
// equity curve, the closed trade records and the timeframe's length in
// seconds. It intentionally does not reuse the teacher's own
// Sharpe/Sortino/Calmar formulas: these metrics follow the exact
// definitions a backtest report is expected to match.
func computeMetrics(startingCash float64, curve []EquityPoint, trades []core.TradeRecord, timeframeSeconds int64) Metrics {
	m := Metrics{}

	if len(curve) > 0 && startingCash > 0 {
		final := curve[len(curve)-1].Equity
		m.TotalReturnPct = (final - startingCash) / startingCash * 100
	}

	m.MaxDrawdownPct = maxDrawdownPct(curve)

	closedTrades := closedTradesOnly(trades)
	m.TradeCount = len(closedTrades)
	m.WinRatePct = winRatePct(closedTrades)
	m.ProfitFactor = profitFactor(closedTrades)
	m.SharpeAnnualized = sharpeAnnualized(curve, timeframeSeconds)

	return m
}

func closedTradesOnly(trades []core.TradeRecord) []core.TradeRecord {
	var out []core.TradeRecord
	for _, t := range trades {
		if t.Side == core.SideSell {
			out = append(out, t)
		}
	}
	return out
}

func maxDrawdownPct(curve []EquityPoint) float64 {
	if len(curve) == 0 {
		return 0
	}
	peak := curve[0].Equity
	maxDD := 0.0
	for _, pt := range curve {
		if pt.Equity > peak {
			peak = pt.Equity
		}
		if peak <= 0 {
			continue
		}
		dd := (peak - pt.Equity) / peak
		if dd > maxDD {
			maxDD = dd
		}
	}
	return maxDD * 100
}

func winRatePct(closedTrades []core.TradeRecord) float64 {
	if len(closedTrades) == 0 {
		return 0
	}
	wins := 0
	for _, t := range closedTrades {
		if t.RealizedPnL > 0 {
			wins++
		}
	}
	return float64(wins) / float64(len(closedTrades)) * 100
}

// profitFactor is sum(wins) / |sum(losses)|. When there are wins but no
// losses the ratio is defined as +Inf; with neither wins nor losses it
// is zero.
func profitFactor(closedTrades []core.TradeRecord) float64 {
	grossWin, grossLoss := 0.0, 0.0
	for _, t := range closedTrades {
		if t.RealizedPnL > 0 {
			grossWin += t.RealizedPnL
		} else {
			grossLoss += -t.RealizedPnL
		}
	}
	if grossLoss == 0 {
		if grossWin > 0 {
			return math.Inf(1)
		}
		return 0
	}
	return grossWin / grossLoss
}

// sharpeAnnualized computes mean(returns) / stdev(returns, ddof=1) *
// sqrt(periods/year), where returns are period-over-period fractional
// changes of the equity curve and periods/year = 31536000 /
// timeframeSeconds. Fewer than two returns, or a zero standard
// deviation, yields zero rather than a divide-by-zero.
func sharpeAnnualized(curve []EquityPoint, timeframeSeconds int64) float64 {
	if len(curve) < 3 || timeframeSeconds <= 0 {
		return 0
	}

	returns := make([]float64, 0, len(curve)-1)
	for i := 1; i < len(curve); i++ {
		prev := curve[i-1].Equity
		if prev == 0 {
			continue
		}
		returns = append(returns, (curve[i].Equity-prev)/prev)
	}
	if len(returns) < 2 {
		return 0
	}

	mean := 0.0
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	variance := 0.0
	for _, r := range returns {
		d := r - mean
		variance += d * d
	}
	variance /= float64(len(returns) - 1) // ddof=1
	stdev := math.Sqrt(variance)
	if stdev == 0 {
		return 0
	}

	periodsPerYear := 31536000.0 / float64(timeframeSeconds)
	return mean / stdev * math.Sqrt(periodsPerYear)
}
