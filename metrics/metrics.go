// Package metrics exposes the Prometheus instrumentation for the
// trading loop and backtester: trade counts, halts, equity and open
// position gauges. It never participates in any trading decision.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TradesExecuted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cryptocore_trades_executed_total",
			Help: "Number of fills executed, by symbol, side and mode.",
		},
		[]string{"symbol", "side", "mode"},
	)

	HaltsTriggered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cryptocore_halts_triggered_total",
			Help: "Number of times the daily drawdown kill-switch latched.",
		},
		[]string{},
	)

	Equity = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cryptocore_equity_usdt",
			Help: "Current portfolio equity, mark-to-market in quote currency.",
		},
		[]string{"mode"},
	)

	OpenPositions = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cryptocore_open_positions",
			Help: "Number of currently open positions.",
		},
		[]string{"mode"},
	)
)

// RecordFill updates the trade counter for a completed fill.
func RecordFill(symbol string, side string, mode string) {
	TradesExecuted.WithLabelValues(symbol, side, mode).Inc()
}

// RecordHalt increments the kill-switch trip counter.
func RecordHalt() {
	HaltsTriggered.WithLabelValues().Inc()
}

// SetEquity records the current mark-to-market equity.
func SetEquity(mode string, equity float64) {
	Equity.WithLabelValues(mode).Set(equity)
}

// SetOpenPositions records the current open position count.
func SetOpenPositions(mode string, count int) {
	OpenPositions.WithLabelValues(mode).Set(float64(count))
}
