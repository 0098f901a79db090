// Package backtest implements the event-time, multi-symbol backtest
// simulator: a deterministic k-way merge over each symbol's candle
// history that reuses the signal engine, risk governor and paper fill
// model unchanged from live trading.
package backtest

import (
	"context"
	"time"

	"github.com/ajitpratap0/cryptocore/core"
	"github.com/ajitpratap0/cryptocore/execution"
	"github.com/ajitpratap0/cryptocore/risk"
	"github.com/ajitpratap0/cryptocore/signal"
)

// Config configures one simulation run.
type Config struct {
	Symbols      []string
	Timeframe    string // e.g. "1h"; drives the Sharpe annualization factor
	Start        time.Time
	End          time.Time
	WarmupWindow int // max(history_limit, 50); candles before Start build the window but don't trade
	StartingCash float64
	Engine       *signal.Engine
	Governor     *risk.Governor
	PaperBackend *execution.PaperBackend
}

// EquityPoint is one sample of the equity curve.
type EquityPoint struct {
	Timestamp time.Time
	Equity    float64
}

// Result is everything produced by a completed Run.
type Result struct {
	EquityCurve []EquityPoint
	Trades      []core.TradeRecord
	Metrics     Metrics
}

type symbolCursor struct {
	candles []core.Candle
	index   int
	window  []core.Candle
}

// Run replays candles (keyed by symbol, chronologically ordered and
// covering at least Start-warmup through End) through the signal
// engine and risk governor exactly as the live trading loop would,
// driven by an event-time k-way merge across symbols.
func Run(ctx context.Context, cfg Config, candles map[string][]core.Candle) (Result, error) {
	cursors := make(map[string]*symbolCursor, len(cfg.Symbols))
	for _, symbol := range cfg.Symbols {
		cursors[symbol] = &symbolCursor{candles: candles[symbol]}
	}

	portfolio := core.NewPortfolio(cfg.StartingCash)
	riskState := &core.RiskState{}
	lastClose := make(map[string]float64, len(cfg.Symbols))

	var equityCurve []EquityPoint
	var trades []core.TradeRecord

	for {
		select {
		case <-ctx.Done():
			return Result{}, ctx.Err()
		default:
		}

		nextTS, any := nextTimestamp(cursors)
		if !any || nextTS.After(cfg.End) {
			break
		}

		ticked := advanceTicked(cursors, nextTS, cfg.WarmupWindow)
		for _, symbol := range ticked {
			lastClose[symbol] = cursors[symbol].window[len(cursors[symbol].window)-1].Close
		}

		equity := portfolio.Equity(lastClose)
		cfg.Governor.UpdateDailyEquity(riskState, nextTS, equity)

		if !nextTS.Before(cfg.Start) {
			for _, symbol := range ticked {
				rec := evaluateSymbol(portfolio, riskState, cfg, symbol, cursors[symbol].window, nextTS, equity)
				if rec != nil {
					trades = append(trades, *rec)
				}
			}
			equityCurve = append(equityCurve, EquityPoint{Timestamp: nextTS, Equity: portfolio.Equity(lastClose)})
		}
	}

	finalEquity := liquidateAll(portfolio, lastClose, cfg, &trades)
	if len(equityCurve) > 0 && equityCurve[len(equityCurve)-1].Timestamp.Equal(lastTimestamp(cursors)) {
		equityCurve[len(equityCurve)-1].Equity = finalEquity
	} else {
		equityCurve = append(equityCurve, EquityPoint{Timestamp: lastTimestamp(cursors), Equity: finalEquity})
	}

	timeframeSeconds, err := core.ParseTimeframeSeconds(cfg.Timeframe)
	if err != nil {
		return Result{}, err
	}
	metrics := computeMetrics(cfg.StartingCash, equityCurve, trades, timeframeSeconds)
	return Result{EquityCurve: equityCurve, Trades: trades, Metrics: metrics}, nil
}

func nextTimestamp(cursors map[string]*symbolCursor) (time.Time, bool) {
	var min time.Time
	found := false
	for _, c := range cursors {
		if c.index >= len(c.candles) {
			continue
		}
		ts := time.UnixMilli(c.candles[c.index].TimestampMs).UTC()
		if !found || ts.Before(min) {
			min = ts
			found = true
		}
	}
	return min, found
}

func advanceTicked(cursors map[string]*symbolCursor, ts time.Time, warmup int) []string {
	var ticked []string
	for symbol, c := range cursors {
		if c.index >= len(c.candles) {
			continue
		}
		bar := c.candles[c.index]
		if !time.UnixMilli(bar.TimestampMs).UTC().Equal(ts) {
			continue
		}
		c.index++
		c.window = append(c.window, bar)
		if len(c.window) > warmup {
			c.window = c.window[len(c.window)-warmup:]
		}
		ticked = append(ticked, symbol)
	}
	return ticked
}

func lastTimestamp(cursors map[string]*symbolCursor) time.Time {
	var max time.Time
	for _, c := range cursors {
		if len(c.window) == 0 {
			continue
		}
		ts := time.UnixMilli(c.window[len(c.window)-1].TimestampMs).UTC()
		if ts.After(max) {
			max = ts
		}
	}
	return max
}

func evaluateSymbol(portfolio *core.Portfolio, riskState *core.RiskState, cfg Config, symbol string, window []core.Candle, now time.Time, equity float64) *core.TradeRecord {
	lastPrice := window[len(window)-1].Close
	position, hasPosition := portfolio.Positions[symbol]

	if hasPosition {
		if reason := risk.StopTakeReason(position, lastPrice); reason != risk.ExitNone {
			return closeForBacktest(portfolio, symbol, position, lastPrice, string(reason), now, cfg)
		}
	}

	var posPtr *core.Position
	if hasPosition {
		posPtr = &position
	}
	sig := cfg.Engine.Generate(window, posPtr)

	switch sig.Action {
	case core.ActionBuy:
		if hasPosition || riskState.Halted {
			return nil
		}
		alloc := cfg.Governor.MaxQuoteAllocation(equity, portfolio.Cash, true)
		if alloc <= 0 {
			return nil
		}
		newCash, fill, err := cfg.PaperBackend.Buy(portfolio.Cash, alloc, lastPrice)
		if err != nil {
			return nil
		}
		portfolio.Cash = newCash
		portfolio.Positions[symbol] = cfg.Governor.BuildPosition(symbol, fill.Amount, fill.Price, fill.FeeQuote, now)
		return &core.TradeRecord{
			Timestamp: now, Symbol: symbol, Side: core.SideBuy, Amount: fill.Amount,
			Price: fill.Price, Fee: fill.FeeQuote, Reason: sig.Reason, Mode: core.ModePaper,
		}
	case core.ActionSell:
		if !hasPosition {
			return nil
		}
		return closeForBacktest(portfolio, symbol, position, lastPrice, sig.Reason, now, cfg)
	}
	return nil
}

func closeForBacktest(portfolio *core.Portfolio, symbol string, position core.Position, price float64, reason string, now time.Time, cfg Config) *core.TradeRecord {
	newCash, fill := cfg.PaperBackend.Sell(portfolio.Cash, position.Amount, price)
	portfolio.Cash = newCash

	feeAlloc, _ := position.PartialClose(position.Amount)
	realized := (fill.Price-position.EntryPrice)*position.Amount - feeAlloc - fill.FeeQuote
	delete(portfolio.Positions, symbol)

	return &core.TradeRecord{
		Timestamp: now, Symbol: symbol, Side: core.SideSell, Amount: fill.Amount,
		Price: fill.Price, Fee: fill.FeeQuote, RealizedPnL: realized, Reason: reason, Mode: core.ModePaper,
	}
}

// liquidateAll force-closes every remaining position at its last
// observed close, with reason "end-of-backtest", and returns the
// resulting equity.
func liquidateAll(portfolio *core.Portfolio, lastClose map[string]float64, cfg Config, trades *[]core.TradeRecord) float64 {
	for symbol, position := range portfolio.Positions {
		price, ok := lastClose[symbol]
		if !ok {
			price = position.EntryPrice
		}
		rec := closeForBacktest(portfolio, symbol, position, price, "end-of-backtest", time.Time{}, cfg)
		if rec != nil {
			*trades = append(*trades, *rec)
		}
	}
	return portfolio.Equity(lastClose)
}
