// Package tradeloop implements the periodic orchestrator: per tick it
// pulls candles through the market-data pipeline, consults the signal
// engine and risk governor, and routes fills through an execution
// backend. The loop is single-threaded and cooperative — within a tick,
// symbols are processed strictly in configured order so portfolio
// mutations stay linearizable without locks.
package tradeloop

import (
	"context"
	"fmt"
	"time"

	"github.com/ajitpratap0/cryptocore/core"
	"github.com/ajitpratap0/cryptocore/market"
	"github.com/ajitpratap0/cryptocore/metrics"
	"github.com/ajitpratap0/cryptocore/notify"
	"github.com/ajitpratap0/cryptocore/risk"
	"github.com/ajitpratap0/cryptocore/signal"
	"github.com/ajitpratap0/cryptocore/tradelog"
	"github.com/rs/zerolog/log"
)

// FreeQuoteSource reports how much quote currency is available for new
// positions. In paper mode this is just portfolio cash; in live mode it
// is the exchange's reported free balance.
type FreeQuoteSource interface {
	FreeQuote(ctx context.Context) (amount float64, ok bool, err error)
}

// PortfolioCashFreeQuote reads free quote straight from the portfolio,
// for paper mode.
type PortfolioCashFreeQuote struct {
	Portfolio *core.Portfolio
}

func (f PortfolioCashFreeQuote) FreeQuote(context.Context) (float64, bool, error) {
	return f.Portfolio.Cash, true, nil
}

// Config wires every dependency the loop needs for one run. Symbols
// are processed in the given order every tick.
type Config struct {
	Mode            core.Mode
	Symbols         []string
	Timeframe       string
	OHLCVLimit      int
	PollInterval    time.Duration
	Pipeline        *market.Pipeline
	Engine          *signal.Engine
	Governor        *risk.Governor
	Backend         Backend
	FreeQuote       FreeQuoteSource
	Notifier        notify.Notifier
	Sink            tradelog.Sink
	ExchangeBreaker *risk.Breaker // wraps pipeline candle fetches only (backend calls are not wrapped), may be nil
}

// Loop is one running instance of the trading orchestrator. It owns
// Portfolio and RiskState exclusively.
type Loop struct {
	cfg       Config
	Portfolio *core.Portfolio
	RiskState *core.RiskState
}

// New returns a Loop seeded with startingCash (ignored in live mode,
// where cash tracks the exchange balance).
func New(cfg Config, startingCash float64) *Loop {
	return &Loop{
		cfg:       cfg,
		Portfolio: core.NewPortfolio(startingCash),
		RiskState: &core.RiskState{},
	}
}

// SetFreeQuote overrides the loop's free-quote source after
// construction, for callers that need the loop's own Portfolio to build
// one (e.g. PortfolioCashFreeQuote).
func (l *Loop) SetFreeQuote(source FreeQuoteSource) {
	l.cfg.FreeQuote = source
}

// Run executes ticks until ctx is cancelled, sleeping cfg.PollInterval
// between ticks. It always completes the in-flight tick before
// returning.
func (l *Loop) Run(ctx context.Context) error {
	for {
		if err := l.Tick(ctx, time.Now().UTC()); err != nil {
			log.Error().Err(err).Msg("tradeloop: tick failed")
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(l.cfg.PollInterval):
		}
	}
}

// Tick runs exactly one cycle of the loop for the given UTC instant.
func (l *Loop) Tick(ctx context.Context, now time.Time) error {
	lastClose := make(map[string]float64, len(l.cfg.Symbols))
	windows := make(map[string][]core.Candle, len(l.cfg.Symbols))

	for _, symbol := range l.cfg.Symbols {
		candles, ok := l.fetchCandles(ctx, symbol)
		if !ok {
			continue
		}
		windows[symbol] = candles
		lastClose[symbol] = candles[len(candles)-1].Close
	}

	if l.cfg.Mode == core.ModeLive && l.cfg.FreeQuote != nil {
		free, ok, err := l.cfg.FreeQuote.FreeQuote(ctx)
		if err != nil {
			log.Error().Err(err).Msg("tradeloop: failed to refresh free quote balance")
		} else if ok {
			l.Portfolio.Cash = free
		}
	}

	equity := l.Portfolio.Equity(lastClose)
	wasHalted := l.RiskState.Halted
	l.cfg.Governor.UpdateDailyEquity(l.RiskState, now, equity)
	if !wasHalted && l.RiskState.Halted {
		metrics.RecordHalt()
		l.notifyHalt(ctx, equity)
	}
	metrics.SetEquity(string(l.cfg.Mode), equity)
	metrics.SetOpenPositions(string(l.cfg.Mode), len(l.Portfolio.Positions))

	for _, symbol := range l.cfg.Symbols {
		candles, ok := windows[symbol]
		if !ok {
			continue
		}
		l.processSymbol(ctx, now, symbol, candles, equity)
	}

	return nil
}

func (l *Loop) fetchCandles(ctx context.Context, symbol string) ([]core.Candle, bool) {
	if l.cfg.ExchangeBreaker == nil {
		return l.cfg.Pipeline.GetCandles(ctx, symbol, l.cfg.Timeframe, l.cfg.OHLCVLimit)
	}

	var candles []core.Candle
	var ok bool
	_ = l.cfg.ExchangeBreaker.Execute(func() error {
		candles, ok = l.cfg.Pipeline.GetCandles(ctx, symbol, l.cfg.Timeframe, l.cfg.OHLCVLimit)
		if !ok {
			return fmt.Errorf("tradeloop: no candles for %s", symbol)
		}
		return nil
	})
	return candles, ok
}

func (l *Loop) processSymbol(ctx context.Context, now time.Time, symbol string, candles []core.Candle, equity float64) {
	position, hasPosition := l.Portfolio.Positions[symbol]
	lastPrice := candles[len(candles)-1].Close

	if hasPosition {
		if reason := risk.StopTakeReason(position, lastPrice); reason != risk.ExitNone {
			l.closePosition(ctx, now, symbol, position, lastPrice, string(reason))
			return
		}
	}

	var posPtr *core.Position
	if hasPosition {
		posPtr = &position
	}
	sig := l.cfg.Engine.Generate(candles, posPtr)

	switch sig.Action {
	case core.ActionBuy:
		if hasPosition || l.RiskState.Halted {
			return
		}
		l.openPosition(ctx, now, symbol, lastPrice, sig.Reason, equity)
	case core.ActionSell:
		if !hasPosition {
			return
		}
		l.closePosition(ctx, now, symbol, position, lastPrice, sig.Reason)
	}
}

func (l *Loop) openPosition(ctx context.Context, now time.Time, symbol string, price float64, reason string, equity float64) {
	freeQuote, hasFreeQuote, err := l.cfg.FreeQuote.FreeQuote(ctx)
	if err != nil {
		log.Error().Err(err).Str("symbol", symbol).Msg("tradeloop: failed to read free quote balance")
		return
	}

	alloc := l.cfg.Governor.MaxQuoteAllocation(equity, freeQuote, hasFreeQuote)
	if alloc <= 0 {
		return
	}

	fill, err := l.cfg.Backend.Buy(ctx, l.Portfolio, symbol, alloc, price)
	if err != nil {
		log.Error().Err(err).Str("symbol", symbol).Msg("tradeloop: buy failed")
		return
	}

	position := l.cfg.Governor.BuildPosition(symbol, fill.Amount, fill.Price, fill.FeeQuote, now)
	l.Portfolio.Positions[symbol] = position

	l.emitTrade(ctx, now, symbol, core.SideBuy, fill, 0, reason)
}

func (l *Loop) closePosition(ctx context.Context, now time.Time, symbol string, position core.Position, price float64, reason string) {
	fill, err := l.cfg.Backend.Sell(ctx, l.Portfolio, symbol, position.Amount, price)
	if err != nil {
		log.Error().Err(err).Str("symbol", symbol).Msg("tradeloop: sell failed")
		return
	}

	feeAlloc, _ := position.PartialClose(position.Amount)
	realized := (fill.Price-position.EntryPrice)*position.Amount - feeAlloc - fill.FeeQuote
	delete(l.Portfolio.Positions, symbol)

	l.emitTrade(ctx, now, symbol, core.SideSell, fill, realized, reason)
}

func (l *Loop) emitTrade(ctx context.Context, now time.Time, symbol string, side core.Side, fill core.Fill, realizedPnL float64, reason string) {
	record := core.TradeRecord{
		Timestamp:   now,
		Symbol:      symbol,
		Side:        side,
		Amount:      fill.Amount,
		Price:       fill.Price,
		Fee:         fill.FeeQuote,
		RealizedPnL: realizedPnL,
		Reason:      reason,
		Mode:        l.cfg.Mode,
		OrderID:     fill.OrderID,
	}
	if l.cfg.Sink != nil {
		if err := l.cfg.Sink.Append(ctx, record); err != nil {
			log.Error().Err(err).Str("symbol", symbol).Msg("tradeloop: failed to persist trade record")
		}
	}
	metrics.RecordFill(symbol, string(side), string(l.cfg.Mode))
}

func (l *Loop) notifyHalt(ctx context.Context, equity float64) {
	if l.cfg.Notifier == nil {
		return
	}
	msg := fmt.Sprintf("daily drawdown limit breached, new entries halted until next UTC day. equity=%.2f", equity)
	if err := l.cfg.Notifier.Send(ctx, "trading halted", msg); err != nil {
		log.Error().Err(err).Msg("tradeloop: failed to send halt notification")
	}
}
