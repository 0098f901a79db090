package tradeloop

import (
	"context"
	"fmt"

	"github.com/ajitpratap0/cryptocore/core"
	"github.com/ajitpratap0/cryptocore/execution"
)

// Backend routes a buy/sell decision to an execution backend and
// mutates portfolio.Cash when the backend is the paper simulator. Live
// fills never touch cash directly — live cash is the exchange's free
// balance, read fresh each tick.
type Backend interface {
	Buy(ctx context.Context, portfolio *core.Portfolio, symbol string, quoteToSpend, refPrice float64) (core.Fill, error)
	Sell(ctx context.Context, portfolio *core.Portfolio, symbol string, amount, refPrice float64) (core.Fill, error)
}

// PaperBackend adapts execution.PaperBackend (a pure function over
// cash) to the stateful Backend interface by reading and writing
// portfolio.Cash around each call.
type PaperBackend struct {
	Inner *execution.PaperBackend
}

func (b PaperBackend) Buy(_ context.Context, portfolio *core.Portfolio, _ string, quoteToSpend, refPrice float64) (core.Fill, error) {
	newCash, fill, err := b.Inner.Buy(portfolio.Cash, quoteToSpend, refPrice)
	if err != nil {
		return core.Fill{}, err
	}
	portfolio.Cash = newCash
	return fill, nil
}

func (b PaperBackend) Sell(_ context.Context, portfolio *core.Portfolio, _ string, amount, refPrice float64) (core.Fill, error) {
	newCash, fill := b.Inner.Sell(portfolio.Cash, amount, refPrice)
	portfolio.Cash = newCash
	return fill, nil
}

// LiveBackend adapts execution.LiveBackend to the Backend interface.
// It ignores the portfolio's cash entirely — in live mode, cash is
// whatever free balance the exchange reports.
type LiveBackend struct {
	Inner *execution.LiveBackend
}

func (b LiveBackend) Buy(ctx context.Context, _ *core.Portfolio, symbol string, quoteToSpend, refPrice float64) (core.Fill, error) {
	fill, err := b.Inner.Buy(ctx, symbol, quoteToSpend, refPrice)
	if err != nil {
		return core.Fill{}, fmt.Errorf("tradeloop: live buy %s: %w", symbol, err)
	}
	return fill, nil
}

func (b LiveBackend) Sell(ctx context.Context, _ *core.Portfolio, symbol string, amount, _ float64) (core.Fill, error) {
	fill, err := b.Inner.Sell(ctx, symbol, amount)
	if err != nil {
		return core.Fill{}, fmt.Errorf("tradeloop: live sell %s: %w", symbol, err)
	}
	return fill, nil
}
