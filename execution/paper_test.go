package execution

import (
	"testing"

	"github.com/ajitpratap0/cryptocore/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaperBuyClampsForFee(t *testing.T) {
	b := NewPaperBackend(0.001)

	newCash, fill, err := b.Buy(1000, 1000, 100)
	require.NoError(t, err)

	// quote_to_spend * (1+fee_pct) <= cash must hold
	assert.LessOrEqual(t, fill.Amount*100, 1000.0)
	assert.InDelta(t, 1000/(1.001)/100, fill.Amount, 1e-6)
	assert.InDelta(t, 1000/1.001*0.001, fill.FeeQuote, 1e-6)
	assert.InDelta(t, 0, newCash, 1e-6)
	assert.GreaterOrEqual(t, newCash, 0.0)
}

func TestPaperBuyClampsToAvailableCash(t *testing.T) {
	b := NewPaperBackend(0.001)

	newCash, fill, err := b.Buy(500, 1000, 100) // asking for more than available cash
	require.NoError(t, err)

	assert.LessOrEqual(t, fill.Amount*100+fill.FeeQuote, 500.0+1e-9)
	assert.GreaterOrEqual(t, newCash, 0.0)
}

func TestPaperBuyRejectsNonPositiveSpend(t *testing.T) {
	b := NewPaperBackend(0.001)

	_, _, err := b.Buy(1000, 0, 100)
	assert.Error(t, err)

	_, _, err = b.Buy(1000, -5, 100)
	assert.Error(t, err)
}

func TestPaperSell(t *testing.T) {
	b := NewPaperBackend(0.001)

	newCash, fill := b.Sell(0, 2, 100)
	assert.InDelta(t, 200, fill.Amount*fill.Price, 1e-9)
	assert.InDelta(t, 0.2, fill.FeeQuote, 1e-9)
	assert.InDelta(t, 199.8, newCash, 1e-9)
}

func TestPaperRoundTripPreservesCashWithinFees(t *testing.T) {
	b := NewPaperBackend(0.001)

	cash, buyFill, err := b.Buy(1000, 500, 100)
	require.NoError(t, err)

	pos := core.Position{
		Symbol:     "BTCUSDT",
		Amount:     buyFill.Amount,
		EntryPrice: buyFill.Price,
		EntryFee:   buyFill.FeeQuote,
		StopLoss:   90,
		TakeProfit: 110,
	}

	cash, sellFill := b.Sell(cash, pos.Amount, 100)
	pnl, remaining := ClosePartial(pos, pos.Amount, sellFill)

	assert.InDelta(t, 0, remaining.Amount, 1e-9)
	// round-tripping at the same price loses exactly both fees
	assert.InDelta(t, -(buyFill.FeeQuote + sellFill.FeeQuote), pnl, 1e-6)
	assert.Greater(t, cash, 0.0)
}
