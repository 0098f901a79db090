package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPositionValidate(t *testing.T) {
	p := Position{
		Symbol:         "BTC/USDT",
		Amount:         1,
		EntryPrice:     100,
		EntryTimestamp: time.Now(),
		StopLoss:       95,
		TakeProfit:     110,
		EntryFee:       0.1,
	}
	require.NoError(t, p.Validate())

	bad := p
	bad.StopLoss = 101
	assert.Error(t, bad.Validate())

	bad2 := p
	bad2.TakeProfit = 90
	assert.Error(t, bad2.Validate())
}

func TestPositionPartialClose(t *testing.T) {
	p := Position{
		Symbol:     "BTC/USDT",
		Amount:     10,
		EntryPrice: 100,
		StopLoss:   95,
		TakeProfit: 110,
		EntryFee:   1.0,
	}

	feeAlloc, remaining := p.PartialClose(4)
	assert.InDelta(t, 0.4, feeAlloc, 1e-9)
	assert.InDelta(t, 6, remaining.Amount, 1e-9)
	assert.InDelta(t, 0.6, remaining.EntryFee, 1e-9)
}
