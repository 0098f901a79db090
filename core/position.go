package core

import (
	"fmt"
	"time"
)

// Position is one open long-only spot holding of a single symbol.
// Positions are mutated only by partial-close (amount and fee pro-rated)
// and destroyed on full close; at most one Position exists per symbol at
// a time, a contract the portfolio map (not this type) enforces.
type Position struct {
	Symbol         string
	Amount         float64 // base currency, > 0
	EntryPrice     float64 // quote currency, > 0
	EntryTimestamp time.Time
	StopLoss       float64 // quote currency, < EntryPrice
	TakeProfit     float64 // quote currency, > EntryPrice
	EntryFee       float64 // cumulative entry fee paid so far, quote currency
}

// Validate checks the Position invariant: StopLoss < EntryPrice <
// TakeProfit, and a positive amount/entry price.
func (p Position) Validate() error {
	if p.Symbol == "" {
		return fmt.Errorf("core: position symbol is empty")
	}
	if p.Amount <= 0 {
		return fmt.Errorf("core: position amount %.8f must be positive", p.Amount)
	}
	if p.EntryPrice <= 0 {
		return fmt.Errorf("core: position entry price %.8f must be positive", p.EntryPrice)
	}
	if !(p.StopLoss < p.EntryPrice) {
		return fmt.Errorf("core: position stop-loss %.8f must be below entry price %.8f", p.StopLoss, p.EntryPrice)
	}
	if !(p.EntryPrice < p.TakeProfit) {
		return fmt.Errorf("core: position take-profit %.8f must be above entry price %.8f", p.TakeProfit, p.EntryPrice)
	}
	return nil
}

// PartialClose removes soldAmount from the position, pro-rating the
// retained entry fee. It returns the fee allocated to the closed portion
// and the resulting position state (amount and fee reduced). soldAmount
// must not exceed p.Amount; passing the full amount allocates the whole
// entry fee and leaves a zero-amount remainder for the caller to discard.
func (p Position) PartialClose(soldAmount float64) (feeAlloc float64, remaining Position) {
	frac := soldAmount / p.Amount
	feeAlloc = p.EntryFee * frac

	remaining = p
	remaining.Amount = p.Amount - soldAmount
	remaining.EntryFee = p.EntryFee - feeAlloc
	return feeAlloc, remaining
}
