package execution

import "github.com/ajitpratap0/cryptocore/core"

// ClosePartial applies fill against an open position, closing
// soldAmount of it. It returns the realized P&L for the closed portion
// and the position's remaining state (amount and entry fee pro-rated).
// soldAmount must not exceed position.Amount; for a full close pass the
// whole amount and discard the zero-amount remaining position.
func ClosePartial(position core.Position, soldAmount float64, fill core.Fill) (realizedPnL float64, remaining core.Position) {
	feeAlloc, remaining := position.PartialClose(soldAmount)
	realizedPnL = (fill.Price-position.EntryPrice)*soldAmount - feeAlloc - fill.FeeQuote
	return realizedPnL, remaining
}
