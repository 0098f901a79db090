// Package execution implements the order execution backends: an
// in-memory paper simulator used by both the live trading loop (in
// paper mode) and the backtester, and a live backend wired to an
// exchange. Both backends produce the same core.Fill shape.
package execution

import (
	"fmt"

	"github.com/ajitpratap0/cryptocore/core"
)

// PaperBackend simulates fills against a cash balance. It holds no
// exchange connection and never blocks.
type PaperBackend struct {
	FeePct float64
}

// NewPaperBackend returns a PaperBackend charging feePct on both sides
// of a trade.
func NewPaperBackend(feePct float64) *PaperBackend {
	return &PaperBackend{FeePct: feePct}
}

// Buy spends up to quoteToSpend of cash at price, clamping first to the
// available cash and then further so the fee is fully covered by cash.
// It returns the resulting cash balance and the Fill.
func (b *PaperBackend) Buy(cash, quoteToSpend, price float64) (newCash float64, fill core.Fill, err error) {
	if quoteToSpend <= 0 {
		return cash, core.Fill{}, fmt.Errorf("execution: quote_to_spend %.8f must be positive", quoteToSpend)
	}

	spend := quoteToSpend
	if spend > cash {
		spend = cash
	}
	if spend*(1+b.FeePct) > cash {
		spend = cash / (1 + b.FeePct)
	}

	amount := spend / price
	fee := spend * b.FeePct
	newCash = cash - spend - fee

	return newCash, core.Fill{Amount: amount, Price: price, FeeQuote: fee}, nil
}

// Sell liquidates amount at price, returning the resulting cash balance
// and the Fill.
func (b *PaperBackend) Sell(cash, amount, price float64) (newCash float64, fill core.Fill) {
	gross := amount * price
	fee := gross * b.FeePct
	newCash = cash + gross - fee
	return newCash, core.Fill{Amount: amount, Price: price, FeeQuote: fee}
}
