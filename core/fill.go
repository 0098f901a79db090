package core

// Fill is the uniform result of an order execution, real or simulated.
// The Trading Loop and Backtester consume only this shape — neither
// knows whether a Fill came from the paper backend or a live exchange.
type Fill struct {
	Amount   float64
	Price    float64
	FeeQuote float64
	OrderID  string // empty for paper fills
}
