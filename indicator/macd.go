package indicator

// MACDResult holds the three aligned MACD series, each the same length
// as the input closes.
type MACDResult struct {
	MACD      []float64
	Signal    []float64
	Histogram []float64
}

// MACD computes macd = EMA(closes, fast) - EMA(closes, slow),
// signal = EMA(macd, signal), histogram = macd - signal.
func MACD(closes []float64, fast, slow, signal int) MACDResult {
	emaFast := EMA(closes, fast)
	emaSlow := EMA(closes, slow)

	macd := make([]float64, len(closes))
	for i := range closes {
		macd[i] = emaFast[i] - emaSlow[i]
	}

	signalLine := EMA(macd, signal)

	histogram := make([]float64, len(closes))
	for i := range closes {
		histogram[i] = macd[i] - signalLine[i]
	}

	return MACDResult{MACD: macd, Signal: signalLine, Histogram: histogram}
}
