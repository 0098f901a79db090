package indicator

import "math"

// RSI computes the Relative Strength Index of closes over period. Gains
// and losses are the positive/negative parts of successive differences,
// smoothed independently with Wilder's average. RSI is undefined
// (math.NaN) until position `period`. When the smoothed average loss is
// zero, RSI is defined as 100.
func RSI(closes []float64, period int) []float64 {
	out := make([]float64, len(closes))
	for i := range out {
		out[i] = math.NaN()
	}
	if len(closes) < 2 {
		return out
	}

	gains := make([]float64, len(closes))
	losses := make([]float64, len(closes))
	for i := 1; i < len(closes); i++ {
		delta := closes[i] - closes[i-1]
		if delta > 0 {
			gains[i] = delta
		} else {
			losses[i] = -delta
		}
	}

	// Gains/losses are only meaningful from index 1 onward; align the
	// Wilder average over that sub-series and write results back at the
	// matching offset.
	avgGain := wilderAverage(gains[1:], period)
	avgLoss := wilderAverage(losses[1:], period)

	for i := 0; i < len(avgGain); i++ {
		ag, al := avgGain[i], avgLoss[i]
		if math.IsNaN(ag) || math.IsNaN(al) {
			continue
		}
		outIdx := i + 1
		if al == 0 {
			out[outIdx] = 100
			continue
		}
		rs := ag / al
		out[outIdx] = 100 - 100/(1+rs)
	}

	return out
}
