package indicator

import "math"

// RollingMean computes the arithmetic mean of the trailing `window`
// values of series at each position. Positions before window-1 are
// math.NaN.
func RollingMean(series []float64, window int) []float64 {
	out := make([]float64, len(series))
	for i := range out {
		out[i] = math.NaN()
	}
	if window <= 0 {
		return out
	}

	var sum float64
	for i, v := range series {
		sum += v
		if i >= window {
			sum -= series[i-window]
		}
		if i >= window-1 {
			out[i] = sum / float64(window)
		}
	}
	return out
}
