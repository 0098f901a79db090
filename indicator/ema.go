// Package indicator provides pure, stateless technical indicator
// functions over ordered float64 series: EMA, the Wilder average that
// backs RSI, RSI itself, MACD, and a rolling mean. Every function
// returns a series the same length as its input and uses math.NaN as
// the "not yet defined" sentinel, so callers can test readiness with
// math.IsNaN instead of tracking warmup lengths themselves.
package indicator

import "math"

// EMA computes the exponential moving average of series with the given
// span. alpha = 2/(span+1); e[0] = series[0], e[t] = alpha*series[t] +
// (1-alpha)*e[t-1]. The output has the same length as series.
func EMA(series []float64, span int) []float64 {
	out := make([]float64, len(series))
	if len(series) == 0 {
		return out
	}
	alpha := 2.0 / (float64(span) + 1.0)
	out[0] = series[0]
	for i := 1; i < len(series); i++ {
		out[i] = alpha*series[i] + (1-alpha)*out[i-1]
	}
	return out
}

// wilderAverage computes Wilder's smoothed average of series with the
// given period: alpha = 1/period. Output positions before `period-1` are
// math.NaN; output[period-1] equals the arithmetic mean of the first
// `period` inputs; later positions follow the recurrence
// a[t] = alpha*series[t] + (1-alpha)*a[t-1].
func wilderAverage(series []float64, period int) []float64 {
	out := make([]float64, len(series))
	for i := range out {
		out[i] = math.NaN()
	}
	if period <= 0 || len(series) < period {
		return out
	}

	var sum float64
	for i := 0; i < period; i++ {
		sum += series[i]
	}
	out[period-1] = sum / float64(period)

	alpha := 1.0 / float64(period)
	for i := period; i < len(series); i++ {
		out[i] = alpha*series[i] + (1-alpha)*out[i-1]
	}
	return out
}
