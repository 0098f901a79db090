package indicator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMACDHistogramConsistency(t *testing.T) {
	closes := make([]float64, 50)
	for i := range closes {
		closes[i] = 100 + float64(i)*0.5
	}
	result := MACD(closes, 12, 26, 9)
	require := assert.New(t)
	require.Len(result.MACD, 50)
	require.Len(result.Signal, 50)
	require.Len(result.Histogram, 50)

	for i := range closes {
		require.InDelta(result.MACD[i]-result.Signal[i], result.Histogram[i], 1e-9)
	}
}

func TestMACDFlatSeriesIsZero(t *testing.T) {
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 42
	}
	result := MACD(closes, 12, 26, 9)
	for i := range closes {
		assert.InDelta(t, 0, result.MACD[i], 1e-9)
		assert.InDelta(t, 0, result.Histogram[i], 1e-9)
	}
}
