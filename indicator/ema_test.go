package indicator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEMASeedsWithFirstValue(t *testing.T) {
	series := []float64{10, 20, 30}
	out := EMA(series, 2) // alpha = 2/3
	assert.Len(t, out, 3)
	assert.Equal(t, 10.0, out[0])
	assert.InDelta(t, 2.0/3*20+1.0/3*10, out[1], 1e-9)
	assert.InDelta(t, 2.0/3*30+1.0/3*out[1], out[2], 1e-9)
}

func TestEMAEmptySeries(t *testing.T) {
	assert.Empty(t, EMA(nil, 5))
}

func TestWilderAverageUndefinedBeforePeriod(t *testing.T) {
	series := []float64{1, 2, 3, 4, 5}
	out := wilderAverage(series, 3)
	assert.True(t, math.IsNaN(out[0]))
	assert.True(t, math.IsNaN(out[1]))
	assert.InDelta(t, 2.0, out[2], 1e-9) // mean of 1,2,3
	alpha := 1.0 / 3
	assert.InDelta(t, alpha*4+(1-alpha)*2.0, out[3], 1e-9)
}

func TestWilderAverageTooShort(t *testing.T) {
	out := wilderAverage([]float64{1, 2}, 5)
	for _, v := range out {
		assert.True(t, math.IsNaN(v))
	}
}
