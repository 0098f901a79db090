package indicator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRollingMean(t *testing.T) {
	series := []float64{1, 2, 3, 4, 5}
	out := RollingMean(series, 3)
	assert.True(t, math.IsNaN(out[0]))
	assert.True(t, math.IsNaN(out[1]))
	assert.InDelta(t, 2, out[2], 1e-9) // mean(1,2,3)
	assert.InDelta(t, 3, out[3], 1e-9) // mean(2,3,4)
	assert.InDelta(t, 4, out[4], 1e-9) // mean(3,4,5)
}

func TestRollingMeanWindowLargerThanSeries(t *testing.T) {
	out := RollingMean([]float64{1, 2}, 5)
	for _, v := range out {
		assert.True(t, math.IsNaN(v))
	}
}
