package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCandleValid(t *testing.T) {
	c, err := NewCandle(1000, 100, 110, 95, 105, 50)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), c.TimestampMs)
	assert.Equal(t, 105.0, c.Close)
}

func TestNewCandleInvalidHighLow(t *testing.T) {
	tests := []struct {
		name                           string
		open, high, low, close, volume float64
	}{
		{"low above open/close min", 100, 110, 101, 105, 10},
		{"high below open/close max", 100, 104, 95, 105, 10},
		{"negative volume", 100, 110, 95, 105, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCandle(0, tt.open, tt.high, tt.low, tt.close, tt.volume)
			assert.Error(t, err)
		})
	}
}

func TestClosesAndVolumes(t *testing.T) {
	candles := []Candle{
		{Close: 1, Volume: 10},
		{Close: 2, Volume: 20},
	}
	assert.Equal(t, []float64{1, 2}, Closes(candles))
	assert.Equal(t, []float64{10, 20}, Volumes(candles))
}
