package risk

import (
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBreakerTripsAfterFailureRatio(t *testing.T) {
	settings := BreakerSettings{
		MinRequests:     4,
		FailureRatio:    0.5,
		OpenTimeout:     50 * time.Millisecond,
		HalfOpenMaxReqs: 1,
		CountInterval:   time.Minute,
	}
	b := NewBreaker("test-exchange-trip", settings)

	boom := errors.New("boom")
	for i := 0; i < 4; i++ {
		_ = b.Execute(func() error { return boom })
	}
	assert.Equal(t, gobreaker.StateOpen, b.State())

	err := b.Execute(func() error { return nil })
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
}

func TestBreakerStaysClosedBelowMinRequests(t *testing.T) {
	settings := BreakerSettings{
		MinRequests:     10,
		FailureRatio:    0.1,
		OpenTimeout:     time.Second,
		HalfOpenMaxReqs: 1,
		CountInterval:   time.Minute,
	}
	b := NewBreaker("test-exchange-closed", settings)

	boom := errors.New("boom")
	for i := 0; i < 3; i++ {
		_ = b.Execute(func() error { return boom })
	}
	assert.Equal(t, gobreaker.StateClosed, b.State())
}

func TestBreakerExecutePropagatesSuccess(t *testing.T) {
	b := NewBreaker("test-exchange-success", DefaultExchangeBreakerSettings())
	require.NoError(t, b.Execute(func() error { return nil }))
}
