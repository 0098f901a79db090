package execution

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsRetryableClassification(t *testing.T) {
	assert.True(t, IsRetryable(errors.New("connection reset by peer")))
	assert.True(t, IsRetryable(errors.New("request timeout")))
	assert.True(t, IsRetryable(errors.New("429 too many requests")))
	assert.False(t, IsRetryable(errors.New("insufficient balance")))
	assert.False(t, IsRetryable(nil))
}

func TestWithRetrySucceedsAfterTransientFailures(t *testing.T) {
	cfg := RetryConfig{MaxAttempts: 3, Backoff: []time.Duration{time.Millisecond, time.Millisecond}}
	attempts := 0

	err := withRetry(context.Background(), cfg, func() error {
		attempts++
		if attempts < 3 {
			return errors.New("connection reset")
		}
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestWithRetryStopsImmediatelyOnPermanentError(t *testing.T) {
	cfg := RetryConfig{MaxAttempts: 3, Backoff: []time.Duration{time.Millisecond, time.Millisecond}}
	attempts := 0

	err := withRetry(context.Background(), cfg, func() error {
		attempts++
		return errors.New("insufficient balance")
	})
	assert.Error(t, err)
	assert.Equal(t, 1, attempts)
}

func TestWithRetryExhaustsAttempts(t *testing.T) {
	cfg := RetryConfig{MaxAttempts: 3, Backoff: []time.Duration{time.Millisecond, time.Millisecond}}
	attempts := 0

	err := withRetry(context.Background(), cfg, func() error {
		attempts++
		return errors.New("connection reset")
	})
	assert.Error(t, err)
	assert.Equal(t, 3, attempts)
}
