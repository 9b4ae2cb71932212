package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPacingLimiterWaitRespectsContext(t *testing.T) {
	limiter := NewPacingLimiter(time.Hour, time.Hour)
	require.NoError(t, limiter.Wait(context.Background()), "first action is never delayed")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Error(t, limiter.Wait(ctx))
}

func TestPacingLimiterZeroDelayIsImmediate(t *testing.T) {
	limiter := NewPacingLimiter(0, 0)

	start := time.Now()
	for i := 0; i < 5; i++ {
		require.NoError(t, limiter.Wait(context.Background()))
	}
	assert.Less(t, time.Since(start), time.Second)
}

func TestAdaptiveLimiterBacksOffAfterErrorStreak(t *testing.T) {
	limiter := NewAdaptiveLimiter(2*time.Second, 5*time.Second)

	for i := 0; i < 3; i++ {
		limiter.RecordError()
	}

	assert.Equal(t, 3*time.Second, limiter.minDelay)
	assert.Equal(t, 7500*time.Millisecond, limiter.maxDelay)
}

func TestAdaptiveLimiterBackoffIsCapped(t *testing.T) {
	limiter := NewAdaptiveLimiter(50*time.Second, 110*time.Second)

	for i := 0; i < 3; i++ {
		limiter.RecordError()
	}

	assert.Equal(t, 60*time.Second, limiter.minDelay)
	assert.Equal(t, 120*time.Second, limiter.maxDelay)
}

func TestAdaptiveLimiterRelaxesAfterSustainedSuccess(t *testing.T) {
	limiter := NewAdaptiveLimiter(10*time.Second, 20*time.Second)

	for i := 0; i < 6; i++ {
		limiter.RecordSuccess()
	}

	assert.Equal(t, 9*time.Second, limiter.minDelay)
}

func TestAdaptiveLimiterSuccessResetsErrorStreak(t *testing.T) {
	limiter := NewAdaptiveLimiter(2*time.Second, 5*time.Second)

	limiter.RecordError()
	limiter.RecordError()
	limiter.RecordSuccess()
	limiter.RecordError()
	limiter.RecordError()

	assert.Equal(t, 2*time.Second, limiter.minDelay, "interrupted streak must not back off")
}
