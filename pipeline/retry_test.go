package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryLinear_SucceedsFirstAttempt(t *testing.T) {
	calls := 0
	err := RetryLinear(context.Background(), func() error {
		calls++
		return nil
	}, 3, time.Millisecond, nil)

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetryLinear_SucceedsAfterRetry(t *testing.T) {
	calls := 0
	err := RetryLinear(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	}, 3, time.Millisecond, nil)

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryLinear_ExhaustsAttempts(t *testing.T) {
	wantErr := errors.New("persistent")
	calls := 0
	err := RetryLinear(context.Background(), func() error {
		calls++
		return wantErr
	}, 3, time.Millisecond, nil)

	assert.ErrorIs(t, err, wantErr)
	assert.Equal(t, 3, calls)
}

func TestRetryLinear_LinearDelays(t *testing.T) {
	base := 20 * time.Millisecond
	calls := 0

	start := time.Now()
	err := RetryLinear(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	}, 3, base, nil)
	elapsed := time.Since(start)

	require.NoError(t, err)
	// Waits base*1 then base*2 = 3x base total
	assert.GreaterOrEqual(t, elapsed, 3*base)
	assert.Less(t, elapsed, 10*base)
}

func TestRetryLinear_InvalidMaxAttempts(t *testing.T) {
	err := RetryLinear(context.Background(), func() error { return nil }, 0, time.Millisecond, nil)
	assert.ErrorIs(t, err, ErrInvalidMaxAttempts)
}

func TestRetryLinear_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := RetryLinear(ctx, func() error {
		calls++
		return errors.New("transient")
	}, 3, time.Millisecond, nil)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, calls)
}

func TestRetryLinear_AbortSkipsBackoff(t *testing.T) {
	wantErr := errors.New("transient")
	calls := 0

	start := time.Now()
	err := RetryLinear(context.Background(), func() error {
		calls++
		return wantErr
	}, 3, time.Hour, func() bool { return true })
	elapsed := time.Since(start)

	assert.ErrorIs(t, err, wantErr)
	assert.Equal(t, 1, calls)
	assert.Less(t, elapsed, time.Second)
}
