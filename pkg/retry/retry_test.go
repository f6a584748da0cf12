package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastOpts() []Option {
	return []Option{
		WithMaxAttempts(3),
		WithInitialDelay(time.Millisecond),
		WithMaxDelay(5 * time.Millisecond),
		WithJitter(0),
	}
}

func TestDo_SucceedsFirstTry(t *testing.T) {
	calls := 0
	err := Do(context.Background(), func(ctx context.Context) error {
		calls++
		return nil
	}, fastOpts()...)

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDo_RetriesRetryableErrors(t *testing.T) {
	calls := 0
	err := Do(context.Background(), func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return Retryable(errors.New("flaky"))
		}
		return nil
	}, fastOpts()...)

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_StopsOnPermanentError(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	err := Do(context.Background(), func(ctx context.Context) error {
		calls++
		return Permanent(boom)
	}, fastOpts()...)

	require.Error(t, err)
	assert.Equal(t, boom, err)
	assert.Equal(t, 1, calls)
}

func TestDo_NonRetryableErrorNotRetried(t *testing.T) {
	calls := 0
	err := Do(context.Background(), func(ctx context.Context) error {
		calls++
		return errors.New("plain failure")
	}, fastOpts()...)

	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDo_ExhaustsAttempts(t *testing.T) {
	boom := errors.New("still down")
	calls := 0
	err := Do(context.Background(), func(ctx context.Context) error {
		calls++
		return Retryable(boom)
	}, fastOpts()...)

	require.Error(t, err)
	assert.Equal(t, boom, err)
	assert.Equal(t, 3, calls)
}

func TestDo_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	err := Do(ctx, func(ctx context.Context) error {
		calls++
		cancel()
		return Retryable(errors.New("interrupted"))
	}, fastOpts()...)

	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDoWithData(t *testing.T) {
	calls := 0
	result, err := DoWithData(context.Background(), func(ctx context.Context) (int, error) {
		calls++
		if calls < 2 {
			return 0, Retryable(errors.New("flaky"))
		}
		return 42, nil
	}, fastOpts()...)

	require.NoError(t, err)
	assert.Equal(t, 42, result)
	assert.Equal(t, 2, calls)
}

func TestOnRetryCallback(t *testing.T) {
	var attempts []int
	opts := append(fastOpts(), WithOnRetry(func(attempt int, err error, delay time.Duration) {
		attempts = append(attempts, attempt)
	}))

	_ = Do(context.Background(), func(ctx context.Context) error {
		return Retryable(errors.New("flaky"))
	}, opts...)

	assert.Equal(t, []int{1, 2}, attempts)
}

func TestCalculateDelay_Backoff(t *testing.T) {
	r := New(
		WithInitialDelay(100*time.Millisecond),
		WithMultiplier(2.0),
		WithMaxDelay(time.Second),
		WithJitter(0),
	)

	assert.Equal(t, 100*time.Millisecond, r.calculateDelay(1))
	assert.Equal(t, 200*time.Millisecond, r.calculateDelay(2))
	assert.Equal(t, 400*time.Millisecond, r.calculateDelay(3))
	// Capped at the maximum.
	assert.Equal(t, time.Second, r.calculateDelay(10))
}

func TestErrorWrappers(t *testing.T) {
	boom := errors.New("boom")

	assert.True(t, IsRetryable(Retryable(boom)))
	assert.False(t, IsRetryable(boom))
	assert.True(t, IsPermanent(Permanent(boom)))
	assert.False(t, IsPermanent(Retryable(boom)))

	assert.Nil(t, Retryable(nil))
	assert.Nil(t, Permanent(nil))
	assert.ErrorIs(t, Retryable(boom), boom)
}
