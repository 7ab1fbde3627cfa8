package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDo_SucceedsFirstAttempt(t *testing.T) {
	attempts := 0
	err := Do(context.Background(), func(ctx context.Context) error {
		attempts++
		return nil
	}, WithMaxAttempts(3), WithInitialDelay(time.Millisecond))

	assert.NoError(t, err)
	assert.Equal(t, 1, attempts)
}

func TestDo_RetriesRetryableErrors(t *testing.T) {
	attempts := 0
	boom := errors.New("connection reset")

	err := Do(context.Background(), func(ctx context.Context) error {
		attempts++
		return Retryable(boom)
	}, WithMaxAttempts(3), WithInitialDelay(time.Millisecond), WithJitter(0))

	assert.Equal(t, 3, attempts)
	// The final error comes back with the retry wrapper removed.
	assert.Equal(t, boom, err)
}

func TestDo_StopsOnPermanentError(t *testing.T) {
	attempts := 0
	boom := errors.New("HTTP 404")

	err := Do(context.Background(), func(ctx context.Context) error {
		attempts++
		return Permanent(boom)
	}, WithMaxAttempts(5), WithInitialDelay(time.Millisecond))

	assert.Equal(t, 1, attempts)
	assert.Equal(t, boom, err)
}

func TestDo_RetryIfPredicate(t *testing.T) {
	attempts := 0
	transient := errors.New("timeout")

	err := Do(context.Background(), func(ctx context.Context) error {
		attempts++
		return transient
	},
		WithMaxAttempts(4),
		WithInitialDelay(time.Millisecond),
		WithJitter(0),
		WithRetryIf(func(err error) bool { return errors.Is(err, transient) }),
	)

	assert.Equal(t, 4, attempts)
	assert.Equal(t, transient, err)
}

func TestDo_NonRetryableWithoutWrapperStops(t *testing.T) {
	attempts := 0
	boom := errors.New("bad response")

	err := Do(context.Background(), func(ctx context.Context) error {
		attempts++
		return boom
	}, WithMaxAttempts(3), WithInitialDelay(time.Millisecond))

	assert.Equal(t, 1, attempts)
	assert.Equal(t, boom, err)
}

func TestDo_ContextCancelledBetweenAttempts(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0

	err := Do(ctx, func(ctx context.Context) error {
		attempts++
		cancel()
		return Retryable(errors.New("timeout"))
	}, WithMaxAttempts(5), WithInitialDelay(50*time.Millisecond), WithJitter(0))

	assert.Error(t, err)
	assert.Equal(t, 1, attempts)
}

func TestCalculateDelay_ExponentialAndCapped(t *testing.T) {
	r := New(
		WithInitialDelay(100*time.Millisecond),
		WithMultiplier(2.0),
		WithMaxDelay(300*time.Millisecond),
		WithJitter(0),
	)

	assert.Equal(t, 100*time.Millisecond, r.calculateDelay(1))
	assert.Equal(t, 200*time.Millisecond, r.calculateDelay(2))
	assert.Equal(t, 300*time.Millisecond, r.calculateDelay(3))
	assert.Equal(t, 300*time.Millisecond, r.calculateDelay(4))
}

func TestDoWithData(t *testing.T) {
	calls := 0
	value, err := DoWithData(context.Background(), func(ctx context.Context) (int, error) {
		calls++
		if calls < 2 {
			return 0, Retryable(errors.New("timeout"))
		}
		return 42, nil
	}, WithMaxAttempts(3), WithInitialDelay(time.Millisecond), WithJitter(0))

	assert.NoError(t, err)
	assert.Equal(t, 42, value)
	assert.Equal(t, 2, calls)
}
