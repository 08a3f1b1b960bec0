package retry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/royalburger/client-go/internal/errclass"
)

func retryableErr() error {
	return &errclass.Error{
		Classification: errclass.ClassifyStatus(500, errclass.Payload{}),
		Status:         500,
		Op:             "GET /x",
	}
}

func permanentErr() error {
	return &errclass.Error{
		Classification: errclass.ClassifyStatus(403, errclass.Payload{}),
		Status:         403,
		Op:             "GET /x",
	}
}

func fastOpts(maxRetries int) Options {
	return Options{
		MaxRetries:   maxRetries,
		InitialDelay: time.Millisecond,
		MaxDelay:     4 * time.Millisecond,
		Multiplier:   2,
	}
}

func TestDo_RetryBudget(t *testing.T) {
	t.Parallel()
	calls := 0
	_, err := Do(context.Background(), fastOpts(3), func(context.Context) (int, error) {
		calls++
		return 0, retryableErr()
	})
	require.Error(t, err)
	assert.Equal(t, 4, calls, "maxRetries+1 attempts expected")

	var ce *errclass.Error
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, 500, ce.Status, "last observed error propagates")
}

func TestDo_NonRetryableShortCircuit(t *testing.T) {
	t.Parallel()
	calls := 0
	_, err := Do(context.Background(), fastOpts(5), func(context.Context) (int, error) {
		calls++
		return 0, permanentErr()
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDo_SucceedsMidway(t *testing.T) {
	t.Parallel()
	calls := 0
	got, err := Do(context.Background(), fastOpts(3), func(context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", retryableErr()
		}
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, 3, calls)
}

func TestDo_BackoffSchedule(t *testing.T) {
	t.Parallel()
	var delays []time.Duration
	opts := Options{
		MaxRetries:   5,
		InitialDelay: time.Millisecond,
		MaxDelay:     4 * time.Millisecond,
		Multiplier:   2,
		OnRetry: func(_ int, delay time.Duration, _ error) {
			delays = append(delays, delay)
		},
	}
	_, err := Do(context.Background(), opts, func(context.Context) (int, error) {
		return 0, retryableErr()
	})
	require.Error(t, err)
	require.Len(t, delays, 5)

	// delay[n] = min(initial * multiplier^n, max), non-decreasing until capped.
	want := []time.Duration{
		1 * time.Millisecond,
		2 * time.Millisecond,
		4 * time.Millisecond,
		4 * time.Millisecond,
		4 * time.Millisecond,
	}
	assert.Equal(t, want, delays)
	for i := 1; i < len(delays); i++ {
		assert.GreaterOrEqual(t, delays[i], delays[i-1])
	}
}

func TestDo_TimeoutSynthesizedAsRetryable(t *testing.T) {
	t.Parallel()
	calls := 0
	opts := Options{
		MaxRetries:   1,
		InitialDelay: time.Millisecond,
		Timeout:      5 * time.Millisecond,
	}
	_, err := Do(context.Background(), opts, func(ctx context.Context) (int, error) {
		calls++
		<-ctx.Done()
		return 0, ctx.Err()
	})
	require.Error(t, err)
	assert.Equal(t, 2, calls, "timeouts are retryable")

	var ce *errclass.Error
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, errclass.KindTimeout, ce.Kind)
	assert.Equal(t, 0, ce.Status)
}

func TestDo_CallerCancellationStopsRetrying(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	_, err := Do(ctx, fastOpts(5), func(context.Context) (int, error) {
		calls++
		cancel()
		return 0, retryableErr()
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls, "no retry after caller cancellation")
}

func TestOptions_Defaults(t *testing.T) {
	t.Parallel()
	o := Options{}.withDefaults()
	assert.Equal(t, DefaultInitialDelay, o.InitialDelay)
	assert.Equal(t, DefaultMaxDelay, o.MaxDelay)
	assert.Equal(t, DefaultMultiplier, o.Multiplier)
}
