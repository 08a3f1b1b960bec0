// Package retry wraps a request-producing function with a per-attempt timeout
// and bounded exponential backoff. Retry eligibility is decided by the
// errclass package, never locally.
package retry

import (
	"context"
	"time"

	backoff "github.com/cenkalti/backoff/v4"

	"github.com/royalburger/client-go/internal/errclass"
)

// Defaults applied by Options.withDefaults.
const (
	DefaultMaxRetries   = 3
	DefaultInitialDelay = 1 * time.Second
	DefaultMaxDelay     = 10 * time.Second
	DefaultMultiplier   = 2.0
	DefaultTimeout      = 30 * time.Second
)

// Options groups the tunables for one logical request.
type Options struct {
	// MaxRetries is the number of re-attempts after the first try, so the
	// function runs at most MaxRetries+1 times.
	MaxRetries int

	// InitialDelay is the wait before the first retry; each subsequent wait
	// is multiplied by Multiplier and capped at MaxDelay.
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64

	// Timeout bounds each individual attempt. Zero means no per-attempt
	// deadline beyond the caller's context.
	Timeout time.Duration

	// OnRetry, when set, is invoked before each sleep with the attempt
	// number (1-based), the computed delay and the error that triggered the
	// retry. Diagnostics only; it must not alter control flow.
	OnRetry func(attempt int, delay time.Duration, err error)
}

func (o Options) withDefaults() Options {
	if o.MaxRetries < 0 {
		o.MaxRetries = 0
	}
	if o.InitialDelay <= 0 {
		o.InitialDelay = DefaultInitialDelay
	}
	if o.MaxDelay <= 0 {
		o.MaxDelay = DefaultMaxDelay
	}
	if o.Multiplier <= 0 {
		o.Multiplier = DefaultMultiplier
	}
	return o
}

// Do runs fn until it succeeds, a non-retryable error occurs, the retry
// budget is exhausted, or ctx is done. The last observed error propagates;
// intermediate errors are not aggregated.
func Do[T any](ctx context.Context, opts Options, fn func(ctx context.Context) (T, error)) (T, error) {
	o := opts.withDefaults()

	// Randomization is disabled so the delay schedule is exactly
	// min(initial * multiplier^n, max).
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = o.InitialDelay
	exp.RandomizationFactor = 0
	exp.Multiplier = o.Multiplier
	exp.MaxInterval = o.MaxDelay
	exp.MaxElapsedTime = 0
	exp.Reset()

	var zero T
	for attempt := 0; ; attempt++ {
		res, err := runAttempt(ctx, o.Timeout, fn)
		if err == nil {
			return res, nil
		}
		if ctx.Err() != nil {
			return zero, err
		}
		if !errclass.IsRetryable(err) || attempt >= o.MaxRetries {
			return zero, err
		}

		delay := exp.NextBackOff()
		if o.OnRetry != nil {
			o.OnRetry(attempt+1, delay, err)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		case <-timer.C:
		}
	}
}

// runAttempt executes one try under its own deadline. When the deadline
// fires, the in-flight call is cancelled through the context and the failure
// is surfaced as a synthesized timeout error with no status.
func runAttempt[T any](ctx context.Context, timeout time.Duration, fn func(ctx context.Context) (T, error)) (T, error) {
	if timeout <= 0 {
		return fn(ctx)
	}
	actx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	res, err := fn(actx)
	if err != nil && actx.Err() == context.DeadlineExceeded && ctx.Err() == nil {
		var zero T
		return zero, &errclass.Error{
			Classification: errclass.ClassifyTransport(context.DeadlineExceeded),
			Status:         0,
			Op:             "attempt timeout",
			Err:            err,
		}
	}
	return res, err
}
