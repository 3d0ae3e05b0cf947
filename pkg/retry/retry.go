// Package retry repeats storage calls with capped exponential backoff.
package retry

import (
	"context"
	"math/rand"
	"time"
)

// Option customizes a Retrier.
type Option func(*Retrier)

// WithRetryIf limits retries to errors for which fn returns true. Without it
// every error is retried.
func WithRetryIf(fn func(error) bool) Option {
	return func(r *Retrier) {
		r.retryIf = fn
	}
}

// WithOnRetry sets a callback run before each retry wait.
func WithOnRetry(fn func(attempt int, err error, delay time.Duration)) Option {
	return func(r *Retrier) {
		r.onRetry = fn
	}
}

// Retrier runs an operation up to a fixed number of attempts. The wait after
// attempt n is initialDelay doubled n-1 times, capped at maxDelay and spread
// by ±jitter.
type Retrier struct {
	attempts     int
	initialDelay time.Duration
	maxDelay     time.Duration
	jitter       float64

	retryIf func(error) bool
	onRetry func(attempt int, err error, delay time.Duration)
}

// StorageRetrier returns a Retrier tuned for calls to a remote document
// store: 50ms first wait, 2s cap, 10% jitter. attempts below 1 mean one try.
func StorageRetrier(attempts int, opts ...Option) *Retrier {
	r := &Retrier{
		attempts:     max(attempts, 1),
		initialDelay: 50 * time.Millisecond,
		maxDelay:     2 * time.Second,
		jitter:       0.1,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Do calls operation until it succeeds, fails with an error that is not
// retried, or runs out of attempts, and returns the last error. A canceled
// context stops the loop; its error is returned only if nothing ran.
func (r *Retrier) Do(ctx context.Context, operation func(ctx context.Context) error) error {
	var lastErr error

	for attempt := 1; attempt <= r.attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			if lastErr != nil {
				return lastErr
			}
			return err
		}

		err := operation(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if r.retryIf != nil && !r.retryIf(err) {
			return err
		}
		if attempt == r.attempts {
			return err
		}

		delay := r.delay(attempt)
		if r.onRetry != nil {
			r.onRetry(attempt, err, delay)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return lastErr
		case <-timer.C:
		}
	}

	return lastErr
}

func (r *Retrier) delay(attempt int) time.Duration {
	d := r.maxDelay
	if shift := attempt - 1; shift < 32 {
		d = min(r.initialDelay<<shift, r.maxDelay)
	}
	if d <= 0 {
		d = r.maxDelay
	}
	if r.jitter > 0 {
		d += time.Duration(float64(d) * r.jitter * (rand.Float64()*2 - 1))
	}
	return d
}

// DoWithData is Do for operations that return data.
func DoWithData[T any](ctx context.Context, r *Retrier, operation func(ctx context.Context) (T, error)) (T, error) {
	var result T
	err := r.Do(ctx, func(ctx context.Context) error {
		var opErr error
		result, opErr = operation(ctx)
		return opErr
	})
	return result, err
}
