package util

import (
	"context"
	"errors"
	"time"
)

// Backoff returns the delay before retry number attempt (starting at 1).
type Backoff func(attempt int) time.Duration

// ExponentialBackoff doubles base per attempt, capped at max.
func ExponentialBackoff(base, max time.Duration) Backoff {
	return func(attempt int) time.Duration {
		d := base
		for i := 1; i < attempt && d < max; i++ {
			d *= 2
		}
		if d > max {
			d = max
		}
		return d
	}
}

// RetryWithBackoff calls fn up to maxTries times until it returns a nil error,
// or until ctx is done. If maxTries <= 0, it defaults to 1. Returns ctx.Err()
// if the context is canceled, otherwise the last error.
//
// A nil backoff retries immediately; a nil retryable retries every error
// except context errors. Non-retryable errors are returned as is.
func RetryWithBackoff[T any](
	ctx context.Context,
	maxTries int,
	backoff Backoff,
	retryable func(error) bool,
	fn func(context.Context) (T, error),
) (T, error) {
	if maxTries <= 0 {
		maxTries = 1
	}
	var lastErr error
	var zero T
	for i := 0; i < maxTries; i++ {
		if ctx.Err() != nil {
			return zero, ctx.Err()
		}
		if i > 0 && backoff != nil {
			timer := time.NewTimer(backoff(i))
			select {
			case <-ctx.Done():
				timer.Stop()
				return zero, ctx.Err()
			case <-timer.C:
			}
		}
		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return zero, err
		}
		if retryable != nil && !retryable(err) {
			return zero, err
		}
		lastErr = err
	}
	return zero, lastErr
}
