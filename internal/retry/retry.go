// Package retry provides the bounded fixed-backoff retry loop shared by the
// extraction tiers and other callers that classify their own failures.
package retry

import (
	"context"
	"errors"
	"time"
)

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// Policy configures Do.
type Policy struct {
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts int
	// Backoff is the fixed delay between attempts.
	Backoff time.Duration
	// IsRetryable reports whether a failed attempt may be repeated. A nil
	// predicate treats every error as retryable.
	IsRetryable func(error) bool
	// Sleep overrides the wait between attempts; tests use it to avoid real delays.
	Sleep Sleeper
	// OnFailure observes each failed attempt before the retry decision.
	OnFailure func(attempt int, err error)
}

// Do runs attempt until it succeeds, returns a non-retryable error, or the
// attempt budget is spent. Attempts are numbered from 1. The returned count is
// the number of attempts actually made.
func Do(ctx context.Context, policy Policy, attempt func(ctx context.Context, n int) error) (int, error) {
	maxAttempts := policy.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	sleep := policy.Sleep
	if sleep == nil {
		sleep = Wait
	}

	var lastErr error
	for n := 1; n <= maxAttempts; n++ {
		if err := ctx.Err(); err != nil {
			if lastErr != nil {
				return n - 1, errors.Join(lastErr, err)
			}
			return n - 1, err
		}
		err := attempt(ctx, n)
		if err == nil {
			return n, nil
		}
		lastErr = err
		if policy.OnFailure != nil {
			policy.OnFailure(n, err)
		}
		if policy.IsRetryable != nil && !policy.IsRetryable(err) {
			return n, err
		}
		if n == maxAttempts {
			break
		}
		if policy.Backoff > 0 {
			if serr := sleep(ctx, policy.Backoff); serr != nil {
				return n, errors.Join(lastErr, serr)
			}
		}
	}
	return maxAttempts, lastErr
}

// Wait blocks for d or until ctx is cancelled.
func Wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
