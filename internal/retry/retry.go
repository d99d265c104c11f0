// Package retry is a generic bounded-retry-with-backoff decorator for
// fallible external calls.
package retry

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"
)

// Policy bounds one retried call: MaxAttempts is the total number of tries
// including the first, and the delay before retry n is
// InitialBackoff * Multiplier^(n-1).
type Policy struct {
	MaxAttempts    int
	InitialBackoff time.Duration
	Multiplier     float64
}

// Delay returns the backoff before retry n (1-based).
func (p Policy) Delay(retryIndex int) time.Duration {
	return time.Duration(float64(p.InitialBackoff) * math.Pow(p.Multiplier, float64(retryIndex-1)))
}

// transientError is implemented by errors that are worth retrying: timeouts,
// rate limits, transient network faults, and judge output that failed
// structural validation. Errors without the marker fail immediately.
type transientError interface {
	TransientError() bool
}

// Transient reports whether err is marked retryable anywhere in its chain.
func Transient(err error) bool {
	var te transientError
	return errors.As(err, &te) && te.TransientError()
}

// Notify is called before each backoff sleep with the 1-based index of the
// attempt that just failed, the coming delay, and the failure. It exists for
// observability only.
type Notify func(attempt int, delay time.Duration, err error)

// Do invokes op up to p.MaxAttempts times. Cancellation is observed between
// attempts and during backoff, never mid-call: an in-flight op drains before
// Do returns. The terminal error always carries the last failure's reason.
func Do[T any](ctx context.Context, p Policy, notify Notify, op func(context.Context) (T, error)) (T, error) {
	var zero T
	if p.MaxAttempts < 1 {
		return zero, fmt.Errorf("retry: max attempts must be at least 1, got %d", p.MaxAttempts)
	}

	var lastErr error
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			if lastErr != nil {
				return zero, fmt.Errorf("cancelled after %d attempts: %w", attempt-1, lastErr)
			}
			return zero, fmt.Errorf("cancelled before first attempt: %w", err)
		}

		result, err := op(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !Transient(err) {
			return zero, err
		}
		if attempt == p.MaxAttempts {
			return zero, fmt.Errorf("all %d attempts failed: %w", p.MaxAttempts, err)
		}

		delay := p.Delay(attempt)
		if notify != nil {
			notify(attempt, delay, err)
		}
		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return zero, fmt.Errorf("cancelled after %d attempts: %w", attempt, lastErr)
		}
	}
	// Unreachable: the loop always returns.
	return zero, lastErr
}
