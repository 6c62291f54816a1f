// Package backoff is the single retry/backoff primitive shared by the RPC
// multiplexer, the bundle relay client and the curve-state cache.
package backoff

import (
	"context"
	"time"
)

// Policy computes the delay before retry attempt n (0-based).
type Policy func(attempt int) time.Duration

// Exponential returns base * 2^attempt, capped at max.
// Negative attempts yield base.
func Exponential(base, max time.Duration) Policy {
	return func(attempt int) time.Duration {
		if attempt < 0 {
			return base
		}
		// 2^30 already exceeds any cap in use.
		if attempt > 30 {
			return max
		}
		delay := base * time.Duration(1<<attempt)
		if delay > max {
			return max
		}
		return delay
	}
}

// Linear returns base * (attempt+1), capped at max.
func Linear(base, max time.Duration) Policy {
	return func(attempt int) time.Duration {
		if attempt < 0 {
			return base
		}
		delay := base * time.Duration(attempt+1)
		if delay > max || delay < 0 {
			return max
		}
		return delay
	}
}

// Retry runs fn up to attempts times, sleeping according to the policy
// between failures. The last error is returned when all attempts fail.
// Context cancellation interrupts the wait and wins over the retry loop.
func Retry(ctx context.Context, attempts int, policy Policy, fn func() error) error {
	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		if attempt == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(policy(attempt)):
		}
	}
	return err
}
