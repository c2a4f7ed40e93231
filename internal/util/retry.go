package util

import (
	"context"
	"math/rand/v2"
	"time"
)

// Retry calls fn until it succeeds or maxAttempts is reached, returning nil
// on the first success and the last error otherwise. Sleeps between attempts
// double from baseDelay and carry up to 25% random jitter so parallel
// fetchers hitting the same upstream do not retry in lockstep. Cancelling
// ctx aborts the wait between attempts, not a call already in flight.
func Retry(ctx context.Context, maxAttempts int, baseDelay time.Duration, fn func() error) error {
	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		if attempt == maxAttempts {
			break
		}

		delay := baseDelay << (attempt - 1)
		if delay > 0 {
			delay += rand.N(delay/4 + 1)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	return err
}
