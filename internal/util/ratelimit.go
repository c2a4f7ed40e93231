package util

import (
	"context"
	"sync"
	"time"
)

// burstTokens is the bucket capacity: a chart load fires a handful of
// requests at once, and after an idle stretch they should all go out
// together before throttling kicks in.
const burstTokens = 5

// RateLimiter paces operations to the configured per-minute budget with a
// token bucket. Tokens refill continuously at perMinute/60 per second up to
// a small burst capacity.
type RateLimiter struct {
	mu     sync.Mutex
	perSec float64
	burst  float64
	tokens float64
	last   time.Time
}

// NewRateLimiter creates a RateLimiter allowing perMinute operations per
// minute. The bucket starts full so a fresh client is never throttled on
// its first requests.
func NewRateLimiter(perMinute int) *RateLimiter {
	burst := float64(burstTokens)
	if perMinute < burstTokens {
		burst = float64(perMinute)
	}
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		perSec: float64(perMinute) / 60.0,
		burst:  burst,
		tokens: burst,
		last:   time.Now(),
	}
}

// Wait blocks until a token is available or ctx is cancelled. The sleep is
// sized to the token deficit rather than polled, so a waiter wakes once.
func (rl *RateLimiter) Wait(ctx context.Context) error {
	for {
		rl.mu.Lock()
		now := time.Now()
		rl.tokens += now.Sub(rl.last).Seconds() * rl.perSec
		if rl.tokens > rl.burst {
			rl.tokens = rl.burst
		}
		rl.last = now

		if rl.tokens >= 1 {
			rl.tokens--
			rl.mu.Unlock()
			return nil
		}
		wait := time.Duration((1 - rl.tokens) / rl.perSec * float64(time.Second))
		rl.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}
