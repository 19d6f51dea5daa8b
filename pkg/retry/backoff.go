package retry

import (
	"context"
	"math"
	"math/rand"
	"time"
)

// BackoffStrategy computes the delay before a given retry attempt.
type BackoffStrategy interface {
	// NextDelay returns the delay before attempt n (1-based)
	NextDelay(attempt int) time.Duration
}

// ExponentialBackoff implements bounded exponential backoff with optional
// jitter. The delay before attempt n is
// min(MaxWait, max(MinWait, MinWait * Multiplier^(n-1))).
type ExponentialBackoff struct {
	// MinWait is the lower bound and the base of the exponential curve
	MinWait time.Duration
	// MaxWait caps the delay
	MaxWait time.Duration
	// Multiplier is the per-attempt growth factor
	Multiplier float64
	// JitterFactor adds randomness in [-jitter, +jitter] (0.0 to 1.0)
	JitterFactor float64
}

// DefaultExponentialBackoff returns a backoff with sensible defaults.
func DefaultExponentialBackoff() *ExponentialBackoff {
	return &ExponentialBackoff{
		MinWait:      2 * time.Second,
		MaxWait:      60 * time.Second,
		Multiplier:   2.0,
		JitterFactor: 0.1,
	}
}

// NextDelay calculates the delay before attempt n.
func (eb *ExponentialBackoff) NextDelay(attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}

	delay := float64(eb.MinWait) * math.Pow(eb.Multiplier, float64(attempt-1))

	if delay < float64(eb.MinWait) {
		delay = float64(eb.MinWait)
	}
	if delay > float64(eb.MaxWait) {
		delay = float64(eb.MaxWait)
	}

	if eb.JitterFactor > 0 {
		jitter := delay * eb.JitterFactor
		delay += (rand.Float64() * 2 * jitter) - jitter
	}

	if delay < 0 {
		delay = 0
	}

	return time.Duration(delay)
}

// ConstantBackoff waits the same fixed delay before every attempt.
type ConstantBackoff struct {
	Delay time.Duration
}

// NextDelay returns the fixed delay.
func (cb *ConstantBackoff) NextDelay(attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}
	return cb.Delay
}

// Wait sleeps for the given delay or returns early with the context's error
// when it is cancelled.
func Wait(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		// Still honor an already-cancelled context.
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			return nil
		}
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
