package failover

import (
	rand "math/rand/v2"
	"time"
)

// Backoff configures the delay between sink delivery attempts.
type Backoff struct {
	Base       time.Duration
	Max        time.Duration
	Multiplier float64
}

// DefaultBackoff starts at 100ms and caps at 5s.
func DefaultBackoff() Backoff {
	return Backoff{Base: 100 * time.Millisecond, Max: 5 * time.Second, Multiplier: 2}
}

// Next computes the delay after prev using decorrelated jitter:
//
//	next = min(max, base + rand[0, prev*multiplier - base))
//
// A non-positive prev starts from base.
func (b Backoff) Next(prev time.Duration) time.Duration {
	base := b.Base
	if base <= 0 {
		base = 50 * time.Millisecond
	}
	mult := b.Multiplier
	if mult < 1.0 {
		mult = 1.0
	}
	if b.Max > 0 && b.Max < base {
		return b.Max
	}
	if prev <= 0 {
		return base
	}

	span := time.Duration(float64(prev)*mult) - base
	if span <= 0 {
		span = base
	}
	next := base + time.Duration(rand.Int64N(int64(span))) //nolint:gosec // non-crypto jitter
	if b.Max > 0 && next > b.Max {
		return b.Max
	}
	return next
}
