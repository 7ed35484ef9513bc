// Package ratelimit gates outbound requests to external sources so that
// consecutive requests are spaced by a minimum interval.
package ratelimit

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Limiter enforces a minimum delay between successive calls to Wait.
// The first call never blocks. A zero or negative minimum delay
// disables limiting entirely.
type Limiter struct {
	limiter *rate.Limiter
}

// New creates a Limiter that spaces calls at least minDelay apart.
func New(minDelay time.Duration) *Limiter {
	if minDelay <= 0 {
		return &Limiter{limiter: rate.NewLimiter(rate.Inf, 1)}
	}
	return &Limiter{limiter: rate.NewLimiter(rate.Every(minDelay), 1)}
}

// Wait blocks until the next request is permitted or the context is
// cancelled. Returns the context's error on cancellation.
func (l *Limiter) Wait(ctx context.Context) error {
	return l.limiter.Wait(ctx)
}
