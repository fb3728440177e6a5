package util

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Limiter is a token bucket used to pace calls to remote APIs.
type Limiter struct {
	inner *rate.Limiter
}

// NewLimiter creates a limiter refilling perSecond tokens with the given
// burst. A non-positive rate disables limiting.
func NewLimiter(perSecond float64, burst int) *Limiter {
	limit := rate.Limit(perSecond)
	if perSecond <= 0 {
		limit = rate.Inf
	}
	if burst < 1 {
		burst = 1
	}
	return &Limiter{inner: rate.NewLimiter(limit, burst)}
}

// Allow reports whether n tokens are available now, consuming them if so.
func (l *Limiter) Allow(n int) bool {
	return l.inner.AllowN(time.Now(), n)
}

// Wait blocks until n tokens are available or ctx is done. A nil limiter
// never blocks.
func (l *Limiter) Wait(ctx context.Context, n int) error {
	if l == nil {
		return ctx.Err()
	}
	return l.inner.WaitN(ctx, n)
}
