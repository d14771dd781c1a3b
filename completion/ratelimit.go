package completion

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter throttles outgoing completion calls to a requests-per-minute
// budget. One instance is shared by every stage of a process.
type RateLimiter struct {
	limiter *rate.Limiter
}

// NewRateLimiter returns a limiter allowing rpm requests per minute with a
// burst of one. rpm <= 0 returns nil, which Middleware treats as unlimited.
func NewRateLimiter(rpm float64) *RateLimiter {
	if rpm <= 0 {
		return nil
	}
	return &RateLimiter{limiter: rate.NewLimiter(rate.Every(time.Duration(float64(time.Minute)/rpm)), 1)}
}

// Middleware blocks each call until the limiter grants a token.
func (l *RateLimiter) Middleware() Middleware {
	return func(ctx context.Context, req Request, next func(context.Context, Request) (*Response, error)) (*Response, error) {
		if l == nil {
			return next(ctx, req)
		}
		if err := l.limiter.Wait(ctx); err != nil {
			return nil, &AbortError{SDKError: SDKError{Message: "rate limiter wait aborted", Cause: err}}
		}
		return next(ctx, req)
	}
}
