package worker

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Limiter gates outgoing queries against a single external service.
// Callers block in Wait until a token is available, so bursts beyond
// the configured rate are not possible.
type Limiter struct {
	limiter *rate.Limiter
}

// NewLimiter creates a limiter allowing requestsPerSecond sustained
// with the given burst. A zero or negative rate means unlimited.
func NewLimiter(requestsPerSecond float64, burst int) *Limiter {
	if requestsPerSecond <= 0 {
		return &Limiter{limiter: rate.NewLimiter(rate.Inf, 1)}
	}
	if burst <= 0 {
		burst = 1
	}

	return &Limiter{
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
	}
}

// Wait blocks until the next request is admitted or ctx is cancelled
func (l *Limiter) Wait(ctx context.Context) error {
	return l.limiter.Wait(ctx)
}

// Allow reports whether a request is admitted without waiting
func (l *Limiter) Allow() bool {
	return l.limiter.Allow()
}

// WaitWithDelay waits for admission and then sleeps an additional
// fixed delay, honoring cancellation
func (l *Limiter) WaitWithDelay(ctx context.Context, additionalDelay time.Duration) error {
	if err := l.Wait(ctx); err != nil {
		return err
	}

	if additionalDelay > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(additionalDelay):
		}
	}

	return nil
}
