// Package ratelimit provides the admission gate used by the search client.
package ratelimit

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Limiter admits at most tokens acquisitions per rolling interval. Waiters are
// admitted in the order they called Acquire.
type Limiter struct {
	tokens   int
	interval time.Duration

	lim *rate.Limiter
}

// New creates a limiter for the given budget. Non-positive values fall back to
// one token per second.
func New(tokens int, interval time.Duration) *Limiter {
	if tokens <= 0 {
		tokens = 1
	}
	if interval <= 0 {
		interval = time.Second
	}

	// burst of one spaces grants evenly, so any window of length interval
	// holds at most tokens grants
	every := interval / time.Duration(tokens)
	return &Limiter{
		tokens:   tokens,
		interval: interval,
		lim:      rate.NewLimiter(rate.Every(every), 1),
	}
}

// Acquire blocks until a token is available. It only fails when ctx is done
// before the token would be granted; in that case no token is consumed.
func (l *Limiter) Acquire(ctx context.Context) error {
	r := l.lim.Reserve()
	delay := r.Delay()
	if delay == 0 {
		return nil
	}

	t := time.NewTimer(delay)
	defer t.Stop()

	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		r.Cancel()
		return ctx.Err()
	}
}

func (l *Limiter) Tokens() int {
	return l.tokens
}

func (l *Limiter) Interval() time.Duration {
	return l.interval
}
