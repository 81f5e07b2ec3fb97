// Package ratelimiter throttles how fast the acceptor hands connections to
// the worker pool.
package ratelimiter

import (
	"context"

	"golang.org/x/time/rate"
)

// Limiter is a token bucket over accepted connections. Each accepted
// connection takes one token; bursts up to the bucket size pass without
// waiting.
//
// The zero rate means unlimited: Wait and Allow always succeed immediately.
//
// Safe for concurrent use.
type Limiter struct {
	limiter   *rate.Limiter
	unlimited bool
}

// New creates a Limiter admitting perSecond connections per second with
// the given burst. A burst of 0 is raised to perSecond so the bucket can
// hold at least one second of tokens.
func New(perSecond, burst uint) *Limiter {
	if perSecond == 0 {
		return &Limiter{limiter: rate.NewLimiter(rate.Inf, 0), unlimited: true}
	}
	if burst == 0 {
		burst = perSecond
	}
	return &Limiter{limiter: rate.NewLimiter(rate.Limit(perSecond), int(burst))}
}

// Unlimited reports whether the limiter never throttles.
func (l *Limiter) Unlimited() bool {
	return l.unlimited
}

// Allow takes a token if one is available, without waiting.
func (l *Limiter) Allow() bool {
	return l.limiter.Allow()
}

// Wait blocks until a token is available or ctx is done.
func (l *Limiter) Wait(ctx context.Context) error {
	if l.unlimited {
		return ctx.Err()
	}
	return l.limiter.Wait(ctx)
}

// Limit returns the sustained rate in connections per second (0 when unlimited).
func (l *Limiter) Limit() float64 {
	if l.unlimited {
		return 0
	}
	return float64(l.limiter.Limit())
}

// Burst returns the bucket size.
func (l *Limiter) Burst() int {
	return l.limiter.Burst()
}

// Tokens returns the tokens currently in the bucket. Only meaningful for
// monitoring; the value changes as soon as it is read.
func (l *Limiter) Tokens() float64 {
	return l.limiter.Tokens()
}
