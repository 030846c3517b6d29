// Package limiter defines interfaces and implementations for rate limiting.
// Two concerns live here: per-request windows for the HTTP surface, and
// failure lockouts for authentication attempts.
package limiter

import (
	"context"
	"time"
)

// Limiter controls authentication attempts and temporary lockouts.
type Limiter interface {
	// Allow reports whether an attempt is currently allowed and optional retry-after.
	Allow(ctx context.Context, key string, ipHash []byte) (bool, time.Duration, error)
	// Success resets counters after a successful attempt.
	Success(ctx context.Context, key string, ipHash []byte) error
	// Failure records a failed attempt; may place a temporary block.
	Failure(ctx context.Context, key string, ipHash []byte) (bool, time.Duration, error)
}

// RequestLimiter enforces a fixed per-minute request budget per key.
type RequestLimiter interface {
	// Take consumes one unit. It returns whether the request may proceed,
	// how much budget remains, and how long until the window resets.
	Take(ctx context.Context, key string) (ok bool, remaining int, reset time.Duration, err error)
	// Limit returns the per-window budget.
	Limit() int
}
