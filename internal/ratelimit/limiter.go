// Package ratelimit caps submission attempts per client identity
// within a sliding time window. The store is injected: Redis-backed in
// production (shared across instances) with an in-memory fallback when
// Redis is unavailable. Either way the limiter is an abuse deterrent,
// not a hard guarantee.
package ratelimit

import (
	"context"
	"time"

	"github.com/vespanova/booking-api/internal/config"
)

// Store keeps per-identity request timestamps and answers whether one
// more request fits inside the window.
type Store interface {
	// Take records a request for key if it is under max within the
	// window and reports whether it was allowed, how many requests
	// remain, and, when denied, how long until the window frees up.
	Take(ctx context.Context, key string, max int, window time.Duration) (allowed bool, remaining int, retryAfter time.Duration, err error)
}

// Decision is the outcome of one limiter check.
type Decision struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// Limiter binds a window store to one endpoint's configuration.
type Limiter struct {
	store Store
	cfg   config.RateLimitConfig
}

// New returns a limiter over the given store. A disabled configuration
// allows everything.
func New(store Store, cfg config.RateLimitConfig) *Limiter {
	return &Limiter{store: store, cfg: cfg}
}

// Allow checks and records one request for the given identity. The
// identity is the sanitized customer email when present, otherwise the
// caller falls back to the client IP. Store errors fail open: a broken
// limiter must not take the booking funnel down with it.
func (l *Limiter) Allow(ctx context.Context, identity string) Decision {
	if l == nil || !l.cfg.Enabled {
		return Decision{Allowed: true, Remaining: l.max() - 1}
	}
	if identity == "" {
		identity = "anon"
	}
	window := time.Duration(l.cfg.Window) * time.Second
	allowed, remaining, retryAfter, err := l.store.Take(ctx, l.cfg.Prefix+":"+identity, l.cfg.Max, window)
	if err != nil {
		return Decision{Allowed: true, Remaining: 0}
	}
	return Decision{Allowed: allowed, Remaining: remaining, RetryAfter: retryAfter}
}

func (l *Limiter) max() int {
	if l == nil {
		return 1
	}
	return l.cfg.Max
}
