// Package ratelimit bounds request rates per (endpoint, identity) key over a
// sliding window. Enforcement is defense-in-depth, not the primary
// authorization boundary: when the backing store is unreachable the limiter
// fails open so an infrastructure outage never becomes a denial of service
// against legitimate traffic.
package ratelimit

import (
	"context"
	"log/slog"
	"time"
)

// Store answers whether one more request under key is admissible within the
// rolling window. Implementations must be safe under arbitrary concurrency
// per key: a split check-then-increment would let concurrent callers all
// observe "under limit" and all be admitted.
type Store interface {
	Check(ctx context.Context, key string, window time.Duration, max int) (bool, error)
}

// Limiter wraps a Store with the fail-open policy. Construct one per process
// and pass it through the call graph; call sites depend only on Allow.
type Limiter struct {
	store Store
}

func New(store Store) *Limiter {
	return &Limiter{store: store}
}

// Allow reports whether the request is admitted. Store failures are absorbed:
// the request is admitted and the failure logged at warning severity.
func (l *Limiter) Allow(ctx context.Context, key string, window time.Duration, max int) bool {
	allowed, err := l.store.Check(ctx, key, window, max)
	if err != nil {
		slog.Warn("rate limit store unavailable, failing open", "key", key, "error", err)
		return true
	}
	return allowed
}
