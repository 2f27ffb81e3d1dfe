package ratelimit

import (
	"fmt"
	"time"
)

type Store interface {
	IncrementRateCounter(scope, identifier string, windowStart, expiresAt time.Time) (int, error)
}

// Limiter is a fixed-window rate limiter backed by a shared counter table, so
// the limit holds across process instances. Windows are aligned to multiples
// of the window size; counter rows expire two windows out and are cleaned up
// lazily by the store.
type Limiter struct {
	store  Store
	limit  int
	window time.Duration
}

func New(store Store, limit int, window time.Duration) *Limiter {
	return &Limiter{
		store:  store,
		limit:  limit,
		window: window,
	}
}

// Allow counts a hit for (scope, identifier) in the current window and
// reports whether it is within the limit.
func (l *Limiter) Allow(scope, identifier string) (bool, error) {
	const op = "ratelimit.Allow"

	windowStart := time.Now().UTC().Truncate(l.window)
	expiresAt := windowStart.Add(2 * l.window)

	count, err := l.store.IncrementRateCounter(scope, identifier, windowStart, expiresAt)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return count <= l.limit, nil
}
