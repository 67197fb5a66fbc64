// Package ratelimit throttles per-identity request rates with a fixed-size
// approximate sliding window. It is deliberately not a token bucket: a burst
// exactly at the window boundary is permitted once the oldest stamp ages out.
package ratelimit

import (
	"sync"
	"time"
)

// keepStamps bounds per-handle memory; only the newest stamps are retained.
const keepStamps = 10

// Limiter is a per-handle sliding-window request throttle. State is purely
// in-memory; a cold start resetting it is harmless.
type Limiter struct {
	mu     sync.Mutex
	limit  int
	window time.Duration
	stamps map[int64][]time.Time
	now    func() time.Time
}

// New creates a limiter allowing limit requests per trailing window.
func New(limit int, window time.Duration) *Limiter {
	return &Limiter{
		limit:  limit,
		window: window,
		stamps: make(map[int64][]time.Time),
		now:    time.Now,
	}
}

// Allow reports whether the handle may proceed. A rejected request is not
// recorded, so hammering while throttled does not extend the throttle.
func (l *Limiter) Allow(handle int64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-l.window)

	kept := l.stamps[handle][:0]
	for _, t := range l.stamps[handle] {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}

	if len(kept) >= l.limit {
		l.stamps[handle] = kept
		return false
	}

	kept = append(kept, now)
	if len(kept) > keepStamps {
		kept = kept[len(kept)-keepStamps:]
	}
	l.stamps[handle] = kept
	return true
}
