package session

import (
	"sync"
	"time"
)

// RateLimiter enforces a minimum spacing between accepted requests per
// user. Check-and-update is atomic per user key, so two near-simultaneous
// calls for the same user cannot both pass, while different users never
// wait on each other.
type RateLimiter struct {
	minDelay time.Duration

	mu    sync.Mutex
	users map[int64]*rateEntry
}

type rateEntry struct {
	mu   sync.Mutex
	last time.Time
}

func NewRateLimiter(minDelay time.Duration) *RateLimiter {
	return &RateLimiter{
		minDelay: minDelay,
		users:    make(map[int64]*rateEntry),
	}
}

// Allow reports whether a request from userID at time now is accepted.
// Denied calls do not move the user's timestamp, and the recorded time
// never goes backwards.
func (r *RateLimiter) Allow(userID int64, now time.Time) bool {
	e := r.entry(userID)
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.last.IsZero() {
		if now.Sub(e.last) < r.minDelay {
			return false
		}
		if now.Before(e.last) {
			return false
		}
	}
	e.last = now
	return true
}

func (r *RateLimiter) entry(userID int64) *rateEntry {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.users[userID]
	if !ok {
		e = &rateEntry{}
		r.users[userID] = e
	}
	return e
}
