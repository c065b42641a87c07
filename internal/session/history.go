package session

import (
	"sync"

	"zozabot/internal/providers"
)

// History keeps a bounded per-user conversation window. Once a user's
// window is full, appending evicts the oldest turn. State is in-process
// only; a restart clears it.
type History struct {
	capacity int

	mu    sync.Mutex
	users map[int64]*userHistory
}

type userHistory struct {
	mu    sync.Mutex
	turns []providers.Turn
}

func NewHistory(capacity int) *History {
	if capacity < 1 {
		capacity = 1
	}
	return &History{
		capacity: capacity,
		users:    make(map[int64]*userHistory),
	}
}

func (h *History) Append(userID int64, turn providers.Turn) {
	u := h.user(userID)
	u.mu.Lock()
	defer u.mu.Unlock()

	u.turns = append(u.turns, turn)
	if len(u.turns) > h.capacity {
		copy(u.turns, u.turns[1:])
		u.turns = u.turns[:h.capacity]
	}
}

// Snapshot returns a copy of the user's current window in chronological
// order. Repeated calls without an intervening Append return equal slices.
func (h *History) Snapshot(userID int64) []providers.Turn {
	u := h.user(userID)
	u.mu.Lock()
	defer u.mu.Unlock()

	out := make([]providers.Turn, len(u.turns))
	copy(out, u.turns)
	return out
}

func (h *History) user(userID int64) *userHistory {
	h.mu.Lock()
	defer h.mu.Unlock()

	u, ok := h.users[userID]
	if !ok {
		u = &userHistory{turns: make([]providers.Turn, 0, h.capacity)}
		h.users[userID] = u
	}
	return u
}
