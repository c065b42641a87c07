package storage

import "time"

type Chat struct {
	ID        int64
	Type      string
	Title     string
	CreatedAt time.Time
}

// Transcript is one logged dialogue line. The log is write-only audit
// data; prompt context is assembled from in-memory history, never from
// these rows.
type Transcript struct {
	ID        int64
	ChatID    int64
	UserID    int64
	Role      string
	Text      string
	Encrypted bool
	CreatedAt time.Time
}
