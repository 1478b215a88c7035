package domain

import "time"

// Entry is one append-only login-history record. One entry is written for
// every session issued, so entries per user are never fewer than sessions.
type Entry struct {
	ID          string    `json:"id"`
	UserID      string    `json:"-"`
	Fingerprint string    `json:"fingerprint"`
	UserAgent   string    `json:"user_agent"`
	CreatedAt   time.Time `json:"created"`
}
