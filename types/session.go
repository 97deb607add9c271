package types

import "time"

// Session is a time-bounded proof of identity keyed by an opaque
// bearer token. A session is valid iff it exists in the store and
// ExpiresAt is strictly in the future.
type Session struct {
	Token     string    `json:"token" db:"token"`
	UserID    string    `json:"userId" db:"user_id"`
	ExpiresAt time.Time `json:"expiresAt" db:"expires_at"`
}

// Expired reports whether the session is no longer valid at now.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}
