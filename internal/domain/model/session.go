package model

import "time"

// Session binds a bearer token to an account until ExpiresAt. Only the
// SHA-256 hash of the token is stored.
type Session struct {
	ID        string
	AccountID int64
	TokenHash string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the session is no longer valid at now.
func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
