package domain

import "time"

// Session is an authenticated admin session, issued after a login code is consumed.
type Session struct {
	ID         string
	Subject    string
	TokenHash  string // SHA-256 of the issued session token
	IPAddress  string
	UserAgent  string
	ExpiresAt  time.Time
	RevokedAt  *time.Time // nil when not revoked
	LastSeenAt *time.Time
	CreatedAt  time.Time
}

// Active reports whether the session is unrevoked and unexpired at now.
func (s *Session) Active(now time.Time) bool {
	return s.RevokedAt == nil && s.ExpiresAt.After(now)
}
