package domain

import "time"

// Session represents a persisted login session bound to an opaque bearer token.
// Sessions are immutable once created: they are either looked up or deleted,
// never updated in place.
type Session struct {
	ID        string
	UserID    string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// IsActive reports whether the session is still valid at the supplied moment.
func (s Session) IsActive(at time.Time) bool {
	return s.ExpiresAt.After(at)
}
