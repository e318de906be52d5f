package domain

import "time"

// PasswordResetToken represents a single-use password reset token.
// Only the SHA-256 hash of the raw secret is ever persisted; the raw value
// is returned to the issuing caller exactly once.
type PasswordResetToken struct {
	ID              string
	UserID          string
	CreatedByUserID string
	TokenHash       string
	CreatedAt       time.Time
	ExpiresAt       time.Time
	UsedAt          *time.Time
}

// IsExpired reports whether the token has elapsed its validity window.
func (t PasswordResetToken) IsExpired(at time.Time) bool {
	return !t.ExpiresAt.After(at)
}

// IsRedeemable reports whether the token can still be presented for a password change.
func (t PasswordResetToken) IsRedeemable(at time.Time) bool {
	return t.UsedAt == nil && !t.IsExpired(at)
}
