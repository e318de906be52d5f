package domain

import "time"

// UserCreatedEvent is emitted when an administrator provisions a new account.
type UserCreatedEvent struct {
	EventID   string
	UserID    string
	Username  string
	Role      string
	CreatedBy string
	CreatedAt time.Time
}

// LoginSucceededEvent is emitted after a successful credential check and session issuance.
type LoginSucceededEvent struct {
	EventID   string
	UserID    string
	SessionID string
	LoginAt   time.Time
}

// AccountLockedEvent is emitted when consecutive failures trip the lockout.
type AccountLockedEvent struct {
	EventID      string
	UserID       string
	FailedCount  int
	LockedAt     time.Time
	LockoutUntil time.Time
}

// PasswordChangedEvent is emitted when a reset token is redeemed.
type PasswordChangedEvent struct {
	EventID   string
	UserID    string
	ChangedAt time.Time
	TokenID   string
}

// ResetRequestedEvent is emitted when a reset token is issued. It carries the
// token id and expiry only; the raw secret never enters the event stream.
type ResetRequestedEvent struct {
	EventID     string
	UserID      string
	TokenID     string
	RequestedBy string
	RequestedAt time.Time
	ExpiresAt   time.Time
}
