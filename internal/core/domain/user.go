package domain

import "time"

// UserStatus enumerates possible account states.
type UserStatus string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusDisabled UserStatus = "disabled"
	UserStatusLocked   UserStatus = "locked"
)

// UserRole enumerates the authorization roles a user may hold.
type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
)

// User mirrors the persisted representation in the users table.
type User struct {
	ID                string
	Username          string
	Email             *string
	Phone             *string
	Name              string
	PasswordHash      string
	Role              UserRole
	Status            UserStatus
	FailedLoginCount  int
	LockoutUntil      *time.Time
	LastLoginAt       *time.Time
	PasswordChangedAt *time.Time
	CreatedAt         time.Time
}

// IsLockedOut reports whether the lockout window is still open at the supplied moment.
func (u User) IsLockedOut(at time.Time) bool {
	return u.LockoutUntil != nil && at.Before(*u.LockoutUntil)
}

// CanAuthenticate reports whether the account status permits a login attempt.
func (u User) CanAuthenticate() bool {
	return u.Status == UserStatusActive
}

// IsAdmin reports whether the user holds the admin role.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
