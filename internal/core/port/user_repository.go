package port

import (
	"context"
	"time"

	"github.com/csmathguy/clarity/internal/core/domain"
)

// UserRepository exposes persistence behavior for users.
//
// RecordLoginFailure and RecordLoginSuccess are the only mutation paths for
// the lockout counters. RecordLoginFailure performs the increment and the
// conditional lockout stamp in a single store-side statement so concurrent
// failed logins cannot lose updates.
type UserRepository interface {
	Create(ctx context.Context, user domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByIdentifier(ctx context.Context, identifier string) (*domain.User, error)
	UpdateStatus(ctx context.Context, id string, status domain.UserStatus) error
	UpdatePassword(ctx context.Context, id string, passwordHash string, changedAt time.Time) error
	// RecordLoginFailure atomically increments failed_login_count and, when the
	// incremented value reaches threshold, sets lockout_until in the same
	// statement. It returns the post-increment count.
	RecordLoginFailure(ctx context.Context, id string, threshold int, lockoutUntil time.Time) (int, error)
	// RecordLoginSuccess resets the lockout state and stamps last_login_at.
	RecordLoginSuccess(ctx context.Context, id string, at time.Time) error
}
