package port

import (
	"context"
	"time"

	"github.com/csmathguy/clarity/internal/core/domain"
)

// ResetTokenRepository manages password reset token records.
type ResetTokenRepository interface {
	Create(ctx context.Context, token domain.PasswordResetToken) error
	GetByHash(ctx context.Context, hash string) (*domain.PasswordResetToken, error)
	// MarkUsed stamps used_at on an unredeemed token. Returns
	// repository.ErrNotFound when the token does not exist or was already used.
	MarkUsed(ctx context.Context, id string, usedAt time.Time) error
	DeleteExpired(ctx context.Context, before time.Time) (int, error)
}
