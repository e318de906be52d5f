package port

import (
	"context"
	"time"

	"github.com/csmathguy/clarity/internal/core/domain"
)

// SessionRepository deals with session storage.
type SessionRepository interface {
	Create(ctx context.Context, session domain.Session) error
	GetByID(ctx context.Context, sessionID string) (*domain.Session, error)
	// Delete removes a session. Deleting an unknown id is not an error.
	Delete(ctx context.Context, sessionID string) error
	DeleteAllForUser(ctx context.Context, userID string) (int, error)
	// DeleteExpired sweeps sessions whose expiry precedes the supplied moment.
	DeleteExpired(ctx context.Context, before time.Time) (int, error)
}
