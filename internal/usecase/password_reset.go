package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/csmathguy/clarity/internal/core/domain"
	"github.com/csmathguy/clarity/internal/core/port"
	"github.com/csmathguy/clarity/internal/infra/config"
	"github.com/csmathguy/clarity/internal/infra/logger"
	"github.com/csmathguy/clarity/internal/infra/security"
	"github.com/csmathguy/clarity/internal/repository"
)

var (
	// ErrInvalidResetToken indicates the token does not exist or was already redeemed.
	ErrInvalidResetToken = errors.New("invalid reset token")
	// ErrExpiredResetToken indicates the token elapsed its validity window.
	ErrExpiredResetToken = errors.New("reset token expired")
	// ErrUserNotFound indicates the referenced user does not exist.
	ErrUserNotFound = errors.New("user not found")
)

const resetTokenBytes = 32

// PasswordResetService issues and redeems single-use password reset tokens.
type PasswordResetService struct {
	cfg      config.AuthSettings
	users    port.UserRepository
	tokens   port.ResetTokenRepository
	sessions port.SessionRepository
	hasher   port.PasswordHasher
	events   port.EventPublisher
	logger   *zap.Logger
	now      func() time.Time
}

// NewPasswordResetService constructs a PasswordResetService instance.
func NewPasswordResetService(
	cfg config.AuthSettings,
	users port.UserRepository,
	tokens port.ResetTokenRepository,
	sessions port.SessionRepository,
	hasher port.PasswordHasher,
	events port.EventPublisher,
	log *zap.Logger,
) *PasswordResetService {
	return &PasswordResetService{
		cfg:      cfg,
		users:    users,
		tokens:   tokens,
		sessions: sessions,
		hasher:   hasher,
		events:   events,
		logger:   log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the time source. Intended for tests.
func (s *PasswordResetService) WithClock(now func() time.Time) *PasswordResetService {
	s.now = now
	return s
}

// IssueToken mints a reset token for the target user on behalf of an
// administrator. The raw token is returned exactly once; only its hash is
// persisted.
func (s *PasswordResetService) IssueToken(ctx context.Context, issuedByUserID, targetUserID string) (string, *domain.PasswordResetToken, error) {
	user, err := s.users.GetByID(ctx, targetUserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil, ErrUserNotFound
		}
		return "", nil, fmt.Errorf("lookup user: %w", err)
	}

	raw, token, err := s.mint(ctx, user.ID, issuedByUserID)
	if err != nil {
		return "", nil, err
	}

	return raw, token, nil
}

// RequestReset handles the self-service reset request. It never discloses
// whether the identifier resolved to an account: an unknown identifier is a
// silent no-op. The minted token reaches the user out of band.
func (s *PasswordResetService) RequestReset(ctx context.Context, identifier string) error {
	if identifier == "" {
		return nil
	}

	user, err := s.users.GetByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.logger.Info("reset requested for unknown identifier",
				zap.String("identifier", logger.MaskString(identifier)),
			)
			return nil
		}
		return fmt.Errorf("lookup user: %w", err)
	}

	if user.Status == domain.UserStatusDisabled {
		return nil
	}

	if _, _, err := s.mint(ctx, user.ID, user.ID); err != nil {
		return err
	}

	return nil
}

func (s *PasswordResetService) mint(ctx context.Context, userID, createdBy string) (string, *domain.PasswordResetToken, error) {
	raw, err := security.GenerateSecureToken(resetTokenBytes)
	if err != nil {
		return "", nil, fmt.Errorf("generate reset token: %w", err)
	}

	now := s.now()
	token := domain.PasswordResetToken{
		ID:              uuid.NewString(),
		UserID:          userID,
		CreatedByUserID: createdBy,
		TokenHash:       security.HashToken(raw),
		CreatedAt:       now,
		ExpiresAt:       now.Add(s.cfg.ResetTokenTTL),
	}

	if err := s.tokens.Create(ctx, token); err != nil {
		return "", nil, fmt.Errorf("store reset token: %w", err)
	}

	if err := s.events.PublishResetRequested(ctx, domain.ResetRequestedEvent{
		EventID:     uuid.NewString(),
		UserID:      userID,
		TokenID:     token.ID,
		RequestedBy: createdBy,
		RequestedAt: now,
		ExpiresAt:   token.ExpiresAt,
	}); err != nil {
		s.logger.Warn("publish reset requested event", zap.Error(err))
	}

	return raw, &token, nil
}

// ResetPassword redeems a raw token and installs the new password. Redemption
// is single-winner: concurrent confirms race on the used_at stamp and exactly
// one succeeds. All sessions of the user are revoked on success.
func (s *PasswordResetService) ResetPassword(ctx context.Context, rawToken, newPassword string) error {
	if rawToken == "" {
		return ErrInvalidResetToken
	}

	token, err := s.tokens.GetByHash(ctx, security.HashToken(rawToken))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrInvalidResetToken
		}
		return fmt.Errorf("lookup reset token: %w", err)
	}

	now := s.now()
	if token.UsedAt != nil {
		return ErrInvalidResetToken
	}
	if token.IsExpired(now) {
		return ErrExpiredResetToken
	}

	if err := s.tokens.MarkUsed(ctx, token.ID, now); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Lost the race to a concurrent confirm.
			return ErrInvalidResetToken
		}
		return fmt.Errorf("consume reset token: %w", err)
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.users.UpdatePassword(ctx, token.UserID, hash, now); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	revoked, err := s.sessions.DeleteAllForUser(ctx, token.UserID)
	if err != nil {
		s.logger.Warn("revoke sessions after password change",
			zap.String("user_id", token.UserID),
			zap.Error(err),
		)
	} else if revoked > 0 {
		s.logger.Info("sessions revoked after password change",
			zap.String("user_id", token.UserID),
			zap.Int("revoked", revoked),
		)
	}

	if err := s.events.PublishPasswordChanged(ctx, domain.PasswordChangedEvent{
		EventID:   uuid.NewString(),
		UserID:    token.UserID,
		ChangedAt: now,
		TokenID:   token.ID,
	}); err != nil {
		s.logger.Warn("publish password changed event", zap.Error(err))
	}

	return nil
}
