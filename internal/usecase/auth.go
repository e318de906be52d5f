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
	"github.com/csmathguy/clarity/internal/infra/security"
	"github.com/csmathguy/clarity/internal/repository"
)

var (
	// ErrInvalidCredentials indicates the provided identifier or password are incorrect.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAccountDisabled indicates the account was disabled by an administrator.
	ErrAccountDisabled = errors.New("account disabled")
	// ErrAccountLocked indicates the account is inside an active lockout window.
	ErrAccountLocked = errors.New("account locked")
	// ErrSessionExpired indicates the session expired before validation.
	ErrSessionExpired = errors.New("session expired")
	// ErrSessionNotFound indicates the session id does not resolve to a live session.
	ErrSessionNotFound = errors.New("session not found")
)

const sessionTokenBytes = 32

// AuthService coordinates login, logout, and session validation.
type AuthService struct {
	cfg      config.AuthSettings
	users    port.UserRepository
	sessions port.SessionRepository
	hasher   port.PasswordHasher
	events   port.EventPublisher
	logger   *zap.Logger
	now      func() time.Time
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(
	cfg config.AuthSettings,
	users port.UserRepository,
	sessions port.SessionRepository,
	hasher port.PasswordHasher,
	events port.EventPublisher,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		cfg:      cfg,
		users:    users,
		sessions: sessions,
		hasher:   hasher,
		events:   events,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the time source. Intended for tests.
func (s *AuthService) WithClock(now func() time.Time) *AuthService {
	s.now = now
	return s
}

// Login validates credentials, applies the lockout policy, and issues a session.
//
// Unknown users, disabled accounts, and locked accounts all surface to the
// transport layer as errors carrying no account-state detail; the distinction
// exists only for logging and for the lockout rules. A locked or disabled
// account never reaches password verification.
func (s *AuthService) Login(ctx context.Context, identifier, password string) (*domain.Session, *domain.User, error) {
	if identifier == "" || password == "" {
		return nil, nil, ErrInvalidCredentials
	}

	now := s.now()

	user, err := s.users.GetByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, fmt.Errorf("lookup user: %w", err)
	}

	if !user.CanAuthenticate() {
		if user.Status == domain.UserStatusDisabled {
			return nil, nil, ErrAccountDisabled
		}
		return nil, nil, ErrAccountLocked
	}

	if user.IsLockedOut(now) {
		return nil, nil, ErrAccountLocked
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, nil, s.recordFailure(ctx, user, now)
	}

	if err := s.users.RecordLoginSuccess(ctx, user.ID, now); err != nil {
		return nil, nil, fmt.Errorf("record login success: %w", err)
	}

	session, err := s.issueSession(ctx, user.ID, now)
	if err != nil {
		return nil, nil, err
	}

	if err := s.events.PublishLoginSucceeded(ctx, domain.LoginSucceededEvent{
		EventID:   uuid.NewString(),
		UserID:    user.ID,
		SessionID: session.ID,
		LoginAt:   now,
	}); err != nil {
		s.logger.Warn("publish login succeeded event", zap.Error(err))
	}

	sanitized := *user
	sanitized.PasswordHash = ""
	sanitized.FailedLoginCount = 0
	sanitized.LockoutUntil = nil

	return session, &sanitized, nil
}

// recordFailure bumps the failure counter and locks the account when the
// threshold is reached. The caller always gets ErrInvalidCredentials back so
// a freshly locked account is indistinguishable from a plain bad password.
func (s *AuthService) recordFailure(ctx context.Context, user *domain.User, now time.Time) error {
	lockoutUntil := now.Add(s.cfg.LockoutDuration)

	count, err := s.users.RecordLoginFailure(ctx, user.ID, s.cfg.LockoutThreshold, lockoutUntil)
	if err != nil {
		return fmt.Errorf("record login failure: %w", err)
	}

	if count >= s.cfg.LockoutThreshold {
		s.logger.Warn("account locked after consecutive failures",
			zap.String("user_id", user.ID),
			zap.Int("failed_count", count),
			zap.Time("lockout_until", lockoutUntil),
		)
		if err := s.events.PublishAccountLocked(ctx, domain.AccountLockedEvent{
			EventID:      uuid.NewString(),
			UserID:       user.ID,
			FailedCount:  count,
			LockedAt:     now,
			LockoutUntil: lockoutUntil,
		}); err != nil {
			s.logger.Warn("publish account locked event", zap.Error(err))
		}
	}

	return ErrInvalidCredentials
}

func (s *AuthService) issueSession(ctx context.Context, userID string, now time.Time) (*domain.Session, error) {
	token, err := security.GenerateSecureToken(sessionTokenBytes)
	if err != nil {
		return nil, fmt.Errorf("generate session token: %w", err)
	}

	session := domain.Session{
		ID:        token,
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.cfg.SessionTTL),
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	return &session, nil
}

// Logout removes a session. Logging out an unknown or already removed session
// succeeds; logout is idempotent.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}

	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	return nil
}

// ValidateSession resolves a session id to its user. Expired sessions are
// deleted on sight.
func (s *AuthService) ValidateSession(ctx context.Context, sessionID string) (*domain.User, *domain.Session, error) {
	if sessionID == "" {
		return nil, nil, ErrSessionNotFound
	}

	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrSessionNotFound
		}
		return nil, nil, fmt.Errorf("lookup session: %w", err)
	}

	now := s.now()
	if !session.IsActive(now) {
		if err := s.sessions.Delete(ctx, session.ID); err != nil {
			s.logger.Warn("delete expired session", zap.Error(err))
		}
		return nil, nil, ErrSessionExpired
	}

	user, err := s.users.GetByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrSessionNotFound
		}
		return nil, nil, fmt.Errorf("lookup session user: %w", err)
	}

	if user.Status == domain.UserStatusDisabled {
		return nil, nil, ErrAccountDisabled
	}

	sanitized := *user
	sanitized.PasswordHash = ""

	return &sanitized, session, nil
}
