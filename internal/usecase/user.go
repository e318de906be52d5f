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
	"github.com/csmathguy/clarity/internal/infra/security"
	"github.com/csmathguy/clarity/internal/repository"
)

var (
	// ErrUsernameTaken indicates the username or email is already registered.
	ErrUsernameTaken = errors.New("username or email already taken")
	// ErrInvalidRole indicates an unrecognized role value.
	ErrInvalidRole = errors.New("invalid role")
)

// CreateUserInput carries the admin-supplied attributes for a new account.
type CreateUserInput struct {
	Username string
	Email    *string
	Name     string
	Role     domain.UserRole
}

// UserService covers administrative account management. New accounts are
// provisioned without a usable password: the admin hands the returned reset
// token to the user, who sets their own password through the reset flow.
type UserService struct {
	users    port.UserRepository
	sessions port.SessionRepository
	resets   *PasswordResetService
	events   port.EventPublisher
	logger   *zap.Logger
	now      func() time.Time
}

// NewUserService constructs a UserService instance.
func NewUserService(
	users port.UserRepository,
	sessions port.SessionRepository,
	resets *PasswordResetService,
	events port.EventPublisher,
	log *zap.Logger,
) *UserService {
	return &UserService{
		users:    users,
		sessions: sessions,
		resets:   resets,
		events:   events,
		logger:   log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the time source. Intended for tests.
func (s *UserService) WithClock(now func() time.Time) *UserService {
	s.now = now
	return s
}

// CreateUser provisions an account and issues its initial reset token. The
// stored password hash is derived from random bytes and can never verify, so
// the account is unusable until the reset token is redeemed.
func (s *UserService) CreateUser(ctx context.Context, createdByUserID string, input CreateUserInput) (*domain.User, string, error) {
	if input.Username == "" {
		return nil, "", fmt.Errorf("username is required")
	}

	role := input.Role
	if role == "" {
		role = domain.RoleUser
	}
	if role != domain.RoleUser && role != domain.RoleAdmin {
		return nil, "", ErrInvalidRole
	}

	placeholder, err := security.GenerateSecureToken(32)
	if err != nil {
		return nil, "", fmt.Errorf("generate placeholder secret: %w", err)
	}

	now := s.now()
	user := domain.User{
		ID:       uuid.NewString(),
		Username: input.Username,
		Email:    input.Email,
		Name:     input.Name,
		// Hash of the raw placeholder, not a verifiable Argon2 encoding.
		PasswordHash: "!" + security.HashToken(placeholder),
		Role:         role,
		Status:       domain.UserStatusActive,
		CreatedAt:    now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, "", ErrUsernameTaken
		}
		return nil, "", fmt.Errorf("create user: %w", err)
	}

	if err := s.events.PublishUserCreated(ctx, domain.UserCreatedEvent{
		EventID:   uuid.NewString(),
		UserID:    user.ID,
		Username:  user.Username,
		Role:      string(user.Role),
		CreatedBy: createdByUserID,
		CreatedAt: now,
	}); err != nil {
		s.logger.Warn("publish user created event", zap.Error(err))
	}

	rawToken, _, err := s.resets.IssueToken(ctx, createdByUserID, user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("issue initial reset token: %w", err)
	}

	user.PasswordHash = ""
	return &user, rawToken, nil
}

// GetUser fetches a single account.
func (s *UserService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	sanitized := *user
	sanitized.PasswordHash = ""
	return &sanitized, nil
}

// SetUserStatus changes an account's status. Disabling an account revokes
// every live session it holds.
func (s *UserService) SetUserStatus(ctx context.Context, id string, status domain.UserStatus) error {
	if status != domain.UserStatusActive && status != domain.UserStatusDisabled {
		return fmt.Errorf("unsupported status %q", status)
	}

	if err := s.users.UpdateStatus(ctx, id, status); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("update user status: %w", err)
	}

	if status == domain.UserStatusDisabled {
		revoked, err := s.sessions.DeleteAllForUser(ctx, id)
		if err != nil {
			return fmt.Errorf("revoke sessions for disabled user: %w", err)
		}
		s.logger.Info("user disabled",
			zap.String("user_id", id),
			zap.Int("sessions_revoked", revoked),
		)
	}

	return nil
}
