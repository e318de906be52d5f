package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/csmathguy/clarity/internal/core/domain"
)

func newUserFixture(users ...domain.User) (*UserService, *fakeUserRepo, *fakeSessionRepo, *fakeEventPublisher) {
	userRepo := newFakeUserRepo(users...)
	tokenRepo := newFakeTokenRepo()
	sessionRepo := newFakeSessionRepo()
	hasher := &fakeHasher{}
	events := &fakeEventPublisher{}
	resets := NewPasswordResetService(testAuthSettings(), userRepo, tokenRepo, sessionRepo, hasher, events, zap.NewNop())
	svc := NewUserService(userRepo, sessionRepo, resets, events, zap.NewNop())
	return svc, userRepo, sessionRepo, events
}

func TestCreateUser_IssuesInitialResetToken(t *testing.T) {
	svc, userRepo, _, events := newUserFixture()

	email := "maria@example.com"
	user, rawToken, err := svc.CreateUser(context.Background(), "admin-1", CreateUserInput{
		Username: "maria",
		Email:    &email,
		Name:     "Maria",
	})
	if err != nil {
		t.Fatalf("CreateUser returned error: %v", err)
	}

	if user.Role != domain.RoleUser {
		t.Fatalf("expected default role user, got %s", user.Role)
	}
	if rawToken == "" {
		t.Fatal("expected an initial reset token")
	}
	if len(events.userCreated) != 1 {
		t.Fatalf("expected 1 user created event, got %d", len(events.userCreated))
	}
	if len(events.resetRequested) != 1 {
		t.Fatalf("expected 1 reset requested event, got %d", len(events.resetRequested))
	}

	stored, err := userRepo.GetByID(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("stored user lookup failed: %v", err)
	}
	if !strings.HasPrefix(stored.PasswordHash, "!") {
		t.Fatalf("expected unusable placeholder hash, got %q", stored.PasswordHash)
	}
}

func TestCreateUser_DuplicateUsername(t *testing.T) {
	svc, _, _, _ := newUserFixture(activeUser("user-1", "maria", "some-pass"))

	if _, _, err := svc.CreateUser(context.Background(), "admin-1", CreateUserInput{Username: "maria", Name: "Other"}); !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}
}

func TestCreateUser_InvalidRole(t *testing.T) {
	svc, _, _, _ := newUserFixture()

	if _, _, err := svc.CreateUser(context.Background(), "admin-1", CreateUserInput{Username: "maria", Role: "superuser"}); !errors.Is(err, ErrInvalidRole) {
		t.Fatalf("expected ErrInvalidRole, got %v", err)
	}
}

func TestSetUserStatus_DisableRevokesSessions(t *testing.T) {
	svc, userRepo, sessionRepo, _ := newUserFixture(activeUser("user-1", "maria", "some-pass"))

	now := time.Now().UTC()
	for _, id := range []string{"s1", "s2"} {
		if err := sessionRepo.Create(context.Background(), domain.Session{
			ID: id, UserID: "user-1", CreatedAt: now, ExpiresAt: now.Add(time.Hour),
		}); err != nil {
			t.Fatalf("seed session: %v", err)
		}
	}

	if err := svc.SetUserStatus(context.Background(), "user-1", domain.UserStatusDisabled); err != nil {
		t.Fatalf("SetUserStatus returned error: %v", err)
	}

	stored, _ := userRepo.GetByID(context.Background(), "user-1")
	if stored.Status != domain.UserStatusDisabled {
		t.Fatalf("expected disabled status, got %s", stored.Status)
	}
	if sessionRepo.count() != 0 {
		t.Fatalf("expected all sessions revoked, got %d", sessionRepo.count())
	}
}

func TestSetUserStatus_UnknownUser(t *testing.T) {
	svc, _, _, _ := newUserFixture()

	if err := svc.SetUserStatus(context.Background(), "ghost", domain.UserStatusDisabled); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
