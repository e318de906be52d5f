package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/csmathguy/clarity/internal/core/domain"
	"github.com/csmathguy/clarity/internal/infra/config"
)

func testAuthSettings() config.AuthSettings {
	return config.AuthSettings{
		SessionTTL:       24 * time.Hour,
		ResetTokenTTL:    time.Hour,
		LockoutThreshold: 5,
		LockoutDuration:  15 * time.Minute,
	}
}

func activeUser(id, username, password string) domain.User {
	return domain.User{
		ID:           id,
		Username:     username,
		Name:         "Test User",
		PasswordHash: "hashed:" + password,
		Role:         domain.RoleUser,
		Status:       domain.UserStatusActive,
		CreatedAt:    time.Now().UTC().Add(-time.Hour),
	}
}

func newAuthFixture(users ...domain.User) (*AuthService, *fakeUserRepo, *fakeSessionRepo, *fakeHasher, *fakeEventPublisher) {
	userRepo := newFakeUserRepo(users...)
	sessionRepo := newFakeSessionRepo()
	hasher := &fakeHasher{}
	events := &fakeEventPublisher{}
	svc := NewAuthService(testAuthSettings(), userRepo, sessionRepo, hasher, events, zap.NewNop())
	return svc, userRepo, sessionRepo, hasher, events
}

func TestLogin_Success(t *testing.T) {
	svc, userRepo, sessionRepo, _, events := newAuthFixture(activeUser("user-1", "maria", "s3cret-pass"))

	session, user, err := svc.Login(context.Background(), "maria", "s3cret-pass")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}

	if session.UserID != "user-1" {
		t.Fatalf("expected session for user-1, got %s", session.UserID)
	}
	if len(session.ID) != 43 {
		t.Fatalf("expected 43-char opaque token, got %d chars", len(session.ID))
	}
	if user.PasswordHash != "" {
		t.Fatal("expected password hash to be stripped from returned user")
	}
	if sessionRepo.count() != 1 {
		t.Fatalf("expected 1 stored session, got %d", sessionRepo.count())
	}
	if len(events.loginSucceeded) != 1 {
		t.Fatalf("expected 1 login event, got %d", len(events.loginSucceeded))
	}

	stored, _ := userRepo.GetByID(context.Background(), "user-1")
	if stored.LastLoginAt == nil {
		t.Fatal("expected last_login_at to be stamped")
	}
}

func TestLogin_UnknownUser(t *testing.T) {
	svc, _, _, hasher, _ := newAuthFixture()

	if _, _, err := svc.Login(context.Background(), "ghost", "whatever-pass"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if hasher.calls() != 0 {
		t.Fatal("expected no password verification for unknown user")
	}
}

func TestLogin_WrongPassword_IncrementsCounter(t *testing.T) {
	svc, userRepo, _, _, _ := newAuthFixture(activeUser("user-1", "maria", "s3cret-pass"))

	if _, _, err := svc.Login(context.Background(), "maria", "wrong-pass"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}

	stored, _ := userRepo.GetByID(context.Background(), "user-1")
	if stored.FailedLoginCount != 1 {
		t.Fatalf("expected failure count 1, got %d", stored.FailedLoginCount)
	}
	if stored.LockoutUntil != nil {
		t.Fatal("expected no lockout below threshold")
	}
}

func TestLogin_FifthFailureLocksAccount(t *testing.T) {
	base := time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)
	svc, userRepo, _, _, events := newAuthFixture(activeUser("user-1", "maria", "s3cret-pass"))
	svc.WithClock(func() time.Time { return base })

	for i := 0; i < 5; i++ {
		if _, _, err := svc.Login(context.Background(), "maria", "wrong-pass"); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("attempt %d: expected ErrInvalidCredentials, got %v", i+1, err)
		}
	}

	stored, _ := userRepo.GetByID(context.Background(), "user-1")
	if stored.FailedLoginCount != 5 {
		t.Fatalf("expected failure count 5, got %d", stored.FailedLoginCount)
	}
	if stored.LockoutUntil == nil {
		t.Fatal("expected lockout to be set after fifth failure")
	}
	if want := base.Add(15 * time.Minute); !stored.LockoutUntil.Equal(want) {
		t.Fatalf("expected lockout until %v, got %v", want, *stored.LockoutUntil)
	}
	if len(events.accountLocked) != 1 {
		t.Fatalf("expected 1 account locked event, got %d", len(events.accountLocked))
	}
	if events.accountLocked[0].FailedCount != 5 {
		t.Fatalf("expected locked event count 5, got %d", events.accountLocked[0].FailedCount)
	}
}

func TestLogin_LockedAccountSkipsHasher(t *testing.T) {
	base := time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)
	lockedUntil := base.Add(10 * time.Minute)

	user := activeUser("user-1", "maria", "s3cret-pass")
	user.FailedLoginCount = 5
	user.LockoutUntil = &lockedUntil

	svc, _, _, hasher, _ := newAuthFixture(user)
	svc.WithClock(func() time.Time { return base })

	if _, _, err := svc.Login(context.Background(), "maria", "s3cret-pass"); !errors.Is(err, ErrAccountLocked) {
		t.Fatalf("expected ErrAccountLocked, got %v", err)
	}
	if hasher.calls() != 0 {
		t.Fatal("expected no password verification while locked")
	}
}

func TestLogin_LockoutExpiryAllowsLogin(t *testing.T) {
	base := time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)
	lockedUntil := base.Add(-time.Minute)

	user := activeUser("user-1", "maria", "s3cret-pass")
	user.FailedLoginCount = 5
	user.LockoutUntil = &lockedUntil

	svc, userRepo, _, _, _ := newAuthFixture(user)
	svc.WithClock(func() time.Time { return base })

	if _, _, err := svc.Login(context.Background(), "maria", "s3cret-pass"); err != nil {
		t.Fatalf("expected login after lockout expiry, got %v", err)
	}

	stored, _ := userRepo.GetByID(context.Background(), "user-1")
	if stored.FailedLoginCount != 0 {
		t.Fatalf("expected counters reset, got %d", stored.FailedLoginCount)
	}
	if stored.LockoutUntil != nil {
		t.Fatal("expected lockout cleared on success")
	}
}

func TestLogin_DisabledAccountSkipsHasher(t *testing.T) {
	user := activeUser("user-1", "maria", "s3cret-pass")
	user.Status = domain.UserStatusDisabled

	svc, _, _, hasher, _ := newAuthFixture(user)

	if _, _, err := svc.Login(context.Background(), "maria", "s3cret-pass"); !errors.Is(err, ErrAccountDisabled) {
		t.Fatalf("expected ErrAccountDisabled, got %v", err)
	}
	if hasher.calls() != 0 {
		t.Fatal("expected no password verification for disabled account")
	}
}

func TestLogin_LockedStatusSkipsHasher(t *testing.T) {
	user := activeUser("user-1", "maria", "s3cret-pass")
	user.Status = domain.UserStatusLocked

	svc, _, sessionRepo, hasher, _ := newAuthFixture(user)

	if _, _, err := svc.Login(context.Background(), "maria", "s3cret-pass"); !errors.Is(err, ErrAccountLocked) {
		t.Fatalf("expected ErrAccountLocked, got %v", err)
	}
	if hasher.calls() != 0 {
		t.Fatal("expected no password verification for a non-active account")
	}
	if sessionRepo.count() != 0 {
		t.Fatal("expected no session for a non-active account")
	}
}

func TestLogout_Idempotent(t *testing.T) {
	svc, _, sessionRepo, _, _ := newAuthFixture(activeUser("user-1", "maria", "s3cret-pass"))

	session, _, err := svc.Login(context.Background(), "maria", "s3cret-pass")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}

	if err := svc.Logout(context.Background(), session.ID); err != nil {
		t.Fatalf("first Logout returned error: %v", err)
	}
	if err := svc.Logout(context.Background(), session.ID); err != nil {
		t.Fatalf("second Logout returned error: %v", err)
	}
	if sessionRepo.count() != 0 {
		t.Fatalf("expected all sessions removed, got %d", sessionRepo.count())
	}
}

func TestValidateSession_Success(t *testing.T) {
	svc, _, _, _, _ := newAuthFixture(activeUser("user-1", "maria", "s3cret-pass"))

	session, _, err := svc.Login(context.Background(), "maria", "s3cret-pass")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}

	user, resolved, err := svc.ValidateSession(context.Background(), session.ID)
	if err != nil {
		t.Fatalf("ValidateSession returned error: %v", err)
	}
	if user.ID != "user-1" {
		t.Fatalf("expected user-1, got %s", user.ID)
	}
	if resolved.ID != session.ID {
		t.Fatalf("expected session %s, got %s", session.ID, resolved.ID)
	}
	if user.PasswordHash != "" {
		t.Fatal("expected password hash to be stripped")
	}
}

func TestValidateSession_ExpiredIsDeleted(t *testing.T) {
	base := time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)
	svc, _, sessionRepo, _, _ := newAuthFixture(activeUser("user-1", "maria", "s3cret-pass"))
	svc.WithClock(func() time.Time { return base })

	session, _, err := svc.Login(context.Background(), "maria", "s3cret-pass")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}

	svc.WithClock(func() time.Time { return base.Add(25 * time.Hour) })

	if _, _, err := svc.ValidateSession(context.Background(), session.ID); !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired, got %v", err)
	}
	if sessionRepo.count() != 0 {
		t.Fatal("expected expired session to be removed")
	}
}

func TestValidateSession_Unknown(t *testing.T) {
	svc, _, _, _, _ := newAuthFixture()

	if _, _, err := svc.ValidateSession(context.Background(), "no-such-session"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
	if _, _, err := svc.ValidateSession(context.Background(), ""); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound for empty id, got %v", err)
	}
}

func TestValidateSession_DisabledUserRejected(t *testing.T) {
	user := activeUser("user-1", "maria", "s3cret-pass")
	svc, userRepo, _, _, _ := newAuthFixture(user)

	session, _, err := svc.Login(context.Background(), "maria", "s3cret-pass")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}

	if err := userRepo.UpdateStatus(context.Background(), "user-1", domain.UserStatusDisabled); err != nil {
		t.Fatalf("UpdateStatus returned error: %v", err)
	}

	if _, _, err := svc.ValidateSession(context.Background(), session.ID); !errors.Is(err, ErrAccountDisabled) {
		t.Fatalf("expected ErrAccountDisabled, got %v", err)
	}
}
