package handlers_test

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/csmathguy/clarity/internal/core/domain"
	"github.com/csmathguy/clarity/internal/infra/config"
	"github.com/csmathguy/clarity/internal/repository"
	"github.com/csmathguy/clarity/internal/usecase"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testAuthSettings() config.AuthSettings {
	return config.AuthSettings{
		SessionTTL:       24 * time.Hour,
		ResetTokenTTL:    time.Hour,
		LockoutThreshold: 5,
		LockoutDuration:  15 * time.Minute,
	}
}

type memUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

func newMemUserRepo(users ...domain.User) *memUserRepo {
	repo := &memUserRepo{users: make(map[string]*domain.User)}
	for i := range users {
		u := users[i]
		repo.users[u.ID] = &u
	}
	return repo
}

func (r *memUserRepo) Create(_ context.Context, user domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Username == user.Username {
			return repository.ErrDuplicate
		}
	}
	r.users[user.ID] = &user
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (r *memUserRepo) GetByIdentifier(_ context.Context, identifier string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Username == identifier || (user.Email != nil && *user.Email == identifier) {
			copied := *user
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memUserRepo) UpdateStatus(_ context.Context, id string, status domain.UserStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	user.Status = status
	return nil
}

func (r *memUserRepo) UpdatePassword(_ context.Context, id string, passwordHash string, changedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	user.PasswordHash = passwordHash
	user.PasswordChangedAt = &changedAt
	user.FailedLoginCount = 0
	user.LockoutUntil = nil
	return nil
}

func (r *memUserRepo) RecordLoginFailure(_ context.Context, id string, threshold int, lockoutUntil time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return 0, repository.ErrNotFound
	}
	user.FailedLoginCount++
	if user.FailedLoginCount >= threshold {
		until := lockoutUntil
		user.LockoutUntil = &until
	}
	return user.FailedLoginCount, nil
}

func (r *memUserRepo) RecordLoginSuccess(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	user.FailedLoginCount = 0
	user.LockoutUntil = nil
	last := at
	user.LastLoginAt = &last
	return nil
}

type memSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]domain.Session
}

func newMemSessionRepo() *memSessionRepo {
	return &memSessionRepo{sessions: make(map[string]domain.Session)}
}

func (r *memSessionRepo) Create(_ context.Context, session domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[session.ID] = session
	return nil
}

func (r *memSessionRepo) GetByID(_ context.Context, sessionID string) (*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[sessionID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &session, nil
}

func (r *memSessionRepo) Delete(_ context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, sessionID)
	return nil
}

func (r *memSessionRepo) DeleteAllForUser(_ context.Context, userID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for id, session := range r.sessions {
		if session.UserID == userID {
			delete(r.sessions, id)
			removed++
		}
	}
	return removed, nil
}

func (r *memSessionRepo) DeleteExpired(_ context.Context, before time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for id, session := range r.sessions {
		if !session.ExpiresAt.After(before) {
			delete(r.sessions, id)
			removed++
		}
	}
	return removed, nil
}

func (r *memSessionRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

type memTokenRepo struct {
	mu     sync.Mutex
	tokens map[string]domain.PasswordResetToken
}

func newMemTokenRepo() *memTokenRepo {
	return &memTokenRepo{tokens: make(map[string]domain.PasswordResetToken)}
}

func (r *memTokenRepo) Create(_ context.Context, token domain.PasswordResetToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens[token.ID] = token
	return nil
}

func (r *memTokenRepo) GetByHash(_ context.Context, hash string) (*domain.PasswordResetToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, token := range r.tokens {
		if token.TokenHash == hash {
			copied := token
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memTokenRepo) MarkUsed(_ context.Context, id string, usedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	token, ok := r.tokens[id]
	if !ok || token.UsedAt != nil {
		return repository.ErrNotFound
	}
	stamp := usedAt
	token.UsedAt = &stamp
	r.tokens[id] = token
	return nil
}

func (r *memTokenRepo) DeleteExpired(_ context.Context, before time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for id, token := range r.tokens {
		if !token.ExpiresAt.After(before) {
			delete(r.tokens, id)
			removed++
		}
	}
	return removed, nil
}

// plainHasher avoids argon2 cost in handler tests.
type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) {
	return "hashed:" + password, nil
}

func (plainHasher) Verify(password, encoded string) bool {
	return strings.TrimPrefix(encoded, "hashed:") == password && strings.HasPrefix(encoded, "hashed:")
}

type nopEvents struct{}

func (nopEvents) PublishUserCreated(context.Context, domain.UserCreatedEvent) error       { return nil }
func (nopEvents) PublishLoginSucceeded(context.Context, domain.LoginSucceededEvent) error { return nil }
func (nopEvents) PublishAccountLocked(context.Context, domain.AccountLockedEvent) error   { return nil }
func (nopEvents) PublishPasswordChanged(context.Context, domain.PasswordChangedEvent) error {
	return nil
}
func (nopEvents) PublishResetRequested(context.Context, domain.ResetRequestedEvent) error { return nil }

type handlerFixture struct {
	users    *memUserRepo
	sessions *memSessionRepo
	tokens   *memTokenRepo
	auth     *usecase.AuthService
	resets   *usecase.PasswordResetService
	accounts *usecase.UserService
}

func newHandlerFixture(users ...domain.User) *handlerFixture {
	userRepo := newMemUserRepo(users...)
	sessionRepo := newMemSessionRepo()
	tokenRepo := newMemTokenRepo()
	log := zap.NewNop()
	cfg := testAuthSettings()

	auth := usecase.NewAuthService(cfg, userRepo, sessionRepo, plainHasher{}, nopEvents{}, log)
	resets := usecase.NewPasswordResetService(cfg, userRepo, tokenRepo, sessionRepo, plainHasher{}, nopEvents{}, log)
	accounts := usecase.NewUserService(userRepo, sessionRepo, resets, nopEvents{}, log)

	return &handlerFixture{
		users:    userRepo,
		sessions: sessionRepo,
		tokens:   tokenRepo,
		auth:     auth,
		resets:   resets,
		accounts: accounts,
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
