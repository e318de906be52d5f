package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/csmathguy/clarity/internal/core/domain"
	"github.com/csmathguy/clarity/internal/repository"
)

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

func newFakeUserRepo(users ...domain.User) *fakeUserRepo {
	repo := &fakeUserRepo{users: make(map[string]*domain.User)}
	for i := range users {
		u := users[i]
		repo.users[u.ID] = &u
	}
	return repo
}

func (m *fakeUserRepo) Create(_ context.Context, user domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Username == user.Username {
			return repository.ErrDuplicate
		}
	}
	u := user
	m.users[user.ID] = &u
	return nil
}

func (m *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if user, ok := m.users[id]; ok {
		u := *user
		return &u, nil
	}
	return nil, repository.ErrNotFound
}

func (m *fakeUserRepo) GetByIdentifier(_ context.Context, identifier string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.users {
		if user.Username == identifier || (user.Email != nil && *user.Email == identifier) {
			u := *user
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *fakeUserRepo) UpdateStatus(_ context.Context, id string, status domain.UserStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	user.Status = status
	return nil
}

func (m *fakeUserRepo) UpdatePassword(_ context.Context, id string, passwordHash string, changedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	user.PasswordHash = passwordHash
	user.PasswordChangedAt = &changedAt
	user.FailedLoginCount = 0
	user.LockoutUntil = nil
	return nil
}

func (m *fakeUserRepo) RecordLoginFailure(_ context.Context, id string, threshold int, lockoutUntil time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
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

func (m *fakeUserRepo) RecordLoginSuccess(_ context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	user.FailedLoginCount = 0
	user.LockoutUntil = nil
	stamp := at
	user.LastLoginAt = &stamp
	return nil
}

type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]domain.Session
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[string]domain.Session)}
}

func (m *fakeSessionRepo) Create(_ context.Context, session domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.sessions[session.ID]; exists {
		return repository.ErrDuplicate
	}
	m.sessions[session.ID] = session
	return nil
}

func (m *fakeSessionRepo) GetByID(_ context.Context, sessionID string) (*domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if session, ok := m.sessions[sessionID]; ok {
		s := session
		return &s, nil
	}
	return nil, repository.ErrNotFound
}

func (m *fakeSessionRepo) Delete(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sessionID)
	return nil
}

func (m *fakeSessionRepo) DeleteAllForUser(_ context.Context, userID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	deleted := 0
	for id, session := range m.sessions {
		if session.UserID == userID {
			delete(m.sessions, id)
			deleted++
		}
	}
	return deleted, nil
}

func (m *fakeSessionRepo) DeleteExpired(_ context.Context, before time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	deleted := 0
	for id, session := range m.sessions {
		if !session.ExpiresAt.After(before) {
			delete(m.sessions, id)
			deleted++
		}
	}
	return deleted, nil
}

func (m *fakeSessionRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

type fakeTokenRepo struct {
	mu     sync.Mutex
	tokens map[string]*domain.PasswordResetToken
}

func newFakeTokenRepo() *fakeTokenRepo {
	return &fakeTokenRepo{tokens: make(map[string]*domain.PasswordResetToken)}
}

func (m *fakeTokenRepo) Create(_ context.Context, token domain.PasswordResetToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := token
	m.tokens[token.ID] = &t
	return nil
}

func (m *fakeTokenRepo) GetByHash(_ context.Context, hash string) (*domain.PasswordResetToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, token := range m.tokens {
		if token.TokenHash == hash {
			t := *token
			return &t, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *fakeTokenRepo) MarkUsed(_ context.Context, id string, usedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	token, ok := m.tokens[id]
	if !ok || token.UsedAt != nil {
		return repository.ErrNotFound
	}
	stamp := usedAt
	token.UsedAt = &stamp
	return nil
}

func (m *fakeTokenRepo) DeleteExpired(_ context.Context, before time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	deleted := 0
	for id, token := range m.tokens {
		if !token.ExpiresAt.After(before) {
			delete(m.tokens, id)
			deleted++
		}
	}
	return deleted, nil
}

// fakeHasher marks hashes as "hashed:<password>" and counts Verify calls so
// tests can assert that short-circuit paths never reach password checking.
type fakeHasher struct {
	mu          sync.Mutex
	verifyCalls int
}

func (m *fakeHasher) Hash(password string) (string, error) {
	return "hashed:" + password, nil
}

func (m *fakeHasher) Verify(password, encoded string) bool {
	m.mu.Lock()
	m.verifyCalls++
	m.mu.Unlock()
	return encoded == "hashed:"+password
}

func (m *fakeHasher) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.verifyCalls
}

type fakeEventPublisher struct {
	mu             sync.Mutex
	userCreated    []domain.UserCreatedEvent
	loginSucceeded []domain.LoginSucceededEvent
	accountLocked  []domain.AccountLockedEvent
	passwordReset  []domain.PasswordChangedEvent
	resetRequested []domain.ResetRequestedEvent
}

func (m *fakeEventPublisher) PublishUserCreated(_ context.Context, event domain.UserCreatedEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.userCreated = append(m.userCreated, event)
	return nil
}

func (m *fakeEventPublisher) PublishLoginSucceeded(_ context.Context, event domain.LoginSucceededEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loginSucceeded = append(m.loginSucceeded, event)
	return nil
}

func (m *fakeEventPublisher) PublishAccountLocked(_ context.Context, event domain.AccountLockedEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accountLocked = append(m.accountLocked, event)
	return nil
}

func (m *fakeEventPublisher) PublishPasswordChanged(_ context.Context, event domain.PasswordChangedEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.passwordReset = append(m.passwordReset, event)
	return nil
}

func (m *fakeEventPublisher) PublishResetRequested(_ context.Context, event domain.ResetRequestedEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resetRequested = append(m.resetRequested, event)
	return nil
}
