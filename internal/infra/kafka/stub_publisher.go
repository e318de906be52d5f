package kafka

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/csmathguy/clarity/internal/core/domain"
	"github.com/csmathguy/clarity/internal/core/port"
)

// StubPublisher logs events instead of sending them to Kafka. Useful for development environments.
type StubPublisher struct {
	logger *zap.Logger
}

// NewStubPublisher constructs a development-friendly event publisher.
func NewStubPublisher(logger *zap.Logger) *StubPublisher {
	return &StubPublisher{logger: logger}
}

func (p *StubPublisher) logEvent(eventType, userID string, at time.Time, payload any) {
	if at.IsZero() {
		at = time.Now().UTC()
	}

	p.logger.Info("Stub event published",
		zap.String("event_type", eventType),
		zap.String("user_id", userID),
		zap.Time("timestamp", at.UTC()),
		zap.Any("payload", payload),
	)
}

// PublishUserCreated logs auth.user.created events.
func (p *StubPublisher) PublishUserCreated(_ context.Context, event domain.UserCreatedEvent) error {
	payload := map[string]any{
		"user_id":    event.UserID,
		"username":   event.Username,
		"role":       event.Role,
		"created_by": event.CreatedBy,
		"created_at": event.CreatedAt,
	}
	p.logEvent("auth.user.created", event.UserID, event.CreatedAt, payload)
	return nil
}

// PublishLoginSucceeded logs auth.login.succeeded events.
func (p *StubPublisher) PublishLoginSucceeded(_ context.Context, event domain.LoginSucceededEvent) error {
	payload := map[string]any{
		"user_id":    event.UserID,
		"session_id": event.SessionID,
		"login_at":   event.LoginAt,
	}
	p.logEvent("auth.login.succeeded", event.UserID, event.LoginAt, payload)
	return nil
}

// PublishAccountLocked logs auth.account.locked events.
func (p *StubPublisher) PublishAccountLocked(_ context.Context, event domain.AccountLockedEvent) error {
	payload := map[string]any{
		"user_id":       event.UserID,
		"failed_count":  event.FailedCount,
		"locked_at":     event.LockedAt,
		"lockout_until": event.LockoutUntil,
	}
	p.logEvent("auth.account.locked", event.UserID, event.LockedAt, payload)
	return nil
}

// PublishPasswordChanged logs auth.password.changed events.
func (p *StubPublisher) PublishPasswordChanged(_ context.Context, event domain.PasswordChangedEvent) error {
	payload := map[string]any{
		"user_id":    event.UserID,
		"changed_at": event.ChangedAt,
		"token_id":   event.TokenID,
	}
	p.logEvent("auth.password.changed", event.UserID, event.ChangedAt, payload)
	return nil
}

// PublishResetRequested logs auth.password.reset_requested events.
func (p *StubPublisher) PublishResetRequested(_ context.Context, event domain.ResetRequestedEvent) error {
	payload := map[string]any{
		"user_id":      event.UserID,
		"token_id":     event.TokenID,
		"requested_by": event.RequestedBy,
		"requested_at": event.RequestedAt,
		"expires_at":   event.ExpiresAt,
	}
	p.logEvent("auth.password.reset_requested", event.UserID, event.RequestedAt, payload)
	return nil
}

var _ port.EventPublisher = (*StubPublisher)(nil)
