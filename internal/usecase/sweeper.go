package usecase

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/csmathguy/clarity/internal/core/port"
)

// defaultSweepInterval backs misconfigured (zero or negative) intervals.
const defaultSweepInterval = 10 * time.Minute

// Sweeper periodically removes expired sessions and reset tokens. Expiry
// checks elsewhere are lazy; the sweeper only keeps the tables from growing.
type Sweeper struct {
	sessions port.SessionRepository
	tokens   port.ResetTokenRepository
	interval time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

// NewSweeper constructs a Sweeper instance.
func NewSweeper(
	sessions port.SessionRepository,
	tokens port.ResetTokenRepository,
	interval time.Duration,
	log *zap.Logger,
) *Sweeper {
	if interval <= 0 {
		log.Warn("sweep interval not positive, using default",
			zap.Duration("configured", interval),
			zap.Duration("default", defaultSweepInterval),
		)
		interval = defaultSweepInterval
	}
	return &Sweeper{
		sessions: sessions,
		tokens:   tokens,
		interval: interval,
		logger:   log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the time source. Intended for tests.
func (s *Sweeper) WithClock(now func() time.Time) *Sweeper {
	s.now = now
	return s
}

// Run blocks until the context is cancelled, sweeping on every tick.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("expiry sweeper started", zap.Duration("interval", s.interval))

	for {
		select {
		case <-ticker.C:
			s.SweepOnce(ctx)
		case <-ctx.Done():
			s.logger.Info("expiry sweeper stopped")
			return
		}
	}
}

// SweepOnce performs a single sweep pass. Failures are logged, not fatal; the
// next tick retries.
func (s *Sweeper) SweepOnce(ctx context.Context) {
	now := s.now()

	sessionsDeleted, err := s.sessions.DeleteExpired(ctx, now)
	if err != nil {
		s.logger.Warn("sweep expired sessions", zap.Error(err))
	}

	tokensDeleted, err := s.tokens.DeleteExpired(ctx, now)
	if err != nil {
		s.logger.Warn("sweep expired reset tokens", zap.Error(err))
	}

	if sessionsDeleted > 0 || tokensDeleted > 0 {
		s.logger.Info("expired records swept",
			zap.Int("sessions", sessionsDeleted),
			zap.Int("reset_tokens", tokensDeleted),
		)
	}
}
