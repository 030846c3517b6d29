// Package sweeper runs the periodic session expiry sweep. The sweep is
// advisory cleanup only; validity is re-checked at every use.
package sweeper

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/storynest/gateway/internal/repository"
)

// DefaultInterval is how often the sweep runs.
const DefaultInterval = 15 * time.Minute

// Sweeper bulk-deactivates sessions past their expiry.
type Sweeper struct {
	sessions repository.SessionRepository
	interval time.Duration
	logger   *zap.Logger
}

func New(sessions repository.SessionRepository, interval time.Duration, logger *zap.Logger) *Sweeper {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Sweeper{sessions: sessions, interval: interval, logger: logger.Named("sweeper")}
}

// Run sweeps on the configured interval until ctx is done. One sweep runs
// immediately on start so a restart does not postpone cleanup.
func (s *Sweeper) Run(ctx context.Context) {
	s.sweep(ctx)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	n, err := s.sessions.DeactivateExpired(ctx, time.Now())
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		s.logger.Warn("session sweep failed", zap.Error(err))
		return
	}
	if n > 0 {
		s.logger.Info("deactivated expired sessions", zap.Int("count", n))
	}
}
