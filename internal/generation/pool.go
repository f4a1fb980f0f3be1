package generation

import (
	"context"
	"log/slog"
	"time"

	"github.com/TGalioAutomation/chrome-profiles-undetect-bot/internal/generation/domain"
)

// Pool holds a fixed set of browser sessions handed out exclusively, one
// holder at a time. The pool tracks availability only: it performs no
// health check, so a session released in a broken state will be offered
// to the next acquirer as-is.
type Pool struct {
	sessions chan domain.Resource
	size     int
	logger   *slog.Logger
}

// NewPool creates a pool over the given sessions. The pool size is fixed
// for the pool's lifetime.
func NewPool(sessions []domain.Resource, logger *slog.Logger) *Pool {
	if logger == nil {
		logger = slog.Default()
	}
	ch := make(chan domain.Resource, len(sessions))
	for _, s := range sessions {
		ch <- s
	}
	return &Pool{
		sessions: ch,
		size:     len(sessions),
		logger:   logger,
	}
}

// Size returns the fixed number of sessions managed by the pool.
func (p *Pool) Size() int {
	return p.size
}

// Acquire blocks until a session is free, the timeout elapses, or ctx is
// canceled. Expiry is reported as domain.ErrResourceUnavailable.
func (p *Pool) Acquire(ctx context.Context, timeout time.Duration) (domain.Resource, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case res := <-p.sessions:
		p.logger.Debug("Session acquired",
			slog.String("profile", res.ProfileName()),
			slog.Int("available", len(p.sessions)),
		)
		return res, nil

	case <-timer.C:
		p.logger.Warn("Session acquire timed out",
			slog.Duration("timeout", timeout),
		)
		return nil, domain.ErrResourceUnavailable

	case <-ctx.Done():
		return nil, domain.ErrResourceUnavailable
	}
}

// Release returns a session to the pool for the next waiter. Callers must
// release on every exit path, error paths included.
func (p *Pool) Release(res domain.Resource) {
	if res == nil {
		return
	}
	select {
	case p.sessions <- res:
		p.logger.Debug("Session released",
			slog.String("profile", res.ProfileName()),
			slog.Int("available", len(p.sessions)),
		)
	default:
		// Releasing a session the pool never issued would overflow the
		// fixed capacity; drop it rather than block the worker.
		p.logger.Error("Session released into a full pool, dropping",
			slog.String("profile", res.ProfileName()),
		)
	}
}
