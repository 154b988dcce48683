package services

import (
	"context"
	"log/slog"
	"time"
)

// Sweeper deletes expired refresh and password-reset records. It is hygiene,
// not a correctness requirement: Rotate's own expiry check already rejects
// stale records, so sweep failures are logged and retried next interval.
type Sweeper struct {
	tokens   TokenStore
	resets   ResetStore
	interval time.Duration
}

func NewSweeper(tokens TokenStore, resets ResetStore, interval time.Duration) *Sweeper {
	return &Sweeper{tokens: tokens, resets: resets, interval: interval}
}

// Start sweeps once immediately, then on every interval tick until done is
// closed. The sweep runs on its own timer and takes no locks that block
// issuance or rotation.
func (s *Sweeper) Start(done chan struct{}) {
	go func() {
		s.Sweep()
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.Sweep()
			case <-done:
				return
			}
		}
	}()
}

func (s *Sweeper) Sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	now := time.Now()
	if n, err := s.tokens.DeleteExpired(ctx, now); err != nil {
		slog.Warn("refresh token sweep failed", "error", err)
	} else if n > 0 {
		slog.Info("expired refresh tokens swept", "deleted", n)
	}

	if n, err := s.resets.DeleteExpired(ctx, now); err != nil {
		slog.Warn("password reset token sweep failed", "error", err)
	} else if n > 0 {
		slog.Info("spent password reset tokens swept", "deleted", n)
	}
}
