package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/fitlogapp/fitlog-backend/internal/config"
	"github.com/fitlogapp/fitlog-backend/internal/models"
	"github.com/fitlogapp/fitlog-backend/internal/token"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// PasswordResetService issues and consumes single-use, short-TTL reset
// tokens. The same hashing discipline as refresh tokens applies, without a
// rotation chain.
type PasswordResetService struct {
	users    UserStore
	resets   ResetStore
	tokens   *TokenService
	notifier Notifier
	baseURL  string
	ttl      time.Duration
	now      func() time.Time
}

func NewPasswordResetService(
	users UserStore,
	resets ResetStore,
	tokens *TokenService,
	notifier Notifier,
	cfg *config.Config,
) *PasswordResetService {
	return &PasswordResetService{
		users:    users,
		resets:   resets,
		tokens:   tokens,
		notifier: notifier,
		baseURL:  cfg.AppBaseURL,
		ttl:      cfg.ResetTokenTTL,
		now:      time.Now,
	}
}

// RequestReset starts the reset flow. The outcome is identical for
// registered and unregistered addresses; for unregistered ones no record is
// created and nothing is sent. The raw token appears only in the
// notification channel.
func (s *PasswordResetService) RequestReset(ctx context.Context, email string) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		slog.Error("password reset user lookup failed", "error", err)
		return
	}
	if user == nil {
		return
	}

	raw, err := token.NewOpaque()
	if err != nil {
		slog.Error("failed to generate password reset token", "error", err)
		return
	}

	record := &models.PasswordResetToken{
		ID:        uuid.New(),
		UserID:    user.ID,
		TokenHash: token.Hash(raw),
		ExpiresAt: s.now().Add(s.ttl),
	}
	if err := s.resets.Create(ctx, record); err != nil {
		slog.Error("failed to store password reset token", "error", err)
		return
	}

	resetLink := s.baseURL + "/reset-password?token=" + raw
	address := user.Email
	go func() {
		sendCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.notifier.Send(sendCtx, address, resetLink); err != nil {
			slog.Warn("password reset notification failed", "error", err)
		}
	}()
}

// CompleteReset consumes a reset token, updates the credential, and revokes
// every refresh token for the user, since the authentication secret changed.
func (s *PasswordResetService) CompleteReset(ctx context.Context, raw, newPassword string) error {
	if len(newPassword) < 8 {
		return ErrWeakPassword
	}

	rec, err := s.resets.FindByHash(ctx, token.Hash(raw))
	if err != nil {
		slog.Error("password reset token lookup failed", "error", err)
		return ErrStoreUnavailable
	}
	if rec == nil || rec.UsedAt != nil || s.now().After(rec.ExpiresAt) {
		return ErrInvalidToken
	}

	// Conditional update: only the first concurrent submission flips used_at.
	consumed, err := s.resets.Consume(ctx, rec.ID, s.now())
	if err != nil {
		slog.Error("failed to consume password reset token", "error", err)
		return ErrStoreUnavailable
	}
	if consumed == 0 {
		return ErrInvalidToken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.users.UpdatePasswordHash(ctx, rec.UserID, string(hash)); err != nil {
		slog.Error("failed to update password hash", "error", err, "user_id", rec.UserID.String())
		return ErrStoreUnavailable
	}

	return s.tokens.RevokeAll(ctx, rec.UserID)
}
