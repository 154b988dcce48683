package services

import (
	"context"
	"time"

	"github.com/fitlogapp/fitlog-backend/internal/models"
	"github.com/google/uuid"
)

// TokenStore is the refresh-token persistence contract. Lookups return
// (nil, nil) when no record matches. DeleteByHash must be atomic under
// concurrency: of N concurrent calls for the same hash, exactly one
// observes a non-zero count.
type TokenStore interface {
	Create(ctx context.Context, t *models.RefreshToken) error
	FindByHash(ctx context.Context, hash string) (*models.RefreshToken, error)
	FindByPreviousHash(ctx context.Context, hash string) (*models.RefreshToken, error)
	DeleteByHash(ctx context.Context, hash string) (int64, error)
	DeleteAllForUser(ctx context.Context, userID uuid.UUID) (int64, error)
	DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error)
}

// ResetStore persists password-reset tokens. Consume sets used_at only on a
// record where it is still null and reports how many rows changed, so a
// reset token is honored at most once even under concurrent submissions.
type ResetStore interface {
	Create(ctx context.Context, t *models.PasswordResetToken) error
	FindByHash(ctx context.Context, hash string) (*models.PasswordResetToken, error)
	Consume(ctx context.Context, id uuid.UUID, at time.Time) (int64, error)
	DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error)
}

type UserStore interface {
	Create(ctx context.Context, u *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	UpdatePasswordHash(ctx context.Context, id uuid.UUID, passwordHash string) error
}

// Notifier delivers a password-reset link out-of-band. Delivery is
// fire-and-forget from the service's view: failures are logged, never
// surfaced to the requester.
type Notifier interface {
	Send(ctx context.Context, address, resetLink string) error
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(ctx context.Context, address, resetLink string) error

func (f NotifierFunc) Send(ctx context.Context, address, resetLink string) error {
	return f(ctx, address, resetLink)
}
