package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fitlogapp/fitlog-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ResetTokenStore struct {
	db *gorm.DB
}

func NewResetTokenStore(db *gorm.DB) *ResetTokenStore {
	return &ResetTokenStore{db: db}
}

func (s *ResetTokenStore) Create(ctx context.Context, t *models.PasswordResetToken) error {
	if err := s.db.WithContext(ctx).Create(t).Error; err != nil {
		return fmt.Errorf("create password reset token: %w", err)
	}
	return nil
}

func (s *ResetTokenStore) FindByHash(ctx context.Context, hash string) (*models.PasswordResetToken, error) {
	var rec models.PasswordResetToken
	err := s.db.WithContext(ctx).Where("token_hash = ?", hash).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find password reset token: %w", err)
	}
	return &rec, nil
}

// Consume marks the record used, but only if it has not been used yet.
// The WHERE guard makes concurrent submissions race on a single row update.
func (s *ResetTokenStore) Consume(ctx context.Context, id uuid.UUID, at time.Time) (int64, error) {
	res := s.db.WithContext(ctx).
		Model(&models.PasswordResetToken{}).
		Where("id = ? AND used_at IS NULL", id).
		Update("used_at", at)
	if res.Error != nil {
		return 0, fmt.Errorf("consume password reset token: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (s *ResetTokenStore) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	res := s.db.WithContext(ctx).
		Where("expires_at < ? OR used_at IS NOT NULL", cutoff).
		Delete(&models.PasswordResetToken{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete spent password reset tokens: %w", res.Error)
	}
	return res.RowsAffected, nil
}
