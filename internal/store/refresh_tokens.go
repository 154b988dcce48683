// Package store provides the GORM/Postgres implementations of the
// persistence interfaces consumed by the services package. Conditional
// deletes and updates go through single SQL statements and report
// RowsAffected, which is what makes token consumption atomic.
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

type RefreshTokenStore struct {
	db *gorm.DB
}

func NewRefreshTokenStore(db *gorm.DB) *RefreshTokenStore {
	return &RefreshTokenStore{db: db}
}

func (s *RefreshTokenStore) Create(ctx context.Context, t *models.RefreshToken) error {
	if err := s.db.WithContext(ctx).Create(t).Error; err != nil {
		return fmt.Errorf("create refresh token: %w", err)
	}
	return nil
}

func (s *RefreshTokenStore) FindByHash(ctx context.Context, hash string) (*models.RefreshToken, error) {
	var rec models.RefreshToken
	err := s.db.WithContext(ctx).Where("token_hash = ?", hash).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find refresh token: %w", err)
	}
	return &rec, nil
}

func (s *RefreshTokenStore) FindByPreviousHash(ctx context.Context, hash string) (*models.RefreshToken, error) {
	var rec models.RefreshToken
	err := s.db.WithContext(ctx).Where("previous_hash = ?", hash).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find refresh token by previous hash: %w", err)
	}
	return &rec, nil
}

func (s *RefreshTokenStore) DeleteByHash(ctx context.Context, hash string) (int64, error) {
	res := s.db.WithContext(ctx).Where("token_hash = ?", hash).Delete(&models.RefreshToken{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete refresh token: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (s *RefreshTokenStore) DeleteAllForUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	res := s.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.RefreshToken{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete refresh tokens for user: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (s *RefreshTokenStore) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	res := s.db.WithContext(ctx).Where("expires_at < ?", cutoff).Delete(&models.RefreshToken{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete expired refresh tokens: %w", res.Error)
	}
	return res.RowsAffected, nil
}
