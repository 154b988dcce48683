package models

import (
	"time"

	"github.com/google/uuid"
)

// RefreshToken stores the digest of an opaque refresh credential. The raw
// value is never persisted. PreviousHash links a token to the one it
// superseded, which is what makes replayed-after-rotation tokens detectable.
type RefreshToken struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID       uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	TokenHash    string    `gorm:"uniqueIndex;not null;size:64" json:"-"`
	PreviousHash *string   `gorm:"index;size:64" json:"-"`
	ExpiresAt    time.Time `gorm:"not null;index" json:"expires_at"`
	CreatedAt    time.Time `json:"created_at"`
	User         User      `gorm:"foreignKey:UserID" json:"-"`
}
