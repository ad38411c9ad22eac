package models

import (
	"time"

	"github.com/google/uuid"
)

// EmailOTP stores a hashed one-time sign-in code. Codes are sha256
// hashed at rest and invalidated on first successful check or when
// Attempts reaches the configured maximum.
type EmailOTP struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Email      string     `gorm:"type:text;not null;index"`
	CodeHash   string     `gorm:"column:code_hash;not null"`
	Attempts   int        `gorm:"column:attempts;not null;default:0"`
	ConsumedAt *time.Time `gorm:"column:consumed_at"`
	ExpiresAt  time.Time  `gorm:"column:expires_at;not null"`
	CreatedAt  time.Time  `gorm:"column:created_at;autoCreateTime"`
}
