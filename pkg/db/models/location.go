package models

import (
	"time"

	"github.com/google/uuid"
)

// Location is a saved pickup/dropoff address belonging to a customer.
type Location struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;index"`
	Name      string    `gorm:"type:text;not null"`
	Address   string    `gorm:"type:text;not null"`
	City      string    `gorm:"type:text;not null"`
	State     string    `gorm:"type:text;not null"`
	Zip       string    `gorm:"column:zip;type:text;not null;index"`
	IsDefault bool      `gorm:"column:is_default;not null;default:false"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
