package models

import (
	"time"

	"github.com/google/uuid"
)

// Company is a dry-cleaning operator that owns routes and pricelists.
// Customers and managers hang off it through users.company_id.
type Company struct {
	ID          uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name        string     `gorm:"type:text;not null;uniqueIndex"`
	Description *string    `gorm:"column:description"`
	ManagerID   *uuid.UUID `gorm:"column:manager_id;type:uuid"`
	IsActive    bool       `gorm:"column:is_active;not null;default:true"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
