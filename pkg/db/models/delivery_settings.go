package models

import (
	"time"

	"github.com/google/uuid"
)

// DeliverySettings is a singleton row of scheduling knobs, upserted by
// admins. Defaults apply until the first upsert.
type DeliverySettings struct {
	ID                uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	DefaultSLADays    int       `gorm:"column:default_sla_days;not null;default:2"`
	SearchHorizonDays int       `gorm:"column:search_horizon_days;not null;default:42"`
	MinLeadDays       int       `gorm:"column:min_lead_days;not null;default:1"`
	CreatedAt         time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
