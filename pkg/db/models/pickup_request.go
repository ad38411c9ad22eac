package models

import (
	"time"

	"github.com/anafuentes/pressroute-backend/pkg/enums"
	"github.com/google/uuid"
)

// PickupRequest is a customer's scheduled pickup and dropoff along a
// company route. Dates are stored at local noon to keep the business
// date stable across timezone serialization.
type PickupRequest struct {
	ID          uuid.UUID          `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID      uuid.UUID          `gorm:"column:user_id;type:uuid;not null;index"`
	RouteID     uuid.UUID          `gorm:"column:route_id;type:uuid;not null;index"`
	CompanyID   uuid.UUID          `gorm:"column:company_id;type:uuid;not null;index"`
	LocationID  uuid.UUID          `gorm:"column:location_id;type:uuid;not null"`
	Status      enums.PickupStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	PickupDate  time.Time          `gorm:"column:pickup_date;not null"`
	DropoffDate time.Time          `gorm:"column:dropoff_date;not null"`
	Notes       *string            `gorm:"column:notes"`
	CreatedAt   time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
