package pickups

import (
	"time"

	"github.com/anafuentes/pressroute-backend/pkg/db/models"
	"github.com/anafuentes/pressroute-backend/pkg/enums"
	"github.com/google/uuid"
)

// PickupDTO is the API shape of a pickup request.
type PickupDTO struct {
	ID          uuid.UUID          `json:"id"`
	UserID      uuid.UUID          `json:"user_id"`
	RouteID     uuid.UUID          `json:"route_id"`
	CompanyID   uuid.UUID          `json:"company_id"`
	LocationID  uuid.UUID          `json:"location_id"`
	Status      enums.PickupStatus `json:"status"`
	PickupDate  time.Time          `json:"pickup_date"`
	DropoffDate time.Time          `json:"dropoff_date"`
	Notes       *string            `json:"notes,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

// CreatePickupDTO holds creation-time data from a customer.
type CreatePickupDTO struct {
	RouteID        uuid.UUID
	LocationID     uuid.UUID
	PickupDate     time.Time
	DropoffDate    time.Time
	DropoffTouched bool
	Notes          *string
}

// PickupListDTO is one page of pickup requests.
type PickupListDTO struct {
	Pickups    []PickupDTO `json:"pickups"`
	NextCursor string      `json:"next_cursor,omitempty"`
}

// BulkStatusResultDTO reports a transactional bulk transition.
type BulkStatusResultDTO struct {
	Updated int                `json:"updated"`
	Status  enums.PickupStatus `json:"status"`
}

func FromModel(m *models.PickupRequest) *PickupDTO {
	if m == nil {
		return nil
	}
	return &PickupDTO{
		ID:          m.ID,
		UserID:      m.UserID,
		RouteID:     m.RouteID,
		CompanyID:   m.CompanyID,
		LocationID:  m.LocationID,
		Status:      m.Status,
		PickupDate:  m.PickupDate,
		DropoffDate: m.DropoffDate,
		Notes:       m.Notes,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}
