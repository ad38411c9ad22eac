package locations

import (
	"time"

	"github.com/anafuentes/pressroute-backend/pkg/db/models"
	"github.com/google/uuid"
)

// LocationDTO is the API shape of a saved pickup address.
type LocationDTO struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	City      string    `json:"city"`
	State     string    `json:"state"`
	Zip       string    `json:"zip"`
	IsDefault bool      `json:"is_default"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateLocationDTO holds creation-time data.
type CreateLocationDTO struct {
	Name      string
	Address   string
	City      string
	State     string
	Zip       string
	IsDefault bool
}

func FromModel(m *models.Location) *LocationDTO {
	if m == nil {
		return nil
	}
	return &LocationDTO{
		ID:        m.ID,
		UserID:    m.UserID,
		Name:      m.Name,
		Address:   m.Address,
		City:      m.City,
		State:     m.State,
		Zip:       m.Zip,
		IsDefault: m.IsDefault,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func (c CreateLocationDTO) ToModel(userID uuid.UUID) *models.Location {
	return &models.Location{
		UserID:    userID,
		Name:      c.Name,
		Address:   c.Address,
		City:      c.City,
		State:     c.State,
		Zip:       c.Zip,
		IsDefault: c.IsDefault,
	}
}
