package companies

import (
	"time"

	"github.com/anafuentes/pressroute-backend/pkg/db/models"
	"github.com/google/uuid"
)

// CompanyDTO is the API shape of a dry-cleaning company.
type CompanyDTO struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Description *string    `json:"description,omitempty"`
	ManagerID   *uuid.UUID `json:"manager_id,omitempty"`
	IsActive    bool       `json:"is_active"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// CreateCompanyDTO holds creation-time data.
type CreateCompanyDTO struct {
	Name        string
	Description *string
}

// CompanyListDTO is one page of companies.
type CompanyListDTO struct {
	Companies  []CompanyDTO `json:"companies"`
	NextCursor string       `json:"next_cursor,omitempty"`
}

func FromModel(m *models.Company) *CompanyDTO {
	if m == nil {
		return nil
	}
	return &CompanyDTO{
		ID:          m.ID,
		Name:        m.Name,
		Description: m.Description,
		ManagerID:   m.ManagerID,
		IsActive:    m.IsActive,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func (c CreateCompanyDTO) ToModel() *models.Company {
	return &models.Company{
		Name:        c.Name,
		Description: c.Description,
		IsActive:    true,
	}
}
