package pricelists

import (
	"time"

	"github.com/anafuentes/pressroute-backend/pkg/db/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PricelistDTO is the API shape of a company pricelist.
type PricelistDTO struct {
	ID          uuid.UUID       `json:"id"`
	CompanyID   uuid.UUID       `json:"company_id"`
	Name        string          `json:"name"`
	SLADays     int             `json:"sla_days"`
	BasePrice   decimal.Decimal `json:"base_price"`
	PerBagPrice decimal.Decimal `json:"per_bag_price"`
	Active      bool            `json:"active"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// CreatePricelistDTO holds creation-time data.
type CreatePricelistDTO struct {
	CompanyID   uuid.UUID
	Name        string
	SLADays     int
	BasePrice   decimal.Decimal
	PerBagPrice decimal.Decimal
}

func FromModel(m *models.Pricelist) *PricelistDTO {
	if m == nil {
		return nil
	}
	return &PricelistDTO{
		ID:          m.ID,
		CompanyID:   m.CompanyID,
		Name:        m.Name,
		SLADays:     m.SLADays,
		BasePrice:   m.BasePrice,
		PerBagPrice: m.PerBagPrice,
		Active:      m.Active,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func (c CreatePricelistDTO) ToModel() *models.Pricelist {
	return &models.Pricelist{
		CompanyID:   c.CompanyID,
		Name:        c.Name,
		SLADays:     c.SLADays,
		BasePrice:   c.BasePrice,
		PerBagPrice: c.PerBagPrice,
		Active:      true,
	}
}
