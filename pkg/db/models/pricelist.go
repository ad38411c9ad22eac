package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Pricelist carries a company's pricing and the SLA day count that
// drives dropoff scheduling for routes pointing at it.
type Pricelist struct {
	ID          uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	CompanyID   uuid.UUID       `gorm:"column:company_id;type:uuid;not null;index"`
	Name        string          `gorm:"type:text;not null"`
	SLADays     int             `gorm:"column:sla_days;not null;default:2"`
	BasePrice   decimal.Decimal `gorm:"column:base_price;type:numeric(10,2);not null"`
	PerBagPrice decimal.Decimal `gorm:"column:per_bag_price;type:numeric(10,2);not null"`
	Active      bool            `gorm:"column:active;not null;default:true"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
