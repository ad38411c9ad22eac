package routes

import (
	"time"

	"github.com/anafuentes/pressroute-backend/pkg/db/models"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// RouteDTO is the API shape of a recurring delivery lane.
type RouteDTO struct {
	ID          uuid.UUID  `json:"id"`
	CompanyID   uuid.UUID  `json:"company_id"`
	Name        string     `json:"name"`
	ZipCodes    []string   `json:"zip_codes"`
	Weekdays    []int      `json:"weekdays"`
	StartTime   string     `json:"start_time"`
	EndTime     string     `json:"end_time"`
	PricelistID *uuid.UUID `json:"pricelist_id,omitempty"`
	Active      bool       `json:"active"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// CreateRouteDTO holds creation-time data.
type CreateRouteDTO struct {
	CompanyID   uuid.UUID
	Name        string
	ZipCodes    []string
	Weekdays    []int
	StartTime   string
	EndTime     string
	PricelistID *uuid.UUID
}

// WindowDTO is a resolved pickup/dropoff pair for a route.
type WindowDTO struct {
	PickupDate  time.Time `json:"pickup_date"`
	DropoffDate time.Time `json:"dropoff_date"`
	SLADays     int       `json:"sla_days"`
}

func FromModel(m *models.Route) *RouteDTO {
	if m == nil {
		return nil
	}
	weekdays := make([]int, 0, len(m.Weekdays))
	for _, d := range m.Weekdays {
		weekdays = append(weekdays, int(d))
	}
	return &RouteDTO{
		ID:          m.ID,
		CompanyID:   m.CompanyID,
		Name:        m.Name,
		ZipCodes:    []string(m.ZipCodes),
		Weekdays:    weekdays,
		StartTime:   m.StartTime,
		EndTime:     m.EndTime,
		PricelistID: m.PricelistID,
		Active:      m.Active,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func (c CreateRouteDTO) ToModel() *models.Route {
	weekdays := make(pq.Int64Array, 0, len(c.Weekdays))
	for _, d := range c.Weekdays {
		weekdays = append(weekdays, int64(d))
	}
	return &models.Route{
		CompanyID:   c.CompanyID,
		Name:        c.Name,
		ZipCodes:    pq.StringArray(c.ZipCodes),
		Weekdays:    weekdays,
		StartTime:   c.StartTime,
		EndTime:     c.EndTime,
		PricelistID: c.PricelistID,
		Active:      true,
	}
}
