package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Route is a recurring delivery lane. Weekdays uses time.Weekday
// numbering (0=Sunday); an empty set means every day is served.
// StartTime/EndTime are "HH:MM" strings describing the operating window.
type Route struct {
	ID          uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	CompanyID   uuid.UUID      `gorm:"column:company_id;type:uuid;not null;index"`
	Name        string         `gorm:"type:text;not null"`
	ZipCodes    pq.StringArray `gorm:"column:zip_codes;type:text[];not null"`
	Weekdays    pq.Int64Array  `gorm:"column:weekdays;type:integer[];not null"`
	StartTime   string         `gorm:"column:start_time;type:text;not null"`
	EndTime     string         `gorm:"column:end_time;type:text;not null"`
	PricelistID *uuid.UUID     `gorm:"column:pricelist_id;type:uuid"`
	Active      bool           `gorm:"column:active;not null;default:true"`
	CreatedAt   time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

// ServedWeekdays converts the stored array to time.Weekday values.
func (r *Route) ServedWeekdays() []time.Weekday {
	out := make([]time.Weekday, 0, len(r.Weekdays))
	for _, d := range r.Weekdays {
		out = append(out, time.Weekday(d))
	}
	return out
}

// CoversZip reports whether the route serves the given zip code.
func (r *Route) CoversZip(zip string) bool {
	for _, z := range r.ZipCodes {
		if z == zip {
			return true
		}
	}
	return false
}
