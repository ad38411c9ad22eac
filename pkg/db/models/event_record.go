package models

import (
	"encoding/json"
	"time"

	"github.com/anafuentes/pressroute-backend/pkg/enums"
	"github.com/google/uuid"
)

// EventRecord is an append-only analytics row. Writes are best effort:
// a copy of each record is also published to Pub/Sub, and the DB row is
// the source of truth when the publish fails.
type EventRecord struct {
	ID          uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Type        enums.EventType `gorm:"column:type;type:text;not null;index"`
	ActorUserID *uuid.UUID      `gorm:"column:actor_user_id;type:uuid;index"`
	CompanyID   *uuid.UUID      `gorm:"column:company_id;type:uuid;index"`
	SubjectID   *uuid.UUID      `gorm:"column:subject_id;type:uuid"`
	Payload     json.RawMessage `gorm:"column:payload;type:jsonb"`
	OccurredAt  time.Time       `gorm:"column:occurred_at;not null"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
}
