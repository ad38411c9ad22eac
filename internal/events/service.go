// Package events records analytics events on a best-effort basis: each
// event gets a database row and a Pub/Sub publish, and neither failure
// ever surfaces to the caller.
package events

import (
	"context"
	"encoding/json"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/anafuentes/pressroute-backend/pkg/db/models"
	"github.com/anafuentes/pressroute-backend/pkg/enums"
	"github.com/anafuentes/pressroute-backend/pkg/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const publishTimeout = 5 * time.Second

// Repository persists event records.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, record *models.EventRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

type eventRepo interface {
	Create(ctx context.Context, record *models.EventRecord) error
}

type publisher interface {
	Publish(ctx context.Context, msg *gcppubsub.Message) *gcppubsub.PublishResult
}

// Service records events. Record never returns an error: failures are
// logged and swallowed so analytics can never break a request.
type Service interface {
	Record(ctx context.Context, eventType enums.EventType, actorUserID, companyID, subjectID *uuid.UUID, payload any)
}

type service struct {
	repo      eventRepo
	publisher publisher
	logg      *logger.Logger
	now       func() time.Time
}

// NewService builds the recorder. The publisher may be nil, in which
// case events land in the database only.
func NewService(repo eventRepo, pub publisher, logg *logger.Logger) Service {
	return &service{repo: repo, publisher: pub, logg: logg, now: time.Now}
}

func (s *service) Record(ctx context.Context, eventType enums.EventType, actorUserID, companyID, subjectID *uuid.UUID, payload any) {
	if !eventType.IsValid() {
		s.logg.Warn(s.logg.WithField(ctx, "event_type", string(eventType)), "dropping event with unknown type")
		return
	}

	body, err := json.Marshal(payload)
	if err != nil {
		s.logg.Error(ctx, "failed to marshal event payload", err)
		return
	}

	record := &models.EventRecord{
		ID:          uuid.New(),
		Type:        eventType,
		ActorUserID: actorUserID,
		CompanyID:   companyID,
		SubjectID:   subjectID,
		Payload:     body,
		OccurredAt:  s.now().UTC(),
	}
	if err := s.repo.Create(ctx, record); err != nil {
		s.logg.Error(s.logg.WithField(ctx, "event_type", string(eventType)), "failed to persist event", err)
	}

	s.publish(ctx, record)
}

func (s *service) publish(ctx context.Context, record *models.EventRecord) {
	if s.publisher == nil {
		return
	}

	envelope, err := json.Marshal(record)
	if err != nil {
		s.logg.Error(ctx, "failed to marshal event envelope", err)
		return
	}

	publishCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	result := s.publisher.Publish(publishCtx, &gcppubsub.Message{
		Data: envelope,
		Attributes: map[string]string{
			"event_id":    record.ID.String(),
			"event_type":  string(record.Type),
			"occurred_at": record.OccurredAt.Format(time.RFC3339Nano),
		},
	})
	if result == nil {
		return
	}
	if _, err := result.Get(publishCtx); err != nil {
		s.logg.Error(s.logg.WithField(ctx, "event_id", record.ID.String()), "failed to publish event", err)
	}
}
