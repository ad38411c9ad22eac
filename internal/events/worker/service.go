// Package worker streams recorded pickup events from Pub/Sub into
// BigQuery. Messages carry a JSON-encoded event record; delivery is at
// least once, so a Redis mark keeps replays from producing duplicate
// rows.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/bigquery"
	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/anafuentes/pressroute-backend/pkg/db/models"
	"github.com/anafuentes/pressroute-backend/pkg/enums"
	"github.com/anafuentes/pressroute-backend/pkg/logger"
	"github.com/anafuentes/pressroute-backend/pkg/metrics"
	"github.com/google/uuid"
)

const (
	consumerName = "pickup-events"

	// processedTTL bounds how long a delivered event id is remembered.
	// Pub/Sub redelivery windows are measured in days, not weeks.
	processedTTL = 7 * 24 * time.Hour
)

// PickupEventRow is the BigQuery shape of a recorded event.
type PickupEventRow struct {
	EventID     string            `bigquery:"event_id"`
	EventType   string            `bigquery:"event_type"`
	ActorUserID *string           `bigquery:"actor_user_id"`
	CompanyID   *string           `bigquery:"company_id"`
	SubjectID   *string           `bigquery:"subject_id"`
	Payload     bigquery.NullJSON `bigquery:"payload"`
	OccurredAt  time.Time         `bigquery:"occurred_at"`
	IngestedAt  time.Time         `bigquery:"ingested_at"`
}

type rowSink interface {
	InsertRows(ctx context.Context, table string, rows []any) error
}

type dedupeStore interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Del(ctx context.Context, keys ...string) error
	IdempotencyKey(scope, id string) string
}

// Service consumes event messages and writes one BigQuery row per event.
type Service struct {
	subscription *gcppubsub.Subscriber
	sink         rowSink
	store        dedupeStore
	table        string
	consumer     *metrics.ConsumerMetrics
	logg         *logger.Logger
	now          func() time.Time
}

// NewService wires the consumer. The metrics recorder may be nil.
func NewService(subscription *gcppubsub.Subscriber, sink rowSink, store dedupeStore, table string, consumer *metrics.ConsumerMetrics, logg *logger.Logger) (*Service, error) {
	if subscription == nil {
		return nil, errors.New("events subscription is required")
	}
	if sink == nil {
		return nil, errors.New("bigquery sink is required")
	}
	if store == nil {
		return nil, errors.New("dedupe store is required")
	}
	if strings.TrimSpace(table) == "" {
		return nil, errors.New("events table is required")
	}
	if logg == nil {
		return nil, errors.New("logger is required")
	}

	return &Service{
		subscription: subscription,
		sink:         sink,
		store:        store,
		table:        strings.TrimSpace(table),
		consumer:     consumer,
		logg:         logg,
		now:          time.Now,
	}, nil
}

type processResult struct {
	nack bool
}

// Run consumes event messages until the context is canceled.
func (s *Service) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	return s.subscription.Receive(ctx, func(innerCtx context.Context, msg *gcppubsub.Message) {
		if s.process(innerCtx, msg).nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

func (s *Service) process(ctx context.Context, msg *gcppubsub.Message) processResult {
	started := s.now()
	defer func() {
		s.consumer.ObserveDuration(consumerName, s.now().Sub(started))
	}()

	logCtx := s.logg.WithField(ctx, "message_id", msg.ID)

	record, err := s.buildRecord(msg)
	if err != nil {
		s.logg.Warn(s.logg.WithField(logCtx, "error", err.Error()), "dropping malformed event message")
		return processResult{}
	}
	logCtx = s.logg.WithFields(logCtx, map[string]any{
		"event_id":    record.ID.String(),
		"event_type":  string(record.Type),
		"occurred_at": record.OccurredAt.Format(time.RFC3339Nano),
	})

	key := s.store.IdempotencyKey(consumerName, record.ID.String())
	fresh, err := s.store.SetNX(logCtx, key, "1", processedTTL)
	if err != nil {
		s.logg.Error(logCtx, "dedupe check failed", err)
		s.consumer.IncFailure(consumerName)
		return processResult{nack: true}
	}
	if !fresh {
		s.logg.Info(logCtx, "event already ingested")
		return processResult{}
	}

	if err := s.sink.InsertRows(logCtx, s.table, []any{s.buildRow(record)}); err != nil {
		s.logg.Error(logCtx, "bigquery insert failed", err)
		// Release the mark so the redelivered message gets another try.
		_ = s.store.Del(logCtx, key)
		s.consumer.IncFailure(consumerName)
		return processResult{nack: true}
	}

	s.consumer.IncSuccess(consumerName)
	s.logg.Info(logCtx, "event ingested")
	return processResult{}
}

// buildRecord decodes the message body, falling back to the publish
// attributes for fields an older producer may have left out of the body.
func (s *Service) buildRecord(msg *gcppubsub.Message) (*models.EventRecord, error) {
	var record models.EventRecord
	if err := json.Unmarshal(msg.Data, &record); err != nil {
		return nil, fmt.Errorf("decode event record: %w", err)
	}

	if record.ID == uuid.Nil {
		raw := strings.TrimSpace(msg.Attributes["event_id"])
		parsed, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("event_id: %w", err)
		}
		record.ID = parsed
	}

	if record.Type == "" {
		record.Type = enums.EventType(strings.TrimSpace(msg.Attributes["event_type"]))
	}
	if !record.Type.IsValid() {
		return nil, fmt.Errorf("unknown event type %q", string(record.Type))
	}

	if record.OccurredAt.IsZero() {
		if raw := strings.TrimSpace(msg.Attributes["occurred_at"]); raw != "" {
			if parsed, err := time.Parse(time.RFC3339Nano, raw); err == nil {
				record.OccurredAt = parsed
			}
		}
	}
	if record.OccurredAt.IsZero() {
		return nil, errors.New("occurred_at missing")
	}

	record.OccurredAt = record.OccurredAt.UTC()
	return &record, nil
}

func (s *Service) buildRow(record *models.EventRecord) PickupEventRow {
	row := PickupEventRow{
		EventID:    record.ID.String(),
		EventType:  string(record.Type),
		OccurredAt: record.OccurredAt,
		IngestedAt: s.now().UTC(),
	}
	if record.ActorUserID != nil {
		value := record.ActorUserID.String()
		row.ActorUserID = &value
	}
	if record.CompanyID != nil {
		value := record.CompanyID.String()
		row.CompanyID = &value
	}
	if record.SubjectID != nil {
		value := record.SubjectID.String()
		row.SubjectID = &value
	}
	if len(record.Payload) > 0 {
		row.Payload = bigquery.NullJSON{JSONVal: string(record.Payload), Valid: true}
	}
	return row
}
