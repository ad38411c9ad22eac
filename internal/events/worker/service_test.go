package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/anafuentes/pressroute-backend/pkg/db/models"
	"github.com/anafuentes/pressroute-backend/pkg/enums"
	"github.com/anafuentes/pressroute-backend/pkg/logger"
	"github.com/google/uuid"
)

func TestBuildRecordFromBody(t *testing.T) {
	svc := newTestService(t, &stubSink{}, &stubStore{})

	actor := uuid.New()
	record := models.EventRecord{
		ID:          uuid.New(),
		Type:        enums.EventPickupRequested,
		ActorUserID: &actor,
		Payload:     json.RawMessage(`{"pickup_id":"p-1"}`),
		OccurredAt:  time.Date(2026, 7, 12, 9, 30, 0, 0, time.UTC),
	}
	msg := buildMessage(t, record, nil)

	got, err := svc.buildRecord(msg)
	if err != nil {
		t.Fatalf("build record: %v", err)
	}
	if got.ID != record.ID {
		t.Fatalf("unexpected event id %s", got.ID)
	}
	if got.Type != enums.EventPickupRequested {
		t.Fatalf("unexpected event type %v", got.Type)
	}
	if got.ActorUserID == nil || *got.ActorUserID != actor {
		t.Fatalf("unexpected actor %v", got.ActorUserID)
	}
	if !got.OccurredAt.Equal(record.OccurredAt) {
		t.Fatalf("unexpected occurred at %v", got.OccurredAt)
	}
}

func TestBuildRecordFallsBackToAttributes(t *testing.T) {
	svc := newTestService(t, &stubSink{}, &stubStore{})

	eventID := uuid.New()
	occurred := time.Date(2026, 7, 12, 9, 30, 0, 0, time.UTC)
	msg := &gcppubsub.Message{
		ID:   "msg-1",
		Data: []byte(`{"Payload":{"pickup_id":"p-1"}}`),
		Attributes: map[string]string{
			"event_id":    eventID.String(),
			"event_type":  "pickup_status_changed",
			"occurred_at": occurred.Format(time.RFC3339Nano),
		},
	}

	got, err := svc.buildRecord(msg)
	if err != nil {
		t.Fatalf("build record: %v", err)
	}
	if got.ID != eventID {
		t.Fatalf("unexpected event id %s", got.ID)
	}
	if got.Type != enums.EventPickupStatusChanged {
		t.Fatalf("unexpected event type %v", got.Type)
	}
	if !got.OccurredAt.Equal(occurred) {
		t.Fatalf("unexpected occurred at %v", got.OccurredAt)
	}
}

func TestBuildRecordRejectsUnknownType(t *testing.T) {
	svc := newTestService(t, &stubSink{}, &stubStore{})

	record := models.EventRecord{
		ID:         uuid.New(),
		Type:       enums.EventType("mystery"),
		OccurredAt: time.Now().UTC(),
	}
	if _, err := svc.buildRecord(buildMessage(t, record, nil)); err == nil {
		t.Fatal("expected unknown type error")
	}
}

func TestProcessInsertsRow(t *testing.T) {
	sink := &stubSink{}
	store := &stubStore{fresh: true}
	svc := newTestService(t, sink, store)

	res := svc.process(context.Background(), buildEventMessage(t))
	if res.nack {
		t.Fatal("expected ack")
	}
	if len(sink.rows) != 1 {
		t.Fatalf("expected one insert, got %d", len(sink.rows))
	}
	row, ok := sink.rows[0].(PickupEventRow)
	if !ok {
		t.Fatalf("unexpected row type %T", sink.rows[0])
	}
	if row.EventType != string(enums.EventPickupRequested) {
		t.Fatalf("unexpected row event type %s", row.EventType)
	}
	if !row.Payload.Valid {
		t.Fatal("expected payload to carry over")
	}
	if sink.table != "pickup_events" {
		t.Fatalf("unexpected table %s", sink.table)
	}
}

func TestProcessSkipsDuplicates(t *testing.T) {
	sink := &stubSink{}
	store := &stubStore{fresh: false}
	svc := newTestService(t, sink, store)

	res := svc.process(context.Background(), buildEventMessage(t))
	if res.nack {
		t.Fatal("duplicate should ack")
	}
	if len(sink.rows) != 0 {
		t.Fatal("duplicate should not insert")
	}
}

func TestProcessInsertFailureReleasesMark(t *testing.T) {
	sink := &stubSink{err: errors.New("boom")}
	store := &stubStore{fresh: true}
	svc := newTestService(t, sink, store)

	res := svc.process(context.Background(), buildEventMessage(t))
	if !res.nack {
		t.Fatal("expected nack on insert failure")
	}
	if len(store.deleted) != 1 {
		t.Fatalf("expected mark release, got %d deletes", len(store.deleted))
	}
}

func TestProcessMalformedMessageAcks(t *testing.T) {
	sink := &stubSink{}
	store := &stubStore{fresh: true}
	svc := newTestService(t, sink, store)

	res := svc.process(context.Background(), &gcppubsub.Message{ID: "msg-1", Data: []byte("not json")})
	if res.nack {
		t.Fatal("malformed message should ack")
	}
	if len(store.set) != 0 {
		t.Fatal("dedupe store should not be touched")
	}
}

func buildEventMessage(t *testing.T) *gcppubsub.Message {
	t.Helper()
	record := models.EventRecord{
		ID:         uuid.New(),
		Type:       enums.EventPickupRequested,
		Payload:    json.RawMessage(`{"pickup_id":"p-1"}`),
		OccurredAt: time.Now().UTC(),
	}
	return buildMessage(t, record, nil)
}

func buildMessage(t *testing.T, record models.EventRecord, attrs map[string]string) *gcppubsub.Message {
	t.Helper()
	data, err := json.Marshal(record)
	if err != nil {
		t.Fatalf("marshal record: %v", err)
	}
	return &gcppubsub.Message{
		ID:         "msg-1",
		Data:       data,
		Attributes: attrs,
	}
}

func newTestService(t *testing.T, sink *stubSink, store *stubStore) *Service {
	t.Helper()
	return &Service{
		sink:  sink,
		store: store,
		table: "pickup_events",
		logg:  logger.New(logger.Options{ServiceName: "events-worker-test"}),
		now:   time.Now,
	}
}

type stubSink struct {
	table string
	rows  []any
	err   error
}

func (s *stubSink) InsertRows(ctx context.Context, table string, rows []any) error {
	s.table = table
	s.rows = append(s.rows, rows...)
	return s.err
}

type stubStore struct {
	fresh   bool
	err     error
	set     []string
	deleted []string
}

func (s *stubStore) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	s.set = append(s.set, key)
	return s.fresh, s.err
}

func (s *stubStore) Del(ctx context.Context, keys ...string) error {
	s.deleted = append(s.deleted, keys...)
	return nil
}

func (s *stubStore) IdempotencyKey(scope, id string) string {
	return "idemp:" + scope + ":" + id
}
