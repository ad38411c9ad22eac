package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/anafuentes/pressroute-backend/internal/pickups"
	"github.com/anafuentes/pressroute-backend/pkg/enums"
	pkgerrors "github.com/anafuentes/pressroute-backend/pkg/errors"
	"github.com/anafuentes/pressroute-backend/pkg/pagination"
	"github.com/google/uuid"
)

type stubPickupService struct {
	pickup     *pickups.PickupDTO
	list       *pickups.PickupListDTO
	bulk       *pickups.BulkStatusResultDTO
	err        error
	gotActor   pickups.Actor
	gotCreate  pickups.CreatePickupDTO
	gotStatus  enums.PickupStatus
	gotBulkIDs []uuid.UUID
	gotFilter  *enums.PickupStatus
}

func (s *stubPickupService) Create(ctx context.Context, actor pickups.Actor, input pickups.CreatePickupDTO) (*pickups.PickupDTO, error) {
	s.gotActor = actor
	s.gotCreate = input
	if s.err != nil {
		return nil, s.err
	}
	return s.pickup, nil
}

func (s *stubPickupService) Get(ctx context.Context, actor pickups.Actor, id uuid.UUID) (*pickups.PickupDTO, error) {
	s.gotActor = actor
	if s.err != nil {
		return nil, s.err
	}
	return s.pickup, nil
}

func (s *stubPickupService) List(ctx context.Context, actor pickups.Actor, status *enums.PickupStatus, params pagination.Params) (*pickups.PickupListDTO, error) {
	s.gotActor = actor
	s.gotFilter = status
	if s.err != nil {
		return nil, s.err
	}
	return s.list, nil
}

func (s *stubPickupService) Update(ctx context.Context, actor pickups.Actor, id uuid.UUID, input pickups.UpdateInput) (*pickups.PickupDTO, error) {
	s.gotActor = actor
	if s.err != nil {
		return nil, s.err
	}
	return s.pickup, nil
}

func (s *stubPickupService) UpdateStatus(ctx context.Context, actor pickups.Actor, id uuid.UUID, status enums.PickupStatus) (*pickups.PickupDTO, error) {
	s.gotActor = actor
	s.gotStatus = status
	if s.err != nil {
		return nil, s.err
	}
	return s.pickup, nil
}

func (s *stubPickupService) BulkUpdateStatus(ctx context.Context, actor pickups.Actor, ids []uuid.UUID, status enums.PickupStatus) (*pickups.BulkStatusResultDTO, error) {
	s.gotActor = actor
	s.gotBulkIDs = ids
	s.gotStatus = status
	if s.err != nil {
		return nil, s.err
	}
	return s.bulk, nil
}

func TestPickupCreateForwardsActorAndDates(t *testing.T) {
	userID := uuid.New()
	routeID := uuid.New()
	locationID := uuid.New()
	svc := &stubPickupService{pickup: &pickups.PickupDTO{ID: uuid.New()}}
	handler := PickupCreate(svc, nil)

	body := `{"route_id":"` + routeID.String() + `","location_id":"` + locationID.String() + `","pickup_date":"2026-03-02T00:00:00Z"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/pickups", strings.NewReader(body))
	req = authedRequest(req, userID, enums.UserRoleCustomer, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.gotActor.UserID != userID {
		t.Fatalf("expected actor %s got %s", userID, svc.gotActor.UserID)
	}
	if svc.gotCreate.RouteID != routeID {
		t.Fatalf("expected route forwarded")
	}
	want := time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)
	if !svc.gotCreate.PickupDate.Equal(want) {
		t.Fatalf("expected pickup date %s got %s", want, svc.gotCreate.PickupDate)
	}
	if svc.gotCreate.DropoffTouched {
		t.Fatalf("expected dropoff untouched when omitted")
	}
}

func TestPickupCreateMarksDropoffTouched(t *testing.T) {
	svc := &stubPickupService{pickup: &pickups.PickupDTO{ID: uuid.New()}}
	handler := PickupCreate(svc, nil)

	body := `{"route_id":"` + uuid.NewString() + `","location_id":"` + uuid.NewString() + `","dropoff_date":"2026-03-09T00:00:00Z"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/pickups", strings.NewReader(body))
	req = authedRequest(req, uuid.New(), enums.UserRoleCustomer, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", rec.Code)
	}
	if !svc.gotCreate.DropoffTouched {
		t.Fatalf("expected explicit dropoff to mark the window touched")
	}
}

func TestPickupCreateRequiresAuthContext(t *testing.T) {
	handler := PickupCreate(&stubPickupService{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/pickups", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
}

func TestPickupListParsesStatusFilter(t *testing.T) {
	svc := &stubPickupService{list: &pickups.PickupListDTO{}}
	handler := PickupList(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/pickups?status=confirmed", nil)
	req = authedRequest(req, uuid.New(), enums.UserRoleAdmin, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if svc.gotFilter == nil || *svc.gotFilter != enums.PickupStatusConfirmed {
		t.Fatalf("expected confirmed filter, got %v", svc.gotFilter)
	}
}

func TestPickupListRejectsUnknownStatus(t *testing.T) {
	handler := PickupList(&stubPickupService{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/pickups?status=bogus", nil)
	req = authedRequest(req, uuid.New(), enums.UserRoleAdmin, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestPickupBulkUpdateStatus(t *testing.T) {
	managerCompany := uuid.New()
	ids := []uuid.UUID{uuid.New(), uuid.New()}
	svc := &stubPickupService{bulk: &pickups.BulkStatusResultDTO{Updated: 2, Status: enums.PickupStatusInTransit}}
	handler := PickupBulkUpdateStatus(svc, nil)

	payload, _ := json.Marshal(map[string]any{"ids": ids, "status": "in_transit"})
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/pickups/bulk/status", strings.NewReader(string(payload)))
	req = authedRequest(req, uuid.New(), enums.UserRoleCompanyManager, &managerCompany)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	if len(svc.gotBulkIDs) != 2 {
		t.Fatalf("expected ids forwarded, got %d", len(svc.gotBulkIDs))
	}
	if svc.gotActor.CompanyID == nil || *svc.gotActor.CompanyID != managerCompany {
		t.Fatalf("expected company scope forwarded")
	}
}

func TestPickupBulkUpdateStatusConflict(t *testing.T) {
	svc := &stubPickupService{err: pkgerrors.New(pkgerrors.CodeConflict, "one or more pickups are missing or out of scope")}
	handler := PickupBulkUpdateStatus(svc, nil)

	payload := `{"ids":["` + uuid.NewString() + `"],"status":"delivered"}`
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/pickups/bulk/status", strings.NewReader(payload))
	req = authedRequest(req, uuid.New(), enums.UserRoleAdmin, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", rec.Code)
	}
}

func TestPickupUpdateStatusForwardsValue(t *testing.T) {
	svc := &stubPickupService{pickup: &pickups.PickupDTO{ID: uuid.New()}}
	handler := PickupUpdateStatus(svc, nil)

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/pickups/x/status", strings.NewReader(`{"status":"delivered"}`))
	req = authedRequest(req, uuid.New(), enums.UserRoleAdmin, nil)
	req = withURLParam(req, "pickupID", uuid.NewString())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if svc.gotStatus != enums.PickupStatusDelivered {
		t.Fatalf("expected delivered, got %s", svc.gotStatus)
	}
}
