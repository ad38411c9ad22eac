package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/anafuentes/pressroute-backend/internal/routes"
	pkgerrors "github.com/anafuentes/pressroute-backend/pkg/errors"
	"github.com/google/uuid"
)

type stubRouteService struct {
	route     *routes.RouteDTO
	list      []routes.RouteDTO
	window    *routes.WindowDTO
	err       error
	gotZip    string
	gotWindow routes.WindowInput
}

func (s *stubRouteService) Create(ctx context.Context, actor routes.Actor, input routes.CreateRouteDTO) (*routes.RouteDTO, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.route, nil
}

func (s *stubRouteService) Get(ctx context.Context, id uuid.UUID) (*routes.RouteDTO, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.route, nil
}

func (s *stubRouteService) ListByCompany(ctx context.Context, actor routes.Actor, companyID uuid.UUID) ([]routes.RouteDTO, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.list, nil
}

func (s *stubRouteService) LookupByZip(ctx context.Context, zip string) ([]routes.RouteDTO, error) {
	s.gotZip = zip
	if s.err != nil {
		return nil, s.err
	}
	return s.list, nil
}

func (s *stubRouteService) Update(ctx context.Context, actor routes.Actor, id uuid.UUID, input routes.UpdateInput) (*routes.RouteDTO, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.route, nil
}

func (s *stubRouteService) Deactivate(ctx context.Context, actor routes.Actor, id uuid.UUID) error {
	return s.err
}

func (s *stubRouteService) Window(ctx context.Context, id uuid.UUID, input routes.WindowInput) (*routes.WindowDTO, error) {
	s.gotWindow = input
	if s.err != nil {
		return nil, s.err
	}
	return s.window, nil
}

func TestRouteLookupByZipIsPublic(t *testing.T) {
	svc := &stubRouteService{list: []routes.RouteDTO{{ID: uuid.New(), Name: "North Loop"}}}
	handler := RouteLookupByZip(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/routes/zip/78701", nil)
	req = withURLParam(req, "zip", "78701")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if svc.gotZip != "78701" {
		t.Fatalf("expected zip forwarded, got %q", svc.gotZip)
	}

	var payload struct {
		Data []routes.RouteDTO `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(payload.Data) != 1 || payload.Data[0].Name != "North Loop" {
		t.Fatalf("unexpected payload: %s", rec.Body.String())
	}
}

func TestRouteWindowParsesQueryDates(t *testing.T) {
	svc := &stubRouteService{window: &routes.WindowDTO{SLADays: 3}}
	handler := RouteWindow(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/routes/x/window?pickup_date=2026-03-02&dropoff_date=2026-03-05", nil)
	req = withURLParam(req, "routeID", uuid.NewString())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	wantPickup := time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)
	if !svc.gotWindow.PickupDate.Equal(wantPickup) {
		t.Fatalf("expected pickup %s got %s", wantPickup, svc.gotWindow.PickupDate)
	}
	if !svc.gotWindow.DropoffTouched {
		t.Fatalf("expected explicit dropoff_date to mark the window touched")
	}
}

func TestRouteWindowDefaultsToEarliest(t *testing.T) {
	svc := &stubRouteService{window: &routes.WindowDTO{SLADays: 3}}
	handler := RouteWindow(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/routes/x/window", nil)
	req = withURLParam(req, "routeID", uuid.NewString())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if !svc.gotWindow.PickupDate.IsZero() || svc.gotWindow.DropoffTouched {
		t.Fatalf("expected zero-value window input, got %+v", svc.gotWindow)
	}
}

func TestRouteWindowRejectsBadDate(t *testing.T) {
	handler := RouteWindow(&stubRouteService{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/routes/x/window?pickup_date=03-02-2026", nil)
	req = withURLParam(req, "routeID", uuid.NewString())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestRouteDeactivateConflictPassesThrough(t *testing.T) {
	svc := &stubRouteService{err: pkgerrors.New(pkgerrors.CodeConflict, "route has open pickups")}
	handler := RouteDeactivate(svc, nil)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/routes/x", nil)
	req = authedRequest(req, uuid.New(), "admin", nil)
	req = withURLParam(req, "routeID", uuid.NewString())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d: %s", rec.Code, rec.Body.String())
	}
}
