package routes

import (
	"context"
	"testing"
	"time"

	"github.com/anafuentes/pressroute-backend/pkg/db/models"
	"github.com/anafuentes/pressroute-backend/pkg/enums"
	pkgerrors "github.com/anafuentes/pressroute-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

type stubRouteRepo struct {
	route        *models.Route
	byZip        []models.Route
	pendingCount int64

	created *models.Route
	updated *models.Route
}

func (s *stubRouteRepo) Create(ctx context.Context, route *models.Route) error {
	s.created = route
	return nil
}

func (s *stubRouteRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Route, error) {
	if s.route == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return s.route, nil
}

func (s *stubRouteRepo) ListByCompany(ctx context.Context, companyID uuid.UUID) ([]models.Route, error) {
	if s.route == nil {
		return nil, nil
	}
	return []models.Route{*s.route}, nil
}

func (s *stubRouteRepo) FindActiveByZip(ctx context.Context, zip string) ([]models.Route, error) {
	return s.byZip, nil
}

func (s *stubRouteRepo) Update(ctx context.Context, route *models.Route) error {
	s.updated = route
	return nil
}

func (s *stubRouteRepo) CountPendingPickups(ctx context.Context, id uuid.UUID) (int64, error) {
	return s.pendingCount, nil
}

type stubPricelistReader struct {
	pricelist *models.Pricelist
}

func (s *stubPricelistReader) FindByID(ctx context.Context, id uuid.UUID) (*models.Pricelist, error) {
	if s.pricelist == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return s.pricelist, nil
}

type stubSettingsReader struct {
	settings models.DeliverySettings
}

func (s *stubSettingsReader) Effective(ctx context.Context) models.DeliverySettings {
	if s.settings.SearchHorizonDays == 0 {
		return models.DeliverySettings{DefaultSLADays: 2, SearchHorizonDays: 42, MinLeadDays: 1}
	}
	return s.settings
}

func managerActor(companyID uuid.UUID) Actor {
	return Actor{UserID: uuid.New(), Role: enums.UserRoleCompanyManager, CompanyID: &companyID}
}

// mondayWednesdayRoute serves Mondays and Wednesdays.
func mondayWednesdayRoute(companyID uuid.UUID, pricelistID *uuid.UUID) *models.Route {
	return &models.Route{
		ID:          uuid.New(),
		CompanyID:   companyID,
		Name:        "North Loop",
		ZipCodes:    pq.StringArray{"73072"},
		Weekdays:    pq.Int64Array{1, 3},
		StartTime:   "08:00",
		EndTime:     "17:00",
		PricelistID: pricelistID,
		Active:      true,
	}
}

func newTestService(repo *stubRouteRepo, pricelists *stubPricelistReader, now time.Time) Service {
	svc := NewService(repo, pricelists, &stubSettingsReader{}).(*service)
	svc.now = func() time.Time { return now }
	return svc
}

func TestServiceCreateValidatesInput(t *testing.T) {
	companyID := uuid.New()
	svc := NewService(&stubRouteRepo{}, &stubPricelistReader{}, &stubSettingsReader{})

	cases := []struct {
		name  string
		input CreateRouteDTO
	}{
		{"no zips", CreateRouteDTO{CompanyID: companyID, Name: "r", Weekdays: []int{1}, StartTime: "08:00", EndTime: "17:00"}},
		{"bad zip", CreateRouteDTO{CompanyID: companyID, Name: "r", ZipCodes: []string{"7307"}, StartTime: "08:00", EndTime: "17:00"}},
		{"bad weekday", CreateRouteDTO{CompanyID: companyID, Name: "r", ZipCodes: []string{"73072"}, Weekdays: []int{7}, StartTime: "08:00", EndTime: "17:00"}},
		{"bad time", CreateRouteDTO{CompanyID: companyID, Name: "r", ZipCodes: []string{"73072"}, StartTime: "8am", EndTime: "17:00"}},
		{"inverted window", CreateRouteDTO{CompanyID: companyID, Name: "r", ZipCodes: []string{"73072"}, StartTime: "17:00", EndTime: "08:00"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), managerActor(companyID), tc.input)
			if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestServiceCreateSuccess(t *testing.T) {
	companyID := uuid.New()
	repo := &stubRouteRepo{}
	svc := NewService(repo, &stubPricelistReader{}, &stubSettingsReader{})

	dto, err := svc.Create(context.Background(), managerActor(companyID), CreateRouteDTO{
		CompanyID: companyID,
		Name:      "North Loop",
		ZipCodes:  []string{"73072", "73069"},
		Weekdays:  []int{1, 3},
		StartTime: "08:00",
		EndTime:   "17:00",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !dto.Active {
		t.Fatal("expected new route to be active")
	}
	if len(dto.ZipCodes) != 2 {
		t.Fatalf("expected 2 zips, got %d", len(dto.ZipCodes))
	}
}

func TestServiceLookupByZipRejectsBadZip(t *testing.T) {
	svc := NewService(&stubRouteRepo{}, &stubPricelistReader{}, &stubSettingsReader{})

	_, err := svc.LookupByZip(context.Background(), "not-a-zip")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestServiceLookupByZipReturnsRoutes(t *testing.T) {
	companyID := uuid.New()
	repo := &stubRouteRepo{byZip: []models.Route{*mondayWednesdayRoute(companyID, nil)}}
	svc := NewService(repo, &stubPricelistReader{}, &stubSettingsReader{})

	routes, err := svc.LookupByZip(context.Background(), "73072")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if len(routes) != 1 {
		t.Fatalf("expected 1 route, got %d", len(routes))
	}
}

func TestServiceWindowUsesPricelistSLA(t *testing.T) {
	companyID := uuid.New()
	pricelistID := uuid.New()
	route := mondayWednesdayRoute(companyID, &pricelistID)
	repo := &stubRouteRepo{route: route}
	pricelists := &stubPricelistReader{pricelist: &models.Pricelist{ID: pricelistID, CompanyID: companyID, SLADays: 4, Active: true}}

	// Sunday 2026-03-01; next Monday pickup, SLA 4 pushes dropoff past
	// Wednesday to the following Monday.
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	svc := newTestService(repo, pricelists, now)

	window, err := svc.Window(context.Background(), route.ID, WindowInput{})
	if err != nil {
		t.Fatalf("window: %v", err)
	}
	if window.SLADays != 4 {
		t.Fatalf("expected sla 4, got %d", window.SLADays)
	}
	if window.PickupDate.Weekday() != time.Monday {
		t.Fatalf("expected Monday pickup, got %s", window.PickupDate.Weekday())
	}
	if window.PickupDate.Day() != 2 {
		t.Fatalf("expected pickup on the 2nd, got %d", window.PickupDate.Day())
	}
	if window.DropoffDate.Weekday() != time.Monday || window.DropoffDate.Day() != 9 {
		t.Fatalf("expected dropoff Monday the 9th, got %s the %d", window.DropoffDate.Weekday(), window.DropoffDate.Day())
	}
}

func TestServiceWindowFallsBackToDefaultSLA(t *testing.T) {
	companyID := uuid.New()
	route := mondayWednesdayRoute(companyID, nil)
	repo := &stubRouteRepo{route: route}

	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	svc := newTestService(repo, &stubPricelistReader{}, now)

	window, err := svc.Window(context.Background(), route.ID, WindowInput{})
	if err != nil {
		t.Fatalf("window: %v", err)
	}
	if window.SLADays != 2 {
		t.Fatalf("expected default sla 2, got %d", window.SLADays)
	}
	// Monday the 2nd pickup, Wednesday the 4th dropoff.
	if window.DropoffDate.Weekday() != time.Wednesday || window.DropoffDate.Day() != 4 {
		t.Fatalf("expected dropoff Wednesday the 4th, got %s the %d", window.DropoffDate.Weekday(), window.DropoffDate.Day())
	}
}

func TestServiceWindowHonorsMinLeadDays(t *testing.T) {
	companyID := uuid.New()
	route := mondayWednesdayRoute(companyID, nil)
	repo := &stubRouteRepo{route: route}
	settings := &stubSettingsReader{settings: models.DeliverySettings{
		DefaultSLADays:    2,
		SearchHorizonDays: 42,
		MinLeadDays:       3,
	}}

	svc := NewService(repo, &stubPricelistReader{}, settings).(*service)
	// Sunday 2026-03-01; a 3-day lead rules out Monday the 2nd.
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC) }

	window, err := svc.Window(context.Background(), route.ID, WindowInput{})
	if err != nil {
		t.Fatalf("window: %v", err)
	}
	if window.PickupDate.Weekday() != time.Wednesday || window.PickupDate.Day() != 4 {
		t.Fatalf("expected pickup Wednesday the 4th under a 3-day lead, got %s the %d", window.PickupDate.Weekday(), window.PickupDate.Day())
	}
	if window.DropoffDate.Weekday() != time.Monday || window.DropoffDate.Day() != 9 {
		t.Fatalf("expected dropoff Monday the 9th, got %s the %d", window.DropoffDate.Weekday(), window.DropoffDate.Day())
	}
}

func TestServiceWindowInactiveRoute(t *testing.T) {
	companyID := uuid.New()
	route := mondayWednesdayRoute(companyID, nil)
	route.Active = false
	svc := NewService(&stubRouteRepo{route: route}, &stubPricelistReader{}, &stubSettingsReader{})

	_, err := svc.Window(context.Background(), route.ID, WindowInput{})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestServiceDeactivateBlockedByOpenPickups(t *testing.T) {
	companyID := uuid.New()
	route := mondayWednesdayRoute(companyID, nil)
	repo := &stubRouteRepo{route: route, pendingCount: 3}
	svc := NewService(repo, &stubPricelistReader{}, &stubSettingsReader{})

	err := svc.Deactivate(context.Background(), managerActor(companyID), route.ID)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestServiceUpdateOtherCompanyForbidden(t *testing.T) {
	route := mondayWednesdayRoute(uuid.New(), nil)
	svc := NewService(&stubRouteRepo{route: route}, &stubPricelistReader{}, &stubSettingsReader{})

	name := "Renamed"
	_, err := svc.Update(context.Background(), managerActor(uuid.New()), route.ID, UpdateInput{Name: &name})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
}
