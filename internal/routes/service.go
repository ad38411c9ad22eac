package routes

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/anafuentes/pressroute-backend/internal/scheduling"
	"github.com/anafuentes/pressroute-backend/pkg/db/models"
	"github.com/anafuentes/pressroute-backend/pkg/enums"
	pkgerrors "github.com/anafuentes/pressroute-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

type routeRepo interface {
	Create(ctx context.Context, route *models.Route) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Route, error)
	ListByCompany(ctx context.Context, companyID uuid.UUID) ([]models.Route, error)
	FindActiveByZip(ctx context.Context, zip string) ([]models.Route, error)
	Update(ctx context.Context, route *models.Route) error
	CountPendingPickups(ctx context.Context, id uuid.UUID) (int64, error)
}

type pricelistReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Pricelist, error)
}

type settingsReader interface {
	Effective(ctx context.Context) models.DeliverySettings
}

// Actor identifies who is performing an operation, for company scoping.
type Actor struct {
	UserID    uuid.UUID
	Role      enums.UserRole
	CompanyID *uuid.UUID
}

// UpdateInput carries mutable route fields. Nil means leave unchanged.
type UpdateInput struct {
	Name        *string
	ZipCodes    *[]string
	Weekdays    *[]int
	StartTime   *string
	EndTime     *string
	PricelistID *uuid.UUID
	Active      *bool
}

// WindowInput holds the caller's requested dates for window resolution.
// Zero dates mean "pick for me"; DropoffTouched marks a dropoff the
// customer chose explicitly, which is preserved when still valid.
type WindowInput struct {
	PickupDate     time.Time
	DropoffDate    time.Time
	DropoffTouched bool
}

// Service manages delivery routes and date-window resolution.
type Service interface {
	Create(ctx context.Context, actor Actor, input CreateRouteDTO) (*RouteDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*RouteDTO, error)
	ListByCompany(ctx context.Context, actor Actor, companyID uuid.UUID) ([]RouteDTO, error)
	LookupByZip(ctx context.Context, zip string) ([]RouteDTO, error)
	Update(ctx context.Context, actor Actor, id uuid.UUID, input UpdateInput) (*RouteDTO, error)
	Deactivate(ctx context.Context, actor Actor, id uuid.UUID) error
	Window(ctx context.Context, id uuid.UUID, input WindowInput) (*WindowDTO, error)
}

type service struct {
	repo       routeRepo
	pricelists pricelistReader
	settings   settingsReader
	now        func() time.Time
}

func NewService(repo routeRepo, pricelists pricelistReader, settings settingsReader) Service {
	return &service{repo: repo, pricelists: pricelists, settings: settings, now: time.Now}
}

var timeOfDayPattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)
var zipPattern = regexp.MustCompile(`^[0-9]{5}$`)

func (s *service) Create(ctx context.Context, actor Actor, input CreateRouteDTO) (*RouteDTO, error) {
	if err := checkCompanyScope(actor, input.CompanyID); err != nil {
		return nil, err
	}
	if err := validateRoute(input.ZipCodes, input.Weekdays, input.StartTime, input.EndTime); err != nil {
		return nil, err
	}

	route := input.ToModel()
	if err := s.repo.Create(ctx, route); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to create route")
	}
	return FromModel(route), nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*RouteDTO, error) {
	route, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return FromModel(route), nil
}

func (s *service) ListByCompany(ctx context.Context, actor Actor, companyID uuid.UUID) ([]RouteDTO, error) {
	if err := checkCompanyScope(actor, companyID); err != nil {
		return nil, err
	}

	records, err := s.repo.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to list routes")
	}
	return toDTOs(records), nil
}

// LookupByZip is the public coverage check: which active routes serve
// this zip code.
func (s *service) LookupByZip(ctx context.Context, zip string) ([]RouteDTO, error) {
	if !zipPattern.MatchString(zip) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid zip code")
	}

	records, err := s.repo.FindActiveByZip(ctx, zip)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to look up routes")
	}
	return toDTOs(records), nil
}

func (s *service) Update(ctx context.Context, actor Actor, id uuid.UUID, input UpdateInput) (*RouteDTO, error) {
	route, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := checkCompanyScope(actor, route.CompanyID); err != nil {
		return nil, err
	}

	if input.Name != nil {
		route.Name = *input.Name
	}
	if input.ZipCodes != nil {
		route.ZipCodes = pq.StringArray(*input.ZipCodes)
	}
	if input.Weekdays != nil {
		weekdays := make(pq.Int64Array, 0, len(*input.Weekdays))
		for _, d := range *input.Weekdays {
			weekdays = append(weekdays, int64(d))
		}
		route.Weekdays = weekdays
	}
	if input.StartTime != nil {
		route.StartTime = *input.StartTime
	}
	if input.EndTime != nil {
		route.EndTime = *input.EndTime
	}
	if input.PricelistID != nil {
		route.PricelistID = input.PricelistID
	}
	if input.Active != nil {
		route.Active = *input.Active
	}

	weekdays := make([]int, 0, len(route.Weekdays))
	for _, d := range route.Weekdays {
		weekdays = append(weekdays, int(d))
	}
	if err := validateRoute(route.ZipCodes, weekdays, route.StartTime, route.EndTime); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, route); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to update route")
	}
	return FromModel(route), nil
}

func (s *service) Deactivate(ctx context.Context, actor Actor, id uuid.UUID) error {
	route, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if err := checkCompanyScope(actor, route.CompanyID); err != nil {
		return err
	}

	count, err := s.repo.CountPendingPickups(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to check route usage")
	}
	if count > 0 {
		return pkgerrors.New(pkgerrors.CodeConflict, "route has open pickup requests")
	}

	route.Active = false
	if err := s.repo.Update(ctx, route); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to deactivate route")
	}
	return nil
}

// Window resolves a valid pickup/dropoff date pair for the route.
func (s *service) Window(ctx context.Context, id uuid.UUID, input WindowInput) (*WindowDTO, error) {
	route, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !route.Active {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "route is not active")
	}

	slaDays, leadDays, horizonDays := s.slaAndHorizon(ctx, route)
	window, err := scheduling.ResolveWindow(
		route.ServedWeekdays(),
		slaDays,
		leadDays,
		s.now(),
		input.PickupDate,
		input.DropoffDate,
		input.DropoffTouched,
		horizonDays,
	)
	if err != nil {
		if errors.Is(err, scheduling.ErrNoDateInHorizon) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "no serviceable date within the scheduling horizon")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to resolve window")
	}

	return &WindowDTO{
		PickupDate:  window.Pickup,
		DropoffDate: window.Dropoff,
		SLADays:     slaDays,
	}, nil
}

// slaAndHorizon resolves the SLA from the route's pricelist and the
// lead and horizon from the global settings, falling back to the
// settings default SLA when the route has no pricelist.
func (s *service) slaAndHorizon(ctx context.Context, route *models.Route) (slaDays, leadDays, horizonDays int) {
	settings := s.settings.Effective(ctx)
	slaDays = settings.DefaultSLADays

	if route.PricelistID != nil {
		if pricelist, err := s.pricelists.FindByID(ctx, *route.PricelistID); err == nil && pricelist.Active {
			slaDays = pricelist.SLADays
		}
	}
	return slaDays, settings.MinLeadDays, settings.SearchHorizonDays
}

func (s *service) find(ctx context.Context, id uuid.UUID) (*models.Route, error) {
	route, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "route not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to fetch route")
	}
	return route, nil
}

func checkCompanyScope(actor Actor, companyID uuid.UUID) error {
	if actor.Role == enums.UserRoleAdmin {
		return nil
	}
	if actor.Role == enums.UserRoleCompanyManager && actor.CompanyID != nil && *actor.CompanyID == companyID {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeForbidden, "route belongs to another company")
}

func validateRoute(zips []string, weekdays []int, startTime, endTime string) error {
	if len(zips) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "route needs at least one zip code")
	}
	for _, zip := range zips {
		if !zipPattern.MatchString(zip) {
			return pkgerrors.New(pkgerrors.CodeValidation, "invalid zip code")
		}
	}
	for _, d := range weekdays {
		if d < 0 || d > 6 {
			return pkgerrors.New(pkgerrors.CodeValidation, "weekdays must be 0 through 6")
		}
	}
	if !timeOfDayPattern.MatchString(startTime) || !timeOfDayPattern.MatchString(endTime) {
		return pkgerrors.New(pkgerrors.CodeValidation, "times must be HH:MM")
	}
	if startTime >= endTime {
		return pkgerrors.New(pkgerrors.CodeValidation, "start time must be before end time")
	}
	return nil
}

func toDTOs(records []models.Route) []RouteDTO {
	out := make([]RouteDTO, 0, len(records))
	for i := range records {
		out = append(out, *FromModel(&records[i]))
	}
	return out
}
