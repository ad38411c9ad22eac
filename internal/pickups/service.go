package pickups

import (
	"context"
	"errors"
	"time"

	"github.com/anafuentes/pressroute-backend/internal/scheduling"
	"github.com/anafuentes/pressroute-backend/pkg/db/models"
	"github.com/anafuentes/pressroute-backend/pkg/enums"
	pkgerrors "github.com/anafuentes/pressroute-backend/pkg/errors"
	"github.com/anafuentes/pressroute-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type pickupRepo interface {
	Create(ctx context.Context, pickup *models.PickupRequest) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.PickupRequest, error)
	List(ctx context.Context, filters ListFilters, params pagination.Params) ([]models.PickupRequest, string, error)
	Update(ctx context.Context, pickup *models.PickupRequest) error
	BulkUpdateStatus(ctx context.Context, ids []uuid.UUID, companyID *uuid.UUID, to enums.PickupStatus) (int64, error)
}

type routeReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Route, error)
}

type locationReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Location, error)
}

type pricelistReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Pricelist, error)
}

type settingsReader interface {
	Effective(ctx context.Context) models.DeliverySettings
}

// eventSink records domain events. Implementations are best-effort;
// failures must not surface to the caller.
type eventSink interface {
	Record(ctx context.Context, eventType enums.EventType, actorUserID, companyID, subjectID *uuid.UUID, payload any)
}

// Actor identifies who is performing an operation.
type Actor struct {
	UserID    uuid.UUID
	Role      enums.UserRole
	CompanyID *uuid.UUID
}

// UpdateInput carries mutable pickup fields for the owning customer.
// Nil means leave unchanged.
type UpdateInput struct {
	PickupDate     *time.Time
	DropoffDate    *time.Time
	DropoffTouched bool
	Notes          *string
}

// Service manages pickup requests end to end.
type Service interface {
	Create(ctx context.Context, actor Actor, input CreatePickupDTO) (*PickupDTO, error)
	Get(ctx context.Context, actor Actor, id uuid.UUID) (*PickupDTO, error)
	List(ctx context.Context, actor Actor, status *enums.PickupStatus, params pagination.Params) (*PickupListDTO, error)
	Update(ctx context.Context, actor Actor, id uuid.UUID, input UpdateInput) (*PickupDTO, error)
	UpdateStatus(ctx context.Context, actor Actor, id uuid.UUID, status enums.PickupStatus) (*PickupDTO, error)
	BulkUpdateStatus(ctx context.Context, actor Actor, ids []uuid.UUID, status enums.PickupStatus) (*BulkStatusResultDTO, error)
}

type service struct {
	repo       pickupRepo
	routes     routeReader
	locations  locationReader
	pricelists pricelistReader
	settings   settingsReader
	events     eventSink
	now        func() time.Time
}

func NewService(repo pickupRepo, routes routeReader, locations locationReader, pricelists pricelistReader, settings settingsReader, events eventSink) Service {
	return &service{
		repo:       repo,
		routes:     routes,
		locations:  locations,
		pricelists: pricelists,
		settings:   settings,
		events:     events,
		now:        time.Now,
	}
}

// Create validates the route/address pair and resolves the date window
// server-side before persisting. Client-sent dates are treated as
// preferences, never trusted as-is.
func (s *service) Create(ctx context.Context, actor Actor, input CreatePickupDTO) (*PickupDTO, error) {
	route, err := s.routes.FindByID(ctx, input.RouteID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "route not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to fetch route")
	}
	if !route.Active {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "route is not active")
	}

	location, err := s.locations.FindByID(ctx, input.LocationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "address not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to fetch address")
	}
	if location.UserID != actor.UserID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "address belongs to another user")
	}
	if !route.CoversZip(location.Zip) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "route does not serve this zip code")
	}

	window, err := s.resolveWindow(ctx, route, input.PickupDate, input.DropoffDate, input.DropoffTouched)
	if err != nil {
		return nil, err
	}

	pickup := &models.PickupRequest{
		UserID:      actor.UserID,
		RouteID:     route.ID,
		CompanyID:   route.CompanyID,
		LocationID:  location.ID,
		Status:      enums.PickupStatusPending,
		PickupDate:  window.Pickup,
		DropoffDate: window.Dropoff,
		Notes:       input.Notes,
	}
	if err := s.repo.Create(ctx, pickup); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to create pickup request")
	}

	s.events.Record(ctx, enums.EventPickupRequested, &actor.UserID, &pickup.CompanyID, &pickup.ID, FromModel(pickup))
	return FromModel(pickup), nil
}

func (s *service) Get(ctx context.Context, actor Actor, id uuid.UUID) (*PickupDTO, error) {
	pickup, err := s.findVisible(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	return FromModel(pickup), nil
}

// List scopes the page to what the actor may see: customers their own
// requests, managers their company's, admins everything.
func (s *service) List(ctx context.Context, actor Actor, status *enums.PickupStatus, params pagination.Params) (*PickupListDTO, error) {
	if _, err := pagination.ParseCursor(params.Cursor); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	if status != nil && !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid status filter")
	}

	filters := ListFilters{Status: status}
	switch actor.Role {
	case enums.UserRoleAdmin:
	case enums.UserRoleCompanyManager:
		if actor.CompanyID == nil {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "manager has no company assigned")
		}
		filters.CompanyID = actor.CompanyID
	default:
		filters.UserID = &actor.UserID
	}

	records, nextCursor, err := s.repo.List(ctx, filters, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to list pickup requests")
	}

	out := make([]PickupDTO, 0, len(records))
	for i := range records {
		out = append(out, *FromModel(&records[i]))
	}
	return &PickupListDTO{Pickups: out, NextCursor: nextCursor}, nil
}

// Update lets the owning customer adjust dates and notes while the
// request is still pending. Date changes are re-resolved against the
// route's current schedule.
func (s *service) Update(ctx context.Context, actor Actor, id uuid.UUID, input UpdateInput) (*PickupDTO, error) {
	pickup, err := s.findVisible(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if actor.Role == enums.UserRoleCustomer && pickup.UserID != actor.UserID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "pickup belongs to another user")
	}
	if pickup.Status != enums.PickupStatusPending {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "only pending pickups can be edited")
	}

	if input.Notes != nil {
		pickup.Notes = input.Notes
	}
	if input.PickupDate != nil || input.DropoffDate != nil {
		route, err := s.routes.FindByID(ctx, pickup.RouteID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to fetch route")
		}

		pickupDate := pickup.PickupDate
		if input.PickupDate != nil {
			pickupDate = *input.PickupDate
		}
		dropoffDate := pickup.DropoffDate
		if input.DropoffDate != nil {
			dropoffDate = *input.DropoffDate
		}
		window, err := s.resolveWindow(ctx, route, pickupDate, dropoffDate, input.DropoffTouched || input.DropoffDate != nil)
		if err != nil {
			return nil, err
		}
		pickup.PickupDate = window.Pickup
		pickup.DropoffDate = window.Dropoff
	}

	if err := s.repo.Update(ctx, pickup); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to update pickup request")
	}
	return FromModel(pickup), nil
}

// UpdateStatus sets one pickup's status. Staff only; the status is set
// directly, there is no transition ordering to enforce.
func (s *service) UpdateStatus(ctx context.Context, actor Actor, id uuid.UUID, status enums.PickupStatus) (*PickupDTO, error) {
	if !actor.Role.IsStaff() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "insufficient role to triage pickups")
	}
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid status")
	}

	pickup, err := s.findVisible(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	pickup.Status = status
	if err := s.repo.Update(ctx, pickup); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to update status")
	}

	s.events.Record(ctx, enums.EventPickupStatusChanged, &actor.UserID, &pickup.CompanyID, &pickup.ID, FromModel(pickup))
	return FromModel(pickup), nil
}

// BulkUpdateStatus sets one status on many pickups atomically. Managers
// may only touch their own company's requests; a missing or out-of-scope
// id aborts the whole batch.
func (s *service) BulkUpdateStatus(ctx context.Context, actor Actor, ids []uuid.UUID, status enums.PickupStatus) (*BulkStatusResultDTO, error) {
	if !actor.Role.IsStaff() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "insufficient role to triage pickups")
	}
	if len(ids) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no pickup ids provided")
	}
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid status")
	}

	var companyScope *uuid.UUID
	if actor.Role == enums.UserRoleCompanyManager {
		if actor.CompanyID == nil {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "manager has no company assigned")
		}
		companyScope = actor.CompanyID
	}

	updated, err := s.repo.BulkUpdateStatus(ctx, ids, companyScope, status)
	if err != nil {
		if errors.Is(err, ErrBulkStatusConflict) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "one or more pickups are missing or out of scope")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to update statuses")
	}

	s.events.Record(ctx, enums.EventPickupBulkUpdated, &actor.UserID, actor.CompanyID, nil, map[string]any{
		"ids":    ids,
		"status": status,
	})
	return &BulkStatusResultDTO{Updated: int(updated), Status: status}, nil
}

func (s *service) resolveWindow(ctx context.Context, route *models.Route, pickupDate, dropoffDate time.Time, dropoffTouched bool) (scheduling.Window, error) {
	settings := s.settings.Effective(ctx)
	slaDays := settings.DefaultSLADays
	if route.PricelistID != nil {
		if pricelist, err := s.pricelists.FindByID(ctx, *route.PricelistID); err == nil && pricelist.Active {
			slaDays = pricelist.SLADays
		}
	}

	window, err := scheduling.ResolveWindow(
		route.ServedWeekdays(),
		slaDays,
		settings.MinLeadDays,
		s.now(),
		pickupDate,
		dropoffDate,
		dropoffTouched,
		settings.SearchHorizonDays,
	)
	if err != nil {
		if errors.Is(err, scheduling.ErrNoDateInHorizon) {
			return scheduling.Window{}, pkgerrors.New(pkgerrors.CodeValidation, "no serviceable date within the scheduling horizon")
		}
		return scheduling.Window{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to resolve window")
	}
	return window, nil
}

// findVisible fetches a pickup and enforces role visibility: customers
// see their own, managers their company's, admins everything.
func (s *service) findVisible(ctx context.Context, actor Actor, id uuid.UUID) (*models.PickupRequest, error) {
	pickup, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "pickup request not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to fetch pickup request")
	}

	switch actor.Role {
	case enums.UserRoleAdmin:
		return pickup, nil
	case enums.UserRoleCompanyManager:
		if actor.CompanyID != nil && *actor.CompanyID == pickup.CompanyID {
			return pickup, nil
		}
	default:
		if pickup.UserID == actor.UserID {
			return pickup, nil
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeForbidden, "cannot view this pickup request")
}
