package locations

import (
	"context"
	"errors"

	"github.com/anafuentes/pressroute-backend/pkg/db/models"
	"github.com/anafuentes/pressroute-backend/pkg/enums"
	pkgerrors "github.com/anafuentes/pressroute-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type locationRepo interface {
	Create(ctx context.Context, location *models.Location) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Location, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Location, error)
	Update(ctx context.Context, location *models.Location) error
	ClearDefault(ctx context.Context, userID uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
	CountPickupsForLocation(ctx context.Context, id uuid.UUID) (int64, error)
}

// Actor identifies who is performing an operation, for ownership checks.
type Actor struct {
	UserID uuid.UUID
	Role   enums.UserRole
}

// UpdateInput carries mutable address fields. Nil means leave unchanged.
type UpdateInput struct {
	Name      *string
	Address   *string
	City      *string
	State     *string
	Zip       *string
	IsDefault *bool
}

// Service manages a customer's saved pickup addresses.
type Service interface {
	Create(ctx context.Context, actor Actor, input CreateLocationDTO) (*LocationDTO, error)
	Get(ctx context.Context, actor Actor, id uuid.UUID) (*LocationDTO, error)
	ListMine(ctx context.Context, actor Actor) ([]LocationDTO, error)
	Update(ctx context.Context, actor Actor, id uuid.UUID, input UpdateInput) (*LocationDTO, error)
	Delete(ctx context.Context, actor Actor, id uuid.UUID) error
}

type service struct {
	repo locationRepo
}

func NewService(repo locationRepo) Service {
	return &service{repo: repo}
}

func (s *service) Create(ctx context.Context, actor Actor, input CreateLocationDTO) (*LocationDTO, error) {
	existing, err := s.repo.ListByUser(ctx, actor.UserID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to list addresses")
	}

	// First address always becomes the default.
	makeDefault := input.IsDefault || len(existing) == 0
	if makeDefault && len(existing) > 0 {
		if err := s.repo.ClearDefault(ctx, actor.UserID); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to clear default address")
		}
	}

	location := input.ToModel(actor.UserID)
	location.IsDefault = makeDefault
	if err := s.repo.Create(ctx, location); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to create address")
	}
	return FromModel(location), nil
}

func (s *service) Get(ctx context.Context, actor Actor, id uuid.UUID) (*LocationDTO, error) {
	location, err := s.findOwned(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	return FromModel(location), nil
}

func (s *service) ListMine(ctx context.Context, actor Actor) ([]LocationDTO, error) {
	records, err := s.repo.ListByUser(ctx, actor.UserID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to list addresses")
	}
	out := make([]LocationDTO, 0, len(records))
	for i := range records {
		out = append(out, *FromModel(&records[i]))
	}
	return out, nil
}

func (s *service) Update(ctx context.Context, actor Actor, id uuid.UUID, input UpdateInput) (*LocationDTO, error) {
	location, err := s.findOwned(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		location.Name = *input.Name
	}
	if input.Address != nil {
		location.Address = *input.Address
	}
	if input.City != nil {
		location.City = *input.City
	}
	if input.State != nil {
		location.State = *input.State
	}
	if input.Zip != nil {
		location.Zip = *input.Zip
	}
	if input.IsDefault != nil && *input.IsDefault && !location.IsDefault {
		if err := s.repo.ClearDefault(ctx, location.UserID); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to clear default address")
		}
		location.IsDefault = true
	}

	if err := s.repo.Update(ctx, location); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to update address")
	}
	return FromModel(location), nil
}

func (s *service) Delete(ctx context.Context, actor Actor, id uuid.UUID) error {
	location, err := s.findOwned(ctx, actor, id)
	if err != nil {
		return err
	}

	count, err := s.repo.CountPickupsForLocation(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to check address usage")
	}
	if count > 0 {
		return pkgerrors.New(pkgerrors.CodeConflict, "address is referenced by pickup requests")
	}

	if err := s.repo.Delete(ctx, location.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to delete address")
	}
	return nil
}

func (s *service) findOwned(ctx context.Context, actor Actor, id uuid.UUID) (*models.Location, error) {
	location, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "address not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to fetch address")
	}
	if actor.Role != enums.UserRoleAdmin && location.UserID != actor.UserID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "address belongs to another user")
	}
	return location, nil
}
