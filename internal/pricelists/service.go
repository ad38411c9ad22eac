package pricelists

import (
	"context"
	"errors"

	"github.com/anafuentes/pressroute-backend/pkg/db/models"
	"github.com/anafuentes/pressroute-backend/pkg/enums"
	pkgerrors "github.com/anafuentes/pressroute-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type pricelistRepo interface {
	Create(ctx context.Context, pricelist *models.Pricelist) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Pricelist, error)
	ListByCompany(ctx context.Context, companyID uuid.UUID) ([]models.Pricelist, error)
	Update(ctx context.Context, pricelist *models.Pricelist) error
	CountRoutesForPricelist(ctx context.Context, id uuid.UUID) (int64, error)
}

// Actor identifies who is performing an operation, for company scoping.
type Actor struct {
	UserID    uuid.UUID
	Role      enums.UserRole
	CompanyID *uuid.UUID
}

// UpdateInput carries mutable pricelist fields. Nil means leave unchanged.
type UpdateInput struct {
	Name        *string
	SLADays     *int
	BasePrice   *decimal.Decimal
	PerBagPrice *decimal.Decimal
	Active      *bool
}

// Service manages pricelists for dry-cleaning companies.
type Service interface {
	Create(ctx context.Context, actor Actor, input CreatePricelistDTO) (*PricelistDTO, error)
	Get(ctx context.Context, actor Actor, id uuid.UUID) (*PricelistDTO, error)
	ListByCompany(ctx context.Context, actor Actor, companyID uuid.UUID) ([]PricelistDTO, error)
	Update(ctx context.Context, actor Actor, id uuid.UUID, input UpdateInput) (*PricelistDTO, error)
	Deactivate(ctx context.Context, actor Actor, id uuid.UUID) error
}

type service struct {
	repo pricelistRepo
}

func NewService(repo pricelistRepo) Service {
	return &service{repo: repo}
}

func (s *service) Create(ctx context.Context, actor Actor, input CreatePricelistDTO) (*PricelistDTO, error) {
	if err := checkCompanyScope(actor, input.CompanyID); err != nil {
		return nil, err
	}
	if err := validatePricing(input.SLADays, input.BasePrice, input.PerBagPrice); err != nil {
		return nil, err
	}

	pricelist := input.ToModel()
	if err := s.repo.Create(ctx, pricelist); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to create pricelist")
	}
	return FromModel(pricelist), nil
}

func (s *service) Get(ctx context.Context, actor Actor, id uuid.UUID) (*PricelistDTO, error) {
	pricelist, err := s.findScoped(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	return FromModel(pricelist), nil
}

func (s *service) ListByCompany(ctx context.Context, actor Actor, companyID uuid.UUID) ([]PricelistDTO, error) {
	if err := checkCompanyScope(actor, companyID); err != nil {
		return nil, err
	}

	records, err := s.repo.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to list pricelists")
	}
	out := make([]PricelistDTO, 0, len(records))
	for i := range records {
		out = append(out, *FromModel(&records[i]))
	}
	return out, nil
}

func (s *service) Update(ctx context.Context, actor Actor, id uuid.UUID, input UpdateInput) (*PricelistDTO, error) {
	pricelist, err := s.findScoped(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		pricelist.Name = *input.Name
	}
	if input.SLADays != nil {
		pricelist.SLADays = *input.SLADays
	}
	if input.BasePrice != nil {
		pricelist.BasePrice = *input.BasePrice
	}
	if input.PerBagPrice != nil {
		pricelist.PerBagPrice = *input.PerBagPrice
	}
	if input.Active != nil {
		pricelist.Active = *input.Active
	}
	if err := validatePricing(pricelist.SLADays, pricelist.BasePrice, pricelist.PerBagPrice); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, pricelist); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to update pricelist")
	}
	return FromModel(pricelist), nil
}

func (s *service) Deactivate(ctx context.Context, actor Actor, id uuid.UUID) error {
	pricelist, err := s.findScoped(ctx, actor, id)
	if err != nil {
		return err
	}

	count, err := s.repo.CountRoutesForPricelist(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to check pricelist usage")
	}
	if count > 0 {
		return pkgerrors.New(pkgerrors.CodeConflict, "pricelist is attached to routes")
	}

	pricelist.Active = false
	if err := s.repo.Update(ctx, pricelist); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to deactivate pricelist")
	}
	return nil
}

func (s *service) findScoped(ctx context.Context, actor Actor, id uuid.UUID) (*models.Pricelist, error) {
	pricelist, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "pricelist not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to fetch pricelist")
	}
	if err := checkCompanyScope(actor, pricelist.CompanyID); err != nil {
		return nil, err
	}
	return pricelist, nil
}

func checkCompanyScope(actor Actor, companyID uuid.UUID) error {
	if actor.Role == enums.UserRoleAdmin {
		return nil
	}
	if actor.Role == enums.UserRoleCompanyManager && actor.CompanyID != nil && *actor.CompanyID == companyID {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeForbidden, "pricelist belongs to another company")
}

func validatePricing(slaDays int, basePrice, perBagPrice decimal.Decimal) error {
	if slaDays < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "sla days cannot be negative")
	}
	if basePrice.IsNegative() || perBagPrice.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "prices cannot be negative")
	}
	return nil
}
