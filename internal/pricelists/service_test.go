package pricelists

import (
	"context"
	"testing"

	"github.com/anafuentes/pressroute-backend/pkg/db/models"
	"github.com/anafuentes/pressroute-backend/pkg/enums"
	pkgerrors "github.com/anafuentes/pressroute-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type stubPricelistRepo struct {
	pricelist  *models.Pricelist
	routeCount int64

	created *models.Pricelist
	updated *models.Pricelist
}

func (s *stubPricelistRepo) Create(ctx context.Context, pricelist *models.Pricelist) error {
	s.created = pricelist
	return nil
}

func (s *stubPricelistRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Pricelist, error) {
	if s.pricelist == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return s.pricelist, nil
}

func (s *stubPricelistRepo) ListByCompany(ctx context.Context, companyID uuid.UUID) ([]models.Pricelist, error) {
	if s.pricelist == nil {
		return nil, nil
	}
	return []models.Pricelist{*s.pricelist}, nil
}

func (s *stubPricelistRepo) Update(ctx context.Context, pricelist *models.Pricelist) error {
	s.updated = pricelist
	return nil
}

func (s *stubPricelistRepo) CountRoutesForPricelist(ctx context.Context, id uuid.UUID) (int64, error) {
	return s.routeCount, nil
}

func managerActor(companyID uuid.UUID) Actor {
	return Actor{UserID: uuid.New(), Role: enums.UserRoleCompanyManager, CompanyID: &companyID}
}

func TestServiceCreateSuccess(t *testing.T) {
	companyID := uuid.New()
	repo := &stubPricelistRepo{}
	svc := NewService(repo)

	dto, err := svc.Create(context.Background(), managerActor(companyID), CreatePricelistDTO{
		CompanyID:   companyID,
		Name:        "Standard",
		SLADays:     2,
		BasePrice:   decimal.NewFromFloat(9.99),
		PerBagPrice: decimal.NewFromFloat(4.50),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if dto.SLADays != 2 {
		t.Fatalf("expected sla days 2, got %d", dto.SLADays)
	}
	if !dto.Active {
		t.Fatal("expected new pricelist to be active")
	}
}

func TestServiceCreateOtherCompanyForbidden(t *testing.T) {
	svc := NewService(&stubPricelistRepo{})

	_, err := svc.Create(context.Background(), managerActor(uuid.New()), CreatePricelistDTO{
		CompanyID: uuid.New(),
		Name:      "Standard",
		SLADays:   2,
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestServiceCreateRejectsNegativePrice(t *testing.T) {
	companyID := uuid.New()
	svc := NewService(&stubPricelistRepo{})

	_, err := svc.Create(context.Background(), managerActor(companyID), CreatePricelistDTO{
		CompanyID: companyID,
		Name:      "Standard",
		SLADays:   2,
		BasePrice: decimal.NewFromFloat(-1),
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestServiceDeactivateBlockedByRoutes(t *testing.T) {
	companyID := uuid.New()
	repo := &stubPricelistRepo{
		pricelist:  &models.Pricelist{ID: uuid.New(), CompanyID: companyID, Active: true},
		routeCount: 1,
	}
	svc := NewService(repo)

	err := svc.Deactivate(context.Background(), managerActor(companyID), repo.pricelist.ID)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestServiceUpdateSLAAndPrices(t *testing.T) {
	companyID := uuid.New()
	repo := &stubPricelistRepo{
		pricelist: &models.Pricelist{ID: uuid.New(), CompanyID: companyID, Name: "Standard", SLADays: 2, Active: true},
	}
	svc := NewService(repo)

	sla := 3
	price := decimal.NewFromFloat(12.00)
	dto, err := svc.Update(context.Background(), managerActor(companyID), repo.pricelist.ID, UpdateInput{
		SLADays:   &sla,
		BasePrice: &price,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if dto.SLADays != 3 {
		t.Fatalf("expected sla days 3, got %d", dto.SLADays)
	}
	if !dto.BasePrice.Equal(price) {
		t.Fatalf("expected base price %s, got %s", price, dto.BasePrice)
	}
}
