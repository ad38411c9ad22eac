package pricelists

import (
	"context"

	"github.com/anafuentes/pressroute-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository provides data access for company pricelists.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, pricelist *models.Pricelist) error {
	return r.db.WithContext(ctx).Create(pricelist).Error
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Pricelist, error) {
	var pricelist models.Pricelist
	if err := r.db.WithContext(ctx).First(&pricelist, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &pricelist, nil
}

// ListByCompany returns a company's pricelists, active first then newest.
func (r *Repository) ListByCompany(ctx context.Context, companyID uuid.UUID) ([]models.Pricelist, error) {
	var records []models.Pricelist
	err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("active DESC").
		Order("created_at DESC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *Repository) Update(ctx context.Context, pricelist *models.Pricelist) error {
	return r.db.WithContext(ctx).Save(pricelist).Error
}

// CountRoutesForPricelist reports how many routes reference the pricelist.
func (r *Repository) CountRoutesForPricelist(ctx context.Context, id uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Route{}).
		Where("pricelist_id = ?", id).
		Count(&count).Error
	return count, err
}
