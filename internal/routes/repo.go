package routes

import (
	"context"

	"github.com/anafuentes/pressroute-backend/pkg/db/models"
	"github.com/anafuentes/pressroute-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository provides data access for delivery routes.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, route *models.Route) error {
	return r.db.WithContext(ctx).Create(route).Error
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Route, error) {
	var route models.Route
	if err := r.db.WithContext(ctx).First(&route, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &route, nil
}

// ListByCompany returns a company's routes, active first then newest.
func (r *Repository) ListByCompany(ctx context.Context, companyID uuid.UUID) ([]models.Route, error) {
	var records []models.Route
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

// FindActiveByZip returns every active route whose zip_codes array
// contains the given zip.
func (r *Repository) FindActiveByZip(ctx context.Context, zip string) ([]models.Route, error) {
	var records []models.Route
	err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Where("? = ANY(zip_codes)", zip).
		Order("created_at DESC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *Repository) Update(ctx context.Context, route *models.Route) error {
	return r.db.WithContext(ctx).Save(route).Error
}

// CountPendingPickups reports pickup requests on the route that have
// not reached a terminal status.
func (r *Repository) CountPendingPickups(ctx context.Context, id uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.PickupRequest{}).
		Where("route_id = ?", id).
		Where("status IN ?", []enums.PickupStatus{
			enums.PickupStatusPending,
			enums.PickupStatusConfirmed,
			enums.PickupStatusInTransit,
		}).
		Count(&count).Error
	return count, err
}
