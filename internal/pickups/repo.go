package pickups

import (
	"context"
	"errors"

	"github.com/anafuentes/pressroute-backend/pkg/db/models"
	"github.com/anafuentes/pressroute-backend/pkg/enums"
	"github.com/anafuentes/pressroute-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrBulkStatusConflict aborts a bulk update when any listed pickup is
// missing or outside the caller's company scope.
var ErrBulkStatusConflict = errors.New("one or more pickups are missing or out of scope")

// ListFilters narrows a pickup page. Nil fields are ignored.
type ListFilters struct {
	UserID    *uuid.UUID
	CompanyID *uuid.UUID
	RouteID   *uuid.UUID
	Status    *enums.PickupStatus
}

// Repository provides data access for pickup requests.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, pickup *models.PickupRequest) error {
	return r.db.WithContext(ctx).Create(pickup).Error
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.PickupRequest, error) {
	var pickup models.PickupRequest
	if err := r.db.WithContext(ctx).First(&pickup, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &pickup, nil
}

// List returns a filtered page of pickup requests newest-first.
func (r *Repository) List(ctx context.Context, filters ListFilters, params pagination.Params) ([]models.PickupRequest, string, error) {
	limit := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).Model(&models.PickupRequest{})
	if filters.UserID != nil {
		query = query.Where("user_id = ?", *filters.UserID)
	}
	if filters.CompanyID != nil {
		query = query.Where("company_id = ?", *filters.CompanyID)
	}
	if filters.RouteID != nil {
		query = query.Where("route_id = ?", *filters.RouteID)
	}
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, "", err
	}
	if cursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var records []models.PickupRequest
	if err := query.
		Order("created_at DESC").
		Order("id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit)).
		Find(&records).Error; err != nil {
		return nil, "", err
	}

	nextCursor := ""
	if len(records) > limit {
		records = records[:limit]
		last := records[len(records)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	return records, nextCursor, nil
}

func (r *Repository) Update(ctx context.Context, pickup *models.PickupRequest) error {
	return r.db.WithContext(ctx).Save(pickup).Error
}

// BulkUpdateStatus sets the status on every listed pickup in one
// transaction. An optional companyID scopes the batch; if any id is
// missing or out of scope the whole batch aborts.
func (r *Repository) BulkUpdateStatus(ctx context.Context, ids []uuid.UUID, companyID *uuid.UUID, to enums.PickupStatus) (int64, error) {
	var updated int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		scoped := func() *gorm.DB {
			query := tx.Model(&models.PickupRequest{}).Where("id IN ?", ids)
			if companyID != nil {
				query = query.Where("company_id = ?", *companyID)
			}
			return query
		}

		var eligible int64
		if err := scoped().Count(&eligible).Error; err != nil {
			return err
		}
		if eligible != int64(len(ids)) {
			return ErrBulkStatusConflict
		}

		result := scoped().Update("status", to)
		if result.Error != nil {
			return result.Error
		}
		updated = result.RowsAffected
		return nil
	})
	return updated, err
}
