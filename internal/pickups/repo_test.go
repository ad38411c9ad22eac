package pickups

import (
	"context"
	"testing"
	"time"

	"github.com/anafuentes/pressroute-backend/pkg/db/models"
	"github.com/anafuentes/pressroute-backend/pkg/enums"
	"github.com/anafuentes/pressroute-backend/pkg/pagination"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupPickupsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	pickupRequests := `
CREATE TABLE IF NOT EXISTS pickup_requests (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  route_id TEXT NOT NULL,
  company_id TEXT NOT NULL,
  location_id TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending',
  pickup_date DATETIME NOT NULL,
  dropoff_date DATETIME NOT NULL,
  notes TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(pickupRequests).Error)
	return db
}

func newPickup(t *testing.T, db *gorm.DB, userID, companyID uuid.UUID, status enums.PickupStatus, created time.Time) *models.PickupRequest {
	t.Helper()

	pickup := &models.PickupRequest{
		ID:          uuid.New(),
		UserID:      userID,
		RouteID:     uuid.New(),
		CompanyID:   companyID,
		LocationID:  uuid.New(),
		Status:      status,
		PickupDate:  created.AddDate(0, 0, 1),
		DropoffDate: created.AddDate(0, 0, 3),
		CreatedAt:   created,
		UpdatedAt:   created,
	}
	require.NoError(t, db.Create(pickup).Error)
	return pickup
}

func TestRepositoryList_userScopeAndPagination(t *testing.T) {
	db := setupPickupsTestDB(t)
	repo := NewRepository(db)

	userID := uuid.New()
	companyID := uuid.New()
	now := time.Now().UTC()
	newPickup(t, db, userID, companyID, enums.PickupStatusPending, now.Add(-time.Hour))
	newest := newPickup(t, db, userID, companyID, enums.PickupStatusPending, now)
	newPickup(t, db, uuid.New(), companyID, enums.PickupStatusPending, now)

	page, cursor, err := repo.List(context.Background(), ListFilters{UserID: &userID}, pagination.Params{Limit: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, newest.ID, page[0].ID)
	assert.NotEmpty(t, cursor)

	second, cursor2, err := repo.List(context.Background(), ListFilters{UserID: &userID}, pagination.Params{Limit: 1, Cursor: cursor})
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.NotEqual(t, newest.ID, second[0].ID)
	assert.Empty(t, cursor2)
}

func TestRepositoryList_statusFilter(t *testing.T) {
	db := setupPickupsTestDB(t)
	repo := NewRepository(db)

	userID := uuid.New()
	companyID := uuid.New()
	now := time.Now().UTC()
	newPickup(t, db, userID, companyID, enums.PickupStatusPending, now)
	confirmed := newPickup(t, db, userID, companyID, enums.PickupStatusConfirmed, now)

	status := enums.PickupStatusConfirmed
	page, _, err := repo.List(context.Background(), ListFilters{UserID: &userID, Status: &status}, pagination.Params{Limit: 10})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, confirmed.ID, page[0].ID)
}

func TestRepositoryBulkUpdateStatus_success(t *testing.T) {
	db := setupPickupsTestDB(t)
	repo := NewRepository(db)

	companyID := uuid.New()
	now := time.Now().UTC()
	first := newPickup(t, db, uuid.New(), companyID, enums.PickupStatusPending, now)
	second := newPickup(t, db, uuid.New(), companyID, enums.PickupStatusPending, now)

	updated, err := repo.BulkUpdateStatus(
		context.Background(),
		[]uuid.UUID{first.ID, second.ID},
		&companyID,
		enums.PickupStatusConfirmed,
	)
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated)

	found, err := repo.FindByID(context.Background(), first.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.PickupStatusConfirmed, found.Status)
}

func TestRepositoryBulkUpdateStatus_abortsOnOutOfScopeRow(t *testing.T) {
	db := setupPickupsTestDB(t)
	repo := NewRepository(db)

	companyID := uuid.New()
	now := time.Now().UTC()
	inScope := newPickup(t, db, uuid.New(), companyID, enums.PickupStatusPending, now)
	foreign := newPickup(t, db, uuid.New(), uuid.New(), enums.PickupStatusPending, now)

	_, err := repo.BulkUpdateStatus(
		context.Background(),
		[]uuid.UUID{inScope.ID, foreign.ID},
		&companyID,
		enums.PickupStatusConfirmed,
	)
	require.ErrorIs(t, err, ErrBulkStatusConflict)

	// The in-scope row must not have been updated either.
	found, err := repo.FindByID(context.Background(), inScope.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.PickupStatusPending, found.Status)
}

func TestRepositoryBulkUpdateStatus_abortsOnMissingID(t *testing.T) {
	db := setupPickupsTestDB(t)
	repo := NewRepository(db)

	pickup := newPickup(t, db, uuid.New(), uuid.New(), enums.PickupStatusPending, time.Now().UTC())

	_, err := repo.BulkUpdateStatus(
		context.Background(),
		[]uuid.UUID{pickup.ID, uuid.New()},
		nil,
		enums.PickupStatusCancelled,
	)
	require.ErrorIs(t, err, ErrBulkStatusConflict)
}
