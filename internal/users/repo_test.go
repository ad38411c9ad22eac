package users

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

func setupUsersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	users := `
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  first_name TEXT NOT NULL,
  last_name TEXT NOT NULL,
  phone TEXT,
  role TEXT NOT NULL DEFAULT 'customer',
  company_id TEXT,
  is_active INTEGER NOT NULL DEFAULT 1,
  last_login_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(users).Error)
	return db
}

func newUser(t *testing.T, db *gorm.DB, email string, role enums.UserRole, companyID *uuid.UUID, created time.Time) *models.User {
	t.Helper()

	user := &models.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: "hash",
		FirstName:    "Test",
		LastName:     "User",
		Role:         role,
		CompanyID:    companyID,
		IsActive:     true,
		CreatedAt:    created,
		UpdatedAt:    created,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func TestRepositoryFindByEmail(t *testing.T) {
	db := setupUsersTestDB(t)
	repo := NewRepository(db)

	now := time.Now().UTC()
	created := newUser(t, db, "ana@example.com", enums.UserRoleCustomer, nil, now)

	found, err := repo.FindByEmail(context.Background(), "ana@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
	assert.Equal(t, enums.UserRoleCustomer, found.Role)

	_, err = repo.FindByEmail(context.Background(), "missing@example.com")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepositoryList_pagination(t *testing.T) {
	db := setupUsersTestDB(t)
	repo := NewRepository(db)

	companyID := uuid.New()
	now := time.Now().UTC()
	newUser(t, db, "older@example.com", enums.UserRoleCustomer, &companyID, now.Add(-time.Hour))
	newer := newUser(t, db, "newer@example.com", enums.UserRoleCustomer, &companyID, now)

	page, cursor, err := repo.List(context.Background(), &companyID, pagination.Params{Limit: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, newer.ID, page[0].ID)
	assert.NotEmpty(t, cursor)

	second, cursor2, err := repo.List(context.Background(), &companyID, pagination.Params{Limit: 1, Cursor: cursor})
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, "older@example.com", second[0].Email)
	assert.Empty(t, cursor2)
}

func TestRepositoryList_companyScope(t *testing.T) {
	db := setupUsersTestDB(t)
	repo := NewRepository(db)

	companyID := uuid.New()
	now := time.Now().UTC()
	inCompany := newUser(t, db, "staff@example.com", enums.UserRoleCompanyManager, &companyID, now)
	newUser(t, db, "outsider@example.com", enums.UserRoleCustomer, nil, now)

	page, _, err := repo.List(context.Background(), &companyID, pagination.Params{Limit: 10})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, inCompany.ID, page[0].ID)
}

func TestRepositoryUpdatePasswordHashAndLastLogin(t *testing.T) {
	db := setupUsersTestDB(t)
	repo := NewRepository(db)

	now := time.Now().UTC()
	user := newUser(t, db, "login@example.com", enums.UserRoleCustomer, nil, now)

	require.NoError(t, repo.UpdatePasswordHash(context.Background(), user.ID, "newhash"))
	loginAt := now.Add(time.Minute)
	require.NoError(t, repo.UpdateLastLogin(context.Background(), user.ID, loginAt))

	found, err := repo.FindByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, "newhash", found.PasswordHash)
	require.NotNil(t, found.LastLoginAt)
	assert.WithinDuration(t, loginAt, *found.LastLoginAt, time.Second)
}

func TestRepositoryDeactivate(t *testing.T) {
	db := setupUsersTestDB(t)
	repo := NewRepository(db)

	user := newUser(t, db, "gone@example.com", enums.UserRoleCustomer, nil, time.Now().UTC())
	require.NoError(t, repo.Deactivate(context.Background(), user.ID))

	found, err := repo.FindByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.False(t, found.IsActive)
}
