package auth

import (
	"context"
	"testing"
	"time"

	"github.com/anafuentes/pressroute-backend/pkg/db/models"
	"github.com/anafuentes/pressroute-backend/pkg/security"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupOTPTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	otps := `
CREATE TABLE IF NOT EXISTS email_otps (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL,
  code_hash TEXT NOT NULL,
  attempts INTEGER NOT NULL DEFAULT 0,
  consumed_at DATETIME,
  expires_at DATETIME NOT NULL,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(otps).Error)
	return db
}

func seedOTP(t *testing.T, db *gorm.DB, email string, created time.Time) *models.EmailOTP {
	t.Helper()
	otp := &models.EmailOTP{
		ID:        uuid.New(),
		Email:     email,
		CodeHash:  security.HashOTPCode("482913"),
		ExpiresAt: created.Add(10 * time.Minute),
		CreatedAt: created,
	}
	require.NoError(t, db.Create(otp).Error)
	return otp
}

func TestOTPRepositoryFindLatest(t *testing.T) {
	db := setupOTPTestDB(t)
	repo := NewOTPRepository(db)
	ctx := context.Background()

	email := uuid.NewString() + "@example.com"
	base := time.Date(2026, time.March, 1, 9, 0, 0, 0, time.UTC)
	seedOTP(t, db, email, base)
	newest := seedOTP(t, db, email, base.Add(2*time.Minute))

	found, err := repo.FindLatest(ctx, email)
	require.NoError(t, err)
	assert.Equal(t, newest.ID, found.ID)

	_, err = repo.FindLatest(ctx, "absent@example.com")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestOTPRepositoryAttemptsAndConsume(t *testing.T) {
	db := setupOTPTestDB(t)
	repo := NewOTPRepository(db)
	ctx := context.Background()

	email := uuid.NewString() + "@example.com"
	base := time.Date(2026, time.March, 1, 9, 0, 0, 0, time.UTC)
	otp := seedOTP(t, db, email, base)

	require.NoError(t, repo.IncrementAttempts(ctx, otp.ID))
	require.NoError(t, repo.IncrementAttempts(ctx, otp.ID))

	found, err := repo.FindLatest(ctx, email)
	require.NoError(t, err)
	assert.Equal(t, 2, found.Attempts)
	assert.Nil(t, found.ConsumedAt)

	consumedAt := base.Add(3 * time.Minute)
	require.NoError(t, repo.Consume(ctx, otp.ID, consumedAt))

	found, err = repo.FindLatest(ctx, email)
	require.NoError(t, err)
	require.NotNil(t, found.ConsumedAt)
	assert.WithinDuration(t, consumedAt, *found.ConsumedAt, time.Second)
}

func TestOTPRepositoryInvalidateActive(t *testing.T) {
	db := setupOTPTestDB(t)
	repo := NewOTPRepository(db)
	ctx := context.Background()

	email := uuid.NewString() + "@example.com"
	otherEmail := uuid.NewString() + "@example.com"
	base := time.Date(2026, time.March, 1, 9, 0, 0, 0, time.UTC)
	first := seedOTP(t, db, email, base)
	second := seedOTP(t, db, email, base.Add(time.Minute))
	bystander := seedOTP(t, db, otherEmail, base)

	require.NoError(t, repo.InvalidateActive(ctx, email, base.Add(2*time.Minute)))

	var rows []models.EmailOTP
	require.NoError(t, db.Where("id IN ?", []uuid.UUID{first.ID, second.ID}).Find(&rows).Error)
	require.Len(t, rows, 2)
	for _, row := range rows {
		assert.NotNil(t, row.ConsumedAt)
	}

	var untouched models.EmailOTP
	require.NoError(t, db.First(&untouched, "id = ?", bystander.ID).Error)
	assert.Nil(t, untouched.ConsumedAt)
}
