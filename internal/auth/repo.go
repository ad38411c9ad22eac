package auth

import (
	"context"
	"time"

	"github.com/anafuentes/pressroute-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OTPRepository persists emailed sign-in codes.
type OTPRepository struct {
	db *gorm.DB
}

func NewOTPRepository(db *gorm.DB) *OTPRepository {
	return &OTPRepository{db: db}
}

func (r *OTPRepository) Create(ctx context.Context, otp *models.EmailOTP) error {
	return r.db.WithContext(ctx).Create(otp).Error
}

// FindLatest returns the most recently issued code for the email,
// consumed or not. Staleness checks belong to the service.
func (r *OTPRepository) FindLatest(ctx context.Context, email string) (*models.EmailOTP, error) {
	var otp models.EmailOTP
	err := r.db.WithContext(ctx).
		Where("email = ?", email).
		Order("created_at DESC").
		First(&otp).Error
	if err != nil {
		return nil, err
	}
	return &otp, nil
}

func (r *OTPRepository) IncrementAttempts(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.EmailOTP{}).
		Where("id = ?", id).
		Update("attempts", gorm.Expr("attempts + 1")).Error
}

// Consume marks the code as spent so a second check with the same code fails.
func (r *OTPRepository) Consume(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.EmailOTP{}).
		Where("id = ?", id).
		Update("consumed_at", at).Error
}

// InvalidateActive retires every outstanding code for the email. Issuing a
// new code supersedes the old ones.
func (r *OTPRepository) InvalidateActive(ctx context.Context, email string, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.EmailOTP{}).
		Where("email = ? AND consumed_at IS NULL", email).
		Update("consumed_at", at).Error
}
