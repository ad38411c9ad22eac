package settings

import (
	"context"
	"testing"

	"github.com/anafuentes/pressroute-backend/pkg/config"
	"github.com/anafuentes/pressroute-backend/pkg/db/models"
	pkgerrors "github.com/anafuentes/pressroute-backend/pkg/errors"
	"gorm.io/gorm"
)

type stubSettingsRepo struct {
	settings *models.DeliverySettings
	saved    *models.DeliverySettings
}

func (s *stubSettingsRepo) Get(ctx context.Context) (*models.DeliverySettings, error) {
	if s.settings == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return s.settings, nil
}

func (s *stubSettingsRepo) Save(ctx context.Context, settings *models.DeliverySettings) error {
	s.saved = settings
	return nil
}

func TestServiceGetFallsBackToDefaults(t *testing.T) {
	svc := NewService(&stubSettingsRepo{}, config.SchedulingConfig{})

	dto, err := svc.Get(context.Background())
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if dto.DefaultSLADays != 2 {
		t.Fatalf("expected default sla 2, got %d", dto.DefaultSLADays)
	}
	if dto.SearchHorizonDays != 42 {
		t.Fatalf("expected horizon 42, got %d", dto.SearchHorizonDays)
	}
	if dto.MinLeadDays != 1 {
		t.Fatalf("expected lead 1, got %d", dto.MinLeadDays)
	}
}

func TestServiceUpdateCreatesRowWhenMissing(t *testing.T) {
	repo := &stubSettingsRepo{}
	svc := NewService(repo, config.SchedulingConfig{})

	sla := 3
	dto, err := svc.Update(context.Background(), UpdateInput{DefaultSLADays: &sla})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if dto.DefaultSLADays != 3 {
		t.Fatalf("expected sla 3, got %d", dto.DefaultSLADays)
	}
	if repo.saved == nil {
		t.Fatal("expected a row to be saved")
	}
	if repo.saved.SearchHorizonDays != 42 {
		t.Fatalf("expected untouched horizon default, got %d", repo.saved.SearchHorizonDays)
	}
}

func TestServiceUpdateRejectsOutOfRange(t *testing.T) {
	svc := NewService(&stubSettingsRepo{}, config.SchedulingConfig{})

	horizon := 0
	_, err := svc.Update(context.Background(), UpdateInput{SearchHorizonDays: &horizon})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestServiceDefaultsSeededFromConfig(t *testing.T) {
	cfg := config.SchedulingConfig{SearchHorizonDays: 60, DefaultSLADays: 4, MinLeadDays: 2}
	svc := NewService(&stubSettingsRepo{}, cfg)

	settings := svc.Effective(context.Background())
	if settings.SearchHorizonDays != 60 || settings.DefaultSLADays != 4 || settings.MinLeadDays != 2 {
		t.Fatalf("expected config-seeded defaults, got %+v", settings)
	}

	dto, err := svc.Get(context.Background())
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if dto.MinLeadDays != 2 {
		t.Fatalf("expected lead 2 from config, got %d", dto.MinLeadDays)
	}
}

func TestServiceEffectiveNeverErrors(t *testing.T) {
	svc := NewService(&stubSettingsRepo{}, config.SchedulingConfig{})

	settings := svc.Effective(context.Background())
	if settings.SearchHorizonDays != 42 {
		t.Fatalf("expected defaults, got %+v", settings)
	}
}
