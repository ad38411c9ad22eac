package settings

import (
	"context"
	"errors"
	"time"

	"github.com/anafuentes/pressroute-backend/internal/scheduling"
	"github.com/anafuentes/pressroute-backend/pkg/config"
	"github.com/anafuentes/pressroute-backend/pkg/db/models"
	pkgerrors "github.com/anafuentes/pressroute-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DTO is the API shape of the scheduling settings.
type DTO struct {
	DefaultSLADays    int       `json:"default_sla_days"`
	SearchHorizonDays int       `json:"search_horizon_days"`
	MinLeadDays       int       `json:"min_lead_days"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// UpdateInput carries the mutable knobs. Nil means leave unchanged.
type UpdateInput struct {
	DefaultSLADays    *int
	SearchHorizonDays *int
	MinLeadDays       *int
}

// Repository reads and writes the singleton settings row.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Get(ctx context.Context) (*models.DeliverySettings, error) {
	var settings models.DeliverySettings
	if err := r.db.WithContext(ctx).Order("created_at ASC").First(&settings).Error; err != nil {
		return nil, err
	}
	return &settings, nil
}

func (r *Repository) Save(ctx context.Context, settings *models.DeliverySettings) error {
	return r.db.WithContext(ctx).Save(settings).Error
}

type settingsRepo interface {
	Get(ctx context.Context) (*models.DeliverySettings, error)
	Save(ctx context.Context, settings *models.DeliverySettings) error
}

// Service exposes the scheduling settings with in-code defaults when no
// row has been written yet.
type Service interface {
	Get(ctx context.Context) (*DTO, error)
	Update(ctx context.Context, input UpdateInput) (*DTO, error)
	// Effective returns the current knobs without error, falling back
	// to defaults when the row is missing or unreadable.
	Effective(ctx context.Context) models.DeliverySettings
}

type service struct {
	repo     settingsRepo
	defaults models.DeliverySettings
}

func NewService(repo settingsRepo, cfg config.SchedulingConfig) Service {
	return &service{repo: repo, defaults: defaultsFrom(cfg)}
}

// defaultsFrom seeds the fallback knobs from the environment config,
// keeping the built-in values for anything left unset.
func defaultsFrom(cfg config.SchedulingConfig) models.DeliverySettings {
	d := models.DeliverySettings{
		DefaultSLADays:    2,
		SearchHorizonDays: scheduling.DefaultSearchHorizonDays,
		MinLeadDays:       scheduling.DefaultMinLeadDays,
	}
	if cfg.DefaultSLADays > 0 {
		d.DefaultSLADays = cfg.DefaultSLADays
	}
	if cfg.SearchHorizonDays > 0 {
		d.SearchHorizonDays = cfg.SearchHorizonDays
	}
	if cfg.MinLeadDays > 0 {
		d.MinLeadDays = cfg.MinLeadDays
	}
	return d
}

func (s *service) Get(ctx context.Context) (*DTO, error) {
	settings, err := s.repo.Get(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			d := s.defaults
			return fromModel(&d), nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to fetch settings")
	}
	return fromModel(settings), nil
}

func (s *service) Update(ctx context.Context, input UpdateInput) (*DTO, error) {
	settings, err := s.repo.Get(ctx)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to fetch settings")
		}
		d := s.defaults
		d.ID = uuid.New()
		settings = &d
	}

	if input.DefaultSLADays != nil {
		settings.DefaultSLADays = *input.DefaultSLADays
	}
	if input.SearchHorizonDays != nil {
		settings.SearchHorizonDays = *input.SearchHorizonDays
	}
	if input.MinLeadDays != nil {
		settings.MinLeadDays = *input.MinLeadDays
	}
	if settings.DefaultSLADays < 0 || settings.SearchHorizonDays < 1 || settings.MinLeadDays < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "settings values out of range")
	}

	if err := s.repo.Save(ctx, settings); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to save settings")
	}
	return fromModel(settings), nil
}

func (s *service) Effective(ctx context.Context) models.DeliverySettings {
	settings, err := s.repo.Get(ctx)
	if err != nil {
		return s.defaults
	}
	return *settings
}

func fromModel(m *models.DeliverySettings) *DTO {
	return &DTO{
		DefaultSLADays:    m.DefaultSLADays,
		SearchHorizonDays: m.SearchHorizonDays,
		MinLeadDays:       m.MinLeadDays,
		UpdatedAt:         m.UpdatedAt,
	}
}
