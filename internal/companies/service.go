package companies

import (
	"context"
	"errors"

	"github.com/anafuentes/pressroute-backend/pkg/db/models"
	"github.com/anafuentes/pressroute-backend/pkg/enums"
	pkgerrors "github.com/anafuentes/pressroute-backend/pkg/errors"
	"github.com/anafuentes/pressroute-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type companyRepo interface {
	Create(ctx context.Context, company *models.Company) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Company, error)
	FindByName(ctx context.Context, name string) (*models.Company, error)
	List(ctx context.Context, activeOnly bool, params pagination.Params) ([]models.Company, string, error)
	Update(ctx context.Context, company *models.Company) error
	Deactivate(ctx context.Context, id uuid.UUID) error
}

type managerRepo interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
}

// UpdateInput carries mutable company fields. Nil means leave unchanged.
type UpdateInput struct {
	Name        *string
	Description *string
}

// Service manages companies and their manager assignments.
type Service interface {
	Create(ctx context.Context, input CreateCompanyDTO) (*CompanyDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*CompanyDTO, error)
	List(ctx context.Context, activeOnly bool, params pagination.Params) (*CompanyListDTO, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*CompanyDTO, error)
	AssignManager(ctx context.Context, companyID, userID uuid.UUID) (*CompanyDTO, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo  companyRepo
	users managerRepo
}

func NewService(repo companyRepo, users managerRepo) Service {
	return &service{repo: repo, users: users}
}

func (s *service) Create(ctx context.Context, input CreateCompanyDTO) (*CompanyDTO, error) {
	if _, err := s.repo.FindByName(ctx, input.Name); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "company name already taken")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to check company name")
	}

	company := input.ToModel()
	if err := s.repo.Create(ctx, company); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to create company")
	}
	return FromModel(company), nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*CompanyDTO, error) {
	company, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return FromModel(company), nil
}

func (s *service) List(ctx context.Context, activeOnly bool, params pagination.Params) (*CompanyListDTO, error) {
	if _, err := pagination.ParseCursor(params.Cursor); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	records, nextCursor, err := s.repo.List(ctx, activeOnly, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to list companies")
	}

	out := make([]CompanyDTO, 0, len(records))
	for i := range records {
		out = append(out, *FromModel(&records[i]))
	}
	return &CompanyListDTO{Companies: out, NextCursor: nextCursor}, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*CompanyDTO, error) {
	company, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil && *input.Name != company.Name {
		if _, err := s.repo.FindByName(ctx, *input.Name); err == nil {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "company name already taken")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to check company name")
		}
		company.Name = *input.Name
	}
	if input.Description != nil {
		company.Description = input.Description
	}

	if err := s.repo.Update(ctx, company); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to update company")
	}
	return FromModel(company), nil
}

// AssignManager attaches a user to the company as its manager, promoting
// the user's role when needed.
func (s *service) AssignManager(ctx context.Context, companyID, userID uuid.UUID) (*CompanyDTO, error) {
	company, err := s.find(ctx, companyID)
	if err != nil {
		return nil, err
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to fetch user")
	}
	if user.Role == enums.UserRoleAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "admins cannot manage a company")
	}

	user.Role = enums.UserRoleCompanyManager
	user.CompanyID = &company.ID
	if err := s.users.Update(ctx, user); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to promote manager")
	}

	company.ManagerID = &user.ID
	if err := s.repo.Update(ctx, company); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to assign manager")
	}
	return FromModel(company), nil
}

func (s *service) Deactivate(ctx context.Context, id uuid.UUID) error {
	if _, err := s.find(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Deactivate(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to deactivate company")
	}
	return nil
}

func (s *service) find(ctx context.Context, id uuid.UUID) (*models.Company, error) {
	company, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "company not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to fetch company")
	}
	return company, nil
}
