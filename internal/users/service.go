package users

import (
	"context"
	"errors"

	"github.com/anafuentes/pressroute-backend/pkg/config"
	"github.com/anafuentes/pressroute-backend/pkg/db/models"
	"github.com/anafuentes/pressroute-backend/pkg/enums"
	pkgerrors "github.com/anafuentes/pressroute-backend/pkg/errors"
	"github.com/anafuentes/pressroute-backend/pkg/pagination"
	"github.com/anafuentes/pressroute-backend/pkg/security"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type userRepo interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context, companyID *uuid.UUID, params pagination.Params) ([]models.User, string, error)
	Update(ctx context.Context, user *models.User) error
	UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error
	Deactivate(ctx context.Context, id uuid.UUID) error
}

// Actor identifies who is performing an operation, for access checks.
type Actor struct {
	UserID    uuid.UUID
	Role      enums.UserRole
	CompanyID *uuid.UUID
}

// UpdateInput carries the mutable profile fields. Nil means leave unchanged.
type UpdateInput struct {
	FirstName *string
	LastName  *string
	Phone     *string
}

// Service manages user accounts.
type Service interface {
	Register(ctx context.Context, email, password, firstName, lastName string, phone *string) (*UserDTO, error)
	Get(ctx context.Context, actor Actor, id uuid.UUID) (*UserDTO, error)
	List(ctx context.Context, actor Actor, params pagination.Params) (*UserListDTO, error)
	Update(ctx context.Context, actor Actor, id uuid.UUID, input UpdateInput) (*UserDTO, error)
	ChangePassword(ctx context.Context, actor Actor, id uuid.UUID, current, next string) error
	SetRole(ctx context.Context, id uuid.UUID, role enums.UserRole, companyID *uuid.UUID) (*UserDTO, error)
	Deactivate(ctx context.Context, actor Actor, id uuid.UUID) error
}

type service struct {
	repo userRepo
}

func NewService(repo userRepo) Service {
	return &service{repo: repo}
}

func (s *service) Register(ctx context.Context, email, password, firstName, lastName string, phone *string) (*UserDTO, error) {
	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to check email")
	}

	hash, err := security.HashPassword(password, config.PasswordConfig{})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to hash password")
	}

	user := CreateUserDTO{
		Email:        email,
		PasswordHash: hash,
		FirstName:    firstName,
		LastName:     lastName,
		Phone:        phone,
		Role:         enums.UserRoleCustomer,
	}.ToModel()

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to create user")
	}
	return FromModel(user), nil
}

func (s *service) Get(ctx context.Context, actor Actor, id uuid.UUID) (*UserDTO, error) {
	user, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.canRead(actor, user); err != nil {
		return nil, err
	}
	return FromModel(user), nil
}

func (s *service) List(ctx context.Context, actor Actor, params pagination.Params) (*UserListDTO, error) {
	var companyID *uuid.UUID
	switch actor.Role {
	case enums.UserRoleAdmin:
		// Admins see everyone.
	case enums.UserRoleCompanyManager:
		if actor.CompanyID == nil {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "manager has no company assigned")
		}
		companyID = actor.CompanyID
	default:
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "insufficient role to list users")
	}

	if _, err := pagination.ParseCursor(params.Cursor); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	records, nextCursor, err := s.repo.List(ctx, companyID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to list users")
	}

	out := make([]UserDTO, 0, len(records))
	for i := range records {
		out = append(out, *FromModel(&records[i]))
	}
	return &UserListDTO{Users: out, NextCursor: nextCursor}, nil
}

func (s *service) Update(ctx context.Context, actor Actor, id uuid.UUID, input UpdateInput) (*UserDTO, error) {
	user, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.Role != enums.UserRoleAdmin && actor.UserID != user.ID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "cannot update another user's profile")
	}

	if input.FirstName != nil {
		user.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		user.LastName = *input.LastName
	}
	if input.Phone != nil {
		user.Phone = input.Phone
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to update user")
	}
	return FromModel(user), nil
}

func (s *service) ChangePassword(ctx context.Context, actor Actor, id uuid.UUID, current, next string) error {
	if actor.UserID != id {
		return pkgerrors.New(pkgerrors.CodeForbidden, "cannot change another user's password")
	}
	user, err := s.find(ctx, id)
	if err != nil {
		return err
	}

	ok, err := security.VerifyPassword(current, user.PasswordHash)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to verify password")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "current password is incorrect")
	}

	hash, err := security.HashPassword(next, config.PasswordConfig{})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to hash password")
	}
	if err := s.repo.UpdatePasswordHash(ctx, id, hash); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to update password")
	}
	return nil
}

// SetRole promotes or demotes an account. Admin-only, enforced at the router.
func (s *service) SetRole(ctx context.Context, id uuid.UUID, role enums.UserRole, companyID *uuid.UUID) (*UserDTO, error) {
	if !role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid role")
	}
	if role == enums.UserRoleCompanyManager && companyID == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "company managers require a company")
	}

	user, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	user.Role = role
	user.CompanyID = companyID
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to update role")
	}
	return FromModel(user), nil
}

func (s *service) Deactivate(ctx context.Context, actor Actor, id uuid.UUID) error {
	if actor.Role != enums.UserRoleAdmin && actor.UserID != id {
		return pkgerrors.New(pkgerrors.CodeForbidden, "cannot deactivate another user")
	}
	if _, err := s.find(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Deactivate(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to deactivate user")
	}
	return nil
}

func (s *service) find(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to fetch user")
	}
	return user, nil
}

func (s *service) canRead(actor Actor, user *models.User) error {
	switch actor.Role {
	case enums.UserRoleAdmin:
		return nil
	case enums.UserRoleCompanyManager:
		if actor.CompanyID != nil && user.CompanyID != nil && *actor.CompanyID == *user.CompanyID {
			return nil
		}
	}
	if actor.UserID == user.ID {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeForbidden, "cannot view this user")
}
