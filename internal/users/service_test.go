package users

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/anafuentes/pressroute-backend/pkg/config"
	"github.com/anafuentes/pressroute-backend/pkg/db/models"
	"github.com/anafuentes/pressroute-backend/pkg/enums"
	pkgerrors "github.com/anafuentes/pressroute-backend/pkg/errors"
	"github.com/anafuentes/pressroute-backend/pkg/pagination"
	"github.com/anafuentes/pressroute-backend/pkg/security"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type stubUserRepo struct {
	user       *models.User
	findErr    error
	createErr  error
	updateErr  error
	listed     []models.User
	listCursor string
	listErr    error

	created      *models.User
	updated      *models.User
	passwordHash string
	deactivated  *uuid.UUID
	listCompany  *uuid.UUID
}

func (s *stubUserRepo) Create(ctx context.Context, user *models.User) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.created = user
	return nil
}

func (s *stubUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	return s.user, nil
}

func (s *stubUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	if s.user == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return s.user, nil
}

func (s *stubUserRepo) List(ctx context.Context, companyID *uuid.UUID, params pagination.Params) ([]models.User, string, error) {
	if s.listErr != nil {
		return nil, "", s.listErr
	}
	s.listCompany = companyID
	return s.listed, s.listCursor, nil
}

func (s *stubUserRepo) Update(ctx context.Context, user *models.User) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	s.updated = user
	return nil
}

func (s *stubUserRepo) UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error {
	s.passwordHash = hash
	return nil
}

func (s *stubUserRepo) Deactivate(ctx context.Context, id uuid.UUID) error {
	s.deactivated = &id
	return nil
}

func baseUser() *models.User {
	return &models.User{
		ID:           uuid.New(),
		Email:        "ana@example.com",
		PasswordHash: "hash",
		FirstName:    "Ana",
		LastName:     "Fuentes",
		Role:         enums.UserRoleCustomer,
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}
}

func adminActor() Actor {
	return Actor{UserID: uuid.New(), Role: enums.UserRoleAdmin}
}

func TestServiceRegisterSuccess(t *testing.T) {
	repo := &stubUserRepo{}
	svc := NewService(repo)

	dto, err := svc.Register(context.Background(), "new@example.com", "hunter2secret", "New", "User", nil)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if dto.Email != "new@example.com" {
		t.Fatalf("expected email preserved, got %s", dto.Email)
	}
	if dto.Role != enums.UserRoleCustomer {
		t.Fatalf("expected customer role, got %s", dto.Role)
	}
	if repo.created == nil || repo.created.PasswordHash == "hunter2secret" {
		t.Fatal("expected password to be hashed before persisting")
	}
}

func TestServiceRegisterDuplicateEmail(t *testing.T) {
	repo := &stubUserRepo{user: baseUser()}
	svc := NewService(repo)

	_, err := svc.Register(context.Background(), "ana@example.com", "hunter2secret", "Ana", "Fuentes", nil)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestServiceGetNotFound(t *testing.T) {
	repo := &stubUserRepo{findErr: gorm.ErrRecordNotFound}
	svc := NewService(repo)

	_, err := svc.Get(context.Background(), adminActor(), uuid.New())
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestServiceGetForbiddenForOtherCustomer(t *testing.T) {
	repo := &stubUserRepo{user: baseUser()}
	svc := NewService(repo)

	actor := Actor{UserID: uuid.New(), Role: enums.UserRoleCustomer}
	_, err := svc.Get(context.Background(), actor, uuid.New())
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestServiceListScopesManagerToCompany(t *testing.T) {
	companyID := uuid.New()
	repo := &stubUserRepo{listed: []models.User{*baseUser()}}
	svc := NewService(repo)

	actor := Actor{UserID: uuid.New(), Role: enums.UserRoleCompanyManager, CompanyID: &companyID}
	list, err := svc.List(context.Background(), actor, pagination.Params{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list.Users) != 1 {
		t.Fatalf("expected 1 user, got %d", len(list.Users))
	}
	if repo.listCompany == nil || *repo.listCompany != companyID {
		t.Fatal("expected list scoped to the manager's company")
	}
}

func TestServiceListForbiddenForCustomer(t *testing.T) {
	svc := NewService(&stubUserRepo{})

	actor := Actor{UserID: uuid.New(), Role: enums.UserRoleCustomer}
	_, err := svc.List(context.Background(), actor, pagination.Params{})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestServiceUpdateSelf(t *testing.T) {
	user := baseUser()
	repo := &stubUserRepo{user: user}
	svc := NewService(repo)

	actor := Actor{UserID: user.ID, Role: enums.UserRoleCustomer}
	first := "Renamed"
	dto, err := svc.Update(context.Background(), actor, user.ID, UpdateInput{FirstName: &first})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if dto.FirstName != "Renamed" {
		t.Fatalf("expected renamed, got %s", dto.FirstName)
	}
}

func TestServiceUpdateOtherUserForbidden(t *testing.T) {
	repo := &stubUserRepo{user: baseUser()}
	svc := NewService(repo)

	actor := Actor{UserID: uuid.New(), Role: enums.UserRoleCustomer}
	first := "Nope"
	_, err := svc.Update(context.Background(), actor, uuid.New(), UpdateInput{FirstName: &first})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestServiceChangePasswordWrongCurrent(t *testing.T) {
	user := baseUser()
	hash, err := security.HashPassword("correct horse", config.PasswordConfig{})
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	user.PasswordHash = hash
	repo := &stubUserRepo{user: user}
	svc := NewService(repo)

	actor := Actor{UserID: user.ID, Role: enums.UserRoleCustomer}
	gotErr := svc.ChangePassword(context.Background(), actor, user.ID, "wrong guess", "next password")
	if typed := pkgerrors.As(gotErr); typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", gotErr)
	}
}

func TestServiceChangePasswordSuccess(t *testing.T) {
	user := baseUser()
	hash, err := security.HashPassword("correct horse", config.PasswordConfig{})
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	user.PasswordHash = hash
	repo := &stubUserRepo{user: user}
	svc := NewService(repo)

	actor := Actor{UserID: user.ID, Role: enums.UserRoleCustomer}
	if err := svc.ChangePassword(context.Background(), actor, user.ID, "correct horse", "next password"); err != nil {
		t.Fatalf("change password: %v", err)
	}
	if repo.passwordHash == "" || repo.passwordHash == hash {
		t.Fatal("expected a fresh password hash to be stored")
	}
}

func TestServiceSetRoleRequiresCompanyForManagers(t *testing.T) {
	svc := NewService(&stubUserRepo{user: baseUser()})

	_, err := svc.SetRole(context.Background(), uuid.New(), enums.UserRoleCompanyManager, nil)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestServiceSetRolePromotesManager(t *testing.T) {
	user := baseUser()
	repo := &stubUserRepo{user: user}
	svc := NewService(repo)

	companyID := uuid.New()
	dto, err := svc.SetRole(context.Background(), user.ID, enums.UserRoleCompanyManager, &companyID)
	if err != nil {
		t.Fatalf("set role: %v", err)
	}
	if dto.Role != enums.UserRoleCompanyManager {
		t.Fatalf("expected manager role, got %s", dto.Role)
	}
	if dto.CompanyID == nil || *dto.CompanyID != companyID {
		t.Fatal("expected company assignment")
	}
}

func TestServiceDeactivateDependencyError(t *testing.T) {
	repo := &stubUserRepo{findErr: errors.New("boom")}
	svc := NewService(repo)

	err := svc.Deactivate(context.Background(), adminActor(), uuid.New())
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
}
