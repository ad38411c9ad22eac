package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/anafuentes/pressroute-backend/internal/users"
	pkgAuth "github.com/anafuentes/pressroute-backend/pkg/auth"
	"github.com/anafuentes/pressroute-backend/pkg/auth/session"
	"github.com/anafuentes/pressroute-backend/pkg/config"
	"github.com/anafuentes/pressroute-backend/pkg/db/models"
	"github.com/anafuentes/pressroute-backend/pkg/enums"
	pkgerrors "github.com/anafuentes/pressroute-backend/pkg/errors"
	"github.com/anafuentes/pressroute-backend/pkg/security"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	invalidCredentialsMessage = "invalid credentials"
	invalidCodeMessage        = "invalid or expired code"
)

// Service defines the behavior needed by the auth controller.
type Service interface {
	SendOTP(ctx context.Context, req SendOTPRequest) error
	CheckOTP(ctx context.Context, req CheckOTPRequest) (*TokenPairResponse, error)
	Login(ctx context.Context, req LoginRequest) (*TokenPairResponse, error)
	Refresh(ctx context.Context, req RefreshRequest) (*RefreshResponse, error)
	SignOut(ctx context.Context, accessID string) error
}

type service struct {
	otps    otpRepository
	users   userRepository
	session sessionManager
	mail    mailSender
	limiter otpLimiter
	events  eventSink
	jwtCfg  config.JWTConfig
	otpCfg  config.OTPConfig
	rateCfg config.AuthRateLimitConfig
	now     func() time.Time
}

type otpRepository interface {
	Create(ctx context.Context, otp *models.EmailOTP) error
	FindLatest(ctx context.Context, email string) (*models.EmailOTP, error)
	IncrementAttempts(ctx context.Context, id uuid.UUID) error
	Consume(ctx context.Context, id uuid.UUID, at time.Time) error
	InvalidateActive(ctx context.Context, email string, at time.Time) error
}

type userRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}

type sessionManager interface {
	Generate(ctx context.Context, accessID string) (string, error)
	Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error)
	Revoke(ctx context.Context, accessID string) error
}

type mailSender interface {
	SendOTPCode(ctx context.Context, toEmail, code string) error
}

type otpLimiter interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
	OTPRequestKey(email string) string
}

type eventSink interface {
	Record(ctx context.Context, eventType enums.EventType, actorUserID, companyID, subjectID *uuid.UUID, payload any)
}

// ServiceParams bundles the dependencies required to build an auth service.
type ServiceParams struct {
	OTPRepo        otpRepository
	UserRepo       userRepository
	SessionManager sessionManager
	MailSender     mailSender
	Limiter        otpLimiter
	Events         eventSink
	JWTConfig      config.JWTConfig
	OTPConfig      config.OTPConfig
	RateConfig     config.AuthRateLimitConfig
}

// NewService constructs the sign-in service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.OTPRepo == nil {
		return nil, fmt.Errorf("otp repository is required")
	}
	if params.UserRepo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if params.SessionManager == nil {
		return nil, fmt.Errorf("session manager is required")
	}
	if params.MailSender == nil {
		return nil, fmt.Errorf("mail sender is required")
	}
	if params.Events == nil {
		return nil, fmt.Errorf("event sink is required")
	}
	return &service{
		otps:    params.OTPRepo,
		users:   params.UserRepo,
		session: params.SessionManager,
		mail:    params.MailSender,
		limiter: params.Limiter,
		events:  params.Events,
		jwtCfg:  params.JWTConfig,
		otpCfg:  params.OTPConfig,
		rateCfg: params.RateConfig,
		now:     time.Now,
	}, nil
}

// SendOTP mails a one-time sign-in code. It responds identically whether or
// not the email belongs to an account so the endpoint does not leak which
// addresses are registered.
func (s *service) SendOTP(ctx context.Context, req SendOTPRequest) error {
	email := normalizeEmail(req.Email)
	if email == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}

	if s.limiter != nil {
		allowed, _, err := s.limiter.FixedWindowAllow(ctx, s.limiter.OTPRequestKey(email), int64(s.rateCfg.OTPEmailLimit), s.rateCfg.OTPWindow)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check otp rate limit")
		}
		if !allowed {
			return pkgerrors.New(pkgerrors.CodeRateLimit, "too many code requests, try again later")
		}
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}
	if !user.IsActive {
		return nil
	}

	now := s.now().UTC()
	if err := s.otps.InvalidateActive(ctx, email, now); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "retire previous codes")
	}

	code, err := security.GenerateOTPCode(s.otpCfg.CodeLength)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate code")
	}
	otp := &models.EmailOTP{
		ID:        uuid.New(),
		Email:     email,
		CodeHash:  security.HashOTPCode(code),
		ExpiresAt: now.Add(s.otpCfg.TTL),
	}
	if err := s.otps.Create(ctx, otp); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store code")
	}

	if err := s.mail.SendOTPCode(ctx, email, code); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "send code email")
	}
	return nil
}

// CheckOTP verifies an emailed code and signs the user in. A code is single
// use and dies after the configured attempt budget regardless of whether the
// final attempt matches.
func (s *service) CheckOTP(ctx context.Context, req CheckOTPRequest) (*TokenPairResponse, error) {
	email := normalizeEmail(req.Email)
	code := strings.TrimSpace(req.Code)
	if email == "" || code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email and code are required")
	}

	otp, err := s.otps.FindLatest(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeInvalidCode, invalidCodeMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup code")
	}

	now := s.now().UTC()
	if otp.ConsumedAt != nil || now.After(otp.ExpiresAt) || otp.Attempts >= s.otpCfg.MaxAttempts {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidCode, invalidCodeMessage)
	}

	if !security.VerifyOTPCode(code, otp.CodeHash) {
		if err := s.otps.IncrementAttempts(ctx, otp.ID); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count attempt")
		}
		return nil, pkgerrors.New(pkgerrors.CodeInvalidCode, invalidCodeMessage)
	}

	if err := s.otps.Consume(ctx, otp.ID, now); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "consume code")
	}

	user, err := s.activeUser(ctx, email)
	if err != nil {
		return nil, err
	}
	return s.issueTokens(ctx, user, "otp")
}

// Login authenticates with an email and password.
func (s *service) Login(ctx context.Context, req LoginRequest) (*TokenPairResponse, error) {
	email := normalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	user, err := s.activeUser(ctx, email)
	if err != nil {
		return nil, err
	}

	valid, err := security.VerifyPassword(req.Password, user.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !valid {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	return s.issueTokens(ctx, user, "password")
}

// Refresh rotates the refresh token and reissues the access token with the
// same identity claims. The expired access token is accepted solely to
// recover its jti.
func (s *service) Refresh(ctx context.Context, req RefreshRequest) (*RefreshResponse, error) {
	claims, err := pkgAuth.ParseAccessTokenAllowExpired(s.jwtCfg, req.AccessToken)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid access token")
	}
	oldAccessID := strings.TrimSpace(claims.ID)
	if oldAccessID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "access token has no session id")
	}

	newAccessID, newRefresh, err := s.session.Rotate(ctx, oldAccessID, req.RefreshToken)
	if err != nil {
		if errors.Is(err, session.ErrInvalidRefreshToken) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid refresh token")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "rotate session")
	}

	accessToken, err := pkgAuth.MintAccessToken(s.jwtCfg, s.now().UTC(), pkgAuth.AccessTokenPayload{
		UserID:    claims.UserID,
		Role:      claims.Role,
		CompanyID: claims.CompanyID,
		JTI:       newAccessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}

	return &RefreshResponse{AccessToken: accessToken, RefreshToken: newRefresh}, nil
}

// SignOut revokes the Redis session tied to the access token's jti.
func (s *service) SignOut(ctx context.Context, accessID string) error {
	if strings.TrimSpace(accessID) == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "access token has no session id")
	}
	if err := s.session.Revoke(ctx, accessID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "revoke session")
	}
	return nil
}

func (s *service) activeUser(ctx context.Context, email string) (*models.User, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}
	if !user.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	return user, nil
}

func (s *service) issueTokens(ctx context.Context, user *models.User, method string) (*TokenPairResponse, error) {
	now := s.now().UTC()
	if err := s.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update last login")
	}
	user.LastLoginAt = &now

	accessID := session.NewAccessID()
	accessToken, err := pkgAuth.MintAccessToken(s.jwtCfg, now, pkgAuth.AccessTokenPayload{
		UserID:    user.ID,
		Role:      user.Role,
		CompanyID: user.CompanyID,
		JTI:       accessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}
	refreshToken, err := s.session.Generate(ctx, accessID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store refresh token")
	}

	s.events.Record(ctx, enums.EventUserSignedIn, &user.ID, user.CompanyID, &user.ID, map[string]string{"method": method})

	return &TokenPairResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         users.FromModel(user),
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
