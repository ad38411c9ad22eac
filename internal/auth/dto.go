package auth

import (
	"github.com/anafuentes/pressroute-backend/internal/users"
)

// SendOTPRequest captures the email a sign-in code should be mailed to.
type SendOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// CheckOTPRequest carries the emailed code back for verification.
type CheckOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required"`
}

// LoginRequest captures the user credentials sent to the password login endpoint.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest carries the expired access token and its paired refresh token.
type RefreshRequest struct {
	AccessToken  string `json:"access_token" validate:"required"`
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// TokenPairResponse contains the tokens and user produced by a successful sign-in.
type TokenPairResponse struct {
	AccessToken  string         `json:"access_token"`
	RefreshToken string         `json:"refresh_token"`
	User         *users.UserDTO `json:"user"`
}

// RefreshResponse contains the rotated token pair.
type RefreshResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}
