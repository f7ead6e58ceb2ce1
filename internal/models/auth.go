package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// LoginRequest holds credentials for authenticating a user.
type LoginRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required"`
	IP        string `json:"-"`
	UserAgent string `json:"-"`
}

// LoginResponse returns the issued token and user info.
type LoginResponse struct {
	AccessToken string    `json:"accessToken"`
	ExpiresIn   int64     `json:"expiresIn"`
	User        UserInfo  `json:"user"`
	IssuedAt    time.Time `json:"issuedAt"`
}

// RegisterRequest is the public self-registration payload.
type RegisterRequest struct {
	Email      string   `json:"email" validate:"required,email"`
	Password   string   `json:"password" validate:"required,min=6"`
	Name       string   `json:"name" validate:"required"`
	Subject    string   `json:"subject" validate:"required"`
	GPA        *float64 `json:"gpa" validate:"omitempty,gte=0,lte=4"`
	Emirate    string   `json:"emirate" validate:"required"`
	Mobile     string   `json:"mobile" validate:"required,uae_mobile"`
	NationalID string   `json:"nationalId"`
}

// ChangePasswordRequest payload for updating password. OldPassword may be
// omitted when an admin resets another user's password.
type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword" validate:"required,min=6"`
}

// UserInfo describes the authenticated user in responses.
type UserInfo struct {
	ID    string   `json:"id"`
	Email string   `json:"email"`
	Name  string   `json:"name"`
	Role  UserRole `json:"role"`
}

// JWTClaims represents the JWT payload for access tokens.
type JWTClaims struct {
	UserID string   `json:"user_id"`
	Role   UserRole `json:"role"`
	Email  string   `json:"email"`
	Name   string   `json:"name"`
	jwt.RegisteredClaims
}
