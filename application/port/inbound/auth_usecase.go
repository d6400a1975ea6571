package inbound

import (
	"context"

	"github.com/bookworm/bookworm/domain/entity"
)

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Photo    string `json:"photo,omitempty"`
}

type RegisterResponse struct {
	Message string `json:"message"`
	UserID  string `json:"userId,omitempty"`
	// Created is false when the email was already registered and the call
	// only touched its last-login time.
	Created bool `json:"-"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken  string          `json:"accessToken"`
	User         entity.Identity `json:"user"`
	RefreshToken string          `json:"-"`
}

type RefreshRequest struct {
	RefreshToken string
}

type RefreshResponse struct {
	AccessToken string `json:"accessToken"`
}

type LogoutRequest struct {
	RefreshToken string
}

type LogoutOutcome int

const (
	// LogoutNothingToRevoke means no refresh credential was presented.
	LogoutNothingToRevoke LogoutOutcome = iota
	// LogoutRevoked means the presented credential is no longer honored,
	// whether or not it still matched an account.
	LogoutRevoked
)

type AuthUseCase interface {
	Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error)
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	Refresh(ctx context.Context, req RefreshRequest) (*RefreshResponse, error)
	Logout(ctx context.Context, req LogoutRequest) (LogoutOutcome, error)
	Me(ctx context.Context, userID string) (*entity.Identity, error)
}
