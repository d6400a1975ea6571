package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bookworm/bookworm/application/port/inbound"
	"github.com/bookworm/bookworm/application/port/outbound"
	"github.com/bookworm/bookworm/domain/apperror"
	"github.com/bookworm/bookworm/domain/entity"
	"github.com/bookworm/bookworm/infrastructure/service/logger"
)

type AuthUseCase struct {
	accountRepository outbound.AccountRepository
	tokenService      outbound.TokenService
	passwordService   outbound.PasswordService
	logger            logger.Logger
	now               func() time.Time
}

type AuthOption func(*AuthUseCase)

// WithClock replaces the wall clock used for createdAt and lastLoggedInAt.
func WithClock(now func() time.Time) AuthOption {
	return func(uc *AuthUseCase) {
		if now != nil {
			uc.now = now
		}
	}
}

func NewAuthUseCase(
	accountRepo outbound.AccountRepository,
	tokenService outbound.TokenService,
	passwordService outbound.PasswordService,
	log logger.Logger,
	opts ...AuthOption,
) *AuthUseCase {
	uc := &AuthUseCase{
		accountRepository: accountRepo,
		tokenService:      tokenService,
		passwordService:   passwordService,
		logger:            log,
		now:               time.Now,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

var _ inbound.AuthUseCase = (*AuthUseCase)(nil)

func (uc *AuthUseCase) Register(ctx context.Context, req inbound.RegisterRequest) (*inbound.RegisterResponse, error) {
	if err := requireFields(map[string]string{
		"email":    req.Email,
		"password": req.Password,
		"name":     req.Name,
	}, "email", "password", "name"); err != nil {
		return nil, err
	}

	now := uc.now().UTC()

	existing, err := uc.accountRepository.FindByEmail(ctx, req.Email)
	switch {
	case err == nil:
		if err := uc.accountRepository.TouchLastLogin(ctx, existing.Email, now); err != nil {
			uc.logger.Error(ctx, "Failed to touch existing account", err, map[string]interface{}{
				"user_id": existing.ID,
			})
			return nil, apperror.StoreFailure("touch last login", err)
		}
		logger.LogAuthEvent(ctx, uc.logger, "register_existing_account", existing.ID, logger.ClientIP(ctx), true, map[string]interface{}{
			"email": req.Email,
		})
		return &inbound.RegisterResponse{Message: "User already exists"}, nil
	case !errors.Is(err, outbound.ErrAccountNotFound):
		uc.logger.Error(ctx, "Failed to find account", err, map[string]interface{}{
			"email": req.Email,
		})
		return nil, apperror.StoreFailure("find account by email", err)
	}

	start := time.Now()
	hash, err := uc.passwordService.HashPassword(req.Password)
	logger.LogPerformance(ctx, uc.logger, "password_hashing", time.Since(start), nil)
	switch {
	case errors.Is(err, outbound.ErrEmptyPassword):
		return nil, apperror.MissingField("password")
	case errors.Is(err, outbound.ErrPasswordTooLong):
		return nil, apperror.InvalidInput("Password must be at most 72 bytes")
	case err != nil:
		return nil, apperror.Internal("hash password", err)
	}

	account := entity.NewAccount(req.Email, req.Name, req.Photo, hash, now)
	id, err := uc.accountRepository.Create(ctx, account)
	if err != nil {
		uc.logger.Error(ctx, "Failed to create account", err, map[string]interface{}{
			"email": req.Email,
		})
		return nil, apperror.StoreFailure("create account", err)
	}

	logger.LogAuthEvent(ctx, uc.logger, "register_successful", id, logger.ClientIP(ctx), true, map[string]interface{}{
		"email": req.Email,
	})

	return &inbound.RegisterResponse{
		Message: "User created successfully",
		UserID:  id,
		Created: true,
	}, nil
}

func (uc *AuthUseCase) Login(ctx context.Context, req inbound.LoginRequest) (*inbound.LoginResponse, error) {
	if err := requireFields(map[string]string{
		"email":    req.Email,
		"password": req.Password,
	}, "email", "password"); err != nil {
		return nil, err
	}

	account, err := uc.accountRepository.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, outbound.ErrAccountNotFound) {
			logger.LogAuthEvent(ctx, uc.logger, "login_failed_user_not_found", "", logger.ClientIP(ctx), false, map[string]interface{}{
				"email": req.Email,
			})
			return nil, apperror.AuthenticationFailed()
		}
		uc.logger.Error(ctx, "Failed to find account", err, map[string]interface{}{
			"email": req.Email,
		})
		return nil, apperror.StoreFailure("find account by email", err)
	}

	start := time.Now()
	valid := uc.passwordService.VerifyPassword(req.Password, account.PasswordHash)
	logger.LogPerformance(ctx, uc.logger, "password_verification", time.Since(start), map[string]interface{}{
		"user_id": account.ID,
	})
	if !valid {
		logger.LogAuthEvent(ctx, uc.logger, "login_failed_invalid_password", account.ID, logger.ClientIP(ctx), false, map[string]interface{}{
			"email": req.Email,
		})
		return nil, apperror.AuthenticationFailed()
	}

	accessToken, err := uc.tokenService.GenerateAccessToken(account.ID, account.Role)
	if err != nil {
		uc.logger.Error(ctx, "Failed to generate access token", err, map[string]interface{}{
			"user_id": account.ID,
		})
		return nil, apperror.Internal("generate access token", err)
	}

	refreshToken, err := uc.tokenService.GenerateRefreshToken(account.ID)
	if err != nil {
		uc.logger.Error(ctx, "Failed to generate refresh token", err, map[string]interface{}{
			"user_id": account.ID,
		})
		return nil, apperror.Internal("generate refresh token", err)
	}

	// Overwrites any previous refresh token: one session per account.
	if err := uc.accountRepository.SetSession(ctx, account.ID, refreshToken, uc.now().UTC()); err != nil {
		uc.logger.Error(ctx, "Failed to persist session", err, map[string]interface{}{
			"user_id": account.ID,
		})
		return nil, apperror.StoreFailure("set session", err)
	}

	logger.LogAuthEvent(ctx, uc.logger, "login_successful", account.ID, logger.ClientIP(ctx), true, map[string]interface{}{
		"email":    req.Email,
		"replaced": account.HasActiveSession(),
	})

	return &inbound.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         account.Identity(),
	}, nil
}

func (uc *AuthUseCase) Refresh(ctx context.Context, req inbound.RefreshRequest) (*inbound.RefreshResponse, error) {
	if req.RefreshToken == "" {
		return nil, apperror.MissingSessionCookie("Refresh token is required")
	}

	account, err := uc.accountRepository.FindByRefreshToken(ctx, req.RefreshToken)
	if err != nil {
		if errors.Is(err, outbound.ErrAccountNotFound) {
			logger.LogSecurityEvent(ctx, uc.logger, "refresh_token_not_found", "MEDIUM", map[string]interface{}{
				"token": "[REDACTED]",
			})
			return nil, apperror.InvalidCredential("Invalid refresh token", err)
		}
		uc.logger.Error(ctx, "Failed to find refresh token", err, map[string]interface{}{
			"token": "[REDACTED]",
		})
		return nil, apperror.StoreFailure("find account by refresh token", err)
	}

	subject, err := uc.tokenService.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		logger.LogSecurityEvent(ctx, uc.logger, "refresh_token_rejected", "MEDIUM", map[string]interface{}{
			"user_id": account.ID,
			"error":   err.Error(),
		})
		return nil, apperror.InvalidCredential("Invalid refresh token", err)
	}
	if subject != account.ID {
		logger.LogSecurityEvent(ctx, uc.logger, "refresh_token_subject_mismatch", "HIGH", map[string]interface{}{
			"user_id": account.ID,
			"subject": subject,
		})
		return nil, apperror.InvalidCredential("Invalid refresh token", nil)
	}

	// The refresh token is not rotated; it stays valid until expiry or logout.
	accessToken, err := uc.tokenService.GenerateAccessToken(account.ID, account.Role)
	if err != nil {
		uc.logger.Error(ctx, "Failed to generate access token", err, map[string]interface{}{
			"user_id": account.ID,
		})
		return nil, apperror.Internal("generate access token", err)
	}

	logger.LogAuthEvent(ctx, uc.logger, "token_refresh_successful", account.ID, logger.ClientIP(ctx), true, nil)

	return &inbound.RefreshResponse{AccessToken: accessToken}, nil
}

func (uc *AuthUseCase) Logout(ctx context.Context, req inbound.LogoutRequest) (inbound.LogoutOutcome, error) {
	if req.RefreshToken == "" {
		return inbound.LogoutNothingToRevoke, nil
	}

	cleared, err := uc.accountRepository.ClearRefreshToken(ctx, req.RefreshToken)
	if err != nil {
		uc.logger.Error(ctx, "Failed to clear refresh token", err, map[string]interface{}{
			"token": "[REDACTED]",
		})
		return inbound.LogoutNothingToRevoke, apperror.StoreFailure("clear refresh token", err)
	}

	logger.LogAuthEvent(ctx, uc.logger, "logout_successful", "", logger.ClientIP(ctx), true, map[string]interface{}{
		"cleared": cleared,
	})
	return inbound.LogoutRevoked, nil
}

func (uc *AuthUseCase) Me(ctx context.Context, userID string) (*entity.Identity, error) {
	if userID == "" {
		return nil, apperror.MissingCredential("Authentication required")
	}

	account, err := uc.accountRepository.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, outbound.ErrAccountNotFound) {
			logger.LogSecurityEvent(ctx, uc.logger, "me_user_not_found", "MEDIUM", map[string]interface{}{
				"user_id": userID,
			})
			return nil, apperror.NotFound("User not found")
		}
		uc.logger.Error(ctx, "Failed to find account", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, apperror.StoreFailure("find account by id", err)
	}

	identity := account.Identity()
	return &identity, nil
}

// requireFields reports the first blank field in order.
func requireFields(values map[string]string, order ...string) error {
	for _, name := range order {
		if strings.TrimSpace(values[name]) == "" {
			return apperror.MissingField(name)
		}
	}
	return nil
}
