package user_management

import (
	"context"
	"errors"

	"github.com/bookworm/bookworm/application/port/outbound"
	"github.com/bookworm/bookworm/domain/apperror"
	"github.com/bookworm/bookworm/domain/entity"
	"github.com/bookworm/bookworm/infrastructure/service/logger"
)

// PromoteUserUseCase elevates an account to admin. It backs the
// create_admin command; no HTTP route exposes it.
type PromoteUserUseCase struct {
	accountRepo outbound.AccountRepository
	logger      logger.Logger
}

func NewPromoteUserUseCase(accountRepo outbound.AccountRepository, log logger.Logger) *PromoteUserUseCase {
	return &PromoteUserUseCase{
		accountRepo: accountRepo,
		logger:      log,
	}
}

func (uc *PromoteUserUseCase) Execute(ctx context.Context, email string) (*entity.Account, error) {
	if email == "" {
		return nil, apperror.MissingField("email")
	}

	account, err := uc.accountRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, outbound.ErrAccountNotFound) {
			return nil, apperror.NotFound("User not found")
		}
		return nil, apperror.StoreFailure("find account by email", err)
	}

	if account.Role == entity.RoleAdmin {
		return account, nil
	}

	if err := uc.accountRepo.SetRole(ctx, account.ID, entity.RoleAdmin); err != nil {
		return nil, apperror.StoreFailure("set role", err)
	}
	account.Role = entity.RoleAdmin

	logger.LogSecurityEvent(ctx, uc.logger, "role_elevated", "MEDIUM", map[string]interface{}{
		"user_id": account.ID,
		"role":    string(entity.RoleAdmin),
	})
	return account, nil
}
