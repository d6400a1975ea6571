package user_management

import (
	"context"

	"github.com/bookworm/bookworm/application/port/inbound"
	"github.com/bookworm/bookworm/application/port/outbound"
	"github.com/bookworm/bookworm/domain/apperror"
	"github.com/bookworm/bookworm/infrastructure/service/logger"
)

type DeleteUserUseCase struct {
	accountRepo outbound.AccountRepository
	logger      logger.Logger
}

func NewDeleteUserUseCase(accountRepo outbound.AccountRepository, log logger.Logger) *DeleteUserUseCase {
	return &DeleteUserUseCase{
		accountRepo: accountRepo,
		logger:      log,
	}
}

func (uc *DeleteUserUseCase) Execute(ctx context.Context, userID string) (*inbound.DeleteResult, error) {
	if userID == "" {
		return nil, apperror.MissingField("id")
	}

	deleted, err := uc.accountRepo.Delete(ctx, userID)
	if err != nil {
		return nil, apperror.StoreFailure("delete account", err)
	}
	if deleted == 0 {
		return nil, apperror.NotFound("User not found")
	}

	uc.logger.Info(ctx, "Account deleted", map[string]interface{}{
		"user_id": userID,
	})
	return &inbound.DeleteResult{DeletedCount: deleted}, nil
}
