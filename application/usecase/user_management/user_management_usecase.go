package user_management

import (
	"context"

	"github.com/bookworm/bookworm/application/port/inbound"
	"github.com/bookworm/bookworm/application/port/outbound"
	"github.com/bookworm/bookworm/domain/entity"
	"github.com/bookworm/bookworm/infrastructure/service/logger"
)

type UserManagementUseCaseImpl struct {
	listUsersUseCase   *ListUsersUseCase
	deleteUserUseCase  *DeleteUserUseCase
	promoteUserUseCase *PromoteUserUseCase
}

func NewUserManagementUseCase(accountRepo outbound.AccountRepository, log logger.Logger) inbound.UserManagementUseCase {
	return &UserManagementUseCaseImpl{
		listUsersUseCase:   NewListUsersUseCase(accountRepo),
		deleteUserUseCase:  NewDeleteUserUseCase(accountRepo, log),
		promoteUserUseCase: NewPromoteUserUseCase(accountRepo, log),
	}
}

func (uc *UserManagementUseCaseImpl) ListUsers(ctx context.Context) ([]*entity.Account, error) {
	return uc.listUsersUseCase.Execute(ctx)
}

func (uc *UserManagementUseCaseImpl) DeleteUser(ctx context.Context, userID string) (*inbound.DeleteResult, error) {
	return uc.deleteUserUseCase.Execute(ctx, userID)
}

func (uc *UserManagementUseCaseImpl) PromoteToAdmin(ctx context.Context, email string) (*entity.Account, error) {
	return uc.promoteUserUseCase.Execute(ctx, email)
}
