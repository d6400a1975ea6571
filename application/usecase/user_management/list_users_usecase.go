package user_management

import (
	"context"

	"github.com/bookworm/bookworm/application/port/outbound"
	"github.com/bookworm/bookworm/domain/apperror"
	"github.com/bookworm/bookworm/domain/entity"
)

type ListUsersUseCase struct {
	accountRepo outbound.AccountRepository
}

func NewListUsersUseCase(accountRepo outbound.AccountRepository) *ListUsersUseCase {
	return &ListUsersUseCase{
		accountRepo: accountRepo,
	}
}

// Execute returns every account, newest first. Password hashes and refresh
// tokens are dropped by the entity's JSON tags.
func (uc *ListUsersUseCase) Execute(ctx context.Context) ([]*entity.Account, error) {
	accounts, err := uc.accountRepo.List(ctx)
	if err != nil {
		return nil, apperror.StoreFailure("list accounts", err)
	}
	if accounts == nil {
		accounts = []*entity.Account{}
	}
	return accounts, nil
}
