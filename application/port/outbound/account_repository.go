package outbound

import (
	"context"
	"errors"
	"time"

	"github.com/bookworm/bookworm/domain/entity"
)

var (
	ErrAccountNotFound = errors.New("account not found")
)

// AccountRepository is the credential store. Implementations treat each call
// as a single atomic document operation; nothing above it takes locks.
type AccountRepository interface {
	FindByID(ctx context.Context, id string) (*entity.Account, error)
	FindByEmail(ctx context.Context, email string) (*entity.Account, error)
	FindByRefreshToken(ctx context.Context, token string) (*entity.Account, error)
	// Create stores account and returns the identifier the store assigned.
	Create(ctx context.Context, account *entity.Account) (string, error)
	// SetSession overwrites the account's active refresh token, superseding
	// any previous session.
	SetSession(ctx context.Context, id, refreshToken string, loggedInAt time.Time) error
	TouchLastLogin(ctx context.Context, email string, at time.Time) error
	// ClearRefreshToken unsets the refresh token on whichever account holds
	// exactly this value and reports how many accounts matched.
	ClearRefreshToken(ctx context.Context, token string) (int64, error)
	SetRole(ctx context.Context, id string, role entity.Role) error
	List(ctx context.Context) ([]*entity.Account, error)
	Delete(ctx context.Context, id string) (int64, error)
}
