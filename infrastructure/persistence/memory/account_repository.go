package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bookworm/bookworm/application/port/outbound"
	"github.com/bookworm/bookworm/domain/entity"
)

// AccountRepository keeps accounts in process. Every method holds the lock
// for one whole operation, which gives the same per-document atomicity the
// real stores provide.
type AccountRepository struct {
	mu       sync.RWMutex
	accounts map[string]*entity.Account
}

var _ outbound.AccountRepository = (*AccountRepository)(nil)

func NewAccountRepository() *AccountRepository {
	return &AccountRepository{
		accounts: make(map[string]*entity.Account),
	}
}

func clone(a *entity.Account) *entity.Account {
	c := *a
	if a.LastLoggedInAt != nil {
		t := *a.LastLoggedInAt
		c.LastLoggedInAt = &t
	}
	return &c
}

func (r *AccountRepository) FindByID(ctx context.Context, id string) (*entity.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if a, ok := r.accounts[id]; ok {
		return clone(a), nil
	}
	return nil, outbound.ErrAccountNotFound
}

func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (*entity.Account, error) {
	return r.findOne(func(a *entity.Account) bool { return a.Email == email })
}

func (r *AccountRepository) FindByRefreshToken(ctx context.Context, token string) (*entity.Account, error) {
	if token == "" {
		return nil, outbound.ErrAccountNotFound
	}
	return r.findOne(func(a *entity.Account) bool { return a.RefreshToken == token })
}

func (r *AccountRepository) findOne(match func(*entity.Account) bool) (*entity.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, a := range r.accounts {
		if match(a) {
			return clone(a), nil
		}
	}
	return nil, outbound.ErrAccountNotFound
}

func (r *AccountRepository) Create(ctx context.Context, account *entity.Account) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := clone(account)
	stored.ID = uuid.NewString()
	r.accounts[stored.ID] = stored
	return stored.ID, nil
}

func (r *AccountRepository) SetSession(ctx context.Context, id, refreshToken string, loggedInAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.accounts[id]
	if !ok {
		return outbound.ErrAccountNotFound
	}
	a.RefreshToken = refreshToken
	a.LastLoggedInAt = &loggedInAt
	return nil
}

func (r *AccountRepository) TouchLastLogin(ctx context.Context, email string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, a := range r.accounts {
		if a.Email == email {
			a.LastLoggedInAt = &at
			return nil
		}
	}
	return outbound.ErrAccountNotFound
}

func (r *AccountRepository) ClearRefreshToken(ctx context.Context, token string) (int64, error) {
	if token == "" {
		return 0, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for _, a := range r.accounts {
		if a.RefreshToken == token {
			a.RefreshToken = ""
			n++
		}
	}
	return n, nil
}

func (r *AccountRepository) SetRole(ctx context.Context, id string, role entity.Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.accounts[id]
	if !ok {
		return outbound.ErrAccountNotFound
	}
	a.Role = role
	return nil
}

func (r *AccountRepository) List(ctx context.Context) ([]*entity.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*entity.Account, 0, len(r.accounts))
	for _, a := range r.accounts {
		out = append(out, clone(a))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *AccountRepository) Delete(ctx context.Context, id string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.accounts[id]; !ok {
		return 0, nil
	}
	delete(r.accounts, id)
	return 1, nil
}
