package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/bookworm/bookworm/application/port/outbound"
	"github.com/bookworm/bookworm/domain/entity"
)

const accountColumns = `id, email, name, photo, password, role, refresh_token, created_at, last_logged_in_at`

type accountRepository struct {
	db *sql.DB
}

func NewAccountRepository(db *sql.DB) outbound.AccountRepository {
	return &accountRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAccount(row rowScanner) (*entity.Account, error) {
	var (
		account      entity.Account
		role         string
		refreshToken sql.NullString
	)
	err := row.Scan(
		&account.ID,
		&account.Email,
		&account.Name,
		&account.Photo,
		&account.PasswordHash,
		&role,
		&refreshToken,
		&account.CreatedAt,
		&account.LastLoggedInAt,
	)
	if err != nil {
		return nil, err
	}
	account.Role = entity.Role(role)
	account.RefreshToken = refreshToken.String
	return &account, nil
}

func (r *accountRepository) findOne(ctx context.Context, where string, arg interface{}) (*entity.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM users WHERE ` + where + ` LIMIT 1`

	account, err := scanAccount(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, outbound.ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to find account: %w", err)
	}
	return account, nil
}

func (r *accountRepository) FindByID(ctx context.Context, id string) (*entity.Account, error) {
	return r.findOne(ctx, "id = $1", id)
}

func (r *accountRepository) FindByEmail(ctx context.Context, email string) (*entity.Account, error) {
	return r.findOne(ctx, "email = $1", email)
}

func (r *accountRepository) FindByRefreshToken(ctx context.Context, token string) (*entity.Account, error) {
	if token == "" {
		return nil, outbound.ErrAccountNotFound
	}
	return r.findOne(ctx, "refresh_token = $1", token)
}

func (r *accountRepository) Create(ctx context.Context, account *entity.Account) (string, error) {
	query := `
		INSERT INTO users (id, email, name, photo, password, role, created_at, last_logged_in_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	id := uuid.NewString()
	_, err := r.db.ExecContext(ctx, query,
		id,
		account.Email,
		account.Name,
		account.Photo,
		account.PasswordHash,
		string(account.Role),
		account.CreatedAt,
		account.LastLoggedInAt,
	)
	if err != nil {
		return "", fmt.Errorf("failed to create account: %w", err)
	}
	return id, nil
}

func (r *accountRepository) exec(ctx context.Context, query string, args ...interface{}) (int64, error) {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *accountRepository) SetSession(ctx context.Context, id, refreshToken string, loggedInAt time.Time) error {
	n, err := r.exec(ctx, `UPDATE users SET refresh_token = $2, last_logged_in_at = $3 WHERE id = $1`, id, refreshToken, loggedInAt)
	if err != nil {
		return fmt.Errorf("failed to set session: %w", err)
	}
	if n == 0 {
		return outbound.ErrAccountNotFound
	}
	return nil
}

func (r *accountRepository) TouchLastLogin(ctx context.Context, email string, at time.Time) error {
	n, err := r.exec(ctx, `UPDATE users SET last_logged_in_at = $2 WHERE email = $1`, email, at)
	if err != nil {
		return fmt.Errorf("failed to touch account: %w", err)
	}
	if n == 0 {
		return outbound.ErrAccountNotFound
	}
	return nil
}

func (r *accountRepository) ClearRefreshToken(ctx context.Context, token string) (int64, error) {
	if token == "" {
		return 0, nil
	}
	n, err := r.exec(ctx, `UPDATE users SET refresh_token = NULL WHERE refresh_token = $1`, token)
	if err != nil {
		return 0, fmt.Errorf("failed to clear refresh token: %w", err)
	}
	return n, nil
}

func (r *accountRepository) SetRole(ctx context.Context, id string, role entity.Role) error {
	n, err := r.exec(ctx, `UPDATE users SET role = $2 WHERE id = $1`, id, string(role))
	if err != nil {
		return fmt.Errorf("failed to set role: %w", err)
	}
	if n == 0 {
		return outbound.ErrAccountNotFound
	}
	return nil
}

func (r *accountRepository) List(ctx context.Context) ([]*entity.Account, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+accountColumns+` FROM users ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*entity.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, account)
	}
	return accounts, rows.Err()
}

func (r *accountRepository) Delete(ctx context.Context, id string) (int64, error) {
	n, err := r.exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("failed to delete account: %w", err)
	}
	return n, nil
}
