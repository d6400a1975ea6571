package password

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/bookworm/bookworm/application/port/outbound"
)

// MaxPasswordBytes is the longest input bcrypt accepts.
const MaxPasswordBytes = 72

var (
	ErrEmptyPassword   = outbound.ErrEmptyPassword
	ErrPasswordTooLong = outbound.ErrPasswordTooLong
)

type BcryptPasswordService struct {
	cost int
}

var _ outbound.PasswordService = (*BcryptPasswordService)(nil)

// NewBcryptPasswordService falls back to bcrypt.DefaultCost for a zero or
// out-of-range cost.
func NewBcryptPasswordService(cost int) *BcryptPasswordService {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptPasswordService{
		cost: cost,
	}
}

func (s *BcryptPasswordService) HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}
	if len(password) > MaxPasswordBytes {
		return "", ErrPasswordTooLong
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	return string(hashedPassword), nil
}

func (s *BcryptPasswordService) VerifyPassword(password, hash string) bool {
	if hash == "" || password == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
