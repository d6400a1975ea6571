package outbound

import "errors"

// Rejected inputs; callers map these to a client error.
var (
	ErrEmptyPassword   = errors.New("password cannot be empty")
	ErrPasswordTooLong = errors.New("password exceeds 72 bytes")
)

type PasswordService interface {
	HashPassword(password string) (string, error)
	// VerifyPassword never errors: a mismatch, an empty hash or a malformed
	// hash all report false.
	VerifyPassword(password, hash string) bool
}
