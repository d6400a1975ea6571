package outbound

import (
	"github.com/bookworm/bookworm/domain/entity"
)

// AccessClaims is the identity carried by an access token.
type AccessClaims struct {
	UserID string      `json:"user_id"`
	Role   entity.Role `json:"role"`
}

// TokenService mints and verifies both token kinds. Access and refresh tokens
// are signed with independent secrets.
type TokenService interface {
	GenerateAccessToken(userID string, role entity.Role) (string, error)
	GenerateRefreshToken(userID string) (string, error)
	ValidateAccessToken(token string) (*AccessClaims, error)
	// ValidateRefreshToken returns the subject id of a well-signed, unexpired
	// refresh token.
	ValidateRefreshToken(token string) (string, error)
}
