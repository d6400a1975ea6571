package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/bookworm/bookworm/application/port/outbound"
	"github.com/bookworm/bookworm/domain/entity"
)

// Token lifetimes are fixed policy, not configuration.
const (
	DefaultAccessTokenTTL  = 24 * time.Hour
	DefaultRefreshTokenTTL = 7 * 24 * time.Hour

	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

var (
	ErrInvalidToken   = errors.New("invalid token")
	ErrTokenExpired   = errors.New("token expired")
	ErrMissingSecret  = errors.New("access and refresh secrets are required")
	ErrSharedSecret   = errors.New("access and refresh secrets must differ")
	ErrMissingSubject = errors.New("subject is required")
)

type Config struct {
	AccessSecret  string
	RefreshSecret string
	Issuer        string
	// Now overrides the clock used for issuing and validating. Defaults to time.Now.
	Now func() time.Time
}

// JWTService signs access and refresh tokens with HS256 under two
// independent secrets.
type JWTService struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	issuer        string
	now           func() time.Time
}

type accessTokenClaims struct {
	Role string `json:"role"`
	Type string `json:"type"`
	jwt.RegisteredClaims
}

type refreshTokenClaims struct {
	Type string `json:"type"`
	jwt.RegisteredClaims
}

var _ outbound.TokenService = (*JWTService)(nil)

func NewJWTService(cfg Config) (*JWTService, error) {
	if cfg.AccessSecret == "" || cfg.RefreshSecret == "" {
		return nil, ErrMissingSecret
	}
	if cfg.AccessSecret == cfg.RefreshSecret {
		return nil, ErrSharedSecret
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &JWTService{
		accessSecret:  []byte(cfg.AccessSecret),
		refreshSecret: []byte(cfg.RefreshSecret),
		accessTTL:     DefaultAccessTokenTTL,
		refreshTTL:    DefaultRefreshTokenTTL,
		issuer:        cfg.Issuer,
		now:           cfg.Now,
	}, nil
}

func (s *JWTService) AccessTTL() time.Duration  { return s.accessTTL }
func (s *JWTService) RefreshTTL() time.Duration { return s.refreshTTL }

func (s *JWTService) registered(subject string, ttl time.Duration) jwt.RegisteredClaims {
	now := s.now()
	return jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    s.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		// jti keeps two tokens minted in the same second distinct
		ID: uuid.NewString(),
	}
}

func (s *JWTService) GenerateAccessToken(userID string, role entity.Role) (string, error) {
	if userID == "" {
		return "", ErrMissingSubject
	}
	claims := accessTokenClaims{
		Role:             string(role),
		Type:             tokenTypeAccess,
		RegisteredClaims: s.registered(userID, s.accessTTL),
	}

	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.accessSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return tokenString, nil
}

func (s *JWTService) GenerateRefreshToken(userID string) (string, error) {
	if userID == "" {
		return "", ErrMissingSubject
	}
	claims := refreshTokenClaims{
		Type:             tokenTypeRefresh,
		RegisteredClaims: s.registered(userID, s.refreshTTL),
	}

	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.refreshSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign refresh token: %w", err)
	}
	return tokenString, nil
}

func (s *JWTService) ValidateAccessToken(tokenString string) (*outbound.AccessClaims, error) {
	var claims accessTokenClaims
	if err := s.parse(tokenString, &claims, s.accessSecret); err != nil {
		return nil, err
	}
	if claims.Type != tokenTypeAccess || claims.Subject == "" {
		return nil, ErrInvalidToken
	}

	return &outbound.AccessClaims{
		UserID: claims.Subject,
		Role:   entity.Role(claims.Role),
	}, nil
}

func (s *JWTService) ValidateRefreshToken(tokenString string) (string, error) {
	var claims refreshTokenClaims
	if err := s.parse(tokenString, &claims, s.refreshSecret); err != nil {
		return "", err
	}
	if claims.Type != tokenTypeRefresh || claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}

func (s *JWTService) parse(tokenString string, claims jwt.Claims, secret []byte) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return s.handleValidationError(err)
	}
	if !token.Valid {
		return ErrInvalidToken
	}
	return nil
}

func (s *JWTService) handleValidationError(err error) error {
	if errors.Is(err, jwt.ErrTokenExpired) {
		return ErrTokenExpired
	}
	return ErrInvalidToken
}
