package jwt

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookworm/bookworm/domain/entity"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestService(t *testing.T) (*JWTService, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	service, err := NewJWTService(Config{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		Now:           clock.Now,
	})
	require.NoError(t, err)
	return service, clock
}

func TestNewJWTService(t *testing.T) {
	t.Run("MissingSecret", func(t *testing.T) {
		_, err := NewJWTService(Config{AccessSecret: "a"})
		assert.ErrorIs(t, err, ErrMissingSecret)
	})

	t.Run("SharedSecret", func(t *testing.T) {
		_, err := NewJWTService(Config{AccessSecret: "same", RefreshSecret: "same"})
		assert.ErrorIs(t, err, ErrSharedSecret)
	})

	t.Run("FixedTTLs", func(t *testing.T) {
		service, _ := newTestService(t)
		assert.Equal(t, 24*time.Hour, service.AccessTTL())
		assert.Equal(t, 7*24*time.Hour, service.RefreshTTL())
	})
}

func TestJWTService_AccessToken(t *testing.T) {
	t.Run("RoundTrip", func(t *testing.T) {
		service, _ := newTestService(t)

		token, err := service.GenerateAccessToken("user123", entity.RoleAdmin)
		require.NoError(t, err)
		require.NotEmpty(t, token)

		claims, err := service.ValidateAccessToken(token)
		require.NoError(t, err)
		assert.Equal(t, "user123", claims.UserID)
		assert.Equal(t, entity.RoleAdmin, claims.Role)
	})

	t.Run("ValidJustBeforeOneDay", func(t *testing.T) {
		service, clock := newTestService(t)
		token, err := service.GenerateAccessToken("user123", entity.RoleUser)
		require.NoError(t, err)

		clock.Advance(24*time.Hour - time.Second)
		_, err = service.ValidateAccessToken(token)
		assert.NoError(t, err)
	})

	t.Run("ExpiredAfterOneDay", func(t *testing.T) {
		service, clock := newTestService(t)
		token, err := service.GenerateAccessToken("user123", entity.RoleUser)
		require.NoError(t, err)

		clock.Advance(24*time.Hour + time.Second)
		_, err = service.ValidateAccessToken(token)
		assert.ErrorIs(t, err, ErrTokenExpired)
	})

	t.Run("Garbage", func(t *testing.T) {
		service, _ := newTestService(t)
		_, err := service.ValidateAccessToken("invalid-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("WrongSecret", func(t *testing.T) {
		service, _ := newTestService(t)
		other, err := NewJWTService(Config{AccessSecret: "other-access", RefreshSecret: "other-refresh"})
		require.NoError(t, err)

		token, err := other.GenerateAccessToken("user123", entity.RoleUser)
		require.NoError(t, err)

		_, err = service.ValidateAccessToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("RejectsNoneAlgorithm", func(t *testing.T) {
		service, _ := newTestService(t)
		unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
			"sub":  "user123",
			"role": "admin",
			"type": "access",
			"exp":  time.Now().Add(time.Hour).Unix(),
		})
		token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = service.ValidateAccessToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("EmptySubject", func(t *testing.T) {
		service, _ := newTestService(t)
		_, err := service.GenerateAccessToken("", entity.RoleUser)
		assert.ErrorIs(t, err, ErrMissingSubject)
	})
}

func TestJWTService_RefreshToken(t *testing.T) {
	t.Run("RoundTrip", func(t *testing.T) {
		service, _ := newTestService(t)
		token, err := service.GenerateRefreshToken("user123")
		require.NoError(t, err)

		subject, err := service.ValidateRefreshToken(token)
		require.NoError(t, err)
		assert.Equal(t, "user123", subject)
	})

	t.Run("DistinctWithinSameSecond", func(t *testing.T) {
		service, _ := newTestService(t)
		first, err := service.GenerateRefreshToken("user123")
		require.NoError(t, err)
		second, err := service.GenerateRefreshToken("user123")
		require.NoError(t, err)
		assert.NotEqual(t, first, second)
	})

	t.Run("ExpiredAfterSevenDays", func(t *testing.T) {
		service, clock := newTestService(t)
		token, err := service.GenerateRefreshToken("user123")
		require.NoError(t, err)

		clock.Advance(6 * 24 * time.Hour)
		_, err = service.ValidateRefreshToken(token)
		assert.NoError(t, err)

		clock.Advance(24*time.Hour + time.Second)
		_, err = service.ValidateRefreshToken(token)
		assert.ErrorIs(t, err, ErrTokenExpired)
	})

	t.Run("SecretsAreNotInterchangeable", func(t *testing.T) {
		service, _ := newTestService(t)

		access, err := service.GenerateAccessToken("user123", entity.RoleUser)
		require.NoError(t, err)
		refresh, err := service.GenerateRefreshToken("user123")
		require.NoError(t, err)

		_, err = service.ValidateRefreshToken(access)
		assert.ErrorIs(t, err, ErrInvalidToken)
		_, err = service.ValidateAccessToken(refresh)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
