package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/bookworm/bookworm/application/port/outbound"
	"github.com/bookworm/bookworm/domain/entity"
	"github.com/bookworm/bookworm/infrastructure/service/logger"
)

type mockTokenService struct {
	mock.Mock
	outbound.TokenService
}

func (m *mockTokenService) ValidateAccessToken(token string) (*outbound.AccessClaims, error) {
	args := m.Called(token)
	claims, _ := args.Get(0).(*outbound.AccessClaims)
	return claims, args.Error(1)
}

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	claims := GetUserClaims(r.Context())
	w.Header().Set("X-User", claims.UserID)
	w.WriteHeader(http.StatusOK)
})

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Status bool   `json:"status"`
		Code   string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Status)
	return body.Code
}

func TestRequireAuth(t *testing.T) {
	tokens := &mockTokenService{}
	tokens.On("ValidateAccessToken", "good").Return(&outbound.AccessClaims{UserID: "u1", Role: entity.RoleUser}, nil)
	tokens.On("ValidateAccessToken", "bad").Return(nil, assert.AnError)

	m := NewAuthMiddleware(tokens, logger.NewNopLogger())
	h := m.RequireAuth(okHandler)

	tests := []struct {
		name   string
		header string
		status int
		code   string
	}{
		{"NoHeader", "", http.StatusUnauthorized, "AUTH_1002"},
		{"WrongScheme", "Basic good", http.StatusUnauthorized, "AUTH_1002"},
		{"EmptyToken", "Bearer ", http.StatusUnauthorized, "AUTH_1002"},
		{"InvalidToken", "Bearer bad", http.StatusUnauthorized, "AUTH_1003"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.code, errorCode(t, rec))
		})
	}

	t.Run("ValidToken", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer good")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "u1", rec.Header().Get("X-User"))
	})

	tokens.AssertNotCalled(t, "ValidateAccessToken", "")
}

func TestRequireRole(t *testing.T) {
	m := NewAuthMiddleware(&mockTokenService{}, logger.NewNopLogger())

	serve := func(claims *outbound.AccessClaims, allowed ...entity.Role) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/tutorials", nil)
		if claims != nil {
			req = req.WithContext(WithUserClaims(req.Context(), claims))
		}
		rec := httptest.NewRecorder()
		m.RequireRole(allowed...)(okHandler).ServeHTTP(rec, req)
		return rec
	}

	t.Run("Allowed", func(t *testing.T) {
		rec := serve(&outbound.AccessClaims{UserID: "u1", Role: entity.RoleUser}, entity.RoleUser, entity.RoleAdmin)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("AdminDoesNotPassUserOnlyGate", func(t *testing.T) {
		rec := serve(&outbound.AccessClaims{UserID: "u1", Role: entity.RoleAdmin}, entity.RoleUser)
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, "SEC_7001", errorCode(t, rec))
	})

	t.Run("UserDeniedAdminGate", func(t *testing.T) {
		rec := serve(&outbound.AccessClaims{UserID: "u1", Role: entity.RoleUser}, entity.RoleAdmin)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("NoIdentity", func(t *testing.T) {
		rec := serve(nil, entity.RoleUser)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "AUTH_1002", errorCode(t, rec))
	})
}

func TestProtect(t *testing.T) {
	tokens := &mockTokenService{}
	tokens.On("ValidateAccessToken", "user-token").Return(&outbound.AccessClaims{UserID: "u1", Role: entity.RoleUser}, nil)
	m := NewAuthMiddleware(tokens, logger.NewNopLogger())

	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	req.Header.Set("Authorization", "Bearer user-token")
	rec := httptest.NewRecorder()
	m.Protect(entity.RoleAdmin)(okHandler).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}
