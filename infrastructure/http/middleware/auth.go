package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/bookworm/bookworm/application/port/outbound"
	"github.com/bookworm/bookworm/domain/apperror"
	"github.com/bookworm/bookworm/domain/entity"
	"github.com/bookworm/bookworm/infrastructure/http/response"
	"github.com/bookworm/bookworm/infrastructure/service/logger"
)

type contextKey string

const authUserKey contextKey = "auth_user"

type AuthMiddleware struct {
	tokenService outbound.TokenService
	logger       logger.Logger
}

func NewAuthMiddleware(tokenService outbound.TokenService, log logger.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		tokenService: tokenService,
		logger:       log,
	}
}

// RequireAuth admits requests carrying a valid bearer access token and
// stores its claims in the request context.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r.Header.Get("Authorization"))
		if !ok {
			response.Error(w, apperror.MissingCredential("Authorization header required"))
			return
		}

		claims, err := m.tokenService.ValidateAccessToken(token)
		if err != nil {
			logger.LogSecurityEvent(r.Context(), m.logger, "access_token_rejected", "LOW", map[string]interface{}{
				"path":  r.URL.Path,
				"error": err.Error(),
			})
			response.Error(w, apperror.InvalidCredential("Invalid or expired token", err))
			return
		}

		next.ServeHTTP(w, r.WithContext(WithUserClaims(r.Context(), claims)))
	})
}

// RequireRole admits only the listed roles. There is no hierarchy: admin
// does not pass a user-only gate.
func (m *AuthMiddleware) RequireRole(allowed ...entity.Role) func(http.Handler) http.Handler {
	set := make(map[entity.Role]struct{}, len(allowed))
	for _, role := range allowed {
		set[role] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := GetUserClaims(r.Context())
			if claims == nil {
				response.Error(w, apperror.MissingCredential("User not authenticated"))
				return
			}

			if _, ok := set[claims.Role]; !ok {
				logger.LogSecurityEvent(r.Context(), m.logger, "role_denied", "MEDIUM", map[string]interface{}{
					"user_id": claims.UserID,
					"role":    string(claims.Role),
					"path":    r.URL.Path,
				})
				response.Error(w, apperror.Forbidden("Forbidden access"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// Protect chains RequireAuth and RequireRole.
func (m *AuthMiddleware) Protect(allowed ...entity.Role) func(http.Handler) http.Handler {
	gate := m.RequireRole(allowed...)
	return func(next http.Handler) http.Handler {
		return m.RequireAuth(gate(next))
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || scheme != "Bearer" {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func WithUserClaims(ctx context.Context, claims *outbound.AccessClaims) context.Context {
	return context.WithValue(ctx, authUserKey, claims)
}

// GetUserClaims retrieves user claims from context
func GetUserClaims(ctx context.Context) *outbound.AccessClaims {
	if claims, ok := ctx.Value(authUserKey).(*outbound.AccessClaims); ok {
		return claims
	}
	return nil
}
