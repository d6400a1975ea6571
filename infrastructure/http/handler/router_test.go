package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/bookworm/bookworm/application/usecase"
	"github.com/bookworm/bookworm/application/usecase/user_management"
	"github.com/bookworm/bookworm/domain/entity"
	"github.com/bookworm/bookworm/infrastructure/http/middleware"
	"github.com/bookworm/bookworm/infrastructure/persistence/memory"
	"github.com/bookworm/bookworm/infrastructure/service/jwt"
	"github.com/bookworm/bookworm/infrastructure/service/logger"
	"github.com/bookworm/bookworm/infrastructure/service/password"
	"github.com/bookworm/bookworm/infrastructure/service/ratelimit"
)

type testServer struct {
	handler  http.Handler
	accounts *memory.AccountRepository
	tokens   *jwt.JWTService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	log := logger.NewNopLogger()

	tokens, err := jwt.NewJWTService(jwt.Config{AccessSecret: "access-secret", RefreshSecret: "refresh-secret"})
	require.NoError(t, err)

	accounts := memory.NewAccountRepository()
	documents := memory.NewDocumentRepository()
	authUC := usecase.NewAuthUseCase(accounts, tokens, password.NewBcryptPasswordService(bcrypt.MinCost), log)
	authMW := middleware.NewAuthMiddleware(tokens, log)

	resource := func(name string) *ResourceHandler {
		return NewResourceHandler(usecase.NewResourceUseCase(name, documents, log))
	}
	admin := []entity.Role{entity.RoleAdmin}

	handler := NewRouter(RouterConfig{
		Logger: log,
		Auth:   NewAuthHandler(authUC, CookieConfig{Secure: true}),
		Users:  NewUserHandler(user_management.NewUserManagementUseCase(accounts, log)),
		Resources: []ResourceRoute{
			{Handler: resource(usecase.CollectionBooks), WriteRoles: admin},
			{Handler: resource(usecase.CollectionGenres), WriteRoles: admin},
			{Handler: resource(usecase.CollectionTutorials), ReadRoles: []entity.Role{entity.RoleUser, entity.RoleAdmin}, WriteRoles: admin},
		},
		AuthMiddleware: authMW,
		RateLimit:      middleware.NewRateLimitMiddleware(ratelimit.NewMemoryRateLimiter(), log),
		LoginLimit:     RateRule{Attempts: 10, Window: 15 * time.Minute},
		RefreshLimit:   RateRule{Attempts: 30, Window: time.Hour},
	})

	return &testServer{handler: handler, accounts: accounts, tokens: tokens}
}

type call struct {
	method string
	path   string
	body   interface{}
	token  string
	cookie *http.Cookie
}

func (s *testServer) do(t *testing.T, c call) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if c.body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(c.body))
	}
	req := httptest.NewRequest(c.method, c.path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if c.cookie != nil {
		req.AddCookie(c.cookie)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func refreshCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == RefreshCookieName {
			return c
		}
	}
	return nil
}

// login registers email when needed, optionally promotes it and returns the
// access token and refresh cookie.
func (s *testServer) login(t *testing.T, email string, role entity.Role) (string, *http.Cookie) {
	t.Helper()
	s.do(t, call{method: http.MethodPost, path: "/users", body: map[string]string{
		"email": email, "password": "pw123", "name": "Test",
	}})
	if role == entity.RoleAdmin {
		account, err := s.accounts.FindByEmail(context.Background(), email)
		require.NoError(t, err)
		require.NoError(t, s.accounts.SetRole(context.Background(), account.ID, entity.RoleAdmin))
	}

	rec := s.do(t, call{method: http.MethodPost, path: "/login", body: map[string]string{
		"email": email, "password": "pw123",
	}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return decode(t, rec)["accessToken"].(string), refreshCookie(rec)
}

func TestAliceScenario(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, call{method: http.MethodPost, path: "/users", body: map[string]string{
		"email": "alice@example.com", "password": "pw123", "name": "Alice",
	}})
	require.Equal(t, http.StatusCreated, rec.Code)
	aliceID := decode(t, rec)["userId"].(string)
	require.NotEmpty(t, aliceID)

	rec = s.do(t, call{method: http.MethodPost, path: "/login", body: map[string]string{
		"email": "alice@example.com", "password": "wrongpw",
	}})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "AUTH_1001", decode(t, rec)["code"])

	rec = s.do(t, call{method: http.MethodPost, path: "/login", body: map[string]string{
		"email": "alice@example.com", "password": "pw123",
	}})
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, map[string]interface{}{"id": aliceID, "email": "alice@example.com", "role": "user"}, body["user"])

	claims, err := s.tokens.ValidateAccessToken(body["accessToken"].(string))
	require.NoError(t, err)
	assert.Equal(t, aliceID, claims.UserID)
	assert.Equal(t, entity.RoleUser, claims.Role)

	cookie := refreshCookie(rec)
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)
	assert.True(t, cookie.Secure)
	assert.Equal(t, http.SameSiteNoneMode, cookie.SameSite)
	assert.Equal(t, "/", cookie.Path)
	assert.Equal(t, 7*24*60*60, cookie.MaxAge)

	rec = s.do(t, call{method: http.MethodPost, path: "/refresh", cookie: cookie})
	require.Equal(t, http.StatusOK, rec.Code)
	refreshed, err := s.tokens.ValidateAccessToken(decode(t, rec)["accessToken"].(string))
	require.NoError(t, err)
	assert.Equal(t, aliceID, refreshed.UserID)

	rec = s.do(t, call{method: http.MethodPost, path: "/logout", cookie: cookie})
	assert.Equal(t, http.StatusNoContent, rec.Code)
	cleared := refreshCookie(rec)
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)
	assert.True(t, cleared.MaxAge < 0)

	rec = s.do(t, call{method: http.MethodPost, path: "/refresh", cookie: cookie})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "AUTH_1003", decode(t, rec)["code"])
}

func TestRegisterExistingEmail(t *testing.T) {
	s := newTestServer(t)
	body := map[string]string{"email": "alice@example.com", "password": "pw123", "name": "Alice"}

	require.Equal(t, http.StatusCreated, s.do(t, call{method: http.MethodPost, path: "/users", body: body}).Code)

	rec := s.do(t, call{method: http.MethodPost, path: "/users", body: body})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]interface{}{"message": "User already exists"}, decode(t, rec))
}

func TestRegisterValidation(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, call{method: http.MethodPost, path: "/users", body: map[string]string{"email": "nope", "password": "pw", "name": "A"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALID_2001", decode(t, rec)["code"])

	req := httptest.NewRequest(http.MethodPost, "/users", bytes.NewBufferString("{"))
	rec = httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRegisterPasswordTooLong(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, call{method: http.MethodPost, path: "/users", body: map[string]string{
		"email": "alice@example.com", "password": strings.Repeat("p", 73), "name": "Alice",
	}})
	assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	assert.Equal(t, "VALID_2001", decode(t, rec)["code"])
}

func TestCookieEndpointsWithoutCookie(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, call{method: http.MethodPost, path: "/refresh"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "AUTH_1002", decode(t, rec)["code"])

	rec = s.do(t, call{method: http.MethodPost, path: "/logout"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, false, body["status"])
	assert.Equal(t, "No refresh token to revoke", body["message"])
}

func TestSecondLoginSupersedesSession(t *testing.T) {
	s := newTestServer(t)
	_, first := s.login(t, "alice@example.com", entity.RoleUser)
	_, second := s.login(t, "alice@example.com", entity.RoleUser)

	assert.Equal(t, http.StatusUnauthorized, s.do(t, call{method: http.MethodPost, path: "/refresh", cookie: first}).Code)
	assert.Equal(t, http.StatusOK, s.do(t, call{method: http.MethodPost, path: "/refresh", cookie: second}).Code)
}

func TestMe(t *testing.T) {
	s := newTestServer(t)
	token, _ := s.login(t, "alice@example.com", entity.RoleUser)

	rec := s.do(t, call{method: http.MethodGet, path: "/me", token: token})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alice@example.com", decode(t, rec)["email"])

	rec = s.do(t, call{method: http.MethodGet, path: "/me"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, call{method: http.MethodGet, path: "/me", token: "garbage"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "AUTH_1003", decode(t, rec)["code"])
}

func TestUsersAdminSurface(t *testing.T) {
	s := newTestServer(t)
	userToken, _ := s.login(t, "alice@example.com", entity.RoleUser)
	adminToken, _ := s.login(t, "root@example.com", entity.RoleAdmin)

	assert.Equal(t, http.StatusUnauthorized, s.do(t, call{method: http.MethodGet, path: "/users"}).Code)
	assert.Equal(t, http.StatusForbidden, s.do(t, call{method: http.MethodGet, path: "/users", token: userToken}).Code)

	rec := s.do(t, call{method: http.MethodGet, path: "/users", token: adminToken})
	require.Equal(t, http.StatusOK, rec.Code)
	var users []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &users))
	require.Len(t, users, 2)
	for _, u := range users {
		assert.NotContains(t, u, "passwordHash")
		assert.NotContains(t, u, "refreshToken")
	}
	assert.NotContains(t, rec.Body.String(), "$2a$")

	alice, err := s.accounts.FindByEmail(context.Background(), "alice@example.com")
	require.NoError(t, err)

	rec = s.do(t, call{method: http.MethodDelete, path: "/users/" + alice.ID, token: adminToken})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), decode(t, rec)["deletedCount"])

	rec = s.do(t, call{method: http.MethodDelete, path: "/users/" + alice.ID, token: adminToken})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestResourceRoutes(t *testing.T) {
	s := newTestServer(t)
	userToken, _ := s.login(t, "alice@example.com", entity.RoleUser)
	adminToken, _ := s.login(t, "root@example.com", entity.RoleAdmin)

	t.Run("PublicReads", func(t *testing.T) {
		rec := s.do(t, call{method: http.MethodGet, path: "/books"})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `[]`, rec.Body.String())
		assert.Equal(t, http.StatusOK, s.do(t, call{method: http.MethodGet, path: "/genres"}).Code)
	})

	t.Run("TutorialsNeedAuth", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, s.do(t, call{method: http.MethodGet, path: "/tutorials"}).Code)
		assert.Equal(t, http.StatusOK, s.do(t, call{method: http.MethodGet, path: "/tutorials", token: userToken}).Code)
		assert.Equal(t, http.StatusOK, s.do(t, call{method: http.MethodGet, path: "/tutorials", token: adminToken}).Code)
	})

	t.Run("WritesNeedAdmin", func(t *testing.T) {
		book := map[string]interface{}{"title": "Dune"}
		assert.Equal(t, http.StatusUnauthorized, s.do(t, call{method: http.MethodPost, path: "/books", body: book}).Code)
		assert.Equal(t, http.StatusForbidden, s.do(t, call{method: http.MethodPost, path: "/books", body: book, token: userToken}).Code)
	})

	t.Run("Lifecycle", func(t *testing.T) {
		rec := s.do(t, call{method: http.MethodPost, path: "/books", body: map[string]interface{}{"title": "Dune"}, token: adminToken})
		require.Equal(t, http.StatusCreated, rec.Code)
		id := decode(t, rec)["insertedId"].(string)

		rec = s.do(t, call{method: http.MethodGet, path: "/books/" + id})
		require.Equal(t, http.StatusOK, rec.Code)
		doc := decode(t, rec)
		assert.Equal(t, "Dune", doc["title"])
		assert.Equal(t, id, doc["_id"])
		assert.NotEmpty(t, doc["createdAt"])

		rec = s.do(t, call{method: http.MethodPatch, path: "/books/" + id, body: map[string]interface{}{"title": "Dune Messiah"}, token: adminToken})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, float64(1), decode(t, rec)["matchedCount"])

		rec = s.do(t, call{method: http.MethodGet, path: "/books"})
		var docs []map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &docs))
		require.Len(t, docs, 1)
		assert.Equal(t, "Dune Messiah", docs[0]["title"])

		rec = s.do(t, call{method: http.MethodDelete, path: "/books/" + id, token: adminToken})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, float64(1), decode(t, rec)["deletedCount"])

		rec = s.do(t, call{method: http.MethodGet, path: "/books/" + id})
		assert.Equal(t, http.StatusNotFound, rec.Code)

		rec = s.do(t, call{method: http.MethodDelete, path: "/books/" + id, token: adminToken})
		assert.Equal(t, http.StatusNotFound, rec.Code)
		rec = s.do(t, call{method: http.MethodPatch, path: "/books/" + id, body: map[string]interface{}{"title": "x"}, token: adminToken})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("NonObjectBody", func(t *testing.T) {
		rec := s.do(t, call{method: http.MethodPost, path: "/books", body: []string{"x"}, token: adminToken})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestLoginRateLimit(t *testing.T) {
	s := newTestServer(t)
	body := map[string]string{"email": "nobody@example.com", "password": "x"}

	for i := 0; i < 10; i++ {
		require.Equal(t, http.StatusUnauthorized, s.do(t, call{method: http.MethodPost, path: "/login", body: body}).Code)
	}
	rec := s.do(t, call{method: http.MethodPost, path: "/login", body: body})
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "RATE_3001", decode(t, rec)["code"])
}

func TestLoginRateLimitIgnoresForwardedFor(t *testing.T) {
	s := newTestServer(t)

	limited := 0
	for i := 0; i < 20; i++ {
		req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"email":"nobody@example.com","password":"x"}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("203.0.113.%d", i))
		rec := httptest.NewRecorder()
		s.handler.ServeHTTP(rec, req)
		if rec.Code == http.StatusTooManyRequests {
			limited++
		}
	}
	assert.Equal(t, 10, limited)
}

func TestUnknownRouteAndMethod(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, call{method: http.MethodGet, path: "/nope"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "RES_4001", decode(t, rec)["code"])

	rec = s.do(t, call{method: http.MethodPut, path: "/books"})
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, call{method: http.MethodGet, path: "/health"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(middleware.CorrelationIDHeader))
}
