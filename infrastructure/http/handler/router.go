package handler

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/bookworm/bookworm/domain/apperror"
	"github.com/bookworm/bookworm/domain/entity"
	"github.com/bookworm/bookworm/infrastructure/http/middleware"
	"github.com/bookworm/bookworm/infrastructure/http/response"
	"github.com/bookworm/bookworm/infrastructure/service/logger"
)

type RateRule struct {
	Attempts int
	Window   time.Duration
}

// ResourceRoute mounts one collection. Nil ReadRoles makes reads public.
type ResourceRoute struct {
	Handler    *ResourceHandler
	ReadRoles  []entity.Role
	WriteRoles []entity.Role
}

type RouterConfig struct {
	Logger         logger.Logger
	Auth           *AuthHandler
	Users          *UserHandler
	Resources      []ResourceRoute
	AuthMiddleware *middleware.AuthMiddleware
	RateLimit      *middleware.RateLimitMiddleware
	LoginLimit     RateRule
	RefreshLimit   RateRule
	CORSEnabled    bool
	CORS           middleware.CORSConfig
	// TrustedProxies may be nil: the peer address is then the client.
	TrustedProxies *middleware.TrustedProxies
}

// NewRouter wires every route and the global middleware chain.
func NewRouter(cfg RouterConfig) http.Handler {
	log := cfg.Logger
	h := func(fn HandlerFunc) http.Handler { return Handle(log, fn) }
	protect := cfg.AuthMiddleware.Protect
	limit := func(scope string, rule RateRule, next http.Handler) http.Handler {
		if cfg.RateLimit == nil {
			return next
		}
		return cfg.RateLimit.Limit(scope, rule.Attempts, rule.Window)(next)
	}

	router := mux.NewRouter()
	router.NotFoundHandler = h(func(w http.ResponseWriter, r *http.Request) error {
		return apperror.NotFound("Route not found")
	})
	router.MethodNotAllowedHandler = h(func(w http.ResponseWriter, r *http.Request) error {
		return apperror.InvalidInput("Method not allowed").WithStatus(http.StatusMethodNotAllowed)
	})

	router.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		response.Success(w, http.StatusOK, "Book-worm server is getting ready...", nil)
	}).Methods(http.MethodGet)
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		response.Success(w, http.StatusOK, "ok", map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	router.Handle("/users", h(cfg.Auth.Register)).Methods(http.MethodPost)
	router.Handle("/users", protect(entity.RoleAdmin)(h(cfg.Users.ListUsers))).Methods(http.MethodGet)
	router.Handle("/users/{id}", protect(entity.RoleAdmin)(h(cfg.Users.DeleteUser))).Methods(http.MethodDelete)

	router.Handle("/login", limit("login", cfg.LoginLimit, h(cfg.Auth.Login))).Methods(http.MethodPost)
	router.Handle("/refresh", limit("refresh", cfg.RefreshLimit, h(cfg.Auth.Refresh))).Methods(http.MethodPost)
	router.Handle("/logout", h(cfg.Auth.Logout)).Methods(http.MethodPost)
	router.Handle("/me", protect(entity.RoleUser, entity.RoleAdmin)(h(cfg.Auth.Me))).Methods(http.MethodGet)

	for _, rr := range cfg.Resources {
		base := "/" + rr.Handler.resources.Collection()
		read := func(next http.Handler) http.Handler { return next }
		if len(rr.ReadRoles) > 0 {
			read = protect(rr.ReadRoles...)
		}
		write := protect(rr.WriteRoles...)

		router.Handle(base, read(h(rr.Handler.List))).Methods(http.MethodGet)
		router.Handle(base+"/{id}", read(h(rr.Handler.Get))).Methods(http.MethodGet)
		router.Handle(base, write(h(rr.Handler.Create))).Methods(http.MethodPost)
		router.Handle(base+"/{id}", write(h(rr.Handler.Update))).Methods(http.MethodPatch)
		router.Handle(base+"/{id}", write(h(rr.Handler.Delete))).Methods(http.MethodDelete)
	}

	var handler http.Handler = router
	handler = middleware.RequestLogger(log)(handler)
	handler = middleware.Recovery(log)(handler)
	if cfg.CORSEnabled {
		handler = middleware.CORSMiddleware(cfg.CORS)(handler)
	}
	handler = middleware.ClientIPMiddleware(cfg.TrustedProxies)(handler)
	handler = middleware.CorrelationIDMiddleware(handler)
	return handler
}
