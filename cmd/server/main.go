package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bookworm/bookworm/application/usecase"
	"github.com/bookworm/bookworm/application/usecase/user_management"
	"github.com/bookworm/bookworm/domain/entity"
	"github.com/bookworm/bookworm/infrastructure/config"
	"github.com/bookworm/bookworm/infrastructure/http/handler"
	"github.com/bookworm/bookworm/infrastructure/http/middleware"
	"github.com/bookworm/bookworm/infrastructure/persistence"
	"github.com/bookworm/bookworm/infrastructure/service/jwt"
	"github.com/bookworm/bookworm/infrastructure/service/logger"
	"github.com/bookworm/bookworm/infrastructure/service/password"
	"github.com/bookworm/bookworm/infrastructure/service/ratelimit"
)

func main() {
	ctx := context.Background()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	structuredLogger := logger.NewStructuredLogger(logger.LoggerConfig{
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		ServiceName: "bookworm",
	})
	structuredLogger.Info(ctx, "Application starting", map[string]interface{}{
		"env":          cfg.Environment,
		"store_driver": cfg.StoreDriver,
	})

	collections := []string{usecase.CollectionBooks, usecase.CollectionGenres, usecase.CollectionTutorials}
	stores, err := persistence.Open(ctx, cfg, structuredLogger, collections...)
	if err != nil {
		structuredLogger.Error(ctx, "Failed to open store", err, map[string]interface{}{
			"store_driver": cfg.StoreDriver,
		})
		log.Fatalf("Failed to open store: %v", err)
	}
	defer stores.Close(context.Background())

	limiter, err := ratelimit.NewRateLimiter(ctx, ratelimit.RateLimitConfig{
		Enabled:  cfg.RateLimitEnabled,
		Backend:  cfg.RateLimitBackend,
		RedisURL: cfg.RedisURL,
	}, structuredLogger)
	if err != nil {
		structuredLogger.Error(ctx, "Failed to initialize rate limiter, continuing without it", err, map[string]interface{}{
			"backend": cfg.RateLimitBackend,
		})
		limiter = ratelimit.NoopRateLimiter{}
	}

	tokenService, err := jwt.NewJWTService(jwt.Config{
		AccessSecret:  cfg.AccessTokenSecret,
		RefreshSecret: cfg.RefreshTokenSecret,
	})
	if err != nil {
		log.Fatalf("Failed to initialize JWT service: %v", err)
	}
	passwordService := password.NewBcryptPasswordService(cfg.BcryptCost)

	trustedProxies, err := middleware.ParseTrustedProxies(cfg.TrustedProxies)
	if err != nil {
		log.Fatalf("Failed to parse TRUSTED_PROXIES: %v", err)
	}

	// Use cases
	authUseCase := usecase.NewAuthUseCase(stores.Accounts, tokenService, passwordService, structuredLogger)
	userManagementUseCase := user_management.NewUserManagementUseCase(stores.Accounts, structuredLogger)
	resource := func(collection string) *handler.ResourceHandler {
		return handler.NewResourceHandler(usecase.NewResourceUseCase(collection, stores.Documents, structuredLogger))
	}

	admin := []entity.Role{entity.RoleAdmin}
	router := handler.NewRouter(handler.RouterConfig{
		Logger: structuredLogger,
		Auth: handler.NewAuthHandler(authUseCase, handler.CookieConfig{
			Secure: cfg.CookieSecure,
			MaxAge: jwt.DefaultRefreshTokenTTL,
		}),
		Users: handler.NewUserHandler(userManagementUseCase),
		Resources: []handler.ResourceRoute{
			{Handler: resource(usecase.CollectionBooks), WriteRoles: admin},
			{Handler: resource(usecase.CollectionGenres), WriteRoles: admin},
			{
				Handler:    resource(usecase.CollectionTutorials),
				ReadRoles:  []entity.Role{entity.RoleUser, entity.RoleAdmin},
				WriteRoles: admin,
			},
		},
		AuthMiddleware: middleware.NewAuthMiddleware(tokenService, structuredLogger),
		RateLimit:      middleware.NewRateLimitMiddleware(limiter, structuredLogger),
		LoginLimit:     handler.RateRule{Attempts: cfg.RateLimitLoginAttempts, Window: cfg.RateLimitLoginWindow},
		RefreshLimit:   handler.RateRule{Attempts: cfg.RateLimitRefreshAttempts, Window: cfg.RateLimitRefreshWindow},
		CORSEnabled:    cfg.CORSEnabled,
		CORS: middleware.CORSConfig{
			AllowedOrigins:   cfg.CORSAllowedOrigins,
			AllowCredentials: cfg.CORSAllowCredentials,
		},
		TrustedProxies: trustedProxies,
	})

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		structuredLogger.Info(ctx, "Starting server", map[string]interface{}{
			"addr": server.Addr,
		})
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			structuredLogger.Error(ctx, "Server failed to start", err, map[string]interface{}{
				"addr": server.Addr,
			})
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	structuredLogger.Info(ctx, "Shutting down server...", nil)

	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 30*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		structuredLogger.Error(ctx, "Server forced to shutdown", err, nil)
	}
	structuredLogger.Info(ctx, "Server exited", nil)
}
