package main

import (
	"context"
	"errors"
	"flag"
	"log"

	"github.com/bookworm/bookworm/application/port/inbound"
	"github.com/bookworm/bookworm/application/usecase"
	"github.com/bookworm/bookworm/application/usecase/user_management"
	"github.com/bookworm/bookworm/domain/apperror"
	"github.com/bookworm/bookworm/infrastructure/config"
	"github.com/bookworm/bookworm/infrastructure/persistence"
	"github.com/bookworm/bookworm/infrastructure/service/jwt"
	"github.com/bookworm/bookworm/infrastructure/service/logger"
	"github.com/bookworm/bookworm/infrastructure/service/password"
)

// create_admin elevates an account to admin. With -password it first
// registers the account when the email is unknown.
func main() {
	email := flag.String("email", "", "email of the account to promote")
	userPassword := flag.String("password", "", "password used when the account has to be created")
	name := flag.String("name", "Administrator", "display name used when the account has to be created")
	flag.Parse()

	if *email == "" {
		log.Fatal("-email is required")
	}

	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.StoreDriver == config.StoreDriverMemory {
		log.Fatal("create_admin needs a persistent STORE_DRIVER")
	}

	structuredLogger := logger.NewStructuredLogger(logger.LoggerConfig{
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		ServiceName: "bookworm-create-admin",
	})

	stores, err := persistence.Open(ctx, cfg, structuredLogger)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer stores.Close(context.Background())

	if *userPassword != "" {
		tokenService, err := jwt.NewJWTService(jwt.Config{
			AccessSecret:  cfg.AccessTokenSecret,
			RefreshSecret: cfg.RefreshTokenSecret,
		})
		if err != nil {
			log.Fatalf("Failed to initialize JWT service: %v", err)
		}
		auth := usecase.NewAuthUseCase(stores.Accounts, tokenService, password.NewBcryptPasswordService(cfg.BcryptCost), structuredLogger)
		res, err := auth.Register(ctx, inbound.RegisterRequest{Email: *email, Password: *userPassword, Name: *name})
		if err != nil {
			log.Fatalf("Failed to register account: %v", err)
		}
		log.Println(res.Message)
	}

	users := user_management.NewUserManagementUseCase(stores.Accounts, structuredLogger)
	account, err := users.PromoteToAdmin(ctx, *email)
	if err != nil {
		if errors.Is(err, apperror.NotFound("")) {
			log.Fatalf("No account with email %s; pass -password to create it", *email)
		}
		log.Fatalf("Failed to promote account: %v", err)
	}

	log.Printf("Account %s (%s) now has role %s", account.Email, account.ID, account.Role)
}
