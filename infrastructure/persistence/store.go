package persistence

import (
	"context"
	"fmt"

	"github.com/bookworm/bookworm/application/port/outbound"
	"github.com/bookworm/bookworm/infrastructure/config"
	"github.com/bookworm/bookworm/infrastructure/persistence/memory"
	"github.com/bookworm/bookworm/infrastructure/persistence/mongodb"
	"github.com/bookworm/bookworm/infrastructure/persistence/postgres"
	"github.com/bookworm/bookworm/infrastructure/service/logger"
)

// Stores bundles the repositories of the configured backend.
type Stores struct {
	Accounts  outbound.AccountRepository
	Documents outbound.DocumentRepository
	close     func(context.Context) error
}

func (s *Stores) Close(ctx context.Context) error {
	if s.close == nil {
		return nil
	}
	return s.close(ctx)
}

// Open connects to the backend named by cfg.StoreDriver. Collection indexes
// are ensured for the given collections on MongoDB; Postgres is migrated.
func Open(ctx context.Context, cfg *config.Config, log logger.Logger, collections ...string) (*Stores, error) {
	connectCtx, cancel := context.WithTimeout(ctx, cfg.StoreTimeout)
	defer cancel()

	switch cfg.StoreDriver {
	case config.StoreDriverMongo:
		client, db, err := mongodb.Connect(connectCtx, cfg.MongoURI, cfg.MongoDatabase, cfg.StoreTimeout)
		if err != nil {
			return nil, err
		}
		if err := mongodb.EnsureIndexes(connectCtx, db, collections...); err != nil {
			_ = client.Disconnect(ctx)
			return nil, err
		}
		log.Info(ctx, "MongoDB connection established", map[string]interface{}{
			"database": cfg.MongoDatabase,
		})
		return &Stores{
			Accounts:  mongodb.NewAccountRepository(db),
			Documents: mongodb.NewDocumentRepository(db),
			close:     client.Disconnect,
		}, nil

	case config.StoreDriverPostgres:
		db, err := postgres.Open(connectCtx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := postgres.MigrateUp(db); err != nil {
			db.Close()
			return nil, err
		}
		log.Info(ctx, "Database connection established", map[string]interface{}{
			"driver": config.StoreDriverPostgres,
		})
		return &Stores{
			Accounts:  postgres.NewAccountRepository(db),
			Documents: postgres.NewDocumentRepository(db),
			close:     func(context.Context) error { return db.Close() },
		}, nil

	case config.StoreDriverMemory:
		log.Warn(ctx, "Using in-memory store; data is lost on restart", nil)
		return &Stores{
			Accounts:  memory.NewAccountRepository(),
			Documents: memory.NewDocumentRepository(),
		}, nil

	default:
		return nil, fmt.Errorf("%w: %q", config.ErrInvalidStoreDriver, cfg.StoreDriver)
	}
}
