package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

const accountsCollection = "users"

// Connect opens a client, checks the primary is reachable and returns the
// named database. Every operation on the client is bounded by timeout.
func Connect(ctx context.Context, uri, database string, timeout time.Duration) (*mongo.Client, *mongo.Database, error) {
	opts := options.Client().ApplyURI(uri)
	if timeout > 0 {
		opts.SetTimeout(timeout)
	}

	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return client, client.Database(database), nil
}

// EnsureIndexes creates the lookup indexes the credential store relies on.
// Email is indexed but not unique; uniqueness is enforced by
// look-up-before-insert in the registration flow.
func EnsureIndexes(ctx context.Context, db *mongo.Database, collections ...string) error {
	_, err := db.Collection(accountsCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}},
		{Keys: bson.D{{Key: "refreshToken", Value: 1}}, Options: options.Index().SetSparse(true)},
	})
	if err != nil {
		return fmt.Errorf("failed to create account indexes: %w", err)
	}

	for _, c := range collections {
		_, err := db.Collection(c).Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys: bson.D{{Key: "createdAt", Value: -1}},
		})
		if err != nil {
			return fmt.Errorf("failed to create index on %s: %w", c, err)
		}
	}
	return nil
}
