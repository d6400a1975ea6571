package mongodb

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/bookworm/bookworm/application/port/outbound"
	"github.com/bookworm/bookworm/infrastructure/persistence/storetest"
)

// openTestDB connects to TEST_MONGODB_URI and returns a throwaway database
// dropped at cleanup. Tests skip when the variable is unset.
func openTestDB(t *testing.T) *mongo.Database {
	t.Helper()
	uri := os.Getenv("TEST_MONGODB_URI")
	if uri == "" {
		t.Skip("TEST_MONGODB_URI not set")
	}

	ctx := context.Background()
	name := "bookworm_test_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	client, db, err := Connect(ctx, uri, name, 10*time.Second)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Drop(context.Background())
		_ = client.Disconnect(context.Background())
	})

	require.NoError(t, EnsureIndexes(ctx, db, "books", "genres"))
	return db
}

func TestAccountRepositoryIntegration(t *testing.T) {
	storetest.RunAccountRepository(t, func(t *testing.T) outbound.AccountRepository {
		return NewAccountRepository(openTestDB(t))
	})
}

func TestDocumentRepositoryIntegration(t *testing.T) {
	storetest.RunDocumentRepository(t, func(t *testing.T) outbound.DocumentRepository {
		return NewDocumentRepository(openTestDB(t))
	})
}
