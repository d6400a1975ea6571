// Package storetest holds behavior every AccountRepository and
// DocumentRepository backend must share. Backends run it from their own tests.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookworm/bookworm/application/port/outbound"
	"github.com/bookworm/bookworm/domain/entity"
)

// MissingID is a syntactically valid id in every backend that no stored
// record uses.
const MissingID = "0123456789abcdef01234567"

func RunAccountRepository(t *testing.T, newRepo func(t *testing.T) outbound.AccountRepository) {
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	create := func(t *testing.T, repo outbound.AccountRepository, email string, at time.Time) string {
		t.Helper()
		id, err := repo.Create(ctx, entity.NewAccount(email, "Alice", "", "hash", at))
		require.NoError(t, err)
		require.NotEmpty(t, id)
		return id
	}

	t.Run("CreateAndFind", func(t *testing.T) {
		repo := newRepo(t)
		id := create(t, repo, "alice@example.com", base)

		byID, err := repo.FindByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "alice@example.com", byID.Email)
		assert.Equal(t, entity.RoleUser, byID.Role)
		assert.Equal(t, "hash", byID.PasswordHash)
		assert.True(t, base.Equal(byID.CreatedAt))
		assert.False(t, byID.HasActiveSession())

		byEmail, err := repo.FindByEmail(ctx, "alice@example.com")
		require.NoError(t, err)
		assert.Equal(t, id, byEmail.ID)

		_, err = repo.FindByEmail(ctx, "ALICE@example.com")
		assert.ErrorIs(t, err, outbound.ErrAccountNotFound)
		_, err = repo.FindByID(ctx, MissingID)
		assert.ErrorIs(t, err, outbound.ErrAccountNotFound)
	})

	t.Run("SessionOverwriteAndClear", func(t *testing.T) {
		repo := newRepo(t)
		id := create(t, repo, "alice@example.com", base)

		require.NoError(t, repo.SetSession(ctx, id, "r1", base.Add(time.Minute)))
		require.NoError(t, repo.SetSession(ctx, id, "r2", base.Add(2*time.Minute)))

		_, err := repo.FindByRefreshToken(ctx, "r1")
		assert.ErrorIs(t, err, outbound.ErrAccountNotFound)

		account, err := repo.FindByRefreshToken(ctx, "r2")
		require.NoError(t, err)
		assert.Equal(t, id, account.ID)
		require.NotNil(t, account.LastLoggedInAt)
		assert.True(t, base.Add(2*time.Minute).Equal(*account.LastLoggedInAt))

		n, err := repo.ClearRefreshToken(ctx, "r1")
		require.NoError(t, err)
		assert.Equal(t, int64(0), n)

		n, err = repo.ClearRefreshToken(ctx, "r2")
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		_, err = repo.FindByRefreshToken(ctx, "r2")
		assert.ErrorIs(t, err, outbound.ErrAccountNotFound)

		assert.ErrorIs(t, repo.SetSession(ctx, MissingID, "r3", base), outbound.ErrAccountNotFound)
	})

	t.Run("TouchRoleListDelete", func(t *testing.T) {
		repo := newRepo(t)
		older := create(t, repo, "old@example.com", base)
		newer := create(t, repo, "new@example.com", base.Add(time.Hour))

		require.NoError(t, repo.TouchLastLogin(ctx, "old@example.com", base.Add(2*time.Hour)))
		assert.ErrorIs(t, repo.TouchLastLogin(ctx, "nobody@example.com", base), outbound.ErrAccountNotFound)

		require.NoError(t, repo.SetRole(ctx, older, entity.RoleAdmin))
		account, err := repo.FindByID(ctx, older)
		require.NoError(t, err)
		assert.Equal(t, entity.RoleAdmin, account.Role)

		all, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, newer, all[0].ID)

		n, err := repo.Delete(ctx, newer)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
		n, err = repo.Delete(ctx, newer)
		require.NoError(t, err)
		assert.Equal(t, int64(0), n)
	})
}

func RunDocumentRepository(t *testing.T, newRepo func(t *testing.T) outbound.DocumentRepository) {
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	t.Run("InsertFindList", func(t *testing.T) {
		repo := newRepo(t)

		first, err := repo.Insert(ctx, "books", entity.Document{"title": "first"}.Stamp(base))
		require.NoError(t, err)
		second, err := repo.Insert(ctx, "books", entity.Document{"title": "second"}.Stamp(base.Add(time.Hour)))
		require.NoError(t, err)
		_, err = repo.Insert(ctx, "genres", entity.Document{"name": "sci-fi"}.Stamp(base))
		require.NoError(t, err)

		doc, err := repo.FindByID(ctx, "books", first)
		require.NoError(t, err)
		assert.Equal(t, first, doc.ID())
		assert.Equal(t, "first", doc["title"])

		_, err = repo.FindByID(ctx, "genres", first)
		assert.ErrorIs(t, err, outbound.ErrDocumentNotFound)
		_, err = repo.FindByID(ctx, "books", MissingID)
		assert.ErrorIs(t, err, outbound.ErrDocumentNotFound)

		docs, err := repo.List(ctx, "books")
		require.NoError(t, err)
		require.Len(t, docs, 2)
		assert.Equal(t, second, docs[0].ID())
		assert.Equal(t, first, docs[1].ID())
	})

	t.Run("UpdateAndDelete", func(t *testing.T) {
		repo := newRepo(t)
		id, err := repo.Insert(ctx, "books", entity.Document{"title": "Dune", "author": "Herbert"}.Stamp(base))
		require.NoError(t, err)

		n, err := repo.UpdateByID(ctx, "books", id, entity.Document{"title": "Dune Messiah"})
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		doc, err := repo.FindByID(ctx, "books", id)
		require.NoError(t, err)
		assert.Equal(t, "Dune Messiah", doc["title"])
		assert.Equal(t, "Herbert", doc["author"])

		n, err = repo.UpdateByID(ctx, "books", MissingID, entity.Document{"title": "x"})
		require.NoError(t, err)
		assert.Equal(t, int64(0), n)

		n, err = repo.DeleteByID(ctx, "books", id)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
		n, err = repo.DeleteByID(ctx, "books", id)
		require.NoError(t, err)
		assert.Equal(t, int64(0), n)
	})
}
