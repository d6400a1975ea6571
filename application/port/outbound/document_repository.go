package outbound

import (
	"context"
	"errors"

	"github.com/bookworm/bookworm/domain/entity"
)

var (
	ErrDocumentNotFound = errors.New("document not found")
)

type DocumentRepository interface {
	// List returns every document of the collection, newest createdAt first.
	List(ctx context.Context, collection string) ([]entity.Document, error)
	FindByID(ctx context.Context, collection, id string) (entity.Document, error)
	Insert(ctx context.Context, collection string, doc entity.Document) (string, error)
	// UpdateByID sets the given fields and reports how many documents matched.
	UpdateByID(ctx context.Context, collection, id string, fields entity.Document) (int64, error)
	DeleteByID(ctx context.Context, collection, id string) (int64, error)
}
