package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/bookworm/bookworm/application/port/inbound"
	"github.com/bookworm/bookworm/application/port/outbound"
	"github.com/bookworm/bookworm/domain/apperror"
	"github.com/bookworm/bookworm/domain/entity"
	"github.com/bookworm/bookworm/infrastructure/service/logger"
)

// Catalog collections served through ResourceUseCase.
const (
	CollectionBooks     = "books"
	CollectionGenres    = "genres"
	CollectionTutorials = "tutorials"
)

// ResourceUseCase is pass-through CRUD over one document collection.
type ResourceUseCase struct {
	collection string
	documents  outbound.DocumentRepository
	logger     logger.Logger
	now        func() time.Time
}

func NewResourceUseCase(collection string, documents outbound.DocumentRepository, log logger.Logger) *ResourceUseCase {
	return &ResourceUseCase{
		collection: collection,
		documents:  documents,
		logger:     log,
		now:        time.Now,
	}
}

var _ inbound.ResourceUseCase = (*ResourceUseCase)(nil)

func (uc *ResourceUseCase) Collection() string {
	return uc.collection
}

func (uc *ResourceUseCase) List(ctx context.Context) ([]entity.Document, error) {
	docs, err := uc.documents.List(ctx, uc.collection)
	if err != nil {
		return nil, apperror.StoreFailure("list "+uc.collection, err)
	}
	if docs == nil {
		docs = []entity.Document{}
	}
	return docs, nil
}

func (uc *ResourceUseCase) Get(ctx context.Context, id string) (entity.Document, error) {
	doc, err := uc.documents.FindByID(ctx, uc.collection, id)
	if err != nil {
		if errors.Is(err, outbound.ErrDocumentNotFound) {
			return nil, apperror.NotFound("Document not found")
		}
		return nil, apperror.StoreFailure("find "+uc.collection, err)
	}
	return doc, nil
}

func (uc *ResourceUseCase) Create(ctx context.Context, doc entity.Document) (*inbound.InsertResult, error) {
	if len(doc) == 0 {
		return nil, apperror.InvalidInput("Request body must be a non-empty JSON object")
	}

	id, err := uc.documents.Insert(ctx, uc.collection, doc.Stamp(uc.now()))
	if err != nil {
		return nil, apperror.StoreFailure("insert "+uc.collection, err)
	}

	uc.logger.Info(ctx, "Document created", map[string]interface{}{
		"collection": uc.collection,
		"id":         id,
	})
	return &inbound.InsertResult{InsertedID: id}, nil
}

// Update sets the given fields on the document with this id.
func (uc *ResourceUseCase) Update(ctx context.Context, id string, fields entity.Document) (*inbound.UpdateResult, error) {
	if len(fields) == 0 {
		return nil, apperror.InvalidInput("Request body must be a non-empty JSON object")
	}

	matched, err := uc.documents.UpdateByID(ctx, uc.collection, id, fields.Patch())
	if err != nil {
		return nil, apperror.StoreFailure("update "+uc.collection, err)
	}
	if matched == 0 {
		return nil, apperror.NotFound("Document not found")
	}
	return &inbound.UpdateResult{MatchedCount: matched}, nil
}

func (uc *ResourceUseCase) Delete(ctx context.Context, id string) (*inbound.DeleteResult, error) {
	deleted, err := uc.documents.DeleteByID(ctx, uc.collection, id)
	if err != nil {
		return nil, apperror.StoreFailure("delete "+uc.collection, err)
	}

	if deleted == 0 {
		return nil, apperror.NotFound("Document not found")
	}

	uc.logger.Info(ctx, "Document deleted", map[string]interface{}{
		"collection": uc.collection,
		"id":         id,
	})
	return &inbound.DeleteResult{DeletedCount: deleted}, nil
}
