package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bookworm/bookworm/application/port/outbound"
	"github.com/bookworm/bookworm/domain/entity"
)

type DocumentRepository struct {
	mu          sync.RWMutex
	collections map[string]map[string]entity.Document
}

var _ outbound.DocumentRepository = (*DocumentRepository)(nil)

func NewDocumentRepository() *DocumentRepository {
	return &DocumentRepository{
		collections: make(map[string]map[string]entity.Document),
	}
}

func copyDocument(d entity.Document) entity.Document {
	out := make(entity.Document, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

func createdAt(d entity.Document) time.Time {
	t, _ := d[entity.FieldCreatedAt].(time.Time)
	return t
}

func (r *DocumentRepository) List(ctx context.Context, collection string) ([]entity.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	docs := r.collections[collection]
	out := make([]entity.Document, 0, len(docs))
	for _, d := range docs {
		out = append(out, copyDocument(d))
	}
	sort.SliceStable(out, func(i, j int) bool { return createdAt(out[i]).After(createdAt(out[j])) })
	return out, nil
}

func (r *DocumentRepository) FindByID(ctx context.Context, collection, id string) (entity.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if d, ok := r.collections[collection][id]; ok {
		return copyDocument(d), nil
	}
	return nil, outbound.ErrDocumentNotFound
}

func (r *DocumentRepository) Insert(ctx context.Context, collection string, doc entity.Document) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	docs, ok := r.collections[collection]
	if !ok {
		docs = make(map[string]entity.Document)
		r.collections[collection] = docs
	}

	id := uuid.NewString()
	stored := copyDocument(doc)
	stored[entity.FieldID] = id
	docs[id] = stored
	return id, nil
}

func (r *DocumentRepository) UpdateByID(ctx context.Context, collection, id string, fields entity.Document) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.collections[collection][id]
	if !ok {
		return 0, nil
	}
	for k, v := range fields {
		d[k] = v
	}
	return 1, nil
}

func (r *DocumentRepository) DeleteByID(ctx context.Context, collection, id string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.collections[collection][id]; !ok {
		return 0, nil
	}
	delete(r.collections[collection], id)
	return 1, nil
}
