package inbound

import (
	"context"

	"github.com/bookworm/bookworm/domain/entity"
)

type DeleteResult struct {
	DeletedCount int64 `json:"deletedCount"`
}

type UpdateResult struct {
	MatchedCount int64 `json:"matchedCount"`
}

type InsertResult struct {
	InsertedID string `json:"insertedId"`
}

// UserManagementUseCase backs the admin-only account endpoints.
type UserManagementUseCase interface {
	ListUsers(ctx context.Context) ([]*entity.Account, error)
	DeleteUser(ctx context.Context, userID string) (*DeleteResult, error)
	PromoteToAdmin(ctx context.Context, email string) (*entity.Account, error)
}

// ResourceUseCase is the pass-through CRUD over one document collection.
type ResourceUseCase interface {
	Collection() string
	List(ctx context.Context) ([]entity.Document, error)
	Get(ctx context.Context, id string) (entity.Document, error)
	Create(ctx context.Context, doc entity.Document) (*InsertResult, error)
	Update(ctx context.Context, id string, fields entity.Document) (*UpdateResult, error)
	Delete(ctx context.Context, id string) (*DeleteResult, error)
}
