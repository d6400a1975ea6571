package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/bookworm/bookworm/application/port/outbound"
	"github.com/bookworm/bookworm/domain/entity"
)

type accountDocument struct {
	ID             bson.ObjectID `bson:"_id,omitempty"`
	Email          string        `bson:"email"`
	Name           string        `bson:"name"`
	Photo          string        `bson:"photo,omitempty"`
	Password       string        `bson:"password"`
	Role           string        `bson:"role"`
	RefreshToken   string        `bson:"refreshToken,omitempty"`
	CreatedAt      time.Time     `bson:"createdAt"`
	LastLoggedInAt *time.Time    `bson:"lastLoggedInAt,omitempty"`
}

func (d *accountDocument) toEntity() *entity.Account {
	return &entity.Account{
		ID:             d.ID.Hex(),
		Email:          d.Email,
		Name:           d.Name,
		Photo:          d.Photo,
		PasswordHash:   d.Password,
		Role:           entity.Role(d.Role),
		RefreshToken:   d.RefreshToken,
		CreatedAt:      d.CreatedAt,
		LastLoggedInAt: d.LastLoggedInAt,
	}
}

type accountRepository struct {
	coll *mongo.Collection
}

func NewAccountRepository(db *mongo.Database) outbound.AccountRepository {
	return &accountRepository{coll: db.Collection(accountsCollection)}
}

func (r *accountRepository) findOne(ctx context.Context, filter bson.M) (*entity.Account, error) {
	var doc accountDocument
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, outbound.ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to find account: %w", err)
	}
	return doc.toEntity(), nil
}

func (r *accountRepository) FindByID(ctx context.Context, id string) (*entity.Account, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, outbound.ErrAccountNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *accountRepository) FindByEmail(ctx context.Context, email string) (*entity.Account, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *accountRepository) FindByRefreshToken(ctx context.Context, token string) (*entity.Account, error) {
	if token == "" {
		return nil, outbound.ErrAccountNotFound
	}
	return r.findOne(ctx, bson.M{"refreshToken": token})
}

func (r *accountRepository) Create(ctx context.Context, account *entity.Account) (string, error) {
	doc := accountDocument{
		Email:          account.Email,
		Name:           account.Name,
		Photo:          account.Photo,
		Password:       account.PasswordHash,
		Role:           string(account.Role),
		CreatedAt:      account.CreatedAt,
		LastLoggedInAt: account.LastLoggedInAt,
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("failed to create account: %w", err)
	}
	oid, ok := res.InsertedID.(bson.ObjectID)
	if !ok {
		return "", fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}
	return oid.Hex(), nil
}

func (r *accountRepository) updateByID(ctx context.Context, id string, update bson.M) error {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return outbound.ErrAccountNotFound
	}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return fmt.Errorf("failed to update account: %w", err)
	}
	if res.MatchedCount == 0 {
		return outbound.ErrAccountNotFound
	}
	return nil
}

func (r *accountRepository) SetSession(ctx context.Context, id, refreshToken string, loggedInAt time.Time) error {
	return r.updateByID(ctx, id, bson.M{"$set": bson.M{
		"refreshToken":   refreshToken,
		"lastLoggedInAt": loggedInAt,
	}})
}

func (r *accountRepository) TouchLastLogin(ctx context.Context, email string, at time.Time) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"email": email}, bson.M{"$set": bson.M{"lastLoggedInAt": at}})
	if err != nil {
		return fmt.Errorf("failed to touch account: %w", err)
	}
	if res.MatchedCount == 0 {
		return outbound.ErrAccountNotFound
	}
	return nil
}

func (r *accountRepository) ClearRefreshToken(ctx context.Context, token string) (int64, error) {
	if token == "" {
		return 0, nil
	}
	res, err := r.coll.UpdateMany(ctx, bson.M{"refreshToken": token}, bson.M{"$unset": bson.M{"refreshToken": ""}})
	if err != nil {
		return 0, fmt.Errorf("failed to clear refresh token: %w", err)
	}
	return res.ModifiedCount, nil
}

func (r *accountRepository) SetRole(ctx context.Context, id string, role entity.Role) error {
	return r.updateByID(ctx, id, bson.M{"$set": bson.M{"role": string(role)}})
}

func (r *accountRepository) List(ctx context.Context) ([]*entity.Account, error) {
	cursor, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}

	var docs []accountDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode accounts: %w", err)
	}

	accounts := make([]*entity.Account, 0, len(docs))
	for i := range docs {
		accounts = append(accounts, docs[i].toEntity())
	}
	return accounts, nil
}

func (r *accountRepository) Delete(ctx context.Context, id string) (int64, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return 0, nil
	}
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return 0, fmt.Errorf("failed to delete account: %w", err)
	}
	return res.DeletedCount, nil
}
