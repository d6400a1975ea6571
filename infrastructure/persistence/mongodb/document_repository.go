package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/bookworm/bookworm/application/port/outbound"
	"github.com/bookworm/bookworm/domain/entity"
)

type documentRepository struct {
	db *mongo.Database
}

func NewDocumentRepository(db *mongo.Database) outbound.DocumentRepository {
	return &documentRepository{db: db}
}

func (r *documentRepository) List(ctx context.Context, collection string) ([]entity.Document, error) {
	opts := options.Find().SetSort(bson.D{{Key: entity.FieldCreatedAt, Value: -1}})
	cursor, err := r.db.Collection(collection).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", collection, err)
	}

	var raw []bson.M
	if err := cursor.All(ctx, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", collection, err)
	}

	docs := make([]entity.Document, 0, len(raw))
	for _, m := range raw {
		docs = append(docs, toDocument(m))
	}
	return docs, nil
}

func (r *documentRepository) FindByID(ctx context.Context, collection, id string) (entity.Document, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, outbound.ErrDocumentNotFound
	}

	var m bson.M
	if err := r.db.Collection(collection).FindOne(ctx, bson.M{"_id": oid}).Decode(&m); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, outbound.ErrDocumentNotFound
		}
		return nil, fmt.Errorf("failed to find %s document: %w", collection, err)
	}
	return toDocument(m), nil
}

func (r *documentRepository) Insert(ctx context.Context, collection string, doc entity.Document) (string, error) {
	res, err := r.db.Collection(collection).InsertOne(ctx, bson.M(doc))
	if err != nil {
		return "", fmt.Errorf("failed to insert into %s: %w", collection, err)
	}
	return idString(res.InsertedID), nil
}

func (r *documentRepository) UpdateByID(ctx context.Context, collection, id string, fields entity.Document) (int64, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return 0, nil
	}
	if len(fields) == 0 {
		n, err := r.db.Collection(collection).CountDocuments(ctx, bson.M{"_id": oid})
		if err != nil {
			return 0, fmt.Errorf("failed to count %s documents: %w", collection, err)
		}
		return n, nil
	}

	res, err := r.db.Collection(collection).UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M(fields)})
	if err != nil {
		return 0, fmt.Errorf("failed to update %s document: %w", collection, err)
	}
	return res.MatchedCount, nil
}

func (r *documentRepository) DeleteByID(ctx context.Context, collection, id string) (int64, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return 0, nil
	}
	res, err := r.db.Collection(collection).DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return 0, fmt.Errorf("failed to delete %s document: %w", collection, err)
	}
	return res.DeletedCount, nil
}

func idString(v interface{}) string {
	if oid, ok := v.(bson.ObjectID); ok {
		return oid.Hex()
	}
	return fmt.Sprint(v)
}

func toDocument(m bson.M) entity.Document {
	doc := make(entity.Document, len(m))
	for k, v := range m {
		doc[k] = plain(v)
	}
	if id, ok := m["_id"]; ok {
		doc[entity.FieldID] = idString(id)
	}
	return doc
}

// plain converts driver specific values into types encoding/json renders
// the way clients expect.
func plain(v interface{}) interface{} {
	switch t := v.(type) {
	case bson.ObjectID:
		return t.Hex()
	case bson.DateTime:
		return t.Time().UTC()
	case bson.M:
		out := make(map[string]interface{}, len(t))
		for k, vv := range t {
			out[k] = plain(vv)
		}
		return out
	case bson.D:
		out := make(map[string]interface{}, len(t))
		for _, e := range t {
			out[e.Key] = plain(e.Value)
		}
		return out
	case bson.A:
		out := make([]interface{}, len(t))
		for i, vv := range t {
			out[i] = plain(vv)
		}
		return out
	default:
		return v
	}
}
