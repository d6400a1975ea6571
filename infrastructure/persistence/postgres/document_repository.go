package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/bookworm/bookworm/application/port/outbound"
	"github.com/bookworm/bookworm/domain/entity"
)

// documentRepository keeps every collection in one JSONB table keyed by
// collection name. _id and createdAt live in columns, not in the body.
type documentRepository struct {
	db *sql.DB
}

func NewDocumentRepository(db *sql.DB) outbound.DocumentRepository {
	return &documentRepository{db: db}
}

func encodeBody(doc entity.Document) ([]byte, error) {
	body := make(map[string]interface{}, len(doc))
	for k, v := range doc {
		if k == entity.FieldID || k == entity.FieldCreatedAt {
			continue
		}
		body[k] = v
	}
	return json.Marshal(body)
}

func decodeDocument(id string, body []byte, createdAt time.Time) (entity.Document, error) {
	doc := entity.Document{}
	if len(body) > 0 {
		if err := json.Unmarshal(body, &doc); err != nil {
			return nil, fmt.Errorf("failed to decode document body: %w", err)
		}
	}
	doc[entity.FieldID] = id
	doc[entity.FieldCreatedAt] = createdAt.UTC()
	return doc, nil
}

func (r *documentRepository) List(ctx context.Context, collection string) ([]entity.Document, error) {
	query := `SELECT id, body, created_at FROM documents WHERE collection = $1 ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, collection)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", collection, err)
	}
	defer rows.Close()

	docs := []entity.Document{}
	for rows.Next() {
		var (
			id        string
			body      []byte
			createdAt time.Time
		)
		if err := rows.Scan(&id, &body, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan %s document: %w", collection, err)
		}
		doc, err := decodeDocument(id, body, createdAt)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func (r *documentRepository) FindByID(ctx context.Context, collection, id string) (entity.Document, error) {
	query := `SELECT body, created_at FROM documents WHERE collection = $1 AND id = $2`

	var (
		body      []byte
		createdAt time.Time
	)
	if err := r.db.QueryRowContext(ctx, query, collection, id).Scan(&body, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, outbound.ErrDocumentNotFound
		}
		return nil, fmt.Errorf("failed to find %s document: %w", collection, err)
	}
	return decodeDocument(id, body, createdAt)
}

func (r *documentRepository) Insert(ctx context.Context, collection string, doc entity.Document) (string, error) {
	body, err := encodeBody(doc)
	if err != nil {
		return "", fmt.Errorf("failed to encode document: %w", err)
	}

	createdAt, ok := doc[entity.FieldCreatedAt].(time.Time)
	if !ok {
		createdAt = time.Now().UTC()
	}

	id := uuid.NewString()
	query := `INSERT INTO documents (id, collection, body, created_at) VALUES ($1, $2, $3::jsonb, $4)`
	if _, err := r.db.ExecContext(ctx, query, id, collection, string(body), createdAt); err != nil {
		return "", fmt.Errorf("failed to insert into %s: %w", collection, err)
	}
	return id, nil
}

func (r *documentRepository) UpdateByID(ctx context.Context, collection, id string, fields entity.Document) (int64, error) {
	body, err := encodeBody(fields)
	if err != nil {
		return 0, fmt.Errorf("failed to encode fields: %w", err)
	}

	query := `UPDATE documents SET body = body || $3::jsonb WHERE collection = $1 AND id = $2`
	res, err := r.db.ExecContext(ctx, query, collection, id, string(body))
	if err != nil {
		return 0, fmt.Errorf("failed to update %s document: %w", collection, err)
	}
	return res.RowsAffected()
}

func (r *documentRepository) DeleteByID(ctx context.Context, collection, id string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM documents WHERE collection = $1 AND id = $2`, collection, id)
	if err != nil {
		return 0, fmt.Errorf("failed to delete %s document: %w", collection, err)
	}
	return res.RowsAffected()
}
