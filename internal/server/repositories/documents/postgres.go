package documents

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/draftkeeper/internal/common"
	"github.com/dmitrijs2005/draftkeeper/internal/dbx"
	"github.com/dmitrijs2005/draftkeeper/internal/document"
	"github.com/dmitrijs2005/draftkeeper/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func encodePayload(p document.Payload) (string, error) {
	if p == nil {
		p = document.Payload{}
	}
	b, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("%w: payload is not JSON: %v", common.ErrorInvalidArgument, err)
	}
	return string(b), nil
}

// Create inserts doc with the id it carries and fills in the timestamps.
func (r *PostgresRepository) Create(ctx context.Context, doc *models.Document) (*models.Document, error) {
	payload, err := encodePayload(doc.Payload)
	if err != nil {
		return nil, err
	}

	query :=
		`INSERT INTO documents (id, owner_id, kind, payload)
		 VALUES ($1, $2, $3, $4::jsonb)
		 RETURNING created_at, updated_at
		 `

	err = r.db.QueryRowContext(ctx, query, doc.ID, doc.OwnerID, doc.Kind, payload).Scan(&doc.CreatedAt, &doc.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return doc, nil
}

// Update replaces the whole payload and returns the new updated_at.
func (r *PostgresRepository) Update(ctx context.Context, ownerID, id string, payload document.Payload) (time.Time, error) {
	raw, err := encodePayload(payload)
	if err != nil {
		return time.Time{}, err
	}

	query :=
		`UPDATE documents SET payload = $3::jsonb, updated_at = now()
		 WHERE owner_id = $1 AND id = $2
		 RETURNING updated_at
		 `

	var updatedAt time.Time
	err = r.db.QueryRowContext(ctx, query, ownerID, id, raw).Scan(&updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return time.Time{}, common.ErrorNotFound
		}
		return time.Time{}, fmt.Errorf("db error: %w", err)
	}
	return updatedAt, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, ownerID, id string) (*models.Document, error) {
	query :=
		`SELECT id, owner_id, kind, payload, created_at, updated_at FROM documents
		 WHERE owner_id = $1 AND id = $2
		 `

	doc, err := scanDocument(r.db.QueryRowContext(ctx, query, ownerID, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return doc, nil
}

// List returns the owner's documents, most recently updated first. An empty
// kind matches every kind.
func (r *PostgresRepository) List(ctx context.Context, ownerID, kind string) ([]*models.Document, error) {
	query :=
		`SELECT id, owner_id, kind, payload, created_at, updated_at FROM documents
		 WHERE owner_id = $1 AND ($2 = '' OR kind = $2)
		 ORDER BY updated_at DESC
		 `

	rows, err := r.db.QueryContext(ctx, query, ownerID, kind)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDocument(s scanner) (*models.Document, error) {
	doc := &models.Document{}
	var raw []byte
	if err := s.Scan(&doc.ID, &doc.OwnerID, &doc.Kind, &raw, &doc.CreatedAt, &doc.UpdatedAt); err != nil {
		return nil, err
	}
	doc.Payload = document.Payload{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &doc.Payload); err != nil {
			return nil, fmt.Errorf("decode payload of %s: %w", doc.ID, err)
		}
	}
	return doc, nil
}
