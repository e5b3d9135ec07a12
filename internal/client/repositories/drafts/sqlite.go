package drafts

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
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Upsert(ctx context.Context, d *document.Draft) error {
	payload, err := json.Marshal(d.Payload)
	if err != nil {
		return fmt.Errorf("failed to encode draft %s: %w", d.Key(), err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO drafts (kind, remote_id, payload, saved_at, create_key) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(kind, remote_id) DO UPDATE SET
			payload    = excluded.payload,
			saved_at   = excluded.saved_at,
			create_key = excluded.create_key
	`, d.Kind, d.RemoteID, string(payload), d.SavedAt.UTC().UnixNano(), d.CreateKey)
	if err != nil {
		return fmt.Errorf("failed to save draft %s: %w", d.Key(), err)
	}
	return nil
}

func (r *SQLiteRepository) Get(ctx context.Context, key document.Key) (*document.Draft, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT kind, remote_id, payload, saved_at, create_key FROM drafts
		WHERE kind = ? AND remote_id = ?
	`, key.Kind, key.RemoteID)

	d, err := scanDraft(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get draft %s: %w", key, err)
	}
	return d, nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, key document.Key) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM drafts WHERE kind = ? AND remote_id = ?`, key.Kind, key.RemoteID)
	if err != nil {
		return fmt.Errorf("failed to delete draft %s: %w", key, err)
	}
	return nil
}

func (r *SQLiteRepository) ExistsNew(ctx context.Context, kind string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM drafts WHERE kind = ? AND remote_id = ''`, kind).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to check new draft for %q: %w", kind, err)
	}
	return n > 0, nil
}

func (r *SQLiteRepository) List(ctx context.Context) ([]document.Draft, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT kind, remote_id, payload, saved_at, create_key FROM drafts
		ORDER BY saved_at DESC, kind, remote_id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list drafts: %w", err)
	}
	defer rows.Close()

	var result []document.Draft
	for rows.Next() {
		d, err := scanDraft(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan draft: %w", err)
		}
		result = append(result, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list drafts: %w", err)
	}
	return result, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDraft(s scanner) (*document.Draft, error) {
	var (
		d       document.Draft
		payload string
		savedAt int64
	)
	if err := s.Scan(&d.Kind, &d.RemoteID, &payload, &savedAt, &d.CreateKey); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(payload), &d.Payload); err != nil {
		return nil, fmt.Errorf("corrupt payload for %s: %w", d.Key(), err)
	}
	d.SavedAt = time.Unix(0, savedAt).UTC()
	return &d, nil
}
