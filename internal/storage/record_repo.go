package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrCorrupt is returned when a persisted payload cannot be decoded.
var ErrCorrupt = errors.New("corrupt record")

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// RecordRepo stores singleton JSON payloads keyed by name.
type RecordRepo struct {
	db *sql.DB
}

func NewRecordRepo(db *sql.DB) *RecordRepo {
	return &RecordRepo{db: db}
}

// Get decodes the payload stored under key into dst. found is false when no row exists.
func (r *RecordRepo) Get(ctx context.Context, key string, dst any) (found bool, err error) {
	row := r.db.QueryRowContext(ctx, `SELECT payload FROM records WHERE key = ?`, key)
	var payload string
	if err := row.Scan(&payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("record get %s: %w", key, err)
	}
	if err := json.Unmarshal([]byte(payload), dst); err != nil {
		return true, fmt.Errorf("record %s: %w: %v", key, ErrCorrupt, err)
	}
	return true, nil
}

func (r *RecordRepo) Put(ctx context.Context, key string, v any) error {
	return putRecord(ctx, r.db, key, v)
}

func (r *RecordRepo) Delete(ctx context.Context, key string) error {
	return deleteRecord(ctx, r.db, key)
}

func putRecord(ctx context.Context, db execer, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	_, err = db.ExecContext(ctx, `
		INSERT INTO records (key, payload, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at
	`, key, string(data), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("record put %s: %w", key, err)
	}
	return nil
}

func deleteRecord(ctx context.Context, db execer, key string) error {
	if _, err := db.ExecContext(ctx, `DELETE FROM records WHERE key = ?`, key); err != nil {
		return fmt.Errorf("record delete %s: %w", key, err)
	}
	return nil
}
