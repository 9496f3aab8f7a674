package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

type TaskRepo struct {
	db *sql.DB
}

func NewTaskRepo(db *sql.DB) *TaskRepo {
	return &TaskRepo{db: db}
}

// ListAll returns every stored task ordered by id. A single undecodable row
// fails the whole list with ErrCorrupt.
func (r *TaskRepo) ListAll(ctx context.Context) ([]Task, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, payload FROM tasks ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("task list: %w", err)
	}
	defer rows.Close()

	var out []Task
	for rows.Next() {
		var (
			id      int64
			payload string
		)
		if err := rows.Scan(&id, &payload); err != nil {
			return nil, fmt.Errorf("task scan: %w", err)
		}
		var t Task
		if err := json.Unmarshal([]byte(payload), &t); err != nil {
			return nil, fmt.Errorf("task %d: %w: %v", id, ErrCorrupt, err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("task list rows: %w", err)
	}
	return out, nil
}

// ReplaceAll swaps the whole task collection in one transaction.
func (r *TaskRepo) ReplaceAll(ctx context.Context, tasks []Task) error {
	return WithTx(ctx, r.db, func(tx *sql.Tx) error {
		return replaceTasksTx(ctx, tx, tasks)
	})
}

func replaceTasksTx(ctx context.Context, tx *sql.Tx, tasks []Task) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM tasks`); err != nil {
		return fmt.Errorf("task clear: %w", err)
	}
	if len(tasks) == 0 {
		return nil
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO tasks (id, payload, updated_at) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("task insert prepare: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for i := range tasks {
		data, err := json.Marshal(tasks[i])
		if err != nil {
			return fmt.Errorf("marshal task %d: %w", tasks[i].ID, err)
		}
		if _, err := stmt.ExecContext(ctx, tasks[i].ID, string(data), now); err != nil {
			return fmt.Errorf("task insert %d: %w", tasks[i].ID, err)
		}
	}
	return nil
}
