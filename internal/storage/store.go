package storage

import (
	"context"
	"database/sql"
)

// Store is the SQLite-backed object store holding the task collection, the
// user stats singleton and the optional guild.
type Store struct {
	db      *sql.DB
	tasks   *TaskRepo
	records *RecordRepo
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:      db,
		tasks:   NewTaskRepo(db),
		records: NewRecordRepo(db),
	}
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) LoadTasks(ctx context.Context) ([]Task, error) {
	return s.tasks.ListAll(ctx)
}

func (s *Store) SaveTasks(ctx context.Context, tasks []Task) error {
	return s.tasks.ReplaceAll(ctx, tasks)
}

// LoadStats returns nil, nil when no stats were saved yet.
func (s *Store) LoadStats(ctx context.Context) (*UserStats, error) {
	var st UserStats
	found, err := s.records.Get(ctx, KeyStats, &st)
	if err != nil || !found {
		return nil, err
	}
	return &st, nil
}

func (s *Store) SaveStats(ctx context.Context, st UserStats) error {
	return s.records.Put(ctx, KeyStats, st)
}

// LoadGuild returns nil, nil when the user has no guild.
func (s *Store) LoadGuild(ctx context.Context) (*Guild, error) {
	var g Guild
	found, err := s.records.Get(ctx, KeyGuild, &g)
	if err != nil || !found {
		return nil, err
	}
	return &g, nil
}

// SaveGuild stores g, or removes the guild record when g is nil.
func (s *Store) SaveGuild(ctx context.Context, g *Guild) error {
	if g == nil {
		return s.records.Delete(ctx, KeyGuild)
	}
	return s.records.Put(ctx, KeyGuild, g)
}

// ReplaceAll overwrites every record in a single transaction.
func (s *Store) ReplaceAll(ctx context.Context, tasks []Task, st UserStats, g *Guild) error {
	return WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := replaceTasksTx(ctx, tx, tasks); err != nil {
			return err
		}
		if err := putRecord(ctx, tx, KeyStats, st); err != nil {
			return err
		}
		if g == nil {
			return deleteRecord(ctx, tx, KeyGuild)
		}
		return putRecord(ctx, tx, KeyGuild, g)
	})
}
