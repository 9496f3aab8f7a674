package engine

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"monkquest/internal/storage"
)

var errStore = errors.New("disk full")

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// memStore is an in-memory Store whose operations can be made to fail.
type memStore struct {
	mu sync.Mutex

	tasks []storage.Task
	stats *storage.UserStats
	guild *storage.Guild

	failLoad    error
	failSave    error
	failReplace error

	taskSaves  int
	statsSaves int
	guildSaves int
}

func (s *memStore) LoadTasks(context.Context) ([]storage.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failLoad != nil {
		return nil, s.failLoad
	}
	return cloneTasks(s.tasks), nil
}

func (s *memStore) SaveTasks(_ context.Context, tasks []storage.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failSave != nil {
		return s.failSave
	}
	s.taskSaves++
	s.tasks = cloneTasks(tasks)
	return nil
}

func (s *memStore) LoadStats(context.Context) (*storage.UserStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failLoad != nil {
		return nil, s.failLoad
	}
	if s.stats == nil {
		return nil, nil
	}
	st := cloneStats(*s.stats)
	return &st, nil
}

func (s *memStore) SaveStats(_ context.Context, st storage.UserStats) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failSave != nil {
		return s.failSave
	}
	s.statsSaves++
	c := cloneStats(st)
	s.stats = &c
	return nil
}

func (s *memStore) LoadGuild(context.Context) (*storage.Guild, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failLoad != nil {
		return nil, s.failLoad
	}
	return cloneGuild(s.guild), nil
}

func (s *memStore) SaveGuild(_ context.Context, g *storage.Guild) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failSave != nil {
		return s.failSave
	}
	s.guildSaves++
	s.guild = cloneGuild(g)
	return nil
}

func (s *memStore) ReplaceAll(_ context.Context, tasks []storage.Task, st storage.UserStats, g *storage.Guild) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failReplace != nil {
		return s.failReplace
	}
	s.tasks = cloneTasks(tasks)
	c := cloneStats(st)
	s.stats = &c
	s.guild = cloneGuild(g)
	return nil
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []string
	err  error
}

func (n *recordingNotifier) Notify(title, body string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, title)
	return n.err
}

func (n *recordingNotifier) titles() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.sent...)
}

func newTestEngine(t *testing.T, store Store) (*Engine, *fakeClock) {
	t.Helper()
	clock := newFakeClock()
	if store == nil {
		store = &memStore{}
	}
	e := New(context.Background(), store, Options{Now: clock.Now, Location: time.UTC})
	return e, clock
}

func newSQLiteStore(t *testing.T, path string) *storage.Store {
	t.Helper()
	if path == "" {
		path = filepath.Join(t.TempDir(), "mq.db")
	}
	db, err := storage.Open(context.Background(), path)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	s := storage.NewStore(db)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func mustCreate(t *testing.T, e *Engine, title string, p Priority, deadline *time.Time) storage.Task {
	t.Helper()
	task, err := e.CreateTask(context.Background(), TaskInput{Title: title, Priority: p, Deadline: deadline})
	if err != nil {
		t.Fatalf("CreateTask(%q): %v", title, err)
	}
	return task
}

func mustComplete(t *testing.T, e *Engine, id int64) *CompleteResult {
	t.Helper()
	res, err := e.CompleteTask(context.Background(), id)
	if err != nil {
		t.Fatalf("CompleteTask(%d): %v", id, err)
	}
	return res
}

func taskByID(t *testing.T, e *Engine, id int64) storage.Task {
	t.Helper()
	for _, task := range e.Snapshot().Tasks {
		if task.ID == id {
			return task
		}
	}
	t.Fatalf("task %d not found", id)
	return storage.Task{}
}
