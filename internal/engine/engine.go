package engine

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"monkquest/internal/storage"
)

// Store persists the three records the engine owns.
type Store interface {
	LoadTasks(ctx context.Context) ([]storage.Task, error)
	SaveTasks(ctx context.Context, tasks []storage.Task) error
	LoadStats(ctx context.Context) (*storage.UserStats, error)
	SaveStats(ctx context.Context, st storage.UserStats) error
	LoadGuild(ctx context.Context) (*storage.Guild, error)
	SaveGuild(ctx context.Context, g *storage.Guild) error
	ReplaceAll(ctx context.Context, tasks []storage.Task, st storage.UserStats, g *storage.Guild) error
}

// Notifier is the best-effort desktop notification side channel.
type Notifier interface {
	Notify(title, body string) error
}

type Options struct {
	Logger   *slog.Logger
	Notifier Notifier
	// Now defaults to time.Now.
	Now func() time.Time
	// Location is used for calendar-day bucketing. Defaults to time.Local.
	Location *time.Location
	// MinSuccessRate is applied to new Monk Mode sessions. Nil or a value
	// outside 0..100 means DefaultMinSuccessRate; 0 disables failure.
	MinSuccessRate *int
}

// Engine owns the canonical tasks, user stats and guild. It is the only
// writer of the store; presentation layers read snapshots and call the
// mutation methods.
type Engine struct {
	store    Store
	log      *slog.Logger
	notifier Notifier
	now      func() time.Time
	loc      *time.Location
	minRate  int

	mu      sync.Mutex
	state   State
	dirty   bool // timer deltas not yet flushed
	notices []Notice
	breach  BreachGuard
}

type change uint8

const (
	changeTasks change = 1 << iota
	changeStats
	changeGuild
)

// New loads persisted state once and recovers running timers. Load failures
// degrade to empty/default records.
func New(ctx context.Context, store Store, opts Options) *Engine {
	e := &Engine{
		store:    store,
		log:      opts.Logger,
		notifier: opts.Notifier,
		now:      opts.Now,
		loc:      opts.Location,
		minRate:  DefaultMinSuccessRate,
		breach:   BreachGuard{Window: BreachWindow},
	}
	if e.log == nil {
		e.log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if e.now == nil {
		e.now = time.Now
	}
	if e.loc == nil {
		e.loc = time.Local
	}
	if r := opts.MinSuccessRate; r != nil && *r >= 0 && *r <= 100 {
		e.minRate = *r
	}

	e.load(ctx)
	return e
}

func (e *Engine) load(ctx context.Context) {
	now := e.now()

	tasks, err := e.store.LoadTasks(ctx)
	if err != nil {
		e.log.Warn("load tasks failed; starting with an empty list", "err", err)
		tasks = nil
	}
	recovered, changed := RecoverTasks(tasks, now)

	stats := DefaultStats()
	loaded, err := e.store.LoadStats(ctx)
	switch {
	case err != nil:
		e.log.Warn("load stats failed; using defaults", "err", err)
	case loaded != nil:
		stats = normalizeStats(*loaded)
	}

	guild, err := e.store.LoadGuild(ctx)
	if err != nil {
		e.log.Warn("load guild failed; continuing without a guild", "err", err)
		guild = nil
	}

	e.state = State{Stats: stats, Tasks: recovered, Guild: guild}
	if changed {
		e.persist(ctx, changeTasks)
	}
	e.log.Debug("engine loaded", "tasks", len(recovered), "level", stats.Level, "guild", guild != nil)
}

// Snapshot returns a deep copy of the current state.
func (e *Engine) Snapshot() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.clone()
}

func (e *Engine) Now() time.Time { return e.now() }

func (e *Engine) Location() *time.Location { return e.loc }

// AddExperience awards amount and levels up while the threshold is reached.
func (e *Engine) AddExperience(ctx context.Context, amount int) ExpResult {
	e.mu.Lock()
	defer e.mu.Unlock()

	next := e.state.clone()
	res := e.addExperience(&next, amount)
	e.apply(ctx, next, changeStats)
	return res
}

type ExpResult struct {
	Awarded     int
	LevelBefore int
	LevelAfter  int
	LevelUp     bool
}

func (e *Engine) addExperience(next *State, amount int) ExpResult {
	before := next.Stats.Level
	st, gained := ApplyExperience(next.Stats, amount)
	next.Stats = st
	if gained > 0 {
		e.notice(NoticeLevelUp, "Level up!", levelUpBody(st.Level))
	}
	awarded := amount
	if awarded < 0 {
		awarded = 0
	}
	return ExpResult{Awarded: awarded, LevelBefore: before, LevelAfter: st.Level, LevelUp: gained > 0}
}

// ReplaceTasks swaps the whole task collection and persists it.
func (e *Engine) ReplaceTasks(ctx context.Context, tasks []storage.Task) {
	e.mu.Lock()
	defer e.mu.Unlock()

	next := e.state.clone()
	next.Tasks = cloneTasks(tasks)
	e.apply(ctx, next, changeTasks)
}

// ReplaceStats swaps the stats record and persists it.
func (e *Engine) ReplaceStats(ctx context.Context, st storage.UserStats) {
	e.mu.Lock()
	defer e.mu.Unlock()

	next := e.state.clone()
	next.Stats = normalizeStats(cloneStats(st))
	e.apply(ctx, next, changeStats)
}

// ReplaceGuild swaps the guild; nil removes it.
func (e *Engine) ReplaceGuild(ctx context.Context, g *storage.Guild) {
	e.mu.Lock()
	defer e.mu.Unlock()

	next := e.state.clone()
	next.Guild = cloneGuild(g)
	e.apply(ctx, next, changeGuild)
}

// apply publishes next and persists the records named by ch. Task changes
// re-evaluate Monk Mode; stats changes are mirrored into the guild.
// Caller holds e.mu.
func (e *Engine) apply(ctx context.Context, next State, ch change) {
	if ch&changeTasks != 0 {
		if e.checkMonkOnTasks(&next) {
			ch |= changeStats
		}
	}
	if ch&(changeStats|changeGuild) != 0 && next.Guild != nil {
		if g, changed := syncUserMember(next.Guild, next.Stats); changed {
			next.Guild = g
			ch |= changeGuild
		}
	}
	e.state = next
	e.persist(ctx, ch)
}

// persist writes the flagged records. Failures are logged and the in-memory
// state is kept. Caller holds e.mu.
func (e *Engine) persist(ctx context.Context, ch change) {
	if ch&changeTasks != 0 {
		if err := e.store.SaveTasks(ctx, e.state.Tasks); err != nil {
			e.log.Warn("save tasks failed", "err", err)
			e.dirty = true
		} else {
			e.dirty = false
		}
	}
	if ch&changeStats != 0 {
		if err := e.store.SaveStats(ctx, e.state.Stats); err != nil {
			e.log.Warn("save stats failed", "err", err)
		}
	}
	if ch&changeGuild != 0 {
		if err := e.store.SaveGuild(ctx, e.state.Guild); err != nil {
			e.log.Warn("save guild failed", "err", err)
		}
	}
}

// Flush persists timer progress accumulated by ticks since the last write.
func (e *Engine) Flush(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.dirty {
		return nil
	}
	if err := e.store.SaveTasks(ctx, e.state.Tasks); err != nil {
		e.log.Warn("flush tasks failed", "err", err)
		return err
	}
	e.dirty = false
	return nil
}

// Close flushes pending timer progress.
func (e *Engine) Close(ctx context.Context) error {
	return e.Flush(ctx)
}

func findTask(tasks []storage.Task, id int64) (int, error) {
	for i := range tasks {
		if tasks[i].ID == id {
			return i, nil
		}
	}
	return -1, NotFoundError{Kind: "task", ID: id}
}
