package engine

import (
	"context"
	"time"

	"monkquest/internal/storage"
)

const (
	DefaultTickInterval  = time.Second
	DefaultFlushInterval = 30 * time.Second
)

// TickResult describes what a single tick did.
type TickResult struct {
	Changed  bool
	Advanced int            // running timers advanced
	Fired    []storage.Task // reminders fired
	Monk     MonkTransition
	Unlocked []int
}

func hasRunning(tasks []storage.Task) bool {
	for i := range tasks {
		if tasks[i].IsRunning {
			return true
		}
	}
	return false
}

// AdvanceTimers adds max(0, now-lastUpdated) to every running task and moves
// lastUpdated to now. It returns a new slice and the number of timers advanced.
func AdvanceTimers(tasks []storage.Task, now time.Time) ([]storage.Task, int) {
	if !hasRunning(tasks) {
		return tasks, 0
	}
	out := cloneTasks(tasks)
	n := 0
	for i := range out {
		t := &out[i]
		if !t.IsRunning {
			continue
		}
		if t.LastUpdated != nil {
			if d := now.Sub(*t.LastUpdated); d > 0 {
				t.TimeSpent += d.Seconds()
			}
		}
		t.LastUpdated = timePtr(now)
		n++
	}
	return out, n
}

// DueReminders returns the indexes of active tasks whose unfired reminder time has passed.
func DueReminders(tasks []storage.Task, now time.Time) []int {
	var due []int
	for i := range tasks {
		t := tasks[i]
		if t.RemindAt == nil || t.ReminderFired || !isActive(t) {
			continue
		}
		if !now.Before(*t.RemindAt) {
			due = append(due, i)
		}
	}
	return due
}

// FireReminders marks every due reminder as fired and returns the fired tasks.
func FireReminders(tasks []storage.Task, now time.Time) ([]storage.Task, []storage.Task) {
	due := DueReminders(tasks, now)
	if len(due) == 0 {
		return tasks, nil
	}
	out := cloneTasks(tasks)
	fired := make([]storage.Task, 0, len(due))
	for _, i := range due {
		out[i].ReminderFired = true
		fired = append(fired, out[i])
	}
	return out, fired
}

// Tick advances running timers, fires due reminders and evaluates Monk Mode.
// When there is nothing to do the state is left untouched.
func (e *Engine) Tick(ctx context.Context) TickResult {
	e.mu.Lock()

	now := e.now()
	var res TickResult

	running := hasRunning(e.state.Tasks)
	due := DueReminders(e.state.Tasks, now)
	monkActive := e.state.Stats.MonkMode != nil && e.state.Stats.MonkMode.Active
	if !running && len(due) == 0 && !monkActive {
		e.mu.Unlock()
		return res
	}

	next := e.state.clone()
	var ch change

	if running {
		next.Tasks, res.Advanced = AdvanceTimers(next.Tasks, now)
		e.dirty = true
	}
	if len(due) > 0 {
		next.Tasks, res.Fired = FireReminders(next.Tasks, now)
		ch |= changeTasks
		for _, t := range res.Fired {
			e.notice(NoticeReminder, "Reminder: "+t.Title, t.Description)
		}
	}
	if monkActive {
		res.Monk, res.Unlocked = MonkTick(&next.Stats, now)
		if res.Monk != MonkUnchanged {
			ch |= changeStats
			e.monkNotice(res.Monk, res.Unlocked)
		}
	}

	res.Changed = res.Advanced > 0 || ch != 0
	if !res.Changed {
		e.mu.Unlock()
		return res
	}
	e.apply(ctx, next, ch)
	e.mu.Unlock()

	// Desktop notifications happen outside the lock; they may block on the bus.
	for _, t := range res.Fired {
		e.notify(t.Title, t.Description)
	}
	return res
}

// Run drives Tick and Flush until ctx is cancelled, then flushes once more.
func (e *Engine) Run(ctx context.Context, tickEvery, flushEvery time.Duration) error {
	if tickEvery <= 0 {
		tickEvery = DefaultTickInterval
	}
	if flushEvery <= 0 {
		flushEvery = DefaultFlushInterval
	}

	ticker := time.NewTicker(tickEvery)
	defer ticker.Stop()
	flusher := time.NewTicker(flushEvery)
	defer flusher.Stop()

	for {
		select {
		case <-ctx.Done():
			// ctx is already cancelled; the final write needs its own.
			return e.Flush(context.WithoutCancel(ctx))
		case <-ticker.C:
			e.Tick(ctx)
		case <-flusher.C:
			_ = e.Flush(ctx)
		}
	}
}
