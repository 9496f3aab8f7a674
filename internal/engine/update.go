package engine

import (
	"context"
	"slices"
	"time"

	"monkquest/internal/storage"
)

// mutateActive applies fn to an active task and publishes the result.
// Caller holds e.mu.
func (e *Engine) mutateActive(ctx context.Context, op string, id int64, fn func(t *storage.Task, now time.Time) error) (storage.Task, error) {
	i, err := findTask(e.state.Tasks, id)
	if err != nil {
		return storage.Task{}, err
	}
	if !isActive(e.state.Tasks[i]) {
		return storage.Task{}, StateError{Op: op, Reason: "task is " + string(StatusOf(e.state.Tasks[i]))}
	}

	next := e.state.clone()
	t := &next.Tasks[i]
	if err := fn(t, e.now()); err != nil {
		return storage.Task{}, err
	}
	e.apply(ctx, next, changeTasks)
	return *t, nil
}

// stopClock folds the running interval into TimeSpent and stops the timer.
func stopClock(t *storage.Task, now time.Time) {
	if !t.IsRunning {
		t.LastUpdated = nil
		return
	}
	if t.LastUpdated != nil {
		if d := now.Sub(*t.LastUpdated); d > 0 {
			t.TimeSpent += d.Seconds()
		}
	}
	t.IsRunning = false
	t.LastUpdated = nil
}

func (e *Engine) StartTimer(ctx context.Context, id int64) (storage.Task, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.mutateActive(ctx, "start timer", id, func(t *storage.Task, now time.Time) error {
		if t.IsRunning {
			return nil
		}
		t.IsRunning = true
		t.LastUpdated = timePtr(now)
		return nil
	})
}

func (e *Engine) StopTimer(ctx context.Context, id int64) (storage.Task, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.mutateActive(ctx, "stop timer", id, func(t *storage.Task, now time.Time) error {
		stopClock(t, now)
		return nil
	})
}

func (e *Engine) SetReminder(ctx context.Context, id int64, at time.Time) (storage.Task, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.mutateActive(ctx, "set reminder", id, func(t *storage.Task, _ time.Time) error {
		t.RemindAt = timePtr(at)
		t.ReminderFired = false
		return nil
	})
}

func (e *Engine) ClearReminder(ctx context.Context, id int64) (storage.Task, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.mutateActive(ctx, "clear reminder", id, func(t *storage.Task, _ time.Time) error {
		t.RemindAt = nil
		t.ReminderFired = false
		return nil
	})
}

// DeleteTask abandons an active task. The record stays in the collection for
// history and statistics.
func (e *Engine) DeleteTask(ctx context.Context, id int64) (storage.Task, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.mutateActive(ctx, "delete task", id, func(t *storage.Task, now time.Time) error {
		stopClock(t, now)
		t.Deleted = true
		t.DeletedAt = timePtr(now)
		return nil
	})
}

// ActiveTasks returns tasks that are neither completed nor deleted, in id order.
func ActiveTasks(tasks []storage.Task) []storage.Task {
	var out []storage.Task
	for _, t := range tasks {
		if isActive(t) {
			out = append(out, t)
		}
	}
	return out
}

// HistoryTasks returns completed and abandoned tasks, most recently finished first.
func HistoryTasks(tasks []storage.Task) []storage.Task {
	var out []storage.Task
	for _, t := range tasks {
		if !isActive(t) {
			out = append(out, t)
		}
	}
	slices.SortStableFunc(out, func(a, b storage.Task) int {
		at, _ := finishedAt(a)
		bt, _ := finishedAt(b)
		return bt.Compare(at)
	})
	return out
}
