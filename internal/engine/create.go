package engine

import (
	"context"
	"strings"
	"time"

	"monkquest/internal/storage"
)

func nextTaskID(tasks []storage.Task) int64 {
	var maxID int64
	for _, t := range tasks {
		if t.ID > maxID {
			maxID = t.ID
		}
	}
	return maxID + 1
}

func normalizeInput(in TaskInput) (TaskInput, error) {
	title, err := normalizeTitle(in.Title)
	if err != nil {
		return TaskInput{}, err
	}
	in.Title = title
	in.Description = strings.TrimSpace(in.Description)
	if in.Priority == "" {
		in.Priority = DefaultPriority
	}
	if !in.Priority.IsValid() {
		return TaskInput{}, ValidationError{Field: "priority", Reason: "must be LOW, MEDIUM or HIGH"}
	}
	return in, nil
}

// CreateTask adds an active task. The experience reward is frozen from the priority.
func (e *Engine) CreateTask(ctx context.Context, in TaskInput) (storage.Task, error) {
	in, err := normalizeInput(in)
	if err != nil {
		return storage.Task{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	next := e.state.clone()
	t := storage.Task{
		ID:          nextTaskID(next.Tasks),
		Title:       in.Title,
		Description: in.Description,
		Priority:    string(in.Priority),
		Exp:         in.Priority.ExpReward(),
		Deadline:    in.Deadline,
		RemindAt:    in.RemindAt,
		CreatedAt:   e.now(),
	}
	next.Tasks = append(next.Tasks, t)
	e.apply(ctx, next, changeTasks)
	return t, nil
}

// EditTask rewrites an active task's editable fields and recomputes its reward.
// Moving the reminder re-arms it.
func (e *Engine) EditTask(ctx context.Context, id int64, in TaskInput) (storage.Task, error) {
	in, err := normalizeInput(in)
	if err != nil {
		return storage.Task{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	i, err := findTask(e.state.Tasks, id)
	if err != nil {
		return storage.Task{}, err
	}
	if !isActive(e.state.Tasks[i]) {
		return storage.Task{}, StateError{Op: "edit task", Reason: "task is " + string(StatusOf(e.state.Tasks[i]))}
	}

	next := e.state.clone()
	t := &next.Tasks[i]
	t.Title = in.Title
	t.Description = in.Description
	t.Priority = string(in.Priority)
	t.Exp = in.Priority.ExpReward()
	t.Deadline = in.Deadline
	if !sameTime(t.RemindAt, in.RemindAt) {
		t.RemindAt = in.RemindAt
		t.ReminderFired = false
	}
	e.apply(ctx, next, changeTasks)
	return *t, nil
}

func sameTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
