package engine

import (
	"context"
	"time"

	"monkquest/internal/storage"
)

type CompleteResult struct {
	TaskID      int64
	ExpAwarded  int
	OnTime      bool
	LevelBefore int
	LevelAfter  int
	LevelUp     bool
	Streak      int
}

// CompletionAward applies the late penalty: a task finished at or after its
// deadline earns half its reward, rounded down.
func CompletionAward(exp int, deadline *time.Time, now time.Time) (award int, onTime bool) {
	if deadline != nil && !now.Before(*deadline) {
		return exp / 2, false
	}
	return exp, true
}

// advanceStreak counts consecutive local calendar days with a completion.
func advanceStreak(st *storage.UserStats, now time.Time, loc *time.Location) {
	local := now.In(loc)
	today := local.Format(time.DateOnly)
	if st.LastActiveDay == today {
		return
	}
	if st.LastActiveDay == local.AddDate(0, 0, -1).Format(time.DateOnly) {
		st.Streak++
	} else {
		st.Streak = 1
	}
	st.LastActiveDay = today
}

// CompleteTask finishes an active task, stopping its timer, and awards the
// (possibly penalized) experience. The stored reward is overwritten with the
// amount actually awarded.
func (e *Engine) CompleteTask(ctx context.Context, id int64) (*CompleteResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	i, err := findTask(e.state.Tasks, id)
	if err != nil {
		return nil, err
	}
	switch StatusOf(e.state.Tasks[i]) {
	case StatusCompleted:
		return nil, StateError{Op: "complete task", Reason: "task is already completed"}
	case StatusAbandoned:
		return nil, StateError{Op: "complete task", Reason: "task was abandoned"}
	}

	now := e.now()
	next := e.state.clone()
	t := &next.Tasks[i]

	award, onTime := CompletionAward(t.Exp, t.Deadline, now)
	stopClock(t, now)
	t.Completed = true
	t.CompletedAt = timePtr(now)
	t.CompletedOnTime = onTime
	t.Exp = award

	exp := e.addExperience(&next, award)
	advanceStreak(&next.Stats, now, e.loc)

	e.apply(ctx, next, changeTasks|changeStats)

	return &CompleteResult{
		TaskID:      id,
		ExpAwarded:  award,
		OnTime:      onTime,
		LevelBefore: exp.LevelBefore,
		LevelAfter:  exp.LevelAfter,
		LevelUp:     exp.LevelUp,
		Streak:      next.Stats.Streak,
	}, nil
}
