package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"monkquest/internal/storage"
)

func TestTimerAccumulatesAcrossSessions(t *testing.T) {
	ctx := context.Background()
	e, clock := newTestEngine(t, nil)
	task := mustCreate(t, e, "Deep work", PriorityHigh, nil)

	if _, err := e.StartTimer(ctx, task.ID); err != nil {
		t.Fatalf("StartTimer: %v", err)
	}
	clock.Advance(10 * time.Second)
	if _, err := e.StopTimer(ctx, task.ID); err != nil {
		t.Fatalf("StopTimer: %v", err)
	}
	clock.Advance(time.Minute)
	if _, err := e.StartTimer(ctx, task.ID); err != nil {
		t.Fatalf("StartTimer: %v", err)
	}
	clock.Advance(5 * time.Second)
	res := e.Tick(ctx)
	if !res.Changed || res.Advanced != 1 {
		t.Fatalf("unexpected tick result %+v", res)
	}
	if got := taskByID(t, e, task.ID).TimeSpent; got != 15 {
		t.Fatalf("time spent = %v, want 15", got)
	}
}

func TestTickDefersTimerWritesUntilFlush(t *testing.T) {
	ctx := context.Background()
	store := &memStore{}
	e, clock := newTestEngine(t, store)
	task := mustCreate(t, e, "Focus", PriorityLow, nil)
	if _, err := e.StartTimer(ctx, task.ID); err != nil {
		t.Fatalf("StartTimer: %v", err)
	}
	saves := store.taskSaves

	for i := 0; i < 5; i++ {
		clock.Advance(time.Second)
		e.Tick(ctx)
	}
	if store.taskSaves != saves {
		t.Fatalf("ticks should not write; saves %d -> %d", saves, store.taskSaves)
	}
	if err := e.Flush(ctx); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if store.taskSaves != saves+1 || store.tasks[0].TimeSpent != 5 {
		t.Fatalf("flush did not persist progress: saves=%d spent=%v", store.taskSaves, store.tasks[0].TimeSpent)
	}
	if err := e.Flush(ctx); err != nil || store.taskSaves != saves+1 {
		t.Fatalf("clean flush should be a no-op")
	}
}

func TestTickNoopWhenIdle(t *testing.T) {
	store := &memStore{}
	e, _ := newTestEngine(t, store)
	mustCreate(t, e, "Idle", PriorityLow, nil)
	before := e.Snapshot()
	saves := store.taskSaves + store.statsSaves

	res := e.Tick(context.Background())
	if res.Changed || res.Advanced != 0 || len(res.Fired) != 0 || res.Monk != MonkUnchanged {
		t.Fatalf("idle tick did something: %+v", res)
	}
	if store.taskSaves+store.statsSaves != saves {
		t.Fatalf("idle tick wrote to the store")
	}
	if after := e.Snapshot(); len(after.Tasks) != len(before.Tasks) || after.Tasks[0].TimeSpent != before.Tasks[0].TimeSpent {
		t.Fatalf("idle tick modified tasks")
	}
}

func TestReminderFiresOnceAndNotifierErrorsAreSwallowed(t *testing.T) {
	ctx := context.Background()
	notifier := &recordingNotifier{err: errors.New("no notification daemon")}
	clock := newFakeClock()
	e := New(ctx, &memStore{}, Options{Now: clock.Now, Location: time.UTC, Notifier: notifier})

	at := clock.Now().Add(10 * time.Minute)
	task, err := e.CreateTask(ctx, TaskInput{Title: "Stand up", RemindAt: &at})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}

	if res := e.Tick(ctx); len(res.Fired) != 0 {
		t.Fatalf("reminder fired early")
	}
	clock.Advance(10 * time.Minute)
	res := e.Tick(ctx)
	if len(res.Fired) != 1 || res.Fired[0].ID != task.ID {
		t.Fatalf("expected reminder to fire, got %+v", res)
	}
	clock.Advance(time.Minute)
	if res := e.Tick(ctx); len(res.Fired) != 0 {
		t.Fatalf("reminder fired twice")
	}

	if got := notifier.titles(); len(got) != 1 || got[0] != "Stand up" {
		t.Fatalf("notifier calls = %v", got)
	}
	notices := e.DrainNotices()
	if len(notices) != 1 || notices[0].Kind != NoticeReminder {
		t.Fatalf("notices = %+v", notices)
	}
	if !taskByID(t, e, task.ID).ReminderFired {
		t.Fatalf("reminder not marked fired")
	}
}

func TestReminderSkippedForFinishedTasks(t *testing.T) {
	ctx := context.Background()
	e, clock := newTestEngine(t, nil)
	at := clock.Now().Add(time.Minute)
	task, err := e.CreateTask(ctx, TaskInput{Title: "Done early", RemindAt: &at})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	mustComplete(t, e, task.ID)
	clock.Advance(time.Hour)
	if res := e.Tick(ctx); len(res.Fired) != 0 {
		t.Fatalf("completed task reminder fired")
	}
}

func TestSetAndClearReminder(t *testing.T) {
	ctx := context.Background()
	e, clock := newTestEngine(t, nil)
	task := mustCreate(t, e, "Water plants", PriorityLow, nil)

	got, err := e.SetReminder(ctx, task.ID, clock.Now().Add(time.Hour))
	if err != nil || got.RemindAt == nil || got.ReminderFired {
		t.Fatalf("SetReminder = %+v, %v", got, err)
	}
	got, err = e.ClearReminder(ctx, task.ID)
	if err != nil || got.RemindAt != nil {
		t.Fatalf("ClearReminder = %+v, %v", got, err)
	}
}

func TestRecoverRunningTimerOnLoad(t *testing.T) {
	ctx := context.Background()
	path := t.TempDir() + "/mq.db"
	clock := newFakeClock()

	store := newSQLiteStore(t, path)
	lastSeen := clock.Now().Add(-90 * time.Minute)
	tasks := []storage.Task{
		{ID: 1, Title: "Left running", Priority: "HIGH", Exp: 100, TimeSpent: 60, IsRunning: true, LastUpdated: &lastSeen},
		{ID: 2, Title: "Stopped", Priority: "LOW", Exp: 25, TimeSpent: 5},
	}
	if err := store.SaveTasks(ctx, tasks); err != nil {
		t.Fatalf("SaveTasks: %v", err)
	}

	e := New(ctx, store, Options{Now: clock.Now, Location: time.UTC})
	got := taskByID(t, e, 1)
	if got.TimeSpent != 60+90*60 {
		t.Fatalf("recovered time = %v, want %v", got.TimeSpent, 60+90*60)
	}
	if !got.IsRunning || got.LastUpdated == nil || !got.LastUpdated.Equal(clock.Now()) {
		t.Fatalf("timer should keep running from now: %+v", got)
	}

	persisted, err := store.LoadTasks(ctx)
	if err != nil {
		t.Fatalf("LoadTasks: %v", err)
	}
	if persisted[0].TimeSpent != got.TimeSpent {
		t.Fatalf("recovery should be persisted, store has %v", persisted[0].TimeSpent)
	}
}

func TestRecoverTasksClampsImplausibleGaps(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	future := now.Add(time.Hour)
	ancient := now.Add(-2 * MaxRecoveredGap)
	tasks := []storage.Task{
		{ID: 1, Title: "clock went back", IsRunning: true, LastUpdated: &future, TimeSpent: 10},
		{ID: 2, Title: "stale", IsRunning: true, LastUpdated: &ancient, TimeSpent: 10},
		{ID: 3, Title: "negative", TimeSpent: -4},
		{ID: 0, Title: "", IsRunning: true, LastUpdated: &ancient},
	}
	out, changed := RecoverTasks(tasks, now)
	if !changed {
		t.Fatalf("expected changes")
	}
	if out[0].TimeSpent != 10 || out[1].TimeSpent != 10 {
		t.Fatalf("gaps should be clamped: %v, %v", out[0].TimeSpent, out[1].TimeSpent)
	}
	if out[2].TimeSpent != 0 {
		t.Fatalf("negative time should reset, got %v", out[2].TimeSpent)
	}
	if out[3].LastUpdated == nil || !out[3].LastUpdated.Equal(ancient) {
		t.Fatalf("malformed task should pass through untouched")
	}
	if !tasks[0].LastUpdated.Equal(future) || tasks[2].TimeSpent != -4 {
		t.Fatalf("input slice was modified")
	}
}

func TestRunStopsOnCancelAndFlushes(t *testing.T) {
	store := &memStore{}
	e, _ := newTestEngine(t, store)
	task := mustCreate(t, e, "bg", PriorityLow, nil)
	if _, err := e.StartTimer(context.Background(), task.ID); err != nil {
		t.Fatalf("StartTimer: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- e.Run(ctx, 5*time.Millisecond, time.Hour) }()
	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("Run did not stop")
	}
}
