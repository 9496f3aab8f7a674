package engine

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"
)

func startMonk(t *testing.T, e *Engine, days int) {
	t.Helper()
	if _, err := e.StartMonkMode(context.Background(), days); err != nil {
		t.Fatalf("StartMonkMode(%d): %v", days, err)
	}
}

func TestMonkModeCompletesWithMilestone(t *testing.T) {
	ctx := context.Background()
	e, clock := newTestEngine(t, nil)
	startMonk(t, e, 7)

	m := e.Snapshot().Stats.MonkMode
	if m == nil || !m.Active || m.TotalDays != 7 || m.Duration != "1 Week" || m.MinSuccessRate != DefaultMinSuccessRate {
		t.Fatalf("unexpected monk mode %+v", m)
	}
	if !m.EndDate.Equal(clock.Now().Add(7 * 24 * time.Hour)) {
		t.Fatalf("end date = %s", m.EndDate)
	}

	clock.Advance(6 * 24 * time.Hour)
	if res := e.Tick(ctx); res.Monk != MonkUnchanged {
		t.Fatalf("day 6 transition = %s", res.Monk)
	}

	clock.Advance(24 * time.Hour)
	res := e.Tick(ctx)
	if res.Monk != MonkCompleted || !slices.Equal(res.Unlocked, []int{7}) {
		t.Fatalf("day 7 tick = %s %v", res.Monk, res.Unlocked)
	}
	st := e.Snapshot().Stats
	if st.MonkMode != nil {
		t.Fatalf("monk mode should be inactive")
	}
	if !slices.Equal(st.UnlockedMilestones, []int{7}) {
		t.Fatalf("milestones = %v", st.UnlockedMilestones)
	}

	var kinds []NoticeKind
	for _, n := range e.DrainNotices() {
		kinds = append(kinds, n.Kind)
	}
	if !slices.Equal(kinds, []NoticeKind{NoticeMilestone, NoticeMonkCompleted}) {
		t.Fatalf("notices = %v", kinds)
	}
}

func TestMonkModeUnlocksMilestonesAlongTheWay(t *testing.T) {
	ctx := context.Background()
	e, clock := newTestEngine(t, nil)
	startMonk(t, e, 28)

	clock.Advance(8 * 24 * time.Hour)
	res := e.Tick(ctx)
	if res.Monk != MonkMilestone || !slices.Equal(res.Unlocked, []int{7}) {
		t.Fatalf("tick = %s %v", res.Monk, res.Unlocked)
	}
	if res := e.Tick(ctx); res.Monk != MonkUnchanged {
		t.Fatalf("milestone unlocked twice")
	}
	if status := e.MonkStatus(); !status.Active || status.ElapsedDays != 8 || status.RemainingDays != 20 {
		t.Fatalf("status = %+v", status)
	}
}

func TestMonkTickUnlocksEveryReachedMilestoneAfterLongGap(t *testing.T) {
	e, clock := newTestEngine(t, nil)
	startMonk(t, e, 7)
	clock.Advance(400 * 24 * time.Hour)

	res := e.Tick(context.Background())
	want := []int{7, 28, 90, 180, 365}
	if res.Monk != MonkCompleted || !slices.Equal(res.Unlocked, want) {
		t.Fatalf("tick = %s %v, want completed %v", res.Monk, res.Unlocked, want)
	}
	st := e.Snapshot().Stats
	if st.MonkMode != nil || !slices.Equal(st.UnlockedMilestones, want) {
		t.Fatalf("stats = %+v", st)
	}
}

func TestStartMonkModeValidation(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEngine(t, nil)

	_, err := e.StartMonkMode(ctx, 10)
	var ve ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}

	startMonk(t, e, 90)
	_, err = e.StartMonkMode(ctx, 7)
	var se StateError
	if !errors.As(err, &se) {
		t.Fatalf("expected StateError for second start, got %v", err)
	}
}

func TestMonkModeFailsBelowMinimumRate(t *testing.T) {
	e, clock := newTestEngine(t, nil)
	startMonk(t, e, 28)

	deadline := clock.Now().Add(time.Hour)
	task := mustCreate(t, e, "Late one", PriorityMedium, &deadline)
	clock.Advance(2 * time.Hour)
	mustComplete(t, e, task.ID)

	st := e.Snapshot().Stats
	if st.MonkMode != nil {
		t.Fatalf("session rate 0%% should fail the protocol")
	}
	notices := e.DrainNotices()
	if len(notices) == 0 || notices[len(notices)-1].Kind != NoticeMonkFailed {
		t.Fatalf("notices = %+v", notices)
	}
}

func TestZeroMinimumRateNeverFails(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	zero := 0
	e := New(ctx, &memStore{}, Options{Now: clock.Now, Location: time.UTC, MinSuccessRate: &zero})

	m, err := e.StartMonkMode(ctx, 7)
	if err != nil {
		t.Fatalf("StartMonkMode: %v", err)
	}
	if m.MinSuccessRate != 0 {
		t.Fatalf("min success rate = %d, want 0", m.MinSuccessRate)
	}

	deadline := clock.Now().Add(time.Hour)
	task := mustCreate(t, e, "Late one", PriorityMedium, &deadline)
	clock.Advance(2 * time.Hour)
	mustComplete(t, e, task.ID)
	if e.Snapshot().Stats.MonkMode == nil {
		t.Fatalf("a 0%% minimum should never fail the session")
	}
}

func TestOutOfRangeMinimumRateFallsBackToDefault(t *testing.T) {
	clock := newFakeClock()
	bad := 150
	e := New(context.Background(), &memStore{}, Options{Now: clock.Now, Location: time.UTC, MinSuccessRate: &bad})
	m, err := e.StartMonkMode(context.Background(), 7)
	if err != nil {
		t.Fatalf("StartMonkMode: %v", err)
	}
	if m.MinSuccessRate != DefaultMinSuccessRate {
		t.Fatalf("min success rate = %d, want %d", m.MinSuccessRate, DefaultMinSuccessRate)
	}
}

func TestMonkModeIgnoresTasksFinishedBeforeStart(t *testing.T) {
	ctx := context.Background()
	e, clock := newTestEngine(t, nil)

	gone := mustCreate(t, e, "Dropped earlier", PriorityLow, nil)
	if _, err := e.DeleteTask(ctx, gone.ID); err != nil {
		t.Fatalf("DeleteTask: %v", err)
	}
	clock.Advance(time.Minute)
	startMonk(t, e, 7)

	fresh := mustCreate(t, e, "On time", PriorityLow, nil)
	mustComplete(t, e, fresh.ID)
	if e.Snapshot().Stats.MonkMode == nil {
		t.Fatalf("only the on-time completion counts; the session should survive")
	}
	if s := e.MonkStatus().Session; s.Total() != 1 || s.Rate != 100 {
		t.Fatalf("session = %+v", s)
	}
}

func TestBreachNeedsTwoPressesWithinWindow(t *testing.T) {
	ctx := context.Background()
	e, clock := newTestEngine(t, nil)
	startMonk(t, e, 7)

	out, err := e.PressBreach(ctx)
	if err != nil || out != BreachArmed {
		t.Fatalf("first press = %v, %v", out, err)
	}
	if !e.BreachArmed() {
		t.Fatalf("breach should be armed")
	}
	clock.Advance(2 * time.Second)
	out, err = e.PressBreach(ctx)
	if err != nil || out != BreachCommitted {
		t.Fatalf("second press = %v, %v", out, err)
	}
	if e.Snapshot().Stats.MonkMode != nil {
		t.Fatalf("monk mode should be abandoned")
	}
	notices := e.DrainNotices()
	if len(notices) != 1 || notices[0].Kind != NoticeMonkBreached {
		t.Fatalf("notices = %+v", notices)
	}
}

func TestBreachExpiresAfterWindow(t *testing.T) {
	ctx := context.Background()
	e, clock := newTestEngine(t, nil)
	startMonk(t, e, 7)

	if out, _ := e.PressBreach(ctx); out != BreachArmed {
		t.Fatalf("first press should arm")
	}
	clock.Advance(BreachWindow + time.Second)
	if e.BreachArmed() {
		t.Fatalf("arming should have expired")
	}
	if out, _ := e.PressBreach(ctx); out != BreachArmed {
		t.Fatalf("late press should only re-arm")
	}
	if e.Snapshot().Stats.MonkMode == nil {
		t.Fatalf("monk mode should still be active")
	}
}

func TestBreachKeepsMilestones(t *testing.T) {
	ctx := context.Background()
	e, clock := newTestEngine(t, nil)
	startMonk(t, e, 28)
	clock.Advance(7 * 24 * time.Hour)
	e.Tick(ctx)

	e.PressBreach(ctx)
	if out, _ := e.PressBreach(ctx); out != BreachCommitted {
		t.Fatalf("breach not committed")
	}
	if st := e.Snapshot().Stats; !slices.Equal(st.UnlockedMilestones, []int{7}) {
		t.Fatalf("milestones lost: %v", st.UnlockedMilestones)
	}
}

func TestBreachRequiresActiveSession(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	_, err := e.PressBreach(context.Background())
	var se StateError
	if !errors.As(err, &se) {
		t.Fatalf("expected StateError, got %v", err)
	}
}

func TestBreachGuard(t *testing.T) {
	g := BreachGuard{Window: 3 * time.Second}
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	if g.Press(t0) {
		t.Fatalf("first press must not commit")
	}
	if !g.Press(t0.Add(3 * time.Second)) {
		t.Fatalf("press at the window edge should commit")
	}
	if g.Armed(t0.Add(3 * time.Second)) {
		t.Fatalf("guard should reset after commit")
	}
}
