package engine

import (
	"context"
	"fmt"
	"slices"
	"time"

	"monkquest/internal/storage"
)

const (
	DefaultMinSuccessRate = 50

	// BreachWindow is how long an armed breach waits for its confirmation.
	BreachWindow = 3 * time.Second

	day = 24 * time.Hour
)

type Milestone struct {
	Days  int
	Label string
}

// Milestones are the selectable Monk Mode durations, shortest first.
var Milestones = []Milestone{
	{Days: 7, Label: "1 Week"},
	{Days: 28, Label: "4 Weeks"},
	{Days: 90, Label: "3 Months"},
	{Days: 180, Label: "6 Months"},
	{Days: 365, Label: "1 Year"},
	{Days: 1825, Label: "5 Years"},
}

func MilestoneFor(days int) (Milestone, bool) {
	for _, m := range Milestones {
		if m.Days == days {
			return m, true
		}
	}
	return Milestone{}, false
}

type MonkTransition int

const (
	MonkUnchanged MonkTransition = iota
	MonkMilestone                // new milestone unlocked, session still running
	MonkCompleted
	MonkFailed
	MonkBreached
)

func (t MonkTransition) String() string {
	switch t {
	case MonkMilestone:
		return "milestone"
	case MonkCompleted:
		return "completed"
	case MonkFailed:
		return "failed"
	case MonkBreached:
		return "breached"
	default:
		return "unchanged"
	}
}

// ElapsedDays is the number of whole days since start.
func ElapsedDays(start, now time.Time) int {
	if now.Before(start) {
		return 0
	}
	return int(now.Sub(start) / day)
}

func monkActive(st storage.UserStats) bool {
	return st.MonkMode != nil && st.MonkMode.Active
}

// MonkTick unlocks every milestone reached by the elapsed days, then ends a
// session whose duration has elapsed.
func MonkTick(st *storage.UserStats, now time.Time) (MonkTransition, []int) {
	if !monkActive(*st) {
		return MonkUnchanged, nil
	}
	m := st.MonkMode
	elapsed := ElapsedDays(m.StartDate, now)

	var unlocked []int
	for _, ms := range Milestones {
		if ms.Days > elapsed || slices.Contains(st.UnlockedMilestones, ms.Days) {
			continue
		}
		st.UnlockedMilestones = append(st.UnlockedMilestones, ms.Days)
		unlocked = append(unlocked, ms.Days)
	}
	slices.Sort(st.UnlockedMilestones)

	if elapsed >= m.TotalDays {
		st.MonkMode = nil
		return MonkCompleted, unlocked
	}
	if len(unlocked) > 0 {
		return MonkMilestone, unlocked
	}
	return MonkUnchanged, nil
}

// MonkCheckTasks ends the session when its success rate drops below the
// minimum. Sessions without any completed or abandoned task never fail.
func MonkCheckTasks(st *storage.UserStats, tasks []storage.Task) MonkTransition {
	if !monkActive(*st) {
		return MonkUnchanged
	}
	session := SessionStats(tasks, st.MonkMode.StartDate)
	if session.Total() == 0 || session.Rate >= st.MonkMode.MinSuccessRate {
		return MonkUnchanged
	}
	st.MonkMode = nil
	return MonkFailed
}

// checkMonkOnTasks runs MonkCheckTasks on next. Caller holds e.mu.
func (e *Engine) checkMonkOnTasks(next *State) bool {
	tr := MonkCheckTasks(&next.Stats, next.Tasks)
	if tr == MonkUnchanged {
		return false
	}
	e.monkNotice(tr, nil)
	return true
}

// monkNotice queues the notices for a transition. Caller holds e.mu.
func (e *Engine) monkNotice(tr MonkTransition, unlocked []int) {
	for _, d := range unlocked {
		if ms, ok := MilestoneFor(d); ok {
			e.notice(NoticeMilestone, "Milestone unlocked", fmt.Sprintf("%s of discipline.", ms.Label))
		}
	}
	if tr != MonkUnchanged && tr != MonkMilestone {
		e.breach.Reset()
	}
	switch tr {
	case MonkCompleted:
		e.notice(NoticeMonkCompleted, "Monk Mode complete", "The protocol is finished. Your milestones are kept.")
	case MonkFailed:
		e.notice(NoticeMonkFailed, "Monk Mode failed", "Your success rate fell below the minimum.")
	case MonkBreached:
		e.notice(NoticeMonkBreached, "Monk Mode abandoned", "The protocol was breached.")
	}
}

// StartMonkMode begins a session lasting one of the milestone durations.
func (e *Engine) StartMonkMode(ctx context.Context, days int) (*storage.MonkMode, error) {
	ms, ok := MilestoneFor(days)
	if !ok {
		return nil, ValidationError{Field: "duration", Reason: fmt.Sprintf("%d days is not a milestone", days)}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if monkActive(e.state.Stats) {
		return nil, StateError{Op: "start monk mode", Reason: "a session is already active"}
	}

	now := e.now()
	next := e.state.clone()
	next.Stats.MonkMode = &storage.MonkMode{
		Active:         true,
		StartDate:      now,
		EndDate:        now.Add(time.Duration(ms.Days) * day),
		Duration:       ms.Label,
		TotalDays:      ms.Days,
		MinSuccessRate: e.minRate,
	}
	e.breach.Reset()
	e.apply(ctx, next, changeStats)

	m := *next.Stats.MonkMode
	return &m, nil
}

type BreachOutcome int

const (
	BreachArmed BreachOutcome = iota + 1
	BreachCommitted
)

// BreachGuard implements the two-step give-up confirmation: the first press
// arms it, a second press within Window commits.
type BreachGuard struct {
	Window  time.Duration
	armed   bool
	armedAt time.Time
}

// Press reports whether this press commits the breach.
func (g *BreachGuard) Press(now time.Time) bool {
	if g.Armed(now) {
		g.Reset()
		return true
	}
	g.armed = true
	g.armedAt = now
	return false
}

func (g *BreachGuard) Armed(now time.Time) bool {
	return g.armed && !now.After(g.armedAt.Add(g.Window))
}

func (g *BreachGuard) Reset() {
	g.armed = false
	g.armedAt = time.Time{}
}

// PressBreach is the give-up button for an active session.
func (e *Engine) PressBreach(ctx context.Context) (BreachOutcome, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !monkActive(e.state.Stats) {
		return 0, StateError{Op: "breach", Reason: "monk mode is not active"}
	}
	if !e.breach.Press(e.now()) {
		return BreachArmed, nil
	}

	next := e.state.clone()
	next.Stats.MonkMode = nil
	e.monkNotice(MonkBreached, nil)
	e.apply(ctx, next, changeStats)
	return BreachCommitted, nil
}

// BreachArmed reports whether a breach is waiting for confirmation.
func (e *Engine) BreachArmed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.breach.Armed(e.now())
}

type MonkStatus struct {
	Active         bool
	Duration       string
	TotalDays      int
	ElapsedDays    int
	RemainingDays  int
	StartDate      time.Time
	EndDate        time.Time
	MinSuccessRate int
	Session        RateStats
	Unlocked       []int
}

func (e *Engine) MonkStatus() MonkStatus {
	e.mu.Lock()
	defer e.mu.Unlock()

	st := e.state.Stats
	out := MonkStatus{Unlocked: append([]int(nil), st.UnlockedMilestones...)}
	if !monkActive(st) {
		return out
	}
	m := st.MonkMode
	now := e.now()
	out.Active = true
	out.Duration = m.Duration
	out.TotalDays = m.TotalDays
	out.ElapsedDays = ElapsedDays(m.StartDate, now)
	out.RemainingDays = max(0, m.TotalDays-out.ElapsedDays)
	out.StartDate = m.StartDate
	out.EndDate = m.EndDate
	out.MinSuccessRate = m.MinSuccessRate
	out.Session = SessionStats(e.state.Tasks, m.StartDate)
	return out
}
