package engine

import (
	"math"
	"strings"
	"time"

	"monkquest/internal/storage"
)

// MaxRecoveredGap bounds the elapsed time credited to a timer that was
// running while the process was not. Larger gaps are treated as stale.
const MaxRecoveredGap = 365 * 24 * time.Hour

// RecoverTasks credits running timers with the wall-clock time since their
// last update and normalizes timer fields. Tasks without an id or title are
// passed through untouched. changed reports whether any task was modified.
func RecoverTasks(tasks []storage.Task, now time.Time) ([]storage.Task, bool) {
	out := cloneTasks(tasks)
	if out == nil {
		out = []storage.Task{}
	}

	changed := false
	for i := range out {
		t := &out[i]
		if t.ID == 0 || strings.TrimSpace(t.Title) == "" {
			continue
		}
		if math.IsNaN(t.TimeSpent) || math.IsInf(t.TimeSpent, 0) || t.TimeSpent < 0 {
			t.TimeSpent = 0
			changed = true
		}
		if !t.IsRunning {
			if t.LastUpdated != nil {
				t.LastUpdated = nil
				changed = true
			}
			continue
		}
		if t.LastUpdated != nil {
			t.TimeSpent += clampGap(now.Sub(*t.LastUpdated)).Seconds()
		}
		t.LastUpdated = timePtr(now)
		changed = true
	}
	return out, changed
}

// clampGap treats negative (clock moved backwards) and implausibly large gaps as zero.
func clampGap(d time.Duration) time.Duration {
	if d < 0 || d > MaxRecoveredGap {
		return 0
	}
	return d
}
