package engine

import (
	"math"
	"time"

	"monkquest/internal/storage"
)

// RateStats counts finished tasks. Rate is the on-time share of
// completions plus abandonments, as a rounded percentage.
type RateStats struct {
	Completed int
	OnTime    int
	Abandoned int
	Rate      int
}

func (r RateStats) Total() int { return r.Completed + r.Abandoned }

func (r RateStats) Late() int { return r.Completed - r.OnTime }

// successRate is 100 when there is nothing to judge.
func successRate(onTime, total int) int {
	if total == 0 {
		return 100
	}
	return int(math.Round(float64(onTime) * 100 / float64(total)))
}

func (r *RateStats) add(t storage.Task) {
	switch StatusOf(t) {
	case StatusAbandoned:
		r.Abandoned++
	case StatusCompleted:
		r.Completed++
		if t.CompletedOnTime {
			r.OnTime++
		}
	}
}

func tally(tasks []storage.Task, keep func(storage.Task, time.Time) bool) RateStats {
	var r RateStats
	for _, t := range tasks {
		at, ok := finishedAt(t)
		if !ok && keep != nil {
			continue
		}
		if keep != nil && !keep(t, at) {
			continue
		}
		r.add(t)
	}
	r.Rate = successRate(r.OnTime, r.Total())
	return r
}

// finishedAt is the completion time, or the abandonment time for deleted
// tasks (falling back to CompletedAt for records without DeletedAt).
func finishedAt(t storage.Task) (time.Time, bool) {
	switch StatusOf(t) {
	case StatusAbandoned:
		if t.DeletedAt != nil {
			return *t.DeletedAt, true
		}
		if t.CompletedAt != nil {
			return *t.CompletedAt, true
		}
	case StatusCompleted:
		if t.CompletedAt != nil {
			return *t.CompletedAt, true
		}
	}
	return time.Time{}, false
}

// OverallStats counts every finished task regardless of when it finished.
func OverallStats(tasks []storage.Task) RateStats {
	return tally(tasks, nil)
}

// SuccessRate is round(onTime / (completed + abandoned) * 100), or 100 with no history.
func SuccessRate(tasks []storage.Task) int {
	return OverallStats(tasks).Rate
}

// SessionStats counts tasks finished at or after since.
func SessionStats(tasks []storage.Task, since time.Time) RateStats {
	return tally(tasks, func(_ storage.Task, at time.Time) bool {
		return !at.Before(since)
	})
}

type DayStats struct {
	Day time.Time // local midnight
	RateStats
}

// DailyBreakdown returns the seven local calendar days ending with today,
// oldest first. Days without activity have a rate of 0.
func DailyBreakdown(tasks []storage.Task, now time.Time, loc *time.Location) []DayStats {
	if loc == nil {
		loc = time.Local
	}
	local := now.In(loc)
	today := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)

	out := make([]DayStats, 7)
	for i := range out {
		out[i].Day = today.AddDate(0, 0, i-6)
	}
	for _, t := range tasks {
		at, ok := finishedAt(t)
		if !ok {
			continue
		}
		at = at.In(loc)
		d := time.Date(at.Year(), at.Month(), at.Day(), 0, 0, 0, 0, loc)
		for i := range out {
			if out[i].Day.Equal(d) {
				out[i].add(t)
				break
			}
		}
	}
	for i := range out {
		if out[i].Total() == 0 {
			out[i].Rate = 0
			continue
		}
		out[i].Rate = successRate(out[i].OnTime, out[i].Total())
	}
	return out
}

// TotalTimeSpent sums tracked seconds across all tasks.
func TotalTimeSpent(tasks []storage.Task) time.Duration {
	var secs float64
	for _, t := range tasks {
		secs += t.TimeSpent
	}
	return time.Duration(secs * float64(time.Second))
}
