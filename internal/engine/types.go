package engine

import (
	"slices"
	"time"

	"monkquest/internal/storage"
)

type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
)

func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	default:
		return false
	}
}

// DefaultPriority is used when user input is missing.
const DefaultPriority Priority = PriorityMedium

// ExpReward is the experience a task of this priority is worth before penalties.
func (p Priority) ExpReward() int {
	switch p {
	case PriorityHigh:
		return 100
	case PriorityLow:
		return 25
	default:
		return 50
	}
}

// TaskStatus is the tagged view over the Completed/Deleted flags.
type TaskStatus string

const (
	StatusActive    TaskStatus = "active"
	StatusCompleted TaskStatus = "completed"
	StatusAbandoned TaskStatus = "abandoned"
)

// StatusOf reports the task lifecycle state. Deletion wins over completion.
func StatusOf(t storage.Task) TaskStatus {
	switch {
	case t.Deleted:
		return StatusAbandoned
	case t.Completed:
		return StatusCompleted
	default:
		return StatusActive
	}
}

func isActive(t storage.Task) bool { return !t.Completed && !t.Deleted }

// TaskInput carries user-editable task fields.
type TaskInput struct {
	Title       string
	Description string
	Priority    Priority
	Deadline    *time.Time
	RemindAt    *time.Time
}

// State is a read view of everything the engine owns.
type State struct {
	Stats storage.UserStats
	Tasks []storage.Task
	Guild *storage.Guild
}

func (s State) clone() State {
	return State{
		Stats: cloneStats(s.Stats),
		Tasks: cloneTasks(s.Tasks),
		Guild: cloneGuild(s.Guild),
	}
}

// Time pointers inside records are never written through, so copying the
// pointer is enough.
func cloneTasks(in []storage.Task) []storage.Task {
	if in == nil {
		return nil
	}
	out := make([]storage.Task, len(in))
	copy(out, in)
	return out
}

func cloneStats(in storage.UserStats) storage.UserStats {
	out := in
	if in.MonkMode != nil {
		m := *in.MonkMode
		out.MonkMode = &m
	}
	out.UnlockedMilestones = slices.Clone(in.UnlockedMilestones)
	return out
}

func cloneGuild(in *storage.Guild) *storage.Guild {
	if in == nil {
		return nil
	}
	out := *in
	out.Members = slices.Clone(in.Members)
	return &out
}

func timePtr(t time.Time) *time.Time { return &t }
