package storage

import "time"

// Task is a single quest. Deleted and completed tasks are kept for history.
type Task struct {
	ID          int64  `json:"id" yaml:"id"`
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	Completed bool `json:"completed" yaml:"completed"`
	Deleted   bool `json:"deleted" yaml:"deleted"`

	Exp      int        `json:"exp" yaml:"exp"`
	Priority string     `json:"priority" yaml:"priority"`
	Deadline *time.Time `json:"deadline,omitempty" yaml:"deadline,omitempty"`

	RemindAt      *time.Time `json:"reminderTime,omitempty" yaml:"reminderTime,omitempty"`
	ReminderFired bool       `json:"reminderFired,omitempty" yaml:"reminderFired,omitempty"`

	// TimeSpent is in seconds. LastUpdated is set iff IsRunning.
	TimeSpent   float64    `json:"timeSpent" yaml:"timeSpent"`
	IsRunning   bool       `json:"isRunning" yaml:"isRunning"`
	LastUpdated *time.Time `json:"lastUpdated,omitempty" yaml:"lastUpdated,omitempty"`

	CreatedAt       time.Time  `json:"createdAt" yaml:"createdAt"`
	CompletedAt     *time.Time `json:"completedAt,omitempty" yaml:"completedAt,omitempty"`
	CompletedOnTime bool       `json:"completedOnTime,omitempty" yaml:"completedOnTime,omitempty"`
	DeletedAt       *time.Time `json:"deletedAt,omitempty" yaml:"deletedAt,omitempty"`
}

type MonkMode struct {
	Active         bool      `json:"isActive" yaml:"isActive"`
	StartDate      time.Time `json:"startDate" yaml:"startDate"`
	EndDate        time.Time `json:"endDate" yaml:"endDate"`
	Duration       string    `json:"duration" yaml:"duration"`
	TotalDays      int       `json:"totalDays" yaml:"totalDays"`
	MinSuccessRate int       `json:"minSuccessRate" yaml:"minSuccessRate"`
}

// UserStats is the singleton character record.
type UserStats struct {
	Level        int    `json:"level" yaml:"level"`
	CurrentExp   int    `json:"currentExp" yaml:"currentExp"`
	NextLevelExp int    `json:"nextLevelExp" yaml:"nextLevelExp"`
	Streak       int    `json:"streak" yaml:"streak"`
	Class        string `json:"class" yaml:"class"`
	Name         string `json:"name,omitempty" yaml:"name,omitempty"`
	Avatar       string `json:"avatar,omitempty" yaml:"avatar,omitempty"`

	MonkMode           *MonkMode `json:"monkMode,omitempty" yaml:"monkMode,omitempty"`
	UnlockedMilestones []int     `json:"unlockedMilestones" yaml:"unlockedMilestones"`

	// LastActiveDay is the local YYYY-MM-DD of the last completion.
	LastActiveDay string `json:"lastActiveDay,omitempty" yaml:"lastActiveDay,omitempty"`
}

type GuildMember struct {
	ID     string `json:"id" yaml:"id"`
	Name   string `json:"name" yaml:"name"`
	Level  int    `json:"level" yaml:"level"`
	Class  string `json:"class" yaml:"class"`
	IsUser bool   `json:"isUser,omitempty" yaml:"isUser,omitempty"`
}

type Guild struct {
	ID         string        `json:"id" yaml:"id"`
	Name       string        `json:"name" yaml:"name"`
	InviteCode string        `json:"inviteCode" yaml:"inviteCode"`
	Members    []GuildMember `json:"members" yaml:"members"`
}
