package engine

import (
	"slices"

	"monkquest/internal/storage"
)

// Achievement represents a badge the player can earn.
type Achievement struct {
	ID          string
	Name        string
	Description string
	Icon        string
	Earned      bool
}

// AchievementChecker calculates which achievements the player has earned.
type AchievementChecker struct {
	stats storage.UserStats
	tasks []storage.Task
}

func NewAchievementChecker(stats storage.UserStats, tasks []storage.Task) *AchievementChecker {
	return &AchievementChecker{stats: stats, tasks: tasks}
}

// GetAchievements returns all achievements with their earned status.
func (c *AchievementChecker) GetAchievements() []Achievement {
	overall := OverallStats(c.tasks)

	return []Achievement{
		// Level milestones
		c.level("getting_started", "Getting Started", "Reach level 3", "🌿", 3),
		c.level("seasoned", "Seasoned Adventurer", "Reach level 10", "⭐", 10),
		c.level("master", "Master", "Reach level 20", "💫", 20),

		// Quest completion milestones
		threshold("first_quest", "First Quest", "Complete 1 quest", "✓", overall.Completed, 1),
		threshold("productive", "Productive", "Complete 10 quests", "📋", overall.Completed, 10),
		threshold("powerhouse", "Powerhouse", "Complete 100 quests", "🏆", overall.Completed, 100),
		threshold("punctual", "Punctual", "Complete 25 quests on time", "⏰", overall.OnTime, 25),

		// Streaks
		threshold("on_a_roll", "On a Roll", "Keep a 3-day streak", "🔥", c.stats.Streak, 3),
		threshold("unbroken", "Unbroken", "Keep a 30-day streak", "🌋", c.stats.Streak, 30),

		// Monk Mode
		c.milestone("initiate", "Initiate", "Finish a 1 week protocol", "🧘", 7),
		c.milestone("ascetic", "Ascetic", "Finish a 3 month protocol", "🏯", 90),
		c.milestone("enlightened", "Enlightened", "Finish a 1 year protocol", "🕉️", 365),
	}
}

// CountEarned returns how many achievements have been earned.
func (c *AchievementChecker) CountEarned() int {
	count := 0
	for _, a := range c.GetAchievements() {
		if a.Earned {
			count++
		}
	}
	return count
}

// CountTotal returns total number of achievements.
func (c *AchievementChecker) CountTotal() int {
	return len(c.GetAchievements())
}

func (c *AchievementChecker) level(id, name, desc, icon string, level int) Achievement {
	return threshold(id, name, desc, icon, c.stats.Level, level)
}

func (c *AchievementChecker) milestone(id, name, desc, icon string, days int) Achievement {
	earned := slices.Contains(c.stats.UnlockedMilestones, days)
	return Achievement{ID: id, Name: name, Description: desc, Icon: icon, Earned: earned}
}

func threshold(id, name, desc, icon string, have, want int) Achievement {
	return Achievement{ID: id, Name: name, Description: desc, Icon: icon, Earned: have >= want}
}
