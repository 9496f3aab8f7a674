package engine

import (
	"math"

	"monkquest/internal/storage"
)

const (
	// BaseLevelExp is the experience needed to leave level 1.
	BaseLevelExp = 100

	DefaultClass = "Novice"
)

// NextLevelExp returns floor(cur * 1.5), saturating at math.MaxInt.
func NextLevelExp(cur int) int {
	if cur > math.MaxInt/3*2 {
		return math.MaxInt
	}
	return cur + cur/2
}

// addCapped adds b to a without wrapping past math.MaxInt.
func addCapped(a, b int) int {
	if b > math.MaxInt-a {
		return math.MaxInt
	}
	return a + b
}

// DefaultStats is the record of a fresh character.
func DefaultStats() storage.UserStats {
	return storage.UserStats{
		Level:              1,
		CurrentExp:         0,
		NextLevelExp:       BaseLevelExp,
		Class:              DefaultClass,
		UnlockedMilestones: []int{},
	}
}

// normalizeStats repairs impossible running totals so the level loop always terminates.
func normalizeStats(st storage.UserStats) storage.UserStats {
	if st.Level < 1 {
		st.Level = 1
	}
	if st.NextLevelExp < 1 {
		st.NextLevelExp = BaseLevelExp
	}
	if st.CurrentExp < 0 {
		st.CurrentExp = 0
	}
	if st.Streak < 0 {
		st.Streak = 0
	}
	if st.Class == "" {
		st.Class = DefaultClass
	}
	if st.UnlockedMilestones == nil {
		st.UnlockedMilestones = []int{}
	}
	return st
}

// ApplyExperience adds amount to the stats and rolls over levels while the
// running total reaches the threshold. Non-positive amounts only normalize.
func ApplyExperience(st storage.UserStats, amount int) (storage.UserStats, int) {
	st = normalizeStats(st)
	if amount > 0 {
		st.CurrentExp = addCapped(st.CurrentExp, amount)
	}

	gained := 0
	for st.CurrentExp >= st.NextLevelExp {
		st.CurrentExp -= st.NextLevelExp
		st.Level++
		st.NextLevelExp = NextLevelExp(st.NextLevelExp)
		gained++
	}
	return st, gained
}

// TotalExpForLevel returns the cumulative experience spent reaching level.
func TotalExpForLevel(level int) int {
	total := 0
	req := BaseLevelExp
	for l := 1; l < level; l++ {
		total = addCapped(total, req)
		req = NextLevelExp(req)
	}
	return total
}
