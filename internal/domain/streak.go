package domain

import (
	"slices"
	"time"
)

// Streak is the current and longest run of consecutive reading days.
type Streak struct {
	Current int `json:"current"`
	Longest int `json:"longest"`
}

// ComputeStreak derives streaks from the days that have at least one session.
// Days are normalised to calendar days in today's location. The current streak
// starts at today when today has a session, otherwise at yesterday, and stops at
// the first missing day.
func ComputeStreak(sessionDates []time.Time, today time.Time) Streak {
	if len(sessionDates) == 0 {
		return Streak{}
	}

	loc := today.Location()
	present := make(map[string]bool, len(sessionDates))
	for _, d := range sessionDates {
		present[DayKey(d, loc)] = true
	}

	cursor := DayStart(today, loc)
	if !present[cursor.Format(DayKeyLayout)] {
		cursor = cursor.AddDate(0, 0, -1)
	}

	current := 0
	for present[cursor.Format(DayKeyLayout)] {
		current++
		cursor = cursor.AddDate(0, 0, -1)
	}

	return Streak{Current: current, Longest: max(current, longestRun(present, loc))}
}

// longestRun walks the sorted day keys. AddDate keeps the arithmetic DST-safe.
func longestRun(present map[string]bool, loc *time.Location) int {
	days := make([]string, 0, len(present))
	for d := range present {
		days = append(days, d)
	}
	slices.Sort(days)

	longest, run := 1, 1
	for i := 1; i < len(days); i++ {
		prev, err := time.ParseInLocation(DayKeyLayout, days[i-1], loc)
		if err == nil && prev.AddDate(0, 0, 1).Format(DayKeyLayout) == days[i] {
			run++
			longest = max(longest, run)
		} else {
			run = 1
		}
	}
	return longest
}

// NewStreakProgress evaluates a streak against the streak goal.
func NewStreakProgress(s Streak, goalDays int) StreakProgress {
	return StreakProgress{
		CurrentStreak:   s.Current,
		LongestStreak:   s.Longest,
		GoalDays:        goalDays,
		ProgressPercent: GoalPercent(s.Current, goalDays),
	}
}
