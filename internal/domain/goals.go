package domain

import "math"

// Goals are a user's effective reading targets.
type Goals struct {
	DailyGoalMinutes int `json:"dailyGoalMinutes"`
	StreakGoal       int `json:"streakGoal"`
	BooksPerYearGoal int `json:"booksPerYearGoal"`
}

// DefaultGoals are the targets used when neither the user nor configuration set one.
func DefaultGoals() Goals {
	return Goals{DailyGoalMinutes: 30, StreakGoal: 7, BooksPerYearGoal: 12}
}

// GoalSettings are the values a user explicitly chose. Nil means "use the default".
type GoalSettings struct {
	DailyGoalMinutes *int `json:"dailyGoalMinutes,omitempty"`
	StreakGoal       *int `json:"streakGoal,omitempty"`
	BooksPerYearGoal *int `json:"booksPerYearGoal,omitempty"`
}

// Resolve fills unset values from defaults.
func (g GoalSettings) Resolve(defaults Goals) Goals {
	out := defaults
	if g.DailyGoalMinutes != nil {
		out.DailyGoalMinutes = *g.DailyGoalMinutes
	}
	if g.StreakGoal != nil {
		out.StreakGoal = *g.StreakGoal
	}
	if g.BooksPerYearGoal != nil {
		out.BooksPerYearGoal = *g.BooksPerYearGoal
	}
	return out
}

// GoalPercent returns min(100, round(value/goal*100)), or 0 when goal is not positive.
func GoalPercent(value, goal int) int {
	if goal <= 0 || value <= 0 {
		return 0
	}
	return min(100, int(math.Round(float64(value)/float64(goal)*100)))
}

// DailyProgress is today's reading time against the daily goal.
type DailyProgress struct {
	TodayMinutes    int `json:"todayMinutes"`
	GoalMinutes     int `json:"goalMinutes"`
	ProgressPercent int `json:"progressPercent"`
}

// NewDailyProgress builds daily progress from the seconds read today.
func NewDailyProgress(todaySeconds int64, goalMinutes int) DailyProgress {
	minutes := SecondsToMinutes(todaySeconds)
	return DailyProgress{
		TodayMinutes:    minutes,
		GoalMinutes:     goalMinutes,
		ProgressPercent: GoalPercent(minutes, goalMinutes),
	}
}

// StreakProgress is the current streak against the streak goal.
type StreakProgress struct {
	CurrentStreak   int `json:"currentStreak"`
	LongestStreak   int `json:"longestStreak"`
	GoalDays        int `json:"goalDays"`
	ProgressPercent int `json:"progressPercent"`
}

// BooksProgress is books finished this year against the yearly goal.
type BooksProgress struct {
	Year            int `json:"year"`
	BooksFinished   int `json:"booksFinished"`
	Goal            int `json:"goal"`
	ProgressPercent int `json:"progressPercent"`
}

// GoalsProgress bundles all goal attainment figures.
type GoalsProgress struct {
	Goals  Goals          `json:"goals"`
	Daily  DailyProgress  `json:"daily"`
	Streak StreakProgress `json:"streak"`
	Books  BooksProgress  `json:"books"`
}
