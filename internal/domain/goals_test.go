package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGoalPercent(t *testing.T) {
	tests := []struct {
		name  string
		value int
		goal  int
		want  int
	}{
		{"clamped at 100", 45, 30, 100},
		{"exact", 30, 30, 100},
		{"half", 15, 30, 50},
		{"rounds", 1, 3, 33},
		{"zero goal", 10, 0, 0},
		{"nothing read", 0, 30, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GoalPercent(tt.value, tt.goal))
		})
	}
}

func TestNewDailyProgress(t *testing.T) {
	p := NewDailyProgress(45*60, 30)
	assert.Equal(t, DailyProgress{TodayMinutes: 45, GoalMinutes: 30, ProgressPercent: 100}, p)

	// 89 seconds rounds to 1 minute, 90 rounds up to 2.
	assert.Equal(t, 1, NewDailyProgress(89, 30).TodayMinutes)
	assert.Equal(t, 2, NewDailyProgress(90, 30).TodayMinutes)
}

func TestGoalSettings_Resolve(t *testing.T) {
	daily := 45
	settings := GoalSettings{DailyGoalMinutes: &daily}

	got := settings.Resolve(DefaultGoals())
	assert.Equal(t, Goals{DailyGoalMinutes: 45, StreakGoal: 7, BooksPerYearGoal: 12}, got)

	custom := Goals{DailyGoalMinutes: 20, StreakGoal: 3, BooksPerYearGoal: 50}
	assert.Equal(t, custom, GoalSettings{}.Resolve(custom))
}
