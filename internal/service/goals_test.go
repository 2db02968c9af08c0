package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/readupapp/readup-server/internal/domain"
	domainerrors "github.com/readupapp/readup-server/internal/errors"
	"github.com/readupapp/readup-server/internal/sse"
)

func TestGoals_DefaultsUntilSet(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.createUser(t, "u1", time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC))

	goals, err := env.goals.GetGoals(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultGoals(), goals)

	goals, err = env.goals.UpdateGoals(ctx, "u1", UpdateGoalsRequest{StreakGoal: ptr(30)})
	require.NoError(t, err)
	assert.Equal(t, 30, goals.StreakGoal)
	assert.Equal(t, 30, goals.DailyGoalMinutes, "unchanged goals keep the default")

	goals, err = env.goals.UpdateGoals(ctx, "u1", UpdateGoalsRequest{DailyGoalMinutes: ptr(45)})
	require.NoError(t, err)
	assert.Equal(t, domain.Goals{DailyGoalMinutes: 45, StreakGoal: 30, BooksPerYearGoal: 12}, goals)

	stored, err := env.goals.GetGoals(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, goals, stored)

	assert.Contains(t, env.events.types(), sse.EventGoalsUpdated)
}

func TestGoals_ConcurrentUpdatesOfDifferentGoalsBothStick(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.createUser(t, "u1", time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC))

	for round := range 10 {
		var wg sync.WaitGroup
		wg.Go(func() {
			_, err := env.goals.UpdateGoals(ctx, "u1", UpdateGoalsRequest{DailyGoalMinutes: ptr(40 + round)})
			assert.NoError(t, err)
		})
		wg.Go(func() {
			_, err := env.goals.UpdateGoals(ctx, "u1", UpdateGoalsRequest{BooksPerYearGoal: ptr(20 + round)})
			assert.NoError(t, err)
		})
		wg.Wait()

		goals, err := env.goals.GetGoals(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, 40+round, goals.DailyGoalMinutes)
		assert.Equal(t, 20+round, goals.BooksPerYearGoal)
	}
}

func TestGoals_RejectsValuesBelowOne(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.createUser(t, "u1", time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC))

	tests := []struct {
		name string
		req  UpdateGoalsRequest
	}{
		{"daily", UpdateGoalsRequest{DailyGoalMinutes: ptr(0)}},
		{"streak", UpdateGoalsRequest{StreakGoal: ptr(-1)}},
		{"books", UpdateGoalsRequest{BooksPerYearGoal: ptr(0)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.goals.UpdateGoals(ctx, "u1", tt.req)
			requireCode(t, err, domainerrors.CodeValidation)
		})
	}

	goals, err := env.goals.GetGoals(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultGoals(), goals)
}

func TestGoals_UnknownUser(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.goals.GetGoals(context.Background(), "nobody")
	requireCode(t, err, domainerrors.CodeNotFound)
}
