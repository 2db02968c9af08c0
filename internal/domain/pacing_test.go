package domain

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readingState(created time.Time, progress float64) *BookState {
	s := NewBookState("state-1", "user-1", "book-1", StatusReading, created)
	s.ProgressPercent = progress
	return s
}

func TestComputePacing_RequiresReadingWithTarget(t *testing.T) {
	s := readingState(t0, 10)
	assert.Nil(t, ComputePacing(s, t0), "no target")

	s.SetTarget(t0.AddDate(0, 0, 10), t0)
	s.Status = StatusFinished
	assert.Nil(t, ComputePacing(s, t0), "not reading")

	assert.Nil(t, ComputePacing(nil, t0))
}

func TestComputePacing_OnSchedule(t *testing.T) {
	s := readingState(t0, 0)
	s.SetTarget(t0.AddDate(0, 0, 10), t0)
	s.ProgressPercent = 50

	p := ComputePacing(s, t0.AddDate(0, 0, 5))
	require.NotNil(t, p)

	assert.Equal(t, 5, p.DaysRemaining)
	assert.InDelta(t, 50, p.ExpectedProgress, 0.001)
	assert.Equal(t, 0, p.DaysDifference)
	assert.True(t, p.OnTrack)
	assert.False(t, p.Overdue)
	require.NotNil(t, p.PercentPerDayNeeded)
	assert.InDelta(t, 10, *p.PercentPerDayNeeded, 0.001)
}

func TestComputePacing_AheadAndBehind(t *testing.T) {
	s := readingState(t0, 0)
	s.SetTarget(t0.AddDate(0, 0, 10), t0)
	now := t0.AddDate(0, 0, 5)

	s.ProgressPercent = 70
	ahead := ComputePacing(s, now)
	assert.Equal(t, 2, ahead.DaysDifference)
	assert.True(t, ahead.OnTrack)

	s.ProgressPercent = 25
	behind := ComputePacing(s, now)
	assert.Equal(t, -2, behind.DaysDifference)
	assert.False(t, behind.OnTrack)
}

func TestComputePacing_BaselineAtTargetSet(t *testing.T) {
	// Target set on a book already 60% read: the remaining 40% spreads over 4 days.
	s := readingState(t0.AddDate(0, 0, -30), 60)
	s.SetTarget(t0.AddDate(0, 0, 4), t0)

	p := ComputePacing(s, t0.AddDate(0, 0, 2))
	require.NotNil(t, p)
	assert.InDelta(t, 80, p.ExpectedProgress, 0.001)
	assert.Equal(t, -2, p.DaysDifference)
}

func TestComputePacing_Overdue(t *testing.T) {
	s := readingState(t0, 0)
	s.SetTarget(t0.AddDate(0, 0, 3), t0)
	s.ProgressPercent = 90

	p := ComputePacing(s, t0.AddDate(0, 0, 5))
	require.NotNil(t, p)

	assert.True(t, p.Overdue)
	assert.Nil(t, p.PercentPerDayNeeded)
	assert.LessOrEqual(t, p.DaysRemaining, 0)
	assert.InDelta(t, 100, p.ExpectedProgress, 0.001)
}

func TestComputePacing_TargetInPastAtCreation(t *testing.T) {
	s := readingState(t0, 0)
	s.SetTarget(t0.AddDate(0, 0, -2), t0)

	p := ComputePacing(s, t0)
	require.NotNil(t, p)
	for _, f := range []float64{p.ExpectedProgress, p.ActualProgress} {
		assert.False(t, math.IsNaN(f) || math.IsInf(f, 0))
	}
	assert.True(t, p.Overdue)
}

func TestComputePacing_AnchorFallsBackToStartDate(t *testing.T) {
	s := readingState(t0, 50)
	target := t0.AddDate(0, 0, 10)
	s.TargetFinishDate = &target

	p := ComputePacing(s, t0.AddDate(0, 0, 5))
	require.NotNil(t, p)
	assert.InDelta(t, 50, p.ExpectedProgress, 0.001)
}

func TestComputePacing_FullyReadBeforeTarget(t *testing.T) {
	s := readingState(t0, 100)
	s.SetTarget(t0.AddDate(0, 0, 10), t0)

	// Completed at set time: baseline 100 leaves no planned rate.
	p := ComputePacing(s, t0.AddDate(0, 0, 1))
	require.NotNil(t, p)
	assert.Equal(t, 0, p.DaysDifference)
	assert.True(t, p.OnTrack)
	assert.InDelta(t, 0, *p.PercentPerDayNeeded, 0.001)
}
