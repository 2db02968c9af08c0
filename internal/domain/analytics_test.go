package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func session(day string, secs int64) *ReadingSession {
	return &ReadingSession{Day: day, DurationSeconds: secs}
}

func TestSecondsToHours(t *testing.T) {
	assert.InDelta(t, 1.5, SecondsToHours(5400), 0.0001)
	assert.InDelta(t, 0.1, SecondsToHours(180), 0.0001)
	assert.InDelta(t, 0.0, SecondsToHours(0), 0.0001)
}

func TestMonthlySeries(t *testing.T) {
	sessions := []*ReadingSession{
		session("2024-06-03", 600),
		session("2024-06-01", 1200),
		session("2024-06-03", 300),
		session("2024-05-31", 900),
	}

	got := MonthlySeries(sessions, 2024, time.June)
	assert.Equal(t, []DayMinutes{
		{Date: "2024-06-01", Minutes: 20},
		{Date: "2024-06-03", Minutes: 15},
	}, got)

	empty := MonthlySeries(nil, 2024, time.June)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestMostActiveMonth(t *testing.T) {
	assert.Empty(t, MostActiveMonth(nil))

	sessions := []*ReadingSession{
		session("2024-02-10", 600),
		session("2024-03-01", 400),
		session("2024-03-02", 400),
	}
	assert.Equal(t, "2024-03", MostActiveMonth(sessions))

	tied := []*ReadingSession{session("2024-04-01", 60), session("2024-01-01", 60)}
	assert.Equal(t, "2024-01", MostActiveMonth(tied))
}

func TestAverageRating(t *testing.T) {
	four, five, two := 4, 5, 2
	states := []*BookState{
		{Status: StatusFinished, Rating: &four},
		{Status: StatusFinished, Rating: &five},
		{Status: StatusFinished},
		{Status: StatusReading, Rating: &two},
	}

	avg := AverageRating(states)
	require.NotNil(t, avg)
	assert.InDelta(t, 4.5, *avg, 0.0001)

	assert.Nil(t, AverageRating([]*BookState{{Status: StatusReading, Rating: &two}}))
}

func TestCountFinishedBetween(t *testing.T) {
	start, end := YearBounds(2024, time.UTC)
	in := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	out := time.Date(2023, 12, 31, 23, 0, 0, 0, time.UTC)

	states := []*BookState{
		{Status: StatusFinished, FinishDate: &in},
		{Status: StatusFinished, FinishDate: &out},
		{Status: StatusFinished},
		{Status: StatusReading, FinishDate: &in},
	}
	assert.Equal(t, 1, CountFinishedBetween(states, start, end))
}

func TestBuildHeatmap(t *testing.T) {
	sessions := []*ReadingSession{
		session("2024-01-01", 3600),
		session("2024-01-02", 60),
		session("2024-12-31", 1800),
	}

	cells := BuildHeatmap(sessions, 2024, time.UTC)
	require.Len(t, cells, 366)

	assert.Equal(t, HeatmapDay{Date: "2024-01-01", Minutes: 60, Intensity: 4}, cells[0])
	assert.Equal(t, 1, cells[1].Intensity)
	assert.Equal(t, 0, cells[2].Intensity)
	assert.Equal(t, "2024-12-31", cells[365].Date)
	assert.Equal(t, 2, cells[365].Intensity)
}
