package domain

import (
	"cmp"
	"math"
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// SecondsToMinutes converts seconds to whole minutes, rounding half up.
func SecondsToMinutes(seconds int64) int {
	return int(math.Round(float64(seconds) / 60))
}

// SecondsToHours converts seconds to hours with one decimal place.
func SecondsToHours(seconds int64) float64 {
	return decimal.NewFromInt(seconds).Div(decimal.NewFromInt(3600)).Round(1).InexactFloat64()
}

// RoundOneDecimal rounds half away from zero to one decimal place.
func RoundOneDecimal(f float64) float64 {
	return decimal.NewFromFloat(f).Round(1).InexactFloat64()
}

// DayMinutes is the reading time on one calendar day.
type DayMinutes struct {
	Date    string `json:"date"`
	Minutes int    `json:"minutes"`
}

// SumSeconds totals the duration of sessions.
func SumSeconds(sessions []*ReadingSession) int64 {
	var total int64
	for _, s := range sessions {
		total += s.DurationSeconds
	}
	return total
}

// secondsByDay totals seconds per day key.
func secondsByDay(sessions []*ReadingSession) map[string]int64 {
	out := make(map[string]int64)
	for _, s := range sessions {
		out[s.Day] += s.DurationSeconds
	}
	return out
}

// MonthlySeries returns minutes per day for days with reading, ascending by date.
// Sessions outside the month are ignored.
func MonthlySeries(sessions []*ReadingSession, year int, month time.Month) []DayMinutes {
	prefix := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).Format("2006-01")

	var series []DayMinutes
	for key, secs := range secondsByDay(sessions) {
		if len(key) >= 7 && key[:7] == prefix {
			series = append(series, DayMinutes{Date: key, Minutes: SecondsToMinutes(secs)})
		}
	}
	slices.SortFunc(series, func(a, b DayMinutes) int { return cmp.Compare(a.Date, b.Date) })
	if series == nil {
		series = []DayMinutes{}
	}
	return series
}

// MostActiveMonth returns the YYYY-MM key with the most reading time, or "" when
// there are no sessions. Ties go to the earliest month.
func MostActiveMonth(sessions []*ReadingSession) string {
	byMonth := make(map[string]int64)
	for _, s := range sessions {
		if len(s.Day) >= 7 {
			byMonth[s.Day[:7]] += s.DurationSeconds
		}
	}

	best, bestSecs := "", int64(-1)
	for month, secs := range byMonth {
		if secs > bestSecs || (secs == bestSecs && month < best) {
			best, bestSecs = month, secs
		}
	}
	return best
}

// AverageRating is the mean rating of finished, rated books to one decimal, or nil.
func AverageRating(states []*BookState) *float64 {
	sum, n := decimal.Zero, int64(0)
	for _, s := range states {
		if s.Status != StatusFinished || s.Rating == nil {
			continue
		}
		sum = sum.Add(decimal.NewFromInt(int64(*s.Rating)))
		n++
	}
	if n == 0 {
		return nil
	}
	avg := sum.Div(decimal.NewFromInt(n)).Round(1).InexactFloat64()
	return &avg
}

// CountFinishedBetween counts finished entries whose finish date is in [start, end).
func CountFinishedBetween(states []*BookState, start, end time.Time) int {
	n := 0
	for _, s := range states {
		if s.Status == StatusFinished && s.FinishDate != nil &&
			!s.FinishDate.Before(start) && s.FinishDate.Before(end) {
			n++
		}
	}
	return n
}

// YearlySummary is a year of reading for the heatmap and totals.
type YearlySummary struct {
	Year       int               `json:"year"`
	Sessions   []*ReadingSession `json:"sessions"`
	TotalHours float64           `json:"totalHours"`
	TotalBooks int               `json:"totalBooks"`
}

// YearlyStats are the headline numbers for the current year.
type YearlyStats struct {
	TotalBooksFinished int      `json:"totalBooksFinished"`
	MostActiveMonth    *string  `json:"mostActiveMonth"`
	AverageRating      *float64 `json:"averageRating"`
}

// Summary is the dashboard view: this month's daily minutes and this year's stats.
type Summary struct {
	MonthlyData []DayMinutes `json:"monthlyData"`
	YearlyStats YearlyStats  `json:"yearlyStats"`
}

// HeatmapDay is one cell of the activity calendar.
type HeatmapDay struct {
	Date      string `json:"date"`
	Minutes   int    `json:"minutes"`
	Intensity int    `json:"intensity"` // 0 = none, 4 = the busiest day of the range
}

// BuildHeatmap returns one cell per day of year, scaling intensity to the busiest day.
func BuildHeatmap(sessions []*ReadingSession, year int, loc *time.Location) []HeatmapDay {
	perDay := secondsByDay(sessions)

	var maxSecs int64
	for _, secs := range perDay {
		maxSecs = max(maxSecs, secs)
	}

	start, end := YearBounds(year, loc)
	cells := make([]HeatmapDay, 0, 366)
	for d := start; d.Before(end); d = d.AddDate(0, 0, 1) {
		key := d.Format(DayKeyLayout)
		secs := perDay[key]

		intensity := 0
		if secs > 0 && maxSecs > 0 {
			intensity = min(4, int(float64(secs)/float64(maxSecs)*3)+1)
		}
		cells = append(cells, HeatmapDay{Date: key, Minutes: SecondsToMinutes(secs), Intensity: intensity})
	}
	return cells
}

// LifetimeStats are running totals kept outside the relational store.
type LifetimeStats struct {
	UserID              string    `json:"userId"`
	TotalReadingSeconds int64     `json:"totalReadingSeconds"`
	SessionsRecorded    int64     `json:"sessionsRecorded"`
	BooksFinished       int64     `json:"booksFinished"`
	LastReadDay         string    `json:"lastReadDay,omitempty"`
	UpdatedAt           time.Time `json:"updatedAt"`
}
