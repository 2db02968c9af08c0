package domain

import "time"

// Session reporting thresholds. The reader batches active time locally and only
// reports once ReportThresholdSeconds have accumulated, except when the reader
// closes, where at least ExitMinimumSeconds is forced through. The server rejects
// anything below MinSessionSeconds.
const (
	MinSessionSeconds      = 1
	ReportThresholdSeconds = 10
	ExitMinimumSeconds     = 1

	// MaxSessionListLimit caps how many ledger rows a listing returns.
	MaxSessionListLimit = 365
)

// ReadingSession is the accumulated reading time for one (user, book, day).
type ReadingSession struct {
	CreatedAt       time.Time    `json:"createdAt"`
	UpdatedAt       time.Time    `json:"updatedAt"`
	Date            time.Time    `json:"date"`
	Book            *BookSummary `json:"book"`
	ID              string       `json:"id"`
	UserID          string       `json:"userId"`
	BookID          string       `json:"bookId"`
	Day             string       `json:"day"`
	DurationSeconds int64        `json:"durationSeconds"`
}

// SessionFilter narrows a ledger listing to day starts in [Start, End).
// Zero times are unbounded.
type SessionFilter struct {
	Start time.Time
	End   time.Time
	Limit int
}

// EffectiveLimit clamps the requested limit to (0, MaxSessionListLimit].
func (f SessionFilter) EffectiveLimit() int {
	if f.Limit <= 0 || f.Limit > MaxSessionListLimit {
		return MaxSessionListLimit
	}
	return f.Limit
}
