package domain

import (
	"slices"
	"time"
)

// AutoFinishPercent is the progress at which a book is considered finished.
// Readers rarely report exactly 100 because the last page is often short.
const AutoFinishPercent = 99.8

// ShelfStatus is the shelf a book sits on for a user.
type ShelfStatus string

// Shelf statuses.
const (
	StatusWant     ShelfStatus = "want"
	StatusReading  ShelfStatus = "reading"
	StatusFinished ShelfStatus = "finished"
	StatusDropped  ShelfStatus = "dropped"
)

// ShelfStatuses lists every valid status.
var ShelfStatuses = []ShelfStatus{StatusWant, StatusReading, StatusFinished, StatusDropped}

// Valid reports whether s is a known status.
func (s ShelfStatus) Valid() bool {
	return slices.Contains(ShelfStatuses, s)
}

// Note is a highlight or annotation attached to a shelf entry.
type Note struct {
	CreatedAt time.Time `json:"createdAt"`
	ID        string    `json:"id"`
	Position  string    `json:"position"`
	Text      string    `json:"text"`
	Comment   string    `json:"comment,omitempty"`
}

// BookState is a user's durable record for one book.
type BookState struct {
	CreatedAt        time.Time    `json:"createdAt"`
	UpdatedAt        time.Time    `json:"updatedAt"`
	StartDate        *time.Time   `json:"startDate"`
	FinishDate       *time.Time   `json:"finishDate"`
	TargetFinishDate *time.Time   `json:"targetFinishDate"`
	Rating           *int         `json:"rating"`
	Review           *string      `json:"review"`
	Book             *BookSummary `json:"book"`
	ID               string       `json:"id"`
	UserID           string       `json:"userId"`
	BookID           string       `json:"bookId"`
	Status           ShelfStatus  `json:"status"`
	LastLocation     string       `json:"lastLocation,omitempty"`
	Notes            []Note       `json:"notes"`
	ProgressPercent  float64      `json:"progressPercent"`

	// Pacing anchor: when the current target was set and the progress at that moment.
	TargetSetAt           *time.Time `json:"targetSetAt,omitempty"`
	TargetBaselinePercent float64    `json:"-"`
}

// Transition describes a status change caused by an operation.
type Transition struct {
	From ShelfStatus
	To   ShelfStatus
}

// Changed reports whether the status moved.
func (t Transition) Changed() bool {
	return t.From != t.To
}

// Finished reports whether the operation moved the book onto the finished shelf.
func (t Transition) Finished() bool {
	return t.To == StatusFinished && t.From != StatusFinished
}

// NewBookState creates a shelf entry. An empty status defaults to want.
func NewBookState(id, userID, bookID string, status ShelfStatus, now time.Time) *BookState {
	s := &BookState{
		ID:        id,
		UserID:    userID,
		BookID:    bookID,
		Status:    StatusWant,
		Notes:     []Note{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if status != "" {
		s.SetStatus(status, nil, now)
	}
	return s
}

// SetStatus applies an explicit status change. Entering reading stamps the start
// date once; entering finished stamps the finish date (override or now) once.
func (s *BookState) SetStatus(status ShelfStatus, finishDate *time.Time, now time.Time) Transition {
	t := Transition{From: s.Status, To: status}
	s.Status = status

	switch status {
	case StatusReading:
		s.markStarted(now)
	case StatusFinished:
		if s.FinishDate == nil {
			at := now
			if finishDate != nil {
				at = *finishDate
			}
			s.FinishDate = &at
		}
	}

	s.UpdatedAt = now
	return t
}

// ProgressUpdate is what a reading event reports about position.
type ProgressUpdate struct {
	LastLocation    string
	ProgressPercent *float64
}

// ApplyProgress records a reading event. An empty location never replaces a stored one,
// progress always overwrites, a want entry starts reading, and reaching
// AutoFinishPercent finishes the book.
func (s *BookState) ApplyProgress(u ProgressUpdate, now time.Time) Transition {
	t := Transition{From: s.Status, To: s.Status}

	if u.LastLocation != "" {
		s.LastLocation = u.LastLocation
	}
	if u.ProgressPercent != nil {
		s.ProgressPercent = clampPercent(*u.ProgressPercent)
	}

	if s.Status == StatusWant {
		s.Status = StatusReading
	}
	if s.Status == StatusReading {
		s.markStarted(now)
	}

	s.autoFinish(now)

	t.To = s.Status
	s.UpdatedAt = now
	return t
}

// StatePatch is an explicit partial update of a shelf entry.
// Absent fields are left alone; null clears the nullable ones.
type StatePatch struct {
	Status           Optional[ShelfStatus]
	ProgressPercent  Optional[float64]
	LastLocation     Optional[string]
	TargetFinishDate Optional[time.Time]
	FinishDate       Optional[time.Time]
	Rating           Optional[int]
	Review           Optional[string]
}

// ApplyPatch applies a user edit. A finishDate in the same patch as a move to
// finished is used as that transition's finish date.
func (s *BookState) ApplyPatch(p StatePatch, now time.Time) Transition {
	t := Transition{From: s.Status, To: s.Status}

	switch {
	case p.FinishDate.IsNull():
		s.FinishDate = nil
	case p.FinishDate.HasValue():
		s.FinishDate = p.FinishDate.Ptr()
	}

	if p.Status.HasValue() && p.Status.Value != s.Status {
		s.SetStatus(p.Status.Value, p.FinishDate.Ptr(), now)
	}

	if p.LastLocation.HasValue() && p.LastLocation.Value != "" {
		s.LastLocation = p.LastLocation.Value
	}

	if p.ProgressPercent.HasValue() {
		s.ProgressPercent = clampPercent(p.ProgressPercent.Value)
		s.autoFinish(now)
	}

	switch {
	case p.TargetFinishDate.IsNull():
		s.clearTarget()
	case p.TargetFinishDate.HasValue():
		s.SetTarget(p.TargetFinishDate.Value, now)
	}

	switch {
	case p.Rating.IsNull():
		s.Rating = nil
	case p.Rating.HasValue():
		s.Rating = p.Rating.Ptr()
	}

	switch {
	case p.Review.IsNull():
		s.Review = nil
	case p.Review.HasValue():
		s.Review = p.Review.Ptr()
	}

	t.To = s.Status
	s.UpdatedAt = now
	return t
}

// SetTarget sets the target finish date and re-anchors pacing at the current progress.
func (s *BookState) SetTarget(target, now time.Time) {
	s.TargetFinishDate = &target
	setAt := now
	s.TargetSetAt = &setAt
	s.TargetBaselinePercent = s.ProgressPercent
	s.UpdatedAt = now
}

// AddNote appends a note.
func (s *BookState) AddNote(n Note, now time.Time) {
	s.Notes = append(s.Notes, n)
	s.UpdatedAt = now
}

// RemoveNote removes a note by ID and reports whether it existed.
func (s *BookState) RemoveNote(noteID string, now time.Time) bool {
	i := slices.IndexFunc(s.Notes, func(n Note) bool { return n.ID == noteID })
	if i < 0 {
		return false
	}
	s.Notes = slices.Delete(s.Notes, i, i+1)
	s.UpdatedAt = now
	return true
}

func (s *BookState) clearTarget() {
	s.TargetFinishDate = nil
	s.TargetSetAt = nil
	s.TargetBaselinePercent = 0
}

func (s *BookState) markStarted(now time.Time) {
	if s.StartDate == nil {
		at := now
		s.StartDate = &at
	}
}

// autoFinish is one-way: it never moves a book off the finished shelf.
func (s *BookState) autoFinish(now time.Time) {
	if s.ProgressPercent < AutoFinishPercent || s.Status == StatusFinished {
		return
	}
	s.Status = StatusFinished
	if s.FinishDate == nil {
		at := now
		s.FinishDate = &at
	}
}

func clampPercent(p float64) float64 {
	return max(0, min(100, p))
}
