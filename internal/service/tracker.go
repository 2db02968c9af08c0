package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/readupapp/readup-server/internal/domain"
	domainerrors "github.com/readupapp/readup-server/internal/errors"
	"github.com/readupapp/readup-server/internal/id"
	"github.com/readupapp/readup-server/internal/sse"
	"github.com/readupapp/readup-server/internal/store"
	"github.com/readupapp/readup-server/internal/validation"
)

// TrackerDetail is a shelf entry with its pacing against the target date.
type TrackerDetail struct {
	domain.BookState
	DaysStatus *domain.Pacing `json:"daysStatus,omitempty"`
}

// NoteRequest is the input for adding a note.
type NoteRequest struct {
	Position string `json:"position" validate:"required,max=2048"`
	Text     string `json:"text" validate:"required,max=10000"`
	Comment  string `json:"comment" validate:"max=10000"`
}

// TrackerService owns per-user, per-book reading state and its transitions.
type TrackerService struct {
	store     store.Store
	rollup    LifetimeRollup
	events    EventEmitter
	validator *validation.Validator
	logger    *slog.Logger
	now       Clock
}

// NewTrackerService creates a new tracker service.
func NewTrackerService(st store.Store, rollup LifetimeRollup, events EventEmitter, v *validation.Validator, logger *slog.Logger) *TrackerService {
	return &TrackerService{
		store:     st,
		rollup:    rollup,
		events:    events,
		validator: v,
		logger:    logger,
		now:       time.Now,
	}
}

// UpsertShelfEntry puts a book on a shelf. A new entry defaults to want; an existing
// entry keeps its position and dates and only moves when status is given.
func (s *TrackerService) UpsertShelfEntry(ctx context.Context, userID, bookID string, status domain.ShelfStatus) (*domain.BookState, error) {
	if status != "" && !status.Valid() {
		return nil, invalidStatus(status)
	}
	if err := checkBookAccess(ctx, s.store, userID, bookID); err != nil {
		return nil, err
	}

	create := status
	if create == "" {
		create = domain.StatusWant
	}
	return s.mutate(ctx, "tracker.UpsertShelfEntry", userID, bookID, create, func(st *domain.BookState, now time.Time) domain.Transition {
		if status == "" || status == st.Status {
			return domain.Transition{From: st.Status, To: st.Status}
		}
		return st.SetStatus(status, nil, now)
	})
}

// UpdateProgress applies a reading event's position to the book's state, creating
// a reading entry when the book is not on a shelf yet.
func (s *TrackerService) UpdateProgress(ctx context.Context, userID, bookID string, u domain.ProgressUpdate) (*domain.BookState, error) {
	if u.ProgressPercent != nil && (*u.ProgressPercent < 0 || *u.ProgressPercent > 100) {
		return nil, domainerrors.ValidationWithDetails("validation failed",
			map[string]string{"progressPercent": "must be between 0 and 100"})
	}
	return s.mutate(ctx, "tracker.UpdateProgress", userID, bookID, domain.StatusReading, func(st *domain.BookState, now time.Time) domain.Transition {
		return st.ApplyProgress(u, now)
	})
}

// SetStatus moves a book to a shelf explicitly. finishDate overrides the stamped
// finish date when moving to finished.
func (s *TrackerService) SetStatus(ctx context.Context, userID, bookID string, status domain.ShelfStatus, finishDate *time.Time) (*domain.BookState, error) {
	if !status.Valid() {
		return nil, invalidStatus(status)
	}
	if err := checkBookAccess(ctx, s.store, userID, bookID); err != nil {
		return nil, err
	}
	return s.mutate(ctx, "tracker.SetStatus", userID, bookID, domain.StatusWant, func(st *domain.BookState, now time.Time) domain.Transition {
		return st.SetStatus(status, finishDate, now)
	})
}

// UpdateShelfEntry applies an explicit partial edit to an existing entry.
func (s *TrackerService) UpdateShelfEntry(ctx context.Context, userID, bookID string, patch domain.StatePatch) (*domain.BookState, error) {
	if err := validatePatch(patch); err != nil {
		return nil, err
	}
	return s.mutate(ctx, "tracker.UpdateShelfEntry", userID, bookID, "", func(st *domain.BookState, now time.Time) domain.Transition {
		return st.ApplyPatch(patch, now)
	})
}

// DeleteShelfEntry removes a book from the user's shelves. Reading sessions are kept.
func (s *TrackerService) DeleteShelfEntry(ctx context.Context, userID, bookID string) (err error) {
	ctx, span := tracer.Start(ctx, "tracker.DeleteShelfEntry", trace.WithAttributes(
		attribute.String("user.id", userID),
		attribute.String("book.id", bookID),
	))
	defer func() { endSpan(span, err) }()

	if err := s.store.DeleteBookState(ctx, userID, bookID); err != nil {
		return storeError(err, "book is not on your shelves")
	}

	s.events.Emit(sse.NewBookStateDeletedEvent(userID, bookID))
	s.logger.Info("shelf entry removed", "user_id", userID, "book_id", bookID)
	return nil
}

// ListShelf returns the entries on one shelf. Entries whose book left the catalog are omitted.
func (s *TrackerService) ListShelf(ctx context.Context, userID string, status domain.ShelfStatus) ([]*domain.BookState, error) {
	if !status.Valid() {
		return nil, invalidStatus(status)
	}

	states, err := s.store.ListBookStates(ctx, userID, status)
	if err != nil {
		return nil, storeError(err, "shelf not found")
	}

	out := make([]*domain.BookState, 0, len(states))
	for _, st := range states {
		if st.Book != nil {
			out = append(out, st)
		}
	}
	return out, nil
}

// GetTracker returns an entry with its pacing.
func (s *TrackerService) GetTracker(ctx context.Context, userID, bookID string) (*TrackerDetail, error) {
	st, err := s.store.GetBookState(ctx, userID, bookID)
	if err != nil {
		return nil, storeError(err, "book is not on your shelves")
	}
	return &TrackerDetail{BookState: *st, DaysStatus: domain.ComputePacing(st, s.now())}, nil
}

// SetTargetDate sets the date the user wants to finish by and re-anchors pacing
// at the current progress.
func (s *TrackerService) SetTargetDate(ctx context.Context, userID, bookID string, target time.Time) (*TrackerDetail, error) {
	if target.IsZero() {
		return nil, domainerrors.ValidationWithDetails("validation failed",
			map[string]string{"targetFinishDate": "is required"})
	}

	st, err := s.mutate(ctx, "tracker.SetTargetDate", userID, bookID, "", func(st *domain.BookState, now time.Time) domain.Transition {
		st.SetTarget(target, now)
		return domain.Transition{From: st.Status, To: st.Status}
	})
	if err != nil {
		return nil, err
	}
	return &TrackerDetail{BookState: *st, DaysStatus: domain.ComputePacing(st, s.now())}, nil
}

// AddNote attaches a highlight or annotation to an entry.
func (s *TrackerService) AddNote(ctx context.Context, userID, bookID string, req NoteRequest) (*domain.Note, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	st, err := s.store.GetBookState(ctx, userID, bookID)
	if err != nil {
		return nil, storeError(err, "book is not on your shelves")
	}

	noteID, err := id.Generate(id.PrefixNote)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "generate note id")
	}
	now := s.now()
	note := domain.Note{ID: noteID, Position: req.Position, Text: req.Text, Comment: req.Comment, CreatedAt: now}
	if err := s.store.CreateNote(ctx, st.ID, &note); err != nil {
		return nil, storeError(err, "book is not on your shelves")
	}

	st.AddNote(note, now)
	s.events.Emit(sse.NewBookStateUpdatedEvent(st))
	return &note, nil
}

// DeleteNote removes a note from an entry.
func (s *TrackerService) DeleteNote(ctx context.Context, userID, bookID, noteID string) error {
	st, err := s.store.GetBookState(ctx, userID, bookID)
	if err != nil {
		return storeError(err, "book is not on your shelves")
	}
	if err := s.store.DeleteNote(ctx, st.ID, noteID); err != nil {
		return storeError(err, "note not found")
	}

	st.RemoveNote(noteID, s.now())
	s.events.Emit(sse.NewBookStateUpdatedEvent(st))
	return nil
}

// mutate loads the entry (creating it with createStatus when absent and createStatus
// is set), applies fn and persists the result in one store transaction, then
// publishes the change.
func (s *TrackerService) mutate(
	ctx context.Context,
	op, userID, bookID string,
	createStatus domain.ShelfStatus,
	fn func(st *domain.BookState, now time.Time) domain.Transition,
) (st *domain.BookState, err error) {
	ctx, span := tracer.Start(ctx, op, trace.WithAttributes(
		attribute.String("user.id", userID),
		attribute.String("book.id", bookID),
	))
	defer func() { endSpan(span, err) }()

	now := s.now()
	var create func() (*domain.BookState, error)
	if createStatus != "" {
		create = func() (*domain.BookState, error) {
			stateID, err := id.Generate(id.PrefixState)
			if err != nil {
				return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "generate state id")
			}
			return domain.NewBookState(stateID, userID, bookID, createStatus, now), nil
		}
	}

	var tr domain.Transition
	st, err = s.store.MutateBookState(ctx, userID, bookID, create, func(st *domain.BookState, created bool) error {
		tr = fn(st, now)
		if created {
			tr.From = ""
		}
		return nil
	})
	if err != nil {
		var domainErr *domainerrors.Error
		if errors.As(err, &domainErr) {
			return nil, err
		}
		return nil, storeError(err, "book is not on your shelves")
	}

	span.SetAttributes(attribute.String("state.status", string(st.Status)))
	s.recordTransition(ctx, userID, bookID, tr)

	// Reload so the response carries the book summary and notes.
	if fresh, err := s.store.GetBookState(ctx, userID, bookID); err == nil {
		st = fresh
	}
	s.events.Emit(sse.NewBookStateUpdatedEvent(st))
	return st, nil
}

// recordTransition keeps the lifetime finished-book counter in step with the shelves.
func (s *TrackerService) recordTransition(ctx context.Context, userID, bookID string, tr domain.Transition) {
	var delta int64
	switch {
	case tr.Finished():
		delta = 1
		s.logger.Info("book finished", "user_id", userID, "book_id", bookID, "from", tr.From)
	case tr.From == domain.StatusFinished && tr.To != domain.StatusFinished:
		delta = -1
	default:
		return
	}
	if err := s.rollup.AddBooksFinished(ctx, userID, delta); err != nil {
		s.logger.Warn("failed to update lifetime rollup", "user_id", userID, "error", err)
	}
}

// checkBookAccess rejects private books owned by someone else. Books the catalog
// does not know are allowed.
func checkBookAccess(ctx context.Context, st store.Store, userID, bookID string) error {
	book, err := st.GetBook(ctx, bookID)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return storeError(err, "book not found")
	}
	if !book.ReadableBy(userID) {
		return domainerrors.Forbidden("you do not have access to this book")
	}
	return nil
}

func invalidStatus(status domain.ShelfStatus) error {
	return domainerrors.ValidationWithDetails("validation failed", map[string]string{
		"status": fmt.Sprintf("%q is not one of: want, reading, finished, dropped", status),
	})
}

func validatePatch(p domain.StatePatch) error {
	details := map[string]string{}
	if p.Status.IsNull() || (p.Status.HasValue() && !p.Status.Value.Valid()) {
		details["status"] = "must be one of: want, reading, finished, dropped"
	}
	if p.ProgressPercent.IsNull() {
		details["progressPercent"] = "cannot be null"
	} else if v := p.ProgressPercent.Value; p.ProgressPercent.HasValue() && (v < 0 || v > 100) {
		details["progressPercent"] = "must be between 0 and 100"
	}
	if r := p.Rating.Value; p.Rating.HasValue() && (r < 1 || r > 5) {
		details["rating"] = "must be between 1 and 5"
	}
	if p.Review.HasValue() && len(p.Review.Value) > 10000 {
		details["review"] = "must not exceed 10000 characters"
	}
	if len(details) > 0 {
		return domainerrors.ValidationWithDetails("validation failed", details)
	}
	return nil
}
