package service

import (
	"context"
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

// RecordSessionRequest is one reading event reported by the reader.
type RecordSessionRequest struct {
	DurationSeconds int64    `json:"durationSeconds" validate:"min=1"`
	LastLocation    string   `json:"lastLocation" validate:"max=2048"`
	ProgressPercent *float64 `json:"progressPercent" validate:"omitnil,min=0,max=100"`
	// OccurredAt defaults to now.
	OccurredAt time.Time `json:"-"`
}

// ListSessionsRequest filters the ledger by calendar day. Both ends are inclusive.
type ListSessionsRequest struct {
	StartDate *time.Time
	EndDate   *time.Time
	Limit     int
}

// RecordResult is the ledger row after the write and the book's state after the event.
type RecordResult struct {
	Session *domain.ReadingSession `json:"session"`
	State   *domain.BookState      `json:"state"`
}

// LedgerService records reading time into one row per user, book and day.
type LedgerService struct {
	store     store.Store
	tracker   *TrackerService
	rollup    LifetimeRollup
	events    EventEmitter
	validator *validation.Validator
	logger    *slog.Logger
	loc       *time.Location
	now       Clock
}

// NewLedgerService creates a new ledger service. Days are bucketed in loc.
func NewLedgerService(
	st store.Store,
	tracker *TrackerService,
	rollup LifetimeRollup,
	events EventEmitter,
	v *validation.Validator,
	loc *time.Location,
	logger *slog.Logger,
) *LedgerService {
	return &LedgerService{
		store:     st,
		tracker:   tracker,
		rollup:    rollup,
		events:    events,
		validator: v,
		logger:    logger,
		loc:       loc,
		now:       time.Now,
	}
}

// RecordSession adds the event's duration to today's row for the book and applies
// its position to the book's state.
func (s *LedgerService) RecordSession(ctx context.Context, userID, bookID string, req RecordSessionRequest) (result *RecordResult, err error) {
	ctx, span := tracer.Start(ctx, "ledger.RecordSession", trace.WithAttributes(
		attribute.String("user.id", userID),
		attribute.String("book.id", bookID),
		attribute.Int64("session.duration_seconds", req.DurationSeconds),
	))
	defer func() { endSpan(span, err) }()

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if err := checkBookAccess(ctx, s.store, userID, bookID); err != nil {
		return nil, err
	}

	now := s.now()
	occurredAt := req.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = now
	}

	sessionID, err := id.Generate(id.PrefixSession)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "generate session id")
	}

	session, err := s.store.AddSessionTime(ctx, &domain.ReadingSession{
		ID:              sessionID,
		UserID:          userID,
		BookID:          bookID,
		Day:             domain.DayKey(occurredAt, s.loc),
		Date:            domain.DayStart(occurredAt, s.loc),
		DurationSeconds: req.DurationSeconds,
		CreatedAt:       now,
		UpdatedAt:       now,
	})
	if err != nil {
		return nil, storeError(err, "session not found")
	}
	span.SetAttributes(attribute.String("session.day", session.Day))

	if err := s.rollup.RecordSession(ctx, userID, req.DurationSeconds, session.Day); err != nil {
		s.logger.Warn("failed to update lifetime rollup", "user_id", userID, "error", err)
	}
	s.events.Emit(sse.NewSessionRecordedEvent(session))

	state, err := s.tracker.UpdateProgress(ctx, userID, bookID, domain.ProgressUpdate{
		LastLocation:    req.LastLocation,
		ProgressPercent: req.ProgressPercent,
	})
	if err != nil {
		return nil, err
	}
	if state.Book != nil {
		session.Book = state.Book
	}

	s.logger.Debug("reading session recorded",
		"user_id", userID,
		"book_id", bookID,
		"day", session.Day,
		"added_seconds", req.DurationSeconds,
		"day_total_seconds", session.DurationSeconds)

	return &RecordResult{Session: session, State: state}, nil
}

// ListSessions returns the user's ledger rows newest first, at most 365.
func (s *LedgerService) ListSessions(ctx context.Context, userID string, req ListSessionsRequest) ([]*domain.ReadingSession, error) {
	filter := domain.SessionFilter{Limit: req.Limit}
	if req.StartDate != nil {
		filter.Start = domain.DayStart(*req.StartDate, s.loc)
	}
	if req.EndDate != nil {
		filter.End = domain.DayStart(*req.EndDate, s.loc).AddDate(0, 0, 1)
	}
	if !filter.Start.IsZero() && !filter.End.IsZero() && !filter.Start.Before(filter.End) {
		return nil, domainerrors.ValidationWithDetails("validation failed",
			map[string]string{"endDate": "must not be before startDate"})
	}

	sessions, err := s.store.ListSessions(ctx, userID, filter)
	if err != nil {
		return nil, storeError(err, "sessions not found")
	}
	return sessions, nil
}
