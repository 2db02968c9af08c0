package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/readupapp/readup-server/internal/domain"
)

// readingSessionColumns is the ordered list of columns selected in reading session queries.
// Must match the scan order in scanReadingSession.
const readingSessionColumns = `rs.id, rs.user_id, rs.book_id, rs.day, rs.date,
	rs.duration_seconds, rs.created_at, rs.updated_at`

// scanReadingSession scans session columns, optionally followed by joined book columns.
func scanReadingSession(row scanner, withBook bool) (*domain.ReadingSession, error) {
	var (
		rs                         domain.ReadingSession
		date, createdAt, updatedAt string
		bookID, title, author, cov sql.NullString
	)

	dest := []any{
		&rs.ID,
		&rs.UserID,
		&rs.BookID,
		&rs.Day,
		&date,
		&rs.DurationSeconds,
		&createdAt,
		&updatedAt,
	}
	if withBook {
		dest = append(dest, &bookID, &title, &author, &cov)
	}
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	var err error
	if rs.Date, err = parseTime(date); err != nil {
		return nil, err
	}
	if rs.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if rs.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}

	if bookID.Valid {
		rs.Book = &domain.BookSummary{
			ID:       bookID.String,
			Title:    title.String,
			Author:   author.String,
			CoverURL: cov.String,
		}
	}
	return &rs, nil
}

// AddSessionTime adds session.DurationSeconds to the row for (user, book, day) in one
// statement, inserting it when absent. Concurrent calls for the same day sum exactly.
// session.ID and CreatedAt are only used when the row is new.
func (s *Store) AddSessionTime(ctx context.Context, session *domain.ReadingSession) (*domain.ReadingSession, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO reading_sessions (
			id, user_id, book_id, day, date, duration_seconds, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, book_id, day) DO UPDATE SET
			duration_seconds = reading_sessions.duration_seconds + excluded.duration_seconds,
			updated_at = excluded.updated_at
		RETURNING id, user_id, book_id, day, date, duration_seconds, created_at, updated_at`,
		session.ID,
		session.UserID,
		session.BookID,
		session.Day,
		formatTime(session.Date),
		session.DurationSeconds,
		formatTime(session.CreatedAt),
		formatTime(session.UpdatedAt),
	)

	rs, err := scanReadingSession(row, false)
	if err != nil {
		return nil, mapError(err)
	}
	return rs, nil
}

// ListSessions returns a user's sessions newest first with the book summary attached
// when the catalog knows the book. filter.Start is inclusive and filter.End exclusive.
func (s *Store) ListSessions(ctx context.Context, userID string, filter domain.SessionFilter) ([]*domain.ReadingSession, error) {
	var (
		where = []string{"rs.user_id = ?"}
		args  = []any{userID}
	)
	if !filter.Start.IsZero() {
		where = append(where, "rs.date >= ?")
		args = append(args, formatTime(filter.Start))
	}
	if !filter.End.IsZero() {
		where = append(where, "rs.date < ?")
		args = append(args, formatTime(filter.End))
	}
	args = append(args, filter.EffectiveLimit())

	return s.querySessions(ctx, `
		WHERE `+strings.Join(where, " AND ")+`
		ORDER BY rs.date DESC, rs.updated_at DESC
		LIMIT ?`, args...)
}

// ListSessionsBetween returns every session with a day start in [start, end), oldest first.
// Unlike ListSessions it is not capped; callers bound it to a month or a year.
func (s *Store) ListSessionsBetween(ctx context.Context, userID string, start, end time.Time) ([]*domain.ReadingSession, error) {
	return s.querySessions(ctx, `
		WHERE rs.user_id = ? AND rs.date >= ? AND rs.date < ?
		ORDER BY rs.date ASC, rs.book_id ASC`,
		userID, formatTime(start), formatTime(end))
}

func (s *Store) querySessions(ctx context.Context, tail string, args ...any) ([]*domain.ReadingSession, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+readingSessionColumns+`, b.id, b.title, b.author, b.cover_url
		FROM reading_sessions rs
		LEFT JOIN books b ON b.id = rs.book_id`+tail, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	sessions := []*domain.ReadingSession{}
	for rows.Next() {
		rs, err := scanReadingSession(rows, true)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, rs)
	}
	return sessions, mapError(rows.Err())
}

// SumSessionSeconds totals a user's reading time for days starting in [start, end).
func (s *Store) SumSessionSeconds(ctx context.Context, userID string, start, end time.Time) (int64, error) {
	var total int64
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(duration_seconds), 0) FROM reading_sessions
		WHERE user_id = ? AND date >= ? AND date < ?`,
		userID, formatTime(start), formatTime(end),
	).Scan(&total)
	if err != nil {
		return 0, mapError(err)
	}
	return total, nil
}

// ListSessionDays returns the distinct day starts on which the user read, newest first.
func (s *Store) ListSessionDays(ctx context.Context, userID string) ([]time.Time, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT date FROM reading_sessions
		WHERE user_id = ?
		ORDER BY date DESC`, userID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var days []time.Time
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		d, err := parseTime(raw)
		if err != nil {
			return nil, err
		}
		days = append(days, d)
	}
	return days, mapError(rows.Err())
}
