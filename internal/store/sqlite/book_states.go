package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/readupapp/readup-server/internal/domain"
	"github.com/readupapp/readup-server/internal/store"
)

// bookStateColumns is the ordered list of columns selected in book state queries,
// followed by the joined book summary. Must match the scan order in scanBookState.
const bookStateColumns = `bs.id, bs.user_id, bs.book_id, bs.status, bs.progress_percent,
	bs.last_location, bs.start_date, bs.finish_date, bs.target_finish_date,
	bs.target_set_at, bs.target_baseline_percent, bs.rating, bs.review,
	bs.created_at, bs.updated_at,
	b.id, b.title, b.author, b.cover_url`

const bookStateFrom = ` FROM book_states bs LEFT JOIN books b ON b.id = bs.book_id`

func scanBookState(row scanner) (*domain.BookState, error) {
	var (
		st                                domain.BookState
		status                            string
		startDate, finishDate, targetDate sql.NullString
		targetSetAt, review               sql.NullString
		rating                            sql.NullInt64
		createdAt, updatedAt              string
		bookID, title, author, coverURL   sql.NullString
	)

	err := row.Scan(
		&st.ID,
		&st.UserID,
		&st.BookID,
		&status,
		&st.ProgressPercent,
		&st.LastLocation,
		&startDate,
		&finishDate,
		&targetDate,
		&targetSetAt,
		&st.TargetBaselinePercent,
		&rating,
		&review,
		&createdAt,
		&updatedAt,
		&bookID,
		&title,
		&author,
		&coverURL,
	)
	if err != nil {
		return nil, err
	}

	st.Status = domain.ShelfStatus(status)
	st.Rating = intPtr(rating)
	if review.Valid {
		st.Review = &review.String
	}

	if st.StartDate, err = parseNullableTime(startDate); err != nil {
		return nil, err
	}
	if st.FinishDate, err = parseNullableTime(finishDate); err != nil {
		return nil, err
	}
	if st.TargetFinishDate, err = parseNullableTime(targetDate); err != nil {
		return nil, err
	}
	if st.TargetSetAt, err = parseNullableTime(targetSetAt); err != nil {
		return nil, err
	}
	if st.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if st.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}

	if bookID.Valid {
		st.Book = &domain.BookSummary{
			ID:       bookID.String,
			Title:    title.String,
			Author:   author.String,
			CoverURL: coverURL.String,
		}
	}
	st.Notes = []domain.Note{}
	return &st, nil
}

// GetBookState retrieves the user's shelf entry for a book, with notes.
// Returns store.ErrNotFound if the book is not on any of the user's shelves.
func (s *Store) GetBookState(ctx context.Context, userID, bookID string) (*domain.BookState, error) {
	return getBookState(ctx, s.db, userID, bookID)
}

func getBookState(ctx context.Context, q querier, userID, bookID string) (*domain.BookState, error) {
	row := q.QueryRowContext(ctx,
		`SELECT `+bookStateColumns+bookStateFrom+` WHERE bs.user_id = ? AND bs.book_id = ?`,
		userID, bookID)

	st, err := scanBookState(row)
	if err != nil {
		return nil, mapError(err)
	}
	if err := attachNotes(ctx, q, []*domain.BookState{st}); err != nil {
		return nil, err
	}
	return st, nil
}

// CreateBookState inserts a shelf entry. Notes are written separately.
// Returns store.ErrAlreadyExists if the user already tracks the book.
func (s *Store) CreateBookState(ctx context.Context, st *domain.BookState) error {
	return insertBookState(ctx, s.db, st)
}

func insertBookState(ctx context.Context, q querier, st *domain.BookState) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO book_states (
			id, user_id, book_id, status, progress_percent, last_location,
			start_date, finish_date, target_finish_date, target_set_at,
			target_baseline_percent, rating, review, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		st.ID,
		st.UserID,
		st.BookID,
		string(st.Status),
		st.ProgressPercent,
		st.LastLocation,
		nullTimeString(st.StartDate),
		nullTimeString(st.FinishDate),
		nullTimeString(st.TargetFinishDate),
		nullTimeString(st.TargetSetAt),
		st.TargetBaselinePercent,
		nullableInt(st.Rating),
		nullableString(st.Review),
		formatTime(st.CreatedAt),
		formatTime(st.UpdatedAt),
	)
	return mapError(err)
}

// UpdateBookState performs a full row update of a shelf entry. Notes are untouched.
// Returns store.ErrNotFound if the entry does not exist.
func (s *Store) UpdateBookState(ctx context.Context, st *domain.BookState) error {
	return updateBookState(ctx, s.db, st)
}

func updateBookState(ctx context.Context, q querier, st *domain.BookState) error {
	result, err := q.ExecContext(ctx, `
		UPDATE book_states SET
			status = ?,
			progress_percent = ?,
			last_location = ?,
			start_date = ?,
			finish_date = ?,
			target_finish_date = ?,
			target_set_at = ?,
			target_baseline_percent = ?,
			rating = ?,
			review = ?,
			updated_at = ?
		WHERE id = ?`,
		string(st.Status),
		st.ProgressPercent,
		st.LastLocation,
		nullTimeString(st.StartDate),
		nullTimeString(st.FinishDate),
		nullTimeString(st.TargetFinishDate),
		nullTimeString(st.TargetSetAt),
		st.TargetBaselinePercent,
		nullableInt(st.Rating),
		nullableString(st.Review),
		formatTime(st.UpdatedAt),
		st.ID,
	)
	return rowsAffectedOrNotFound(result, err)
}

// MutateBookState reads the user's entry for a book, applies fn and writes the
// result in one transaction, so concurrent mutations of the same entry are
// serialized and none is lost. When the entry is absent, create builds it and fn
// runs on the new entry before the insert; a nil create returns store.ErrNotFound.
// An error from create or fn rolls back and is returned unchanged.
func (s *Store) MutateBookState(
	ctx context.Context,
	userID, bookID string,
	create func() (*domain.BookState, error),
	fn func(st *domain.BookState, created bool) error,
) (*domain.BookState, error) {
	// _txlock=immediate makes BEGIN take the write lock before the read.
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, mapError(err)
	}
	defer tx.Rollback()

	st, err := getBookState(ctx, tx, userID, bookID)
	switch {
	case err == nil:
		if err := fn(st, false); err != nil {
			return nil, err
		}
		err = updateBookState(ctx, tx, st)
	case errors.Is(err, store.ErrNotFound) && create != nil:
		if st, err = create(); err != nil {
			return nil, err
		}
		if err := fn(st, true); err != nil {
			return nil, err
		}
		err = insertBookState(ctx, tx, st)
	}
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, mapError(err)
	}
	return st, nil
}

// DeleteBookState removes a shelf entry and its notes. Reading sessions are kept.
// Returns store.ErrNotFound if the entry does not exist.
func (s *Store) DeleteBookState(ctx context.Context, userID, bookID string) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM book_states WHERE user_id = ? AND book_id = ?`, userID, bookID)
	return rowsAffectedOrNotFound(result, err)
}

// ListBookStates returns a user's shelf entries with notes. An empty status lists
// every shelf. The reading shelf is ordered by last activity, the others by when
// the book was added.
func (s *Store) ListBookStates(ctx context.Context, userID string, status domain.ShelfStatus) ([]*domain.BookState, error) {
	query := `SELECT ` + bookStateColumns + bookStateFrom + ` WHERE bs.user_id = ?`
	args := []any{userID}
	if status != "" {
		query += ` AND bs.status = ?`
		args = append(args, string(status))
	}
	if status == domain.StatusReading {
		query += ` ORDER BY bs.updated_at DESC`
	} else {
		query += ` ORDER BY bs.created_at DESC`
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	states := []*domain.BookState{}
	for rows.Next() {
		st, err := scanBookState(rows)
		if err != nil {
			return nil, err
		}
		states = append(states, st)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}

	if err := attachNotes(ctx, s.db, states); err != nil {
		return nil, err
	}
	return states, nil
}

// attachNotes loads notes for all states in one query, oldest first.
func attachNotes(ctx context.Context, q querier, states []*domain.BookState) error {
	if len(states) == 0 {
		return nil
	}

	byID := make(map[string]*domain.BookState, len(states))
	args := make([]any, 0, len(states))
	for _, st := range states {
		byID[st.ID] = st
		args = append(args, st.ID)
	}

	rows, err := q.QueryContext(ctx, `
		SELECT state_id, id, position, text, comment, created_at
		FROM book_state_notes
		WHERE state_id IN (`+placeholders(len(args))+`)
		ORDER BY created_at, id`, args...)
	if err != nil {
		return mapError(err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			stateID, createdAt string
			n                  domain.Note
		)
		if err := rows.Scan(&stateID, &n.ID, &n.Position, &n.Text, &n.Comment, &createdAt); err != nil {
			return err
		}
		if n.CreatedAt, err = parseTime(createdAt); err != nil {
			return err
		}
		if st := byID[stateID]; st != nil {
			st.Notes = append(st.Notes, n)
		}
	}
	return mapError(rows.Err())
}

// CreateNote attaches a note to a shelf entry.
func (s *Store) CreateNote(ctx context.Context, stateID string, n *domain.Note) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO book_state_notes (id, state_id, position, text, comment, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		n.ID, stateID, n.Position, n.Text, n.Comment, formatTime(n.CreatedAt))
	return mapError(err)
}

// DeleteNote removes a note from a shelf entry.
// Returns store.ErrNotFound if the entry has no such note.
func (s *Store) DeleteNote(ctx context.Context, stateID, noteID string) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM book_state_notes WHERE id = ? AND state_id = ?`, noteID, stateID)
	return rowsAffectedOrNotFound(result, err)
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
