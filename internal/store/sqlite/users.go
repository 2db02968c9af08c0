package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/readupapp/readup-server/internal/domain"
	"github.com/readupapp/readup-server/internal/store"
)

// userColumns is the ordered list of columns selected in user queries.
// Must match the scan order in scanUser.
const userColumns = `id, email, display_name,
	daily_goal_minutes, streak_goal, books_per_year_goal, created_at, updated_at`

// scanUser scans a sql.Row (or sql.Rows via its Scan method) into a domain.User.
func scanUser(row scanner) (*domain.User, error) {
	var (
		u                    domain.User
		daily, streak, books sql.NullInt64
		createdAt, updatedAt string
	)

	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.DisplayName,
		&daily,
		&streak,
		&books,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	u.Goals = domain.GoalSettings{
		DailyGoalMinutes: intPtr(daily),
		StreakGoal:       intPtr(streak),
		BooksPerYearGoal: intPtr(books),
	}

	if u.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if u.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateUser inserts a new user.
// Returns store.ErrAlreadyExists if the user ID or email already exists.
func (s *Store) CreateUser(ctx context.Context, user *domain.User) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (
			id, email, display_name,
			daily_goal_minutes, streak_goal, books_per_year_goal, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		strings.TrimSpace(user.Email),
		user.DisplayName,
		nullableInt(user.Goals.DailyGoalMinutes),
		nullableInt(user.Goals.StreakGoal),
		nullableInt(user.Goals.BooksPerYearGoal),
		formatTime(user.CreatedAt),
		formatTime(user.UpdatedAt),
	)
	return mapError(err)
}

// GetUser retrieves a user by ID.
// Returns store.ErrNotFound if the user does not exist.
func (s *Store) GetUser(ctx context.Context, id string) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if err != nil {
		return nil, mapError(err)
	}
	return u, nil
}

// GetUserByEmail retrieves a user by email, ignoring case.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, strings.TrimSpace(email))
	u, err := scanUser(row)
	if err != nil {
		return nil, mapError(err)
	}
	return u, nil
}

// ListUsers returns every user ordered by registration time.
func (s *Store) ListUsers(ctx context.Context) ([]*domain.User, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at`)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, mapError(rows.Err())
}

// UpdateUserGoals sets the non-nil goal overrides in one statement, leaving the
// others as stored, and returns the merged overrides.
// Returns store.ErrNotFound if the user does not exist.
func (s *Store) UpdateUserGoals(ctx context.Context, userID string, goals domain.GoalSettings, updatedAt time.Time) (domain.GoalSettings, error) {
	var daily, streak, books sql.NullInt64
	err := s.db.QueryRowContext(ctx, `
		UPDATE users SET
			daily_goal_minutes = COALESCE(?, daily_goal_minutes),
			streak_goal = COALESCE(?, streak_goal),
			books_per_year_goal = COALESCE(?, books_per_year_goal),
			updated_at = ?
		WHERE id = ?
		RETURNING daily_goal_minutes, streak_goal, books_per_year_goal`,
		nullableInt(goals.DailyGoalMinutes),
		nullableInt(goals.StreakGoal),
		nullableInt(goals.BooksPerYearGoal),
		formatTime(updatedAt),
		userID,
	).Scan(&daily, &streak, &books)
	if err != nil {
		return domain.GoalSettings{}, mapError(err)
	}
	return domain.GoalSettings{
		DailyGoalMinutes: intPtr(daily),
		StreakGoal:       intPtr(streak),
		BooksPerYearGoal: intPtr(books),
	}, nil
}

// DeleteUser removes a user with their reading sessions, shelf entries, notes and
// private books in one transaction. Public books they added stay in the catalog
// without an owner.
// Returns store.ErrNotFound if the user does not exist.
func (s *Store) DeleteUser(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return mapError(err)
	}
	defer tx.Rollback()

	for _, q := range []string{
		`DELETE FROM reading_sessions WHERE user_id = ?`,
		`DELETE FROM book_state_notes WHERE state_id IN (SELECT id FROM book_states WHERE user_id = ?)`,
		`DELETE FROM book_states WHERE user_id = ?`,
		`DELETE FROM books WHERE owner_id = ? AND is_private = 1`,
		`UPDATE books SET owner_id = NULL WHERE owner_id = ?`,
	} {
		if _, err := tx.ExecContext(ctx, q, id); err != nil {
			return mapError(err)
		}
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err := rowsAffectedOrNotFound(result, err); err != nil {
		return err
	}
	return mapError(tx.Commit())
}

// rowsAffectedOrNotFound turns a zero-row write into store.ErrNotFound.
func rowsAffectedOrNotFound(result sql.Result, err error) error {
	if err != nil {
		return mapError(err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
