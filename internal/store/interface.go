// Package store defines the persistence interface for the ReadUp server.
package store

import (
	"context"
	"time"

	"github.com/readupapp/readup-server/internal/domain"
)

// Store defines the interface for all persistence operations.
type Store interface {
	// Lifecycle
	Close() error
	Ping(ctx context.Context) error

	// Users
	CreateUser(ctx context.Context, user *domain.User) error
	GetUser(ctx context.Context, id string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	ListUsers(ctx context.Context) ([]*domain.User, error)
	// UpdateUserGoals merges the non-nil overrides into the stored ones atomically.
	UpdateUserGoals(ctx context.Context, userID string, goals domain.GoalSettings, updatedAt time.Time) (domain.GoalSettings, error)
	// DeleteUser removes the user and every shelf entry, note and session they own.
	DeleteUser(ctx context.Context, id string) error

	// Books
	CreateBook(ctx context.Context, book *domain.Book) error
	GetBook(ctx context.Context, id string) (*domain.Book, error)
	ListBooks(ctx context.Context) ([]*domain.Book, error)

	// Reading sessions
	// AddSessionTime adds seconds to the (user, book, day) row, creating it when absent,
	// and returns the row after the write.
	AddSessionTime(ctx context.Context, session *domain.ReadingSession) (*domain.ReadingSession, error)
	ListSessions(ctx context.Context, userID string, filter domain.SessionFilter) ([]*domain.ReadingSession, error)
	ListSessionsBetween(ctx context.Context, userID string, start, end time.Time) ([]*domain.ReadingSession, error)
	SumSessionSeconds(ctx context.Context, userID string, start, end time.Time) (int64, error)
	ListSessionDays(ctx context.Context, userID string) ([]time.Time, error)

	// Book states
	GetBookState(ctx context.Context, userID, bookID string) (*domain.BookState, error)
	CreateBookState(ctx context.Context, state *domain.BookState) error
	UpdateBookState(ctx context.Context, state *domain.BookState) error
	// MutateBookState applies fn to the entry inside one transaction, creating it
	// with create when absent (nil create means absent is store.ErrNotFound).
	MutateBookState(
		ctx context.Context,
		userID, bookID string,
		create func() (*domain.BookState, error),
		fn func(state *domain.BookState, created bool) error,
	) (*domain.BookState, error)
	DeleteBookState(ctx context.Context, userID, bookID string) error
	ListBookStates(ctx context.Context, userID string, status domain.ShelfStatus) ([]*domain.BookState, error)

	// Notes
	CreateNote(ctx context.Context, stateID string, note *domain.Note) error
	DeleteNote(ctx context.Context, stateID, noteID string) error
}
