package sqlite

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/readupapp/readup-server/internal/domain"
	"github.com/readupapp/readup-server/internal/store"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	s, err := Open(dbPath, logger)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func insertTestUser(t *testing.T, s *Store, userID string) *domain.User {
	t.Helper()
	now := time.Now().UTC()
	u := &domain.User{
		ID:          userID,
		Email:       userID + "@example.com",
		DisplayName: userID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("insertTestUser(%s): %v", userID, err)
	}
	return u
}

func insertTestBook(t *testing.T, s *Store, id, title string) *domain.Book {
	t.Helper()
	now := time.Now().UTC()
	b := &domain.Book{ID: id, Title: title, Author: "Test Author", CreatedAt: now, UpdatedAt: now}
	if err := s.CreateBook(context.Background(), b); err != nil {
		t.Fatalf("insertTestBook(%s): %v", id, err)
	}
	return b
}

func TestOpen(t *testing.T) {
	s := newTestStore(t)

	// Verify WAL mode is set.
	var journalMode string
	if err := s.db.QueryRow("PRAGMA journal_mode").Scan(&journalMode); err != nil {
		t.Fatalf("query journal_mode: %v", err)
	}
	if journalMode != "wal" {
		t.Errorf("expected wal, got %s", journalMode)
	}

	// Verify foreign keys are enabled.
	var fk int
	if err := s.db.QueryRow("PRAGMA foreign_keys").Scan(&fk); err != nil {
		t.Fatalf("query foreign_keys: %v", err)
	}
	if fk != 1 {
		t.Errorf("expected foreign_keys=1, got %d", fk)
	}

	// Verify tables exist.
	for _, table := range []string{"users", "books", "book_states", "book_state_notes", "reading_sessions"} {
		var name string
		err := s.db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Errorf("table %s not found: %v", table, err)
		}
	}
}

func TestOpen_Reopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "reopen.db")
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	s, err := Open(dbPath, logger)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	insertTestUser(t, s, "user-reopen")
	s.Close()

	// Migrations already applied must not fail the second open.
	s, err = Open(dbPath, logger)
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	defer s.Close()

	if _, err := s.GetUser(context.Background(), "user-reopen"); err != nil {
		t.Fatalf("GetUser after reopen: %v", err)
	}
}

func TestTimeRoundTrip(t *testing.T) {
	loc := time.FixedZone("UTC+9", 9*3600)
	in := time.Date(2024, 3, 1, 0, 0, 0, 123456789, loc)

	out, err := parseTime(formatTime(in))
	if err != nil {
		t.Fatalf("parseTime: %v", err)
	}
	if !out.Equal(in) {
		t.Errorf("round trip: got %v, want %v", out, in)
	}

	// Lexical order must follow chronological order.
	a := formatTime(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	b := formatTime(time.Date(2024, 1, 1, 0, 0, 0, 500, time.UTC))
	if !(a < b) {
		t.Errorf("expected %q < %q", a, b)
	}
}

func TestMapError(t *testing.T) {
	s := newTestStore(t)
	insertTestUser(t, s, "user-dup")

	err := s.CreateUser(context.Background(), &domain.User{ID: "user-dup", Email: "other@example.com"})
	if !errors.Is(err, store.ErrAlreadyExists) {
		t.Errorf("expected ErrAlreadyExists, got %v", err)
	}

	if mapError(nil) != nil {
		t.Error("mapError(nil) should be nil")
	}
}
