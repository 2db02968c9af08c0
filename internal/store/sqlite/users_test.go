package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/readupapp/readup-server/internal/domain"
	"github.com/readupapp/readup-server/internal/store"
)

func TestCreateAndGetUser(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	want := insertTestUser(t, s, "user-1")

	got, err := s.GetUser(ctx, "user-1")
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if got.Email != want.Email || got.DisplayName != want.DisplayName {
		t.Errorf("got %+v, want %+v", got, want)
	}
	if !got.CreatedAt.Equal(want.CreatedAt) {
		t.Errorf("CreatedAt: got %v, want %v", got.CreatedAt, want.CreatedAt)
	}
	if got.Goals.DailyGoalMinutes != nil {
		t.Errorf("expected no goal override, got %d", *got.Goals.DailyGoalMinutes)
	}

	byEmail, err := s.GetUserByEmail(ctx, "USER-1@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail: %v", err)
	}
	if byEmail.ID != "user-1" {
		t.Errorf("GetUserByEmail: got %s", byEmail.ID)
	}
}

func TestGetUser_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetUser(context.Background(), "missing")
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateUserGoals(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	insertTestUser(t, s, "user-1")

	daily, streak := 45, 14
	goals := domain.GoalSettings{DailyGoalMinutes: &daily, StreakGoal: &streak}
	merged, err := s.UpdateUserGoals(ctx, "user-1", goals, time.Now())
	if err != nil {
		t.Fatalf("UpdateUserGoals: %v", err)
	}
	if merged.DailyGoalMinutes == nil || *merged.DailyGoalMinutes != 45 || merged.BooksPerYearGoal != nil {
		t.Errorf("merged: got %+v", merged)
	}

	// Omitted overrides keep their stored value.
	books := 20
	merged, err = s.UpdateUserGoals(ctx, "user-1", domain.GoalSettings{BooksPerYearGoal: &books}, time.Now())
	if err != nil {
		t.Fatalf("UpdateUserGoals: %v", err)
	}
	if merged.StreakGoal == nil || *merged.StreakGoal != 14 {
		t.Errorf("StreakGoal lost on partial update: got %v", merged.StreakGoal)
	}

	got, err := s.GetUser(ctx, "user-1")
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if got.Goals.DailyGoalMinutes == nil || *got.Goals.DailyGoalMinutes != 45 {
		t.Errorf("DailyGoalMinutes: got %v", got.Goals.DailyGoalMinutes)
	}
	if got.Goals.StreakGoal == nil || *got.Goals.StreakGoal != 14 {
		t.Errorf("StreakGoal: got %v", got.Goals.StreakGoal)
	}
	if got.Goals.BooksPerYearGoal == nil || *got.Goals.BooksPerYearGoal != 20 {
		t.Errorf("BooksPerYearGoal: got %v", got.Goals.BooksPerYearGoal)
	}

	_, err = s.UpdateUserGoals(ctx, "missing", goals, time.Now())
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteUser_Cascade(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	insertTestUser(t, s, "user-1")
	insertTestUser(t, s, "user-2")
	owned := &domain.Book{ID: "book-own", Title: "Mine", OwnerID: "user-1", IsPrivate: true, CreatedAt: now, UpdatedAt: now}
	if err := s.CreateBook(ctx, owned); err != nil {
		t.Fatalf("CreateBook: %v", err)
	}
	shared := &domain.Book{ID: "book-shared", Title: "Ours", OwnerID: "user-1", CreatedAt: now, UpdatedAt: now}
	if err := s.CreateBook(ctx, shared); err != nil {
		t.Fatalf("CreateBook: %v", err)
	}

	for _, uid := range []string{"user-1", "user-2"} {
		st := domain.NewBookState("state-"+uid, uid, "book-own", domain.StatusReading, now)
		if err := s.CreateBookState(ctx, st); err != nil {
			t.Fatalf("CreateBookState: %v", err)
		}
		if err := s.CreateNote(ctx, st.ID, &domain.Note{ID: "note-" + uid, Position: "p", Text: "t", CreatedAt: now}); err != nil {
			t.Fatalf("CreateNote: %v", err)
		}
		addSession(t, s, uid, "book-own", now, 60)
	}

	if err := s.DeleteUser(ctx, "user-1"); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}

	if _, err := s.GetUser(ctx, "user-1"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("user still present: %v", err)
	}
	if _, err := s.GetBookState(ctx, "user-1", "book-own"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("state still present: %v", err)
	}

	var notes, sessions int
	s.db.QueryRow(`SELECT COUNT(*) FROM book_state_notes`).Scan(&notes)
	s.db.QueryRow(`SELECT COUNT(*) FROM reading_sessions`).Scan(&sessions)
	if notes != 1 || sessions != 1 {
		t.Errorf("expected only user-2 rows to remain, got notes=%d sessions=%d", notes, sessions)
	}

	if _, err := s.GetBook(ctx, "book-own"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("private book still in catalog: %v", err)
	}
	book, err := s.GetBook(ctx, "book-shared")
	if err != nil {
		t.Fatalf("GetBook: %v", err)
	}
	if book.OwnerID != "" {
		t.Errorf("expected owner cleared on public book, got %q", book.OwnerID)
	}

	if err := s.DeleteUser(ctx, "user-1"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("second delete: expected ErrNotFound, got %v", err)
	}
}
