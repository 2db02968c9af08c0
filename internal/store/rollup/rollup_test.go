package rollup

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenInMemory(nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestGet_Empty(t *testing.T) {
	s := newTestStore(t)

	stats, err := s.Get(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, "user-1", stats.UserID)
	assert.Zero(t, stats.TotalReadingSeconds)
	assert.Zero(t, stats.BooksFinished)
}

func TestRecordSession(t *testing.T) {
	s := newTestStore(t)
	fixed := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }
	ctx := context.Background()

	require.NoError(t, s.RecordSession(ctx, "user-1", 600, "2024-06-01"))
	require.NoError(t, s.RecordSession(ctx, "user-1", 30, "2024-05-31"))

	stats, err := s.Get(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, int64(630), stats.TotalReadingSeconds)
	assert.Equal(t, int64(2), stats.SessionsRecorded)
	assert.Equal(t, "2024-06-01", stats.LastReadDay, "an older day never moves the marker back")
	assert.True(t, stats.UpdatedAt.Equal(fixed))
}

func TestAddBooksFinished_NeverNegative(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.AddBooksFinished(ctx, "user-1", 2))
	require.NoError(t, s.AddBooksFinished(ctx, "user-1", -5))

	stats, err := s.Get(ctx, "user-1")
	require.NoError(t, err)
	assert.Zero(t, stats.BooksFinished)
}

func TestRecordSession_Concurrent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for range 10 {
		wg.Go(func() {
			assert.NoError(t, s.RecordSession(ctx, "user-1", 10, "2024-06-01"))
		})
	}
	wg.Wait()

	stats, err := s.Get(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, int64(100), stats.TotalReadingSeconds)
}

func TestAllAndDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.RecordSession(ctx, "user-1", 10, "2024-06-01"))
	require.NoError(t, s.RecordSession(ctx, "user-2", 20, "2024-06-01"))

	all, err := s.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	require.NoError(t, s.Delete(ctx, "user-1"))

	all, err = s.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "user-2", all[0].UserID)
}

func TestCanceledContext(t *testing.T) {
	s := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, s.RecordSession(ctx, "user-1", 10, "2024-06-01"), context.Canceled)
	_, err := s.Get(ctx, "user-1")
	assert.ErrorIs(t, err, context.Canceled)
}
