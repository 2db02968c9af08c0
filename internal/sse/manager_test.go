package sse

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/readupapp/readup-server/internal/domain"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m := NewManager(slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx, cancel := context.WithCancel(context.Background())
	go m.Start(ctx)
	t.Cleanup(cancel)
	return m
}

func receive(t *testing.T, c *Client) Event {
	t.Helper()
	select {
	case e := <-c.EventChan:
		return e
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func TestManager_UserScopedDelivery(t *testing.T) {
	m := newTestManager(t)

	alice, err := m.Connect("user-alice")
	require.NoError(t, err)
	bob, err := m.Connect("user-bob")
	require.NoError(t, err)

	m.Emit(NewGoalsUpdatedEvent("user-alice", domain.DefaultGoals()))
	m.Emit(NewBookStateDeletedEvent("user-bob", "book-1"))

	got := receive(t, alice)
	assert.Equal(t, EventGoalsUpdated, got.Type)

	got = receive(t, bob)
	assert.Equal(t, EventBookStateDeleted, got.Type)
	assert.Equal(t, BookStateDeletedData{BookID: "book-1"}, got.Data)

	select {
	case e := <-alice.EventChan:
		t.Fatalf("alice received another user's event: %s", e.Type)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestManager_DisconnectUser(t *testing.T) {
	m := newTestManager(t)

	_, err := m.Connect("user-1")
	require.NoError(t, err)
	_, err = m.Connect("user-1")
	require.NoError(t, err)
	other, err := m.Connect("user-2")
	require.NoError(t, err)

	m.DisconnectUser("user-1")

	assert.Equal(t, 1, m.ClientCount())
	m.Disconnect(other.ID)
	m.Disconnect(other.ID) // second call is a no-op
	assert.Zero(t, m.ClientCount())
}

func TestManager_ShutdownDropsLateEvents(t *testing.T) {
	m := NewManager(slog.New(slog.NewTextHandler(io.Discard, nil)))
	c, err := m.Connect("user-1")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, m.Shutdown(ctx))
	require.NoError(t, m.Shutdown(ctx))

	assert.NotPanics(t, func() {
		m.Emit(NewGoalsUpdatedEvent("user-1", domain.DefaultGoals()))
	})

	_, open := <-c.Done
	assert.False(t, open)
}
