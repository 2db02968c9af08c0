// Package sse implements Server-Sent Events so open reader tabs see progress,
// shelf and goal changes made elsewhere.
package sse

import (
	"time"

	"github.com/readupapp/readup-server/internal/domain"
)

// EventType represents the type of SSE Event.
type EventType string

const (
	// EventBookStateUpdated is sent when a shelf entry changes.
	EventBookStateUpdated EventType = "book_state.updated"
	// EventBookStateDeleted is sent when a book is removed from the shelves.
	EventBookStateDeleted EventType = "book_state.deleted"
	// EventSessionRecorded is sent after reading time is added to the ledger.
	EventSessionRecorded EventType = "reading_session.recorded"
	// EventGoalsUpdated is sent when the user changes their goals.
	EventGoalsUpdated EventType = "goals.updated"

	// EventHeartbeat represents a connection keepalive event.
	EventHeartbeat EventType = "heartbeat"
)

// Event represents an SSE event to be sent to clients.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
	Type      EventType `json:"type"`
	// UserID scopes delivery to one user's connections. Empty broadcasts to all.
	UserID string `json:"-"`
}

// BookStateDeletedData is the payload of EventBookStateDeleted.
type BookStateDeletedData struct {
	BookID string `json:"bookId"`
}

// NewBookStateUpdatedEvent creates a shelf entry change event for its owner.
func NewBookStateUpdatedEvent(state *domain.BookState) Event {
	return Event{
		Type:      EventBookStateUpdated,
		UserID:    state.UserID,
		Data:      state,
		Timestamp: time.Now(),
	}
}

// NewBookStateDeletedEvent creates a shelf removal event.
func NewBookStateDeletedEvent(userID, bookID string) Event {
	return Event{
		Type:      EventBookStateDeleted,
		UserID:    userID,
		Data:      BookStateDeletedData{BookID: bookID},
		Timestamp: time.Now(),
	}
}

// NewSessionRecordedEvent creates a ledger write event carrying the day's running total.
func NewSessionRecordedEvent(session *domain.ReadingSession) Event {
	return Event{
		Type:      EventSessionRecorded,
		UserID:    session.UserID,
		Data:      session,
		Timestamp: time.Now(),
	}
}

// NewGoalsUpdatedEvent creates a goals change event.
func NewGoalsUpdatedEvent(userID string, goals domain.Goals) Event {
	return Event{
		Type:      EventGoalsUpdated,
		UserID:    userID,
		Data:      goals,
		Timestamp: time.Now(),
	}
}

// NewHeartbeatEvent creates a keepalive event.
func NewHeartbeatEvent() Event {
	return Event{
		Type:      EventHeartbeat,
		Data:      map[string]any{},
		Timestamp: time.Now(),
	}
}
