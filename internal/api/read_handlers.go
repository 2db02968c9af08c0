package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/readupapp/readup-server/internal/domain"
	"github.com/readupapp/readup-server/internal/service"
)

func (s *Server) registerReadRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "recordReadingSession",
		Method:      http.MethodPost,
		Path:        "/read/{bookId}/session",
		Summary:     "Record reading time",
		Description: "Adds reading time to today's session for the book and updates the reader's position. Same-day calls accumulate into one row",
		Tags:        []string{"Reading"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleRecordSession)

	huma.Register(s.api, huma.Operation{
		OperationID: "listReadingSessions",
		Method:      http.MethodGet,
		Path:        "/read/sessions",
		Summary:     "List reading sessions",
		Description: "Returns per-day reading sessions, newest first, at most 365",
		Tags:        []string{"Reading"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListSessions)
}

// === DTOs ===

// RecordSessionRequest is one heartbeat from a reader client.
type RecordSessionRequest struct {
	DurationSeconds int64    `json:"durationSeconds" doc:"Seconds read since the last report, at least 1"`
	LastLocation    string   `json:"lastLocation,omitempty" doc:"Opaque reader position (e.g. an EPUB CFI)"`
	ProgressPercent *float64 `json:"progressPercent,omitempty" doc:"Progress through the book, 0-100"`
}

// RecordSessionInput wraps the record request for Huma.
type RecordSessionInput struct {
	Authorization string `header:"Authorization"`
	BookID        string `path:"bookId" doc:"Book ID"`
	Body          RecordSessionRequest
}

// SessionOutput wraps a session row for Huma.
type SessionOutput struct {
	Body *domain.ReadingSession
}

// ListSessionsInput contains parameters for listing sessions.
type ListSessionsInput struct {
	Authorization string `header:"Authorization"`
	StartDate     string `query:"startDate" doc:"First day to include (YYYY-MM-DD or RFC3339)"`
	EndDate       string `query:"endDate" doc:"Last day to include (YYYY-MM-DD or RFC3339)"`
}

// ListSessionsOutput wraps a session listing for Huma.
type ListSessionsOutput struct {
	Body []*domain.ReadingSession
}

// === Handlers ===

func (s *Server) handleRecordSession(ctx context.Context, input *RecordSessionInput) (*SessionOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}
	if err := s.allowSessionWrite(userID); err != nil {
		return nil, err
	}

	result, err := s.services.Ledger.RecordSession(ctx, userID, input.BookID, service.RecordSessionRequest{
		DurationSeconds: input.Body.DurationSeconds,
		LastLocation:    input.Body.LastLocation,
		ProgressPercent: input.Body.ProgressPercent,
	})
	if err != nil {
		return nil, err
	}

	return &SessionOutput{Body: result.Session}, nil
}

func (s *Server) handleListSessions(ctx context.Context, input *ListSessionsInput) (*ListSessionsOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	start, err := parseDateParam("startDate", input.StartDate, s.loc)
	if err != nil {
		return nil, err
	}
	end, err := parseDateParam("endDate", input.EndDate, s.loc)
	if err != nil {
		return nil, err
	}

	sessions, err := s.services.Ledger.ListSessions(ctx, userID, service.ListSessionsRequest{
		StartDate: start,
		EndDate:   end,
	})
	if err != nil {
		return nil, err
	}

	return &ListSessionsOutput{Body: sessions}, nil
}
