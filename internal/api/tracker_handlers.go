package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/readupapp/readup-server/internal/service"
)

func (s *Server) registerTrackerRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getTracker",
		Method:      http.MethodGet,
		Path:        "/tracker/{bookId}",
		Summary:     "Get tracker",
		Description: "Returns the shelf entry with pacing against its target finish date",
		Tags:        []string{"Tracker"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetTracker)

	huma.Register(s.api, huma.Operation{
		OperationID: "setTargetDate",
		Method:      http.MethodPut,
		Path:        "/tracker/{bookId}/goal",
		Summary:     "Set target finish date",
		Description: "Sets the date the reader wants to finish by. Pacing is measured from the current progress",
		Tags:        []string{"Tracker"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleSetTargetDate)
}

// === DTOs ===

// TrackerInput identifies a tracked book.
type TrackerInput struct {
	Authorization string `header:"Authorization"`
	BookID        string `path:"bookId" doc:"Book ID"`
}

// TrackerOutput wraps tracker detail for Huma.
type TrackerOutput struct {
	Body *service.TrackerDetail
}

// SetTargetDateRequest is the request body for setting a target date.
type SetTargetDateRequest struct {
	TargetFinishDate FlexTime `json:"targetFinishDate" doc:"Date to finish by"`
}

// SetTargetDateInput wraps the target date request for Huma.
type SetTargetDateInput struct {
	Authorization string `header:"Authorization"`
	BookID        string `path:"bookId" doc:"Book ID"`
	Body          SetTargetDateRequest
}

// === Handlers ===

func (s *Server) handleGetTracker(ctx context.Context, input *TrackerInput) (*TrackerOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	detail, err := s.services.Tracker.GetTracker(ctx, userID, input.BookID)
	if err != nil {
		return nil, err
	}

	return &TrackerOutput{Body: detail}, nil
}

func (s *Server) handleSetTargetDate(ctx context.Context, input *SetTargetDateInput) (*TrackerOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	detail, err := s.services.Tracker.SetTargetDate(ctx, userID, input.BookID, input.Body.TargetFinishDate.In(s.loc))
	if err != nil {
		return nil, err
	}

	return &TrackerOutput{Body: detail}, nil
}
