package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/readupapp/readup-server/internal/domain"
	"github.com/readupapp/readup-server/internal/service"
)

func (s *Server) registerUserRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getGoals",
		Method:      http.MethodGet,
		Path:        "/user/goals",
		Summary:     "Get goals",
		Description: "Returns the user's reading goals, with server defaults for unset values",
		Tags:        []string{"User"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetGoals)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateGoals",
		Method:      http.MethodPut,
		Path:        "/user/goals",
		Summary:     "Update goals",
		Description: "Updates any of the reading goals. Omitted goals are unchanged",
		Tags:        []string{"User"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateGoals)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteAccount",
		Method:      http.MethodDelete,
		Path:        "/user/me",
		Summary:     "Delete account",
		Description: "Deletes the account with its sessions, shelf entries, notes and lifetime stats",
		Tags:        []string{"User"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteAccount)
}

// === DTOs ===

// UserInput carries only the caller's credentials.
type UserInput struct {
	Authorization string `header:"Authorization"`
}

// GoalsOutput wraps goals for Huma.
type GoalsOutput struct {
	Body domain.Goals
}

// UpdateGoalsRequest is the request body for updating goals.
type UpdateGoalsRequest struct {
	DailyGoalMinutes *int `json:"dailyGoalMinutes,omitempty" doc:"Minutes per day, at least 1"`
	StreakGoal       *int `json:"streakGoal,omitempty" doc:"Consecutive days, at least 1"`
	BooksPerYearGoal *int `json:"booksPerYearGoal,omitempty" doc:"Books per calendar year, at least 1"`
}

// UpdateGoalsInput wraps the update goals request for Huma.
type UpdateGoalsInput struct {
	Authorization string `header:"Authorization"`
	Body          UpdateGoalsRequest
}

// === Handlers ===

func (s *Server) handleGetGoals(ctx context.Context, input *UserInput) (*GoalsOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	goals, err := s.services.Goals.GetGoals(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &GoalsOutput{Body: goals}, nil
}

func (s *Server) handleUpdateGoals(ctx context.Context, input *UpdateGoalsInput) (*GoalsOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	goals, err := s.services.Goals.UpdateGoals(ctx, userID, service.UpdateGoalsRequest{
		DailyGoalMinutes: input.Body.DailyGoalMinutes,
		StreakGoal:       input.Body.StreakGoal,
		BooksPerYearGoal: input.Body.BooksPerYearGoal,
	})
	if err != nil {
		return nil, err
	}

	return &GoalsOutput{Body: goals}, nil
}

func (s *Server) handleDeleteAccount(ctx context.Context, input *UserInput) (*MessageOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := s.services.Account.DeleteAccount(ctx, userID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Account deleted"}}, nil
}
