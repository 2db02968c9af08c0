package service

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/readupapp/readup-server/internal/domain"
	"github.com/readupapp/readup-server/internal/sse"
	"github.com/readupapp/readup-server/internal/store"
	"github.com/readupapp/readup-server/internal/validation"
)

// UpdateGoalsRequest changes any subset of the user's goals. Omitted goals keep their value.
type UpdateGoalsRequest struct {
	DailyGoalMinutes *int `json:"dailyGoalMinutes,omitempty" validate:"omitnil,min=1,max=1440"`
	StreakGoal       *int `json:"streakGoal,omitempty" validate:"omitnil,min=1,max=3650"`
	BooksPerYearGoal *int `json:"booksPerYearGoal,omitempty" validate:"omitnil,min=1,max=10000"`
}

// GoalService reads and writes a user's reading goals.
type GoalService struct {
	store     store.Store
	defaults  domain.Goals
	events    EventEmitter
	validator *validation.Validator
	logger    *slog.Logger
	now       Clock
}

// NewGoalService creates a goal service. defaults apply to goals a user never set.
func NewGoalService(st store.Store, defaults domain.Goals, events EventEmitter, v *validation.Validator, logger *slog.Logger) *GoalService {
	return &GoalService{
		store:     st,
		defaults:  defaults,
		events:    events,
		validator: v,
		logger:    logger,
		now:       time.Now,
	}
}

// Defaults returns the configured fallback goals.
func (s *GoalService) Defaults() domain.Goals {
	return s.defaults
}

// GetGoals returns the user's effective goals.
func (s *GoalService) GetGoals(ctx context.Context, userID string) (domain.Goals, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return domain.Goals{}, storeError(err, "user not found")
	}
	return user.Goals.Resolve(s.defaults), nil
}

// UpdateGoals stores the supplied goals, keeping the omitted ones, and returns the
// effective result.
func (s *GoalService) UpdateGoals(ctx context.Context, userID string, req UpdateGoalsRequest) (goals domain.Goals, err error) {
	ctx, span := tracer.Start(ctx, "goals.UpdateGoals", trace.WithAttributes(
		attribute.String("user.id", userID),
	))
	defer func() { endSpan(span, err) }()

	if err := s.validator.Validate(req); err != nil {
		return domain.Goals{}, err
	}

	settings, err := s.store.UpdateUserGoals(ctx, userID, domain.GoalSettings{
		DailyGoalMinutes: req.DailyGoalMinutes,
		StreakGoal:       req.StreakGoal,
		BooksPerYearGoal: req.BooksPerYearGoal,
	}, s.now())
	if err != nil {
		return domain.Goals{}, storeError(err, "user not found")
	}

	goals = settings.Resolve(s.defaults)
	s.events.Emit(sse.NewGoalsUpdatedEvent(userID, goals))
	s.logger.Info("goals updated",
		"user_id", userID,
		"daily_minutes", goals.DailyGoalMinutes,
		"streak_days", goals.StreakGoal,
		"books_per_year", goals.BooksPerYearGoal)
	return goals, nil
}
