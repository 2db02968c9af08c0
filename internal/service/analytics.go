package service

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/readupapp/readup-server/internal/domain"
	domainerrors "github.com/readupapp/readup-server/internal/errors"
	"github.com/readupapp/readup-server/internal/store"
)

// maxYear bounds the year query parameter.
const maxYear = 9999

// Heatmap is a year of daily activity cells.
type Heatmap struct {
	Year int                 `json:"year"`
	Days []domain.HeatmapDay `json:"days"`
}

// AnalyticsService derives reading statistics from the ledger and the shelves.
// Nothing here writes; missing inputs produce zeros and nulls, never errors.
type AnalyticsService struct {
	store  store.Store
	goals  *GoalService
	rollup LifetimeRollup
	logger *slog.Logger
	loc    *time.Location
	now    Clock
}

// NewAnalyticsService creates an analytics service. Calendar boundaries are taken in loc.
func NewAnalyticsService(st store.Store, goals *GoalService, rollup LifetimeRollup, loc *time.Location, logger *slog.Logger) *AnalyticsService {
	return &AnalyticsService{
		store:  st,
		goals:  goals,
		rollup: rollup,
		logger: logger,
		loc:    loc,
		now:    time.Now,
	}
}

func (s *AnalyticsService) today() time.Time {
	return s.now().In(s.loc)
}

// Daily returns today's reading minutes against the daily goal.
func (s *AnalyticsService) Daily(ctx context.Context, userID string) (*domain.DailyProgress, error) {
	goals, err := s.goals.GetGoals(ctx, userID)
	if err != nil {
		return nil, err
	}

	seconds, err := s.secondsOn(ctx, userID, s.today())
	if err != nil {
		return nil, err
	}

	p := domain.NewDailyProgress(seconds, goals.DailyGoalMinutes)
	return &p, nil
}

// Yearly returns a year's ledger rows with total hours and books finished. year 0
// means the current year; years before the user registered are raised to that year.
func (s *AnalyticsService) Yearly(ctx context.Context, userID string, year int) (summary *domain.YearlySummary, err error) {
	ctx, span := tracer.Start(ctx, "analytics.Yearly", trace.WithAttributes(
		attribute.String("user.id", userID),
		attribute.Int("year.requested", year),
	))
	defer func() { endSpan(span, err) }()

	year, err = s.resolveYear(ctx, userID, year)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("year.selected", year))

	start, end := domain.YearBounds(year, s.loc)
	sessions, err := s.store.ListSessionsBetween(ctx, userID, start, end)
	if err != nil {
		return nil, storeError(err, "sessions not found")
	}
	finished, err := s.finishedStates(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &domain.YearlySummary{
		Year:       year,
		Sessions:   sessions,
		TotalHours: domain.SecondsToHours(domain.SumSeconds(sessions)),
		TotalBooks: domain.CountFinishedBetween(finished, start, end),
	}, nil
}

// Summary returns this month's minutes per day and this year's headline stats.
func (s *AnalyticsService) Summary(ctx context.Context, userID string) (summary *domain.Summary, err error) {
	ctx, span := tracer.Start(ctx, "analytics.Summary", trace.WithAttributes(
		attribute.String("user.id", userID),
	))
	defer func() { endSpan(span, err) }()

	today := s.today()
	yearStart, yearEnd := domain.YearBounds(today.Year(), s.loc)

	// One query for the year; the month is a subset of it.
	sessions, err := s.store.ListSessionsBetween(ctx, userID, yearStart, yearEnd)
	if err != nil {
		return nil, storeError(err, "sessions not found")
	}
	finished, err := s.finishedStates(ctx, userID)
	if err != nil {
		return nil, err
	}
	finishedThisYear := finishedBetween(finished, yearStart, yearEnd)

	stats := domain.YearlyStats{
		TotalBooksFinished: len(finishedThisYear),
		AverageRating:      domain.AverageRating(finishedThisYear),
	}
	if month := domain.MostActiveMonth(sessions); month != "" {
		stats.MostActiveMonth = &month
	}

	return &domain.Summary{
		MonthlyData: domain.MonthlySeries(sessions, today.Year(), today.Month()),
		YearlyStats: stats,
	}, nil
}

// GoalsProgress evaluates the daily, streak and yearly book goals.
func (s *AnalyticsService) GoalsProgress(ctx context.Context, userID string) (progress *domain.GoalsProgress, err error) {
	ctx, span := tracer.Start(ctx, "analytics.GoalsProgress", trace.WithAttributes(
		attribute.String("user.id", userID),
	))
	defer func() { endSpan(span, err) }()

	goals, err := s.goals.GetGoals(ctx, userID)
	if err != nil {
		return nil, err
	}

	today := s.today()
	seconds, err := s.secondsOn(ctx, userID, today)
	if err != nil {
		return nil, err
	}

	days, err := s.store.ListSessionDays(ctx, userID)
	if err != nil {
		return nil, storeError(err, "sessions not found")
	}
	streak := domain.ComputeStreak(days, today)

	finished, err := s.finishedStates(ctx, userID)
	if err != nil {
		return nil, err
	}
	start, end := domain.YearBounds(today.Year(), s.loc)
	booksFinished := domain.CountFinishedBetween(finished, start, end)

	return &domain.GoalsProgress{
		Goals:  goals,
		Daily:  domain.NewDailyProgress(seconds, goals.DailyGoalMinutes),
		Streak: domain.NewStreakProgress(streak, goals.StreakGoal),
		Books: domain.BooksProgress{
			Year:            today.Year(),
			BooksFinished:   booksFinished,
			Goal:            goals.BooksPerYearGoal,
			ProgressPercent: domain.GoalPercent(booksFinished, goals.BooksPerYearGoal),
		},
	}, nil
}

// Heatmap returns one cell per day of the year with its reading intensity.
func (s *AnalyticsService) Heatmap(ctx context.Context, userID string, year int) (*Heatmap, error) {
	year, err := s.resolveYear(ctx, userID, year)
	if err != nil {
		return nil, err
	}

	start, end := domain.YearBounds(year, s.loc)
	sessions, err := s.store.ListSessionsBetween(ctx, userID, start, end)
	if err != nil {
		return nil, storeError(err, "sessions not found")
	}
	return &Heatmap{Year: year, Days: domain.BuildHeatmap(sessions, year, s.loc)}, nil
}

// Lifetime returns the user's running totals.
func (s *AnalyticsService) Lifetime(ctx context.Context, userID string) (*domain.LifetimeStats, error) {
	if _, err := s.store.GetUser(ctx, userID); err != nil {
		return nil, storeError(err, "user not found")
	}
	stats, err := s.rollup.Get(ctx, userID)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "read lifetime stats")
	}
	return stats, nil
}

// resolveYear defaults year to the current year and raises it to the registration year.
func (s *AnalyticsService) resolveYear(ctx context.Context, userID string, year int) (int, error) {
	if year < 0 || year > maxYear {
		return 0, domainerrors.ValidationWithDetails("validation failed",
			map[string]string{"year": "must be between 1 and 9999"})
	}
	if year == 0 {
		year = s.today().Year()
	}

	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return 0, storeError(err, "user not found")
	}
	return max(year, user.RegistrationYear(s.loc)), nil
}

func (s *AnalyticsService) secondsOn(ctx context.Context, userID string, day time.Time) (int64, error) {
	start := domain.DayStart(day, s.loc)
	seconds, err := s.store.SumSessionSeconds(ctx, userID, start, start.AddDate(0, 0, 1))
	if err != nil {
		return 0, storeError(err, "sessions not found")
	}
	return seconds, nil
}

func (s *AnalyticsService) finishedStates(ctx context.Context, userID string) ([]*domain.BookState, error) {
	states, err := s.store.ListBookStates(ctx, userID, domain.StatusFinished)
	if err != nil {
		return nil, storeError(err, "shelf not found")
	}
	return states, nil
}

func finishedBetween(states []*domain.BookState, start, end time.Time) []*domain.BookState {
	var out []*domain.BookState
	for _, st := range states {
		if st.Status == domain.StatusFinished && st.FinishDate != nil &&
			!st.FinishDate.Before(start) && st.FinishDate.Before(end) {
			out = append(out, st)
		}
	}
	return out
}
