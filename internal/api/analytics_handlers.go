package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/readupapp/readup-server/internal/domain"
	"github.com/readupapp/readup-server/internal/service"
)

func (s *Server) registerAnalyticsRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getDailyAnalytics",
		Method:      http.MethodGet,
		Path:        "/analytics/daily",
		Summary:     "Daily progress",
		Description: "Returns minutes read today against the daily goal",
		Tags:        []string{"Analytics"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDailyAnalytics)

	huma.Register(s.api, huma.Operation{
		OperationID: "getYearlyAnalytics",
		Method:      http.MethodGet,
		Path:        "/analytics/yearly",
		Summary:     "Yearly summary",
		Description: "Returns the sessions, hours and books finished in a year. Years before registration are raised to the registration year",
		Tags:        []string{"Analytics"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleYearlyAnalytics)

	huma.Register(s.api, huma.Operation{
		OperationID: "getSummaryAnalytics",
		Method:      http.MethodGet,
		Path:        "/analytics/summary",
		Summary:     "Summary",
		Description: "Returns this month's minutes per day and this year's headline stats",
		Tags:        []string{"Analytics"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleSummaryAnalytics)

	huma.Register(s.api, huma.Operation{
		OperationID: "getGoalsProgress",
		Method:      http.MethodGet,
		Path:        "/analytics/goals",
		Summary:     "Goal progress",
		Description: "Returns progress towards the daily, streak and books-per-year goals",
		Tags:        []string{"Analytics"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGoalsProgress)

	huma.Register(s.api, huma.Operation{
		OperationID: "getHeatmap",
		Method:      http.MethodGet,
		Path:        "/analytics/heatmap",
		Summary:     "Reading heatmap",
		Description: "Returns one cell per day of the year with minutes read and an intensity from 0 to 4",
		Tags:        []string{"Analytics"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleHeatmap)

	huma.Register(s.api, huma.Operation{
		OperationID: "getLifetimeStats",
		Method:      http.MethodGet,
		Path:        "/analytics/lifetime",
		Summary:     "Lifetime stats",
		Description: "Returns all-time reading totals",
		Tags:        []string{"Analytics"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleLifetimeStats)
}

// === DTOs ===

// AnalyticsInput carries only the caller's credentials.
type AnalyticsInput struct {
	Authorization string `header:"Authorization"`
}

// YearInput selects a calendar year.
type YearInput struct {
	Authorization string `header:"Authorization"`
	Year          int    `query:"year" doc:"Calendar year; defaults to the current year"`
}

// DailyProgressOutput wraps daily progress for Huma.
type DailyProgressOutput struct {
	Body *domain.DailyProgress
}

// YearlySummaryOutput wraps a yearly summary for Huma.
type YearlySummaryOutput struct {
	Body *domain.YearlySummary
}

// SummaryOutput wraps the summary for Huma.
type SummaryOutput struct {
	Body *domain.Summary
}

// GoalsProgressOutput wraps goal progress for Huma.
type GoalsProgressOutput struct {
	Body *domain.GoalsProgress
}

// HeatmapOutput wraps a heatmap for Huma.
type HeatmapOutput struct {
	Body *service.Heatmap
}

// LifetimeStatsOutput wraps lifetime stats for Huma.
type LifetimeStatsOutput struct {
	Body *domain.LifetimeStats
}

// === Handlers ===

func (s *Server) handleDailyAnalytics(ctx context.Context, input *AnalyticsInput) (*DailyProgressOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	daily, err := s.services.Analytics.Daily(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &DailyProgressOutput{Body: daily}, nil
}

func (s *Server) handleYearlyAnalytics(ctx context.Context, input *YearInput) (*YearlySummaryOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	yearly, err := s.services.Analytics.Yearly(ctx, userID, input.Year)
	if err != nil {
		return nil, err
	}

	return &YearlySummaryOutput{Body: yearly}, nil
}

func (s *Server) handleSummaryAnalytics(ctx context.Context, input *AnalyticsInput) (*SummaryOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	summary, err := s.services.Analytics.Summary(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &SummaryOutput{Body: summary}, nil
}

func (s *Server) handleGoalsProgress(ctx context.Context, input *AnalyticsInput) (*GoalsProgressOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	progress, err := s.services.Analytics.GoalsProgress(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &GoalsProgressOutput{Body: progress}, nil
}

func (s *Server) handleHeatmap(ctx context.Context, input *YearInput) (*HeatmapOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	heatmap, err := s.services.Analytics.Heatmap(ctx, userID, input.Year)
	if err != nil {
		return nil, err
	}

	return &HeatmapOutput{Body: heatmap}, nil
}

func (s *Server) handleLifetimeStats(ctx context.Context, input *AnalyticsInput) (*LifetimeStatsOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	stats, err := s.services.Analytics.Lifetime(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &LifetimeStatsOutput{Body: stats}, nil
}
