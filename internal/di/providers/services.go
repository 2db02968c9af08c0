package providers

import (
	"github.com/samber/do/v2"

	"github.com/readupapp/readup-server/internal/config"
	"github.com/readupapp/readup-server/internal/domain"
	"github.com/readupapp/readup-server/internal/logger"
	"github.com/readupapp/readup-server/internal/service"
	"github.com/readupapp/readup-server/internal/validation"
)

// ProvideTrackerService provides the book-state tracker.
func ProvideTrackerService(i do.Injector) (*service.TrackerService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	rollupHandle := do.MustInvoke[*RollupHandle](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	v := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewTrackerService(storeHandle.Store, rollupHandle.Store, sseHandle.Manager, v, log.Logger), nil
}

// ProvideLedgerService provides the session ledger.
func ProvideLedgerService(i do.Injector) (*service.LedgerService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	rollupHandle := do.MustInvoke[*RollupHandle](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	tracker := do.MustInvoke[*service.TrackerService](i)
	v := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewLedgerService(
		storeHandle.Store,
		tracker,
		rollupHandle.Store,
		sseHandle.Manager,
		v,
		cfg.Tracking.Location,
		log.Logger,
	), nil
}

// ProvideGoalService provides the goal service with configured defaults.
func ProvideGoalService(i do.Injector) (*service.GoalService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	v := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	defaults := domain.Goals{
		DailyGoalMinutes: cfg.Goals.DailyMinutes,
		StreakGoal:       cfg.Goals.StreakDays,
		BooksPerYearGoal: cfg.Goals.BooksPerYear,
	}

	return service.NewGoalService(storeHandle.Store, defaults, sseHandle.Manager, v, log.Logger), nil
}

// ProvideAnalyticsService provides the analytics aggregator.
func ProvideAnalyticsService(i do.Injector) (*service.AnalyticsService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	rollupHandle := do.MustInvoke[*RollupHandle](i)
	goals := do.MustInvoke[*service.GoalService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewAnalyticsService(storeHandle.Store, goals, rollupHandle.Store, cfg.Tracking.Location, log.Logger), nil
}

// ProvideAccountService provides the account service.
func ProvideAccountService(i do.Injector) (*service.AccountService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	rollupHandle := do.MustInvoke[*RollupHandle](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	v := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewAccountService(storeHandle.Store, rollupHandle.Store, sseHandle.Manager, v, log.Logger), nil
}
