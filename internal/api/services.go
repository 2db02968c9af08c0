package api

import (
	"github.com/readupapp/readup-server/internal/service"
)

// Services groups the business logic services used by the API server.
type Services struct {
	Tracker   *service.TrackerService
	Ledger    *service.LedgerService
	Goals     *service.GoalService
	Analytics *service.AnalyticsService
	Account   *service.AccountService
}
