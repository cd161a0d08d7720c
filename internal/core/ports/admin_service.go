package ports

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/transporteur/marketplace/internal/core/domain"
)

// ActivityWindow aggregates missions and payments created in a period.
type ActivityWindow struct {
	Missions int64
	Payments int64
	Revenue  decimal.Decimal
}

// PlatformStatistics is the admin overview of the platform.
type PlatformStatistics struct {
	TotalAccounts int64
	TotalClients  int64
	TotalCarriers int64
	TotalAdmins   int64

	MissionsByStatus map[domain.MissionStatus]int64
	TotalMissions    int64
	PaidMissions     int64
	UnpaidMissions   int64

	TotalPayments  int64
	TotalRevenue   decimal.Decimal
	AveragePayment decimal.Decimal

	Today     ActivityWindow
	ThisWeek  ActivityWindow // last 7 days, from midnight
	ThisMonth ActivityWindow // since the first of the month
}

// AdminService is the read-only reporting surface.
type AdminService interface {
	Accounts(ctx context.Context) ([]AccountRecord, error)
	Transactions(ctx context.Context) ([]TransactionRecord, error)
	Statistics(ctx context.Context) (*PlatformStatistics, error)
	MissionAudit(ctx context.Context, missionID int64) ([]domain.MissionEvent, error)
}
