package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/transporteur/marketplace/internal/core/domain"
	"github.com/transporteur/marketplace/internal/core/ports"
)

// AdminService backs the read-only admin reporting endpoints.
type AdminService struct {
	accounts ports.AccountRepository
	missions ports.MissionRepository
	audit    ports.AuditRepository
	now      func() time.Time
}

// NewAdminService returns an AdminService. audit may be nil when no audit
// store is configured; MissionAudit then returns an empty trail.
func NewAdminService(accounts ports.AccountRepository, missions ports.MissionRepository, audit ports.AuditRepository) *AdminService {
	return &AdminService{
		accounts: accounts,
		missions: missions,
		audit:    audit,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

var _ ports.AdminService = (*AdminService)(nil)

func (s *AdminService) Accounts(ctx context.Context) ([]ports.AccountRecord, error) {
	return s.accounts.ListAccounts(ctx)
}

func (s *AdminService) Transactions(ctx context.Context) ([]ports.TransactionRecord, error) {
	return s.missions.ListTransactions(ctx)
}

// Statistics aggregates the whole platform. Windows start at midnight UTC:
// today, the last seven days including today, and the current month.
func (s *AdminService) Statistics(ctx context.Context) (*ports.PlatformStatistics, error) {
	byRole, err := s.accounts.CountAccountsByRole(ctx)
	if err != nil {
		return nil, err
	}
	missions, err := s.missions.ListMissions(ctx)
	if err != nil {
		return nil, err
	}
	payments, err := s.missions.ListPayments(ctx)
	if err != nil {
		return nil, err
	}

	stats := &ports.PlatformStatistics{
		TotalClients:     byRole[domain.RoleClient],
		TotalCarriers:    byRole[domain.RoleCarrier],
		TotalAdmins:      byRole[domain.RoleAdmin],
		MissionsByStatus: make(map[domain.MissionStatus]int64, len(domain.MissionStatuses)),
		TotalRevenue:     decimal.Zero,
		AveragePayment:   decimal.Zero,
	}
	stats.TotalAccounts = stats.TotalClients + stats.TotalCarriers + stats.TotalAdmins

	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	week := today.AddDate(0, 0, -6)
	month := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	windows := []struct {
		from time.Time
		w    *ports.ActivityWindow
	}{
		{today, &stats.Today},
		{week, &stats.ThisWeek},
		{month, &stats.ThisMonth},
	}
	for _, win := range windows {
		win.w.Revenue = decimal.Zero
	}

	for _, status := range domain.MissionStatuses {
		stats.MissionsByStatus[status] = 0
	}
	for _, m := range missions {
		stats.TotalMissions++
		stats.MissionsByStatus[m.Status]++
		if m.IsPaid {
			stats.PaidMissions++
		} else {
			stats.UnpaidMissions++
		}
		for _, win := range windows {
			if !m.CreatedAt.Before(win.from) {
				win.w.Missions++
			}
		}
	}

	for _, p := range payments {
		if p.Status != domain.PaymentCompleted {
			continue
		}
		stats.TotalPayments++
		stats.TotalRevenue = stats.TotalRevenue.Add(p.Amount)
		for _, win := range windows {
			if !p.PaidAt.Before(win.from) {
				win.w.Payments++
				win.w.Revenue = win.w.Revenue.Add(p.Amount)
			}
		}
	}
	if stats.TotalPayments > 0 {
		stats.AveragePayment = stats.TotalRevenue.Div(decimal.NewFromInt(stats.TotalPayments)).Round(2)
	}

	return stats, nil
}

func (s *AdminService) MissionAudit(ctx context.Context, missionID int64) ([]domain.MissionEvent, error) {
	if _, err := s.missions.FindMission(ctx, missionID); err != nil {
		return nil, err
	}
	if s.audit == nil {
		return []domain.MissionEvent{}, nil
	}
	return s.audit.ListEvents(ctx, missionID)
}
