package ports

import (
	"context"
	"time"

	"github.com/transporteur/marketplace/internal/core/domain"
)

// MissionTx is the transactional view of the mission store. Every method runs
// inside the enclosing transaction; nothing is visible to other requests
// until WithinTx commits.
type MissionTx interface {
	// FindMissionForUpdate loads a mission and holds a row lock until commit.
	FindMissionForUpdate(ctx context.Context, id int64) (*domain.Mission, error)
	FindCarrier(ctx context.Context, id int64) (*domain.Carrier, error)
	// FindPaymentByMission returns domain.ErrPaymentNotFound when the mission has no payment.
	FindPaymentByMission(ctx context.Context, missionID int64) (*domain.Payment, error)
	InsertMission(ctx context.Context, m *domain.Mission) error
	UpdateMission(ctx context.Context, m *domain.Mission) error
	InsertPriceHistory(ctx context.Context, h *domain.PriceHistory) error
	// InsertPayment returns domain.ErrPaymentExists on a duplicate mission id.
	InsertPayment(ctx context.Context, p *domain.Payment) error
}

// TransactionRecord is a payment joined with its mission and both parties.
type TransactionRecord struct {
	Payment            domain.Payment
	MissionOrigin      string
	MissionDestination string
	MissionScheduledAt time.Time
	ClientName         string
	ClientSurname      string
	ClientEmail        string
	CarrierName        string
	CarrierSurname     string
	CarrierEmail       string
}

// MissionRepository defines persistence operations for missions, their price
// history and their payment.
type MissionRepository interface {
	// WithinTx runs fn in a single transaction. Any error returned by fn
	// rolls the transaction back and is returned unchanged.
	WithinTx(ctx context.Context, fn func(tx MissionTx) error) error

	FindMission(ctx context.Context, id int64) (*domain.Mission, error)
	ListMissionsByClient(ctx context.Context, clientID int64) ([]domain.Mission, error)
	ListMissionsByCarrier(ctx context.Context, carrierID int64) ([]domain.Mission, error)
	ListMissions(ctx context.Context) ([]domain.Mission, error)
	// ListPriceHistory returns the rows of a mission, newest first.
	ListPriceHistory(ctx context.Context, missionID int64) ([]domain.PriceHistory, error)
	FindPaymentByMission(ctx context.Context, missionID int64) (*domain.Payment, error)
	ListPayments(ctx context.Context) ([]domain.Payment, error)
	ListTransactions(ctx context.Context) ([]TransactionRecord, error)
	// CountMissionsByClient counts the client's missions in any of statuses.
	CountMissionsByClient(ctx context.Context, clientID int64, statuses ...domain.MissionStatus) (int64, error)
	CountMissionsByCarrier(ctx context.Context, carrierID int64, statuses ...domain.MissionStatus) (int64, error)
}
