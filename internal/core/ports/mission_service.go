package ports

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/transporteur/marketplace/internal/core/domain"
)

// CreateMissionInput carries the client's request for a new mission.
type CreateMissionInput struct {
	CarrierID   int64
	ScheduledAt time.Time
	Origin      string
	Destination string
	Description string
}

// MissionDetail is the projection returned by every mission operation:
// the mission with its payment flags and its price history, newest first.
type MissionDetail struct {
	Mission      domain.Mission
	PriceHistory []domain.PriceHistory
}

// CarrierContact is what a client may see of the carrier on its mission.
type CarrierContact struct {
	CarrierID int64
	Name      string
	Surname   string
	Phone     string
}

// MissionService defines the lifecycle use cases. Every mutating operation
// runs in one transaction that starts by locking the mission row.
type MissionService interface {
	AvailableCarriers(ctx context.Context) ([]domain.Carrier, error)
	Create(ctx context.Context, p domain.Principal, in CreateMissionInput) (*MissionDetail, error)
	ListForClient(ctx context.Context, p domain.Principal) ([]MissionDetail, error)
	ListForCarrier(ctx context.Context, p domain.Principal) ([]MissionDetail, error)
	Get(ctx context.Context, p domain.Principal, id int64) (*MissionDetail, error)
	// UpdateStatus accepts IN_PROGRESS (begin) and COMPLETED (complete) only.
	UpdateStatus(ctx context.Context, p domain.Principal, id int64, status string) (*MissionDetail, error)
	Cancel(ctx context.Context, p domain.Principal, id int64) (*MissionDetail, error)
	ProposePrice(ctx context.Context, p domain.Principal, id int64, price decimal.Decimal) (*MissionDetail, error)
	ConfirmPrice(ctx context.Context, p domain.Principal, id int64) (*MissionDetail, error)
	UpdatePrice(ctx context.Context, p domain.Principal, id int64, price decimal.Decimal, reason string) (*MissionDetail, error)
	CarrierContact(ctx context.Context, p domain.Principal, id int64) (*CarrierContact, error)
}
