package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// MissionStatus represents the lifecycle state of a mission.
type MissionStatus string

const (
	StatusAwaiting       MissionStatus = "AWAITING"
	StatusPriceProposed  MissionStatus = "PRICE_PROPOSED"
	StatusPriceConfirmed MissionStatus = "PRICE_CONFIRMED"
	StatusAccepted       MissionStatus = "ACCEPTED"
	StatusInProgress     MissionStatus = "IN_PROGRESS"
	StatusCompleted      MissionStatus = "COMPLETED"
	StatusCancelled      MissionStatus = "CANCELLED"
)

// MissionStatuses lists every status in lifecycle order.
var MissionStatuses = []MissionStatus{
	StatusAwaiting,
	StatusPriceProposed,
	StatusPriceConfirmed,
	StatusAccepted,
	StatusInProgress,
	StatusCompleted,
	StatusCancelled,
}

// validTransitions defines the allowed state machine transitions.
// PRICE_CONFIRMED -> IN_PROGRESS is only legal for a paid mission; the
// lifecycle guards enforce the payment condition.
var validTransitions = map[MissionStatus][]MissionStatus{
	StatusAwaiting:       {StatusPriceProposed, StatusCancelled},
	StatusPriceProposed:  {StatusPriceConfirmed, StatusCancelled},
	StatusPriceConfirmed: {StatusAccepted, StatusInProgress, StatusCancelled},
	StatusAccepted:       {StatusInProgress, StatusCancelled},
	StatusInProgress:     {StatusCompleted, StatusCancelled},
}

// CanTransitionTo reports whether a transition from current status to next is valid.
func (s MissionStatus) CanTransitionTo(next MissionStatus) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no transition leaves s.
func (s MissionStatus) IsTerminal() bool {
	return len(validTransitions[s]) == 0
}

// Mission is the core aggregate root: one delivery job from origin to
// destination for a client by a chosen carrier.
type Mission struct {
	ID             int64               `json:"id" db:"id"`
	ClientID       int64               `json:"client_id" db:"client_id"`
	CarrierID      int64               `json:"carrier_id" db:"carrier_id"`
	ScheduledAt    time.Time           `json:"scheduled_at" db:"scheduled_at"`
	Origin         string              `json:"origin" db:"origin"`
	Destination    string              `json:"destination" db:"destination"`
	Description    string              `json:"description" db:"description"`
	Status         MissionStatus       `json:"status" db:"status"`
	ProposedPrice  decimal.NullDecimal `json:"proposed_price" db:"proposed_price"`
	PriceConfirmed bool                `json:"price_confirmed" db:"price_confirmed"`
	IsPaid         bool                `json:"is_paid" db:"is_paid"`
	CreatedAt      time.Time           `json:"created_at" db:"created_at"`

	// Party names are joined in from the client and carrier profiles on read.
	ClientName     string `json:"client_name" db:"client_name"`
	ClientSurname  string `json:"client_surname" db:"client_surname"`
	CarrierName    string `json:"carrier_name" db:"carrier_name"`
	CarrierSurname string `json:"carrier_surname" db:"carrier_surname"`
}

// PriceHistory records a single carrier-side price change. Rows are append-only.
type PriceHistory struct {
	ID        int64               `json:"id" db:"id"`
	MissionID int64               `json:"mission_id" db:"mission_id"`
	OldPrice  decimal.NullDecimal `json:"old_price" db:"old_price"`
	NewPrice  decimal.Decimal     `json:"new_price" db:"new_price"`
	Reason    string              `json:"reason" db:"reason"`
	ChangedBy string              `json:"changed_by" db:"changed_by"`
	ChangedAt time.Time           `json:"changed_at" db:"changed_at"`
}
