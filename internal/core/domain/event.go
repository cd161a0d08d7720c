package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// MissionEvent records one applied lifecycle transition. It feeds the audit
// trail and the outbound event stream.
type MissionEvent struct {
	MissionID  int64               `json:"mission_id"`
	Event      string              `json:"event"`
	From       MissionStatus       `json:"from,omitempty"`
	To         MissionStatus       `json:"to"`
	ActorEmail string              `json:"actor_email"`
	ActorRole  Role                `json:"actor_role"`
	Price      decimal.NullDecimal `json:"price"`
	IsPaid     bool                `json:"is_paid"`
	OccurredAt time.Time           `json:"occurred_at"`
}
