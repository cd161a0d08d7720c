package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus is the state of a captured payment.
type PaymentStatus string

const (
	PaymentCompleted PaymentStatus = "COMPLETED"
	PaymentPending   PaymentStatus = "PENDING"
	PaymentFailed    PaymentStatus = "FAILED"
)

// Payment is the artifact of a simulated card capture. At most one exists per mission.
type Payment struct {
	ID             int64           `json:"id" db:"id"`
	MissionID      int64           `json:"mission_id" db:"mission_id"`
	ClientID       int64           `json:"client_id" db:"client_id"`
	CarrierID      int64           `json:"carrier_id" db:"carrier_id"`
	Amount         decimal.Decimal `json:"amount" db:"amount"`
	CardLastFour   string          `json:"card_last_four" db:"card_last_four"`
	CardHolderName string          `json:"card_holder_name" db:"card_holder_name"`
	TransactionID  string          `json:"transaction_id" db:"transaction_id"`
	Status         PaymentStatus   `json:"status" db:"status"`
	PaidAt         time.Time       `json:"paid_at" db:"paid_at"`
}

// CardLastFour returns the last four digits of a card number, the only part
// of it that is ever logged or stored.
func CardLastFour(card string) string {
	if len(card) <= 4 {
		return card
	}
	return card[len(card)-4:]
}
