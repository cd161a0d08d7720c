package ports

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/transporteur/marketplace/internal/core/domain"
)

// ProcessPaymentInput is the DTO passed from the transport layer to PaymentService.
type ProcessPaymentInput struct {
	MissionID      int64
	CardNumber     string
	CardHolderName string
	ExpiryMonth    int
	ExpiryYear     int
	CVV            string
	Amount         decimal.Decimal
	IdempotencyKey string // optional
}

// PaymentResult is returned by Process.
type PaymentResult struct {
	Payment domain.Payment
	// Replayed is true when the Idempotency-Key matched an earlier payment.
	Replayed bool
}

// PaymentStatusView answers "is this mission paid?".
type PaymentStatusView struct {
	MissionID int64
	IsPaid    bool
	Amount    decimal.NullDecimal
	Status    domain.PaymentStatus
	Message   string
}

// PaymentService captures payments and reports payment state.
type PaymentService interface {
	Process(ctx context.Context, p domain.Principal, in ProcessPaymentInput) (*PaymentResult, error)
	Status(ctx context.Context, p domain.Principal, missionID int64) (*PaymentStatusView, error)
}
