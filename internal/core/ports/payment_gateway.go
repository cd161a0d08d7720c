package ports

import (
	"context"

	"github.com/shopspring/decimal"
)

// CaptureRequest is what the gateway sees of a card payment.
type CaptureRequest struct {
	MissionID      int64
	CardNumber     string
	CardHolderName string
	ExpiryMonth    int
	ExpiryYear     int
	CVV            string
	Amount         decimal.Decimal
}

// CaptureResult is a successful capture.
type CaptureResult struct {
	TransactionID string
}

// PaymentGateway captures card payments. A real provider would split this into
// an intent and a capture; the mission transition belongs to capture success.
type PaymentGateway interface {
	Capture(ctx context.Context, req CaptureRequest) (*CaptureResult, error)
}
