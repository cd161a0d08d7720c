// Package payment holds the card gateway used by the payment service.
package payment

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/transporteur/marketplace/internal/core/domain"
	"github.com/transporteur/marketplace/internal/core/ports"
)

// SimulatedGateway accepts every unexpired card without contacting a
// provider. Card data is never logged beyond the last four digits.
type SimulatedGateway struct {
	log zerolog.Logger
	now func() time.Time
}

func NewSimulatedGateway(log zerolog.Logger) *SimulatedGateway {
	return &SimulatedGateway{log: log, now: time.Now}
}

var _ ports.PaymentGateway = (*SimulatedGateway)(nil)

func (g *SimulatedGateway) Capture(ctx context.Context, req ports.CaptureRequest) (*ports.CaptureResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if g.expired(req.ExpiryMonth, req.ExpiryYear) {
		return nil, fmt.Errorf("%w: card expired %02d/%d", domain.ErrCardDeclined, req.ExpiryMonth, req.ExpiryYear)
	}

	txn := "TXN-" + strings.ToUpper(uuid.NewString()[:8])
	g.log.Debug().
		Int64("mission_id", req.MissionID).
		Str("transaction_id", txn).
		Str("card_last_four", domain.CardLastFour(req.CardNumber)).
		Msg("simulated capture approved")
	return &ports.CaptureResult{TransactionID: txn}, nil
}

// expired reports whether the card's expiry month is over. A card is valid
// through the last day of its expiry month.
func (g *SimulatedGateway) expired(month, year int) bool {
	now := g.now().UTC()
	return year < now.Year() || (year == now.Year() && month < int(now.Month()))
}
