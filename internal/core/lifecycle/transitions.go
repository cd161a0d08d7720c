package lifecycle

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/transporteur/marketplace/internal/core/domain"
)

// DefaultUpdateReason is recorded when a carrier changes a price without a reason.
const DefaultUpdateReason = "Price modified by carrier"

// Event names a lifecycle operation.
type Event string

const (
	EventCreate       Event = "create"
	EventProposePrice Event = "propose-price"
	EventUpdatePrice  Event = "update-price"
	EventConfirmPrice Event = "confirm-price"
	EventPay          Event = "pay"
	EventBegin        Event = "begin"
	EventComplete     Event = "complete"
	EventCancel       Event = "cancel"
)

// actor returns the role entitled to trigger e.
func (e Event) actor() domain.Role {
	switch e {
	case EventCreate, EventConfirmPrice, EventPay, EventCancel:
		return domain.RoleClient
	case EventProposePrice, EventUpdatePrice, EventBegin, EventComplete:
		return domain.RoleCarrier
	}
	return ""
}

// EventForStatus maps the target of the carrier status endpoint to its event.
// Only IN_PROGRESS and COMPLETED are accepted there.
func EventForStatus(status string) (Event, error) {
	switch domain.MissionStatus(strings.ToUpper(strings.TrimSpace(status))) {
	case domain.StatusInProgress:
		return EventBegin, nil
	case domain.StatusCompleted:
		return EventComplete, nil
	}
	return "", fmt.Errorf("%w: %q", domain.ErrInvalidStatus, status)
}

// Command carries the event-specific arguments.
type Command struct {
	Event      Event
	Price      decimal.Decimal // propose-price, update-price
	Reason     string          // update-price
	Amount     decimal.Decimal // pay
	HasPayment bool            // pay: a payment row already exists for the mission
}

// Result is the outcome of a successful Apply.
type Result struct {
	Mission domain.Mission
	History *domain.PriceHistory // set only by update-price
}

// MissionRequest is the client input for create.
type MissionRequest struct {
	CarrierID   int64
	ScheduledAt time.Time
	Origin      string
	Destination string
	Description string
}

// NewMission builds a mission in AWAITING for p targeting carrier.
func NewMission(p domain.Principal, carrier domain.Carrier, req MissionRequest, now time.Time) (domain.Mission, error) {
	if err := CanCreate(p, carrier).Error(); err != nil {
		return domain.Mission{}, err
	}
	return domain.Mission{
		ClientID:    p.ClientID,
		CarrierID:   carrier.ID,
		ScheduledAt: req.ScheduledAt,
		Origin:      req.Origin,
		Destination: req.Destination,
		Description: req.Description,
		Status:      domain.StatusAwaiting,
		CreatedAt:   now,
	}, nil
}

// Apply validates cmd against m for principal p and returns the next mission
// value. m is not modified; on error no state change must be persisted.
func Apply(m domain.Mission, p domain.Principal, cmd Command, now time.Time) (Result, error) {
	if cmd.Event == EventCreate {
		return Result{}, fmt.Errorf("%w: create does not apply to an existing mission", domain.ErrInvalidTransition)
	}
	if err := CanActOn(m, p, cmd.Event).Error(); err != nil {
		return Result{}, err
	}

	next := m
	var history *domain.PriceHistory

	switch cmd.Event {
	case EventProposePrice:
		if err := CanProposePrice(m, cmd.Price).Error(); err != nil {
			return Result{}, err
		}
		next.Status = domain.StatusPriceProposed
		next.ProposedPrice = decimal.NewNullDecimal(cmd.Price)
		next.PriceConfirmed = false

	case EventUpdatePrice:
		if err := CanUpdatePrice(m, cmd.Price).Error(); err != nil {
			return Result{}, err
		}
		reason := strings.TrimSpace(cmd.Reason)
		if reason == "" {
			reason = DefaultUpdateReason
		}
		history = &domain.PriceHistory{
			MissionID: m.ID,
			OldPrice:  m.ProposedPrice,
			NewPrice:  cmd.Price,
			Reason:    reason,
			ChangedBy: p.Email,
			ChangedAt: now,
		}
		next.ProposedPrice = decimal.NewNullDecimal(cmd.Price)

	case EventConfirmPrice:
		if err := CanConfirmPrice(m).Error(); err != nil {
			return Result{}, err
		}
		next.Status = domain.StatusPriceConfirmed
		next.PriceConfirmed = true

	case EventPay:
		if err := CanPay(m, cmd.Amount, cmd.HasPayment).Error(); err != nil {
			return Result{}, err
		}
		next.IsPaid = true
		next.Status = domain.StatusAccepted

	case EventBegin:
		if err := CanBegin(m).Error(); err != nil {
			return Result{}, err
		}
		next.Status = domain.StatusInProgress

	case EventComplete:
		if err := CanComplete(m).Error(); err != nil {
			return Result{}, err
		}
		next.Status = domain.StatusCompleted

	case EventCancel:
		if err := CanCancel(m).Error(); err != nil {
			return Result{}, err
		}
		next.Status = domain.StatusCancelled

	default:
		return Result{}, fmt.Errorf("%w: unknown event %q", domain.ErrInvalidTransition, cmd.Event)
	}

	return Result{Mission: next, History: history}, nil
}
