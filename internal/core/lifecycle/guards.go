// Package lifecycle holds the pure mission state machine: guards that decide
// whether an event may be applied, and Apply, which computes the next mission
// value. Nothing here performs I/O; callers load and persist missions.
package lifecycle

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/transporteur/marketplace/internal/core/domain"
)

// GuardResult represents the outcome of a guard evaluation.
type GuardResult struct {
	Allowed bool
	Err     error // populated when not allowed; wraps a domain sentinel
}

// Error returns the guard result as an error if not allowed, nil otherwise.
func (r GuardResult) Error() error {
	if r.Allowed {
		return nil
	}
	return r.Err
}

func allow() GuardResult { return GuardResult{Allowed: true} }

func deny(sentinel error, format string, args ...any) GuardResult {
	return GuardResult{Err: fmt.Errorf("%w: "+format, append([]any{sentinel}, args...)...)}
}

// CanActOn checks that p is the party entitled to trigger ev on m.
// Role alone is insufficient: the linked profile id must match the mission.
func CanActOn(m domain.Mission, p domain.Principal, ev Event) GuardResult {
	switch ev.actor() {
	case domain.RoleClient:
		if !p.IsClient(m.ClientID) {
			return deny(domain.ErrNotMissionParty, "only the client who created mission %d can %s", m.ID, ev)
		}
	case domain.RoleCarrier:
		if !p.IsCarrier(m.CarrierID) {
			return deny(domain.ErrNotMissionParty, "only the carrier assigned to mission %d can %s", m.ID, ev)
		}
	default:
		return deny(domain.ErrForbidden, "event %q has no actor", ev)
	}
	return allow()
}

// CanView reports whether p may read m: its client or its carrier.
func CanView(m domain.Mission, p domain.Principal) GuardResult {
	if p.IsClient(m.ClientID) || p.IsCarrier(m.CarrierID) {
		return allow()
	}
	return deny(domain.ErrNotMissionParty, "mission %d belongs to another client or carrier", m.ID)
}

// CanCreate checks that a client may target carrier.
func CanCreate(p domain.Principal, carrier domain.Carrier) GuardResult {
	if p.Role != domain.RoleClient || p.ClientID == 0 {
		return deny(domain.ErrForbidden, "only clients can create missions")
	}
	if !carrier.Available {
		return deny(domain.ErrCarrierUnavailable, "carrier %d", carrier.ID)
	}
	return allow()
}

// checkPrice rejects non-positive prices and prices with sub-cent digits.
// Money is stored and rendered with two decimals, so anything finer could
// never be paid back exactly.
func checkPrice(price decimal.Decimal) GuardResult {
	if !price.IsPositive() {
		return deny(domain.ErrInvalidPrice, "got %s", price)
	}
	if !price.Equal(price.Truncate(2)) {
		return deny(domain.ErrPricePrecision, "got %s", price)
	}
	return allow()
}

// CanProposePrice: status AWAITING, price > 0 in whole cents.
func CanProposePrice(m domain.Mission, price decimal.Decimal) GuardResult {
	if r := checkPrice(price); !r.Allowed {
		return r
	}
	if m.Status != domain.StatusAwaiting {
		return deny(domain.ErrInvalidTransition, "cannot propose a price on a %s mission", m.Status)
	}
	return allow()
}

// CanUpdatePrice: status PRICE_PROPOSED, price not yet confirmed, price > 0
// in whole cents.
func CanUpdatePrice(m domain.Mission, price decimal.Decimal) GuardResult {
	if r := checkPrice(price); !r.Allowed {
		return r
	}
	if m.PriceConfirmed {
		return deny(domain.ErrPriceConfirmed, "mission %d", m.ID)
	}
	if m.Status != domain.StatusPriceProposed {
		return deny(domain.ErrInvalidTransition, "cannot update the price of a %s mission", m.Status)
	}
	return allow()
}

// CanConfirmPrice: status PRICE_PROPOSED with a proposed price.
func CanConfirmPrice(m domain.Mission) GuardResult {
	if m.PriceConfirmed {
		return deny(domain.ErrPriceConfirmed, "mission %d", m.ID)
	}
	if m.Status != domain.StatusPriceProposed {
		return deny(domain.ErrInvalidTransition, "cannot confirm the price of a %s mission", m.Status)
	}
	if !m.ProposedPrice.Valid {
		return deny(domain.ErrPriceNotProposed, "mission %d", m.ID)
	}
	return allow()
}

// CanPay checks the capture preconditions. Already-paid is reported before the
// status check so a second payment names the real cause.
func CanPay(m domain.Mission, amount decimal.Decimal, hasPayment bool) GuardResult {
	if m.IsPaid {
		return deny(domain.ErrAlreadyPaid, "mission %d", m.ID)
	}
	if hasPayment {
		return deny(domain.ErrPaymentExists, "mission %d", m.ID)
	}
	if m.Status != domain.StatusPriceConfirmed || !m.PriceConfirmed {
		return deny(domain.ErrInvalidTransition, "price must be confirmed before payment, mission is %s", m.Status)
	}
	if !amount.Equal(amount.Truncate(2)) {
		return deny(domain.ErrPricePrecision, "amount %s", amount)
	}
	if !m.ProposedPrice.Valid || !amount.Equal(m.ProposedPrice.Decimal) {
		return deny(domain.ErrAmountMismatch, "expected %s, got %s", m.ProposedPrice.Decimal, amount)
	}
	return allow()
}

// CanBegin: the mission is paid and in ACCEPTED (or PRICE_CONFIRMED).
func CanBegin(m domain.Mission) GuardResult {
	if !m.IsPaid {
		return deny(domain.ErrNotPaid, "mission %d", m.ID)
	}
	if !m.Status.CanTransitionTo(domain.StatusInProgress) {
		return deny(domain.ErrInvalidTransition, "cannot start a %s mission", m.Status)
	}
	return allow()
}

// CanComplete: status IN_PROGRESS.
func CanComplete(m domain.Mission) GuardResult {
	if m.Status != domain.StatusInProgress {
		return deny(domain.ErrInvalidTransition, "cannot complete a %s mission", m.Status)
	}
	return allow()
}

// CanCancel: any non-terminal status, paid or not.
func CanCancel(m domain.Mission) GuardResult {
	if !m.Status.CanTransitionTo(domain.StatusCancelled) {
		return deny(domain.ErrInvalidTransition, "cannot cancel a %s mission", m.Status)
	}
	return allow()
}
