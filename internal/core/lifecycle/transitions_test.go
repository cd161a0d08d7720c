package lifecycle

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/transporteur/marketplace/internal/core/domain"
)

// ---------------------------------------------------------------------------
// Fixtures
// ---------------------------------------------------------------------------

var (
	t0 = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	client   = domain.Principal{AccountID: 1, Email: "client@example.com", Role: domain.RoleClient, ClientID: 10}
	carrier  = domain.Principal{AccountID: 2, Email: "carrier@example.com", Role: domain.RoleCarrier, CarrierID: 20}
	stranger = domain.Principal{AccountID: 3, Email: "other@example.com", Role: domain.RoleCarrier, CarrierID: 21}
)

func dec(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func awaiting() domain.Mission {
	return domain.Mission{ID: 7, ClientID: 10, CarrierID: 20, Status: domain.StatusAwaiting, CreatedAt: t0}
}

func mustApply(t *testing.T, m domain.Mission, p domain.Principal, cmd Command) domain.Mission {
	t.Helper()
	res, err := Apply(m, p, cmd, t0)
	if err != nil {
		t.Fatalf("%s: unexpected error: %v", cmd.Event, err)
	}
	return res.Mission
}

func confirmedAt(t *testing.T, price string) domain.Mission {
	t.Helper()
	m := mustApply(t, awaiting(), carrier, Command{Event: EventProposePrice, Price: dec(price)})
	return mustApply(t, m, client, Command{Event: EventConfirmPrice})
}

// ---------------------------------------------------------------------------
// NewMission
// ---------------------------------------------------------------------------

func TestNewMission_AvailableCarrier(t *testing.T) {
	m, err := NewMission(client, domain.Carrier{ID: 20, Available: true}, MissionRequest{
		CarrierID: 20, Origin: "Sousse", Destination: "Monastir",
	}, t0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Status != domain.StatusAwaiting || m.ClientID != 10 || m.CarrierID != 20 {
		t.Fatalf("unexpected mission: %+v", m)
	}
	if m.ProposedPrice.Valid || m.PriceConfirmed || m.IsPaid {
		t.Fatalf("new mission must carry no price or payment: %+v", m)
	}
}

func TestNewMission_UnavailableCarrier(t *testing.T) {
	_, err := NewMission(client, domain.Carrier{ID: 20, Available: false}, MissionRequest{CarrierID: 20}, t0)
	if !errors.Is(err, domain.ErrCarrierUnavailable) {
		t.Fatalf("expected ErrCarrierUnavailable, got %v", err)
	}
}

func TestNewMission_CarrierCannotCreate(t *testing.T) {
	_, err := NewMission(carrier, domain.Carrier{ID: 20, Available: true}, MissionRequest{CarrierID: 20}, t0)
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// Negotiation
// ---------------------------------------------------------------------------

func TestApply_ProposePrice(t *testing.T) {
	res, err := Apply(awaiting(), carrier, Command{Event: EventProposePrice, Price: dec("120")}, t0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Mission.Status != domain.StatusPriceProposed {
		t.Fatalf("expected PRICE_PROPOSED, got %s", res.Mission.Status)
	}
	if !res.Mission.ProposedPrice.Decimal.Equal(dec("120")) {
		t.Fatalf("expected price 120, got %s", res.Mission.ProposedPrice.Decimal)
	}
	if res.History != nil {
		t.Fatalf("first proposal must not emit a history row")
	}
}

func TestApply_ProposePrice_Rejections(t *testing.T) {
	proposed := mustApply(t, awaiting(), carrier, Command{Event: EventProposePrice, Price: dec("100")})

	tests := []struct {
		name    string
		mission domain.Mission
		actor   domain.Principal
		price   string
		want    error
	}{
		{"zero price", awaiting(), carrier, "0", domain.ErrInvalidPrice},
		{"negative price", awaiting(), carrier, "-5", domain.ErrInvalidPrice},
		{"sub-cent price", awaiting(), carrier, "120.005", domain.ErrPricePrecision},
		{"negative sub-cent price", awaiting(), carrier, "-0.001", domain.ErrInvalidPrice},
		{"other carrier", awaiting(), stranger, "100", domain.ErrNotMissionParty},
		{"client", awaiting(), client, "100", domain.ErrNotMissionParty},
		{"already proposed", proposed, carrier, "110", domain.ErrInvalidTransition},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Apply(tt.mission, tt.actor, Command{Event: EventProposePrice, Price: dec(tt.price)}, t0)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestApply_UpdatePrice_EmitsHistory(t *testing.T) {
	m := mustApply(t, awaiting(), carrier, Command{Event: EventProposePrice, Price: dec("100")})

	res, err := Apply(m, carrier, Command{Event: EventUpdatePrice, Price: dec("130"), Reason: "detour"}, t0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Mission.ProposedPrice.Decimal.Equal(dec("130")) {
		t.Fatalf("expected 130, got %s", res.Mission.ProposedPrice.Decimal)
	}
	if res.Mission.Status != domain.StatusPriceProposed {
		t.Fatalf("status must stay PRICE_PROPOSED, got %s", res.Mission.Status)
	}
	h := res.History
	if h == nil {
		t.Fatalf("expected a history row")
	}
	if !h.OldPrice.Valid || !h.OldPrice.Decimal.Equal(dec("100")) || !h.NewPrice.Equal(dec("130")) {
		t.Fatalf("unexpected prices: old=%v new=%s", h.OldPrice, h.NewPrice)
	}
	if h.Reason != "detour" || h.ChangedBy != "carrier@example.com" || !h.ChangedAt.Equal(t0) {
		t.Fatalf("unexpected history row: %+v", h)
	}
}

func TestApply_UpdatePrice_DefaultReason(t *testing.T) {
	m := mustApply(t, awaiting(), carrier, Command{Event: EventProposePrice, Price: dec("100")})
	res, err := Apply(m, carrier, Command{Event: EventUpdatePrice, Price: dec("110")}, t0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.History.Reason != DefaultUpdateReason {
		t.Fatalf("expected default reason, got %q", res.History.Reason)
	}
}

func TestApply_UpdatePrice_SamePriceStillRecorded(t *testing.T) {
	m := mustApply(t, awaiting(), carrier, Command{Event: EventProposePrice, Price: dec("100")})

	res, err := Apply(m, carrier, Command{Event: EventUpdatePrice, Price: dec("100.00"), Reason: "recheck"}, t0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	h := res.History
	if h == nil {
		t.Fatalf("an unchanged price must still append a history row")
	}
	if !h.OldPrice.Valid || !h.OldPrice.Decimal.Equal(dec("100")) || !h.NewPrice.Equal(dec("100")) {
		t.Fatalf("expected old == new == 100, got old=%v new=%s", h.OldPrice, h.NewPrice)
	}
	if h.Reason != "recheck" || res.Mission.Status != domain.StatusPriceProposed {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestApply_UpdatePrice_SubCentRejected(t *testing.T) {
	m := mustApply(t, awaiting(), carrier, Command{Event: EventProposePrice, Price: dec("100")})
	_, err := Apply(m, carrier, Command{Event: EventUpdatePrice, Price: dec("130.125")}, t0)
	if !errors.Is(err, domain.ErrPricePrecision) {
		t.Fatalf("expected ErrPricePrecision, got %v", err)
	}
}

func TestApply_UpdatePrice_AfterConfirm(t *testing.T) {
	m := confirmedAt(t, "90")
	_, err := Apply(m, carrier, Command{Event: EventUpdatePrice, Price: dec("95")}, t0)
	if !errors.Is(err, domain.ErrPriceConfirmed) {
		t.Fatalf("expected ErrPriceConfirmed, got %v", err)
	}
}

func TestApply_UpdatePrice_ClientRejected(t *testing.T) {
	m := mustApply(t, awaiting(), carrier, Command{Event: EventProposePrice, Price: dec("100")})
	_, err := Apply(m, client, Command{Event: EventUpdatePrice, Price: dec("80")}, t0)
	if !errors.Is(err, domain.ErrNotMissionParty) {
		t.Fatalf("expected ErrNotMissionParty, got %v", err)
	}
}

func TestApply_ConfirmPrice(t *testing.T) {
	m := confirmedAt(t, "90")
	if m.Status != domain.StatusPriceConfirmed || !m.PriceConfirmed {
		t.Fatalf("unexpected mission: %+v", m)
	}

	if _, err := Apply(awaiting(), client, Command{Event: EventConfirmPrice}, t0); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("confirm on AWAITING: expected ErrInvalidTransition, got %v", err)
	}
	if _, err := Apply(m, client, Command{Event: EventConfirmPrice}, t0); !errors.Is(err, domain.ErrPriceConfirmed) {
		t.Fatalf("second confirm: expected ErrPriceConfirmed, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// Payment gating
// ---------------------------------------------------------------------------

func TestApply_Pay(t *testing.T) {
	m := confirmedAt(t, "90")

	if _, err := Apply(m, client, Command{Event: EventPay, Amount: dec("80")}, t0); !errors.Is(err, domain.ErrAmountMismatch) {
		t.Fatalf("expected ErrAmountMismatch, got %v", err)
	}

	paid := mustApply(t, m, client, Command{Event: EventPay, Amount: dec("90.00")})
	if !paid.IsPaid || paid.Status != domain.StatusAccepted {
		t.Fatalf("unexpected mission after pay: %+v", paid)
	}

	if _, err := Apply(paid, client, Command{Event: EventPay, Amount: dec("90")}, t0); !errors.Is(err, domain.ErrAlreadyPaid) {
		t.Fatalf("second pay: expected ErrAlreadyPaid, got %v", err)
	}
}

func TestApply_Pay_SubCentAmountRejected(t *testing.T) {
	m := confirmedAt(t, "90")
	_, err := Apply(m, client, Command{Event: EventPay, Amount: dec("90.001")}, t0)
	if !errors.Is(err, domain.ErrPricePrecision) {
		t.Fatalf("expected ErrPricePrecision, got %v", err)
	}
}

func TestApply_Pay_ExistingPaymentRow(t *testing.T) {
	m := confirmedAt(t, "90")
	_, err := Apply(m, client, Command{Event: EventPay, Amount: dec("90"), HasPayment: true}, t0)
	if !errors.Is(err, domain.ErrPaymentExists) {
		t.Fatalf("expected ErrPaymentExists, got %v", err)
	}
}

func TestApply_Begin_RequiresPayment(t *testing.T) {
	m := confirmedAt(t, "90")
	if _, err := Apply(m, carrier, Command{Event: EventBegin}, t0); !errors.Is(err, domain.ErrNotPaid) {
		t.Fatalf("expected ErrNotPaid, got %v", err)
	}

	paid := mustApply(t, m, client, Command{Event: EventPay, Amount: dec("90")})
	started := mustApply(t, paid, carrier, Command{Event: EventBegin})
	if started.Status != domain.StatusInProgress {
		t.Fatalf("expected IN_PROGRESS, got %s", started.Status)
	}

	done := mustApply(t, started, carrier, Command{Event: EventComplete})
	if done.Status != domain.StatusCompleted || !done.IsPaid {
		t.Fatalf("unexpected completed mission: %+v", done)
	}
}

func TestApply_Complete_RequiresInProgress(t *testing.T) {
	m := confirmedAt(t, "90")
	paid := mustApply(t, m, client, Command{Event: EventPay, Amount: dec("90")})
	if _, err := Apply(paid, carrier, Command{Event: EventComplete}, t0); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	if _, err := Apply(awaiting(), carrier, Command{Event: EventComplete}, t0); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("AWAITING -> COMPLETED must be rejected, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// Cancellation
// ---------------------------------------------------------------------------

func TestApply_CancelAfterPayment(t *testing.T) {
	paid := mustApply(t, confirmedAt(t, "90"), client, Command{Event: EventPay, Amount: dec("90")})

	cancelled := mustApply(t, paid, client, Command{Event: EventCancel})
	if cancelled.Status != domain.StatusCancelled || !cancelled.IsPaid {
		t.Fatalf("cancel must keep is-paid: %+v", cancelled)
	}

	if _, err := Apply(cancelled, carrier, Command{Event: EventBegin}, t0); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("begin after cancel: expected ErrInvalidTransition, got %v", err)
	}
	if _, err := Apply(cancelled, client, Command{Event: EventCancel}, t0); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("cancel twice: expected ErrInvalidTransition, got %v", err)
	}
}

func TestApply_CancelByCarrierRejected(t *testing.T) {
	_, err := Apply(awaiting(), carrier, Command{Event: EventCancel}, t0)
	if !errors.Is(err, domain.ErrNotMissionParty) {
		t.Fatalf("expected ErrNotMissionParty, got %v", err)
	}
}

func TestEventForStatus(t *testing.T) {
	if ev, err := EventForStatus("IN_PROGRESS"); err != nil || ev != EventBegin {
		t.Fatalf("IN_PROGRESS: got %s, %v", ev, err)
	}
	if ev, err := EventForStatus("completed"); err != nil || ev != EventComplete {
		t.Fatalf("completed: got %s, %v", ev, err)
	}
	for _, s := range []string{"CANCELLED", "ACCEPTED", "AWAITING", "bogus", ""} {
		if _, err := EventForStatus(s); !errors.Is(err, domain.ErrInvalidStatus) {
			t.Fatalf("%q: expected ErrInvalidStatus, got %v", s, err)
		}
	}
}
