package lifecycle

import (
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/transporteur/marketplace/internal/core/domain"
)

// rank orders the non-cancelled statuses along the legal partial order.
var rank = map[domain.MissionStatus]int{
	domain.StatusAwaiting:       0,
	domain.StatusPriceProposed:  1,
	domain.StatusPriceConfirmed: 2,
	domain.StatusAccepted:       3,
	domain.StatusInProgress:     4,
	domain.StatusCompleted:      5,
}

type walkStep struct {
	actor domain.Principal
	cmd   Command
}

func randomStep(r *rand.Rand, m domain.Mission) walkStep {
	actors := []domain.Principal{client, carrier, stranger}
	events := []Event{EventProposePrice, EventUpdatePrice, EventConfirmPrice, EventPay, EventBegin, EventComplete, EventCancel}
	prices := []string{"0", "50", "90", "120", "130"}

	cmd := Command{Event: events[r.IntN(len(events))]}
	cmd.Price = decimal.RequireFromString(prices[r.IntN(len(prices))])
	if cmd.Event == EventPay {
		// Pay the right amount most of the time so walks reach execution.
		if m.ProposedPrice.Valid && r.IntN(4) > 0 {
			cmd.Amount = m.ProposedPrice.Decimal
		} else {
			cmd.Amount = cmd.Price
		}
	}
	return walkStep{actor: actors[r.IntN(len(actors))], cmd: cmd}
}

func TestApply_RandomWalksPreserveInvariants(t *testing.T) {
	r := rand.New(rand.NewPCG(42, 7))

	for walk := 0; walk < 500; walk++ {
		m := awaiting()
		var history []domain.PriceHistory
		paidOnce := false

		for step := 0; step < 40; step++ {
			s := randomStep(r, m)
			wasPaid := m.IsPaid
			res, err := Apply(m, s.actor, s.cmd, t0)
			if err != nil {
				continue
			}
			next := res.Mission

			// Status traversal follows the partial order; CANCELLED from any non-terminal state.
			if next.Status != m.Status {
				require.False(t, m.Status.IsTerminal(), "left terminal status %s", m.Status)
				if next.Status != domain.StatusCancelled {
					assert.Greater(t, rank[next.Status], rank[m.Status], "%s -> %s", m.Status, next.Status)
				}
			}

			// A begin is accepted only when the mission was already paid.
			if s.cmd.Event == EventBegin {
				require.True(t, wasPaid, "begin accepted on unpaid mission")
			}

			// Invariant 1: confirmed implies a price.
			if next.PriceConfirmed {
				require.True(t, next.ProposedPrice.Valid)
			}
			// Invariant 3: in progress implies paid.
			if next.Status == domain.StatusInProgress {
				require.True(t, next.IsPaid)
			}
			// Invariant 4: is-paid never reverts.
			if paidOnce {
				require.True(t, next.IsPaid, "is-paid went back to false")
			}
			if next.IsPaid {
				paidOnce = true
			}
			if next.Status == domain.StatusCompleted {
				require.True(t, paidOnce)
			}
			// Price only moves through propose-price or update-price.
			if s.cmd.Event != EventProposePrice && s.cmd.Event != EventUpdatePrice {
				require.Equal(t, m.ProposedPrice, next.ProposedPrice, "price changed by %s", s.cmd.Event)
			}

			if res.History != nil {
				history = append(history, *res.History)
			}
			m = next
		}

		// Invariant 6: old -> new chain.
		for i := 1; i < len(history); i++ {
			require.True(t, history[i].OldPrice.Decimal.Equal(history[i-1].NewPrice),
				"walk %d: row %d old=%s, previous new=%s", walk, i, history[i].OldPrice.Decimal, history[i-1].NewPrice)
		}
		if len(history) > 0 {
			require.True(t, history[len(history)-1].NewPrice.Equal(m.ProposedPrice.Decimal))
		}
	}
}

func TestApply_CancelAlwaysAcceptedFromNonTerminal(t *testing.T) {
	for _, status := range domain.MissionStatuses {
		m := awaiting()
		m.Status = status
		_, err := Apply(m, client, Command{Event: EventCancel}, t0)
		if status == domain.StatusCompleted || status == domain.StatusCancelled {
			assert.True(t, errors.Is(err, domain.ErrInvalidTransition), "%s: %v", status, err)
			continue
		}
		assert.NoError(t, err, "cancel from %s", status)
	}
}

func TestApply_BeginAcceptedIffPaid(t *testing.T) {
	for _, status := range domain.MissionStatuses {
		for _, paid := range []bool{false, true} {
			m := awaiting()
			m.Status = status
			m.IsPaid = paid
			_, err := Apply(m, carrier, Command{Event: EventBegin}, t0)
			if err == nil {
				assert.True(t, paid, "begin accepted unpaid from %s", status)
				assert.Contains(t, []domain.MissionStatus{domain.StatusAccepted, domain.StatusPriceConfirmed}, status)
			}
			if !paid {
				assert.ErrorIs(t, err, domain.ErrNotPaid)
			}
		}
	}
}
