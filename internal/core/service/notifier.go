package service

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/transporteur/marketplace/internal/core/domain"
	"github.com/transporteur/marketplace/internal/core/lifecycle"
	"github.com/transporteur/marketplace/internal/core/ports"
)

// TrackingResetter drops the simulated trip of a mission.
type TrackingResetter interface {
	Forget(missionID int64)
}

// notifier runs the side effects of a committed transition. Both collaborators
// are optional.
type notifier struct {
	events  ports.EventSink
	tracker TrackingResetter
	log     zerolog.Logger
}

func (n notifier) committed(p domain.Principal, ev lifecycle.Event, before, after domain.Mission, at time.Time) {
	if n.tracker != nil && after.Status.IsTerminal() {
		n.tracker.Forget(after.ID)
	}

	n.log.Info().
		Int64("mission_id", after.ID).
		Str("event", string(ev)).
		Str("from", string(before.Status)).
		Str("to", string(after.Status)).
		Str("actor", p.Email).
		Msg("mission transition committed")

	if n.events == nil {
		return
	}
	n.events.Enqueue(domain.MissionEvent{
		MissionID:  after.ID,
		Event:      string(ev),
		From:       before.Status,
		To:         after.Status,
		ActorEmail: p.Email,
		ActorRole:  p.Role,
		Price:      after.ProposedPrice,
		IsPaid:     after.IsPaid,
		OccurredAt: at,
	})
}
