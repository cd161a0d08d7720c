package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/transporteur/marketplace/internal/core/domain"
	"github.com/transporteur/marketplace/internal/core/ports"
)

const eventDedupTTL = time.Hour

type eventService struct {
	audit     ports.AuditRepository
	publisher ports.EventPublisher
	dedup     ports.IdempotencyStore
	log       zerolog.Logger
}

// NewEventService returns the processor for committed lifecycle events.
// Any of audit, publisher and dedup may be nil.
func NewEventService(
	audit ports.AuditRepository,
	publisher ports.EventPublisher,
	dedup ports.IdempotencyStore,
	log zerolog.Logger,
) ports.MissionEventProcessor {
	return &eventService{
		audit:     audit,
		publisher: publisher,
		dedup:     dedup,
		log:       log,
	}
}

// Process records one lifecycle event in the audit trail and publishes it.
// A failed audit insert is logged and skipped; a failed publish is returned.
func (s *eventService) Process(ctx context.Context, ev domain.MissionEvent) error {
	key := dedupKey(ev)

	// 1. Idempotency check: skip events already handled.
	if s.dedup != nil {
		_, seen, err := s.dedup.Lookup(ctx, key)
		if err != nil {
			s.log.Warn().Err(err).Int64("mission_id", ev.MissionID).Msg("dedup check failed, processing anyway")
		} else if seen {
			s.log.Debug().Int64("mission_id", ev.MissionID).Str("event", ev.Event).Msg("duplicate event skipped")
			return nil
		}
	}

	// 2. Audit trail (non-fatal on failure).
	if s.audit != nil {
		if err := s.audit.InsertEvent(ctx, &ev); err != nil {
			s.log.Warn().Err(err).Int64("mission_id", ev.MissionID).Msg("failed to insert audit event")
		}
	}

	// 3. Downstream stream.
	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, ev); err != nil {
			return fmt.Errorf("process event: publish: %w", err)
		}
	}

	// 4. Mark as processed once every sink has accepted it.
	if s.dedup != nil {
		if err := s.dedup.Remember(ctx, key, string(ev.To), eventDedupTTL); err != nil {
			s.log.Warn().Err(err).Int64("mission_id", ev.MissionID).Msg("failed to set dedup key")
		}
	}

	s.log.Debug().
		Int64("mission_id", ev.MissionID).
		Str("event", ev.Event).
		Str("to", string(ev.To)).
		Msg("event processed")

	return nil
}

func dedupKey(ev domain.MissionEvent) string {
	return fmt.Sprintf("dedup:mission:%d:%s:%d", ev.MissionID, ev.Event, ev.OccurredAt.UnixNano())
}
