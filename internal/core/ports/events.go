package ports

import (
	"context"

	"github.com/transporteur/marketplace/internal/core/domain"
)

// AuditRepository persists the trail of applied lifecycle transitions.
type AuditRepository interface {
	InsertEvent(ctx context.Context, event *domain.MissionEvent) error
	// ListEvents returns the events of a mission, oldest first.
	ListEvents(ctx context.Context, missionID int64) ([]domain.MissionEvent, error)
}

// EventPublisher sends lifecycle events to downstream consumers.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.MissionEvent) error
}

// MissionEventProcessor handles one dequeued lifecycle event.
type MissionEventProcessor interface {
	Process(ctx context.Context, event domain.MissionEvent) error
}

// EventSink accepts lifecycle events after commit. Enqueue must not block the caller.
type EventSink interface {
	Enqueue(event domain.MissionEvent)
}
