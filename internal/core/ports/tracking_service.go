package ports

import (
	"context"

	"github.com/transporteur/marketplace/internal/core/tracking"
)

// TrackingService serves simulated positions.
type TrackingService interface {
	Location(ctx context.Context, missionID int64) (*tracking.Location, error)
}
