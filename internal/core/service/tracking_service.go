package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/transporteur/marketplace/internal/core/domain"
	"github.com/transporteur/marketplace/internal/core/ports"
	"github.com/transporteur/marketplace/internal/core/tracking"
)

// Locator is the position source behind TrackingService.
type Locator interface {
	Locate(missionID int64, status domain.MissionStatus) tracking.Location
}

// TrackingService reads the mission status and asks the interpolator for a position.
type TrackingService struct {
	missions ports.MissionRepository
	locator  Locator
	log      zerolog.Logger
}

func NewTrackingService(missions ports.MissionRepository, locator Locator, log zerolog.Logger) *TrackingService {
	return &TrackingService{missions: missions, locator: locator, log: log}
}

var _ ports.TrackingService = (*TrackingService)(nil)

// Location never fails on a store error: it degrades to a position without
// coordinates. An unknown mission is still reported as such.
func (s *TrackingService) Location(ctx context.Context, missionID int64) (*tracking.Location, error) {
	m, err := s.missions.FindMission(ctx, missionID)
	if errors.Is(err, domain.ErrMissionNotFound) {
		return nil, err
	}
	if err != nil {
		s.log.Warn().Err(err).Int64("mission_id", missionID).Msg("tracking lookup failed")
		return &tracking.Location{MissionID: missionID, Timestamp: time.Now().UTC()}, nil
	}

	loc := s.locator.Locate(m.ID, m.Status)
	return &loc, nil
}
