package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/transporteur/marketplace/internal/core/domain"
	"github.com/transporteur/marketplace/internal/core/tracking"
)

func TestTrackingService_Location(t *testing.T) {
	repo := newStubMissionRepo()
	repo.seed(missionIn(domain.StatusInProgress))
	interp := tracking.NewInterpolator(0, tracking.WithClock(fixedClock))

	svc := NewTrackingService(repo, interp, zerolog.Nop())
	loc, err := svc.Location(context.Background(), 7)
	if err != nil {
		t.Fatalf("Location: %v", err)
	}
	if loc.Latitude == nil || *loc.Latitude != tracking.LatStart || loc.ProgressPercentage != 0 {
		t.Errorf("expected trip start, got %+v", loc)
	}
	if loc.Status != domain.StatusInProgress {
		t.Errorf("unexpected status %s", loc.Status)
	}
}

func TestTrackingService_NotInProgress(t *testing.T) {
	repo := newStubMissionRepo()
	repo.seed(missionIn(domain.StatusAccepted))

	svc := NewTrackingService(repo, tracking.NewInterpolator(0), zerolog.Nop())
	loc, err := svc.Location(context.Background(), 7)
	if err != nil {
		t.Fatalf("Location: %v", err)
	}
	if loc.Latitude != nil || loc.Longitude != nil || loc.Speed != 0 {
		t.Errorf("expected no coordinates, got %+v", loc)
	}
}

func TestTrackingService_UnknownMission(t *testing.T) {
	svc := NewTrackingService(newStubMissionRepo(), tracking.NewInterpolator(0), zerolog.Nop())
	if _, err := svc.Location(context.Background(), 404); !errors.Is(err, domain.ErrMissionNotFound) {
		t.Fatalf("expected ErrMissionNotFound, got %v", err)
	}
}

func TestTrackingService_StoreFailureDegrades(t *testing.T) {
	repo := newStubMissionRepo()
	repo.findErr = errBoom

	svc := NewTrackingService(repo, tracking.NewInterpolator(0), zerolog.Nop())
	loc, err := svc.Location(context.Background(), 7)
	if err != nil {
		t.Fatalf("expected degraded response, got %v", err)
	}
	if loc.Latitude != nil || loc.MissionID != 7 {
		t.Errorf("unexpected degraded location: %+v", loc)
	}
}
