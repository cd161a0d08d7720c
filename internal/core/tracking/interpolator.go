// Package tracking simulates a GPS feed for missions in progress by linear
// interpolation between two fixed points over a configurable trip duration.
//
// Start times live in process memory only; a restart resets every trip.
package tracking

import (
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/transporteur/marketplace/internal/core/domain"
)

const (
	LatStart = 35.669948
	LonStart = 10.591675
	LatEnd   = 35.522941
	LonEnd   = 11.031608

	DefaultTripDuration = 5 * time.Minute

	minSpeedKmh = 50.0
	maxSpeedKmh = 80.0
)

// Location is a simulated position. Latitude and Longitude are nil when the
// mission is not in progress. Speed is zero once the truck has arrived.
type Location struct {
	MissionID          int64
	Latitude           *float64
	Longitude          *float64
	Timestamp          time.Time
	ProgressPercentage int
	Speed              float64
	Status             domain.MissionStatus
}

// Option configures an Interpolator.
type Option func(*Interpolator)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(i *Interpolator) { i.now = now }
}

// WithSpeed replaces the uniform [50, 80] km/h speed sampler.
func WithSpeed(speed func() float64) Option {
	return func(i *Interpolator) { i.speed = speed }
}

// Interpolator maps a mission's elapsed execution time to a position.
// Entries are only created, read and removed; never mutated in place.
type Interpolator struct {
	trip  time.Duration
	now   func() time.Time
	speed func() float64

	mu      sync.Mutex
	started map[int64]time.Time
}

// NewInterpolator returns an Interpolator for trips lasting trip.
// If trip <= 0, DefaultTripDuration is used.
func NewInterpolator(trip time.Duration, opts ...Option) *Interpolator {
	if trip <= 0 {
		trip = DefaultTripDuration
	}
	i := &Interpolator{
		trip:    trip,
		now:     time.Now,
		speed:   func() float64 { return minSpeedKmh + rand.Float64()*(maxSpeedKmh-minSpeedKmh) },
		started: make(map[int64]time.Time),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// TripDuration returns the configured simulated trip length.
func (i *Interpolator) TripDuration() time.Duration { return i.trip }

// Locate returns the simulated position of a mission with the given status.
// The first call for an IN_PROGRESS mission starts its trip.
func (i *Interpolator) Locate(missionID int64, status domain.MissionStatus) Location {
	now := i.now()
	loc := Location{MissionID: missionID, Timestamp: now, Status: status}

	if status != domain.StatusInProgress {
		if status.IsTerminal() {
			i.Forget(missionID)
		}
		return loc
	}

	started := i.startedAt(missionID, now)

	ratio := float64(now.Sub(started)) / float64(i.trip)
	ratio = math.Max(0, math.Min(1, ratio))

	lat := LatStart + ratio*(LatEnd-LatStart)
	lon := LonStart + ratio*(LonEnd-LonStart)
	loc.Latitude = &lat
	loc.Longitude = &lon
	loc.ProgressPercentage = int(math.Floor(ratio * 100))
	if ratio < 1 {
		loc.Speed = i.speed()
	}
	return loc
}

func (i *Interpolator) startedAt(missionID int64, now time.Time) time.Time {
	i.mu.Lock()
	defer i.mu.Unlock()
	if t, ok := i.started[missionID]; ok {
		return t
	}
	i.started[missionID] = now
	return now
}

// Forget drops the trip of a mission, e.g. once it is completed or cancelled.
func (i *Interpolator) Forget(missionID int64) {
	i.mu.Lock()
	delete(i.started, missionID)
	i.mu.Unlock()
}

// Sweep removes trips started more than twice the trip duration ago and
// returns how many were removed.
func (i *Interpolator) Sweep() int {
	cutoff := i.now().Add(-2 * i.trip)

	i.mu.Lock()
	defer i.mu.Unlock()
	removed := 0
	for id, t := range i.started {
		if t.Before(cutoff) {
			delete(i.started, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked trips.
func (i *Interpolator) Len() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return len(i.started)
}
