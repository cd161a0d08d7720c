package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/transporteur/marketplace/internal/core/domain"
	"github.com/transporteur/marketplace/internal/core/lifecycle"
	"github.com/transporteur/marketplace/internal/core/ports"
)

// MissionService orchestrates lifecycle events against the mission store.
// Every mutation loads the mission for update, applies the lifecycle engine
// and writes the result inside one transaction.
type MissionService struct {
	missions ports.MissionRepository
	accounts ports.AccountRepository
	notify   notifier
	now      func() time.Time
}

// NewMissionService wires the mission use cases. events and tracker may be nil.
func NewMissionService(
	missions ports.MissionRepository,
	accounts ports.AccountRepository,
	events ports.EventSink,
	tracker TrackingResetter,
	log zerolog.Logger,
) *MissionService {
	return &MissionService{
		missions: missions,
		accounts: accounts,
		notify:   notifier{events: events, tracker: tracker, log: log},
		now:      func() time.Time { return time.Now().UTC() },
	}
}

var _ ports.MissionService = (*MissionService)(nil)

func (s *MissionService) AvailableCarriers(ctx context.Context) ([]domain.Carrier, error) {
	return s.accounts.ListAvailableCarriers(ctx)
}

// Create opens a mission in AWAITING for the calling client.
func (s *MissionService) Create(ctx context.Context, p domain.Principal, in ports.CreateMissionInput) (*ports.MissionDetail, error) {
	var created domain.Mission
	err := s.missions.WithinTx(ctx, func(tx ports.MissionTx) error {
		carrier, err := tx.FindCarrier(ctx, in.CarrierID)
		if err != nil {
			return err
		}
		m, err := lifecycle.NewMission(p, *carrier, lifecycle.MissionRequest{
			CarrierID:   in.CarrierID,
			ScheduledAt: in.ScheduledAt,
			Origin:      in.Origin,
			Destination: in.Destination,
			Description: in.Description,
		}, s.now())
		if err != nil {
			return err
		}
		if err := tx.InsertMission(ctx, &m); err != nil {
			return fmt.Errorf("create mission: %w", err)
		}
		created = m
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notify.committed(p, lifecycle.EventCreate, domain.Mission{}, created, created.CreatedAt)
	return s.detail(ctx, created.ID)
}

func (s *MissionService) ListForClient(ctx context.Context, p domain.Principal) ([]ports.MissionDetail, error) {
	if p.Role != domain.RoleClient || p.ClientID == 0 {
		return nil, fmt.Errorf("%w: client profile required", domain.ErrForbidden)
	}
	missions, err := s.missions.ListMissionsByClient(ctx, p.ClientID)
	if err != nil {
		return nil, err
	}
	return s.withHistory(ctx, missions)
}

func (s *MissionService) ListForCarrier(ctx context.Context, p domain.Principal) ([]ports.MissionDetail, error) {
	if p.Role != domain.RoleCarrier || p.CarrierID == 0 {
		return nil, fmt.Errorf("%w: carrier profile required", domain.ErrForbidden)
	}
	missions, err := s.missions.ListMissionsByCarrier(ctx, p.CarrierID)
	if err != nil {
		return nil, err
	}
	return s.withHistory(ctx, missions)
}

// Get returns a mission to its client or its carrier.
func (s *MissionService) Get(ctx context.Context, p domain.Principal, id int64) (*ports.MissionDetail, error) {
	m, err := s.missions.FindMission(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := lifecycle.CanView(*m, p).Error(); err != nil {
		return nil, err
	}
	history, err := s.missions.ListPriceHistory(ctx, id)
	if err != nil {
		return nil, err
	}
	return &ports.MissionDetail{Mission: *m, PriceHistory: history}, nil
}

func (s *MissionService) UpdateStatus(ctx context.Context, p domain.Principal, id int64, status string) (*ports.MissionDetail, error) {
	ev, err := lifecycle.EventForStatus(status)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, p, id, lifecycle.Command{Event: ev})
}

func (s *MissionService) Cancel(ctx context.Context, p domain.Principal, id int64) (*ports.MissionDetail, error) {
	return s.transition(ctx, p, id, lifecycle.Command{Event: lifecycle.EventCancel})
}

func (s *MissionService) ProposePrice(ctx context.Context, p domain.Principal, id int64, price decimal.Decimal) (*ports.MissionDetail, error) {
	return s.transition(ctx, p, id, lifecycle.Command{Event: lifecycle.EventProposePrice, Price: price})
}

func (s *MissionService) ConfirmPrice(ctx context.Context, p domain.Principal, id int64) (*ports.MissionDetail, error) {
	return s.transition(ctx, p, id, lifecycle.Command{Event: lifecycle.EventConfirmPrice})
}

func (s *MissionService) UpdatePrice(ctx context.Context, p domain.Principal, id int64, price decimal.Decimal, reason string) (*ports.MissionDetail, error) {
	return s.transition(ctx, p, id, lifecycle.Command{Event: lifecycle.EventUpdatePrice, Price: price, Reason: reason})
}

// CarrierContact is only disclosed to the client that owns the mission.
func (s *MissionService) CarrierContact(ctx context.Context, p domain.Principal, id int64) (*ports.CarrierContact, error) {
	m, err := s.missions.FindMission(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.IsClient(m.ClientID) {
		return nil, fmt.Errorf("%w: only the client of mission %d can see the carrier contact", domain.ErrNotMissionParty, id)
	}
	carrier, err := s.accounts.FindCarrier(ctx, m.CarrierID)
	if err != nil {
		return nil, err
	}
	return &ports.CarrierContact{
		CarrierID: carrier.ID,
		Name:      carrier.Name,
		Surname:   carrier.Surname,
		Phone:     carrier.Phone,
	}, nil
}

// transition runs one lifecycle event. The history row is written before the
// mission update so the stored old price is the value seen under the lock.
func (s *MissionService) transition(ctx context.Context, p domain.Principal, id int64, cmd lifecycle.Command) (*ports.MissionDetail, error) {
	var before, after domain.Mission
	now := s.now()

	err := s.missions.WithinTx(ctx, func(tx ports.MissionTx) error {
		m, err := tx.FindMissionForUpdate(ctx, id)
		if err != nil {
			return err
		}
		res, err := lifecycle.Apply(*m, p, cmd, now)
		if err != nil {
			return err
		}
		if res.History != nil {
			if err := tx.InsertPriceHistory(ctx, res.History); err != nil {
				return fmt.Errorf("%s: insert price history: %w", cmd.Event, err)
			}
		}
		if err := tx.UpdateMission(ctx, &res.Mission); err != nil {
			return fmt.Errorf("%s: update mission: %w", cmd.Event, err)
		}
		before, after = *m, res.Mission
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notify.committed(p, cmd.Event, before, after, now)
	return s.detail(ctx, id)
}

func (s *MissionService) detail(ctx context.Context, id int64) (*ports.MissionDetail, error) {
	m, err := s.missions.FindMission(ctx, id)
	if err != nil {
		return nil, err
	}
	history, err := s.missions.ListPriceHistory(ctx, id)
	if err != nil {
		return nil, err
	}
	return &ports.MissionDetail{Mission: *m, PriceHistory: history}, nil
}

func (s *MissionService) withHistory(ctx context.Context, missions []domain.Mission) ([]ports.MissionDetail, error) {
	out := make([]ports.MissionDetail, 0, len(missions))
	for _, m := range missions {
		history, err := s.missions.ListPriceHistory(ctx, m.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, ports.MissionDetail{Mission: m, PriceHistory: history})
	}
	return out, nil
}
