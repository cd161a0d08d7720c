package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/transporteur/marketplace/internal/core/domain"
	"github.com/transporteur/marketplace/internal/core/lifecycle"
	"github.com/transporteur/marketplace/internal/core/ports"
)

const (
	paidMessage   = "Mission paid"
	unpaidMessage = "Mission not paid"
)

// PaymentService captures the negotiated price and flips the mission to
// ACCEPTED in the same transaction.
type PaymentService struct {
	missions ports.MissionRepository
	gateway  ports.PaymentGateway
	keys     ports.IdempotencyStore
	keyTTL   time.Duration
	notify   notifier
	log      zerolog.Logger
	now      func() time.Time
}

// NewPaymentService wires the payment use cases. keys, events and tracker may be nil;
// without keys the Idempotency-Key header is ignored.
func NewPaymentService(
	missions ports.MissionRepository,
	gateway ports.PaymentGateway,
	keys ports.IdempotencyStore,
	keyTTL time.Duration,
	events ports.EventSink,
	tracker TrackingResetter,
	log zerolog.Logger,
) *PaymentService {
	if keyTTL <= 0 {
		keyTTL = 24 * time.Hour
	}
	return &PaymentService{
		missions: missions,
		gateway:  gateway,
		keys:     keys,
		keyTTL:   keyTTL,
		notify:   notifier{events: events, tracker: tracker, log: log},
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

var _ ports.PaymentService = (*PaymentService)(nil)

// Process pays a mission. If the idempotency key was already used by the same
// client for the same mission, the stored payment is returned without a
// second capture.
func (s *PaymentService) Process(ctx context.Context, p domain.Principal, in ports.ProcessPaymentInput) (*ports.PaymentResult, error) {
	key := s.idempotencyKey(p, in.IdempotencyKey)
	if key != "" {
		replay, err := s.replay(ctx, key, in.MissionID)
		if err != nil || replay != nil {
			return replay, err
		}
	}

	var (
		payment       domain.Payment
		before, after domain.Mission
	)
	now := s.now()

	err := s.missions.WithinTx(ctx, func(tx ports.MissionTx) error {
		m, err := tx.FindMissionForUpdate(ctx, in.MissionID)
		if err != nil {
			return err
		}

		hasPayment := true
		if _, err := tx.FindPaymentByMission(ctx, m.ID); errors.Is(err, domain.ErrPaymentNotFound) {
			hasPayment = false
		} else if err != nil {
			return err
		}

		res, err := lifecycle.Apply(*m, p, lifecycle.Command{
			Event:      lifecycle.EventPay,
			Amount:     in.Amount,
			HasPayment: hasPayment,
		}, now)
		if err != nil {
			return err
		}

		captured, err := s.gateway.Capture(ctx, ports.CaptureRequest{
			MissionID:      m.ID,
			CardNumber:     in.CardNumber,
			CardHolderName: in.CardHolderName,
			ExpiryMonth:    in.ExpiryMonth,
			ExpiryYear:     in.ExpiryYear,
			CVV:            in.CVV,
			Amount:         in.Amount,
		})
		if err != nil {
			return err
		}

		payment = domain.Payment{
			MissionID:      m.ID,
			ClientID:       m.ClientID,
			CarrierID:      m.CarrierID,
			Amount:         in.Amount,
			CardLastFour:   domain.CardLastFour(in.CardNumber),
			CardHolderName: in.CardHolderName,
			TransactionID:  captured.TransactionID,
			Status:         domain.PaymentCompleted,
			PaidAt:         now,
		}
		if err := tx.InsertPayment(ctx, &payment); err != nil {
			return err
		}
		if err := tx.UpdateMission(ctx, &res.Mission); err != nil {
			return fmt.Errorf("pay: update mission: %w", err)
		}
		before, after = *m, res.Mission
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notify.committed(p, lifecycle.EventPay, before, after, now)

	if key != "" {
		if err := s.keys.Remember(ctx, key, strconv.FormatInt(in.MissionID, 10), s.keyTTL); err != nil {
			s.log.Warn().Err(err).Str("idempotency_key", in.IdempotencyKey).Msg("failed to store idempotency key")
		}
	}

	s.log.Info().
		Int64("mission_id", payment.MissionID).
		Str("transaction_id", payment.TransactionID).
		Str("amount", payment.Amount.StringFixed(2)).
		Msg("payment captured")

	return &ports.PaymentResult{Payment: payment}, nil
}

// Status reports the payment state to either party of the mission.
func (s *PaymentService) Status(ctx context.Context, p domain.Principal, missionID int64) (*ports.PaymentStatusView, error) {
	m, err := s.missions.FindMission(ctx, missionID)
	if err != nil {
		return nil, err
	}
	if err := lifecycle.CanView(*m, p).Error(); err != nil {
		return nil, err
	}

	view := &ports.PaymentStatusView{MissionID: m.ID, IsPaid: m.IsPaid}
	if !m.IsPaid {
		view.Amount = m.ProposedPrice
		view.Status = domain.PaymentPending
		view.Message = unpaidMessage
		return view, nil
	}

	payment, err := s.missions.FindPaymentByMission(ctx, m.ID)
	if err != nil {
		return nil, fmt.Errorf("payment status: %w", err)
	}
	view.Amount.Decimal, view.Amount.Valid = payment.Amount, true
	view.Status = payment.Status
	view.Message = paidMessage
	return view, nil
}

func (s *PaymentService) idempotencyKey(p domain.Principal, header string) string {
	if s.keys == nil || header == "" {
		return ""
	}
	return fmt.Sprintf("idem:payment:%d:%s", p.ClientID, header)
}

// replay returns the payment previously recorded under key, nil when the key
// is unseen.
func (s *PaymentService) replay(ctx context.Context, key string, missionID int64) (*ports.PaymentResult, error) {
	stored, ok, err := s.keys.Lookup(ctx, key)
	if err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("idempotency lookup failed, processing anyway")
		return nil, nil
	}
	if !ok {
		return nil, nil
	}
	if stored != strconv.FormatInt(missionID, 10) {
		return nil, fmt.Errorf("%w: mission %s", domain.ErrIdempotencyReuse, stored)
	}

	payment, err := s.missions.FindPaymentByMission(ctx, missionID)
	if err != nil {
		return nil, fmt.Errorf("idempotent replay: %w", err)
	}
	s.log.Info().Str("key", key).Int64("mission_id", missionID).Msg("idempotent replay")
	return &ports.PaymentResult{Payment: *payment, Replayed: true}, nil
}
