package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/transporteur/marketplace/internal/core/domain"
)

func sampleEvent() domain.MissionEvent {
	return domain.MissionEvent{
		MissionID:  42,
		Event:      "pay",
		From:       domain.StatusPriceConfirmed,
		To:         domain.StatusAccepted,
		ActorEmail: "amira@example.com",
		ActorRole:  domain.RoleClient,
		Price:      decimal.NewNullDecimal(decimal.NewFromInt(120)),
		IsPaid:     true,
		OccurredAt: time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC),
	}
}

func TestPublisher_Publish(t *testing.T) {
	producer := mocks.NewSyncProducer(t, mocks.NewTestConfig())
	producer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		var got domain.MissionEvent
		if err := json.Unmarshal(val, &got); err != nil {
			return err
		}
		if got.MissionID != 42 || got.To != domain.StatusAccepted {
			return errors.New("unexpected payload")
		}
		return nil
	})

	pub := NewPublisher(producer, "mission-events", zerolog.Nop())
	require.NoError(t, pub.Publish(context.Background(), sampleEvent()))
	require.NoError(t, pub.Close())
}

func TestPublisher_Publish_BrokerError(t *testing.T) {
	producer := mocks.NewSyncProducer(t, mocks.NewTestConfig())
	producer.ExpectSendMessageAndFail(sarama.ErrNotLeaderForPartition)

	pub := NewPublisher(producer, "mission-events", zerolog.Nop())
	err := pub.Publish(context.Background(), sampleEvent())
	assert.ErrorIs(t, err, sarama.ErrNotLeaderForPartition)
	require.NoError(t, pub.Close())
}

func TestPublisher_Publish_CancelledContext(t *testing.T) {
	producer := mocks.NewSyncProducer(t, mocks.NewTestConfig())
	pub := NewPublisher(producer, "mission-events", zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, pub.Publish(ctx, sampleEvent()), context.Canceled)
	require.NoError(t, pub.Close())
}
