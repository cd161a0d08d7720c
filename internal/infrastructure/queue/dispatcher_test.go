package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/transporteur/marketplace/internal/api/metrics"
	"github.com/transporteur/marketplace/internal/core/domain"
)

type recordingProcessor struct {
	mu    sync.Mutex
	seen  map[int64][]string
	fail  string
	block chan struct{}
}

func newRecordingProcessor() *recordingProcessor {
	return &recordingProcessor{seen: make(map[int64][]string)}
}

func (p *recordingProcessor) Process(_ context.Context, ev domain.MissionEvent) error {
	if p.block != nil {
		<-p.block
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.seen[ev.MissionID] = append(p.seen[ev.MissionID], ev.Event)
	if ev.Event == p.fail {
		return errors.New("publish failed")
	}
	return nil
}

func (p *recordingProcessor) events(missionID int64) []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.seen[missionID]...)
}

func event(missionID int64, name string) domain.MissionEvent {
	return domain.MissionEvent{MissionID: missionID, Event: name, OccurredAt: time.Now()}
}

func TestDispatcher_PreservesPerMissionOrder(t *testing.T) {
	proc := newRecordingProcessor()
	d := NewDispatcher(4, proc, zerolog.Nop())
	d.Start(context.Background())

	sequence := []string{"create", "propose-price", "confirm-price", "pay", "begin", "complete"}
	for _, name := range sequence {
		for id := int64(1); id <= 10; id++ {
			d.Enqueue(event(id, name))
		}
	}
	require.NoError(t, d.Shutdown(context.Background()))

	for id := int64(1); id <= 10; id++ {
		assert.Equal(t, sequence, proc.events(id), "mission %d", id)
	}
}

func TestDispatcher_ProcessorErrorDoesNotStopWorker(t *testing.T) {
	proc := newRecordingProcessor()
	proc.fail = "pay"
	d := NewDispatcher(1, proc, zerolog.Nop())
	d.Start(context.Background())

	before := testutil.ToFloat64(metrics.EventsErrorsTotal.WithLabelValues("pay"))
	d.Enqueue(event(5, "pay"))
	d.Enqueue(event(5, "begin"))
	require.NoError(t, d.Shutdown(context.Background()))

	assert.Equal(t, []string{"pay", "begin"}, proc.events(5))
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.EventsErrorsTotal.WithLabelValues("pay")))
}

func TestDispatcher_EnqueueNeverBlocks(t *testing.T) {
	proc := newRecordingProcessor()
	proc.block = make(chan struct{})
	d := NewDispatcher(1, proc, zerolog.Nop())
	d.Start(context.Background())

	before := testutil.ToFloat64(metrics.EventsDroppedTotal)
	done := make(chan struct{})
	go func() {
		// One event is held by the blocked worker, channelBuffer fill the
		// queue, the rest must be dropped.
		for i := 0; i < channelBuffer+10; i++ {
			d.Enqueue(event(1, "propose-price"))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Enqueue blocked on a full queue")
	}
	assert.GreaterOrEqual(t, testutil.ToFloat64(metrics.EventsDroppedTotal)-before, float64(9))

	close(proc.block)
	require.NoError(t, d.Shutdown(context.Background()))
}

func TestDispatcher_EnqueueAfterShutdownDrops(t *testing.T) {
	d := NewDispatcher(2, newRecordingProcessor(), zerolog.Nop())
	d.Start(context.Background())
	require.NoError(t, d.Shutdown(context.Background()))
	require.NoError(t, d.Shutdown(context.Background()))

	before := testutil.ToFloat64(metrics.EventsDroppedTotal)
	d.Enqueue(event(1, "cancel"))
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.EventsDroppedTotal))
}

func TestDispatcher_ShutdownHonoursDeadline(t *testing.T) {
	proc := newRecordingProcessor()
	proc.block = make(chan struct{})
	d := NewDispatcher(1, proc, zerolog.Nop())
	d.Start(context.Background())
	d.Enqueue(event(1, "create"))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, d.Shutdown(ctx), context.DeadlineExceeded)

	close(proc.block)
}

func TestDispatcher_ShardIndex(t *testing.T) {
	d := NewDispatcher(0, newRecordingProcessor(), zerolog.Nop())
	assert.Len(t, d.workers, defaultWorkers)
	assert.Equal(t, d.shardIndex(3), d.shardIndex(3+defaultWorkers))
	assert.Equal(t, 3, d.shardIndex(-5))
}
