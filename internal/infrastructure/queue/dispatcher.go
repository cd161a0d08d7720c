package queue

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/transporteur/marketplace/internal/api/metrics"
	"github.com/transporteur/marketplace/internal/core/domain"
	"github.com/transporteur/marketplace/internal/core/ports"
)

const (
	defaultWorkers = 8
	channelBuffer  = 256
)

// Dispatcher routes mission events to a fixed set of workers sharded on the
// mission id, guaranteeing per-mission event ordering.
type Dispatcher struct {
	workers   []chan domain.MissionEvent
	processor ports.MissionEventProcessor
	log       zerolog.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, processor ports.MissionEventProcessor, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers:   make([]chan domain.MissionEvent, numWorkers),
		processor: processor,
		log:       log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.MissionEvent, channelBuffer)
	}
	return d
}

var _ ports.EventSink = (*Dispatcher)(nil)

// Start launches all worker goroutines. ctx is handed to the processor; the
// workers themselves run until Shutdown closes their channels.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue hands an event to the worker owning its mission. It never blocks:
// when that worker's buffer is full, or after Shutdown, the event is dropped
// and counted.
func (d *Dispatcher) Enqueue(event domain.MissionEvent) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.drop(event, "dispatcher stopped")
		return
	}
	idx := d.shardIndex(event.MissionID)
	select {
	case d.workers[idx] <- event:
		metrics.EventsQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
	default:
		d.drop(event, "worker queue full")
	}
}

// Shutdown stops accepting events and waits for the workers to drain what is
// already queued, or for ctx to expire.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		for _, ch := range d.workers {
			close(ch)
		}
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// shardIndex maps a mission id deterministically to a worker index.
func (d *Dispatcher) shardIndex(missionID int64) int {
	n := int64(len(d.workers))
	return int(((missionID % n) + n) % n)
}

func (d *Dispatcher) drop(event domain.MissionEvent, reason string) {
	metrics.EventsDroppedTotal.Inc()
	d.log.Warn().
		Int64("mission_id", event.MissionID).
		Str("event", event.Event).
		Str("reason", reason).
		Msg("mission event dropped")
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.MissionEvent) {
	defer d.wg.Done()
	label := strconv.Itoa(id)

	for event := range ch {
		metrics.EventsQueueDepth.WithLabelValues(label).Set(float64(len(ch)))

		start := time.Now()
		err := d.processor.Process(ctx, event)
		metrics.EventProcessingDuration.WithLabelValues(event.Event).Observe(time.Since(start).Seconds())

		if err != nil {
			metrics.EventsErrorsTotal.WithLabelValues(event.Event).Inc()
			d.log.Error().Err(err).
				Int64("mission_id", event.MissionID).
				Str("event", event.Event).
				Int("worker_id", id).
				Msg("event processing failed")
			continue
		}
		metrics.EventsProcessedTotal.WithLabelValues(event.Event).Inc()
	}
}
