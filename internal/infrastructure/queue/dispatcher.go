package queue

import (
	"context"
	"errors"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/videotube/account-service/internal/api/metrics"
	"github.com/videotube/account-service/internal/core/domain"
	"github.com/videotube/account-service/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// ErrStopped is returned by Enqueue after the dispatcher has shut down.
var ErrStopped = errors.New("dispatcher stopped")

// Dispatcher routes watch events to a fixed set of workers using consistent
// hashing on the user id, so one user's events are applied in order.
type Dispatcher struct {
	workers []chan domain.WatchEvent
	service ports.WatchService
	log     zerolog.Logger

	wg      sync.WaitGroup
	stopped chan struct{}
	once    sync.Once
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, service ports.WatchService, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan domain.WatchEvent, numWorkers),
		service: service,
		log:     log,
		stopped: make(chan struct{}),
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.WatchEvent, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	d.wg.Add(len(d.workers))
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
	go func() {
		d.wg.Wait()
		d.once.Do(func() { close(d.stopped) })
	}()
}

// Wait blocks until every worker has exited.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Enqueue sends an event to the worker responsible for its user. It blocks
// while that worker's buffer is full, until ctx is done.
func (d *Dispatcher) Enqueue(ctx context.Context, event domain.WatchEvent) error {
	select {
	case <-d.stopped:
		return ErrStopped
	default:
	}

	idx := d.shardIndex(event.UserID)
	select {
	case <-d.stopped:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	case d.workers[idx] <- event:
		metrics.WatchQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
		return nil
	}
}

// shardIndex maps a user id deterministically to a worker index.
func (d *Dispatcher) shardIndex(userID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(userID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.WatchEvent) {
	defer d.wg.Done()
	label := strconv.Itoa(id)

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			metrics.WatchQueueDepth.WithLabelValues(label).Set(float64(len(ch)))
			d.process(ctx, id, event)
		}
	}
}

func (d *Dispatcher) process(ctx context.Context, id int, event domain.WatchEvent) {
	start := time.Now()
	err := d.service.Record(ctx, event)
	elapsed := time.Since(start).Seconds()

	if err != nil {
		metrics.WatchProcessingDuration.WithLabelValues("error").Observe(elapsed)
		reason := "update_failed"
		if errors.Is(err, domain.ErrNotFound) {
			reason = "video_not_found"
		}
		metrics.WatchEventsErrorsTotal.WithLabelValues(reason).Inc()
		d.log.Error().Err(err).
			Str("user_id", event.UserID).
			Str("video_id", event.VideoID).
			Int("worker_id", id).
			Msg("watch event processing failed")
		return
	}

	metrics.WatchProcessingDuration.WithLabelValues("ok").Observe(elapsed)
	metrics.WatchEventsProcessedTotal.Inc()
}
