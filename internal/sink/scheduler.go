package sink

import (
	"context"
	"sync"
	"time"

	"github.com/logtide/logtide/internal/event"
	"github.com/logtide/logtide/internal/logging"
	"github.com/logtide/logtide/internal/metrics"
)

// FlushFunc drains one cycle of events. It returns the events that were not
// persisted (to be requeued) together with the error that stopped the cycle.
type FlushFunc func(ctx context.Context, events []event.Event) ([]event.Event, error)

// Scheduler owns the pending queue between producers and the flush cycle.
// Submit appends under a mutex and never touches the backend; the flush
// goroutine swaps the queue out atomically so producers are not blocked by an
// in-progress flush. Exactly one flush runs at a time: ticker ticks and
// threshold triggers both land in the single run loop, and extra triggers
// coalesce in a buffered channel.
//
// Failure policy: when a cycle fails, its unwritten events are pushed back to
// the front of the queue and retried on the next cycle (at-least-once
// delivery). The failed cycle's remaining sub-batches are not attempted.
type Scheduler struct {
	period    time.Duration
	threshold int
	flush     FlushFunc
	logger    *logging.Logger

	mu      sync.Mutex
	pending []event.Event
	closed  bool

	// flush cycle stats, guarded by mu
	cycles       int64
	failedCycles int64
	lastFlush    time.Time

	triggerCh chan struct{}
	stopCh    chan struct{}
	doneCh    chan struct{}
}

// NewScheduler creates a scheduler. Call Start to begin the flush loop.
func NewScheduler(period time.Duration, threshold int, flush FlushFunc, logger *logging.Logger) *Scheduler {
	return &Scheduler{
		period:    period,
		threshold: threshold,
		flush:     flush,
		logger:    logger.With("component", "sink.scheduler"),
		triggerCh: make(chan struct{}, 1),
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
}

// Start launches the background flush loop
func (s *Scheduler) Start() {
	go s.run()
	s.logger.Info("Scheduler started",
		"period", s.period,
		"flush_threshold", s.threshold)
}

// Submit enqueues an event. Non-blocking and safe for concurrent producers;
// it never performs backend I/O. Returns ErrClosed after shutdown began.
func (s *Scheduler) Submit(ev event.Event) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.pending = append(s.pending, ev)
	n := len(s.pending)
	s.mu.Unlock()

	metrics.EventsSubmitted.Inc()
	metrics.PendingEvents.Set(float64(n))

	if n >= s.threshold {
		s.trigger()
	}
	return nil
}

// trigger requests a flush; a pending trigger already covers this request
func (s *Scheduler) trigger() {
	select {
	case s.triggerCh <- struct{}{}:
	default:
	}
}

// run is the flush loop. Timer ticks and threshold triggers are serialized
// here, so flushes are never concurrent.
func (s *Scheduler) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.period)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.runFlush(context.Background())
		case <-s.triggerCh:
			s.runFlush(context.Background())
		}
	}
}

// runFlush swaps out the pending queue and hands it to the flush callback
func (s *Scheduler) runFlush(ctx context.Context) error {
	s.mu.Lock()
	batch := s.pending
	s.pending = nil
	s.mu.Unlock()

	if len(batch) == 0 {
		return nil
	}

	start := time.Now()
	requeue, err := s.flush(ctx, batch)
	metrics.FlushDuration.Observe(time.Since(start).Seconds())

	s.mu.Lock()
	s.cycles++
	s.lastFlush = time.Now()
	if err != nil {
		s.failedCycles++
		// Unwritten events go back to the front, ahead of anything submitted
		// during the flush, preserving FIFO order end-to-end.
		restored := make([]event.Event, 0, len(requeue)+len(s.pending))
		restored = append(restored, requeue...)
		restored = append(restored, s.pending...)
		s.pending = restored
	}
	n := len(s.pending)
	s.mu.Unlock()

	metrics.PendingEvents.Set(float64(n))
	if err != nil {
		metrics.EventsRequeued.Add(float64(len(requeue)))
		s.logger.Error("Flush cycle failed, unwritten events requeued",
			"drained", len(batch),
			"requeued", len(requeue),
			"error", err)
		return err
	}

	s.logger.Debug("Flush cycle completed",
		"events", len(batch),
		"duration_ms", time.Since(start).Milliseconds())
	return nil
}

// Shutdown stops the timer, performs one final flush of any queued events and
// waits for its backend calls to finish. The final flush's error is returned,
// never swallowed. Subsequent Submit calls fail with ErrClosed.
func (s *Scheduler) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.closed = true
	s.mu.Unlock()

	close(s.stopCh)
	select {
	case <-s.doneCh:
	case <-ctx.Done():
		return ctx.Err()
	}

	// The loop has exited, so this final flush cannot race another one
	return s.runFlush(ctx)
}

// Stats returns scheduler statistics
func (s *Scheduler) Stats() map[string]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := map[string]interface{}{
		"pending":       len(s.pending),
		"cycles":        s.cycles,
		"failed_cycles": s.failedCycles,
		"period":        s.period.String(),
		"threshold":     s.threshold,
	}
	if !s.lastFlush.IsZero() {
		stats["last_flush"] = s.lastFlush.Format(time.RFC3339)
	}
	return stats
}
