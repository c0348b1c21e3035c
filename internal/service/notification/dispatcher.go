package notification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/notification"
	"github.com/google/uuid"
)

// Config holds dispatcher configuration
type Config struct {
	WorkerCount int           // default: 2
	QueueSize   int           // default: 1000
	MaxAttempts int           // default: 3
	BaseBackoff time.Duration // default: 1 second
	MaxBackoff  time.Duration // default: 30 seconds
	TaskTimeout time.Duration // default: 30 seconds
}

type dispatcher struct {
	config Config

	queue  chan notification.Task
	wg     sync.WaitGroup
	stopCh chan struct{}

	mu      sync.RWMutex
	stopped bool

	enqueued  atomic.Uint64
	delivered atomic.Uint64
	retried   atomic.Uint64
	failed    atomic.Uint64
	dropped   atomic.Uint64
}

// NewDispatcher creates a dispatcher and starts its workers
func NewDispatcher(cfg Config) notification.Dispatcher {
	// Set defaults
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 2
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 1000
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.BaseBackoff <= 0 {
		cfg.BaseBackoff = time.Second
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = 30 * time.Second
	}
	if cfg.TaskTimeout <= 0 {
		cfg.TaskTimeout = 30 * time.Second
	}

	d := &dispatcher{
		config: cfg,
		queue:  make(chan notification.Task, cfg.QueueSize),
		stopCh: make(chan struct{}),
	}

	// Start background workers
	for i := 0; i < cfg.WorkerCount; i++ {
		d.wg.Add(1)
		go d.worker(i)
	}

	slog.Info("Notification dispatcher started",
		"workers", cfg.WorkerCount,
		"queue_size", cfg.QueueSize,
		"max_attempts", cfg.MaxAttempts,
	)

	return d
}

// Enqueue implements notification.Dispatcher.
func (d *dispatcher) Enqueue(task notification.Task) error {
	if task.Run == nil {
		return fmt.Errorf("task %q has no Run function", task.Subject)
	}
	if task.ID == "" {
		task.ID = uuid.NewString()
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.stopped {
		d.dropped.Add(1)
		return notification.ErrDispatcherStopped
	}

	select {
	case d.queue <- task:
		d.enqueued.Add(1)
		return nil
	default:
		d.dropped.Add(1)
		slog.Warn("Notification queue full, dropping task",
			"task_id", task.ID,
			"channel", task.Channel,
			"subject", task.Subject,
		)
		return notification.ErrQueueFull
	}
}

// Stats implements notification.Dispatcher.
func (d *dispatcher) Stats() notification.Stats {
	return notification.Stats{
		Enqueued:  d.enqueued.Load(),
		Delivered: d.delivered.Load(),
		Retried:   d.retried.Load(),
		Failed:    d.failed.Load(),
		Dropped:   d.dropped.Load(),
		Pending:   len(d.queue),
	}
}

// Stop implements notification.Dispatcher. Tasks already queued get their
// current attempt; retries still waiting on backoff are abandoned.
func (d *dispatcher) Stop() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.stopped = true
	close(d.stopCh)
	close(d.queue)
	d.mu.Unlock()

	d.wg.Wait()
	slog.Info("Notification dispatcher stopped",
		"delivered", d.delivered.Load(),
		"failed", d.failed.Load(),
		"dropped", d.dropped.Load(),
	)
}

// worker consumes the queue until it is closed and drained
func (d *dispatcher) worker(id int) {
	defer d.wg.Done()

	for task := range d.queue {
		d.process(id, task)
	}
}

func (d *dispatcher) process(workerID int, task notification.Task) {
	for attempt := 1; ; attempt++ {
		err := d.run(task)
		if err == nil {
			d.delivered.Add(1)
			slog.Debug("Notification task delivered",
				"worker", workerID,
				"task_id", task.ID,
				"channel", task.Channel,
				"attempt", attempt,
			)
			return
		}

		if notification.IsPermanent(err) || attempt >= d.config.MaxAttempts {
			d.failed.Add(1)
			slog.Error("Notification task failed",
				"worker", workerID,
				"task_id", task.ID,
				"channel", task.Channel,
				"subject", task.Subject,
				"attempts", attempt,
				"error", err,
			)
			return
		}

		wait := d.backoff(attempt)
		slog.Warn("Notification task failed, retrying",
			"worker", workerID,
			"task_id", task.ID,
			"channel", task.Channel,
			"attempt", attempt,
			"retry_in", wait,
			"error", err,
		)

		timer := time.NewTimer(wait)
		select {
		case <-timer.C:
			d.retried.Add(1)
		case <-d.stopCh:
			timer.Stop()
			d.failed.Add(1)
			slog.Warn("Dispatcher stopping, abandoning retry", "task_id", task.ID, "channel", task.Channel)
			return
		}
	}
}

// run executes one attempt with a timeout, turning panics into permanent failures.
func (d *dispatcher) run(task notification.Task) (err error) {
	ctx, cancel := context.WithTimeout(context.Background(), d.config.TaskTimeout)
	defer cancel()

	defer func() {
		if p := recover(); p != nil {
			err = notification.Permanent(fmt.Errorf("task panicked: %v", p))
		}
	}()

	err = task.Run(ctx)
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("task timed out after %s: %w", d.config.TaskTimeout, err)
	}
	return err
}

// backoff doubles the base delay per attempt, capped at MaxBackoff
func (d *dispatcher) backoff(attempt int) time.Duration {
	wait := d.config.BaseBackoff << (attempt - 1)
	if wait <= 0 || wait > d.config.MaxBackoff {
		return d.config.MaxBackoff
	}
	return wait
}
