package cron

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// ErrJobRunning is returned by RunNow when the job is already executing.
var ErrJobRunning = errors.New("job is already running")

// Job represents a scheduled job
type Job struct {
	Name     string
	Interval time.Duration
	Timeout  time.Duration
	Fn       func(ctx context.Context) error

	running atomic.Bool
}

// Scheduler runs named jobs on fixed intervals. A job never overlaps with
// itself: a tick that arrives while the previous run is still going is skipped.
type Scheduler struct {
	jobs    map[string]*Job
	order   []string
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.Mutex
	started bool
}

// NewScheduler creates a new cron scheduler
func NewScheduler() *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		jobs:   make(map[string]*Job),
		ctx:    ctx,
		cancel: cancel,
	}
}

// AddJob adds a job to the scheduler. A zero timeout defaults to the interval.
func (s *Scheduler) AddJob(name string, interval, timeout time.Duration, fn func(ctx context.Context) error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if timeout <= 0 {
		timeout = interval
	}
	job := &Job{
		Name:     name,
		Interval: interval,
		Timeout:  timeout,
		Fn:       fn,
	}
	if _, exists := s.jobs[name]; !exists {
		s.order = append(s.order, name)
	}
	s.jobs[name] = job

	if s.started {
		s.wg.Add(1)
		go s.runJob(job)
	}
	slog.Info("Cron job registered", "name", name, "interval", interval)
}

// Start begins running all scheduled jobs
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return
	}
	s.started = true

	for _, name := range s.order {
		s.wg.Add(1)
		go s.runJob(s.jobs[name])
	}

	slog.Info("Cron scheduler started", "job_count", len(s.jobs))
}

// Stop gracefully stops all scheduled jobs
func (s *Scheduler) Stop() {
	slog.Info("Stopping cron scheduler...")
	s.cancel()
	s.wg.Wait()
	slog.Info("Cron scheduler stopped")
}

// RunNow executes the named job synchronously on the caller's context.
func (s *Scheduler) RunNow(ctx context.Context, name string) error {
	s.mu.Lock()
	job, ok := s.jobs[name]
	s.mu.Unlock()

	if !ok {
		return fmt.Errorf("unknown cron job %q", name)
	}
	if !job.running.CompareAndSwap(false, true) {
		return ErrJobRunning
	}
	defer job.running.Store(false)

	return s.call(ctx, job)
}

// runJob runs a single job on its schedule
func (s *Scheduler) runJob(job *Job) {
	defer s.wg.Done()

	ticker := time.NewTicker(job.Interval)
	defer ticker.Stop()

	// Run immediately on start
	s.executeJob(job)

	for {
		select {
		case <-s.ctx.Done():
			slog.Info("Cron job stopping", "name", job.Name)
			return
		case <-ticker.C:
			s.executeJob(job)
		}
	}
}

// executeJob executes a job and logs results
func (s *Scheduler) executeJob(job *Job) {
	if !job.running.CompareAndSwap(false, true) {
		slog.Debug("Cron job still running, skipping tick", "name", job.Name)
		return
	}
	defer job.running.Store(false)

	if err := s.call(s.ctx, job); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("Cron job failed", "name", job.Name, "error", err)
	}
}

func (s *Scheduler) call(parent context.Context, job *Job) error {
	ctx, cancel := context.WithTimeout(parent, job.Timeout)
	defer cancel()

	start := time.Now()
	slog.Debug("Cron job starting", "name", job.Name)

	err := job.Fn(ctx)
	if err == nil {
		slog.Debug("Cron job completed", "name", job.Name, "duration", time.Since(start))
	}
	return err
}
