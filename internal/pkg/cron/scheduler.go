package cron

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"
)

// Tick outcomes reported to the TickObserver
const (
	TickSuccess   = "success"
	TickError     = "error"
	TickSkipped   = "skipped"
	TickLockError = "lock_error"
)

// Job represents a scheduled job
type Job struct {
	Name     string
	Interval time.Duration
	Fn       func(ctx context.Context) error
}

// Locker grants a single process the right to run a job tick.
type Locker interface {
	TryLock(ctx context.Context, name string, ttl time.Duration) (bool, error)
}

// TickObserver receives the outcome of every scheduled tick.
type TickObserver interface {
	ObserveJobTick(jobName, status string, duration time.Duration)
}

// Scheduler manages scheduled jobs
type Scheduler struct {
	jobs     []Job
	locker   Locker
	observer TickObserver
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	mu       sync.Mutex
}

// NewScheduler creates a new cron scheduler
func NewScheduler() *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		jobs:   make([]Job, 0),
		ctx:    ctx,
		cancel: cancel,
	}
}

// SetLocker makes every tick acquire a lock named after its job first.
// Must be called before Start.
func (s *Scheduler) SetLocker(locker Locker) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.locker = locker
}

// SetObserver must be called before Start.
func (s *Scheduler) SetObserver(observer TickObserver) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observer = observer
}

// AddJob adds a job to the scheduler
func (s *Scheduler) AddJob(name string, interval time.Duration, fn func(ctx context.Context) error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.jobs = append(s.jobs, Job{
		Name:     name,
		Interval: interval,
		Fn:       fn,
	})
	slog.Info("Cron job registered", "name", name, "interval", interval)
}

// Jobs returns a copy of the registered jobs
func (s *Scheduler) Jobs() []Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Job(nil), s.jobs...)
}

// Start begins running all scheduled jobs
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, job := range s.jobs {
		s.wg.Add(1)
		go s.runJob(job)
	}

	slog.Info("Cron scheduler started", "job_count", len(s.jobs), "locking", s.locker != nil)
}

// Stop gracefully stops all scheduled jobs
func (s *Scheduler) Stop() {
	slog.Info("Stopping cron scheduler...")
	s.cancel()
	s.wg.Wait()
	slog.Info("Cron scheduler stopped")
}

// runJob runs a single job on its schedule
func (s *Scheduler) runJob(job Job) {
	defer s.wg.Done()

	ticker := time.NewTicker(job.Interval)
	defer ticker.Stop()

	// Run immediately on start
	s.executeJob(s.ctx, job)

	for {
		select {
		case <-s.ctx.Done():
			slog.Info("Cron job stopping", "name", job.Name)
			return
		case <-ticker.C:
			s.executeJob(s.ctx, job)
		}
	}
}

// executeJob executes a job and logs results
func (s *Scheduler) executeJob(ctx context.Context, job Job) {
	start := time.Now()

	if s.locker != nil {
		acquired, err := s.locker.TryLock(ctx, job.Name, job.Interval)
		if err != nil {
			slog.Error("Cron job lock failed", "name", job.Name, "error", err)
			s.observe(job.Name, TickLockError, time.Since(start))
			return
		}
		if !acquired {
			slog.Debug("Cron job tick held by another instance", "name", job.Name)
			s.observe(job.Name, TickSkipped, time.Since(start))
			return
		}
	}

	slog.Debug("Cron job starting", "name", job.Name)

	if err := job.Fn(ctx); err != nil {
		slog.Error("Cron job failed", "name", job.Name, "error", err, "duration", time.Since(start))
		s.observe(job.Name, TickError, time.Since(start))
	} else {
		slog.Debug("Cron job completed", "name", job.Name, "duration", time.Since(start))
		s.observe(job.Name, TickSuccess, time.Since(start))
	}
}

func (s *Scheduler) observe(jobName, status string, duration time.Duration) {
	if s.observer != nil {
		s.observer.ObserveJobTick(jobName, status, duration)
	}
}

// RunOnce runs all jobs once without locking and returns every job error.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result *multierror.Error
	for _, job := range s.jobs {
		if err := job.Fn(ctx); err != nil {
			slog.Error("Cron job failed", "name", job.Name, "error", err)
			result = multierror.Append(result, fmt.Errorf("%s: %w", job.Name, err))
		}
	}
	return result.ErrorOrNil()
}
