package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/coffee-focus/coffeefocus/internal/logger"
	"github.com/coffee-focus/coffeefocus/internal/metrics"
)

// Job is a named task executed on a fixed interval.
type Job struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

type Scheduler struct {
	jobs   map[string]*scheduledJob // job name -> running job
	mu     sync.RWMutex
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

type scheduledJob struct {
	job    Job
	ticker *time.Ticker
	cancel context.CancelFunc
}

// NewScheduler initializes a new Scheduler instance
func NewScheduler() *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		jobs:   make(map[string]*scheduledJob),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start registers the given jobs; each runs once immediately and then on its interval.
func (s *Scheduler) Start(jobs ...Job) {
	logger.L().Info("Starting scheduler...")

	for _, job := range jobs {
		s.AddJob(job)
	}

	logger.L().Infow("Scheduler started", "jobs", len(jobs))
}

// Stop cancels every job and waits for in-flight runs to return.
func (s *Scheduler) Stop() {
	logger.L().Info("Stopping scheduler...")
	s.cancel()

	s.mu.Lock()
	for _, sj := range s.jobs {
		sj.ticker.Stop()
		sj.cancel()
	}
	s.jobs = make(map[string]*scheduledJob)
	s.mu.Unlock()

	s.wg.Wait()
	logger.L().Info("Scheduler stopped")
}

// AddJob schedules a job, replacing any job registered under the same name.
func (s *Scheduler) AddJob(job Job) {
	if job.Interval <= 0 {
		logger.L().Warnw("Skipping job without interval", "job", job.Name)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, exists := s.jobs[job.Name]; exists {
		existing.ticker.Stop()
		existing.cancel()
	}

	jobCtx, jobCancel := context.WithCancel(s.ctx)
	sj := &scheduledJob{
		job:    job,
		ticker: time.NewTicker(job.Interval),
		cancel: jobCancel,
	}
	s.jobs[job.Name] = sj

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.execute(jobCtx, job)
		s.runJob(jobCtx, sj)
	}()

	logger.L().Infow("Added job", "job", job.Name, "interval", job.Interval)
}

// RemoveJob stops a job by name.
func (s *Scheduler) RemoveJob(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sj, exists := s.jobs[name]; exists {
		sj.ticker.Stop()
		sj.cancel()
		delete(s.jobs, name)
		logger.L().Infow("Removed job", "job", name)
	}
}

func (s *Scheduler) runJob(ctx context.Context, sj *scheduledJob) {
	defer sj.ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-sj.ticker.C:
			s.execute(ctx, sj.job)
		}
	}
}

func (s *Scheduler) execute(ctx context.Context, job Job) {
	if ctx.Err() != nil {
		return
	}

	start := time.Now()
	err := job.Run(ctx)
	metrics.RecordJobRun(job.Name, err == nil)

	if err != nil {
		logger.L().Errorw("Job failed", "job", job.Name, "error", err)
		return
	}

	logger.L().Debugw("Job finished", "job", job.Name, "duration", time.Since(start))
}

// GetStatus returns current scheduler status
func (s *Scheduler) GetStatus() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.jobs))
	for name := range s.jobs {
		names = append(names, name)
	}

	return map[string]interface{}{
		"jobs":    names,
		"running": s.ctx.Err() == nil,
	}
}

// Global scheduler instance
var globalScheduler *Scheduler

// Initialize creates and starts the global scheduler
func Initialize(jobs ...Job) {
	globalScheduler = NewScheduler()
	globalScheduler.Start(jobs...)
}

// Shutdown stops the global scheduler
func Shutdown() {
	if globalScheduler != nil {
		globalScheduler.Stop()
	}
}

// Status reports the global scheduler state, or nil when it is not running.
func Status() map[string]interface{} {
	if globalScheduler == nil {
		return nil
	}
	return globalScheduler.GetStatus()
}
