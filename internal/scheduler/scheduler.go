package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/wonny/compass/pkg/logger"
)

// Scheduler manages the daily analytics jobs
// ⭐ SSOT: 스케줄 관리는 이 스케줄러에서만
type Scheduler struct {
	cron    *cron.Cron
	log     *logger.Logger
	jobs    map[string]Job
	history map[string]*History
	mu      sync.RWMutex

	maxRetries int
	retryDelay time.Duration
}

// Option configures the scheduler
type Option func(*Scheduler)

// WithRetries overrides the retry policy
func WithRetries(maxRetries int, delay time.Duration) Option {
	return func(s *Scheduler) {
		s.maxRetries = maxRetries
		s.retryDelay = delay
	}
}

// New creates a scheduler running in the given location.
// 거래일 경계가 현지 시간에 묶이므로 타임존은 필수.
func New(log *logger.Logger, loc *time.Location, opts ...Option) *Scheduler {
	s := &Scheduler{
		cron:       cron.New(cron.WithSeconds(), cron.WithLocation(loc)),
		log:        log,
		jobs:       make(map[string]Job),
		history:    make(map[string]*History),
		maxRetries: 3,
		retryDelay: time.Minute,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddJob registers a job under its cron schedule
func (s *Scheduler) AddJob(job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := job.Name()
	if _, exists := s.jobs[name]; exists {
		return fmt.Errorf("job %s already exists", name)
	}

	if _, err := s.cron.AddFunc(job.Schedule(), func() {
		s.runJob(job)
	}); err != nil {
		return fmt.Errorf("schedule job %s: %w", name, err)
	}

	s.jobs[name] = job
	s.history[name] = &History{}

	s.log.WithFields(map[string]interface{}{
		"job":      name,
		"schedule": job.Schedule(),
	}).Info("Job added to scheduler")
	return nil
}

// Start begins dispatching jobs
func (s *Scheduler) Start() {
	s.log.Info("Starting scheduler")
	s.cron.Start()
}

// Stop waits for running jobs and stops the scheduler
func (s *Scheduler) Stop() {
	s.log.Info("Stopping scheduler")
	<-s.cron.Stop().Done()
	s.log.Info("Scheduler stopped")
}

// RunNow triggers a job immediately, outside its schedule
func (s *Scheduler) RunNow(name string) error {
	s.mu.RLock()
	job, exists := s.jobs[name]
	s.mu.RUnlock()

	if !exists {
		return fmt.Errorf("job %s not found", name)
	}

	go s.runJob(job)
	return nil
}

// runJob executes a job with retries and records the result
func (s *Scheduler) runJob(job Job) {
	name := job.Name()
	start := time.Now()

	s.log.WithField("job", name).Info("Job started")

	var lastErr error
	attempts := 0
	success := false

	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		attempts++
		if err := job.Run(context.Background()); err == nil {
			success = true
			break
		} else {
			lastErr = err
		}

		s.log.WithFields(map[string]interface{}{
			"job":     name,
			"attempt": attempt + 1,
			"error":   lastErr.Error(),
		}).Warn("Job execution failed")

		if attempt < s.maxRetries {
			time.Sleep(s.retryDelay)
		}
	}

	end := time.Now()
	result := Result{
		JobName:   name,
		StartTime: start,
		EndTime:   end,
		Duration:  end.Sub(start),
		Attempts:  attempts,
		Success:   success,
	}
	if !success && lastErr != nil {
		result.Error = lastErr.Error()
	}

	s.mu.Lock()
	if history, exists := s.history[name]; exists {
		history.Add(result)
	}
	s.mu.Unlock()

	if success {
		s.log.WithFields(map[string]interface{}{
			"job":      name,
			"duration": result.Duration.String(),
			"attempts": attempts,
		}).Info("Job completed")
	} else {
		s.log.WithFields(map[string]interface{}{
			"job":      name,
			"duration": result.Duration.String(),
			"error":    result.Error,
		}).Error("Job failed after all retries")
	}
}

// Stats summarizes one job's execution history
type Stats struct {
	JobName     string     `json:"job_name"`
	Schedule    string     `json:"schedule"`
	TotalRuns   int        `json:"total_runs"`
	SuccessRate float64    `json:"success_rate"`
	LastRun     *time.Time `json:"last_run,omitempty"`
	LastError   string     `json:"last_error,omitempty"`
}

// JobStats returns per-job execution statistics
func (s *Scheduler) JobStats() map[string]Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := make(map[string]Stats, len(s.jobs))
	for name, history := range s.history {
		entry := Stats{
			JobName:     name,
			Schedule:    s.jobs[name].Schedule(),
			TotalRuns:   len(history.Results),
			SuccessRate: history.SuccessRate(),
		}
		if last := history.Last(); last != nil {
			entry.LastRun = &last.StartTime
			if !last.Success {
				entry.LastError = last.Error
			}
		}
		stats[name] = entry
	}
	return stats
}
