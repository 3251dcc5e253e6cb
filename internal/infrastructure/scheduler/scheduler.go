// Package scheduler runs background report jobs on a bounded worker pool.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// JobStatus represents the status of a scheduled job
type JobStatus string

const (
	JobStatusPending JobStatus = "PENDING"
	JobStatusRunning JobStatus = "RUNNING"
	JobStatusSuccess JobStatus = "SUCCESS"
	JobStatusFailed  JobStatus = "FAILED"
)

// Job is one archive run over a closed range of business days
type Job struct {
	ID          uuid.UUID
	From        time.Time
	To          time.Time
	Status      JobStatus
	Error       string
	Attempts    int
	StartedAt   *time.Time
	CompletedAt *time.Time
	Location    string
}

// NewJob creates a pending job for the given range
func NewJob(from, to time.Time) *Job {
	return &Job{
		ID:     uuid.New(),
		From:   from,
		To:     to,
		Status: JobStatusPending,
	}
}

func (j *Job) start() {
	now := time.Now()
	j.Status = JobStatusRunning
	j.StartedAt = &now
	j.Error = ""
}

func (j *Job) complete(location string) {
	now := time.Now()
	j.Status = JobStatusSuccess
	j.CompletedAt = &now
	j.Location = location
}

func (j *Job) fail(err error) {
	now := time.Now()
	j.Status = JobStatusFailed
	j.CompletedAt = &now
	j.Error = err.Error()
}

// JobExecutor runs a single job and returns where its output was stored
type JobExecutor interface {
	Execute(ctx context.Context, job *Job) (string, error)
}

// Config holds worker pool settings
type Config struct {
	Workers       int
	QueueSize     int
	JobTimeout    time.Duration
	RetryAttempts int
	RetryDelay    time.Duration
}

// DefaultConfig returns default worker pool settings
func DefaultConfig() Config {
	return Config{
		Workers:       1,
		QueueSize:     16,
		JobTimeout:    5 * time.Minute,
		RetryAttempts: 3,
		RetryDelay:    time.Minute,
	}
}

// Scheduler executes submitted jobs on a fixed number of workers
type Scheduler struct {
	config   Config
	executor JobExecutor
	logger   *zap.Logger
	onDone   func(*Job)

	jobs      chan *Job
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewScheduler creates a new scheduler instance
func NewScheduler(config Config, executor JobExecutor, logger *zap.Logger) *Scheduler {
	d := DefaultConfig()
	if config.Workers <= 0 {
		config.Workers = d.Workers
	}
	if config.QueueSize <= 0 {
		config.QueueSize = d.QueueSize
	}
	if config.JobTimeout <= 0 {
		config.JobTimeout = d.JobTimeout
	}
	if config.RetryDelay <= 0 {
		config.RetryDelay = d.RetryDelay
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		config:   config,
		executor: executor,
		logger:   logger,
		jobs:     make(chan *Job, config.QueueSize),
	}
}

// OnJobDone registers a callback invoked after every finished job
func (s *Scheduler) OnJobDone(fn func(*Job)) {
	s.onDone = fn
}

// Start starts the worker pool
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		return nil
	}
	s.isRunning = true

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	for i := 0; i < s.config.Workers; i++ {
		s.wg.Add(1)
		go s.worker(ctx, i)
	}

	s.logger.Info("Report scheduler started",
		zap.Int("workers", s.config.Workers),
		zap.Duration("job_timeout", s.config.JobTimeout),
	)
	return nil
}

// Stop cancels running jobs and waits for the workers to exit
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.cancel()
	close(s.jobs)
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Report scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Report scheduler stop timed out")
		return ctx.Err()
	}
}

// SubmitJob queues a job without blocking
func (s *Scheduler) SubmitJob(job *Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isRunning {
		return ErrSchedulerNotRunning
	}

	select {
	case s.jobs <- job:
		s.logger.Debug("Job submitted", zap.String("job_id", job.ID.String()))
		return nil
	default:
		return ErrJobQueueFull
	}
}

func (s *Scheduler) worker(ctx context.Context, workerID int) {
	defer s.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-s.jobs:
			if !ok {
				return
			}
			s.processJob(ctx, job, workerID)
		}
	}
}

// processJob runs a job, retrying failures with a constant delay
func (s *Scheduler) processJob(ctx context.Context, job *Job, workerID int) {
	job.start()
	log := s.logger.With(
		zap.Int("worker_id", workerID),
		zap.String("job_id", job.ID.String()),
		zap.Time("from", job.From),
		zap.Time("to", job.To),
	)
	log.Info("Processing job")

	location, err := backoff.Retry(ctx, func() (string, error) {
		job.Attempts++
		jobCtx, cancel := context.WithTimeout(ctx, s.config.JobTimeout)
		defer cancel()
		return s.executor.Execute(jobCtx, job)
	},
		backoff.WithBackOff(backoff.NewConstantBackOff(s.config.RetryDelay)),
		backoff.WithMaxTries(uint(s.config.RetryAttempts+1)),
		backoff.WithMaxElapsedTime(0),
		backoff.WithNotify(func(err error, next time.Duration) {
			log.Warn("Job attempt failed, retrying",
				zap.Int("attempt", job.Attempts),
				zap.Duration("retry_in", next),
				zap.Error(err),
			)
		}),
	)
	if err != nil {
		job.fail(err)
		log.Error("Job failed", zap.Int("attempts", job.Attempts), zap.Error(err))
	} else {
		job.complete(location)
		log.Info("Job completed successfully", zap.String("location", location))
	}

	if s.onDone != nil {
		s.onDone(job)
	}
}
