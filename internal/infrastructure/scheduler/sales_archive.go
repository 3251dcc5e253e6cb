package scheduler

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// cronTickerInterval is how often the daily trigger checks the clock
const cronTickerInterval = time.Minute

// SalesArchiver stores the sales report of a day range and returns its location
type SalesArchiver interface {
	ArchiveSales(ctx context.Context, from, to time.Time) (string, error)
}

// SalesArchiverFunc adapts a function to SalesArchiver
type SalesArchiverFunc func(ctx context.Context, from, to time.Time) (string, error)

// ArchiveSales calls f
func (f SalesArchiverFunc) ArchiveSales(ctx context.Context, from, to time.Time) (string, error) {
	return f(ctx, from, to)
}

type salesArchiveExecutor struct {
	archiver SalesArchiver
}

func (e salesArchiveExecutor) Execute(ctx context.Context, job *Job) (string, error) {
	return e.archiver.ArchiveSales(ctx, job.From, job.To)
}

// ParseDailySchedule reads "minute hour * * *" and returns the hour and minute.
// Only the first two fields are interpreted; the rest must be "*".
func ParseDailySchedule(expr string) (hour, minute int, err error) {
	parts := strings.Fields(expr)
	if len(parts) != 5 {
		return 0, 0, fmt.Errorf("%w: %q needs five fields", ErrInvalidSchedule, expr)
	}
	for _, p := range parts[2:] {
		if p != "*" {
			return 0, 0, fmt.Errorf("%w: %q must run every day", ErrInvalidSchedule, expr)
		}
	}
	minute, err = strconv.Atoi(parts[0])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("%w: minute must be 0-59, got %q", ErrInvalidSchedule, parts[0])
	}
	hour, err = strconv.Atoi(parts[1])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("%w: hour must be 0-23, got %q", ErrInvalidSchedule, parts[1])
	}
	return hour, minute, nil
}

// DailyArchiveConfig configures the nightly sales-report archive
type DailyArchiveConfig struct {
	Schedule      string
	JobTimeout    time.Duration
	RetryAttempts int
	RetryDelay    time.Duration
}

// DailyArchiveScheduler archives the previous day's sales report once a day
type DailyArchiveScheduler struct {
	hour, minute int
	scheduler    *Scheduler
	logger       *zap.Logger
	now          func() time.Time

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
	lastRunOn time.Time
	lastJob   *Job
	nextRunAt time.Time
}

// NewDailyArchiveScheduler validates the schedule and builds the scheduler
func NewDailyArchiveScheduler(cfg DailyArchiveConfig, archiver SalesArchiver, logger *zap.Logger) (*DailyArchiveScheduler, error) {
	hour, minute, err := ParseDailySchedule(cfg.Schedule)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	pool := NewScheduler(Config{
		Workers:       1,
		JobTimeout:    cfg.JobTimeout,
		RetryAttempts: cfg.RetryAttempts,
		RetryDelay:    cfg.RetryDelay,
	}, salesArchiveExecutor{archiver: archiver}, logger)

	d := &DailyArchiveScheduler{
		hour:      hour,
		minute:    minute,
		scheduler: pool,
		logger:    logger,
		now:       time.Now,
	}
	pool.OnJobDone(d.recordJob)
	return d, nil
}

// Start launches the worker pool and the daily trigger loop
func (d *DailyArchiveScheduler) Start(ctx context.Context) error {
	d.mu.Lock()
	if d.isRunning {
		d.mu.Unlock()
		return nil
	}
	d.isRunning = true
	d.mu.Unlock()

	if err := d.scheduler.Start(ctx); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	d.calculateNextRunTime(d.now())

	d.wg.Add(1)
	go d.cronLoop(ctx)

	d.logger.Info("Sales archive scheduler started",
		zap.Int("cron_hour", d.hour),
		zap.Int("cron_minute", d.minute),
		zap.Time("next_run_at", d.NextRunAt()),
	)
	return nil
}

// Stop ends the trigger loop and drains the worker pool
func (d *DailyArchiveScheduler) Stop(ctx context.Context) error {
	d.mu.Lock()
	if !d.isRunning {
		d.mu.Unlock()
		return nil
	}
	d.isRunning = false
	d.mu.Unlock()

	d.cancel()
	d.wg.Wait()
	return d.scheduler.Stop(ctx)
}

func (d *DailyArchiveScheduler) cronLoop(ctx context.Context) {
	defer d.wg.Done()

	ticker := time.NewTicker(cronTickerInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.tick(d.now())
		}
	}
}

// tick submits yesterday's archive when now is the scheduled minute and
// the day has not been handled yet.
func (d *DailyArchiveScheduler) tick(now time.Time) bool {
	if now.Hour() != d.hour || now.Minute() != d.minute {
		return false
	}
	today := startOfDay(now)

	d.mu.Lock()
	if d.lastRunOn.Equal(today) {
		d.mu.Unlock()
		return false
	}
	d.lastRunOn = today
	d.mu.Unlock()

	yesterday := today.AddDate(0, 0, -1)
	if err := d.Trigger(yesterday, yesterday); err != nil {
		d.logger.Error("Failed to submit sales archive job", zap.Error(err))
	}
	d.calculateNextRunTime(now)
	return true
}

// Trigger queues an archive of the given day range outside the schedule
func (d *DailyArchiveScheduler) Trigger(from, to time.Time) error {
	return d.scheduler.SubmitJob(NewJob(from, to))
}

func (d *DailyArchiveScheduler) recordJob(job *Job) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.lastJob = job
}

// LastJob returns the most recently finished job, if any
func (d *DailyArchiveScheduler) LastJob() *Job {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastJob
}

func (d *DailyArchiveScheduler) calculateNextRunTime(now time.Time) {
	next := time.Date(now.Year(), now.Month(), now.Day(), d.hour, d.minute, 0, 0, now.Location())
	if !now.Before(next) {
		next = next.AddDate(0, 0, 1)
	}
	d.mu.Lock()
	d.nextRunAt = next
	d.mu.Unlock()
}

// NextRunAt returns when the next scheduled archive will be submitted
func (d *DailyArchiveScheduler) NextRunAt() time.Time {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.nextRunAt
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
