package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type funcExecutor func(ctx context.Context, job *Job) (string, error)

func (f funcExecutor) Execute(ctx context.Context, job *Job) (string, error) {
	return f(ctx, job)
}

func startScheduler(t *testing.T, cfg Config, exec JobExecutor) (*Scheduler, chan *Job) {
	t.Helper()
	s := NewScheduler(cfg, exec, zap.NewNop())
	done := make(chan *Job, 8)
	s.OnJobDone(func(j *Job) { done <- j })
	require.NoError(t, s.Start(context.Background()))
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = s.Stop(ctx)
	})
	return s, done
}

func waitJob(t *testing.T, done <-chan *Job) *Job {
	t.Helper()
	select {
	case j := <-done:
		return j
	case <-time.After(2 * time.Second):
		t.Fatal("job did not finish")
		return nil
	}
}

func TestParseDailySchedule(t *testing.T) {
	tests := []struct {
		expr       string
		hour, min  int
		wantErrMsg string
	}{
		{expr: "15 0 * * *", hour: 0, min: 15},
		{expr: "0 23 * * *", hour: 23, min: 0},
		{expr: "  30   2 * * * ", hour: 2, min: 30},
		{expr: "", wantErrMsg: "five fields"},
		{expr: "0 2", wantErrMsg: "five fields"},
		{expr: "0 2 * * 1", wantErrMsg: "every day"},
		{expr: "60 2 * * *", wantErrMsg: "minute"},
		{expr: "0 24 * * *", wantErrMsg: "hour"},
		{expr: "*/5 2 * * *", wantErrMsg: "minute"},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			hour, minute, err := ParseDailySchedule(tt.expr)
			if tt.wantErrMsg != "" {
				require.ErrorIs(t, err, ErrInvalidSchedule)
				assert.Contains(t, err.Error(), tt.wantErrMsg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.hour, hour)
			assert.Equal(t, tt.min, minute)
		})
	}
}

func TestScheduler_SubmitBeforeStart(t *testing.T) {
	s := NewScheduler(DefaultConfig(), funcExecutor(func(context.Context, *Job) (string, error) {
		return "", nil
	}), nil)
	assert.ErrorIs(t, s.SubmitJob(NewJob(time.Now(), time.Now())), ErrSchedulerNotRunning)
}

func TestScheduler_RetriesUntilSuccess(t *testing.T) {
	var calls atomic.Int32
	exec := funcExecutor(func(ctx context.Context, job *Job) (string, error) {
		if calls.Add(1) < 3 {
			return "", errors.New("bucket unavailable")
		}
		return "memory://reports/sales/x.txt", nil
	})
	s, done := startScheduler(t, Config{RetryAttempts: 3, RetryDelay: time.Millisecond}, exec)

	require.NoError(t, s.SubmitJob(NewJob(time.Now(), time.Now())))
	job := waitJob(t, done)

	assert.Equal(t, JobStatusSuccess, job.Status)
	assert.Equal(t, 3, job.Attempts)
	assert.Equal(t, "memory://reports/sales/x.txt", job.Location)
	assert.Empty(t, job.Error)
	assert.NotNil(t, job.CompletedAt)
}

func TestScheduler_GivesUpAfterRetries(t *testing.T) {
	exec := funcExecutor(func(ctx context.Context, job *Job) (string, error) {
		return "", errors.New("bucket unavailable")
	})
	s, done := startScheduler(t, Config{RetryAttempts: 1, RetryDelay: time.Millisecond}, exec)

	require.NoError(t, s.SubmitJob(NewJob(time.Now(), time.Now())))
	job := waitJob(t, done)

	assert.Equal(t, JobStatusFailed, job.Status)
	assert.Equal(t, 2, job.Attempts)
	assert.Contains(t, job.Error, "bucket unavailable")
}

func TestScheduler_QueueFull(t *testing.T) {
	started := make(chan struct{}, 1)
	release := make(chan struct{})
	exec := funcExecutor(func(ctx context.Context, job *Job) (string, error) {
		started <- struct{}{}
		<-release
		return "ok", nil
	})
	s, done := startScheduler(t, Config{Workers: 1, QueueSize: 1}, exec)

	require.NoError(t, s.SubmitJob(NewJob(time.Now(), time.Now())))
	<-started
	require.NoError(t, s.SubmitJob(NewJob(time.Now(), time.Now())))
	assert.ErrorIs(t, s.SubmitJob(NewJob(time.Now(), time.Now())), ErrJobQueueFull)

	close(release)
	waitJob(t, done)
	waitJob(t, done)
}

func TestDailyArchiveScheduler(t *testing.T) {
	type call struct{ from, to time.Time }
	calls := make(chan call, 4)
	archiver := SalesArchiverFunc(func(ctx context.Context, from, to time.Time) (string, error) {
		calls <- call{from, to}
		return "memory://reports/sales/" + from.Format("2006-01-02") + ".txt", nil
	})

	t.Run("rejects a bad schedule", func(t *testing.T) {
		_, err := NewDailyArchiveScheduler(DailyArchiveConfig{Schedule: "nightly"}, archiver, nil)
		assert.ErrorIs(t, err, ErrInvalidSchedule)
	})

	d, err := NewDailyArchiveScheduler(DailyArchiveConfig{
		Schedule:   "15 0 * * *",
		RetryDelay: time.Millisecond,
	}, archiver, zap.NewNop())
	require.NoError(t, err)

	clock := time.Date(2026, 3, 10, 0, 10, 0, 0, time.Local)
	d.now = func() time.Time { return clock }
	require.NoError(t, d.Start(context.Background()))
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		assert.NoError(t, d.Stop(ctx))
	})

	assert.Equal(t, time.Date(2026, 3, 10, 0, 15, 0, 0, time.Local), d.NextRunAt())

	assert.False(t, d.tick(clock), "before the scheduled minute")

	at := time.Date(2026, 3, 10, 0, 15, 20, 0, time.Local)
	assert.True(t, d.tick(at))
	assert.False(t, d.tick(at.Add(30*time.Second)), "same day runs once")
	assert.Equal(t, time.Date(2026, 3, 11, 0, 15, 0, 0, time.Local), d.NextRunAt())

	select {
	case c := <-calls:
		yesterday := time.Date(2026, 3, 9, 0, 0, 0, 0, time.Local)
		assert.True(t, c.from.Equal(yesterday))
		assert.True(t, c.to.Equal(yesterday))
	case <-time.After(2 * time.Second):
		t.Fatal("archive was not requested")
	}

	require.Eventually(t, func() bool {
		job := d.LastJob()
		return job != nil && job.Status == JobStatusSuccess
	}, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, "memory://reports/sales/2026-03-09.txt", d.LastJob().Location)

	t.Run("next day runs again", func(t *testing.T) {
		assert.True(t, d.tick(time.Date(2026, 3, 11, 0, 15, 0, 0, time.Local)))
		select {
		case c := <-calls:
			assert.Equal(t, 10, c.from.Day())
		case <-time.After(2 * time.Second):
			t.Fatal("archive was not requested")
		}
	})
}
