package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type staticTenants struct {
	ids []uuid.UUID
	err error
}

func (s staticTenants) Tenants(context.Context, time.Time) ([]uuid.UUID, error) {
	return s.ids, s.err
}

type callLog struct {
	mu    sync.Mutex
	calls map[string][]uuid.UUID
}

func (l *callLog) task(name string, err error) TaskFunc {
	return func(_ context.Context, tenantID uuid.UUID, _ time.Time) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		if l.calls == nil {
			l.calls = make(map[string][]uuid.UUID)
		}
		l.calls[name] = append(l.calls[name], tenantID)
		return err
	}
}

func (l *callLog) count(name string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.calls[name])
}

func TestParseCronSchedule(t *testing.T) {
	tests := []struct {
		name         string
		cronExpr     string
		expectedHour int
		expectedMin  int
	}{
		{"five past midnight", "5 0 * * *", 0, 5},
		{"3:30am", "30 3 * * *", 3, 30},
		{"11pm", "0 23 * * *", 23, 0},
		{"empty string defaults", "", 0, 5},
		{"extra whitespace", "  15   4   *   *   *  ", 4, 15},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hour, minute, err := ParseCronSchedule(tt.cronExpr)
			require.NoError(t, err)
			assert.Equal(t, tt.expectedHour, hour, "hour mismatch")
			assert.Equal(t, tt.expectedMin, minute, "minute mismatch")
		})
	}

	for _, bad := range []string{"5", "x 2 * * *", "0 24 * * *", "60 1 * * *"} {
		_, _, err := ParseCronSchedule(bad)
		assert.ErrorIs(t, err, ErrInvalidConfig, bad)
	}
}

func TestJobLifecycle(t *testing.T) {
	job := NewJob(uuid.New(), "receivables.overdue", time.Now(), 1)
	assert.Equal(t, JobStatusPending, job.Status)

	job.Start()
	assert.Equal(t, JobStatusRunning, job.Status)
	require.NotNil(t, job.StartedAt)

	job.Fail("boom")
	assert.True(t, job.ShouldRetry())

	job.ScheduleRetry(time.Second)
	assert.Equal(t, 1, job.RetryCount)
	assert.Equal(t, JobStatusPending, job.Status)
	assert.Empty(t, job.Error)

	job.Fail("boom again")
	assert.False(t, job.ShouldRetry(), "retries exhausted")

	job.Complete()
	assert.Equal(t, JobStatusSuccess, job.Status)
}

func TestTaskExecutor_UnknownTask(t *testing.T) {
	exec := NewTaskExecutor(map[string]TaskFunc{})
	err := exec.Execute(context.Background(), NewJob(uuid.New(), "nope", time.Now(), 0))
	assert.ErrorIs(t, err, ErrUnknownTask)
}

func TestScheduler_SubmitRequiresStart(t *testing.T) {
	s := NewScheduler(DefaultSchedulerConfig(), NewTaskExecutor(nil), nil)
	assert.ErrorIs(t, s.SubmitJob(NewJob(uuid.New(), "x", time.Now(), 0)), ErrSchedulerNotRunning)
}

func TestScheduler_RetriesThenGivesUp(t *testing.T) {
	var log callLog
	cfg := SchedulerConfig{MaxConcurrentJobs: 1, QueueSize: 10, RetryAttempts: 2, RetryDelay: time.Millisecond}
	s := NewScheduler(cfg, NewTaskExecutor(map[string]TaskFunc{
		"flaky": log.task("flaky", errors.New("database is locked")),
	}), zap.NewNop())

	done := make(chan *Job, 1)
	s.OnJobDone(func(j *Job) { done <- j })

	ctx := context.Background()
	require.NoError(t, s.Start(ctx))
	defer func() { _ = s.Stop(ctx) }()

	require.NoError(t, s.SubmitJob(NewJob(uuid.New(), "flaky", time.Now(), cfg.RetryAttempts)))

	select {
	case job := <-done:
		assert.Equal(t, JobStatusFailed, job.Status)
		assert.Equal(t, 2, job.RetryCount)
	case <-time.After(2 * time.Second):
		t.Fatal("job did not finish")
	}
	assert.Equal(t, 3, log.count("flaky"))
}

func TestDailyScheduler_RunOnce(t *testing.T) {
	var log callLog
	tenants := []uuid.UUID{uuid.New(), uuid.New()}
	cfg := DefaultDailyConfig()
	cfg.Pool.RetryAttempts = 0

	s, err := NewDailyScheduler(cfg, staticTenants{ids: tenants}, map[string]TaskFunc{
		"receivables.overdue": log.task("receivables.overdue", nil),
		"payables.overdue":    log.task("payables.overdue", nil),
	}, zap.NewNop())
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, s.Start(ctx))
	defer func() { _ = s.Stop(ctx) }()

	assert.Equal(t, 4, s.RunOnce(ctx, time.Date(2026, time.March, 10, 0, 5, 0, 0, time.UTC)))
	assert.Eventually(t, func() bool {
		return log.count("receivables.overdue") == 2 && log.count("payables.overdue") == 2
	}, 2*time.Second, 10*time.Millisecond)
	assert.NotNil(t, s.LastRunAt())
}

func TestDailyScheduler_TenantListingFails(t *testing.T) {
	s, err := NewDailyScheduler(DefaultDailyConfig(), staticTenants{err: errors.New("db down")}, map[string]TaskFunc{
		"receivables.overdue": func(context.Context, uuid.UUID, time.Time) error { return nil },
	}, nil)
	require.NoError(t, err)
	assert.Zero(t, s.RunOnce(context.Background(), time.Now()))
}

func TestDailyScheduler_NextRunAndShouldRun(t *testing.T) {
	s, err := NewDailyScheduler(DailyConfig{Enabled: true, Schedule: "30 2 * * *"}, staticTenants{}, nil, nil)
	require.NoError(t, err)

	s.now = func() time.Time { return time.Date(2026, time.March, 10, 3, 0, 0, 0, time.UTC) }
	s.calculateNextRunTime()
	require.NotNil(t, s.NextRunAt())
	assert.Equal(t, time.Date(2026, time.March, 11, 2, 30, 0, 0, time.UTC), *s.NextRunAt())

	assert.True(t, s.shouldRun(time.Date(2026, time.March, 11, 2, 30, 59, 0, time.UTC)))
	assert.False(t, s.shouldRun(time.Date(2026, time.March, 11, 2, 31, 0, 0, time.UTC)))
}

func TestDailyScheduler_Disabled(t *testing.T) {
	s, err := NewDailyScheduler(DailyConfig{Enabled: false}, staticTenants{}, nil, nil)
	require.NoError(t, err)
	require.NoError(t, s.Start(context.Background()))
	assert.ErrorIs(t, s.TriggerManualRun(), ErrSchedulerNotRunning)
	assert.Equal(t, false, s.Status()["is_running"])
}

func TestNewDailyScheduler_BadSchedule(t *testing.T) {
	_, err := NewDailyScheduler(DailyConfig{Schedule: "every night"}, staticTenants{}, nil, nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
