package scheduler

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// cronTickerInterval is the interval at which the daily scheduler checks the clock
const cronTickerInterval = time.Minute

// TenantSource lists the tenants a daily run has work for on day
type TenantSource interface {
	Tenants(ctx context.Context, day time.Time) ([]uuid.UUID, error)
}

// DailyConfig holds configuration for the daily trigger
type DailyConfig struct {
	Enabled bool
	// Schedule is a cron expression of which only "minute hour" is used
	Schedule string
	Pool     SchedulerConfig
}

// DefaultDailyConfig runs at 00:05 every day
func DefaultDailyConfig() DailyConfig {
	return DailyConfig{
		Enabled:  true,
		Schedule: "5 0 * * *",
		Pool:     DefaultSchedulerConfig(),
	}
}

// ParseCronSchedule extracts hour and minute from "minute hour * * *".
// An empty expression yields 00:05.
func ParseCronSchedule(cronExpr string) (hour, minute int, err error) {
	hour, minute = 0, 5

	parts := strings.Fields(cronExpr)
	if len(parts) == 0 {
		return hour, minute, nil
	}
	if len(parts) < 2 {
		return 0, 0, fmt.Errorf("%w: %q needs minute and hour", ErrInvalidConfig, cronExpr)
	}

	if parts[0] != "*" {
		if minute, err = strconv.Atoi(parts[0]); err != nil {
			return 0, 0, fmt.Errorf("%w: minute %q", ErrInvalidConfig, parts[0])
		}
	}
	if parts[1] != "*" {
		if hour, err = strconv.Atoi(parts[1]); err != nil {
			return 0, 0, fmt.Errorf("%w: hour %q", ErrInvalidConfig, parts[1])
		}
	}

	if minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("%w: minute must be 0-59, got %d", ErrInvalidConfig, minute)
	}
	if hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("%w: hour must be 0-23, got %d", ErrInvalidConfig, hour)
	}
	return hour, minute, nil
}

// DailyScheduler submits every registered task for every tenant its source
// lists, once a day
type DailyScheduler struct {
	config    DailyConfig
	hour      int
	minute    int
	tenants   TenantSource
	executor  *TaskExecutor
	scheduler *Scheduler
	logger    *zap.Logger
	now       func() time.Time

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
	lastRunAt *time.Time
	nextRunAt *time.Time
	failures  int
}

// NewDailyScheduler creates a DailyScheduler. It fails on a malformed schedule.
func NewDailyScheduler(config DailyConfig, tenants TenantSource, tasks map[string]TaskFunc, logger *zap.Logger) (*DailyScheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	hour, minute, err := ParseCronSchedule(config.Schedule)
	if err != nil {
		return nil, err
	}
	executor := NewTaskExecutor(tasks)
	s := &DailyScheduler{
		config:    config,
		hour:      hour,
		minute:    minute,
		tenants:   tenants,
		executor:  executor,
		scheduler: NewScheduler(config.Pool, executor, logger),
		logger:    logger,
		now:       time.Now,
	}
	s.scheduler.OnJobDone(func(job *Job) {
		if job.Status == JobStatusFailed {
			s.mu.Lock()
			s.failures++
			s.mu.Unlock()
		}
	})
	return s, nil
}

// Start starts the worker pool and the clock loop. A disabled scheduler does nothing.
func (s *DailyScheduler) Start(ctx context.Context) error {
	if !s.config.Enabled {
		s.logger.Info("Daily scheduler disabled")
		return nil
	}
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	if err := s.scheduler.Start(ctx); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.calculateNextRunTime()

	s.wg.Add(1)
	go s.cronLoop(ctx)

	s.logger.Info("Daily scheduler started",
		zap.Int("hour", s.hour),
		zap.Int("minute", s.minute),
		zap.Strings("tasks", s.executor.Names()),
		zap.Timep("next_run_at", s.NextRunAt()),
	)
	return nil
}

// Stop stops the clock loop and then the worker pool
func (s *DailyScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		if err := s.scheduler.Stop(ctx); err != nil {
			s.logger.Warn("Error stopping worker pool", zap.Error(err))
		}
		s.logger.Info("Daily scheduler stopped")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Daily scheduler stop timed out")
		return ctx.Err()
	}
}

func (s *DailyScheduler) cronLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(cronTickerInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if s.shouldRun(now) {
				s.RunOnce(ctx, now)
				s.calculateNextRunTime()
			}
		}
	}
}

func (s *DailyScheduler) shouldRun(now time.Time) bool {
	return now.Hour() == s.hour && now.Minute() == s.minute
}

func (s *DailyScheduler) calculateNextRunTime() {
	now := s.now()
	next := time.Date(now.Year(), now.Month(), now.Day(), s.hour, s.minute, 0, 0, now.Location())
	if now.After(next) {
		next = next.AddDate(0, 0, 1)
	}

	s.mu.Lock()
	s.nextRunAt = &next
	s.mu.Unlock()
}

// RunOnce submits every task for every tenant listed for the day of now.
// It returns the number of jobs submitted.
func (s *DailyScheduler) RunOnce(ctx context.Context, now time.Time) int {
	s.mu.Lock()
	s.lastRunAt = &now
	s.mu.Unlock()

	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	tenants, err := s.tenants.Tenants(ctx, day)
	if err != nil {
		s.logger.Error("Failed to list tenants for daily run", zap.Error(err))
		return 0
	}

	submitted := 0
	for _, tenantID := range tenants {
		for _, task := range s.executor.Names() {
			if err := s.scheduler.SubmitJob(NewJob(tenantID, task, day, s.config.Pool.RetryAttempts)); err != nil {
				s.logger.Error("Failed to submit job",
					zap.String("tenant_id", tenantID.String()),
					zap.String("task", task),
					zap.Error(err),
				)
				continue
			}
			submitted++
		}
	}

	s.logger.Info("Daily jobs scheduled",
		zap.Int("tenant_count", len(tenants)),
		zap.Int("jobs", submitted),
	)
	return submitted
}

// TriggerManualRun runs the daily submission now, detached from the caller's context
func (s *DailyScheduler) TriggerManualRun() error {
	s.mu.Lock()
	running := s.isRunning
	s.mu.Unlock()
	if !running {
		return ErrSchedulerNotRunning
	}
	go s.RunOnce(context.Background(), s.now())
	return nil
}

// Status reports the scheduler state
func (s *DailyScheduler) Status() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()

	return map[string]any{
		"enabled":     s.config.Enabled,
		"is_running":  s.isRunning,
		"hour":        s.hour,
		"minute":      s.minute,
		"tasks":       s.executor.Names(),
		"last_run_at": s.lastRunAt,
		"next_run_at": s.nextRunAt,
		"failures":    s.failures,
	}
}

// NextRunAt returns when the next run will occur
func (s *DailyScheduler) NextRunAt() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextRunAt
}

// LastRunAt returns when the last run occurred
func (s *DailyScheduler) LastRunAt() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRunAt
}
