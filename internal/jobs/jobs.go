package jobs

import (
	"context"
	"time"

	"github.com/straye-as/salesflow-api/internal/service"
	"go.uber.org/zap"
)

const (
	SideEffectRetryJobName   = "side_effect_retry"
	TierReloadJobName        = "tier_reload"
	PeriodSyncJobName        = "period_sync"
	NotificationPurgeJobName = "notification_purge"
)

// DefaultJobTimeout bounds a single run of any job
const DefaultJobTimeout = 5 * time.Minute

// PendingStaleAfter is how long a pending side effect may sit before the
// retry job assumes its dispatcher died mid-flight
const PendingStaleAfter = service.PendingStaleAfter

// SideEffectRetrier re-dispatches failed and stale pending side effects
type SideEffectRetrier interface {
	RetryPending(ctx context.Context, staleAfter time.Duration, limit int) (retried int, failed int, err error)
}

// TierReloader refreshes the incentive tier table from storage
type TierReloader interface {
	ReloadTiers(ctx context.Context) error
}

// PeriodSyncer pulls warehouse actuals into open advisor periods
type PeriodSyncer interface {
	SyncOpenPeriods(ctx context.Context, at time.Time) (synced int, failed int, err error)
}

// NotificationPurger deletes read notifications past their retention
type NotificationPurger interface {
	PurgeRead(ctx context.Context, retention time.Duration) (int64, error)
}

// SideEffectRetryJob recovers side effects that failed or never completed
type SideEffectRetryJob struct {
	service SideEffectRetrier
	batch   int
	timeout time.Duration
	logger  *zap.Logger
}

func NewSideEffectRetryJob(service SideEffectRetrier, batch int, timeout time.Duration, logger *zap.Logger) *SideEffectRetryJob {
	if batch < 1 {
		batch = 50
	}
	return &SideEffectRetryJob{service: service, batch: batch, timeout: timeout, logger: logger}
}

// Run is called by the scheduler
func (j *SideEffectRetryJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	start := time.Now()
	retried, failed, err := j.service.RetryPending(ctx, PendingStaleAfter, j.batch)
	if err != nil {
		j.logger.Error("side effect retry failed",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)))
		return
	}

	if retried > 0 || failed > 0 {
		j.logger.Info("side effect retry completed",
			zap.Int("retried", retried),
			zap.Int("failed", failed),
			zap.Duration("duration", time.Since(start)))
	}
}

// TierReloadJob picks up tier tables edited directly in storage
type TierReloadJob struct {
	service TierReloader
	timeout time.Duration
	logger  *zap.Logger
}

func NewTierReloadJob(service TierReloader, timeout time.Duration, logger *zap.Logger) *TierReloadJob {
	return &TierReloadJob{service: service, timeout: timeout, logger: logger}
}

// Run is called by the scheduler. A failed reload keeps the active table.
func (j *TierReloadJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	if err := j.service.ReloadTiers(ctx); err != nil {
		j.logger.Warn("tier table reload failed, keeping active table", zap.Error(err))
	}
}

// PeriodSyncJob refreshes open periods from the data warehouse
type PeriodSyncJob struct {
	service PeriodSyncer
	timeout time.Duration
	logger  *zap.Logger
	now     func() time.Time
}

func NewPeriodSyncJob(service PeriodSyncer, timeout time.Duration, logger *zap.Logger) *PeriodSyncJob {
	return &PeriodSyncJob{service: service, timeout: timeout, logger: logger, now: time.Now}
}

// Run is called by the scheduler
func (j *PeriodSyncJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	start := time.Now()
	synced, failed, err := j.service.SyncOpenPeriods(ctx, j.now().UTC())
	if err != nil {
		j.logger.Error("period sync failed",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)))
		return
	}

	j.logger.Info("period sync completed",
		zap.Int("synced", synced),
		zap.Int("failed", failed),
		zap.Duration("duration", time.Since(start)))
}

// RegisterSideEffectRetryJob schedules side effect recovery
func RegisterSideEffectRetryJob(scheduler *Scheduler, service SideEffectRetrier, cronExpr string, batch int, logger *zap.Logger) error {
	job := NewSideEffectRetryJob(service, batch, DefaultJobTimeout, logger)
	return scheduler.AddJob(SideEffectRetryJobName, cronExpr, job.Run)
}

// RegisterTierReloadJob schedules tier table reloads
func RegisterTierReloadJob(scheduler *Scheduler, service TierReloader, cronExpr string, logger *zap.Logger) error {
	job := NewTierReloadJob(service, DefaultJobTimeout, logger)
	return scheduler.AddJob(TierReloadJobName, cronExpr, job.Run)
}

// RegisterPeriodSyncJob schedules the warehouse sync. If runStartupSync is
// true a first sync runs in the background so it doesn't block startup.
func RegisterPeriodSyncJob(scheduler *Scheduler, service PeriodSyncer, cronExpr string, runStartupSync bool, logger *zap.Logger) error {
	job := NewPeriodSyncJob(service, DefaultJobTimeout, logger)

	if runStartupSync {
		go job.Run()
	}

	return scheduler.AddJob(PeriodSyncJobName, cronExpr, job.Run)
}

// NotificationPurgeJob keeps the notifications table bounded
type NotificationPurgeJob struct {
	service   NotificationPurger
	retention time.Duration
	timeout   time.Duration
	logger    *zap.Logger
}

func NewNotificationPurgeJob(service NotificationPurger, retention, timeout time.Duration, logger *zap.Logger) *NotificationPurgeJob {
	return &NotificationPurgeJob{service: service, retention: retention, timeout: timeout, logger: logger}
}

func (j *NotificationPurgeJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	deleted, err := j.service.PurgeRead(ctx, j.retention)
	if err != nil {
		j.logger.Error("notification purge failed", zap.Error(err))
		return
	}
	j.logger.Info("notification purge completed",
		zap.Int64("deleted", deleted),
		zap.Duration("retention", j.retention))
}

// RegisterNotificationPurgeJob schedules the nightly notification cleanup
func RegisterNotificationPurgeJob(scheduler *Scheduler, service NotificationPurger, cronExpr string, retention time.Duration, logger *zap.Logger) error {
	job := NewNotificationPurgeJob(service, retention, DefaultJobTimeout, logger)
	return scheduler.AddJob(NotificationPurgeJobName, cronExpr, job.Run)
}
