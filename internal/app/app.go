// Package app assembles repositories, engines and services from configuration.
// Both the API server and salesctl build on it.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/straye-as/salesflow-api/internal/auth"
	"github.com/straye-as/salesflow-api/internal/config"
	"github.com/straye-as/salesflow-api/internal/datawarehouse"
	"github.com/straye-as/salesflow-api/internal/http/handler"
	"github.com/straye-as/salesflow-api/internal/http/middleware"
	"github.com/straye-as/salesflow-api/internal/http/router"
	"github.com/straye-as/salesflow-api/internal/incentive"
	"github.com/straye-as/salesflow-api/internal/jobs"
	"github.com/straye-as/salesflow-api/internal/lifecycle"
	"github.com/straye-as/salesflow-api/internal/repository"
	"github.com/straye-as/salesflow-api/internal/service"
	"github.com/straye-as/salesflow-api/internal/storage"
	"github.com/straye-as/salesflow-api/internal/telemetry"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// App holds the wired services
type App struct {
	cfg      *config.Config
	logger   *zap.Logger
	db       *gorm.DB
	dwClient *datawarehouse.Client

	Sales         *service.SaleService
	Lifecycle     *service.LifecycleService
	Incentives    *service.IncentiveService
	Notifications *service.NotificationService
	PeriodSync    *service.PeriodSyncService
}

// New wires every service. dwClient may be nil when the warehouse is disabled.
func New(cfg *config.Config, logger *zap.Logger, db *gorm.DB, store storage.Storage, dwClient *datawarehouse.Client) (*App, error) {
	instruments, err := telemetry.NewInstruments(telemetry.Meter())
	if err != nil {
		return nil, fmt.Errorf("failed to create instruments: %w", err)
	}

	// Repositories
	saleRepo := repository.NewSaleRepository(db)
	historyRepo := repository.NewSaleStageHistoryRepository(db)
	sideEffectRepo := repository.NewSaleSideEffectRepository(db)
	ticketRepo := repository.NewServiceTicketRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	sequenceRepo := repository.NewNumberSequenceRepository(db)
	periodRepo := repository.NewAdvisorPeriodRepository(db)

	// Lifecycle
	dispatcher := service.NewTicketDispatcher(ticketRepo, notificationRepo, logger)
	engine := lifecycle.NewEngine(
		lifecycle.DefaultTransitionTable(),
		saleRepo,
		dispatcher,
		sideEffectRepo,
		lifecycle.RetryConfig{
			MaxAttempts:    cfg.Lifecycle.MaxAttempts,
			InitialBackoff: cfg.Lifecycle.InitialBackoff(),
			MaxBackoff:     cfg.Lifecycle.MaxBackoff(),
		},
		logger,
	)

	sequences := service.NewNumberSequenceService(sequenceRepo, logger)

	// Incentives
	tiers := service.NewTierDocumentStore(store, cfg.Incentive.TierDocument, logger)
	if cfg.Incentive.TierRevisions > 0 {
		tiers.KeepRevisions(cfg.Incentive.TierRevisions)
	}
	gate := cfg.Incentive.ActivityGate
	policy := incentive.ActivityPolicy{
		Enabled:                 gate.Enabled,
		MinMessageConversionPct: decimal.NewFromFloat(gate.MinMessageConversionPct),
		MinCallConversionPct:    decimal.NewFromFloat(gate.MinCallConversionPct),
		MinActiveDays:           gate.MinActiveDays,
	}

	var actuals service.ActualsSource
	if dwClient != nil {
		actuals = dwClient
	}

	return &App{
		cfg:           cfg,
		logger:        logger,
		db:            db,
		dwClient:      dwClient,
		Sales:         service.NewSaleService(saleRepo, historyRepo, sequences, logger),
		Lifecycle:     service.NewLifecycleService(engine, saleRepo, historyRepo, sideEffectRepo, ticketRepo, dispatcher, instruments, logger),
		Incentives:    service.NewIncentiveService(periodRepo, tiers, policy, instruments, logger),
		Notifications: service.NewNotificationService(notificationRepo, logger),
		PeriodSync:    service.NewPeriodSyncService(actuals, periodRepo, instruments, logger),
	}, nil
}

// LoadTiers installs the stored tier table. A missing document is not an
// error: the service starts with an empty table until one is uploaded.
func (a *App) LoadTiers(ctx context.Context) error {
	err := a.Incentives.ReloadTiers(ctx)
	if errors.Is(err, service.ErrTierDocumentNotFound) {
		a.logger.Warn("no tier document stored yet, bonuses evaluate to zero",
			zap.String("path", a.cfg.Incentive.TierDocument))
		return nil
	}
	return err
}

// Router builds the HTTP router with middleware and routes
func (a *App) Router() *router.Router {
	return router.NewRouter(
		a.cfg,
		a.logger,
		a.db,
		a.dwClient,
		auth.NewMiddleware(&a.cfg.Auth, a.logger),
		middleware.NewRateLimiter(&a.cfg.RateLimit, a.logger),
		handler.NewAuthHandler(a.logger),
		handler.NewSaleHandler(a.Sales, a.logger),
		handler.NewLifecycleHandler(a.Lifecycle, a.logger),
		handler.NewIncentiveHandler(a.Incentives, a.logger),
		handler.NewNotificationHandler(a.Notifications, a.logger),
	)
}

// Scheduler registers the enabled background jobs. It returns nil when no
// job is enabled.
func (a *App) Scheduler() (*jobs.Scheduler, error) {
	scheduler := jobs.NewScheduler(a.logger)
	registered := 0

	if a.cfg.Lifecycle.SideEffectRetryEnabled && a.cfg.Lifecycle.SideEffectRetryCron != "" {
		if err := jobs.RegisterSideEffectRetryJob(scheduler, a.Lifecycle,
			a.cfg.Lifecycle.SideEffectRetryCron, a.cfg.Lifecycle.SideEffectRetryBatch, a.logger); err != nil {
			return nil, err
		}
		registered++
	}

	if a.cfg.Incentive.ReloadCron != "" {
		if err := jobs.RegisterTierReloadJob(scheduler, a.Incentives, a.cfg.Incentive.ReloadCron, a.logger); err != nil {
			return nil, err
		}
		registered++
	}

	if a.cfg.Notification.PurgeCron != "" {
		if err := jobs.RegisterNotificationPurgeJob(scheduler, a.Notifications,
			a.cfg.Notification.PurgeCron, a.cfg.Notification.Retention(), a.logger); err != nil {
			return nil, err
		}
		registered++
	}

	if a.dwClient.IsEnabled() && a.cfg.DataWarehouse.PeriodSyncCron != "" {
		if err := jobs.RegisterPeriodSyncJob(scheduler, a.PeriodSync, a.cfg.DataWarehouse.PeriodSyncCron, true, a.logger); err != nil {
			return nil, err
		}
		registered++
	} else {
		a.logger.Info("period sync disabled",
			zap.Bool("dw_enabled", a.cfg.DataWarehouse.Enabled),
			zap.Bool("dw_client_available", a.dwClient.IsEnabled()))
	}

	if registered == 0 {
		return nil, nil
	}
	return scheduler, nil
}
