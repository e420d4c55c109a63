package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/straye-as/salesflow-api/internal/datawarehouse"
	"github.com/straye-as/salesflow-api/internal/domain"
	"github.com/straye-as/salesflow-api/internal/repository"
	"github.com/straye-as/salesflow-api/internal/telemetry"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ActualsSource provides aggregated advisor actuals for a date range
type ActualsSource interface {
	IsEnabled() bool
	GetAdvisorActuals(ctx context.Context, from, to time.Time) ([]datawarehouse.AdvisorActuals, error)
}

// OpenPeriodStore lists open periods and writes synced actuals
type OpenPeriodStore interface {
	ListOpen(ctx context.Context, at time.Time) ([]domain.AdvisorPeriod, error)
	UpdateActuals(ctx context.Context, advisorID, periodID string, actuals repository.PeriodActuals) error
}

// PeriodSyncService refreshes the achieved amounts and activity counters of
// open advisor periods from the data warehouse.
type PeriodSyncService struct {
	source      ActualsSource
	periods     OpenPeriodStore
	instruments *telemetry.Instruments
	logger      *zap.Logger
}

// NewPeriodSyncService creates a new PeriodSyncService
func NewPeriodSyncService(source ActualsSource, periods OpenPeriodStore, instruments *telemetry.Instruments, logger *zap.Logger) *PeriodSyncService {
	if instruments == nil {
		instruments = telemetry.NoopInstruments()
	}
	return &PeriodSyncService{
		source:      source,
		periods:     periods,
		instruments: instruments,
		logger:      logger,
	}
}

type dateRange struct {
	from time.Time
	to   time.Time
}

// SyncOpenPeriods updates every period open at the given time. Periods are
// grouped by date range so the warehouse is queried once per range. An advisor
// without warehouse rows keeps their stored actuals.
func (s *PeriodSyncService) SyncOpenPeriods(ctx context.Context, at time.Time) (synced int, failed int, err error) {
	if s.source == nil || !s.source.IsEnabled() {
		return 0, 0, ErrDataWarehouseUnavailable
	}

	open, err := s.periods.ListOpen(ctx, at)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to list open periods: %w", err)
	}
	if len(open) == 0 {
		s.logger.Debug("no open advisor periods to sync")
		return 0, 0, nil
	}

	groups := make(map[dateRange][]domain.AdvisorPeriod)
	for _, p := range open {
		key := dateRange{from: p.StartsOn.UTC(), to: p.EndsOn.UTC()}
		groups[key] = append(groups[key], p)
	}

	for rng, periods := range groups {
		if ctx.Err() != nil {
			return synced, failed, ctx.Err()
		}

		// the view is keyed by day; the upper bound is exclusive
		actuals, err := s.source.GetAdvisorActuals(ctx, rng.from, rng.to.AddDate(0, 0, 1))
		if err != nil {
			s.logger.Error("failed to fetch advisor actuals",
				zap.Time("from", rng.from),
				zap.Time("to", rng.to),
				zap.Error(err))
			failed += len(periods)
			continue
		}

		byAdvisor := make(map[string]datawarehouse.AdvisorActuals, len(actuals))
		for _, a := range actuals {
			byAdvisor[a.AdvisorID] = a
		}

		for _, p := range periods {
			a, ok := byAdvisor[p.AdvisorID]
			if !ok {
				continue
			}
			err := s.periods.UpdateActuals(ctx, p.AdvisorID, p.PeriodID, repository.PeriodActuals{
				AchievedAmount: a.AchievedAmount,
				MessagesSent:   a.MessagesSent,
				CallsMade:      a.CallsMade,
				ActiveDays:     a.ActiveDays,
				SalesClosed:    a.SalesClosed,
			})
			if err != nil {
				if !errors.Is(err, gorm.ErrRecordNotFound) {
					s.logger.Warn("failed to update advisor period actuals",
						zap.String("advisor_id", p.AdvisorID),
						zap.String("period_id", p.PeriodID),
						zap.Error(err))
				}
				failed++
				continue
			}
			synced++
		}
	}

	s.instruments.RecordPeriodSync(ctx, synced)
	s.logger.Info("advisor period actuals synced",
		zap.Int("open", len(open)),
		zap.Int("synced", synced),
		zap.Int("failed", failed))

	return synced, failed, nil
}
