package service

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/straye-as/salesflow-api/internal/auth"
	"github.com/straye-as/salesflow-api/internal/domain"
	"github.com/straye-as/salesflow-api/internal/incentive"
	"github.com/straye-as/salesflow-api/internal/logger"
	"github.com/straye-as/salesflow-api/internal/mapper"
	"github.com/straye-as/salesflow-api/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AdvisorPeriodReader reads an advisor's standing for a period. A missing
// period is reported as gorm.ErrRecordNotFound.
type AdvisorPeriodReader interface {
	Read(ctx context.Context, advisorID, periodID string) (*domain.AdvisorPeriod, error)
}

// AdvisorPeriodStore is the read/write side used for period administration
type AdvisorPeriodStore interface {
	AdvisorPeriodReader
	Upsert(ctx context.Context, period *domain.AdvisorPeriod) error
	ListByPeriod(ctx context.Context, periodID string) ([]domain.AdvisorPeriod, error)
}

// TierDocuments persists the administered tier table
type TierDocuments interface {
	incentive.TierSource
	LoadDocument(ctx context.Context) (*domain.TierTableDTO, error)
	Save(ctx context.Context, doc *domain.TierTableDTO) error
	Revisions(ctx context.Context) ([]domain.TierRevisionDTO, error)
}

// IncentiveService evaluates bonuses and administers the tier table. The
// engine is swapped atomically on reload so evaluations never block.
type IncentiveService struct {
	periods     AdvisorPeriodStore
	tiers       TierDocuments
	policy      incentive.ActivityPolicy
	engine      atomic.Pointer[incentive.Engine]
	meta        atomic.Pointer[tierMeta]
	instruments *telemetry.Instruments
	logger      *zap.Logger
}

type tierMeta struct {
	updatedAt string
	updatedBy string
}

// NewIncentiveService creates a service evaluating against an empty tier
// table until ReloadTiers succeeds.
func NewIncentiveService(
	periods AdvisorPeriodStore,
	tiers TierDocuments,
	policy incentive.ActivityPolicy,
	instruments *telemetry.Instruments,
	logger *zap.Logger,
) *IncentiveService {
	if instruments == nil {
		instruments = telemetry.NoopInstruments()
	}
	s := &IncentiveService{
		periods:     periods,
		tiers:       tiers,
		policy:      policy,
		instruments: instruments,
		logger:      logger,
	}
	s.engine.Store(incentive.NewEngine(incentive.EmptyTierTable(), policy))
	s.meta.Store(&tierMeta{})
	return s
}

// Engine returns the engine currently in use
func (s *IncentiveService) Engine() *incentive.Engine {
	return s.engine.Load()
}

// ReloadTiers rebuilds the engine from the stored tier document. On any
// error the previous table stays in effect.
func (s *IncentiveService) ReloadTiers(ctx context.Context) error {
	doc, err := s.tiers.LoadDocument(ctx)
	if err != nil {
		s.instruments.RecordTierReload(ctx, false)
		return err
	}

	table, err := incentive.NewTierTable(mapper.FromTierTableDTO(doc))
	if err != nil {
		s.instruments.RecordTierReload(ctx, false)
		s.logger.Error("stored tier table rejected, keeping previous table", zap.Error(err))
		return err
	}

	s.engine.Store(incentive.NewEngine(table, s.policy))
	s.meta.Store(&tierMeta{updatedAt: doc.UpdatedAt, updatedBy: doc.UpdatedBy})
	s.instruments.RecordTierReload(ctx, true)

	s.logger.Info("tier table loaded",
		zap.Int("modalities", len(doc.Modalities)),
		zap.String("updated_at", doc.UpdatedAt))
	return nil
}

// EvaluateBonus computes the advisor's current bonus and next-tier projection for a period
func (s *IncentiveService) EvaluateBonus(ctx context.Context, advisorID, periodID string) (*domain.BonusResultDTO, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "incentive.EvaluateBonus")
	defer span.End()
	span.SetAttributes(
		attribute.String("advisor.id", advisorID),
		attribute.String("period.id", periodID),
	)

	log := logger.WithTrace(ctx, logger.WithAdvisorPeriod(s.logger, advisorID, periodID))

	period, err := s.periods.Read(ctx, advisorID, periodID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.instruments.RecordBonusEvaluation(ctx, "", telemetry.OutcomePeriodNotFound)
			return nil, ErrAdvisorPeriodNotFound
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to read advisor period: %w", err)
	}

	result, err := s.engine.Load().Evaluate(period)
	if err != nil {
		s.instruments.RecordBonusEvaluation(ctx, string(period.Modality), telemetry.OutcomeUnknownModality)
		log.Warn("bonus evaluation rejected", zap.Error(err))
		return nil, err
	}

	s.instruments.RecordBonusEvaluation(ctx, string(period.Modality), telemetry.OutcomeEvaluated)
	log.Debug("bonus evaluated",
		zap.String("score_pct", result.ScorePct.StringFixed(2)),
		zap.String("bono_actual", result.BonoActual.String()),
		zap.String("tier", result.TierLabel))

	dto := mapper.ToBonusResultDTO(advisorID, periodID, result)
	return &dto, nil
}

// GetTierTable returns the tier table currently in effect
func (s *IncentiveService) GetTierTable() domain.TierTableDTO {
	dto := mapper.ToTierTableDTO(s.engine.Load().Table())
	meta := s.meta.Load()
	dto.UpdatedAt = meta.updatedAt
	dto.UpdatedBy = meta.updatedBy
	return dto
}

// UpdateTierTable validates, stores and activates a new tier table.
// A misconfigured table is rejected with incentive.ErrTierTableMisconfigured
// and nothing is stored.
func (s *IncentiveService) UpdateTierTable(ctx context.Context, req *domain.UpdateTierTableRequest) (*domain.TierTableDTO, error) {
	doc := &domain.TierTableDTO{Modalities: req.Modalities}

	table, err := incentive.NewTierTable(mapper.FromTierTableDTO(doc))
	if err != nil {
		return nil, err
	}

	// store the normalised (sorted) ladders
	stored := mapper.ToTierTableDTO(table)
	actorID, _ := auth.Actor(ctx)
	stored.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	stored.UpdatedBy = actorID

	if err := s.tiers.Save(ctx, &stored); err != nil {
		return nil, err
	}

	s.engine.Store(incentive.NewEngine(table, s.policy))
	s.meta.Store(&tierMeta{updatedAt: stored.UpdatedAt, updatedBy: stored.UpdatedBy})

	s.logger.Info("tier table updated",
		zap.String("updated_by", actorID),
		zap.Int("modalities", len(stored.Modalities)))

	return &stored, nil
}

// ListTierRevisions returns the superseded tier documents, newest first
func (s *IncentiveService) ListTierRevisions(ctx context.Context) ([]domain.TierRevisionDTO, error) {
	return s.tiers.Revisions(ctx)
}

// UpsertPeriod creates or replaces an advisor's period record
func (s *IncentiveService) UpsertPeriod(ctx context.Context, advisorID, periodID string, req *domain.UpsertAdvisorPeriodRequest) (*domain.AdvisorPeriodDTO, error) {
	if advisorID == "" || periodID == "" {
		return nil, fmt.Errorf("%w: advisor and period are required", ErrInvalidAdvisorPeriod)
	}
	if !req.Modality.IsValid() {
		return nil, fmt.Errorf("%w: %q", incentive.ErrUnknownModality, req.Modality)
	}
	if req.QuotaAmount.IsNegative() || req.AchievedAmount.IsNegative() {
		return nil, fmt.Errorf("%w: quota and achieved amounts must not be negative", ErrInvalidAdvisorPeriod)
	}
	if req.EndsOn.Before(req.StartsOn) {
		return nil, fmt.Errorf("%w: period ends before it starts", ErrInvalidAdvisorPeriod)
	}

	period := &domain.AdvisorPeriod{
		AdvisorID:      advisorID,
		PeriodID:       periodID,
		Modality:       req.Modality,
		QuotaAmount:    req.QuotaAmount,
		AchievedAmount: req.AchievedAmount,
		MessagesSent:   req.MessagesSent,
		CallsMade:      req.CallsMade,
		ActiveDays:     req.ActiveDays,
		SalesClosed:    req.SalesClosed,
		StartsOn:       req.StartsOn.UTC(),
		EndsOn:         req.EndsOn.UTC(),
	}

	if err := s.periods.Upsert(ctx, period); err != nil {
		return nil, fmt.Errorf("failed to save advisor period: %w", err)
	}

	// re-read: on conflict the generated id is not the stored one
	return s.GetPeriod(ctx, advisorID, periodID)
}

// GetPeriod returns one advisor period
func (s *IncentiveService) GetPeriod(ctx context.Context, advisorID, periodID string) (*domain.AdvisorPeriodDTO, error) {
	period, err := s.periods.Read(ctx, advisorID, periodID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAdvisorPeriodNotFound
		}
		return nil, fmt.Errorf("failed to read advisor period: %w", err)
	}
	dto := mapper.ToAdvisorPeriodDTO(period)
	return &dto, nil
}

// ListPeriods returns every advisor's record for a period
func (s *IncentiveService) ListPeriods(ctx context.Context, periodID string) ([]domain.AdvisorPeriodDTO, error) {
	periods, err := s.periods.ListByPeriod(ctx, periodID)
	if err != nil {
		return nil, fmt.Errorf("failed to list advisor periods: %w", err)
	}
	dtos := make([]domain.AdvisorPeriodDTO, len(periods))
	for i := range periods {
		dtos[i] = mapper.ToAdvisorPeriodDTO(&periods[i])
	}
	return dtos, nil
}
