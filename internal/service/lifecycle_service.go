package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/straye-as/salesflow-api/internal/auth"
	"github.com/straye-as/salesflow-api/internal/domain"
	"github.com/straye-as/salesflow-api/internal/lifecycle"
	"github.com/straye-as/salesflow-api/internal/logger"
	"github.com/straye-as/salesflow-api/internal/mapper"
	"github.com/straye-as/salesflow-api/internal/repository"
	"github.com/straye-as/salesflow-api/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

// PendingStaleAfter is how long a pending side effect may sit before a retry
// assumes the transition that claimed it died before dispatching
const PendingStaleAfter = 2 * time.Minute

// LifecycleService exposes the lifecycle engine to transports, records stage
// history and recovers side effects that could not be dispatched.
type LifecycleService struct {
	engine         *lifecycle.Engine
	saleRepo       *repository.SaleRepository
	historyRepo    *repository.SaleStageHistoryRepository
	sideEffectRepo *repository.SaleSideEffectRepository
	ticketRepo     *repository.ServiceTicketRepository
	dispatcher     lifecycle.SideEffectDispatcher
	instruments    *telemetry.Instruments
	logger         *zap.Logger
}

// NewLifecycleService creates a new LifecycleService
func NewLifecycleService(
	engine *lifecycle.Engine,
	saleRepo *repository.SaleRepository,
	historyRepo *repository.SaleStageHistoryRepository,
	sideEffectRepo *repository.SaleSideEffectRepository,
	ticketRepo *repository.ServiceTicketRepository,
	dispatcher lifecycle.SideEffectDispatcher,
	instruments *telemetry.Instruments,
	logger *zap.Logger,
) *LifecycleService {
	if instruments == nil {
		instruments = telemetry.NoopInstruments()
	}
	return &LifecycleService{
		engine:         engine,
		saleRepo:       saleRepo,
		historyRepo:    historyRepo,
		sideEffectRepo: sideEffectRepo,
		ticketRepo:     ticketRepo,
		dispatcher:     dispatcher,
		instruments:    instruments,
		logger:         logger,
	}
}

// RequestTransition moves a sale to target.
//
// When the stage change commits but its side effect fails, the result is
// returned with Warning set together with an error wrapping
// lifecycle.ErrSideEffectFailed. Other errors return a nil result.
func (s *LifecycleService) RequestTransition(ctx context.Context, saleID uuid.UUID, target domain.SaleStage, notes string) (*domain.TransitionResultDTO, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "lifecycle.RequestTransition")
	defer span.End()
	span.SetAttributes(
		attribute.String("sale.id", saleID.String()),
		attribute.String("sale.target_stage", string(target)),
	)

	result, err := s.engine.RequestTransition(ctx, saleID, target)

	attempts := 0
	if result != nil {
		attempts = result.Attempts
	}

	switch {
	case err == nil:
		outcome := telemetry.OutcomeApplied
		if result.Replayed {
			outcome = telemetry.OutcomeReplayed
		} else {
			s.recordHistory(ctx, result, notes)
		}
		s.recordSideEffectOutcome(ctx, result, nil)
		s.instruments.RecordTransition(ctx, string(target), outcome, attempts)

		dto := mapper.ToTransitionResultDTO(result, "")
		return &dto, nil

	case errors.Is(err, lifecycle.ErrSideEffectFailed) && result != nil:
		s.recordHistory(ctx, result, notes)
		s.recordSideEffectOutcome(ctx, result, err)
		s.instruments.RecordTransition(ctx, string(target), telemetry.OutcomeSideEffectFailed, attempts)
		span.RecordError(err)

		dto := mapper.ToTransitionResultDTO(result, "stage changed but follow-up ticket could not be created; it will be retried")
		return &dto, err

	case errors.Is(err, lifecycle.ErrNotFound):
		s.instruments.RecordTransition(ctx, string(target), telemetry.OutcomeNotFound, 0)
		return nil, ErrSaleNotFound

	case errors.Is(err, lifecycle.ErrInvalidTransition):
		s.instruments.RecordTransition(ctx, string(target), telemetry.OutcomeInvalid, 0)
		return nil, err

	case errors.Is(err, lifecycle.ErrConflict):
		s.instruments.RecordTransition(ctx, string(target), telemetry.OutcomeConflict, 0)
		span.SetStatus(codes.Error, "conflict")
		return nil, err

	default:
		s.instruments.RecordTransition(ctx, string(target), telemetry.OutcomeError, 0)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log := logger.WithTrace(ctx, logger.WithSale(s.logger, saleID.String(), string(target)))
		log.Error("lifecycle transition failed", zap.Error(err))
		return nil, err
	}
}

func (s *LifecycleService) recordHistory(ctx context.Context, result *lifecycle.TransitionResult, notes string) {
	actorID, actorName := auth.Actor(ctx)
	from := result.PreviousState
	if err := s.historyRepo.RecordTransition(ctx, result.SaleID, &from, result.NewState, actorID, actorName, notes); err != nil {
		s.logger.Warn("failed to record stage history",
			zap.String("sale_id", result.SaleID.String()),
			zap.String("from_stage", string(from)),
			zap.String("to_stage", string(result.NewState)),
			zap.Error(err))
	}
}

func (s *LifecycleService) recordSideEffectOutcome(ctx context.Context, result *lifecycle.TransitionResult, err error) {
	if result.TicketCreated == nil {
		return
	}
	kind, _ := s.engine.SideEffectFor(result.NewState)
	switch {
	case err != nil:
		s.instruments.RecordSideEffect(ctx, string(kind), telemetry.OutcomeSideEffectFailed)
	case *result.TicketCreated:
		s.instruments.RecordSideEffect(ctx, string(kind), telemetry.OutcomeApplied)
	default:
		s.instruments.RecordSideEffect(ctx, string(kind), telemetry.OutcomeReplayed)
	}
}

// AllowedTransitions lists the edges leaving the sale's current stage
func (s *LifecycleService) AllowedTransitions(ctx context.Context, saleID uuid.UUID) (*domain.StageTransitionsDTO, error) {
	state, err := s.saleRepo.ReadState(ctx, saleID)
	if err != nil {
		if errors.Is(err, lifecycle.ErrNotFound) {
			return nil, ErrSaleNotFound
		}
		return nil, err
	}

	dto := mapper.ToStageTransitionsDTO(state.Stage, s.engine.Table().AllowedNext(state.Stage))
	return &dto, nil
}

// AllowedFromStage lists the edges leaving a stage
func (s *LifecycleService) AllowedFromStage(stage domain.SaleStage) (*domain.StageTransitionsDTO, error) {
	table := s.engine.Table()
	if !table.IsKnown(stage) {
		return nil, fmt.Errorf("%w: %q", lifecycle.ErrUnknownStage, stage)
	}
	dto := mapper.ToStageTransitionsDTO(stage, table.AllowedNext(stage))
	return &dto, nil
}

// TransitionTable returns every stage with its outgoing edges
func (s *LifecycleService) TransitionTable() []domain.StageTransitionsDTO {
	return mapper.ToTransitionTableDTO(s.engine.Table())
}

// ListSideEffects returns the side-effect ledger of a sale
func (s *LifecycleService) ListSideEffects(ctx context.Context, saleID uuid.UUID) ([]domain.SaleSideEffectDTO, error) {
	if _, err := s.saleRepo.ReadState(ctx, saleID); err != nil {
		if errors.Is(err, lifecycle.ErrNotFound) {
			return nil, ErrSaleNotFound
		}
		return nil, err
	}

	rows, err := s.sideEffectRepo.ListBySale(ctx, saleID)
	if err != nil {
		return nil, fmt.Errorf("failed to list side effects: %w", err)
	}

	dtos := make([]domain.SaleSideEffectDTO, len(rows))
	for i := range rows {
		dtos[i] = mapper.ToSaleSideEffectDTO(&rows[i])
	}
	return dtos, nil
}

// ListTickets returns the service tickets opened for a sale, oldest first
func (s *LifecycleService) ListTickets(ctx context.Context, saleID uuid.UUID) ([]domain.ServiceTicketDTO, error) {
	if _, err := s.saleRepo.ReadState(ctx, saleID); err != nil {
		if errors.Is(err, lifecycle.ErrNotFound) {
			return nil, ErrSaleNotFound
		}
		return nil, err
	}

	tickets, err := s.ticketRepo.ListBySale(ctx, saleID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tickets: %w", err)
	}

	dtos := make([]domain.ServiceTicketDTO, len(tickets))
	for i := range tickets {
		dtos[i] = mapper.ToServiceTicketDTO(&tickets[i])
	}
	return dtos, nil
}

// RetrySideEffects re-dispatches the sale's failed side effects, and pending
// ones older than PendingStaleAfter, reusing their idempotency keys. Recent
// pending rows belong to a transition that may still be dispatching and are
// left alone. Returns the updated ledger.
func (s *LifecycleService) RetrySideEffects(ctx context.Context, saleID uuid.UUID) ([]domain.SaleSideEffectDTO, error) {
	if _, err := s.saleRepo.ReadState(ctx, saleID); err != nil {
		if errors.Is(err, lifecycle.ErrNotFound) {
			return nil, ErrSaleNotFound
		}
		return nil, err
	}

	rows, err := s.sideEffectRepo.ListBySale(ctx, saleID)
	if err != nil {
		return nil, fmt.Errorf("failed to list side effects: %w", err)
	}

	cutoff := time.Now().Add(-PendingStaleAfter)
	for i := range rows {
		switch {
		case rows[i].Status == domain.SideEffectDispatched:
			continue
		case rows[i].Status == domain.SideEffectPending && rows[i].UpdatedAt.After(cutoff):
			s.logger.Debug("skipping side effect still in flight",
				zap.String("sale_id", saleID.String()),
				zap.String("idempotency_key", rows[i].IdempotencyKey))
			continue
		}
		// failures are recorded on the row and surfaced through the returned ledger
		_ = s.redispatch(ctx, &rows[i])
	}

	return s.ListSideEffects(ctx, saleID)
}

// RetryPending re-dispatches failed side effects and pending ones older than
// staleAfter, up to limit rows. Used by the scheduled recovery job.
func (s *LifecycleService) RetryPending(ctx context.Context, staleAfter time.Duration, limit int) (retried int, failed int, err error) {
	rows, err := s.sideEffectRepo.ListRetryable(ctx, staleAfter, limit)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to list retryable side effects: %w", err)
	}

	for i := range rows {
		if ctx.Err() != nil {
			return retried, failed, ctx.Err()
		}
		if err := s.redispatch(ctx, &rows[i]); err != nil {
			failed++
			continue
		}
		retried++
	}

	return retried, failed, nil
}

func (s *LifecycleService) redispatch(ctx context.Context, row *domain.SaleSideEffect) error {
	intent := lifecycle.TicketIntent{
		Kind:           row.Kind,
		SaleID:         row.SaleID,
		TargetStage:    row.TargetStage,
		ClientRef:      row.ClientRef,
		AdvisorID:      row.AdvisorID,
		IdempotencyKey: row.IdempotencyKey,
	}

	ticketID, err := s.dispatcher.CreateTicket(ctx, intent)
	if err != nil {
		if markErr := s.sideEffectRepo.MarkFailed(ctx, row.IdempotencyKey, err); markErr != nil {
			s.logger.Warn("failed to record side effect failure",
				zap.String("idempotency_key", row.IdempotencyKey),
				zap.Error(markErr))
		}
		s.instruments.RecordSideEffect(ctx, string(row.Kind), telemetry.OutcomeSideEffectFailed)
		s.logger.Warn("side effect retry failed",
			zap.String("sale_id", row.SaleID.String()),
			zap.String("idempotency_key", row.IdempotencyKey),
			zap.Int("attempts", row.Attempts+1),
			zap.Error(err))
		return err
	}

	if err := s.sideEffectRepo.MarkDispatched(ctx, row.IdempotencyKey, ticketID); err != nil {
		return fmt.Errorf("failed to record side effect dispatch: %w", err)
	}

	s.instruments.RecordSideEffect(ctx, string(row.Kind), telemetry.OutcomeSideEffectRetried)
	s.logger.Info("side effect dispatched on retry",
		zap.String("sale_id", row.SaleID.String()),
		zap.String("ticket_id", ticketID),
		zap.String("idempotency_key", row.IdempotencyKey))
	return nil
}
