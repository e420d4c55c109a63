package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/straye-as/salesflow-api/internal/domain"
	"go.uber.org/zap"
)

// SaleState is the slice of a sale the engine reads before deciding a transition
type SaleState struct {
	ID        uuid.UUID
	Stage     domain.SaleStage
	Version   int64
	ClientRef string
	AdvisorID string
}

// SaleStateStore reads and conditionally updates a sale's lifecycle state.
// ReadState must return an error wrapping ErrNotFound for unknown sales.
type SaleStateStore interface {
	ReadState(ctx context.Context, saleID uuid.UUID) (*SaleState, error)
	CompareAndSwapState(ctx context.Context, saleID uuid.UUID, expected, next domain.SaleStage) (bool, error)
}

// TicketIntent describes a ticket to open as the consequence of a transition
type TicketIntent struct {
	Kind           domain.TicketKind
	SaleID         uuid.UUID
	TargetStage    domain.SaleStage
	ClientRef      string
	AdvisorID      string
	IdempotencyKey string
}

// SideEffectDispatcher opens follow-up tickets. Implementations must treat a
// repeated IdempotencyKey as the same ticket.
type SideEffectDispatcher interface {
	CreateTicket(ctx context.Context, intent TicketIntent) (string, error)
}

// SideEffectLedger records which side effects have been claimed so each one
// is dispatched at most once. Claim returns false when the key is already taken.
type SideEffectLedger interface {
	Claim(ctx context.Context, intent TicketIntent) (bool, error)
	MarkDispatched(ctx context.Context, idempotencyKey, ticketID string) error
	MarkFailed(ctx context.Context, idempotencyKey string, cause error) error
}

// TransitionResult describes a committed (or replayed) transition.
// TicketCreated is nil when the target carries no side effect.
type TransitionResult struct {
	SaleID        uuid.UUID
	PreviousState domain.SaleStage
	NewState      domain.SaleStage
	Version       int64
	TicketCreated *bool
	TicketID      string
	Replayed      bool
	Attempts      int
}

// RetryConfig bounds the compare-and-swap retry loop
type RetryConfig struct {
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// DefaultRetryConfig allows three attempts with short jittered backoff
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:    3,
		InitialBackoff: 20 * time.Millisecond,
		MaxBackoff:     200 * time.Millisecond,
	}
}

// IdempotencyKey identifies the side effect of reaching a stage
func IdempotencyKey(saleID uuid.UUID, target domain.SaleStage) string {
	return saleID.String() + ":" + string(target)
}

// Engine validates and applies sale lifecycle transitions
type Engine struct {
	table       *TransitionTable
	store       SaleStateStore
	dispatcher  SideEffectDispatcher
	ledger      SideEffectLedger
	retry       RetryConfig
	sideEffects map[domain.SaleStage]domain.TicketKind
	logger      *zap.Logger
}

// NewEngine creates a lifecycle engine. A nil ledger falls back to an in-memory one.
func NewEngine(table *TransitionTable, store SaleStateStore, dispatcher SideEffectDispatcher, ledger SideEffectLedger, retry RetryConfig, logger *zap.Logger) *Engine {
	if table == nil {
		table = DefaultTransitionTable()
	}
	if ledger == nil {
		ledger = NewMemoryLedger()
	}
	if retry.MaxAttempts < 1 {
		retry.MaxAttempts = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		table:      table,
		store:      store,
		dispatcher: dispatcher,
		ledger:     ledger,
		retry:      retry,
		sideEffects: map[domain.SaleStage]domain.TicketKind{
			domain.StageSoldShippedReceived: domain.TicketKindTraining,
		},
		logger: logger,
	}
}

// Table returns the transition table the engine enforces
func (e *Engine) Table() *TransitionTable {
	return e.table
}

// SideEffectFor returns the ticket kind emitted when a sale reaches the stage
func (e *Engine) SideEffectFor(stage domain.SaleStage) (domain.TicketKind, bool) {
	kind, ok := e.sideEffects[stage]
	return kind, ok
}

// RequestTransition moves a sale to target if the table allows it. Requesting
// the current stage is a replay and succeeds without side effects.
//
// When the stage change commits but its side effect cannot be dispatched the
// populated result is returned together with an error wrapping ErrSideEffectFailed.
func (e *Engine) RequestTransition(ctx context.Context, saleID uuid.UUID, target domain.SaleStage) (*TransitionResult, error) {
	var result *TransitionResult
	attempts := 0

	op := func() error {
		attempts++

		state, err := e.store.ReadState(ctx, saleID)
		if err != nil {
			return backoff.Permanent(err)
		}

		if state.Stage == target {
			result = &TransitionResult{
				SaleID:        saleID,
				PreviousState: state.Stage,
				NewState:      state.Stage,
				Version:       state.Version,
				Replayed:      true,
			}
			return nil
		}

		if !e.table.IsValidTransition(state.Stage, target) {
			return backoff.Permanent(&InvalidTransitionError{
				From:        state.Stage,
				Target:      target,
				Allowed:     e.table.AllowedStages(state.Stage),
				UnknownFrom: !e.table.IsKnown(state.Stage),
			})
		}

		swapped, err := e.store.CompareAndSwapState(ctx, saleID, state.Stage, target)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("failed to apply transition: %w", err))
		}
		if !swapped {
			e.logger.Debug("lifecycle compare-and-swap miss",
				zap.String("sale_id", saleID.String()),
				zap.String("from_stage", string(state.Stage)),
				zap.String("to_stage", string(target)),
				zap.Int("attempt", attempts))
			return errCASMiss
		}

		result = &TransitionResult{
			SaleID:        saleID,
			PreviousState: state.Stage,
			NewState:      target,
			Version:       state.Version + 1,
		}
		state.Stage = target
		result.TicketCreated, result.TicketID, err = e.dispatchSideEffect(ctx, state)
		return sideEffectError{err}.orNil()
	}

	err := backoff.Retry(op, e.newBackOff(ctx))

	var seErr sideEffectError
	switch {
	case err == nil:
	case errors.As(err, &seErr):
		result.Attempts = attempts
		return result, seErr.err
	case errors.Is(err, errCASMiss):
		e.logger.Warn("lifecycle transition gave up after concurrent updates",
			zap.String("sale_id", saleID.String()),
			zap.String("to_stage", string(target)),
			zap.Int("attempts", attempts))
		return nil, fmt.Errorf("%w: sale %s after %d attempts", ErrConflict, saleID, attempts)
	default:
		return nil, err
	}

	result.Attempts = attempts
	if !result.Replayed {
		e.logger.Info("Sale lifecycle transition applied",
			zap.String("sale_id", saleID.String()),
			zap.String("from_stage", string(result.PreviousState)),
			zap.String("to_stage", string(result.NewState)),
			zap.Int("attempts", attempts))
	}
	return result, nil
}

func (e *Engine) newBackOff(ctx context.Context) backoff.BackOffContext {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = e.retry.InitialBackoff
	bo.MaxInterval = e.retry.MaxBackoff
	bo.MaxElapsedTime = 0
	bo.Reset()
	return backoff.WithContext(backoff.WithMaxRetries(bo, uint64(e.retry.MaxAttempts-1)), ctx)
}

// dispatchSideEffect runs after the compare-and-swap committed. It never
// undoes the stage change.
func (e *Engine) dispatchSideEffect(ctx context.Context, state *SaleState) (*bool, string, error) {
	kind, ok := e.sideEffects[state.Stage]
	if !ok {
		return nil, "", nil
	}

	created := false
	intent := TicketIntent{
		Kind:           kind,
		SaleID:         state.ID,
		TargetStage:    state.Stage,
		ClientRef:      state.ClientRef,
		AdvisorID:      state.AdvisorID,
		IdempotencyKey: IdempotencyKey(state.ID, state.Stage),
	}

	claimed, err := e.ledger.Claim(ctx, intent)
	if err != nil {
		e.logger.Error("failed to claim side effect",
			zap.String("sale_id", state.ID.String()),
			zap.String("idempotency_key", intent.IdempotencyKey),
			zap.Error(err))
		return &created, "", fmt.Errorf("%w: %w", ErrSideEffectFailed, err)
	}
	if !claimed {
		e.logger.Info("side effect already claimed, skipping dispatch",
			zap.String("sale_id", state.ID.String()),
			zap.String("idempotency_key", intent.IdempotencyKey))
		return &created, "", nil
	}

	if e.dispatcher == nil {
		cause := errors.New("no side effect dispatcher configured")
		_ = e.ledger.MarkFailed(ctx, intent.IdempotencyKey, cause)
		return &created, "", fmt.Errorf("%w: %w", ErrSideEffectFailed, cause)
	}

	ticketID, err := e.dispatcher.CreateTicket(ctx, intent)
	if err != nil {
		if markErr := e.ledger.MarkFailed(ctx, intent.IdempotencyKey, err); markErr != nil {
			e.logger.Warn("failed to record side effect failure",
				zap.String("idempotency_key", intent.IdempotencyKey),
				zap.Error(markErr))
		}
		e.logger.Error("side effect dispatch failed",
			zap.String("sale_id", state.ID.String()),
			zap.String("kind", string(kind)),
			zap.Error(err))
		return &created, "", fmt.Errorf("%w: %w", ErrSideEffectFailed, err)
	}

	if err := e.ledger.MarkDispatched(ctx, intent.IdempotencyKey, ticketID); err != nil {
		e.logger.Warn("failed to record side effect dispatch",
			zap.String("idempotency_key", intent.IdempotencyKey),
			zap.Error(err))
	}

	created = true
	return &created, ticketID, nil
}

// sideEffectError carries a post-commit failure through backoff.Retry
// without triggering another attempt.
type sideEffectError struct {
	err error
}

func (s sideEffectError) Error() string {
	return s.err.Error()
}

func (s sideEffectError) orNil() error {
	if s.err == nil {
		return nil
	}
	return backoff.Permanent(s)
}
