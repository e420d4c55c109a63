package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
)

// Transition outcomes recorded on salesflow.lifecycle.transitions
const (
	OutcomeApplied           = "applied"
	OutcomeReplayed          = "replayed"
	OutcomeInvalid           = "invalid"
	OutcomeConflict          = "conflict"
	OutcomeNotFound          = "not_found"
	OutcomeSideEffectFailed  = "side_effect_failed"
	OutcomeError             = "error"
	OutcomeEvaluated         = "evaluated"
	OutcomeUnknownModality   = "unknown_modality"
	OutcomePeriodNotFound    = "period_not_found"
	OutcomeSideEffectRetried = "retried"
)

// Instruments holds the domain metrics
type Instruments struct {
	transitions       metric.Int64Counter
	casAttempts       metric.Int64Histogram
	sideEffects       metric.Int64Counter
	bonusEvaluations  metric.Int64Counter
	tierTableReloads  metric.Int64Counter
	periodSyncUpdates metric.Int64Counter
}

// NewInstruments creates the domain instruments on meter
func NewInstruments(meter metric.Meter) (*Instruments, error) {
	var (
		in  Instruments
		err error
	)

	if in.transitions, err = meter.Int64Counter("salesflow.lifecycle.transitions",
		metric.WithDescription("Lifecycle transition requests by outcome")); err != nil {
		return nil, fmt.Errorf("transitions counter: %w", err)
	}
	if in.casAttempts, err = meter.Int64Histogram("salesflow.lifecycle.cas_attempts",
		metric.WithDescription("Compare-and-swap attempts per transition request"),
		metric.WithExplicitBucketBoundaries(1, 2, 3, 5, 8)); err != nil {
		return nil, fmt.Errorf("cas attempts histogram: %w", err)
	}
	if in.sideEffects, err = meter.Int64Counter("salesflow.lifecycle.side_effects",
		metric.WithDescription("Side effect dispatches by kind and outcome")); err != nil {
		return nil, fmt.Errorf("side effects counter: %w", err)
	}
	if in.bonusEvaluations, err = meter.Int64Counter("salesflow.incentive.evaluations",
		metric.WithDescription("Bonus evaluations by modality and outcome")); err != nil {
		return nil, fmt.Errorf("evaluations counter: %w", err)
	}
	if in.tierTableReloads, err = meter.Int64Counter("salesflow.incentive.tier_reloads",
		metric.WithDescription("Tier table reloads by outcome")); err != nil {
		return nil, fmt.Errorf("tier reloads counter: %w", err)
	}
	if in.periodSyncUpdates, err = meter.Int64Counter("salesflow.incentive.period_sync_updates",
		metric.WithDescription("Advisor periods refreshed from the data warehouse")); err != nil {
		return nil, fmt.Errorf("period sync counter: %w", err)
	}

	return &in, nil
}

// NoopInstruments returns instruments that record nothing
func NoopInstruments() *Instruments {
	in, _ := NewInstruments(metricnoop.NewMeterProvider().Meter(instrumentationScope))
	return in
}

// RecordTransition counts one transition request
func (in *Instruments) RecordTransition(ctx context.Context, target, outcome string, attempts int) {
	in.transitions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("to_stage", target),
		attribute.String("outcome", outcome),
	))
	if attempts > 0 {
		in.casAttempts.Record(ctx, int64(attempts))
	}
}

// RecordSideEffect counts one side effect dispatch
func (in *Instruments) RecordSideEffect(ctx context.Context, kind, outcome string) {
	in.sideEffects.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.String("outcome", outcome),
	))
}

// RecordBonusEvaluation counts one bonus evaluation
func (in *Instruments) RecordBonusEvaluation(ctx context.Context, modality, outcome string) {
	in.bonusEvaluations.Add(ctx, 1, metric.WithAttributes(
		attribute.String("modality", modality),
		attribute.String("outcome", outcome),
	))
}

// RecordTierReload counts one tier table reload attempt
func (in *Instruments) RecordTierReload(ctx context.Context, ok bool) {
	in.tierTableReloads.Add(ctx, 1, metric.WithAttributes(attribute.Bool("ok", ok)))
}

// RecordPeriodSync counts advisor periods refreshed in one sync run
func (in *Instruments) RecordPeriodSync(ctx context.Context, updated int) {
	in.periodSyncUpdates.Add(ctx, int64(updated))
}
