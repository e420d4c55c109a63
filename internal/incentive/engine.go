package incentive

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/straye-as/salesflow-api/internal/domain"
)

var hundred = decimal.NewFromInt(100)

// NextTier projects the step after the current one
type NextTier struct {
	Label        string
	ThresholdPct decimal.Decimal
	BonusAmount  decimal.Decimal
	// FaltaUSD is the additional achieved amount needed to reach ThresholdPct
	FaltaUSD decimal.Decimal
}

// ActivityMetrics are the raw engagement figures of a blended-modality period
type ActivityMetrics struct {
	MessagesSent         int
	CallsMade            int
	ActiveDays           int
	SalesClosed          int
	MessageConversionPct decimal.Decimal
	CallConversionPct    decimal.Decimal
}

// BonusResult is the outcome of evaluating one advisor period
type BonusResult struct {
	Modality    domain.IncentiveModality
	ScorePct    decimal.Decimal
	BonoActual  decimal.Decimal
	TierLabel   string
	CurrentTier *TierEntry
	NextTier    *NextTier
	Activity    *ActivityMetrics
	// ActivityGateMet is nil unless an activity policy applied to the period
	ActivityGateMet *bool
}

// Engine evaluates advisor periods against a tier table. It holds no mutable
// state and is safe for concurrent use.
type Engine struct {
	table      *TierTable
	strategies map[domain.IncentiveModality]ScoreStrategy
	policy     ActivityPolicy
}

// NewEngine creates an engine using the achievement strategy for both modalities
func NewEngine(table *TierTable, policy ActivityPolicy) *Engine {
	if table == nil {
		table = EmptyTierTable()
	}
	return &Engine{
		table:      table,
		strategies: defaultStrategies(),
		policy:     policy,
	}
}

// WithStrategy returns a copy of the engine scoring the modality with s
func (e *Engine) WithStrategy(modality domain.IncentiveModality, s ScoreStrategy) *Engine {
	strategies := make(map[domain.IncentiveModality]ScoreStrategy, len(e.strategies)+1)
	for m, st := range e.strategies {
		strategies[m] = st
	}
	strategies[modality] = s
	return &Engine{table: e.table, strategies: strategies, policy: e.policy}
}

// Table returns the tier table the engine evaluates against
func (e *Engine) Table() *TierTable {
	return e.table
}

// Evaluate computes the current bonus and next-tier projection for a period.
// A modality with no configured tiers yields a zero bonus and no next tier.
func (e *Engine) Evaluate(period *domain.AdvisorPeriod) (*BonusResult, error) {
	strategy, ok := e.strategies[period.Modality]
	if !ok || !period.Modality.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownModality, period.Modality)
	}

	score := strategy.Score(period)
	if score.IsNegative() {
		score = decimal.Zero
	}

	result := &BonusResult{
		Modality:   period.Modality,
		ScorePct:   score,
		BonoActual: decimal.Zero,
	}

	current, next := e.table.Lookup(period.Modality, score)

	if period.Modality == domain.ModalitySalesAndActivity {
		result.Activity = &ActivityMetrics{
			MessagesSent:         period.MessagesSent,
			CallsMade:            period.CallsMade,
			ActiveDays:           period.ActiveDays,
			SalesClosed:          period.SalesClosed,
			MessageConversionPct: period.MessageConversionPct(),
			CallConversionPct:    period.CallConversionPct(),
		}
		if e.policy.Enabled {
			met := e.policy.Met(period)
			result.ActivityGateMet = &met
			if !met {
				current = nil
			}
		}
	}

	if current != nil {
		result.CurrentTier = current
		result.BonoActual = current.BonusAmount
		result.TierLabel = current.Label
	}

	if next != nil {
		result.NextTier = &NextTier{
			Label:        next.Label,
			ThresholdPct: next.ThresholdPct,
			BonusAmount:  next.BonusAmount,
			FaltaUSD:     gapAmount(next.ThresholdPct, score, period.QuotaAmount),
		}
	}

	return result, nil
}

// gapAmount is (threshold - score)/100 × quota, clamped at zero and rounded
// half-up to cents. The score carries the truncation of a non-terminating
// achieved/quota division, so rounding up would add a cent that is not owed.
func gapAmount(threshold, score, quota decimal.Decimal) decimal.Decimal {
	gap := threshold.Sub(score).Div(hundred).Mul(quota)
	if !gap.IsPositive() {
		return decimal.Zero
	}
	return gap.Round(2)
}
