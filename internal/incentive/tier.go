package incentive

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/straye-as/salesflow-api/internal/domain"
)

// TierEntry is one (threshold, bonus) step of a modality's incentive ladder
type TierEntry struct {
	ThresholdPct decimal.Decimal
	BonusAmount  decimal.Decimal
	Label        string
}

// TierSource loads tier entries from wherever they are administered
type TierSource interface {
	Load(ctx context.Context) (map[domain.IncentiveModality][]TierEntry, error)
}

// TierTable is an immutable, validated set of tier ladders keyed by modality.
// Each ladder is sorted ascending by threshold with unique thresholds and
// non-decreasing bonus.
type TierTable struct {
	tiers map[domain.IncentiveModality][]TierEntry
}

// NewTierTable validates and sorts the given entries. Entries may arrive in any order.
func NewTierTable(entries map[domain.IncentiveModality][]TierEntry) (*TierTable, error) {
	t := &TierTable{tiers: make(map[domain.IncentiveModality][]TierEntry, len(entries))}

	for modality, ladder := range entries {
		if !modality.IsValid() {
			return nil, fmt.Errorf("%w: unknown modality %q", ErrTierTableMisconfigured, modality)
		}

		sorted := make([]TierEntry, len(ladder))
		copy(sorted, ladder)
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].ThresholdPct.LessThan(sorted[j].ThresholdPct)
		})

		for i, entry := range sorted {
			if entry.ThresholdPct.IsNegative() {
				return nil, fmt.Errorf("%w: %s tier %q has negative threshold %s",
					ErrTierTableMisconfigured, modality, entry.Label, entry.ThresholdPct)
			}
			if entry.BonusAmount.IsNegative() {
				return nil, fmt.Errorf("%w: %s tier %q has negative bonus %s",
					ErrTierTableMisconfigured, modality, entry.Label, entry.BonusAmount)
			}
			if i == 0 {
				continue
			}
			prev := sorted[i-1]
			if entry.ThresholdPct.Equal(prev.ThresholdPct) {
				return nil, fmt.Errorf("%w: %s has duplicate threshold %s",
					ErrTierTableMisconfigured, modality, entry.ThresholdPct)
			}
			if entry.BonusAmount.LessThan(prev.BonusAmount) {
				return nil, fmt.Errorf("%w: %s bonus decreases from %q to %q",
					ErrTierTableMisconfigured, modality, prev.Label, entry.Label)
			}
		}

		t.tiers[modality] = sorted
	}

	return t, nil
}

// EmptyTierTable returns a table with no incentive program for any modality
func EmptyTierTable() *TierTable {
	return &TierTable{tiers: map[domain.IncentiveModality][]TierEntry{}}
}

// Tiers returns a copy of the sorted ladder for a modality
func (t *TierTable) Tiers(modality domain.IncentiveModality) []TierEntry {
	ladder := t.tiers[modality]
	out := make([]TierEntry, len(ladder))
	copy(out, ladder)
	return out
}

// All returns a copy of every ladder
func (t *TierTable) All() map[domain.IncentiveModality][]TierEntry {
	out := make(map[domain.IncentiveModality][]TierEntry, len(t.tiers))
	for m := range t.tiers {
		out[m] = t.Tiers(m)
	}
	return out
}

// Lookup finds the current tier (largest threshold <= score) and the next
// tier (smallest threshold > score). Either may be nil.
func (t *TierTable) Lookup(modality domain.IncentiveModality, score decimal.Decimal) (current, next *TierEntry) {
	ladder := t.tiers[modality]

	// first index whose threshold exceeds score
	idx := sort.Search(len(ladder), func(i int) bool {
		return ladder[i].ThresholdPct.GreaterThan(score)
	})

	if idx > 0 {
		c := ladder[idx-1]
		current = &c
	}
	if idx < len(ladder) {
		n := ladder[idx]
		next = &n
	}
	return current, next
}
