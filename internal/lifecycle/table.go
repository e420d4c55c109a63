package lifecycle

import (
	"sort"

	"github.com/straye-as/salesflow-api/internal/domain"
)

// EdgeKind tags where an allowed transition comes from
type EdgeKind string

const (
	// ForwardEdge is a per-stage edge from the table
	ForwardEdge EdgeKind = "forward"
	// GlobalVoidEdge lets any non-voided stage be voided
	GlobalVoidEdge EdgeKind = "void"
	// GlobalExchangeEdge lets an open sold chain be converted into an exchange
	GlobalExchangeEdge EdgeKind = "exchange"
)

// Edge is one allowed outgoing transition
type Edge struct {
	To   domain.SaleStage
	Kind EdgeKind
}

// TransitionTable holds the forward edges per stage. Global void and exchange
// edges are layered on top in AllowedNext.
type TransitionTable struct {
	forward  map[domain.SaleStage][]domain.SaleStage
	exchange map[domain.SaleStage]bool
}

// defaultForward is the canonical per-stage table
var defaultForward = map[domain.SaleStage][]domain.SaleStage{
	domain.StageSold:                    {domain.StageSoldShipped},
	domain.StageSoldShipped:             {domain.StageSoldShippedReceived},
	domain.StageSoldShippedReceived:     {domain.StageSoldShippedTrained},
	domain.StageSoldShippedTrained:      {},
	domain.StageExchange:                {domain.StageExchangeShipped},
	domain.StageExchangeShipped:         {domain.StageExchangeShippedReceived},
	domain.StageExchangeShippedReceived: {domain.StageSoldShippedTrained},
	domain.StageVoided:                  {},
}

// DefaultTransitionTable returns the canonical sale lifecycle table
func DefaultTransitionTable() *TransitionTable {
	return NewTransitionTable(defaultForward)
}

// NewTransitionTable builds a table from per-stage forward edges. Stages of the
// sold chain that still have forward edges receive the global exchange edge.
func NewTransitionTable(forward map[domain.SaleStage][]domain.SaleStage) *TransitionTable {
	t := &TransitionTable{
		forward:  make(map[domain.SaleStage][]domain.SaleStage, len(forward)),
		exchange: make(map[domain.SaleStage]bool),
	}
	for from, next := range forward {
		cp := make([]domain.SaleStage, len(next))
		copy(cp, next)
		t.forward[from] = cp
		if from.Root() == domain.StageSold && len(next) > 0 {
			t.exchange[from] = true
		}
	}
	if _, ok := t.forward[domain.StageVoided]; !ok {
		t.forward[domain.StageVoided] = nil
	}
	if _, ok := t.forward[domain.StageExchange]; !ok {
		t.forward[domain.StageExchange] = nil
	}
	return t
}

// IsKnown reports whether the stage appears in the table
func (t *TransitionTable) IsKnown(stage domain.SaleStage) bool {
	_, ok := t.forward[stage]
	return ok
}

// AllowedNext returns the outgoing edges of a stage: forward edges first,
// then exchange, then void. Unknown stages and voided have none.
func (t *TransitionTable) AllowedNext(stage domain.SaleStage) []Edge {
	next, ok := t.forward[stage]
	if !ok || stage == domain.StageVoided {
		return nil
	}

	edges := make([]Edge, 0, len(next)+2)
	for _, to := range next {
		edges = append(edges, Edge{To: to, Kind: ForwardEdge})
	}
	if t.exchange[stage] {
		edges = append(edges, Edge{To: domain.StageExchange, Kind: GlobalExchangeEdge})
	}
	edges = append(edges, Edge{To: domain.StageVoided, Kind: GlobalVoidEdge})
	return edges
}

// AllowedStages returns only the target stages of AllowedNext
func (t *TransitionTable) AllowedStages(stage domain.SaleStage) []domain.SaleStage {
	edges := t.AllowedNext(stage)
	stages := make([]domain.SaleStage, 0, len(edges))
	for _, e := range edges {
		stages = append(stages, e.To)
	}
	return stages
}

// IsValidTransition checks whether from → to is an allowed edge
func (t *TransitionTable) IsValidTransition(from, to domain.SaleStage) bool {
	for _, e := range t.AllowedNext(from) {
		if e.To == to {
			return true
		}
	}
	return false
}

// Stages lists every known stage in a stable order
func (t *TransitionTable) Stages() []domain.SaleStage {
	stages := make([]domain.SaleStage, 0, len(t.forward))
	for s := range t.forward {
		stages = append(stages, s)
	}
	sort.Slice(stages, func(i, j int) bool {
		ri, rj := rootOrder(stages[i].Root()), rootOrder(stages[j].Root())
		if ri != rj {
			return ri < rj
		}
		if stages[i].Depth() != stages[j].Depth() {
			return stages[i].Depth() < stages[j].Depth()
		}
		return stages[i] < stages[j]
	})
	return stages
}

func rootOrder(root domain.SaleStage) int {
	switch root {
	case domain.StageSold:
		return 0
	case domain.StageExchange:
		return 1
	case domain.StageVoided:
		return 2
	default:
		return 3
	}
}
