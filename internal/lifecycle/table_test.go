package lifecycle_test

import (
	"testing"

	"github.com/straye-as/salesflow-api/internal/domain"
	"github.com/straye-as/salesflow-api/internal/lifecycle"
	"github.com/stretchr/testify/assert"
)

func TestAllowedNext(t *testing.T) {
	table := lifecycle.DefaultTransitionTable()

	tests := []struct {
		from     domain.SaleStage
		expected []lifecycle.Edge
	}{
		{
			from: domain.StageSold,
			expected: []lifecycle.Edge{
				{To: domain.StageSoldShipped, Kind: lifecycle.ForwardEdge},
				{To: domain.StageExchange, Kind: lifecycle.GlobalExchangeEdge},
				{To: domain.StageVoided, Kind: lifecycle.GlobalVoidEdge},
			},
		},
		{
			from: domain.StageSoldShippedReceived,
			expected: []lifecycle.Edge{
				{To: domain.StageSoldShippedTrained, Kind: lifecycle.ForwardEdge},
				{To: domain.StageExchange, Kind: lifecycle.GlobalExchangeEdge},
				{To: domain.StageVoided, Kind: lifecycle.GlobalVoidEdge},
			},
		},
		{
			from: domain.StageSoldShippedTrained,
			expected: []lifecycle.Edge{
				{To: domain.StageVoided, Kind: lifecycle.GlobalVoidEdge},
			},
		},
		{
			from: domain.StageExchangeShippedReceived,
			expected: []lifecycle.Edge{
				{To: domain.StageSoldShippedTrained, Kind: lifecycle.ForwardEdge},
				{To: domain.StageVoided, Kind: lifecycle.GlobalVoidEdge},
			},
		},
		{
			from:     domain.StageVoided,
			expected: nil,
		},
		{
			from:     domain.SaleStage("unknown"),
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(string(tt.from), func(t *testing.T) {
			assert.Equal(t, tt.expected, table.AllowedNext(tt.from))
		})
	}
}

func TestIsValidTransition(t *testing.T) {
	table := lifecycle.DefaultTransitionTable()

	assert.True(t, table.IsValidTransition(domain.StageSold, domain.StageSoldShipped))
	assert.True(t, table.IsValidTransition(domain.StageExchange, domain.StageVoided))
	assert.False(t, table.IsValidTransition(domain.StageSold, domain.StageSoldShippedReceived))
	assert.False(t, table.IsValidTransition(domain.StageSoldShippedTrained, domain.StageExchange))
	assert.False(t, table.IsValidTransition(domain.StageVoided, domain.StageSold))
	assert.False(t, table.IsValidTransition(domain.StageExchange, domain.StageExchange))
}

func TestStagesAreKnown(t *testing.T) {
	table := lifecycle.DefaultTransitionTable()

	stages := table.Stages()
	assert.Len(t, stages, 8)
	assert.Equal(t, domain.StageSold, stages[0])
	assert.Equal(t, domain.StageVoided, stages[len(stages)-1])

	for _, s := range stages {
		assert.True(t, table.IsKnown(s))
		for _, e := range table.AllowedNext(s) {
			assert.True(t, table.IsKnown(e.To), "%s -> %s", s, e.To)
		}
	}
}
