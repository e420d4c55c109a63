package telemetry_test

import (
	"context"
	"testing"

	"github.com/straye-as/salesflow-api/internal/config"
	"github.com/straye-as/salesflow-api/internal/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Aggregation {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := map[string]metricdata.Aggregation{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m.Data
		}
	}
	return out
}

func sumOf(t *testing.T, agg metricdata.Aggregation) int64 {
	t.Helper()
	sum, ok := agg.(metricdata.Sum[int64])
	require.True(t, ok, "expected int64 sum, got %T", agg)
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func TestInstruments_Record(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	in, err := telemetry.NewInstruments(provider.Meter("test"))
	require.NoError(t, err)

	ctx := context.Background()
	in.RecordTransition(ctx, "sold/shipped", telemetry.OutcomeApplied, 1)
	in.RecordTransition(ctx, "sold/shipped", telemetry.OutcomeReplayed, 1)
	in.RecordTransition(ctx, "sold/shipped/received", telemetry.OutcomeConflict, 3)
	in.RecordSideEffect(ctx, "training", telemetry.OutcomeApplied)
	in.RecordBonusEvaluation(ctx, "sales_only", telemetry.OutcomeEvaluated)
	in.RecordTierReload(ctx, true)
	in.RecordPeriodSync(ctx, 4)

	metrics := collect(t, reader)
	assert.Equal(t, int64(3), sumOf(t, metrics["salesflow.lifecycle.transitions"]))
	assert.Equal(t, int64(1), sumOf(t, metrics["salesflow.lifecycle.side_effects"]))
	assert.Equal(t, int64(1), sumOf(t, metrics["salesflow.incentive.evaluations"]))
	assert.Equal(t, int64(1), sumOf(t, metrics["salesflow.incentive.tier_reloads"]))
	assert.Equal(t, int64(4), sumOf(t, metrics["salesflow.incentive.period_sync_updates"]))

	hist, ok := metrics["salesflow.lifecycle.cas_attempts"].(metricdata.Histogram[int64])
	require.True(t, ok)
	require.Len(t, hist.DataPoints, 1)
	assert.Equal(t, uint64(3), hist.DataPoints[0].Count)
	assert.Equal(t, int64(5), hist.DataPoints[0].Sum)
}

func TestInit_DisabledInstallsNoop(t *testing.T) {
	shutdown, err := telemetry.Init(context.Background(), &config.TelemetryConfig{Enabled: false}, "salesflow-api", "test")
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))

	// no-op instruments never fail
	in, err := telemetry.NewInstruments(telemetry.Meter())
	require.NoError(t, err)
	in.RecordTransition(context.Background(), "sold", telemetry.OutcomeApplied, 1)
}
