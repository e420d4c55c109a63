package database_test

import (
	"context"
	"testing"

	"github.com/straye-as/salesflow-api/internal/database"
	"github.com/straye-as/salesflow-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthCheck(t *testing.T) {
	db := testutil.NewTestDB(t)

	assert.NoError(t, database.HealthCheck(context.Background(), db))

	stats, err := database.HealthCheckWithStats(context.Background(), db)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.OpenConnections)
}

func TestAutoMigrateCreatesTables(t *testing.T) {
	db := testutil.NewTestDB(t)

	for _, table := range []string{
		"sales",
		"sale_line_items",
		"sale_stage_history",
		"sale_side_effects",
		"service_tickets",
		"notifications",
		"number_sequences",
		"advisor_periods",
	} {
		assert.True(t, db.Migrator().HasTable(table), "missing table %s", table)
	}
}
