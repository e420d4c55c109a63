package config_test

import (
	"testing"
	"time"

	"github.com/straye-as/salesflow-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Environment)
	assert.Equal(t, 3, cfg.Lifecycle.MaxAttempts)
	assert.Equal(t, 20*time.Millisecond, cfg.Lifecycle.InitialBackoff())
	assert.Equal(t, 200*time.Millisecond, cfg.Lifecycle.MaxBackoff())
	assert.Equal(t, "tiers/tier-table.json", cfg.Incentive.TierDocument)
	assert.False(t, cfg.Incentive.ActivityGate.Enabled)
	assert.Equal(t, "local", cfg.Storage.Mode)
	assert.False(t, cfg.DataWarehouse.Enabled)
	assert.Equal(t, 20, cfg.Incentive.TierRevisions)
	assert.Equal(t, 90*24*time.Hour, cfg.Notification.Retention())
	assert.NotEmpty(t, cfg.Notification.PurgeCron)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("LIFECYCLE_MAXATTEMPTS", "5")
	t.Setenv("INCENTIVE_TIERDOCUMENT", "custom/tiers.json")
	t.Setenv("DATAWAREHOUSE_ENABLED", "true")
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Lifecycle.MaxAttempts)
	assert.Equal(t, "custom/tiers.json", cfg.Incentive.TierDocument)
	assert.True(t, cfg.DataWarehouse.Enabled)
	assert.Equal(t, "test-secret", cfg.Auth.JWTSecret)
}

func TestLoad_RejectsInvalidLifecycle(t *testing.T) {
	t.Setenv("LIFECYCLE_MAXATTEMPTS", "0")

	_, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "maxAttempts")
}

func TestValidate(t *testing.T) {
	valid := func() *config.Config {
		return &config.Config{
			Lifecycle: config.LifecycleConfig{MaxAttempts: 3, InitialBackoffMs: 10, MaxBackoffMs: 100},
			Incentive: config.IncentiveConfig{TierDocument: "tiers.json"},
			Storage:   config.StorageConfig{Mode: "local"},
		}
	}

	assert.NoError(t, valid().Validate())

	cfg := valid()
	cfg.Lifecycle.MaxBackoffMs = 5
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.Incentive.TierDocument = ""
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.Storage.Mode = "s3"
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.Notification = config.NotificationConfig{PurgeCron: "@daily"}
	assert.Error(t, cfg.Validate())
	cfg.Notification.RetentionDays = 30
	assert.NoError(t, cfg.Validate())
}

func TestDatabaseConnectionString(t *testing.T) {
	db := config.DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", Name: "salesflow", SSLMode: "require"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=salesflow sslmode=require", db.ConnectionString())
}
