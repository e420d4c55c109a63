package secrets_test

import (
	"context"
	"errors"
	"testing"

	"github.com/straye-as/salesflow-api/internal/secrets"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestResolveSource(t *testing.T) {
	assert.Equal(t, secrets.SourceEnvironment, secrets.ResolveSource(secrets.SourceAuto, "development"))
	assert.Equal(t, secrets.SourceEnvironment, secrets.ResolveSource(secrets.SourceAuto, ""))
	assert.Equal(t, secrets.SourceVault, secrets.ResolveSource(secrets.SourceAuto, "production"))
	assert.Equal(t, secrets.SourceEnvironment, secrets.ResolveSource(secrets.SourceEnvironment, "production"))
}

func TestNewProvider_VaultRequiresName(t *testing.T) {
	_, err := secrets.NewProvider(&secrets.ProviderConfig{Source: secrets.SourceVault}, zap.NewNop())
	assert.Error(t, err)
}

func TestProvider_Apply(t *testing.T) {
	p, err := secrets.NewProvider(&secrets.ProviderConfig{Source: secrets.SourceEnvironment}, zap.NewNop())
	require.NoError(t, err)
	ctx := context.Background()

	t.Setenv("SALESFLOW_TEST_SECRET", "from-secret-name")
	t.Setenv("SALESFLOW_TEST_OVERRIDE", "from-override")

	var a, b, c string
	c = "keep-me"
	err = p.Apply(ctx, []secrets.Binding{
		{Secret: "SALESFLOW_TEST_SECRET", Target: &a},
		{Secret: "SALESFLOW_TEST_SECRET", Env: "SALESFLOW_TEST_OVERRIDE", Target: &b},
		{Secret: "SALESFLOW_TEST_MISSING", Target: &c},
	})
	require.NoError(t, err)
	assert.Equal(t, "from-secret-name", a)
	assert.Equal(t, "from-override", b)
	assert.Equal(t, "keep-me", c)

	t.Run("required binding without a value fails", func(t *testing.T) {
		var target string
		err := p.Apply(ctx, []secrets.Binding{
			{Secret: "SALESFLOW_TEST_MISSING", Required: true, Target: &target},
		})
		require.Error(t, err)
		assert.True(t, errors.Is(err, secrets.ErrSecretNotFound))
		assert.Contains(t, err.Error(), "SALESFLOW_TEST_MISSING")
	})

	t.Run("required binding with a preset value passes", func(t *testing.T) {
		target := "preset"
		err := p.Apply(ctx, []secrets.Binding{
			{Secret: "SALESFLOW_TEST_MISSING", Required: true, Target: &target},
		})
		assert.NoError(t, err)
	})
}
