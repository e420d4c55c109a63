// Package secrets resolves credentials from Azure Key Vault or the process
// environment and writes them into configuration fields.
package secrets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
)

// SecretSource defines where secrets are loaded from
type SecretSource string

const (
	SourceEnvironment SecretSource = "environment"
	SourceVault       SecretSource = "vault"
	// SourceAuto uses the vault outside development
	SourceAuto SecretSource = "auto"
)

// Key Vault secret names used by the salesflow API
const (
	DatabaseHost     = "POSTGRES-MAIN-HOST"
	DatabaseUser     = "POSTGRES-MAIN-USER"
	DatabasePassword = "POSTGRES-MAIN-PASSWORD"
	JWTSecret        = "salesflow-jwt-secret"
	AdminAPIKey      = "salesflow-admin-api-key"
	StorageConnStr   = "storage-connection-string"
	WarehouseURL     = "WAREHOUSE-URL"
	WarehouseUser    = "WAREHOUSE-USERNAME"
	WarehousePass    = "WAREHOUSE-PASSWORD"
)

// ErrSecretNotFound is returned when a secret has no value in the active source
var ErrSecretNotFound = errors.New("secret not found")

// Binding maps a secret onto a configuration field. Env, when set, overrides
// the secret source. Required bindings fail Apply when nothing resolves.
type Binding struct {
	Secret   string
	Env      string
	Target   *string
	Required bool
}

// fetcher reads one secret from a backing store
type fetcher interface {
	GetSecret(ctx context.Context, name string) (string, error)
}

// Provider abstracts secret retrieval from different sources
type Provider struct {
	source SecretSource
	vault  fetcher
	logger *zap.Logger
}

// ProviderConfig holds configuration for the secrets provider
type ProviderConfig struct {
	Source       SecretSource
	VaultName    string
	Environment  string
	CacheEnabled bool
	CacheTTL     time.Duration
}

// ResolveSource turns SourceAuto into a concrete source for environment
func ResolveSource(source SecretSource, environment string) SecretSource {
	if source != SourceAuto {
		return source
	}
	switch strings.ToLower(environment) {
	case "development", "local", "test", "":
		return SourceEnvironment
	default:
		return SourceVault
	}
}

// NewProvider creates a secrets provider. A vault source needs VaultName.
func NewProvider(cfg *ProviderConfig, logger *zap.Logger) (*Provider, error) {
	source := ResolveSource(cfg.Source, cfg.Environment)
	p := &Provider{source: source, logger: logger}

	switch source {
	case SourceEnvironment:
	case SourceVault:
		vault, err := NewVaultClient(&VaultConfig{
			VaultName:    cfg.VaultName,
			CacheEnabled: cfg.CacheEnabled,
			CacheTTL:     cfg.CacheTTL,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize vault client: %w", err)
		}
		p.vault = vault
	default:
		return nil, fmt.Errorf("unknown secret source: %s", source)
	}

	logger.Info("Secrets provider initialized",
		zap.String("source", string(source)),
		zap.String("environment", cfg.Environment),
	)
	return p, nil
}

// GetSecret retrieves a secret by name. For the environment source name is
// an environment variable.
func (p *Provider) GetSecret(ctx context.Context, name string) (string, error) {
	if p.source == SourceEnvironment {
		if value := os.Getenv(name); value != "" {
			return value, nil
		}
		return "", fmt.Errorf("%w: environment variable %q not set", ErrSecretNotFound, name)
	}
	return p.vault.GetSecret(ctx, name)
}

// Apply resolves every binding, environment override first. Optional
// bindings that do not resolve leave their target untouched.
func (p *Provider) Apply(ctx context.Context, bindings []Binding) error {
	var missing []string
	for _, b := range bindings {
		value := ""
		if b.Env != "" {
			value = os.Getenv(b.Env)
		}
		if value == "" {
			v, err := p.GetSecret(ctx, b.Secret)
			if err != nil {
				p.logger.Debug("secret not resolved",
					zap.String("secret_name", b.Secret),
					zap.String("source", string(p.source)),
					zap.Error(err))
			}
			value = v
		}

		if value != "" {
			*b.Target = value
			continue
		}
		if b.Required && *b.Target == "" {
			missing = append(missing, b.Secret)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrSecretNotFound, strings.Join(missing, ", "))
	}
	return nil
}

// Source returns the current secret source
func (p *Provider) Source() SecretSource {
	return p.source
}
