package config

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"github.com/straye-as/salesflow-api/internal/secrets"
	"go.uber.org/zap"
)

// Config holds all application configuration
type Config struct {
	App           AppConfig
	Database      DatabaseConfig
	DataWarehouse DataWarehouseConfig
	Auth          AuthConfig
	Storage       StorageConfig
	Secrets       SecretsConfig
	Logging       LoggingConfig
	Server        ServerConfig
	CORS          CORSConfig
	Security      SecurityConfig
	RateLimit     RateLimitConfig
	Lifecycle     LifecycleConfig
	Incentive     IncentiveConfig
	Notification  NotificationConfig
	Telemetry     TelemetryConfig
}

type AppConfig struct {
	Name        string
	Environment string
	Port        int
}

type DatabaseConfig struct {
	Host            string
	Port            int
	Name            string
	User            string
	Password        string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int
}

// DataWarehouseConfig holds configuration for the MS SQL Server data warehouse.
// The connection is optional and read-only; it feeds period achievement sync.
type DataWarehouseConfig struct {
	Enabled bool
	// URL is host:port/database (from WAREHOUSE-URL secret)
	URL             string
	User            string
	Password        string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // seconds
	QueryTimeout    int // seconds
	// PeriodSyncCron is the cron expression (with seconds) for the period sync job
	PeriodSyncCron string
}

// AuthConfig controls how callers are identified for stage history attribution
type AuthConfig struct {
	// JWTSecret validates HS256 bearer tokens
	JWTSecret string
	Issuer    string
	Audience  string
	// ApiKey authenticates system callers via X-API-Key
	ApiKey string
	// Required rejects unauthenticated requests when true
	Required bool
}

type StorageConfig struct {
	Mode                  string
	LocalBasePath         string
	CloudConnectionString string
	CloudContainer        string
}

type SecretsConfig struct {
	// Source is "environment", "vault", or "auto"
	Source       string
	KeyVaultName string
	CacheEnabled bool
	CacheTTL     int // seconds
}

type LoggingConfig struct {
	Level  string
	Format string
}

type ServerConfig struct {
	ReadTimeout    int
	WriteTimeout   int
	RequestTimeout int
	EnableSwagger  bool
}

// CORSConfig holds CORS configuration
type CORSConfig struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	AllowCredentials bool
	MaxAge           int
}

// SecurityConfig holds security header configuration
type SecurityConfig struct {
	EnableHSTS            bool
	HSTSMaxAge            int
	HSTSIncludeSubdomains bool
	ContentSecurityPolicy string
	FrameOptions          string
	ContentTypeNosniff    bool
	ReferrerPolicy        string
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled bool
	// RequestsPerMinute applies per client IP before authentication
	RequestsPerMinute int
	// RequestsPerMinuteAuth applies per authenticated caller
	RequestsPerMinuteAuth int
	WhitelistIPs          []string
	// WhitelistPaths bypass rate limiting (e.g. /health)
	WhitelistPaths []string
}

// LifecycleConfig tunes the transition engine and side-effect recovery
type LifecycleConfig struct {
	// MaxAttempts bounds compare-and-swap attempts per transition request
	MaxAttempts      int
	InitialBackoffMs int
	MaxBackoffMs     int
	// SideEffectRetryEnabled schedules re-dispatch of failed side effects
	SideEffectRetryEnabled bool
	SideEffectRetryCron    string
	SideEffectRetryBatch   int
}

// IncentiveConfig locates the tier document and the optional activity gate
type IncentiveConfig struct {
	// TierDocument is the storage object name holding the tier table JSON
	TierDocument string
	// TierRevisions is how many superseded tier documents are kept
	TierRevisions int
	ReloadCron    string
	ActivityGate  ActivityGateConfig
}

// NotificationConfig controls cleanup of read advisor notifications.
// An empty PurgeCron disables the purge job.
type NotificationConfig struct {
	RetentionDays int
	PurgeCron     string
}

// Retention returns the retention window as duration
func (n *NotificationConfig) Retention() time.Duration {
	return time.Duration(n.RetentionDays) * 24 * time.Hour
}

// ActivityGateConfig gates tier eligibility for the sales_and_activity modality
type ActivityGateConfig struct {
	Enabled                 bool
	MinMessageConversionPct float64
	MinCallConversionPct    float64
	MinActiveDays           int
}

// TelemetryConfig controls OpenTelemetry metrics and traces
type TelemetryConfig struct {
	Enabled bool
	// Stdout exports to stdout instead of OTLP
	Stdout       bool
	OTLPEndpoint string
}

// ConnectionString builds PostgreSQL connection string
func (d *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

// ConnMaxLifetimeDuration returns connection max lifetime as duration
func (d *DatabaseConfig) ConnMaxLifetimeDuration() time.Duration {
	return time.Duration(d.ConnMaxLifetime) * time.Second
}

// ConnMaxLifetimeDuration returns connection max lifetime as duration
func (d *DataWarehouseConfig) ConnMaxLifetimeDuration() time.Duration {
	return time.Duration(d.ConnMaxLifetime) * time.Second
}

// QueryTimeoutDuration returns query timeout as duration
func (d *DataWarehouseConfig) QueryTimeoutDuration() time.Duration {
	return time.Duration(d.QueryTimeout) * time.Second
}

// ReadTimeoutDuration returns read timeout as duration
func (s *ServerConfig) ReadTimeoutDuration() time.Duration {
	return time.Duration(s.ReadTimeout) * time.Second
}

// WriteTimeoutDuration returns write timeout as duration
func (s *ServerConfig) WriteTimeoutDuration() time.Duration {
	return time.Duration(s.WriteTimeout) * time.Second
}

// RequestTimeoutDuration returns request timeout as duration
func (s *ServerConfig) RequestTimeoutDuration() time.Duration {
	return time.Duration(s.RequestTimeout) * time.Second
}

// InitialBackoff returns the first CAS retry delay
func (l *LifecycleConfig) InitialBackoff() time.Duration {
	return time.Duration(l.InitialBackoffMs) * time.Millisecond
}

// MaxBackoff returns the CAS retry delay cap
func (l *LifecycleConfig) MaxBackoff() time.Duration {
	return time.Duration(l.MaxBackoffMs) * time.Millisecond
}

// Load loads configuration from file and environment variables.
// It does not fetch secrets from vault; use LoadWithSecrets for that.
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Environment variables override config file
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.Auth.ApiKey == "" {
		cfg.Auth.ApiKey = v.GetString("ADMIN_API_KEY")
	}
	if cfg.Auth.JWTSecret == "" {
		cfg.Auth.JWTSecret = v.GetString("JWT_SECRET")
	}
	if cfg.Secrets.KeyVaultName == "" {
		cfg.Secrets.KeyVaultName = v.GetString("AZURE_KEY_VAULT_NAME")
	}
	if v.GetBool("DATAWAREHOUSE_ENABLED") {
		cfg.DataWarehouse.Enabled = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks values the services cannot run without
func (c *Config) Validate() error {
	if c.Lifecycle.MaxAttempts < 1 {
		return fmt.Errorf("lifecycle.maxAttempts must be at least 1, got %d", c.Lifecycle.MaxAttempts)
	}
	if c.Lifecycle.InitialBackoffMs < 0 || c.Lifecycle.MaxBackoffMs < c.Lifecycle.InitialBackoffMs {
		return fmt.Errorf("lifecycle backoff must satisfy 0 <= initialBackoffMs <= maxBackoffMs")
	}
	if c.Incentive.TierDocument == "" {
		return fmt.Errorf("incentive.tierDocument is required")
	}
	if c.Notification.PurgeCron != "" && c.Notification.RetentionDays < 1 {
		return fmt.Errorf("notification.retentionDays must be at least 1 when purging, got %d", c.Notification.RetentionDays)
	}
	switch c.Storage.Mode {
	case "local", "cloud":
	default:
		return fmt.Errorf("storage.mode must be local or cloud, got %q", c.Storage.Mode)
	}
	return nil
}

// LoadWithSecrets loads configuration and resolves secrets from Azure Key Vault
// when USE_AZURE_KEY_VAULT=true and the environment is staging or production.
//
// Data warehouse credentials are always loaded from Key Vault when the data
// warehouse is enabled and AZURE_KEY_VAULT_NAME is configured.
func LoadWithSecrets(ctx context.Context, logger *zap.Logger) (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}

	useKeyVault := strings.ToLower(os.Getenv("USE_AZURE_KEY_VAULT")) == "true"
	isValidEnv := cfg.App.Environment == "staging" || cfg.App.Environment == "production"

	if cfg.DataWarehouse.Enabled && cfg.Secrets.KeyVaultName != "" {
		if err := loadDataWarehouseSecrets(ctx, cfg, logger); err != nil {
			// data warehouse is optional, keep starting
			logger.Warn("Failed to load data warehouse secrets from Key Vault",
				zap.Error(err),
				zap.String("environment", cfg.App.Environment),
			)
		}
	}

	if !useKeyVault {
		logger.Info("USE_AZURE_KEY_VAULT not enabled, using environment variables for secrets",
			zap.String("environment", cfg.App.Environment),
		)
		return cfg, nil
	}

	if !isValidEnv {
		logger.Warn("USE_AZURE_KEY_VAULT is enabled but environment is not staging or production, using environment variables for secrets",
			zap.String("environment", cfg.App.Environment),
		)
		return cfg, nil
	}

	if cfg.Secrets.KeyVaultName == "" {
		return nil, fmt.Errorf("AZURE_KEY_VAULT_NAME is required when USE_AZURE_KEY_VAULT=true")
	}

	provider, err := secrets.NewProvider(&secrets.ProviderConfig{
		Source:       secrets.SecretSource(cfg.Secrets.Source),
		VaultName:    cfg.Secrets.KeyVaultName,
		Environment:  cfg.App.Environment,
		CacheEnabled: cfg.Secrets.CacheEnabled,
		CacheTTL:     time.Duration(cfg.Secrets.CacheTTL) * time.Second,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize secrets provider (USE_AZURE_KEY_VAULT=true requires valid vault): %w", err)
	}

	logger.Info("Loading secrets from Azure Key Vault",
		zap.String("key_vault_name", cfg.Secrets.KeyVaultName),
	)

	if err := applyVaultSecrets(ctx, cfg, provider); err != nil {
		return nil, err
	}

	logger.Info("Secrets loaded from vault successfully")
	return cfg, nil
}

// vaultBindings maps Key Vault secrets and their environment overrides onto config
func vaultBindings(cfg *Config) []secrets.Binding {
	return []secrets.Binding{
		{Secret: secrets.DatabaseHost, Env: "DATABASE_HOST", Target: &cfg.Database.Host},
		{Secret: secrets.DatabaseUser, Env: "DATABASE_USER", Target: &cfg.Database.User},
		{Secret: secrets.DatabasePassword, Env: "DATABASE_PASSWORD", Target: &cfg.Database.Password, Required: true},
		{Secret: secrets.JWTSecret, Env: "JWT_SECRET", Target: &cfg.Auth.JWTSecret},
		{Secret: secrets.AdminAPIKey, Env: "ADMIN_API_KEY", Target: &cfg.Auth.ApiKey},
		{Secret: secrets.StorageConnStr, Env: "STORAGE_CLOUDCONNECTIONSTRING", Target: &cfg.Storage.CloudConnectionString},
	}
}

func applyVaultSecrets(ctx context.Context, cfg *Config, provider *secrets.Provider) error {
	// A vault password must not be masked by the viper default
	cfg.Database.Password = ""
	if err := provider.Apply(ctx, vaultBindings(cfg)); err != nil {
		return fmt.Errorf("failed to resolve secrets: %w", err)
	}

	// database name and SSL mode vary per environment and are not vault secrets
	if defaultDB := os.Getenv("DEFAULT_DATABASE"); defaultDB != "" {
		cfg.Database.Name = defaultDB
	}
	if sslMode := os.Getenv("DATABASE_SSLMODE"); sslMode != "" {
		cfg.Database.SSLMode = sslMode
	}
	return nil
}

// loadDataWarehouseSecrets loads data warehouse credentials from Azure Key Vault only
func loadDataWarehouseSecrets(ctx context.Context, cfg *Config, logger *zap.Logger) error {
	provider, err := secrets.NewProvider(&secrets.ProviderConfig{
		Source:       secrets.SourceVault,
		VaultName:    cfg.Secrets.KeyVaultName,
		Environment:  cfg.App.Environment,
		CacheEnabled: cfg.Secrets.CacheEnabled,
		CacheTTL:     time.Duration(cfg.Secrets.CacheTTL) * time.Second,
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize vault client for data warehouse: %w", err)
	}

	err = provider.Apply(ctx, []secrets.Binding{
		{Secret: secrets.WarehouseURL, Target: &cfg.DataWarehouse.URL, Required: true},
		{Secret: secrets.WarehouseUser, Target: &cfg.DataWarehouse.User, Required: true},
		{Secret: secrets.WarehousePass, Target: &cfg.DataWarehouse.Password, Required: true},
	})
	if err != nil {
		return err
	}

	logger.Info("Data warehouse credentials loaded from Key Vault successfully")
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "Salesflow API")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.port", 8080)

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "salesflow")
	v.SetDefault("database.user", "salesflow_user")
	v.SetDefault("database.password", "salesflow_password")
	v.SetDefault("database.sslMode", "disable")
	v.SetDefault("database.maxOpenConns", 25)
	v.SetDefault("database.maxIdleConns", 5)
	v.SetDefault("database.connMaxLifetime", 300)

	// MS SQL data warehouse (optional, read-only)
	v.SetDefault("dataWarehouse.enabled", false)
	v.SetDefault("dataWarehouse.maxOpenConns", 10)
	v.SetDefault("dataWarehouse.maxIdleConns", 2)
	v.SetDefault("dataWarehouse.connMaxLifetime", 300)
	v.SetDefault("dataWarehouse.queryTimeout", 30)
	v.SetDefault("dataWarehouse.periodSyncCron", "0 15 * * * *") // quarter past every hour

	v.SetDefault("auth.issuer", "salesflow")
	v.SetDefault("auth.required", false)

	v.SetDefault("secrets.source", "auto")
	v.SetDefault("secrets.cacheEnabled", true)
	v.SetDefault("secrets.cacheTTL", 300)

	v.SetDefault("storage.mode", "local")
	v.SetDefault("storage.localBasePath", "./storage")
	v.SetDefault("storage.cloudContainer", "incentives")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("server.readTimeout", 30)
	v.SetDefault("server.writeTimeout", 30)
	v.SetDefault("server.requestTimeout", 60)
	v.SetDefault("server.enableSwagger", true)

	v.SetDefault("cors.allowedOrigins", []string{})
	v.SetDefault("cors.allowedMethods", []string{"GET", "POST", "PUT", "OPTIONS"})
	v.SetDefault("cors.allowedHeaders", []string{"Accept", "Authorization", "Content-Type", "X-API-Key", "X-Request-ID"})
	v.SetDefault("cors.exposedHeaders", []string{"Location", "X-Request-ID"})
	v.SetDefault("cors.allowCredentials", true)
	v.SetDefault("cors.maxAge", 300)

	v.SetDefault("security.enableHSTS", false)
	v.SetDefault("security.hstsMaxAge", 31536000)
	v.SetDefault("security.hstsIncludeSubdomains", true)
	v.SetDefault("security.contentSecurityPolicy", "default-src 'self'")
	v.SetDefault("security.frameOptions", "DENY")
	v.SetDefault("security.contentTypeNosniff", true)
	v.SetDefault("security.referrerPolicy", "strict-origin-when-cross-origin")

	v.SetDefault("rateLimit.enabled", true)
	v.SetDefault("rateLimit.requestsPerMinute", 120)
	v.SetDefault("rateLimit.requestsPerMinuteAuth", 600)
	v.SetDefault("rateLimit.whitelistIPs", []string{})
	v.SetDefault("rateLimit.whitelistPaths", []string{"/health", "/health/db", "/health/ready"})

	v.SetDefault("lifecycle.maxAttempts", 3)
	v.SetDefault("lifecycle.initialBackoffMs", 20)
	v.SetDefault("lifecycle.maxBackoffMs", 200)
	v.SetDefault("lifecycle.sideEffectRetryEnabled", true)
	v.SetDefault("lifecycle.sideEffectRetryCron", "0 */5 * * * *") // every 5 minutes
	v.SetDefault("lifecycle.sideEffectRetryBatch", 50)

	v.SetDefault("incentive.tierDocument", "tiers/tier-table.json")
	v.SetDefault("incentive.tierRevisions", 20)
	v.SetDefault("incentive.reloadCron", "30 */10 * * * *")
	v.SetDefault("incentive.activityGate.enabled", false)
	v.SetDefault("incentive.activityGate.minMessageConversionPct", 0)
	v.SetDefault("incentive.activityGate.minCallConversionPct", 0)
	v.SetDefault("incentive.activityGate.minActiveDays", 0)

	v.SetDefault("notification.retentionDays", 90)
	v.SetDefault("notification.purgeCron", "0 30 3 * * *") // nightly

	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.stdout", true)
}
