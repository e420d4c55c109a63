// Package datawarehouse reads advisor actuals from the MS SQL Server data warehouse.
// Access is read-only; the warehouse feeds achieved amounts and activity
// counters into open advisor periods.
package datawarehouse

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	_ "github.com/microsoft/go-mssqldb"
	"github.com/straye-as/salesflow-api/internal/config"
	"github.com/straye-as/salesflow-api/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

const (
	connectAttempts = 3
	pingTimeout     = 5 * time.Second
	applicationName = "salesflow-api"
	defaultPort     = "1433"
)

// ErrNotConnected is returned by queries on a disabled client
var ErrNotConnected = errors.New("data warehouse not connected")

// Client is a pooled read-only connection to the warehouse
type Client struct {
	db           *sql.DB
	logger       *zap.Logger
	queryTimeout time.Duration
}

// HealthStatus is reported under the readiness probe
type HealthStatus struct {
	Status    string `json:"status"`
	LatencyMs int64  `json:"latencyMs,omitempty"`
	Error     string `json:"error,omitempty"`
	Open      int    `json:"openConnections,omitempty"`
	InUse     int    `json:"inUse,omitempty"`
	Idle      int    `json:"idle,omitempty"`
	WaitCount int64  `json:"waitCount,omitempty"`
}

// NewClient connects to the warehouse. A disabled or incomplete config
// yields a nil client and no error; period sync is then skipped.
func NewClient(cfg *config.DataWarehouseConfig, logger *zap.Logger) (*Client, error) {
	if cfg == nil || !cfg.Enabled {
		logger.Info("data warehouse disabled")
		return nil, nil
	}
	if cfg.URL == "" || cfg.User == "" || cfg.Password == "" {
		logger.Warn("data warehouse enabled without credentials, period sync will not run",
			zap.Bool("url_present", cfg.URL != ""),
			zap.Bool("user_present", cfg.User != ""),
			zap.Bool("password_present", cfg.Password != ""))
		return nil, nil
	}

	dsn, err := ConnectionString(cfg)
	if err != nil {
		return nil, err
	}

	db, err := openWithRetry(dsn, cfg, logger)
	if err != nil {
		return nil, err
	}

	logger.Info("data warehouse connected",
		zap.Int("max_open_conns", cfg.MaxOpenConns),
		zap.Duration("query_timeout", cfg.QueryTimeoutDuration()))

	return NewClientFromDB(db, cfg.QueryTimeoutDuration(), logger), nil
}

// NewClientFromDB wraps an already opened pool
func NewClientFromDB(db *sql.DB, queryTimeout time.Duration, logger *zap.Logger) *Client {
	if queryTimeout <= 0 {
		queryTimeout = 30 * time.Second
	}
	return &Client{db: db, logger: logger, queryTimeout: queryTimeout}
}

func openWithRetry(dsn string, cfg *config.DataWarehouseConfig, logger *zap.Logger) (*sql.DB, error) {
	var db *sql.DB
	attempt := 0

	op := func() error {
		attempt++
		conn, err := sql.Open("sqlserver", dsn)
		if err != nil {
			// a malformed DSN will not get better
			return backoff.Permanent(err)
		}
		conn.SetMaxOpenConns(cfg.MaxOpenConns)
		conn.SetMaxIdleConns(cfg.MaxIdleConns)
		conn.SetConnMaxLifetime(cfg.ConnMaxLifetimeDuration())

		ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
		defer cancel()
		if err := conn.PingContext(ctx); err != nil {
			_ = conn.Close()
			logger.Warn("data warehouse ping failed", zap.Int("attempt", attempt), zap.Error(err))
			return err
		}
		db = conn
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = time.Second
	bo.MaxInterval = 10 * time.Second
	bo.MaxElapsedTime = 0
	if err := backoff.Retry(op, backoff.WithMaxRetries(bo, connectAttempts-1)); err != nil {
		return nil, fmt.Errorf("data warehouse unreachable after %d attempts: %w", attempt, err)
	}
	return db, nil
}

// ConnectionString turns the host:port/database URL into a sqlserver DSN
func ConnectionString(cfg *config.DataWarehouseConfig) (string, error) {
	hostPort, database, _ := strings.Cut(strings.TrimPrefix(cfg.URL, "sqlserver://"), "/")
	host, port, found := strings.Cut(hostPort, ":")
	if host == "" {
		return "", fmt.Errorf("data warehouse URL %q has no host", cfg.URL)
	}
	if !found || port == "" {
		port = defaultPort
	}

	q := url.Values{}
	q.Set("encrypt", "true")
	q.Set("TrustServerCertificate", "false")
	q.Set("app name", applicationName)
	q.Set("ApplicationIntent", "ReadOnly")
	if database != "" {
		q.Set("database", database)
	}

	u := &url.URL{
		Scheme:   "sqlserver",
		User:     url.UserPassword(cfg.User, cfg.Password),
		Host:     host + ":" + port,
		RawQuery: q.Encode(),
	}
	return u.String(), nil
}

// IsEnabled reports whether queries can be issued
func (c *Client) IsEnabled() bool {
	return c != nil && c.db != nil
}

func (c *Client) Close() error {
	if !c.IsEnabled() {
		return nil
	}
	if err := c.db.Close(); err != nil {
		return fmt.Errorf("failed to close data warehouse connection: %w", err)
	}
	c.logger.Info("data warehouse connection closed")
	return nil
}

// HealthCheck pings the warehouse and reports pool usage
func (c *Client) HealthCheck(ctx context.Context) *HealthStatus {
	if !c.IsEnabled() {
		return &HealthStatus{Status: "disabled"}
	}

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	start := time.Now()
	err := c.db.PingContext(ctx)
	stats := c.db.Stats()

	status := &HealthStatus{
		Status:    "healthy",
		LatencyMs: time.Since(start).Milliseconds(),
		Open:      stats.OpenConnections,
		InUse:     stats.InUse,
		Idle:      stats.Idle,
		WaitCount: stats.WaitCount,
	}
	if err != nil {
		c.logger.Warn("data warehouse health check failed", zap.Error(err))
		status.Status = "unhealthy"
		status.Error = err.Error()
	}
	return status
}

// eachRow runs a read query under the client's timeout and hands every row
// to fn as a column name to value map. fn returning an error stops iteration.
func (c *Client) eachRow(ctx context.Context, name, query string, fn func(row map[string]interface{}) error, args ...interface{}) (int, error) {
	if !c.IsEnabled() {
		return 0, ErrNotConnected
	}

	ctx, cancel := context.WithTimeout(ctx, c.queryTimeout)
	defer cancel()

	ctx, span := telemetry.Tracer().Start(ctx, "datawarehouse."+name)
	defer span.End()

	start := time.Now()
	n, err := c.scan(ctx, query, fn, args...)
	span.SetAttributes(attribute.Int("rows", n))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.logger.Error("data warehouse query failed",
			zap.String("query", name),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err))
		return n, err
	}

	c.logger.Debug("data warehouse query completed",
		zap.String("query", name),
		zap.Int("rows", n),
		zap.Duration("duration", time.Since(start)))
	return n, nil
}

func (c *Client) scan(ctx context.Context, query string, fn func(map[string]interface{}) error, args ...interface{}) (int, error) {
	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return 0, err
	}

	values := make([]interface{}, len(columns))
	dest := make([]interface{}, len(columns))
	for i := range values {
		dest[i] = &values[i]
	}

	n := 0
	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return n, err
		}
		row := make(map[string]interface{}, len(columns))
		for i, col := range columns {
			row[strings.ToLower(col)] = values[i]
		}
		n++
		if err := fn(row); err != nil {
			return n, err
		}
	}
	return n, rows.Err()
}
