package main

import (
	"context"
	"fmt"

	"github.com/straye-as/salesflow-api/internal/app"
	"github.com/straye-as/salesflow-api/internal/auth"
	"github.com/straye-as/salesflow-api/internal/config"
	"github.com/straye-as/salesflow-api/internal/database"
	"github.com/straye-as/salesflow-api/internal/logger"
	"github.com/straye-as/salesflow-api/internal/storage"
	"go.uber.org/zap"
)

// openApp wires the services the same way the API does, minus HTTP.
// The data warehouse is never opened from the CLI.
func openApp(ctx context.Context) (*app.App, *zap.Logger, error) {
	basicCfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Keep CLI output readable unless the operator asks for more
	if basicCfg.Logging.Level == "info" {
		basicCfg.Logging.Level = "warn"
	}
	log, err := logger.NewLogger(&basicCfg.Logging, &basicCfg.App)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}

	cfg, err := config.LoadWithSecrets(ctx, log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load secrets: %w", err)
	}

	db, err := database.NewDatabase(&cfg.Database, log)
	if err != nil {
		return nil, nil, err
	}

	store, err := storage.NewStorage(&cfg.Storage, log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	a, err := app.New(cfg, log, db, store, nil)
	if err != nil {
		return nil, nil, err
	}
	return a, log, nil
}

func operatorContext(ctx context.Context) context.Context {
	return auth.WithUserContext(ctx, &auth.UserContext{
		UserID:      actorID,
		DisplayName: actorName,
		Roles:       []string{"operator"},
	})
}
