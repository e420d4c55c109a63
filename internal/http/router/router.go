package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/straye-as/salesflow-api/internal/auth"
	"github.com/straye-as/salesflow-api/internal/config"
	"github.com/straye-as/salesflow-api/internal/database"
	"github.com/straye-as/salesflow-api/internal/datawarehouse"
	"github.com/straye-as/salesflow-api/internal/http/handler"
	"github.com/straye-as/salesflow-api/internal/http/middleware"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	_ "github.com/straye-as/salesflow-api/docs" // Import generated swagger docs
)

type Router struct {
	cfg                 *config.Config
	logger              *zap.Logger
	db                  *gorm.DB
	dwClient            *datawarehouse.Client
	authMiddleware      *auth.Middleware
	rateLimiter         *middleware.RateLimiter
	authHandler         *handler.AuthHandler
	saleHandler         *handler.SaleHandler
	lifecycleHandler    *handler.LifecycleHandler
	incentiveHandler    *handler.IncentiveHandler
	notificationHandler *handler.NotificationHandler
}

func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	db *gorm.DB,
	dwClient *datawarehouse.Client,
	authMiddleware *auth.Middleware,
	rateLimiter *middleware.RateLimiter,
	authHandler *handler.AuthHandler,
	saleHandler *handler.SaleHandler,
	lifecycleHandler *handler.LifecycleHandler,
	incentiveHandler *handler.IncentiveHandler,
	notificationHandler *handler.NotificationHandler,
) *Router {
	return &Router{
		cfg:                 cfg,
		logger:              logger,
		db:                  db,
		dwClient:            dwClient,
		authMiddleware:      authMiddleware,
		rateLimiter:         rateLimiter,
		authHandler:         authHandler,
		saleHandler:         saleHandler,
		lifecycleHandler:    lifecycleHandler,
		incentiveHandler:    incentiveHandler,
		notificationHandler: notificationHandler,
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(rt.logger))
	r.Use(middleware.Logging(rt.logger))
	r.Use(middleware.SecurityHeaders(&rt.cfg.Security))
	r.Use(middleware.CORS(&rt.cfg.CORS, rt.cfg.App.Environment, rt.logger))
	r.Use(rt.rateLimiter.LimitByIP)

	// Health check (basic liveness probe)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	// Database health check (readiness probe with pool stats)
	r.Get("/health/db", func(w http.ResponseWriter, r *http.Request) {
		stats, err := database.HealthCheckWithStats(r.Context(), rt.db)
		if err != nil {
			rt.logger.Error("Database health check failed", zap.Error(err))
			writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
				"status":  "unhealthy",
				"error":   err.Error(),
				"service": "database",
			})
			return
		}

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status":  "healthy",
			"service": "database",
			"stats": map[string]interface{}{
				"open_connections": stats.OpenConnections,
				"in_use":           stats.InUse,
				"idle":             stats.Idle,
				"wait_count":       stats.WaitCount,
				"wait_duration_ms": stats.WaitDuration.Milliseconds(),
			},
		})
	})

	// Combined readiness check. The data warehouse is optional and only
	// reported, never fails readiness.
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		checks := make(map[string]interface{})
		allHealthy := true

		if err := database.HealthCheck(r.Context(), rt.db); err != nil {
			rt.logger.Error("Database health check failed", zap.Error(err))
			checks["database"] = map[string]interface{}{
				"status": "unhealthy",
				"error":  err.Error(),
			}
			allHealthy = false
		} else {
			checks["database"] = map[string]interface{}{
				"status": "healthy",
			}
		}

		checks["datawarehouse"] = rt.dwClient.HealthCheck(r.Context())

		if allHealthy {
			writeJSON(w, http.StatusOK, map[string]interface{}{
				"status": "healthy",
				"checks": checks,
			})
		} else {
			writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
				"status": "unhealthy",
				"checks": checks,
			})
		}
	})

	// Swagger documentation
	if rt.cfg.Server.EnableSwagger {
		r.Get("/swagger/*", httpSwagger.Handler(
			httpSwagger.URL("/swagger/doc.json"),
		))
	}

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		if timeout := rt.cfg.Server.RequestTimeoutDuration(); timeout > 0 {
			r.Use(chimw.Timeout(timeout))
		}

		// Public lifecycle metadata
		r.Get("/lifecycle/transitions", rt.lifecycleHandler.TransitionTable)
		r.Get("/lifecycle/stages/*", rt.lifecycleHandler.AllowedFromStage)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(rt.authMiddleware.Authenticate)
			r.Use(middleware.TagUser)
			r.Use(rt.rateLimiter.LimitByCaller)

			r.Get("/auth/me", rt.authHandler.Me)

			// Sales
			r.Route("/sales", func(r chi.Router) {
				r.Get("/", rt.saleHandler.List)
				r.Post("/", rt.saleHandler.Create)
				r.Get("/stage-counts", rt.saleHandler.StageCounts)
				r.Get("/code/{code}", rt.saleHandler.GetByCode)
				r.Get("/{id}", rt.saleHandler.GetByID)
				r.Get("/{id}/history", rt.saleHandler.GetHistory)

				// Lifecycle endpoints
				r.Get("/{id}/transitions", rt.lifecycleHandler.AllowedTransitions)
				r.Post("/{id}/transitions", rt.lifecycleHandler.Transition)
				r.Get("/{id}/side-effects", rt.lifecycleHandler.ListSideEffects)
				r.Post("/{id}/side-effects/retry", rt.lifecycleHandler.RetrySideEffects)
				r.Get("/{id}/tickets", rt.lifecycleHandler.ListTickets)
			})

			// Incentives
			r.Route("/incentives/tiers", func(r chi.Router) {
				r.Get("/", rt.incentiveHandler.GetTierTable)
				r.Put("/", rt.incentiveHandler.UpdateTierTable)
				r.Post("/reload", rt.incentiveHandler.ReloadTierTable)
				r.Get("/revisions", rt.incentiveHandler.ListTierRevisions)
			})
			r.Route("/advisors/{advisorId}/periods/{periodId}", func(r chi.Router) {
				r.Get("/", rt.incentiveHandler.GetPeriod)
				r.Put("/", rt.incentiveHandler.UpsertPeriod)
				r.Get("/bonus", rt.incentiveHandler.EvaluateBonus)
			})
			r.Get("/periods/{periodId}/advisors", rt.incentiveHandler.ListPeriods)

			// Notifications
			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", rt.notificationHandler.List)
				r.Get("/count", rt.notificationHandler.GetUnreadCount)
				r.Put("/read-all", rt.notificationHandler.MarkAllAsRead)
				r.Put("/{id}/read", rt.notificationHandler.MarkAsRead)
			})
		})
	})

	return r
}
