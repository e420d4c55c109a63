package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/straye-as/salesflow-api/internal/auth"
	"github.com/straye-as/salesflow-api/internal/config"
	"github.com/straye-as/salesflow-api/internal/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRateLimiter_Disabled(t *testing.T) {
	rl := middleware.NewRateLimiter(&config.RateLimitConfig{Enabled: false, RequestsPerMinute: 1}, zap.NewNop())
	handler := rl.LimitByIP(okHandler())

	for i := 0; i < 20; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/sales", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

func TestRateLimiter_LimitByIP(t *testing.T) {
	rl := middleware.NewRateLimiter(&config.RateLimitConfig{
		Enabled:           true,
		RequestsPerMinute: 2,
		WhitelistIPs:      []string{"10.0.0.9"},
		WhitelistPaths:    []string{"/health", "/swagger/*"},
	}, zap.NewNop())
	handler := rl.LimitByIP(okHandler())

	send := func(path, remote string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.RemoteAddr = remote
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusOK, send("/api/v1/sales", "192.168.1.1:1000").Code)
	assert.Equal(t, http.StatusOK, send("/api/v1/sales", "192.168.1.1:1000").Code)

	limited := send("/api/v1/sales", "192.168.1.1:1000")
	assert.Equal(t, http.StatusTooManyRequests, limited.Code)
	assert.Equal(t, "60", limited.Header().Get("Retry-After"))
	assert.Contains(t, limited.Body.String(), "rate_limited")

	t.Run("other IPs have their own budget", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, send("/api/v1/sales", "192.168.1.2:1000").Code)
	})

	t.Run("whitelisted paths and IPs bypass", func(t *testing.T) {
		for i := 0; i < 5; i++ {
			assert.Equal(t, http.StatusOK, send("/health", "192.168.1.1:1000").Code)
			assert.Equal(t, http.StatusOK, send("/swagger/index.html", "192.168.1.1:1000").Code)
			assert.Equal(t, http.StatusOK, send("/api/v1/sales", "10.0.0.9:1000").Code)
		}
	})

	t.Run("forwarded-for header identifies the client", func(t *testing.T) {
		for i := 0; i < 2; i++ {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/sales", nil)
			req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)
			assert.Equal(t, http.StatusOK, w.Code)
		}
	})
}

func TestRateLimiter_LimitByCaller(t *testing.T) {
	rl := middleware.NewRateLimiter(&config.RateLimitConfig{
		Enabled:               true,
		RequestsPerMinute:     100,
		RequestsPerMinuteAuth: 1,
	}, zap.NewNop())
	handler := rl.LimitByCaller(okHandler())

	send := func(userID, remote string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/sales", nil)
		req.RemoteAddr = remote
		req = req.WithContext(auth.WithUserContext(context.Background(), &auth.UserContext{UserID: userID}))
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, send("user-1", "192.168.1.1:1"))
	// same caller from another address shares the budget
	assert.Equal(t, http.StatusTooManyRequests, send("user-1", "192.168.1.2:1"))
	assert.Equal(t, http.StatusOK, send("user-2", "192.168.1.1:1"))
}

func TestSecurityHeaders(t *testing.T) {
	cfg := &config.SecurityConfig{
		EnableHSTS:            true,
		HSTSMaxAge:            31536000,
		HSTSIncludeSubdomains: true,
		ContentSecurityPolicy: "default-src 'self'",
		FrameOptions:          "DENY",
		ContentTypeNosniff:    true,
		ReferrerPolicy:        "strict-origin-when-cross-origin",
	}
	handler := middleware.SecurityHeaders(cfg)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sales", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "default-src 'self'", w.Header().Get("Content-Security-Policy"))
	assert.Equal(t, "strict-origin-when-cross-origin", w.Header().Get("Referrer-Policy"))
	assert.Equal(t, "max-age=31536000; includeSubDomains", w.Header().Get("Strict-Transport-Security"))

	t.Run("swagger skips CSP", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/swagger/index.html", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		assert.Empty(t, w.Header().Get("Content-Security-Policy"))
		assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	})
}

func corsRequest(handler http.Handler, origin string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/sales", nil)
	req.Header.Set("Origin", origin)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func TestCORS(t *testing.T) {
	base := config.CORSConfig{
		AllowedMethods: []string{"GET", "POST"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:         300,
	}

	t.Run("development allows any origin", func(t *testing.T) {
		cfg := base
		handler := middleware.CORS(&cfg, "development", zap.NewNop())(okHandler())
		w := corsRequest(handler, "http://localhost:5173")
		assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("explicit origins", func(t *testing.T) {
		cfg := base
		cfg.AllowedOrigins = []string{"https://sales.example.com"}
		handler := middleware.CORS(&cfg, "production", zap.NewNop())(okHandler())

		assert.Equal(t, "https://sales.example.com",
			corsRequest(handler, "https://sales.example.com").Header().Get("Access-Control-Allow-Origin"))
		assert.Empty(t, corsRequest(handler, "https://evil.example.com").Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("production without origins denies", func(t *testing.T) {
		cfg := base
		handler := middleware.CORS(&cfg, "production", zap.NewNop())(okHandler())
		assert.Empty(t, corsRequest(handler, "https://sales.example.com").Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("wildcard", func(t *testing.T) {
		cfg := base
		cfg.AllowedOrigins = []string{"*"}
		handler := middleware.CORS(&cfg, "staging", zap.NewNop())(okHandler())
		assert.Equal(t, "https://any.example.com",
			corsRequest(handler, "https://any.example.com").Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestLogging(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	logger := zap.New(core)

	var seenID string
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenID = middleware.RequestIDFromContext(r.Context())
		w.WriteHeader(http.StatusCreated)
	})
	authed := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := auth.WithUserContext(r.Context(), &auth.UserContext{UserID: "user-7", DisplayName: "Seven"})
		middleware.TagUser(inner).ServeHTTP(w, r.WithContext(ctx))
	})
	handler := middleware.Logging(logger)(authed)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sales", nil)
	req.Header.Set("X-Request-ID", "req-123")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, "req-123", seenID)
	assert.Equal(t, "req-123", w.Header().Get("X-Request-ID"))

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "req-123", fields["request_id"])
	assert.Equal(t, int64(http.StatusCreated), fields["status_code"])
	assert.Equal(t, "user-7", fields["user_id"])

	t.Run("generates an id when missing", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Len(t, w.Header().Get("X-Request-ID"), 36)
	})
}

func TestRecovery(t *testing.T) {
	handler := middleware.Recovery(zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/sales", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "internal_error")
}
