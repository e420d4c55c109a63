package auth_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/straye-as/salesflow-api/internal/auth"
	"github.com/straye-as/salesflow-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testAuthConfig() *config.AuthConfig {
	return &config.AuthConfig{
		JWTSecret: "test-secret-with-enough-length",
		Issuer:    "salesflow",
		ApiKey:    "test-api-key",
	}
}

func TestJWTValidator_RoundTrip(t *testing.T) {
	v := auth.NewJWTValidator(testAuthConfig())

	token, err := v.IssueToken(&auth.UserContext{UserID: "adv-7", DisplayName: "Ana Ruiz", Email: "ana@example.com"}, time.Minute)
	require.NoError(t, err)

	user, err := v.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "adv-7", user.UserID)
	assert.Equal(t, "Ana Ruiz", user.DisplayName)
	assert.Equal(t, "ana@example.com", user.Email)
}

func TestJWTValidator_Rejects(t *testing.T) {
	cfg := testAuthConfig()
	v := auth.NewJWTValidator(cfg)

	expired, err := v.IssueToken(&auth.UserContext{UserID: "adv-7"}, -time.Minute)
	require.NoError(t, err)
	_, err = v.ValidateToken(expired)
	assert.ErrorIs(t, err, auth.ErrExpiredToken)

	other := auth.NewJWTValidator(&config.AuthConfig{JWTSecret: "another-secret", Issuer: "salesflow"})
	foreign, err := other.IssueToken(&auth.UserContext{UserID: "adv-7"}, time.Minute)
	require.NoError(t, err)
	_, err = v.ValidateToken(foreign)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)

	wrongIssuer := auth.NewJWTValidator(&config.AuthConfig{JWTSecret: cfg.JWTSecret, Issuer: "someone-else"})
	token, err := wrongIssuer.IssueToken(&auth.UserContext{UserID: "adv-7"}, time.Minute)
	require.NoError(t, err)
	_, err = v.ValidateToken(token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "adv-7"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = v.ValidateToken(unsigned)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestMiddleware_Authenticate(t *testing.T) {
	cfg := testAuthConfig()
	m := auth.NewMiddleware(cfg, zap.NewNop())

	var seen *auth.UserContext
	handler := m.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = auth.FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	serve := func(setup func(r *http.Request)) int {
		seen = nil
		req := httptest.NewRequest(http.MethodGet, "/api/v1/sales", nil)
		setup(req)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		return rr.Code
	}

	t.Run("api key", func(t *testing.T) {
		code := serve(func(r *http.Request) { r.Header.Set("X-API-Key", "test-api-key") })
		assert.Equal(t, http.StatusOK, code)
		require.NotNil(t, seen)
		assert.Equal(t, auth.SystemUserID, seen.UserID)
	})

	t.Run("invalid api key", func(t *testing.T) {
		code := serve(func(r *http.Request) { r.Header.Set("X-API-Key", "nope") })
		assert.Equal(t, http.StatusUnauthorized, code)
	})

	t.Run("bearer token", func(t *testing.T) {
		token, err := auth.NewJWTValidator(cfg).IssueToken(&auth.UserContext{UserID: "adv-3", DisplayName: "Luis"}, time.Minute)
		require.NoError(t, err)
		code := serve(func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) })
		assert.Equal(t, http.StatusOK, code)
		require.NotNil(t, seen)
		assert.Equal(t, "adv-3", seen.UserID)
	})

	t.Run("anonymous allowed when not required", func(t *testing.T) {
		code := serve(func(r *http.Request) {})
		assert.Equal(t, http.StatusOK, code)
		assert.Nil(t, seen)
	})

	t.Run("anonymous rejected when required", func(t *testing.T) {
		strict := *cfg
		strict.Required = true
		h := auth.NewMiddleware(&strict, zap.NewNop()).Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Equal(t, "application/problem+json", rr.Header().Get("Content-Type"))
		assert.Contains(t, rr.Body.String(), "missing credentials")
	})

	t.Run("malformed authorization header", func(t *testing.T) {
		code := serve(func(r *http.Request) { r.Header.Set("Authorization", "Basic abc") })
		assert.Equal(t, http.StatusUnauthorized, code)
	})
}

func TestActor(t *testing.T) {
	id, name := auth.Actor(context.Background())
	assert.Equal(t, "anonymous", id)
	assert.Empty(t, name)

	ctx := auth.WithUserContext(context.Background(), &auth.UserContext{UserID: "adv-1", DisplayName: "Ana"})
	id, name = auth.Actor(ctx)
	assert.Equal(t, "adv-1", id)
	assert.Equal(t, "Ana", name)
}
