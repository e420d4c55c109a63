package auth

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/straye-as/salesflow-api/internal/config"
	"github.com/straye-as/salesflow-api/internal/domain"
	"go.uber.org/zap"
)

var (
	errInvalidAPIKey     = errors.New("invalid API key")
	errMissingCredential = errors.New("missing credentials")
	errMalformedHeader   = errors.New("authorization header must be a Bearer token")
)

// Middleware identifies callers so lifecycle changes can be attributed.
// It does not make authorization decisions.
type Middleware struct {
	jwtValidator *JWTValidator
	apiKey       string
	required     bool
	logger       *zap.Logger
}

func NewMiddleware(cfg *config.AuthConfig, logger *zap.Logger) *Middleware {
	return &Middleware{
		jwtValidator: NewJWTValidator(cfg),
		apiKey:       cfg.ApiKey,
		required:     cfg.Required,
		logger:       logger,
	}
}

// Authenticate resolves the caller from X-API-Key or a Bearer token. Invalid
// credentials are always rejected; missing credentials only when
// authentication is required.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := m.resolve(r)
		switch {
		case errors.Is(err, errMissingCredential) && !m.required:
			next.ServeHTTP(w, r)
		case err != nil:
			m.logger.Warn("request rejected",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("remote_addr", r.RemoteAddr),
				zap.Error(err))
			unauthorized(w, err)
		default:
			next.ServeHTTP(w, r.WithContext(WithUserContext(r.Context(), user)))
		}
	})
}

func (m *Middleware) resolve(r *http.Request) (*UserContext, error) {
	if key := r.Header.Get("X-API-Key"); key != "" {
		if m.apiKey == "" || subtle.ConstantTimeCompare([]byte(key), []byte(m.apiKey)) != 1 {
			return nil, errInvalidAPIKey
		}
		return &UserContext{UserID: SystemUserID, DisplayName: "System"}, nil
	}

	header := r.Header.Get("Authorization")
	if header == "" {
		return nil, errMissingCredential
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return nil, errMalformedHeader
	}
	return m.jwtValidator.ValidateToken(strings.TrimSpace(token))
}

func unauthorized(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.Header().Set("WWW-Authenticate", `Bearer realm="salesflow"`)
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(domain.APIError{
		Type:   domain.ErrorTypeUnauthorized,
		Title:  http.StatusText(http.StatusUnauthorized),
		Status: http.StatusUnauthorized,
		Detail: err.Error(),
	})
}
