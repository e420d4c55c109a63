package handler

import (
	"net/http"
	"strings"
	"unicode"

	"github.com/straye-as/salesflow-api/internal/auth"
	"github.com/straye-as/salesflow-api/internal/domain"
	"go.uber.org/zap"
)

type AuthHandler struct {
	logger *zap.Logger
}

func NewAuthHandler(logger *zap.Logger) *AuthHandler {
	return &AuthHandler{logger: logger}
}

// Me godoc
// @Summary Get current authenticated user
// @Description Returns the caller that lifecycle changes will be attributed to
// @Tags Auth
// @Produce json
// @Success 200 {object} domain.AuthUserDTO
// @Failure 401 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /auth/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userCtx, ok := auth.FromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	roles := userCtx.Roles
	if roles == nil {
		roles = []string{}
	}

	respondJSON(w, http.StatusOK, domain.AuthUserDTO{
		ID:       userCtx.UserID,
		Name:     userCtx.DisplayName,
		Email:    userCtx.Email,
		Roles:    roles,
		Initials: initials(userCtx.DisplayName),
		IsSystem: userCtx.UserID == auth.SystemUserID,
	})
}

// initials takes the first letter of the first and last name
func initials(name string) string {
	parts := strings.Fields(name)
	if len(parts) == 0 {
		return ""
	}
	first := []rune(parts[0])
	out := string(unicode.ToUpper(first[0]))
	if len(parts) > 1 {
		last := []rune(parts[len(parts)-1])
		out += string(unicode.ToUpper(last[0]))
	}
	return out
}
