package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/straye-as/salesflow-api/internal/domain"
	"github.com/straye-as/salesflow-api/internal/lifecycle"
	"github.com/straye-as/salesflow-api/internal/service"
	"go.uber.org/zap"
)

// LifecycleHandler exposes sale stage transitions and their side-effect ledger
type LifecycleHandler struct {
	lifecycleService *service.LifecycleService
	logger           *zap.Logger
}

func NewLifecycleHandler(lifecycleService *service.LifecycleService, logger *zap.Logger) *LifecycleHandler {
	return &LifecycleHandler{
		lifecycleService: lifecycleService,
		logger:           logger,
	}
}

// Transition godoc
// @Summary Transition sale stage
// @Description Move a sale to a target stage chain. Requesting the current stage is a replay and changes nothing.
// @Description When the stage changes but the follow-up ticket cannot be created the response is 200 with a warning; the ticket is retried.
// @Tags Lifecycle
// @Accept json
// @Produce json
// @Param id path string true "Sale ID" format(uuid)
// @Param request body domain.TransitionSaleRequest true "Target stage"
// @Success 200 {object} domain.TransitionResultDTO
// @Failure 400 {object} domain.APIError "Invalid transition; allowed lists the legal targets"
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /sales/{id}/transitions [post]
func (h *LifecycleHandler) Transition(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id", "sale")
	if !ok {
		return
	}

	var req domain.TransitionSaleRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.lifecycleService.RequestTransition(r.Context(), id, req.Stage, req.Notes)
	if err != nil {
		if errors.Is(err, lifecycle.ErrSideEffectFailed) && result != nil {
			h.logger.Warn("stage changed without follow-up ticket",
				zap.String("sale_id", id.String()),
				zap.String("stage", string(result.NewState)),
				zap.Error(err))
			respondJSON(w, http.StatusOK, result)
			return
		}
		respondServiceError(w, h.logger, err, "transition sale",
			zap.String("sale_id", id.String()),
			zap.String("stage", string(req.Stage)))
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// AllowedTransitions godoc
// @Summary List allowed transitions for a sale
// @Tags Lifecycle
// @Produce json
// @Param id path string true "Sale ID" format(uuid)
// @Success 200 {object} domain.StageTransitionsDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /sales/{id}/transitions [get]
func (h *LifecycleHandler) AllowedTransitions(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id", "sale")
	if !ok {
		return
	}

	dto, err := h.lifecycleService.AllowedTransitions(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "list allowed transitions", zap.String("sale_id", id.String()))
		return
	}

	respondJSON(w, http.StatusOK, dto)
}

// ListSideEffects godoc
// @Summary List sale side effects
// @Description Ticket side effects recorded for the sale with their dispatch status
// @Tags Lifecycle
// @Produce json
// @Param id path string true "Sale ID" format(uuid)
// @Success 200 {array} domain.SaleSideEffectDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /sales/{id}/side-effects [get]
func (h *LifecycleHandler) ListSideEffects(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id", "sale")
	if !ok {
		return
	}

	rows, err := h.lifecycleService.ListSideEffects(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "list side effects", zap.String("sale_id", id.String()))
		return
	}

	respondJSON(w, http.StatusOK, rows)
}

// ListTickets godoc
// @Summary List service tickets of a sale
// @Tags Lifecycle
// @Produce json
// @Param id path string true "Sale ID" format(uuid)
// @Success 200 {array} domain.ServiceTicketDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /sales/{id}/tickets [get]
func (h *LifecycleHandler) ListTickets(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id", "sale")
	if !ok {
		return
	}

	tickets, err := h.lifecycleService.ListTickets(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "list tickets", zap.String("sale_id", id.String()))
		return
	}

	respondJSON(w, http.StatusOK, tickets)
}

// RetrySideEffects godoc
// @Summary Retry sale side effects
// @Description Re-dispatch side effects that are pending or failed, reusing their idempotency keys
// @Tags Lifecycle
// @Produce json
// @Param id path string true "Sale ID" format(uuid)
// @Success 200 {array} domain.SaleSideEffectDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /sales/{id}/side-effects/retry [post]
func (h *LifecycleHandler) RetrySideEffects(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id", "sale")
	if !ok {
		return
	}

	rows, err := h.lifecycleService.RetrySideEffects(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "retry side effects", zap.String("sale_id", id.String()))
		return
	}

	respondJSON(w, http.StatusOK, rows)
}

// TransitionTable godoc
// @Summary Get the lifecycle transition table
// @Tags Lifecycle
// @Produce json
// @Success 200 {array} domain.StageTransitionsDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /lifecycle/transitions [get]
func (h *LifecycleHandler) TransitionTable(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.lifecycleService.TransitionTable())
}

// AllowedFromStage godoc
// @Summary List allowed transitions from a stage
// @Description The stage chain follows the prefix as-is or URL-encoded, e.g. /lifecycle/stages/sold/shipped
// @Tags Lifecycle
// @Produce json
// @Param stage path string true "Stage chain"
// @Success 200 {object} domain.StageTransitionsDTO
// @Failure 400 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /lifecycle/stages/{stage} [get]
func (h *LifecycleHandler) AllowedFromStage(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "*")
	stage, err := url.PathUnescape(raw)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid stage: malformed escape sequence")
		return
	}

	dto, err := h.lifecycleService.AllowedFromStage(domain.SaleStage(stage))
	if err != nil {
		respondServiceError(w, h.logger, err, "list allowed transitions", zap.String("stage", stage))
		return
	}

	respondJSON(w, http.StatusOK, dto)
}
