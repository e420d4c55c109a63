package handler

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/straye-as/salesflow-api/internal/domain"
	"github.com/straye-as/salesflow-api/internal/service"
	"go.uber.org/zap"
)

// IncentiveHandler serves bonus evaluation, advisor periods and the tier table
type IncentiveHandler struct {
	incentiveService *service.IncentiveService
	logger           *zap.Logger
}

func NewIncentiveHandler(incentiveService *service.IncentiveService, logger *zap.Logger) *IncentiveHandler {
	return &IncentiveHandler{
		incentiveService: incentiveService,
		logger:           logger,
	}
}

// EvaluateBonus godoc
// @Summary Evaluate advisor bonus
// @Description Score the advisor's period against the tier ladder of its modality and report the earned bonus and the gap to the next tier
// @Tags Incentives
// @Produce json
// @Param advisorId path string true "Advisor ID"
// @Param periodId path string true "Period ID" example(2026-10)
// @Success 200 {object} domain.BonusResultDTO
// @Failure 404 {object} domain.APIError
// @Failure 422 {object} domain.APIError "Unknown modality"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /advisors/{advisorId}/periods/{periodId}/bonus [get]
func (h *IncentiveHandler) EvaluateBonus(w http.ResponseWriter, r *http.Request) {
	advisorID, periodID := chi.URLParam(r, "advisorId"), chi.URLParam(r, "periodId")

	result, err := h.incentiveService.EvaluateBonus(r.Context(), advisorID, periodID)
	if err != nil {
		respondServiceError(w, h.logger, err, "evaluate bonus",
			zap.String("advisor_id", advisorID),
			zap.String("period_id", periodID))
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// GetPeriod godoc
// @Summary Get advisor period
// @Tags Incentives
// @Produce json
// @Param advisorId path string true "Advisor ID"
// @Param periodId path string true "Period ID"
// @Success 200 {object} domain.AdvisorPeriodDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /advisors/{advisorId}/periods/{periodId} [get]
func (h *IncentiveHandler) GetPeriod(w http.ResponseWriter, r *http.Request) {
	advisorID, periodID := chi.URLParam(r, "advisorId"), chi.URLParam(r, "periodId")

	period, err := h.incentiveService.GetPeriod(r.Context(), advisorID, periodID)
	if err != nil {
		respondServiceError(w, h.logger, err, "get advisor period",
			zap.String("advisor_id", advisorID),
			zap.String("period_id", periodID))
		return
	}

	respondJSON(w, http.StatusOK, period)
}

// UpsertPeriod godoc
// @Summary Create or replace advisor period
// @Description Store the quota, modality and actuals of an advisor period
// @Tags Incentives
// @Accept json
// @Produce json
// @Param advisorId path string true "Advisor ID"
// @Param periodId path string true "Period ID"
// @Param request body domain.UpsertAdvisorPeriodRequest true "Period data"
// @Success 200 {object} domain.AdvisorPeriodDTO
// @Failure 400 {object} domain.APIError
// @Failure 422 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /advisors/{advisorId}/periods/{periodId} [put]
func (h *IncentiveHandler) UpsertPeriod(w http.ResponseWriter, r *http.Request) {
	advisorID, periodID := chi.URLParam(r, "advisorId"), chi.URLParam(r, "periodId")

	var req domain.UpsertAdvisorPeriodRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	period, err := h.incentiveService.UpsertPeriod(r.Context(), advisorID, periodID, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "save advisor period",
			zap.String("advisor_id", advisorID),
			zap.String("period_id", periodID))
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/api/v1/advisors/%s/periods/%s", advisorID, periodID))
	respondJSON(w, http.StatusOK, period)
}

// ListPeriods godoc
// @Summary List advisor periods
// @Description Every advisor's record for one period
// @Tags Incentives
// @Produce json
// @Param periodId path string true "Period ID"
// @Success 200 {array} domain.AdvisorPeriodDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /periods/{periodId}/advisors [get]
func (h *IncentiveHandler) ListPeriods(w http.ResponseWriter, r *http.Request) {
	periodID := chi.URLParam(r, "periodId")

	periods, err := h.incentiveService.ListPeriods(r.Context(), periodID)
	if err != nil {
		respondServiceError(w, h.logger, err, "list advisor periods", zap.String("period_id", periodID))
		return
	}

	respondJSON(w, http.StatusOK, periods)
}

// GetTierTable godoc
// @Summary Get incentive tier table
// @Tags Incentives
// @Produce json
// @Success 200 {object} domain.TierTableDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /incentives/tiers [get]
func (h *IncentiveHandler) GetTierTable(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.incentiveService.GetTierTable())
}

// UpdateTierTable godoc
// @Summary Replace incentive tier table
// @Description Validate and store the tier ladders; the new table takes effect immediately
// @Tags Incentives
// @Accept json
// @Produce json
// @Param request body domain.UpdateTierTableRequest true "Tier ladders per modality"
// @Success 200 {object} domain.TierTableDTO
// @Failure 400 {object} domain.APIError
// @Failure 422 {object} domain.APIError "Misconfigured tier table"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /incentives/tiers [put]
func (h *IncentiveHandler) UpdateTierTable(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdateTierTableRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	table, err := h.incentiveService.UpdateTierTable(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "update tier table")
		return
	}

	respondJSON(w, http.StatusOK, table)
}

// ListTierRevisions godoc
// @Summary List archived tier tables
// @Description Superseded tier documents, newest first
// @Tags Incentives
// @Produce json
// @Success 200 {array} domain.TierRevisionDTO
// @Failure 500 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /incentives/tiers/revisions [get]
func (h *IncentiveHandler) ListTierRevisions(w http.ResponseWriter, r *http.Request) {
	revisions, err := h.incentiveService.ListTierRevisions(r.Context())
	if err != nil {
		h.logger.Error("failed to list tier revisions", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to list tier revisions")
		return
	}
	respondJSON(w, http.StatusOK, revisions)
}

// ReloadTierTable godoc
// @Summary Reload tier table from storage
// @Tags Incentives
// @Produce json
// @Success 200 {object} domain.TierTableDTO
// @Failure 404 {object} domain.APIError
// @Failure 422 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /incentives/tiers/reload [post]
func (h *IncentiveHandler) ReloadTierTable(w http.ResponseWriter, r *http.Request) {
	if err := h.incentiveService.ReloadTiers(r.Context()); err != nil {
		respondServiceError(w, h.logger, err, "reload tier table")
		return
	}

	respondJSON(w, http.StatusOK, h.incentiveService.GetTierTable())
}
