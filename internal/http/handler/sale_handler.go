package handler

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/straye-as/salesflow-api/internal/domain"
	"github.com/straye-as/salesflow-api/internal/repository"
	"github.com/straye-as/salesflow-api/internal/service"
	"go.uber.org/zap"
)

type SaleHandler struct {
	saleService *service.SaleService
	logger      *zap.Logger
}

func NewSaleHandler(saleService *service.SaleService, logger *zap.Logger) *SaleHandler {
	return &SaleHandler{
		saleService: saleService,
		logger:      logger,
	}
}

// List godoc
// @Summary List sales
// @Description Get paginated list of sales with optional filters
// @Tags Sales
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param advisorId query string false "Filter by advisor"
// @Param stage query string false "Filter by exact lifecycle stage" example(sold/shipped)
// @Param stageRoot query string false "Filter by stage chain root" Enums(sold, exchange, voided)
// @Param documentType query string false "Filter by document type" Enums(invoice, receipt, sale_note)
// @Param clientRef query string false "Filter by client reference"
// @Param sortBy query string false "Sort field" Enums(createdAt, updatedAt, code, finalValue, stage) default(createdAt)
// @Param sortOrder query string false "Sort direction" Enums(asc, desc) default(desc)
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.SaleDTO}
// @Failure 400 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /sales [get]
func (h *SaleHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePagination(r)
	q := r.URL.Query()

	filters := &repository.SaleFilters{
		AdvisorID: q.Get("advisorId"),
		ClientRef: q.Get("clientRef"),
		Sort: repository.SortConfig{
			Field: q.Get("sortBy"),
			Order: repository.ParseSortOrder(q.Get("sortOrder")),
		},
	}
	if v := q.Get("stage"); v != "" {
		stage := domain.SaleStage(v)
		filters.Stage = &stage
	}
	if v := q.Get("stageRoot"); v != "" {
		root := domain.SaleStage(v)
		switch root {
		case domain.StageSold, domain.StageExchange, domain.StageVoided:
		default:
			respondWithError(w, http.StatusBadRequest, fmt.Sprintf("Invalid stageRoot %q: must be sold, exchange or voided", v))
			return
		}
		filters.StageRoot = &root
	}
	if v := q.Get("documentType"); v != "" {
		dt := domain.DocumentType(v)
		if !dt.IsValid() {
			respondWithError(w, http.StatusBadRequest, fmt.Sprintf("Invalid documentType %q", v))
			return
		}
		filters.DocumentType = &dt
	}

	result, err := h.saleService.List(r.Context(), page, pageSize, filters)
	if err != nil {
		respondServiceError(w, h.logger, err, "list sales")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// Create godoc
// @Summary Create sale
// @Description Open a new sale. Totals are computed server side and the sale starts in the sold stage unless exchange is requested.
// @Tags Sales
// @Accept json
// @Produce json
// @Param request body domain.CreateSaleRequest true "Sale data"
// @Success 201 {object} domain.SaleDTO
// @Failure 400 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /sales [post]
func (h *SaleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateSaleRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	sale, err := h.saleService.Create(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "create sale", zap.String("advisor_id", req.AdvisorID))
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/api/v1/sales/%s", sale.ID))
	respondJSON(w, http.StatusCreated, sale)
}

// GetByID godoc
// @Summary Get sale
// @Tags Sales
// @Produce json
// @Param id path string true "Sale ID" format(uuid)
// @Success 200 {object} domain.SaleDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /sales/{id} [get]
func (h *SaleHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id", "sale")
	if !ok {
		return
	}

	sale, err := h.saleService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "get sale", zap.String("sale_id", id.String()))
		return
	}

	respondJSON(w, http.StatusOK, sale)
}

// GetByCode godoc
// @Summary Get sale by code
// @Tags Sales
// @Produce json
// @Param code path string true "Sale code" example(ADV42-000001)
// @Success 200 {object} domain.SaleDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /sales/code/{code} [get]
func (h *SaleHandler) GetByCode(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	sale, err := h.saleService.GetByCode(r.Context(), code)
	if err != nil {
		respondServiceError(w, h.logger, err, "get sale", zap.String("code", code))
		return
	}

	respondJSON(w, http.StatusOK, sale)
}

// GetHistory godoc
// @Summary Get sale stage history
// @Description Stage changes of a sale, oldest first
// @Tags Sales
// @Produce json
// @Param id path string true "Sale ID" format(uuid)
// @Success 200 {array} domain.SaleStageHistoryDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /sales/{id}/history [get]
func (h *SaleHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id", "sale")
	if !ok {
		return
	}

	history, err := h.saleService.GetHistory(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "get sale history", zap.String("sale_id", id.String()))
		return
	}

	respondJSON(w, http.StatusOK, history)
}

// StageCounts godoc
// @Summary Count sales per stage
// @Tags Sales
// @Produce json
// @Param advisorId query string false "Restrict to one advisor"
// @Success 200 {object} map[string]int64
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /sales/stage-counts [get]
func (h *SaleHandler) StageCounts(w http.ResponseWriter, r *http.Request) {
	counts, err := h.saleService.StageCounts(r.Context(), r.URL.Query().Get("advisorId"))
	if err != nil {
		respondServiceError(w, h.logger, err, "count sales")
		return
	}

	respondJSON(w, http.StatusOK, counts)
}
