package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/straye-as/salesflow-api/internal/auth"
	"github.com/straye-as/salesflow-api/internal/domain"
	"github.com/straye-as/salesflow-api/internal/lifecycle"
	"github.com/straye-as/salesflow-api/internal/mapper"
	"github.com/straye-as/salesflow-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var hundred = decimal.NewFromInt(100)

// SaleService creates and reads sales. Lifecycle changes go through LifecycleService.
type SaleService struct {
	saleRepo    *repository.SaleRepository
	historyRepo *repository.SaleStageHistoryRepository
	sequences   *NumberSequenceService
	logger      *zap.Logger
}

// NewSaleService creates a new SaleService
func NewSaleService(
	saleRepo *repository.SaleRepository,
	historyRepo *repository.SaleStageHistoryRepository,
	sequences *NumberSequenceService,
	logger *zap.Logger,
) *SaleService {
	return &SaleService{
		saleRepo:    saleRepo,
		historyRepo: historyRepo,
		sequences:   sequences,
		logger:      logger,
	}
}

// SaleTotals are the computed money fields of a sale
type SaleTotals struct {
	Subtotal        decimal.Decimal
	DiscountAmount  decimal.Decimal
	DiscountPercent decimal.Decimal
	TaxAmount       decimal.Decimal
	FinalValue      decimal.Decimal
}

// ComputeTotals validates line items and derives the sale totals.
// Exactly one of discountAmount and discountPercent may be given; the other is derived.
func ComputeTotals(items []domain.SaleLineItemRequest, discountAmount, discountPercent *decimal.Decimal, tax decimal.Decimal) (*SaleTotals, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: at least one line item is required", ErrInvalidSale)
	}

	subtotal := decimal.Zero
	for i, item := range items {
		if !item.Quantity.IsPositive() {
			return nil, fmt.Errorf("%w: line %d quantity must be greater than zero", ErrInvalidSale, i+1)
		}
		if item.UnitPrice.IsNegative() {
			return nil, fmt.Errorf("%w: line %d unit price must not be negative", ErrInvalidSale, i+1)
		}
		subtotal = subtotal.Add(item.Quantity.Mul(item.UnitPrice))
	}
	subtotal = subtotal.Round(2)

	if tax.IsNegative() {
		return nil, fmt.Errorf("%w: tax amount must not be negative", ErrInvalidSale)
	}

	totals := &SaleTotals{
		Subtotal:        subtotal,
		DiscountAmount:  decimal.Zero,
		DiscountPercent: decimal.Zero,
		TaxAmount:       tax,
	}

	switch {
	case discountAmount != nil && discountPercent != nil:
		return nil, fmt.Errorf("%w: provide either discountAmount or discountPercent, not both", ErrInvalidSale)
	case discountAmount != nil:
		if discountAmount.IsNegative() || discountAmount.GreaterThan(subtotal) {
			return nil, fmt.Errorf("%w: discount amount must be between 0 and the subtotal", ErrInvalidSale)
		}
		totals.DiscountAmount = discountAmount.Round(2)
		if subtotal.IsPositive() {
			totals.DiscountPercent = totals.DiscountAmount.Div(subtotal).Mul(hundred).Round(4)
		}
	case discountPercent != nil:
		if discountPercent.IsNegative() || discountPercent.GreaterThan(hundred) {
			return nil, fmt.Errorf("%w: discount percent must be between 0 and 100", ErrInvalidSale)
		}
		totals.DiscountPercent = discountPercent.Round(4)
		totals.DiscountAmount = subtotal.Mul(*discountPercent).Div(hundred).Round(2)
	}

	totals.FinalValue = subtotal.Sub(totals.DiscountAmount).Add(tax)
	return totals, nil
}

// Create opens a new sale in the sold or exchange stage and records the
// initial stage history entry.
func (s *SaleService) Create(ctx context.Context, req *domain.CreateSaleRequest) (*domain.SaleDTO, error) {
	if !req.DocumentType.IsValid() {
		return nil, fmt.Errorf("%w: unknown document type %q", ErrInvalidSale, req.DocumentType)
	}

	stage := req.InitialStage
	if stage == "" {
		stage = domain.StageSold
	}
	if stage != domain.StageSold && stage != domain.StageExchange {
		return nil, fmt.Errorf("%w: a sale must start as %q or %q", ErrInvalidSale, domain.StageSold, domain.StageExchange)
	}

	totals, err := ComputeTotals(req.LineItems, req.DiscountAmount, req.DiscountPercent, req.TaxAmount)
	if err != nil {
		return nil, err
	}

	items := make([]domain.SaleLineItem, len(req.LineItems))
	for i, item := range req.LineItems {
		items[i] = domain.SaleLineItem{
			Position:      i + 1,
			ProductRef:    item.ProductRef,
			Quantity:      item.Quantity,
			UnitPrice:     item.UnitPrice,
			UnitOfMeasure: item.UnitOfMeasure,
		}
	}

	sale := &domain.Sale{
		DocumentType:          req.DocumentType,
		LineItems:             items,
		Subtotal:              totals.Subtotal,
		DiscountAmount:        totals.DiscountAmount,
		DiscountPercent:       totals.DiscountPercent,
		TaxAmount:             totals.TaxAmount,
		FinalValue:            totals.FinalValue,
		LifecycleState:        stage,
		AdvisorID:             req.AdvisorID,
		ClientRef:             req.ClientRef,
		ScheduledDeliveryDate: deliveryDate(req.ScheduledDeliveryDate),
		InternalNotes:         req.InternalNotes,
	}

	err = s.saleRepo.WithTransaction(ctx, func(tx *gorm.DB) error {
		code, err := s.sequences.GenerateSaleCodeTx(tx, req.AdvisorID)
		if err != nil {
			return err
		}
		sale.Code = code
		return tx.Create(sale).Error
	})
	if err != nil {
		if errors.Is(err, ErrInvalidSale) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create sale: %w", err)
	}

	actorID, actorName := auth.Actor(ctx)
	if err := s.historyRepo.RecordTransition(ctx, sale.ID, nil, stage, actorID, actorName, "Sale created"); err != nil {
		s.logger.Warn("failed to record initial stage history",
			zap.String("sale_id", sale.ID.String()),
			zap.Error(err))
	}

	s.logger.Info("Sale created",
		zap.String("sale_id", sale.ID.String()),
		zap.String("code", sale.Code),
		zap.String("advisor_id", sale.AdvisorID),
		zap.String("stage", string(stage)),
		zap.String("final_value", sale.FinalValue.StringFixed(2)))

	dto := mapper.ToSaleDTO(sale)
	return &dto, nil
}

// GetByID returns a sale with its line items
func (s *SaleService) GetByID(ctx context.Context, id uuid.UUID) (*domain.SaleDTO, error) {
	sale, err := s.saleRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSaleNotFound
		}
		return nil, fmt.Errorf("failed to get sale: %w", err)
	}

	dto := mapper.ToSaleDTO(sale)
	return &dto, nil
}

// GetByCode returns a sale by its human-readable code
func (s *SaleService) GetByCode(ctx context.Context, code string) (*domain.SaleDTO, error) {
	sale, err := s.saleRepo.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSaleNotFound
		}
		return nil, fmt.Errorf("failed to get sale: %w", err)
	}

	dto := mapper.ToSaleDTO(sale)
	return &dto, nil
}

// List returns a page of sales
func (s *SaleService) List(ctx context.Context, page, pageSize int, filters *repository.SaleFilters) (*domain.PaginatedResponse, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > repository.MaxPageSize {
		pageSize = repository.MaxPageSize
	}

	sales, total, err := s.saleRepo.List(ctx, page, pageSize, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list sales: %w", err)
	}

	dtos := make([]domain.SaleDTO, len(sales))
	for i := range sales {
		dtos[i] = mapper.ToSaleDTO(&sales[i])
	}

	return &domain.PaginatedResponse{
		Data:       dtos,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: int((total + int64(pageSize) - 1) / int64(pageSize)),
	}, nil
}

// GetHistory returns the stage history of a sale, oldest first
func (s *SaleService) GetHistory(ctx context.Context, id uuid.UUID) ([]domain.SaleStageHistoryDTO, error) {
	if _, err := s.saleRepo.ReadState(ctx, id); err != nil {
		if errors.Is(err, lifecycle.ErrNotFound) {
			return nil, ErrSaleNotFound
		}
		return nil, err
	}

	history, err := s.historyRepo.GetBySaleID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get sale history: %w", err)
	}

	dtos := make([]domain.SaleStageHistoryDTO, len(history))
	for i := range history {
		dtos[i] = mapper.ToSaleStageHistoryDTO(&history[i])
	}
	return dtos, nil
}

// StageCounts returns how many sales are in each stage, optionally for one advisor
func (s *SaleService) StageCounts(ctx context.Context, advisorID string) (map[domain.SaleStage]int64, error) {
	counts, err := s.saleRepo.CountByStage(ctx, advisorID)
	if err != nil {
		return nil, fmt.Errorf("failed to count sales by stage: %w", err)
	}
	return counts, nil
}

// deliveryDate truncates to a calendar date in UTC
func deliveryDate(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return &d
}
