package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/straye-as/salesflow-api/internal/domain"
	"github.com/straye-as/salesflow-api/internal/lifecycle"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SaleSideEffectRepository is the durable side-effect ledger. The unique
// idempotency key turns Claim into an at-most-once insert.
type SaleSideEffectRepository struct {
	db *gorm.DB
}

func NewSaleSideEffectRepository(db *gorm.DB) *SaleSideEffectRepository {
	return &SaleSideEffectRepository{db: db}
}

// Claim inserts a pending row for the intent. Returns false if a row with the
// same idempotency key already exists.
func (r *SaleSideEffectRepository) Claim(ctx context.Context, intent lifecycle.TicketIntent) (bool, error) {
	row := &domain.SaleSideEffect{
		SaleID:         intent.SaleID,
		TargetStage:    intent.TargetStage,
		IdempotencyKey: intent.IdempotencyKey,
		Kind:           intent.Kind,
		ClientRef:      intent.ClientRef,
		AdvisorID:      intent.AdvisorID,
		Status:         domain.SideEffectPending,
	}

	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(row)
	if result.Error != nil {
		return false, fmt.Errorf("failed to claim side effect: %w", result.Error)
	}
	return result.RowsAffected == 1, nil
}

func (r *SaleSideEffectRepository) MarkDispatched(ctx context.Context, idempotencyKey, ticketID string) error {
	return r.db.WithContext(ctx).
		Model(&domain.SaleSideEffect{}).
		Where("idempotency_key = ?", idempotencyKey).
		Updates(map[string]interface{}{
			"status":     domain.SideEffectDispatched,
			"ticket_id":  ticketID,
			"attempts":   gorm.Expr("attempts + 1"),
			"last_error": "",
			"updated_at": time.Now().UTC(),
		}).Error
}

func (r *SaleSideEffectRepository) MarkFailed(ctx context.Context, idempotencyKey string, cause error) error {
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	return r.db.WithContext(ctx).
		Model(&domain.SaleSideEffect{}).
		Where("idempotency_key = ?", idempotencyKey).
		Updates(map[string]interface{}{
			"status":     domain.SideEffectFailed,
			"attempts":   gorm.Expr("attempts + 1"),
			"last_error": msg,
			"updated_at": time.Now().UTC(),
		}).Error
}

func (r *SaleSideEffectRepository) GetByKey(ctx context.Context, idempotencyKey string) (*domain.SaleSideEffect, error) {
	var row domain.SaleSideEffect
	err := r.db.WithContext(ctx).Where("idempotency_key = ?", idempotencyKey).First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// ListBySale returns the side effects recorded for a sale, oldest first
func (r *SaleSideEffectRepository) ListBySale(ctx context.Context, saleID uuid.UUID) ([]domain.SaleSideEffect, error) {
	var rows []domain.SaleSideEffect
	err := r.db.WithContext(ctx).
		Where("sale_id = ?", saleID).
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}

// ListRetryable returns failed side effects, plus pending ones older than
// staleAfter (a crash between claim and dispatch leaves them pending).
func (r *SaleSideEffectRepository) ListRetryable(ctx context.Context, staleAfter time.Duration, limit int) ([]domain.SaleSideEffect, error) {
	var rows []domain.SaleSideEffect
	cutoff := time.Now().UTC().Add(-staleAfter)
	err := r.db.WithContext(ctx).
		Where("status = ? OR (status = ? AND updated_at < ?)", domain.SideEffectFailed, domain.SideEffectPending, cutoff).
		Order("updated_at ASC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}
