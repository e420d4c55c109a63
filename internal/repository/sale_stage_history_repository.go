package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/straye-as/salesflow-api/internal/domain"
	"gorm.io/gorm"
)

type SaleStageHistoryRepository struct {
	db *gorm.DB
}

func NewSaleStageHistoryRepository(db *gorm.DB) *SaleStageHistoryRepository {
	return &SaleStageHistoryRepository{db: db}
}

// Create records a stage transition
func (r *SaleStageHistoryRepository) Create(ctx context.Context, history *domain.SaleStageHistory) error {
	return r.db.WithContext(ctx).Create(history).Error
}

// RecordTransition is a convenience method to record a stage change
func (r *SaleStageHistoryRepository) RecordTransition(ctx context.Context, saleID uuid.UUID, from *domain.SaleStage, to domain.SaleStage, changedByID, changedByName, notes string) error {
	return r.Create(ctx, &domain.SaleStageHistory{
		SaleID:        saleID,
		FromStage:     from,
		ToStage:       to,
		ChangedByID:   changedByID,
		ChangedByName: changedByName,
		Notes:         notes,
		ChangedAt:     time.Now().UTC(),
	})
}

// GetBySaleID returns all stage history for a sale, oldest first
func (r *SaleStageHistoryRepository) GetBySaleID(ctx context.Context, saleID uuid.UUID) ([]domain.SaleStageHistory, error) {
	var history []domain.SaleStageHistory
	err := r.db.WithContext(ctx).
		Where("sale_id = ?", saleID).
		Order("changed_at ASC").
		Find(&history).Error
	return history, err
}

