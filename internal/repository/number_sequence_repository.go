package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/straye-as/salesflow-api/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// NumberSequenceRepository issues per-advisor sale code numbers
type NumberSequenceRepository struct {
	db *gorm.DB
}

// NewNumberSequenceRepository creates a new NumberSequenceRepository
func NewNumberSequenceRepository(db *gorm.DB) *NumberSequenceRepository {
	return &NumberSequenceRepository{db: db}
}

// GetNextNumber atomically increments and returns the advisor's sequence,
// starting at 1. The row is locked with SELECT FOR UPDATE where supported.
func (r *NumberSequenceRepository) GetNextNumber(ctx context.Context, advisorID string) (int, error) {
	var next int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		next, err = r.nextInTx(tx, advisorID)
		return err
	})
	if err != nil {
		return 0, err
	}
	return next, nil
}

// GetNextNumberTx is GetNextNumber inside a caller-owned transaction
func (r *NumberSequenceRepository) GetNextNumberTx(tx *gorm.DB, advisorID string) (int, error) {
	return r.nextInTx(tx, advisorID)
}

func (r *NumberSequenceRepository) nextInTx(tx *gorm.DB, advisorID string) (int, error) {
	var seq domain.NumberSequence
	now := time.Now().UTC()

	result := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("advisor_id = ?", advisorID).
		First(&seq)

	switch {
	case errors.Is(result.Error, gorm.ErrRecordNotFound):
		seq = domain.NumberSequence{
			AdvisorID:    advisorID,
			LastSequence: 1,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := tx.Create(&seq).Error; err != nil {
			return 0, fmt.Errorf("failed to create number sequence: %w", err)
		}
		return 1, nil
	case result.Error != nil:
		return 0, fmt.Errorf("failed to get number sequence: %w", result.Error)
	}

	next := seq.LastSequence + 1
	if err := tx.Model(&seq).Updates(map[string]interface{}{
		"last_sequence": next,
		"updated_at":    now,
	}).Error; err != nil {
		return 0, fmt.Errorf("failed to update number sequence: %w", err)
	}
	return next, nil
}

// GetCurrentSequence returns the last issued number, or 0 if none was issued
func (r *NumberSequenceRepository) GetCurrentSequence(ctx context.Context, advisorID string) (int, error) {
	var seq domain.NumberSequence
	result := r.db.WithContext(ctx).
		Where("advisor_id = ?", advisorID).
		First(&seq)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if result.Error != nil {
		return 0, fmt.Errorf("failed to get number sequence: %w", result.Error)
	}
	return seq.LastSequence, nil
}
