package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/straye-as/salesflow-api/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PeriodActuals are the figures refreshed from the data warehouse
type PeriodActuals struct {
	AchievedAmount decimal.Decimal
	MessagesSent   int
	CallsMade      int
	ActiveDays     int
	SalesClosed    int
}

type AdvisorPeriodRepository struct {
	db *gorm.DB
}

func NewAdvisorPeriodRepository(db *gorm.DB) *AdvisorPeriodRepository {
	return &AdvisorPeriodRepository{db: db}
}

// Read returns the period record for an advisor
func (r *AdvisorPeriodRepository) Read(ctx context.Context, advisorID, periodID string) (*domain.AdvisorPeriod, error) {
	var period domain.AdvisorPeriod
	err := r.db.WithContext(ctx).
		Where("advisor_id = ? AND period_id = ?", advisorID, periodID).
		First(&period).Error
	if err != nil {
		return nil, err
	}
	return &period, nil
}

// Upsert creates or replaces the period identified by (advisor_id, period_id)
func (r *AdvisorPeriodRepository) Upsert(ctx context.Context, period *domain.AdvisorPeriod) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "advisor_id"}, {Name: "period_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"modality",
				"quota_amount",
				"achieved_amount",
				"messages_sent",
				"calls_made",
				"active_days",
				"sales_closed",
				"starts_on",
				"ends_on",
				"updated_at",
			}),
		}).
		Create(period).Error
}

// UpdateActuals overwrites achievement and activity counters for a period.
// Returns gorm.ErrRecordNotFound if the period does not exist.
func (r *AdvisorPeriodRepository) UpdateActuals(ctx context.Context, advisorID, periodID string, actuals PeriodActuals) error {
	now := time.Now().UTC()
	result := r.db.WithContext(ctx).
		Model(&domain.AdvisorPeriod{}).
		Where("advisor_id = ? AND period_id = ?", advisorID, periodID).
		Updates(map[string]interface{}{
			"achieved_amount": actuals.AchievedAmount,
			"messages_sent":   actuals.MessagesSent,
			"calls_made":      actuals.CallsMade,
			"active_days":     actuals.ActiveDays,
			"sales_closed":    actuals.SalesClosed,
			"last_synced_at":  now,
			"updated_at":      now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListByPeriod returns every advisor's record for a period
func (r *AdvisorPeriodRepository) ListByPeriod(ctx context.Context, periodID string) ([]domain.AdvisorPeriod, error) {
	var periods []domain.AdvisorPeriod
	err := r.db.WithContext(ctx).
		Where("period_id = ?", periodID).
		Order("advisor_id ASC").
		Find(&periods).Error
	return periods, err
}

// ListOpen returns periods whose date range contains at
func (r *AdvisorPeriodRepository) ListOpen(ctx context.Context, at time.Time) ([]domain.AdvisorPeriod, error) {
	var periods []domain.AdvisorPeriod
	day := at.UTC().Truncate(24 * time.Hour)
	err := r.db.WithContext(ctx).
		Where("starts_on <= ? AND ends_on >= ?", day, day).
		Order("advisor_id ASC, period_id ASC").
		Find(&periods).Error
	return periods, err
}
