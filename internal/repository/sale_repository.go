package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/straye-as/salesflow-api/internal/domain"
	"github.com/straye-as/salesflow-api/internal/lifecycle"
	"gorm.io/gorm"
)

// SaleFilters narrows sale listings
type SaleFilters struct {
	AdvisorID    string
	Stage        *domain.SaleStage
	StageRoot    *domain.SaleStage
	DocumentType *domain.DocumentType
	ClientRef    string
	Sort         SortConfig
}

// saleSortFields whitelists sortable API fields
var saleSortFields = map[string]string{
	"createdAt":  "created_at",
	"updatedAt":  "updated_at",
	"code":       "code",
	"finalValue": "final_value",
	"stage":      "lifecycle_state",
}

type SaleRepository struct {
	db *gorm.DB
}

func NewSaleRepository(db *gorm.DB) *SaleRepository {
	return &SaleRepository{db: db}
}

// Create inserts the sale together with its line items
func (r *SaleRepository) Create(ctx context.Context, sale *domain.Sale) error {
	return r.db.WithContext(ctx).Create(sale).Error
}

// GetByID loads a sale with line items in position order
func (r *SaleRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Sale, error) {
	var sale domain.Sale
	err := r.db.WithContext(ctx).
		Preload("LineItems", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Where("id = ?", id).
		First(&sale).Error
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

// GetByCode looks a sale up by its human-readable code
func (r *SaleRepository) GetByCode(ctx context.Context, code string) (*domain.Sale, error) {
	var sale domain.Sale
	err := r.db.WithContext(ctx).
		Preload("LineItems", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Where("code = ?", code).
		First(&sale).Error
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

func (r *SaleRepository) List(ctx context.Context, page, pageSize int, filters *SaleFilters) ([]domain.Sale, int64, error) {
	var sales []domain.Sale
	var total int64

	query := r.applyFilters(r.db.WithContext(ctx).Model(&domain.Sale{}), filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	sort := DefaultSortConfig()
	if filters != nil && filters.Sort.Field != "" {
		sort = filters.Sort
	}

	offset := (page - 1) * pageSize
	err := query.
		Preload("LineItems", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Offset(offset).
		Limit(pageSize).
		Order(BuildOrderClause(sort, saleSortFields, "created_at")).
		Order("id ASC").
		Find(&sales).Error

	return sales, total, err
}

// CountByStage returns how many sales sit in each lifecycle stage
func (r *SaleRepository) CountByStage(ctx context.Context, advisorID string) (map[domain.SaleStage]int64, error) {
	type result struct {
		LifecycleState domain.SaleStage
		Count          int64
	}
	var results []result

	query := r.db.WithContext(ctx).Model(&domain.Sale{}).
		Select("lifecycle_state, COUNT(*) as count")
	if advisorID != "" {
		query = query.Where("advisor_id = ?", advisorID)
	}
	if err := query.Group("lifecycle_state").Scan(&results).Error; err != nil {
		return nil, err
	}

	counts := make(map[domain.SaleStage]int64, len(results))
	for _, res := range results {
		counts[res.LifecycleState] = res.Count
	}
	return counts, nil
}

// ReadState returns the lifecycle slice of a sale
func (r *SaleRepository) ReadState(ctx context.Context, id uuid.UUID) (*lifecycle.SaleState, error) {
	var sale domain.Sale
	err := r.db.WithContext(ctx).
		Select("id", "lifecycle_state", "version", "client_ref", "advisor_id").
		Where("id = ?", id).
		First(&sale).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", lifecycle.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to read sale state: %w", err)
	}

	return &lifecycle.SaleState{
		ID:        sale.ID,
		Stage:     sale.LifecycleState,
		Version:   sale.Version,
		ClientRef: sale.ClientRef,
		AdvisorID: sale.AdvisorID,
	}, nil
}

// CompareAndSwapState moves the sale to next only if it is still in expected.
// Returns false when another writer changed the state first.
func (r *SaleRepository) CompareAndSwapState(ctx context.Context, id uuid.UUID, expected, next domain.SaleStage) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&domain.Sale{}).
		Where("id = ? AND lifecycle_state = ?", id, expected).
		Updates(map[string]interface{}{
			"lifecycle_state": next,
			"version":         gorm.Expr("version + 1"),
			"updated_at":      time.Now().UTC(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *SaleRepository) WithTransaction(ctx context.Context, fn func(*gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func (r *SaleRepository) applyFilters(query *gorm.DB, filters *SaleFilters) *gorm.DB {
	if filters == nil {
		return query
	}
	if filters.AdvisorID != "" {
		query = query.Where("advisor_id = ?", filters.AdvisorID)
	}
	if filters.Stage != nil {
		query = query.Where("lifecycle_state = ?", *filters.Stage)
	}
	if filters.StageRoot != nil {
		root := string(*filters.StageRoot)
		query = query.Where("lifecycle_state = ? OR lifecycle_state LIKE ?", root, root+"/%")
	}
	if filters.DocumentType != nil {
		query = query.Where("document_type = ?", *filters.DocumentType)
	}
	if filters.ClientRef != "" {
		query = query.Where("client_ref = ?", filters.ClientRef)
	}
	return query
}
