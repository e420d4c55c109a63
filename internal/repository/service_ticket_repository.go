package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/straye-as/salesflow-api/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ServiceTicketRepository struct {
	db *gorm.DB
}

func NewServiceTicketRepository(db *gorm.DB) *ServiceTicketRepository {
	return &ServiceTicketRepository{db: db}
}

// CreateIdempotent inserts the ticket unless one with the same idempotency key
// exists, in which case the existing ticket is returned. The bool reports
// whether a new row was written.
func (r *ServiceTicketRepository) CreateIdempotent(ctx context.Context, ticket *domain.ServiceTicket) (*domain.ServiceTicket, bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "idempotency_key"}},
			DoNothing: true,
		}).
		Create(ticket)
	if result.Error != nil {
		return nil, false, fmt.Errorf("failed to create service ticket: %w", result.Error)
	}
	if result.RowsAffected == 1 {
		return ticket, true, nil
	}

	existing, err := r.GetByIdempotencyKey(ctx, ticket.IdempotencyKey)
	if err != nil {
		return nil, false, fmt.Errorf("failed to load existing service ticket: %w", err)
	}
	return existing, false, nil
}

func (r *ServiceTicketRepository) GetByIdempotencyKey(ctx context.Context, key string) (*domain.ServiceTicket, error) {
	var ticket domain.ServiceTicket
	err := r.db.WithContext(ctx).Where("idempotency_key = ?", key).First(&ticket).Error
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ServiceTicketRepository) ListBySale(ctx context.Context, saleID uuid.UUID) ([]domain.ServiceTicket, error) {
	var tickets []domain.ServiceTicket
	err := r.db.WithContext(ctx).
		Where("sale_id = ?", saleID).
		Order("created_at ASC").
		Find(&tickets).Error
	return tickets, err
}

