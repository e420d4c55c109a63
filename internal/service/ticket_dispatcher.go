package service

import (
	"context"
	"fmt"

	"github.com/straye-as/salesflow-api/internal/domain"
	"github.com/straye-as/salesflow-api/internal/lifecycle"
	"github.com/straye-as/salesflow-api/internal/repository"
	"go.uber.org/zap"
)

const (
	notificationTypeTicketCreated = "ticket_created"

	// NotificationEntitySale marks notifications whose entity id is a sale
	NotificationEntitySale = "sale"
)

// TicketDispatcher is the default lifecycle side-effect sink. It writes
// tickets to the service ticket queue and notifies the sale's advisor.
type TicketDispatcher struct {
	ticketRepo       *repository.ServiceTicketRepository
	notificationRepo *repository.NotificationRepository
	logger           *zap.Logger
}

// NewTicketDispatcher creates a new TicketDispatcher
func NewTicketDispatcher(
	ticketRepo *repository.ServiceTicketRepository,
	notificationRepo *repository.NotificationRepository,
	logger *zap.Logger,
) *TicketDispatcher {
	return &TicketDispatcher{
		ticketRepo:       ticketRepo,
		notificationRepo: notificationRepo,
		logger:           logger,
	}
}

var _ lifecycle.SideEffectDispatcher = (*TicketDispatcher)(nil)

// CreateTicket opens a ticket for the intent. A repeated idempotency key
// returns the existing ticket without a second notification.
func (d *TicketDispatcher) CreateTicket(ctx context.Context, intent lifecycle.TicketIntent) (string, error) {
	ticket, created, err := d.ticketRepo.CreateIdempotent(ctx, &domain.ServiceTicket{
		Kind:           intent.Kind,
		SaleID:         intent.SaleID,
		ClientRef:      intent.ClientRef,
		AdvisorID:      intent.AdvisorID,
		IdempotencyKey: intent.IdempotencyKey,
		Status:         domain.TicketStatusOpen,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create %s ticket: %w", intent.Kind, err)
	}

	if !created {
		d.logger.Info("ticket already exists for idempotency key",
			zap.String("ticket_id", ticket.ID.String()),
			zap.String("idempotency_key", intent.IdempotencyKey))
		return ticket.ID.String(), nil
	}

	d.logger.Info("service ticket created",
		zap.String("ticket_id", ticket.ID.String()),
		zap.String("kind", string(ticket.Kind)),
		zap.String("sale_id", intent.SaleID.String()),
		zap.String("client_ref", intent.ClientRef))

	if intent.AdvisorID != "" && d.notificationRepo != nil {
		saleID := intent.SaleID
		notification := &domain.Notification{
			UserID:     intent.AdvisorID,
			Type:       notificationTypeTicketCreated,
			Title:      fmt.Sprintf("New %s ticket", intent.Kind),
			Message:    fmt.Sprintf("A %s ticket was opened for client %s", intent.Kind, intent.ClientRef),
			EntityID:   &saleID,
			EntityType: NotificationEntitySale,
		}
		if err := d.notificationRepo.Create(ctx, notification); err != nil {
			d.logger.Warn("failed to notify advisor about new ticket",
				zap.String("advisor_id", intent.AdvisorID),
				zap.Error(err))
		}
	}

	return ticket.ID.String(), nil
}
