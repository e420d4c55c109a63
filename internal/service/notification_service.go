package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/straye-as/salesflow-api/internal/auth"
	"github.com/straye-as/salesflow-api/internal/domain"
	"github.com/straye-as/salesflow-api/internal/mapper"
	"github.com/straye-as/salesflow-api/internal/repository"
	"go.uber.org/zap"
)

var (
	ErrUserContextRequired = errors.New("user context required")

	// ErrNotificationNotFound also covers notifications of other users
	ErrNotificationNotFound = errors.New("notification not found")
)

// UnreadCount is the number of unread notifications of the caller
type UnreadCount struct {
	Count int `json:"count"`
}

// NotificationQuery selects a page of the caller's notifications
type NotificationQuery struct {
	Page       int
	PageSize   int
	UnreadOnly bool
	SaleID     *uuid.UUID
}

// NotificationService serves the ticket notifications raised for advisors
type NotificationService struct {
	repo   *repository.NotificationRepository
	logger *zap.Logger
}

func NewNotificationService(repo *repository.NotificationRepository, logger *zap.Logger) *NotificationService {
	return &NotificationService{repo: repo, logger: logger}
}

func callerID(ctx context.Context) (string, error) {
	user, ok := auth.FromContext(ctx)
	if !ok || user.UserID == "" {
		return "", ErrUserContextRequired
	}
	return user.UserID, nil
}

// ListForCurrentUser returns the caller's notifications, newest first
func (s *NotificationService) ListForCurrentUser(ctx context.Context, q NotificationQuery) (*domain.PaginatedResponse, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	page, pageSize := q.Page, q.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	pageSize = min(pageSize, repository.MaxPageSize)

	filter := repository.NotificationFilter{UserID: userID, UnreadOnly: q.UnreadOnly}
	if q.SaleID != nil {
		filter.EntityType = NotificationEntitySale
		filter.EntityID = q.SaleID
	}

	notifications, total, err := s.repo.List(ctx, filter, page, pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}

	dtos := make([]domain.NotificationDTO, len(notifications))
	for i := range notifications {
		dtos[i] = mapper.ToNotificationDTO(&notifications[i])
	}

	return &domain.PaginatedResponse{
		Data:       dtos,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: int((total + int64(pageSize) - 1) / int64(pageSize)),
	}, nil
}

func (s *NotificationService) UnreadCount(ctx context.Context) (*UnreadCount, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	count, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return &UnreadCount{Count: count}, nil
}

// MarkAsRead is idempotent for the owner and reports other users'
// notifications as not found
func (s *NotificationService) MarkAsRead(ctx context.Context, id uuid.UUID) error {
	userID, err := callerID(ctx)
	if err != nil {
		return err
	}

	found, err := s.repo.MarkRead(ctx, userID, id)
	if err != nil {
		return fmt.Errorf("failed to mark notification as read: %w", err)
	}
	if !found {
		return ErrNotificationNotFound
	}
	return nil
}

func (s *NotificationService) MarkAllAsRead(ctx context.Context) (int64, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return 0, err
	}

	updated, err := s.repo.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to mark all notifications as read: %w", err)
	}

	s.logger.Info("notifications marked as read",
		zap.String("user_id", userID),
		zap.Int64("updated", updated))
	return updated, nil
}

// PurgeRead deletes read notifications older than retention
func (s *NotificationService) PurgeRead(ctx context.Context, retention time.Duration) (int64, error) {
	if retention <= 0 {
		return 0, fmt.Errorf("retention must be positive, got %s", retention)
	}
	deleted, err := s.repo.DeleteReadBefore(ctx, time.Now().UTC().Add(-retention))
	if err != nil {
		return 0, fmt.Errorf("failed to purge notifications: %w", err)
	}
	return deleted, nil
}
