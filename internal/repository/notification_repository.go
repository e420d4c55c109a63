package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/straye-as/salesflow-api/internal/domain"
	"gorm.io/gorm"
)

// NotificationFilter narrows a user's notification list
type NotificationFilter struct {
	UserID     string
	UnreadOnly bool
	// EntityType and EntityID restrict to notifications about one record,
	// e.g. the tickets raised for a sale
	EntityType string
	EntityID   *uuid.UUID
}

type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Create(ctx context.Context, notification *domain.Notification) error {
	return r.db.WithContext(ctx).Create(notification).Error
}

func (r *NotificationRepository) scoped(ctx context.Context, f NotificationFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&domain.Notification{}).Where("user_id = ?", f.UserID)
	if f.UnreadOnly {
		q = q.Where("read = ?", false)
	}
	if f.EntityType != "" {
		q = q.Where("entity_type = ?", f.EntityType)
	}
	if f.EntityID != nil {
		q = q.Where("entity_id = ?", *f.EntityID)
	}
	return q
}

// List returns one page of matching notifications, newest first, and the total count
func (r *NotificationRepository) List(ctx context.Context, f NotificationFilter, page, pageSize int) ([]domain.Notification, int64, error) {
	var total int64
	if err := r.scoped(ctx, f).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var notifications []domain.Notification
	err := r.scoped(ctx, f).
		Order("created_at DESC").
		Order("id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&notifications).Error
	return notifications, total, err
}

func (r *NotificationRepository) CountUnread(ctx context.Context, userID string) (int, error) {
	var count int64
	err := r.scoped(ctx, NotificationFilter{UserID: userID, UnreadOnly: true}).Count(&count).Error
	return int(count), err
}

// MarkRead marks one notification of the user as read. It reports false
// when no notification with that id belongs to the user.
func (r *NotificationRepository) MarkRead(ctx context.Context, userID string, id uuid.UUID) (bool, error) {
	var n domain.Notification
	err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&n).Error
	if err == gorm.ErrRecordNotFound {
		return false, nil
	}
	if err != nil || n.Read {
		return err == nil, err
	}

	err = r.db.WithContext(ctx).Model(&n).Updates(map[string]interface{}{
		"read":    true,
		"read_at": time.Now().UTC(),
	}).Error
	return err == nil, err
}

// MarkAllRead marks every unread notification of the user and returns how many changed
func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	result := r.scoped(ctx, NotificationFilter{UserID: userID, UnreadOnly: true}).
		Updates(map[string]interface{}{
			"read":    true,
			"read_at": time.Now().UTC(),
		})
	return result.RowsAffected, result.Error
}

// DeleteReadBefore removes read notifications older than cutoff
func (r *NotificationRepository) DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("read = ? AND created_at < ?", true, cutoff).
		Delete(&domain.Notification{})
	return result.RowsAffected, result.Error
}
