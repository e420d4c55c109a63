package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/straye-as/salesflow-api/internal/auth"
	"github.com/straye-as/salesflow-api/internal/domain"
	"github.com/straye-as/salesflow-api/internal/repository"
	"github.com/straye-as/salesflow-api/internal/service"
	"github.com/straye-as/salesflow-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func advisorContext(advisorID string) context.Context {
	return auth.WithUserContext(context.Background(), &auth.UserContext{UserID: advisorID, DisplayName: advisorID})
}

func TestNotificationService(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repository.NewNotificationRepository(db)
	svc := service.NewNotificationService(repo, zap.NewNop())

	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		n := &domain.Notification{UserID: "adv-1", Type: "ticket_created", Title: "New training ticket", Message: "m"}
		require.NoError(t, repo.Create(context.Background(), n))
		ids = append(ids, n.ID)
	}
	other := &domain.Notification{UserID: "adv-2", Type: "ticket_created", Title: "t", Message: "m"}
	require.NoError(t, repo.Create(context.Background(), other))

	ctx := advisorContext("adv-1")

	page, err := svc.ListForCurrentUser(ctx, service.NotificationQuery{Page: 1, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
	assert.Equal(t, 2, page.TotalPages)

	require.NoError(t, svc.MarkAsRead(ctx, ids[0]))
	count, err := svc.UnreadCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count.Count)

	t.Run("another user's notification is not found", func(t *testing.T) {
		assert.ErrorIs(t, svc.MarkAsRead(ctx, other.ID), service.ErrNotificationNotFound)
		assert.ErrorIs(t, svc.MarkAsRead(ctx, uuid.New()), service.ErrNotificationNotFound)
	})

	t.Run("mark all", func(t *testing.T) {
		updated, err := svc.MarkAllAsRead(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(2), updated)

		unread, err := svc.ListForCurrentUser(ctx, service.NotificationQuery{UnreadOnly: true})
		require.NoError(t, err)
		assert.Equal(t, int64(0), unread.Total)
	})

	t.Run("marking twice is fine", func(t *testing.T) {
		assert.NoError(t, svc.MarkAsRead(ctx, ids[0]))
	})

	t.Run("filter by sale", func(t *testing.T) {
		saleID := uuid.New()
		n := &domain.Notification{UserID: "adv-1", Type: "ticket_created", Title: "t", Message: "m",
			EntityType: service.NotificationEntitySale, EntityID: &saleID}
		require.NoError(t, repo.Create(context.Background(), n))

		page, err := svc.ListForCurrentUser(ctx, service.NotificationQuery{SaleID: &saleID})
		require.NoError(t, err)
		assert.Equal(t, int64(1), page.Total)
	})

	t.Run("purge read", func(t *testing.T) {
		_, err := svc.PurgeRead(ctx, 0)
		assert.Error(t, err)

		// everything read so far is younger than an hour
		deleted, err := svc.PurgeRead(ctx, time.Hour)
		require.NoError(t, err)
		assert.Zero(t, deleted)

		deleted, err = repo.DeleteReadBefore(ctx, time.Now().Add(time.Minute))
		require.NoError(t, err)
		assert.Equal(t, int64(3), deleted)
	})

	t.Run("anonymous caller", func(t *testing.T) {
		_, err := svc.UnreadCount(context.Background())
		assert.ErrorIs(t, err, service.ErrUserContextRequired)
	})
}
