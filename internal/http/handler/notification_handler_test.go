package handler_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/straye-as/salesflow-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationHandler(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	var ids []uuid.UUID
	for i := 0; i < 2; i++ {
		n := &domain.Notification{UserID: "adv-1", Type: "ticket_created", Title: "New training ticket", Message: "m"}
		require.NoError(t, s.notifRepo.Create(ctx, n))
		ids = append(ids, n.ID)
	}

	w := s.doAs(t, "adv-1", http.MethodGet, "/notifications?unreadOnly=true", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(2), decode[domain.PaginatedResponse](t, w).Total)

	w = s.doAs(t, "adv-1", http.MethodPut, "/notifications/"+ids[0].String()+"/read", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = s.doAs(t, "adv-1", http.MethodGet, "/notifications/count", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"count":1}`, w.Body.String())

	t.Run("other users cannot mark it", func(t *testing.T) {
		w := s.doAs(t, "adv-2", http.MethodPut, "/notifications/"+ids[1].String()+"/read", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("invalid id", func(t *testing.T) {
		w := s.doAs(t, "adv-1", http.MethodPut, "/notifications/abc/read", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("sale filter", func(t *testing.T) {
		w := s.doAs(t, "adv-1", http.MethodGet, "/notifications?saleId="+uuid.NewString(), nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, int64(0), decode[domain.PaginatedResponse](t, w).Total)

		w = s.doAs(t, "adv-1", http.MethodGet, "/notifications?saleId=nope", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("read all", func(t *testing.T) {
		w := s.doAs(t, "adv-1", http.MethodPut, "/notifications/read-all", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"updated":1}`, w.Body.String())
	})
}
