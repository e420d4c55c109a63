package handler_test

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/straye-as/salesflow-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func transitionPath(id uuid.UUID) string {
	return "/sales/" + id.String() + "/transitions"
}

func TestLifecycleHandler_Transition(t *testing.T) {
	s := newTestServer(t)
	sale := s.createSale(t)

	t.Run("forward step", func(t *testing.T) {
		w := s.do(t, http.MethodPost, transitionPath(sale.ID), map[string]string{"stage": "sold/shipped", "notes": "left warehouse"})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		result := decode[domain.TransitionResultDTO](t, w)
		assert.Equal(t, domain.StageSold, result.PreviousState)
		assert.Equal(t, domain.StageSoldShipped, result.NewState)
		assert.False(t, result.Replayed)
		assert.Nil(t, result.TicketCreated)
	})

	t.Run("replay of current stage", func(t *testing.T) {
		w := s.do(t, http.MethodPost, transitionPath(sale.ID), map[string]string{"stage": "sold/shipped"})
		require.Equal(t, http.StatusOK, w.Code)
		assert.True(t, decode[domain.TransitionResultDTO](t, w).Replayed)
	})

	t.Run("invalid transition lists allowed targets", func(t *testing.T) {
		w := s.do(t, http.MethodPost, transitionPath(sale.ID), map[string]string{"stage": "sold/shipped/received/trained"})
		require.Equal(t, http.StatusBadRequest, w.Code)

		apiErr := decode[domain.APIError](t, w)
		assert.Equal(t, domain.ErrorTypeInvalidTransition, apiErr.Type)
		assert.Contains(t, apiErr.Allowed, domain.StageSoldShippedReceived)
		assert.Contains(t, apiErr.Allowed, domain.StageVoided)
	})

	t.Run("reaching received creates a ticket", func(t *testing.T) {
		w := s.do(t, http.MethodPost, transitionPath(sale.ID), map[string]string{"stage": "sold/shipped/received"})
		require.Equal(t, http.StatusOK, w.Code)

		result := decode[domain.TransitionResultDTO](t, w)
		require.NotNil(t, result.TicketCreated)
		assert.True(t, *result.TicketCreated)
		assert.NotEmpty(t, result.TicketID)
		assert.Empty(t, result.Warning)
	})

	t.Run("tickets of the sale", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/sales/"+sale.ID.String()+"/tickets", nil)
		require.Equal(t, http.StatusOK, w.Code)

		tickets := decode[[]domain.ServiceTicketDTO](t, w)
		require.Len(t, tickets, 1)
		assert.Equal(t, domain.TicketKindTraining, tickets[0].Kind)

		w = s.do(t, http.MethodGet, "/sales/"+uuid.New().String()+"/tickets", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("unknown sale", func(t *testing.T) {
		w := s.do(t, http.MethodPost, transitionPath(uuid.New()), map[string]string{"stage": "voided"})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("missing stage", func(t *testing.T) {
		w := s.do(t, http.MethodPost, transitionPath(sale.ID), map[string]string{})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, domain.ErrorTypeValidation, decode[domain.APIError](t, w).Type)
	})
}

func TestLifecycleHandler_SideEffectFailure(t *testing.T) {
	s := newTestServer(t)
	sale := s.createSale(t)

	require.Equal(t, http.StatusOK, s.do(t, http.MethodPost, transitionPath(sale.ID), map[string]string{"stage": "sold/shipped"}).Code)

	s.dispatcher.failing = true
	w := s.do(t, http.MethodPost, transitionPath(sale.ID), map[string]string{"stage": "sold/shipped/received"})
	require.Equal(t, http.StatusOK, w.Code)

	result := decode[domain.TransitionResultDTO](t, w)
	assert.Equal(t, domain.StageSoldShippedReceived, result.NewState)
	assert.NotEmpty(t, result.Warning)
	require.NotNil(t, result.TicketCreated)
	assert.False(t, *result.TicketCreated)

	w = s.do(t, http.MethodGet, "/sales/"+sale.ID.String()+"/side-effects", nil)
	require.Equal(t, http.StatusOK, w.Code)
	ledger := decode[[]domain.SaleSideEffectDTO](t, w)
	require.Len(t, ledger, 1)
	assert.Equal(t, domain.SideEffectFailed, ledger[0].Status)

	s.dispatcher.failing = false
	w = s.do(t, http.MethodPost, "/sales/"+sale.ID.String()+"/side-effects/retry", nil)
	require.Equal(t, http.StatusOK, w.Code)
	ledger = decode[[]domain.SaleSideEffectDTO](t, w)
	require.Len(t, ledger, 1)
	assert.Equal(t, domain.SideEffectDispatched, ledger[0].Status)
	assert.NotEmpty(t, ledger[0].TicketID)
}

func TestLifecycleHandler_Queries(t *testing.T) {
	s := newTestServer(t)
	sale := s.createSale(t)

	t.Run("allowed for a sale", func(t *testing.T) {
		w := s.do(t, http.MethodGet, transitionPath(sale.ID), nil)
		require.Equal(t, http.StatusOK, w.Code)

		dto := decode[domain.StageTransitionsDTO](t, w)
		assert.Equal(t, domain.StageSold, dto.Stage)
		require.NotEmpty(t, dto.Allowed)
		assert.Equal(t, domain.StageSoldShipped, dto.Allowed[0].Stage)
	})

	t.Run("table", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/lifecycle/transitions", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, decode[[]domain.StageTransitionsDTO](t, w), 8)
	})

	t.Run("by stage path", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/lifecycle/stages/exchange/shipped", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, domain.StageExchangeShipped, decode[domain.StageTransitionsDTO](t, w).Stage)

		w = s.do(t, http.MethodGet, "/lifecycle/stages/voided", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, decode[domain.StageTransitionsDTO](t, w).Allowed)
	})

	t.Run("unknown stage", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/lifecycle/stages/sold/lost", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
