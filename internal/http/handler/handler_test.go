package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/straye-as/salesflow-api/internal/auth"
	"github.com/straye-as/salesflow-api/internal/domain"
	"github.com/straye-as/salesflow-api/internal/http/handler"
	"github.com/straye-as/salesflow-api/internal/incentive"
	"github.com/straye-as/salesflow-api/internal/lifecycle"
	"github.com/straye-as/salesflow-api/internal/repository"
	"github.com/straye-as/salesflow-api/internal/service"
	"github.com/straye-as/salesflow-api/internal/storage"
	"github.com/straye-as/salesflow-api/internal/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// toggleDispatcher fails ticket creation while failing is set
type toggleDispatcher struct {
	failing bool
	next    lifecycle.SideEffectDispatcher
}

func (d *toggleDispatcher) CreateTicket(ctx context.Context, intent lifecycle.TicketIntent) (string, error) {
	if d.failing {
		return "", errors.New("ticket queue unavailable")
	}
	return d.next.CreateTicket(ctx, intent)
}

type testServer struct {
	router     chi.Router
	dispatcher *toggleDispatcher
	notifRepo  *repository.NotificationRepository
}

// newTestServer wires real services over an in-memory database and mounts
// the handlers on a chi router with the production route shapes.
func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db := testutil.NewTestDB(t)
	logger := zap.NewNop()

	saleRepo := repository.NewSaleRepository(db)
	historyRepo := repository.NewSaleStageHistoryRepository(db)
	sideEffectRepo := repository.NewSaleSideEffectRepository(db)
	notifRepo := repository.NewNotificationRepository(db)

	ticketRepo := repository.NewServiceTicketRepository(db)
	dispatcher := &toggleDispatcher{
		next: service.NewTicketDispatcher(ticketRepo, notifRepo, logger),
	}
	engine := lifecycle.NewEngine(lifecycle.DefaultTransitionTable(), saleRepo, dispatcher, sideEffectRepo, lifecycle.DefaultRetryConfig(), logger)

	sequences := service.NewNumberSequenceService(repository.NewNumberSequenceRepository(db), logger)
	saleService := service.NewSaleService(saleRepo, historyRepo, sequences, logger)
	lifecycleService := service.NewLifecycleService(engine, saleRepo, historyRepo, sideEffectRepo, ticketRepo, dispatcher, nil, logger)

	blobs, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	tiers := service.NewTierDocumentStore(blobs, "tiers/tier-table.json", logger)
	incentiveService := service.NewIncentiveService(repository.NewAdvisorPeriodRepository(db), tiers, incentive.ActivityPolicy{}, nil, logger)

	sales := handler.NewSaleHandler(saleService, logger)
	lc := handler.NewLifecycleHandler(lifecycleService, logger)
	inc := handler.NewIncentiveHandler(incentiveService, logger)
	notifications := handler.NewNotificationHandler(service.NewNotificationService(notifRepo, logger), logger)

	r := chi.NewRouter()
	r.Route("/sales", func(r chi.Router) {
		r.Get("/", sales.List)
		r.Post("/", sales.Create)
		r.Get("/stage-counts", sales.StageCounts)
		r.Get("/code/{code}", sales.GetByCode)
		r.Get("/{id}", sales.GetByID)
		r.Get("/{id}/history", sales.GetHistory)
		r.Get("/{id}/transitions", lc.AllowedTransitions)
		r.Post("/{id}/transitions", lc.Transition)
		r.Get("/{id}/side-effects", lc.ListSideEffects)
		r.Post("/{id}/side-effects/retry", lc.RetrySideEffects)
		r.Get("/{id}/tickets", lc.ListTickets)
	})
	r.Get("/lifecycle/transitions", lc.TransitionTable)
	r.Get("/lifecycle/stages/*", lc.AllowedFromStage)
	r.Get("/incentives/tiers", inc.GetTierTable)
	r.Put("/incentives/tiers", inc.UpdateTierTable)
	r.Post("/incentives/tiers/reload", inc.ReloadTierTable)
	r.Get("/incentives/tiers/revisions", inc.ListTierRevisions)
	r.Get("/periods/{periodId}/advisors", inc.ListPeriods)
	r.Get("/advisors/{advisorId}/periods/{periodId}", inc.GetPeriod)
	r.Put("/advisors/{advisorId}/periods/{periodId}", inc.UpsertPeriod)
	r.Get("/advisors/{advisorId}/periods/{periodId}/bonus", inc.EvaluateBonus)
	r.Get("/notifications", notifications.List)
	r.Get("/notifications/count", notifications.GetUnreadCount)
	r.Put("/notifications/read-all", notifications.MarkAllAsRead)
	r.Put("/notifications/{id}/read", notifications.MarkAsRead)

	return &testServer{router: r, dispatcher: dispatcher, notifRepo: notifRepo}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	return s.doAs(t, "user-1", method, path, body)
}

func (s *testServer) doAs(t *testing.T, userID, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req = req.WithContext(auth.WithUserContext(req.Context(), &auth.UserContext{UserID: userID, DisplayName: "Test User"}))

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func saleBody() map[string]interface{} {
	return map[string]interface{}{
		"documentType": "invoice",
		"lineItems": []map[string]interface{}{
			{"productRef": "SKU-1", "quantity": 2, "unitPrice": "150.00", "unitOfMeasure": "unit"},
			{"productRef": "SKU-2", "quantity": 1, "unitPrice": 200, "unitOfMeasure": "unit"},
		},
		"taxAmount": 50,
		"advisorId": "adv42",
		"clientRef": "CLIENT-1",
	}
}

func (s *testServer) createSale(t *testing.T) domain.SaleDTO {
	t.Helper()
	w := s.do(t, http.MethodPost, "/sales", saleBody())
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[domain.SaleDTO](t, w)
}
