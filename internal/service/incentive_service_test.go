package service_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/straye-as/salesflow-api/internal/domain"
	"github.com/straye-as/salesflow-api/internal/incentive"
	"github.com/straye-as/salesflow-api/internal/repository"
	"github.com/straye-as/salesflow-api/internal/service"
	"github.com/straye-as/salesflow-api/internal/storage"
	"github.com/straye-as/salesflow-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const tierPath = "tiers/tier-table.json"

func standardTierRequest() *domain.UpdateTierTableRequest {
	ladder := []domain.TierEntryDTO{
		{ThresholdPct: d("100"), BonusAmount: d("500"), Label: "gold"},
		{ThresholdPct: d("50"), BonusAmount: d("100"), Label: "bronze"},
		{ThresholdPct: d("80"), BonusAmount: d("300"), Label: "silver"},
	}
	return &domain.UpdateTierTableRequest{
		Modalities: map[domain.IncentiveModality][]domain.TierEntryDTO{
			domain.ModalitySalesOnly:        ladder,
			domain.ModalitySalesAndActivity: ladder,
		},
	}
}

type incentiveFixture struct {
	svc   *service.IncentiveService
	store *service.TierDocumentStore
	blobs *storage.LocalStorage
}

func newIncentiveFixture(t *testing.T, policy incentive.ActivityPolicy) *incentiveFixture {
	t.Helper()
	db := testutil.NewTestDB(t)
	logger := zap.NewNop()

	blobs, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	store := service.NewTierDocumentStore(blobs, tierPath, logger)

	return &incentiveFixture{
		svc:   service.NewIncentiveService(repository.NewAdvisorPeriodRepository(db), store, policy, nil, logger),
		store: store,
		blobs: blobs,
	}
}

func periodRequest(modality domain.IncentiveModality, quota, achieved string) *domain.UpsertAdvisorPeriodRequest {
	return &domain.UpsertAdvisorPeriodRequest{
		Modality:       modality,
		QuotaAmount:    d(quota),
		AchievedAmount: d(achieved),
		StartsOn:       time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
		EndsOn:         time.Date(2026, 10, 31, 0, 0, 0, 0, time.UTC),
	}
}

func TestIncentiveService_EvaluateBonus(t *testing.T) {
	f := newIncentiveFixture(t, incentive.ActivityPolicy{})
	ctx := createTestContext()

	_, err := f.svc.UpdateTierTable(ctx, standardTierRequest())
	require.NoError(t, err)

	t.Run("between tiers", func(t *testing.T) {
		_, err := f.svc.UpsertPeriod(ctx, "adv-1", "2026-10", periodRequest(domain.ModalitySalesOnly, "10000", "7999"))
		require.NoError(t, err)

		result, err := f.svc.EvaluateBonus(ctx, "adv-1", "2026-10")
		require.NoError(t, err)
		assert.Equal(t, "adv-1", result.AdvisorID)
		assertDecimal(t, "79.99", result.ScorePct)
		assertDecimal(t, "100", result.BonoActual)
		assert.Equal(t, "bronze", result.TierLabel)
		require.NotNil(t, result.NextTier)
		assert.Equal(t, "silver", result.NextTier.Label)
		assertDecimal(t, "1", result.NextTier.FaltaUSD)
	})

	t.Run("below first tier", func(t *testing.T) {
		_, err := f.svc.UpsertPeriod(ctx, "adv-2", "2026-10", periodRequest(domain.ModalitySalesOnly, "10000", "1000"))
		require.NoError(t, err)

		result, err := f.svc.EvaluateBonus(ctx, "adv-2", "2026-10")
		require.NoError(t, err)
		assertDecimal(t, "0", result.BonoActual)
		require.NotNil(t, result.NextTier)
		assert.Equal(t, "bronze", result.NextTier.Label)
		assertDecimal(t, "4000", result.NextTier.FaltaUSD)
	})

	t.Run("blended modality reports activity", func(t *testing.T) {
		req := periodRequest(domain.ModalitySalesAndActivity, "10000", "10000")
		req.MessagesSent = 200
		req.CallsMade = 50
		req.SalesClosed = 10
		req.ActiveDays = 20
		_, err := f.svc.UpsertPeriod(ctx, "adv-3", "2026-10", req)
		require.NoError(t, err)

		result, err := f.svc.EvaluateBonus(ctx, "adv-3", "2026-10")
		require.NoError(t, err)
		assert.Equal(t, "gold", result.TierLabel)
		assert.Nil(t, result.NextTier)
		require.NotNil(t, result.Activity)
		assertDecimal(t, "5", result.Activity.MessageConversionPct)
		assertDecimal(t, "20", result.Activity.CallConversionPct)
	})

	t.Run("missing period", func(t *testing.T) {
		_, err := f.svc.EvaluateBonus(ctx, "adv-404", "2026-10")
		assert.ErrorIs(t, err, service.ErrAdvisorPeriodNotFound)
	})
}

func TestIncentiveService_ActivityGate(t *testing.T) {
	f := newIncentiveFixture(t, incentive.ActivityPolicy{Enabled: true, MinActiveDays: 15})
	ctx := createTestContext()

	_, err := f.svc.UpdateTierTable(ctx, standardTierRequest())
	require.NoError(t, err)

	req := periodRequest(domain.ModalitySalesAndActivity, "10000", "9000")
	req.ActiveDays = 5
	_, err = f.svc.UpsertPeriod(ctx, "adv-1", "2026-10", req)
	require.NoError(t, err)

	result, err := f.svc.EvaluateBonus(ctx, "adv-1", "2026-10")
	require.NoError(t, err)
	assertDecimal(t, "0", result.BonoActual)
	require.NotNil(t, result.ActivityGateMet)
	assert.False(t, *result.ActivityGateMet)
}

func TestIncentiveService_TierTable(t *testing.T) {
	f := newIncentiveFixture(t, incentive.ActivityPolicy{})
	ctx := createTestContext()

	t.Run("missing document keeps the empty table", func(t *testing.T) {
		err := f.svc.ReloadTiers(ctx)
		assert.ErrorIs(t, err, service.ErrTierDocumentNotFound)
		assert.Empty(t, f.svc.GetTierTable().Modalities[domain.ModalitySalesOnly])
	})

	t.Run("update stores sorted ladders with attribution", func(t *testing.T) {
		stored, err := f.svc.UpdateTierTable(ctx, standardTierRequest())
		require.NoError(t, err)
		assert.Equal(t, "user-1", stored.UpdatedBy)
		assert.NotEmpty(t, stored.UpdatedAt)

		ladder := stored.Modalities[domain.ModalitySalesOnly]
		require.Len(t, ladder, 3)
		assert.Equal(t, "bronze", ladder[0].Label)
		assert.Equal(t, "gold", ladder[2].Label)

		doc, err := f.store.LoadDocument(ctx)
		require.NoError(t, err)
		assert.Equal(t, "user-1", doc.UpdatedBy)
		assert.Len(t, doc.Modalities[domain.ModalitySalesAndActivity], 3)
	})

	t.Run("misconfigured table rejected and previous kept", func(t *testing.T) {
		bad := &domain.UpdateTierTableRequest{
			Modalities: map[domain.IncentiveModality][]domain.TierEntryDTO{
				domain.ModalitySalesOnly: {
					{ThresholdPct: d("50"), BonusAmount: d("100"), Label: "a"},
					{ThresholdPct: d("50"), BonusAmount: d("200"), Label: "b"},
				},
			},
		}
		_, err := f.svc.UpdateTierTable(ctx, bad)
		assert.ErrorIs(t, err, incentive.ErrTierTableMisconfigured)
		assert.Len(t, f.svc.GetTierTable().Modalities[domain.ModalitySalesOnly], 3)
	})

	t.Run("reload picks up a fresh service", func(t *testing.T) {
		db := testutil.NewTestDB(t)
		fresh := service.NewIncentiveService(repository.NewAdvisorPeriodRepository(db), f.store, incentive.ActivityPolicy{}, nil, zap.NewNop())
		require.NoError(t, fresh.ReloadTiers(ctx))
		table := fresh.GetTierTable()
		assert.Len(t, table.Modalities[domain.ModalitySalesOnly], 3)
		assert.Equal(t, "user-1", table.UpdatedBy)
	})

	t.Run("corrupt document fails reload", func(t *testing.T) {
		_, err := f.blobs.Put(ctx, tierPath, "application/json", strings.NewReader("{not json"))
		require.NoError(t, err)

		err = f.svc.ReloadTiers(ctx)
		assert.ErrorIs(t, err, incentive.ErrTierTableMisconfigured)
		assert.Len(t, f.svc.GetTierTable().Modalities[domain.ModalitySalesOnly], 3)
	})
}

func TestIncentiveService_Periods(t *testing.T) {
	f := newIncentiveFixture(t, incentive.ActivityPolicy{})
	ctx := context.Background()

	created, err := f.svc.UpsertPeriod(ctx, "adv-1", "2026-10", periodRequest(domain.ModalitySalesOnly, "10000", "2500"))
	require.NoError(t, err)
	assertDecimal(t, "25", created.AchievementPct)
	assert.Equal(t, "2026-10-01", created.StartsOn)

	updated, err := f.svc.UpsertPeriod(ctx, "adv-1", "2026-10", periodRequest(domain.ModalitySalesOnly, "10000", "5000"))
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assertDecimal(t, "5000", updated.AchievedAmount)

	_, err = f.svc.UpsertPeriod(ctx, "adv-2", "2026-10", periodRequest(domain.ModalitySalesOnly, "8000", "0"))
	require.NoError(t, err)

	list, err := f.svc.ListPeriods(ctx, "2026-10")
	require.NoError(t, err)
	assert.Len(t, list, 2)

	t.Run("validation", func(t *testing.T) {
		_, err := f.svc.UpsertPeriod(ctx, "adv-1", "2026-10", periodRequest("commission_only", "1", "1"))
		assert.ErrorIs(t, err, incentive.ErrUnknownModality)

		_, err = f.svc.UpsertPeriod(ctx, "adv-1", "2026-10", periodRequest(domain.ModalitySalesOnly, "-1", "1"))
		assert.ErrorIs(t, err, service.ErrInvalidAdvisorPeriod)

		req := periodRequest(domain.ModalitySalesOnly, "1", "1")
		req.EndsOn = req.StartsOn.AddDate(0, 0, -1)
		_, err = f.svc.UpsertPeriod(ctx, "adv-1", "2026-10", req)
		assert.ErrorIs(t, err, service.ErrInvalidAdvisorPeriod)

		_, err = f.svc.GetPeriod(ctx, "adv-1", "2026-09")
		assert.ErrorIs(t, err, service.ErrAdvisorPeriodNotFound)
	})
}
