package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/straye-as/salesflow-api/internal/domain"
	"github.com/straye-as/salesflow-api/internal/lifecycle"
	"github.com/straye-as/salesflow-api/internal/repository"
	"github.com/straye-as/salesflow-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func trainingIntent(saleID uuid.UUID) lifecycle.TicketIntent {
	return lifecycle.TicketIntent{
		Kind:           domain.TicketKindTraining,
		SaleID:         saleID,
		TargetStage:    domain.StageSoldShippedReceived,
		ClientRef:      "CLIENT-1",
		AdvisorID:      "adv-1",
		IdempotencyKey: lifecycle.IdempotencyKey(saleID, domain.StageSoldShippedReceived),
	}
}

func TestSaleSideEffectRepository_ClaimOnce(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repository.NewSaleSideEffectRepository(db)
	ctx := context.Background()
	intent := trainingIntent(uuid.New())

	claimed, err := repo.Claim(ctx, intent)
	require.NoError(t, err)
	assert.True(t, claimed)

	claimed, err = repo.Claim(ctx, intent)
	require.NoError(t, err)
	assert.False(t, claimed)

	row, err := repo.GetByKey(ctx, intent.IdempotencyKey)
	require.NoError(t, err)
	assert.Equal(t, domain.SideEffectPending, row.Status)
	assert.Equal(t, domain.StageSoldShippedReceived, row.TargetStage)
}

func TestSaleSideEffectRepository_StatusTransitions(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repository.NewSaleSideEffectRepository(db)
	ctx := context.Background()
	saleID := uuid.New()
	intent := trainingIntent(saleID)

	_, err := repo.Claim(ctx, intent)
	require.NoError(t, err)

	require.NoError(t, repo.MarkFailed(ctx, intent.IdempotencyKey, errors.New("queue down")))

	retryable, err := repo.ListRetryable(ctx, time.Hour, 10)
	require.NoError(t, err)
	require.Len(t, retryable, 1)
	assert.Equal(t, "queue down", retryable[0].LastError)
	assert.Equal(t, 1, retryable[0].Attempts)

	require.NoError(t, repo.MarkDispatched(ctx, intent.IdempotencyKey, "ticket-1"))

	row, err := repo.GetByKey(ctx, intent.IdempotencyKey)
	require.NoError(t, err)
	assert.Equal(t, domain.SideEffectDispatched, row.Status)
	assert.Equal(t, "ticket-1", row.TicketID)
	assert.Equal(t, 2, row.Attempts)
	assert.Empty(t, row.LastError)

	retryable, err = repo.ListRetryable(ctx, time.Hour, 10)
	require.NoError(t, err)
	assert.Empty(t, retryable)

	bySale, err := repo.ListBySale(ctx, saleID)
	require.NoError(t, err)
	assert.Len(t, bySale, 1)
}

func TestServiceTicketRepository_CreateIdempotent(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repository.NewServiceTicketRepository(db)
	ctx := context.Background()
	saleID := uuid.New()

	first, created, err := repo.CreateIdempotent(ctx, &domain.ServiceTicket{
		Kind:           domain.TicketKindTraining,
		SaleID:         saleID,
		ClientRef:      "CLIENT-1",
		IdempotencyKey: "k-1",
		Status:         domain.TicketStatusOpen,
	})
	require.NoError(t, err)
	assert.True(t, created)

	second, created, err := repo.CreateIdempotent(ctx, &domain.ServiceTicket{
		Kind:           domain.TicketKindTraining,
		SaleID:         saleID,
		ClientRef:      "CLIENT-1",
		IdempotencyKey: "k-1",
		Status:         domain.TicketStatusOpen,
	})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)

	tickets, err := repo.ListBySale(ctx, saleID)
	require.NoError(t, err)
	assert.Len(t, tickets, 1)
	assert.Equal(t, domain.TicketKindTraining, tickets[0].Kind)
}

func TestAdvisorPeriodRepository(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repository.NewAdvisorPeriodRepository(db)
	ctx := context.Background()

	period := &domain.AdvisorPeriod{
		AdvisorID:   "adv-1",
		PeriodID:    "2026-10",
		Modality:    domain.ModalitySalesOnly,
		QuotaAmount: decimal.NewFromInt(10000),
		StartsOn:    time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
		EndsOn:      time.Date(2026, 10, 31, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, repo.Upsert(ctx, period))

	got, err := repo.Read(ctx, "adv-1", "2026-10")
	require.NoError(t, err)
	assert.Equal(t, domain.ModalitySalesOnly, got.Modality)
	assert.True(t, decimal.NewFromInt(10000).Equal(got.QuotaAmount))

	// upsert on the same key replaces the figures
	replacement := *period
	replacement.ID = uuid.Nil
	replacement.Modality = domain.ModalitySalesAndActivity
	replacement.QuotaAmount = decimal.NewFromInt(12000)
	require.NoError(t, repo.Upsert(ctx, &replacement))

	got, err = repo.Read(ctx, "adv-1", "2026-10")
	require.NoError(t, err)
	assert.Equal(t, domain.ModalitySalesAndActivity, got.Modality)
	assert.True(t, decimal.NewFromInt(12000).Equal(got.QuotaAmount))

	require.NoError(t, repo.UpdateActuals(ctx, "adv-1", "2026-10", repository.PeriodActuals{
		AchievedAmount: decimal.NewFromInt(6000),
		MessagesSent:   40,
		SalesClosed:    4,
	}))

	got, err = repo.Read(ctx, "adv-1", "2026-10")
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(6000).Equal(got.AchievedAmount))
	assert.Equal(t, 40, got.MessagesSent)
	assert.NotNil(t, got.LastSyncedAt)

	err = repo.UpdateActuals(ctx, "adv-9", "2026-10", repository.PeriodActuals{})
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	_, err = repo.Read(ctx, "adv-9", "2026-10")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	all, err := repo.ListByPeriod(ctx, "2026-10")
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
