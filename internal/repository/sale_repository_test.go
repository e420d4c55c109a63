package repository_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/straye-as/salesflow-api/internal/domain"
	"github.com/straye-as/salesflow-api/internal/lifecycle"
	"github.com/straye-as/salesflow-api/internal/repository"
	"github.com/straye-as/salesflow-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestSale(t *testing.T, repo *repository.SaleRepository, code string, stage domain.SaleStage) *domain.Sale {
	t.Helper()
	sale := &domain.Sale{
		Code:           code,
		DocumentType:   domain.DocumentInvoice,
		Subtotal:       decimal.NewFromInt(300),
		FinalValue:     decimal.NewFromInt(300),
		LifecycleState: stage,
		AdvisorID:      "adv-1",
		ClientRef:      "CLIENT-1",
		LineItems: []domain.SaleLineItem{
			{Position: 2, ProductRef: "SKU-2", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(100), UnitOfMeasure: "unit"},
			{Position: 1, ProductRef: "SKU-1", Quantity: decimal.NewFromInt(2), UnitPrice: decimal.NewFromInt(100), UnitOfMeasure: "unit"},
		},
	}
	require.NoError(t, repo.Create(context.Background(), sale))
	return sale
}

func TestSaleRepository_CreateAndGet(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repository.NewSaleRepository(db)
	ctx := context.Background()

	sale := createTestSale(t, repo, "ADV1-000001", domain.StageSold)
	assert.NotEqual(t, uuid.Nil, sale.ID)

	got, err := repo.GetByID(ctx, sale.ID)
	require.NoError(t, err)
	assert.Equal(t, "ADV1-000001", got.Code)
	assert.Equal(t, domain.StageSold, got.LifecycleState)
	require.Len(t, got.LineItems, 2)
	assert.Equal(t, "SKU-1", got.LineItems[0].ProductRef)
	assert.Equal(t, "SKU-2", got.LineItems[1].ProductRef)
	assert.True(t, decimal.NewFromInt(300).Equal(got.FinalValue))

	byCode, err := repo.GetByCode(ctx, "ADV1-000001")
	require.NoError(t, err)
	assert.Equal(t, sale.ID, byCode.ID)
}

func TestSaleRepository_ReadState(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repository.NewSaleRepository(db)
	ctx := context.Background()

	sale := createTestSale(t, repo, "ADV1-000001", domain.StageSoldShipped)

	state, err := repo.ReadState(ctx, sale.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StageSoldShipped, state.Stage)
	assert.Equal(t, "CLIENT-1", state.ClientRef)
	assert.Equal(t, "adv-1", state.AdvisorID)

	_, err = repo.ReadState(ctx, uuid.New())
	assert.ErrorIs(t, err, lifecycle.ErrNotFound)
}

func TestSaleRepository_CompareAndSwapState(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repository.NewSaleRepository(db)
	ctx := context.Background()

	sale := createTestSale(t, repo, "ADV1-000001", domain.StageSold)

	swapped, err := repo.CompareAndSwapState(ctx, sale.ID, domain.StageSold, domain.StageSoldShipped)
	require.NoError(t, err)
	assert.True(t, swapped)

	// stale expectation loses
	swapped, err = repo.CompareAndSwapState(ctx, sale.ID, domain.StageSold, domain.StageVoided)
	require.NoError(t, err)
	assert.False(t, swapped)

	state, err := repo.ReadState(ctx, sale.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StageSoldShipped, state.Stage)
	assert.Equal(t, int64(1), state.Version)
}

func TestSaleRepository_ListFilters(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repository.NewSaleRepository(db)
	ctx := context.Background()

	createTestSale(t, repo, "ADV1-000001", domain.StageSold)
	createTestSale(t, repo, "ADV1-000002", domain.StageSoldShipped)
	createTestSale(t, repo, "ADV1-000003", domain.StageExchange)

	sales, total, err := repo.List(ctx, 1, 10, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, sales, 3)

	root := domain.StageSold
	sales, total, err = repo.List(ctx, 1, 10, &repository.SaleFilters{StageRoot: &root})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, sales, 2)

	stage := domain.StageExchange
	_, total, err = repo.List(ctx, 1, 10, &repository.SaleFilters{Stage: &stage})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	counts, err := repo.CountByStage(ctx, "adv-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts[domain.StageSoldShipped])
}

func TestSaleRepository_ListSort(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repository.NewSaleRepository(db)
	ctx := context.Background()

	createTestSale(t, repo, "ADV1-000002", domain.StageSold)
	createTestSale(t, repo, "ADV1-000003", domain.StageSold)
	createTestSale(t, repo, "ADV1-000001", domain.StageSold)

	sales, _, err := repo.List(ctx, 1, 10, &repository.SaleFilters{
		Sort: repository.SortConfig{Field: "code", Order: repository.SortOrderAsc},
	})
	require.NoError(t, err)
	require.Len(t, sales, 3)
	assert.Equal(t, "ADV1-000001", sales[0].Code)
	assert.Equal(t, "ADV1-000003", sales[2].Code)

	t.Run("unknown fields fall back to the default column", func(t *testing.T) {
		clause := repository.BuildOrderClause(
			repository.SortConfig{Field: "password; DROP TABLE sales", Order: repository.ParseSortOrder("ASC")},
			map[string]string{"code": "code"},
			"created_at",
		)
		assert.Equal(t, "created_at ASC", clause)
	})
}

func TestNumberSequenceRepository_GetNextNumber(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repository.NewNumberSequenceRepository(db)
	ctx := context.Background()

	current, err := repo.GetCurrentSequence(ctx, "adv-1")
	require.NoError(t, err)
	assert.Equal(t, 0, current)

	for want := 1; want <= 3; want++ {
		got, err := repo.GetNextNumber(ctx, "adv-1")
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	other, err := repo.GetNextNumber(ctx, "adv-2")
	require.NoError(t, err)
	assert.Equal(t, 1, other)

	current, err = repo.GetCurrentSequence(ctx, "adv-1")
	require.NoError(t, err)
	assert.Equal(t, 3, current)
}
