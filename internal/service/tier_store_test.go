package service_test

import (
	"context"
	"testing"

	"github.com/straye-as/salesflow-api/internal/domain"
	"github.com/straye-as/salesflow-api/internal/service"
	"github.com/straye-as/salesflow-api/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func tierDoc(label string) *domain.TierTableDTO {
	return &domain.TierTableDTO{
		Modalities: map[domain.IncentiveModality][]domain.TierEntryDTO{
			domain.ModalitySalesOnly: {{ThresholdPct: d("100"), BonusAmount: d("500"), Label: label}},
		},
	}
}

func TestTierDocumentStore_SaveArchivesAndPrunes(t *testing.T) {
	blobs, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	store := service.NewTierDocumentStore(blobs, tierPath, zap.NewNop()).KeepRevisions(2)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, tierDoc("v1")))
	revisions, err := store.Revisions(ctx)
	require.NoError(t, err)
	assert.Empty(t, revisions, "first save has nothing to archive")

	for _, label := range []string{"v2", "v3", "v4"} {
		require.NoError(t, store.Save(ctx, tierDoc(label)))
	}

	revisions, err = store.Revisions(ctx)
	require.NoError(t, err)
	require.Len(t, revisions, 2)
	assert.Greater(t, revisions[0].ID, revisions[1].ID, "newest first")
	assert.NotEmpty(t, revisions[0].ArchivedAt)
	assert.Equal(t, "tiers/revisions/"+revisions[0].ID+".json", revisions[0].Path)

	current, err := store.LoadDocument(ctx)
	require.NoError(t, err)
	assert.Equal(t, "v4", current.Modalities[domain.ModalitySalesOnly][0].Label)
}

func TestTierDocumentStore_LoadMissing(t *testing.T) {
	blobs, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	store := service.NewTierDocumentStore(blobs, tierPath, zap.NewNop())

	_, err = store.LoadDocument(context.Background())
	assert.ErrorIs(t, err, service.ErrTierDocumentNotFound)
}
