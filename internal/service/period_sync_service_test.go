package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/straye-as/salesflow-api/internal/datawarehouse"
	"github.com/straye-as/salesflow-api/internal/domain"
	"github.com/straye-as/salesflow-api/internal/repository"
	"github.com/straye-as/salesflow-api/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fakeActualsSource struct {
	enabled bool
	rows    []datawarehouse.AdvisorActuals
	err     error
	queries [][2]time.Time
}

func (f *fakeActualsSource) IsEnabled() bool { return f.enabled }

func (f *fakeActualsSource) GetAdvisorActuals(ctx context.Context, from, to time.Time) ([]datawarehouse.AdvisorActuals, error) {
	f.queries = append(f.queries, [2]time.Time{from, to})
	return f.rows, f.err
}

type fakeOpenPeriods struct {
	open    []domain.AdvisorPeriod
	updates map[string]repository.PeriodActuals
}

func (f *fakeOpenPeriods) ListOpen(ctx context.Context, at time.Time) ([]domain.AdvisorPeriod, error) {
	return f.open, nil
}

func (f *fakeOpenPeriods) UpdateActuals(ctx context.Context, advisorID, periodID string, actuals repository.PeriodActuals) error {
	if f.updates == nil {
		f.updates = map[string]repository.PeriodActuals{}
	}
	if advisorID == "adv-gone" {
		return gorm.ErrRecordNotFound
	}
	f.updates[advisorID+"/"+periodID] = actuals
	return nil
}

func octoberPeriod(advisorID string) domain.AdvisorPeriod {
	return domain.AdvisorPeriod{
		AdvisorID: advisorID,
		PeriodID:  "2026-10",
		Modality:  domain.ModalitySalesOnly,
		StartsOn:  time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
		EndsOn:    time.Date(2026, 10, 31, 0, 0, 0, 0, time.UTC),
	}
}

func TestPeriodSyncService_SyncOpenPeriods(t *testing.T) {
	ctx := context.Background()
	at := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)

	t.Run("updates advisors with warehouse rows", func(t *testing.T) {
		source := &fakeActualsSource{
			enabled: true,
			rows: []datawarehouse.AdvisorActuals{
				{AdvisorID: "adv-1", AchievedAmount: d("4200.50"), MessagesSent: 120, CallsMade: 30, ActiveDays: 11, SalesClosed: 6},
				{AdvisorID: "adv-gone", AchievedAmount: d("1")},
				{AdvisorID: "adv-unknown", AchievedAmount: d("1")},
			},
		}
		periods := &fakeOpenPeriods{open: []domain.AdvisorPeriod{
			octoberPeriod("adv-1"),
			octoberPeriod("adv-2"),
			octoberPeriod("adv-gone"),
		}}

		svc := service.NewPeriodSyncService(source, periods, nil, zap.NewNop())
		synced, failed, err := svc.SyncOpenPeriods(ctx, at)
		require.NoError(t, err)
		assert.Equal(t, 1, synced)
		assert.Equal(t, 1, failed)

		got := periods.updates["adv-1/2026-10"]
		assertDecimal(t, "4200.50", got.AchievedAmount)
		assert.Equal(t, 120, got.MessagesSent)
		assert.Equal(t, 6, got.SalesClosed)
		_, touched := periods.updates["adv-2/2026-10"]
		assert.False(t, touched)

		require.Len(t, source.queries, 1)
		assert.Equal(t, time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC), source.queries[0][1])
	})

	t.Run("one query per date range", func(t *testing.T) {
		source := &fakeActualsSource{enabled: true}
		weekly := octoberPeriod("adv-3")
		weekly.PeriodID = "2026-W42"
		weekly.StartsOn = time.Date(2026, 10, 12, 0, 0, 0, 0, time.UTC)
		weekly.EndsOn = time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC)
		periods := &fakeOpenPeriods{open: []domain.AdvisorPeriod{octoberPeriod("adv-1"), octoberPeriod("adv-2"), weekly}}

		svc := service.NewPeriodSyncService(source, periods, nil, zap.NewNop())
		_, _, err := svc.SyncOpenPeriods(ctx, at)
		require.NoError(t, err)
		assert.Len(t, source.queries, 2)
	})

	t.Run("warehouse error counts the group as failed", func(t *testing.T) {
		source := &fakeActualsSource{enabled: true, err: errors.New("timeout")}
		periods := &fakeOpenPeriods{open: []domain.AdvisorPeriod{octoberPeriod("adv-1"), octoberPeriod("adv-2")}}

		svc := service.NewPeriodSyncService(source, periods, nil, zap.NewNop())
		synced, failed, err := svc.SyncOpenPeriods(ctx, at)
		require.NoError(t, err)
		assert.Equal(t, 0, synced)
		assert.Equal(t, 2, failed)
	})

	t.Run("disabled warehouse", func(t *testing.T) {
		svc := service.NewPeriodSyncService(&fakeActualsSource{}, &fakeOpenPeriods{}, nil, zap.NewNop())
		_, _, err := svc.SyncOpenPeriods(ctx, at)
		assert.ErrorIs(t, err, service.ErrDataWarehouseUnavailable)
	})
}
