package handler_test

import (
	"net/http"
	"testing"

	"github.com/straye-as/salesflow-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tierBody() map[string]interface{} {
	ladder := []map[string]interface{}{
		{"thresholdPct": 50, "bonusAmount": 100, "label": "bronze"},
		{"thresholdPct": 80, "bonusAmount": 300, "label": "silver"},
		{"thresholdPct": 100, "bonusAmount": 500, "label": "gold"},
	}
	return map[string]interface{}{
		"modalities": map[string]interface{}{
			"sales_only":         ladder,
			"sales_and_activity": ladder,
		},
	}
}

func periodBody(modality string, achieved int) map[string]interface{} {
	return map[string]interface{}{
		"modality":       modality,
		"quotaAmount":    10000,
		"achievedAmount": achieved,
		"startsOn":       "2026-10-01T00:00:00Z",
		"endsOn":         "2026-10-31T00:00:00Z",
	}
}

func TestIncentiveHandler_TierTable(t *testing.T) {
	s := newTestServer(t)

	t.Run("reload without a stored document", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/incentives/tiers/reload", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("replace", func(t *testing.T) {
		w := s.do(t, http.MethodPut, "/incentives/tiers", tierBody())
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		table := decode[domain.TierTableDTO](t, w)
		assert.Equal(t, "user-1", table.UpdatedBy)
		assert.Len(t, table.Modalities[domain.ModalitySalesOnly], 3)

		w = s.do(t, http.MethodGet, "/incentives/tiers", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, decode[domain.TierTableDTO](t, w).Modalities[domain.ModalitySalesAndActivity], 3)
	})

	t.Run("misconfigured ladder", func(t *testing.T) {
		body := map[string]interface{}{
			"modalities": map[string]interface{}{
				"sales_only": []map[string]interface{}{
					{"thresholdPct": 50, "bonusAmount": 300, "label": "a"},
					{"thresholdPct": 80, "bonusAmount": 100, "label": "b"},
				},
			},
		}
		w := s.do(t, http.MethodPut, "/incentives/tiers", body)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("revisions", func(t *testing.T) {
		w := s.do(t, http.MethodPut, "/incentives/tiers", tierBody())
		require.Equal(t, http.StatusOK, w.Code)

		w = s.do(t, http.MethodGet, "/incentives/tiers/revisions", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, decode[[]domain.TierRevisionDTO](t, w), 1)
	})

	t.Run("reload stored document", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/incentives/tiers/reload", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, decode[domain.TierTableDTO](t, w).Modalities[domain.ModalitySalesOnly], 3)
	})
}

func TestIncentiveHandler_PeriodsAndBonus(t *testing.T) {
	s := newTestServer(t)
	require.Equal(t, http.StatusOK, s.do(t, http.MethodPut, "/incentives/tiers", tierBody()).Code)

	w := s.do(t, http.MethodPut, "/advisors/adv-1/periods/2026-10", periodBody("sales_only", 8500))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	period := decode[domain.AdvisorPeriodDTO](t, w)
	assert.True(t, d("85").Equal(period.AchievementPct))
	assert.Equal(t, "2026-10-01", period.StartsOn)

	t.Run("get period", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/advisors/adv-1/periods/2026-10", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, period.ID, decode[domain.AdvisorPeriodDTO](t, w).ID)

		w = s.do(t, http.MethodGet, "/advisors/adv-1/periods/2026-09", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("bonus", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/advisors/adv-1/periods/2026-10/bonus", nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		result := decode[domain.BonusResultDTO](t, w)
		assert.True(t, d("300").Equal(result.BonoActual))
		assert.Equal(t, "silver", result.TierLabel)
		require.NotNil(t, result.NextTier)
		assert.Equal(t, "gold", result.NextTier.Label)
		assert.True(t, d("1500").Equal(result.NextTier.FaltaUSD))
	})

	t.Run("unknown modality", func(t *testing.T) {
		w := s.do(t, http.MethodPut, "/advisors/adv-2/periods/2026-10", periodBody("commission_only", 1))
		// rejected by request validation before reaching the engine
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("negative quota", func(t *testing.T) {
		body := periodBody("sales_only", 1)
		body["quotaAmount"] = -5
		w := s.do(t, http.MethodPut, "/advisors/adv-2/periods/2026-10", body)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("list", func(t *testing.T) {
		require.Equal(t, http.StatusOK, s.do(t, http.MethodPut, "/advisors/adv-3/periods/2026-10", periodBody("sales_and_activity", 0)).Code)

		w := s.do(t, http.MethodGet, "/periods/2026-10/advisors", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, decode[[]domain.AdvisorPeriodDTO](t, w), 2)
	})

	t.Run("missing period bonus", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/advisors/adv-9/periods/2026-10/bonus", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
