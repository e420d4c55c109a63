package incentive

import (
	"github.com/shopspring/decimal"
	"github.com/straye-as/salesflow-api/internal/domain"
)

// ScoreStrategy turns an advisor period into the score used for tier lookup
type ScoreStrategy interface {
	Score(period *domain.AdvisorPeriod) decimal.Decimal
}

// AchievementScore scores a period by its sales achievement percentage
type AchievementScore struct{}

func (AchievementScore) Score(period *domain.AdvisorPeriod) decimal.Decimal {
	return period.AchievementPct()
}

// ActivityPolicy optionally gates tier eligibility on engagement for the
// sales_and_activity modality. When Enabled and not met, the current tier is withheld.
type ActivityPolicy struct {
	Enabled                 bool
	MinMessageConversionPct decimal.Decimal
	MinCallConversionPct    decimal.Decimal
	MinActiveDays           int
}

// Met reports whether the period satisfies every configured floor
func (p ActivityPolicy) Met(period *domain.AdvisorPeriod) bool {
	if !p.Enabled {
		return true
	}
	if period.MessageConversionPct().LessThan(p.MinMessageConversionPct) {
		return false
	}
	if period.CallConversionPct().LessThan(p.MinCallConversionPct) {
		return false
	}
	return period.ActiveDays >= p.MinActiveDays
}

func defaultStrategies() map[domain.IncentiveModality]ScoreStrategy {
	return map[domain.IncentiveModality]ScoreStrategy{
		domain.ModalitySalesOnly:        AchievementScore{},
		domain.ModalitySalesAndActivity: AchievementScore{},
	}
}
