package mapper

import (
	"github.com/shopspring/decimal"
	"github.com/straye-as/salesflow-api/internal/domain"
	"github.com/straye-as/salesflow-api/internal/incentive"
	"github.com/straye-as/salesflow-api/internal/lifecycle"
)

const (
	timestampFormat = "2006-01-02T15:04:05Z"
	dateFormat      = "2006-01-02"
)

// pctPlaces is the precision percentages are reported with
const pctPlaces = 2

// ToSaleDTO converts Sale to SaleDTO
func ToSaleDTO(sale *domain.Sale) domain.SaleDTO {
	items := make([]domain.SaleLineItemDTO, len(sale.LineItems))
	for i, item := range sale.LineItems {
		items[i] = ToSaleLineItemDTO(&item)
	}

	dto := domain.SaleDTO{
		ID:              sale.ID,
		Code:            sale.Code,
		DocumentType:    sale.DocumentType,
		LineItems:       items,
		Subtotal:        sale.Subtotal,
		DiscountAmount:  sale.DiscountAmount,
		DiscountPercent: sale.DiscountPercent,
		TaxAmount:       sale.TaxAmount,
		FinalValue:      sale.FinalValue,
		LifecycleState:  sale.LifecycleState,
		Version:         sale.Version,
		AdvisorID:       sale.AdvisorID,
		ClientRef:       sale.ClientRef,
		InternalNotes:   sale.InternalNotes,
		CreatedAt:       sale.CreatedAt.Format(timestampFormat),
		UpdatedAt:       sale.UpdatedAt.Format(timestampFormat),
	}

	if sale.ScheduledDeliveryDate != nil {
		dto.ScheduledDeliveryDate = sale.ScheduledDeliveryDate.Format(dateFormat)
	}

	return dto
}

// ToSaleLineItemDTO converts SaleLineItem to SaleLineItemDTO
func ToSaleLineItemDTO(item *domain.SaleLineItem) domain.SaleLineItemDTO {
	return domain.SaleLineItemDTO{
		Position:      item.Position,
		ProductRef:    item.ProductRef,
		Quantity:      item.Quantity,
		UnitPrice:     item.UnitPrice,
		UnitOfMeasure: item.UnitOfMeasure,
		LineTotal:     item.LineTotal().Round(2),
	}
}

// ToSaleStageHistoryDTO converts SaleStageHistory to SaleStageHistoryDTO
func ToSaleStageHistoryDTO(h *domain.SaleStageHistory) domain.SaleStageHistoryDTO {
	return domain.SaleStageHistoryDTO{
		ID:            h.ID,
		FromStage:     h.FromStage,
		ToStage:       h.ToStage,
		ChangedByID:   h.ChangedByID,
		ChangedByName: h.ChangedByName,
		Notes:         h.Notes,
		ChangedAt:     h.ChangedAt.Format(timestampFormat),
	}
}

// ToSaleSideEffectDTO converts SaleSideEffect to SaleSideEffectDTO
func ToSaleSideEffectDTO(se *domain.SaleSideEffect) domain.SaleSideEffectDTO {
	return domain.SaleSideEffectDTO{
		ID:             se.ID,
		TargetStage:    se.TargetStage,
		IdempotencyKey: se.IdempotencyKey,
		Kind:           se.Kind,
		Status:         se.Status,
		TicketID:       se.TicketID,
		Attempts:       se.Attempts,
		LastError:      se.LastError,
		UpdatedAt:      se.UpdatedAt.Format(timestampFormat),
	}
}

// ToTransitionResultDTO converts an engine result. warning carries a
// side-effect failure that did not undo the transition.
func ToTransitionResultDTO(r *lifecycle.TransitionResult, warning string) domain.TransitionResultDTO {
	return domain.TransitionResultDTO{
		SaleID:        r.SaleID,
		PreviousState: r.PreviousState,
		NewState:      r.NewState,
		Version:       r.Version,
		TicketCreated: r.TicketCreated,
		TicketID:      r.TicketID,
		Replayed:      r.Replayed,
		Warning:       warning,
	}
}

// ToAllowedTransitionDTOs converts outgoing edges
func ToAllowedTransitionDTOs(edges []lifecycle.Edge) []domain.AllowedTransitionDTO {
	out := make([]domain.AllowedTransitionDTO, len(edges))
	for i, e := range edges {
		out[i] = domain.AllowedTransitionDTO{Stage: e.To, Kind: string(e.Kind)}
	}
	return out
}

// ToStageTransitionsDTO lists the edges leaving stage
func ToStageTransitionsDTO(stage domain.SaleStage, edges []lifecycle.Edge) domain.StageTransitionsDTO {
	return domain.StageTransitionsDTO{
		Stage:   stage,
		Allowed: ToAllowedTransitionDTOs(edges),
	}
}

// ToTransitionTableDTO renders the whole table in stage order
func ToTransitionTableDTO(table *lifecycle.TransitionTable) []domain.StageTransitionsDTO {
	stages := table.Stages()
	out := make([]domain.StageTransitionsDTO, len(stages))
	for i, s := range stages {
		out[i] = ToStageTransitionsDTO(s, table.AllowedNext(s))
	}
	return out
}

// ToTierEntryDTOs converts a tier ladder
func ToTierEntryDTOs(entries []incentive.TierEntry) []domain.TierEntryDTO {
	out := make([]domain.TierEntryDTO, len(entries))
	for i, e := range entries {
		out[i] = domain.TierEntryDTO{
			ThresholdPct: e.ThresholdPct,
			BonusAmount:  e.BonusAmount,
			Label:        e.Label,
		}
	}
	return out
}

// FromTierEntryDTOs converts a tier ladder from its exchanged form
func FromTierEntryDTOs(entries []domain.TierEntryDTO) []incentive.TierEntry {
	out := make([]incentive.TierEntry, len(entries))
	for i, e := range entries {
		out[i] = incentive.TierEntry{
			ThresholdPct: e.ThresholdPct,
			BonusAmount:  e.BonusAmount,
			Label:        e.Label,
		}
	}
	return out
}

// ToTierTableDTO converts every ladder of a tier table
func ToTierTableDTO(table *incentive.TierTable) domain.TierTableDTO {
	all := table.All()
	dto := domain.TierTableDTO{
		Modalities: make(map[domain.IncentiveModality][]domain.TierEntryDTO, len(all)),
	}
	for m, ladder := range all {
		dto.Modalities[m] = ToTierEntryDTOs(ladder)
	}
	return dto
}

// FromTierTableDTO converts stored ladders into engine entries
func FromTierTableDTO(dto *domain.TierTableDTO) map[domain.IncentiveModality][]incentive.TierEntry {
	out := make(map[domain.IncentiveModality][]incentive.TierEntry, len(dto.Modalities))
	for m, ladder := range dto.Modalities {
		out[m] = FromTierEntryDTOs(ladder)
	}
	return out
}

// ToBonusResultDTO converts an evaluation. Percentages are rounded for display;
// amounts are reported as computed.
func ToBonusResultDTO(advisorID, periodID string, r *incentive.BonusResult) domain.BonusResultDTO {
	dto := domain.BonusResultDTO{
		AdvisorID:       advisorID,
		PeriodID:        periodID,
		Modality:        r.Modality,
		ScorePct:        roundPct(r.ScorePct),
		BonoActual:      r.BonoActual,
		TierLabel:       r.TierLabel,
		ActivityGateMet: r.ActivityGateMet,
	}

	if r.NextTier != nil {
		dto.NextTier = &domain.NextTierDTO{
			Label:        r.NextTier.Label,
			ThresholdPct: r.NextTier.ThresholdPct,
			BonusAmount:  r.NextTier.BonusAmount,
			FaltaUSD:     r.NextTier.FaltaUSD,
		}
	}

	if r.Activity != nil {
		dto.Activity = &domain.ActivityMetricsDTO{
			MessagesSent:         r.Activity.MessagesSent,
			CallsMade:            r.Activity.CallsMade,
			ActiveDays:           r.Activity.ActiveDays,
			SalesClosed:          r.Activity.SalesClosed,
			MessageConversionPct: roundPct(r.Activity.MessageConversionPct),
			CallConversionPct:    roundPct(r.Activity.CallConversionPct),
		}
	}

	return dto
}

// ToAdvisorPeriodDTO converts AdvisorPeriod to AdvisorPeriodDTO
func ToAdvisorPeriodDTO(p *domain.AdvisorPeriod) domain.AdvisorPeriodDTO {
	dto := domain.AdvisorPeriodDTO{
		ID:             p.ID,
		AdvisorID:      p.AdvisorID,
		PeriodID:       p.PeriodID,
		Modality:       p.Modality,
		QuotaAmount:    p.QuotaAmount,
		AchievedAmount: p.AchievedAmount,
		AchievementPct: roundPct(p.AchievementPct()),
		MessagesSent:   p.MessagesSent,
		CallsMade:      p.CallsMade,
		ActiveDays:     p.ActiveDays,
		SalesClosed:    p.SalesClosed,
		StartsOn:       p.StartsOn.Format(dateFormat),
		EndsOn:         p.EndsOn.Format(dateFormat),
	}
	if p.LastSyncedAt != nil {
		dto.LastSyncedAt = p.LastSyncedAt.Format(timestampFormat)
	}
	return dto
}

// ToServiceTicketDTO converts ServiceTicket to ServiceTicketDTO
func ToServiceTicketDTO(t *domain.ServiceTicket) domain.ServiceTicketDTO {
	return domain.ServiceTicketDTO{
		ID:             t.ID,
		Kind:           t.Kind,
		SaleID:         t.SaleID,
		ClientRef:      t.ClientRef,
		IdempotencyKey: t.IdempotencyKey,
		Status:         t.Status,
		CreatedAt:      t.CreatedAt.Format(timestampFormat),
	}
}

// ToNotificationDTO converts Notification to NotificationDTO
func ToNotificationDTO(notification *domain.Notification) domain.NotificationDTO {
	return domain.NotificationDTO{
		ID:         notification.ID,
		Type:       notification.Type,
		Title:      notification.Title,
		Message:    notification.Message,
		Read:       notification.Read,
		CreatedAt:  notification.CreatedAt.Format(timestampFormat),
		EntityID:   notification.EntityID,
		EntityType: notification.EntityType,
	}
}

func roundPct(v decimal.Decimal) decimal.Decimal {
	return v.Round(pctPlaces)
}
