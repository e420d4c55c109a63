package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DTOs for API responses

type SaleDTO struct {
	ID                    uuid.UUID         `json:"id"`
	Code                  string            `json:"code"`
	DocumentType          DocumentType      `json:"documentType"`
	LineItems             []SaleLineItemDTO `json:"lineItems"`
	Subtotal              decimal.Decimal   `json:"subtotal"`
	DiscountAmount        decimal.Decimal   `json:"discountAmount"`
	DiscountPercent       decimal.Decimal   `json:"discountPercent"`
	TaxAmount             decimal.Decimal   `json:"taxAmount"`
	FinalValue            decimal.Decimal   `json:"finalValue"`
	LifecycleState        SaleStage         `json:"lifecycleState"`
	Version               int64             `json:"version"`
	AdvisorID             string            `json:"advisorId"`
	ClientRef             string            `json:"clientRef"`
	ScheduledDeliveryDate string            `json:"scheduledDeliveryDate,omitempty"` // YYYY-MM-DD
	InternalNotes         string            `json:"internalNotes,omitempty"`
	CreatedAt             string            `json:"createdAt"` // ISO 8601
	UpdatedAt             string            `json:"updatedAt"` // ISO 8601
}

type SaleLineItemDTO struct {
	Position      int             `json:"position"`
	ProductRef    string          `json:"productRef"`
	Quantity      decimal.Decimal `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unitPrice"`
	UnitOfMeasure string          `json:"unitOfMeasure"`
	LineTotal     decimal.Decimal `json:"lineTotal"`
}

type SaleStageHistoryDTO struct {
	ID            uuid.UUID  `json:"id"`
	FromStage     *SaleStage `json:"fromStage,omitempty"`
	ToStage       SaleStage  `json:"toStage"`
	ChangedByID   string     `json:"changedById"`
	ChangedByName string     `json:"changedByName,omitempty"`
	Notes         string     `json:"notes,omitempty"`
	ChangedAt     string     `json:"changedAt"` // ISO 8601
}

type SaleSideEffectDTO struct {
	ID             uuid.UUID        `json:"id"`
	TargetStage    SaleStage        `json:"targetStage"`
	IdempotencyKey string           `json:"idempotencyKey"`
	Kind           TicketKind       `json:"kind"`
	Status         SideEffectStatus `json:"status"`
	TicketID       string           `json:"ticketId,omitempty"`
	Attempts       int              `json:"attempts"`
	LastError      string           `json:"lastError,omitempty"`
	UpdatedAt      string           `json:"updatedAt"` // ISO 8601
}

// TransitionResultDTO is returned after a lifecycle transition request.
// TicketCreated is omitted when the transition carries no side effect.
type TransitionResultDTO struct {
	SaleID        uuid.UUID `json:"saleId"`
	PreviousState SaleStage `json:"previousState"`
	NewState      SaleStage `json:"newState"`
	Version       int64     `json:"version"`
	TicketCreated *bool     `json:"ticketCreated,omitempty"`
	TicketID      string    `json:"ticketId,omitempty"`
	Replayed      bool      `json:"replayed"`
	Warning       string    `json:"warning,omitempty"`
}

// AllowedTransitionDTO is one outgoing edge from a stage
type AllowedTransitionDTO struct {
	Stage SaleStage `json:"stage"`
	Kind  string    `json:"kind"`
}

type StageTransitionsDTO struct {
	Stage   SaleStage              `json:"stage"`
	Allowed []AllowedTransitionDTO `json:"allowed"`
}

type TierEntryDTO struct {
	ThresholdPct decimal.Decimal `json:"thresholdPct"`
	BonusAmount  decimal.Decimal `json:"bonusAmount"`
	Label        string          `json:"label"`
}

// TierTableDTO is the stored and exchanged shape of the incentive tier document
type TierTableDTO struct {
	Modalities map[IncentiveModality][]TierEntryDTO `json:"modalities"`
	UpdatedAt  string                               `json:"updatedAt,omitempty"`
	UpdatedBy  string                               `json:"updatedBy,omitempty"`
}

// TierRevisionDTO identifies a superseded tier document
type TierRevisionDTO struct {
	ID         string `json:"id"`
	Path       string `json:"path"`
	Size       int64  `json:"size"`
	ArchivedAt string `json:"archivedAt,omitempty"`
}

type NextTierDTO struct {
	Label        string          `json:"label"`
	ThresholdPct decimal.Decimal `json:"thresholdPct"`
	BonusAmount  decimal.Decimal `json:"bonusAmount"`
	FaltaUSD     decimal.Decimal `json:"faltaUsd"`
}

type ActivityMetricsDTO struct {
	MessagesSent         int             `json:"messagesSent"`
	CallsMade            int             `json:"callsMade"`
	ActiveDays           int             `json:"activeDays"`
	SalesClosed          int             `json:"salesClosed"`
	MessageConversionPct decimal.Decimal `json:"messageConversionPct"`
	CallConversionPct    decimal.Decimal `json:"callConversionPct"`
}

type BonusResultDTO struct {
	AdvisorID       string              `json:"advisorId"`
	PeriodID        string              `json:"periodId"`
	Modality        IncentiveModality   `json:"modality"`
	ScorePct        decimal.Decimal     `json:"scorePct"`
	BonoActual      decimal.Decimal     `json:"bonoActual"`
	TierLabel       string              `json:"tierLabel,omitempty"`
	NextTier        *NextTierDTO        `json:"nextTier"`
	Activity        *ActivityMetricsDTO `json:"activity,omitempty"`
	ActivityGateMet *bool               `json:"activityGateMet,omitempty"`
}

type AdvisorPeriodDTO struct {
	ID             uuid.UUID         `json:"id"`
	AdvisorID      string            `json:"advisorId"`
	PeriodID       string            `json:"periodId"`
	Modality       IncentiveModality `json:"modality"`
	QuotaAmount    decimal.Decimal   `json:"quotaAmount"`
	AchievedAmount decimal.Decimal   `json:"achievedAmount"`
	AchievementPct decimal.Decimal   `json:"achievementPct"`
	MessagesSent   int               `json:"messagesSent"`
	CallsMade      int               `json:"callsMade"`
	ActiveDays     int               `json:"activeDays"`
	SalesClosed    int               `json:"salesClosed"`
	StartsOn       string            `json:"startsOn"` // YYYY-MM-DD
	EndsOn         string            `json:"endsOn"`   // YYYY-MM-DD
	LastSyncedAt   string            `json:"lastSyncedAt,omitempty"`
}

type ServiceTicketDTO struct {
	ID             uuid.UUID    `json:"id"`
	Kind           TicketKind   `json:"kind"`
	SaleID         uuid.UUID    `json:"saleId"`
	ClientRef      string       `json:"clientRef"`
	IdempotencyKey string       `json:"idempotencyKey"`
	Status         TicketStatus `json:"status"`
	CreatedAt      string       `json:"createdAt"` // ISO 8601
}

type NotificationDTO struct {
	ID         uuid.UUID  `json:"id"`
	Type       string     `json:"type"`
	Title      string     `json:"title"`
	Message    string     `json:"message"`
	Read       bool       `json:"read"`
	CreatedAt  string     `json:"createdAt"` // ISO 8601
	EntityID   *uuid.UUID `json:"entityId,omitempty"`
	EntityType string     `json:"entityType,omitempty"`
}

type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	PageSize   int         `json:"pageSize"`
	TotalPages int         `json:"totalPages"`
}

// Request DTOs

type SaleLineItemRequest struct {
	ProductRef    string          `json:"productRef" validate:"required,max=100"`
	Quantity      decimal.Decimal `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unitPrice"`
	UnitOfMeasure string          `json:"unitOfMeasure" validate:"required,max=20"`
}

// CreateSaleRequest opens a new sale. Exactly one of DiscountAmount or
// DiscountPercent is authoritative; the other is derived.
type CreateSaleRequest struct {
	DocumentType          DocumentType          `json:"documentType" validate:"required,oneof=invoice receipt sale_note"`
	LineItems             []SaleLineItemRequest `json:"lineItems" validate:"required,min=1,dive"`
	DiscountAmount        *decimal.Decimal      `json:"discountAmount,omitempty"`
	DiscountPercent       *decimal.Decimal      `json:"discountPercent,omitempty"`
	TaxAmount             decimal.Decimal       `json:"taxAmount"`
	AdvisorID             string                `json:"advisorId" validate:"required,max=100"`
	ClientRef             string                `json:"clientRef" validate:"required,max=100"`
	InitialStage          SaleStage             `json:"initialStage,omitempty" validate:"omitempty,oneof=sold exchange" example:"sold"`
	ScheduledDeliveryDate *time.Time            `json:"scheduledDeliveryDate,omitempty"`
	InternalNotes         string                `json:"internalNotes,omitempty" validate:"max=2000"`
}

type TransitionSaleRequest struct {
	Stage SaleStage `json:"stage" validate:"required,max=100" example:"sold/shipped"`
	Notes string    `json:"notes,omitempty" validate:"max=500"`
}

type UpdateTierTableRequest struct {
	Modalities map[IncentiveModality][]TierEntryDTO `json:"modalities" validate:"required"`
}

type UpsertAdvisorPeriodRequest struct {
	Modality       IncentiveModality `json:"modality" validate:"required,oneof=sales_only sales_and_activity"`
	QuotaAmount    decimal.Decimal   `json:"quotaAmount"`
	AchievedAmount decimal.Decimal   `json:"achievedAmount"`
	MessagesSent   int               `json:"messagesSent" validate:"gte=0"`
	CallsMade      int               `json:"callsMade" validate:"gte=0"`
	ActiveDays     int               `json:"activeDays" validate:"gte=0"`
	SalesClosed    int               `json:"salesClosed" validate:"gte=0"`
	StartsOn       time.Time         `json:"startsOn" validate:"required"`
	EndsOn         time.Time         `json:"endsOn" validate:"required"`
}

// AuthUserDTO describes the authenticated caller
type AuthUserDTO struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Email    string   `json:"email,omitempty"`
	Roles    []string `json:"roles"`
	Initials string   `json:"initials"`
	IsSystem bool     `json:"isSystem"`
}
