package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// BeforeCreate assigns an ID when the caller did not set one
func (m *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// SaleStage is a slash-delimited stage chain, e.g. "sold/shipped/received"
type SaleStage string

const (
	StageSold                    SaleStage = "sold"
	StageSoldShipped             SaleStage = "sold/shipped"
	StageSoldShippedReceived     SaleStage = "sold/shipped/received"
	StageSoldShippedTrained      SaleStage = "sold/shipped/received/trained"
	StageExchange                SaleStage = "exchange"
	StageExchangeShipped         SaleStage = "exchange/shipped"
	StageExchangeShippedReceived SaleStage = "exchange/shipped/received"
	StageVoided                  SaleStage = "voided"
)

const stageSeparator = "/"

// Segments splits the chain into its stage tokens
func (s SaleStage) Segments() []string {
	if s == "" {
		return nil
	}
	return strings.Split(string(s), stageSeparator)
}

// Root returns the first token of the chain ("sold", "exchange" or "voided")
func (s SaleStage) Root() SaleStage {
	segs := s.Segments()
	if len(segs) == 0 {
		return ""
	}
	return SaleStage(segs[0])
}

// Depth is the number of confirmed milestones in the chain
func (s SaleStage) Depth() int {
	return len(s.Segments())
}

// DocumentType is fixed at creation and never participates in the lifecycle
type DocumentType string

const (
	DocumentInvoice  DocumentType = "invoice"
	DocumentReceipt  DocumentType = "receipt"
	DocumentSaleNote DocumentType = "sale_note"
)

// IsValid checks if the DocumentType is a valid enum value
func (d DocumentType) IsValid() bool {
	switch d {
	case DocumentInvoice, DocumentReceipt, DocumentSaleNote:
		return true
	}
	return false
}

// Sale represents a commercial transaction moving through the fulfillment lifecycle
type Sale struct {
	BaseModel
	Code                  string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	DocumentType          DocumentType    `gorm:"type:varchar(20);not null;column:document_type"`
	LineItems             []SaleLineItem  `gorm:"foreignKey:SaleID"`
	Subtotal              decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0"`
	DiscountAmount        decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0;column:discount_amount"`
	DiscountPercent       decimal.Decimal `gorm:"type:decimal(7,4);not null;default:0;column:discount_percent"`
	TaxAmount             decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0;column:tax_amount"`
	FinalValue            decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0;column:final_value"`
	LifecycleState        SaleStage       `gorm:"type:varchar(100);not null;index;column:lifecycle_state"`
	Version               int64           `gorm:"not null;default:0"`
	AdvisorID             string          `gorm:"type:varchar(100);not null;index;column:advisor_id"`
	ClientRef             string          `gorm:"type:varchar(100);not null;column:client_ref"`
	ScheduledDeliveryDate *time.Time      `gorm:"type:date;column:scheduled_delivery_date"`
	InternalNotes         string          `gorm:"type:text;column:internal_notes"`
}

// SaleLineItem is one ordered position on a sale
type SaleLineItem struct {
	BaseModel
	SaleID        uuid.UUID       `gorm:"type:uuid;not null;index;column:sale_id"`
	Position      int             `gorm:"not null"`
	ProductRef    string          `gorm:"type:varchar(100);not null;column:product_ref"`
	Quantity      decimal.Decimal `gorm:"type:decimal(15,4);not null"`
	UnitPrice     decimal.Decimal `gorm:"type:decimal(15,2);not null;column:unit_price"`
	UnitOfMeasure string          `gorm:"type:varchar(20);not null;column:unit_of_measure"`
}

// LineTotal returns quantity × unit price
func (li SaleLineItem) LineTotal() decimal.Decimal {
	return li.Quantity.Mul(li.UnitPrice)
}

// SaleStageHistory tracks lifecycle changes for audit purposes
type SaleStageHistory struct {
	ID            uuid.UUID  `gorm:"type:uuid;primary_key"`
	SaleID        uuid.UUID  `gorm:"type:uuid;not null;index;column:sale_id"`
	FromStage     *SaleStage `gorm:"type:varchar(100);column:from_stage"`
	ToStage       SaleStage  `gorm:"type:varchar(100);not null;column:to_stage"`
	ChangedByID   string     `gorm:"type:varchar(100);not null;column:changed_by_id"`
	ChangedByName string     `gorm:"type:varchar(200);column:changed_by_name"`
	Notes         string     `gorm:"type:text"`
	ChangedAt     time.Time  `gorm:"not null;column:changed_at"`
}

// TableName overrides the default table name to match the migration
func (SaleStageHistory) TableName() string {
	return "sale_stage_history"
}

// BeforeCreate assigns an ID when the caller did not set one
func (h *SaleStageHistory) BeforeCreate(tx *gorm.DB) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	return nil
}

// SideEffectStatus tracks delivery of a side-effect intent
type SideEffectStatus string

const (
	SideEffectPending    SideEffectStatus = "pending"
	SideEffectDispatched SideEffectStatus = "dispatched"
	SideEffectFailed     SideEffectStatus = "failed"
)

// SaleSideEffect is the ledger row claiming a side effect for (sale, target stage).
// The unique index makes the claim at-most-once.
type SaleSideEffect struct {
	BaseModel
	SaleID         uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_sale_side_effect;column:sale_id"`
	TargetStage    SaleStage        `gorm:"type:varchar(100);not null;uniqueIndex:idx_sale_side_effect;column:target_stage"`
	IdempotencyKey string           `gorm:"type:varchar(200);not null;uniqueIndex;column:idempotency_key"`
	Kind           TicketKind       `gorm:"type:varchar(50);not null"`
	ClientRef      string           `gorm:"type:varchar(100);not null;column:client_ref"`
	AdvisorID      string           `gorm:"type:varchar(100);column:advisor_id"`
	Status         SideEffectStatus `gorm:"type:varchar(20);not null;index"`
	TicketID       string           `gorm:"type:varchar(100);column:ticket_id"`
	Attempts       int              `gorm:"not null;default:0"`
	LastError      string           `gorm:"type:text;column:last_error"`
}

// TicketKind classifies service tickets
type TicketKind string

const (
	TicketKindTraining TicketKind = "training"
)

// TicketStatus is the queue status of a service ticket
type TicketStatus string

const (
	TicketStatusOpen   TicketStatus = "open"
	TicketStatusClosed TicketStatus = "closed"
)

// ServiceTicket is a follow-up work item in the ticket queue
type ServiceTicket struct {
	BaseModel
	Kind           TicketKind   `gorm:"type:varchar(50);not null;index"`
	SaleID         uuid.UUID    `gorm:"type:uuid;not null;index;column:sale_id"`
	ClientRef      string       `gorm:"type:varchar(100);not null;column:client_ref"`
	AdvisorID      string       `gorm:"type:varchar(100);column:advisor_id"`
	IdempotencyKey string       `gorm:"type:varchar(200);not null;uniqueIndex;column:idempotency_key"`
	Status         TicketStatus `gorm:"type:varchar(20);not null;default:'open'"`
}

// Notification is an in-app message for an advisor
type Notification struct {
	BaseModel
	UserID     string     `gorm:"type:varchar(100);not null;index;column:user_id"`
	Type       string     `gorm:"type:varchar(50);not null"`
	Title      string     `gorm:"type:varchar(200);not null"`
	Message    string     `gorm:"type:varchar(500);not null"`
	Read       bool       `gorm:"column:read;not null;default:false;index"`
	ReadAt     *time.Time `gorm:"column:read_at"`
	EntityID   *uuid.UUID `gorm:"type:uuid;column:entity_id"`
	EntityType string     `gorm:"type:varchar(50);column:entity_type"`
}

// NumberSequence holds the last issued sale code number per advisor
type NumberSequence struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key"`
	AdvisorID    string    `gorm:"type:varchar(100);not null;uniqueIndex;column:advisor_id"`
	LastSequence int       `gorm:"not null;default:0;column:last_sequence"`
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null"`
}

// BeforeCreate assigns an ID when the caller did not set one
func (n *NumberSequence) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}

// IncentiveModality selects how an advisor's bonus is computed for a period
type IncentiveModality string

const (
	ModalitySalesOnly        IncentiveModality = "sales_only"
	ModalitySalesAndActivity IncentiveModality = "sales_and_activity"
)

// IsValid checks if the IncentiveModality is a valid enum value
func (m IncentiveModality) IsValid() bool {
	switch m {
	case ModalitySalesOnly, ModalitySalesAndActivity:
		return true
	}
	return false
}

var hundred = decimal.NewFromInt(100)

// AdvisorPeriod is an advisor's standing for one reporting period
type AdvisorPeriod struct {
	BaseModel
	AdvisorID      string            `gorm:"type:varchar(100);not null;uniqueIndex:idx_advisor_period;column:advisor_id"`
	PeriodID       string            `gorm:"type:varchar(20);not null;uniqueIndex:idx_advisor_period;column:period_id"`
	Modality       IncentiveModality `gorm:"type:varchar(30);not null"`
	QuotaAmount    decimal.Decimal   `gorm:"type:decimal(15,2);not null;default:0;column:quota_amount"`
	AchievedAmount decimal.Decimal   `gorm:"type:decimal(15,2);not null;default:0;column:achieved_amount"`
	MessagesSent   int               `gorm:"not null;default:0;column:messages_sent"`
	CallsMade      int               `gorm:"not null;default:0;column:calls_made"`
	ActiveDays     int               `gorm:"not null;default:0;column:active_days"`
	SalesClosed    int               `gorm:"not null;default:0;column:sales_closed"`
	StartsOn       time.Time         `gorm:"type:date;not null;column:starts_on"`
	EndsOn         time.Time         `gorm:"type:date;not null;column:ends_on"`
	LastSyncedAt   *time.Time        `gorm:"column:last_synced_at"`
}

// AchievementPct is achieved / quota × 100; zero when no quota is set
func (p *AdvisorPeriod) AchievementPct() decimal.Decimal {
	if !p.QuotaAmount.IsPositive() {
		return decimal.Zero
	}
	pct := p.AchievedAmount.Div(p.QuotaAmount).Mul(hundred)
	if pct.IsNegative() {
		return decimal.Zero
	}
	return pct
}

// MessageConversionPct is closed sales per message sent, as a percentage
func (p *AdvisorPeriod) MessageConversionPct() decimal.Decimal {
	return ratioPct(p.SalesClosed, p.MessagesSent)
}

// CallConversionPct is closed sales per call made, as a percentage
func (p *AdvisorPeriod) CallConversionPct() decimal.Decimal {
	return ratioPct(p.SalesClosed, p.CallsMade)
}

func ratioPct(num, den int) decimal.Decimal {
	if den <= 0 || num <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(num)).Div(decimal.NewFromInt(int64(den))).Mul(hundred)
}
