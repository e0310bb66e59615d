package billing

import (
	"time"

	"github.com/rentfolio/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceCreatedEvent is raised when a new draft invoice is assembled
type InvoiceCreatedEvent struct {
	shared.BaseDomainEvent
	InvoiceID        uuid.UUID       `json:"invoice_id"`
	InvoiceNumber    string          `json:"invoice_number"`
	TenantID         uuid.UUID       `json:"tenant_id"`
	UnitID           uuid.UUID       `json:"unit_id"`
	BillingMonth     string          `json:"billing_month"`
	GrandTotal       decimal.Decimal `json:"grand_total"`
	PaymentReference string          `json:"payment_reference"`
}

// EventType returns the event type name
func (e *InvoiceCreatedEvent) EventType() string {
	return "InvoiceCreated"
}

// NewInvoiceCreatedEvent creates a new InvoiceCreatedEvent
func NewInvoiceCreatedEvent(inv *Invoice) *InvoiceCreatedEvent {
	return &InvoiceCreatedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent("InvoiceCreated", "Invoice", inv.ID),
		InvoiceID:        inv.ID,
		InvoiceNumber:    inv.InvoiceNumber,
		TenantID:         inv.TenantID,
		UnitID:           inv.UnitID,
		BillingMonth:     inv.BillingMonth.String(),
		GrandTotal:       inv.GrandTotal,
		PaymentReference: inv.PaymentReference,
	}
}

// InvoiceIssuedEvent is raised when an invoice transitions to SENT
type InvoiceIssuedEvent struct {
	shared.BaseDomainEvent
	InvoiceID     uuid.UUID       `json:"invoice_id"`
	InvoiceNumber string          `json:"invoice_number"`
	TenantID      uuid.UUID       `json:"tenant_id"`
	GrandTotal    decimal.Decimal `json:"grand_total"`
	DueDate       time.Time       `json:"due_date"`
}

// EventType returns the event type name
func (e *InvoiceIssuedEvent) EventType() string {
	return "InvoiceIssued"
}

// NewInvoiceIssuedEvent creates a new InvoiceIssuedEvent
func NewInvoiceIssuedEvent(inv *Invoice) *InvoiceIssuedEvent {
	return &InvoiceIssuedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("InvoiceIssued", "Invoice", inv.ID),
		InvoiceID:       inv.ID,
		InvoiceNumber:   inv.InvoiceNumber,
		TenantID:        inv.TenantID,
		GrandTotal:      inv.GrandTotal,
		DueDate:         inv.DueDate,
	}
}

// InvoicePaidEvent is raised when an invoice is settled in full
type InvoicePaidEvent struct {
	shared.BaseDomainEvent
	InvoiceID     uuid.UUID       `json:"invoice_id"`
	InvoiceNumber string          `json:"invoice_number"`
	TenantID      uuid.UUID       `json:"tenant_id"`
	GrandTotal    decimal.Decimal `json:"grand_total"`
	PaidAt        time.Time       `json:"paid_at"`
}

// EventType returns the event type name
func (e *InvoicePaidEvent) EventType() string {
	return "InvoicePaid"
}

// NewInvoicePaidEvent creates a new InvoicePaidEvent
func NewInvoicePaidEvent(inv *Invoice) *InvoicePaidEvent {
	paidAt := time.Now()
	if inv.PaidAt != nil {
		paidAt = *inv.PaidAt
	}
	return &InvoicePaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("InvoicePaid", "Invoice", inv.ID),
		InvoiceID:       inv.ID,
		InvoiceNumber:   inv.InvoiceNumber,
		TenantID:        inv.TenantID,
		GrandTotal:      inv.GrandTotal,
		PaidAt:          paidAt,
	}
}

// InvoiceOverdueEvent is raised when a sent invoice passes its due date
type InvoiceOverdueEvent struct {
	shared.BaseDomainEvent
	InvoiceID     uuid.UUID       `json:"invoice_id"`
	InvoiceNumber string          `json:"invoice_number"`
	TenantID      uuid.UUID       `json:"tenant_id"`
	GrandTotal    decimal.Decimal `json:"grand_total"`
	DueDate       time.Time       `json:"due_date"`
}

// EventType returns the event type name
func (e *InvoiceOverdueEvent) EventType() string {
	return "InvoiceOverdue"
}

// NewInvoiceOverdueEvent creates a new InvoiceOverdueEvent
func NewInvoiceOverdueEvent(inv *Invoice) *InvoiceOverdueEvent {
	return &InvoiceOverdueEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("InvoiceOverdue", "Invoice", inv.ID),
		InvoiceID:       inv.ID,
		InvoiceNumber:   inv.InvoiceNumber,
		TenantID:        inv.TenantID,
		GrandTotal:      inv.GrandTotal,
		DueDate:         inv.DueDate,
	}
}
