package models

import (
	"time"

	"github.com/rentfolio/backend/internal/domain/billing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceModel is the persistence model for the Invoice aggregate root.
// The unique index on invoice_number is the real uniqueness guarantee
// behind number allocation; duplicate inserts surface as conflicts for
// the service-level retry.
type InvoiceModel struct {
	AggregateModel
	InvoiceNumber    string                `gorm:"type:varchar(50);not null;uniqueIndex:idx_invoice_number"`
	TenantID         uuid.UUID             `gorm:"type:uuid;not null;index"`
	PropertyID       uuid.UUID             `gorm:"type:uuid;not null;index"`
	UnitID           uuid.UUID             `gorm:"type:uuid;not null;index"`
	BillingMonth     billing.Month         `gorm:"type:varchar(7);not null;index"`
	IssueDate        time.Time             `gorm:"not null"`
	DueDate          time.Time             `gorm:"not null;index"`
	Charges          billing.Charges       `gorm:"type:jsonb;default:'[]'"`
	PreviousBalance  decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	Subtotal         decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	VATTotal         decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	TotalAmount      decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	GrandTotal       decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	Status           billing.InvoiceStatus `gorm:"type:varchar(20);not null;default:'DRAFT';index"`
	PaymentReference string                `gorm:"type:varchar(64);not null;index"`
	EmailSent        bool                  `gorm:"not null;default:false"`
	SentAt           *time.Time
	PaidAt           *time.Time
	OverdueAt        *time.Time
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "invoices"
}

// ToDomain converts the persistence model to a domain Invoice
func (m *InvoiceModel) ToDomain() *billing.Invoice {
	return &billing.Invoice{
		BaseAggregateRoot: m.ToAggregateRoot(),
		InvoiceNumber:     m.InvoiceNumber,
		TenantID:          m.TenantID,
		PropertyID:        m.PropertyID,
		UnitID:            m.UnitID,
		BillingMonth:      m.BillingMonth,
		IssueDate:         m.IssueDate,
		DueDate:           m.DueDate,
		Charges:           m.Charges,
		PreviousBalance:   m.PreviousBalance,
		Subtotal:          m.Subtotal,
		VATTotal:          m.VATTotal,
		TotalAmount:       m.TotalAmount,
		GrandTotal:        m.GrandTotal,
		Status:            m.Status,
		PaymentReference:  m.PaymentReference,
		EmailSent:         m.EmailSent,
		SentAt:            m.SentAt,
		PaidAt:            m.PaidAt,
		OverdueAt:         m.OverdueAt,
	}
}

// FromDomain populates the persistence model from a domain Invoice
func (m *InvoiceModel) FromDomain(inv *billing.Invoice) {
	m.FromDomainAggregateRoot(inv.BaseAggregateRoot)
	m.InvoiceNumber = inv.InvoiceNumber
	m.TenantID = inv.TenantID
	m.PropertyID = inv.PropertyID
	m.UnitID = inv.UnitID
	m.BillingMonth = inv.BillingMonth
	m.IssueDate = inv.IssueDate
	m.DueDate = inv.DueDate
	m.Charges = inv.Charges
	m.PreviousBalance = inv.PreviousBalance
	m.Subtotal = inv.Subtotal
	m.VATTotal = inv.VATTotal
	m.TotalAmount = inv.TotalAmount
	m.GrandTotal = inv.GrandTotal
	m.Status = inv.Status
	m.PaymentReference = inv.PaymentReference
	m.EmailSent = inv.EmailSent
	m.SentAt = inv.SentAt
	m.PaidAt = inv.PaidAt
	m.OverdueAt = inv.OverdueAt
}

// InvoiceModelFromDomain creates a new persistence model from a domain Invoice
func InvoiceModelFromDomain(inv *billing.Invoice) *InvoiceModel {
	m := &InvoiceModel{}
	m.FromDomain(inv)
	return m
}

// PaymentModel is the persistence model for the Payment aggregate root
type PaymentModel struct {
	AggregateModel
	Reference  string                `gorm:"type:varchar(64);not null;index"`
	Amount     decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	ReceivedAt time.Time             `gorm:"not null"`
	Status     billing.PaymentStatus `gorm:"type:varchar(20);not null;default:'UNMATCHED';index"`
	InvoiceID  *uuid.UUID            `gorm:"type:uuid;index"`
	Reason     string                `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "payments"
}

// ToDomain converts the persistence model to a domain Payment
func (m *PaymentModel) ToDomain() *billing.Payment {
	return &billing.Payment{
		BaseAggregateRoot: m.ToAggregateRoot(),
		Reference:         m.Reference,
		Amount:            m.Amount,
		ReceivedAt:        m.ReceivedAt,
		Status:            m.Status,
		InvoiceID:         m.InvoiceID,
		Reason:            m.Reason,
	}
}

// FromDomain populates the persistence model from a domain Payment
func (m *PaymentModel) FromDomain(p *billing.Payment) {
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	m.Reference = p.Reference
	m.Amount = p.Amount
	m.ReceivedAt = p.ReceivedAt
	m.Status = p.Status
	m.InvoiceID = p.InvoiceID
	m.Reason = p.Reason
}

// PaymentModelFromDomain creates a new persistence model from a domain Payment
func PaymentModelFromDomain(p *billing.Payment) *PaymentModel {
	m := &PaymentModel{}
	m.FromDomain(p)
	return m
}
