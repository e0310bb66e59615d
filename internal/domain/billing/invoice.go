package billing

import (
	"fmt"
	"time"

	"github.com/rentfolio/backend/internal/domain/shared"
	"github.com/rentfolio/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceStatus represents the status of an invoice
type InvoiceStatus string

const (
	InvoiceStatusDraft   InvoiceStatus = "DRAFT"   // Charges mutable, totals recomputed on change
	InvoiceStatusSent    InvoiceStatus = "SENT"    // Issued to the tenant, charges and totals frozen
	InvoiceStatusPaid    InvoiceStatus = "PAID"    // Settled in full (terminal)
	InvoiceStatusOverdue InvoiceStatus = "OVERDUE" // Past due date without payment, still payable
)

// IsValid checks if the status is a valid InvoiceStatus
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusSent, InvoiceStatusPaid, InvoiceStatusOverdue:
		return true
	}
	return false
}

// String returns the string representation of InvoiceStatus
func (s InvoiceStatus) String() string {
	return string(s)
}

// IsTerminal returns true if no further transition is possible
func (s InvoiceStatus) IsTerminal() bool {
	return s == InvoiceStatusPaid
}

// IsEditable returns true while charges may still be changed
func (s InvoiceStatus) IsEditable() bool {
	return s == InvoiceStatusDraft
}

// CanReceivePayment returns true if a payment can settle the invoice
func (s InvoiceStatus) CanReceivePayment() bool {
	return s == InvoiceStatusSent || s == InvoiceStatusOverdue
}

// Invoice is the aggregate billing document for one tenant for one
// billing month. Totals are derived from the charge set and previous
// balance; they are recomputed on every draft mutation and frozen the
// moment the invoice is issued.
type Invoice struct {
	shared.BaseAggregateRoot
	InvoiceNumber    string          `json:"invoice_number"` // Immutable once assigned
	TenantID         uuid.UUID       `json:"tenant_id"`
	PropertyID       uuid.UUID       `json:"property_id"`
	UnitID           uuid.UUID       `json:"unit_id"`
	BillingMonth     Month           `json:"billing_month"`
	IssueDate        time.Time       `json:"issue_date"`
	DueDate          time.Time       `json:"due_date"` // Must be >= IssueDate
	Charges          Charges         `json:"charges"`
	PreviousBalance  decimal.Decimal `json:"previous_balance"`
	Subtotal         decimal.Decimal `json:"subtotal"`
	VATTotal         decimal.Decimal `json:"vat_total"`
	TotalAmount      decimal.Decimal `json:"total_amount"` // Current-period charges incl. VAT
	GrandTotal       decimal.Decimal `json:"grand_total"`  // TotalAmount + PreviousBalance
	Status           InvoiceStatus   `json:"status"`
	PaymentReference string          `json:"payment_reference"` // Immutable once assigned
	EmailSent        bool            `json:"email_sent"`
	SentAt           *time.Time      `json:"sent_at"`
	PaidAt           *time.Time      `json:"paid_at"`
	OverdueAt        *time.Time      `json:"overdue_at"`
}

// NewInvoice creates a new draft invoice. The number and payment
// reference are assigned by the assembly service before construction
// and never change afterwards.
func NewInvoice(
	invoiceNumber string,
	tenantID, propertyID, unitID uuid.UUID,
	billingMonth Month,
	issueDate, dueDate time.Time,
	charges Charges,
	previousBalance decimal.Decimal,
	paymentReference string,
) (*Invoice, error) {
	if invoiceNumber == "" {
		return nil, shared.NewDomainError("INVALID_INVOICE_NUMBER", "Invoice number cannot be empty")
	}
	if len(invoiceNumber) > 50 {
		return nil, shared.NewDomainError("INVALID_INVOICE_NUMBER", "Invoice number cannot exceed 50 characters")
	}
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TENANT_ID", "Tenant ID cannot be empty")
	}
	if propertyID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PROPERTY_ID", "Property ID cannot be empty")
	}
	if unitID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_UNIT_ID", "Unit ID cannot be empty")
	}
	if billingMonth.IsZero() {
		return nil, shared.NewDomainError("INVALID_BILLING_MONTH", "Billing month is required")
	}
	if dueDate.Before(issueDate) {
		return nil, shared.NewDomainError("INVALID_DUE_DATE", "Due date cannot precede issue date")
	}
	if previousBalance.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Previous balance cannot be negative")
	}
	if err := charges.Validate(); err != nil {
		return nil, err
	}
	if paymentReference == "" {
		return nil, shared.NewDomainError("INVALID_PAYMENT_REFERENCE", "Payment reference cannot be empty")
	}

	inv := &Invoice{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		InvoiceNumber:     invoiceNumber,
		TenantID:          tenantID,
		PropertyID:        propertyID,
		UnitID:            unitID,
		BillingMonth:      billingMonth,
		IssueDate:         issueDate,
		DueDate:           dueDate,
		Charges:           charges,
		PreviousBalance:   previousBalance.Round(2),
		Status:            InvoiceStatusDraft,
		PaymentReference:  paymentReference,
		EmailSent:         false,
	}
	inv.recomputeTotals()

	inv.AddDomainEvent(NewInvoiceCreatedEvent(inv))

	return inv, nil
}

// recomputeTotals derives the stored totals from the charge set and
// previous balance, rounding once to money precision
func (inv *Invoice) recomputeTotals() {
	totals := ComputeInvoiceTotals(inv.Charges, inv.PreviousBalance).Rounded()
	inv.Subtotal = totals.Subtotal
	inv.VATTotal = totals.VATTotal
	inv.TotalAmount = totals.Total
	inv.GrandTotal = totals.GrandTotal
}

// SetCharges replaces the charge set. Only allowed while the invoice
// is a draft; totals are recomputed.
func (inv *Invoice) SetCharges(charges Charges) error {
	if !inv.Status.IsEditable() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot modify charges of invoice in %s status", inv.Status))
	}
	if err := charges.Validate(); err != nil {
		return err
	}
	inv.Charges = charges
	inv.recomputeTotals()
	inv.Touch()
	inv.IncrementVersion()
	return nil
}

// SetPreviousBalance updates the carried-over balance. Only allowed
// while the invoice is a draft; totals are recomputed.
func (inv *Invoice) SetPreviousBalance(balance decimal.Decimal) error {
	if !inv.Status.IsEditable() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot modify previous balance of invoice in %s status", inv.Status))
	}
	if balance.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Previous balance cannot be negative")
	}
	inv.PreviousBalance = balance.Round(2)
	inv.recomputeTotals()
	inv.Touch()
	inv.IncrementVersion()
	return nil
}

// SetDueDate updates the due date of a draft invoice
func (inv *Invoice) SetDueDate(dueDate time.Time) error {
	if !inv.Status.IsEditable() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot modify due date of invoice in %s status", inv.Status))
	}
	if dueDate.Before(inv.IssueDate) {
		return shared.NewDomainError("INVALID_DUE_DATE", "Due date cannot precede issue date")
	}
	inv.DueDate = dueDate
	inv.Touch()
	inv.IncrementVersion()
	return nil
}

// Issue transitions the invoice from draft to sent, freezing the
// charge set and totals. Reissuing requires a new invoice.
func (inv *Invoice) Issue(clock shared.Clock) error {
	if inv.Status != InvoiceStatusDraft {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot issue invoice in %s status", inv.Status))
	}

	now := clock.Now()
	inv.Status = InvoiceStatusSent
	inv.SentAt = &now
	inv.UpdatedAt = now
	inv.IncrementVersion()

	inv.AddDomainEvent(NewInvoiceIssuedEvent(inv))

	return nil
}

// MarkOverdue transitions a sent invoice past its due date to overdue.
// Re-evaluating an already-overdue invoice is a no-op; the transition
// is never applied to paid or draft invoices.
func (inv *Invoice) MarkOverdue(clock shared.Clock) error {
	if inv.Status == InvoiceStatusOverdue {
		return nil
	}
	if inv.Status != InvoiceStatusSent {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot mark invoice in %s status as overdue", inv.Status))
	}

	now := clock.Now()
	if !now.After(inv.DueDate) {
		return shared.NewDomainError("NOT_DUE", "Invoice due date has not passed")
	}

	inv.Status = InvoiceStatusOverdue
	inv.OverdueAt = &now
	inv.UpdatedAt = now
	inv.IncrementVersion()

	inv.AddDomainEvent(NewInvoiceOverdueEvent(inv))

	return nil
}

// MarkPaid settles the invoice. Allowed from sent or overdue; paid is
// terminal.
func (inv *Invoice) MarkPaid(paidAt time.Time) error {
	if !inv.Status.CanReceivePayment() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot mark invoice in %s status as paid", inv.Status))
	}

	inv.Status = InvoiceStatusPaid
	inv.PaidAt = &paidAt
	inv.Touch()
	inv.IncrementVersion()

	inv.AddDomainEvent(NewInvoicePaidEvent(inv))

	return nil
}

// MarkEmailSent records that the invoice email went out
func (inv *Invoice) MarkEmailSent() error {
	if inv.Status == InvoiceStatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Cannot record email for a draft invoice")
	}
	inv.EmailSent = true
	inv.Touch()
	inv.IncrementVersion()
	return nil
}

// IsOverdue reports whether the invoice is displayed as overdue at the
// clock's current time. This is a derived query; the persisted OVERDUE
// transition happens separately via MarkOverdue.
func (inv *Invoice) IsOverdue(clock shared.Clock) bool {
	if inv.Status == InvoiceStatusOverdue {
		return true
	}
	if inv.Status != InvoiceStatusSent {
		return false
	}
	return clock.Now().After(inv.DueDate)
}

// MatchesPayment reports whether a payment amount settles this invoice
// exactly. Reconciliation is exact-match on the grand total; partial
// or excess amounts never settle an invoice.
func (inv *Invoice) MatchesPayment(amount decimal.Decimal) bool {
	return inv.GrandTotal.Equal(amount.Round(2))
}

// Helper accessors

// GetSubtotalMoney returns the subtotal as Money
func (inv *Invoice) GetSubtotalMoney() valueobject.Money {
	return valueobject.NewMoneyZAR(inv.Subtotal)
}

// GetVATTotalMoney returns the VAT total as Money
func (inv *Invoice) GetVATTotalMoney() valueobject.Money {
	return valueobject.NewMoneyZAR(inv.VATTotal)
}

// GetGrandTotalMoney returns the grand total as Money
func (inv *Invoice) GetGrandTotalMoney() valueobject.Money {
	return valueobject.NewMoneyZAR(inv.GrandTotal)
}

// IsDraft returns true if the invoice is a draft
func (inv *Invoice) IsDraft() bool {
	return inv.Status == InvoiceStatusDraft
}

// IsPaid returns true if the invoice is settled
func (inv *Invoice) IsPaid() bool {
	return inv.Status == InvoiceStatusPaid
}

// ChargeCount returns the number of charge lines
func (inv *Invoice) ChargeCount() int {
	return len(inv.Charges)
}
