package billing

import (
	"time"

	"github.com/rentfolio/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentStatus represents the reconciliation outcome for a payment
type PaymentStatus string

const (
	PaymentStatusMatched   PaymentStatus = "MATCHED"   // Settled an invoice in full
	PaymentStatusUnmatched PaymentStatus = "UNMATCHED" // Held for manual review
)

// IsValid checks if the status is a valid PaymentStatus
func (s PaymentStatus) IsValid() bool {
	return s == PaymentStatusMatched || s == PaymentStatusUnmatched
}

// PaymentNotice is the inbound payment event from a bank feed or
// manual capture: the reference the payer quoted, the amount and the
// value date.
type PaymentNotice struct {
	Reference string
	Amount    decimal.Decimal
	Date      time.Time
}

// Validate checks the notice fields
func (n PaymentNotice) Validate() error {
	if n.Reference == "" {
		return shared.NewDomainError("INVALID_PAYMENT_REFERENCE", "Payment reference cannot be empty")
	}
	if !n.Amount.IsPositive() {
		return shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if n.Date.IsZero() {
		return shared.NewDomainError("INVALID_DATE", "Payment date is required")
	}
	return nil
}

// Payment records one received payment and its reconciliation outcome
type Payment struct {
	shared.BaseAggregateRoot
	Reference  string          `json:"reference"`
	Amount     decimal.Decimal `json:"amount"`
	ReceivedAt time.Time       `json:"received_at"`
	Status     PaymentStatus   `json:"status"`
	InvoiceID  *uuid.UUID      `json:"invoice_id,omitempty"` // Set when matched
	Reason     string          `json:"reason,omitempty"`     // Why the payment did not match
}

// NewPayment records an incoming payment; it starts unmatched until
// reconciliation decides otherwise
func NewPayment(notice PaymentNotice) (*Payment, error) {
	if err := notice.Validate(); err != nil {
		return nil, err
	}
	return &Payment{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Reference:         notice.Reference,
		Amount:            notice.Amount.Round(2),
		ReceivedAt:        notice.Date,
		Status:            PaymentStatusUnmatched,
	}, nil
}

// MarkMatched records that the payment settled the given invoice
func (p *Payment) MarkMatched(invoiceID uuid.UUID) {
	p.Status = PaymentStatusMatched
	p.InvoiceID = &invoiceID
	p.Reason = ""
	p.Touch()
	p.IncrementVersion()
}

// MarkUnmatched flags the payment for manual review with a reason
func (p *Payment) MarkUnmatched(reason string) {
	p.Status = PaymentStatusUnmatched
	p.Reason = reason
	p.Touch()
	p.IncrementVersion()
}

// IsMatched returns true if the payment settled an invoice
func (p *Payment) IsMatched() bool {
	return p.Status == PaymentStatusMatched
}
