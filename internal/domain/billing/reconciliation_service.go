package billing

import (
	"fmt"
)

// ReconciliationService is a domain service that matches incoming
// payments against invoices by payment reference. Matching is strict:
// a payment settles an invoice only when the amounts agree exactly on
// the grand total. Anything else (unknown reference, short payment,
// overpayment, already-settled invoice) lands in the unmatched queue
// for manual review rather than being partially applied.
type ReconciliationService struct{}

// NewReconciliationService creates a new reconciliation service
func NewReconciliationService() *ReconciliationService {
	return &ReconciliationService{}
}

// Unmatched reason codes surfaced on held payments
const (
	ReasonInvoiceNotFound  = "INVOICE_NOT_FOUND"
	ReasonInvoiceNotOpen   = "INVOICE_NOT_OPEN"
	ReasonAmountMismatch   = "AMOUNT_MISMATCH"
	ReasonDuplicatePayment = "DUPLICATE_PAYMENT"
)

// ReconcileResult represents the outcome of matching one payment notice
type ReconcileResult struct {
	Matched bool
	Payment *Payment // Recorded payment, matched or held
	Invoice *Invoice // Updated invoice when matched, nil otherwise
	Reason  string   // Unmatched reason code, empty when matched
}

// Reconcile matches a payment notice against the invoice looked up by
// the notice's reference. A nil invoice means no invoice carries that
// reference. The invoice is mutated (marked paid) only on an exact
// grand-total match.
func (s *ReconciliationService) Reconcile(notice PaymentNotice, invoice *Invoice) (*ReconcileResult, error) {
	payment, err := NewPayment(notice)
	if err != nil {
		return nil, err
	}

	if invoice == nil {
		payment.MarkUnmatched(ReasonInvoiceNotFound)
		return &ReconcileResult{
			Matched: false,
			Payment: payment,
			Reason:  ReasonInvoiceNotFound,
		}, nil
	}

	if invoice.IsPaid() {
		payment.MarkUnmatched(ReasonDuplicatePayment)
		return &ReconcileResult{
			Matched: false,
			Payment: payment,
			Reason:  ReasonDuplicatePayment,
		}, nil
	}

	if !invoice.Status.CanReceivePayment() {
		payment.MarkUnmatched(ReasonInvoiceNotOpen)
		return &ReconcileResult{
			Matched: false,
			Payment: payment,
			Reason:  ReasonInvoiceNotOpen,
		}, nil
	}

	if !invoice.MatchesPayment(notice.Amount) {
		payment.MarkUnmatched(fmt.Sprintf("%s: expected %s, received %s",
			ReasonAmountMismatch, invoice.GrandTotal.StringFixed(2), notice.Amount.StringFixed(2)))
		return &ReconcileResult{
			Matched: false,
			Payment: payment,
			Reason:  ReasonAmountMismatch,
		}, nil
	}

	if err := invoice.MarkPaid(notice.Date); err != nil {
		return nil, err
	}
	payment.MarkMatched(invoice.ID)

	return &ReconcileResult{
		Matched: true,
		Payment: payment,
		Invoice: invoice,
	}, nil
}
