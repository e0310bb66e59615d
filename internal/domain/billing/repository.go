package billing

import (
	"context"
	"time"

	"github.com/rentfolio/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// InvoiceRepository defines the interface for invoice persistence.
// Save must surface shared.ErrAlreadyExists when the invoice number
// collides with an existing row, so callers can retry allocation.
type InvoiceRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Invoice, error)
	FindByNumber(ctx context.Context, number string) (*Invoice, error)
	FindByPaymentReference(ctx context.Context, reference string) (*Invoice, error)
	FindByTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Invoice, error)
	FindByStatus(ctx context.Context, status InvoiceStatus, filter shared.Filter) ([]Invoice, error)
	FindByMonth(ctx context.Context, month Month, filter shared.Filter) ([]Invoice, error)
	FindDueBefore(ctx context.Context, status InvoiceStatus, before time.Time) ([]Invoice, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Invoice, error)
	Save(ctx context.Context, invoice *Invoice) error
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	// NextInvoiceNumberHint returns the next candidate invoice number
	// for the month. It is a hint only; uniqueness is enforced on Save.
	NextInvoiceNumberHint(ctx context.Context, month Month) (string, error)
}

// PaymentRepository defines the interface for payment persistence
type PaymentRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Payment, error)
	FindUnmatched(ctx context.Context, filter shared.Filter) ([]Payment, error)
	FindByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]Payment, error)
	Save(ctx context.Context, payment *Payment) error
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}
