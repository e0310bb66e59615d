package billing

import (
	"context"
	"errors"
	"time"

	"github.com/rentfolio/backend/internal/domain/billing"
	"github.com/rentfolio/backend/internal/domain/rental"
	"github.com/rentfolio/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// defaultNumberMaxRetries bounds the allocate-save-retry loop when two
// assemblies race for the same invoice number
const defaultNumberMaxRetries = 5

// InvoiceService provides application-level billing operations
type InvoiceService struct {
	invoiceRepo       billing.InvoiceRepository
	paymentRepo       billing.PaymentRepository
	tenantRepo        rental.TenantRepository
	unitRepo          rental.UnitRepository
	propertyRepo      rental.PropertyRepository
	reconciliationSvc *billing.ReconciliationService
	clock             shared.Clock
	numberMaxRetries  int
}

// InvoiceServiceOption is a functional option for configuring InvoiceService
type InvoiceServiceOption func(*InvoiceService)

// WithClock injects the clock used for issue and overdue transitions
func WithClock(clock shared.Clock) InvoiceServiceOption {
	return func(s *InvoiceService) {
		s.clock = clock
	}
}

// WithNumberMaxRetries sets how many invoice number conflicts are
// retried before assembly gives up
func WithNumberMaxRetries(n int) InvoiceServiceOption {
	return func(s *InvoiceService) {
		if n > 0 {
			s.numberMaxRetries = n
		}
	}
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(
	invoiceRepo billing.InvoiceRepository,
	paymentRepo billing.PaymentRepository,
	tenantRepo rental.TenantRepository,
	unitRepo rental.UnitRepository,
	propertyRepo rental.PropertyRepository,
	opts ...InvoiceServiceOption,
) *InvoiceService {
	s := &InvoiceService{
		invoiceRepo:       invoiceRepo,
		paymentRepo:       paymentRepo,
		tenantRepo:        tenantRepo,
		unitRepo:          unitRepo,
		propertyRepo:      propertyRepo,
		reconciliationSvc: billing.NewReconciliationService(),
		clock:             shared.SystemClock{},
		numberMaxRetries:  defaultNumberMaxRetries,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ===================== Requests and responses =====================

// ChargeRequest represents one charge line in an assembly request
type ChargeRequest struct {
	Name         string          `json:"name" binding:"required,max=200"`
	Amount       decimal.Decimal `json:"amount" binding:"required"`
	Category     string          `json:"category" binding:"required,oneof=RENT UTILITY MUNICIPAL OTHER"`
	VATRate      decimal.Decimal `json:"vat_rate"`
	VATInclusive bool            `json:"vat_inclusive"`
	Description  string          `json:"description" binding:"max=500"`
}

// AssembleInvoiceRequest represents a request to assemble a draft invoice
type AssembleInvoiceRequest struct {
	TenantID        uuid.UUID       `json:"tenant_id" binding:"required"`
	BillingMonth    string          `json:"billing_month" binding:"required,billingmonth"`
	IssueDate       time.Time       `json:"issue_date"`
	DueDate         time.Time       `json:"due_date" binding:"required"`
	Charges         []ChargeRequest `json:"charges" binding:"omitempty,dive"`
	PreviousBalance decimal.Decimal `json:"previous_balance"`
}

// RecordPaymentRequest represents an incoming payment notice
type RecordPaymentRequest struct {
	Reference string          `json:"reference" binding:"required,max=64"`
	Amount    decimal.Decimal `json:"amount" binding:"required"`
	Date      time.Time       `json:"date" binding:"required"`
}

// InvoiceListFilter defines filtering options for invoice list queries
type InvoiceListFilter struct {
	TenantID     *uuid.UUID `form:"tenant_id"`
	Status       string     `form:"status"`
	BillingMonth string     `form:"billing_month"`
	Page         int        `form:"page"`
	PageSize     int        `form:"page_size"`
}

// ChargeResponse represents a charge line in API responses
type ChargeResponse struct {
	ID           uuid.UUID       `json:"id"`
	Name         string          `json:"name"`
	Amount       decimal.Decimal `json:"amount"`
	Category     string          `json:"category"`
	VATRate      decimal.Decimal `json:"vat_rate"`
	VATInclusive bool            `json:"vat_inclusive"`
	Description  string          `json:"description,omitempty"`
}

// InvoiceResponse represents an invoice in API responses
type InvoiceResponse struct {
	ID               uuid.UUID        `json:"id"`
	InvoiceNumber    string           `json:"invoice_number"`
	TenantID         uuid.UUID        `json:"tenant_id"`
	PropertyID       uuid.UUID        `json:"property_id"`
	UnitID           uuid.UUID        `json:"unit_id"`
	BillingMonth     string           `json:"billing_month"`
	IssueDate        time.Time        `json:"issue_date"`
	DueDate          time.Time        `json:"due_date"`
	Charges          []ChargeResponse `json:"charges"`
	PreviousBalance  decimal.Decimal  `json:"previous_balance"`
	Subtotal         decimal.Decimal  `json:"subtotal"`
	VATTotal         decimal.Decimal  `json:"vat_total"`
	TotalAmount      decimal.Decimal  `json:"total_amount"`
	GrandTotal       decimal.Decimal  `json:"grand_total"`
	GrandTotalText   string           `json:"grand_total_text"`
	Status           string           `json:"status"`
	PaymentReference string           `json:"payment_reference"`
	EmailSent        bool             `json:"email_sent"`
	SentAt           *time.Time       `json:"sent_at,omitempty"`
	PaidAt           *time.Time       `json:"paid_at,omitempty"`
	OverdueAt        *time.Time       `json:"overdue_at,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
	Version          int              `json:"version"`
}

// PaymentResponse represents a recorded payment in API responses
type PaymentResponse struct {
	ID         uuid.UUID       `json:"id"`
	Reference  string          `json:"reference"`
	Amount     decimal.Decimal `json:"amount"`
	ReceivedAt time.Time       `json:"received_at"`
	Status     string          `json:"status"`
	InvoiceID  *uuid.UUID      `json:"invoice_id,omitempty"`
	Reason     string          `json:"reason,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

// RecordPaymentResponse represents the reconciliation outcome
type RecordPaymentResponse struct {
	Matched bool             `json:"matched"`
	Payment PaymentResponse  `json:"payment"`
	Invoice *InvoiceResponse `json:"invoice,omitempty"`
}

func toChargeResponses(charges billing.Charges) []ChargeResponse {
	out := make([]ChargeResponse, len(charges))
	for i, c := range charges {
		out[i] = ChargeResponse{
			ID:           c.ID,
			Name:         c.Name,
			Amount:       c.Amount,
			Category:     c.Category.String(),
			VATRate:      c.VATRate,
			VATInclusive: c.VATInclusive,
			Description:  c.Description,
		}
	}
	return out
}

func toInvoiceResponse(inv *billing.Invoice) *InvoiceResponse {
	return &InvoiceResponse{
		ID:               inv.ID,
		InvoiceNumber:    inv.InvoiceNumber,
		TenantID:         inv.TenantID,
		PropertyID:       inv.PropertyID,
		UnitID:           inv.UnitID,
		BillingMonth:     inv.BillingMonth.String(),
		IssueDate:        inv.IssueDate,
		DueDate:          inv.DueDate,
		Charges:          toChargeResponses(inv.Charges),
		PreviousBalance:  inv.PreviousBalance,
		Subtotal:         inv.Subtotal,
		VATTotal:         inv.VATTotal,
		TotalAmount:      inv.TotalAmount,
		GrandTotal:       inv.GrandTotal,
		GrandTotalText:   inv.GetGrandTotalMoney().Display(),
		Status:           inv.Status.String(),
		PaymentReference: inv.PaymentReference,
		EmailSent:        inv.EmailSent,
		SentAt:           inv.SentAt,
		PaidAt:           inv.PaidAt,
		OverdueAt:        inv.OverdueAt,
		CreatedAt:        inv.CreatedAt,
		UpdatedAt:        inv.UpdatedAt,
		Version:          inv.Version,
	}
}

func toPaymentResponse(p *billing.Payment) PaymentResponse {
	return PaymentResponse{
		ID:         p.ID,
		Reference:  p.Reference,
		Amount:     p.Amount,
		ReceivedAt: p.ReceivedAt,
		Status:     string(p.Status),
		InvoiceID:  p.InvoiceID,
		Reason:     p.Reason,
		CreatedAt:  p.CreatedAt,
	}
}

// ===================== Assembly =====================

// AssembleInvoice builds and persists a draft invoice for a tenant's
// billing month. The tenant, its unit and the unit's property must all
// resolve; a broken link aborts before anything is written. The
// invoice number is allocated from a repository hint and retried a
// bounded number of times when a concurrent assembly wins the same
// number.
func (s *InvoiceService) AssembleInvoice(ctx context.Context, req AssembleInvoiceRequest) (*InvoiceResponse, error) {
	month, err := billing.ParseMonth(req.BillingMonth)
	if err != nil {
		return nil, err
	}

	tenant, err := s.tenantRepo.FindByID(ctx, req.TenantID)
	if err != nil {
		return nil, err
	}
	if tenant == nil {
		return nil, shared.NewDomainError("MISSING_RELATION", "Tenant not found")
	}

	unit, err := s.unitRepo.FindByID(ctx, tenant.UnitID)
	if err != nil {
		return nil, err
	}
	if unit == nil {
		return nil, shared.NewDomainError("MISSING_RELATION", "Tenant's unit could not be resolved")
	}

	property, err := s.propertyRepo.FindByID(ctx, unit.PropertyID)
	if err != nil {
		return nil, err
	}
	if property == nil {
		return nil, shared.NewDomainError("MISSING_RELATION", "Unit's property could not be resolved")
	}

	charges := make(billing.Charges, 0, len(req.Charges))
	for _, cr := range req.Charges {
		charge, err := billing.NewCharge(cr.Name, cr.Amount, billing.ChargeCategory(cr.Category), cr.VATRate, cr.VATInclusive)
		if err != nil {
			return nil, err
		}
		charge.Description = cr.Description
		charges = append(charges, *charge)
	}

	issueDate := req.IssueDate
	if issueDate.IsZero() {
		issueDate = s.clock.Now()
	}

	reference := billing.GeneratePaymentReference(tenant.ID, unit.Code, month)

	for attempt := 0; attempt < s.numberMaxRetries; attempt++ {
		number, err := s.invoiceRepo.NextInvoiceNumberHint(ctx, month)
		if err != nil {
			return nil, err
		}

		invoice, err := billing.NewInvoice(
			number,
			tenant.ID, property.ID, unit.ID,
			month,
			issueDate, req.DueDate,
			charges,
			req.PreviousBalance,
			reference,
		)
		if err != nil {
			return nil, err
		}

		err = s.invoiceRepo.Save(ctx, invoice)
		if err == nil {
			return toInvoiceResponse(invoice), nil
		}
		if !isAlreadyExists(err) {
			return nil, err
		}
		// Another assembly claimed the number; fetch a fresh hint.
	}

	return nil, shared.ErrNumberExhausted
}

func isAlreadyExists(err error) bool {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code == shared.ErrAlreadyExists.Code
	}
	return false
}

// ===================== Lifecycle =====================

// IssueInvoice transitions a draft invoice to sent
func (s *InvoiceService) IssueInvoice(ctx context.Context, id uuid.UUID) (*InvoiceResponse, error) {
	invoice, err := s.invoiceRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Invoice not found")
	}

	if err := invoice.Issue(s.clock); err != nil {
		return nil, err
	}
	if err := s.invoiceRepo.Save(ctx, invoice); err != nil {
		return nil, err
	}
	return toInvoiceResponse(invoice), nil
}

// MarkEmailSent records that the invoice email went out
func (s *InvoiceService) MarkEmailSent(ctx context.Context, id uuid.UUID) (*InvoiceResponse, error) {
	invoice, err := s.invoiceRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Invoice not found")
	}

	if err := invoice.MarkEmailSent(); err != nil {
		return nil, err
	}
	if err := s.invoiceRepo.Save(ctx, invoice); err != nil {
		return nil, err
	}
	return toInvoiceResponse(invoice), nil
}

// MarkOverdueInvoices scans for sent invoices past their due date and
// marks them overdue. The scan is idempotent; invoices already overdue
// are untouched. Returns the number of invoices transitioned.
func (s *InvoiceService) MarkOverdueInvoices(ctx context.Context) (int, error) {
	now := s.clock.Now()
	due, err := s.invoiceRepo.FindDueBefore(ctx, billing.InvoiceStatusSent, now)
	if err != nil {
		return 0, err
	}

	marked := 0
	for i := range due {
		invoice := &due[i]
		if err := invoice.MarkOverdue(s.clock); err != nil {
			// A concurrent payment may have settled the invoice
			// between the query and the transition; skip it.
			continue
		}
		if err := s.invoiceRepo.Save(ctx, invoice); err != nil {
			return marked, err
		}
		marked++
	}
	return marked, nil
}

// ===================== Queries =====================

// GetInvoice gets an invoice by ID
func (s *InvoiceService) GetInvoice(ctx context.Context, id uuid.UUID) (*InvoiceResponse, error) {
	invoice, err := s.invoiceRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Invoice not found")
	}
	return toInvoiceResponse(invoice), nil
}

// GetInvoiceByNumber gets an invoice by its document number
func (s *InvoiceService) GetInvoiceByNumber(ctx context.Context, number string) (*InvoiceResponse, error) {
	invoice, err := s.invoiceRepo.FindByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Invoice not found")
	}
	return toInvoiceResponse(invoice), nil
}

// ListInvoices lists invoices with filtering
func (s *InvoiceService) ListInvoices(ctx context.Context, filter InvoiceListFilter) ([]InvoiceResponse, int64, error) {
	domainFilter := shared.DefaultFilter()
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}

	var invoices []billing.Invoice
	var err error

	// The active criterion goes into Filters as well so the count
	// below is scoped to the same set as the page.
	switch {
	case filter.TenantID != nil:
		domainFilter.Filters["tenant_id"] = *filter.TenantID
		invoices, err = s.invoiceRepo.FindByTenant(ctx, *filter.TenantID, domainFilter)
	case filter.Status != "":
		status := billing.InvoiceStatus(filter.Status)
		if !status.IsValid() {
			return nil, 0, shared.NewDomainError("INVALID_STATUS", "Unknown invoice status")
		}
		domainFilter.Filters["status"] = string(status)
		invoices, err = s.invoiceRepo.FindByStatus(ctx, status, domainFilter)
	case filter.BillingMonth != "":
		month, perr := billing.ParseMonth(filter.BillingMonth)
		if perr != nil {
			return nil, 0, perr
		}
		domainFilter.Filters["billing_month"] = month.String()
		invoices, err = s.invoiceRepo.FindByMonth(ctx, month, domainFilter)
	default:
		invoices, err = s.invoiceRepo.FindAll(ctx, domainFilter)
	}
	if err != nil {
		return nil, 0, err
	}

	total, err := s.invoiceRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]InvoiceResponse, len(invoices))
	for i := range invoices {
		responses[i] = *toInvoiceResponse(&invoices[i])
	}
	return responses, total, nil
}

// ListUnmatchedPayments lists payments held for manual review
func (s *InvoiceService) ListUnmatchedPayments(ctx context.Context, filter shared.Filter) ([]PaymentResponse, error) {
	payments, err := s.paymentRepo.FindUnmatched(ctx, filter)
	if err != nil {
		return nil, err
	}
	responses := make([]PaymentResponse, len(payments))
	for i := range payments {
		responses[i] = toPaymentResponse(&payments[i])
	}
	return responses, nil
}

// ===================== Payments =====================

// RecordPayment reconciles an incoming payment notice against the
// invoice carrying its reference. Matched payments settle the invoice;
// everything else is persisted unmatched for manual review.
func (s *InvoiceService) RecordPayment(ctx context.Context, req RecordPaymentRequest) (*RecordPaymentResponse, error) {
	notice := billing.PaymentNotice{
		Reference: req.Reference,
		Amount:    req.Amount,
		Date:      req.Date,
	}

	invoice, err := s.invoiceRepo.FindByPaymentReference(ctx, req.Reference)
	if err != nil {
		return nil, err
	}

	result, err := s.reconciliationSvc.Reconcile(notice, invoice)
	if err != nil {
		return nil, err
	}

	// The payment row goes in first: a settlement must never be
	// recorded on the invoice without its payment audit trail.
	if err := s.paymentRepo.Save(ctx, result.Payment); err != nil {
		return nil, err
	}
	if result.Matched {
		if err := s.invoiceRepo.Save(ctx, result.Invoice); err != nil {
			return nil, err
		}
	}

	resp := &RecordPaymentResponse{
		Matched: result.Matched,
		Payment: toPaymentResponse(result.Payment),
	}
	if result.Invoice != nil {
		resp.Invoice = toInvoiceResponse(result.Invoice)
	}
	return resp, nil
}
