package integration

import (
	"context"
	"sync"
	"testing"
	"time"

	billingapp "github.com/rentfolio/backend/internal/application/billing"
	rentalapp "github.com/rentfolio/backend/internal/application/rental"
	"github.com/rentfolio/backend/internal/domain/billing"
	"github.com/rentfolio/backend/internal/domain/shared"
	"github.com/rentfolio/backend/internal/infrastructure/persistence"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// BillingTestSetup wires the application services against a migrated
// test database with one property, unit and tenant already registered.
type BillingTestSetup struct {
	DB             *gorm.DB
	RentalService  *rentalapp.RentalService
	InvoiceService *billingapp.InvoiceService
	Clock          shared.FixedClock
	PropertyID     uuid.UUID
	UnitID         uuid.UUID
	TenantID       uuid.UUID
}

func NewBillingTestSetup(t *testing.T) *BillingTestSetup {
	t.Helper()

	db := NewTestDB(t)
	ctx := context.Background()

	propertyRepo := persistence.NewGormPropertyRepository(db)
	unitRepo := persistence.NewGormUnitRepository(db)
	tenantRepo := persistence.NewGormTenantRepository(db)
	invoiceRepo := persistence.NewGormInvoiceRepository(db, "INV")
	paymentRepo := persistence.NewGormPaymentRepository(db)

	rentalSvc := rentalapp.NewRentalService(propertyRepo, unitRepo, tenantRepo)

	clock := shared.FixedClock{Instant: time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)}
	invoiceSvc := billingapp.NewInvoiceService(
		invoiceRepo, paymentRepo,
		tenantRepo, unitRepo, propertyRepo,
		billingapp.WithClock(clock),
	)

	property, err := rentalSvc.CreateProperty(ctx, rentalapp.CreatePropertyRequest{
		Name:    "Seapoint Towers",
		Address: "12 Beach Road, Sea Point",
		City:    "Cape Town",
	})
	require.NoError(t, err)

	unit, err := rentalSvc.CreateUnit(ctx, rentalapp.CreateUnitRequest{
		PropertyID: property.ID,
		Code:       "A-101",
		Floor:      "1",
		Bedrooms:   2,
		MarketRent: decimal.NewFromInt(8500),
	})
	require.NoError(t, err)

	tenant, err := rentalSvc.CreateTenant(ctx, rentalapp.CreateTenantRequest{
		FullName: "Thandi Nkosi",
		Email:    "thandi@example.com",
		UnitID:   unit.ID,
		MoveInAt: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	return &BillingTestSetup{
		DB:             db,
		RentalService:  rentalSvc,
		InvoiceService: invoiceSvc,
		Clock:          clock,
		PropertyID:     property.ID,
		UnitID:         unit.ID,
		TenantID:       tenant.ID,
	}
}

// assembleRequest builds a typical monthly invoice: rent billed
// VAT-exclusive, a utility charge billed VAT-inclusive.
func (s *BillingTestSetup) assembleRequest() billingapp.AssembleInvoiceRequest {
	vat := decimal.NewFromInt(15)
	return billingapp.AssembleInvoiceRequest{
		TenantID:     s.TenantID,
		BillingMonth: "2026-09",
		DueDate:      time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC),
		Charges: []billingapp.ChargeRequest{
			{Name: "Monthly rent", Amount: decimal.NewFromInt(8500), Category: "RENT", VATRate: vat},
			{Name: "Water and electricity", Amount: decimal.NewFromInt(575), Category: "UTILITY", VATRate: vat, VATInclusive: true},
		},
		PreviousBalance: decimal.NewFromInt(150),
	}
}

func TestBillingFlow_AssembleIssueAndSettle(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	setup := NewBillingTestSetup(t)
	ctx := context.Background()

	inv, err := setup.InvoiceService.AssembleInvoice(ctx, setup.assembleRequest())
	require.NoError(t, err)

	assert.Equal(t, "INV-202609-00001", inv.InvoiceNumber)
	assert.Equal(t, "DRAFT", inv.Status)
	assert.Equal(t, setup.PropertyID, inv.PropertyID)
	assert.Equal(t, setup.UnitID, inv.UnitID)
	assert.NotEmpty(t, inv.PaymentReference)

	// 8500 net rent plus 500 net utilities, 15% VAT on both.
	assert.True(t, inv.Subtotal.Equal(decimal.NewFromInt(9000)), "subtotal %s", inv.Subtotal)
	assert.True(t, inv.VATTotal.Equal(decimal.NewFromInt(1350)), "vat %s", inv.VATTotal)
	assert.True(t, inv.TotalAmount.Equal(decimal.NewFromInt(10350)), "total %s", inv.TotalAmount)
	assert.True(t, inv.GrandTotal.Equal(decimal.NewFromInt(10500)), "grand %s", inv.GrandTotal)
	assert.Equal(t, "R 10,500.00", inv.GrandTotalText)

	issued, err := setup.InvoiceService.IssueInvoice(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, "SENT", issued.Status)

	result, err := setup.InvoiceService.RecordPayment(ctx, billingapp.RecordPaymentRequest{
		Reference: inv.PaymentReference,
		Amount:    inv.GrandTotal,
		Date:      time.Date(2026, 9, 5, 10, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	assert.True(t, result.Matched)
	require.NotNil(t, result.Invoice)
	assert.Equal(t, "PAID", result.Invoice.Status)
	require.NotNil(t, result.Payment.InvoiceID)
	assert.Equal(t, inv.ID, *result.Payment.InvoiceID)

	// A second notice against a settled invoice lands in the queue.
	duplicate, err := setup.InvoiceService.RecordPayment(ctx, billingapp.RecordPaymentRequest{
		Reference: inv.PaymentReference,
		Amount:    inv.GrandTotal,
		Date:      time.Date(2026, 9, 6, 10, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.False(t, duplicate.Matched)
	assert.Equal(t, billing.ReasonDuplicatePayment, duplicate.Payment.Reason)

	held, err := setup.InvoiceService.ListUnmatchedPayments(ctx, shared.DefaultFilter())
	require.NoError(t, err)
	require.Len(t, held, 1)
	assert.Equal(t, billing.ReasonDuplicatePayment, held[0].Reason)
}

func TestBillingFlow_PaymentsHeldForReview(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	setup := NewBillingTestSetup(t)
	ctx := context.Background()

	t.Run("unknown reference", func(t *testing.T) {
		result, err := setup.InvoiceService.RecordPayment(ctx, billingapp.RecordPaymentRequest{
			Reference: "NO-SUCH-REF",
			Amount:    decimal.NewFromInt(5000),
			Date:      time.Date(2026, 9, 3, 0, 0, 0, 0, time.UTC),
		})
		require.NoError(t, err)
		assert.False(t, result.Matched)
		assert.Nil(t, result.Invoice)
		assert.Equal(t, billing.ReasonInvoiceNotFound, result.Payment.Reason)
	})

	t.Run("amount mismatch leaves invoice open", func(t *testing.T) {
		inv, err := setup.InvoiceService.AssembleInvoice(ctx, setup.assembleRequest())
		require.NoError(t, err)
		_, err = setup.InvoiceService.IssueInvoice(ctx, inv.ID)
		require.NoError(t, err)

		result, err := setup.InvoiceService.RecordPayment(ctx, billingapp.RecordPaymentRequest{
			Reference: inv.PaymentReference,
			Amount:    inv.GrandTotal.Sub(decimal.NewFromInt(500)),
			Date:      time.Date(2026, 9, 4, 0, 0, 0, 0, time.UTC),
		})
		require.NoError(t, err)
		assert.False(t, result.Matched)
		assert.Contains(t, result.Payment.Reason, billing.ReasonAmountMismatch)

		current, err := setup.InvoiceService.GetInvoice(ctx, inv.ID)
		require.NoError(t, err)
		assert.Equal(t, "SENT", current.Status)
	})
}

func TestBillingFlow_OverdueScan(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	setup := NewBillingTestSetup(t)
	ctx := context.Background()

	inv, err := setup.InvoiceService.AssembleInvoice(ctx, setup.assembleRequest())
	require.NoError(t, err)
	_, err = setup.InvoiceService.IssueInvoice(ctx, inv.ID)
	require.NoError(t, err)

	// Nothing is due yet at assembly time.
	marked, err := setup.InvoiceService.MarkOverdueInvoices(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, marked)

	// Rebuild the service with the clock past the due date; the repos
	// and their underlying database are shared.
	db := setup.DB
	lateSvc := billingapp.NewInvoiceService(
		persistence.NewGormInvoiceRepository(db, "INV"),
		persistence.NewGormPaymentRepository(db),
		persistence.NewGormTenantRepository(db),
		persistence.NewGormUnitRepository(db),
		persistence.NewGormPropertyRepository(db),
		billingapp.WithClock(shared.FixedClock{Instant: time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)}),
	)

	marked, err = lateSvc.MarkOverdueInvoices(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, marked)

	current, err := lateSvc.GetInvoice(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, "OVERDUE", current.Status)
	require.NotNil(t, current.OverdueAt)

	// The scan is idempotent.
	marked, err = lateSvc.MarkOverdueInvoices(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, marked)

	// An overdue invoice can still be settled in full.
	result, err := lateSvc.RecordPayment(ctx, billingapp.RecordPaymentRequest{
		Reference: inv.PaymentReference,
		Amount:    inv.GrandTotal,
		Date:      time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.True(t, result.Matched)
	assert.Equal(t, "PAID", result.Invoice.Status)
}

func TestBillingFlow_ConcurrentAssemblyAllocatesDistinctNumbers(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	setup := NewBillingTestSetup(t)
	ctx := context.Background()

	// A generous retry budget: every goroutine that loses the race for
	// a number must still be able to claim a fresh one.
	service := billingapp.NewInvoiceService(
		persistence.NewGormInvoiceRepository(setup.DB, "INV"),
		persistence.NewGormPaymentRepository(setup.DB),
		persistence.NewGormTenantRepository(setup.DB),
		persistence.NewGormUnitRepository(setup.DB),
		persistence.NewGormPropertyRepository(setup.DB),
		billingapp.WithClock(setup.Clock),
		billingapp.WithNumberMaxRetries(25),
	)

	const assemblies = 8
	numbers := make(chan string, assemblies)
	errs := make(chan error, assemblies)

	var wg sync.WaitGroup
	for i := 0; i < assemblies; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := service.AssembleInvoice(ctx, setup.assembleRequest())
			if err != nil {
				errs <- err
				return
			}
			numbers <- resp.InvoiceNumber
		}()
	}
	wg.Wait()
	close(numbers)
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	seen := make(map[string]bool)
	for number := range numbers {
		assert.False(t, seen[number], "invoice number %s allocated twice", number)
		seen[number] = true
	}
	assert.Len(t, seen, assemblies)
}

func TestBillingFlow_NumberSequence(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	setup := NewBillingTestSetup(t)
	ctx := context.Background()

	first, err := setup.InvoiceService.AssembleInvoice(ctx, setup.assembleRequest())
	require.NoError(t, err)
	assert.Equal(t, "INV-202609-00001", first.InvoiceNumber)

	second, err := setup.InvoiceService.AssembleInvoice(ctx, setup.assembleRequest())
	require.NoError(t, err)
	assert.Equal(t, "INV-202609-00002", second.InvoiceNumber)

	october := setup.assembleRequest()
	october.BillingMonth = "2026-10"
	october.DueDate = time.Date(2026, 10, 7, 0, 0, 0, 0, time.UTC)
	third, err := setup.InvoiceService.AssembleInvoice(ctx, october)
	require.NoError(t, err)
	assert.Equal(t, "INV-202610-00001", third.InvoiceNumber)

	// A filtered list reports the filtered total, not the table's.
	responses, total, err := setup.InvoiceService.ListInvoices(ctx, billingapp.InvoiceListFilter{BillingMonth: "2026-09"})
	require.NoError(t, err)
	assert.Len(t, responses, 2)
	assert.Equal(t, int64(2), total)
}
