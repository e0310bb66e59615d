package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/rentfolio/backend/internal/domain/billing"
	"github.com/rentfolio/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildTestPayment(t *testing.T, reference string, amount decimal.Decimal) *billing.Payment {
	t.Helper()

	payment, err := billing.NewPayment(billing.PaymentNotice{
		Reference: reference,
		Amount:    amount,
		Date:      time.Date(2026, 9, 5, 10, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	return payment
}

func TestGormPaymentRepository_SaveAndFind(t *testing.T) {
	db := setupBillingTestDB(t)
	repo := NewGormPaymentRepository(db)
	ctx := context.Background()

	t.Run("round trips a payment through storage", func(t *testing.T) {
		payment := buildTestPayment(t, "202609-A101-0123456789", decimal.NewFromFloat(5775.00))

		err := repo.Save(ctx, payment)
		require.NoError(t, err)

		found, err := repo.FindByID(ctx, payment.ID)
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, payment.Reference, found.Reference)
		assert.Equal(t, billing.PaymentStatusUnmatched, found.Status)
		assert.True(t, payment.Amount.Equal(found.Amount))
		assert.Nil(t, found.InvoiceID)
	})

	t.Run("returns nil without error when nothing matches", func(t *testing.T) {
		found, err := repo.FindByID(ctx, uuid.New())
		require.NoError(t, err)
		assert.Nil(t, found)
	})
}

func TestGormPaymentRepository_Queries(t *testing.T) {
	db := setupBillingTestDB(t)
	repo := NewGormPaymentRepository(db)
	ctx := context.Background()

	invoiceID := uuid.New()

	matched := buildTestPayment(t, "202609-A101-0123456789", decimal.NewFromFloat(5775.00))
	matched.MarkMatched(invoiceID)
	require.NoError(t, repo.Save(ctx, matched))

	held := buildTestPayment(t, "202609-B202-9876543210", decimal.NewFromFloat(100.00))
	held.MarkUnmatched(billing.ReasonInvoiceNotFound)
	require.NoError(t, repo.Save(ctx, held))

	t.Run("finds only unmatched payments", func(t *testing.T) {
		found, err := repo.FindUnmatched(ctx, shared.DefaultFilter())
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, held.ID, found[0].ID)
		assert.Equal(t, billing.ReasonInvoiceNotFound, found[0].Reason)
	})

	t.Run("finds payments by invoice", func(t *testing.T) {
		found, err := repo.FindByInvoice(ctx, invoiceID)
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, matched.ID, found[0].ID)
		require.NotNil(t, found[0].InvoiceID)
		assert.Equal(t, invoiceID, *found[0].InvoiceID)
	})

	t.Run("counts by status filter", func(t *testing.T) {
		filter := shared.DefaultFilter()
		filter.Filters["status"] = billing.PaymentStatusMatched
		count, err := repo.Count(ctx, filter)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})
}
