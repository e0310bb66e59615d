package billing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustCharge(t *testing.T, name string, amount string, category ChargeCategory, vatRate string, inclusive bool) Charge {
	t.Helper()
	c, err := NewCharge(name, decimal.RequireFromString(amount), category, decimal.RequireFromString(vatRate), inclusive)
	require.NoError(t, err)
	return *c
}

func TestComputeChargeAmounts(t *testing.T) {
	tests := []struct {
		name         string
		charge       Charge
		wantSubtotal string
		wantVAT      string
		wantTotal    string
	}{
		{
			name:         "zero rate exclusive",
			charge:       Charge{Name: "Rent", Amount: decimal.RequireFromString("5000"), Category: ChargeCategoryRent, VATRate: decimal.Zero, VATInclusive: false},
			wantSubtotal: "5000",
			wantVAT:      "0",
			wantTotal:    "5000",
		},
		{
			name:         "vat inclusive backs tax out",
			charge:       Charge{Name: "Parking", Amount: decimal.RequireFromString("1150"), Category: ChargeCategoryOther, VATRate: decimal.RequireFromString("15"), VATInclusive: true},
			wantSubtotal: "1000",
			wantVAT:      "150",
			wantTotal:    "1150",
		},
		{
			name:         "vat exclusive adds tax on top",
			charge:       Charge{Name: "Electricity", Amount: decimal.RequireFromString("500"), Category: ChargeCategoryUtility, VATRate: decimal.RequireFromString("15"), VATInclusive: false},
			wantSubtotal: "500",
			wantVAT:      "75",
			wantTotal:    "575",
		},
		{
			name:         "zero rate inclusive is the same as exclusive",
			charge:       Charge{Name: "Levy", Amount: decimal.RequireFromString("320.50"), Category: ChargeCategoryMunicipal, VATRate: decimal.Zero, VATInclusive: true},
			wantSubtotal: "320.50",
			wantVAT:      "0",
			wantTotal:    "320.50",
		},
		{
			name:         "zero amount",
			charge:       Charge{Name: "Waived", Amount: decimal.Zero, Category: ChargeCategoryOther, VATRate: decimal.RequireFromString("15"), VATInclusive: false},
			wantSubtotal: "0",
			wantVAT:      "0",
			wantTotal:    "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeChargeAmounts(tt.charge)
			assert.True(t, got.Subtotal.Equal(decimal.RequireFromString(tt.wantSubtotal)),
				"subtotal: got %s, want %s", got.Subtotal, tt.wantSubtotal)
			assert.True(t, got.VATAmount.Equal(decimal.RequireFromString(tt.wantVAT)),
				"vat: got %s, want %s", got.VATAmount, tt.wantVAT)
			assert.True(t, got.Total.Equal(decimal.RequireFromString(tt.wantTotal)),
				"total: got %s, want %s", got.Total, tt.wantTotal)
		})
	}
}

func TestComputeChargeAmounts_SubtotalPlusVATEqualsTotal(t *testing.T) {
	charges := []Charge{
		{Name: "A", Amount: decimal.RequireFromString("1234.56"), Category: ChargeCategoryRent, VATRate: decimal.RequireFromString("15"), VATInclusive: true},
		{Name: "B", Amount: decimal.RequireFromString("0.01"), Category: ChargeCategoryUtility, VATRate: decimal.RequireFromString("15"), VATInclusive: false},
		{Name: "C", Amount: decimal.RequireFromString("99.99"), Category: ChargeCategoryOther, VATRate: decimal.RequireFromString("7.5"), VATInclusive: true},
	}
	for _, c := range charges {
		got := ComputeChargeAmounts(c)
		assert.True(t, got.Subtotal.Add(got.VATAmount).Equal(got.Total),
			"%s: subtotal %s + vat %s != total %s", c.Name, got.Subtotal, got.VATAmount, got.Total)
	}
}

func TestComputeInvoiceTotals(t *testing.T) {
	t.Run("mixed charges with previous balance", func(t *testing.T) {
		charges := Charges{
			mustCharge(t, "Monthly rent", "5000", ChargeCategoryRent, "0", false),
			mustCharge(t, "Electricity", "500", ChargeCategoryUtility, "15", false),
		}

		totals := ComputeInvoiceTotals(charges, decimal.RequireFromString("200")).Rounded()

		assert.True(t, totals.Subtotal.Equal(decimal.RequireFromString("5500")), "subtotal %s", totals.Subtotal)
		assert.True(t, totals.VATTotal.Equal(decimal.RequireFromString("75")), "vat %s", totals.VATTotal)
		assert.True(t, totals.Total.Equal(decimal.RequireFromString("5575")), "total %s", totals.Total)
		assert.True(t, totals.GrandTotal.Equal(decimal.RequireFromString("5775")), "grand %s", totals.GrandTotal)
	})

	t.Run("empty charge list leaves only the previous balance", func(t *testing.T) {
		totals := ComputeInvoiceTotals(Charges{}, decimal.RequireFromString("340.25")).Rounded()

		assert.True(t, totals.Subtotal.IsZero())
		assert.True(t, totals.VATTotal.IsZero())
		assert.True(t, totals.Total.IsZero())
		assert.True(t, totals.GrandTotal.Equal(decimal.RequireFromString("340.25")))
	})

	t.Run("nil charge list", func(t *testing.T) {
		totals := ComputeInvoiceTotals(nil, decimal.Zero).Rounded()
		assert.True(t, totals.GrandTotal.IsZero())
	})
}

func TestInvoiceTotals_Rounded(t *testing.T) {
	t.Run("rounds half up to two places", func(t *testing.T) {
		charges := Charges{
			// 33.33 inclusive at 15%: vat = 33.33*15/115 = 4.34739...
			mustCharge(t, "Line", "33.33", ChargeCategoryOther, "15", true),
		}
		totals := ComputeInvoiceTotals(charges, decimal.Zero).Rounded()

		assert.True(t, totals.VATTotal.Equal(decimal.RequireFromString("4.35")), "vat %s", totals.VATTotal)
		assert.True(t, totals.Subtotal.Equal(decimal.RequireFromString("28.98")), "subtotal %s", totals.Subtotal)
	})

	t.Run("stored sums are re-derived from rounded components", func(t *testing.T) {
		charges := Charges{
			mustCharge(t, "A", "10.01", ChargeCategoryUtility, "15", true),
			mustCharge(t, "B", "20.02", ChargeCategoryUtility, "15", true),
			mustCharge(t, "C", "0.05", ChargeCategoryOther, "15", false),
		}
		totals := ComputeInvoiceTotals(charges, decimal.RequireFromString("12.345")).Rounded()

		assert.True(t, totals.Total.Equal(totals.Subtotal.Add(totals.VATTotal)),
			"total %s != subtotal %s + vat %s", totals.Total, totals.Subtotal, totals.VATTotal)
		assert.True(t, totals.GrandTotal.Equal(totals.Total.Add(totals.PreviousBalance)),
			"grand %s != total %s + previous %s", totals.GrandTotal, totals.Total, totals.PreviousBalance)
	})

	t.Run("rounding happens once, not per intermediate step", func(t *testing.T) {
		// Three inclusive lines whose exact VAT amounts each carry long
		// tails. Rounding each line before summing would give a
		// different VAT total than rounding the exact sum once.
		charges := Charges{
			mustCharge(t, "A", "10.07", ChargeCategoryOther, "15", true),
			mustCharge(t, "B", "10.07", ChargeCategoryOther, "15", true),
			mustCharge(t, "C", "10.07", ChargeCategoryOther, "15", true),
		}
		// Exact per-line VAT: 10.07*15/115 = 1.313478...; sum = 3.940434...
		// Rounded once: 3.94. Rounded per line first: 1.31*3 = 3.93.
		totals := ComputeInvoiceTotals(charges, decimal.Zero).Rounded()
		assert.True(t, totals.VATTotal.Equal(decimal.RequireFromString("3.94")), "vat %s", totals.VATTotal)
	})
}
