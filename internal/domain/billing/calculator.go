package billing

import (
	"github.com/shopspring/decimal"
)

var oneHundred = decimal.NewFromInt(100)

// ChargeAmounts holds the computed breakdown for a single charge.
// Values are exact; rounding is deferred to the point totals are
// fixed on the Invoice aggregate.
type ChargeAmounts struct {
	Subtotal  decimal.Decimal
	VATAmount decimal.Decimal
	Total     decimal.Decimal
}

// ComputeChargeAmounts computes the ex-VAT subtotal, VAT amount and
// total for one charge. For VAT-inclusive charges the tax is backed
// out of the stated amount; for exclusive charges it is added on top.
// Precondition: the charge is valid (amount >= 0, 0 <= rate <= 100).
func ComputeChargeAmounts(c Charge) ChargeAmounts {
	if c.VATRate.IsZero() {
		return ChargeAmounts{
			Subtotal:  c.Amount,
			VATAmount: decimal.Zero,
			Total:     c.Amount,
		}
	}

	if c.VATInclusive {
		vat := c.Amount.Mul(c.VATRate).Div(oneHundred.Add(c.VATRate))
		return ChargeAmounts{
			Subtotal:  c.Amount.Sub(vat),
			VATAmount: vat,
			Total:     c.Amount,
		}
	}

	vat := c.Amount.Mul(c.VATRate).Div(oneHundred)
	return ChargeAmounts{
		Subtotal:  c.Amount,
		VATAmount: vat,
		Total:     c.Amount.Add(vat),
	}
}

// InvoiceTotals holds the aggregate totals for an invoice's charge set
type InvoiceTotals struct {
	Subtotal        decimal.Decimal
	VATTotal        decimal.Decimal
	Total           decimal.Decimal // Current-period charges only
	PreviousBalance decimal.Decimal
	GrandTotal      decimal.Decimal
}

// ComputeInvoiceTotals sums the charge breakdowns and carries the
// previous balance into the grand total. An empty charge list yields
// zero totals with GrandTotal equal to the previous balance.
func ComputeInvoiceTotals(charges Charges, previousBalance decimal.Decimal) InvoiceTotals {
	subtotal := decimal.Zero
	vatTotal := decimal.Zero

	for i := range charges {
		amounts := ComputeChargeAmounts(charges[i])
		subtotal = subtotal.Add(amounts.Subtotal)
		vatTotal = vatTotal.Add(amounts.VATAmount)
	}

	total := subtotal.Add(vatTotal)
	return InvoiceTotals{
		Subtotal:        subtotal,
		VATTotal:        vatTotal,
		Total:           total,
		PreviousBalance: previousBalance,
		GrandTotal:      total.Add(previousBalance),
	}
}

// Rounded returns the totals rounded once to money precision
// (2 decimal places, half-up), re-deriving the dependent sums from
// the rounded components so the stored invariant
// grandTotal = subtotal + vatTotal + previousBalance holds exactly.
func (t InvoiceTotals) Rounded() InvoiceTotals {
	subtotal := t.Subtotal.Round(2)
	vatTotal := t.VATTotal.Round(2)
	previous := t.PreviousBalance.Round(2)
	total := subtotal.Add(vatTotal)
	return InvoiceTotals{
		Subtotal:        subtotal,
		VATTotal:        vatTotal,
		Total:           total,
		PreviousBalance: previous,
		GrandTotal:      total.Add(previous),
	}
}
