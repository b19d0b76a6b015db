// Package pricing computes cart totals. Quote is a pure function: callers
// recompute the whole Summary after every cart mutation instead of patching
// individual derived fields.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/kosuite/shopcore/internal/domain"
)

// Quote computes subtotal, shipping, tax and total for a set of items
// shipped to the given country.
func Quote(items []domain.CartItem, country string, isVatExempt bool) domain.Summary {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.LineTotal())
	}

	shipping := shippingRate(country)
	if country == "GB" && subtotal.GreaterThanOrEqual(freeShippingThresholdGB) {
		shipping = decimal.Zero
	}

	rate := taxRate(country)
	tax := decimal.Zero
	if !isVatExempt {
		tax = subtotal.Mul(rate).Round(2)
	}

	return domain.Summary{
		Subtotal:     subtotal,
		ShippingCost: shipping,
		TaxRate:      rate,
		TaxAmount:    tax,
		Total:        subtotal.Add(shipping).Add(tax),
	}
}
