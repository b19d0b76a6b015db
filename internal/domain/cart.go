package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartItem identifies a product variant and the quantity being bought.
// Price is the unit price; PricePerLabel/PricePerProbe are informational
// rates shown on the product page and carried through for the order record.
type CartItem struct {
	ProductID     string           `json:"product_id"`
	VariantID     string           `json:"variant_id"`
	VariantName   string           `json:"variant_name"`
	Price         decimal.Decimal  `json:"price"`
	PricePerLabel *decimal.Decimal `json:"price_per_label,omitempty"`
	PricePerProbe *decimal.Decimal `json:"price_per_probe,omitempty"`
	Quantity      int              `json:"quantity"`
}

// LineTotal returns price × quantity for the item.
func (i CartItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Summary holds the derived totals for a cart or an order. Derived means
// exactly that: a Summary is never mutated field-by-field, only replaced
// wholesale by a pricing quote.
type Summary struct {
	Subtotal     decimal.Decimal `json:"subtotal"`
	ShippingCost decimal.Decimal `json:"shipping_cost"`
	TaxRate      decimal.Decimal `json:"tax_rate"`
	TaxAmount    decimal.Decimal `json:"tax_amount"`
	Total        decimal.Decimal `json:"total"`
}

// Cart is the per-session shopping state. CustomerCountry and IsVatExempt
// feed the pricing engine; Summary is recomputed after every mutation.
type Cart struct {
	SessionID       string     `json:"session_id"`
	Items           []CartItem `json:"items"`
	CustomerCountry string     `json:"customer_country"`
	IsVatExempt     bool       `json:"is_vat_exempt"`
	Summary         Summary    `json:"summary"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}
