package pricing

import "github.com/shopspring/decimal"

// Business policy constants. This file is the single place to touch when
// the shipping table or tax treatment changes.

// Free shipping applies to GB destinations at or above this subtotal.
// The boundary is inclusive: a subtotal of exactly 50.00 ships free.
var freeShippingThresholdGB = decimal.RequireFromString("50.00")

var (
	shippingGB     = decimal.RequireFromString("4.99")
	shippingEUZone = decimal.RequireFromString("12.50")
	shippingWorld  = decimal.RequireFromString("19.99")
)

// ukVATRate is the UK standard rate.
var ukVATRate = decimal.RequireFromString("0.20")

// euZone lists destinations charged the EU-zone shipping rate.
var euZone = map[string]bool{
	"AT": true, "BE": true, "BG": true, "HR": true, "CY": true,
	"CZ": true, "DK": true, "EE": true, "FI": true, "FR": true,
	"DE": true, "GR": true, "HU": true, "IE": true, "IT": true,
	"LV": true, "LT": true, "LU": true, "MT": true, "NL": true,
	"PL": true, "PT": true, "RO": true, "SK": true, "SI": true,
	"ES": true, "SE": true,
}

// shippingRate returns the flat rate for a destination, before the GB
// free-shipping rule is applied.
func shippingRate(country string) decimal.Decimal {
	switch {
	case country == "GB":
		return shippingGB
	case euZone[country]:
		return shippingEUZone
	default:
		return shippingWorld
	}
}

// taxRate returns the VAT rate for a destination. Non-GB orders are
// zero-rated exports.
func taxRate(country string) decimal.Decimal {
	if country == "GB" {
		return ukVATRate
	}
	return decimal.Zero
}
