package ledger

import "github.com/shopspring/decimal"

// RoundCurrency rounds to 2 decimal places, half up. Receipts and exports
// must show exactly what this returns; internal columns keep 4 digits.
func RoundCurrency(d decimal.Decimal) decimal.Decimal {
	// shopspring rounds half away from zero, which is half up for the
	// non-negative amounts the ledger deals in.
	return d.Round(2)
}

// FormatCurrency renders an amount for receipts and export rows.
func FormatCurrency(d decimal.Decimal) string {
	return RoundCurrency(d).StringFixed(2)
}
