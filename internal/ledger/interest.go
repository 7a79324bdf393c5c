package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/safo-124/high-purchase-sub010/internal/model"
)

// Policy is the business's hire-purchase pricing policy.
type Policy struct {
	InterestType string // FLAT, MONTHLY
	Rate         decimal.Decimal
	Installments int
}

// ComputeInterest derives the interest amount for a purchase.
// CASH sales carry no interest. FLAT applies the rate once to the
// subtotal; MONTHLY applies it once per installment.
func ComputeInterest(subtotal decimal.Decimal, purchaseType string, policy Policy) decimal.Decimal {
	if purchaseType == model.PurchaseTypeCash {
		return decimal.Zero
	}
	switch policy.InterestType {
	case model.InterestTypeMonthly:
		installments := policy.Installments
		if installments < 1 {
			installments = 1
		}
		return subtotal.Mul(policy.Rate).Mul(decimal.NewFromInt(int64(installments)))
	default: // FLAT
		return subtotal.Mul(policy.Rate)
	}
}
