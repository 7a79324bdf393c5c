package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/safo-124/high-purchase-sub010/internal/model"
)

// Snapshot is the derived financial state of a purchase. Reconcile is the
// only producer; callers persist it onto the purchase row while holding a
// row lock.
type Snapshot struct {
	AmountPaid          decimal.Decimal
	RefundedAmount      decimal.Decimal
	OutstandingBalance  decimal.Decimal
	Status              string
	HasConfirmedPayment bool
}

// Reconcile re-derives a purchase's ledger state from its payments and
// refunds. Pure and idempotent: the same inputs always yield the same
// snapshot.
//
// Netting policy: processed refunds reduce the effective amount collected,
// so outstanding = max(0, total - amountPaid + refunded). A fully paid
// purchase that is later partially refunded reopens (COMPLETED -> ACTIVE,
// or OVERDUE once past due).
func Reconcile(p *model.Purchase, payments []model.Payment, refunds []model.Refund, asOf time.Time) Snapshot {
	snap := Snapshot{
		AmountPaid:     decimal.Zero,
		RefundedAmount: decimal.Zero,
	}

	for _, pay := range payments {
		if pay.Counts() {
			snap.AmountPaid = snap.AmountPaid.Add(pay.Amount)
			snap.HasConfirmedPayment = true
		}
	}
	for _, r := range refunds {
		if r.Status == model.RefundStatusProcessed {
			snap.RefundedAmount = snap.RefundedAmount.Add(r.Amount)
		}
	}

	outstanding := p.TotalAmount.Sub(snap.AmountPaid).Add(snap.RefundedAmount)
	if outstanding.IsNegative() {
		outstanding = decimal.Zero
	}
	snap.OutstandingBalance = outstanding

	switch {
	case outstanding.IsZero():
		snap.Status = model.PurchaseStatusCompleted
	case asOf.After(p.DueDate):
		snap.Status = model.PurchaseStatusOverdue
	case snap.HasConfirmedPayment:
		snap.Status = model.PurchaseStatusActive
	default:
		snap.Status = model.PurchaseStatusPending
	}

	return snap
}

// Apply writes a snapshot onto the purchase and reports whether this
// application completed the purchase (outstanding reached zero now).
func Apply(p *model.Purchase, snap Snapshot) bool {
	completedNow := snap.Status == model.PurchaseStatusCompleted &&
		p.Status != model.PurchaseStatusCompleted

	p.AmountPaid = snap.AmountPaid
	p.RefundedAmount = snap.RefundedAmount
	p.OutstandingBalance = snap.OutstandingBalance
	p.Status = snap.Status

	if completedNow && p.HasDelivery() {
		p.WaybillEligible = true
	}

	return completedNow
}

// CheckPaymentAmount enforces the strict overpayment rule: a payment must
// be positive and must not drive confirmed payments past the total.
func CheckPaymentAmount(outstanding, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return &ValidationError{Field: "amount", Message: "must be greater than zero"}
	}
	if amount.GreaterThan(outstanding) {
		return &OverpaymentError{Outstanding: outstanding, Attempted: amount}
	}
	return nil
}

// RefundCommitted sums the refund amounts already committed against a
// purchase: PROCESSED refunds plus in-flight PENDING/APPROVED requests,
// so a request can never be approved into an overrefund.
func RefundCommitted(refunds []model.Refund) decimal.Decimal {
	committed := decimal.Zero
	for _, r := range refunds {
		switch r.Status {
		case model.RefundStatusProcessed, model.RefundStatusApproved, model.RefundStatusPending:
			committed = committed.Add(r.Amount)
		}
	}
	return committed
}

// CheckRefundAmount enforces the overrefund rule against the purchase
// total net of amounts already committed.
func CheckRefundAmount(total, committed, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return &ValidationError{Field: "amount", Message: "must be greater than zero"}
	}
	available := total.Sub(committed)
	if amount.GreaterThan(available) {
		return &OverrefundError{Available: available, Attempted: amount}
	}
	return nil
}
