package ledger

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/safo-124/high-purchase-sub010/internal/model"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func creditPurchase(total string, due time.Time) *model.Purchase {
	return &model.Purchase{
		ID:          uuid.New(),
		Type:        model.PurchaseTypeCredit,
		TotalAmount: dec(total),
		DueDate:     due,
		Status:      model.PurchaseStatusPending,
	}
}

func confirmedPayment(amount string) model.Payment {
	now := time.Now()
	by := uuid.New()
	return model.Payment{
		ID:          uuid.New(),
		Amount:      dec(amount),
		IsConfirmed: true,
		ConfirmedBy: &by,
		ConfirmedAt: &now,
	}
}

func TestComputeInterest_FlatCredit(t *testing.T) {
	// Scenario: subtotal 1000, FLAT 10%, 3 installments -> interest 100
	got := ComputeInterest(dec("1000"), model.PurchaseTypeCredit, Policy{
		InterestType: model.InterestTypeFlat,
		Rate:         dec("0.10"),
		Installments: 3,
	})
	assert.True(t, got.Equal(dec("100")), "got %s", got)
}

func TestComputeInterest_MonthlyMultipliesByInstallments(t *testing.T) {
	got := ComputeInterest(dec("1000"), model.PurchaseTypeCredit, Policy{
		InterestType: model.InterestTypeMonthly,
		Rate:         dec("0.05"),
		Installments: 4,
	})
	assert.True(t, got.Equal(dec("200")), "got %s", got)
}

func TestComputeInterest_CashIsFree(t *testing.T) {
	got := ComputeInterest(dec("1000"), model.PurchaseTypeCash, Policy{
		InterestType: model.InterestTypeFlat,
		Rate:         dec("0.10"),
	})
	assert.True(t, got.IsZero())
}

func TestReconcile_NoPaymentsFutureDue_Pending(t *testing.T) {
	due := time.Now().AddDate(0, 1, 0)
	p := creditPurchase("1100", due)

	snap := Reconcile(p, nil, nil, time.Now())

	assert.Equal(t, model.PurchaseStatusPending, snap.Status)
	assert.True(t, snap.OutstandingBalance.Equal(dec("1100")))
	assert.True(t, snap.AmountPaid.IsZero())
}

func TestReconcile_FullPayment_Completed(t *testing.T) {
	// Scenario 2: confirmed 1100 against total 1100 -> outstanding 0, COMPLETED
	due := time.Now().AddDate(0, 1, 0)
	p := creditPurchase("1100", due)

	snap := Reconcile(p, []model.Payment{confirmedPayment("1100")}, nil, time.Now())

	assert.Equal(t, model.PurchaseStatusCompleted, snap.Status)
	assert.True(t, snap.OutstandingBalance.IsZero())
	assert.True(t, snap.AmountPaid.Equal(dec("1100")))
}

func TestReconcile_UnconfirmedPaymentDoesNotCount(t *testing.T) {
	// Scenario 3: unconfirmed 500 leaves outstanding at 1100, status PENDING
	due := time.Now().AddDate(0, 1, 0)
	p := creditPurchase("1100", due)

	unconfirmed := model.Payment{ID: uuid.New(), Amount: dec("500")}
	snap := Reconcile(p, []model.Payment{unconfirmed}, nil, time.Now())

	assert.Equal(t, model.PurchaseStatusPending, snap.Status)
	assert.True(t, snap.OutstandingBalance.Equal(dec("1100")))
}

func TestReconcile_RejectedPaymentNeverCounts(t *testing.T) {
	due := time.Now().AddDate(0, 1, 0)
	p := creditPurchase("1100", due)

	now := time.Now()
	by := uuid.New()
	rejected := model.Payment{ID: uuid.New(), Amount: dec("500"), RejectedBy: &by, RejectedAt: &now}
	snap := Reconcile(p, []model.Payment{rejected, confirmedPayment("300")}, nil, now)

	assert.True(t, snap.AmountPaid.Equal(dec("300")))
	assert.Equal(t, model.PurchaseStatusActive, snap.Status)
}

func TestReconcile_PastDueWithBalance_Overdue(t *testing.T) {
	due := time.Now().AddDate(0, 0, -1)
	p := creditPurchase("1100", due)

	snap := Reconcile(p, []model.Payment{confirmedPayment("100")}, nil, time.Now())

	assert.Equal(t, model.PurchaseStatusOverdue, snap.Status)
	assert.True(t, snap.OutstandingBalance.Equal(dec("1000")))
}

func TestReconcile_ProcessedRefundReopensPurchase(t *testing.T) {
	// Netting policy: processed refunds raise outstanding back up.
	due := time.Now().AddDate(0, 1, 0)
	p := creditPurchase("1100", due)
	p.Status = model.PurchaseStatusCompleted

	refund := model.Refund{ID: uuid.New(), Amount: dec("200"), Status: model.RefundStatusProcessed}
	snap := Reconcile(p, []model.Payment{confirmedPayment("1100")}, []model.Refund{refund}, time.Now())

	assert.Equal(t, model.PurchaseStatusActive, snap.Status)
	assert.True(t, snap.OutstandingBalance.Equal(dec("200")))
	assert.True(t, snap.RefundedAmount.Equal(dec("200")))
}

func TestReconcile_PendingRefundDoesNotTouchBalance(t *testing.T) {
	due := time.Now().AddDate(0, 1, 0)
	p := creditPurchase("1100", due)

	refund := model.Refund{ID: uuid.New(), Amount: dec("200"), Status: model.RefundStatusPending}
	snap := Reconcile(p, []model.Payment{confirmedPayment("1100")}, []model.Refund{refund}, time.Now())

	assert.Equal(t, model.PurchaseStatusCompleted, snap.Status)
	assert.True(t, snap.RefundedAmount.IsZero())
}

func TestReconcile_OutstandingNeverNegative(t *testing.T) {
	due := time.Now().AddDate(0, 1, 0)
	p := creditPurchase("100", due)

	// Two confirmed payments summing past the total (pre-guard data).
	snap := Reconcile(p, []model.Payment{confirmedPayment("100"), confirmedPayment("50")}, nil, time.Now())

	assert.False(t, snap.OutstandingBalance.IsNegative())
	assert.Equal(t, model.PurchaseStatusCompleted, snap.Status)
}

func TestReconcile_Idempotent(t *testing.T) {
	due := time.Now().AddDate(0, 1, 0)
	p := creditPurchase("1100", due)
	payments := []model.Payment{confirmedPayment("400"), confirmedPayment("300")}
	refunds := []model.Refund{{ID: uuid.New(), Amount: dec("100"), Status: model.RefundStatusProcessed}}
	asOf := time.Now()

	first := Reconcile(p, payments, refunds, asOf)
	Apply(p, first)
	second := Reconcile(p, payments, refunds, asOf)

	assert.Equal(t, first.Status, second.Status)
	assert.True(t, first.OutstandingBalance.Equal(second.OutstandingBalance))
	assert.True(t, first.AmountPaid.Equal(second.AmountPaid))
	assert.True(t, first.RefundedAmount.Equal(second.RefundedAmount))
}

func TestApply_SetsWaybillEligibilityOnCompletion(t *testing.T) {
	due := time.Now().AddDate(0, 1, 0)
	p := creditPurchase("500", due)
	p.Type = model.PurchaseTypeLayaway

	snap := Reconcile(p, []model.Payment{confirmedPayment("500")}, nil, time.Now())
	completed := Apply(p, snap)

	assert.True(t, completed)
	assert.True(t, p.WaybillEligible)
	assert.Equal(t, model.PurchaseStatusCompleted, p.Status)
}

func TestApply_CreditPurchaseNeverWaybillEligible(t *testing.T) {
	due := time.Now().AddDate(0, 1, 0)
	p := creditPurchase("500", due)

	snap := Reconcile(p, []model.Payment{confirmedPayment("500")}, nil, time.Now())
	completed := Apply(p, snap)

	assert.True(t, completed)
	assert.False(t, p.WaybillEligible)
}

func TestCheckPaymentAmount_StrictOverpayment(t *testing.T) {
	// Scenario 4: 1200 against outstanding 1100 is rejected outright
	err := CheckPaymentAmount(dec("1100"), dec("1200"))
	require.Error(t, err)
	var over *OverpaymentError
	require.ErrorAs(t, err, &over)
	assert.True(t, over.Outstanding.Equal(dec("1100")))
	assert.True(t, over.Attempted.Equal(dec("1200")))
}

func TestCheckPaymentAmount_ExactPayoffAllowed(t *testing.T) {
	assert.NoError(t, CheckPaymentAmount(dec("1100"), dec("1100")))
}

func TestCheckPaymentAmount_NonPositiveRejected(t *testing.T) {
	var verr *ValidationError
	require.ErrorAs(t, CheckPaymentAmount(dec("1100"), dec("0")), &verr)
	require.ErrorAs(t, CheckPaymentAmount(dec("1100"), dec("-5")), &verr)
}

func TestCheckRefundAmount_Overrefund(t *testing.T) {
	// Scenario 5 tail: 200 already processed on a 1100 purchase, a second
	// request of 1000 exceeds the 900 still refundable.
	committed := RefundCommitted([]model.Refund{
		{Amount: dec("200"), Status: model.RefundStatusProcessed},
	})
	err := CheckRefundAmount(dec("1100"), committed, dec("1000"))
	var over *OverrefundError
	require.ErrorAs(t, err, &over)
	assert.True(t, over.Available.Equal(dec("900")))
}

func TestRefundCommitted_CountsInFlightRequests(t *testing.T) {
	committed := RefundCommitted([]model.Refund{
		{Amount: dec("200"), Status: model.RefundStatusProcessed},
		{Amount: dec("100"), Status: model.RefundStatusPending},
		{Amount: dec("50"), Status: model.RefundStatusApproved},
		{Amount: dec("999"), Status: model.RefundStatusRejected},
	})
	assert.True(t, committed.Equal(dec("350")))
}

func TestRoundCurrency_HalfUp(t *testing.T) {
	assert.Equal(t, "10.01", FormatCurrency(dec("10.005")))
	assert.Equal(t, "10.00", FormatCurrency(dec("10.004")))
	assert.Equal(t, "0.10", FormatCurrency(dec("0.1")))
}
