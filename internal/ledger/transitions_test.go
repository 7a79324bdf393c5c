package ledger

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/safo-124/high-purchase-sub010/internal/model"
)

func TestConfirmPayment_SetsConfirmationFields(t *testing.T) {
	p := &model.Payment{ID: uuid.New(), Amount: dec("100")}
	by := uuid.New()
	at := time.Now()

	require.NoError(t, ConfirmPayment(p, by, at))

	assert.True(t, p.IsConfirmed)
	require.NotNil(t, p.ConfirmedBy)
	assert.Equal(t, by, *p.ConfirmedBy)
	require.NotNil(t, p.ConfirmedAt)
}

func TestConfirmPayment_TerminalStatesRefuse(t *testing.T) {
	by := uuid.New()
	at := time.Now()

	confirmed := &model.Payment{ID: uuid.New(), IsConfirmed: true}
	var already *AlreadyProcessedError
	require.ErrorAs(t, ConfirmPayment(confirmed, by, at), &already)
	assert.Equal(t, "CONFIRMED", already.Status)

	rejected := &model.Payment{ID: uuid.New(), RejectedAt: &at}
	require.ErrorAs(t, ConfirmPayment(rejected, by, at), &already)
	assert.Equal(t, "REJECTED", already.Status)
}

func TestRejectPayment_TerminalStatesRefuse(t *testing.T) {
	by := uuid.New()
	at := time.Now()

	p := &model.Payment{ID: uuid.New()}
	require.NoError(t, RejectPayment(p, by, at, "duplicate entry"))
	assert.Equal(t, "duplicate entry", p.RejectionReason)
	assert.False(t, p.Counts())

	// A rejected payment can never be confirmed afterwards.
	var already *AlreadyProcessedError
	require.ErrorAs(t, ConfirmPayment(p, by, at), &already)

	// And a confirmed payment can never be rejected.
	c := &model.Payment{ID: uuid.New(), IsConfirmed: true}
	require.ErrorAs(t, RejectPayment(c, by, at, "late"), &already)
}

func TestRefundLifecycle_HappyPath(t *testing.T) {
	// Scenario 5: PENDING -> APPROVED -> PROCESSED with reference "MPESA123"
	r := &model.Refund{ID: uuid.New(), Status: model.RefundStatusPending, Amount: dec("200")}
	by := uuid.New()
	at := time.Now()

	require.NoError(t, ApproveRefund(r, by, at))
	assert.Equal(t, model.RefundStatusApproved, r.Status)

	require.NoError(t, ProcessRefund(r, by, at, "MPESA123"))
	assert.Equal(t, model.RefundStatusProcessed, r.Status)
	assert.Equal(t, "MPESA123", r.TransactionRef)
	require.NotNil(t, r.ProcessedAt)
}

func TestProcessRefund_RequiresApprovedState(t *testing.T) {
	by := uuid.New()
	at := time.Now()

	pending := &model.Refund{Status: model.RefundStatusPending}
	var invalid *InvalidStateTransitionError
	require.ErrorAs(t, ProcessRefund(pending, by, at, "REF1"), &invalid)
	assert.Equal(t, model.RefundStatusPending, invalid.From)

	processed := &model.Refund{Status: model.RefundStatusProcessed}
	require.ErrorAs(t, ProcessRefund(processed, by, at, "REF2"), &invalid)
}

func TestProcessRefund_RequiresReference(t *testing.T) {
	r := &model.Refund{Status: model.RefundStatusApproved}
	var verr *ValidationError
	require.ErrorAs(t, ProcessRefund(r, uuid.New(), time.Now(), "  "), &verr)
	assert.Equal(t, model.RefundStatusApproved, r.Status)
}

func TestProcessRefund_WalletChannelAccepted(t *testing.T) {
	r := &model.Refund{Status: model.RefundStatusApproved}
	require.NoError(t, ProcessRefund(r, uuid.New(), time.Now(), model.RefundChannelWallet))
	assert.Equal(t, model.RefundChannelWallet, r.TransactionRef)
}

func TestRejectRefund_OnlyFromPending(t *testing.T) {
	by := uuid.New()
	at := time.Now()

	r := &model.Refund{Status: model.RefundStatusPending}
	require.NoError(t, RejectRefund(r, by, at, "not eligible"))
	assert.Equal(t, model.RefundStatusRejected, r.Status)

	approved := &model.Refund{Status: model.RefundStatusApproved}
	var invalid *InvalidStateTransitionError
	require.ErrorAs(t, RejectRefund(approved, by, at, "too late"), &invalid)
}

func TestAdvanceDelivery_LegalPath(t *testing.T) {
	w := &model.Waybill{Status: model.DeliveryStatusPending}
	at := time.Now()

	require.NoError(t, AdvanceDelivery(w, model.DeliveryStatusScheduled, at))
	require.NotNil(t, w.ScheduledAt)
	require.NoError(t, AdvanceDelivery(w, model.DeliveryStatusInTransit, at))
	require.NoError(t, AdvanceDelivery(w, model.DeliveryStatusDelivered, at))
	require.NotNil(t, w.DeliveredAt)
}

func TestAdvanceDelivery_FailureBranch(t *testing.T) {
	w := &model.Waybill{Status: model.DeliveryStatusInTransit}
	require.NoError(t, AdvanceDelivery(w, model.DeliveryStatusFailed, time.Now()))
	assert.Equal(t, model.DeliveryStatusFailed, w.Status)
}

func TestAdvanceDelivery_IllegalMovesRefused(t *testing.T) {
	at := time.Now()
	var invalid *InvalidStateTransitionError

	// Skipping states
	w := &model.Waybill{Status: model.DeliveryStatusPending}
	require.ErrorAs(t, AdvanceDelivery(w, model.DeliveryStatusDelivered, at), &invalid)

	// Terminal states are final
	done := &model.Waybill{Status: model.DeliveryStatusDelivered}
	require.ErrorAs(t, AdvanceDelivery(done, model.DeliveryStatusInTransit, at), &invalid)

	failed := &model.Waybill{Status: model.DeliveryStatusFailed}
	require.ErrorAs(t, AdvanceDelivery(failed, model.DeliveryStatusScheduled, at), &invalid)
}
