package ledger

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/safo-124/high-purchase-sub010/internal/model"
)

// Transition guards. Each mutates its entity in place only when the move
// is legal, so services can persist the entity directly afterwards.

// ConfirmPayment moves a payment UNCONFIRMED -> CONFIRMED.
func ConfirmPayment(p *model.Payment, by uuid.UUID, at time.Time) error {
	if p.Terminal() {
		return &AlreadyProcessedError{Entity: "payment", Status: paymentState(p)}
	}
	p.IsConfirmed = true
	p.ConfirmedBy = &by
	p.ConfirmedAt = &at
	return nil
}

// RejectPayment moves a payment UNCONFIRMED -> REJECTED.
func RejectPayment(p *model.Payment, by uuid.UUID, at time.Time, reason string) error {
	if p.Terminal() {
		return &AlreadyProcessedError{Entity: "payment", Status: paymentState(p)}
	}
	p.RejectedBy = &by
	p.RejectedAt = &at
	p.RejectionReason = reason
	return nil
}

func paymentState(p *model.Payment) string {
	switch {
	case p.RejectedAt != nil:
		return "REJECTED"
	case p.IsConfirmed:
		return "CONFIRMED"
	default:
		return "UNCONFIRMED"
	}
}

// ApproveRefund moves a refund PENDING -> APPROVED.
func ApproveRefund(r *model.Refund, by uuid.UUID, at time.Time) error {
	if r.Status != model.RefundStatusPending {
		return &InvalidStateTransitionError{Entity: "refund", From: r.Status, To: model.RefundStatusApproved}
	}
	r.Status = model.RefundStatusApproved
	r.ApprovedBy = &by
	r.ApprovedAt = &at
	return nil
}

// ProcessRefund moves a refund APPROVED -> PROCESSED. It requires an
// external transaction reference, or the "wallet" channel when the refund
// was settled as a wallet credit.
func ProcessRefund(r *model.Refund, by uuid.UUID, at time.Time, txRef string) error {
	if r.Status != model.RefundStatusApproved {
		return &InvalidStateTransitionError{Entity: "refund", From: r.Status, To: model.RefundStatusProcessed}
	}
	if strings.TrimSpace(txRef) == "" {
		return &ValidationError{Field: "transaction_ref", Message: "required to process a refund"}
	}
	r.Status = model.RefundStatusProcessed
	r.ProcessedBy = &by
	r.ProcessedAt = &at
	r.TransactionRef = txRef
	return nil
}

// RejectRefund moves a refund PENDING -> REJECTED.
func RejectRefund(r *model.Refund, by uuid.UUID, at time.Time, reason string) error {
	if r.Status != model.RefundStatusPending {
		return &InvalidStateTransitionError{Entity: "refund", From: r.Status, To: model.RefundStatusRejected}
	}
	r.Status = model.RefundStatusRejected
	r.RejectedBy = &by
	r.RejectedAt = &at
	r.RejectionReason = reason
	return nil
}

// deliveryNext lists the legal delivery moves.
var deliveryNext = map[string][]string{
	model.DeliveryStatusPending:   {model.DeliveryStatusScheduled},
	model.DeliveryStatusScheduled: {model.DeliveryStatusInTransit},
	model.DeliveryStatusInTransit: {model.DeliveryStatusDelivered, model.DeliveryStatusFailed},
}

// AdvanceDelivery moves a waybill one step along
// PENDING -> SCHEDULED -> IN_TRANSIT -> {DELIVERED | FAILED}.
func AdvanceDelivery(w *model.Waybill, next string, at time.Time) error {
	for _, allowed := range deliveryNext[w.Status] {
		if next == allowed {
			w.Status = next
			switch next {
			case model.DeliveryStatusScheduled:
				w.ScheduledAt = &at
			case model.DeliveryStatusDelivered:
				w.DeliveredAt = &at
			}
			return nil
		}
	}
	return &InvalidStateTransitionError{Entity: "waybill", From: w.Status, To: next}
}
