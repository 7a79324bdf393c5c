package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Domain errors are returned as typed values so handlers can map them to
// field-level or per-row messages without string matching.

// ValidationError reports malformed or missing input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NotFoundError reports that a referenced entity does not exist in the
// addressed scope.
type NotFoundError struct {
	Entity string
	Key    string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Entity, e.Key)
}

// InvalidStateTransitionError reports an operation attempted on an entity
// not in the required source state.
type InvalidStateTransitionError struct {
	Entity string
	From   string
	To     string
}

func (e *InvalidStateTransitionError) Error() string {
	return fmt.Sprintf("%s cannot move from %s to %s", e.Entity, e.From, e.To)
}

// AlreadyProcessedError reports that an entity has already reached a
// terminal state.
type AlreadyProcessedError struct {
	Entity string
	Status string
}

func (e *AlreadyProcessedError) Error() string {
	return fmt.Sprintf("%s is already %s", e.Entity, e.Status)
}

// OverpaymentError reports a payment amount that would push confirmed
// payments past the purchase total.
type OverpaymentError struct {
	Outstanding decimal.Decimal
	Attempted   decimal.Decimal
}

func (e *OverpaymentError) Error() string {
	return fmt.Sprintf("payment of %s exceeds outstanding balance %s",
		e.Attempted.StringFixed(2), e.Outstanding.StringFixed(2))
}

// OverrefundError reports a refund amount that would push refunded totals
// past the purchase total.
type OverrefundError struct {
	Available decimal.Decimal
	Attempted decimal.Decimal
}

func (e *OverrefundError) Error() string {
	return fmt.Sprintf("refund of %s exceeds refundable amount %s",
		e.Attempted.StringFixed(2), e.Available.StringFixed(2))
}

// ConcurrencyConflictError reports a write conflict detected during
// reconciliation. Callers may retry the whole operation once.
type ConcurrencyConflictError struct {
	Entity string
}

func (e *ConcurrencyConflictError) Error() string {
	return fmt.Sprintf("concurrent modification of %s, retry the operation", e.Entity)
}
