package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/safo-124/high-purchase-sub010/internal/ledger"
	"github.com/safo-124/high-purchase-sub010/internal/model"
	"github.com/safo-124/high-purchase-sub010/internal/repository"
)

// Actor identifies who is performing an operation. Handlers build it from
// the authenticated token; imports build it from the uploading user.
type Actor struct {
	UserID uuid.UUID
	Role   string
}

// CanConfirm reports whether the actor carries confirm authority.
func (a Actor) CanConfirm() bool {
	return model.CanConfirmPayments(a.Role)
}

func parseUUID(field, value string) (uuid.UUID, error) {
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, &ledger.ValidationError{Field: field, Message: "must be a valid UUID"}
	}
	return id, nil
}

func parseAmount(field, value string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, &ledger.ValidationError{Field: field, Message: "must be a decimal number"}
	}
	return ledger.RoundCurrency(d), nil
}

// notFound translates gorm's record-not-found into the domain error so
// handlers can map it to 404 without importing gorm.
func notFound(err error, entity, key string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &ledger.NotFoundError{Entity: entity, Key: key}
	}
	return err
}

// writeAudit records Who/What/When. Audit failures are deliberately not
// swallowed: inside a transaction they roll the operation back, keeping
// the trail complete.
func writeAudit(ctx context.Context, repo repository.AuditRepository, actor Actor, action, entityID, entityName string, details map[string]interface{}) error {
	payload, err := json.Marshal(details)
	if err != nil {
		return err
	}
	userID := actor.UserID
	entry := &model.AuditLog{
		UserID:     &userID,
		Action:     action,
		EntityID:   entityID,
		EntityName: entityName,
		Details:    string(payload),
	}
	return repo.Log(ctx, entry)
}

// reconciler re-derives a purchase's ledger state inside an existing
// transaction. It row-locks the purchase, so concurrent payment and refund
// mutations against the same purchase serialize here.
type reconciler struct {
	purchaseRepo repository.PurchaseRepository
	paymentRepo  repository.PaymentRepository
	refundRepo   repository.RefundRepository
}

// recalculate reloads the purchase under a row lock, reapplies every
// payment and refund, and persists the snapshot. It returns the updated
// purchase and whether this pass completed it.
func (r *reconciler) recalculate(ctx context.Context, purchaseID uuid.UUID, asOf time.Time) (*model.Purchase, bool, error) {
	purchase, err := r.purchaseRepo.FindByIDForUpdate(ctx, purchaseID)
	if err != nil {
		return nil, false, notFound(err, "purchase", purchaseID.String())
	}

	payments, err := r.paymentRepo.ListByPurchase(ctx, purchaseID)
	if err != nil {
		return nil, false, err
	}
	refunds, err := r.refundRepo.ListByPurchase(ctx, purchaseID)
	if err != nil {
		return nil, false, err
	}

	snap := ledger.Reconcile(purchase, payments, refunds, asOf)
	completed := ledger.Apply(purchase, snap)

	if err := r.purchaseRepo.Save(ctx, purchase); err != nil {
		return nil, false, err
	}
	return purchase, completed, nil
}
