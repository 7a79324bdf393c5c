package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/safo-124/high-purchase-sub010/internal/events"
	"github.com/safo-124/high-purchase-sub010/internal/ledger"
	"github.com/safo-124/high-purchase-sub010/internal/model"
	"github.com/safo-124/high-purchase-sub010/internal/repository"
)

// --- DTOs ---

type RecordPaymentRequest struct {
	Amount    string `json:"amount" binding:"required"`
	Method    string `json:"method" binding:"required,oneof=CASH MOBILE_MONEY BANK_TRANSFER CARD WALLET"`
	Reference string `json:"reference"`
	Note      string `json:"note"`
}

type RejectPaymentRequest struct {
	Reason string `json:"reason" binding:"required"`
}

type PaymentFilter struct {
	BusinessID  uuid.UUID
	PurchaseID  string
	Method      string
	Unconfirmed bool
	Page        int
	Limit       int
}

type PaymentResponse struct {
	ID              string  `json:"id"`
	PurchaseID      string  `json:"purchase_id"`
	PurchaseNumber  string  `json:"purchase_number,omitempty"`
	Amount          string  `json:"amount"`
	Method          string  `json:"method"`
	Reference       string  `json:"reference,omitempty"`
	Note            string  `json:"note,omitempty"`
	RecordedBy      *string `json:"recorded_by"`
	RecordedByName  string  `json:"recorded_by_name,omitempty"`
	RecordedByRole  string  `json:"recorded_by_role"`
	Status          string  `json:"status"` // UNCONFIRMED, CONFIRMED, REJECTED
	ConfirmedBy     *string `json:"confirmed_by"`
	ConfirmedAt     *string `json:"confirmed_at"`
	RejectedAt      *string `json:"rejected_at"`
	RejectionReason string  `json:"rejection_reason,omitempty"`
	CreatedAt       string  `json:"created_at"`
}

// --- Interface ---

type PaymentService interface {
	// RecordPayment writes a payment against a purchase. Payments recorded
	// by an actor with confirm authority are confirmed immediately and
	// reconcile in the same transaction; everyone else's wait for review.
	RecordPayment(ctx context.Context, businessID uuid.UUID, purchaseID string, req RecordPaymentRequest, actor Actor) (PaymentResponse, error)
	ConfirmPayment(ctx context.Context, businessID uuid.UUID, paymentID string, actor Actor) (PaymentResponse, error)
	RejectPayment(ctx context.Context, businessID uuid.UUID, paymentID string, req RejectPaymentRequest, actor Actor) (PaymentResponse, error)
	GetPayment(ctx context.Context, businessID uuid.UUID, paymentID string) (PaymentResponse, error)
	ListPayments(ctx context.Context, filter PaymentFilter) ([]PaymentResponse, int64, error)
}

type paymentService struct {
	paymentRepo  repository.PaymentRepository
	purchaseRepo repository.PurchaseRepository
	refundRepo   repository.RefundRepository
	customerRepo repository.CustomerRepository
	auditRepo    repository.AuditRepository
	txManager    repository.TransactionManager
	publisher    events.Publisher
}

func NewPaymentService(
	paymentRepo repository.PaymentRepository,
	purchaseRepo repository.PurchaseRepository,
	refundRepo repository.RefundRepository,
	customerRepo repository.CustomerRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	publisher events.Publisher,
) PaymentService {
	return &paymentService{
		paymentRepo:  paymentRepo,
		purchaseRepo: purchaseRepo,
		refundRepo:   refundRepo,
		customerRepo: customerRepo,
		auditRepo:    auditRepo,
		txManager:    txManager,
		publisher:    publisher,
	}
}

func (s *paymentService) reconciler() *reconciler {
	return &reconciler{purchaseRepo: s.purchaseRepo, paymentRepo: s.paymentRepo, refundRepo: s.refundRepo}
}

func (s *paymentService) RecordPayment(ctx context.Context, businessID uuid.UUID, purchaseID string, req RecordPaymentRequest, actor Actor) (PaymentResponse, error) {
	pid, err := parseUUID("purchase_id", purchaseID)
	if err != nil {
		return PaymentResponse{}, err
	}
	amount, err := parseAmount("amount", req.Amount)
	if err != nil {
		return PaymentResponse{}, err
	}

	var payment *model.Payment
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		purchase, err := s.purchaseRepo.FindByIDForUpdate(txCtx, pid)
		if err != nil {
			return notFound(err, "purchase", purchaseID)
		}
		if purchase.BusinessID != businessID {
			return &ledger.NotFoundError{Entity: "purchase", Key: purchaseID}
		}

		// Strict rule: the amount must fit in the outstanding balance,
		// whether or not this payment will be confirmed immediately. A
		// completed purchase has zero outstanding and rejects everything.
		if err := ledger.CheckPaymentAmount(purchase.OutstandingBalance, amount); err != nil {
			return err
		}

		if req.Method == model.PaymentMethodWallet {
			if err := s.debitWallet(txCtx, purchase.CustomerID, amount, purchase.Number); err != nil {
				return err
			}
		}

		now := time.Now()
		userID := actor.UserID
		payment = &model.Payment{
			PurchaseID:       purchase.ID,
			Amount:           amount,
			Method:           req.Method,
			Reference:        req.Reference,
			Note:             req.Note,
			RecordedByUserID: &userID,
			RecordedByRole:   actor.Role,
		}
		if actor.CanConfirm() {
			payment.IsConfirmed = true
			payment.ConfirmedBy = &userID
			payment.ConfirmedAt = &now
		}
		if err := s.paymentRepo.Create(txCtx, payment); err != nil {
			return err
		}

		if payment.Counts() {
			updated, completed, err := s.reconciler().recalculate(txCtx, purchase.ID, now)
			if err != nil {
				return err
			}
			if completed && s.publisher != nil {
				s.publisher.Publish(events.TypePurchaseCompleted, map[string]string{
					"purchase_id": updated.ID.String(),
					"number":      updated.Number,
				})
			}
		}

		return writeAudit(txCtx, s.auditRepo, actor, model.ActionRecordPayment,
			payment.ID.String(), purchase.Number, map[string]interface{}{
				"amount":    amount.StringFixed(2),
				"method":    req.Method,
				"confirmed": payment.IsConfirmed,
			})
	})
	if err != nil {
		return PaymentResponse{}, err
	}

	if s.publisher != nil {
		eventType := events.TypePaymentRecorded
		if payment.IsConfirmed {
			eventType = events.TypePaymentConfirmed
		}
		s.publisher.Publish(eventType, map[string]string{
			"payment_id":  payment.ID.String(),
			"purchase_id": payment.PurchaseID.String(),
			"amount":      payment.Amount.StringFixed(2),
		})
	}

	return s.GetPayment(ctx, businessID, payment.ID.String())
}

// debitWallet moves funds out of the customer wallet under a row lock so
// two concurrent debits cannot both pass the balance check.
func (s *paymentService) debitWallet(ctx context.Context, customerID uuid.UUID, amount decimal.Decimal, reference string) error {
	customer, err := s.customerRepo.FindByIDForUpdate(ctx, customerID)
	if err != nil {
		return notFound(err, "customer", customerID.String())
	}
	if customer.WalletBalance.LessThan(amount) {
		return &ledger.ValidationError{Field: "amount", Message: "insufficient wallet balance"}
	}
	customer.WalletBalance = customer.WalletBalance.Sub(amount)
	if err := s.customerRepo.Save(ctx, customer); err != nil {
		return err
	}
	return s.customerRepo.CreateWalletTransaction(ctx, &model.WalletTransaction{
		CustomerID:   customer.ID,
		Type:         model.WalletTxPayment,
		Amount:       amount.Neg(),
		BalanceAfter: customer.WalletBalance,
		Reference:    reference,
	})
}

func (s *paymentService) ConfirmPayment(ctx context.Context, businessID uuid.UUID, paymentID string, actor Actor) (PaymentResponse, error) {
	id, err := parseUUID("payment_id", paymentID)
	if err != nil {
		return PaymentResponse{}, err
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		// Lock order: purchase row first, then mutate the payment, so
		// confirmation serializes with every other reconciliation.
		payment, err := s.paymentRepo.FindByID(txCtx, id)
		if err != nil {
			return notFound(err, "payment", paymentID)
		}
		purchase, err := s.purchaseRepo.FindByIDForUpdate(txCtx, payment.PurchaseID)
		if err != nil {
			return err
		}
		if purchase.BusinessID != businessID {
			return &ledger.NotFoundError{Entity: "payment", Key: paymentID}
		}

		// Reload under the lock: the payment may have been decided while
		// we waited for the purchase row.
		payment, err = s.paymentRepo.FindByID(txCtx, id)
		if err != nil {
			return err
		}

		now := time.Now()
		if err := ledger.ConfirmPayment(payment, actor.UserID, now); err != nil {
			return err
		}
		if err := ledger.CheckPaymentAmount(purchase.OutstandingBalance, payment.Amount); err != nil {
			return err
		}
		if err := s.paymentRepo.Save(txCtx, payment); err != nil {
			return err
		}

		updated, completed, err := s.reconciler().recalculate(txCtx, purchase.ID, now)
		if err != nil {
			return err
		}
		if completed && s.publisher != nil {
			s.publisher.Publish(events.TypePurchaseCompleted, map[string]string{
				"purchase_id": updated.ID.String(),
				"number":      updated.Number,
			})
		}

		return writeAudit(txCtx, s.auditRepo, actor, model.ActionConfirmPayment,
			payment.ID.String(), purchase.Number, map[string]interface{}{
				"amount": payment.Amount.StringFixed(2),
			})
	})
	if err != nil {
		return PaymentResponse{}, err
	}

	if s.publisher != nil {
		s.publisher.Publish(events.TypePaymentConfirmed, map[string]string{"payment_id": paymentID})
	}
	return s.GetPayment(ctx, businessID, paymentID)
}

func (s *paymentService) RejectPayment(ctx context.Context, businessID uuid.UUID, paymentID string, req RejectPaymentRequest, actor Actor) (PaymentResponse, error) {
	id, err := parseUUID("payment_id", paymentID)
	if err != nil {
		return PaymentResponse{}, err
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		payment, err := s.paymentRepo.FindByID(txCtx, id)
		if err != nil {
			return notFound(err, "payment", paymentID)
		}
		purchase, err := s.purchaseRepo.FindByIDForUpdate(txCtx, payment.PurchaseID)
		if err != nil {
			return err
		}
		if purchase.BusinessID != businessID {
			return &ledger.NotFoundError{Entity: "payment", Key: paymentID}
		}

		payment, err = s.paymentRepo.FindByID(txCtx, id)
		if err != nil {
			return err
		}

		if err := ledger.RejectPayment(payment, actor.UserID, time.Now(), req.Reason); err != nil {
			return err
		}
		if err := s.paymentRepo.Save(txCtx, payment); err != nil {
			return err
		}

		// A wallet payment that never counted still moved funds out at
		// record time; rejection returns them.
		if payment.Method == model.PaymentMethodWallet {
			if err := s.reverseWalletDebit(txCtx, purchase.CustomerID, payment.Amount, purchase.Number); err != nil {
				return err
			}
		}

		return writeAudit(txCtx, s.auditRepo, actor, model.ActionRejectPayment,
			payment.ID.String(), purchase.Number, map[string]interface{}{
				"amount": payment.Amount.StringFixed(2),
				"reason": req.Reason,
			})
	})
	if err != nil {
		return PaymentResponse{}, err
	}

	if s.publisher != nil {
		s.publisher.Publish(events.TypePaymentRejected, map[string]string{"payment_id": paymentID})
	}
	return s.GetPayment(ctx, businessID, paymentID)
}

// reverseWalletDebit puts back the funds a rejected wallet payment took
// out at record time. It is a reversal, not a refund credit, so the
// statement keeps the two distinguishable.
func (s *paymentService) reverseWalletDebit(ctx context.Context, customerID uuid.UUID, amount decimal.Decimal, reference string) error {
	customer, err := s.customerRepo.FindByIDForUpdate(ctx, customerID)
	if err != nil {
		return err
	}
	customer.WalletBalance = customer.WalletBalance.Add(amount)
	if err := s.customerRepo.Save(ctx, customer); err != nil {
		return err
	}
	return s.customerRepo.CreateWalletTransaction(ctx, &model.WalletTransaction{
		CustomerID:   customer.ID,
		Type:         model.WalletTxPaymentReversal,
		Amount:       amount,
		BalanceAfter: customer.WalletBalance,
		Reference:    reference,
	})
}

func (s *paymentService) GetPayment(ctx context.Context, businessID uuid.UUID, paymentID string) (PaymentResponse, error) {
	id, err := parseUUID("payment_id", paymentID)
	if err != nil {
		return PaymentResponse{}, err
	}
	payment, err := s.paymentRepo.FindByIDWithRelations(ctx, id)
	if err != nil {
		return PaymentResponse{}, notFound(err, "payment", paymentID)
	}
	if payment.Purchase == nil || payment.Purchase.BusinessID != businessID {
		return PaymentResponse{}, &ledger.NotFoundError{Entity: "payment", Key: paymentID}
	}
	return toPaymentResponse(payment), nil
}

func (s *paymentService) ListPayments(ctx context.Context, filter PaymentFilter) ([]PaymentResponse, int64, error) {
	repoFilter := repository.PaymentListFilter{
		BusinessID:  filter.BusinessID,
		Method:      filter.Method,
		Unconfirmed: filter.Unconfirmed,
		Page:        filter.Page,
		Limit:       filter.Limit,
	}
	if filter.PurchaseID != "" {
		id, err := parseUUID("purchase_id", filter.PurchaseID)
		if err != nil {
			return nil, 0, err
		}
		repoFilter.PurchaseID = &id
	}

	payments, total, err := s.paymentRepo.List(ctx, repoFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]PaymentResponse, 0, len(payments))
	for i := range payments {
		responses = append(responses, toPaymentResponse(&payments[i]))
	}
	return responses, total, nil
}

func toPaymentResponse(p *model.Payment) PaymentResponse {
	resp := PaymentResponse{
		ID:              p.ID.String(),
		PurchaseID:      p.PurchaseID.String(),
		Amount:          p.Amount.StringFixed(2),
		Method:          p.Method,
		Reference:       p.Reference,
		Note:            p.Note,
		RecordedByRole:  p.RecordedByRole,
		Status:          paymentStatus(p),
		RejectionReason: p.RejectionReason,
		CreatedAt:       p.CreatedAt.Format(time.RFC3339),
	}
	if p.Purchase != nil {
		resp.PurchaseNumber = p.Purchase.Number
	}
	if p.RecordedByUserID != nil {
		id := p.RecordedByUserID.String()
		resp.RecordedBy = &id
	}
	if p.RecordedBy != nil {
		resp.RecordedByName = p.RecordedBy.Username
	}
	if p.ConfirmedBy != nil {
		id := p.ConfirmedBy.String()
		resp.ConfirmedBy = &id
	}
	if p.ConfirmedAt != nil {
		at := p.ConfirmedAt.Format(time.RFC3339)
		resp.ConfirmedAt = &at
	}
	if p.RejectedAt != nil {
		at := p.RejectedAt.Format(time.RFC3339)
		resp.RejectedAt = &at
	}
	return resp
}

func paymentStatus(p *model.Payment) string {
	switch {
	case p.RejectedAt != nil:
		return "REJECTED"
	case p.IsConfirmed:
		return "CONFIRMED"
	default:
		return "UNCONFIRMED"
	}
}
