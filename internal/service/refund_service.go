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

type RefundItemRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
	Amount    string `json:"amount" binding:"required"`
}

type CreateRefundRequest struct {
	PurchaseID   string              `json:"purchase_id" binding:"required"`
	Reason       string              `json:"reason" binding:"required,oneof=PRODUCT_DEFECT WRONG_ITEM DUPLICATE_PAYMENT CONTRACT_CANCELLED CUSTOMER_REQUEST OVERCHARGE OTHER"`
	CustomReason string              `json:"custom_reason"`
	Amount       string              `json:"amount" binding:"required"`
	Method       string              `json:"method" binding:"required,oneof=CASH MOBILE_MONEY BANK_TRANSFER CARD WALLET"`
	Note         string              `json:"note"`
	Items        []RefundItemRequest `json:"items" binding:"omitempty,dive"`
}

type ProcessRefundRequest struct {
	// External disbursement reference. Leave empty for WALLET refunds:
	// the wallet channel supplies its own sentinel.
	TransactionRef string `json:"transaction_ref"`
}

type RejectRefundRequest struct {
	Reason string `json:"reason" binding:"required"`
}

type RefundFilter struct {
	BusinessID uuid.UUID
	Status     string
	PurchaseID string
	CustomerID string
	Page       int
	Limit      int
}

type RefundResponse struct {
	ID              string  `json:"id"`
	Number          string  `json:"number"`
	PurchaseID      string  `json:"purchase_id"`
	PurchaseNumber  string  `json:"purchase_number,omitempty"`
	CustomerID      string  `json:"customer_id"`
	CustomerName    string  `json:"customer_name,omitempty"`
	Reason          string  `json:"reason"`
	CustomReason    string  `json:"custom_reason,omitempty"`
	Amount          string  `json:"amount"`
	Method          string  `json:"method"`
	Note            string  `json:"note,omitempty"`
	Status          string  `json:"status"`
	RequestedBy     *string `json:"requested_by"`
	ApprovedBy      *string `json:"approved_by"`
	ApprovedAt      *string `json:"approved_at"`
	ProcessedAt     *string `json:"processed_at"`
	TransactionRef  string  `json:"transaction_ref,omitempty"`
	RejectedAt      *string `json:"rejected_at"`
	RejectionReason string  `json:"rejection_reason,omitempty"`
	CreatedAt       string  `json:"created_at"`
}

// --- Interface ---

type RefundService interface {
	// CreateRefundRequest opens a PENDING refund. The amount is checked
	// against the purchase total net of refunds already processed or in
	// flight, so approval can never be blocked by a race.
	CreateRefundRequest(ctx context.Context, businessID uuid.UUID, req CreateRefundRequest, actor Actor) (RefundResponse, error)
	ApproveRefund(ctx context.Context, businessID uuid.UUID, refundID string, actor Actor) (RefundResponse, error)
	// ProcessRefund settles an APPROVED refund. WALLET refunds credit the
	// customer wallet atomically; all channels reconcile the purchase,
	// which may reopen a COMPLETED one.
	ProcessRefund(ctx context.Context, businessID uuid.UUID, refundID string, req ProcessRefundRequest, actor Actor) (RefundResponse, error)
	RejectRefund(ctx context.Context, businessID uuid.UUID, refundID string, req RejectRefundRequest, actor Actor) (RefundResponse, error)
	GetRefund(ctx context.Context, businessID uuid.UUID, refundID string) (RefundResponse, error)
	ListRefunds(ctx context.Context, filter RefundFilter) ([]RefundResponse, int64, error)
}

type refundService struct {
	refundRepo   repository.RefundRepository
	purchaseRepo repository.PurchaseRepository
	paymentRepo  repository.PaymentRepository
	customerRepo repository.CustomerRepository
	businessRepo repository.BusinessRepository
	auditRepo    repository.AuditRepository
	txManager    repository.TransactionManager
	publisher    events.Publisher
}

func NewRefundService(
	refundRepo repository.RefundRepository,
	purchaseRepo repository.PurchaseRepository,
	paymentRepo repository.PaymentRepository,
	customerRepo repository.CustomerRepository,
	businessRepo repository.BusinessRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	publisher events.Publisher,
) RefundService {
	return &refundService{
		refundRepo:   refundRepo,
		purchaseRepo: purchaseRepo,
		paymentRepo:  paymentRepo,
		customerRepo: customerRepo,
		businessRepo: businessRepo,
		auditRepo:    auditRepo,
		txManager:    txManager,
		publisher:    publisher,
	}
}

func (s *refundService) reconciler() *reconciler {
	return &reconciler{purchaseRepo: s.purchaseRepo, paymentRepo: s.paymentRepo, refundRepo: s.refundRepo}
}

func (s *refundService) CreateRefundRequest(ctx context.Context, businessID uuid.UUID, req CreateRefundRequest, actor Actor) (RefundResponse, error) {
	pid, err := parseUUID("purchase_id", req.PurchaseID)
	if err != nil {
		return RefundResponse{}, err
	}
	amount, err := parseAmount("amount", req.Amount)
	if err != nil {
		return RefundResponse{}, err
	}
	if req.Reason == model.RefundReasonOther && req.CustomReason == "" {
		return RefundResponse{}, &ledger.ValidationError{Field: "custom_reason", Message: "required when reason is OTHER"}
	}

	business, err := s.businessRepo.FindByID(ctx, businessID)
	if err != nil {
		return RefundResponse{}, notFound(err, "business", businessID.String())
	}

	var refund *model.Refund
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		purchase, err := s.purchaseRepo.FindByIDForUpdate(txCtx, pid)
		if err != nil {
			return notFound(err, "purchase", req.PurchaseID)
		}
		if purchase.BusinessID != businessID {
			return &ledger.NotFoundError{Entity: "purchase", Key: req.PurchaseID}
		}

		refunds, err := s.refundRepo.ListByPurchase(txCtx, purchase.ID)
		if err != nil {
			return err
		}
		committed := ledger.RefundCommitted(refunds)
		if err := ledger.CheckRefundAmount(purchase.TotalAmount, committed, amount); err != nil {
			return err
		}

		items, err := buildRefundItems(req.Items)
		if err != nil {
			return err
		}

		number, err := s.refundRepo.AllocateNumber(txCtx, "RF-"+business.Code+"-")
		if err != nil {
			return err
		}

		userID := actor.UserID
		refund = &model.Refund{
			BusinessID:   businessID,
			Number:       number,
			PurchaseID:   purchase.ID,
			CustomerID:   purchase.CustomerID,
			Reason:       req.Reason,
			CustomReason: req.CustomReason,
			Amount:       amount,
			Method:       req.Method,
			Note:         req.Note,
			Items:        items,
			Status:       model.RefundStatusPending,
			RequestedBy:  &userID,
		}
		if err := s.refundRepo.Create(txCtx, refund); err != nil {
			return err
		}

		return writeAudit(txCtx, s.auditRepo, actor, model.ActionCreateRefundRequest,
			refund.ID.String(), refund.Number, map[string]interface{}{
				"purchase_id": purchase.ID.String(),
				"amount":      amount.StringFixed(2),
				"reason":      req.Reason,
			})
	})
	if err != nil {
		return RefundResponse{}, err
	}

	if s.publisher != nil {
		s.publisher.Publish(events.TypeRefundRequested, map[string]string{
			"refund_id": refund.ID.String(),
			"number":    refund.Number,
			"amount":    refund.Amount.StringFixed(2),
		})
	}
	return s.GetRefund(ctx, businessID, refund.ID.String())
}

func buildRefundItems(reqs []RefundItemRequest) ([]model.RefundItem, error) {
	items := make([]model.RefundItem, 0, len(reqs))
	for _, ir := range reqs {
		productID, err := parseUUID("items.product_id", ir.ProductID)
		if err != nil {
			return nil, err
		}
		amount, err := parseAmount("items.amount", ir.Amount)
		if err != nil {
			return nil, err
		}
		if !amount.IsPositive() {
			return nil, &ledger.ValidationError{Field: "items.amount", Message: "must be greater than zero"}
		}
		items = append(items, model.RefundItem{
			ProductID: productID,
			Quantity:  ir.Quantity,
			Amount:    amount,
		})
	}
	return items, nil
}

func (s *refundService) ApproveRefund(ctx context.Context, businessID uuid.UUID, refundID string, actor Actor) (RefundResponse, error) {
	id, err := parseUUID("refund_id", refundID)
	if err != nil {
		return RefundResponse{}, err
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		refund, err := s.refundRepo.FindByID(txCtx, id)
		if err != nil {
			return notFound(err, "refund", refundID)
		}
		if refund.BusinessID != businessID {
			return &ledger.NotFoundError{Entity: "refund", Key: refundID}
		}

		if err := ledger.ApproveRefund(refund, actor.UserID, time.Now()); err != nil {
			return err
		}
		if err := s.refundRepo.Save(txCtx, refund); err != nil {
			return err
		}

		return writeAudit(txCtx, s.auditRepo, actor, model.ActionApproveRefund,
			refund.ID.String(), refund.Number, map[string]interface{}{
				"amount": refund.Amount.StringFixed(2),
			})
	})
	if err != nil {
		return RefundResponse{}, err
	}
	return s.GetRefund(ctx, businessID, refundID)
}

func (s *refundService) ProcessRefund(ctx context.Context, businessID uuid.UUID, refundID string, req ProcessRefundRequest, actor Actor) (RefundResponse, error) {
	id, err := parseUUID("refund_id", refundID)
	if err != nil {
		return RefundResponse{}, err
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		refund, err := s.refundRepo.FindByID(txCtx, id)
		if err != nil {
			return notFound(err, "refund", refundID)
		}
		if refund.BusinessID != businessID {
			return &ledger.NotFoundError{Entity: "refund", Key: refundID}
		}

		// Lock the purchase before settling so processing serializes with
		// payments against the same purchase.
		purchase, err := s.purchaseRepo.FindByIDForUpdate(txCtx, refund.PurchaseID)
		if err != nil {
			return err
		}

		txRef := req.TransactionRef
		if refund.Method == model.PaymentMethodWallet {
			txRef = model.RefundChannelWallet
		}

		now := time.Now()
		if err := ledger.ProcessRefund(refund, actor.UserID, now, txRef); err != nil {
			return err
		}

		if txRef == model.RefundChannelWallet {
			if err := s.creditWallet(txCtx, refund.CustomerID, refund.Amount, refund.Number); err != nil {
				return err
			}
		}

		if err := s.refundRepo.Save(txCtx, refund); err != nil {
			return err
		}

		updated, _, err := s.reconciler().recalculate(txCtx, purchase.ID, now)
		if err != nil {
			return err
		}

		return writeAudit(txCtx, s.auditRepo, actor, model.ActionProcessRefund,
			refund.ID.String(), refund.Number, map[string]interface{}{
				"amount":          refund.Amount.StringFixed(2),
				"transaction_ref": txRef,
				"purchase_status": updated.Status,
			})
	})
	if err != nil {
		return RefundResponse{}, err
	}

	if s.publisher != nil {
		s.publisher.Publish(events.TypeRefundProcessed, map[string]string{"refund_id": refundID})
	}
	return s.GetRefund(ctx, businessID, refundID)
}

func (s *refundService) creditWallet(ctx context.Context, customerID uuid.UUID, amount decimal.Decimal, reference string) error {
	customer, err := s.customerRepo.FindByIDForUpdate(ctx, customerID)
	if err != nil {
		return notFound(err, "customer", customerID.String())
	}
	customer.WalletBalance = customer.WalletBalance.Add(amount)
	if err := s.customerRepo.Save(ctx, customer); err != nil {
		return err
	}
	return s.customerRepo.CreateWalletTransaction(ctx, &model.WalletTransaction{
		CustomerID:   customer.ID,
		Type:         model.WalletTxRefundCredit,
		Amount:       amount,
		BalanceAfter: customer.WalletBalance,
		Reference:    reference,
	})
}

func (s *refundService) RejectRefund(ctx context.Context, businessID uuid.UUID, refundID string, req RejectRefundRequest, actor Actor) (RefundResponse, error) {
	id, err := parseUUID("refund_id", refundID)
	if err != nil {
		return RefundResponse{}, err
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		refund, err := s.refundRepo.FindByID(txCtx, id)
		if err != nil {
			return notFound(err, "refund", refundID)
		}
		if refund.BusinessID != businessID {
			return &ledger.NotFoundError{Entity: "refund", Key: refundID}
		}

		if err := ledger.RejectRefund(refund, actor.UserID, time.Now(), req.Reason); err != nil {
			return err
		}
		if err := s.refundRepo.Save(txCtx, refund); err != nil {
			return err
		}

		return writeAudit(txCtx, s.auditRepo, actor, model.ActionRejectRefund,
			refund.ID.String(), refund.Number, map[string]interface{}{
				"reason": req.Reason,
			})
	})
	if err != nil {
		return RefundResponse{}, err
	}
	return s.GetRefund(ctx, businessID, refundID)
}

func (s *refundService) GetRefund(ctx context.Context, businessID uuid.UUID, refundID string) (RefundResponse, error) {
	id, err := parseUUID("refund_id", refundID)
	if err != nil {
		return RefundResponse{}, err
	}
	refund, err := s.refundRepo.FindByIDWithRelations(ctx, id)
	if err != nil {
		return RefundResponse{}, notFound(err, "refund", refundID)
	}
	if refund.BusinessID != businessID {
		return RefundResponse{}, &ledger.NotFoundError{Entity: "refund", Key: refundID}
	}
	return toRefundResponse(refund), nil
}

func (s *refundService) ListRefunds(ctx context.Context, filter RefundFilter) ([]RefundResponse, int64, error) {
	repoFilter := repository.RefundListFilter{
		BusinessID: filter.BusinessID,
		Status:     filter.Status,
		Page:       filter.Page,
		Limit:      filter.Limit,
	}
	if filter.PurchaseID != "" {
		id, err := parseUUID("purchase_id", filter.PurchaseID)
		if err != nil {
			return nil, 0, err
		}
		repoFilter.PurchaseID = &id
	}
	if filter.CustomerID != "" {
		id, err := parseUUID("customer_id", filter.CustomerID)
		if err != nil {
			return nil, 0, err
		}
		repoFilter.CustomerID = &id
	}

	refunds, total, err := s.refundRepo.List(ctx, repoFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]RefundResponse, 0, len(refunds))
	for i := range refunds {
		responses = append(responses, toRefundResponse(&refunds[i]))
	}
	return responses, total, nil
}

func toRefundResponse(r *model.Refund) RefundResponse {
	resp := RefundResponse{
		ID:              r.ID.String(),
		Number:          r.Number,
		PurchaseID:      r.PurchaseID.String(),
		CustomerID:      r.CustomerID.String(),
		Reason:          r.Reason,
		CustomReason:    r.CustomReason,
		Amount:          r.Amount.StringFixed(2),
		Method:          r.Method,
		Note:            r.Note,
		Status:          r.Status,
		TransactionRef:  r.TransactionRef,
		RejectionReason: r.RejectionReason,
		CreatedAt:       r.CreatedAt.Format(time.RFC3339),
	}
	if r.Purchase != nil {
		resp.PurchaseNumber = r.Purchase.Number
	}
	if r.Customer != nil {
		resp.CustomerName = r.Customer.Name
	}
	if r.RequestedBy != nil {
		id := r.RequestedBy.String()
		resp.RequestedBy = &id
	}
	if r.ApprovedBy != nil {
		id := r.ApprovedBy.String()
		resp.ApprovedBy = &id
	}
	if r.ApprovedAt != nil {
		at := r.ApprovedAt.Format(time.RFC3339)
		resp.ApprovedAt = &at
	}
	if r.ProcessedAt != nil {
		at := r.ProcessedAt.Format(time.RFC3339)
		resp.ProcessedAt = &at
	}
	if r.RejectedAt != nil {
		at := r.RejectedAt.Format(time.RFC3339)
		resp.RejectedAt = &at
	}
	return resp
}
