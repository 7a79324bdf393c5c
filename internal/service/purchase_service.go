package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/safo-124/high-purchase-sub010/internal/events"
	"github.com/safo-124/high-purchase-sub010/internal/ledger"
	"github.com/safo-124/high-purchase-sub010/internal/model"
	"github.com/safo-124/high-purchase-sub010/internal/repository"
)

// --- DTOs ---

type CreatePurchaseItemRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
	UnitPrice string `json:"unit_price"` // optional, defaults to the catalog price
}

type CreatePurchaseRequest struct {
	CustomerID        string                      `json:"customer_id" binding:"required"`
	ShopID            string                      `json:"shop_id" binding:"required"`
	Type              string                      `json:"type" binding:"required,oneof=CASH LAYAWAY CREDIT"`
	Items             []CreatePurchaseItemRequest `json:"items" binding:"required,min=1,dive"`
	DownPayment       string                      `json:"down_payment"`        // optional, defaults to 0
	DownPaymentMethod string                      `json:"down_payment_method"` // optional, defaults to CASH
	Installments      int                         `json:"installments"`        // optional, defaults to the business policy
	TenorDays         int                         `json:"tenor_days"`          // optional, defaults to the business policy
	StartDate         string                      `json:"start_date"`          // optional YYYY-MM-DD, defaults to today
	Note              string                      `json:"note"`
}

type PurchaseFilter struct {
	BusinessID uuid.UUID
	Status     string
	Type       string
	ShopID     string
	CustomerID string
	Number     string
	Page       int
	Limit      int
}

type PurchaseItemResponse struct {
	ID        string `json:"id"`
	ProductID string `json:"product_id"`
	SKU       string `json:"sku,omitempty"`
	Name      string `json:"name,omitempty"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
	LineTotal string `json:"line_total"`
}

type PurchaseResponse struct {
	ID                 string                 `json:"id"`
	Number             string                 `json:"number"`
	CustomerID         string                 `json:"customer_id"`
	CustomerName       string                 `json:"customer_name,omitempty"`
	CustomerPhone      string                 `json:"customer_phone,omitempty"`
	ShopID             string                 `json:"shop_id"`
	ShopName           string                 `json:"shop_name,omitempty"`
	Type               string                 `json:"type"`
	Items              []PurchaseItemResponse `json:"items,omitempty"`
	Subtotal           string                 `json:"subtotal"`
	InterestAmount     string                 `json:"interest_amount"`
	TotalAmount        string                 `json:"total_amount"`
	DownPayment        string                 `json:"down_payment"`
	Installments       int                    `json:"installments"`
	StartDate          string                 `json:"start_date"`
	DueDate            string                 `json:"due_date"`
	AmountPaid         string                 `json:"amount_paid"`
	RefundedAmount     string                 `json:"refunded_amount"`
	OutstandingBalance string                 `json:"outstanding_balance"`
	Status             string                 `json:"status"`
	DeliveryStatus     *string                `json:"delivery_status"`
	WaybillEligible    bool                   `json:"waybill_eligible"`
	Note               string                 `json:"note,omitempty"`
	CreatedAt          string                 `json:"created_at"`
}

// --- Interface ---

type PurchaseService interface {
	CreatePurchase(ctx context.Context, businessID uuid.UUID, req CreatePurchaseRequest, actor Actor) (PurchaseResponse, error)
	GetPurchase(ctx context.Context, businessID uuid.UUID, id string) (PurchaseResponse, error)
	ListPurchases(ctx context.Context, filter PurchaseFilter) ([]PurchaseResponse, int64, error)
	// MarkOverdue sweeps purchases past their due date with money still
	// owing and re-derives their status. Returns how many moved.
	MarkOverdue(ctx context.Context, businessID uuid.UUID, asOf time.Time, actor Actor) (int, error)
}

type purchaseService struct {
	purchaseRepo repository.PurchaseRepository
	paymentRepo  repository.PaymentRepository
	refundRepo   repository.RefundRepository
	customerRepo repository.CustomerRepository
	shopRepo     repository.ShopRepository
	productRepo  repository.ProductRepository
	businessRepo repository.BusinessRepository
	auditRepo    repository.AuditRepository
	txManager    repository.TransactionManager
	publisher    events.Publisher
}

func NewPurchaseService(
	purchaseRepo repository.PurchaseRepository,
	paymentRepo repository.PaymentRepository,
	refundRepo repository.RefundRepository,
	customerRepo repository.CustomerRepository,
	shopRepo repository.ShopRepository,
	productRepo repository.ProductRepository,
	businessRepo repository.BusinessRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	publisher events.Publisher,
) PurchaseService {
	return &purchaseService{
		purchaseRepo: purchaseRepo,
		paymentRepo:  paymentRepo,
		refundRepo:   refundRepo,
		customerRepo: customerRepo,
		shopRepo:     shopRepo,
		productRepo:  productRepo,
		businessRepo: businessRepo,
		auditRepo:    auditRepo,
		txManager:    txManager,
		publisher:    publisher,
	}
}

func (s *purchaseService) reconciler() *reconciler {
	return &reconciler{purchaseRepo: s.purchaseRepo, paymentRepo: s.paymentRepo, refundRepo: s.refundRepo}
}

func (s *purchaseService) CreatePurchase(ctx context.Context, businessID uuid.UUID, req CreatePurchaseRequest, actor Actor) (PurchaseResponse, error) {
	business, err := s.businessRepo.FindByID(ctx, businessID)
	if err != nil {
		return PurchaseResponse{}, notFound(err, "business", businessID.String())
	}

	customerID, err := parseUUID("customer_id", req.CustomerID)
	if err != nil {
		return PurchaseResponse{}, err
	}
	customer, err := s.customerRepo.FindByID(ctx, customerID)
	if err != nil {
		return PurchaseResponse{}, notFound(err, "customer", req.CustomerID)
	}
	if customer.BusinessID != businessID {
		return PurchaseResponse{}, &ledger.NotFoundError{Entity: "customer", Key: req.CustomerID}
	}

	shopID, err := parseUUID("shop_id", req.ShopID)
	if err != nil {
		return PurchaseResponse{}, err
	}
	shop, err := s.shopRepo.FindByID(ctx, shopID)
	if err != nil {
		return PurchaseResponse{}, notFound(err, "shop", req.ShopID)
	}
	if shop.BusinessID != businessID {
		return PurchaseResponse{}, &ledger.NotFoundError{Entity: "shop", Key: req.ShopID}
	}

	items, subtotal, err := s.buildItems(ctx, businessID, req.Items)
	if err != nil {
		return PurchaseResponse{}, err
	}

	installments := req.Installments
	if installments < 1 {
		installments = business.DefaultInstallments
	}
	interest := ledger.RoundCurrency(ledger.ComputeInterest(subtotal, req.Type, ledger.Policy{
		InterestType: business.InterestType,
		Rate:         business.InterestRate,
		Installments: installments,
	}))
	total := subtotal.Add(interest)

	downPayment := decimal.Zero
	if req.DownPayment != "" {
		downPayment, err = parseAmount("down_payment", req.DownPayment)
		if err != nil {
			return PurchaseResponse{}, err
		}
		if downPayment.IsNegative() {
			return PurchaseResponse{}, &ledger.ValidationError{Field: "down_payment", Message: "must not be negative"}
		}
		if downPayment.GreaterThan(total) {
			return PurchaseResponse{}, &ledger.OverpaymentError{Outstanding: total, Attempted: downPayment}
		}
	}

	startDate := time.Now().Truncate(24 * time.Hour)
	if req.StartDate != "" {
		startDate, err = time.Parse("2006-01-02", req.StartDate)
		if err != nil {
			return PurchaseResponse{}, &ledger.ValidationError{Field: "start_date", Message: "must be YYYY-MM-DD"}
		}
	}
	tenorDays := req.TenorDays
	if tenorDays < 1 {
		tenorDays = business.DefaultTenorDays
	}
	dueDate := startDate.AddDate(0, 0, tenorDays)

	purchase := &model.Purchase{
		BusinessID:         businessID,
		CustomerID:         customer.ID,
		ShopID:             shop.ID,
		Type:               req.Type,
		Items:              items,
		Subtotal:           subtotal,
		InterestAmount:     interest,
		TotalAmount:        total,
		DownPayment:        downPayment,
		Installments:       installments,
		StartDate:          startDate,
		DueDate:            dueDate,
		Note:               req.Note,
		OutstandingBalance: total,
		Status:             model.PurchaseStatusPending,
	}
	if purchase.HasDelivery() {
		pending := model.DeliveryStatusPending
		purchase.DeliveryStatus = &pending
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		number, err := s.purchaseRepo.AllocateNumber(txCtx, "HP-"+business.Code+"-")
		if err != nil {
			return err
		}
		purchase.Number = number

		if err := s.purchaseRepo.Create(txCtx, purchase); err != nil {
			return err
		}

		// The down payment is cash in hand at the point of sale, so it
		// lands confirmed regardless of who recorded it.
		if downPayment.IsPositive() {
			method := req.DownPaymentMethod
			if method == "" {
				method = model.PaymentMethodCash
			}
			now := time.Now()
			userID := actor.UserID
			payment := &model.Payment{
				PurchaseID:       purchase.ID,
				Amount:           downPayment,
				Method:           method,
				Note:             "down payment",
				RecordedByUserID: &userID,
				RecordedByRole:   actor.Role,
				IsConfirmed:      true,
				ConfirmedBy:      &userID,
				ConfirmedAt:      &now,
			}
			if err := s.paymentRepo.Create(txCtx, payment); err != nil {
				return err
			}
		}

		updated, completed, err := s.reconciler().recalculate(txCtx, purchase.ID, time.Now())
		if err != nil {
			return err
		}
		*purchase = *updated
		if completed && s.publisher != nil {
			s.publisher.Publish(events.TypePurchaseCompleted, map[string]string{
				"purchase_id": purchase.ID.String(),
				"number":      purchase.Number,
			})
		}

		return writeAudit(txCtx, s.auditRepo, actor, model.ActionCreatePurchase,
			purchase.ID.String(), purchase.Number, map[string]interface{}{
				"type":         purchase.Type,
				"total_amount": purchase.TotalAmount.StringFixed(2),
				"down_payment": downPayment.StringFixed(2),
				"customer_id":  customer.ID.String(),
				"shop_id":      shop.ID.String(),
			})
	})
	if err != nil {
		return PurchaseResponse{}, err
	}

	full, err := s.purchaseRepo.FindByIDWithItems(ctx, purchase.ID)
	if err != nil {
		return PurchaseResponse{}, err
	}
	return toPurchaseResponse(full), nil
}

// buildItems resolves and prices the line items, returning them with the
// rounded subtotal.
func (s *purchaseService) buildItems(ctx context.Context, businessID uuid.UUID, reqs []CreatePurchaseItemRequest) ([]model.PurchaseItem, decimal.Decimal, error) {
	items := make([]model.PurchaseItem, 0, len(reqs))
	subtotal := decimal.Zero

	for i, ir := range reqs {
		productID, err := parseUUID(fmt.Sprintf("items[%d].product_id", i), ir.ProductID)
		if err != nil {
			return nil, decimal.Zero, err
		}
		product, err := s.productRepo.FindByID(ctx, productID)
		if err != nil {
			return nil, decimal.Zero, notFound(err, "product", ir.ProductID)
		}
		if product.BusinessID != businessID {
			return nil, decimal.Zero, &ledger.NotFoundError{Entity: "product", Key: ir.ProductID}
		}
		if !product.IsActive {
			return nil, decimal.Zero, &ledger.ValidationError{
				Field:   fmt.Sprintf("items[%d].product_id", i),
				Message: "product is inactive",
			}
		}
		if ir.Quantity < 1 {
			return nil, decimal.Zero, &ledger.ValidationError{
				Field:   fmt.Sprintf("items[%d].quantity", i),
				Message: "must be at least 1",
			}
		}

		unitPrice := product.UnitPrice
		if ir.UnitPrice != "" {
			unitPrice, err = parseAmount(fmt.Sprintf("items[%d].unit_price", i), ir.UnitPrice)
			if err != nil {
				return nil, decimal.Zero, err
			}
			if unitPrice.IsNegative() {
				return nil, decimal.Zero, &ledger.ValidationError{
					Field:   fmt.Sprintf("items[%d].unit_price", i),
					Message: "must not be negative",
				}
			}
		}

		lineTotal := ledger.RoundCurrency(unitPrice.Mul(decimal.NewFromInt(int64(ir.Quantity))))
		subtotal = subtotal.Add(lineTotal)
		items = append(items, model.PurchaseItem{
			ProductID: product.ID,
			Quantity:  ir.Quantity,
			UnitPrice: unitPrice,
			LineTotal: lineTotal,
		})
	}

	return items, ledger.RoundCurrency(subtotal), nil
}

func (s *purchaseService) GetPurchase(ctx context.Context, businessID uuid.UUID, id string) (PurchaseResponse, error) {
	purchaseID, err := parseUUID("id", id)
	if err != nil {
		return PurchaseResponse{}, err
	}
	purchase, err := s.purchaseRepo.FindByIDWithItems(ctx, purchaseID)
	if err != nil {
		return PurchaseResponse{}, notFound(err, "purchase", id)
	}
	if purchase.BusinessID != businessID {
		return PurchaseResponse{}, &ledger.NotFoundError{Entity: "purchase", Key: id}
	}
	return toPurchaseResponse(purchase), nil
}

func (s *purchaseService) ListPurchases(ctx context.Context, filter PurchaseFilter) ([]PurchaseResponse, int64, error) {
	repoFilter := repository.PurchaseListFilter{
		BusinessID: filter.BusinessID,
		Status:     filter.Status,
		Type:       filter.Type,
		Number:     filter.Number,
		Page:       filter.Page,
		Limit:      filter.Limit,
	}
	if filter.ShopID != "" {
		id, err := parseUUID("shop_id", filter.ShopID)
		if err != nil {
			return nil, 0, err
		}
		repoFilter.ShopID = &id
	}
	if filter.CustomerID != "" {
		id, err := parseUUID("customer_id", filter.CustomerID)
		if err != nil {
			return nil, 0, err
		}
		repoFilter.CustomerID = &id
	}

	purchases, total, err := s.purchaseRepo.List(ctx, repoFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]PurchaseResponse, 0, len(purchases))
	for i := range purchases {
		responses = append(responses, toPurchaseResponse(&purchases[i]))
	}
	return responses, total, nil
}

func (s *purchaseService) MarkOverdue(ctx context.Context, businessID uuid.UUID, asOf time.Time, actor Actor) (int, error) {
	pastDue, err := s.purchaseRepo.ListPastDue(ctx, businessID, asOf)
	if err != nil {
		return 0, err
	}

	moved := 0
	for _, p := range pastDue {
		purchaseID := p.ID
		err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
			updated, _, err := s.reconciler().recalculate(txCtx, purchaseID, asOf)
			if err != nil {
				return err
			}
			if updated.Status != model.PurchaseStatusOverdue {
				return nil
			}
			moved++
			return writeAudit(txCtx, s.auditRepo, actor, model.ActionMarkPurchaseOverdue,
				updated.ID.String(), updated.Number, map[string]interface{}{
					"outstanding_balance": updated.OutstandingBalance.StringFixed(2),
					"due_date":            updated.DueDate.Format("2006-01-02"),
				})
		})
		if err != nil {
			return moved, err
		}
	}
	return moved, nil
}

func toPurchaseResponse(p *model.Purchase) PurchaseResponse {
	resp := PurchaseResponse{
		ID:                 p.ID.String(),
		Number:             p.Number,
		CustomerID:         p.CustomerID.String(),
		ShopID:             p.ShopID.String(),
		Type:               p.Type,
		Subtotal:           p.Subtotal.StringFixed(2),
		InterestAmount:     p.InterestAmount.StringFixed(2),
		TotalAmount:        p.TotalAmount.StringFixed(2),
		DownPayment:        p.DownPayment.StringFixed(2),
		Installments:       p.Installments,
		StartDate:          p.StartDate.Format("2006-01-02"),
		DueDate:            p.DueDate.Format("2006-01-02"),
		AmountPaid:         p.AmountPaid.StringFixed(2),
		RefundedAmount:     p.RefundedAmount.StringFixed(2),
		OutstandingBalance: p.OutstandingBalance.StringFixed(2),
		Status:             p.Status,
		DeliveryStatus:     p.DeliveryStatus,
		WaybillEligible:    p.WaybillEligible,
		Note:               p.Note,
		CreatedAt:          p.CreatedAt.Format(time.RFC3339),
	}
	if p.Customer != nil {
		resp.CustomerName = p.Customer.Name
		resp.CustomerPhone = p.Customer.Phone
	}
	if p.Shop != nil {
		resp.ShopName = p.Shop.Name
	}
	for _, item := range p.Items {
		ir := PurchaseItemResponse{
			ID:        item.ID.String(),
			ProductID: item.ProductID.String(),
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice.StringFixed(2),
			LineTotal: item.LineTotal.StringFixed(2),
		}
		if item.Product != nil {
			ir.SKU = item.Product.SKU
			ir.Name = item.Product.Name
		}
		resp.Items = append(resp.Items, ir)
	}
	return resp
}
