package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/safo-124/high-purchase-sub010/internal/ledger"
	"github.com/safo-124/high-purchase-sub010/internal/model"
	"github.com/safo-124/high-purchase-sub010/internal/repository"
)

// --- DTOs ---

// ReceiptResponse is a render-ready receipt. Amounts arrive formatted;
// clients print it as-is.
type ReceiptResponse struct {
	ReceiptType    string `json:"receipt_type"` // PAYMENT, DEPOSIT
	BusinessName   string `json:"business_name"`
	ShopName       string `json:"shop_name,omitempty"`
	CustomerName   string `json:"customer_name"`
	CustomerPhone  string `json:"customer_phone"`
	PurchaseNumber string `json:"purchase_number,omitempty"`
	Amount         string `json:"amount"`
	Method         string `json:"method,omitempty"`
	Reference      string `json:"reference,omitempty"`
	// Ledger position after this entry
	PriorBalance string `json:"prior_balance"`
	NewBalance   string `json:"new_balance"`
	IssuedAt     string `json:"issued_at"`
}

// --- Interface ---

type ReceiptService interface {
	// BuildPaymentReceipt renders a receipt for a confirmed payment.
	// Unconfirmed or rejected payments have no receipt.
	BuildPaymentReceipt(ctx context.Context, businessID uuid.UUID, paymentID string) (ReceiptResponse, error)
	BuildDepositReceipt(ctx context.Context, businessID uuid.UUID, walletTxID string) (ReceiptResponse, error)
}

type receiptService struct {
	paymentRepo  repository.PaymentRepository
	customerRepo repository.CustomerRepository
	businessRepo repository.BusinessRepository
}

func NewReceiptService(
	paymentRepo repository.PaymentRepository,
	customerRepo repository.CustomerRepository,
	businessRepo repository.BusinessRepository,
) ReceiptService {
	return &receiptService{paymentRepo: paymentRepo, customerRepo: customerRepo, businessRepo: businessRepo}
}

func (s *receiptService) BuildPaymentReceipt(ctx context.Context, businessID uuid.UUID, paymentID string) (ReceiptResponse, error) {
	id, err := parseUUID("payment_id", paymentID)
	if err != nil {
		return ReceiptResponse{}, err
	}
	payment, err := s.paymentRepo.FindByIDWithRelations(ctx, id)
	if err != nil {
		return ReceiptResponse{}, notFound(err, "payment", paymentID)
	}
	purchase := payment.Purchase
	if purchase == nil || purchase.BusinessID != businessID {
		return ReceiptResponse{}, &ledger.NotFoundError{Entity: "payment", Key: paymentID}
	}
	if !payment.Counts() {
		return ReceiptResponse{}, &ledger.ValidationError{Field: "payment_id", Message: "only confirmed payments have receipts"}
	}

	business, err := s.businessRepo.FindByID(ctx, businessID)
	if err != nil {
		return ReceiptResponse{}, err
	}

	// The purchase row already reflects this payment, so the position
	// before it is current outstanding plus the amount.
	newBalance := purchase.OutstandingBalance
	priorBalance := newBalance.Add(payment.Amount)

	resp := ReceiptResponse{
		ReceiptType:    "PAYMENT",
		BusinessName:   business.Name,
		PurchaseNumber: purchase.Number,
		Amount:         ledger.FormatCurrency(payment.Amount),
		Method:         payment.Method,
		Reference:      payment.Reference,
		PriorBalance:   ledger.FormatCurrency(priorBalance),
		NewBalance:     ledger.FormatCurrency(newBalance),
		IssuedAt:       time.Now().Format(time.RFC3339),
	}
	if purchase.Customer != nil {
		resp.CustomerName = purchase.Customer.Name
		resp.CustomerPhone = purchase.Customer.Phone
	}
	if purchase.Shop != nil {
		resp.ShopName = purchase.Shop.Name
	}
	return resp, nil
}

func (s *receiptService) BuildDepositReceipt(ctx context.Context, businessID uuid.UUID, walletTxID string) (ReceiptResponse, error) {
	id, err := parseUUID("wallet_tx_id", walletTxID)
	if err != nil {
		return ReceiptResponse{}, err
	}
	walletTx, err := s.customerRepo.FindWalletTransactionByID(ctx, id)
	if err != nil {
		return ReceiptResponse{}, notFound(err, "wallet transaction", walletTxID)
	}
	if walletTx.Customer == nil || walletTx.Customer.BusinessID != businessID {
		return ReceiptResponse{}, &ledger.NotFoundError{Entity: "wallet transaction", Key: walletTxID}
	}
	if walletTx.Type != model.WalletTxDeposit {
		return ReceiptResponse{}, &ledger.ValidationError{Field: "wallet_tx_id", Message: "only deposits have receipts"}
	}

	business, err := s.businessRepo.FindByID(ctx, businessID)
	if err != nil {
		return ReceiptResponse{}, err
	}

	priorBalance := walletTx.BalanceAfter.Sub(walletTx.Amount)
	return ReceiptResponse{
		ReceiptType:   "DEPOSIT",
		BusinessName:  business.Name,
		CustomerName:  walletTx.Customer.Name,
		CustomerPhone: walletTx.Customer.Phone,
		Amount:        ledger.FormatCurrency(walletTx.Amount),
		Reference:     walletTx.Reference,
		PriorBalance:  ledger.FormatCurrency(priorBalance),
		NewBalance:    ledger.FormatCurrency(walletTx.BalanceAfter),
		IssuedAt:      time.Now().Format(time.RFC3339),
	}, nil
}
