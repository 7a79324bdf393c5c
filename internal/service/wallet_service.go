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

type WalletDepositRequest struct {
	Amount    string `json:"amount" binding:"required"`
	Reference string `json:"reference"` // deposit slip number, mobile money ref...
	Note      string `json:"note"`
}

type WalletTransactionResponse struct {
	ID           string `json:"id"`
	CustomerID   string `json:"customer_id"`
	Type         string `json:"type"`
	Amount       string `json:"amount"`
	BalanceAfter string `json:"balance_after"`
	Reference    string `json:"reference,omitempty"`
	Note         string `json:"note,omitempty"`
	CreatedAt    string `json:"created_at"`
}

// --- Interface ---

type WalletService interface {
	// Deposit credits the customer wallet under a row lock and writes the
	// strict movement record with its balance snapshot.
	Deposit(ctx context.Context, businessID uuid.UUID, customerID string, req WalletDepositRequest, actor Actor) (WalletTransactionResponse, error)
	ListTransactions(ctx context.Context, businessID uuid.UUID, customerID string, page, limit int) ([]WalletTransactionResponse, int64, error)
}

type walletService struct {
	customerRepo repository.CustomerRepository
	auditRepo    repository.AuditRepository
	txManager    repository.TransactionManager
}

func NewWalletService(
	customerRepo repository.CustomerRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
) WalletService {
	return &walletService{customerRepo: customerRepo, auditRepo: auditRepo, txManager: txManager}
}

func (s *walletService) Deposit(ctx context.Context, businessID uuid.UUID, customerID string, req WalletDepositRequest, actor Actor) (WalletTransactionResponse, error) {
	cid, err := parseUUID("customer_id", customerID)
	if err != nil {
		return WalletTransactionResponse{}, err
	}
	amount, err := parseAmount("amount", req.Amount)
	if err != nil {
		return WalletTransactionResponse{}, err
	}
	if !amount.IsPositive() {
		return WalletTransactionResponse{}, &ledger.ValidationError{Field: "amount", Message: "must be greater than zero"}
	}

	var walletTx *model.WalletTransaction
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		customer, err := s.customerRepo.FindByIDForUpdate(txCtx, cid)
		if err != nil {
			return notFound(err, "customer", customerID)
		}
		if customer.BusinessID != businessID {
			return &ledger.NotFoundError{Entity: "customer", Key: customerID}
		}

		customer.WalletBalance = customer.WalletBalance.Add(amount)
		if err := s.customerRepo.Save(txCtx, customer); err != nil {
			return err
		}

		walletTx = &model.WalletTransaction{
			CustomerID:   customer.ID,
			Type:         model.WalletTxDeposit,
			Amount:       amount,
			BalanceAfter: customer.WalletBalance,
			Reference:    req.Reference,
			Note:         req.Note,
		}
		if err := s.customerRepo.CreateWalletTransaction(txCtx, walletTx); err != nil {
			return err
		}

		return writeAudit(txCtx, s.auditRepo, actor, model.ActionWalletDeposit,
			walletTx.ID.String(), customer.Name, map[string]interface{}{
				"amount":        amount.StringFixed(2),
				"balance_after": customer.WalletBalance.StringFixed(2),
			})
	})
	if err != nil {
		return WalletTransactionResponse{}, err
	}
	return toWalletTransactionResponse(walletTx), nil
}

func (s *walletService) ListTransactions(ctx context.Context, businessID uuid.UUID, customerID string, page, limit int) ([]WalletTransactionResponse, int64, error) {
	cid, err := parseUUID("customer_id", customerID)
	if err != nil {
		return nil, 0, err
	}
	customer, err := s.customerRepo.FindByID(ctx, cid)
	if err != nil {
		return nil, 0, notFound(err, "customer", customerID)
	}
	if customer.BusinessID != businessID {
		return nil, 0, &ledger.NotFoundError{Entity: "customer", Key: customerID}
	}

	txs, total, err := s.customerRepo.ListWalletTransactions(ctx, cid, page, limit)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]WalletTransactionResponse, 0, len(txs))
	for i := range txs {
		responses = append(responses, toWalletTransactionResponse(&txs[i]))
	}
	return responses, total, nil
}

func toWalletTransactionResponse(tx *model.WalletTransaction) WalletTransactionResponse {
	return WalletTransactionResponse{
		ID:           tx.ID.String(),
		CustomerID:   tx.CustomerID.String(),
		Type:         tx.Type,
		Amount:       tx.Amount.StringFixed(2),
		BalanceAfter: tx.BalanceAfter.StringFixed(2),
		Reference:    tx.Reference,
		Note:         tx.Note,
		CreatedAt:    tx.CreatedAt.Format(time.RFC3339),
	}
}
