package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/safo-124/high-purchase-sub010/internal/model"
)

// seedActivePurchase stores a credit purchase with money still owing so
// payments can be recorded against it.
func seedActivePurchase(t *testing.T, env *testEnv, total string) *model.Purchase {
	t.Helper()
	amount := decimal.RequireFromString(total)
	purchase := &model.Purchase{
		ID:                 uuid.New(),
		BusinessID:         env.business.ID,
		Number:             "HP-ACME-000007",
		CustomerID:         env.customer.ID,
		ShopID:             env.shop.ID,
		Type:               model.PurchaseTypeCredit,
		Subtotal:           amount,
		TotalAmount:        amount,
		OutstandingBalance: amount,
		Installments:       1,
		StartDate:          time.Now(),
		DueDate:            time.Now().AddDate(0, 0, 30),
		Status:             model.PurchaseStatusActive,
	}
	require.NoError(t, env.purchaseRepo.Create(context.Background(), purchase))
	return purchase
}

func TestRejectedWalletPaymentWritesReversal(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	env.customer.WalletBalance = decimal.RequireFromString("500.00")
	require.NoError(t, env.customerRepo.Save(ctx, env.customer))
	purchase := seedActivePurchase(t, env, "400.00")

	svc := env.paymentService()

	// A collector's wallet payment debits the wallet immediately but waits
	// for review.
	recorded, err := svc.RecordPayment(ctx, env.business.ID, purchase.ID.String(), RecordPaymentRequest{
		Amount: "150.00",
		Method: model.PaymentMethodWallet,
	}, env.collector())
	require.NoError(t, err)
	assert.Equal(t, "UNCONFIRMED", recorded.Status)

	debited, err := env.customerRepo.FindByID(ctx, env.customer.ID)
	require.NoError(t, err)
	assert.Equal(t, "350.00", debited.WalletBalance.StringFixed(2))

	rejected, err := svc.RejectPayment(ctx, env.business.ID, recorded.ID, RejectPaymentRequest{
		Reason: "duplicate entry",
	}, env.admin())
	require.NoError(t, err)
	assert.Equal(t, "REJECTED", rejected.Status)

	// The rejection restores the balance and books it as a payment
	// reversal, not a refund credit.
	restored, err := env.customerRepo.FindByID(ctx, env.customer.ID)
	require.NoError(t, err)
	assert.Equal(t, "500.00", restored.WalletBalance.StringFixed(2))

	txs, _, err := env.customerRepo.ListWalletTransactions(ctx, env.customer.ID, 1, 20)
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.Equal(t, model.WalletTxPayment, txs[0].Type)
	assert.Equal(t, "-150.00", txs[0].Amount.StringFixed(2))
	assert.Equal(t, model.WalletTxPaymentReversal, txs[1].Type)
	assert.Equal(t, "150.00", txs[1].Amount.StringFixed(2))
	assert.Equal(t, "500.00", txs[1].BalanceAfter.StringFixed(2))
	assert.Equal(t, purchase.Number, txs[1].Reference)
}

func TestRejectedCashPaymentTouchesNoWallet(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	purchase := seedActivePurchase(t, env, "400.00")

	svc := env.paymentService()
	recorded, err := svc.RecordPayment(ctx, env.business.ID, purchase.ID.String(), RecordPaymentRequest{
		Amount: "100.00",
		Method: model.PaymentMethodCash,
	}, env.collector())
	require.NoError(t, err)

	_, err = svc.RejectPayment(ctx, env.business.ID, recorded.ID, RejectPaymentRequest{
		Reason: "wrong purchase",
	}, env.admin())
	require.NoError(t, err)

	assert.Empty(t, env.customerRepo.walletTxs)
}

func TestRecordWalletPaymentInsufficientBalance(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	env.customer.WalletBalance = decimal.RequireFromString("50.00")
	require.NoError(t, env.customerRepo.Save(ctx, env.customer))
	purchase := seedActivePurchase(t, env, "400.00")

	_, err := env.paymentService().RecordPayment(ctx, env.business.ID, purchase.ID.String(), RecordPaymentRequest{
		Amount: "150.00",
		Method: model.PaymentMethodWallet,
	}, env.collector())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insufficient wallet balance")

	// Nothing moved.
	customer, err := env.customerRepo.FindByID(ctx, env.customer.ID)
	require.NoError(t, err)
	assert.Equal(t, "50.00", customer.WalletBalance.StringFixed(2))
}
