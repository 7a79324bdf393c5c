package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/safo-124/high-purchase-sub010/internal/ledger"
	"github.com/safo-124/high-purchase-sub010/internal/model"
)

func TestCreateCreditPurchaseAppliesMonthlyInterest(t *testing.T) {
	env := newTestEnv()
	env.business.InterestType = model.InterestTypeMonthly
	env.business.InterestRate = decimal.RequireFromString("0.05")
	require.NoError(t, env.businessRepo.Save(context.Background(), env.business))

	svc := env.purchaseService()
	resp, err := svc.CreatePurchase(context.Background(), env.business.ID, CreatePurchaseRequest{
		CustomerID:   env.customer.ID.String(),
		ShopID:       env.shop.ID.String(),
		Type:         model.PurchaseTypeCredit,
		Items:        []CreatePurchaseItemRequest{{ProductID: env.product.ID.String(), Quantity: 2}},
		Installments: 3,
	}, env.admin())
	require.NoError(t, err)

	// 2 x 500.00 at 5% per installment over 3 installments.
	assert.Equal(t, "1000.00", resp.Subtotal)
	assert.Equal(t, "150.00", resp.InterestAmount)
	assert.Equal(t, "1150.00", resp.TotalAmount)
	assert.Equal(t, "1150.00", resp.OutstandingBalance)
	assert.Equal(t, "HP-ACME-000001", resp.Number)
	assert.Equal(t, model.PurchaseStatusPending, resp.Status)
}

func TestCreateCashPurchaseCarriesNoInterest(t *testing.T) {
	env := newTestEnv()
	env.business.InterestType = model.InterestTypeFlat
	env.business.InterestRate = decimal.RequireFromString("0.10")
	require.NoError(t, env.businessRepo.Save(context.Background(), env.business))

	svc := env.purchaseService()
	resp, err := svc.CreatePurchase(context.Background(), env.business.ID, CreatePurchaseRequest{
		CustomerID: env.customer.ID.String(),
		ShopID:     env.shop.ID.String(),
		Type:       model.PurchaseTypeCash,
		Items:      []CreatePurchaseItemRequest{{ProductID: env.product.ID.String(), Quantity: 1}},
	}, env.admin())
	require.NoError(t, err)

	assert.Equal(t, "0.00", resp.InterestAmount)
	assert.Equal(t, "500.00", resp.TotalAmount)
}

func TestUpdatedPolicyAppliesToNewPurchases(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	admin := env.admin()

	flat := model.InterestTypeFlat
	rate := "0.10"
	_, err := env.businessService().UpdatePolicy(ctx, env.business.ID, UpdateBusinessPolicyRequest{
		InterestType: &flat,
		InterestRate: &rate,
	}, admin)
	require.NoError(t, err)

	resp, err := env.purchaseService().CreatePurchase(ctx, env.business.ID, CreatePurchaseRequest{
		CustomerID: env.customer.ID.String(),
		ShopID:     env.shop.ID.String(),
		Type:       model.PurchaseTypeCredit,
		Items:      []CreatePurchaseItemRequest{{ProductID: env.product.ID.String(), Quantity: 1}},
	}, admin)
	require.NoError(t, err)

	assert.Equal(t, "50.00", resp.InterestAmount)
	assert.Equal(t, "550.00", resp.TotalAmount)
}

func TestCreatePurchaseRejectsDownPaymentAboveTotal(t *testing.T) {
	env := newTestEnv()

	_, err := env.purchaseService().CreatePurchase(context.Background(), env.business.ID, CreatePurchaseRequest{
		CustomerID:  env.customer.ID.String(),
		ShopID:      env.shop.ID.String(),
		Type:        model.PurchaseTypeLayaway,
		Items:       []CreatePurchaseItemRequest{{ProductID: env.product.ID.String(), Quantity: 1}},
		DownPayment: "600.00",
	}, env.admin())
	require.Error(t, err)
	var overpay *ledger.OverpaymentError
	assert.ErrorAs(t, err, &overpay)
}

func TestCreatePurchaseWithDownPaymentReconciles(t *testing.T) {
	env := newTestEnv()

	resp, err := env.purchaseService().CreatePurchase(context.Background(), env.business.ID, CreatePurchaseRequest{
		CustomerID:  env.customer.ID.String(),
		ShopID:      env.shop.ID.String(),
		Type:        model.PurchaseTypeLayaway,
		Items:       []CreatePurchaseItemRequest{{ProductID: env.product.ID.String(), Quantity: 1}},
		DownPayment: "200.00",
	}, env.admin())
	require.NoError(t, err)

	assert.Equal(t, "200.00", resp.AmountPaid)
	assert.Equal(t, "300.00", resp.OutstandingBalance)
	assert.Equal(t, model.PurchaseStatusActive, resp.Status)
}
