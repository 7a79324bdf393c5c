package bulk

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/safo-124/high-purchase-sub010/internal/model"
	"github.com/safo-124/high-purchase-sub010/internal/repository"
)

type fakePurchaseRepo struct {
	purchases []model.Purchase
}

func (f *fakePurchaseRepo) Create(context.Context, *model.Purchase) error { return nil }
func (f *fakePurchaseRepo) FindByID(context.Context, uuid.UUID) (*model.Purchase, error) {
	return nil, fmt.Errorf("not found")
}
func (f *fakePurchaseRepo) FindByIDWithItems(context.Context, uuid.UUID) (*model.Purchase, error) {
	return nil, fmt.Errorf("not found")
}
func (f *fakePurchaseRepo) FindByIDForUpdate(context.Context, uuid.UUID) (*model.Purchase, error) {
	return nil, fmt.Errorf("not found")
}
func (f *fakePurchaseRepo) FindByNumber(context.Context, uuid.UUID, string) (*model.Purchase, error) {
	return nil, fmt.Errorf("not found")
}
func (f *fakePurchaseRepo) List(_ context.Context, filter repository.PurchaseListFilter) ([]model.Purchase, int64, error) {
	if filter.Page > 1 {
		return nil, int64(len(f.purchases)), nil
	}
	return f.purchases, int64(len(f.purchases)), nil
}
func (f *fakePurchaseRepo) ListPastDue(context.Context, uuid.UUID, time.Time) ([]model.Purchase, error) {
	return nil, nil
}
func (f *fakePurchaseRepo) Save(context.Context, *model.Purchase) error { return nil }
func (f *fakePurchaseRepo) AllocateNumber(context.Context, string) (string, error) {
	return "", nil
}

func TestPurchaseExport_RowsMirrorImportColumns(t *testing.T) {
	due := time.Date(2026, 9, 30, 0, 0, 0, 0, time.UTC)
	repo := &fakePurchaseRepo{purchases: []model.Purchase{{
		Number:   "HP-ACME-000001",
		Type:     model.PurchaseTypeCredit,
		Shop:     &model.Shop{Slug: "main-street"},
		Customer: &model.Customer{Phone: "0241000001", Name: "Ama Mensah"},
		Items: []model.PurchaseItem{
			{Product: &model.Product{SKU: "TV-55"}, Quantity: 1, UnitPrice: decimal.RequireFromString("1000")},
			{Product: &model.Product{SKU: "FRDG-01"}, Quantity: 2, UnitPrice: decimal.RequireFromString("800")},
		},
		DownPayment:        decimal.RequireFromString("100"),
		Installments:       6,
		DueDate:            due,
		TotalAmount:        decimal.RequireFromString("2860"),
		AmountPaid:         decimal.RequireFromString("100"),
		OutstandingBalance: decimal.RequireFromString("2760"),
		Status:             model.PurchaseStatusActive,
	}}}

	exporter := &PurchaseExporter{Purchases: repo}
	f, err := exporter.Export(context.Background(), uuid.New())
	require.NoError(t, err)

	rows, err := f.GetRows(exportSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, exportHeader, rows[0][:len(exportHeader)])

	row := rows[1]
	assert.Equal(t, "HP-ACME-000001", row[0])
	assert.Equal(t, "main-street", row[1])
	assert.Equal(t, "0241000001", row[2])
	assert.Equal(t, "TV-55;FRDG-01", row[4])
	assert.Equal(t, "1;2", row[5])
	assert.Equal(t, "1000.00;800.00", row[6])
	assert.Equal(t, "CREDIT", row[7])
	assert.Equal(t, "2026-09-30", row[10])

	// The workbook carries the import guide.
	templateRows, err := f.GetRows("Template")
	require.NoError(t, err)
	assert.Greater(t, len(templateRows), 5)
}
