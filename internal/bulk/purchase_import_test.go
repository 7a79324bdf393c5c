package bulk

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/safo-124/high-purchase-sub010/internal/model"
	"github.com/safo-124/high-purchase-sub010/internal/service"
)

type fakeShops struct {
	bySlug map[string]*model.Shop
}

func (f *fakeShops) FindBySlug(_ context.Context, _ uuid.UUID, slug string) (*model.Shop, error) {
	if shop, ok := f.bySlug[slug]; ok {
		return shop, nil
	}
	return nil, fmt.Errorf("not found")
}

type fakeCustomers struct {
	byPhone map[string]*model.Customer
}

func (f *fakeCustomers) FindByPhone(_ context.Context, _ uuid.UUID, phone string) (*model.Customer, error) {
	if customer, ok := f.byPhone[phone]; ok {
		return customer, nil
	}
	return nil, fmt.Errorf("not found")
}

type fakeProducts struct {
	bySKU map[string]*model.Product
}

func (f *fakeProducts) FindBySKU(_ context.Context, _ uuid.UUID, sku string) (*model.Product, error) {
	if product, ok := f.bySKU[sku]; ok {
		return product, nil
	}
	return nil, fmt.Errorf("not found")
}

type fakeFinder struct {
	byNumber map[string]*model.Purchase
}

func (f *fakeFinder) FindByNumber(_ context.Context, _ uuid.UUID, number string) (*model.Purchase, error) {
	if purchase, ok := f.byNumber[number]; ok {
		return purchase, nil
	}
	return nil, fmt.Errorf("not found")
}

type fakeCreator struct {
	requests []service.CreatePurchaseRequest
	failOn   func(req service.CreatePurchaseRequest) error
}

func (f *fakeCreator) CreatePurchase(_ context.Context, _ uuid.UUID, req service.CreatePurchaseRequest, _ service.Actor) (service.PurchaseResponse, error) {
	if f.failOn != nil {
		if err := f.failOn(req); err != nil {
			return service.PurchaseResponse{}, err
		}
	}
	f.requests = append(f.requests, req)
	return service.PurchaseResponse{ID: uuid.NewString()}, nil
}

func newImporter(creator *fakeCreator) *PurchaseImporter {
	return &PurchaseImporter{
		Shops: &fakeShops{bySlug: map[string]*model.Shop{
			"main-street": {ID: uuid.New(), Slug: "main-street", Name: "Main Street"},
		}},
		Customers: &fakeCustomers{byPhone: map[string]*model.Customer{
			"0241000001": {ID: uuid.New(), Phone: "0241000001"},
			"0241000002": {ID: uuid.New(), Phone: "0241000002"},
			"0241000003": {ID: uuid.New(), Phone: "0241000003"},
			"0241000004": {ID: uuid.New(), Phone: "0241000004"},
			"0241000005": {ID: uuid.New(), Phone: "0241000005"},
		}},
		Products: &fakeProducts{bySKU: map[string]*model.Product{
			"TV-55":   {ID: uuid.New(), SKU: "TV-55"},
			"FRDG-01": {ID: uuid.New(), SKU: "FRDG-01"},
		}},
		Purchases: &fakeFinder{byNumber: map[string]*model.Purchase{}},
		Creator:   creator,
	}
}

func workbook(t *testing.T, header []string, rows [][]string) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	headerRow := make([]interface{}, len(header))
	for i, h := range header {
		headerRow[i] = h
	}
	require.NoError(t, f.SetSheetRow(sheet, "A1", &headerRow))

	for i, row := range rows {
		vals := make([]interface{}, len(row))
		for j, v := range row {
			vals[j] = v
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &vals))
	}

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return &buf
}

var purchaseHeader = []string{
	ColShopSlug, ColCustomerPhone, ColProducts, ColQuantities, ColUnitPrices, ColPurchaseType, ColDownPayment,
}

func TestPurchaseImport_BadRowDoesNotAbortBatch(t *testing.T) {
	creator := &fakeCreator{}
	imp := newImporter(creator)

	rows := [][]string{
		{"main-street", "0241000001", "TV-55", "1", "1000.00", "CREDIT", "100"},
		{"main-street", "0241000002", "TV-55", "1", "1000.00", "CREDIT", ""},
		{"no-such-shop", "0241000003", "TV-55", "1", "1000.00", "CREDIT", ""},
		{"main-street", "0241000004", "FRDG-01", "2", "800.00", "LAYAWAY", "50"},
		{"main-street", "0241000005", "TV-55;FRDG-01", "1;1", "1000.00;800.00", "CASH", ""},
	}

	summary, err := imp.Import(context.Background(), uuid.New(), workbook(t, purchaseHeader, rows), service.Actor{})
	require.NoError(t, err)

	assert.Equal(t, 4, summary.Created)
	assert.Equal(t, 1, summary.TotalErrors)
	require.Len(t, summary.Errors, 1)
	assert.Equal(t, 4, summary.Errors[0].Row) // header is row 1
	assert.Contains(t, summary.Errors[0].Message, "no-such-shop")
	assert.Len(t, creator.requests, 4)
}

func TestPurchaseImport_MisalignedQuantities(t *testing.T) {
	creator := &fakeCreator{}
	imp := newImporter(creator)

	rows := [][]string{
		{"main-street", "0241000001", "TV-55;FRDG-01", "1", "", "CREDIT", ""},
	}

	summary, err := imp.Import(context.Background(), uuid.New(), workbook(t, purchaseHeader, rows), service.Actor{})
	require.NoError(t, err)

	assert.Equal(t, 0, summary.Created)
	require.Len(t, summary.Errors, 1)
	assert.Contains(t, summary.Errors[0].Message, "does not match")
}

func TestPurchaseImport_MissingRequiredColumn(t *testing.T) {
	creator := &fakeCreator{}
	imp := newImporter(creator)

	header := []string{ColShopSlug, ColCustomerPhone, ColProducts} // no quantities etc.
	_, err := imp.Import(context.Background(), uuid.New(), workbook(t, header, nil), service.Actor{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required column")
}

func TestPurchaseImport_ExistingNumberCountsAsUpdated(t *testing.T) {
	creator := &fakeCreator{}
	imp := newImporter(creator)
	imp.Purchases = &fakeFinder{byNumber: map[string]*model.Purchase{
		"HP-ACME-000001": {Number: "HP-ACME-000001"},
	}}

	header := append([]string{ColPurchaseNumber}, purchaseHeader...)
	rows := [][]string{
		{"HP-ACME-000001", "main-street", "0241000001", "TV-55", "1", "", "CREDIT", ""},
		{"", "main-street", "0241000002", "TV-55", "1", "", "CREDIT", ""},
	}

	summary, err := imp.Import(context.Background(), uuid.New(), workbook(t, header, rows), service.Actor{})
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Updated)
	assert.Equal(t, 1, summary.Created)
	assert.Len(t, creator.requests, 1)
}

func TestPurchaseImport_ErrorListTruncatedAtTen(t *testing.T) {
	creator := &fakeCreator{}
	imp := newImporter(creator)

	rows := make([][]string, 0, 12)
	for i := 0; i < 12; i++ {
		rows = append(rows, []string{"ghost-shop", "0241000001", "TV-55", "1", "", "CREDIT", ""})
	}

	summary, err := imp.Import(context.Background(), uuid.New(), workbook(t, purchaseHeader, rows), service.Actor{})
	require.NoError(t, err)

	assert.Equal(t, 12, summary.TotalErrors)
	assert.Len(t, summary.Errors, 10)
}

func TestPurchaseImport_BlankRowsSkipped(t *testing.T) {
	creator := &fakeCreator{}
	imp := newImporter(creator)

	rows := [][]string{
		{"main-street", "0241000001", "TV-55", "1", "", "CREDIT", ""},
		{"", "", "", "", "", "", ""},
	}

	summary, err := imp.Import(context.Background(), uuid.New(), workbook(t, purchaseHeader, rows), service.Actor{})
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Created)
	assert.Equal(t, 0, summary.TotalErrors)
	assert.Equal(t, 0, summary.Skipped)
}

func TestPurchaseImport_RowsProcessedInOrder(t *testing.T) {
	creator := &fakeCreator{}
	imp := newImporter(creator)

	rows := [][]string{
		{"main-street", "0241000001", "TV-55", "1", "", "CREDIT", ""},
		{"main-street", "0241000002", "FRDG-01", "2", "", "LAYAWAY", ""},
	}

	_, err := imp.Import(context.Background(), uuid.New(), workbook(t, purchaseHeader, rows), service.Actor{})
	require.NoError(t, err)

	require.Len(t, creator.requests, 2)
	assert.Equal(t, "CREDIT", creator.requests[0].Type)
	assert.Equal(t, "LAYAWAY", creator.requests[1].Type)
	assert.Equal(t, 2, creator.requests[1].Items[0].Quantity)
}
