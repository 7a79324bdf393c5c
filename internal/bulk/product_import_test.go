package bulk

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/safo-124/high-purchase-sub010/internal/model"
)

type fakeProductWriter struct {
	byID    map[uuid.UUID]*model.Product
	bySKU   map[string]*model.Product
	created []*model.Product
	saved   []*model.Product
	stocks  []*model.ShopStock
}

func newFakeProductWriter() *fakeProductWriter {
	return &fakeProductWriter{
		byID:  map[uuid.UUID]*model.Product{},
		bySKU: map[string]*model.Product{},
	}
}

func (f *fakeProductWriter) add(p *model.Product) {
	f.byID[p.ID] = p
	f.bySKU[p.SKU] = p
}

func (f *fakeProductWriter) FindByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	if p, ok := f.byID[id]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("not found")
}

func (f *fakeProductWriter) FindBySKU(_ context.Context, _ uuid.UUID, sku string) (*model.Product, error) {
	if p, ok := f.bySKU[sku]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("not found")
}

func (f *fakeProductWriter) Create(_ context.Context, p *model.Product) error {
	p.ID = uuid.New()
	f.add(p)
	f.created = append(f.created, p)
	return nil
}

func (f *fakeProductWriter) Save(_ context.Context, p *model.Product) error {
	f.saved = append(f.saved, p)
	return nil
}

func (f *fakeProductWriter) UpsertShopStock(_ context.Context, s *model.ShopStock) error {
	f.stocks = append(f.stocks, s)
	return nil
}

type fakeShopLister struct {
	shops []model.Shop
}

func (f *fakeShopLister) ListByBusiness(_ context.Context, _ uuid.UUID) ([]model.Shop, error) {
	return f.shops, nil
}

func TestProductImport_CreateUpdateAndStock(t *testing.T) {
	businessID := uuid.New()
	writer := newFakeProductWriter()
	existing := &model.Product{
		ID: uuid.New(), BusinessID: businessID, SKU: "TV-55",
		Name: "55in TV", UnitPrice: decimal.RequireFromString("900"), IsActive: true,
	}
	writer.add(existing)

	mainShop := model.Shop{ID: uuid.New(), Name: "Main Street"}
	imp := &ProductImporter{
		Products: writer,
		Shops:    &fakeShopLister{shops: []model.Shop{mainShop}},
	}

	header := []string{ColProductID, ColSKU, ColName, ColUnitPrice, ColStatus, "Main Street Assigned", "Main Street Stock"}
	rows := [][]string{
		{"", "TV-55", "55in Smart TV", "950.00", "ACTIVE", "YES", "12"},
		{"NEW", "SND-09", "Soundbar", "250.00", "", "YES", "3"},
		{"", "OLD-01", "", "10.00", "", "", ""}, // new SKU but no name
	}

	summary, err := imp.Import(context.Background(), businessID, workbook(t, header, rows))
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Created)
	assert.Equal(t, 1, summary.Updated)
	assert.Equal(t, 1, summary.TotalErrors)

	assert.Equal(t, "55in Smart TV", existing.Name)
	assert.True(t, existing.UnitPrice.Equal(decimal.RequireFromString("950")))

	require.Len(t, writer.stocks, 2)
	assert.Equal(t, mainShop.ID, writer.stocks[0].ShopID)
	assert.True(t, writer.stocks[0].Assigned)
	assert.Equal(t, 12, writer.stocks[0].Quantity)
}

func TestProductImport_DeleteSentinelDeactivates(t *testing.T) {
	businessID := uuid.New()
	writer := newFakeProductWriter()
	existing := &model.Product{
		ID: uuid.New(), BusinessID: businessID, SKU: "TV-55",
		UnitPrice: decimal.RequireFromString("900"), IsActive: true,
	}
	writer.add(existing)

	imp := &ProductImporter{Products: writer, Shops: &fakeShopLister{}}

	header := []string{ColSKU, ColName, ColUnitPrice, ColStatus}
	rows := [][]string{{"TV-55", "", "900.00", "DELETE"}}

	summary, err := imp.Import(context.Background(), businessID, workbook(t, header, rows))
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Updated)
	assert.False(t, existing.IsActive)
}

func TestProductImport_UnknownShopColumnAbortsBatch(t *testing.T) {
	imp := &ProductImporter{
		Products: newFakeProductWriter(),
		Shops:    &fakeShopLister{shops: []model.Shop{{ID: uuid.New(), Name: "Main Street"}}},
	}

	header := []string{ColSKU, ColName, ColUnitPrice, "Ghost Branch Stock"}
	rows := [][]string{{"TV-55", "TV", "900.00", "5"}}

	_, err := imp.Import(context.Background(), uuid.New(), workbook(t, header, rows))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown shop")
}

func TestProductImport_MatchByProductID(t *testing.T) {
	businessID := uuid.New()
	writer := newFakeProductWriter()
	existing := &model.Product{
		ID: uuid.New(), BusinessID: businessID, SKU: "TV-55",
		UnitPrice: decimal.RequireFromString("900"), IsActive: true,
	}
	writer.add(existing)

	imp := &ProductImporter{Products: writer, Shops: &fakeShopLister{}}

	header := []string{ColProductID, ColSKU, ColName, ColUnitPrice}
	rows := [][]string{{existing.ID.String(), "TV-55", "Renamed", "999.99"}}

	summary, err := imp.Import(context.Background(), businessID, workbook(t, header, rows))
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Updated)
	assert.Equal(t, "Renamed", existing.Name)
}
