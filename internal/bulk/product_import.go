package bulk

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/safo-124/high-purchase-sub010/internal/ledger"
	"github.com/safo-124/high-purchase-sub010/internal/model"
)

// Spreadsheet column headers for product imports. Shop assignment arrives
// as one "<Shop Name> Assigned" / "<Shop Name> Stock" column pair per
// shop; shop names are validated against the business's shops before any
// row is processed.
const (
	ColProductID = "Product ID"
	ColSKU       = "SKU"
	ColName      = "Name"
	ColUnitPrice = "Unit Price"
	ColStatus    = "Status"

	assignedSuffix = " Assigned"
	stockSuffix    = " Stock"

	// Sentinel values. SentinelNew in the Product ID column forces a
	// create; SentinelDelete in the Status column deactivates the product.
	SentinelNew    = "NEW"
	SentinelDelete = "DELETE"
)

// ProductWriter is the persistence surface a product import needs.
// repository.ProductRepository satisfies it.
type ProductWriter interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	FindBySKU(ctx context.Context, businessID uuid.UUID, sku string) (*model.Product, error)
	Create(ctx context.Context, product *model.Product) error
	Save(ctx context.Context, product *model.Product) error
	UpsertShopStock(ctx context.Context, stock *model.ShopStock) error
}

// ShopLister lists the business's shops for header validation.
// repository.ShopRepository satisfies it.
type ShopLister interface {
	ListByBusiness(ctx context.Context, businessID uuid.UUID) ([]model.Shop, error)
}

// ProductImporter upserts the catalog and per-shop stock assignments from
// an uploaded workbook.
type ProductImporter struct {
	Products ProductWriter
	Shops    ShopLister
}

type shopColumns struct {
	shop        model.Shop
	assignedIdx int // -1 when absent
	stockIdx    int
}

// Import reads the first sheet and upserts one product per data row.
// Rows match existing products by Product ID first, then by SKU; rows
// marked NEW always create. Header errors abort the batch, row errors
// do not.
func (imp *ProductImporter) Import(ctx context.Context, businessID uuid.UUID, r io.Reader) (Summary, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return Summary{}, &ledger.ValidationError{Field: "file", Message: "not a readable spreadsheet"}
	}
	defer f.Close()

	rows, header, err := sheetRows(f)
	if err != nil {
		return Summary{}, err
	}
	for _, col := range []string{ColSKU, ColName, ColUnitPrice} {
		if _, ok := header[col]; !ok {
			return Summary{}, &ledger.ValidationError{Field: "file", Message: fmt.Sprintf("missing required column %q", col)}
		}
	}

	shopCols, err := imp.resolveShopColumns(ctx, businessID, header)
	if err != nil {
		return Summary{}, err
	}

	var summary Summary
	for i, row := range rows {
		rowNum := i + 2
		if blankRow(row) {
			continue
		}
		created, err := imp.importRow(ctx, businessID, header, shopCols, row)
		switch {
		case err != nil:
			summary.addError(rowNum, err.Error())
		case created:
			summary.Created++
		default:
			summary.Updated++
		}
	}
	return summary, nil
}

// resolveShopColumns maps every "<Shop> Assigned"/"<Shop> Stock" header
// pair to a known shop. An unrecognized shop name is a header error and
// aborts the import before any row runs.
func (imp *ProductImporter) resolveShopColumns(ctx context.Context, businessID uuid.UUID, header map[string]int) ([]shopColumns, error) {
	shops, err := imp.Shops.ListByBusiness(ctx, businessID)
	if err != nil {
		return nil, err
	}
	byName := make(map[string]model.Shop, len(shops))
	for _, shop := range shops {
		byName[shop.Name] = shop
	}

	known := map[string]bool{ColProductID: true, ColSKU: true, ColName: true, ColUnitPrice: true, ColStatus: true}
	cols := make(map[uuid.UUID]*shopColumns)

	for name, idx := range header {
		if known[name] || name == "" {
			continue
		}
		var shopName string
		var isStock bool
		switch {
		case strings.HasSuffix(name, assignedSuffix):
			shopName = strings.TrimSuffix(name, assignedSuffix)
		case strings.HasSuffix(name, stockSuffix):
			shopName = strings.TrimSuffix(name, stockSuffix)
			isStock = true
		default:
			return nil, &ledger.ValidationError{Field: "file", Message: fmt.Sprintf("unrecognized column %q", name)}
		}

		shop, ok := byName[shopName]
		if !ok {
			return nil, &ledger.ValidationError{Field: "file", Message: fmt.Sprintf("column %q references unknown shop %q", name, shopName)}
		}
		sc, ok := cols[shop.ID]
		if !ok {
			sc = &shopColumns{shop: shop, assignedIdx: -1, stockIdx: -1}
			cols[shop.ID] = sc
		}
		if isStock {
			sc.stockIdx = idx
		} else {
			sc.assignedIdx = idx
		}
	}

	out := make([]shopColumns, 0, len(cols))
	for _, sc := range cols {
		out = append(out, *sc)
	}
	return out, nil
}

func (imp *ProductImporter) importRow(ctx context.Context, businessID uuid.UUID, header map[string]int, shopCols []shopColumns, row []string) (created bool, err error) {
	cell := func(idx int) string {
		if idx < 0 || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}
	named := func(col string) string {
		idx, ok := header[col]
		if !ok {
			return ""
		}
		return cell(idx)
	}

	sku := named(ColSKU)
	if sku == "" {
		return false, fmt.Errorf("missing SKU")
	}
	name := named(ColName)
	unitPrice, err := decimal.NewFromString(named(ColUnitPrice))
	if err != nil || unitPrice.IsNegative() {
		return false, fmt.Errorf("invalid unit price %q", named(ColUnitPrice))
	}
	unitPrice = ledger.RoundCurrency(unitPrice)

	product, err := imp.matchProduct(ctx, businessID, named(ColProductID), sku)
	if err != nil {
		return false, err
	}

	status := strings.ToUpper(named(ColStatus))
	if product == nil {
		if name == "" {
			return false, fmt.Errorf("missing name for new SKU %q", sku)
		}
		product = &model.Product{
			BusinessID: businessID,
			SKU:        sku,
			Name:       name,
			UnitPrice:  unitPrice,
			IsActive:   status != SentinelDelete && status != "INACTIVE",
		}
		if err := imp.Products.Create(ctx, product); err != nil {
			return false, err
		}
		created = true
	} else {
		if name != "" {
			product.Name = name
		}
		product.UnitPrice = unitPrice
		switch status {
		case SentinelDelete, "INACTIVE":
			product.IsActive = false
		case "ACTIVE":
			product.IsActive = true
		}
		if err := imp.Products.Save(ctx, product); err != nil {
			return false, err
		}
	}

	for _, sc := range shopCols {
		assignedCell := cell(sc.assignedIdx)
		stockCell := cell(sc.stockIdx)
		if assignedCell == "" && stockCell == "" {
			continue
		}

		assigned := parseBoolCell(assignedCell)
		quantity := 0
		if stockCell != "" {
			quantity, err = strconv.Atoi(stockCell)
			if err != nil || quantity < 0 {
				return created, fmt.Errorf("invalid stock %q for shop %q", stockCell, sc.shop.Name)
			}
		}
		if err := imp.Products.UpsertShopStock(ctx, &model.ShopStock{
			ShopID:    sc.shop.ID,
			ProductID: product.ID,
			Assigned:  assigned,
			Quantity:  quantity,
		}); err != nil {
			return created, err
		}
	}
	return created, nil
}

// matchProduct finds the existing product a row addresses, or nil when
// the row should create one.
func (imp *ProductImporter) matchProduct(ctx context.Context, businessID uuid.UUID, productID, sku string) (*model.Product, error) {
	if strings.EqualFold(productID, SentinelNew) {
		return nil, nil
	}
	if productID != "" {
		id, err := uuid.Parse(productID)
		if err != nil {
			return nil, fmt.Errorf("invalid product ID %q", productID)
		}
		product, err := imp.Products.FindByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("unknown product ID %q", productID)
		}
		if product.BusinessID != businessID {
			return nil, fmt.Errorf("unknown product ID %q", productID)
		}
		return product, nil
	}
	if product, err := imp.Products.FindBySKU(ctx, businessID, sku); err == nil {
		return product, nil
	}
	return nil, nil
}

func parseBoolCell(cell string) bool {
	switch strings.ToUpper(cell) {
	case "YES", "TRUE", "1", "Y":
		return true
	}
	return false
}
