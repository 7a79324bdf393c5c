package bulk

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/safo-124/high-purchase-sub010/internal/ledger"
	"github.com/safo-124/high-purchase-sub010/internal/model"
	"github.com/safo-124/high-purchase-sub010/internal/service"
)

// Spreadsheet column headers for purchase imports. Multi-valued cells
// (Products, Quantities, Unit Prices) are semicolon-delimited and must
// align positionally.
const (
	ColPurchaseNumber = "Purchase Number"
	ColShopSlug       = "Shop Slug"
	ColCustomerPhone  = "Customer Phone"
	ColProducts       = "Products"
	ColQuantities     = "Quantities"
	ColUnitPrices     = "Unit Prices"
	ColPurchaseType   = "Purchase Type"
	ColDownPayment    = "Down Payment"
	ColInstallments   = "Installments"
	ColDueDate        = "Due Date"
	ColNotes          = "Notes"
)

// maxReportedErrors caps the per-row errors carried in a Summary; the
// total count is always exact.
const maxReportedErrors = 10

// RowError is one failed spreadsheet row. Row is the spreadsheet row
// number as the user sees it (header is row 1).
type RowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

func (e RowError) Error() string {
	return fmt.Sprintf("Row %d: %s", e.Row, e.Message)
}

// Summary reports the outcome of one import run. Errors holds at most
// maxReportedErrors entries; TotalErrors is the real count.
type Summary struct {
	Created     int        `json:"created"`
	Updated     int        `json:"updated"`
	Skipped     int        `json:"skipped"`
	Errors      []RowError `json:"errors"`
	TotalErrors int        `json:"total_errors"`
}

func (s *Summary) addError(row int, message string) {
	s.TotalErrors++
	if len(s.Errors) < maxReportedErrors {
		s.Errors = append(s.Errors, RowError{Row: row, Message: message})
	}
}

// Narrow resolver surfaces so imports can be exercised without a
// database. The repository types satisfy them as-is.

type ShopResolver interface {
	FindBySlug(ctx context.Context, businessID uuid.UUID, slug string) (*model.Shop, error)
}

type CustomerResolver interface {
	FindByPhone(ctx context.Context, businessID uuid.UUID, phone string) (*model.Customer, error)
}

type ProductResolver interface {
	FindBySKU(ctx context.Context, businessID uuid.UUID, sku string) (*model.Product, error)
}

type PurchaseFinder interface {
	FindByNumber(ctx context.Context, businessID uuid.UUID, number string) (*model.Purchase, error)
}

type PurchaseCreator interface {
	CreatePurchase(ctx context.Context, businessID uuid.UUID, req service.CreatePurchaseRequest, actor service.Actor) (service.PurchaseResponse, error)
}

// PurchaseImporter turns an uploaded workbook into purchases. Rows are
// processed sequentially and independently: each row is its own
// transaction, and one bad row never aborts the batch.
type PurchaseImporter struct {
	Shops     ShopResolver
	Customers CustomerResolver
	Products  ProductResolver
	Purchases PurchaseFinder
	Creator   PurchaseCreator
}

// Import reads the first sheet of the workbook and creates one purchase
// per data row. Rows carrying a Purchase Number that already exists are
// counted as updated and left untouched, which makes export/import
// round-trips idempotent.
func (imp *PurchaseImporter) Import(ctx context.Context, businessID uuid.UUID, r io.Reader, actor service.Actor) (Summary, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return Summary{}, &ledger.ValidationError{Field: "file", Message: "not a readable spreadsheet"}
	}
	defer f.Close()

	rows, header, err := sheetRows(f)
	if err != nil {
		return Summary{}, err
	}
	required := []string{ColShopSlug, ColCustomerPhone, ColProducts, ColQuantities, ColUnitPrices, ColPurchaseType}
	for _, col := range required {
		if _, ok := header[col]; !ok {
			return Summary{}, &ledger.ValidationError{Field: "file", Message: fmt.Sprintf("missing required column %q", col)}
		}
	}

	var summary Summary
	for i, row := range rows {
		rowNum := i + 2 // 1-based, after the header row
		if blankRow(row) {
			continue
		}
		created, updated, err := imp.importRow(ctx, businessID, header, row, actor)
		switch {
		case err != nil:
			summary.addError(rowNum, err.Error())
		case created:
			summary.Created++
		case updated:
			summary.Updated++
		default:
			summary.Skipped++
		}
	}
	return summary, nil
}

func (imp *PurchaseImporter) importRow(ctx context.Context, businessID uuid.UUID, header map[string]int, row []string, actor service.Actor) (created, updated bool, err error) {
	cell := func(col string) string {
		idx, ok := header[col]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	// Existing numbers mean the row round-tripped through an export;
	// re-importing must not duplicate the purchase.
	if number := cell(ColPurchaseNumber); number != "" {
		if _, err := imp.Purchases.FindByNumber(ctx, businessID, number); err == nil {
			return false, true, nil
		}
	}

	shopSlug := cell(ColShopSlug)
	shop, err := imp.Shops.FindBySlug(ctx, businessID, shopSlug)
	if err != nil {
		return false, false, fmt.Errorf("unknown shop slug %q", shopSlug)
	}

	phone := cell(ColCustomerPhone)
	customer, err := imp.Customers.FindByPhone(ctx, businessID, phone)
	if err != nil {
		return false, false, fmt.Errorf("unknown customer phone %q", phone)
	}

	purchaseType := strings.ToUpper(cell(ColPurchaseType))
	switch purchaseType {
	case model.PurchaseTypeCash, model.PurchaseTypeLayaway, model.PurchaseTypeCredit:
	default:
		return false, false, fmt.Errorf("invalid purchase type %q", cell(ColPurchaseType))
	}

	items, err := imp.buildItems(ctx, businessID, cell(ColProducts), cell(ColQuantities), cell(ColUnitPrices))
	if err != nil {
		return false, false, err
	}

	req := service.CreatePurchaseRequest{
		CustomerID: customer.ID.String(),
		ShopID:     shop.ID.String(),
		Type:       purchaseType,
		Items:      items,
		Note:       cell(ColNotes),
	}
	if dp := cell(ColDownPayment); dp != "" {
		if _, err := strconv.ParseFloat(dp, 64); err != nil {
			return false, false, fmt.Errorf("invalid down payment %q", dp)
		}
		req.DownPayment = dp
	}
	if inst := cell(ColInstallments); inst != "" {
		n, err := strconv.Atoi(inst)
		if err != nil || n < 1 {
			return false, false, fmt.Errorf("invalid installments %q", inst)
		}
		req.Installments = n
	}
	if due := cell(ColDueDate); due != "" {
		// Due date arrives as a date; the service derives it from tenor,
		// so pass it through as the start-relative note instead of
		// recomputing. Imports supply an explicit start date of today and
		// the sheet's due date wins via tenor days.
		req.StartDate, req.TenorDays, err = dueDateToTenor(due)
		if err != nil {
			return false, false, err
		}
	}

	if _, err := imp.Creator.CreatePurchase(ctx, businessID, req, actor); err != nil {
		return false, false, err
	}
	return true, false, nil
}

// buildItems parses the aligned semicolon-delimited Products, Quantities,
// and Unit Prices cells.
func (imp *PurchaseImporter) buildItems(ctx context.Context, businessID uuid.UUID, products, quantities, prices string) ([]service.CreatePurchaseItemRequest, error) {
	skus := splitCell(products)
	qtys := splitCell(quantities)
	unitPrices := splitCell(prices)

	if len(skus) == 0 {
		return nil, fmt.Errorf("no products listed")
	}
	if len(qtys) != len(skus) {
		return nil, fmt.Errorf("quantities count %d does not match products count %d", len(qtys), len(skus))
	}
	if len(unitPrices) != 0 && len(unitPrices) != len(skus) {
		return nil, fmt.Errorf("unit prices count %d does not match products count %d", len(unitPrices), len(skus))
	}

	items := make([]service.CreatePurchaseItemRequest, 0, len(skus))
	for i, sku := range skus {
		product, err := imp.Products.FindBySKU(ctx, businessID, sku)
		if err != nil {
			return nil, fmt.Errorf("unknown product SKU %q", sku)
		}
		qty, err := strconv.Atoi(qtys[i])
		if err != nil || qty < 1 {
			return nil, fmt.Errorf("invalid quantity %q for SKU %q", qtys[i], sku)
		}
		item := service.CreatePurchaseItemRequest{
			ProductID: product.ID.String(),
			Quantity:  qty,
		}
		if len(unitPrices) != 0 {
			if _, err := strconv.ParseFloat(unitPrices[i], 64); err != nil {
				return nil, fmt.Errorf("invalid unit price %q for SKU %q", unitPrices[i], sku)
			}
			item.UnitPrice = unitPrices[i]
		}
		items = append(items, item)
	}
	return items, nil
}

// dueDateToTenor converts a sheet's absolute due date into the start
// date plus tenor days the create request expects.
func dueDateToTenor(due string) (string, int, error) {
	dueDate, err := time.Parse("2006-01-02", due)
	if err != nil {
		return "", 0, fmt.Errorf("invalid due date %q, expected YYYY-MM-DD", due)
	}
	start := time.Now().Truncate(24 * time.Hour)
	days := int(dueDate.Sub(start).Hours() / 24)
	if days < 1 {
		return "", 0, fmt.Errorf("due date %q is not in the future", due)
	}
	return start.Format("2006-01-02"), days, nil
}

func splitCell(cell string) []string {
	if strings.TrimSpace(cell) == "" {
		return nil
	}
	parts := strings.Split(cell, ";")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func blankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// sheetRows reads the first sheet, returning its data rows and a
// header-name to column-index map.
func sheetRows(f *excelize.File) ([][]string, map[string]int, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, &ledger.ValidationError{Field: "file", Message: "workbook has no sheets"}
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, nil, err
	}
	if len(rows) < 1 {
		return nil, nil, &ledger.ValidationError{Field: "file", Message: "sheet is empty"}
	}

	header := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		header[strings.TrimSpace(name)] = i
	}
	return rows[1:], header, nil
}
