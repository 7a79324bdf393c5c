package bulk

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/safo-124/high-purchase-sub010/internal/model"
	"github.com/safo-124/high-purchase-sub010/internal/repository"
)

const exportSheet = "Purchases"

// exportHeader mirrors the import columns so an exported workbook can be
// edited and re-imported, plus read-only ledger columns at the end.
var exportHeader = []string{
	ColPurchaseNumber,
	ColShopSlug,
	ColCustomerPhone,
	"Customer Name",
	ColProducts,
	ColQuantities,
	ColUnitPrices,
	ColPurchaseType,
	ColDownPayment,
	ColInstallments,
	ColDueDate,
	ColNotes,
	"Status",
	"Total Amount",
	"Amount Paid",
	"Outstanding Balance",
}

// PurchaseExporter writes the business's purchases to a workbook.
type PurchaseExporter struct {
	Purchases repository.PurchaseRepository
}

// Export builds a workbook with the full purchase ledger on one sheet and
// a Template sheet describing the import columns.
func (exp *PurchaseExporter) Export(ctx context.Context, businessID uuid.UUID) (*excelize.File, error) {
	f := excelize.NewFile()
	f.SetSheetName(f.GetSheetName(0), exportSheet)

	if err := f.SetSheetRow(exportSheet, "A1", &exportHeader); err != nil {
		return nil, err
	}

	rowNum := 2
	for page := 1; ; page++ {
		purchases, _, err := exp.Purchases.List(ctx, repository.PurchaseListFilter{
			BusinessID: businessID,
			Page:       page,
			Limit:      500,
		})
		if err != nil {
			return nil, err
		}
		if len(purchases) == 0 {
			break
		}
		for i := range purchases {
			row := exportRow(&purchases[i])
			cell, err := excelize.CoordinatesToCellName(1, rowNum)
			if err != nil {
				return nil, err
			}
			if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
				return nil, err
			}
			rowNum++
		}
		if len(purchases) < 500 {
			break
		}
	}

	if err := writeTemplateSheet(f); err != nil {
		return nil, err
	}
	return f, nil
}

func exportRow(p *model.Purchase) []interface{} {
	var skus, qtys, prices []string
	for _, item := range p.Items {
		sku := item.ProductID.String()
		if item.Product != nil {
			sku = item.Product.SKU
		}
		skus = append(skus, sku)
		qtys = append(qtys, fmt.Sprintf("%d", item.Quantity))
		prices = append(prices, item.UnitPrice.StringFixed(2))
	}

	shopSlug := ""
	if p.Shop != nil {
		shopSlug = p.Shop.Slug
	}
	customerPhone, customerName := "", ""
	if p.Customer != nil {
		customerPhone = p.Customer.Phone
		customerName = p.Customer.Name
	}

	return []interface{}{
		p.Number,
		shopSlug,
		customerPhone,
		customerName,
		strings.Join(skus, ";"),
		strings.Join(qtys, ";"),
		strings.Join(prices, ";"),
		p.Type,
		p.DownPayment.StringFixed(2),
		p.Installments,
		p.DueDate.Format("2006-01-02"),
		p.Note,
		p.Status,
		p.TotalAmount.StringFixed(2),
		p.AmountPaid.StringFixed(2),
		p.OutstandingBalance.StringFixed(2),
	}
}

func writeTemplateSheet(f *excelize.File) error {
	const sheet = "Template"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	guide := [][]interface{}{
		{"Column", "Required", "Notes"},
		{ColPurchaseNumber, "no", "leave blank for new purchases; existing numbers are skipped on re-import"},
		{ColShopSlug, "yes", "must match an existing shop slug"},
		{ColCustomerPhone, "yes", "must match an existing customer phone"},
		{ColProducts, "yes", "product SKUs, semicolon-delimited"},
		{ColQuantities, "yes", "one per product, semicolon-delimited"},
		{ColUnitPrices, "no", "one per product when present; defaults to catalog price"},
		{ColPurchaseType, "yes", "CASH, LAYAWAY, or CREDIT"},
		{ColDownPayment, "no", "decimal amount, defaults to 0"},
		{ColInstallments, "no", "defaults to the business policy"},
		{ColDueDate, "no", "YYYY-MM-DD, must be in the future"},
		{ColNotes, "no", ""},
	}
	for i, row := range guide {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}
