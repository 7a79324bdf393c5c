package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/safo-124/high-purchase-sub010/internal/bulk"
	"github.com/safo-124/high-purchase-sub010/internal/middleware"
	"github.com/safo-124/high-purchase-sub010/internal/model"
	"github.com/safo-124/high-purchase-sub010/internal/repository"
	"github.com/safo-124/high-purchase-sub010/internal/service"
	"github.com/safo-124/high-purchase-sub010/pkg/response"
)

type BulkHandler struct {
	purchaseImporter *bulk.PurchaseImporter
	productImporter  *bulk.ProductImporter
	purchaseExporter *bulk.PurchaseExporter
	auditRepo        repository.AuditRepository
}

func NewBulkHandler(
	purchaseImporter *bulk.PurchaseImporter,
	productImporter *bulk.ProductImporter,
	purchaseExporter *bulk.PurchaseExporter,
	auditRepo repository.AuditRepository,
) *BulkHandler {
	return &BulkHandler{
		purchaseImporter: purchaseImporter,
		productImporter:  productImporter,
		purchaseExporter: purchaseExporter,
		auditRepo:        auditRepo,
	}
}

func (h *BulkHandler) RegisterRoutes(router *gin.RouterGroup) {
	imports := router.Group("/api/imports")
	{
		imports.POST("/purchases", middleware.RequireRole(model.RoleBusinessAdmin, model.RoleShopAdmin), h.ImportPurchases)
		imports.POST("/products", middleware.RequireRole(model.RoleBusinessAdmin), h.ImportProducts)
	}
	router.GET("/api/exports/purchases", middleware.RequireRole(model.RoleBusinessAdmin, model.RoleAccountant), h.ExportPurchases)
}

// ImportPurchases ingests a purchase workbook
// @Summary      Import purchases
// @Description  Creates one purchase per spreadsheet row; bad rows are reported, not fatal
// @Tags         bulk
// @Security     BearerAuth
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  true  "Workbook (.xlsx)"
// @Success      200   {object}  response.Response{data=bulk.Summary}
// @Failure      400   {object}  response.Response
// @Router       /api/imports/purchases [post]
func (h *BulkHandler) ImportPurchases(c *gin.Context) {
	businessID, actor, ok := scope(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Missing file upload"))
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Unreadable file upload"))
		return
	}
	defer file.Close()

	summary, err := h.purchaseImporter.Import(c.Request.Context(), businessID, file, actor)
	if err != nil {
		respondError(c, err)
		return
	}

	h.logImport(c, actor, model.ActionImportPurchases, fileHeader.Filename, summary)
	c.JSON(http.StatusOK, response.Success(http.StatusOK, summary))
}

// ImportProducts ingests a product workbook
// @Summary      Import products
// @Description  Upserts the catalog and per-shop stock from a spreadsheet
// @Tags         bulk
// @Security     BearerAuth
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  true  "Workbook (.xlsx)"
// @Success      200   {object}  response.Response{data=bulk.Summary}
// @Failure      400   {object}  response.Response
// @Router       /api/imports/products [post]
func (h *BulkHandler) ImportProducts(c *gin.Context) {
	businessID, actor, ok := scope(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Missing file upload"))
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Unreadable file upload"))
		return
	}
	defer file.Close()

	summary, err := h.productImporter.Import(c.Request.Context(), businessID, file)
	if err != nil {
		respondError(c, err)
		return
	}

	h.logImport(c, actor, model.ActionImportProducts, fileHeader.Filename, summary)
	c.JSON(http.StatusOK, response.Success(http.StatusOK, summary))
}

// ExportPurchases streams the purchase ledger as a workbook
// @Summary      Export purchases
// @Tags         bulk
// @Security     BearerAuth
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success      200
// @Router       /api/exports/purchases [get]
func (h *BulkHandler) ExportPurchases(c *gin.Context) {
	businessID, ok := businessFrom(c)
	if !ok {
		return
	}

	f, err := h.purchaseExporter.Export(c.Request.Context(), businessID)
	if err != nil {
		respondError(c, err)
		return
	}

	filename := fmt.Sprintf("purchases-%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := f.Write(c.Writer); err != nil {
		respondError(c, err)
	}
}

// logImport records the import outcome on the audit trail. Import runs
// are not transactional as a whole, so a failed audit write only logs.
func (h *BulkHandler) logImport(c *gin.Context, actor service.Actor, action, filename string, summary bulk.Summary) {
	userID := actor.UserID
	details := fmt.Sprintf(`{"file":%q,"created":%d,"updated":%d,"errors":%d}`,
		filename, summary.Created, summary.Updated, summary.TotalErrors)
	_ = h.auditRepo.Log(c.Request.Context(), &model.AuditLog{
		UserID:     &userID,
		Action:     action,
		EntityName: filename,
		Details:    details,
	})
}
