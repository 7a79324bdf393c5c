package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/safo-124/high-purchase-sub010/internal/middleware"
	"github.com/safo-124/high-purchase-sub010/internal/model"
	"github.com/safo-124/high-purchase-sub010/internal/service"
	"github.com/safo-124/high-purchase-sub010/pkg/pagination"
	"github.com/safo-124/high-purchase-sub010/pkg/response"
)

type PurchaseHandler struct {
	purchaseService service.PurchaseService
}

func NewPurchaseHandler(purchaseService service.PurchaseService) *PurchaseHandler {
	return &PurchaseHandler{purchaseService: purchaseService}
}

func (h *PurchaseHandler) RegisterRoutes(router *gin.RouterGroup) {
	purchases := router.Group("/api/purchases")
	{
		purchases.POST("", middleware.RequireRole(model.RoleBusinessAdmin, model.RoleShopAdmin), h.CreatePurchase)
		purchases.GET("", middleware.RequireStaff(), h.ListPurchases)
		purchases.GET("/:id", middleware.RequireStaff(), h.GetPurchase)
		purchases.POST("/overdue-sweep", middleware.RequireRole(model.RoleBusinessAdmin, model.RoleAccountant), h.MarkOverdue)
	}
}

// CreatePurchase opens a new hire-purchase sale
// @Summary      Create purchase
// @Description  Creates a purchase with its line items and optional down payment, atomically
// @Tags         purchases
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreatePurchaseRequest  true  "Create Purchase Payload"
// @Success      201      {object}  response.Response{data=service.PurchaseResponse}
// @Failure      400      {object}  response.Response
// @Failure      422      {object}  response.Response
// @Router       /api/purchases [post]
func (h *PurchaseHandler) CreatePurchase(c *gin.Context) {
	businessID, actor, ok := scope(c)
	if !ok {
		return
	}

	var req service.CreatePurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	purchase, err := h.purchaseService.CreatePurchase(c.Request.Context(), businessID, req, actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, purchase))
}

// ListPurchases returns a paginated, filterable purchase listing
// @Summary      List purchases
// @Tags         purchases
// @Security     BearerAuth
// @Produce      json
// @Param        status       query  string  false  "PENDING, ACTIVE, COMPLETED, OVERDUE"
// @Param        type         query  string  false  "CASH, LAYAWAY, CREDIT"
// @Param        shop_id      query  string  false  "Filter by shop"
// @Param        customer_id  query  string  false  "Filter by customer"
// @Param        number       query  string  false  "Partial match on purchase number"
// @Param        page         query  int     false  "Page number (default 1)"
// @Param        limit        query  int     false  "Items per page (default 20)"
// @Success      200  {object}  response.Response{data=response.Page}
// @Router       /api/purchases [get]
func (h *PurchaseHandler) ListPurchases(c *gin.Context) {
	businessID, ok := businessFrom(c)
	if !ok {
		return
	}
	params := pagination.Parse(c)

	purchases, total, err := h.purchaseService.ListPurchases(c.Request.Context(), service.PurchaseFilter{
		BusinessID: businessID,
		Status:     c.Query("status"),
		Type:       c.Query("type"),
		ShopID:     c.Query("shop_id"),
		CustomerID: c.Query("customer_id"),
		Number:     c.Query("number"),
		Page:       params.Page,
		Limit:      params.Limit,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, purchases, total, params.Page, params.Limit))
}

// GetPurchase returns one purchase with its items and ledger state
// @Summary      Get purchase
// @Tags         purchases
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Purchase ID"
// @Success      200  {object}  response.Response{data=service.PurchaseResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/purchases/{id} [get]
func (h *PurchaseHandler) GetPurchase(c *gin.Context) {
	businessID, ok := businessFrom(c)
	if !ok {
		return
	}
	purchase, err := h.purchaseService.GetPurchase(c.Request.Context(), businessID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, purchase))
}

// MarkOverdue sweeps past-due purchases into OVERDUE
// @Summary      Sweep overdue purchases
// @Description  Re-derives status for every purchase past its due date with an outstanding balance
// @Tags         purchases
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=object}
// @Router       /api/purchases/overdue-sweep [post]
func (h *PurchaseHandler) MarkOverdue(c *gin.Context) {
	businessID, actor, ok := scope(c)
	if !ok {
		return
	}
	moved, err := h.purchaseService.MarkOverdue(c.Request.Context(), businessID, time.Now(), actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]int{"marked_overdue": moved}))
}
