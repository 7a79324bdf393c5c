package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/safo-124/high-purchase-sub010/internal/middleware"
	"github.com/safo-124/high-purchase-sub010/internal/model"
	"github.com/safo-124/high-purchase-sub010/internal/service"
	"github.com/safo-124/high-purchase-sub010/pkg/pagination"
	"github.com/safo-124/high-purchase-sub010/pkg/response"
)

type WaybillHandler struct {
	waybillService service.WaybillService
}

func NewWaybillHandler(waybillService service.WaybillService) *WaybillHandler {
	return &WaybillHandler{waybillService: waybillService}
}

func (h *WaybillHandler) RegisterRoutes(router *gin.RouterGroup) {
	waybills := router.Group("/api/waybills")
	{
		waybills.POST("", middleware.RequireRole(model.RoleBusinessAdmin, model.RoleShopAdmin), h.GenerateWaybill)
		waybills.GET("", middleware.RequireStaff(), h.ListWaybills)
		waybills.GET("/:id", middleware.RequireStaff(), h.GetWaybill)
		waybills.PUT("/:id/status", middleware.RequireStaff(), h.UpdateDeliveryStatus)
	}
}

// GenerateWaybill issues the dispatch document for a fully paid purchase
// @Summary      Generate waybill
// @Tags         waybills
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.GenerateWaybillRequest  true  "Generate Waybill Payload"
// @Success      201      {object}  response.Response{data=service.WaybillResponse}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/waybills [post]
func (h *WaybillHandler) GenerateWaybill(c *gin.Context) {
	businessID, actor, ok := scope(c)
	if !ok {
		return
	}

	var req service.GenerateWaybillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	waybill, err := h.waybillService.GenerateWaybill(c.Request.Context(), businessID, req, actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, waybill))
}

// UpdateDeliveryStatus advances a waybill along the delivery lifecycle
// @Summary      Update delivery status
// @Tags         waybills
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                               true  "Waybill ID"
// @Param        payload  body      service.UpdateDeliveryStatusRequest  true  "Next status"
// @Success      200      {object}  response.Response{data=service.WaybillResponse}
// @Failure      409      {object}  response.Response
// @Router       /api/waybills/{id}/status [put]
func (h *WaybillHandler) UpdateDeliveryStatus(c *gin.Context) {
	businessID, actor, ok := scope(c)
	if !ok {
		return
	}

	var req service.UpdateDeliveryStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	waybill, err := h.waybillService.UpdateDeliveryStatus(c.Request.Context(), businessID, c.Param("id"), req, actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, waybill))
}

// GetWaybill returns one waybill
// @Summary      Get waybill
// @Tags         waybills
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Waybill ID"
// @Success      200  {object}  response.Response{data=service.WaybillResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/waybills/{id} [get]
func (h *WaybillHandler) GetWaybill(c *gin.Context) {
	businessID, ok := businessFrom(c)
	if !ok {
		return
	}
	waybill, err := h.waybillService.GetWaybill(c.Request.Context(), businessID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, waybill))
}

// ListWaybills returns a paginated waybill listing
// @Summary      List waybills
// @Tags         waybills
// @Security     BearerAuth
// @Produce      json
// @Param        status  query  string  false  "PENDING, SCHEDULED, IN_TRANSIT, DELIVERED, FAILED"
// @Param        page    query  int     false  "Page number (default 1)"
// @Param        limit   query  int     false  "Items per page (default 20)"
// @Success      200  {object}  response.Response{data=response.Page}
// @Router       /api/waybills [get]
func (h *WaybillHandler) ListWaybills(c *gin.Context) {
	businessID, ok := businessFrom(c)
	if !ok {
		return
	}
	params := pagination.Parse(c)

	waybills, total, err := h.waybillService.ListWaybills(c.Request.Context(), businessID, c.Query("status"), params.Page, params.Limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, waybills, total, params.Page, params.Limit))
}
