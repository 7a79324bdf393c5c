package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/safo-124/high-purchase-sub010/internal/middleware"
	"github.com/safo-124/high-purchase-sub010/internal/service"
	"github.com/safo-124/high-purchase-sub010/pkg/pagination"
	"github.com/safo-124/high-purchase-sub010/pkg/response"
)

type RefundHandler struct {
	refundService service.RefundService
}

func NewRefundHandler(refundService service.RefundService) *RefundHandler {
	return &RefundHandler{refundService: refundService}
}

func (h *RefundHandler) RegisterRoutes(router *gin.RouterGroup) {
	refunds := router.Group("/api/refunds")
	{
		refunds.POST("", middleware.RequireStaff(), h.CreateRefundRequest)
		refunds.GET("", middleware.RequireStaff(), h.ListRefunds)
		refunds.GET("/:id", middleware.RequireStaff(), h.GetRefund)
		refunds.PUT("/:id/approve", middleware.RequireConfirmAuthority(), h.ApproveRefund)
		refunds.PUT("/:id/process", middleware.RequireConfirmAuthority(), h.ProcessRefund)
		refunds.PUT("/:id/reject", middleware.RequireConfirmAuthority(), h.RejectRefund)
	}
}

// CreateRefundRequest opens a PENDING refund request
// @Summary      Request refund
// @Description  Opens a refund request, checked against the purchase total net of committed refunds
// @Tags         refunds
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateRefundRequest  true  "Create Refund Payload"
// @Success      201      {object}  response.Response{data=service.RefundResponse}
// @Failure      422      {object}  response.Response
// @Router       /api/refunds [post]
func (h *RefundHandler) CreateRefundRequest(c *gin.Context) {
	businessID, actor, ok := scope(c)
	if !ok {
		return
	}

	var req service.CreateRefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	refund, err := h.refundService.CreateRefundRequest(c.Request.Context(), businessID, req, actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, refund))
}

// ApproveRefund moves a refund PENDING -> APPROVED
// @Summary      Approve refund
// @Tags         refunds
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Refund ID"
// @Success      200  {object}  response.Response{data=service.RefundResponse}
// @Failure      409  {object}  response.Response
// @Router       /api/refunds/{id}/approve [put]
func (h *RefundHandler) ApproveRefund(c *gin.Context) {
	businessID, actor, ok := scope(c)
	if !ok {
		return
	}
	refund, err := h.refundService.ApproveRefund(c.Request.Context(), businessID, c.Param("id"), actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, refund))
}

// ProcessRefund settles an APPROVED refund and reconciles the purchase
// @Summary      Process refund
// @Tags         refunds
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                        true  "Refund ID"
// @Param        payload  body      service.ProcessRefundRequest  true  "Disbursement reference"
// @Success      200      {object}  response.Response{data=service.RefundResponse}
// @Failure      409      {object}  response.Response
// @Router       /api/refunds/{id}/process [put]
func (h *RefundHandler) ProcessRefund(c *gin.Context) {
	businessID, actor, ok := scope(c)
	if !ok {
		return
	}

	var req service.ProcessRefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	refund, err := h.refundService.ProcessRefund(c.Request.Context(), businessID, c.Param("id"), req, actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, refund))
}

// RejectRefund moves a refund PENDING -> REJECTED
// @Summary      Reject refund
// @Tags         refunds
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                       true  "Refund ID"
// @Param        payload  body      service.RejectRefundRequest  true  "Rejection reason"
// @Success      200      {object}  response.Response{data=service.RefundResponse}
// @Failure      409      {object}  response.Response
// @Router       /api/refunds/{id}/reject [put]
func (h *RefundHandler) RejectRefund(c *gin.Context) {
	businessID, actor, ok := scope(c)
	if !ok {
		return
	}

	var req service.RejectRefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	refund, err := h.refundService.RejectRefund(c.Request.Context(), businessID, c.Param("id"), req, actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, refund))
}

// GetRefund returns one refund
// @Summary      Get refund
// @Tags         refunds
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Refund ID"
// @Success      200  {object}  response.Response{data=service.RefundResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/refunds/{id} [get]
func (h *RefundHandler) GetRefund(c *gin.Context) {
	businessID, ok := businessFrom(c)
	if !ok {
		return
	}
	refund, err := h.refundService.GetRefund(c.Request.Context(), businessID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, refund))
}

// ListRefunds returns a paginated refund listing
// @Summary      List refunds
// @Tags         refunds
// @Security     BearerAuth
// @Produce      json
// @Param        status       query  string  false  "PENDING, APPROVED, PROCESSED, REJECTED"
// @Param        purchase_id  query  string  false  "Filter by purchase"
// @Param        customer_id  query  string  false  "Filter by customer"
// @Param        page         query  int     false  "Page number (default 1)"
// @Param        limit        query  int     false  "Items per page (default 20)"
// @Success      200  {object}  response.Response{data=response.Page}
// @Router       /api/refunds [get]
func (h *RefundHandler) ListRefunds(c *gin.Context) {
	businessID, ok := businessFrom(c)
	if !ok {
		return
	}
	params := pagination.Parse(c)

	refunds, total, err := h.refundService.ListRefunds(c.Request.Context(), service.RefundFilter{
		BusinessID: businessID,
		Status:     c.Query("status"),
		PurchaseID: c.Query("purchase_id"),
		CustomerID: c.Query("customer_id"),
		Page:       params.Page,
		Limit:      params.Limit,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, refunds, total, params.Page, params.Limit))
}
