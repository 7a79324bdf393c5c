package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/safo-124/high-purchase-sub010/internal/middleware"
	"github.com/safo-124/high-purchase-sub010/internal/service"
	"github.com/safo-124/high-purchase-sub010/pkg/pagination"
	"github.com/safo-124/high-purchase-sub010/pkg/response"
)

type PaymentHandler struct {
	paymentService service.PaymentService
	receiptService service.ReceiptService
}

func NewPaymentHandler(paymentService service.PaymentService, receiptService service.ReceiptService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService, receiptService: receiptService}
}

func (h *PaymentHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/api/purchases/:id/payments", middleware.RequireStaff(), h.RecordPayment)

	payments := router.Group("/api/payments")
	{
		payments.GET("", middleware.RequireStaff(), h.ListPayments)
		payments.GET("/:id", middleware.RequireStaff(), h.GetPayment)
		payments.GET("/:id/receipt", middleware.RequireStaff(), h.GetReceipt)
		payments.PUT("/:id/confirm", middleware.RequireConfirmAuthority(), h.ConfirmPayment)
		payments.PUT("/:id/reject", middleware.RequireConfirmAuthority(), h.RejectPayment)
	}
}

// RecordPayment records a payment against a purchase
// @Summary      Record payment
// @Description  Records a payment. Confirm-authority roles confirm immediately; others await review.
// @Tags         payments
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                        true  "Purchase ID"
// @Param        payload  body      service.RecordPaymentRequest  true  "Record Payment Payload"
// @Success      201      {object}  response.Response{data=service.PaymentResponse}
// @Failure      422      {object}  response.Response
// @Router       /api/purchases/{id}/payments [post]
func (h *PaymentHandler) RecordPayment(c *gin.Context) {
	businessID, actor, ok := scope(c)
	if !ok {
		return
	}

	var req service.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	payment, err := h.paymentService.RecordPayment(c.Request.Context(), businessID, c.Param("id"), req, actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, payment))
}

// ConfirmPayment confirms an unconfirmed payment
// @Summary      Confirm payment
// @Tags         payments
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Payment ID"
// @Success      200  {object}  response.Response{data=service.PaymentResponse}
// @Failure      409  {object}  response.Response
// @Router       /api/payments/{id}/confirm [put]
func (h *PaymentHandler) ConfirmPayment(c *gin.Context) {
	businessID, actor, ok := scope(c)
	if !ok {
		return
	}
	payment, err := h.paymentService.ConfirmPayment(c.Request.Context(), businessID, c.Param("id"), actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, payment))
}

// RejectPayment rejects an unconfirmed payment
// @Summary      Reject payment
// @Tags         payments
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                        true  "Payment ID"
// @Param        payload  body      service.RejectPaymentRequest  true  "Rejection reason"
// @Success      200      {object}  response.Response{data=service.PaymentResponse}
// @Failure      409      {object}  response.Response
// @Router       /api/payments/{id}/reject [put]
func (h *PaymentHandler) RejectPayment(c *gin.Context) {
	businessID, actor, ok := scope(c)
	if !ok {
		return
	}

	var req service.RejectPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	payment, err := h.paymentService.RejectPayment(c.Request.Context(), businessID, c.Param("id"), req, actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, payment))
}

// GetPayment returns one payment
// @Summary      Get payment
// @Tags         payments
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Payment ID"
// @Success      200  {object}  response.Response{data=service.PaymentResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/payments/{id} [get]
func (h *PaymentHandler) GetPayment(c *gin.Context) {
	businessID, ok := businessFrom(c)
	if !ok {
		return
	}
	payment, err := h.paymentService.GetPayment(c.Request.Context(), businessID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, payment))
}

// GetReceipt renders the receipt for a confirmed payment
// @Summary      Payment receipt
// @Tags         payments
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Payment ID"
// @Success      200  {object}  response.Response{data=service.ReceiptResponse}
// @Failure      400  {object}  response.Response
// @Router       /api/payments/{id}/receipt [get]
func (h *PaymentHandler) GetReceipt(c *gin.Context) {
	businessID, ok := businessFrom(c)
	if !ok {
		return
	}
	receipt, err := h.receiptService.BuildPaymentReceipt(c.Request.Context(), businessID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, receipt))
}

// ListPayments returns a paginated payment listing
// @Summary      List payments
// @Tags         payments
// @Security     BearerAuth
// @Produce      json
// @Param        purchase_id  query  string  false  "Filter by purchase"
// @Param        method       query  string  false  "Filter by method"
// @Param        unconfirmed  query  bool    false  "Only payments awaiting review"
// @Param        page         query  int     false  "Page number (default 1)"
// @Param        limit        query  int     false  "Items per page (default 20)"
// @Success      200  {object}  response.Response{data=response.Page}
// @Router       /api/payments [get]
func (h *PaymentHandler) ListPayments(c *gin.Context) {
	businessID, ok := businessFrom(c)
	if !ok {
		return
	}
	params := pagination.Parse(c)

	payments, total, err := h.paymentService.ListPayments(c.Request.Context(), service.PaymentFilter{
		BusinessID:  businessID,
		PurchaseID:  c.Query("purchase_id"),
		Method:      c.Query("method"),
		Unconfirmed: c.Query("unconfirmed") == "true",
		Page:        params.Page,
		Limit:       params.Limit,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, payments, total, params.Page, params.Limit))
}
