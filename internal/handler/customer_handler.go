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

type CustomerHandler struct {
	customerService service.CustomerService
	walletService   service.WalletService
	receiptService  service.ReceiptService
}

func NewCustomerHandler(
	customerService service.CustomerService,
	walletService service.WalletService,
	receiptService service.ReceiptService,
) *CustomerHandler {
	return &CustomerHandler{
		customerService: customerService,
		walletService:   walletService,
		receiptService:  receiptService,
	}
}

func (h *CustomerHandler) RegisterRoutes(router *gin.RouterGroup) {
	customers := router.Group("/api/customers")
	{
		customers.POST("", middleware.RequireRole(model.RoleBusinessAdmin, model.RoleShopAdmin), h.CreateCustomer)
		customers.GET("", middleware.RequireStaff(), h.ListCustomers)
		customers.GET("/:id", middleware.RequireStaff(), h.GetCustomer)
		customers.PUT("/:id", middleware.RequireRole(model.RoleBusinessAdmin, model.RoleShopAdmin), h.UpdateCustomer)
		customers.POST("/:id/wallet/deposits", middleware.RequireStaff(), h.Deposit)
		customers.GET("/:id/wallet/transactions", middleware.RequireStaff(), h.ListWalletTransactions)
	}

	router.GET("/api/wallet-transactions/:id/receipt", middleware.RequireStaff(), h.GetDepositReceipt)
}

// CreateCustomer registers a customer
// @Summary      Create customer
// @Tags         customers
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateCustomerRequest  true  "Create Customer Payload"
// @Success      201      {object}  response.Response{data=service.CustomerResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/customers [post]
func (h *CustomerHandler) CreateCustomer(c *gin.Context) {
	businessID, ok := businessFrom(c)
	if !ok {
		return
	}

	var req service.CreateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	customer, err := h.customerService.CreateCustomer(c.Request.Context(), businessID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, customer))
}

// GetCustomer returns one customer with their wallet balance
// @Summary      Get customer
// @Tags         customers
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Customer ID"
// @Success      200  {object}  response.Response{data=service.CustomerResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/customers/{id} [get]
func (h *CustomerHandler) GetCustomer(c *gin.Context) {
	businessID, ok := businessFrom(c)
	if !ok {
		return
	}
	customer, err := h.customerService.GetCustomer(c.Request.Context(), businessID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, customer))
}

// ListCustomers returns a paginated customer listing
// @Summary      List customers
// @Tags         customers
// @Security     BearerAuth
// @Produce      json
// @Param        search  query  string  false  "Match on name or phone"
// @Param        page    query  int     false  "Page number (default 1)"
// @Param        limit   query  int     false  "Items per page (default 20)"
// @Success      200  {object}  response.Response{data=response.Page}
// @Router       /api/customers [get]
func (h *CustomerHandler) ListCustomers(c *gin.Context) {
	businessID, ok := businessFrom(c)
	if !ok {
		return
	}
	params := pagination.Parse(c)

	customers, total, err := h.customerService.ListCustomers(c.Request.Context(), businessID, c.Query("search"), params.Page, params.Limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, customers, total, params.Page, params.Limit))
}

// UpdateCustomer edits customer contact details
// @Summary      Update customer
// @Tags         customers
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                         true  "Customer ID"
// @Param        payload  body      service.UpdateCustomerRequest  true  "Update Customer Payload"
// @Success      200      {object}  response.Response{data=service.CustomerResponse}
// @Failure      404      {object}  response.Response
// @Router       /api/customers/{id} [put]
func (h *CustomerHandler) UpdateCustomer(c *gin.Context) {
	businessID, ok := businessFrom(c)
	if !ok {
		return
	}

	var req service.UpdateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	customer, err := h.customerService.UpdateCustomer(c.Request.Context(), businessID, c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, customer))
}

// Deposit credits the customer wallet
// @Summary      Wallet deposit
// @Tags         customers
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                        true  "Customer ID"
// @Param        payload  body      service.WalletDepositRequest  true  "Deposit Payload"
// @Success      201      {object}  response.Response{data=service.WalletTransactionResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/customers/{id}/wallet/deposits [post]
func (h *CustomerHandler) Deposit(c *gin.Context) {
	businessID, actor, ok := scope(c)
	if !ok {
		return
	}

	var req service.WalletDepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	deposit, err := h.walletService.Deposit(c.Request.Context(), businessID, c.Param("id"), req, actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, deposit))
}

// ListWalletTransactions returns the customer's wallet history
// @Summary      Wallet history
// @Tags         customers
// @Security     BearerAuth
// @Produce      json
// @Param        id     path   string  true   "Customer ID"
// @Param        page   query  int     false  "Page number (default 1)"
// @Param        limit  query  int     false  "Items per page (default 20)"
// @Success      200  {object}  response.Response{data=response.Page}
// @Router       /api/customers/{id}/wallet/transactions [get]
func (h *CustomerHandler) ListWalletTransactions(c *gin.Context) {
	businessID, ok := businessFrom(c)
	if !ok {
		return
	}
	params := pagination.Parse(c)

	txs, total, err := h.walletService.ListTransactions(c.Request.Context(), businessID, c.Param("id"), params.Page, params.Limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, txs, total, params.Page, params.Limit))
}

// GetDepositReceipt renders the receipt for a wallet deposit
// @Summary      Deposit receipt
// @Tags         customers
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Wallet Transaction ID"
// @Success      200  {object}  response.Response{data=service.ReceiptResponse}
// @Failure      400  {object}  response.Response
// @Router       /api/wallet-transactions/{id}/receipt [get]
func (h *CustomerHandler) GetDepositReceipt(c *gin.Context) {
	businessID, ok := businessFrom(c)
	if !ok {
		return
	}
	receipt, err := h.receiptService.BuildDepositReceipt(c.Request.Context(), businessID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, receipt))
}
