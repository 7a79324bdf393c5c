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

// CatalogHandler serves shops, products, and per-shop stock assignment.
type CatalogHandler struct {
	shopService    service.ShopService
	productService service.ProductService
}

func NewCatalogHandler(shopService service.ShopService, productService service.ProductService) *CatalogHandler {
	return &CatalogHandler{shopService: shopService, productService: productService}
}

func (h *CatalogHandler) RegisterRoutes(router *gin.RouterGroup) {
	shops := router.Group("/api/shops")
	{
		shops.POST("", middleware.RequireRole(model.RoleBusinessAdmin), h.CreateShop)
		shops.GET("", middleware.RequireStaff(), h.ListShops)
		shops.GET("/:id", middleware.RequireStaff(), h.GetShop)
		shops.PUT("/:id", middleware.RequireRole(model.RoleBusinessAdmin), h.UpdateShop)
		shops.GET("/:id/stock", middleware.RequireStaff(), h.ListShopStock)
	}

	products := router.Group("/api/products")
	{
		products.POST("", middleware.RequireRole(model.RoleBusinessAdmin), h.CreateProduct)
		products.GET("", middleware.RequireStaff(), h.ListProducts)
		products.GET("/:id", middleware.RequireStaff(), h.GetProduct)
		products.PUT("/:id", middleware.RequireRole(model.RoleBusinessAdmin), h.UpdateProduct)
		products.PUT("/:id/stock", middleware.RequireRole(model.RoleBusinessAdmin, model.RoleShopAdmin), h.AssignStock)
	}
}

// CreateShop registers a retail outlet
// @Summary      Create shop
// @Tags         catalog
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateShopRequest  true  "Create Shop Payload"
// @Success      201      {object}  response.Response{data=service.ShopResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/shops [post]
func (h *CatalogHandler) CreateShop(c *gin.Context) {
	businessID, ok := businessFrom(c)
	if !ok {
		return
	}

	var req service.CreateShopRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	shop, err := h.shopService.CreateShop(c.Request.Context(), businessID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, shop))
}

// ListShops lists the business's shops
// @Summary      List shops
// @Tags         catalog
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=[]service.ShopResponse}
// @Router       /api/shops [get]
func (h *CatalogHandler) ListShops(c *gin.Context) {
	businessID, ok := businessFrom(c)
	if !ok {
		return
	}
	shops, err := h.shopService.ListShops(c.Request.Context(), businessID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, shops))
}

// GetShop returns one shop
// @Summary      Get shop
// @Tags         catalog
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Shop ID"
// @Success      200  {object}  response.Response{data=service.ShopResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/shops/{id} [get]
func (h *CatalogHandler) GetShop(c *gin.Context) {
	businessID, ok := businessFrom(c)
	if !ok {
		return
	}
	shop, err := h.shopService.GetShop(c.Request.Context(), businessID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, shop))
}

// UpdateShop edits shop details
// @Summary      Update shop
// @Tags         catalog
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                     true  "Shop ID"
// @Param        payload  body      service.UpdateShopRequest  true  "Update Shop Payload"
// @Success      200      {object}  response.Response{data=service.ShopResponse}
// @Failure      404      {object}  response.Response
// @Router       /api/shops/{id} [put]
func (h *CatalogHandler) UpdateShop(c *gin.Context) {
	businessID, ok := businessFrom(c)
	if !ok {
		return
	}

	var req service.UpdateShopRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	shop, err := h.shopService.UpdateShop(c.Request.Context(), businessID, c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, shop))
}

// ListShopStock lists the products assigned to a shop
// @Summary      List shop stock
// @Tags         catalog
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Shop ID"
// @Success      200  {object}  response.Response{data=[]service.ShopStockResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/shops/{id}/stock [get]
func (h *CatalogHandler) ListShopStock(c *gin.Context) {
	businessID, ok := businessFrom(c)
	if !ok {
		return
	}
	stocks, err := h.productService.ListShopStock(c.Request.Context(), businessID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, stocks))
}

// CreateProduct registers a catalog product
// @Summary      Create product
// @Tags         catalog
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateProductRequest  true  "Create Product Payload"
// @Success      201      {object}  response.Response{data=service.ProductResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/products [post]
func (h *CatalogHandler) CreateProduct(c *gin.Context) {
	businessID, ok := businessFrom(c)
	if !ok {
		return
	}

	var req service.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	product, err := h.productService.CreateProduct(c.Request.Context(), businessID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, product))
}

// ListProducts returns a paginated product listing
// @Summary      List products
// @Tags         catalog
// @Security     BearerAuth
// @Produce      json
// @Param        search  query  string  false  "Match on name or SKU"
// @Param        page    query  int     false  "Page number (default 1)"
// @Param        limit   query  int     false  "Items per page (default 20)"
// @Success      200  {object}  response.Response{data=response.Page}
// @Router       /api/products [get]
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	businessID, ok := businessFrom(c)
	if !ok {
		return
	}
	params := pagination.Parse(c)

	products, total, err := h.productService.ListProducts(c.Request.Context(), businessID, c.Query("search"), params.Page, params.Limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, products, total, params.Page, params.Limit))
}

// GetProduct returns one product
// @Summary      Get product
// @Tags         catalog
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Product ID"
// @Success      200  {object}  response.Response{data=service.ProductResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/products/{id} [get]
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	businessID, ok := businessFrom(c)
	if !ok {
		return
	}
	product, err := h.productService.GetProduct(c.Request.Context(), businessID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, product))
}

// UpdateProduct edits a catalog product
// @Summary      Update product
// @Tags         catalog
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                        true  "Product ID"
// @Param        payload  body      service.UpdateProductRequest  true  "Update Product Payload"
// @Success      200      {object}  response.Response{data=service.ProductResponse}
// @Failure      404      {object}  response.Response
// @Router       /api/products/{id} [put]
func (h *CatalogHandler) UpdateProduct(c *gin.Context) {
	businessID, ok := businessFrom(c)
	if !ok {
		return
	}

	var req service.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	product, err := h.productService.UpdateProduct(c.Request.Context(), businessID, c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, product))
}

// AssignStock assigns a product to a shop with its on-hand quantity
// @Summary      Assign shop stock
// @Tags         catalog
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                      true  "Product ID"
// @Param        payload  body      service.AssignStockRequest  true  "Assignment Payload"
// @Success      200      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/products/{id}/stock [put]
func (h *CatalogHandler) AssignStock(c *gin.Context) {
	businessID, ok := businessFrom(c)
	if !ok {
		return
	}

	var req service.AssignStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	if err := h.productService.AssignStock(c.Request.Context(), businessID, c.Param("id"), req); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"assigned": true}))
}
