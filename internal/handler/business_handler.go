package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/safo-124/high-purchase-sub010/internal/middleware"
	"github.com/safo-124/high-purchase-sub010/internal/model"
	"github.com/safo-124/high-purchase-sub010/internal/service"
	"github.com/safo-124/high-purchase-sub010/pkg/response"
)

// BusinessHandler serves the tenant profile and its hire-purchase
// pricing policy.
type BusinessHandler struct {
	businessService service.BusinessService
}

func NewBusinessHandler(businessService service.BusinessService) *BusinessHandler {
	return &BusinessHandler{businessService: businessService}
}

func (h *BusinessHandler) RegisterRoutes(router *gin.RouterGroup) {
	business := router.Group("/api/business")
	{
		business.GET("", middleware.RequireStaff(), h.GetBusiness)
		business.PUT("/policy", middleware.RequireRole(model.RoleBusinessAdmin), h.UpdatePolicy)
	}
}

// GetBusiness returns the caller's business and its pricing policy
// @Summary      Get business
// @Tags         business
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=service.BusinessResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/business [get]
func (h *BusinessHandler) GetBusiness(c *gin.Context) {
	businessID, ok := businessFrom(c)
	if !ok {
		return
	}
	business, err := h.businessService.GetBusiness(c.Request.Context(), businessID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, business))
}

// UpdatePolicy changes the interest policy applied to new purchases
// @Summary      Update business policy
// @Tags         business
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.UpdateBusinessPolicyRequest  true  "Policy Payload"
// @Success      200      {object}  response.Response{data=service.BusinessResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/business/policy [put]
func (h *BusinessHandler) UpdatePolicy(c *gin.Context) {
	businessID, actor, ok := scope(c)
	if !ok {
		return
	}

	var req service.UpdateBusinessPolicyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	business, err := h.businessService.UpdatePolicy(c.Request.Context(), businessID, req, actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, business))
}
