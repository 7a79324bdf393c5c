package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/safo-124/high-purchase-sub010/internal/middleware"
	"github.com/safo-124/high-purchase-sub010/internal/model"
	"github.com/safo-124/high-purchase-sub010/internal/repository"
	"github.com/safo-124/high-purchase-sub010/pkg/pagination"
	"github.com/safo-124/high-purchase-sub010/pkg/response"
)

type AuditHandler struct {
	auditRepo repository.AuditRepository
}

func NewAuditHandler(auditRepo repository.AuditRepository) *AuditHandler {
	return &AuditHandler{auditRepo: auditRepo}
}

func (h *AuditHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/api/audit", middleware.RequireRole(model.RoleBusinessAdmin, model.RoleAccountant), h.ListAuditLogs)
}

// ListAuditLogs returns the audit trail, newest first
// @Summary      List audit logs
// @Tags         audit
// @Security     BearerAuth
// @Produce      json
// @Param        action  query  string  false  "Filter by action, e.g. CONFIRM_PAYMENT"
// @Param        page    query  int     false  "Page number (default 1)"
// @Param        limit   query  int     false  "Items per page (default 20)"
// @Success      200  {object}  response.Response{data=response.Page}
// @Router       /api/audit [get]
func (h *AuditHandler) ListAuditLogs(c *gin.Context) {
	params := pagination.Parse(c)

	logs, total, err := h.auditRepo.List(c.Request.Context(), c.Query("action"), params.Page, params.Limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, logs, total, params.Page, params.Limit))
}
