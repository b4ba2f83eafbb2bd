package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/bookahq/booka_backend/internal/core/domain"
	portssvc "github.com/bookahq/booka_backend/internal/core/ports/services"
	"github.com/bookahq/booka_backend/internal/dto"
	"github.com/bookahq/booka_backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// reconciliationHandler handles HTTP requests for reconciliation reports.
type reconciliationHandler struct {
	reconciliationService portssvc.ReconciliationSvc
}

// newReconciliationHandler creates a new reconciliationHandler.
func newReconciliationHandler(rs portssvc.ReconciliationSvc) *reconciliationHandler {
	return &reconciliationHandler{
		reconciliationService: rs,
	}
}

// registerReconciliationRoutes registers the reconciliation report route.
func registerReconciliationRoutes(rg *gin.RouterGroup, reconciliationService portssvc.ReconciliationSvc) {
	h := newReconciliationHandler(reconciliationService)

	policy := middleware.OperationPolicy{
		Name:  "reconciliation.read",
		Roles: []domain.TenantRole{domain.RoleAdmin},
	}

	rg.GET("/reconciliation", middleware.Authorize(policy), h.getReconciliationReport)
}

// getReconciliationReport godoc
// @Summary Produce a daily reconciliation report
// @Description Compares the tenant's transactions against ledger entries for one UTC day. Read-only.
// @Tags reconciliation
// @Produce  json
// @Param   tenantID path string true "Tenant ID"
// @Param   date query string false "UTC day, YYYY-MM-DD (default today)"
// @Success 200 {object} dto.ReconciliationResponse
// @Failure 400 {object} map[string]string "Invalid date"
// @Failure 500 {object} map[string]string "Failed to produce report"
// @Security BearerAuth
// @Router /tenants/{tenantID}/reconciliation [get]
func (h *reconciliationHandler) getReconciliationReport(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID := c.Param("tenantID")

	date := time.Now().UTC()
	if dateStr := c.Query("date"); dateStr != "" {
		parsed, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			logger.Warn("Invalid reconciliation date", slog.String("date", dateStr))
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date, expected YYYY-MM-DD"})
			return
		}
		date = parsed
	}

	report, err := h.reconciliationService.Reconcile(c.Request.Context(), &tenantID, date)
	if err != nil {
		logger.Error("Failed to produce reconciliation report", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to produce report"})
		return
	}

	c.JSON(http.StatusOK, dto.ToReconciliationResponse(report))
}
