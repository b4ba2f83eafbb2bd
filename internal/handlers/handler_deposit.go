package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/bookahq/booka_backend/internal/adapters/payment"
	"github.com/bookahq/booka_backend/internal/apperrors"
	"github.com/bookahq/booka_backend/internal/core/domain"
	portssvc "github.com/bookahq/booka_backend/internal/core/ports/services"
	"github.com/bookahq/booka_backend/internal/dto"
	"github.com/bookahq/booka_backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// depositHandler handles HTTP requests related to deposit payments.
type depositHandler struct {
	depositService portssvc.DepositSvc
}

// newDepositHandler creates a new depositHandler.
func newDepositHandler(ds portssvc.DepositSvc) *depositHandler {
	return &depositHandler{
		depositService: ds,
	}
}

// registerDepositRoutes registers routes related to deposit payments.
func registerDepositRoutes(rg *gin.RouterGroup, depositService portssvc.DepositSvc) {
	h := newDepositHandler(depositService)

	policy := middleware.OperationPolicy{
		Name:  "deposits.initiate",
		Roles: []domain.TenantRole{domain.RoleAdmin, domain.RoleStaff},
	}

	deposits := rg.Group("/deposits")
	{
		deposits.POST("", middleware.Authorize(policy), h.initiateDeposit)
	}
}

// initiateDeposit godoc
// @Summary Initiate a deposit payment
// @Description Computes the tenant's deposit for a booking and creates a hosted-payment intent. Replays return the existing transaction.
// @Tags deposits
// @Accept  json
// @Produce  json
// @Param   tenantID path string true "Tenant ID"
// @Param   deposit body dto.InitiateDepositRequest true "Deposit details"
// @Success 200 {object} dto.DepositResponse "Duplicate replay or skip"
// @Success 201 {object} dto.DepositResponse
// @Failure 400 {object} map[string]string "Invalid input format or validation error"
// @Failure 404 {object} map[string]string "Booking or tenant not found"
// @Failure 422 {object} map[string]string "Booking is cancelled"
// @Failure 502 {object} map[string]string "Payment provider error"
// @Failure 503 {object} map[string]string "Provider not configured"
// @Security BearerAuth
// @Router /tenants/{tenantID}/deposits [post]
func (h *depositHandler) initiateDeposit(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID := c.Param("tenantID")

	var req dto.InitiateDepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for InitiateDeposit", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	outcome, err := h.depositService.InitiateDeposit(c.Request.Context(), tenantID, req)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrValidation):
			logger.Warn("Validation error initiating deposit", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrNotFound):
			logger.Warn("Dependency not found initiating deposit", slog.String("error", err.Error()))
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrInvalidState):
			logger.Warn("Invalid booking state for deposit", slog.String("error", err.Error()))
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		case errors.Is(err, payment.ErrNotConfigured):
			logger.Warn("Deposit for unconfigured provider", slog.String("error", err.Error()))
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Provider not configured"})
		case errors.Is(err, apperrors.ErrProvider):
			logger.Error("Payment provider error", slog.String("error", err.Error()))
			c.JSON(http.StatusBadGateway, gin.H{"error": "Payment provider error"})
		default:
			logger.Error("Failed to initiate deposit in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to initiate deposit"})
		}
		return
	}

	if outcome.Skipped != "" {
		logger.Info("Deposit skipped", slog.String("reason", outcome.Skipped))
		c.JSON(http.StatusOK, dto.DepositResponse{
			Success: false,
			Skipped: outcome.Skipped,
			Message: "Deposits are not enabled for this tenant",
		})
		return
	}

	resp := dto.DepositResponse{
		Success:          true,
		TransactionID:    outcome.Transaction.TransactionID,
		AuthorizationURL: outcome.Transaction.PaymentURL,
		Duplicate:        outcome.Duplicate,
	}
	if outcome.Duplicate {
		logger.Info("Deposit replayed idempotently", slog.String("transaction_id", resp.TransactionID))
		c.JSON(http.StatusOK, resp)
		return
	}

	logger.Info("Deposit initiated", slog.String("transaction_id", resp.TransactionID))
	c.JSON(http.StatusCreated, resp)
}
