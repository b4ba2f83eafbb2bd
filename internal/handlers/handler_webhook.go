package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/bookahq/booka_backend/internal/adapters/payment"
	"github.com/bookahq/booka_backend/internal/apperrors"
	"github.com/bookahq/booka_backend/internal/core/domain"
	portssvc "github.com/bookahq/booka_backend/internal/core/ports/services"
	"github.com/bookahq/booka_backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// Provider signature header names.
const (
	paystackSignatureHeader = "x-paystack-signature"
	stripeSignatureHeader   = "stripe-signature"
)

// webhookHandler handles inbound payment provider webhooks. These routes are
// unauthenticated; the provider signature over the raw body is the only
// credential.
type webhookHandler struct {
	webhookService portssvc.WebhookSvc
}

// newWebhookHandler creates a new webhookHandler.
func newWebhookHandler(ws portssvc.WebhookSvc) *webhookHandler {
	return &webhookHandler{
		webhookService: ws,
	}
}

// registerWebhookRoutes registers the public webhook endpoints.
func registerWebhookRoutes(rg *gin.RouterGroup, webhookService portssvc.WebhookSvc) {
	h := newWebhookHandler(webhookService)

	rg.POST("/paystack", h.paystackWebhook)
	rg.POST("/stripe", h.stripeWebhook)
}

// paystackWebhook godoc
// @Summary Ingest a Paystack webhook
// @Description Verifies the HMAC signature over the raw body and records the event
// @Tags webhooks
// @Accept  json
// @Produce  json
// @Success 200 {object} map[string]bool "received"
// @Failure 400 {object} map[string]string "Invalid payload"
// @Failure 401 {object} map[string]string "Signature verification failed"
// @Failure 503 {object} map[string]string "Provider not configured"
// @Router /webhooks/paystack [post]
func (h *webhookHandler) paystackWebhook(c *gin.Context) {
	h.ingest(c, domain.ProviderPaystack, c.GetHeader(paystackSignatureHeader))
}

// stripeWebhook godoc
// @Summary Ingest a Stripe webhook
// @Description Verifies the timestamped HMAC signature over the raw body and records the event
// @Tags webhooks
// @Accept  json
// @Produce  json
// @Success 200 {object} map[string]bool "received"
// @Failure 400 {object} map[string]string "Invalid payload"
// @Failure 401 {object} map[string]string "Signature verification failed"
// @Failure 503 {object} map[string]string "Provider not configured"
// @Router /webhooks/stripe [post]
func (h *webhookHandler) stripeWebhook(c *gin.Context) {
	h.ingest(c, domain.ProviderStripe, c.GetHeader(stripeSignatureHeader))
}

func (h *webhookHandler) ingest(c *gin.Context, provider domain.PaymentProvider, signature string) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	// The signature covers the exact bytes on the wire; read them before any
	// JSON decoding touches the body.
	rawBody, err := io.ReadAll(c.Request.Body)
	if err != nil {
		logger.Warn("Failed to read webhook body", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read request body"})
		return
	}

	txn, err := h.webhookService.Ingest(c.Request.Context(), provider, rawBody, signature)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrSignature):
			// Generic rejection only; no detail for the caller.
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized", "code": "signature_verification_failed"})
		case errors.Is(err, payment.ErrNotConfigured):
			logger.Warn("Webhook for unconfigured provider", slog.String("provider", string(provider)))
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Provider not configured"})
		case errors.Is(err, apperrors.ErrValidation):
			// Signature checked out but the body is not a usable payload.
			logger.Warn("Webhook payload rejected",
				slog.String("provider", string(provider)),
				slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payload"})
		default:
			logger.Error("Failed to ingest webhook", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process webhook"})
		}
		return
	}

	logger.Info("Webhook recorded",
		slog.String("provider", string(provider)),
		slog.String("transaction_id", txn.TransactionID))
	c.JSON(http.StatusOK, gin.H{"received": true})
}
