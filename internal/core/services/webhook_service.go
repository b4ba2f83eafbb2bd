package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/bookahq/booka_backend/internal/adapters/payment"
	"github.com/bookahq/booka_backend/internal/core/domain"
	portsrepo "github.com/bookahq/booka_backend/internal/core/ports/repositories"
	portssvc "github.com/bookahq/booka_backend/internal/core/ports/services"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// webhookService implements the WebhookSvc interface
type webhookService struct {
	BaseService
	transactionRepo portsrepo.TransactionWriter
	providers       *payment.Registry
}

// NewWebhookService creates a new webhook ingestion service
func NewWebhookService(transactionRepo portsrepo.TransactionWriter, providers *payment.Registry) portssvc.WebhookSvc {
	return &webhookService{
		transactionRepo: transactionRepo,
		providers:       providers,
	}
}

// Ensure webhookService implements the WebhookSvc interface
var _ portssvc.WebhookSvc = (*webhookService)(nil)

// Ingest verifies the provider signature over the exact raw body, then maps
// the payload to the common transaction shape and inserts it. Deliveries are
// append-only: each verified webhook produces a new row, and duplicate
// deliveries surface in reconciliation rather than being merged here.
func (s *webhookService) Ingest(ctx context.Context, provider domain.PaymentProvider, rawBody []byte, signatureHeader string) (*domain.Transaction, error) {
	client, err := s.providers.Client(provider)
	if err != nil {
		return nil, err
	}

	// Authenticity first; nothing is written on a mismatch.
	if err := client.VerifyWebhookSignature(rawBody, signatureHeader); err != nil {
		// Security event: a forged or corrupted delivery.
		s.LogWarn(ctx, "Webhook signature verification failed",
			slog.String("provider", string(provider)))
		return nil, err
	}

	event, err := client.ParseWebhook(rawBody)
	if err != nil {
		return nil, err
	}

	amount := decimal.NewFromInt(event.AmountMinor).Div(oneHundred)

	txn := domain.Transaction{
		TransactionID: uuid.NewString(),
		TenantID:      event.TenantID, // nil leaves the row orphaned for reconciliation
		ReservationID: event.ReservationID,
		Amount:        amount,
		Currency:      event.Currency,
		Type:          event.EventType,
		Status:        event.Status,
		Provider:      event.Provider,
		ProviderRef:   event.ProviderRef,
		Raw:           rawBody,
		CreatedAt:     time.Now().UTC(),
	}

	if err := s.transactionRepo.SaveTransaction(ctx, txn); err != nil {
		s.LogError(ctx, err, "Failed to save webhook transaction",
			slog.String("provider_ref", event.ProviderRef))
		return nil, err
	}

	s.LogInfo(ctx, "Webhook ingested",
		slog.String("provider", string(provider)),
		slog.String("event_type", event.EventType),
		slog.String("status", string(event.Status)),
		slog.String("transaction_id", txn.TransactionID))
	return &txn, nil
}
