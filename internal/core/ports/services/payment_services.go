package services

import (
	"context"

	"github.com/bookahq/booka_backend/internal/core/domain"
	"github.com/bookahq/booka_backend/internal/dto"
)

// DepositOutcome is the result of a deposit initiation. Exactly one of the
// three shapes applies: a fresh transaction, an idempotent duplicate, or a
// skip with its reason (and no transaction at all).
type DepositOutcome struct {
	Transaction *domain.Transaction
	Duplicate   bool
	Skipped     string
}

// DepositSvc defines the deposit initiation operation
type DepositSvc interface {
	// InitiateDeposit computes the tenant's deposit for a reservation and
	// creates a hosted-payment intent with the named provider. Replays for an
	// active (pending/success) deposit return the existing transaction with
	// Duplicate set instead of creating a new one.
	InitiateDeposit(ctx context.Context, tenantID string, req dto.InitiateDepositRequest) (*DepositOutcome, error)
}

// WebhookSvc defines webhook ingestion
type WebhookSvc interface {
	// Ingest verifies the provider signature over the exact raw body, maps
	// the payload to the common transaction shape and inserts it. Signature
	// failure returns apperrors.ErrSignature and writes nothing.
	Ingest(ctx context.Context, provider domain.PaymentProvider, rawBody []byte, signatureHeader string) (*domain.Transaction, error)
}

// RetryBatchResult summarizes one retry worker run.
type RetryBatchResult struct {
	Selected  int
	Succeeded int
	Failed    int
}

// RetrySvc defines the scheduled retry batch
type RetrySvc interface {
	// RunBatch claims due retryable transactions and resubmits them through
	// the provider adapter. Per-item failures never abort the batch.
	RunBatch(ctx context.Context) (RetryBatchResult, error)
}
