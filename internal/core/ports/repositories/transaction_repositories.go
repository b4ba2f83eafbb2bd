package repositories

import (
	"context"
	"encoding/json"
	"time"

	"github.com/bookahq/booka_backend/internal/core/domain"
)

// TransactionReader defines read operations for payment transaction data
type TransactionReader interface {
	// FindTransactionByID retrieves a transaction by its id.
	FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error)

	// FindActiveDeposit returns the pending or successful deposit transaction
	// for a (tenant, reservation) pair, or apperrors.ErrNotFound.
	// This is the deposit idempotency lookup.
	FindActiveDeposit(ctx context.Context, tenantID, reservationID string) (*domain.Transaction, error)

	// ListTransactionsInRange retrieves transactions created within
	// [from, to), optionally filtered to one tenant.
	ListTransactionsInRange(ctx context.Context, tenantID *string, from, to time.Time) ([]domain.Transaction, error)
}

// TransactionWriter defines write operations for payment transaction data
type TransactionWriter interface {
	// SaveTransaction inserts a new transaction row.
	SaveTransaction(ctx context.Context, txn domain.Transaction) error

	// ClaimRetryable atomically claims up to limit transactions that are due
	// for retry (status pending/failed, retry count below maxAttempts,
	// next_retry_at <= now), ordered by next_retry_at ascending. Claimed rows
	// are pushed claimWindow into the future so concurrent worker runs never
	// pick them up twice.
	ClaimRetryable(ctx context.Context, now time.Time, maxAttempts, limit int, claimWindow time.Duration) ([]domain.Transaction, error)

	// MarkRetrySuccess marks a claimed transaction settled.
	MarkRetrySuccess(ctx context.Context, transactionID string, raw json.RawMessage) error

	// MarkRetryFailure increments the retry count and schedules the next attempt.
	MarkRetryFailure(ctx context.Context, transactionID string, nextRetryAt time.Time) error
}

// TransactionRepositoryFacade combines all transaction-related repository interfaces
type TransactionRepositoryFacade interface {
	TransactionReader
	TransactionWriter
}
