package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bookahq/booka_backend/internal/adapters/messaging"
	"github.com/bookahq/booka_backend/internal/adapters/payment"
	"github.com/bookahq/booka_backend/internal/core/domain"
	portsrepo "github.com/bookahq/booka_backend/internal/core/ports/repositories"
	portssvc "github.com/bookahq/booka_backend/internal/core/ports/services"
)

// RetryConfig tunes the retry batch. Zero values fall back to the documented
// defaults: 3 attempts, batches of 50, 30 minute base delay.
type RetryConfig struct {
	MaxAttempts   int
	BatchSize     int
	BaseDelay     time.Duration
	CourtesyDelay time.Duration
}

func (c RetryConfig) withDefaults() RetryConfig {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 3
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 50
	}
	if c.BaseDelay <= 0 {
		c.BaseDelay = 30 * time.Minute
	}
	if c.CourtesyDelay <= 0 {
		c.CourtesyDelay = 200 * time.Millisecond
	}
	return c
}

// retryService implements the RetrySvc interface
type retryService struct {
	BaseService
	transactionRepo portsrepo.TransactionWriter
	providers       *payment.Registry
	publisher       messaging.EventPublisher
	cfg             RetryConfig
	now             func() time.Time
}

// NewRetryService creates a new retry batch service
func NewRetryService(
	transactionRepo portsrepo.TransactionWriter,
	providers *payment.Registry,
	publisher messaging.EventPublisher,
	cfg RetryConfig,
) portssvc.RetrySvc {
	return &retryService{
		transactionRepo: transactionRepo,
		providers:       providers,
		publisher:       publisher,
		cfg:             cfg.withDefaults(),
		now:             time.Now,
	}
}

// Ensure retryService implements the RetrySvc interface
var _ portssvc.RetrySvc = (*retryService)(nil)

// RunBatch claims due retryable transactions (status pending/failed, attempt
// count below the ceiling, next_retry_at reached) in ascending next_retry_at
// order and resubmits each through its provider adapter. Failures are
// isolated per transaction: one bad item never aborts the batch.
func (s *retryService) RunBatch(ctx context.Context) (portssvc.RetryBatchResult, error) {
	var result portssvc.RetryBatchResult

	now := s.now().UTC()
	// Claimed rows are pushed one base delay into the future so a second
	// worker invocation cannot pick them up while this one is processing.
	claimed, err := s.transactionRepo.ClaimRetryable(ctx, now, s.cfg.MaxAttempts, s.cfg.BatchSize, s.cfg.BaseDelay)
	if err != nil {
		s.LogError(ctx, err, "Failed to claim retryable transactions")
		return result, err
	}
	result.Selected = len(claimed)

	for i, txn := range claimed {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}
		if s.retryOne(ctx, txn) {
			result.Succeeded++
		} else {
			result.Failed++
		}
		// Courtesy delay between provider calls, not correctness-critical.
		if i < len(claimed)-1 {
			select {
			case <-time.After(s.cfg.CourtesyDelay):
			case <-ctx.Done():
				return result, ctx.Err()
			}
		}
	}

	s.LogInfo(ctx, "Retry batch completed",
		slog.Int("selected", result.Selected),
		slog.Int("succeeded", result.Succeeded),
		slog.Int("failed", result.Failed))
	return result, nil
}

// retryOne resubmits a single transaction, containing panics and errors.
func (s *retryService) retryOne(ctx context.Context, txn domain.Transaction) (succeeded bool) {
	defer func() {
		if r := recover(); r != nil {
			s.LogError(ctx, fmt.Errorf("panic: %v", r), "Retry panicked",
				slog.String("transaction_id", txn.TransactionID))
			s.recordFailure(ctx, txn)
			succeeded = false
		}
	}()

	client, err := s.providers.Client(txn.Provider)
	if err != nil {
		s.LogError(ctx, err, "No provider client for transaction",
			slog.String("transaction_id", txn.TransactionID))
		s.recordFailure(ctx, txn)
		return false
	}

	intent, err := client.Retry(ctx, txn)
	if err != nil {
		s.LogWarn(ctx, "Retry attempt failed",
			slog.String("transaction_id", txn.TransactionID),
			slog.Int("retry_count", txn.RetryCount),
			slog.String("error", err.Error()))
		s.recordFailure(ctx, txn)
		return false
	}

	if err := s.transactionRepo.MarkRetrySuccess(ctx, txn.TransactionID, intent.Raw); err != nil {
		s.LogError(ctx, err, "Failed to mark retry success",
			slog.String("transaction_id", txn.TransactionID))
		return false
	}

	if s.publisher != nil {
		_ = s.publisher.PublishJSON(ctx, messaging.RoutingPaymentSucceeded, map[string]any{
			"transaction_id": txn.TransactionID,
			"tenant_id":      txn.TenantID,
			"reservation_id": txn.ReservationID,
			"provider_ref":   intent.ID,
		})
	}

	s.LogInfo(ctx, "Retry succeeded",
		slog.String("transaction_id", txn.TransactionID))
	return true
}

// recordFailure increments the attempt count and schedules the next try with
// exponential backoff: base delay doubled per completed attempt.
func (s *retryService) recordFailure(ctx context.Context, txn domain.Transaction) {
	backoff := s.cfg.BaseDelay << uint(txn.RetryCount)
	nextRetryAt := s.now().UTC().Add(backoff)

	if err := s.transactionRepo.MarkRetryFailure(ctx, txn.TransactionID, nextRetryAt); err != nil {
		s.LogError(ctx, err, "Failed to record retry failure",
			slog.String("transaction_id", txn.TransactionID))
		return
	}

	if txn.RetryCount+1 >= s.cfg.MaxAttempts {
		// Terminal: excluded from future batches, needs manual intervention.
		s.LogWarn(ctx, "Transaction reached retry ceiling",
			slog.String("transaction_id", txn.TransactionID),
			slog.Int("attempts", txn.RetryCount+1))
		if s.publisher != nil {
			_ = s.publisher.PublishJSON(ctx, messaging.RoutingPaymentFailed, map[string]any{
				"transaction_id": txn.TransactionID,
				"tenant_id":      txn.TenantID,
				"reservation_id": txn.ReservationID,
			})
		}
	}
}
