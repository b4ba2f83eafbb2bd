package pgsql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/bookahq/booka_backend/internal/apperrors"
	"github.com/bookahq/booka_backend/internal/core/domain"
	portsrepo "github.com/bookahq/booka_backend/internal/core/ports/repositories"
	"github.com/bookahq/booka_backend/internal/models"
	"github.com/bookahq/booka_backend/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxTransactionRepository struct {
	BaseRepository
}

// newPgxTransactionRepository creates a new repository for payment transactions.
func newPgxTransactionRepository(pool *pgxpool.Pool) portsrepo.TransactionRepositoryFacade {
	return &PgxTransactionRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure implementation matches interface
var _ portsrepo.TransactionRepositoryFacade = (*PgxTransactionRepository)(nil)

const transactionColumns = `transaction_id, tenant_id, reservation_id, amount, currency, type, status, provider, provider_ref, payment_url, email, retry_count, next_retry_at, reconciliation_status, raw, created_at, reconciled_at`

// prefixedTransactionColumns qualifies the column list with a table alias for
// queries that join against CTEs.
func prefixedTransactionColumns(alias string) string {
	cols := strings.Split(transactionColumns, ", ")
	for i, col := range cols {
		cols[i] = alias + "." + col
	}
	return strings.Join(cols, ", ")
}

func scanTransaction(row pgx.Row) (models.Transaction, error) {
	var txn models.Transaction
	err := row.Scan(
		&txn.TransactionID,
		&txn.TenantID,
		&txn.ReservationID,
		&txn.Amount,
		&txn.Currency,
		&txn.Type,
		&txn.Status,
		&txn.Provider,
		&txn.ProviderRef,
		&txn.PaymentURL,
		&txn.Email,
		&txn.RetryCount,
		&txn.NextRetryAt,
		&txn.ReconciliationStatus,
		&txn.Raw,
		&txn.CreatedAt,
		&txn.ReconciledAt,
	)
	return txn, err
}

// SaveTransaction inserts a new transaction row. The partial unique index on
// active deposits turns concurrent duplicate initiations into ErrDuplicate.
func (r *PgxTransactionRepository) SaveTransaction(ctx context.Context, txn domain.Transaction) error {
	modelTxn := mapping.ToModelTransaction(txn)

	query := `
		INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17);
	`

	_, err := r.Pool.Exec(ctx, query,
		modelTxn.TransactionID,
		modelTxn.TenantID,
		modelTxn.ReservationID,
		modelTxn.Amount,
		modelTxn.Currency,
		modelTxn.Type,
		modelTxn.Status,
		modelTxn.Provider,
		modelTxn.ProviderRef,
		modelTxn.PaymentURL,
		modelTxn.Email,
		modelTxn.RetryCount,
		modelTxn.NextRetryAt,
		modelTxn.ReconciliationStatus,
		modelTxn.Raw,
		modelTxn.CreatedAt,
		modelTxn.ReconciledAt,
	)

	if err != nil {
		if translated := translateConstraintError(err); translated != err {
			return translated
		}
		return fmt.Errorf("failed to save transaction %s: %w", modelTxn.TransactionID, err)
	}
	return nil
}

// FindTransactionByID retrieves a transaction by its id.
func (r *PgxTransactionRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE transaction_id = $1;`

	modelTxn, err := scanTransaction(r.Pool.QueryRow(ctx, query, transactionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find transaction %s: %w", transactionID, err)
	}

	domainTxn := mapping.ToDomainTransaction(modelTxn)
	return &domainTxn, nil
}

// FindActiveDeposit returns the pending or successful deposit for a
// (tenant, reservation) pair. This is the idempotency lookup: at most one
// such row can exist under the partial unique index.
func (r *PgxTransactionRepository) FindActiveDeposit(ctx context.Context, tenantID, reservationID string) (*domain.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE tenant_id = $1
		  AND reservation_id = $2
		  AND type = 'deposit'
		  AND status IN ('pending', 'success')
		LIMIT 1;
	`

	modelTxn, err := scanTransaction(r.Pool.QueryRow(ctx, query, tenantID, reservationID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find active deposit for reservation %s: %w", reservationID, err)
	}

	domainTxn := mapping.ToDomainTransaction(modelTxn)
	return &domainTxn, nil
}

// ListTransactionsInRange retrieves transactions created within [from, to),
// optionally filtered to one tenant.
func (r *PgxTransactionRepository) ListTransactionsInRange(ctx context.Context, tenantID *string, from, to time.Time) ([]domain.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE created_at >= $1 AND created_at < $2
		  AND ($3::uuid IS NULL OR tenant_id = $3)
		ORDER BY created_at;
	`
	rows, err := r.Pool.Query(ctx, query, from, to, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	modelTxns, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Transaction, error) {
		return scanTransaction(row)
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return []domain.Transaction{}, nil
		}
		return nil, fmt.Errorf("failed to scan transactions: %w", err)
	}

	return mapping.ToDomainTransactionSlice(modelTxns), nil
}

// ClaimRetryable claims due retryable transactions with a conditional update.
// SKIP LOCKED plus the claim-window bump means two concurrent worker runs
// never process the same row twice.
func (r *PgxTransactionRepository) ClaimRetryable(ctx context.Context, now time.Time, maxAttempts, limit int, claimWindow time.Duration) ([]domain.Transaction, error) {
	query := `
		WITH due AS (
			SELECT transaction_id, next_retry_at
			FROM transactions
			WHERE type = 'deposit'
			  AND status IN ('pending', 'failed')
			  AND retry_count < $2
			  AND next_retry_at IS NOT NULL
			  AND next_retry_at <= $1
			ORDER BY next_retry_at ASC
			LIMIT $3
			FOR UPDATE SKIP LOCKED
		)
		UPDATE transactions t
		SET next_retry_at = $4
		FROM due
		WHERE t.transaction_id = due.transaction_id
		RETURNING ` + prefixedTransactionColumns("t") + `, due.next_retry_at;
	`

	rows, err := r.Pool.Query(ctx, query, now, maxAttempts, limit, now.Add(claimWindow))
	if err != nil {
		return nil, fmt.Errorf("failed to claim retryable transactions: %w", err)
	}
	defer rows.Close()

	type claimedRow struct {
		txn   models.Transaction
		dueAt time.Time
	}

	claimed, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (claimedRow, error) {
		var cr claimedRow
		var txn models.Transaction
		err := row.Scan(
			&txn.TransactionID,
			&txn.TenantID,
			&txn.ReservationID,
			&txn.Amount,
			&txn.Currency,
			&txn.Type,
			&txn.Status,
			&txn.Provider,
			&txn.ProviderRef,
			&txn.PaymentURL,
			&txn.Email,
			&txn.RetryCount,
			&txn.NextRetryAt,
			&txn.ReconciliationStatus,
			&txn.Raw,
			&txn.CreatedAt,
			&txn.ReconciledAt,
			&cr.dueAt,
		)
		cr.txn = txn
		return cr, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan claimed transactions: %w", err)
	}

	// RETURNING gives no order guarantee; restore the due-time ordering the
	// worker processes in.
	sort.Slice(claimed, func(i, j int) bool {
		return claimed[i].dueAt.Before(claimed[j].dueAt)
	})

	result := make([]domain.Transaction, len(claimed))
	for i, cr := range claimed {
		result[i] = mapping.ToDomainTransaction(cr.txn)
	}
	return result, nil
}

// MarkRetrySuccess marks a claimed transaction settled.
func (r *PgxTransactionRepository) MarkRetrySuccess(ctx context.Context, transactionID string, raw json.RawMessage) error {
	query := `
		UPDATE transactions
		SET status = 'success', next_retry_at = NULL, raw = COALESCE($2, raw)
		WHERE transaction_id = $1;
	`
	tag, err := r.Pool.Exec(ctx, query, transactionID, raw)
	if err != nil {
		return fmt.Errorf("failed to mark transaction %s successful: %w", transactionID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// MarkRetryFailure increments the attempt count and schedules the next retry.
func (r *PgxTransactionRepository) MarkRetryFailure(ctx context.Context, transactionID string, nextRetryAt time.Time) error {
	query := `
		UPDATE transactions
		SET status = 'failed', retry_count = retry_count + 1, next_retry_at = $2
		WHERE transaction_id = $1;
	`
	tag, err := r.Pool.Exec(ctx, query, transactionID, nextRetryAt)
	if err != nil {
		return fmt.Errorf("failed to mark transaction %s failed: %w", transactionID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
