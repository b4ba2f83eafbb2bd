package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bookahq/booka_backend/internal/core/domain"
	portsrepo "github.com/bookahq/booka_backend/internal/core/ports/repositories"
	"github.com/bookahq/booka_backend/internal/models"
	"github.com/bookahq/booka_backend/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxLedgerRepository struct {
	BaseRepository
}

// newPgxLedgerRepository creates a read-only repository over ledger entries.
func newPgxLedgerRepository(pool *pgxpool.Pool) portsrepo.LedgerEntryReader {
	return &PgxLedgerRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure implementation matches interface
var _ portsrepo.LedgerEntryReader = (*PgxLedgerRepository)(nil)

// ListEntriesInRange retrieves ledger entries posted within [from, to),
// optionally filtered to one tenant.
func (r *PgxLedgerRepository) ListEntriesInRange(ctx context.Context, tenantID *string, from, to time.Time) ([]domain.LedgerEntry, error) {
	query := `
		SELECT entry_id, tenant_id, transaction_id, entry_type, amount, currency, posted_at
		FROM ledger_entries
		WHERE posted_at >= $1 AND posted_at < $2
		  AND ($3::uuid IS NULL OR tenant_id = $3)
		ORDER BY posted_at;
	`
	rows, err := r.Pool.Query(ctx, query, from, to, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger entries: %w", err)
	}
	defer rows.Close()

	modelEntries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.LedgerEntry, error) {
		var entry models.LedgerEntry
		err := row.Scan(
			&entry.EntryID,
			&entry.TenantID,
			&entry.TransactionID,
			&entry.EntryType,
			&entry.Amount,
			&entry.Currency,
			&entry.PostedAt,
		)
		return entry, err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return []domain.LedgerEntry{}, nil
		}
		return nil, fmt.Errorf("failed to scan ledger entries: %w", err)
	}

	return mapping.ToDomainLedgerEntrySlice(modelEntries), nil
}
