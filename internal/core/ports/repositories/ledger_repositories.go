package repositories

import (
	"context"
	"time"

	"github.com/bookahq/booka_backend/internal/core/domain"
)

// LedgerEntryReader defines read operations for ledger entries. The entries
// are produced by the external accounting process; there is no writer here.
type LedgerEntryReader interface {
	// ListEntriesInRange retrieves ledger entries posted within [from, to),
	// optionally filtered to one tenant.
	ListEntriesInRange(ctx context.Context, tenantID *string, from, to time.Time) ([]domain.LedgerEntry, error)
}

// TenantReader defines read operations for tenant settings. Tenant management
// is owned externally; this core only reads the deposit policy.
type TenantReader interface {
	// FindTenantByID retrieves a tenant and its deposit policy.
	FindTenantByID(ctx context.Context, tenantID string) (*domain.Tenant, error)
}
