package services

import (
	"context"
	"time"

	"github.com/bookahq/booka_backend/internal/core/domain"
)

// ReconciliationSvc defines the ledger reconciliation report
type ReconciliationSvc interface {
	// Reconcile compares transactions against ledger entries for the UTC
	// calendar day containing date, for one tenant or (nil) all tenants.
	// It is read-only; discrepancies are reported, never resolved here.
	Reconcile(ctx context.Context, tenantID *string, date time.Time) (*domain.ReconciliationReport, error)
}
