package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReconciliationReport compares one UTC calendar day of transactions against
// ledger entries for a tenant (or all tenants). It is a read-only artifact:
// producing it never mutates the underlying records.
type ReconciliationReport struct {
	TenantID         *string         `json:"tenantID,omitempty"` // nil when run across all tenants
	Date             time.Time       `json:"date"`
	Unreconciled     []Transaction   `json:"unreconciled"`
	Orphaned         []LedgerEntry   `json:"orphaned"`
	TransactionTotal decimal.Decimal `json:"transactionTotal"`
	LedgerTotal      decimal.Decimal `json:"ledgerTotal"`
	BalanceDiff      decimal.Decimal `json:"balanceDiff"`
	BalancesMatch    bool            `json:"balancesMatch"`
	TransactionCount int             `json:"transactionCount"`
	LedgerEntryCount int             `json:"ledgerEntryCount"`
}
