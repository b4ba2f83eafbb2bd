package dto

import (
	"github.com/bookahq/booka_backend/internal/core/domain"
)

// ReconciliationResponse is the JSON form of a reconciliation report.
type ReconciliationResponse struct {
	TenantID         *string  `json:"tenantID,omitempty"`
	Date             string   `json:"date"`
	Unreconciled     []string `json:"unreconciledTransactionIDs"`
	Orphaned         []string `json:"orphanedLedgerEntryIDs"`
	TransactionTotal string   `json:"transactionTotal"`
	LedgerTotal      string   `json:"ledgerTotal"`
	BalanceDiff      string   `json:"balanceDiff"`
	BalancesMatch    bool     `json:"balancesMatch"`
	TransactionCount int      `json:"transactionCount"`
	LedgerEntryCount int      `json:"ledgerEntryCount"`
}

// ToReconciliationResponse converts a domain report to its JSON DTO.
func ToReconciliationResponse(r *domain.ReconciliationReport) ReconciliationResponse {
	unreconciled := make([]string, len(r.Unreconciled))
	for i, txn := range r.Unreconciled {
		unreconciled[i] = txn.TransactionID
	}
	orphaned := make([]string, len(r.Orphaned))
	for i, entry := range r.Orphaned {
		orphaned[i] = entry.EntryID
	}
	return ReconciliationResponse{
		TenantID:         r.TenantID,
		Date:             r.Date.Format("2006-01-02"),
		Unreconciled:     unreconciled,
		Orphaned:         orphaned,
		TransactionTotal: r.TransactionTotal.StringFixed(2),
		LedgerTotal:      r.LedgerTotal.StringFixed(2),
		BalanceDiff:      r.BalanceDiff.StringFixed(2),
		BalancesMatch:    r.BalancesMatch,
		TransactionCount: r.TransactionCount,
		LedgerEntryCount: r.LedgerEntryCount,
	}
}
