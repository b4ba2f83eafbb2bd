package mapping

import (
	"github.com/bookahq/booka_backend/internal/core/domain"
	"github.com/bookahq/booka_backend/internal/models"
)

// ToDomainLedgerEntry converts a model LedgerEntry to a domain LedgerEntry
func ToDomainLedgerEntry(m models.LedgerEntry) domain.LedgerEntry {
	return domain.LedgerEntry{
		EntryID:       m.EntryID,
		TenantID:      m.TenantID,
		TransactionID: m.TransactionID,
		EntryType:     m.EntryType,
		Amount:        m.Amount,
		Currency:      m.Currency,
		PostedAt:      m.PostedAt,
	}
}

// ToDomainLedgerEntrySlice converts a slice of model LedgerEntries to domain LedgerEntries
func ToDomainLedgerEntrySlice(ms []models.LedgerEntry) []domain.LedgerEntry {
	ds := make([]domain.LedgerEntry, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainLedgerEntry(m)
	}
	return ds
}
