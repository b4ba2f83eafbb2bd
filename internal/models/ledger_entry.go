package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerEntry is the persistence model for the ledger_entries table.
// Rows are written by the external accounting process; this core only reads.
type LedgerEntry struct {
	EntryID       string          `json:"entryID"` // Primary Key (UUID)
	TenantID      string          `json:"tenantID"`
	TransactionID *string         `json:"transactionID"` // Nullable; absent means orphaned
	EntryType     string          `json:"entryType"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	PostedAt      time.Time       `json:"postedAt"`
}
