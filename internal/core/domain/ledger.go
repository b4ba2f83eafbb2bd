package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerEntry is an accounting record produced by the external accounting
// process. This core only ever reads it for reconciliation.
type LedgerEntry struct {
	EntryID       string          `json:"entryID"`
	TenantID      string          `json:"tenantID"`
	TransactionID *string         `json:"transactionID,omitempty"` // nil means orphaned
	EntryType     string          `json:"entryType"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	PostedAt      time.Time       `json:"postedAt"`
}
