package domain

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentProvider identifies which payment provider a transaction went through.
type PaymentProvider string

const (
	ProviderPaystack PaymentProvider = "paystack"
	ProviderStripe   PaymentProvider = "stripe"
)

// TransactionStatus is the payment lifecycle state of a transaction.
type TransactionStatus string

const (
	TransactionPending TransactionStatus = "pending"
	TransactionSuccess TransactionStatus = "success"
	TransactionFailed  TransactionStatus = "failed"
	TransactionUnknown TransactionStatus = "unknown"
)

// TransactionTypeDeposit marks rows created by the deposit initiator. Rows
// created by the webhook ingestor carry the provider's event name instead.
const TransactionTypeDeposit = "deposit"

// ReconciliationMatched marks a transaction matched against the ledger.
const ReconciliationMatched = "matched"

// Transaction is a tenant-scoped payment record. Amount is in major currency
// units; the provider wire amount (minor units) is preserved inside Raw.
type Transaction struct {
	TransactionID        string            `json:"transactionID"`
	TenantID             *string           `json:"tenantID,omitempty"` // nil for orphaned webhook rows
	ReservationID        *string           `json:"reservationID,omitempty"`
	Amount               decimal.Decimal   `json:"amount"`
	Currency             string            `json:"currency"`
	Type                 string            `json:"type"` // "deposit" or a provider event name
	Status               TransactionStatus `json:"status"`
	Provider             PaymentProvider   `json:"provider"`
	ProviderRef          string            `json:"providerRef"`
	PaymentURL           string            `json:"paymentURL,omitempty"`
	Email                string            `json:"email,omitempty"`
	RetryCount           int               `json:"retryCount"`
	NextRetryAt          *time.Time        `json:"nextRetryAt,omitempty"`
	ReconciliationStatus string            `json:"reconciliationStatus,omitempty"`
	Raw                  json.RawMessage   `json:"raw,omitempty"` // opaque provider payload
	CreatedAt            time.Time         `json:"createdAt"`
	ReconciledAt         *time.Time        `json:"reconciledAt,omitempty"`
}

// Retryable reports whether the retry worker may pick this transaction up,
// given the configured attempt ceiling.
func (t Transaction) Retryable(maxAttempts int) bool {
	if t.Status != TransactionPending && t.Status != TransactionFailed {
		return false
	}
	return t.RetryCount < maxAttempts
}
