package models

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is the persistence model for the transactions table.
// Amount is stored in major currency units as NUMERIC.
type Transaction struct {
	TransactionID        string          `json:"transactionID"` // Primary Key (UUID)
	TenantID             *string         `json:"tenantID"`      // Nullable; orphaned webhook rows have no tenant
	ReservationID        *string         `json:"reservationID"` // Nullable FK -> Reservation.reservationID
	Amount               decimal.Decimal `json:"amount"`
	Currency             string          `json:"currency"`
	Type                 string          `json:"type"`
	Status               string          `json:"status"`
	Provider             string          `json:"provider"`
	ProviderRef          string          `json:"providerRef"`
	PaymentURL           string          `json:"paymentURL"`
	Email                string          `json:"email"`
	RetryCount           int             `json:"retryCount"`
	NextRetryAt          *time.Time      `json:"nextRetryAt"`
	ReconciliationStatus string          `json:"reconciliationStatus"`
	Raw                  json.RawMessage `json:"raw"` // jsonb, opaque provider payload
	CreatedAt            time.Time       `json:"createdAt"`
	ReconciledAt         *time.Time      `json:"reconciledAt"`
}
