package dto

// InitiateDepositRequest defines the data needed to start a deposit payment.
// Amount is the booking's base price in minor currency units.
type InitiateDepositRequest struct {
	ReservationID string `json:"reservationId" binding:"required"`
	Amount        int64  `json:"amount" binding:"required,gt=0"`
	Currency      string `json:"currency" binding:"required,uppercase,len=3"`
	Email         string `json:"email" binding:"required,email"`
	Provider      string `json:"provider" binding:"required,oneof=paystack stripe"`
}

// DepositResponse is returned for both fresh and idempotently replayed deposits.
type DepositResponse struct {
	Success          bool   `json:"success"`
	TransactionID    string `json:"transactionId,omitempty"`
	AuthorizationURL string `json:"authorizationUrl,omitempty"`
	Duplicate        bool   `json:"duplicate,omitempty"`
	Skipped          string `json:"skipped,omitempty"`
	Message          string `json:"message,omitempty"`
}
