package mapping

import (
	"github.com/bookahq/booka_backend/internal/core/domain"
	"github.com/bookahq/booka_backend/internal/models"
)

// ToModelTransaction converts a domain Transaction to a model Transaction
func ToModelTransaction(d domain.Transaction) models.Transaction {
	return models.Transaction{
		TransactionID:        d.TransactionID,
		TenantID:             d.TenantID,
		ReservationID:        d.ReservationID,
		Amount:               d.Amount,
		Currency:             d.Currency,
		Type:                 d.Type,
		Status:               string(d.Status),
		Provider:             string(d.Provider),
		ProviderRef:          d.ProviderRef,
		PaymentURL:           d.PaymentURL,
		Email:                d.Email,
		RetryCount:           d.RetryCount,
		NextRetryAt:          d.NextRetryAt,
		ReconciliationStatus: d.ReconciliationStatus,
		Raw:                  d.Raw,
		CreatedAt:            d.CreatedAt,
		ReconciledAt:         d.ReconciledAt,
	}
}

// ToDomainTransaction converts a model Transaction to a domain Transaction
func ToDomainTransaction(m models.Transaction) domain.Transaction {
	return domain.Transaction{
		TransactionID:        m.TransactionID,
		TenantID:             m.TenantID,
		ReservationID:        m.ReservationID,
		Amount:               m.Amount,
		Currency:             m.Currency,
		Type:                 m.Type,
		Status:               domain.TransactionStatus(m.Status),
		Provider:             domain.PaymentProvider(m.Provider),
		ProviderRef:          m.ProviderRef,
		PaymentURL:           m.PaymentURL,
		Email:                m.Email,
		RetryCount:           m.RetryCount,
		NextRetryAt:          m.NextRetryAt,
		ReconciliationStatus: m.ReconciliationStatus,
		Raw:                  m.Raw,
		CreatedAt:            m.CreatedAt,
		ReconciledAt:         m.ReconciledAt,
	}
}

// ToDomainTransactionSlice converts a slice of model Transactions to domain Transactions
func ToDomainTransactionSlice(ms []models.Transaction) []domain.Transaction {
	ds := make([]domain.Transaction, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainTransaction(m)
	}
	return ds
}
