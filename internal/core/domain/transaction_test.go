package domain_test

import (
	"testing"

	"github.com/bookahq/booka_backend/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestTransaction_Retryable(t *testing.T) {
	tests := []struct {
		name        string
		transaction domain.Transaction
		maxAttempts int
		want        bool
	}{
		{
			name:        "pending under attempt ceiling",
			transaction: domain.Transaction{Status: domain.TransactionPending, RetryCount: 0},
			maxAttempts: 3,
			want:        true,
		},
		{
			name:        "failed under attempt ceiling",
			transaction: domain.Transaction{Status: domain.TransactionFailed, RetryCount: 2},
			maxAttempts: 3,
			want:        true,
		},
		{
			name:        "at attempt ceiling",
			transaction: domain.Transaction{Status: domain.TransactionFailed, RetryCount: 3},
			maxAttempts: 3,
			want:        false,
		},
		{
			name:        "already settled",
			transaction: domain.Transaction{Status: domain.TransactionSuccess, RetryCount: 0},
			maxAttempts: 3,
			want:        false,
		},
		{
			name:        "unknown status",
			transaction: domain.Transaction{Status: domain.TransactionUnknown, RetryCount: 0},
			maxAttempts: 3,
			want:        false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.transaction.Retryable(tt.maxAttempts))
		})
	}
}

func TestTenant_DepositsEnabled(t *testing.T) {
	pct := func(v string) *decimal.Decimal {
		d := decimal.RequireFromString(v)
		return &d
	}

	tests := []struct {
		name   string
		tenant domain.Tenant
		want   bool
	}{
		{name: "nil percent", tenant: domain.Tenant{}, want: false},
		{name: "zero percent", tenant: domain.Tenant{DepositPercent: pct("0")}, want: false},
		{name: "negative percent", tenant: domain.Tenant{DepositPercent: pct("-5")}, want: false},
		{name: "typical percent", tenant: domain.Tenant{DepositPercent: pct("25")}, want: true},
		{name: "full amount", tenant: domain.Tenant{DepositPercent: pct("100")}, want: true},
		{name: "over one hundred", tenant: domain.Tenant{DepositPercent: pct("150")}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.tenant.DepositsEnabled())
		})
	}
}
