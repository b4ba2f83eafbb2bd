package domain

import "github.com/shopspring/decimal"

// TenantRole is a user's role within a tenant.
type TenantRole string

const (
	RoleAdmin  TenantRole = "admin"
	RoleStaff  TenantRole = "staff"
	RoleViewer TenantRole = "viewer"
)

// Tenant is an isolated business account. All reservations, transactions and
// ledger entries are scoped by TenantID; cross-tenant references are invalid.
type Tenant struct {
	TenantID        string           `json:"tenantID"`
	Name            string           `json:"name"`
	DefaultCurrency string           `json:"defaultCurrency"`
	DepositPercent  *decimal.Decimal `json:"depositPercent,omitempty"` // 0-100; nil or 0 disables deposits
	AuditFields
}

// DepositsEnabled reports whether the tenant has a usable deposit policy.
func (t Tenant) DepositsEnabled() bool {
	if t.DepositPercent == nil {
		return false
	}
	pct := *t.DepositPercent
	return pct.IsPositive() && pct.LessThanOrEqual(decimal.NewFromInt(100))
}
