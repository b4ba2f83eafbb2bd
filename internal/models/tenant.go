package models

import "github.com/shopspring/decimal"

// Tenant is the persistence model for the tenants table. DepositPercent is the
// tenant-configured deposit policy; NULL or 0 disables deposit collection.
type Tenant struct {
	TenantID        string           `json:"tenantID"` // Primary Key (UUID)
	Name            string           `json:"name"`
	DefaultCurrency string           `json:"defaultCurrency"`
	DepositPercent  *decimal.Decimal `json:"depositPercent"`
	AuditFields
}
