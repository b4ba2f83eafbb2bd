package mapping

import (
	"github.com/bookahq/booka_backend/internal/core/domain"
	"github.com/bookahq/booka_backend/internal/models"
)

// ToDomainTenant converts a model Tenant to a domain Tenant
func ToDomainTenant(m models.Tenant) domain.Tenant {
	return domain.Tenant{
		TenantID:        m.TenantID,
		Name:            m.Name,
		DefaultCurrency: m.DefaultCurrency,
		DepositPercent:  m.DepositPercent,
		AuditFields:     toDomainAuditFields(m.AuditFields),
	}
}
