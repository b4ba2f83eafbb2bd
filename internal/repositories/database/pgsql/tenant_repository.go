package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/bookahq/booka_backend/internal/apperrors"
	"github.com/bookahq/booka_backend/internal/core/domain"
	portsrepo "github.com/bookahq/booka_backend/internal/core/ports/repositories"
	"github.com/bookahq/booka_backend/internal/models"
	"github.com/bookahq/booka_backend/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxTenantRepository struct {
	BaseRepository
}

// newPgxTenantRepository creates a read-only repository over tenant settings.
// Tenant management lives in the external settings service.
func newPgxTenantRepository(pool *pgxpool.Pool) portsrepo.TenantReader {
	return &PgxTenantRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure implementation matches interface
var _ portsrepo.TenantReader = (*PgxTenantRepository)(nil)

// FindTenantByID retrieves a tenant and its deposit policy.
func (r *PgxTenantRepository) FindTenantByID(ctx context.Context, tenantID string) (*domain.Tenant, error) {
	query := `
		SELECT tenant_id, name, default_currency, deposit_percent, created_at, created_by, last_updated_at, last_updated_by
		FROM tenants
		WHERE tenant_id = $1;
	`
	var modelTenant models.Tenant
	err := r.Pool.QueryRow(ctx, query, tenantID).Scan(
		&modelTenant.TenantID,
		&modelTenant.Name,
		&modelTenant.DefaultCurrency,
		&modelTenant.DepositPercent,
		&modelTenant.CreatedAt,
		&modelTenant.CreatedBy,
		&modelTenant.LastUpdatedAt,
		&modelTenant.LastUpdatedBy,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find tenant %s: %w", tenantID, err)
	}

	domainTenant := mapping.ToDomainTenant(modelTenant)
	return &domainTenant, nil
}
