package pgsql

import (
	portsrepo "github.com/bookahq/booka_backend/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	reservationRepo := newPgxReservationRepository(dbPool)
	transactionRepo := newPgxTransactionRepository(dbPool)
	ledgerRepo := newPgxLedgerRepository(dbPool)
	tenantRepo := newPgxTenantRepository(dbPool)

	return portsrepo.RepositoryProvider{
		ReservationRepo: reservationRepo,
		TransactionRepo: transactionRepo,
		LedgerRepo:      ledgerRepo,
		TenantRepo:      tenantRepo,
	}
}
