package services

import (
	"github.com/bookahq/booka_backend/internal/adapters/messaging"
	"github.com/bookahq/booka_backend/internal/adapters/payment"
	portsrepo "github.com/bookahq/booka_backend/internal/core/ports/repositories"
	portssvc "github.com/bookahq/booka_backend/internal/core/ports/services"
)

// NewServiceContainer wires every application service from the repository
// provider, the configured payment providers and the event publisher.
func NewServiceContainer(
	repos *portsrepo.RepositoryProvider,
	providers *payment.Registry,
	publisher messaging.EventPublisher,
	retryCfg RetryConfig,
) *portssvc.ServiceContainer {
	retryCfg = retryCfg.withDefaults()

	return &portssvc.ServiceContainer{
		Booking:        NewBookingService(repos.ReservationRepo, publisher),
		Deposit:        NewDepositService(repos.TransactionRepo, repos.ReservationRepo, repos.TenantRepo, providers, retryCfg.BaseDelay),
		Webhook:        NewWebhookService(repos.TransactionRepo, providers),
		Retry:          NewRetryService(repos.TransactionRepo, providers, publisher, retryCfg),
		Reconciliation: NewReconciliationService(repos.TransactionRepo, repos.LedgerRepo),
	}
}
