package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bookahq/booka_backend/internal/core/domain"
	portsrepo "github.com/bookahq/booka_backend/internal/core/ports/repositories"
	portssvc "github.com/bookahq/booka_backend/internal/core/ports/services"
)

// balanceEpsilon absorbs sub-cent representation noise when comparing the two
// daily totals. Anything at or above one cent is a real discrepancy.
var balanceEpsilon = decimal.NewFromFloat(0.01)

// reconciliationService implements the ReconciliationSvc interface
type reconciliationService struct {
	BaseService
	transactionRepo portsrepo.TransactionReader
	ledgerRepo      portsrepo.LedgerEntryReader
}

// NewReconciliationService creates a new reconciliation report service
func NewReconciliationService(
	transactionRepo portsrepo.TransactionReader,
	ledgerRepo portsrepo.LedgerEntryReader,
) portssvc.ReconciliationSvc {
	return &reconciliationService{
		transactionRepo: transactionRepo,
		ledgerRepo:      ledgerRepo,
	}
}

// Ensure reconciliationService implements the ReconciliationSvc interface
var _ portssvc.ReconciliationSvc = (*reconciliationService)(nil)

// Reconcile compares the UTC calendar day of transactions against ledger
// entries. It flags transactions not yet marked matched, ledger entries whose
// transaction reference points outside the day's transaction set, and any
// difference between the two daily totals at or above one cent.
func (s *reconciliationService) Reconcile(ctx context.Context, tenantID *string, date time.Time) (*domain.ReconciliationReport, error) {
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.Add(24 * time.Hour)

	txns, err := s.transactionRepo.ListTransactionsInRange(ctx, tenantID, dayStart, dayEnd)
	if err != nil {
		s.LogError(ctx, err, "Failed to list transactions for reconciliation")
		return nil, err
	}

	entries, err := s.ledgerRepo.ListEntriesInRange(ctx, tenantID, dayStart, dayEnd)
	if err != nil {
		s.LogError(ctx, err, "Failed to list ledger entries for reconciliation")
		return nil, err
	}

	report := &domain.ReconciliationReport{
		TenantID:         tenantID,
		Date:             dayStart,
		Unreconciled:     make([]domain.Transaction, 0),
		Orphaned:         make([]domain.LedgerEntry, 0),
		TransactionCount: len(txns),
		LedgerEntryCount: len(entries),
	}

	txnByID := make(map[string]struct{}, len(txns))
	for _, txn := range txns {
		txnByID[txn.TransactionID] = struct{}{}
		report.TransactionTotal = report.TransactionTotal.Add(txn.Amount)
		if txn.ReconciliationStatus != domain.ReconciliationMatched {
			report.Unreconciled = append(report.Unreconciled, txn)
		}
	}

	for _, entry := range entries {
		report.LedgerTotal = report.LedgerTotal.Add(entry.Amount)
		if entry.TransactionID == nil {
			report.Orphaned = append(report.Orphaned, entry)
			continue
		}
		if _, ok := txnByID[*entry.TransactionID]; !ok {
			report.Orphaned = append(report.Orphaned, entry)
		}
	}

	report.BalanceDiff = report.TransactionTotal.Sub(report.LedgerTotal).Abs()
	report.BalancesMatch = report.BalanceDiff.LessThan(balanceEpsilon)

	s.LogInfo(ctx, "Reconciliation report produced",
		slog.String("date", dayStart.Format("2006-01-02")),
		slog.Int("transactions", report.TransactionCount),
		slog.Int("ledger_entries", report.LedgerEntryCount),
		slog.Int("unreconciled", len(report.Unreconciled)),
		slog.Int("orphaned", len(report.Orphaned)),
		slog.Bool("balances_match", report.BalancesMatch))
	return report, nil
}
