package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/bookahq/booka_backend/internal/core/domain"
	"github.com/bookahq/booka_backend/internal/core/services"
	"github.com/bookahq/booka_backend/internal/platform/config"
	"github.com/bookahq/booka_backend/internal/repositories/database/pgsql"
	"github.com/bookahq/booka_backend/pkg/database"
)

// reconcile_ledger produces a daily reconciliation report on stdout.
//
// Usage: reconcile_ledger [tenant-id] [YYYY-MM-DD]
// With no arguments it reports across all tenants for today (UTC).
func main() {
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	var tenantID *string
	date := time.Now().UTC()

	args := flag.Args()
	if len(args) > 0 && args[0] != "" {
		tenantID = &args[0]
	}
	if len(args) > 1 {
		parsed, err := time.Parse("2006-01-02", args[1])
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid date %q, expected YYYY-MM-DD\n", args[1])
			os.Exit(1)
		}
		date = parsed
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx := context.Background()
	dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer dbPool.Close()

	repos := pgsql.NewRepositoryProvider(dbPool)
	svc := services.NewReconciliationService(repos.TransactionRepo, repos.LedgerRepo)

	report, err := svc.Reconcile(ctx, tenantID, date)
	if err != nil {
		logger.Error("Reconciliation failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	printReport(report)
}

func printReport(r *domain.ReconciliationReport) {
	scope := "all tenants"
	if r.TenantID != nil {
		scope = "tenant " + *r.TenantID
	}
	fmt.Printf("Reconciliation report for %s on %s\n", scope, r.Date.Format("2006-01-02"))
	fmt.Printf("  transactions: %d (total %s)\n", r.TransactionCount, r.TransactionTotal.StringFixed(2))
	fmt.Printf("  ledger entries: %d (total %s)\n", r.LedgerEntryCount, r.LedgerTotal.StringFixed(2))

	if len(r.Unreconciled) > 0 {
		fmt.Printf("  unreconciled transactions (%d):\n", len(r.Unreconciled))
		for _, txn := range r.Unreconciled {
			fmt.Printf("    %s  %s %s  status=%s\n", txn.TransactionID, txn.Amount.StringFixed(2), txn.Currency, txn.Status)
		}
	}
	if len(r.Orphaned) > 0 {
		fmt.Printf("  orphaned ledger entries (%d):\n", len(r.Orphaned))
		for _, entry := range r.Orphaned {
			fmt.Printf("    %s  %s %s\n", entry.EntryID, entry.Amount.StringFixed(2), entry.Currency)
		}
	}

	if r.BalancesMatch {
		fmt.Println("Balances match.")
	} else {
		fmt.Printf("Balance discrepancy: %s\n", r.BalanceDiff.StringFixed(2))
	}
}
