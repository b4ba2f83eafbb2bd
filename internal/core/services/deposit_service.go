package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bookahq/booka_backend/internal/adapters/payment"
	"github.com/bookahq/booka_backend/internal/apperrors"
	"github.com/bookahq/booka_backend/internal/core/domain"
	portsrepo "github.com/bookahq/booka_backend/internal/core/ports/repositories"
	portssvc "github.com/bookahq/booka_backend/internal/core/ports/services"
	"github.com/bookahq/booka_backend/internal/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SkipReasonInvalidDepositPct is returned when the tenant's deposit policy is
// absent, zero or out of range. No transaction row or provider call happens.
const SkipReasonInvalidDepositPct = "invalid_deposit_pct"

var oneHundred = decimal.NewFromInt(100)

// depositService implements the DepositSvc interface
type depositService struct {
	BaseService
	transactionRepo portsrepo.TransactionRepositoryFacade
	reservationRepo portsrepo.ReservationReader
	tenantRepo      portsrepo.TenantReader
	providers       *payment.Registry
	retryBaseDelay  time.Duration
}

// NewDepositService creates a new deposit service with the provided dependencies
func NewDepositService(
	transactionRepo portsrepo.TransactionRepositoryFacade,
	reservationRepo portsrepo.ReservationReader,
	tenantRepo portsrepo.TenantReader,
	providers *payment.Registry,
	retryBaseDelay time.Duration,
) portssvc.DepositSvc {
	return &depositService{
		transactionRepo: transactionRepo,
		reservationRepo: reservationRepo,
		tenantRepo:      tenantRepo,
		providers:       providers,
		retryBaseDelay:  retryBaseDelay,
	}
}

// Ensure depositService implements the DepositSvc interface
var _ portssvc.DepositSvc = (*depositService)(nil)

// InitiateDeposit computes the tenant's deposit for a reservation and creates
// a hosted-payment intent. Validation and state checks run before any side
// effect; idempotent replays return the existing active transaction.
func (s *depositService) InitiateDeposit(ctx context.Context, tenantID string, req dto.InitiateDepositRequest) (*portssvc.DepositOutcome, error) {
	reservation, err := s.reservationRepo.FindReservationByID(ctx, tenantID, req.ReservationID)
	if err != nil {
		return nil, err
	}
	if reservation.Status == domain.ReservationCancelled {
		return nil, fmt.Errorf("%w: reservation %s is cancelled", apperrors.ErrInvalidState, req.ReservationID)
	}

	tenant, err := s.tenantRepo.FindTenantByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if !tenant.DepositsEnabled() {
		s.LogInfo(ctx, "Deposit skipped, tenant has no usable deposit policy",
			slog.String("tenant_id", tenantID))
		return &portssvc.DepositOutcome{Skipped: SkipReasonInvalidDepositPct}, nil
	}

	// Idempotency: one active (pending|success) deposit per (tenant, reservation).
	existing, err := s.transactionRepo.FindActiveDeposit(ctx, tenantID, req.ReservationID)
	if err == nil {
		s.LogInfo(ctx, "Deposit already active, returning existing transaction",
			slog.String("transaction_id", existing.TransactionID))
		return &portssvc.DepositOutcome{Transaction: existing, Duplicate: true}, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	// Deposit amount: base * pct / 100 in minor units, rounded half up.
	depositMinor := decimal.NewFromInt(req.Amount).
		Mul(*tenant.DepositPercent).
		Div(oneHundred).
		Round(0)
	amountMajor := depositMinor.Div(oneHundred)

	client, err := s.providers.Client(domain.PaymentProvider(req.Provider))
	if err != nil {
		return nil, err
	}

	intent, err := client.CreateDepositIntent(ctx, payment.IntentRequest{
		AmountMinor: depositMinor.IntPart(),
		Currency:    req.Currency,
		Email:       req.Email,
		Metadata: map[string]string{
			"type":           domain.TransactionTypeDeposit,
			"reservation_id": req.ReservationID,
			"tenant_id":      tenantID,
		},
	})
	if err != nil {
		s.LogError(ctx, err, "Provider rejected deposit intent",
			slog.String("provider", req.Provider),
			slog.String("reservation_id", req.ReservationID))
		return nil, err
	}

	now := time.Now().UTC()
	nextRetry := now.Add(s.retryBaseDelay)
	raw, err := json.Marshal(map[string]any{
		"provider":       string(intent.Provider),
		"reservation_id": req.ReservationID,
		"response":       json.RawMessage(intent.Raw),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode provider response: %w", err)
	}

	txn := domain.Transaction{
		TransactionID: uuid.NewString(),
		TenantID:      &tenantID,
		ReservationID: &req.ReservationID,
		Amount:        amountMajor,
		Currency:      req.Currency,
		Type:          domain.TransactionTypeDeposit,
		Status:        domain.TransactionPending,
		Provider:      intent.Provider,
		ProviderRef:   intent.ID,
		PaymentURL:    intent.PaymentURL,
		Email:         req.Email,
		NextRetryAt:   &nextRetry,
		Raw:           raw,
		CreatedAt:     now,
	}

	if err := s.transactionRepo.SaveTransaction(ctx, txn); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			// A concurrent initiation won the partial unique index; replay it.
			if existing, findErr := s.transactionRepo.FindActiveDeposit(ctx, tenantID, req.ReservationID); findErr == nil {
				return &portssvc.DepositOutcome{Transaction: existing, Duplicate: true}, nil
			}
		}
		s.LogError(ctx, err, "Failed to save deposit transaction",
			slog.String("transaction_id", txn.TransactionID))
		return nil, err
	}

	s.LogInfo(ctx, "Deposit initiated",
		slog.String("transaction_id", txn.TransactionID),
		slog.String("provider", string(txn.Provider)),
		slog.String("amount", txn.Amount.String()))
	return &portssvc.DepositOutcome{Transaction: &txn}, nil
}
