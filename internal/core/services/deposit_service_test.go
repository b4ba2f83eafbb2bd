package services_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/bookahq/booka_backend/internal/adapters/payment"
	"github.com/bookahq/booka_backend/internal/apperrors"
	"github.com/bookahq/booka_backend/internal/core/domain"
	portssvc "github.com/bookahq/booka_backend/internal/core/ports/services"
	"github.com/bookahq/booka_backend/internal/core/services"
	"github.com/bookahq/booka_backend/internal/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// MockTransactionRepository is a mock type for the TransactionRepositoryFacade interface
type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) FindActiveDeposit(ctx context.Context, tenantID, reservationID string) (*domain.Transaction, error) {
	args := m.Called(ctx, tenantID, reservationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) ListTransactionsInRange(ctx context.Context, tenantID *string, from, to time.Time) ([]domain.Transaction, error) {
	args := m.Called(ctx, tenantID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) SaveTransaction(ctx context.Context, txn domain.Transaction) error {
	args := m.Called(ctx, txn)
	return args.Error(0)
}

func (m *MockTransactionRepository) ClaimRetryable(ctx context.Context, now time.Time, maxAttempts, limit int, claimWindow time.Duration) ([]domain.Transaction, error) {
	args := m.Called(ctx, now, maxAttempts, limit, claimWindow)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) MarkRetrySuccess(ctx context.Context, transactionID string, raw json.RawMessage) error {
	args := m.Called(ctx, transactionID, raw)
	return args.Error(0)
}

func (m *MockTransactionRepository) MarkRetryFailure(ctx context.Context, transactionID string, nextRetryAt time.Time) error {
	args := m.Called(ctx, transactionID, nextRetryAt)
	return args.Error(0)
}

// MockTenantRepository is a mock type for the TenantReader interface
type MockTenantRepository struct {
	mock.Mock
}

func (m *MockTenantRepository) FindTenantByID(ctx context.Context, tenantID string) (*domain.Tenant, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Tenant), args.Error(1)
}

// MockPaymentClient is a mock type for the payment.Client interface
type MockPaymentClient struct {
	mock.Mock
}

func (m *MockPaymentClient) CreateDepositIntent(ctx context.Context, req payment.IntentRequest) (*payment.Intent, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Intent), args.Error(1)
}

func (m *MockPaymentClient) Retry(ctx context.Context, txn domain.Transaction) (*payment.Intent, error) {
	args := m.Called(ctx, txn)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Intent), args.Error(1)
}

func (m *MockPaymentClient) VerifyWebhookSignature(body []byte, signatureHeader string) error {
	args := m.Called(body, signatureHeader)
	return args.Error(0)
}

func (m *MockPaymentClient) ParseWebhook(body []byte) (*payment.WebhookEvent, error) {
	args := m.Called(body)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.WebhookEvent), args.Error(1)
}

// --- Test Suite Setup ---

type DepositServiceTestSuite struct {
	suite.Suite
	mockTxnRepo         *MockTransactionRepository
	mockReservationRepo *MockReservationRepository
	mockTenantRepo      *MockTenantRepository
	mockPaystack        *MockPaymentClient
	service             portssvc.DepositSvc
}

func (suite *DepositServiceTestSuite) SetupTest() {
	suite.mockTxnRepo = new(MockTransactionRepository)
	suite.mockReservationRepo = new(MockReservationRepository)
	suite.mockTenantRepo = new(MockTenantRepository)
	suite.mockPaystack = new(MockPaymentClient)

	providers := payment.NewRegistry(suite.mockPaystack, nil)
	suite.service = services.NewDepositService(
		suite.mockTxnRepo,
		suite.mockReservationRepo,
		suite.mockTenantRepo,
		providers,
		30*time.Minute,
	)
}

func (suite *DepositServiceTestSuite) confirmedReservation(tenantID, reservationID string) *domain.Reservation {
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	return &domain.Reservation{
		ReservationID: reservationID,
		TenantID:      tenantID,
		ServiceID:     "svc-haircut",
		CustomerRef:   "customer-42",
		StartAt:       start,
		EndAt:         start.Add(time.Hour),
		Status:        domain.ReservationConfirmed,
	}
}

func (suite *DepositServiceTestSuite) tenantWithPercent(tenantID string, pct *decimal.Decimal) *domain.Tenant {
	return &domain.Tenant{
		TenantID:        tenantID,
		Name:            "Test Salon",
		DefaultCurrency: "NGN",
		DepositPercent:  pct,
	}
}

// --- Test Cases ---

func (suite *DepositServiceTestSuite) TestInitiateDeposit_SkipsWhenPolicyDisabled() {
	ctx := context.Background()
	tenantID := uuid.NewString()
	reservationID := uuid.NewString()
	req := dto.InitiateDepositRequest{
		ReservationID: reservationID,
		Amount:        10000,
		Currency:      "NGN",
		Email:         "customer@example.com",
		Provider:      "paystack",
	}

	suite.mockReservationRepo.On("FindReservationByID", ctx, tenantID, reservationID).
		Return(suite.confirmedReservation(tenantID, reservationID), nil).Once()
	suite.mockTenantRepo.On("FindTenantByID", ctx, tenantID).
		Return(suite.tenantWithPercent(tenantID, nil), nil).Once()

	outcome, err := suite.service.InitiateDeposit(ctx, tenantID, req)

	suite.Require().NoError(err)
	suite.Equal(services.SkipReasonInvalidDepositPct, outcome.Skipped)
	suite.Nil(outcome.Transaction)
	suite.mockPaystack.AssertNotCalled(suite.T(), "CreateDepositIntent")
	suite.mockTxnRepo.AssertNotCalled(suite.T(), "SaveTransaction")
}

func (suite *DepositServiceTestSuite) TestInitiateDeposit_ZeroPercentSkips() {
	ctx := context.Background()
	tenantID := uuid.NewString()
	reservationID := uuid.NewString()
	zero := decimal.Zero
	req := dto.InitiateDepositRequest{
		ReservationID: reservationID,
		Amount:        10000,
		Currency:      "NGN",
		Email:         "customer@example.com",
		Provider:      "paystack",
	}

	suite.mockReservationRepo.On("FindReservationByID", ctx, tenantID, reservationID).
		Return(suite.confirmedReservation(tenantID, reservationID), nil).Once()
	suite.mockTenantRepo.On("FindTenantByID", ctx, tenantID).
		Return(suite.tenantWithPercent(tenantID, &zero), nil).Once()

	outcome, err := suite.service.InitiateDeposit(ctx, tenantID, req)

	suite.Require().NoError(err)
	suite.Equal(services.SkipReasonInvalidDepositPct, outcome.Skipped)
	suite.mockTxnRepo.AssertNotCalled(suite.T(), "SaveTransaction")
}

func (suite *DepositServiceTestSuite) TestInitiateDeposit_CancelledReservationRejected() {
	ctx := context.Background()
	tenantID := uuid.NewString()
	reservationID := uuid.NewString()
	reservation := suite.confirmedReservation(tenantID, reservationID)
	reservation.Status = domain.ReservationCancelled

	suite.mockReservationRepo.On("FindReservationByID", ctx, tenantID, reservationID).
		Return(reservation, nil).Once()

	outcome, err := suite.service.InitiateDeposit(ctx, tenantID, dto.InitiateDepositRequest{
		ReservationID: reservationID,
		Amount:        10000,
		Currency:      "NGN",
		Email:         "customer@example.com",
		Provider:      "paystack",
	})

	suite.Require().ErrorIs(err, apperrors.ErrInvalidState)
	suite.Nil(outcome)
	suite.mockTenantRepo.AssertNotCalled(suite.T(), "FindTenantByID")
}

func (suite *DepositServiceTestSuite) TestInitiateDeposit_ComputesAndRecordsDeposit() {
	ctx := context.Background()
	tenantID := uuid.NewString()
	reservationID := "r1"
	pct := decimal.NewFromInt(25)
	req := dto.InitiateDepositRequest{
		ReservationID: reservationID,
		Amount:        10000,
		Currency:      "NGN",
		Email:         "customer@example.com",
		Provider:      "paystack",
	}

	suite.mockReservationRepo.On("FindReservationByID", ctx, tenantID, reservationID).
		Return(suite.confirmedReservation(tenantID, reservationID), nil).Once()
	suite.mockTenantRepo.On("FindTenantByID", ctx, tenantID).
		Return(suite.tenantWithPercent(tenantID, &pct), nil).Once()
	suite.mockTxnRepo.On("FindActiveDeposit", ctx, tenantID, reservationID).
		Return(nil, apperrors.ErrNotFound).Once()

	// 25% of 10000 minor units is 2500 minor units on the wire.
	suite.mockPaystack.On("CreateDepositIntent", ctx, mock.MatchedBy(func(ir payment.IntentRequest) bool {
		return ir.AmountMinor == 2500 && ir.Currency == "NGN" && ir.Metadata["reservation_id"] == reservationID
	})).Return(&payment.Intent{
		ID:         "ps_ref_123",
		Status:     domain.TransactionPending,
		Provider:   domain.ProviderPaystack,
		PaymentURL: "https://checkout.paystack.com/abc",
		Raw:        json.RawMessage(`{"status":true}`),
	}, nil).Once()

	var saved domain.Transaction
	suite.mockTxnRepo.On("SaveTransaction", ctx, mock.AnythingOfType("domain.Transaction")).
		Run(func(args mock.Arguments) {
			saved = args.Get(1).(domain.Transaction)
		}).Return(nil).Once()

	outcome, err := suite.service.InitiateDeposit(ctx, tenantID, req)

	suite.Require().NoError(err)
	suite.Require().NotNil(outcome.Transaction)
	suite.False(outcome.Duplicate)

	// Stored in major units: 2500 minor -> 25.
	suite.True(saved.Amount.Equal(decimal.NewFromInt(25)), "amount was %s", saved.Amount)
	suite.Equal(domain.TransactionPending, saved.Status)
	suite.Equal(domain.TransactionTypeDeposit, saved.Type)
	suite.Equal("ps_ref_123", saved.ProviderRef)
	suite.Require().NotNil(saved.NextRetryAt)

	var raw map[string]any
	suite.Require().NoError(json.Unmarshal(saved.Raw, &raw))
	suite.Equal("paystack", raw["provider"])
	suite.Equal("r1", raw["reservation_id"])

	suite.mockPaystack.AssertExpectations(suite.T())
	suite.mockTxnRepo.AssertExpectations(suite.T())
}

func (suite *DepositServiceTestSuite) TestInitiateDeposit_RoundsHalfUp() {
	ctx := context.Background()
	tenantID := uuid.NewString()
	reservationID := uuid.NewString()
	// 12.5% of 101 minor units is 12.625, which rounds to 13.
	pct := decimal.NewFromFloat(12.5)
	req := dto.InitiateDepositRequest{
		ReservationID: reservationID,
		Amount:        101,
		Currency:      "NGN",
		Email:         "customer@example.com",
		Provider:      "paystack",
	}

	suite.mockReservationRepo.On("FindReservationByID", ctx, tenantID, reservationID).
		Return(suite.confirmedReservation(tenantID, reservationID), nil).Once()
	suite.mockTenantRepo.On("FindTenantByID", ctx, tenantID).
		Return(suite.tenantWithPercent(tenantID, &pct), nil).Once()
	suite.mockTxnRepo.On("FindActiveDeposit", ctx, tenantID, reservationID).
		Return(nil, apperrors.ErrNotFound).Once()
	suite.mockPaystack.On("CreateDepositIntent", ctx, mock.MatchedBy(func(ir payment.IntentRequest) bool {
		return ir.AmountMinor == 13
	})).Return(&payment.Intent{
		ID:       "ps_ref_456",
		Provider: domain.ProviderPaystack,
		Raw:      json.RawMessage(`{}`),
	}, nil).Once()
	suite.mockTxnRepo.On("SaveTransaction", ctx, mock.AnythingOfType("domain.Transaction")).Return(nil).Once()

	_, err := suite.service.InitiateDeposit(ctx, tenantID, req)

	suite.Require().NoError(err)
	suite.mockPaystack.AssertExpectations(suite.T())
}

func (suite *DepositServiceTestSuite) TestInitiateDeposit_ReplayReturnsExisting() {
	ctx := context.Background()
	tenantID := uuid.NewString()
	reservationID := uuid.NewString()
	pct := decimal.NewFromInt(25)
	existing := &domain.Transaction{
		TransactionID: uuid.NewString(),
		TenantID:      &tenantID,
		ReservationID: &reservationID,
		Status:        domain.TransactionPending,
		Type:          domain.TransactionTypeDeposit,
	}

	suite.mockReservationRepo.On("FindReservationByID", ctx, tenantID, reservationID).
		Return(suite.confirmedReservation(tenantID, reservationID), nil).Once()
	suite.mockTenantRepo.On("FindTenantByID", ctx, tenantID).
		Return(suite.tenantWithPercent(tenantID, &pct), nil).Once()
	suite.mockTxnRepo.On("FindActiveDeposit", ctx, tenantID, reservationID).
		Return(existing, nil).Once()

	outcome, err := suite.service.InitiateDeposit(ctx, tenantID, dto.InitiateDepositRequest{
		ReservationID: reservationID,
		Amount:        10000,
		Currency:      "NGN",
		Email:         "customer@example.com",
		Provider:      "paystack",
	})

	suite.Require().NoError(err)
	suite.True(outcome.Duplicate)
	suite.Equal(existing.TransactionID, outcome.Transaction.TransactionID)
	suite.mockPaystack.AssertNotCalled(suite.T(), "CreateDepositIntent")
	suite.mockTxnRepo.AssertNotCalled(suite.T(), "SaveTransaction")
}

func (suite *DepositServiceTestSuite) TestInitiateDeposit_ConcurrentInitiationReplays() {
	// The partial unique index rejects the second insert; the loser re-reads
	// the winner's row and reports a duplicate.
	ctx := context.Background()
	tenantID := uuid.NewString()
	reservationID := uuid.NewString()
	pct := decimal.NewFromInt(25)
	winner := &domain.Transaction{
		TransactionID: uuid.NewString(),
		TenantID:      &tenantID,
		ReservationID: &reservationID,
		Status:        domain.TransactionPending,
		Type:          domain.TransactionTypeDeposit,
	}

	suite.mockReservationRepo.On("FindReservationByID", ctx, tenantID, reservationID).
		Return(suite.confirmedReservation(tenantID, reservationID), nil).Once()
	suite.mockTenantRepo.On("FindTenantByID", ctx, tenantID).
		Return(suite.tenantWithPercent(tenantID, &pct), nil).Once()
	suite.mockTxnRepo.On("FindActiveDeposit", ctx, tenantID, reservationID).
		Return(nil, apperrors.ErrNotFound).Once()
	suite.mockPaystack.On("CreateDepositIntent", ctx, mock.AnythingOfType("payment.IntentRequest")).
		Return(&payment.Intent{ID: "ps_ref_789", Provider: domain.ProviderPaystack, Raw: json.RawMessage(`{}`)}, nil).Once()
	suite.mockTxnRepo.On("SaveTransaction", ctx, mock.AnythingOfType("domain.Transaction")).
		Return(apperrors.ErrDuplicate).Once()
	suite.mockTxnRepo.On("FindActiveDeposit", ctx, tenantID, reservationID).
		Return(winner, nil).Once()

	outcome, err := suite.service.InitiateDeposit(ctx, tenantID, dto.InitiateDepositRequest{
		ReservationID: reservationID,
		Amount:        10000,
		Currency:      "NGN",
		Email:         "customer@example.com",
		Provider:      "paystack",
	})

	suite.Require().NoError(err)
	suite.True(outcome.Duplicate)
	suite.Equal(winner.TransactionID, outcome.Transaction.TransactionID)
	suite.mockTxnRepo.AssertExpectations(suite.T())
}

func TestDepositServiceTestSuite(t *testing.T) {
	suite.Run(t, new(DepositServiceTestSuite))
}
