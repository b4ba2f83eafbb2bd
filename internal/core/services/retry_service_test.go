package services_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/bookahq/booka_backend/internal/adapters/payment"
	"github.com/bookahq/booka_backend/internal/core/domain"
	portssvc "github.com/bookahq/booka_backend/internal/core/ports/services"
	"github.com/bookahq/booka_backend/internal/core/services"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Test Suite Setup ---

type RetryServiceTestSuite struct {
	suite.Suite
	mockTxnRepo  *MockTransactionRepository
	mockPaystack *MockPaymentClient
	service      portssvc.RetrySvc
}

func (suite *RetryServiceTestSuite) SetupTest() {
	suite.mockTxnRepo = new(MockTransactionRepository)
	suite.mockPaystack = new(MockPaymentClient)
	suite.service = services.NewRetryService(
		suite.mockTxnRepo,
		payment.NewRegistry(suite.mockPaystack, nil),
		nil,
		services.RetryConfig{
			MaxAttempts:   3,
			BatchSize:     50,
			BaseDelay:     30 * time.Minute,
			CourtesyDelay: time.Millisecond,
		},
	)
}

func (suite *RetryServiceTestSuite) pendingDeposit(retryCount int) domain.Transaction {
	return domain.Transaction{
		TransactionID: uuid.NewString(),
		Type:          domain.TransactionTypeDeposit,
		Status:        domain.TransactionPending,
		Provider:      domain.ProviderPaystack,
		ProviderRef:   "ps_ref_" + uuid.NewString()[:8],
		RetryCount:    retryCount,
	}
}

// --- Test Cases ---

func (suite *RetryServiceTestSuite) TestRunBatch_NothingDue() {
	ctx := context.Background()

	suite.mockTxnRepo.On("ClaimRetryable", ctx, mock.AnythingOfType("time.Time"), 3, 50, 30*time.Minute).
		Return([]domain.Transaction{}, nil).Once()

	result, err := suite.service.RunBatch(ctx)

	suite.Require().NoError(err)
	suite.Equal(portssvc.RetryBatchResult{}, result)
	suite.mockTxnRepo.AssertExpectations(suite.T())
}

func (suite *RetryServiceTestSuite) TestRunBatch_ClaimFailureIsFatal() {
	ctx := context.Background()

	suite.mockTxnRepo.On("ClaimRetryable", ctx, mock.AnythingOfType("time.Time"), 3, 50, 30*time.Minute).
		Return(nil, errors.New("connection refused")).Once()

	_, err := suite.service.RunBatch(ctx)

	suite.Require().Error(err)
}

func (suite *RetryServiceTestSuite) TestRunBatch_SuccessSettlesTransaction() {
	ctx := context.Background()
	txn := suite.pendingDeposit(1)
	raw := json.RawMessage(`{"status":"success"}`)

	suite.mockTxnRepo.On("ClaimRetryable", ctx, mock.AnythingOfType("time.Time"), 3, 50, 30*time.Minute).
		Return([]domain.Transaction{txn}, nil).Once()
	suite.mockPaystack.On("Retry", ctx, txn).Return(&payment.Intent{
		ID:       txn.ProviderRef,
		Status:   domain.TransactionSuccess,
		Provider: domain.ProviderPaystack,
		Raw:      raw,
	}, nil).Once()
	suite.mockTxnRepo.On("MarkRetrySuccess", ctx, txn.TransactionID, raw).Return(nil).Once()

	result, err := suite.service.RunBatch(ctx)

	suite.Require().NoError(err)
	suite.Equal(1, result.Selected)
	suite.Equal(1, result.Succeeded)
	suite.Equal(0, result.Failed)
	suite.mockTxnRepo.AssertExpectations(suite.T())
}

func (suite *RetryServiceTestSuite) TestRunBatch_FailureSchedulesExponentialBackoff() {
	ctx := context.Background()
	txn := suite.pendingDeposit(1)

	suite.mockTxnRepo.On("ClaimRetryable", ctx, mock.AnythingOfType("time.Time"), 3, 50, 30*time.Minute).
		Return([]domain.Transaction{txn}, nil).Once()
	suite.mockPaystack.On("Retry", ctx, txn).Return(nil, errors.New("provider timeout")).Once()

	// Second attempt already recorded, so the next slot is base * 2.
	expected := time.Now().UTC().Add(60 * time.Minute)
	suite.mockTxnRepo.On("MarkRetryFailure", ctx, txn.TransactionID, mock.MatchedBy(func(nextRetryAt time.Time) bool {
		diff := nextRetryAt.Sub(expected)
		return diff > -time.Minute && diff < time.Minute
	})).Return(nil).Once()

	result, err := suite.service.RunBatch(ctx)

	suite.Require().NoError(err)
	suite.Equal(1, result.Failed)
	suite.mockTxnRepo.AssertExpectations(suite.T())
}

func (suite *RetryServiceTestSuite) TestRunBatch_OneFailureDoesNotAbortBatch() {
	ctx := context.Background()
	failing := suite.pendingDeposit(0)
	succeeding := suite.pendingDeposit(0)
	raw := json.RawMessage(`{"status":"success"}`)

	suite.mockTxnRepo.On("ClaimRetryable", ctx, mock.AnythingOfType("time.Time"), 3, 50, 30*time.Minute).
		Return([]domain.Transaction{failing, succeeding}, nil).Once()
	suite.mockPaystack.On("Retry", ctx, failing).Return(nil, errors.New("provider timeout")).Once()
	suite.mockTxnRepo.On("MarkRetryFailure", ctx, failing.TransactionID, mock.AnythingOfType("time.Time")).Return(nil).Once()
	suite.mockPaystack.On("Retry", ctx, succeeding).Return(&payment.Intent{
		ID:       succeeding.ProviderRef,
		Status:   domain.TransactionSuccess,
		Provider: domain.ProviderPaystack,
		Raw:      raw,
	}, nil).Once()
	suite.mockTxnRepo.On("MarkRetrySuccess", ctx, succeeding.TransactionID, raw).Return(nil).Once()

	result, err := suite.service.RunBatch(ctx)

	suite.Require().NoError(err)
	suite.Equal(2, result.Selected)
	suite.Equal(1, result.Succeeded)
	suite.Equal(1, result.Failed)
	suite.mockTxnRepo.AssertExpectations(suite.T())
	suite.mockPaystack.AssertExpectations(suite.T())
}

func (suite *RetryServiceTestSuite) TestRunBatch_UnknownProviderCountsAsFailure() {
	ctx := context.Background()
	txn := suite.pendingDeposit(0)
	txn.Provider = domain.ProviderStripe // not configured in this deployment

	suite.mockTxnRepo.On("ClaimRetryable", ctx, mock.AnythingOfType("time.Time"), 3, 50, 30*time.Minute).
		Return([]domain.Transaction{txn}, nil).Once()
	suite.mockTxnRepo.On("MarkRetryFailure", ctx, txn.TransactionID, mock.AnythingOfType("time.Time")).Return(nil).Once()

	result, err := suite.service.RunBatch(ctx)

	suite.Require().NoError(err)
	suite.Equal(1, result.Failed)
	suite.mockPaystack.AssertNotCalled(suite.T(), "Retry")
}

func TestRetryServiceTestSuite(t *testing.T) {
	suite.Run(t, new(RetryServiceTestSuite))
}
