package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/bookahq/booka_backend/internal/apperrors"
	"github.com/bookahq/booka_backend/internal/core/domain"
	portssvc "github.com/bookahq/booka_backend/internal/core/ports/services"
	"github.com/bookahq/booka_backend/internal/core/services"
	"github.com/bookahq/booka_backend/internal/dto"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// MockReservationRepository is a mock type for the ReservationRepositoryWithTx interface
type MockReservationRepository struct {
	mock.Mock
}

func (m *MockReservationRepository) SaveReservation(ctx context.Context, reservation domain.Reservation) error {
	args := m.Called(ctx, reservation)
	return args.Error(0)
}

func (m *MockReservationRepository) UpdateReservation(ctx context.Context, reservation domain.Reservation) error {
	args := m.Called(ctx, reservation)
	return args.Error(0)
}

func (m *MockReservationRepository) FindReservationByID(ctx context.Context, tenantID, reservationID string) (*domain.Reservation, error) {
	args := m.Called(ctx, tenantID, reservationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reservation), args.Error(1)
}

func (m *MockReservationRepository) ListReservations(ctx context.Context, tenantID string, limit, offset int) ([]domain.Reservation, error) {
	args := m.Called(ctx, tenantID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Reservation), args.Error(1)
}

func (m *MockReservationRepository) CountOverlapping(ctx context.Context, tenantID, staffID string, startAt, endAt time.Time, excludeID *string) (int, error) {
	args := m.Called(ctx, tenantID, staffID, startAt, endAt, excludeID)
	return args.Int(0), args.Error(1)
}

func (m *MockReservationRepository) FindReservationByIDForUpdate(ctx context.Context, tx pgx.Tx, tenantID, reservationID string) (*domain.Reservation, error) {
	args := m.Called(ctx, tx, tenantID, reservationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reservation), args.Error(1)
}

func (m *MockReservationRepository) CountOverlappingInTx(ctx context.Context, tx pgx.Tx, tenantID, staffID string, startAt, endAt time.Time, excludeID *string) (int, error) {
	args := m.Called(ctx, tx, tenantID, staffID, startAt, endAt, excludeID)
	return args.Int(0), args.Error(1)
}

func (m *MockReservationRepository) UpdateReservationInTx(ctx context.Context, tx pgx.Tx, reservation domain.Reservation) error {
	args := m.Called(ctx, tx, reservation)
	return args.Error(0)
}

func (m *MockReservationRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(pgx.Tx), args.Error(1)
}

func (m *MockReservationRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockReservationRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

// stubTx stands in for a live pgx transaction; the service only threads it
// through to the repository.
type stubTx struct{ pgx.Tx }

// --- Test Suite Setup ---

type BookingServiceTestSuite struct {
	suite.Suite
	mockRepo *MockReservationRepository
	service  portssvc.BookingSvcFacade
}

// beginTx arranges a transaction on the mock repository and returns the
// handle the service is expected to thread through every call.
func (suite *BookingServiceTestSuite) beginTx(ctx context.Context) pgx.Tx {
	tx := stubTx{}
	suite.mockRepo.On("Begin", ctx).Return(tx, nil).Once()
	suite.mockRepo.On("Rollback", ctx, tx).Return(nil).Maybe()
	return tx
}

func (suite *BookingServiceTestSuite) SetupTest() {
	suite.mockRepo = new(MockReservationRepository)
	suite.service = services.NewBookingService(suite.mockRepo, nil)
}

func (suite *BookingServiceTestSuite) interval() (time.Time, time.Time) {
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	return start, start.Add(time.Hour)
}

// --- Test Cases ---

func (suite *BookingServiceTestSuite) TestHasConflict_InvalidInterval() {
	ctx := context.Background()
	staffID := uuid.NewString()
	start, _ := suite.interval()

	_, err := suite.service.HasConflict(ctx, uuid.NewString(), &staffID, start, start, nil)

	suite.Require().ErrorIs(err, apperrors.ErrValidation)
	suite.mockRepo.AssertNotCalled(suite.T(), "CountOverlapping")
}

func (suite *BookingServiceTestSuite) TestHasConflict_NilStaffNeverConflicts() {
	ctx := context.Background()
	start, end := suite.interval()

	conflict, err := suite.service.HasConflict(ctx, uuid.NewString(), nil, start, end, nil)

	suite.Require().NoError(err)
	suite.False(conflict)
	suite.mockRepo.AssertNotCalled(suite.T(), "CountOverlapping")
}

func (suite *BookingServiceTestSuite) TestHasConflict_OverlapFound() {
	ctx := context.Background()
	tenantID := uuid.NewString()
	staffID := uuid.NewString()
	start, end := suite.interval()

	suite.mockRepo.On("CountOverlapping", ctx, tenantID, staffID, start, end, (*string)(nil)).Return(1, nil).Once()

	conflict, err := suite.service.HasConflict(ctx, tenantID, &staffID, start, end, nil)

	suite.Require().NoError(err)
	suite.True(conflict)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *BookingServiceTestSuite) TestCreateBooking_Success() {
	ctx := context.Background()
	tenantID := uuid.NewString()
	staffID := uuid.NewString()
	creatorUserID := uuid.NewString()
	start, end := suite.interval()
	req := dto.CreateBookingRequest{
		ServiceID:   "svc-haircut",
		StaffID:     &staffID,
		CustomerRef: "customer-42",
		StartAt:     start,
		EndAt:       end,
	}

	suite.mockRepo.On("CountOverlapping", ctx, tenantID, staffID, start, end, (*string)(nil)).Return(0, nil).Once()
	suite.mockRepo.On("SaveReservation", ctx, mock.AnythingOfType("domain.Reservation")).Return(nil).Once()

	booking, err := suite.service.CreateBooking(ctx, tenantID, req, creatorUserID)

	suite.Require().NoError(err)
	suite.Require().NotNil(booking)
	suite.NotEmpty(booking.ReservationID)
	suite.Equal(tenantID, booking.TenantID)
	suite.Equal(domain.ReservationConfirmed, booking.Status)
	suite.Equal(creatorUserID, booking.CreatedBy)
	suite.WithinDuration(time.Now(), booking.CreatedAt, time.Second)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *BookingServiceTestSuite) TestCreateBooking_ConflictRejectedBeforeSave() {
	ctx := context.Background()
	tenantID := uuid.NewString()
	staffID := uuid.NewString()
	start, end := suite.interval()
	req := dto.CreateBookingRequest{
		ServiceID:   "svc-haircut",
		StaffID:     &staffID,
		CustomerRef: "customer-42",
		StartAt:     start,
		EndAt:       end,
	}

	suite.mockRepo.On("CountOverlapping", ctx, tenantID, staffID, start, end, (*string)(nil)).Return(1, nil).Once()

	booking, err := suite.service.CreateBooking(ctx, tenantID, req, uuid.NewString())

	suite.Require().ErrorIs(err, apperrors.ErrConflict)
	suite.Nil(booking)
	suite.mockRepo.AssertNotCalled(suite.T(), "SaveReservation")
}

func (suite *BookingServiceTestSuite) TestCreateBooking_RaceCaughtByConstraint() {
	// Two writers pass the overlap check together; the store's exclusion
	// constraint rejects the loser, which surfaces as a conflict.
	ctx := context.Background()
	tenantID := uuid.NewString()
	staffID := uuid.NewString()
	start, end := suite.interval()
	req := dto.CreateBookingRequest{
		ServiceID:   "svc-haircut",
		StaffID:     &staffID,
		CustomerRef: "customer-42",
		StartAt:     start,
		EndAt:       end,
	}

	suite.mockRepo.On("CountOverlapping", ctx, tenantID, staffID, start, end, (*string)(nil)).Return(0, nil).Once()
	suite.mockRepo.On("SaveReservation", ctx, mock.AnythingOfType("domain.Reservation")).Return(apperrors.ErrConflict).Once()

	booking, err := suite.service.CreateBooking(ctx, tenantID, req, uuid.NewString())

	suite.Require().ErrorIs(err, apperrors.ErrConflict)
	suite.Nil(booking)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *BookingServiceTestSuite) TestUpdateBooking_CancelledRejected() {
	ctx := context.Background()
	tenantID := uuid.NewString()
	reservationID := uuid.NewString()
	start, end := suite.interval()
	existing := &domain.Reservation{
		ReservationID: reservationID,
		TenantID:      tenantID,
		StartAt:       start,
		EndAt:         end,
		Status:        domain.ReservationCancelled,
	}

	tx := suite.beginTx(ctx)
	suite.mockRepo.On("FindReservationByIDForUpdate", ctx, tx, tenantID, reservationID).Return(existing, nil).Once()

	_, err := suite.service.UpdateBooking(ctx, tenantID, reservationID, dto.UpdateBookingRequest{}, uuid.NewString())

	suite.Require().ErrorIs(err, apperrors.ErrInvalidState)
	suite.mockRepo.AssertNotCalled(suite.T(), "UpdateReservationInTx")
	suite.mockRepo.AssertNotCalled(suite.T(), "Commit")
}

func (suite *BookingServiceTestSuite) TestUpdateBooking_ExcludesOwnReservation() {
	ctx := context.Background()
	tenantID := uuid.NewString()
	reservationID := uuid.NewString()
	staffID := uuid.NewString()
	start, end := suite.interval()
	existing := &domain.Reservation{
		ReservationID: reservationID,
		TenantID:      tenantID,
		StaffID:       &staffID,
		StartAt:       start,
		EndAt:         end,
		Status:        domain.ReservationConfirmed,
	}
	newStart := start.Add(30 * time.Minute)
	newEnd := end.Add(30 * time.Minute)

	tx := suite.beginTx(ctx)
	suite.mockRepo.On("FindReservationByIDForUpdate", ctx, tx, tenantID, reservationID).Return(existing, nil).Once()
	// The reservation's own row must not count against itself.
	suite.mockRepo.On("CountOverlappingInTx", ctx, tx, tenantID, staffID, newStart, newEnd, mock.MatchedBy(func(excludeID *string) bool {
		return excludeID != nil && *excludeID == reservationID
	})).Return(0, nil).Once()
	suite.mockRepo.On("UpdateReservationInTx", ctx, tx, mock.AnythingOfType("domain.Reservation")).Return(nil).Once()
	suite.mockRepo.On("Commit", ctx, tx).Return(nil).Once()

	updated, err := suite.service.UpdateBooking(ctx, tenantID, reservationID, dto.UpdateBookingRequest{
		StartAt: &newStart,
		EndAt:   &newEnd,
	}, uuid.NewString())

	suite.Require().NoError(err)
	suite.Equal(newStart, updated.StartAt)
	suite.Equal(newEnd, updated.EndAt)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *BookingServiceTestSuite) TestUpdateBooking_ConflictRollsBack() {
	// A conflicting reschedule must leave the transaction uncommitted and
	// write nothing.
	ctx := context.Background()
	tenantID := uuid.NewString()
	reservationID := uuid.NewString()
	staffID := uuid.NewString()
	start, end := suite.interval()
	existing := &domain.Reservation{
		ReservationID: reservationID,
		TenantID:      tenantID,
		StaffID:       &staffID,
		StartAt:       start,
		EndAt:         end,
		Status:        domain.ReservationConfirmed,
	}
	newStart := start.Add(30 * time.Minute)
	newEnd := end.Add(30 * time.Minute)

	tx := suite.beginTx(ctx)
	suite.mockRepo.On("FindReservationByIDForUpdate", ctx, tx, tenantID, reservationID).Return(existing, nil).Once()
	suite.mockRepo.On("CountOverlappingInTx", ctx, tx, tenantID, staffID, newStart, newEnd, mock.Anything).Return(1, nil).Once()

	_, err := suite.service.UpdateBooking(ctx, tenantID, reservationID, dto.UpdateBookingRequest{
		StartAt: &newStart,
		EndAt:   &newEnd,
	}, uuid.NewString())

	suite.Require().ErrorIs(err, apperrors.ErrConflict)
	suite.mockRepo.AssertNotCalled(suite.T(), "UpdateReservationInTx")
	suite.mockRepo.AssertNotCalled(suite.T(), "Commit")
	suite.mockRepo.AssertCalled(suite.T(), "Rollback", ctx, tx)
}

func (suite *BookingServiceTestSuite) TestCancelBooking_BypassesConflictCheck() {
	ctx := context.Background()
	tenantID := uuid.NewString()
	reservationID := uuid.NewString()
	staffID := uuid.NewString()
	start, end := suite.interval()
	existing := &domain.Reservation{
		ReservationID: reservationID,
		TenantID:      tenantID,
		StaffID:       &staffID,
		StartAt:       start,
		EndAt:         end,
		Status:        domain.ReservationConfirmed,
	}

	tx := suite.beginTx(ctx)
	suite.mockRepo.On("FindReservationByIDForUpdate", ctx, tx, tenantID, reservationID).Return(existing, nil).Once()
	suite.mockRepo.On("UpdateReservationInTx", ctx, tx, mock.MatchedBy(func(r domain.Reservation) bool {
		return r.Status == domain.ReservationCancelled
	})).Return(nil).Once()
	suite.mockRepo.On("Commit", ctx, tx).Return(nil).Once()

	cancelled, err := suite.service.CancelBooking(ctx, tenantID, reservationID, uuid.NewString())

	suite.Require().NoError(err)
	suite.Equal(domain.ReservationCancelled, cancelled.Status)
	suite.mockRepo.AssertNotCalled(suite.T(), "CountOverlappingInTx")
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *BookingServiceTestSuite) TestCancelBooking_Idempotent() {
	ctx := context.Background()
	tenantID := uuid.NewString()
	reservationID := uuid.NewString()
	existing := &domain.Reservation{
		ReservationID: reservationID,
		TenantID:      tenantID,
		Status:        domain.ReservationCancelled,
	}

	tx := suite.beginTx(ctx)
	suite.mockRepo.On("FindReservationByIDForUpdate", ctx, tx, tenantID, reservationID).Return(existing, nil).Once()

	cancelled, err := suite.service.CancelBooking(ctx, tenantID, reservationID, uuid.NewString())

	suite.Require().NoError(err)
	suite.Equal(domain.ReservationCancelled, cancelled.Status)
	suite.mockRepo.AssertNotCalled(suite.T(), "UpdateReservationInTx")
	suite.mockRepo.AssertNotCalled(suite.T(), "Commit")
}

func (suite *BookingServiceTestSuite) TestListBookings_ClampsPageSize() {
	ctx := context.Background()
	tenantID := uuid.NewString()

	// Out-of-range limits fall back to the default page size.
	suite.mockRepo.On("ListReservations", ctx, tenantID, 50, 0).Return([]domain.Reservation{}, nil).Twice()

	_, err := suite.service.ListBookings(ctx, tenantID, 0, 0)
	suite.Require().NoError(err)
	_, err = suite.service.ListBookings(ctx, tenantID, 500, -3)
	suite.Require().NoError(err)

	suite.mockRepo.AssertExpectations(suite.T())
}

func TestBookingServiceTestSuite(t *testing.T) {
	suite.Run(t, new(BookingServiceTestSuite))
}
