package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bookahq/booka_backend/internal/adapters/messaging"
	"github.com/bookahq/booka_backend/internal/apperrors"
	"github.com/bookahq/booka_backend/internal/core/domain"
	portsrepo "github.com/bookahq/booka_backend/internal/core/ports/repositories"
	portssvc "github.com/bookahq/booka_backend/internal/core/ports/services"
	"github.com/bookahq/booka_backend/internal/dto"
	"github.com/google/uuid"
)

// bookingService implements the BookingSvcFacade interface
type bookingService struct {
	BaseService
	reservationRepo portsrepo.ReservationRepositoryWithTx
	publisher       messaging.EventPublisher
}

// NewBookingService creates a new booking service with the provided dependencies
func NewBookingService(reservationRepo portsrepo.ReservationRepositoryWithTx, publisher messaging.EventPublisher) portssvc.BookingSvcFacade {
	return &bookingService{
		reservationRepo: reservationRepo,
		publisher:       publisher,
	}
}

// Ensure bookingService implements the BookingSvcFacade interface
var _ portssvc.BookingSvcFacade = (*bookingService)(nil)

// HasConflict reports whether any non-cancelled reservation for the staff
// member overlaps the half-open interval [startAt, endAt). Floating bookings
// (nil staffID) never conflict.
func (s *bookingService) HasConflict(ctx context.Context, tenantID string, staffID *string, startAt, endAt time.Time, excludeReservationID *string) (bool, error) {
	if !startAt.Before(endAt) {
		return false, fmt.Errorf("%w: startAt must be before endAt", apperrors.ErrValidation)
	}
	if staffID == nil {
		return false, nil
	}

	count, err := s.reservationRepo.CountOverlapping(ctx, tenantID, *staffID, startAt, endAt, excludeReservationID)
	if err != nil {
		s.LogError(ctx, err, "Failed to check reservation overlap",
			slog.String("tenant_id", tenantID),
			slog.String("staff_id", *staffID))
		return false, err
	}
	return count > 0, nil
}

// CreateBooking creates a confirmed reservation after the conflict check.
// The store's exclusion constraint backstops concurrent creates that pass the
// check simultaneously, so a double-booking can never commit.
func (s *bookingService) CreateBooking(ctx context.Context, tenantID string, req dto.CreateBookingRequest, creatorUserID string) (*domain.Reservation, error) {
	conflict, err := s.HasConflict(ctx, tenantID, req.StaffID, req.StartAt, req.EndAt, nil)
	if err != nil {
		return nil, err
	}
	if conflict {
		s.LogWarn(ctx, "Booking conflict detected",
			slog.String("tenant_id", tenantID),
			slog.Time("start_at", req.StartAt))
		return nil, apperrors.ErrConflict
	}

	now := time.Now().UTC()
	reservation := domain.Reservation{
		ReservationID: uuid.NewString(),
		TenantID:      tenantID,
		StaffID:       req.StaffID,
		ServiceID:     req.ServiceID,
		CustomerRef:   req.CustomerRef,
		StartAt:       req.StartAt,
		EndAt:         req.EndAt,
		Status:        domain.ReservationConfirmed,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.reservationRepo.SaveReservation(ctx, reservation); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			// Lost the race to a concurrent writer; the constraint caught it.
			s.LogWarn(ctx, "Booking conflict caught by exclusion constraint",
				slog.String("tenant_id", tenantID),
				slog.String("reservation_id", reservation.ReservationID))
			return nil, err
		}
		s.LogError(ctx, err, "Failed to save reservation",
			slog.String("reservation_id", reservation.ReservationID))
		return nil, err
	}

	s.publishEvent(ctx, messaging.RoutingBookingConfirmed, reservation)
	s.LogInfo(ctx, "Booking created successfully",
		slog.String("reservation_id", reservation.ReservationID),
		slog.String("tenant_id", tenantID))
	return &reservation, nil
}

// UpdateBooking reschedules or reassigns a reservation. The conflict check
// runs against the proposed staff/interval, excluding the reservation's own
// id and falling back to current values for absent patch fields. The check
// and the write run in one transaction with the reservation's row locked, so
// a reschedule cannot interleave with a cancellation of the same reservation.
func (s *bookingService) UpdateBooking(ctx context.Context, tenantID, reservationID string, req dto.UpdateBookingRequest, updaterUserID string) (*domain.Reservation, error) {
	tx, err := s.reservationRepo.Begin(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to begin reschedule transaction",
			slog.String("reservation_id", reservationID))
		return nil, err
	}
	// No-op once the transaction is committed.
	defer s.reservationRepo.Rollback(ctx, tx)

	reservation, err := s.reservationRepo.FindReservationByIDForUpdate(ctx, tx, tenantID, reservationID)
	if err != nil {
		return nil, err
	}
	if reservation.Status == domain.ReservationCancelled {
		return nil, fmt.Errorf("%w: cancelled reservations cannot be rescheduled", apperrors.ErrInvalidState)
	}

	proposed := *reservation
	if req.StaffID != nil {
		proposed.StaffID = req.StaffID
	}
	if req.StartAt != nil {
		proposed.StartAt = *req.StartAt
	}
	if req.EndAt != nil {
		proposed.EndAt = *req.EndAt
	}

	if !proposed.StartAt.Before(proposed.EndAt) {
		return nil, fmt.Errorf("%w: startAt must be before endAt", apperrors.ErrValidation)
	}
	if proposed.StaffID != nil {
		count, err := s.reservationRepo.CountOverlappingInTx(ctx, tx, tenantID, *proposed.StaffID, proposed.StartAt, proposed.EndAt, &reservationID)
		if err != nil {
			s.LogError(ctx, err, "Failed to check reservation overlap",
				slog.String("reservation_id", reservationID))
			return nil, err
		}
		if count > 0 {
			s.LogWarn(ctx, "Reschedule conflict detected",
				slog.String("reservation_id", reservationID))
			return nil, apperrors.ErrConflict
		}
	}

	proposed.LastUpdatedAt = time.Now().UTC()
	proposed.LastUpdatedBy = updaterUserID

	if err := s.reservationRepo.UpdateReservationInTx(ctx, tx, proposed); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return nil, err
		}
		s.LogError(ctx, err, "Failed to update reservation",
			slog.String("reservation_id", reservationID))
		return nil, err
	}
	if err := s.reservationRepo.Commit(ctx, tx); err != nil {
		s.LogError(ctx, err, "Failed to commit reschedule",
			slog.String("reservation_id", reservationID))
		return nil, err
	}

	s.LogInfo(ctx, "Booking updated successfully",
		slog.String("reservation_id", reservationID))
	return &proposed, nil
}

// CancelBooking transitions a reservation to cancelled. Cancellation bypasses
// the conflict check and frees the slot for other bookings. The row lock
// keeps a concurrent reschedule from writing over the cancellation.
func (s *bookingService) CancelBooking(ctx context.Context, tenantID, reservationID string, updaterUserID string) (*domain.Reservation, error) {
	tx, err := s.reservationRepo.Begin(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to begin cancellation transaction",
			slog.String("reservation_id", reservationID))
		return nil, err
	}
	// No-op once the transaction is committed.
	defer s.reservationRepo.Rollback(ctx, tx)

	reservation, err := s.reservationRepo.FindReservationByIDForUpdate(ctx, tx, tenantID, reservationID)
	if err != nil {
		return nil, err
	}
	if reservation.Status == domain.ReservationCancelled {
		return reservation, nil
	}

	reservation.Status = domain.ReservationCancelled
	reservation.LastUpdatedAt = time.Now().UTC()
	reservation.LastUpdatedBy = updaterUserID

	if err := s.reservationRepo.UpdateReservationInTx(ctx, tx, *reservation); err != nil {
		s.LogError(ctx, err, "Failed to cancel reservation",
			slog.String("reservation_id", reservationID))
		return nil, err
	}
	if err := s.reservationRepo.Commit(ctx, tx); err != nil {
		s.LogError(ctx, err, "Failed to commit cancellation",
			slog.String("reservation_id", reservationID))
		return nil, err
	}

	s.publishEvent(ctx, messaging.RoutingBookingCancelled, *reservation)
	s.LogInfo(ctx, "Booking cancelled",
		slog.String("reservation_id", reservationID))
	return reservation, nil
}

// GetBooking retrieves a reservation scoped to its tenant.
func (s *bookingService) GetBooking(ctx context.Context, tenantID, reservationID string) (*domain.Reservation, error) {
	reservation, err := s.reservationRepo.FindReservationByID(ctx, tenantID, reservationID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find reservation",
				slog.String("reservation_id", reservationID))
		}
		return nil, err
	}
	return reservation, nil
}

// ListBookings retrieves a page of reservations for a tenant.
func (s *bookingService) ListBookings(ctx context.Context, tenantID string, limit, offset int) ([]domain.Reservation, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	reservations, err := s.reservationRepo.ListReservations(ctx, tenantID, limit, offset)
	if err != nil {
		s.LogError(ctx, err, "Failed to list reservations",
			slog.String("tenant_id", tenantID))
		return nil, err
	}
	if reservations == nil {
		return []domain.Reservation{}, nil
	}
	return reservations, nil
}

func (s *bookingService) publishEvent(ctx context.Context, key string, reservation domain.Reservation) {
	if s.publisher == nil {
		return
	}
	err := s.publisher.PublishJSON(ctx, key, map[string]any{
		"reservation_id": reservation.ReservationID,
		"tenant_id":      reservation.TenantID,
		"service_id":     reservation.ServiceID,
		"customer_ref":   reservation.CustomerRef,
		"start_at":       reservation.StartAt,
		"end_at":         reservation.EndAt,
	})
	if err != nil {
		// Notifications are best effort; the booking itself already committed.
		s.LogWarn(ctx, "Failed to publish booking event",
			slog.String("routing_key", key),
			slog.String("reservation_id", reservation.ReservationID),
			slog.String("error", err.Error()))
	}
}
