package services

import (
	"context"
	"time"

	"github.com/bookahq/booka_backend/internal/core/domain"
	"github.com/bookahq/booka_backend/internal/dto"
)

// BookingReaderSvc defines read operations for reservations
type BookingReaderSvc interface {
	// GetBooking retrieves a reservation scoped to its tenant.
	GetBooking(ctx context.Context, tenantID, reservationID string) (*domain.Reservation, error)

	// ListBookings retrieves a page of reservations for a tenant.
	ListBookings(ctx context.Context, tenantID string, limit, offset int) ([]domain.Reservation, error)

	// HasConflict reports whether any non-cancelled reservation for the staff
	// member overlaps [startAt, endAt). A nil staffID never conflicts.
	HasConflict(ctx context.Context, tenantID string, staffID *string, startAt, endAt time.Time, excludeReservationID *string) (bool, error)
}

// BookingWriterSvc defines write operations for reservations
type BookingWriterSvc interface {
	// CreateBooking creates a confirmed reservation after the conflict check.
	CreateBooking(ctx context.Context, tenantID string, req dto.CreateBookingRequest, creatorUserID string) (*domain.Reservation, error)

	// UpdateBooking reschedules or reassigns a reservation, re-running the
	// conflict check against the proposed staff/interval.
	UpdateBooking(ctx context.Context, tenantID, reservationID string, req dto.UpdateBookingRequest, updaterUserID string) (*domain.Reservation, error)

	// CancelBooking transitions a reservation to cancelled. No conflict check.
	CancelBooking(ctx context.Context, tenantID, reservationID string, updaterUserID string) (*domain.Reservation, error)
}

// BookingSvcFacade combines all booking-related service interfaces
type BookingSvcFacade interface {
	BookingReaderSvc
	BookingWriterSvc
}
