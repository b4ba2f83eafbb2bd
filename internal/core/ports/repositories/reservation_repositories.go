package repositories

import (
	"context"
	"time"

	"github.com/bookahq/booka_backend/internal/core/domain"
	"github.com/jackc/pgx/v5"
)

// ReservationReader defines read operations for reservation data
type ReservationReader interface {
	// FindReservationByID retrieves a reservation scoped to its tenant.
	FindReservationByID(ctx context.Context, tenantID, reservationID string) (*domain.Reservation, error)

	// ListReservations retrieves a page of reservations for a tenant.
	ListReservations(ctx context.Context, tenantID string, limit, offset int) ([]domain.Reservation, error)

	// CountOverlapping counts non-cancelled reservations for the staff member
	// whose [startAt, endAt) interval intersects the given one, excluding
	// excludeID when non-nil.
	CountOverlapping(ctx context.Context, tenantID, staffID string, startAt, endAt time.Time, excludeID *string) (int, error)

	// FindReservationByIDForUpdate retrieves a reservation and locks its row
	// until the transaction ends.
	FindReservationByIDForUpdate(ctx context.Context, tx pgx.Tx, tenantID, reservationID string) (*domain.Reservation, error)

	// CountOverlappingInTx is CountOverlapping running on an open transaction.
	CountOverlappingInTx(ctx context.Context, tx pgx.Tx, tenantID, staffID string, startAt, endAt time.Time, excludeID *string) (int, error)
}

// ReservationWriter defines write operations for reservation data
type ReservationWriter interface {
	// SaveReservation inserts a new reservation. The store's interval
	// exclusion constraint surfaces as apperrors.ErrConflict.
	SaveReservation(ctx context.Context, reservation domain.Reservation) error

	// UpdateReservation persists changed interval/staff/status fields,
	// subject to the same exclusion constraint.
	UpdateReservation(ctx context.Context, reservation domain.Reservation) error

	// UpdateReservationInTx is UpdateReservation running on an open
	// transaction holding the reservation's row lock.
	UpdateReservationInTx(ctx context.Context, tx pgx.Tx, reservation domain.Reservation) error
}

// ReservationRepositoryFacade combines all reservation-related repository interfaces
type ReservationRepositoryFacade interface {
	ReservationReader
	ReservationWriter
}

// ReservationRepositoryWithTx extends the facade with transaction capabilities
type ReservationRepositoryWithTx interface {
	ReservationRepositoryFacade
	TransactionManager
}
