package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bookahq/booka_backend/internal/apperrors"
	"github.com/bookahq/booka_backend/internal/core/domain"
	portsrepo "github.com/bookahq/booka_backend/internal/core/ports/repositories"
	"github.com/bookahq/booka_backend/internal/models"
	"github.com/bookahq/booka_backend/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxReservationRepository struct {
	BaseRepository
}

// newPgxReservationRepository creates a new repository for reservation data.
func newPgxReservationRepository(pool *pgxpool.Pool) portsrepo.ReservationRepositoryWithTx {
	return &PgxReservationRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure implementation matches interface
var _ portsrepo.ReservationRepositoryWithTx = (*PgxReservationRepository)(nil)

const reservationColumns = `reservation_id, tenant_id, staff_id, service_id, customer_ref, start_at, end_at, status, created_at, created_by, last_updated_at, last_updated_by`

// SaveReservation inserts a new reservation. The store's exclusion constraint
// on (tenant_id, staff_id, interval) rejects concurrent double-bookings that
// slipped past the application-level conflict check.
func (r *PgxReservationRepository) SaveReservation(ctx context.Context, reservation domain.Reservation) error {
	modelRes := mapping.ToModelReservation(reservation)

	query := `
		INSERT INTO reservations (` + reservationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`

	_, err := r.Pool.Exec(ctx, query,
		modelRes.ReservationID,
		modelRes.TenantID,
		modelRes.StaffID,
		modelRes.ServiceID,
		modelRes.CustomerRef,
		modelRes.StartAt,
		modelRes.EndAt,
		modelRes.Status,
		modelRes.CreatedAt,
		modelRes.CreatedBy,
		modelRes.LastUpdatedAt,
		modelRes.LastUpdatedBy,
	)

	if err != nil {
		if translated := translateConstraintError(err); translated != err {
			return translated
		}
		return fmt.Errorf("failed to save reservation %s: %w", modelRes.ReservationID, err)
	}
	return nil
}

// UpdateReservation persists interval, staff and status changes. Reservations
// are never deleted; cancellation arrives here as a status update.
func (r *PgxReservationRepository) UpdateReservation(ctx context.Context, reservation domain.Reservation) error {
	return r.updateReservation(ctx, r.Pool, reservation)
}

// UpdateReservationInTx is UpdateReservation running on an open transaction,
// typically after FindReservationByIDForUpdate locked the row.
func (r *PgxReservationRepository) UpdateReservationInTx(ctx context.Context, tx pgx.Tx, reservation domain.Reservation) error {
	return r.updateReservation(ctx, tx, reservation)
}

func (r *PgxReservationRepository) updateReservation(ctx context.Context, q pgxQuerier, reservation domain.Reservation) error {
	modelRes := mapping.ToModelReservation(reservation)

	query := `
		UPDATE reservations
		SET staff_id = $3, start_at = $4, end_at = $5, status = $6, last_updated_at = $7, last_updated_by = $8
		WHERE tenant_id = $1 AND reservation_id = $2;
	`

	tag, err := q.Exec(ctx, query,
		modelRes.TenantID,
		modelRes.ReservationID,
		modelRes.StaffID,
		modelRes.StartAt,
		modelRes.EndAt,
		modelRes.Status,
		modelRes.LastUpdatedAt,
		modelRes.LastUpdatedBy,
	)

	if err != nil {
		if translated := translateConstraintError(err); translated != err {
			return translated
		}
		return fmt.Errorf("failed to update reservation %s: %w", modelRes.ReservationID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// FindReservationByID retrieves a reservation scoped to its tenant.
func (r *PgxReservationRepository) FindReservationByID(ctx context.Context, tenantID, reservationID string) (*domain.Reservation, error) {
	return r.findReservationByID(ctx, r.Pool, tenantID, reservationID, false)
}

// FindReservationByIDForUpdate retrieves a reservation and locks its row for
// the remainder of the transaction, serializing concurrent reschedules and
// cancellations of the same reservation.
func (r *PgxReservationRepository) FindReservationByIDForUpdate(ctx context.Context, tx pgx.Tx, tenantID, reservationID string) (*domain.Reservation, error) {
	return r.findReservationByID(ctx, tx, tenantID, reservationID, true)
}

func (r *PgxReservationRepository) findReservationByID(ctx context.Context, q pgxQuerier, tenantID, reservationID string, forUpdate bool) (*domain.Reservation, error) {
	query := `
		SELECT ` + reservationColumns + `
		FROM reservations
		WHERE tenant_id = $1 AND reservation_id = $2`
	if forUpdate {
		query += `
		FOR UPDATE`
	}
	query += `;`

	var modelRes models.Reservation
	err := q.QueryRow(ctx, query, tenantID, reservationID).Scan(
		&modelRes.ReservationID,
		&modelRes.TenantID,
		&modelRes.StaffID,
		&modelRes.ServiceID,
		&modelRes.CustomerRef,
		&modelRes.StartAt,
		&modelRes.EndAt,
		&modelRes.Status,
		&modelRes.CreatedAt,
		&modelRes.CreatedBy,
		&modelRes.LastUpdatedAt,
		&modelRes.LastUpdatedBy,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find reservation %s: %w", reservationID, err)
	}

	domainRes := mapping.ToDomainReservation(modelRes)
	return &domainRes, nil
}

// ListReservations retrieves a page of reservations for a tenant, most recent
// start time first.
func (r *PgxReservationRepository) ListReservations(ctx context.Context, tenantID string, limit, offset int) ([]domain.Reservation, error) {
	query := `
		SELECT ` + reservationColumns + `
		FROM reservations
		WHERE tenant_id = $1
		ORDER BY start_at DESC
		LIMIT $2 OFFSET $3;
	`
	rows, err := r.Pool.Query(ctx, query, tenantID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query reservations: %w", err)
	}
	defer rows.Close()

	modelReservations, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Reservation, error) {
		var reservation models.Reservation
		err := row.Scan(
			&reservation.ReservationID,
			&reservation.TenantID,
			&reservation.StaffID,
			&reservation.ServiceID,
			&reservation.CustomerRef,
			&reservation.StartAt,
			&reservation.EndAt,
			&reservation.Status,
			&reservation.CreatedAt,
			&reservation.CreatedBy,
			&reservation.LastUpdatedAt,
			&reservation.LastUpdatedBy,
		)
		return reservation, err
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return []domain.Reservation{}, nil
		}
		return nil, fmt.Errorf("failed to scan reservations: %w", err)
	}

	return mapping.ToDomainReservationSlice(modelReservations), nil
}

// CountOverlapping counts non-cancelled reservations for the staff member
// whose half-open interval intersects [startAt, endAt). Boundary-touching
// intervals do not count.
func (r *PgxReservationRepository) CountOverlapping(ctx context.Context, tenantID, staffID string, startAt, endAt time.Time, excludeID *string) (int, error) {
	return r.countOverlapping(ctx, r.Pool, tenantID, staffID, startAt, endAt, excludeID)
}

// CountOverlappingInTx is CountOverlapping running on an open transaction, so
// a reschedule's conflict check and its write share one snapshot.
func (r *PgxReservationRepository) CountOverlappingInTx(ctx context.Context, tx pgx.Tx, tenantID, staffID string, startAt, endAt time.Time, excludeID *string) (int, error) {
	return r.countOverlapping(ctx, tx, tenantID, staffID, startAt, endAt, excludeID)
}

func (r *PgxReservationRepository) countOverlapping(ctx context.Context, q pgxQuerier, tenantID, staffID string, startAt, endAt time.Time, excludeID *string) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM reservations
		WHERE tenant_id = $1
		  AND staff_id = $2
		  AND status <> 'cancelled'
		  AND start_at < $4
		  AND end_at > $3
		  AND ($5::uuid IS NULL OR reservation_id <> $5);
	`
	var count int
	err := q.QueryRow(ctx, query, tenantID, staffID, startAt, endAt, excludeID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count overlapping reservations: %w", err)
	}
	return count, nil
}
