package domain

import "time"

// ReservationStatus is the lifecycle state of a reservation.
type ReservationStatus string

const (
	ReservationConfirmed ReservationStatus = "confirmed"
	ReservationPending   ReservationStatus = "pending"
	ReservationCancelled ReservationStatus = "cancelled"
)

// Reservation is a tenant-scoped booking of a service, optionally assigned to
// a staff member, over the half-open interval [StartAt, EndAt).
// Reservations are never deleted; cancellation is a status transition.
type Reservation struct {
	ReservationID string            `json:"reservationID"`
	TenantID      string            `json:"tenantID"`
	StaffID       *string           `json:"staffID,omitempty"` // nil for floating bookings
	ServiceID     string            `json:"serviceID"`
	CustomerRef   string            `json:"customerRef"`
	StartAt       time.Time         `json:"startAt"`
	EndAt         time.Time         `json:"endAt"`
	Status        ReservationStatus `json:"status"`
	AuditFields
}

// Overlaps reports whether [s, e) intersects the reservation's interval.
// Boundary-touching intervals (R.EndAt == s or R.StartAt == e) do not overlap.
func (r Reservation) Overlaps(s, e time.Time) bool {
	return r.StartAt.Before(e) && r.EndAt.After(s)
}
