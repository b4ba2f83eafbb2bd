package models

import "time"

// ReservationStatus mirrors the domain reservation lifecycle for persistence.
type ReservationStatus string

const (
	ReservationConfirmed ReservationStatus = "confirmed"
	ReservationPending   ReservationStatus = "pending"
	ReservationCancelled ReservationStatus = "cancelled"
)

// Reservation is the persistence model for the reservations table.
type Reservation struct {
	ReservationID string            `json:"reservationID"` // Primary Key (UUID)
	TenantID      string            `json:"tenantID"`      // FK -> Tenant.tenantID (Not Null)
	StaffID       *string           `json:"staffID"`       // Nullable; floating bookings carry no staff
	ServiceID     string            `json:"serviceID"`
	CustomerRef   string            `json:"customerRef"`
	StartAt       time.Time         `json:"startAt"`
	EndAt         time.Time         `json:"endAt"`
	Status        ReservationStatus `json:"status"`
	AuditFields
}
