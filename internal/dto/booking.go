package dto

import (
	"time"

	"github.com/bookahq/booka_backend/internal/core/domain"
)

// CreateBookingRequest defines the data needed to create a new reservation.
type CreateBookingRequest struct {
	ServiceID   string    `json:"serviceID" binding:"required"`
	StaffID     *string   `json:"staffID"`
	CustomerRef string    `json:"customerRef" binding:"required"`
	StartAt     time.Time `json:"startAt" binding:"required"`
	EndAt       time.Time `json:"endAt" binding:"required"`
}

// UpdateBookingRequest patches a reservation. Absent fields keep their
// current values; the conflict check runs against the proposed result.
type UpdateBookingRequest struct {
	StaffID *string    `json:"staffID"`
	StartAt *time.Time `json:"startAt"`
	EndAt   *time.Time `json:"endAt"`
}

// BookingResponse defines the data returned for a reservation.
type BookingResponse struct {
	ReservationID string    `json:"reservationID"`
	TenantID      string    `json:"tenantID"`
	StaffID       *string   `json:"staffID,omitempty"`
	ServiceID     string    `json:"serviceID"`
	CustomerRef   string    `json:"customerRef"`
	StartAt       time.Time `json:"startAt"`
	EndAt         time.Time `json:"endAt"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"createdAt"`
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
}

// ToBookingResponse converts a domain.Reservation to a BookingResponse DTO
func ToBookingResponse(r *domain.Reservation) BookingResponse {
	return BookingResponse{
		ReservationID: r.ReservationID,
		TenantID:      r.TenantID,
		StaffID:       r.StaffID,
		ServiceID:     r.ServiceID,
		CustomerRef:   r.CustomerRef,
		StartAt:       r.StartAt,
		EndAt:         r.EndAt,
		Status:        string(r.Status),
		CreatedAt:     r.CreatedAt,
		LastUpdatedAt: r.LastUpdatedAt,
	}
}

// ToListBookingResponse converts a slice of domain.Reservation to BookingResponse DTOs
func ToListBookingResponse(reservations []domain.Reservation) []BookingResponse {
	res := make([]BookingResponse, len(reservations))
	for i := range reservations {
		res[i] = ToBookingResponse(&reservations[i])
	}
	return res
}
