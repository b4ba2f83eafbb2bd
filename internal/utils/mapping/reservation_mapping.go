package mapping

import (
	"github.com/bookahq/booka_backend/internal/core/domain"
	"github.com/bookahq/booka_backend/internal/models"
)

// ToModelReservation converts a domain Reservation to a model Reservation
func ToModelReservation(d domain.Reservation) models.Reservation {
	return models.Reservation{
		ReservationID: d.ReservationID,
		TenantID:      d.TenantID,
		StaffID:       d.StaffID,
		ServiceID:     d.ServiceID,
		CustomerRef:   d.CustomerRef,
		StartAt:       d.StartAt,
		EndAt:         d.EndAt,
		Status:        models.ReservationStatus(d.Status),
		AuditFields:   toModelAuditFields(d.AuditFields),
	}
}

// ToDomainReservation converts a model Reservation to a domain Reservation
func ToDomainReservation(m models.Reservation) domain.Reservation {
	return domain.Reservation{
		ReservationID: m.ReservationID,
		TenantID:      m.TenantID,
		StaffID:       m.StaffID,
		ServiceID:     m.ServiceID,
		CustomerRef:   m.CustomerRef,
		StartAt:       m.StartAt,
		EndAt:         m.EndAt,
		Status:        domain.ReservationStatus(m.Status),
		AuditFields:   toDomainAuditFields(m.AuditFields),
	}
}

// ToDomainReservationSlice converts a slice of model Reservations to domain Reservations
func ToDomainReservationSlice(ms []models.Reservation) []domain.Reservation {
	ds := make([]domain.Reservation, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainReservation(m)
	}
	return ds
}
