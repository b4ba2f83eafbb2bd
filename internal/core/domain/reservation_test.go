package domain_test

import (
	"testing"
	"time"

	"github.com/bookahq/booka_backend/internal/core/domain"
	"github.com/stretchr/testify/assert"
)

func TestReservation_Overlaps(t *testing.T) {
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	reservation := domain.Reservation{
		StartAt: base,
		EndAt:   base.Add(time.Hour),
	}

	tests := []struct {
		name  string
		start time.Time
		end   time.Time
		want  bool
	}{
		{
			name:  "identical interval",
			start: base,
			end:   base.Add(time.Hour),
			want:  true,
		},
		{
			name:  "contained interval",
			start: base.Add(15 * time.Minute),
			end:   base.Add(45 * time.Minute),
			want:  true,
		},
		{
			name:  "partial overlap at end",
			start: base.Add(30 * time.Minute),
			end:   base.Add(90 * time.Minute),
			want:  true,
		},
		{
			name:  "starts exactly at reservation end",
			start: base.Add(time.Hour),
			end:   base.Add(2 * time.Hour),
			want:  false,
		},
		{
			name:  "ends exactly at reservation start",
			start: base.Add(-time.Hour),
			end:   base,
			want:  false,
		},
		{
			name:  "disjoint after",
			start: base.Add(2 * time.Hour),
			end:   base.Add(3 * time.Hour),
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, reservation.Overlaps(tt.start, tt.end))
		})
	}
}
