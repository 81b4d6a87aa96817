package schedule

import (
	"context"
	"time"

	"proconnect/pkg/model"
)

// BookingSource supplies the slot-blocking bookings whose windows intersect
// the queried range. Cancelled bookings must already be filtered out.
type BookingSource interface {
	FindActiveInWindow(ctx context.Context, professionalID string, from, to time.Time) ([]*model.Booking, error)
}

// Detector decides whether a candidate appointment window collides with any
// existing booking for a professional. The same predicate backs creation,
// reschedules and the public conflict-check endpoint.
type Detector struct {
	source BookingSource
}

func NewDetector(source BookingSource) *Detector {
	return &Detector{source: source}
}

// HasConflict reports whether [start, start+duration) overlaps any
// non-cancelled booking of the professional. excludeID removes one booking
// from consideration so an update never conflicts with itself; pass "" to
// check against everything.
func (d *Detector) HasConflict(ctx context.Context, professionalID string, start time.Time, durationMinutes int, excludeID string) (bool, error) {
	end := model.EndFor(start, durationMinutes)

	existing, err := d.source.FindActiveInWindow(ctx, professionalID, start, end)
	if err != nil {
		return false, err
	}

	for _, b := range existing {
		if excludeID != "" && b.ID == excludeID {
			continue
		}
		if Overlaps(start, end, b.AppointmentStart, b.AppointmentEnd) {
			return true, nil
		}
	}
	return false, nil
}

// Overlaps implements half-open interval overlap: [s1,e1) and [s2,e2)
// conflict iff s1 < e2 && s2 < e1. Back-to-back slots with a touching
// boundary do not conflict.
func Overlaps(start1, end1, start2, end2 time.Time) bool {
	return start1.Before(end2) && start2.Before(end1)
}
