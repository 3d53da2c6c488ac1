package service

import (
	"agendo/pkg/model"
	"time"
)

// Overlaps treats both intervals as half-open: a booking ending at T does
// not overlap one starting at T.
func Overlaps(start1, end1, start2, end2 time.Time) bool {
	return start1.Before(end2) && end1.After(start2)
}

// FindConflict returns the first booking in existing that blocks [start, end)
// on resource, or nil. Cancelled bookings and excludeID never block. A zero
// resource takes part in no conflict check.
func FindConflict(resource model.Resource, start, end time.Time, excludeID string, existing []*model.Booking) *model.Booking {
	if resource.IsZero() {
		return nil
	}
	for _, b := range existing {
		if excludeID != "" && b.ID == excludeID {
			continue
		}
		if b.Status == model.StatusCancelled {
			continue
		}
		if !occupies(b, resource) {
			continue
		}
		if Overlaps(start, end, b.StartTime, b.EndTime) {
			return b
		}
	}
	return nil
}

// occupies compares only the field matching the candidate's resource kind.
func occupies(b *model.Booking, resource model.Resource) bool {
	switch resource.Kind {
	case model.ResourceProfessional:
		return b.ProfessionalID == resource.ID
	case model.ResourceUser:
		return b.UserID == resource.ID
	}
	return false
}
