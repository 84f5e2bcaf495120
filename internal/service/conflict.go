package service

import (
	"context"
	"time"

	"github.com/ayushbirla71/restaurant-backend/internal/models"
)

// ConflictDetector finds time-window overlaps between a candidate window and
// the non-terminal bookings already on a table. Pure read; no side effects.
type ConflictDetector struct {
	bookings BookingRepository
}

// NewConflictDetector creates a detector backed by booking storage.
func NewConflictDetector(bookings BookingRepository) *ConflictDetector {
	return &ConflictDetector{bookings: bookings}
}

// Detect returns the first non-terminal booking on the table whose window
// overlaps [start, end), skipping excludeID. Only existence matters to
// callers; "first in storage order" is the whole tie-break.
func (d *ConflictDetector) Detect(ctx context.Context, tableID string, start, end time.Time, excludeID string) (*models.Booking, error) {
	existing, err := d.bookings.GetActiveBookingsByTable(ctx, tableID)
	if err != nil {
		return nil, err
	}

	for i := range existing {
		b := &existing[i]
		if excludeID != "" && b.ID == excludeID {
			continue
		}
		bStart, bEnd := b.Window()
		if models.Overlaps(start, end, bStart, bEnd) {
			return b, nil
		}
	}
	return nil, nil
}
