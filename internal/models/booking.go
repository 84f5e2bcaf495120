package models

import (
	"time"
)

// BookingType distinguishes immediate walk-ins from scheduled pre-bookings.
type BookingType string

const (
	WalkIn     BookingType = "WALK_IN"
	PreBooking BookingType = "PRE_BOOKING"
)

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

const (
	BookingBooked    BookingStatus = "BOOKED"
	BookingConfirmed BookingStatus = "CONFIRMED"
	BookingCancelled BookingStatus = "CANCELLED"
	BookingCompleted BookingStatus = "COMPLETED"
	BookingWaiting   BookingStatus = "WAITING"
)

var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingBooked:    {BookingConfirmed, BookingCancelled, BookingCompleted},
	BookingConfirmed: {BookingBooked, BookingCancelled, BookingCompleted},
	BookingWaiting:   {BookingBooked, BookingCancelled},
}

// CanTransition reports whether a booking status change is allowed.
// Terminal statuses (CANCELLED, COMPLETED) have no outgoing transitions.
func (s BookingStatus) CanTransition(to BookingStatus) bool {
	for _, allowed := range bookingTransitions[s] {
		if allowed == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status ends the booking lifecycle.
func (s BookingStatus) IsTerminal() bool {
	return s == BookingCancelled || s == BookingCompleted
}

// ConfirmationStatus tracks the customer-confirmation side channel.
type ConfirmationStatus string

const (
	ConfirmationPending   ConfirmationStatus = "PENDING"
	ConfirmationConfirmed ConfirmationStatus = "CONFIRMED"
	ClientDelayed         ConfirmationStatus = "CLIENT_DELAYED"
	ConfirmationCancelled ConfirmationStatus = "CANCELLED"
)

// DefaultDurationMinutes is applied when a booking has no explicit duration.
const DefaultDurationMinutes = 60

// PreBookingPriority is assigned to pre-bookings; walk-ins get zero.
const PreBookingPriority = 10

// Booking is a reservation against exactly one table.
//
// The time of a booking is represented one of two ways: an absolute
// BookingTime (walk-ins), or a BookingDate ("2006-01-02") plus
// BookingTimeSlot ("15:04") pair (pre-bookings). Window is the single
// normalizing accessor; call sites never do their own date arithmetic.
type Booking struct {
	ID                 string             `json:"id"`
	TableID            string             `json:"tableId"`
	CustomerName       string             `json:"customerName"`
	Mobile             string             `json:"mobile"`
	Email              string             `json:"email,omitempty"`
	PeopleCount        int                `json:"peopleCount"`
	BookingTime        *time.Time         `json:"bookingTime,omitempty"`
	BookingDate        string             `json:"bookingDate,omitempty"`
	BookingTimeSlot    string             `json:"bookingTimeSlot,omitempty"`
	DurationMinutes    int                `json:"durationMinutes"`
	BookingType        BookingType        `json:"bookingType"`
	Status             BookingStatus      `json:"status"`
	Priority           int                `json:"priority"`
	ConfirmationStatus ConfirmationStatus `json:"confirmationStatus"`
	ConfirmedAt        *time.Time         `json:"confirmedAt,omitempty"`
	DelayMinutes       int                `json:"delayMinutes"`
	NotificationsSent  []string           `json:"notificationsSent"`
	CreatedAt          time.Time          `json:"createdAt"`
	UpdatedAt          time.Time          `json:"updatedAt"`
}

// StartTime resolves the booking's start instant. The date+slot pair wins
// when both representations are present; a booking with neither falls back
// to its creation time (a walk-in is seated the moment it is created).
func (b *Booking) StartTime() time.Time {
	if b.BookingDate != "" && b.BookingTimeSlot != "" {
		if t, err := time.ParseInLocation("2006-01-02 15:04", b.BookingDate+" "+b.BookingTimeSlot, time.Local); err == nil {
			return t
		}
	}
	if b.BookingTime != nil {
		return *b.BookingTime
	}
	return b.CreatedAt
}

// Window returns the booking's [start, end) interval. Duration below zero
// counts as zero.
func (b *Booking) Window() (start, end time.Time) {
	start = b.StartTime()
	minutes := b.DurationMinutes
	if minutes < 0 {
		minutes = 0
	}
	return start, start.Add(time.Duration(minutes) * time.Minute)
}

// ActivityWindowMinutes is the canonical half-width of the activity window:
// a non-walk-in booking is active within 30 minutes either side of its start.
const ActivityWindowMinutes = 30

// IsActiveAt reports whether the booking is active at the given instant.
// Walk-ins are active unconditionally; they are seated on creation.
func (b *Booking) IsActiveAt(now time.Time) bool {
	if b.BookingType == WalkIn {
		return true
	}
	start := b.StartTime()
	buffer := ActivityWindowMinutes * time.Minute
	return !now.Before(start.Add(-buffer)) && !now.After(start.Add(buffer))
}

// HasNotification reports whether a reminder marker was already recorded.
func (b *Booking) HasNotification(marker string) bool {
	for _, m := range b.NotificationsSent {
		if m == marker {
			return true
		}
	}
	return false
}

// Overlaps reports whether two half-open intervals [aStart, aEnd) and
// [bStart, bEnd) intersect. Touching endpoints do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}
