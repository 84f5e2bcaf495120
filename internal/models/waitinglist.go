package models

import "time"

// WaitingStatus is the lifecycle state of a waiting list entry.
type WaitingStatus string

const (
	WaitingWaiting   WaitingStatus = "WAITING"
	WaitingNotified  WaitingStatus = "NOTIFIED"
	WaitingAssigned  WaitingStatus = "ASSIGNED"
	WaitingCancelled WaitingStatus = "CANCELLED"
)

var waitingTransitions = map[WaitingStatus][]WaitingStatus{
	WaitingWaiting:  {WaitingNotified, WaitingAssigned, WaitingCancelled},
	WaitingNotified: {WaitingAssigned, WaitingCancelled},
}

// CanTransition reports whether a waiting list status change is allowed.
func (s WaitingStatus) CanTransition(to WaitingStatus) bool {
	for _, allowed := range waitingTransitions[s] {
		if allowed == to {
			return true
		}
	}
	return false
}

// IsActive reports whether the entry is still in the queue.
func (s WaitingStatus) IsActive() bool {
	return s == WaitingWaiting || s == WaitingNotified
}

// WaitingListEntry is a party not yet seated.
type WaitingListEntry struct {
	ID                   string        `json:"id"`
	CustomerName         string        `json:"customerName"`
	Mobile               string        `json:"mobile"`
	Email                string        `json:"email,omitempty"`
	PeopleCount          int           `json:"peopleCount"`
	PreferredTableSize   TableSize     `json:"preferredTableSize"`
	BookingType          BookingType   `json:"bookingType"`
	BookingDate          string        `json:"bookingDate,omitempty"`
	BookingTimeSlot      string        `json:"bookingTimeSlot,omitempty"`
	Priority             int           `json:"priority"`
	Status               WaitingStatus `json:"status"`
	EstimatedWaitMinutes *int          `json:"estimatedWaitMinutes,omitempty"`
	NotifiedAt           *time.Time    `json:"notifiedAt,omitempty"`
	CreatedAt            time.Time     `json:"createdAt"`
	UpdatedAt            time.Time     `json:"updatedAt"`
}

// WaitedMinutes returns whole minutes elapsed since the entry was created.
func (e *WaitingListEntry) WaitedMinutes(now time.Time) int {
	return int(now.Sub(e.CreatedAt) / time.Minute)
}

// DesiredTime resolves the entry's requested seating instant: the date+slot
// pair when present, otherwise "now" (walk-in admission).
func (e *WaitingListEntry) DesiredTime(now time.Time) time.Time {
	if e.BookingDate != "" && e.BookingTimeSlot != "" {
		if t, err := time.ParseInLocation("2006-01-02 15:04", e.BookingDate+" "+e.BookingTimeSlot, time.Local); err == nil {
			return t
		}
	}
	return now
}
