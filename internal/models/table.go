package models

import "time"

// TableSize is the physical size class of a table.
type TableSize string

const (
	SizeSmall  TableSize = "SMALL"
	SizeMedium TableSize = "MEDIUM"
	SizeLarge  TableSize = "LARGE"
)

// SeatsFor returns the fixed seat count for a size class.
func SeatsFor(size TableSize) int {
	switch size {
	case SizeMedium:
		return 4
	case SizeLarge:
		return 6
	default:
		return 2
	}
}

// TableStatus is the current seating state of a table.
type TableStatus string

const (
	TableAvailable TableStatus = "AVAILABLE"
	TableBooked    TableStatus = "BOOKED"
	TableOccupied  TableStatus = "OCCUPIED"
)

var tableTransitions = map[TableStatus][]TableStatus{
	TableAvailable: {TableBooked, TableOccupied},
	TableBooked:    {TableAvailable, TableOccupied},
	TableOccupied:  {TableAvailable, TableBooked},
}

// CanTransition reports whether a table status change is allowed.
func (s TableStatus) CanTransition(to TableStatus) bool {
	for _, allowed := range tableTransitions[s] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Table is a physical seating unit on a floor.
//
// Invariant: OccupiedSince is non-nil iff Status is OCCUPIED. It is set only
// by an explicit staff action (customer physically seated), never by the
// reconciliation loop.
type Table struct {
	ID                 string      `json:"id"`
	FloorID            string      `json:"floorId"`
	TableNumber        string      `json:"tableNumber"`
	Size               TableSize   `json:"size"`
	Seats              int         `json:"seats"`
	Status             TableStatus `json:"status"`
	OccupiedSince      *time.Time  `json:"occupiedSince,omitempty"`
	AvailableInMinutes *int        `json:"availableInMinutes,omitempty"`
	CreatedAt          time.Time   `json:"createdAt"`
	UpdatedAt          time.Time   `json:"updatedAt"`
}
