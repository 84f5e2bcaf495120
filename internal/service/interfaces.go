package service

import (
	"context"
	"time"

	"github.com/ayushbirla71/restaurant-backend/internal/models"
)

// BookingRepository provides access to booking storage.
type BookingRepository interface {
	CreateBooking(ctx context.Context, b *models.Booking) error
	GetBooking(ctx context.Context, id string) (*models.Booking, error)
	UpdateBooking(ctx context.Context, b *models.Booking) error

	// GetActiveBookingsByTable returns non-terminal (BOOKED/CONFIRMED)
	// bookings for a table in storage order.
	GetActiveBookingsByTable(ctx context.Context, tableID string) ([]models.Booking, error)

	// GetTodayBookings returns the reconciliation working set: walk-ins
	// created today plus pre-bookings scheduled for today, non-terminal only.
	GetTodayBookings(ctx context.Context, now time.Time) ([]models.Booking, error)

	// GetNotifiableBookings returns bookings eligible for upcoming reminders.
	GetNotifiableBookings(ctx context.Context) ([]models.Booking, error)

	GetPendingConfirmations(ctx context.Context) ([]models.Booking, error)

	// AppendNotificationMarker records a reminder marker with
	// compare-and-swap semantics; false means another writer won.
	AppendNotificationMarker(ctx context.Context, id, marker string, prev []string) (bool, error)
}

// TableRepository provides access to table storage.
type TableRepository interface {
	CreateTable(ctx context.Context, t *models.Table) error
	GetTable(ctx context.Context, id string) (*models.Table, error)
	ListTables(ctx context.Context) ([]models.Table, error)
	ListTablesByFloor(ctx context.Context, floorID string) ([]models.Table, error)
	DeleteTable(ctx context.Context, id string) error

	// SetTableState is the single write path for table status,
	// occupied_since and available_in_minutes.
	SetTableState(ctx context.Context, id string, status models.TableStatus, occupiedSince *time.Time, availableIn *int) error

	SetTableAvailability(ctx context.Context, id string, availableIn *int) error
}

// FloorRepository provides access to floor storage.
type FloorRepository interface {
	CreateFloor(ctx context.Context, f *models.Floor) error
	DeleteFloor(ctx context.Context, id string) error
	ListFloors(ctx context.Context) ([]models.Floor, error)
	ListFloorsWithTables(ctx context.Context) ([]models.Floor, error)
}

// WaitingRepository provides access to waiting list storage.
type WaitingRepository interface {
	CreateWaitingEntry(ctx context.Context, e *models.WaitingListEntry) error
	GetWaitingEntry(ctx context.Context, id string) (*models.WaitingListEntry, error)
	ListActiveWaiting(ctx context.Context, date string) ([]models.WaitingListEntry, error)
	UpdateWaitingStatus(ctx context.Context, id string, status models.WaitingStatus, notifiedAt *time.Time) error
}

// EventPublisher broadcasts named events to connected subscribers.
// Emission is one-way and best-effort; no acknowledgement is expected.
type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}
