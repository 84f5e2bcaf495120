package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ayushbirla71/restaurant-backend/internal/events"
	"github.com/ayushbirla71/restaurant-backend/internal/models"
)

func newTestWaitingService(waiting *mockWaitingRepo, bookings *mockBookingRepo, tables *mockTableRepo, bus *recordingBus, now time.Time) *WaitingService {
	s := NewWaitingService(waiting, bookings, tables, bus, NewTableLocks(), testLogger())
	s.clock = func() time.Time { return now }
	return s
}

func TestAddPreBookingGetsPriority(t *testing.T) {
	waiting := new(mockWaitingRepo)
	bus := &recordingBus{}

	waiting.On("CreateWaitingEntry", mock.Anything, mock.Anything).Return(nil)

	svc := newTestWaitingService(waiting, new(mockBookingRepo), new(mockTableRepo), bus, at(12, 0))

	entry, err := svc.Add(context.Background(), AddWaitingParams{
		CustomerName:       "Alice",
		Mobile:             "111",
		PeopleCount:        4,
		PreferredTableSize: models.SizeMedium,
		BookingType:        models.PreBooking,
		BookingDate:        "2026-03-14",
		BookingTimeSlot:    "19:00",
	})
	require.NoError(t, err)

	assert.Equal(t, models.PreBookingPriority, entry.Priority)
	assert.Equal(t, models.WaitingWaiting, entry.Status)
	assert.True(t, bus.has(events.WaitingListUpdated))
}

func TestAddWalkInGetsZeroPriority(t *testing.T) {
	waiting := new(mockWaitingRepo)
	waiting.On("CreateWaitingEntry", mock.Anything, mock.Anything).Return(nil)

	svc := newTestWaitingService(waiting, new(mockBookingRepo), new(mockTableRepo), &recordingBus{}, at(12, 0))

	entry, err := svc.Add(context.Background(), AddWaitingParams{CustomerName: "Bob"})
	require.NoError(t, err)
	assert.Equal(t, models.WalkIn, entry.BookingType)
	assert.Equal(t, 0, entry.Priority)
}

func TestListWithoutDateIncludesWalkIns(t *testing.T) {
	waiting := new(mockWaitingRepo)
	walkIn := models.WaitingListEntry{
		ID:           "w1",
		CustomerName: "Bob",
		BookingType:  models.WalkIn,
		Status:       models.WaitingWaiting,
	}
	// Walk-ins carry no requested date, so the default listing must not
	// inject one.
	waiting.On("ListActiveWaiting", mock.Anything, "").Return([]models.WaitingListEntry{walkIn}, nil)

	svc := newTestWaitingService(waiting, new(mockBookingRepo), new(mockTableRepo), &recordingBus{}, at(12, 0))

	entries, err := svc.List(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "w1", entries[0].ID)
	waiting.AssertExpectations(t)
}

func TestListWithDatePassesFilterThrough(t *testing.T) {
	waiting := new(mockWaitingRepo)
	waiting.On("ListActiveWaiting", mock.Anything, "2026-03-15").Return([]models.WaitingListEntry{}, nil)

	svc := newTestWaitingService(waiting, new(mockBookingRepo), new(mockTableRepo), &recordingBus{}, at(12, 0))

	_, err := svc.List(context.Background(), "2026-03-15")
	require.NoError(t, err)
	waiting.AssertExpectations(t)
}

func TestCheckAssignConflictReportsSuggestion(t *testing.T) {
	waiting := new(mockWaitingRepo)
	bookings := new(mockBookingRepo)
	tables := new(mockTableRepo)

	entry := &models.WaitingListEntry{
		ID:              "w1",
		CustomerName:    "Alice",
		BookingDate:     "2026-03-14",
		BookingTimeSlot: "10:30",
		Status:          models.WaitingWaiting,
	}
	existing := models.Booking{
		ID:              "b1",
		TableID:         "t1",
		BookingDate:     "2026-03-14",
		BookingTimeSlot: "10:00",
		DurationMinutes: 60,
		Status:          models.BookingBooked,
	}

	waiting.On("GetWaitingEntry", mock.Anything, "w1").Return(entry, nil)
	tables.On("GetTable", mock.Anything, "t1").Return(availableTable("t1"), nil)
	bookings.On("GetActiveBookingsByTable", mock.Anything, "t1").Return([]models.Booking{existing}, nil)

	svc := newTestWaitingService(waiting, bookings, tables, &recordingBus{}, at(9, 0))

	check, err := svc.CheckAssignConflict(context.Background(), "w1", "t1", 0)
	require.NoError(t, err)

	assert.True(t, check.HasConflict)
	require.NotNil(t, check.Conflict)
	assert.Equal(t, "b1", check.Conflict.ID)
	require.NotNil(t, check.SuggestedTime)
	assert.Equal(t, at(11, 5), *check.SuggestedTime)
	assert.Equal(t, "11:05", check.SuggestedTimeSlot)
}

func TestCheckAssignConflictClearSlot(t *testing.T) {
	waiting := new(mockWaitingRepo)
	bookings := new(mockBookingRepo)
	tables := new(mockTableRepo)

	entry := &models.WaitingListEntry{ID: "w1", Status: models.WaitingWaiting}
	waiting.On("GetWaitingEntry", mock.Anything, "w1").Return(entry, nil)
	tables.On("GetTable", mock.Anything, "t1").Return(availableTable("t1"), nil)
	bookings.On("GetActiveBookingsByTable", mock.Anything, "t1").Return([]models.Booking{}, nil)

	svc := newTestWaitingService(waiting, bookings, tables, &recordingBus{}, at(9, 0))

	check, err := svc.CheckAssignConflict(context.Background(), "w1", "t1", 90)
	require.NoError(t, err)
	assert.False(t, check.HasConflict)
	assert.Nil(t, check.Conflict)
}

func TestAssignPromotesEntryToBooking(t *testing.T) {
	waiting := new(mockWaitingRepo)
	bookings := new(mockBookingRepo)
	tables := new(mockTableRepo)
	bus := &recordingBus{}

	entry := &models.WaitingListEntry{
		ID:              "w1",
		CustomerName:    "Alice",
		Mobile:          "111",
		PeopleCount:     4,
		BookingType:     models.PreBooking,
		Priority:        models.PreBookingPriority,
		BookingDate:     "2026-03-14",
		BookingTimeSlot: "19:00",
		Status:          models.WaitingWaiting,
	}

	waiting.On("GetWaitingEntry", mock.Anything, "w1").Return(entry, nil)
	tables.On("GetTable", mock.Anything, "t1").Return(availableTable("t1"), nil)
	bookings.On("CreateBooking", mock.Anything, mock.Anything).Return(nil)
	tables.On("SetTableState", mock.Anything, "t1", models.TableBooked, (*time.Time)(nil), (*int)(nil)).Return(nil)
	waiting.On("UpdateWaitingStatus", mock.Anything, "w1", models.WaitingAssigned, (*time.Time)(nil)).Return(nil)

	svc := newTestWaitingService(waiting, bookings, tables, bus, at(18, 0))

	booking, err := svc.Assign(context.Background(), "w1", AssignParams{TableID: "t1"})
	require.NoError(t, err)

	// Identity, priority and slot carry over from the entry.
	assert.Equal(t, "Alice", booking.CustomerName)
	assert.Equal(t, models.PreBookingPriority, booking.Priority)
	assert.Equal(t, "19:00", booking.BookingTimeSlot)
	assert.Equal(t, models.BookingBooked, booking.Status)
	assert.Equal(t, models.DefaultDurationMinutes, booking.DurationMinutes)

	waiting.AssertCalled(t, "UpdateWaitingStatus", mock.Anything, "w1", models.WaitingAssigned, (*time.Time)(nil))
	assert.True(t, bus.has(events.BookingCreated))
	assert.True(t, bus.has(events.WaitingListUpdated))
}

func TestAssignAutoScheduleUsesSuggestedTime(t *testing.T) {
	waiting := new(mockWaitingRepo)
	bookings := new(mockBookingRepo)
	tables := new(mockTableRepo)

	entry := &models.WaitingListEntry{
		ID:              "w1",
		CustomerName:    "Alice",
		BookingDate:     "2026-03-14",
		BookingTimeSlot: "10:30",
		Status:          models.WaitingNotified,
	}

	waiting.On("GetWaitingEntry", mock.Anything, "w1").Return(entry, nil)
	tables.On("GetTable", mock.Anything, "t1").Return(availableTable("t1"), nil)
	bookings.On("CreateBooking", mock.Anything, mock.Anything).Return(nil)
	tables.On("SetTableState", mock.Anything, "t1", models.TableBooked, (*time.Time)(nil), (*int)(nil)).Return(nil)
	waiting.On("UpdateWaitingStatus", mock.Anything, "w1", models.WaitingAssigned, (*time.Time)(nil)).Return(nil)

	svc := newTestWaitingService(waiting, bookings, tables, &recordingBus{}, at(10, 0))

	booking, err := svc.Assign(context.Background(), "w1", AssignParams{
		TableID:       "t1",
		AutoSchedule:  true,
		SuggestedTime: atPtr(11, 5),
	})
	require.NoError(t, err)

	// The suggested slot wins over the entry's own request.
	assert.Equal(t, "11:05", booking.BookingTimeSlot)
	assert.Equal(t, "2026-03-14", booking.BookingDate)
	require.NotNil(t, booking.BookingTime)
	assert.Equal(t, at(11, 5), *booking.BookingTime)
}

func TestAssignRejectsSettledEntry(t *testing.T) {
	waiting := new(mockWaitingRepo)

	entry := &models.WaitingListEntry{ID: "w1", Status: models.WaitingAssigned}
	waiting.On("GetWaitingEntry", mock.Anything, "w1").Return(entry, nil)

	svc := newTestWaitingService(waiting, new(mockBookingRepo), new(mockTableRepo), &recordingBus{}, at(12, 0))

	_, err := svc.Assign(context.Background(), "w1", AssignParams{TableID: "t1"})
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestNotifyCustomerStampsTime(t *testing.T) {
	waiting := new(mockWaitingRepo)
	bus := &recordingBus{}
	now := at(12, 0)

	entry := &models.WaitingListEntry{ID: "w1", CustomerName: "Alice", Status: models.WaitingWaiting}
	waiting.On("GetWaitingEntry", mock.Anything, "w1").Return(entry, nil)
	waiting.On("UpdateWaitingStatus", mock.Anything, "w1", models.WaitingNotified, &now).Return(nil)

	svc := newTestWaitingService(waiting, new(mockBookingRepo), new(mockTableRepo), bus, now)

	updated, err := svc.NotifyCustomer(context.Background(), "w1")
	require.NoError(t, err)
	assert.Equal(t, models.WaitingNotified, updated.Status)
	require.NotNil(t, updated.NotifiedAt)
	assert.Equal(t, now, *updated.NotifiedAt)
	assert.True(t, bus.has(events.WaitingListUpdated))
}

func TestCancelEntryRejectsAssigned(t *testing.T) {
	waiting := new(mockWaitingRepo)

	entry := &models.WaitingListEntry{ID: "w1", Status: models.WaitingAssigned}
	waiting.On("GetWaitingEntry", mock.Anything, "w1").Return(entry, nil)

	svc := newTestWaitingService(waiting, new(mockBookingRepo), new(mockTableRepo), &recordingBus{}, at(12, 0))

	err := svc.CancelEntry(context.Background(), "w1")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}
