package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ayushbirla71/restaurant-backend/internal/events"
	"github.com/ayushbirla71/restaurant-backend/internal/models"
)

func newTestScheduler(bookings *mockBookingRepo, waiting *mockWaitingRepo, bus *recordingBus) *NotificationScheduler {
	return NewNotificationScheduler(bookings, waiting, bus, time.Minute, testLogger())
}

func TestReminderPassFiresEachThresholdOnce(t *testing.T) {
	bookings := new(mockBookingRepo)
	bus := &recordingBus{}
	now := at(12, 0)

	// Starts exactly 30 minutes out; only the 30min threshold matches.
	start := at(12, 30)
	notifiable := []models.Booking{{
		ID:                 "b1",
		TableID:            "t1",
		CustomerName:       "Alice",
		BookingTime:        &start,
		DurationMinutes:    60,
		BookingType:        models.PreBooking,
		Status:             models.BookingBooked,
		ConfirmationStatus: models.ConfirmationPending,
	}}

	bookings.On("GetNotifiableBookings", mock.Anything).Return(notifiable, nil)
	bookings.On("AppendNotificationMarker", mock.Anything, "b1", "30min", []string(nil)).Return(true, nil)

	s := newTestScheduler(bookings, new(mockWaitingRepo), bus)

	require.NoError(t, s.RunReminderPass(context.Background(), now))

	assert.Equal(t, 1, bus.count(events.UpcomingBookingNotification))
	bookings.AssertCalled(t, "AppendNotificationMarker", mock.Anything, "b1", "30min", []string(nil))

	var alert UpcomingBookingAlert
	require.NoError(t, json.Unmarshal(bus.events[0].Payload, &alert))
	assert.Equal(t, 30, alert.MinutesBefore)
	assert.Equal(t, "b1", alert.BookingID)
}

func TestReminderPassSkipsAlreadySentMarker(t *testing.T) {
	bookings := new(mockBookingRepo)
	bus := &recordingBus{}
	now := at(12, 0)

	start := at(12, 30)
	notifiable := []models.Booking{{
		ID:                "b1",
		TableID:           "t1",
		BookingTime:       &start,
		DurationMinutes:   60,
		BookingType:       models.PreBooking,
		Status:            models.BookingBooked,
		NotificationsSent: []string{"30min"},
	}}

	bookings.On("GetNotifiableBookings", mock.Anything).Return(notifiable, nil)

	s := newTestScheduler(bookings, new(mockWaitingRepo), bus)

	require.NoError(t, s.RunReminderPass(context.Background(), now))

	assert.False(t, bus.has(events.UpcomingBookingNotification))
	bookings.AssertNotCalled(t, "AppendNotificationMarker", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestReminderPassLosingClaimStaysSilent(t *testing.T) {
	bookings := new(mockBookingRepo)
	bus := &recordingBus{}
	now := at(12, 0)

	start := at(12, 30)
	notifiable := []models.Booking{{
		ID:              "b1",
		TableID:         "t1",
		BookingTime:     &start,
		DurationMinutes: 60,
		BookingType:     models.PreBooking,
		Status:          models.BookingBooked,
	}}

	bookings.On("GetNotifiableBookings", mock.Anything).Return(notifiable, nil)
	// Another pass claimed the marker between read and write.
	bookings.On("AppendNotificationMarker", mock.Anything, "b1", "30min", []string(nil)).Return(false, nil)

	s := newTestScheduler(bookings, new(mockWaitingRepo), bus)

	require.NoError(t, s.RunReminderPass(context.Background(), now))
	assert.False(t, bus.has(events.UpcomingBookingNotification))
}

func TestReminderPassIgnoresStartsOutsideScanWindow(t *testing.T) {
	bookings := new(mockBookingRepo)
	bus := &recordingBus{}
	now := at(12, 0)

	// 12:33 is more than a minute away from every now+threshold point.
	start := at(12, 33)
	notifiable := []models.Booking{{
		ID:              "b1",
		TableID:         "t1",
		BookingTime:     &start,
		DurationMinutes: 60,
		BookingType:     models.PreBooking,
		Status:          models.BookingBooked,
	}}

	bookings.On("GetNotifiableBookings", mock.Anything).Return(notifiable, nil)

	s := newTestScheduler(bookings, new(mockWaitingRepo), bus)

	require.NoError(t, s.RunReminderPass(context.Background(), now))
	assert.False(t, bus.has(events.UpcomingBookingNotification))
	bookings.AssertNotCalled(t, "AppendNotificationMarker", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestEscalationPassFiresAtMilestones(t *testing.T) {
	waiting := new(mockWaitingRepo)
	bus := &recordingBus{}
	now := at(12, 0)

	entries := []models.WaitingListEntry{
		{ID: "w10", CustomerName: "TenMin", CreatedAt: at(11, 50), Status: models.WaitingWaiting},
		{ID: "w20", CustomerName: "TwentyMin", CreatedAt: at(11, 40), Status: models.WaitingWaiting},
		{ID: "w15", CustomerName: "Between", CreatedAt: at(11, 45), Status: models.WaitingWaiting},
		{ID: "w31", CustomerName: "PastThirty", CreatedAt: at(11, 29), Status: models.WaitingWaiting},
	}
	waiting.On("ListActiveWaiting", mock.Anything, "").Return(entries, nil)

	s := newTestScheduler(new(mockBookingRepo), waiting, bus)

	require.NoError(t, s.RunEscalationPass(context.Background(), now))

	// Only the exact 10 and 20 minute marks fire; 15 is between milestones
	// and 31 already slipped past its window.
	assert.Equal(t, 2, bus.count(events.LongWaitingCustomer))

	var ids []string
	for _, e := range bus.events {
		var alert LongWaitAlert
		require.NoError(t, json.Unmarshal(e.Payload, &alert))
		ids = append(ids, alert.WaitingListID)
	}
	assert.ElementsMatch(t, []string{"w10", "w20"}, ids)
}

func TestEscalationPassMilestoneBoundary(t *testing.T) {
	waiting := new(mockWaitingRepo)
	bus := &recordingBus{}
	now := at(12, 0)

	entries := []models.WaitingListEntry{
		// 30m59s elapsed still rounds down to 30 and fires.
		{ID: "w-edge", CreatedAt: now.Add(-30*time.Minute - 59*time.Second), Status: models.WaitingWaiting},
		// 31m elapsed does not.
		{ID: "w-late", CreatedAt: now.Add(-31 * time.Minute), Status: models.WaitingWaiting},
	}
	waiting.On("ListActiveWaiting", mock.Anything, "").Return(entries, nil)

	s := newTestScheduler(new(mockBookingRepo), waiting, bus)

	require.NoError(t, s.RunEscalationPass(context.Background(), now))
	assert.Equal(t, 1, bus.count(events.LongWaitingCustomer))

	var alert LongWaitAlert
	require.NoError(t, json.Unmarshal(bus.events[0].Payload, &alert))
	assert.Equal(t, "w-edge", alert.WaitingListID)
	assert.Equal(t, 30, alert.WaitingMinutes)
}
