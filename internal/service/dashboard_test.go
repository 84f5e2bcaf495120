package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ayushbirla71/restaurant-backend/internal/models"
)

type mockDashboardStore struct {
	mock.Mock
}

func (m *mockDashboardStore) CountFloors(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}
func (m *mockDashboardStore) CountTables(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}
func (m *mockDashboardStore) CountTablesByStatus(ctx context.Context, status models.TableStatus) (int, error) {
	args := m.Called(ctx, status)
	return args.Int(0), args.Error(1)
}
func (m *mockDashboardStore) CountTablesBySize(ctx context.Context, size models.TableSize) (int, error) {
	args := m.Called(ctx, size)
	return args.Int(0), args.Error(1)
}
func (m *mockDashboardStore) ListFloorsWithTables(ctx context.Context) ([]models.Floor, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Floor), args.Error(1)
}
func (m *mockDashboardStore) GetBookingsCreatedBetween(ctx context.Context, start, end time.Time) ([]models.Booking, error) {
	args := m.Called(ctx, start, end)
	return args.Get(0).([]models.Booking), args.Error(1)
}
func (m *mockDashboardStore) ListActiveWaiting(ctx context.Context, date string) ([]models.WaitingListEntry, error) {
	args := m.Called(ctx, date)
	return args.Get(0).([]models.WaitingListEntry), args.Error(1)
}

func TestStatsCountsUndatedWaitingParties(t *testing.T) {
	store := &mockDashboardStore{}
	svc := NewDashboardService(store, testLogger())
	svc.clock = func() time.Time { return at(12, 0) }

	store.On("CountFloors", mock.Anything).Return(1, nil)
	store.On("CountTables", mock.Anything).Return(6, nil)
	store.On("CountTablesByStatus", mock.Anything, models.TableAvailable).Return(3, nil)
	store.On("CountTablesByStatus", mock.Anything, models.TableBooked).Return(2, nil)
	store.On("CountTablesByStatus", mock.Anything, models.TableOccupied).Return(1, nil)
	store.On("GetBookingsCreatedBetween", mock.Anything, at(0, 0), mock.Anything).Return([]models.Booking{
		{ID: "b1", PeopleCount: 2},
		{ID: "b2", PeopleCount: 5},
	}, nil)
	// The waiting count must query without a date filter so undated
	// walk-in parties are included.
	store.On("ListActiveWaiting", mock.Anything, "").Return([]models.WaitingListEntry{
		{ID: "w1", BookingType: models.WalkIn, Status: models.WaitingWaiting},
		{ID: "w2", BookingType: models.PreBooking, BookingDate: "2026-03-20", Status: models.WaitingWaiting},
	}, nil)
	store.On("ListFloorsWithTables", mock.Anything).Return([]models.Floor{
		{ID: "f1", Name: "Main", Tables: make([]models.Table, 6)},
	}, nil)
	store.On("CountTablesBySize", mock.Anything, models.SizeSmall).Return(2, nil)
	store.On("CountTablesBySize", mock.Anything, models.SizeMedium).Return(3, nil)
	store.On("CountTablesBySize", mock.Anything, models.SizeLarge).Return(1, nil)

	stats, err := svc.Stats(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, stats.Summary.WaitingParties)
	assert.Equal(t, 2, stats.Summary.TodayBookings)
	assert.Equal(t, 7, stats.Summary.TotalGuestsToday)
	require.Len(t, stats.FloorStats, 1)
	assert.Equal(t, 6, stats.FloorStats[0].TotalTables)
	assert.Equal(t, 3, stats.SizeStats[models.SizeMedium])
	store.AssertExpectations(t)
}
