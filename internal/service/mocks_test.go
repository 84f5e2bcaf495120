package service

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"

	"github.com/ayushbirla71/restaurant-backend/internal/models"
)

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

type mockBookingRepo struct {
	mock.Mock
}

func (m *mockBookingRepo) CreateBooking(ctx context.Context, b *models.Booking) error {
	return m.Called(ctx, b).Error(0)
}
func (m *mockBookingRepo) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}
func (m *mockBookingRepo) UpdateBooking(ctx context.Context, b *models.Booking) error {
	return m.Called(ctx, b).Error(0)
}
func (m *mockBookingRepo) GetActiveBookingsByTable(ctx context.Context, tableID string) ([]models.Booking, error) {
	args := m.Called(ctx, tableID)
	return args.Get(0).([]models.Booking), args.Error(1)
}
func (m *mockBookingRepo) GetTodayBookings(ctx context.Context, now time.Time) ([]models.Booking, error) {
	args := m.Called(ctx, now)
	return args.Get(0).([]models.Booking), args.Error(1)
}
func (m *mockBookingRepo) GetNotifiableBookings(ctx context.Context) ([]models.Booking, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Booking), args.Error(1)
}
func (m *mockBookingRepo) GetPendingConfirmations(ctx context.Context) ([]models.Booking, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Booking), args.Error(1)
}
func (m *mockBookingRepo) AppendNotificationMarker(ctx context.Context, id, marker string, prev []string) (bool, error) {
	args := m.Called(ctx, id, marker, prev)
	return args.Bool(0), args.Error(1)
}

type mockTableRepo struct {
	mock.Mock
}

func (m *mockTableRepo) CreateTable(ctx context.Context, t *models.Table) error {
	return m.Called(ctx, t).Error(0)
}
func (m *mockTableRepo) GetTable(ctx context.Context, id string) (*models.Table, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Table), args.Error(1)
}
func (m *mockTableRepo) ListTables(ctx context.Context) ([]models.Table, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Table), args.Error(1)
}
func (m *mockTableRepo) ListTablesByFloor(ctx context.Context, floorID string) ([]models.Table, error) {
	args := m.Called(ctx, floorID)
	return args.Get(0).([]models.Table), args.Error(1)
}
func (m *mockTableRepo) DeleteTable(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}
func (m *mockTableRepo) SetTableState(ctx context.Context, id string, status models.TableStatus, occupiedSince *time.Time, availableIn *int) error {
	return m.Called(ctx, id, status, occupiedSince, availableIn).Error(0)
}
func (m *mockTableRepo) SetTableAvailability(ctx context.Context, id string, availableIn *int) error {
	return m.Called(ctx, id, availableIn).Error(0)
}

type mockFloorRepo struct {
	mock.Mock
}

func (m *mockFloorRepo) CreateFloor(ctx context.Context, f *models.Floor) error {
	return m.Called(ctx, f).Error(0)
}
func (m *mockFloorRepo) DeleteFloor(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}
func (m *mockFloorRepo) ListFloors(ctx context.Context) ([]models.Floor, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Floor), args.Error(1)
}
func (m *mockFloorRepo) ListFloorsWithTables(ctx context.Context) ([]models.Floor, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Floor), args.Error(1)
}

type mockWaitingRepo struct {
	mock.Mock
}

func (m *mockWaitingRepo) CreateWaitingEntry(ctx context.Context, e *models.WaitingListEntry) error {
	return m.Called(ctx, e).Error(0)
}
func (m *mockWaitingRepo) GetWaitingEntry(ctx context.Context, id string) (*models.WaitingListEntry, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WaitingListEntry), args.Error(1)
}
func (m *mockWaitingRepo) ListActiveWaiting(ctx context.Context, date string) ([]models.WaitingListEntry, error) {
	args := m.Called(ctx, date)
	return args.Get(0).([]models.WaitingListEntry), args.Error(1)
}
func (m *mockWaitingRepo) UpdateWaitingStatus(ctx context.Context, id string, status models.WaitingStatus, notifiedAt *time.Time) error {
	return m.Called(ctx, id, status, notifiedAt).Error(0)
}

// recordingBus captures published events for assertions.
type recordingBus struct {
	mu     sync.Mutex
	events []recordedEvent
}

type recordedEvent struct {
	Type    string
	Payload []byte
}

func (b *recordingBus) PublishJSON(eventType string, payload interface{}) error {
	var data []byte
	if payload != nil {
		data, _ = json.Marshal(payload)
	}
	b.mu.Lock()
	b.events = append(b.events, recordedEvent{Type: eventType, Payload: data})
	b.mu.Unlock()
	return nil
}

func (b *recordingBus) count(eventType string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, e := range b.events {
		if e.Type == eventType {
			n++
		}
	}
	return n
}

func (b *recordingBus) has(eventType string) bool {
	return b.count(eventType) > 0
}
