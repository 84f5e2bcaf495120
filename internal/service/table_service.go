package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/ayushbirla71/restaurant-backend/internal/events"
	"github.com/ayushbirla71/restaurant-backend/internal/models"
)

// CreateTableParams carries the caller-supplied fields of a new table.
type CreateTableParams struct {
	FloorID     string           `json:"floorId"`
	TableNumber string           `json:"tableNumber"`
	Size        models.TableSize `json:"size"`
	Seats       int              `json:"seats"`
}

// TableSlotStatus is one table's projected state for a queried slot.
type TableSlotStatus struct {
	Table   models.Table       `json:"table"`
	Status  models.TableStatus `json:"status"`
	Booking *models.Booking    `json:"booking,omitempty"`
}

// FloorSlotStatus groups slot projections by floor.
type FloorSlotStatus struct {
	Floor  models.Floor      `json:"floor"`
	Tables []TableSlotStatus `json:"tables"`
}

// TableService implements the staff-facing table operations: layout CRUD,
// the manual status override and availability estimates.
type TableService struct {
	tables   TableRepository
	floors   FloorRepository
	bookings BookingRepository
	bus      EventPublisher
	locks    *TableLocks
	clock    func() time.Time
	logger   zerolog.Logger
}

// NewTableService wires the table operations.
func NewTableService(tables TableRepository, floors FloorRepository, bookings BookingRepository, bus EventPublisher, locks *TableLocks, logger zerolog.Logger) *TableService {
	if locks == nil {
		locks = NewTableLocks()
	}
	return &TableService{
		tables:   tables,
		floors:   floors,
		bookings: bookings,
		bus:      bus,
		locks:    locks,
		clock:    time.Now,
		logger:   logger.With().Str("component", "tables").Logger(),
	}
}

func validTableStatus(s models.TableStatus) bool {
	switch s {
	case models.TableAvailable, models.TableBooked, models.TableOccupied:
		return true
	}
	return false
}

// Create adds a table to a floor. Seats default from the size class when
// not given.
func (s *TableService) Create(ctx context.Context, p CreateTableParams) (*models.Table, error) {
	switch p.Size {
	case models.SizeSmall, models.SizeMedium, models.SizeLarge:
	default:
		return nil, fmt.Errorf("%w: unknown table size %q", ErrInvalidTarget, p.Size)
	}
	table := &models.Table{
		FloorID:     p.FloorID,
		TableNumber: p.TableNumber,
		Size:        p.Size,
		Seats:       p.Seats,
		Status:      models.TableAvailable,
	}
	if err := s.tables.CreateTable(ctx, table); err != nil {
		return nil, err
	}

	_ = s.bus.PublishJSON(events.TableCreated, table)
	_ = s.bus.PublishJSON(events.DashboardUpdated, nil)

	s.logger.Info().Str("table_id", table.ID).Str("number", table.TableNumber).Msg("table created")
	return table, nil
}

// Delete removes a table from the layout.
func (s *TableService) Delete(ctx context.Context, id string) error {
	if err := s.tables.DeleteTable(ctx, id); err != nil {
		return mapNotFound(err)
	}
	_ = s.bus.PublishJSON(events.TableDeleted, map[string]string{"tableId": id})
	_ = s.bus.PublishJSON(events.DashboardUpdated, nil)
	s.logger.Info().Str("table_id", id).Msg("table deleted")
	return nil
}

// Get returns one table.
func (s *TableService) Get(ctx context.Context, id string) (*models.Table, error) {
	t, err := s.tables.GetTable(ctx, id)
	return t, mapNotFound(err)
}

// List returns every table.
func (s *TableService) List(ctx context.Context) ([]models.Table, error) {
	return s.tables.ListTables(ctx)
}

// ListByFloor returns a floor's tables.
func (s *TableService) ListByFloor(ctx context.Context, floorID string) ([]models.Table, error) {
	return s.tables.ListTablesByFloor(ctx, floorID)
}

// SetStatus applies a manual staff status change. Setting AVAILABLE completes
// the currently active booking, since the party has left. Setting OCCUPIED
// starts the occupancy timer; the reconciliation loop will not touch the
// table until staff clear it.
func (s *TableService) SetStatus(ctx context.Context, id string, status models.TableStatus) (*models.Table, error) {
	if !validTableStatus(status) {
		return nil, fmt.Errorf("%w: unknown table status %q", ErrInvalidTarget, status)
	}

	unlock := s.locks.Lock(id)
	defer unlock()

	table, err := s.tables.GetTable(ctx, id)
	if err != nil {
		return nil, mapNotFound(err)
	}
	if table.Status == status {
		return table, nil
	}

	now := s.clock()

	if status == models.TableAvailable {
		if err := s.completeActiveBooking(ctx, id, now); err != nil {
			s.logger.Error().Err(err).Str("table_id", id).Msg("complete active booking failed")
		}
	}

	var occupiedSince *time.Time
	availableIn := table.AvailableInMinutes
	switch status {
	case models.TableOccupied:
		occupiedSince = &now
	case models.TableAvailable:
		availableIn = nil
	}

	if err := s.tables.SetTableState(ctx, id, status, occupiedSince, availableIn); err != nil {
		return nil, err
	}
	table.Status = status
	table.OccupiedSince = occupiedSince
	table.AvailableInMinutes = availableIn

	_ = s.bus.PublishJSON(events.TableStatusUpdated, map[string]interface{}{
		"tableId": id,
		"status":  status,
	})
	_ = s.bus.PublishJSON(events.DashboardUpdated, nil)

	s.logger.Info().Str("table_id", id).Str("status", string(status)).Msg("table status set")
	return table, nil
}

// completeActiveBooking finishes the booking currently seated at the table,
// when one exists.
func (s *TableService) completeActiveBooking(ctx context.Context, tableID string, now time.Time) error {
	active, err := s.bookings.GetActiveBookingsByTable(ctx, tableID)
	if err != nil {
		return err
	}
	sortByStart(active)
	for i := range active {
		b := &active[i]
		if !b.IsActiveAt(now) {
			continue
		}
		if !b.Status.CanTransition(models.BookingCompleted) {
			continue
		}
		b.Status = models.BookingCompleted
		if err := s.bookings.UpdateBooking(ctx, b); err != nil {
			return err
		}
		_ = s.bus.PublishJSON(events.BookingUpdated, b)
		return nil
	}
	return nil
}

// SetAvailability records the staff estimate of when the table frees up.
func (s *TableService) SetAvailability(ctx context.Context, id string, minutes *int) (*models.Table, error) {
	if err := s.tables.SetTableAvailability(ctx, id, minutes); err != nil {
		return nil, mapNotFound(err)
	}
	table, err := s.tables.GetTable(ctx, id)
	if err != nil {
		return nil, mapNotFound(err)
	}
	_ = s.bus.PublishJSON(events.TableAvailabilityUpdated, table)
	_ = s.bus.PublishJSON(events.DashboardUpdated, nil)
	return table, nil
}

// CurrentBooking returns the booking the table is serving or holding for:
// the earliest non-terminal booking that is either active now or starting
// within the pre-hold horizon. Nil when none.
func (s *TableService) CurrentBooking(ctx context.Context, tableID string) (*models.Booking, error) {
	active, err := s.bookings.GetActiveBookingsByTable(ctx, tableID)
	if err != nil {
		return nil, err
	}
	sortByStart(active)

	now := s.clock()
	horizon := now.Add(preHoldMinutes * time.Minute)
	for i := range active {
		b := &active[i]
		start, end := b.Window()
		end = end.Add(postBufferMinutes * time.Minute)
		inWindow := !now.Before(start) && !now.After(end)
		upcoming := start.After(now) && !start.After(horizon)
		if inWindow || upcoming {
			return b, nil
		}
	}
	return nil, nil
}

// TodayBookings lists the table's bookings relevant today, ordered by start.
func (s *TableService) TodayBookings(ctx context.Context, tableID string) ([]models.Booking, error) {
	all, err := s.bookings.GetTodayBookings(ctx, s.clock())
	if err != nil {
		return nil, err
	}
	out := make([]models.Booking, 0, len(all))
	for _, b := range all {
		if b.TableID == tableID {
			out = append(out, b)
		}
	}
	sortByStart(out)
	return out, nil
}

// StatusesForDateTime projects every table's status for a future date and
// slot: BOOKED when an existing booking window overlaps the queried hour,
// otherwise AVAILABLE. The live stored status is ignored; it describes now,
// not the queried instant.
func (s *TableService) StatusesForDateTime(ctx context.Context, date, slot string) ([]FloorSlotStatus, error) {
	start, err := time.ParseInLocation("2006-01-02 15:04", date+" "+slot, time.Local)
	if err != nil {
		return nil, fmt.Errorf("%w: bad date or time slot", ErrInvalidTarget)
	}
	end := start.Add(models.DefaultDurationMinutes * time.Minute)

	floors, err := s.floors.ListFloorsWithTables(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]FloorSlotStatus, 0, len(floors))
	for _, floor := range floors {
		fs := FloorSlotStatus{Floor: floor, Tables: make([]TableSlotStatus, 0, len(floor.Tables))}
		for _, table := range floor.Tables {
			st := TableSlotStatus{Table: table, Status: models.TableAvailable}
			active, err := s.bookings.GetActiveBookingsByTable(ctx, table.ID)
			if err != nil {
				return nil, err
			}
			for i := range active {
				bStart, bEnd := active[i].Window()
				if models.Overlaps(start, end, bStart, bEnd) {
					st.Status = models.TableBooked
					b := active[i]
					st.Booking = &b
					break
				}
			}
			fs.Tables = append(fs.Tables, st)
		}
		out = append(out, fs)
	}
	return out, nil
}

func sortByStart(bookings []models.Booking) {
	sort.Slice(bookings, func(i, j int) bool {
		return bookings[i].StartTime().Before(bookings[j].StartTime())
	})
}
