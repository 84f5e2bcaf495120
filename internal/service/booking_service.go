package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/ayushbirla71/restaurant-backend/internal/events"
	"github.com/ayushbirla71/restaurant-backend/internal/metrics"
	"github.com/ayushbirla71/restaurant-backend/internal/models"
)

// pendingConfirmationHorizon bounds the pending-confirmation listing.
const pendingConfirmationHorizon = 2 * time.Hour

// CreateBookingParams carries the caller-supplied fields of a new booking.
type CreateBookingParams struct {
	TableID         string             `json:"tableId"`
	CustomerName    string             `json:"customerName"`
	Mobile          string             `json:"mobile"`
	Email           string             `json:"email"`
	PeopleCount     int                `json:"peopleCount"`
	BookingType     models.BookingType `json:"bookingType"`
	BookingTime     *time.Time         `json:"bookingTime"`
	BookingDate     string             `json:"bookingDate"`
	BookingTimeSlot string             `json:"bookingTimeSlot"`
	DurationMinutes int                `json:"durationMinutes"`

	// ConfirmAutoSchedule shifts the booking to the suggested slot instead
	// of rejecting when a conflict exists.
	ConfirmAutoSchedule bool `json:"confirmAutoSchedule"`
}

// BookingService implements booking creation and lifecycle operations.
type BookingService struct {
	bookings BookingRepository
	tables   TableRepository
	waiting  WaitingRepository
	detector *ConflictDetector
	bus      EventPublisher
	locks    *TableLocks
	clock    func() time.Time
	logger   zerolog.Logger
}

// NewBookingService wires the booking operations.
func NewBookingService(bookings BookingRepository, tables TableRepository, waiting WaitingRepository, bus EventPublisher, locks *TableLocks, logger zerolog.Logger) *BookingService {
	if locks == nil {
		locks = NewTableLocks()
	}
	return &BookingService{
		bookings: bookings,
		tables:   tables,
		waiting:  waiting,
		detector: NewConflictDetector(bookings),
		bus:      bus,
		locks:    locks,
		clock:    time.Now,
		logger:   logger.With().Str("component", "booking").Logger(),
	}
}

func mapNotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func (s *BookingService) newBooking(p CreateBookingParams, now time.Time) *models.Booking {
	b := &models.Booking{
		TableID:            p.TableID,
		CustomerName:       p.CustomerName,
		Mobile:             p.Mobile,
		Email:              p.Email,
		PeopleCount:        p.PeopleCount,
		BookingType:        p.BookingType,
		BookingTime:        p.BookingTime,
		BookingDate:        p.BookingDate,
		BookingTimeSlot:    p.BookingTimeSlot,
		DurationMinutes:    p.DurationMinutes,
		Status:             models.BookingBooked,
		ConfirmationStatus: models.ConfirmationPending,
	}
	if b.BookingType == "" {
		b.BookingType = models.WalkIn
	}
	if b.DurationMinutes <= 0 {
		b.DurationMinutes = models.DefaultDurationMinutes
	}
	if b.BookingType == models.PreBooking {
		b.Priority = models.PreBookingPriority
	}
	if b.BookingTime == nil && b.BookingDate == "" {
		// Walk-in with no explicit time starts now.
		t := now
		b.BookingTime = &t
	}
	return b
}

// Create validates the table, runs the conflict detector and persists the
// booking. On conflict without explicit auto-schedule confirmation it
// returns a *ConflictError carrying the conflicting booking, its end time
// and the suggested next slot. With confirmation, the booking silently
// shifts to the suggested slot before creation.
func (s *BookingService) Create(ctx context.Context, p CreateBookingParams) (*models.Booking, error) {
	now := s.clock()

	table, err := s.tables.GetTable(ctx, p.TableID)
	if err != nil {
		return nil, mapNotFound(err)
	}

	unlock := s.locks.Lock(table.ID)
	defer unlock()

	booking := s.newBooking(p, now)
	start, end := booking.Window()

	conflict, err := s.detector.Detect(ctx, table.ID, start, end, "")
	if err != nil {
		return nil, err
	}
	if conflict != nil {
		ce := newConflictError(conflict)
		if !p.ConfirmAutoSchedule {
			metrics.IncBookingConflicts()
			return nil, ce
		}
		s.shiftTo(booking, ce.SuggestedTime)
	}

	if err := s.bookings.CreateBooking(ctx, booking); err != nil {
		return nil, err
	}
	metrics.IncBookingCreated(string(booking.BookingType))

	s.holdTable(ctx, table)

	_ = s.bus.PublishJSON(events.BookingCreated, booking)
	_ = s.bus.PublishJSON(events.DashboardUpdated, nil)

	s.logger.Info().Str("booking_id", booking.ID).Str("table_id", table.ID).
		Str("type", string(booking.BookingType)).Msg("booking created")
	return booking, nil
}

// shiftTo moves a booking to a new start, keeping both time representations
// coherent. Applies to pre-bookings and walk-ins alike.
func (s *BookingService) shiftTo(b *models.Booking, start time.Time) {
	t := start
	b.BookingTime = &t
	if b.BookingDate != "" || b.BookingTimeSlot != "" {
		b.BookingDate = start.Format("2006-01-02")
		b.BookingTimeSlot = start.Format("15:04")
	}
}

// holdTable marks a table BOOKED when it is currently AVAILABLE. An OCCUPIED
// table keeps its status; the new booking queues behind the seated party.
// Emits tableStatusUpdated on change.
func (s *BookingService) holdTable(ctx context.Context, table *models.Table) {
	if table.Status != models.TableAvailable {
		return
	}
	if err := s.tables.SetTableState(ctx, table.ID, models.TableBooked, nil, table.AvailableInMinutes); err != nil {
		s.logger.Error().Err(err).Str("table_id", table.ID).Msg("hold table failed")
		return
	}
	_ = s.bus.PublishJSON(events.TableStatusUpdated, map[string]interface{}{
		"tableId": table.ID,
		"status":  models.TableBooked,
	})
}

// freeTable marks a table AVAILABLE, clearing the occupancy timer and the
// staff availability estimate.
func (s *BookingService) freeTable(ctx context.Context, tableID string) {
	if err := s.tables.SetTableState(ctx, tableID, models.TableAvailable, nil, nil); err != nil {
		s.logger.Error().Err(err).Str("table_id", tableID).Msg("free table failed")
		return
	}
	_ = s.bus.PublishJSON(events.TableStatusUpdated, map[string]interface{}{
		"tableId": tableID,
		"status":  models.TableAvailable,
	})
}

// Cancel transitions a booking to CANCELLED and frees its table unless staff
// hold it OCCUPIED (a seated party is unrelated to the cancelled booking).
func (s *BookingService) Cancel(ctx context.Context, id string) (*models.Booking, error) {
	booking, err := s.bookings.GetBooking(ctx, id)
	if err != nil {
		return nil, mapNotFound(err)
	}
	if !booking.Status.CanTransition(models.BookingCancelled) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, booking.Status, models.BookingCancelled)
	}

	unlock := s.locks.Lock(booking.TableID)
	defer unlock()

	booking.Status = models.BookingCancelled
	if err := s.bookings.UpdateBooking(ctx, booking); err != nil {
		return nil, err
	}

	table, err := s.tables.GetTable(ctx, booking.TableID)
	if err == nil && table.Status != models.TableOccupied {
		s.freeTable(ctx, booking.TableID)
	}

	_ = s.bus.PublishJSON(events.BookingUpdated, booking)
	_ = s.bus.PublishJSON(events.DashboardUpdated, nil)

	s.logger.Info().Str("booking_id", id).Msg("booking cancelled")
	return booking, nil
}

// Complete transitions a booking to COMPLETED and frees its table; the party
// has left.
func (s *BookingService) Complete(ctx context.Context, id string) (*models.Booking, error) {
	booking, err := s.bookings.GetBooking(ctx, id)
	if err != nil {
		return nil, mapNotFound(err)
	}
	if !booking.Status.CanTransition(models.BookingCompleted) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, booking.Status, models.BookingCompleted)
	}

	unlock := s.locks.Lock(booking.TableID)
	defer unlock()

	booking.Status = models.BookingCompleted
	if err := s.bookings.UpdateBooking(ctx, booking); err != nil {
		return nil, err
	}

	s.freeTable(ctx, booking.TableID)

	_ = s.bus.PublishJSON(events.BookingUpdated, booking)
	_ = s.bus.PublishJSON(events.DashboardUpdated, nil)

	s.logger.Info().Str("booking_id", id).Msg("booking completed")
	return booking, nil
}

// Reassign moves a booking to a different table. The new table must be
// AVAILABLE; otherwise ErrInvalidTarget. The old table is freed and the new
// one held.
func (s *BookingService) Reassign(ctx context.Context, bookingID, newTableID string) (*models.Booking, error) {
	booking, err := s.bookings.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, mapNotFound(err)
	}
	if booking.Status.IsTerminal() {
		return nil, fmt.Errorf("%w: booking is %s", ErrInvalidTransition, booking.Status)
	}

	oldTableID := booking.TableID

	// Lock both tables in a fixed order so concurrent reassignments cannot
	// deadlock.
	first, second := oldTableID, newTableID
	if second < first {
		first, second = second, first
	}
	unlockFirst := s.locks.Lock(first)
	defer unlockFirst()
	if first != second {
		unlockSecond := s.locks.Lock(second)
		defer unlockSecond()
	}

	// The target is read under its lock so a concurrent reassign cannot
	// slip in between the availability check and the hold.
	newTable, err := s.tables.GetTable(ctx, newTableID)
	if err != nil {
		return nil, mapNotFound(err)
	}
	if newTable.Status != models.TableAvailable {
		return nil, fmt.Errorf("%w: table %s is %s", ErrInvalidTarget, newTableID, newTable.Status)
	}

	booking.TableID = newTableID
	if err := s.bookings.UpdateBooking(ctx, booking); err != nil {
		return nil, err
	}

	s.freeTable(ctx, oldTableID)
	s.holdTable(ctx, newTable)

	_ = s.bus.PublishJSON(events.BookingUpdated, booking)
	_ = s.bus.PublishJSON(events.DashboardUpdated, nil)

	s.logger.Info().Str("booking_id", bookingID).Str("from", oldTableID).Str("to", newTableID).Msg("booking reassigned")
	return booking, nil
}

// Confirm records customer confirmation and holds the table when it is
// still AVAILABLE; an OCCUPIED table leaves the booking queued.
func (s *BookingService) Confirm(ctx context.Context, id string) (*models.Booking, error) {
	booking, err := s.bookings.GetBooking(ctx, id)
	if err != nil {
		return nil, mapNotFound(err)
	}
	if booking.Status.IsTerminal() {
		return nil, fmt.Errorf("%w: booking is %s", ErrInvalidTransition, booking.Status)
	}

	unlock := s.locks.Lock(booking.TableID)
	defer unlock()

	now := s.clock()
	booking.ConfirmationStatus = models.ConfirmationConfirmed
	booking.ConfirmedAt = &now
	booking.Status = models.BookingBooked
	if err := s.bookings.UpdateBooking(ctx, booking); err != nil {
		return nil, err
	}

	if table, err := s.tables.GetTable(ctx, booking.TableID); err == nil {
		s.holdTable(ctx, table)
	}

	_ = s.bus.PublishJSON(events.BookingConfirmed, booking)
	_ = s.bus.PublishJSON(events.BookingUpdated, booking)
	_ = s.bus.PublishJSON(events.DashboardUpdated, nil)

	s.logger.Info().Str("booking_id", id).Msg("booking confirmed")
	return booking, nil
}

// Delay shifts a booking's time forward by delayMinutes and marks the
// customer delayed. Both time representations move together.
func (s *BookingService) Delay(ctx context.Context, id string, delayMinutes int) (*models.Booking, error) {
	booking, err := s.bookings.GetBooking(ctx, id)
	if err != nil {
		return nil, mapNotFound(err)
	}
	if booking.Status.IsTerminal() {
		return nil, fmt.Errorf("%w: booking is %s", ErrInvalidTransition, booking.Status)
	}
	if delayMinutes < 0 {
		delayMinutes = 0
	}

	booking.ConfirmationStatus = models.ClientDelayed
	booking.DelayMinutes = delayMinutes

	newStart := booking.StartTime().Add(time.Duration(delayMinutes) * time.Minute)
	s.shiftTo(booking, newStart)

	if err := s.bookings.UpdateBooking(ctx, booking); err != nil {
		return nil, err
	}

	_ = s.bus.PublishJSON(events.BookingDelayed, booking)
	_ = s.bus.PublishJSON(events.BookingUpdated, booking)
	_ = s.bus.PublishJSON(events.DashboardUpdated, nil)

	s.logger.Info().Str("booking_id", id).Int("delay_minutes", delayMinutes).Msg("client delayed")
	return booking, nil
}

// Override demotes the conflicting booking to the waiting list (keeping its
// customer identity and priority), cancels it, then creates the new booking
// without re-running conflict detection.
func (s *BookingService) Override(ctx context.Context, p CreateBookingParams, conflictingBookingID string) (*models.Booking, error) {
	demoted, err := s.bookings.GetBooking(ctx, conflictingBookingID)
	if err != nil {
		return nil, mapNotFound(err)
	}

	table, err := s.tables.GetTable(ctx, p.TableID)
	if err != nil {
		return nil, mapNotFound(err)
	}

	unlock := s.locks.Lock(table.ID)
	defer unlock()

	entry := &models.WaitingListEntry{
		CustomerName:       demoted.CustomerName,
		Mobile:             demoted.Mobile,
		Email:              demoted.Email,
		PeopleCount:        demoted.PeopleCount,
		PreferredTableSize: table.Size,
		BookingType:        demoted.BookingType,
		BookingDate:        demoted.BookingDate,
		BookingTimeSlot:    demoted.BookingTimeSlot,
		Priority:           demoted.Priority,
		Status:             models.WaitingWaiting,
	}
	if err := s.waiting.CreateWaitingEntry(ctx, entry); err != nil {
		return nil, err
	}

	if demoted.Status.CanTransition(models.BookingCancelled) {
		demoted.Status = models.BookingCancelled
		if err := s.bookings.UpdateBooking(ctx, demoted); err != nil {
			return nil, err
		}
	}

	now := s.clock()
	booking := s.newBooking(p, now)
	if err := s.bookings.CreateBooking(ctx, booking); err != nil {
		return nil, err
	}
	metrics.IncBookingCreated(string(booking.BookingType))

	s.holdTable(ctx, table)

	_ = s.bus.PublishJSON(events.BookingOverridden, map[string]interface{}{
		"overridden": demoted,
		"booking":    booking,
		"waitingId":  entry.ID,
	})
	_ = s.bus.PublishJSON(events.BookingCreated, booking)
	_ = s.bus.PublishJSON(events.WaitingListUpdated, nil)
	_ = s.bus.PublishJSON(events.DashboardUpdated, nil)

	s.logger.Info().Str("booking_id", booking.ID).Str("demoted_id", demoted.ID).Msg("booking overridden")
	return booking, nil
}

// PendingConfirmations lists bookings awaiting confirmation with a start
// inside the next two hours, soonest first.
func (s *BookingService) PendingConfirmations(ctx context.Context) ([]models.Booking, error) {
	pending, err := s.bookings.GetPendingConfirmations(ctx)
	if err != nil {
		return nil, err
	}

	now := s.clock()
	horizon := now.Add(pendingConfirmationHorizon)

	upcoming := make([]models.Booking, 0, len(pending))
	for _, b := range pending {
		start := b.StartTime()
		if start.Before(now) || start.After(horizon) {
			continue
		}
		upcoming = append(upcoming, b)
	}
	sort.Slice(upcoming, func(i, j int) bool {
		return upcoming[i].StartTime().Before(upcoming[j].StartTime())
	})
	return upcoming, nil
}
