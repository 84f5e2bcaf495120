package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/ayushbirla71/restaurant-backend/internal/events"
	"github.com/ayushbirla71/restaurant-backend/internal/models"
)

// AddWaitingParams carries the caller-supplied fields of a waiting entry.
type AddWaitingParams struct {
	CustomerName       string             `json:"customerName"`
	Mobile             string             `json:"mobile"`
	Email              string             `json:"email"`
	PeopleCount        int                `json:"peopleCount"`
	PreferredTableSize models.TableSize   `json:"preferredTableSize"`
	BookingType        models.BookingType `json:"bookingType"`
	BookingDate        string             `json:"bookingDate"`
	BookingTimeSlot    string             `json:"bookingTimeSlot"`
	EstimatedWait      *int               `json:"estimatedWaitTime"`
}

// AssignParams carries the seating decision for a waiting entry.
type AssignParams struct {
	TableID         string `json:"tableId"`
	DurationMinutes int    `json:"durationMinutes"`

	// AutoSchedule seats the party at SuggestedTime, as returned by a prior
	// CheckAssignConflict call, instead of the entry's own requested slot.
	AutoSchedule  bool       `json:"autoSchedule"`
	SuggestedTime *time.Time `json:"suggestedTime"`
}

// ConflictCheck is the outcome of the pre-assignment conflict probe.
type ConflictCheck struct {
	HasConflict       bool            `json:"hasConflict"`
	Conflict          *models.Booking `json:"conflict,omitempty"`
	ConflictEnd       *time.Time      `json:"conflictEnd,omitempty"`
	SuggestedTime     *time.Time      `json:"suggestedTime,omitempty"`
	SuggestedTimeSlot string          `json:"suggestedTimeSlot,omitempty"`
}

// WaitingService manages the waiting list and its promotion to bookings.
type WaitingService struct {
	waiting  WaitingRepository
	bookings BookingRepository
	tables   TableRepository
	detector *ConflictDetector
	bus      EventPublisher
	locks    *TableLocks
	clock    func() time.Time
	logger   zerolog.Logger
}

// NewWaitingService wires the waiting list operations.
func NewWaitingService(waiting WaitingRepository, bookings BookingRepository, tables TableRepository, bus EventPublisher, locks *TableLocks, logger zerolog.Logger) *WaitingService {
	if locks == nil {
		locks = NewTableLocks()
	}
	return &WaitingService{
		waiting:  waiting,
		bookings: bookings,
		tables:   tables,
		detector: NewConflictDetector(bookings),
		bus:      bus,
		locks:    locks,
		clock:    time.Now,
		logger:   logger.With().Str("component", "waitinglist").Logger(),
	}
}

// Add places a party on the waiting list. Pre-bookings enter with elevated
// priority so they are offered tables before walk-ins.
func (s *WaitingService) Add(ctx context.Context, p AddWaitingParams) (*models.WaitingListEntry, error) {
	entry := &models.WaitingListEntry{
		CustomerName:         p.CustomerName,
		Mobile:               p.Mobile,
		Email:                p.Email,
		PeopleCount:          p.PeopleCount,
		PreferredTableSize:   p.PreferredTableSize,
		BookingType:          p.BookingType,
		BookingDate:          p.BookingDate,
		BookingTimeSlot:      p.BookingTimeSlot,
		EstimatedWaitMinutes: p.EstimatedWait,
		Status:               models.WaitingWaiting,
	}
	if entry.BookingType == "" {
		entry.BookingType = models.WalkIn
	}
	if entry.BookingType == models.PreBooking {
		entry.Priority = models.PreBookingPriority
	}

	if err := s.waiting.CreateWaitingEntry(ctx, entry); err != nil {
		return nil, err
	}

	_ = s.bus.PublishJSON(events.WaitingListUpdated, nil)
	_ = s.bus.PublishJSON(events.DashboardUpdated, nil)

	s.logger.Info().Str("waiting_id", entry.ID).Int("priority", entry.Priority).Msg("waiting entry added")
	return entry, nil
}

// List returns active entries, highest priority first, oldest first within
// a priority band. A date narrows the listing to pre-bookings requesting that
// date; with no date every active entry is returned, walk-ins included, since
// walk-ins carry no requested date.
func (s *WaitingService) List(ctx context.Context, date string) ([]models.WaitingListEntry, error) {
	return s.waiting.ListActiveWaiting(ctx, date)
}

// CheckAssignConflict probes whether seating the entry on the table would
// collide with an existing booking, without committing anything. The staff
// UI uses the result to offer the suggested slot before calling Assign.
func (s *WaitingService) CheckAssignConflict(ctx context.Context, waitingID, tableID string, durationMinutes int) (*ConflictCheck, error) {
	entry, err := s.waiting.GetWaitingEntry(ctx, waitingID)
	if err != nil {
		return nil, mapNotFound(err)
	}
	if _, err := s.tables.GetTable(ctx, tableID); err != nil {
		return nil, mapNotFound(err)
	}

	if durationMinutes <= 0 {
		durationMinutes = models.DefaultDurationMinutes
	}
	start := entry.DesiredTime(s.clock())
	end := start.Add(time.Duration(durationMinutes) * time.Minute)

	conflict, err := s.detector.Detect(ctx, tableID, start, end, "")
	if err != nil {
		return nil, err
	}
	if conflict == nil {
		return &ConflictCheck{}, nil
	}

	ce := newConflictError(conflict)
	return &ConflictCheck{
		HasConflict:       true,
		Conflict:          conflict,
		ConflictEnd:       &ce.ConflictEnd,
		SuggestedTime:     &ce.SuggestedTime,
		SuggestedTimeSlot: ce.SuggestedSlot(),
	}, nil
}

// Assign promotes a waiting entry to a booking on the given table. The
// two-phase flow means no conflict check happens here: the caller already
// ran CheckAssignConflict and either found the slot clear or accepted the
// suggested time via AutoSchedule.
func (s *WaitingService) Assign(ctx context.Context, waitingID string, p AssignParams) (*models.Booking, error) {
	entry, err := s.waiting.GetWaitingEntry(ctx, waitingID)
	if err != nil {
		return nil, mapNotFound(err)
	}
	if !entry.Status.CanTransition(models.WaitingAssigned) {
		return nil, fmt.Errorf("%w: waiting entry is %s", ErrInvalidTransition, entry.Status)
	}

	table, err := s.tables.GetTable(ctx, p.TableID)
	if err != nil {
		return nil, mapNotFound(err)
	}

	unlock := s.locks.Lock(table.ID)
	defer unlock()

	now := s.clock()
	booking := &models.Booking{
		TableID:            table.ID,
		CustomerName:       entry.CustomerName,
		Mobile:             entry.Mobile,
		Email:              entry.Email,
		PeopleCount:        entry.PeopleCount,
		BookingType:        entry.BookingType,
		Priority:           entry.Priority,
		DurationMinutes:    p.DurationMinutes,
		Status:             models.BookingBooked,
		ConfirmationStatus: models.ConfirmationPending,
	}
	if booking.DurationMinutes <= 0 {
		booking.DurationMinutes = models.DefaultDurationMinutes
	}

	switch {
	case p.AutoSchedule && p.SuggestedTime != nil:
		t := *p.SuggestedTime
		booking.BookingTime = &t
		booking.BookingDate = t.Format("2006-01-02")
		booking.BookingTimeSlot = t.Format("15:04")
	case entry.BookingDate != "" && entry.BookingTimeSlot != "":
		booking.BookingDate = entry.BookingDate
		booking.BookingTimeSlot = entry.BookingTimeSlot
	default:
		t := now
		booking.BookingTime = &t
	}

	if err := s.bookings.CreateBooking(ctx, booking); err != nil {
		return nil, err
	}

	if table.Status == models.TableAvailable {
		if err := s.tables.SetTableState(ctx, table.ID, models.TableBooked, nil, table.AvailableInMinutes); err != nil {
			s.logger.Error().Err(err).Str("table_id", table.ID).Msg("hold table failed")
		} else {
			_ = s.bus.PublishJSON(events.TableStatusUpdated, map[string]interface{}{
				"tableId": table.ID,
				"status":  models.TableBooked,
			})
		}
	}

	if err := s.waiting.UpdateWaitingStatus(ctx, entry.ID, models.WaitingAssigned, entry.NotifiedAt); err != nil {
		return nil, err
	}

	_ = s.bus.PublishJSON(events.BookingCreated, booking)
	_ = s.bus.PublishJSON(events.WaitingListUpdated, nil)
	_ = s.bus.PublishJSON(events.DashboardUpdated, nil)

	s.logger.Info().Str("waiting_id", waitingID).Str("booking_id", booking.ID).Str("table_id", table.ID).Msg("waiting entry assigned")
	return booking, nil
}

// CancelEntry removes a party from the queue.
func (s *WaitingService) CancelEntry(ctx context.Context, waitingID string) error {
	entry, err := s.waiting.GetWaitingEntry(ctx, waitingID)
	if err != nil {
		return mapNotFound(err)
	}
	if !entry.Status.CanTransition(models.WaitingCancelled) {
		return fmt.Errorf("%w: waiting entry is %s", ErrInvalidTransition, entry.Status)
	}
	if err := s.waiting.UpdateWaitingStatus(ctx, waitingID, models.WaitingCancelled, entry.NotifiedAt); err != nil {
		return err
	}
	_ = s.bus.PublishJSON(events.WaitingListUpdated, nil)
	_ = s.bus.PublishJSON(events.DashboardUpdated, nil)
	s.logger.Info().Str("waiting_id", waitingID).Msg("waiting entry cancelled")
	return nil
}

// NotifyCustomer records that staff told the party a table is coming up.
func (s *WaitingService) NotifyCustomer(ctx context.Context, waitingID string) (*models.WaitingListEntry, error) {
	entry, err := s.waiting.GetWaitingEntry(ctx, waitingID)
	if err != nil {
		return nil, mapNotFound(err)
	}
	if !entry.Status.CanTransition(models.WaitingNotified) {
		return nil, fmt.Errorf("%w: waiting entry is %s", ErrInvalidTransition, entry.Status)
	}

	now := s.clock()
	if err := s.waiting.UpdateWaitingStatus(ctx, waitingID, models.WaitingNotified, &now); err != nil {
		return nil, err
	}
	entry.Status = models.WaitingNotified
	entry.NotifiedAt = &now

	_ = s.bus.PublishJSON(events.WaitingListUpdated, nil)
	s.logger.Info().Str("waiting_id", waitingID).Msg("customer notified")
	return entry, nil
}
