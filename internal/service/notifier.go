package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/ayushbirla71/restaurant-backend/internal/events"
	"github.com/ayushbirla71/restaurant-backend/internal/metrics"
	"github.com/ayushbirla71/restaurant-backend/internal/models"
)

// ReminderThresholds are the minutes-before-start points at which upcoming
// booking reminders fire, each at most once per booking.
var ReminderThresholds = []int{30, 20, 10, 5}

// EscalationMilestones are the waited-minutes marks at which a long-wait
// escalation fires. The check is half-open per milestone: [10,11), [20,21),
// [30,31).
var EscalationMilestones = []int{10, 20, 30}

// reminderScanWindow is the tolerance around now+threshold when matching a
// booking start to a threshold.
const reminderScanWindow = time.Minute

// UpcomingBookingAlert is the payload of an upcomingBookingNotification event.
type UpcomingBookingAlert struct {
	ID                 string                    `json:"id"`
	BookingID          string                    `json:"bookingId"`
	TableID            string                    `json:"tableId"`
	CustomerName       string                    `json:"customerName"`
	Mobile             string                    `json:"mobile"`
	PeopleCount        int                       `json:"peopleCount"`
	BookingTime        time.Time                 `json:"bookingTime"`
	MinutesBefore      int                       `json:"minutesBefore"`
	ConfirmationStatus models.ConfirmationStatus `json:"confirmationStatus"`
	Message            string                    `json:"message"`
	Timestamp          time.Time                 `json:"timestamp"`
}

// LongWaitAlert is the payload of a longWaitingCustomer event.
type LongWaitAlert struct {
	ID                 string           `json:"id"`
	Type               string           `json:"type"`
	WaitingListID      string           `json:"waitingListId"`
	CustomerName       string           `json:"customerName"`
	Mobile             string           `json:"mobile"`
	PeopleCount        int              `json:"peopleCount"`
	PreferredTableSize models.TableSize `json:"preferredTableSize"`
	WaitingMinutes     int              `json:"waitingMinutes"`
	Message            string           `json:"message"`
	CreatedAt          time.Time        `json:"createdAt"`
}

// NotificationScheduler runs two independent periodic sub-loops: upcoming
// booking reminders and long-wait escalations.
//
// Reminders are idempotent per (booking, threshold): the persisted marker set
// is the source of truth, appended with compare-and-swap before the event is
// emitted, so a reminder fires at most once even when passes overlap.
//
// Escalations have no persisted marker; a milestone is detected only while
// elapsed time sits inside its one-minute window. The loop must therefore
// run at least once per minute or a milestone can be silently skipped. This
// is a known reliability gap inherited from the source behavior.
type NotificationScheduler struct {
	bookings BookingRepository
	waiting  WaitingRepository
	bus      EventPublisher
	interval time.Duration
	clock    func() time.Time
	logger   zerolog.Logger

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// NewNotificationScheduler creates the scheduler. Interval defaults to one
// minute and applies to both sub-loops.
func NewNotificationScheduler(bookings BookingRepository, waiting WaitingRepository, bus EventPublisher, interval time.Duration, logger zerolog.Logger) *NotificationScheduler {
	if interval <= 0 {
		interval = time.Minute
	}
	return &NotificationScheduler{
		bookings: bookings,
		waiting:  waiting,
		bus:      bus,
		interval: interval,
		clock:    time.Now,
		logger:   logger.With().Str("component", "notifier").Logger(),
		stopCh:   make(chan struct{}),
	}
}

// Start begins both sub-loops.
func (s *NotificationScheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.mu.Unlock()

	s.logger.Info().Dur("interval", s.interval).Msg("notification scheduler started")

	s.wg.Add(2)
	go s.loop(ctx, func(now time.Time) {
		if err := s.RunReminderPass(ctx, now); err != nil {
			s.logger.Error().Err(err).Msg("reminder pass failed")
		}
	})
	go s.loop(ctx, func(now time.Time) {
		if err := s.RunEscalationPass(ctx, now); err != nil {
			s.logger.Error().Err(err).Msg("escalation pass failed")
		}
	})
}

func (s *NotificationScheduler) loop(ctx context.Context, pass func(now time.Time)) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case <-ticker.C:
			pass(s.clock())
		}
	}
}

// Stop stops both sub-loops after their current iteration.
func (s *NotificationScheduler) Stop() {
	s.mu.Lock()
	if s.running {
		s.running = false
		close(s.stopCh)
	}
	s.mu.Unlock()
	s.wg.Wait()
}

// RunReminderPass scans eligible bookings once. For each threshold, a booking
// whose start falls within one minute of now+threshold and whose marker set
// lacks the threshold's key gets one reminder event and the marker appended.
// A failure on one booking is logged and skipped.
func (s *NotificationScheduler) RunReminderPass(ctx context.Context, now time.Time) error {
	bookings, err := s.bookings.GetNotifiableBookings(ctx)
	if err != nil {
		return err
	}

	for _, minutes := range ReminderThresholds {
		target := now.Add(time.Duration(minutes) * time.Minute)

		for i := range bookings {
			b := &bookings[i]
			start := b.StartTime()
			if start.Before(target.Add(-reminderScanWindow)) || start.After(target.Add(reminderScanWindow)) {
				continue
			}

			marker := fmt.Sprintf("%dmin", minutes)
			if b.HasNotification(marker) {
				continue
			}

			// Claim the marker first; the event fires only for the writer
			// that won the compare-and-swap.
			won, err := s.bookings.AppendNotificationMarker(ctx, b.ID, marker, b.NotificationsSent)
			if err != nil {
				s.logger.Error().Err(err).Str("booking_id", b.ID).Str("marker", marker).Msg("skipping reminder")
				continue
			}
			if !won {
				continue
			}
			b.NotificationsSent = append(b.NotificationsSent, marker)

			alert := UpcomingBookingAlert{
				ID:                 fmt.Sprintf("notif-%s-%d", b.ID, minutes),
				BookingID:          b.ID,
				TableID:            b.TableID,
				CustomerName:       b.CustomerName,
				Mobile:             b.Mobile,
				PeopleCount:        b.PeopleCount,
				BookingTime:        start,
				MinutesBefore:      minutes,
				ConfirmationStatus: b.ConfirmationStatus,
				Message:            fmt.Sprintf("Table booked for %s in %d minutes", b.CustomerName, minutes),
				Timestamp:          now,
			}
			_ = s.bus.PublishJSON(events.UpcomingBookingNotification, alert)
			metrics.IncRemindersSent(marker)

			s.logger.Info().Str("booking_id", b.ID).Int("minutes_before", minutes).Msg("reminder sent")
		}
	}
	return nil
}

// atMilestone reports whether waited minutes sit inside a milestone's
// one-minute window.
func atMilestone(waited int) bool {
	for _, m := range EscalationMilestones {
		if waited == m {
			return true
		}
	}
	return false
}

// RunEscalationPass scans active waiting entries once and emits an
// escalation for each entry whose elapsed wait crossed a milestone within
// the last minute.
func (s *NotificationScheduler) RunEscalationPass(ctx context.Context, now time.Time) error {
	entries, err := s.waiting.ListActiveWaiting(ctx, "")
	if err != nil {
		return err
	}

	for i := range entries {
		e := &entries[i]
		waited := e.WaitedMinutes(now)
		if !atMilestone(waited) {
			continue
		}

		alert := LongWaitAlert{
			ID:                 fmt.Sprintf("waiting-%s-%d", e.ID, waited),
			Type:               "LONG_WAITING",
			WaitingListID:      e.ID,
			CustomerName:       e.CustomerName,
			Mobile:             e.Mobile,
			PeopleCount:        e.PeopleCount,
			PreferredTableSize: e.PreferredTableSize,
			WaitingMinutes:     waited,
			Message:            fmt.Sprintf("%s has been waiting for %d minutes", e.CustomerName, waited),
			CreatedAt:          now,
		}
		_ = s.bus.PublishJSON(events.LongWaitingCustomer, alert)
		metrics.IncEscalationsSent()

		s.logger.Info().Str("waiting_id", e.ID).Int("waiting_minutes", waited).Msg("long wait escalation sent")
	}
	return nil
}
