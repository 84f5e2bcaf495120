package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/ayushbirla71/restaurant-backend/internal/events"
	"github.com/ayushbirla71/restaurant-backend/internal/metrics"
	"github.com/ayushbirla71/restaurant-backend/internal/models"
)

const (
	// postBufferMinutes extends a booking's window past its end when testing
	// occupancy. Deliberately more generous than the 30 minute pre-buffer
	// used by the activity check; parties run over their slot.
	postBufferMinutes = 30

	// preHoldMinutes is how far ahead of a booking's start the table is held
	// as BOOKED.
	preHoldMinutes = 45
)

// DerivedState is what a table's status should be right now, computed from
// the set of non-terminal bookings assigned to it.
type DerivedState struct {
	Status models.TableStatus

	// NearestStart is the earliest future booking start, when any.
	NearestStart *time.Time
}

// DeriveTableState computes the target state of one table from its bookings.
// A table has an active booking when now falls inside
// [start, start+duration+30m]; otherwise the table is pre-held as BOOKED when
// the nearest upcoming start is at most 45 minutes away.
func DeriveTableState(bookings []models.Booking, now time.Time) DerivedState {
	var nearest *time.Time
	active := false

	for i := range bookings {
		b := &bookings[i]
		start, end := b.Window()
		end = end.Add(postBufferMinutes * time.Minute)

		if !now.Before(start) && !now.After(end) {
			active = true
			continue
		}
		if start.After(now) && (nearest == nil || start.Before(*nearest)) {
			s := start
			nearest = &s
		}
	}

	status := models.TableAvailable
	if active {
		status = models.TableBooked
	} else if nearest != nil && !nearest.After(now.Add(preHoldMinutes*time.Minute)) {
		status = models.TableBooked
	}

	return DerivedState{Status: status, NearestStart: nearest}
}

// Reconciler periodically re-derives every table's status from the current
// booking set and applies the minimal corrections. A manual OCCUPIED hold is
// never overridden: it means a customer is physically seated and only staff
// may clear it.
type Reconciler struct {
	bookings BookingRepository
	tables   TableRepository
	bus      EventPublisher
	locks    *TableLocks
	interval time.Duration
	clock    func() time.Time
	logger   zerolog.Logger

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// NewReconciler creates the reconciliation loop. Interval defaults to 5
// minutes.
func NewReconciler(bookings BookingRepository, tables TableRepository, bus EventPublisher, locks *TableLocks, interval time.Duration, logger zerolog.Logger) *Reconciler {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	if locks == nil {
		locks = NewTableLocks()
	}
	return &Reconciler{
		bookings: bookings,
		tables:   tables,
		bus:      bus,
		locks:    locks,
		interval: interval,
		clock:    time.Now,
		logger:   logger.With().Str("component", "reconciler").Logger(),
		stopCh:   make(chan struct{}),
	}
}

// Start begins the reconciliation loop.
func (r *Reconciler) Start(ctx context.Context) {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return
	}
	r.running = true
	r.mu.Unlock()

	r.logger.Info().Dur("interval", r.interval).Msg("reconciler started")

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				r.logger.Info().Msg("reconciler stopped by context")
				return
			case <-r.stopCh:
				r.logger.Info().Msg("reconciler stopped")
				return
			case <-ticker.C:
				if _, err := r.RunOnce(ctx, r.clock()); err != nil {
					r.logger.Error().Err(err).Msg("reconciliation pass failed")
				}
			}
		}
	}()
}

// Stop stops the loop after the current iteration finishes.
func (r *Reconciler) Stop() {
	r.mu.Lock()
	if r.running {
		r.running = false
		close(r.stopCh)
	}
	r.mu.Unlock()
	r.wg.Wait()
}

// RunOnce performs a single reconciliation pass and returns the number of
// tables whose status changed. A failure on one table is logged and skipped;
// it never aborts the pass.
func (r *Reconciler) RunOnce(ctx context.Context, now time.Time) (int, error) {
	metrics.IncReconcileRuns()

	bookings, err := r.bookings.GetTodayBookings(ctx, now)
	if err != nil {
		return 0, err
	}

	byTable := make(map[string][]models.Booking)
	for _, b := range bookings {
		byTable[b.TableID] = append(byTable[b.TableID], b)
	}

	changed := 0
	for tableID, tableBookings := range byTable {
		ok, err := r.reconcileTable(ctx, tableID, tableBookings, now)
		if err != nil {
			r.logger.Error().Err(err).Str("table_id", tableID).Msg("skipping table")
			continue
		}
		if ok {
			changed++
		}
	}

	if changed > 0 {
		metrics.AddReconcileChanges(changed)
		_ = r.bus.PublishJSON(events.DashboardUpdated, nil)
	}

	r.logger.Debug().Int("tables_changed", changed).Int("bookings", len(bookings)).Msg("reconciliation pass done")
	return changed, nil
}

// reconcileTable applies the derived state to one table. Tables with zero
// bookings in the window never reach here; they keep whatever status staff
// set.
func (r *Reconciler) reconcileTable(ctx context.Context, tableID string, bookings []models.Booking, now time.Time) (bool, error) {
	unlock := r.locks.Lock(tableID)
	defer unlock()

	table, err := r.tables.GetTable(ctx, tableID)
	if err != nil {
		return false, err
	}

	derived := DeriveTableState(bookings, now)
	if table.Status == derived.Status || table.Status == models.TableOccupied {
		return false, nil
	}

	var availableIn *int
	var occupiedSince *time.Time
	switch derived.Status {
	case models.TableAvailable:
		// occupiedSince cleared; availability estimate recomputed from the
		// nearest upcoming start, nil when there is none.
		if derived.NearestStart != nil {
			mins := int(derived.NearestStart.Sub(now) / time.Minute)
			availableIn = &mins
		}
	case models.TableBooked:
		// A reservation alone never starts the occupancy timer.
		occupiedSince = table.OccupiedSince
		availableIn = table.AvailableInMinutes
	}

	if err := r.tables.SetTableState(ctx, tableID, derived.Status, occupiedSince, availableIn); err != nil {
		return false, err
	}

	_ = r.bus.PublishJSON(events.TableStatusUpdated, map[string]interface{}{
		"tableId": tableID,
		"status":  derived.Status,
	})
	return true, nil
}
