package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	bookingCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "restaurant",
			Name:      "booking_created_total",
			Help:      "Count of bookings created by type.",
		},
		[]string{"type"},
	)

	bookingConflicts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "restaurant",
			Name:      "booking_conflicts_total",
			Help:      "Count of booking requests rejected for time-window conflicts.",
		},
	)

	reconcileRuns = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "restaurant",
			Name:      "reconcile_runs_total",
			Help:      "Count of table status reconciliation passes.",
		},
	)

	reconcileChanges = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "restaurant",
			Name:      "reconcile_tables_changed_total",
			Help:      "Count of table status corrections applied by reconciliation.",
		},
	)

	remindersSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "restaurant",
			Name:      "reminders_sent_total",
			Help:      "Count of upcoming-booking reminders by threshold.",
		},
		[]string{"threshold"},
	)

	escalationsSent = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "restaurant",
			Name:      "long_wait_escalations_total",
			Help:      "Count of long-wait escalation notifications.",
		},
	)

	wsClients = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "restaurant",
			Name:      "ws_clients",
			Help:      "Connected staff display sockets.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "restaurant",
			Name:      "http_requests_total",
			Help:      "Count of HTTP requests by endpoint.",
		},
		[]string{"endpoint"},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			bookingCreated, bookingConflicts,
			reconcileRuns, reconcileChanges,
			remindersSent, escalationsSent,
			wsClients, httpRequests,
		)
	})
}

func IncBookingCreated(bookingType string) {
	bookingCreated.WithLabelValues(bookingType).Inc()
}

func IncBookingConflicts() {
	bookingConflicts.Inc()
}

func IncReconcileRuns() {
	reconcileRuns.Inc()
}

func AddReconcileChanges(n int) {
	reconcileChanges.Add(float64(n))
}

func IncRemindersSent(threshold string) {
	remindersSent.WithLabelValues(threshold).Inc()
}

func IncEscalationsSent() {
	escalationsSent.Inc()
}

func SetWSClients(n int) {
	wsClients.Set(float64(n))
}

func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}
