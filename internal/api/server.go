// Package api exposes the staff-facing REST surface and the websocket
// endpoint.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/rs/cors"
	"github.com/rs/zerolog"

	"github.com/ayushbirla71/restaurant-backend/internal/metrics"
	"github.com/ayushbirla71/restaurant-backend/internal/models"
	"github.com/ayushbirla71/restaurant-backend/internal/service"
	"github.com/ayushbirla71/restaurant-backend/internal/ws"
)

// BookingLister is the raw booking listing the report and list endpoints
// read; the services cover everything else.
type BookingLister interface {
	ListBookings(ctx context.Context) ([]models.Booking, error)
	GetBookingsCreatedBetween(ctx context.Context, start, end time.Time) ([]models.Booking, error)
}

// Server routes HTTP requests to the domain services.
type Server struct {
	floors     *service.FloorService
	tables     *service.TableService
	bookings   *service.BookingService
	waiting    *service.WaitingService
	dashboard  *service.DashboardService
	reconciler *service.Reconciler
	store      BookingLister
	hub        *ws.Hub
	logger     zerolog.Logger
}

// Deps bundles everything the server serves.
type Deps struct {
	Floors     *service.FloorService
	Tables     *service.TableService
	Bookings   *service.BookingService
	Waiting    *service.WaitingService
	Dashboard  *service.DashboardService
	Reconciler *service.Reconciler
	Store      BookingLister
	Hub        *ws.Hub
	Logger     zerolog.Logger
}

// NewServer wires the route table.
func NewServer(d Deps) *Server {
	return &Server{
		floors:     d.Floors,
		tables:     d.Tables,
		bookings:   d.Bookings,
		waiting:    d.Waiting,
		dashboard:  d.Dashboard,
		reconciler: d.Reconciler,
		store:      d.Store,
		hub:        d.Hub,
		logger:     d.Logger.With().Str("component", "api").Logger(),
	}
}

// Handler builds the full HTTP handler: router, CORS and request logging.
func (s *Server) Handler() http.Handler {
	router := httprouter.New()

	router.POST("/api/floors", s.createFloor)
	router.GET("/api/floors", s.listFloors)
	router.GET("/api/floors/with-tables", s.listFloorsWithTables)
	router.DELETE("/api/floors/:id", s.deleteFloor)

	router.POST("/api/tables", s.createTable)
	router.GET("/api/tables", s.listTables)
	router.GET("/api/tables/:id", s.getTable)
	router.GET("/api/tables/:id/booking", s.tableCurrentBooking)
	router.GET("/api/tables/:id/bookings", s.tableTodayBookings)
	router.PUT("/api/tables/:id/status", s.setTableStatus)
	router.PUT("/api/tables/:id/availability", s.setTableAvailability)
	router.DELETE("/api/tables/:id", s.deleteTable)

	// Static path kept apart from /api/tables/:id; the router cannot mix
	// a literal segment with a wildcard at the same position.
	router.GET("/api/table-statuses", s.tableStatusesForDateTime)

	router.POST("/api/bookings", s.createBooking)
	router.GET("/api/bookings", s.listBookings)
	router.POST("/api/bookings/override", s.overrideBooking)
	router.POST("/api/bookings/sync-statuses", s.syncTableStatuses)
	router.PUT("/api/bookings/:id/cancel", s.cancelBooking)
	router.PUT("/api/bookings/:id/complete", s.completeBooking)
	router.PUT("/api/bookings/:id/reassign", s.reassignBooking)

	router.POST("/api/waitinglist", s.addWaiting)
	router.GET("/api/waitinglist", s.listWaiting)
	router.POST("/api/waitinglist/:waitingId/check-conflict", s.checkWaitingConflict)
	router.POST("/api/waitinglist/:waitingId/assign", s.assignWaiting)
	router.PUT("/api/waitinglist/:waitingId/cancel", s.cancelWaiting)
	router.PUT("/api/waitinglist/:waitingId/notify", s.notifyWaiting)

	router.GET("/api/notifications/pending", s.pendingConfirmations)
	router.PUT("/api/notifications/:id/confirm", s.confirmBooking)
	router.PUT("/api/notifications/:id/delay", s.delayBooking)

	router.GET("/api/dashboard", s.dashboardStats)
	router.GET("/api/reports/bookings", s.bookingsReport)

	router.GET("/ws", s.hub.HandleWS)

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	})

	return c.Handler(s.withLogging(router))
}

func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		metrics.IncHTTP(r.Method + " " + r.URL.Path)
		s.logger.Debug().Str("method", r.Method).Str("path", r.URL.Path).Msg("request")
		next.ServeHTTP(w, r)
	})
}
