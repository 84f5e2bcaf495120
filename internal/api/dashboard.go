package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"

	"github.com/ayushbirla71/restaurant-backend/internal/reports"
)

func (s *Server) dashboardStats(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	stats, err := s.dashboard.Stats(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// bookingsReport streams an Excel workbook of the bookings created on a day:
// GET /api/reports/bookings?date=2026-09-01 (defaults to today).
func (s *Server) bookingsReport(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}
	dayStart, err := time.ParseInLocation("2006-01-02", date, time.Local)
	if err != nil {
		badRequest(w, "date must be YYYY-MM-DD")
		return
	}
	dayEnd := dayStart.Add(24 * time.Hour)

	bookings, err := s.store.GetBookingsCreatedBetween(r.Context(), dayStart, dayEnd)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=bookings-%s.xlsx", date))
	if err := reports.WriteBookingsReport(w, date, bookings); err != nil {
		s.logger.Error().Err(err).Msg("write bookings report")
	}
}
