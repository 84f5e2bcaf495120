package api

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"github.com/ayushbirla71/restaurant-backend/internal/models"
	"github.com/ayushbirla71/restaurant-backend/internal/service"
)

func (s *Server) createTable(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req service.CreateTableParams
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	table, err := s.tables.Create(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, table)
}

// listTables returns every table, or one floor's tables with ?floorId=.
func (s *Server) listTables(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var (
		tables []models.Table
		err    error
	)
	if floorID := r.URL.Query().Get("floorId"); floorID != "" {
		tables, err = s.tables.ListByFloor(r.Context(), floorID)
	} else {
		tables, err = s.tables.List(r.Context())
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tables)
}

func (s *Server) getTable(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	table, err := s.tables.Get(r.Context(), ps.ByName("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, table)
}

func (s *Server) deleteTable(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := s.tables.Delete(r.Context(), ps.ByName("id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "table deleted"})
}

type setStatusRequest struct {
	Status models.TableStatus `json:"status"`
}

func (s *Server) setTableStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req setStatusRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	table, err := s.tables.SetStatus(r.Context(), ps.ByName("id"), req.Status)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, table)
}

type setAvailabilityRequest struct {
	AvailableInMinutes *int `json:"availableInMinutes"`
}

func (s *Server) setTableAvailability(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req setAvailabilityRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	if req.AvailableInMinutes != nil && *req.AvailableInMinutes < 0 {
		badRequest(w, "availableInMinutes must not be negative")
		return
	}
	table, err := s.tables.SetAvailability(r.Context(), ps.ByName("id"), req.AvailableInMinutes)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, table)
}

// tableCurrentBooking returns the booking the table is serving or holding
// for, with minutes until its start when it is upcoming.
func (s *Server) tableCurrentBooking(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	booking, err := s.tables.CurrentBooking(r.Context(), ps.ByName("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	if booking == nil {
		writeJSON(w, http.StatusOK, map[string]interface{}{"booking": nil})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"booking": booking})
}

func (s *Server) tableTodayBookings(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	bookings, err := s.tables.TodayBookings(r.Context(), ps.ByName("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bookings)
}

// tableStatusesForDateTime projects table availability for a future slot:
// GET /api/table-statuses?date=2026-09-01&timeSlot=19:00
func (s *Server) tableStatusesForDateTime(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	date := r.URL.Query().Get("date")
	slot := r.URL.Query().Get("timeSlot")
	if date == "" || slot == "" {
		badRequest(w, "date and timeSlot are required")
		return
	}
	statuses, err := s.tables.StatusesForDateTime(r.Context(), date, slot)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, statuses)
}
