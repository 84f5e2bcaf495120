package api

import (
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"

	"github.com/ayushbirla71/restaurant-backend/internal/service"
)

func (s *Server) createBooking(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req service.CreateBookingParams
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	booking, err := s.bookings.Create(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, booking)
}

func (s *Server) listBookings(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	bookings, err := s.store.ListBookings(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bookings)
}

func (s *Server) cancelBooking(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	booking, err := s.bookings.Cancel(r.Context(), ps.ByName("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (s *Server) completeBooking(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	booking, err := s.bookings.Complete(r.Context(), ps.ByName("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

type reassignRequest struct {
	NewTableID string `json:"newTableId"`
}

func (s *Server) reassignBooking(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req reassignRequest
	if err := decodeBody(r, &req); err != nil || req.NewTableID == "" {
		badRequest(w, "newTableId is required")
		return
	}
	booking, err := s.bookings.Reassign(r.Context(), ps.ByName("id"), req.NewTableID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

type overrideRequest struct {
	service.CreateBookingParams
	ConflictingBookingID string `json:"conflictingBookingId"`
}

// overrideBooking force-creates a booking over an existing one; the loser
// moves to the waiting list.
func (s *Server) overrideBooking(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req overrideRequest
	if err := decodeBody(r, &req); err != nil || req.ConflictingBookingID == "" {
		badRequest(w, "conflictingBookingId is required")
		return
	}
	booking, err := s.bookings.Override(r.Context(), req.CreateBookingParams, req.ConflictingBookingID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, booking)
}

// syncTableStatuses triggers an immediate reconciliation pass and reports
// how many tables changed.
func (s *Server) syncTableStatuses(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	changed, err := s.reconciler.RunOnce(r.Context(), time.Now())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"tablesChanged": changed})
}
