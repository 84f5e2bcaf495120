package api

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

func (s *Server) pendingConfirmations(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	bookings, err := s.bookings.PendingConfirmations(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bookings)
}

func (s *Server) confirmBooking(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	booking, err := s.bookings.Confirm(r.Context(), ps.ByName("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

type delayRequest struct {
	DelayMinutes int `json:"delayMinutes"`
}

func (s *Server) delayBooking(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req delayRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	if req.DelayMinutes <= 0 {
		badRequest(w, "delayMinutes must be positive")
		return
	}
	booking, err := s.bookings.Delay(r.Context(), ps.ByName("id"), req.DelayMinutes)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}
