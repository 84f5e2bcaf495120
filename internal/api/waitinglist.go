package api

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"github.com/ayushbirla71/restaurant-backend/internal/service"
)

func (s *Server) addWaiting(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req service.AddWaitingParams
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	entry, err := s.waiting.Add(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

// listWaiting returns today's active queue, or a given day's with ?date=.
func (s *Server) listWaiting(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	entries, err := s.waiting.List(r.Context(), r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

type checkConflictRequest struct {
	TableID         string `json:"tableId"`
	DurationMinutes int    `json:"durationMinutes"`
}

func (s *Server) checkWaitingConflict(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req checkConflictRequest
	if err := decodeBody(r, &req); err != nil || req.TableID == "" {
		badRequest(w, "tableId is required")
		return
	}
	check, err := s.waiting.CheckAssignConflict(r.Context(), ps.ByName("waitingId"), req.TableID, req.DurationMinutes)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, check)
}

func (s *Server) assignWaiting(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req service.AssignParams
	if err := decodeBody(r, &req); err != nil || req.TableID == "" {
		badRequest(w, "tableId is required")
		return
	}
	booking, err := s.waiting.Assign(r.Context(), ps.ByName("waitingId"), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, booking)
}

func (s *Server) cancelWaiting(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := s.waiting.CancelEntry(r.Context(), ps.ByName("waitingId")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "waiting entry cancelled"})
}

func (s *Server) notifyWaiting(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	entry, err := s.waiting.NotifyCustomer(r.Context(), ps.ByName("waitingId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}
