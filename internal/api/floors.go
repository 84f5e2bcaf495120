package api

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

type createFloorRequest struct {
	FloorNumber int    `json:"floorNumber"`
	Name        string `json:"name"`
}

func (s *Server) createFloor(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req createFloorRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	floor, err := s.floors.Create(r.Context(), req.FloorNumber, req.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, floor)
}

func (s *Server) listFloors(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	floors, err := s.floors.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, floors)
}

func (s *Server) listFloorsWithTables(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	floors, err := s.floors.ListWithTables(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, floors)
}

func (s *Server) deleteFloor(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := s.floors.Delete(r.Context(), ps.ByName("id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "floor deleted"})
}
