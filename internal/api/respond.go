package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ayushbirla71/restaurant-backend/internal/service"
)

type errorBody struct {
	Message string `json:"message"`
}

// conflictBody is the 409 payload: the conflicting booking plus the
// suggested alternative in both time representations.
type conflictBody struct {
	Message           string      `json:"message"`
	Conflict          interface{} `json:"conflict"`
	ConflictEnd       string      `json:"conflictEnd"`
	SuggestedTime     string      `json:"suggestedTime"`
	SuggestedTimeSlot string      `json:"suggestedTimeSlot"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// writeError maps service errors to HTTP statuses. Conflicts are not
// failures of the request but of the slot; they get the full 409 payload.
func writeError(w http.ResponseWriter, err error) {
	if ce, ok := service.AsConflict(err); ok {
		writeJSON(w, http.StatusConflict, conflictBody{
			Message:           "time slot conflicts with an existing booking",
			Conflict:          ce.Conflict,
			ConflictEnd:       ce.ConflictEnd.Format("2006-01-02T15:04:05Z07:00"),
			SuggestedTime:     ce.SuggestedTime.Format("2006-01-02T15:04:05Z07:00"),
			SuggestedTimeSlot: ce.SuggestedSlot(),
		})
		return
	}

	switch {
	case errors.Is(err, service.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Message: err.Error()})
	case errors.Is(err, service.ErrInvalidTarget), errors.Is(err, service.ErrInvalidTransition):
		writeJSON(w, http.StatusBadRequest, errorBody{Message: err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, errorBody{Message: err.Error()})
	}
}

func decodeBody(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorBody{Message: msg})
}
