package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/ayushbirla71/restaurant-backend/internal/models"
)

var (
	// ErrNotFound is returned when a booking, table, floor or waiting list
	// entry id does not resolve.
	ErrNotFound = errors.New("not found")

	// ErrInvalidTarget is returned when an operation targets a table that is
	// not in an acceptable state, e.g. reassigning onto a non-AVAILABLE table.
	ErrInvalidTarget = errors.New("invalid target table")

	// ErrInvalidTransition is returned for status changes outside the
	// transition table.
	ErrInvalidTransition = errors.New("invalid status transition")
)

// SuggestionBufferMinutes is added after a conflicting booking's end when
// proposing an alternative slot.
const SuggestionBufferMinutes = 5

// ConflictError reports a time-window overlap with an existing booking,
// carrying the full conflict payload and a suggested alternative. It is never
// resolved silently unless the caller explicitly confirmed auto-scheduling.
type ConflictError struct {
	Conflict      models.Booking
	ConflictEnd   time.Time
	SuggestedTime time.Time
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("booking conflict with %s until %s, next slot %s",
		e.Conflict.CustomerName,
		e.ConflictEnd.Format(time.RFC3339),
		e.SuggestedTime.Format("15:04"))
}

// SuggestedSlot formats the suggested time as an HH:MM slot string.
func (e *ConflictError) SuggestedSlot() string {
	return e.SuggestedTime.Format("15:04")
}

// newConflictError derives the end of the conflicting booking and the
// suggested retry time (conflict end plus a 5 minute buffer).
func newConflictError(conflict *models.Booking) *ConflictError {
	_, end := conflict.Window()
	return &ConflictError{
		Conflict:      *conflict,
		ConflictEnd:   end,
		SuggestedTime: end.Add(SuggestionBufferMinutes * time.Minute),
	}
}

// AsConflict unwraps a ConflictError if err carries one.
func AsConflict(err error) (*ConflictError, bool) {
	var ce *ConflictError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}
