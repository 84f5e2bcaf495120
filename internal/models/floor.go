package models

import "time"

// Floor groups tables for the staff display.
type Floor struct {
	ID          string    `json:"id"`
	FloorNumber int       `json:"floorNumber"`
	Name        string    `json:"name"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	Tables      []Table   `json:"tables,omitempty"`
}
