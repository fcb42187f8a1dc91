package models

import "time"

// EventStatus represents the status of an event
type EventStatus string

const (
	StatusPublished EventStatus = "published"
	StatusCancelled EventStatus = "cancelled"
	StatusFinished  EventStatus = "finished"
)

// Event represents an event as reported by the ticketing backend.
type Event struct {
	ID        int         `json:"id"`
	Title     string      `json:"title"`
	Location  string      `json:"location"`
	StartDate time.Time   `json:"start_date"`
	EndDate   time.Time   `json:"end_date"`
	Status    EventStatus `json:"status"`
}

// IsOnSale returns true if the event can currently sell tickets
func (e *Event) IsOnSale() bool {
	return e.Status == StatusPublished && time.Now().Before(e.EndDate)
}
