package models

import "time"

type EventStatus string

const (
	EventUpcoming  EventStatus = "upcoming"
	EventCompleted EventStatus = "completed"
	EventCancelled EventStatus = "cancelled"
)

// Event is a scheduled club dinner. EventDate and EventTime are civil fields
// in the club's configured zone; the absolute instant is always recomputed
// from them, never stored.
type Event struct {
	ID                int         `json:"id"`
	RestaurantName    string      `json:"restaurant_name"`
	RestaurantAddress string      `json:"restaurant_address"`
	EventDate         time.Time   `json:"event_date"`
	EventTime         string      `json:"event_time,omitempty"`
	Status            EventStatus `json:"status"`
	CreatedAt         time.Time   `json:"created_at"`
}
