package models

import "time"

type PollStatus string

const (
	PollActive PollStatus = "active"
	PollClosed PollStatus = "closed"
)

type Poll struct {
	ID                  int        `json:"id"`
	Status              PollStatus `json:"status"`
	WinningRestaurantID *int       `json:"winning_restaurant_id,omitempty"`
	WinningEventDate    *time.Time `json:"winning_event_date,omitempty"`
	EventID             *int       `json:"event_id,omitempty"`
}

// PollWinner is the chosen restaurant and date with vote counts recomputed
// inside the closing transaction, scoped to the poll being closed.
type PollWinner struct {
	RestaurantID      int
	RestaurantName    string
	RestaurantAddress string
	RestaurantVotes   int
	EventDate         time.Time
	DateVotes         int
}
