package models

import "time"

// ReminderRecord marks that a reminder of the given type was sent to a user
// for an event. Existence of the row is the sole dedup signal: rows are
// inserted once after a confirmed send and never updated.
type ReminderRecord struct {
	EventID      int       `json:"event_id"`
	UserID       int64     `json:"user_id"`
	ReminderType string    `json:"reminder_type"`
	SentAt       time.Time `json:"sent_at"`
}

// RateLimitCounter is a fixed-window counter row with lazy expiry cleanup.
type RateLimitCounter struct {
	Scope       string    `json:"scope"`
	Identifier  string    `json:"identifier"`
	WindowStart time.Time `json:"window_start"`
	Count       int       `json:"count"`
	ExpiresAt   time.Time `json:"expires_at"`
}
