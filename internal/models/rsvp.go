package models

import "time"

type RsvpStatus string

const (
	RsvpYes   RsvpStatus = "yes"
	RsvpNo    RsvpStatus = "no"
	RsvpMaybe RsvpStatus = "maybe"
)

// Rsvp is the single reply record per (event, user). A fresh member response
// from any channel supersedes an earlier admin override and clears the
// override markers.
type Rsvp struct {
	EventID         int        `json:"event_id"`
	UserID          int64      `json:"user_id"`
	Status          RsvpStatus `json:"status"`
	Comments        *string    `json:"comments,omitempty"`
	AdminOverride   bool       `json:"admin_override"`
	AdminOverrideBy *string    `json:"admin_override_by,omitempty"`
	AdminOverrideAt *time.Time `json:"admin_override_at,omitempty"`
	ViaCalendar     bool       `json:"via_calendar"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// RecipientFilter narrows a broadcast's recipient set beyond the standard
// reminder eligibility rules. Zero values mean no extra filtering.
type RecipientFilter struct {
	RsvpStatus RsvpStatus
	UserID     int64
}
