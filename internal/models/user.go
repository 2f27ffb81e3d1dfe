package models

import "time"

type UserStatus string

const (
	UserActive   UserStatus = "active"
	UserInvited  UserStatus = "invited"
	UserInactive UserStatus = "inactive"
)

type User struct {
	ID            int64      `json:"id"`
	Name          string     `json:"name"`
	Email         string     `json:"email"`
	Phone         *string    `json:"phone,omitempty"`
	SmsOptIn      bool       `json:"sms_opt_in"`
	SmsOptedOutAt *time.Time `json:"sms_opted_out_at,omitempty"`
	Status        UserStatus `json:"status"`
}

// ReminderEligible reports whether the user may receive SMS reminders.
// Eligibility is recomputed from current state on every sweep.
func (u User) ReminderEligible() bool {
	return u.Status == UserActive &&
		u.SmsOptIn &&
		u.SmsOptedOutAt == nil &&
		u.Phone != nil && *u.Phone != ""
}
