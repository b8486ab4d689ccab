package events

import "time"

// Event is a calendar entry within a profile. RemindAt, when set, schedules
// a push reminder; ReminderSentAt records that the reminder already went out.
type Event struct {
	ID             int64      `json:"id"`
	ProfileID      int64      `json:"profile_id"`
	Title          string     `json:"title"`
	StartsAt       time.Time  `json:"starts_at"`
	AllDay         bool       `json:"all_day"`
	Note           string     `json:"note,omitempty"`
	RemindAt       *time.Time `json:"remind_at,omitempty"`
	ReminderSentAt *time.Time `json:"-"`
	CreatedBy      int64      `json:"created_by"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}
