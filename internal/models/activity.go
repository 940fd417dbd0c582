package models

import "time"

const (
	ActivityEntryCreated = "entry_created"
	ActivityHabitCreated = "habit_created"
	ActivityMoodLogged   = "mood_logged"
)

// ActivityEvent is pushed to a user's open websocket connections after a write.
// It never carries record content.
type ActivityEvent struct {
	Type       string    `json:"type"`
	UserID     string    `json:"-"`
	Collection string    `json:"collection"`
	RecordID   string    `json:"id"`
	Hidden     bool      `json:"hidden,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}
