package domain

import "time"

// KeyDate is a calendar-anchored marker supplied by the backend.
// Read-only to this subsystem.
type KeyDate struct {
	ID       string    `json:"id"`
	Date     time.Time `json:"date"`
	Title    string    `json:"title"`
	Category string    `json:"category"`
	Emoji    string    `json:"emoji,omitempty"`
}
