package domain

import "time"

// MeetingRecord is the artifact produced when a live sync session ends.
// Write-once: it is appended to the sync log and never mutated afterwards.
type MeetingRecord struct {
	ID                   string    `json:"id"`
	SyncDate             string    `json:"sync_date"`
	Title                string    `json:"title"`
	Notes                string    `json:"notes,omitempty"`
	StartedAt            time.Time `json:"started_at"`
	EndedAt              time.Time `json:"ended_at"`
	DurationSeconds      int       `json:"duration_seconds"`
	NextSyncDate         string    `json:"next_sync_date,omitempty"`
	NextSyncFocus        string    `json:"next_sync_focus,omitempty"`
	ItemsDiscussed       int       `json:"items_discussed"`
	DecisionsMade        int       `json:"decisions_made"`
	ActionItemsCompleted int       `json:"action_items_completed"`
	CreatedAt            time.Time `json:"created_at"`
}
