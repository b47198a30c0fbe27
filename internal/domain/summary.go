package domain

// SyncSummary is a server-computed aggregate backing the pulse bar.
// Recomputed on every fetch; never mutated locally.
type SyncSummary struct {
	ActiveInitiatives int     `json:"active_initiatives"`
	OpenDecisions     int     `json:"open_decisions"`
	OverdueActions    int     `json:"overdue_actions"`
	OverdueDecisions  int     `json:"overdue_decisions"`
	OnTrackPct        float64 `json:"on_track_pct"`
	LastSyncDate      string  `json:"last_sync_date,omitempty"`
	NextSyncDate      string  `json:"next_sync_date,omitempty"`
}
