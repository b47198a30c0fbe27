package domain

import "time"

// ActionItem is a unit of work under exactly one Initiative. It is owned by
// the initiative conceptually but identified and mutated independently.
//
// Invariant: CompletedAt is non-nil if and only if Status == ActionDone.
type ActionItem struct {
	ID           string         `json:"id"`
	InitiativeID string         `json:"initiative_id"`
	Title        string         `json:"title"`
	Status       ActionStatus   `json:"status"`
	Priority     ActionPriority `json:"priority"`
	Deadline     *time.Time     `json:"deadline,omitempty"`
	CompletedAt  *time.Time     `json:"completed_at,omitempty"`
	SortOrder    int            `json:"sort_order"`
}

// SetStatus applies a status transition and keeps the CompletedAt invariant:
// entering done stamps now, leaving done clears it.
func (a *ActionItem) SetStatus(status ActionStatus, now time.Time) {
	a.Status = status
	if status == ActionDone {
		t := now
		a.CompletedAt = &t
	} else {
		a.CompletedAt = nil
	}
}

// ActionPatch holds optional field edits for an action item.
type ActionPatch struct {
	Title    *string       `json:"title,omitempty"`
	Status   *ActionStatus `json:"status,omitempty"`
	Deadline *time.Time    `json:"deadline,omitempty"`
}
