package domain

import "time"

// Initiative is a tracked strategic effort. Initiatives are never physically
// deleted by this subsystem: resolving one sets Archived, restoring clears it.
type Initiative struct {
	ID            string             `json:"id"`
	Title         string             `json:"title"`
	Description   string             `json:"description,omitempty"`
	FunctionTag   FunctionTag        `json:"function_tag"`
	Priority      InitiativePriority `json:"priority"`
	OwnerLabel    string             `json:"owner_label,omitempty"`
	StatusLabel   string             `json:"status_label,omitempty"`
	Deadline      *time.Time         `json:"deadline,omitempty"`
	DeadlineLabel string             `json:"deadline_label,omitempty"`
	Archived      bool               `json:"archived"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

// InitiativeDraft carries the user-supplied fields for initiative creation.
// The server assigns the canonical ID.
type InitiativeDraft struct {
	Title         string             `json:"title"`
	Description   string             `json:"description,omitempty"`
	FunctionTag   FunctionTag        `json:"function_tag"`
	Priority      InitiativePriority `json:"priority"`
	OwnerLabel    string             `json:"owner_label,omitempty"`
	StatusLabel   string             `json:"status_label,omitempty"`
	Deadline      *time.Time         `json:"deadline,omitempty"`
	DeadlineLabel string             `json:"deadline_label,omitempty"`
}

// InitiativePatch holds optional field edits for an initiative.
// Nil fields are left unchanged.
type InitiativePatch struct {
	Title       *string             `json:"title,omitempty"`
	Priority    *InitiativePriority `json:"priority,omitempty"`
	OwnerLabel  *string             `json:"owner_label,omitempty"`
	StatusLabel *string             `json:"status_label,omitempty"`
	Deadline    *time.Time          `json:"deadline,omitempty"`
	Archived    *bool               `json:"archived,omitempty"`
}
