package domain

// Permissions is supplied by the host environment; role resolution happens
// outside this subsystem.
type Permissions struct {
	CanEdit       bool `json:"can_edit"`
	CanCreate     bool `json:"can_create"`
	CanRunMeeting bool `json:"can_run_meeting"`
}

// CanMutate reports whether mutation-capable operations should be enabled.
// Edit rights and meeting-facilitation rights both qualify.
func (p Permissions) CanMutate() bool {
	return p.CanEdit || p.CanRunMeeting
}
