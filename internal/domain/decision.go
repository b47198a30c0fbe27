package domain

import "time"

// Decision is an open question requiring resolution. The open -> decided
// transition is terminal: nothing in this subsystem reopens a decision.
// "Deferred" is a transient command, not a stored state: deferral simply
// removes the decision from the active view.
type Decision struct {
	ID           string         `json:"id"`
	Question     string         `json:"question"`
	FunctionTag  FunctionTag    `json:"function_tag"`
	Deadline     *time.Time     `json:"deadline,omitempty"`
	Status       DecisionStatus `json:"status"`
	DecisionText string         `json:"decision_text,omitempty"`
}
