package domain

type FunctionTag string

const (
	FunctionBD           FunctionTag = "bd"
	FunctionConstruction FunctionTag = "construction"
	FunctionHR           FunctionTag = "hr"
	FunctionFinance      FunctionTag = "finance"
	FunctionLegal        FunctionTag = "legal"
	FunctionStrategy     FunctionTag = "strategy"
	FunctionService      FunctionTag = "service"
)

// ValidFunctionTags is the canonical set of accepted function tag strings.
var ValidFunctionTags = map[string]bool{
	"bd": true, "construction": true, "hr": true, "finance": true,
	"legal": true, "strategy": true, "service": true,
}

type InitiativePriority string

const (
	PriorityCritical  InitiativePriority = "critical"
	PriorityHigh      InitiativePriority = "high"
	PriorityStrategic InitiativePriority = "strategic"
	PriorityResolved  InitiativePriority = "resolved"
)

type ActionStatus string

const (
	ActionPending    ActionStatus = "pending"
	ActionInProgress ActionStatus = "in_progress"
	ActionDone       ActionStatus = "done"
)

// NextTwoState flips done <-> pending. Used outside edit mode, where the
// only meaningful gesture is checking an item off or unchecking it.
func (s ActionStatus) NextTwoState() ActionStatus {
	if s == ActionDone {
		return ActionPending
	}
	return ActionDone
}

// NextThreeState cycles pending -> in_progress -> done -> pending.
func (s ActionStatus) NextThreeState() ActionStatus {
	switch s {
	case ActionPending:
		return ActionInProgress
	case ActionInProgress:
		return ActionDone
	default:
		return ActionPending
	}
}

type ActionPriority string

const (
	ActionUrgent    ActionPriority = "urgent"
	ActionImportant ActionPriority = "important"
	ActionNormal    ActionPriority = "normal"
)

// Weight returns the sort weight of an action priority (lower = earlier).
func (p ActionPriority) Weight() int {
	switch p {
	case ActionUrgent:
		return 0
	case ActionImportant:
		return 1
	default:
		return 2
	}
}

type DecisionStatus string

const (
	DecisionOpen    DecisionStatus = "open"
	DecisionDecided DecisionStatus = "decided"
)
