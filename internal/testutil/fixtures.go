package testutil

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/mheikkola/metronome/internal/domain"
)

var fixtureCounter atomic.Int64

func nextID(prefix string) string {
	return fmt.Sprintf("%s-%03d", prefix, fixtureCounter.Add(1))
}

// Initiative options

type InitiativeOption func(*domain.Initiative)

func WithPriority(p domain.InitiativePriority) InitiativeOption {
	return func(i *domain.Initiative) { i.Priority = p }
}

func WithFunctionTag(tag domain.FunctionTag) InitiativeOption {
	return func(i *domain.Initiative) { i.FunctionTag = tag }
}

func WithInitiativeDeadline(d time.Time) InitiativeOption {
	return func(i *domain.Initiative) { i.Deadline = &d }
}

func Archived() InitiativeOption {
	return func(i *domain.Initiative) { i.Archived = true }
}

func NewInitiative(title string, opts ...InitiativeOption) *domain.Initiative {
	now := time.Now().UTC()
	ini := &domain.Initiative{
		ID:          nextID("ini"),
		Title:       title,
		FunctionTag: domain.FunctionStrategy,
		Priority:    domain.PriorityHigh,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	for _, opt := range opts {
		opt(ini)
	}
	return ini
}

// ActionItem options

type ActionOption func(*domain.ActionItem)

func WithStatus(s domain.ActionStatus) ActionOption {
	return func(a *domain.ActionItem) { a.Status = s }
}

func WithActionPriority(p domain.ActionPriority) ActionOption {
	return func(a *domain.ActionItem) { a.Priority = p }
}

func WithDeadline(d time.Time) ActionOption {
	return func(a *domain.ActionItem) { a.Deadline = &d }
}

func WithSortOrder(n int) ActionOption {
	return func(a *domain.ActionItem) { a.SortOrder = n }
}

func WithCompletedAt(t time.Time) ActionOption {
	return func(a *domain.ActionItem) { a.CompletedAt = &t }
}

func NewAction(initiativeID, title string, opts ...ActionOption) domain.ActionItem {
	a := domain.ActionItem{
		ID:           nextID("act"),
		InitiativeID: initiativeID,
		Title:        title,
		Status:       domain.ActionPending,
		Priority:     domain.ActionNormal,
	}
	for _, opt := range opts {
		opt(&a)
	}
	return a
}

// Decision options

type DecisionOption func(*domain.Decision)

func Decided(text string) DecisionOption {
	return func(d *domain.Decision) {
		d.Status = domain.DecisionDecided
		d.DecisionText = text
	}
}

func WithDecisionDeadline(t time.Time) DecisionOption {
	return func(d *domain.Decision) { d.Deadline = &t }
}

func NewDecision(question string, opts ...DecisionOption) *domain.Decision {
	d := &domain.Decision{
		ID:          nextID("dec"),
		Question:    question,
		FunctionTag: domain.FunctionStrategy,
		Status:      domain.DecisionOpen,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}
