package mutate

import (
	"time"

	"github.com/mheikkola/metronome/internal/domain"
)

// Snapshot helpers: every optimistic operation deep-copies the affected
// collection before mutating it, so a failed network call can restore the
// exact pre-mutation state. The restore replaces the whole collection,
// not individual fields.

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

func cloneActions(items []domain.ActionItem) []domain.ActionItem {
	if items == nil {
		return nil
	}
	out := make([]domain.ActionItem, len(items))
	for i, item := range items {
		item.Deadline = cloneTime(item.Deadline)
		item.CompletedAt = cloneTime(item.CompletedAt)
		out[i] = item
	}
	return out
}

func cloneInitiatives(inis []*domain.Initiative) []*domain.Initiative {
	if inis == nil {
		return nil
	}
	out := make([]*domain.Initiative, len(inis))
	for i, ini := range inis {
		c := *ini
		c.Deadline = cloneTime(ini.Deadline)
		out[i] = &c
	}
	return out
}

func cloneDecisions(decs []*domain.Decision) []*domain.Decision {
	if decs == nil {
		return nil
	}
	out := make([]*domain.Decision, len(decs))
	for i, d := range decs {
		c := *d
		c.Deadline = cloneTime(d.Deadline)
		out[i] = &c
	}
	return out
}
