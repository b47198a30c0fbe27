package classify

import (
	"sort"
	"time"

	"github.com/mheikkola/metronome/internal/domain"
)

// Partition holds the two disjoint classifier outputs. Archived initiatives
// appear in neither.
type Partition struct {
	NeedsAttention []*domain.Initiative
	InProgress     []*domain.Initiative
}

// Overdue reports whether an action item is overdue at the given time.
// An item is overdue when it is not done, has a deadline, and that deadline
// falls on a calendar day strictly before now's day. A deadline equal to
// today is not overdue.
func Overdue(item domain.ActionItem, now time.Time) bool {
	if item.Status == domain.ActionDone || item.Deadline == nil {
		return false
	}
	return dayOf(*item.Deadline).Before(dayOf(now))
}

// OverdueCount counts overdue items in a flat list.
func OverdueCount(items []domain.ActionItem, now time.Time) int {
	n := 0
	for _, item := range items {
		if Overdue(item, now) {
			n++
		}
	}
	return n
}

// SortActions returns a new slice sorted by the canonical rules:
// 1. Completion: non-done before done
// 2. Priority weight: urgent < important < normal
// 3. SortOrder: ascending
// The input slice is never mutated.
func SortActions(items []domain.ActionItem) []domain.ActionItem {
	sorted := make([]domain.ActionItem, len(items))
	copy(sorted, items)

	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]

		// 1. Non-done before done
		aDone, bDone := a.Status == domain.ActionDone, b.Status == domain.ActionDone
		if aDone != bDone {
			return !aDone
		}

		// 2. Priority weight
		if wa, wb := a.Priority.Weight(), b.Priority.Weight(); wa != wb {
			return wa < wb
		}

		// 3. Sort order
		return a.SortOrder < b.SortOrder
	})

	return sorted
}

// Classify partitions initiatives into needs-attention and in-progress.
// An initiative needs attention when any of its action items is overdue or
// its priority is critical. The function is pure and deterministic for a
// fixed (now, initiatives, actions) snapshot; it performs no I/O.
func Classify(initiatives []*domain.Initiative, actionsByInitiative map[string][]domain.ActionItem, now time.Time) Partition {
	var p Partition
	for _, ini := range initiatives {
		if ini.Archived {
			continue
		}
		if NeedsAttention(ini, actionsByInitiative[ini.ID], now) {
			p.NeedsAttention = append(p.NeedsAttention, ini)
		} else {
			p.InProgress = append(p.InProgress, ini)
		}
	}
	return p
}

// NeedsAttention reports whether a single initiative belongs in the
// needs-attention partition.
func NeedsAttention(ini *domain.Initiative, actions []domain.ActionItem, now time.Time) bool {
	if ini.Priority == domain.PriorityCritical {
		return true
	}
	for _, item := range actions {
		if Overdue(item, now) {
			return true
		}
	}
	return false
}

// dayOf truncates a timestamp to its local calendar day.
func dayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
