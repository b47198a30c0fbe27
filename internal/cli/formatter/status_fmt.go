package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/mheikkola/metronome/internal/classify"
	"github.com/mheikkola/metronome/internal/domain"
)

// FormatStatus formats the dashboard snapshot for the status command: pulse
// line, needs-attention block, then the calm remainder.
func FormatStatus(sum *domain.SyncSummary, p classify.Partition, actions map[string][]domain.ActionItem, now time.Time) string {
	var b strings.Builder

	b.WriteString(RenderPulse(sum))
	b.WriteString("\n\n")

	b.WriteString(Header("Needs attention") + "\n")
	if len(p.NeedsAttention) == 0 {
		b.WriteString(Dim("Nothing on fire.") + "\n")
	}
	for _, ini := range p.NeedsAttention {
		b.WriteString(formatInitiativeLine(ini, actions[ini.ID], now) + "\n")
	}

	b.WriteString("\n" + Header("In progress") + "\n")
	if len(p.InProgress) == 0 {
		b.WriteString(Dim("No active initiatives.") + "\n")
	}
	for _, ini := range p.InProgress {
		b.WriteString(formatInitiativeLine(ini, actions[ini.ID], now) + "\n")
	}

	return RenderBox("Metronome", strings.TrimRight(b.String(), "\n"))
}

func formatInitiativeLine(ini *domain.Initiative, items []domain.ActionItem, now time.Time) string {
	done := 0
	for _, a := range items {
		if a.Status == domain.ActionDone {
			done++
		}
	}

	parts := []string{
		PriorityIndicator(ini.Priority),
		Bold(PadRight(ini.Title, 28)),
		FunctionBadge(ini.FunctionTag),
		Dim(fmt.Sprintf("%d/%d done", done, len(items))),
	}

	if n := classify.OverdueCount(items, now); n > 0 {
		parts = append(parts, OverdueTag(n))
	}
	if ini.Deadline != nil {
		parts = append(parts, DeadlineStyled(*ini.Deadline, now))
	}
	if ini.OwnerLabel != "" {
		parts = append(parts, Dim(ini.OwnerLabel))
	}

	return strings.Join(parts, "  ")
}
