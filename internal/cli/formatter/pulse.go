package formatter

import (
	"fmt"
	"strings"

	"github.com/mheikkola/metronome/internal/domain"
)

const (
	filledBlock = "█"
	emptyBlock  = "░"

	pulseBarWidth = 12
)

// RenderPulse renders the dashboard pulse line: an on-track bar plus the
// headline counts from the server-computed summary.
func RenderPulse(sum *domain.SyncSummary) string {
	if sum == nil {
		return Dim("No summary available.")
	}

	bar := renderBar(sum.OnTrackPct/100.0, pulseBarWidth)

	parts := []string{
		fmt.Sprintf("%s %s on track", bar, Bold(fmt.Sprintf("%.0f%%", sum.OnTrackPct))),
		fmt.Sprintf("%s active", Bold(fmt.Sprintf("%d", sum.ActiveInitiatives))),
		fmt.Sprintf("%s open decisions", Bold(fmt.Sprintf("%d", sum.OpenDecisions))),
	}

	overdue := sum.OverdueActions + sum.OverdueDecisions
	if overdue > 0 {
		parts = append(parts, StyleRed.Render(fmt.Sprintf("%d overdue", overdue)))
	}
	if sum.NextSyncDate != "" {
		parts = append(parts, Dim("next sync "+sum.NextSyncDate))
	}

	return strings.Join(parts, Dim("  ·  "))
}

// renderBar renders a fill bar colored by ratio: green >=2/3, yellow >=1/3,
// red below.
func renderBar(ratio float64, width int) string {
	if ratio < 0 {
		ratio = 0
	}
	if ratio > 1 {
		ratio = 1
	}
	if width < 2 {
		width = 2
	}

	filled := int(ratio * float64(width))
	if filled > width {
		filled = width
	}
	bar := strings.Repeat(filledBlock, filled) + strings.Repeat(emptyBlock, width-filled)

	style := StyleGreen
	if ratio < 0.33 {
		style = StyleRed
	} else if ratio < 0.66 {
		style = StyleYellow
	}
	return "[" + style.Render(bar) + "]"
}
