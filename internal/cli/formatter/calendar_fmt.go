package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/mheikkola/metronome/internal/calendar"
)

// FormatMonth renders a Monday-first month grid. Days carrying key dates are
// highlighted, today gets the accent color, and the month's entries are
// listed under the grid with the per-day overflow collapsed into a "+N".
func FormatMonth(g calendar.Grid, today time.Time) string {
	var b strings.Builder

	title := fmt.Sprintf("%s %d", g.Month.String(), g.Year)
	b.WriteString(StyleHeader.Render(title) + "\n")
	b.WriteString(Dim("Mo Tu We Th Fr Sa Su") + "\n")

	col := 0
	for i := 0; i < g.LeadingBlanks; i++ {
		b.WriteString("   ")
		col++
	}

	ty, tm, td := today.Date()
	for _, day := range g.Days {
		cell := fmt.Sprintf("%2d", day.Day)
		switch {
		case ty == g.Year && tm == g.Month && td == day.Day:
			cell = StyleHeader.Render(cell)
		case len(day.Entries) > 0:
			cell = StyleGreen.Render(cell)
		default:
			cell = StyleFg.Render(cell)
		}
		b.WriteString(cell)

		col++
		if col == 7 {
			b.WriteString("\n")
			col = 0
		} else {
			b.WriteString(" ")
		}
	}
	if col != 0 {
		b.WriteString("\n")
	}

	entryLines := formatEntryLines(g)
	if len(entryLines) > 0 {
		b.WriteString("\n")
		for _, line := range entryLines {
			b.WriteString(line + "\n")
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

func formatEntryLines(g calendar.Grid) []string {
	var lines []string
	for _, day := range g.Days {
		for _, e := range day.Visible() {
			label := e.Title
			if e.Emoji != "" {
				label = e.Emoji + " " + label
			}
			line := fmt.Sprintf("%s %s", Dim(fmt.Sprintf("%2d", day.Day)), StyleFg.Render(label))
			if e.Category != "" {
				line += " " + Dim("("+e.Category+")")
			}
			lines = append(lines, line)
		}
		if n := day.Overflow(); n > 0 {
			lines = append(lines, fmt.Sprintf("%s %s", Dim("  "), Dim(fmt.Sprintf("+%d more", n))))
		}
	}
	return lines
}
