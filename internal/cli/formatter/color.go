package formatter

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mheikkola/metronome/internal/domain"
)

// Gruvbox-inspired color palette.
var (
	ColorGreen  = lipgloss.Color("#8ec07c")
	ColorYellow = lipgloss.Color("#fabd2f")
	ColorRed    = lipgloss.Color("#fb4934")
	ColorBlue   = lipgloss.Color("#83a598")
	ColorPurple = lipgloss.Color("#d3869b")
	ColorDim    = lipgloss.Color("#928374")
	ColorFg     = lipgloss.Color("#ebdbb2")
	ColorHeader = lipgloss.Color("#fe8019")
)

// Predefined lipgloss styles.
var (
	StyleGreen  = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleYellow = lipgloss.NewStyle().Foreground(ColorYellow)
	StyleRed    = lipgloss.NewStyle().Foreground(ColorRed)
	StyleBlue   = lipgloss.NewStyle().Foreground(ColorBlue)
	StylePurple = lipgloss.NewStyle().Foreground(ColorPurple)
	StyleDim    = lipgloss.NewStyle().Foreground(ColorDim)
	StyleFg     = lipgloss.NewStyle().Foreground(ColorFg)
	StyleHeader = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
	StyleBold   = lipgloss.NewStyle().Foreground(ColorFg).Bold(true)
)

// PriorityColor returns the lipgloss style for an initiative priority.
func PriorityColor(p domain.InitiativePriority) lipgloss.Style {
	switch p {
	case domain.PriorityCritical:
		return StyleRed
	case domain.PriorityHigh:
		return StyleYellow
	case domain.PriorityStrategic:
		return StyleBlue
	case domain.PriorityResolved:
		return StyleDim
	default:
		return StyleDim
	}
}

// PriorityIndicator returns a colored priority indicator such as "● CRITICAL".
func PriorityIndicator(p domain.InitiativePriority) string {
	switch p {
	case domain.PriorityCritical:
		return StyleRed.Render("● CRITICAL")
	case domain.PriorityHigh:
		return StyleYellow.Render("● HIGH")
	case domain.PriorityStrategic:
		return StyleBlue.Render("● STRATEGIC")
	case domain.PriorityResolved:
		return StyleDim.Render("✔ RESOLVED")
	default:
		return StyleDim.Render("● UNKNOWN")
	}
}

// ActionStatusPill returns a colored status indicator for an action item.
func ActionStatusPill(status domain.ActionStatus) string {
	switch status {
	case domain.ActionPending:
		return StyleBlue.Render("○")
	case domain.ActionInProgress:
		return StyleYellow.Render("◐")
	case domain.ActionDone:
		return StyleGreen.Render("✔")
	default:
		return StyleDim.Render("·")
	}
}

// ActionPriorityTag returns a short colored tag for an action priority.
// Normal priority renders as empty: the common case carries no noise.
func ActionPriorityTag(p domain.ActionPriority) string {
	switch p {
	case domain.ActionUrgent:
		return StyleRed.Render("[urgent]")
	case domain.ActionImportant:
		return StyleYellow.Render("[important]")
	default:
		return ""
	}
}

// FunctionBadge returns a capitalized, purple-styled function tag label.
func FunctionBadge(tag domain.FunctionTag) string {
	s := string(tag)
	if s == "" {
		return StyleDim.Render("--")
	}
	label := strings.ToUpper(s[:1]) + s[1:]
	return StylePurple.Render(label)
}

// OverdueTag returns the red overdue marker, or empty when count is zero.
func OverdueTag(count int) string {
	if count <= 0 {
		return ""
	}
	return StyleRed.Render(fmt.Sprintf("⚑ %d overdue", count))
}

// Header renders a section header with the orange header style and an underline.
func Header(text string) string {
	upper := strings.ToUpper(text)
	line := strings.Repeat("─", len(upper))
	return fmt.Sprintf("%s\n%s", StyleHeader.Render(upper), StyleDim.Render(line))
}

// Dim renders text in the muted/dim color.
func Dim(text string) string {
	return StyleDim.Render(text)
}

// Bold renders text in bold with the foreground color.
func Bold(text string) string {
	return StyleBold.Render(text)
}
