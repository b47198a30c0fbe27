package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mheikkola/metronome/internal/calendar"
	"github.com/mheikkola/metronome/internal/cli/formatter"
	"github.com/mheikkola/metronome/internal/classify"
	"github.com/mheikkola/metronome/internal/dashboard"
	"github.com/mheikkola/metronome/internal/domain"
)

// ── messages ─────────────────────────────────────────────────────────────────

// dashboardLoadedMsg signals that a refresh completed.
type dashboardLoadedMsg struct {
	err error
}

// mutationDoneMsg signals that a mutation round trip finished. Failures are
// already reflected in the store as rollback notices; a permission error is
// surfaced in the flash line instead.
type mutationDoneMsg struct {
	err error
}

// ── focus ────────────────────────────────────────────────────────────────────

type dashFocus int

const (
	focusInitiatives dashFocus = iota
	focusDecisions
)

// ── view ─────────────────────────────────────────────────────────────────────

// dashboardView is the home screen: initiatives partitioned into the
// needs-attention and in-progress sections, the open decision queue, and the
// key-date calendar for the visible month.
type dashboardView struct {
	app     *App
	loading bool
	err     error

	focus          dashFocus
	cursor         int // into the flattened agenda order
	decisionCursor int
	showCalendar   bool

	// flash is a one-shot message line, mostly for permission denials.
	flash string
}

func newDashboardView(app *App) *dashboardView {
	return &dashboardView{app: app, loading: true}
}

func (v *dashboardView) ID() ViewID    { return ViewDashboard }
func (v *dashboardView) Title() string { return "Dashboard" }

func (v *dashboardView) ShortHelp() []key.Binding {
	bindings := []key.Binding{
		key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "focus")),
		key.NewBinding(key.WithKeys("1"), key.WithHelp("1-9", "toggle action")),
		key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "decide")),
		key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "defer")),
		key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new")),
		key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "resolve")),
		key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "meeting")),
		key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "calendar")),
		key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
	}
	return bindings
}

func (v *dashboardView) Init() tea.Cmd {
	return v.loadData()
}

func (v *dashboardView) loadData() tea.Cmd {
	orch := v.app.Orch
	return func() tea.Msg {
		return dashboardLoadedMsg{err: orch.Refresh(context.Background())}
	}
}

// agenda returns the initiatives in display order: needs-attention first.
func (v *dashboardView) agenda() []*domain.Initiative {
	p := v.app.Orch.Partitions()
	out := make([]*domain.Initiative, 0, len(p.NeedsAttention)+len(p.InProgress))
	out = append(out, p.NeedsAttention...)
	return append(out, p.InProgress...)
}

func (v *dashboardView) selectedInitiative() *domain.Initiative {
	agenda := v.agenda()
	if v.cursor >= len(agenda) {
		return nil
	}
	return agenda[v.cursor]
}

func (v *dashboardView) selectedDecision() *domain.Decision {
	open := v.app.Orch.Store().OpenDecisions()
	if v.decisionCursor >= len(open) {
		return nil
	}
	return open[v.decisionCursor]
}

func (v *dashboardView) clampCursors() {
	if n := len(v.agenda()); v.cursor >= n {
		v.cursor = max(0, n-1)
	}
	if n := len(v.app.Orch.Store().OpenDecisions()); v.decisionCursor >= n {
		v.decisionCursor = max(0, n-1)
	}
}

// runMutation wraps a store/orchestrator call in a tea.Cmd.
func runMutation(fn func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		return mutationDoneMsg{err: fn(context.Background())}
	}
}

// ── update ───────────────────────────────────────────────────────────────────

func (v *dashboardView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case dashboardLoadedMsg:
		v.loading = false
		v.err = msg.err
		v.clampCursors()
		return v, nil

	case mutationDoneMsg:
		if errors.Is(msg.err, dashboard.ErrNotPermitted) {
			v.flash = "Your role cannot do that."
		}
		v.clampCursors()
		return v, nil

	case refreshViewMsg:
		v.loading = true
		return v, v.loadData()

	case tea.KeyMsg:
		return v.handleKey(msg)
	}

	return v, nil
}

func (v *dashboardView) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	v.flash = ""
	orch := v.app.Orch

	switch msg.String() {
	case "up", "k":
		if v.focus == focusDecisions {
			if v.decisionCursor > 0 {
				v.decisionCursor--
			}
		} else if v.cursor > 0 {
			v.cursor--
		}

	case "down", "j":
		if v.focus == focusDecisions {
			if v.decisionCursor < len(v.app.Orch.Store().OpenDecisions())-1 {
				v.decisionCursor++
			}
		} else if v.cursor < len(v.agenda())-1 {
			v.cursor++
		}

	case "tab":
		if v.focus == focusInitiatives {
			v.focus = focusDecisions
		} else {
			v.focus = focusInitiatives
		}

	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		ini := v.selectedInitiative()
		if ini == nil {
			break
		}
		actions := orch.SortedActionsFor(ini.ID)
		idx := int(msg.String()[0] - '1')
		if idx < len(actions) {
			id := actions[idx].ID
			return v, runMutation(func(ctx context.Context) error {
				return orch.ToggleAction(ctx, id)
			})
		}

	case "d":
		if d := v.selectedDecision(); d != nil {
			if !v.app.Orch.Perms().CanMutate() {
				v.flash = "Your role cannot do that."
				break
			}
			return v, pushView(newDecideView(v.app, d))
		}

	case "f":
		if d := v.selectedDecision(); d != nil {
			id := d.ID
			return v, runMutation(func(ctx context.Context) error {
				return orch.Defer(ctx, id)
			})
		}

	case "n":
		if !v.app.Orch.Perms().CanCreate {
			v.flash = "Your role cannot do that."
			break
		}
		return v, pushView(newCreateInitiativeView(v.app))

	case "e":
		ini := v.selectedInitiative()
		if ini == nil {
			break
		}
		if !v.app.Orch.Perms().CanEdit {
			v.flash = "Your role cannot do that."
			break
		}
		id, title := ini.ID, ini.Title
		confirmed := false
		form := wizardConfirm(fmt.Sprintf("Mark %q resolved?", title), &confirmed)
		return v, pushView(newWizardView("Resolve", form, func() tea.Cmd {
			if !confirmed {
				return nil
			}
			return runMutation(func(ctx context.Context) error {
				return orch.ResolveInitiative(ctx, id)
			})
		}))

	case "m":
		session, err := orch.StartMeeting()
		if err != nil {
			if errors.Is(err, dashboard.ErrNotPermitted) {
				v.flash = "Your role cannot run meetings."
			}
			break
		}
		return v, pushView(newMeetingView(v.app, session))

	case "c":
		v.showCalendar = !v.showCalendar

	case "]":
		v.loading = true
		return v, func() tea.Msg {
			return dashboardLoadedMsg{err: orch.NextMonth(context.Background())}
		}

	case "[":
		v.loading = true
		return v, func() tea.Msg {
			return dashboardLoadedMsg{err: orch.PrevMonth(context.Background())}
		}

	case "r":
		v.loading = true
		v.err = nil
		return v, v.loadData()
	}

	return v, nil
}

// ── rendering ────────────────────────────────────────────────────────────────

const dashLeftPaneWidth = 46

func (v *dashboardView) View() string {
	if v.loading {
		return "\n  " + formatter.Dim("Loading...")
	}
	if v.err != nil {
		return "\n  " + formatter.StyleRed.Render("Error: "+v.err.Error()) +
			"\n  " + formatter.Dim("r: retry")
	}

	var b strings.Builder

	b.WriteString("\n  " + formatter.RenderPulse(v.app.Orch.Store().Summary()) + "\n\n")

	left := v.renderLeftPane()
	right := v.renderRightPane()

	leftCol := lipgloss.NewStyle().Width(dashLeftPaneWidth).Render(left)
	divider := formatter.Dim("│")
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, leftCol, " "+divider+" ", right))

	b.WriteString("\n" + v.renderDecisions())

	if v.flash != "" {
		b.WriteString("\n  " + formatter.StyleYellow.Render(v.flash))
	}

	return b.String()
}

func (v *dashboardView) renderLeftPane() string {
	p := v.app.Orch.Partitions()
	now := time.Now()
	store := v.app.Orch.Store()

	var b strings.Builder
	idx := 0

	writeSection := func(title string, items []*domain.Initiative, emptyText string) {
		b.WriteString(formatter.StyleHeader.Render(title) + "\n")
		if len(items) == 0 {
			b.WriteString("  " + formatter.Dim(emptyText) + "\n")
		}
		for _, ini := range items {
			cursor := "  "
			nameStyle := formatter.StyleFg
			if v.focus == focusInitiatives && idx == v.cursor {
				cursor = formatter.StyleGreen.Render("▸ ")
				nameStyle = formatter.StyleBold
			}

			line := cursor + formatter.PriorityColor(ini.Priority).Render("●") + " " +
				nameStyle.Render(formatter.PadRight(ini.Title, 24))
			if n := classify.OverdueCount(store.ActionsFor(ini.ID), now); n > 0 {
				line += " " + formatter.OverdueTag(n)
			}
			b.WriteString(line + "\n")
			idx++
		}
		b.WriteString("\n")
	}

	writeSection("NEEDS ATTENTION", p.NeedsAttention, "Nothing on fire.")
	writeSection("IN PROGRESS", p.InProgress, "No active initiatives.")

	return strings.TrimRight(b.String(), "\n")
}

func (v *dashboardView) renderRightPane() string {
	if v.showCalendar {
		return formatter.FormatMonth(v.app.Orch.Grid(), calendar.Today(time.Now()))
	}

	ini := v.selectedInitiative()
	if ini == nil {
		return formatter.Dim("Select an initiative to see its actions.")
	}

	now := time.Now()
	var b strings.Builder

	b.WriteString(formatter.StyleBold.Render(ini.Title) + "\n")
	b.WriteString(formatter.PriorityIndicator(ini.Priority) + "  " + formatter.FunctionBadge(ini.FunctionTag))
	if ini.OwnerLabel != "" {
		b.WriteString("  " + formatter.Dim(ini.OwnerLabel))
	}
	if ini.Deadline != nil {
		b.WriteString("  " + formatter.DeadlineStyled(*ini.Deadline, now))
	}
	b.WriteString("\n")
	if ini.Description != "" {
		b.WriteString(formatter.Dim(ini.Description) + "\n")
	}
	b.WriteString("\n")

	actions := v.app.Orch.SortedActionsFor(ini.ID)
	if len(actions) == 0 {
		b.WriteString(formatter.Dim("No action items.") + "\n")
	}
	for i, a := range actions {
		line := fmt.Sprintf("%s %s %s",
			formatter.Dim(fmt.Sprintf("%d", i+1)),
			formatter.ActionStatusPill(a.Status),
			formatter.StyleFg.Render(a.Title))
		if tag := formatter.ActionPriorityTag(a.Priority); tag != "" {
			line += " " + tag
		}
		if a.Deadline != nil && a.Status != domain.ActionDone {
			line += " " + formatter.DeadlineStyled(*a.Deadline, now)
		}
		b.WriteString(line + "\n")
	}

	return strings.TrimRight(b.String(), "\n")
}

func (v *dashboardView) renderDecisions() string {
	open := v.app.Orch.Store().OpenDecisions()

	var b strings.Builder
	b.WriteString("  " + formatter.StyleHeader.Render("OPEN DECISIONS") + "\n")
	if len(open) == 0 {
		b.WriteString("  " + formatter.Dim("No open decisions.") + "\n")
	}
	now := time.Now()
	for i, d := range open {
		cursor := "  "
		style := formatter.StyleFg
		if v.focus == focusDecisions && i == v.decisionCursor {
			cursor = formatter.StyleGreen.Render("▸ ")
			style = formatter.StyleBold
		}
		line := "  " + cursor + style.Render(formatter.PadRight(d.Question, 48)) +
			" " + formatter.FunctionBadge(d.FunctionTag)
		if d.Deadline != nil {
			line += " " + formatter.DeadlineStyled(*d.Deadline, now)
		}
		b.WriteString(line + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
