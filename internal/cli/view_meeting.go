package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mheikkola/metronome/internal/cli/formatter"
	"github.com/mheikkola/metronome/internal/domain"
	"github.com/mheikkola/metronome/internal/meeting"
)

// meetingTickMsg drives the wall clock readout. The elapsed value itself is
// always recomputed from the session's start time, so a missed or delayed
// tick never skews the clock.
type meetingTickMsg time.Time

func meetingTick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return meetingTickMsg(t)
	})
}

// meetingView is the live sync screen: agenda sidebar, the initiative on the
// floor with its action items, and the running clock.
type meetingView struct {
	app     *App
	session *meeting.Session

	// draft holds the prefilled summary after End(), and fields holds the
	// typed wrap-up values, so a failed save can be retried without losing
	// either the frozen counters or the user's notes.
	draft  meeting.SummaryDraft
	fields summaryFields

	flash string
}

func newMeetingView(app *App, session *meeting.Session) *meetingView {
	return &meetingView{app: app, session: session}
}

func (v *meetingView) ID() ViewID    { return ViewMeeting }
func (v *meetingView) Title() string { return "Meeting" }

func (v *meetingView) ShortHelp() []key.Binding {
	return []key.Binding{
		key.NewBinding(key.WithKeys("space"), key.WithHelp("space", "discussed")),
		key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "next")),
		key.NewBinding(key.WithKeys("h", "l"), key.WithHelp("h/l", "jump")),
		key.NewBinding(key.WithKeys("1"), key.WithHelp("1-9", "toggle action")),
		key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "decide")),
		key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "end")),
		key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
	}
}

func (v *meetingView) Init() tea.Cmd {
	return meetingTick()
}

func (v *meetingView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case meetingTickMsg:
		if v.session.State() == meeting.StateRunning {
			return v, meetingTick()
		}
		return v, nil

	case mutationDoneMsg:
		return v, nil

	case refreshViewMsg:
		// The session went idle: summary saved or meeting cancelled.
		if v.session.State() == meeting.StateIdle {
			return v, popView()
		}
		return v, nil

	case tea.KeyMsg:
		return v.handleKey(msg)
	}

	return v, nil
}

func (v *meetingView) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	v.flash = ""

	// While the summary is pending only save, retry, or cancel make sense.
	if v.session.State() == meeting.StateEnding {
		switch msg.String() {
		case "s", "e", "enter":
			return v, pushView(newMeetingSummaryView(v.app, v.draft, &v.fields))
		case "esc", "q", "ctrl+c":
			return v, v.confirmCancel()
		}
		return v, nil
	}

	switch msg.String() {
	case " ":
		v.session.MarkDiscussed()

	case "enter", "n":
		v.session.Advance()

	case "right", "l":
		v.session.JumpTo(v.session.CurrentIndex() + 1)

	case "left", "h":
		v.session.JumpTo(v.session.CurrentIndex() - 1)

	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		current := v.session.Current()
		if current == nil {
			break
		}
		actions := v.app.Orch.SortedActionsFor(current.ID)
		idx := int(msg.String()[0] - '1')
		if idx < len(actions) {
			id := actions[idx].ID
			session := v.session
			return v, runMutation(func(ctx context.Context) error {
				return session.ToggleAction(ctx, id)
			})
		}

	case "d":
		open := v.app.Orch.Store().OpenDecisions()
		if len(open) == 0 {
			v.flash = "No open decisions."
			break
		}
		return v, pushView(newQuickDecideView(v.app, open[0]))

	case "e":
		draft, err := v.session.End()
		if err != nil {
			break
		}
		v.draft = draft
		return v, pushView(newMeetingSummaryView(v.app, draft, &v.fields))

	case "esc", "q", "ctrl+c":
		return v, v.confirmCancel()
	}

	return v, nil
}

// confirmCancel asks before discarding the session. Confirmed action-item
// toggles already went to the backend and stay; only the session-local
// counters are lost.
func (v *meetingView) confirmCancel() tea.Cmd {
	confirmed := false
	form := wizardConfirm("Cancel the meeting? The elapsed time and counters will be discarded.", &confirmed)
	session := v.session
	return pushView(newWizardView("Cancel", form, func() tea.Cmd {
		if !confirmed {
			return nil
		}
		session.Cancel()
		return refreshViews()
	}))
}

// ── rendering ────────────────────────────────────────────────────────────────

const meetingSidebarWidth = 34

func (v *meetingView) View() string {
	var b strings.Builder

	clock := formatter.FormatClock(int(v.session.Elapsed(time.Now()).Seconds()))
	b.WriteString("\n  " + formatter.StyleHeader.Render("● LIVE") + "  " +
		formatter.Bold(clock) + "  " +
		formatter.Dim(fmt.Sprintf("%d/%d discussed · %d decisions",
			v.session.DiscussedCount(), len(v.session.Agenda()), v.session.DecisionsMade())) +
		"\n\n")

	if v.session.State() == meeting.StateEnding {
		b.WriteString("  " + formatter.StyleYellow.Render("Summary not saved yet.") + "\n")
		b.WriteString("  " + formatter.Dim("s: retry summary  esc: cancel meeting") + "\n")
		return b.String()
	}

	sidebar := lipgloss.NewStyle().Width(meetingSidebarWidth).Render(v.renderAgenda())
	divider := formatter.Dim("│")
	floor := v.renderFloor()

	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, sidebar, " "+divider+" ", floor))

	if v.flash != "" {
		b.WriteString("\n  " + formatter.StyleYellow.Render(v.flash))
	}

	return b.String()
}

func (v *meetingView) renderAgenda() string {
	var b strings.Builder
	b.WriteString(formatter.StyleHeader.Render("AGENDA") + "\n")

	for i, ini := range v.session.Agenda() {
		cursor := "  "
		style := formatter.StyleFg
		if i == v.session.CurrentIndex() {
			cursor = formatter.StyleGreen.Render("▸ ")
			style = formatter.StyleBold
		}

		check := formatter.Dim("·")
		if v.session.Discussed(ini.ID) {
			check = formatter.StyleGreen.Render("✔")
		}

		b.WriteString(fmt.Sprintf("%s%s %s\n", cursor, check, style.Render(formatter.PadRight(ini.Title, 26))))
	}

	return strings.TrimRight(b.String(), "\n")
}

func (v *meetingView) renderFloor() string {
	current := v.session.Current()
	if current == nil {
		return formatter.Dim("Agenda is empty.")
	}

	now := time.Now()
	var b strings.Builder

	b.WriteString(formatter.StyleBold.Render(current.Title) + "\n")
	b.WriteString(formatter.PriorityIndicator(current.Priority) + "  " + formatter.FunctionBadge(current.FunctionTag))
	if current.OwnerLabel != "" {
		b.WriteString("  " + formatter.Dim(current.OwnerLabel))
	}
	b.WriteString("\n\n")

	actions := v.app.Orch.SortedActionsFor(current.ID)
	if len(actions) == 0 {
		b.WriteString(formatter.Dim("No action items.") + "\n")
	}
	for i, a := range actions {
		line := fmt.Sprintf("%s %s %s",
			formatter.Dim(fmt.Sprintf("%d", i+1)),
			formatter.ActionStatusPill(a.Status),
			formatter.StyleFg.Render(a.Title))
		if a.Deadline != nil && a.Status != domain.ActionDone {
			line += " " + formatter.DeadlineStyled(*a.Deadline, now)
		}
		b.WriteString(line + "\n")
	}

	return strings.TrimRight(b.String(), "\n")
}
