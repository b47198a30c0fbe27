package cli

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/mheikkola/metronome/internal/cli/formatter"
	"github.com/mheikkola/metronome/internal/domain"
	"github.com/mheikkola/metronome/internal/meeting"
)

// newCreateInitiativeView builds the wizard for creating an initiative.
// Creation is pessimistic: nothing appears on the board until the backend
// confirms, and a server validation message surfaces as a notice.
func newCreateInitiativeView(app *App) View {
	var title, desc, owner, deadline string
	function := string(domain.FunctionStrategy)
	priority := string(domain.PriorityStrategic)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Title").
				Placeholder("Initiative title").
				Value(&title).
				Validate(validateRequired("title")),
			huh.NewInput().
				Title("Description").
				Placeholder("optional").
				Value(&desc),
			huh.NewSelect[string]().
				Title("Function").
				Options(
					huh.NewOption("Business Development", string(domain.FunctionBD)),
					huh.NewOption("Construction", string(domain.FunctionConstruction)),
					huh.NewOption("HR", string(domain.FunctionHR)),
					huh.NewOption("Finance", string(domain.FunctionFinance)),
					huh.NewOption("Legal", string(domain.FunctionLegal)),
					huh.NewOption("Strategy", string(domain.FunctionStrategy)),
					huh.NewOption("Service", string(domain.FunctionService)),
				).
				Value(&function),
			huh.NewSelect[string]().
				Title("Priority").
				Options(
					huh.NewOption("Critical", string(domain.PriorityCritical)),
					huh.NewOption("High", string(domain.PriorityHigh)),
					huh.NewOption("Strategic", string(domain.PriorityStrategic)),
				).
				Value(&priority),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Owner").
				Placeholder("optional").
				Value(&owner),
			huh.NewInput().
				Title("Deadline (YYYY-MM-DD, blank for none)").
				Placeholder("2026-09-30").
				Value(&deadline).
				Validate(validateOptionalDate),
		),
	).WithTheme(metronomeHuhTheme()).WithShowHelp(false)

	done := func() tea.Cmd {
		return func() tea.Msg {
			draft := domain.InitiativeDraft{
				Title:       title,
				Description: desc,
				FunctionTag: domain.FunctionTag(function),
				Priority:    domain.InitiativePriority(priority),
				OwnerLabel:  owner,
			}
			if t, err := time.Parse("2006-01-02", deadline); err == nil {
				draft.Deadline = &t
			}

			// Failure detail lands in the store's notices.
			_, _ = app.Orch.CreateInitiative(context.Background(), draft)
			return refreshViewMsg{}
		}
	}

	return newWizardView("New Initiative", form, done)
}

// newDecideView builds the wizard that records a decision's resolution.
func newDecideView(app *App, d *domain.Decision) View {
	var text string

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Decision").
				Description(d.Question),
			huh.NewInput().
				Title("Resolution").
				Placeholder("What was decided?").
				Value(&text).
				Validate(validateRequired("resolution")),
		),
	).WithTheme(metronomeHuhTheme()).WithShowHelp(false)

	done := func() tea.Cmd {
		id := d.ID
		return func() tea.Msg {
			_ = app.Orch.Decide(context.Background(), id, text)
			return refreshViewMsg{}
		}
	}

	return newWizardView("Decide", form, done)
}

// newQuickDecideView is the meeting-floor variant: it routes through the
// session so the decision counts toward the summary.
func newQuickDecideView(app *App, d *domain.Decision) View {
	var text string

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Quick Decision").
				Description(d.Question),
			huh.NewInput().
				Title("Resolution").
				Value(&text).
				Validate(validateRequired("resolution")),
		),
	).WithTheme(metronomeHuhTheme()).WithShowHelp(false)

	done := func() tea.Cmd {
		id := d.ID
		return func() tea.Msg {
			_ = app.Orch.Session().QuickDecide(context.Background(), id, text)
			return refreshViewMsg{}
		}
	}

	return newWizardView("Decide", form, done)
}

// summaryFields holds the typed wrap-up values. They live on the meeting
// view rather than in the form, so a failed save keeps what the user typed
// and the retry form reopens pre-populated.
type summaryFields struct {
	Notes         string
	NextSyncDate  string
	NextSyncFocus string
}

// newMeetingSummaryView collects the wrap-up fields after End(). The counters
// come prefilled from the session; only notes and next-sync details are typed.
func newMeetingSummaryView(app *App, draft meeting.SummaryDraft, fields *summaryFields) View {
	stats := fmt.Sprintf("%s elapsed · %d items discussed · %d decisions · %d actions completed",
		formatter.FormatClock(draft.DurationSeconds),
		draft.ItemsDiscussed, draft.DecisionsMade, draft.ActionItemsCompleted)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Meeting Summary").
				Description(stats),
			huh.NewText().
				Title("Notes").
				Placeholder("optional").
				Value(&fields.Notes),
			huh.NewInput().
				Title("Next sync (YYYY-MM-DD, blank for none)").
				Value(&fields.NextSyncDate).
				Validate(validateOptionalDate),
			huh.NewInput().
				Title("Next sync focus").
				Placeholder("optional").
				Value(&fields.NextSyncFocus),
		),
	).WithTheme(metronomeHuhTheme()).WithShowHelp(false)

	done := func() tea.Cmd {
		return func() tea.Msg {
			// On failure the session stays in its ending state and the
			// typed values remain on the meeting view for the retry form.
			_, _ = app.Orch.SaveMeetingSummary(context.Background(), fields.Notes, fields.NextSyncDate, fields.NextSyncFocus)
			return refreshViewMsg{}
		}
	}

	return newWizardView("Summary", form, done)
}
