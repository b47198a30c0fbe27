package cli

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mheikkola/metronome/internal/cli/formatter"
	"github.com/mheikkola/metronome/internal/meeting"
)

// noticeTickMsg drives periodic repaints so transient notices disappear on
// schedule even when the user is idle.
type noticeTickMsg time.Time

func noticeTick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return noticeTickMsg(t)
	})
}

// appModel is the root bubbletea Model for the TUI.
// It manages a view stack, the header, and the transient notice area.
type appModel struct {
	app       *App
	viewStack []View
	width     int
	height    int
	quitting  bool
}

func newAppModel(app *App) appModel {
	return appModel{
		app:       app,
		viewStack: []View{newDashboardView(app)},
	}
}

// activeView returns the top view on the stack, or nil.
func (m *appModel) activeView() View {
	if len(m.viewStack) == 0 {
		return nil
	}
	return m.viewStack[len(m.viewStack)-1]
}

// setActiveView replaces the top of the view stack.
func (m *appModel) setActiveView(v View) {
	if len(m.viewStack) > 0 {
		m.viewStack[len(m.viewStack)-1] = v
	}
}

// meetingLive reports whether a sync session is running or waiting on its
// summary. Quitting is guarded while live so elapsed time and session
// counters are not silently discarded.
func (m *appModel) meetingLive() bool {
	return m.app.Orch.Session().State() != meeting.StateIdle
}

// ── bubbletea interface ──────────────────────────────────────────────────────

func (m appModel) Init() tea.Cmd {
	var cmds []tea.Cmd
	if v := m.activeView(); v != nil {
		cmds = append(cmds, v.Init())
	}
	cmds = append(cmds, noticeTick())
	return tea.Batch(cmds...)
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if v := m.activeView(); v != nil {
			updated, cmd := v.Update(msg)
			m.setActiveView(updated.(View))
			return m, cmd
		}
		return m, nil

	case noticeTickMsg:
		return m, noticeTick()

	case tea.KeyMsg:
		return m.handleKey(msg)

	case pushViewMsg:
		m.viewStack = append(m.viewStack, msg.view)
		return m, msg.view.Init()

	case popViewMsg:
		if len(m.viewStack) > 1 {
			m.viewStack = m.viewStack[:len(m.viewStack)-1]
		}
		return m, nil

	case replaceViewMsg:
		if len(m.viewStack) > 0 {
			m.viewStack[len(m.viewStack)-1] = msg.view
		} else {
			m.viewStack = append(m.viewStack, msg.view)
		}
		return m, msg.view.Init()

	case refreshViewMsg:
		// Broadcast to ALL views in the stack so underlying views reload
		// after mutations made in views above them.
		var cmds []tea.Cmd
		for i, v := range m.viewStack {
			updated, cmd := v.Update(msg)
			m.viewStack[i] = updated.(View)
			if cmd != nil {
				cmds = append(cmds, cmd)
			}
		}
		return m, tea.Batch(cmds...)

	case wizardCompleteMsg:
		// Atomically pop the wizard view and execute the follow-up command.
		if len(m.viewStack) > 1 {
			m.viewStack = m.viewStack[:len(m.viewStack)-1]
		}
		return m, tea.Batch(msg.nextCmd, refreshViews())

	case quitMsg:
		m.quitting = true
		return m, tea.Quit
	}

	if v := m.activeView(); v != nil {
		updated, cmd := v.Update(msg)
		m.setActiveView(updated.(View))
		return m, cmd
	}

	return m, nil
}

func (m appModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Global quit, guarded while a meeting is live.
	if msg.Type == tea.KeyCtrlC {
		if m.meetingLive() {
			return m, m.forwardKey(msg)
		}
		m.quitting = true
		return m, tea.Quit
	}

	// Wizard forms receive all characters, including 'q' and Esc.
	if v := m.activeView(); v != nil && v.ID() == ViewForm {
		return m, m.forwardKey(msg)
	}

	switch {
	case msg.String() == "q":
		if m.meetingLive() {
			return m, m.forwardKey(msg)
		}
		m.quitting = true
		return m, tea.Quit

	case msg.Type == tea.KeyEsc:
		if m.meetingLive() {
			return m, m.forwardKey(msg)
		}
		if len(m.viewStack) > 1 {
			m.viewStack = m.viewStack[:len(m.viewStack)-1]
			return m, nil
		}
		return m, nil
	}

	return m, m.forwardKey(msg)
}

// forwardKey routes a key to the active view.
func (m *appModel) forwardKey(msg tea.KeyMsg) tea.Cmd {
	v := m.activeView()
	if v == nil {
		return nil
	}
	updated, cmd := v.Update(msg)
	m.setActiveView(updated.(View))
	return cmd
}

func (m appModel) View() string {
	if m.quitting {
		return ""
	}

	var sections []string
	sections = append(sections, m.renderHeader())

	if v := m.activeView(); v != nil {
		sections = append(sections, v.View())
	}

	if notices := m.renderNotices(); notices != "" {
		sections = append(sections, notices)
	}
	sections = append(sections, m.renderStatusBar())

	result := strings.Join(sections, "\n")

	// Pad to terminal height to prevent stale line artifacts from
	// bubbletea's line-diff renderer in alt-screen mode.
	if m.height > 0 {
		lines := strings.Count(result, "\n") + 1
		if lines < m.height {
			result += strings.Repeat("\n", m.height-lines)
		}
	}

	return result
}

// ── rendering helpers ────────────────────────────────────────────────────────

func (m *appModel) renderHeader() string {
	title := formatter.StylePurple.Render("metronome")

	var crumbs []string
	for _, v := range m.viewStack {
		if t := v.Title(); t != "" {
			crumbs = append(crumbs, t)
		}
	}
	breadcrumb := ""
	if len(crumbs) > 0 {
		breadcrumb = " " + formatter.Dim("›") + " " + formatter.Dim(strings.Join(crumbs, " › "))
	}

	header := title + breadcrumb
	header += "  " + formatter.Dim("[") + formatter.StyleGreen.Render(m.app.Config.Role) + formatter.Dim("]")

	sep := formatter.Dim(strings.Repeat("─", max(m.width, 20)))
	return header + "\n" + sep
}

// renderNotices shows the store's live rollback and failure notices.
func (m *appModel) renderNotices() string {
	notices := m.app.Orch.Store().ActiveNotices(time.Now())
	if len(notices) == 0 {
		return ""
	}
	var lines []string
	for _, n := range notices {
		lines = append(lines, formatter.StyleYellow.Render("⚠ "+n.Text))
	}
	return strings.Join(lines, "\n")
}

func (m *appModel) renderStatusBar() string {
	var hints []string
	if v := m.activeView(); v != nil {
		for _, b := range v.ShortHelp() {
			hints = append(hints, formatter.Dim(b.Help().Key+": "+b.Help().Desc))
		}
	}
	if len(m.viewStack) > 1 {
		hints = append(hints, formatter.Dim("esc: back"))
	}

	bar := strings.Join(hints, "  ")
	sep := formatter.Dim(strings.Repeat("─", max(m.width, 20)))
	return sep + "\n" + bar
}
