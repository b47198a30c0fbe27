package cli

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mheikkola/metronome/internal/config"
	"github.com/mheikkola/metronome/internal/dashboard"
	"github.com/mheikkola/metronome/internal/domain"
	"github.com/mheikkola/metronome/internal/teatest"
	"github.com/mheikkola/metronome/internal/testutil"
)

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

func stripANSI(s string) string {
	return ansiPattern.ReplaceAllString(s, "")
}

func newTestApp(t *testing.T, role string, fake *testutil.FakeClient) *App {
	t.Helper()
	cfg := config.Default()
	cfg.Role = role
	require.NoError(t, cfg.Validate())

	return &App{
		Config:        cfg,
		Client:        fake,
		Orch:          dashboard.New(fake, cfg.Permissions(), time.Now),
		IsInteractive: func() bool { return true },
	}
}

// seededFake returns a client with one needs-attention initiative, one
// in-progress initiative, and an open decision.
func seededFake() (*testutil.FakeClient, *domain.Initiative, domain.ActionItem) {
	critical := testutil.NewInitiative("Berth dredging", testutil.WithPriority(domain.PriorityCritical))
	routine := testutil.NewInitiative("Crane overhaul")
	action := testutil.NewAction(critical.ID, "Book survey vessel")

	return &testutil.FakeClient{
		SummaryResult: &domain.SyncSummary{
			OnTrackPct:        80,
			ActiveInitiatives: 2,
			OpenDecisions:     1,
		},
		InitiativesResult: []*domain.Initiative{critical, routine},
		ActionsResult:     []domain.ActionItem{action},
		DecisionsResult:   []*domain.Decision{testutil.NewDecision("Pick dredging vendor")},
	}, critical, action
}

func TestAppModel_DashboardRendersBundle(t *testing.T) {
	fake, _, _ := seededFake()
	app := newTestApp(t, "editor", fake)

	d := teatest.Run(t, newAppModel(app), 120, 40)
	view := stripANSI(d.View())

	assert.Contains(t, view, "NEEDS ATTENTION")
	assert.Contains(t, view, "Berth dredging")
	assert.Contains(t, view, "IN PROGRESS")
	assert.Contains(t, view, "Crane overhaul")
	assert.Contains(t, view, "OPEN DECISIONS")
	assert.Contains(t, view, "Pick dredging vendor")
	assert.Contains(t, view, "[editor]")
	assert.Contains(t, view, "80% on track")
}

func TestAppModel_ToggleActionTwoStateForFacilitator(t *testing.T) {
	fake, _, action := seededFake()
	app := newTestApp(t, "facilitator", fake)

	d := teatest.Run(t, newAppModel(app), 120, 40)
	d.Press("1")

	assert.Contains(t, fake.Calls, "ToggleActionItem "+action.ID)
}

func TestAppModel_ToggleActionCyclesForEditor(t *testing.T) {
	fake, _, action := seededFake()
	app := newTestApp(t, "editor", fake)

	// Edit rights switch the store to the three-state cycle, which goes
	// through the patch endpoint instead of the toggle command.
	d := teatest.Run(t, newAppModel(app), 120, 40)
	d.Press("1")

	assert.Contains(t, fake.Calls, "UpdateActionItem "+action.ID)
	assert.NotContains(t, fake.Calls, "ToggleActionItem "+action.ID)
}

func TestAppModel_ViewerCannotCreate(t *testing.T) {
	fake, _, _ := seededFake()
	app := newTestApp(t, "viewer", fake)

	d := teatest.Run(t, newAppModel(app), 120, 40)
	d.Press("n")

	assert.Contains(t, stripANSI(d.View()), "Your role cannot do that.")
	assert.NotContains(t, fake.Calls, "CreateInitiative")
}

func TestAppModel_QuitFromDashboard(t *testing.T) {
	fake, _, _ := seededFake()
	app := newTestApp(t, "editor", fake)

	d := teatest.Run(t, newAppModel(app), 120, 40)
	d.Press("q")

	assert.True(t, d.Quit)
}

func TestAppModel_QuitGuardedWhileMeetingLive(t *testing.T) {
	fake, _, _ := seededFake()
	app := newTestApp(t, "editor", fake)

	d := teatest.Run(t, newAppModel(app), 120, 40)
	d.Press("m")
	require.Contains(t, stripANSI(d.View()), "LIVE")

	// q must not quit while the session is running; it asks instead.
	d.Press("q")
	assert.False(t, d.Quit)
	assert.Contains(t, stripANSI(d.View()), "Cancel the meeting?")

	// Backing out of the confirm returns to the live meeting.
	d.Press("esc")
	assert.False(t, d.Quit)
	assert.Contains(t, stripANSI(d.View()), "LIVE")
}

func TestAppModel_FacilitatorCanRunMeetingOnly(t *testing.T) {
	fake, _, _ := seededFake()
	app := newTestApp(t, "facilitator", fake)

	d := teatest.Run(t, newAppModel(app), 120, 40)
	d.Press("m")

	assert.Contains(t, stripANSI(d.View()), "LIVE")
}
