package cli

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mheikkola/metronome/internal/meeting"
)

func TestMeetingSummaryRetryKeepsTypedFields(t *testing.T) {
	fake, _, _ := seededFake()
	fake.SyncErr = errors.New("backend down")
	app := newTestApp(t, "editor", fake)

	session, err := app.Orch.StartMeeting()
	require.NoError(t, err)
	mv := newMeetingView(app, session)

	draft, err := session.End()
	require.NoError(t, err)
	mv.draft = draft

	// The form inputs bind to the meeting view's fields, so the typed
	// values survive the wizard being popped on completion.
	mv.fields = summaryFields{
		Notes:         "ran long on dredging",
		NextSyncDate:  "2026-09-03",
		NextSyncFocus: "permits",
	}

	first := newMeetingSummaryView(app, draft, &mv.fields).(*wizardView)
	first.done()()
	require.Equal(t, meeting.StateEnding, session.State())
	require.Nil(t, fake.CreatedRecord)

	// Retry from the meeting view reopens the form over the same fields
	// and submits what was typed the first time.
	fake.SyncErr = nil
	_, retryCmd := mv.handleKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'s'}})
	push, ok := retryCmd().(pushViewMsg)
	require.True(t, ok)
	retry, ok := push.view.(*wizardView)
	require.True(t, ok)
	retry.done()()

	require.NotNil(t, fake.CreatedRecord)
	assert.Equal(t, "ran long on dredging", fake.CreatedRecord.Notes)
	assert.Equal(t, "2026-09-03", fake.CreatedRecord.NextSyncDate)
	assert.Equal(t, "permits", fake.CreatedRecord.NextSyncFocus)
	assert.Equal(t, meeting.StateIdle, session.State())
}
