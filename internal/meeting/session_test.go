package meeting

import (
	"context"
	"testing"
	"time"

	"github.com/mheikkola/metronome/internal/api"
	"github.com/mheikkola/metronome/internal/domain"
	"github.com/mheikkola/metronome/internal/mutate"
	"github.com/mheikkola/metronome/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sessionStart = time.Date(2026, 7, 6, 10, 0, 0, 0, time.UTC)

// testClock lets a test move time forward explicitly.
type testClock struct{ t time.Time }

func (c *testClock) Now() time.Time          { return c.t }
func (c *testClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newRunningSession(t *testing.T, fake *testutil.FakeClient, agendaSize int) (*Session, *mutate.Store, *testClock) {
	t.Helper()
	clock := &testClock{t: sessionStart}
	store := mutate.NewStore(fake, clock.Now)

	var agenda []*domain.Initiative
	for i := 0; i < agendaSize; i++ {
		agenda = append(agenda, testutil.NewInitiative("agenda item"))
	}
	store.Load(mutate.Bundle{Initiatives: agenda})

	s := NewSession(store, clock.Now)
	s.Start(agenda)
	return s, store, clock
}

func TestSession_StartInitializesState(t *testing.T) {
	s, _, _ := newRunningSession(t, &testutil.FakeClient{}, 3)

	assert.Equal(t, StateRunning, s.State())
	assert.Equal(t, 0, s.CurrentIndex())
	assert.Equal(t, 0, s.DiscussedCount())
	assert.Equal(t, 0, s.DecisionsMade())
}

func TestMarkDiscussed_Idempotent(t *testing.T) {
	s, _, _ := newRunningSession(t, &testutil.FakeClient{}, 3)

	s.MarkDiscussed()
	s.MarkDiscussed()

	assert.Equal(t, 1, s.DiscussedCount())
	assert.True(t, s.Discussed(s.Agenda()[0].ID))
}

func TestAdvance_ClampsAtEnd(t *testing.T) {
	s, _, _ := newRunningSession(t, &testutil.FakeClient{}, 2)

	s.Advance()
	assert.Equal(t, 1, s.CurrentIndex())

	s.Advance()
	assert.Equal(t, 1, s.CurrentIndex(), "advance past the end is a no-op on the cursor")
	assert.Equal(t, 2, s.DiscussedCount(), "but the last item still gets marked")
}

func TestJumpTo_DoesNotMarkDiscussed(t *testing.T) {
	s, _, _ := newRunningSession(t, &testutil.FakeClient{}, 4)

	s.JumpTo(2)
	assert.Equal(t, 2, s.CurrentIndex())
	assert.Equal(t, 0, s.DiscussedCount())

	s.JumpTo(99)
	assert.Equal(t, 2, s.CurrentIndex(), "out-of-range jump ignored")
}

func TestQuickDecide_CountsOnlySessionActivity(t *testing.T) {
	fake := &testutil.FakeClient{}
	s, store, _ := newRunningSession(t, fake, 1)

	dec := testutil.NewDecision("Vendor A or B?")
	other := testutil.NewDecision("Pre-existing decided question", testutil.Decided("done before session"))
	store.Load(mutate.Bundle{Decisions: []*domain.Decision{dec, other}})

	require.NoError(t, s.QuickDecide(context.Background(), dec.ID, "Vendor B"))
	assert.Equal(t, 1, s.DecisionsMade())
	assert.Equal(t, domain.DecisionDecided, dec.Status)
}

func TestQuickDecide_FailureDoesNotCount(t *testing.T) {
	fake := &testutil.FakeClient{DecideErr: api.ErrServerRejected}
	s, store, _ := newRunningSession(t, fake, 1)

	dec := testutil.NewDecision("Vendor A or B?")
	store.Load(mutate.Bundle{Decisions: []*domain.Decision{dec}})

	err := s.QuickDecide(context.Background(), dec.ID, "Vendor B")
	require.Error(t, err)
	assert.Equal(t, 0, s.DecisionsMade())
}

func TestQuickDecide_NoOpDoesNotCount(t *testing.T) {
	fake := &testutil.FakeClient{}
	s, store, _ := newRunningSession(t, fake, 1)

	dec := testutil.NewDecision("Vendor A or B?", testutil.Decided("settled last week"))
	store.Load(mutate.Bundle{Decisions: []*domain.Decision{dec}})

	// Deciding an already-decided or unknown decision converges without a
	// transition, so neither may move the counter.
	require.NoError(t, s.QuickDecide(context.Background(), dec.ID, "Vendor B"))
	require.NoError(t, s.QuickDecide(context.Background(), "no-such-id", "Vendor B"))

	assert.Equal(t, 0, s.DecisionsMade())
	assert.Equal(t, "settled last week", dec.DecisionText)
	assert.Empty(t, fake.Calls)
}

func TestEnd_SummaryMath(t *testing.T) {
	fake := &testutil.FakeClient{}
	s, _, clock := newRunningSession(t, fake, 4)

	s.Advance()
	s.Advance()
	s.Advance()
	clock.Advance(125 * time.Second)

	draft, err := s.End()
	require.NoError(t, err)

	assert.Equal(t, StateEnding, s.State())
	assert.Equal(t, 125, draft.DurationSeconds)
	assert.Equal(t, 3, draft.ItemsDiscussed)
	assert.Equal(t, 0, draft.DecisionsMade)
}

func TestEnd_DurationFloorsSubSecond(t *testing.T) {
	s, _, clock := newRunningSession(t, &testutil.FakeClient{}, 1)

	clock.Advance(90*time.Second + 900*time.Millisecond)
	draft, err := s.End()
	require.NoError(t, err)
	assert.Equal(t, 90, draft.DurationSeconds)
}

func TestElapsed_WallClockNotAccumulated(t *testing.T) {
	s, _, clock := newRunningSession(t, &testutil.FakeClient{}, 1)

	clock.Advance(30 * time.Second)
	assert.Equal(t, 30*time.Second, s.Elapsed(clock.Now()))

	// Elapsed is recomputed from timestamps on every call, so a "missed
	// tick" cannot cause drift.
	clock.Advance(45 * time.Second)
	assert.Equal(t, 75*time.Second, s.Elapsed(clock.Now()))
}

func TestElapsed_FrozenWhileEnding(t *testing.T) {
	s, _, clock := newRunningSession(t, &testutil.FakeClient{}, 1)

	clock.Advance(60 * time.Second)
	_, err := s.End()
	require.NoError(t, err)

	clock.Advance(10 * time.Minute)
	assert.Equal(t, 60*time.Second, s.Elapsed(clock.Now()), "summary form open: timer frozen at elapsed-at-end")
}

func TestSaveSummary_BuildsRecordAndReturnsToIdle(t *testing.T) {
	fake := &testutil.FakeClient{}
	s, store, clock := newRunningSession(t, fake, 3)

	// One completed action during the meeting contributes to the global
	// done count in the record.
	ini := s.Agenda()[0]
	act := testutil.NewAction(ini.ID, "send minutes")
	store.Load(mutate.Bundle{
		Initiatives: s.Agenda(),
		Actions:     map[string][]domain.ActionItem{ini.ID: {act}},
	})
	require.NoError(t, s.ToggleAction(context.Background(), act.ID))

	s.Advance()
	s.Advance()
	clock.Advance(40 * time.Minute)
	_, err := s.End()
	require.NoError(t, err)

	rec, err := s.SaveSummary(context.Background(), "good pace", "2026-07-13", "budget review")
	require.NoError(t, err)

	assert.Equal(t, StateIdle, s.State())
	assert.Equal(t, "2026-07-06", rec.SyncDate)
	assert.Equal(t, 40*60, rec.DurationSeconds)
	assert.Equal(t, 2, rec.ItemsDiscussed)
	assert.Equal(t, 1, rec.ActionItemsCompleted)
	assert.Equal(t, "2026-07-13", rec.NextSyncDate)
	assert.Equal(t, "budget review", rec.NextSyncFocus)
	assert.Equal(t, sessionStart, rec.StartedAt)
	assert.Equal(t, sessionStart.Add(40*time.Minute), rec.EndedAt)
}

func TestSaveSummary_FailureRetainsEnding(t *testing.T) {
	fake := &testutil.FakeClient{SyncErr: api.ErrUnavailable}
	s, _, clock := newRunningSession(t, fake, 1)

	clock.Advance(time.Minute)
	_, err := s.End()
	require.NoError(t, err)

	_, err = s.SaveSummary(context.Background(), "typed notes", "", "")
	require.Error(t, err)
	assert.Equal(t, StateEnding, s.State(), "failed save must not discard the summary form")

	// Backend recovers; the same session can still be saved.
	fake.SyncErr = nil
	rec, err := s.SaveSummary(context.Background(), "typed notes", "", "")
	require.NoError(t, err)
	assert.Equal(t, StateIdle, s.State())
	assert.Equal(t, 60, rec.DurationSeconds)
}

func TestCancel_DiscardsCountersButNotConfirmedMutations(t *testing.T) {
	fake := &testutil.FakeClient{}
	s, store, _ := newRunningSession(t, fake, 2)

	ini := s.Agenda()[0]
	act := testutil.NewAction(ini.ID, "confirmed during session")
	store.Load(mutate.Bundle{
		Initiatives: s.Agenda(),
		Actions:     map[string][]domain.ActionItem{ini.ID: {act}},
	})
	require.NoError(t, s.ToggleAction(context.Background(), act.ID))
	s.Advance()

	s.Cancel()

	assert.Equal(t, StateIdle, s.State())
	assert.Equal(t, 0, s.DiscussedCount())
	assert.Nil(t, fake.CreatedRecord, "no meeting record persisted")
	assert.Equal(t, domain.ActionDone, store.ActionsFor(ini.ID)[0].Status,
		"already-confirmed mutations are not rolled back")
}

func TestOperationsOutsideRunning(t *testing.T) {
	store := mutate.NewStore(&testutil.FakeClient{}, nil)
	s := NewSession(store, nil)

	_, err := s.End()
	assert.ErrorIs(t, err, ErrNotRunning)

	assert.ErrorIs(t, s.QuickDecide(context.Background(), "d", "text"), ErrNotRunning)
	assert.ErrorIs(t, s.ToggleAction(context.Background(), "a"), ErrNotRunning)

	_, err = s.SaveSummary(context.Background(), "", "", "")
	assert.ErrorIs(t, err, ErrNotEnding)

	// No-ops, not panics.
	s.MarkDiscussed()
	s.Advance()
	s.JumpTo(3)
	assert.Equal(t, 0, s.DiscussedCount())
}
