package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/mheikkola/metronome/internal/api"
	"github.com/mheikkola/metronome/internal/domain"
	"github.com/mheikkola/metronome/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var orchNow = time.Date(2026, 4, 10, 8, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return orchNow }

func allPerms() domain.Permissions {
	return domain.Permissions{CanEdit: true, CanCreate: true, CanRunMeeting: true}
}

func TestRefresh_GroupsBulkActionsByInitiative(t *testing.T) {
	a := testutil.NewInitiative("A")
	b := testutil.NewInitiative("B")
	fake := &testutil.FakeClient{
		InitiativesResult: []*domain.Initiative{a, b},
		ActionsResult: []domain.ActionItem{
			testutil.NewAction(a.ID, "a1"),
			testutil.NewAction(b.ID, "b1"),
			testutil.NewAction(a.ID, "a2"),
		},
	}

	o := New(fake, allPerms(), fixedClock)
	require.NoError(t, o.Refresh(context.Background()))

	assert.Len(t, o.Store().ActionsFor(a.ID), 2)
	assert.Len(t, o.Store().ActionsFor(b.ID), 1)

	// One bulk call, never one fetch per initiative.
	bulk := 0
	for _, call := range fake.Calls {
		if call == "ListActionItems" {
			bulk++
		}
	}
	assert.Equal(t, 1, bulk)
}

func TestRefresh_FailureLeavesMirrorUntouched(t *testing.T) {
	seeded := testutil.NewInitiative("seeded")
	fake := &testutil.FakeClient{InitiativesResult: []*domain.Initiative{seeded}}
	o := New(fake, allPerms(), fixedClock)
	require.NoError(t, o.Refresh(context.Background()))

	fake.FetchErr = api.ErrUnavailable
	err := o.Refresh(context.Background())
	require.Error(t, err)

	require.Len(t, o.Store().Initiatives(), 1, "half-fetched bundle must not replace the mirror")
	assert.Equal(t, seeded.ID, o.Store().Initiatives()[0].ID)
}

func TestMonthNavigation_Refetches(t *testing.T) {
	fake := &testutil.FakeClient{}
	o := New(fake, allPerms(), fixedClock)

	require.NoError(t, o.NextMonth(context.Background()))
	y, m := o.Month()
	assert.Equal(t, 2026, y)
	assert.Equal(t, time.May, m)
	assert.Contains(t, fake.Calls, "ListKeyDates")

	require.NoError(t, o.PrevMonth(context.Background()))
	_, m = o.Month()
	assert.Equal(t, time.April, m)
}

func TestMutations_GatedByPermissions(t *testing.T) {
	fake := &testutil.FakeClient{}
	o := New(fake, domain.Permissions{}, fixedClock)

	assert.ErrorIs(t, o.ToggleAction(context.Background(), "a"), ErrNotPermitted)
	assert.ErrorIs(t, o.Decide(context.Background(), "d", "text"), ErrNotPermitted)
	assert.ErrorIs(t, o.Defer(context.Background(), "d"), ErrNotPermitted)
	assert.ErrorIs(t, o.ResolveInitiative(context.Background(), "i"), ErrNotPermitted)

	_, err := o.CreateInitiative(context.Background(), domain.InitiativeDraft{Title: "x"})
	assert.ErrorIs(t, err, ErrNotPermitted)

	_, err = o.StartMeeting()
	assert.ErrorIs(t, err, ErrNotPermitted)

	assert.Empty(t, fake.Calls, "denied operations never reach the network")
}

func TestMeetingRights_AllowMutationsWithoutEdit(t *testing.T) {
	a := testutil.NewInitiative("A")
	fake := &testutil.FakeClient{
		InitiativesResult: []*domain.Initiative{a},
		ActionsResult:     []domain.ActionItem{testutil.NewAction(a.ID, "a1")},
	}
	o := New(fake, domain.Permissions{CanRunMeeting: true}, fixedClock)
	require.NoError(t, o.Refresh(context.Background()))

	id := o.Store().ActionsFor(a.ID)[0].ID
	require.NoError(t, o.ToggleAction(context.Background(), id))

	// Facilitator without edit rights gets the two-state toggle.
	assert.False(t, o.Store().EditMode())
	assert.Equal(t, domain.ActionDone, o.Store().ActionsFor(a.ID)[0].Status)
}

func TestStartMeeting_AgendaOrderNeedsAttentionFirst(t *testing.T) {
	yesterday := orchNow.AddDate(0, 0, -1)
	critical := testutil.NewInitiative("critical", testutil.WithPriority(domain.PriorityCritical))
	calm := testutil.NewInitiative("calm", testutil.WithPriority(domain.PriorityStrategic))
	overdue := testutil.NewInitiative("overdue")

	fake := &testutil.FakeClient{
		InitiativesResult: []*domain.Initiative{calm, critical, overdue},
		ActionsResult: []domain.ActionItem{
			testutil.NewAction(overdue.ID, "late", testutil.WithDeadline(yesterday)),
		},
	}
	o := New(fake, allPerms(), fixedClock)
	require.NoError(t, o.Refresh(context.Background()))

	s, err := o.StartMeeting()
	require.NoError(t, err)

	agenda := s.Agenda()
	require.Len(t, agenda, 3)
	assert.Equal(t, critical.ID, agenda[0].ID)
	assert.Equal(t, overdue.ID, agenda[1].ID)
	assert.Equal(t, calm.ID, agenda[2].ID)
}

func TestSaveMeetingSummary_Refetches(t *testing.T) {
	fake := &testutil.FakeClient{}
	o := New(fake, allPerms(), fixedClock)
	require.NoError(t, o.Refresh(context.Background()))

	s, err := o.StartMeeting()
	require.NoError(t, err)
	_, err = s.End()
	require.NoError(t, err)

	before := len(fake.Calls)
	rec, err := o.SaveMeetingSummary(context.Background(), "notes", "2026-04-17", "hiring")
	require.NoError(t, err)
	require.NotNil(t, rec)

	assert.Contains(t, fake.Calls[before:], "CreateSync")
	assert.Contains(t, fake.Calls[before:], "FetchSummary", "saving a summary triggers a full refetch")
}

func TestSortedActionsFor_UsesCanonicalOrder(t *testing.T) {
	a := testutil.NewInitiative("A")
	fake := &testutil.FakeClient{
		InitiativesResult: []*domain.Initiative{a},
		ActionsResult: []domain.ActionItem{
			testutil.NewAction(a.ID, "done-urgent", testutil.WithStatus(domain.ActionDone), testutil.WithActionPriority(domain.ActionUrgent)),
			testutil.NewAction(a.ID, "pending-normal", testutil.WithSortOrder(1)),
			testutil.NewAction(a.ID, "pending-urgent", testutil.WithActionPriority(domain.ActionUrgent), testutil.WithSortOrder(2)),
		},
	}
	o := New(fake, allPerms(), fixedClock)
	require.NoError(t, o.Refresh(context.Background()))

	sorted := o.SortedActionsFor(a.ID)
	require.Len(t, sorted, 3)
	assert.Equal(t, "pending-urgent", sorted[0].Title)
	assert.Equal(t, "pending-normal", sorted[1].Title)
	assert.Equal(t, "done-urgent", sorted[2].Title)
}
