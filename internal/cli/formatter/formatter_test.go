package formatter

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mheikkola/metronome/internal/calendar"
	"github.com/mheikkola/metronome/internal/classify"
	"github.com/mheikkola/metronome/internal/domain"
	"github.com/mheikkola/metronome/internal/testutil"
)

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// stripANSI removes escape codes so assertions are terminal-independent.
func stripANSI(s string) string {
	return ansiPattern.ReplaceAllString(s, "")
}

func TestRenderPulse_Counts(t *testing.T) {
	out := stripANSI(RenderPulse(&domain.SyncSummary{
		ActiveInitiatives: 5,
		OpenDecisions:     2,
		OverdueActions:    3,
		OverdueDecisions:  1,
		OnTrackPct:        60,
		NextSyncDate:      "2026-06-22",
	}))

	assert.Contains(t, out, "60% on track")
	assert.Contains(t, out, "5 active")
	assert.Contains(t, out, "2 open decisions")
	assert.Contains(t, out, "4 overdue")
	assert.Contains(t, out, "next sync 2026-06-22")
}

func TestRenderPulse_NilSummary(t *testing.T) {
	assert.Contains(t, stripANSI(RenderPulse(nil)), "No summary")
}

func TestFormatClock(t *testing.T) {
	assert.Equal(t, "00:00", FormatClock(0))
	assert.Equal(t, "02:05", FormatClock(125))
	assert.Equal(t, "1:00:01", FormatClock(3601))
	assert.Equal(t, "00:00", FormatClock(-4))
}

func TestFormatMonth_GridShape(t *testing.T) {
	// June 2026 starts on a Monday: no leading blanks, first row is 1..7.
	entries := []domain.KeyDate{
		{Date: time.Date(2026, 6, 15, 0, 0, 0, 0, time.Local), Title: "board meeting", Category: "finance"},
		{Date: time.Date(2026, 6, 15, 0, 0, 0, 0, time.Local), Title: "audit kickoff"},
		{Date: time.Date(2026, 6, 15, 0, 0, 0, 0, time.Local), Title: "site visit"},
	}
	g := calendar.MonthGrid(2026, time.June, entries)
	today := time.Date(2026, 6, 10, 0, 0, 0, 0, time.Local)

	out := stripANSI(FormatMonth(g, today))

	assert.Contains(t, out, "June 2026")
	assert.Contains(t, out, "Mo Tu We Th Fr Sa Su")
	assert.Contains(t, out, " 1  2  3  4  5  6  7")
	assert.Contains(t, out, "board meeting")
	assert.Contains(t, out, "(finance)")
	// Third entry on the 15th collapses into the overflow marker.
	assert.Contains(t, out, "+1 more")
	assert.NotContains(t, out, "site visit")
}

func TestFormatStatus_Sections(t *testing.T) {
	now := time.Date(2026, 6, 15, 9, 0, 0, 0, time.UTC)
	yesterday := now.AddDate(0, 0, -1)

	hot := testutil.NewInitiative("Fire drill", testutil.WithPriority(domain.PriorityCritical))
	calm := testutil.NewInitiative("Steady work")
	overdue := testutil.NewInitiative("Late one")

	actions := map[string][]domain.ActionItem{
		overdue.ID: {testutil.NewAction(overdue.ID, "slipped", testutil.WithDeadline(yesterday))},
		calm.ID:    {testutil.NewAction(calm.ID, "ok", testutil.WithStatus(domain.ActionDone))},
	}
	p := classify.Classify([]*domain.Initiative{hot, calm, overdue}, actions, now)

	out := stripANSI(FormatStatus(&domain.SyncSummary{OnTrackPct: 50}, p, actions, now))

	assert.Contains(t, out, "NEEDS ATTENTION")
	assert.Contains(t, out, "IN PROGRESS")
	assert.Contains(t, out, "Fire drill")
	assert.Contains(t, out, "Late one")
	assert.Contains(t, out, "1 overdue")
	assert.Contains(t, out, "Steady work")
	assert.Contains(t, out, "1/1 done")
}

func TestPadRight(t *testing.T) {
	assert.Equal(t, "abc  ", PadRight("abc", 5))
	assert.Equal(t, "abcd…", PadRight("abcdefg", 5))
}
