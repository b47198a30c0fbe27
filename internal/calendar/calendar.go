package calendar

import (
	"time"

	"github.com/mheikkola/metronome/internal/domain"
)

// maxVisiblePerDay caps how many entries a day cell shows before the
// remainder collapses into an overflow count.
const maxVisiblePerDay = 2

// DayCell is one populated day in the month grid.
type DayCell struct {
	Day     int
	Date    time.Time
	Entries []domain.KeyDate
}

// Visible returns the entries to render directly.
func (c DayCell) Visible() []domain.KeyDate {
	if len(c.Entries) <= maxVisiblePerDay {
		return c.Entries
	}
	return c.Entries[:maxVisiblePerDay]
}

// Overflow returns how many entries are hidden behind the "+N" marker.
func (c DayCell) Overflow() int {
	if len(c.Entries) <= maxVisiblePerDay {
		return 0
	}
	return len(c.Entries) - maxVisiblePerDay
}

// Grid is a Monday-first month layout: LeadingBlanks empty cells, then one
// DayCell per day of the month, in a fixed 7-column arrangement.
type Grid struct {
	Year          int
	Month         time.Month
	LeadingBlanks int
	Days          []DayCell
}

// MonthGrid lays the given key dates onto the (year, month) grid. Entries
// whose date falls outside the month are ignored.
func MonthGrid(year int, month time.Month, entries []domain.KeyDate) Grid {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.Local)
	daysInMonth := first.AddDate(0, 1, -1).Day()

	byDay := make(map[int][]domain.KeyDate)
	for _, e := range entries {
		y, m, d := e.Date.Date()
		if y != year || m != month {
			continue
		}
		byDay[d] = append(byDay[d], e)
	}

	g := Grid{
		Year:          year,
		Month:         month,
		LeadingBlanks: mondayOffset(first.Weekday()),
	}
	for day := 1; day <= daysInMonth; day++ {
		g.Days = append(g.Days, DayCell{
			Day:     day,
			Date:    time.Date(year, month, day, 0, 0, 0, 0, time.Local),
			Entries: byDay[day],
		})
	}
	return g
}

// mondayOffset maps a weekday to its column in a Monday-first week.
func mondayOffset(wd time.Weekday) int {
	// time.Weekday is Sunday-first: Sunday=0 ... Saturday=6.
	return (int(wd) + 6) % 7
}

// Today returns the current local calendar day at midnight. Built from local
// date components rather than a UTC-shifted timestamp, so it stays correct
// near midnight in timezones ahead of UTC.
func Today(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, now.Location())
}

// MonthBounds returns the first and last day of a month, for range queries.
func MonthBounds(year int, month time.Month) (from, to time.Time) {
	from = time.Date(year, month, 1, 0, 0, 0, 0, time.Local)
	to = from.AddDate(0, 1, -1)
	return from, to
}

// NextMonth advances (year, month) by one with year carry.
func NextMonth(year int, month time.Month) (int, time.Month) {
	if month == time.December {
		return year + 1, time.January
	}
	return year, month + 1
}

// PrevMonth steps (year, month) back by one with year carry.
func PrevMonth(year int, month time.Month) (int, time.Month) {
	if month == time.January {
		return year - 1, time.December
	}
	return year, month - 1
}
