// Package meeting drives a live sync session: agenda traversal, elapsed-time
// tracking, in-session decision capture, and end-of-meeting summarization.
// Mutations of shared state delegate to the mutation store; the session only
// keeps its own counters, so cancelling a session never rolls back work that
// was already confirmed during it.
package meeting

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mheikkola/metronome/internal/domain"
	"github.com/mheikkola/metronome/internal/mutate"
)

// State is the session lifecycle position. There is no paused state: the
// timer always runs against wall clock while the session is live.
type State int

const (
	StateIdle State = iota
	StateRunning
	StateEnding
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateEnding:
		return "ending"
	default:
		return "idle"
	}
}

var (
	// ErrNotRunning guards operations that require a live session.
	ErrNotRunning = errors.New("no running session")

	// ErrNotEnding guards summary submission outside the Ending state.
	ErrNotEnding = errors.New("session has not ended")
)

// SummaryDraft pre-populates the end-of-meeting form.
type SummaryDraft struct {
	DurationSeconds      int
	ItemsDiscussed       int
	DecisionsMade        int
	ActionItemsCompleted int
}

// Session is a single live meeting over a fixed agenda. The agenda is the
// initiative order supplied at start and does not change for the session's
// lifetime, even if the underlying initiative set changes concurrently.
type Session struct {
	store *mutate.Store
	now   func() time.Time

	state     State
	agenda    []*domain.Initiative
	startTime time.Time
	index     int
	discussed map[string]bool

	// Session-local counter: only in-session decisions count toward the
	// meeting record, independent of global decision state.
	decisionsMade int

	// Frozen at End(); authoritative duration is always wall-clock based.
	elapsedAtEnd int
}

// NewSession creates an idle session bound to the store. The now function is
// injected for deterministic timing in tests.
func NewSession(store *mutate.Store, now func() time.Time) *Session {
	if now == nil {
		now = time.Now
	}
	return &Session{store: store, now: now}
}

func (s *Session) State() State { return s.state }

// Start enters Running over the given agenda order.
func (s *Session) Start(agenda []*domain.Initiative) {
	s.state = StateRunning
	s.agenda = agenda
	s.startTime = s.now()
	s.index = 0
	s.discussed = make(map[string]bool)
	s.decisionsMade = 0
	s.elapsedAtEnd = 0
}

// Agenda returns the fixed agenda order.
func (s *Session) Agenda() []*domain.Initiative { return s.agenda }

// CurrentIndex returns the agenda cursor.
func (s *Session) CurrentIndex() int { return s.index }

// Current returns the agenda item under the cursor, or nil for an empty
// agenda.
func (s *Session) Current() *domain.Initiative {
	if s.index < 0 || s.index >= len(s.agenda) {
		return nil
	}
	return s.agenda[s.index]
}

// DiscussedCount returns how many distinct agenda items were marked.
func (s *Session) DiscussedCount() int { return len(s.discussed) }

// Discussed reports whether a specific agenda item was marked.
func (s *Session) Discussed(initiativeID string) bool { return s.discussed[initiativeID] }

// DecisionsMade returns the session-local decision counter.
func (s *Session) DecisionsMade() int { return s.decisionsMade }

// MarkDiscussed adds the current agenda item to the discussed set.
// Idempotent; a no-op outside Running or on an empty agenda.
func (s *Session) MarkDiscussed() {
	if s.state != StateRunning {
		return
	}
	if cur := s.Current(); cur != nil {
		s.discussed[cur.ID] = true
	}
}

// Advance marks the current item discussed and moves the cursor forward,
// clamped to the last agenda index.
func (s *Session) Advance() {
	if s.state != StateRunning {
		return
	}
	s.MarkDiscussed()
	if s.index < len(s.agenda)-1 {
		s.index++
	}
}

// JumpTo moves the cursor directly (sidebar navigation). Nothing is marked
// discussed implicitly. Out-of-range indexes are ignored.
func (s *Session) JumpTo(index int) {
	if s.state != StateRunning {
		return
	}
	if index < 0 || index >= len(s.agenda) {
		return
	}
	s.index = index
}

// QuickDecide records an in-session decision through the mutation store.
// The counter moves only when the store reports a real open-to-decided
// transition, so no-op decides on converged state do not inflate the
// meeting record.
func (s *Session) QuickDecide(ctx context.Context, decisionID, text string) error {
	if s.state != StateRunning {
		return ErrNotRunning
	}
	changed, err := s.store.Decide(ctx, decisionID, text)
	if err != nil {
		return err
	}
	if changed {
		s.decisionsMade++
	}
	return nil
}

// ToggleAction delegates to the store; the session holds no action-item
// state of its own.
func (s *Session) ToggleAction(ctx context.Context, id string) error {
	if s.state != StateRunning {
		return ErrNotRunning
	}
	return s.store.ToggleAction(ctx, id)
}

// Elapsed recomputes the live duration from wall clock. It is advisory
// display state; the authoritative figure is taken once, at End.
func (s *Session) Elapsed(now time.Time) time.Duration {
	if s.state == StateIdle {
		return 0
	}
	if s.state == StateEnding {
		return time.Duration(s.elapsedAtEnd) * time.Second
	}
	return now.Sub(s.startTime)
}

// End freezes the elapsed time, transitions to Ending, and returns the
// prefilled summary draft. The completed-actions figure is the global done
// count, not a session-scoped one.
func (s *Session) End() (SummaryDraft, error) {
	if s.state != StateRunning {
		return SummaryDraft{}, ErrNotRunning
	}
	s.elapsedAtEnd = int(s.now().Sub(s.startTime) / time.Second)
	s.state = StateEnding

	return SummaryDraft{
		DurationSeconds:      s.elapsedAtEnd,
		ItemsDiscussed:       len(s.discussed),
		DecisionsMade:        s.decisionsMade,
		ActionItemsCompleted: s.store.DoneActionCount(),
	}, nil
}

// SaveSummary builds the meeting record and submits it. On success the
// session returns to Idle; on failure it stays in Ending so the typed notes
// are not lost.
func (s *Session) SaveSummary(ctx context.Context, notes, nextSyncDate, nextSyncFocus string) (*domain.MeetingRecord, error) {
	if s.state != StateEnding {
		return nil, ErrNotEnding
	}

	ended := s.startTime.Add(time.Duration(s.elapsedAtEnd) * time.Second)
	rec := domain.MeetingRecord{
		SyncDate:             s.startTime.Format("2006-01-02"),
		Title:                fmt.Sprintf("Leadership sync %s", s.startTime.Format("2006-01-02")),
		Notes:                notes,
		StartedAt:            s.startTime,
		EndedAt:              ended,
		DurationSeconds:      s.elapsedAtEnd,
		NextSyncDate:         nextSyncDate,
		NextSyncFocus:        nextSyncFocus,
		ItemsDiscussed:       len(s.discussed),
		DecisionsMade:        s.decisionsMade,
		ActionItemsCompleted: s.store.DoneActionCount(),
	}

	created, err := s.store.SubmitMeetingRecord(ctx, rec)
	if err != nil {
		return nil, err
	}

	s.reset()
	return created, nil
}

// Cancel discards the session without persisting a record, from Running or
// Ending. Store mutations made during the session stand: they were already
// confirmed independently of the meeting record.
func (s *Session) Cancel() {
	s.reset()
}

func (s *Session) reset() {
	s.state = StateIdle
	s.agenda = nil
	s.index = 0
	s.discussed = nil
	s.decisionsMade = 0
	s.elapsedAtEnd = 0
}
