// Package mutate holds the client-side mirror of the shared dashboard state
// and applies optimistic mutations against it: a local change is applied
// immediately, the matching network command is issued, and on failure the
// pre-mutation snapshot is restored and a transient notice raised.
//
// The store is not safe for concurrent use. It is driven from one logical
// thread of control (the TUI update loop, or a test harness).
package mutate

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/mheikkola/metronome/internal/api"
	"github.com/mheikkola/metronome/internal/domain"
)

func trimmed(s string) string { return strings.TrimSpace(s) }

var (
	// ErrEmptyDecisionText rejects a decide call whose text is blank after
	// trimming. Raised before any network traffic.
	ErrEmptyDecisionText = errors.New("decision text must not be empty")

	// ErrEmptyTitle rejects an initiative draft without a title.
	ErrEmptyTitle = errors.New("initiative title must not be empty")
)

// Bundle is one consistent fetch of all dashboard inputs.
type Bundle struct {
	Summary     *domain.SyncSummary
	Initiatives []*domain.Initiative
	Decisions   []*domain.Decision
	KeyDates    []domain.KeyDate
	Actions     map[string][]domain.ActionItem
}

// Store mirrors the backend state and owns all optimistic mutations of it.
type Store struct {
	client api.Client
	now    func() time.Time

	editMode bool

	initiatives []*domain.Initiative
	actions     map[string][]domain.ActionItem
	decisions   []*domain.Decision
	summary     *domain.SyncSummary
	keyDates    []domain.KeyDate

	notices []Notice
}

// NewStore creates an empty store. The now function is injected so tests can
// pin completion timestamps and notice expiry.
func NewStore(client api.Client, now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	return &Store{
		client:  client,
		now:     now,
		actions: make(map[string][]domain.ActionItem),
	}
}

// Load replaces the whole mirror with a freshly fetched bundle.
func (s *Store) Load(b Bundle) {
	s.summary = b.Summary
	s.initiatives = b.Initiatives
	s.decisions = b.Decisions
	s.keyDates = b.KeyDates
	s.actions = b.Actions
	if s.actions == nil {
		s.actions = make(map[string][]domain.ActionItem)
	}
}

// SetEditMode switches ToggleAction between the two-state flip and the
// three-state cycle. Callers derive it from edit permissions.
func (s *Store) SetEditMode(on bool) { s.editMode = on }

func (s *Store) EditMode() bool { return s.editMode }

// ── read access ──────────────────────────────────────────────────────────────

func (s *Store) Initiatives() []*domain.Initiative { return s.initiatives }

func (s *Store) OpenDecisions() []*domain.Decision {
	var open []*domain.Decision
	for _, d := range s.decisions {
		if d.Status == domain.DecisionOpen {
			open = append(open, d)
		}
	}
	return open
}

func (s *Store) Summary() *domain.SyncSummary { return s.summary }

func (s *Store) KeyDates() []domain.KeyDate { return s.keyDates }

// ActionsFor returns the ordered action-item list of one initiative.
func (s *Store) ActionsFor(initiativeID string) []domain.ActionItem {
	return s.actions[initiativeID]
}

// ActionsByInitiative exposes the full grouping for the classifier.
func (s *Store) ActionsByInitiative() map[string][]domain.ActionItem {
	return s.actions
}

// DoneActionCount counts done action items across all initiatives.
func (s *Store) DoneActionCount() int {
	n := 0
	for _, items := range s.actions {
		for _, item := range items {
			if item.Status == domain.ActionDone {
				n++
			}
		}
	}
	return n
}

// findAction locates an action item by ID across all initiatives, since
// callers do not supply the owning initiative. Returns the owning initiative
// ID and the index, or ok=false when the item is absent locally.
func (s *Store) findAction(id string) (initiativeID string, idx int, ok bool) {
	for iniID, items := range s.actions {
		for i, item := range items {
			if item.ID == id {
				return iniID, i, true
			}
		}
	}
	return "", 0, false
}

// findDecision returns the index of a decision in the local set, or -1.
func (s *Store) findDecision(id string) int {
	for i, d := range s.decisions {
		if d.ID == id {
			return i
		}
	}
	return -1
}

// findInitiative returns the index of an initiative, or -1.
func (s *Store) findInitiative(id string) int {
	for i, ini := range s.initiatives {
		if ini.ID == id {
			return i
		}
	}
	return -1
}

// ── optimistic operations ────────────────────────────────────────────────────

// ToggleAction flips an action item's status: done <-> pending outside edit
// mode, pending -> in_progress -> done -> pending in edit mode. CompletedAt
// is stamped on entry to done and cleared otherwise. A locally unknown ID is
// a silent no-op (state already converged). On network failure the owning
// initiative's full action list is restored from its snapshot.
func (s *Store) ToggleAction(ctx context.Context, id string) error {
	iniID, idx, ok := s.findAction(id)
	if !ok {
		return nil
	}

	snapshot := cloneActions(s.actions[iniID])

	item := &s.actions[iniID][idx]
	var next domain.ActionStatus
	if s.editMode {
		next = item.Status.NextThreeState()
	} else {
		next = item.Status.NextTwoState()
	}
	item.SetStatus(next, s.now())

	var err error
	var updated *domain.ActionItem
	if s.editMode {
		status := next
		updated, err = s.client.UpdateActionItem(ctx, id, domain.ActionPatch{Status: &status})
	} else {
		updated, err = s.client.ToggleActionItem(ctx, id)
	}
	if err != nil {
		s.actions[iniID] = snapshot
		s.pushNotice("Failed to toggle action item — changes reverted")
		return err
	}
	if updated != nil {
		s.actions[iniID][idx] = *updated
	}
	return nil
}

// EditAction applies a direct field edit to an action item (title, status,
// deadline), optimistically, with the same rollback contract as ToggleAction.
func (s *Store) EditAction(ctx context.Context, id string, patch domain.ActionPatch) error {
	iniID, idx, ok := s.findAction(id)
	if !ok {
		return nil
	}

	snapshot := cloneActions(s.actions[iniID])

	item := &s.actions[iniID][idx]
	if patch.Title != nil {
		item.Title = *patch.Title
	}
	if patch.Deadline != nil {
		item.Deadline = patch.Deadline
	}
	if patch.Status != nil {
		item.SetStatus(*patch.Status, s.now())
	}

	updated, err := s.client.UpdateActionItem(ctx, id, patch)
	if err != nil {
		s.actions[iniID] = snapshot
		s.pushNotice("Failed to update action item — changes reverted")
		return err
	}
	if updated != nil {
		s.actions[iniID][idx] = *updated
	}
	return nil
}

// Decide transitions an open decision to decided, storing the decision text.
// The transition is terminal: an already-decided decision is left untouched.
// Empty text (after trimming) is rejected before any network call. The bool
// reports whether a transition actually happened, so callers counting
// decisions do not count the converged no-op paths.
func (s *Store) Decide(ctx context.Context, id, decisionText string) (bool, error) {
	decisionText = trimmed(decisionText)
	if decisionText == "" {
		return false, ErrEmptyDecisionText
	}

	idx := s.findDecision(id)
	if idx < 0 || s.decisions[idx].Status == domain.DecisionDecided {
		return false, nil
	}

	snapshot := cloneDecisions(s.decisions)

	s.decisions[idx].Status = domain.DecisionDecided
	s.decisions[idx].DecisionText = decisionText

	if err := s.client.DecideDecision(ctx, id, decisionText); err != nil {
		s.decisions = snapshot
		s.pushNotice("Failed to record decision — changes reverted")
		return false, err
	}
	return true, nil
}

// Defer removes a decision from the local open set and signals the removal
// to the backend. No "deferred" status exists: the item simply leaves the
// active view.
func (s *Store) Defer(ctx context.Context, id string) error {
	idx := s.findDecision(id)
	if idx < 0 {
		return nil
	}

	snapshot := cloneDecisions(s.decisions)

	s.decisions = append(s.decisions[:idx:idx], s.decisions[idx+1:]...)

	if err := s.client.DeferDecision(ctx, id); err != nil {
		s.decisions = snapshot
		s.pushNotice("Failed to defer decision — changes reverted")
		return err
	}
	return nil
}

// CreateInitiative is deliberately not optimistic: the server assigns the
// canonical ID, so local state changes only after confirmation. On failure a
// server-supplied message is surfaced when present (creation errors carry
// user-actionable validation feedback), otherwise a generic notice.
func (s *Store) CreateInitiative(ctx context.Context, draft domain.InitiativeDraft) (*domain.Initiative, error) {
	if trimmed(draft.Title) == "" {
		return nil, ErrEmptyTitle
	}

	created, err := s.client.CreateInitiative(ctx, draft)
	if err != nil {
		var ce *api.CreateError
		if errors.As(err, &ce) {
			s.pushNotice(ce.Message)
		} else {
			s.pushNotice("Failed to create initiative")
		}
		return nil, err
	}

	s.initiatives = append(s.initiatives, created)
	return created, nil
}

// UpdateInitiative applies priority/label/deadline edits optimistically.
func (s *Store) UpdateInitiative(ctx context.Context, id string, patch domain.InitiativePatch) error {
	idx := s.findInitiative(id)
	if idx < 0 {
		return nil
	}

	snapshot := cloneInitiatives(s.initiatives)

	ini := s.initiatives[idx]
	if patch.Title != nil {
		ini.Title = *patch.Title
	}
	if patch.Priority != nil {
		ini.Priority = *patch.Priority
	}
	if patch.OwnerLabel != nil {
		ini.OwnerLabel = *patch.OwnerLabel
	}
	if patch.StatusLabel != nil {
		ini.StatusLabel = *patch.StatusLabel
	}
	if patch.Deadline != nil {
		ini.Deadline = patch.Deadline
	}
	if patch.Archived != nil {
		ini.Archived = *patch.Archived
	}

	if _, err := s.client.UpdateInitiative(ctx, id, patch); err != nil {
		s.initiatives = snapshot
		s.pushNotice("Failed to update initiative — changes reverted")
		return err
	}
	return nil
}

// SubmitMeetingRecord posts a write-once sync record. Like creation, it is
// not optimistic: there is no local collection to speculate on, and the
// caller needs to know whether the record was persisted.
func (s *Store) SubmitMeetingRecord(ctx context.Context, rec domain.MeetingRecord) (*domain.MeetingRecord, error) {
	created, err := s.client.CreateSync(ctx, rec)
	if err != nil {
		s.pushNotice("Failed to save meeting summary")
		return nil, err
	}
	return created, nil
}

// ResolveInitiative archives an initiative and marks its priority resolved.
func (s *Store) ResolveInitiative(ctx context.Context, id string) error {
	archived := true
	priority := domain.PriorityResolved
	return s.UpdateInitiative(ctx, id, domain.InitiativePatch{
		Archived: &archived,
		Priority: &priority,
	})
}

// RestoreInitiative brings an archived initiative back to the active set.
func (s *Store) RestoreInitiative(ctx context.Context, id string) error {
	archived := false
	return s.UpdateInitiative(ctx, id, domain.InitiativePatch{Archived: &archived})
}
