// Package dashboard composes the Metronome subsystem: it fetches the five
// dashboard inputs, wires the classifier and mutation store into a single
// facade for the rendering layer, and opens/closes meeting sessions.
package dashboard

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mheikkola/metronome/internal/api"
	"github.com/mheikkola/metronome/internal/calendar"
	"github.com/mheikkola/metronome/internal/classify"
	"github.com/mheikkola/metronome/internal/domain"
	"github.com/mheikkola/metronome/internal/meeting"
	"github.com/mheikkola/metronome/internal/mutate"
)

// ErrNotPermitted marks a mutation attempted without the required rights.
// The view renders such operations as disabled, not hidden.
var ErrNotPermitted = errors.New("operation not permitted")

// Orchestrator owns the store, the session, and the visible month.
type Orchestrator struct {
	client  api.Client
	store   *mutate.Store
	session *meeting.Session
	perms   domain.Permissions
	now     func() time.Time

	year  int
	month time.Month
}

// New creates an orchestrator positioned on the current month.
func New(client api.Client, perms domain.Permissions, now func() time.Time) *Orchestrator {
	if now == nil {
		now = time.Now
	}
	store := mutate.NewStore(client, now)
	store.SetEditMode(perms.CanEdit)

	y, m, _ := now().Date()
	return &Orchestrator{
		client:  client,
		store:   store,
		session: meeting.NewSession(store, now),
		perms:   perms,
		now:     now,
		year:    y,
		month:   m,
	}
}

func (o *Orchestrator) Store() *mutate.Store      { return o.store }
func (o *Orchestrator) Session() *meeting.Session { return o.session }
func (o *Orchestrator) Perms() domain.Permissions { return o.perms }

// Month returns the visible calendar month.
func (o *Orchestrator) Month() (int, time.Month) { return o.year, o.month }

// Refresh fetches all five inputs concurrently and loads them into the store
// atomically: any single failure discards the whole bundle so the mirror
// never holds a half-fetched state. Action items arrive as one bulk list and
// are grouped by initiative here; the backend is never asked per-initiative.
func (o *Orchestrator) Refresh(ctx context.Context) error {
	from, to := calendar.MonthBounds(o.year, o.month)

	var bundle mutate.Bundle
	var flatActions []domain.ActionItem

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		bundle.Summary, err = o.client.FetchSummary(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		bundle.Initiatives, err = o.client.ListInitiatives(gctx, false)
		return err
	})
	g.Go(func() error {
		var err error
		bundle.Decisions, err = o.client.ListOpenDecisions(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		bundle.KeyDates, err = o.client.ListKeyDates(gctx, from, to)
		return err
	})
	g.Go(func() error {
		var err error
		flatActions, err = o.client.ListActionItems(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	bundle.Actions = groupByInitiative(flatActions)
	o.store.Load(bundle)
	return nil
}

// groupByInitiative turns the bulk action-item list into the per-initiative
// map the classifier and store work with.
func groupByInitiative(items []domain.ActionItem) map[string][]domain.ActionItem {
	grouped := make(map[string][]domain.ActionItem)
	for _, item := range items {
		grouped[item.InitiativeID] = append(grouped[item.InitiativeID], item)
	}
	return grouped
}

// NextMonth moves the visible month forward and refetches the bundle.
func (o *Orchestrator) NextMonth(ctx context.Context) error {
	o.year, o.month = calendar.NextMonth(o.year, o.month)
	return o.Refresh(ctx)
}

// PrevMonth moves the visible month back and refetches the bundle.
func (o *Orchestrator) PrevMonth(ctx context.Context) error {
	o.year, o.month = calendar.PrevMonth(o.year, o.month)
	return o.Refresh(ctx)
}

// Partitions runs the classifier over the current mirror.
func (o *Orchestrator) Partitions() classify.Partition {
	return classify.Classify(o.store.Initiatives(), o.store.ActionsByInitiative(), o.now())
}

// SortedActionsFor returns an initiative's action items in canonical order.
func (o *Orchestrator) SortedActionsFor(initiativeID string) []domain.ActionItem {
	return classify.SortActions(o.store.ActionsFor(initiativeID))
}

// Grid lays the mirror's key dates onto the visible month.
func (o *Orchestrator) Grid() calendar.Grid {
	return calendar.MonthGrid(o.year, o.month, o.store.KeyDates())
}

// ── permission-gated mutations ───────────────────────────────────────────────

// ToggleAction requires edit or meeting rights.
func (o *Orchestrator) ToggleAction(ctx context.Context, id string) error {
	if !o.perms.CanMutate() {
		return ErrNotPermitted
	}
	return o.store.ToggleAction(ctx, id)
}

// Decide requires edit or meeting rights.
func (o *Orchestrator) Decide(ctx context.Context, id, text string) error {
	if !o.perms.CanMutate() {
		return ErrNotPermitted
	}
	_, err := o.store.Decide(ctx, id, text)
	return err
}

// Defer requires edit or meeting rights.
func (o *Orchestrator) Defer(ctx context.Context, id string) error {
	if !o.perms.CanMutate() {
		return ErrNotPermitted
	}
	return o.store.Defer(ctx, id)
}

// CreateInitiative requires creation rights.
func (o *Orchestrator) CreateInitiative(ctx context.Context, draft domain.InitiativeDraft) (*domain.Initiative, error) {
	if !o.perms.CanCreate {
		return nil, ErrNotPermitted
	}
	return o.store.CreateInitiative(ctx, draft)
}

// ResolveInitiative requires edit rights.
func (o *Orchestrator) ResolveInitiative(ctx context.Context, id string) error {
	if !o.perms.CanEdit {
		return ErrNotPermitted
	}
	return o.store.ResolveInitiative(ctx, id)
}

// RestoreInitiative requires edit rights.
func (o *Orchestrator) RestoreInitiative(ctx context.Context, id string) error {
	if !o.perms.CanEdit {
		return ErrNotPermitted
	}
	return o.store.RestoreInitiative(ctx, id)
}

// ── meeting lifecycle ────────────────────────────────────────────────────────

// StartMeeting opens a session over the current partition order:
// needs-attention first, then in-progress. Requires meeting rights.
func (o *Orchestrator) StartMeeting() (*meeting.Session, error) {
	if !o.perms.CanRunMeeting {
		return nil, ErrNotPermitted
	}
	p := o.Partitions()
	agenda := make([]*domain.Initiative, 0, len(p.NeedsAttention)+len(p.InProgress))
	agenda = append(agenda, p.NeedsAttention...)
	agenda = append(agenda, p.InProgress...)
	o.session.Start(agenda)
	return o.session, nil
}

// SaveMeetingSummary submits the summary and, on success, refetches the
// whole bundle so the dashboard reflects the new sync record.
func (o *Orchestrator) SaveMeetingSummary(ctx context.Context, notes, nextSyncDate, nextSyncFocus string) (*domain.MeetingRecord, error) {
	rec, err := o.session.SaveSummary(ctx, notes, nextSyncDate, nextSyncFocus)
	if err != nil {
		return nil, err
	}
	if err := o.Refresh(ctx); err != nil {
		// The record is saved; a failed refetch only leaves the mirror
		// stale until the next refresh.
		return rec, nil
	}
	return rec, nil
}
