package testutil

import (
	"context"
	"time"

	"github.com/mheikkola/metronome/internal/domain"
)

// FakeClient is an in-memory api.Client double. Each operation can be made
// to fail by setting the matching error field; calls are recorded so tests
// can assert on issued commands.
type FakeClient struct {
	SummaryResult     *domain.SyncSummary
	InitiativesResult []*domain.Initiative
	DecisionsResult   []*domain.Decision
	KeyDatesResult    []domain.KeyDate
	ActionsResult     []domain.ActionItem
	CreatedInitiative *domain.Initiative
	CreatedRecord     *domain.MeetingRecord

	FetchErr  error
	ToggleErr error
	UpdateErr error
	DecideErr error
	DeferErr  error
	CreateErr error
	SyncErr   error

	Calls []string
}

func (f *FakeClient) record(name string) {
	f.Calls = append(f.Calls, name)
}

func (f *FakeClient) FetchSummary(ctx context.Context) (*domain.SyncSummary, error) {
	f.record("FetchSummary")
	if f.FetchErr != nil {
		return nil, f.FetchErr
	}
	if f.SummaryResult == nil {
		return &domain.SyncSummary{}, nil
	}
	return f.SummaryResult, nil
}

func (f *FakeClient) ListInitiatives(ctx context.Context, includeArchived bool) ([]*domain.Initiative, error) {
	f.record("ListInitiatives")
	if f.FetchErr != nil {
		return nil, f.FetchErr
	}
	return f.InitiativesResult, nil
}

func (f *FakeClient) ListOpenDecisions(ctx context.Context) ([]*domain.Decision, error) {
	f.record("ListOpenDecisions")
	if f.FetchErr != nil {
		return nil, f.FetchErr
	}
	return f.DecisionsResult, nil
}

func (f *FakeClient) ListKeyDates(ctx context.Context, from, to time.Time) ([]domain.KeyDate, error) {
	f.record("ListKeyDates")
	if f.FetchErr != nil {
		return nil, f.FetchErr
	}
	return f.KeyDatesResult, nil
}

func (f *FakeClient) ListActionItems(ctx context.Context) ([]domain.ActionItem, error) {
	f.record("ListActionItems")
	if f.FetchErr != nil {
		return nil, f.FetchErr
	}
	return f.ActionsResult, nil
}

func (f *FakeClient) ToggleActionItem(ctx context.Context, id string) (*domain.ActionItem, error) {
	f.record("ToggleActionItem " + id)
	if f.ToggleErr != nil {
		return nil, f.ToggleErr
	}
	return nil, nil
}

func (f *FakeClient) UpdateActionItem(ctx context.Context, id string, patch domain.ActionPatch) (*domain.ActionItem, error) {
	f.record("UpdateActionItem " + id)
	if f.UpdateErr != nil {
		return nil, f.UpdateErr
	}
	return nil, nil
}

func (f *FakeClient) DecideDecision(ctx context.Context, id, decisionText string) error {
	f.record("DecideDecision " + id)
	return f.DecideErr
}

func (f *FakeClient) DeferDecision(ctx context.Context, id string) error {
	f.record("DeferDecision " + id)
	return f.DeferErr
}

func (f *FakeClient) CreateInitiative(ctx context.Context, draft domain.InitiativeDraft) (*domain.Initiative, error) {
	f.record("CreateInitiative")
	if f.CreateErr != nil {
		return nil, f.CreateErr
	}
	if f.CreatedInitiative != nil {
		return f.CreatedInitiative, nil
	}
	created := &domain.Initiative{
		ID:          nextID("ini"),
		Title:       draft.Title,
		FunctionTag: draft.FunctionTag,
		Priority:    draft.Priority,
	}
	return created, nil
}

func (f *FakeClient) UpdateInitiative(ctx context.Context, id string, patch domain.InitiativePatch) (*domain.Initiative, error) {
	f.record("UpdateInitiative " + id)
	if f.UpdateErr != nil {
		return nil, f.UpdateErr
	}
	return nil, nil
}

func (f *FakeClient) CreateSync(ctx context.Context, rec domain.MeetingRecord) (*domain.MeetingRecord, error) {
	f.record("CreateSync")
	if f.SyncErr != nil {
		return nil, f.SyncErr
	}
	out := rec
	out.ID = nextID("sync")
	f.CreatedRecord = &out
	return &out, nil
}
