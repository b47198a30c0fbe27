package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mheikkola/metronome/internal/domain"
)

const dateLayout = "2006-01-02"

// ErrNotFound marks a lookup that matched no row.
var ErrNotFound = errors.New("not found")

// SQLiteStore persists the backend state for the reference server.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// ── helpers ──────────────────────────────────────────────────────────────────

func parseNullableTime(s sql.NullString, layout string) *time.Time {
	if !s.Valid || s.String == "" {
		return nil
	}
	t, err := time.Parse(layout, s.String)
	if err != nil {
		return nil
	}
	return &t
}

func nullableTimeToString(t *time.Time, layout string) interface{} {
	if t == nil {
		return nil
	}
	return t.Format(layout)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// ── initiatives ──────────────────────────────────────────────────────────────

const initiativeColumns = `id, title, description, function_tag, priority,
		owner_label, status_label, deadline, deadline_label, archived, created_at, updated_at`

func (s *SQLiteStore) scanInitiative(row interface{ Scan(...any) error }) (*domain.Initiative, error) {
	var ini domain.Initiative
	var deadline sql.NullString
	var archived int
	var createdAt, updatedAt string
	err := row.Scan(&ini.ID, &ini.Title, &ini.Description, &ini.FunctionTag, &ini.Priority,
		&ini.OwnerLabel, &ini.StatusLabel, &deadline, &ini.DeadlineLabel, &archived, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning initiative: %w", err)
	}
	ini.Deadline = parseNullableTime(sql.NullString{String: deadline.String, Valid: deadline.Valid}, dateLayout)
	ini.Archived = archived != 0
	ini.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	ini.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &ini, nil
}

func (s *SQLiteStore) ListInitiatives(ctx context.Context, includeArchived bool) ([]*domain.Initiative, error) {
	query := `SELECT ` + initiativeColumns + ` FROM initiatives`
	if !includeArchived {
		query += ` WHERE archived = 0`
	}
	query += ` ORDER BY created_at, id`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing initiatives: %w", err)
	}
	defer rows.Close()

	var out []*domain.Initiative
	for rows.Next() {
		ini, err := s.scanInitiative(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, ini)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) GetInitiative(ctx context.Context, id string) (*domain.Initiative, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+initiativeColumns+` FROM initiatives WHERE id = ?`, id)
	return s.scanInitiative(row)
}

func (s *SQLiteStore) CreateInitiative(ctx context.Context, draft domain.InitiativeDraft) (*domain.Initiative, error) {
	now := time.Now().UTC()
	ini := &domain.Initiative{
		ID:            uuid.New().String(),
		Title:         draft.Title,
		Description:   draft.Description,
		FunctionTag:   draft.FunctionTag,
		Priority:      draft.Priority,
		OwnerLabel:    draft.OwnerLabel,
		StatusLabel:   draft.StatusLabel,
		Deadline:      draft.Deadline,
		DeadlineLabel: draft.DeadlineLabel,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO initiatives (`+initiativeColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ini.ID, ini.Title, ini.Description, string(ini.FunctionTag), string(ini.Priority),
		ini.OwnerLabel, ini.StatusLabel, nullableTimeToString(ini.Deadline, dateLayout),
		ini.DeadlineLabel, boolToInt(ini.Archived),
		ini.CreatedAt.Format(time.RFC3339), ini.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return nil, fmt.Errorf("inserting initiative: %w", err)
	}
	return ini, nil
}

func (s *SQLiteStore) UpdateInitiative(ctx context.Context, id string, patch domain.InitiativePatch) (*domain.Initiative, error) {
	ini, err := s.GetInitiative(ctx, id)
	if err != nil {
		return nil, err
	}
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
	ini.UpdatedAt = time.Now().UTC()

	_, err = s.db.ExecContext(ctx, `UPDATE initiatives SET title = ?, priority = ?, owner_label = ?,
		status_label = ?, deadline = ?, archived = ?, updated_at = ? WHERE id = ?`,
		ini.Title, string(ini.Priority), ini.OwnerLabel, ini.StatusLabel,
		nullableTimeToString(ini.Deadline, dateLayout), boolToInt(ini.Archived),
		ini.UpdatedAt.Format(time.RFC3339), id,
	)
	if err != nil {
		return nil, fmt.Errorf("updating initiative: %w", err)
	}
	return ini, nil
}

// ── action items ─────────────────────────────────────────────────────────────

const actionColumns = `id, initiative_id, title, status, priority, deadline, completed_at, sort_order`

func (s *SQLiteStore) scanAction(row interface{ Scan(...any) error }) (*domain.ActionItem, error) {
	var a domain.ActionItem
	var deadline, completedAt sql.NullString
	err := row.Scan(&a.ID, &a.InitiativeID, &a.Title, &a.Status, &a.Priority, &deadline, &completedAt, &a.SortOrder)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning action item: %w", err)
	}
	a.Deadline = parseNullableTime(deadline, dateLayout)
	a.CompletedAt = parseNullableTime(completedAt, time.RFC3339)
	return &a, nil
}

func (s *SQLiteStore) ListActionItems(ctx context.Context) ([]domain.ActionItem, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+actionColumns+` FROM action_items ORDER BY initiative_id, sort_order, id`)
	if err != nil {
		return nil, fmt.Errorf("listing action items: %w", err)
	}
	defer rows.Close()

	var out []domain.ActionItem
	for rows.Next() {
		a, err := s.scanAction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) GetActionItem(ctx context.Context, id string) (*domain.ActionItem, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+actionColumns+` FROM action_items WHERE id = ?`, id)
	return s.scanAction(row)
}

func (s *SQLiteStore) CreateActionItem(ctx context.Context, a domain.ActionItem) (*domain.ActionItem, error) {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO action_items (`+actionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.InitiativeID, a.Title, string(a.Status), string(a.Priority),
		nullableTimeToString(a.Deadline, dateLayout),
		nullableTimeToString(a.CompletedAt, time.RFC3339), a.SortOrder,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting action item: %w", err)
	}
	return &a, nil
}

func (s *SQLiteStore) saveActionItem(ctx context.Context, a *domain.ActionItem) error {
	_, err := s.db.ExecContext(ctx, `UPDATE action_items SET title = ?, status = ?, deadline = ?,
		completed_at = ? WHERE id = ?`,
		a.Title, string(a.Status),
		nullableTimeToString(a.Deadline, dateLayout),
		nullableTimeToString(a.CompletedAt, time.RFC3339), a.ID,
	)
	if err != nil {
		return fmt.Errorf("updating action item: %w", err)
	}
	return nil
}

// ToggleActionItem flips done <-> pending server-side and keeps the
// completed_at invariant.
func (s *SQLiteStore) ToggleActionItem(ctx context.Context, id string) (*domain.ActionItem, error) {
	a, err := s.GetActionItem(ctx, id)
	if err != nil {
		return nil, err
	}
	a.SetStatus(a.Status.NextTwoState(), time.Now().UTC())
	if err := s.saveActionItem(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// PatchActionItem applies a direct field edit.
func (s *SQLiteStore) PatchActionItem(ctx context.Context, id string, patch domain.ActionPatch) (*domain.ActionItem, error) {
	a, err := s.GetActionItem(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.Title != nil {
		a.Title = *patch.Title
	}
	if patch.Deadline != nil {
		a.Deadline = patch.Deadline
	}
	if patch.Status != nil {
		a.SetStatus(*patch.Status, time.Now().UTC())
	}
	if err := s.saveActionItem(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// ── decisions ────────────────────────────────────────────────────────────────

func (s *SQLiteStore) scanDecision(row interface{ Scan(...any) error }) (*domain.Decision, error) {
	var d domain.Decision
	var deadline sql.NullString
	var deferred int
	err := row.Scan(&d.ID, &d.Question, &d.FunctionTag, &deadline, &d.Status, &d.DecisionText, &deferred)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning decision: %w", err)
	}
	d.Deadline = parseNullableTime(deadline, dateLayout)
	return &d, nil
}

const decisionColumns = `id, question, function_tag, deadline, status, decision_text, deferred`

func (s *SQLiteStore) ListOpenDecisions(ctx context.Context) ([]*domain.Decision, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+decisionColumns+` FROM decisions WHERE status = 'open' AND deferred = 0 ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing decisions: %w", err)
	}
	defer rows.Close()

	var out []*domain.Decision
	for rows.Next() {
		d, err := s.scanDecision(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) CreateDecision(ctx context.Context, d domain.Decision) (*domain.Decision, error) {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	if d.Status == "" {
		d.Status = domain.DecisionOpen
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO decisions (`+decisionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, 0)`,
		d.ID, d.Question, string(d.FunctionTag),
		nullableTimeToString(d.Deadline, dateLayout), string(d.Status), d.DecisionText,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting decision: %w", err)
	}
	return &d, nil
}

// DecideDecision transitions open -> decided. Already-decided rows are left
// untouched: the transition is one-directional.
func (s *SQLiteStore) DecideDecision(ctx context.Context, id, text string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE decisions SET status = 'decided', decision_text = ? WHERE id = ? AND status = 'open'`,
		text, id)
	if err != nil {
		return fmt.Errorf("deciding decision: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// Unknown or already decided: converged either way.
		return nil
	}
	return nil
}

// DeferDecision removes the decision from the open view without deciding it.
func (s *SQLiteStore) DeferDecision(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE decisions SET deferred = 1 WHERE id = ? AND status = 'open'`, id)
	if err != nil {
		return fmt.Errorf("deferring decision: %w", err)
	}
	return nil
}

// ── key dates ────────────────────────────────────────────────────────────────

func (s *SQLiteStore) ListKeyDates(ctx context.Context, from, to time.Time) ([]domain.KeyDate, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, date, title, category, emoji FROM key_dates WHERE date >= ? AND date <= ? ORDER BY date, id`,
		from.Format(dateLayout), to.Format(dateLayout))
	if err != nil {
		return nil, fmt.Errorf("listing key dates: %w", err)
	}
	defer rows.Close()

	var out []domain.KeyDate
	for rows.Next() {
		var kd domain.KeyDate
		var date string
		if err := rows.Scan(&kd.ID, &date, &kd.Title, &kd.Category, &kd.Emoji); err != nil {
			return nil, fmt.Errorf("scanning key date: %w", err)
		}
		kd.Date, _ = time.ParseInLocation(dateLayout, date, time.Local)
		out = append(out, kd)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) CreateKeyDate(ctx context.Context, kd domain.KeyDate) (*domain.KeyDate, error) {
	if kd.ID == "" {
		kd.ID = uuid.New().String()
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO key_dates (id, date, title, category, emoji)
		VALUES (?, ?, ?, ?, ?)`,
		kd.ID, kd.Date.Format(dateLayout), kd.Title, kd.Category, kd.Emoji)
	if err != nil {
		return nil, fmt.Errorf("inserting key date: %w", err)
	}
	return &kd, nil
}

// ── syncs ────────────────────────────────────────────────────────────────────

func (s *SQLiteStore) CreateSync(ctx context.Context, rec domain.MeetingRecord) (*domain.MeetingRecord, error) {
	rec.ID = uuid.New().String()
	rec.CreatedAt = time.Now().UTC()
	_, err := s.db.ExecContext(ctx, `INSERT INTO syncs (id, sync_date, title, notes, started_at, ended_at,
		duration_seconds, next_sync_date, next_sync_focus, items_discussed, decisions_made,
		action_items_completed, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.SyncDate, rec.Title, rec.Notes,
		rec.StartedAt.Format(time.RFC3339), rec.EndedAt.Format(time.RFC3339),
		rec.DurationSeconds, rec.NextSyncDate, rec.NextSyncFocus,
		rec.ItemsDiscussed, rec.DecisionsMade, rec.ActionItemsCompleted,
		rec.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return nil, fmt.Errorf("inserting sync record: %w", err)
	}
	return &rec, nil
}

// lastSync returns the most recent sync record's dates, or empty strings.
func (s *SQLiteStore) lastSync(ctx context.Context) (lastDate, nextDate string) {
	row := s.db.QueryRowContext(ctx,
		`SELECT sync_date, next_sync_date FROM syncs ORDER BY sync_date DESC, created_at DESC LIMIT 1`)
	if err := row.Scan(&lastDate, &nextDate); err != nil {
		return "", ""
	}
	return lastDate, nextDate
}

// ── summary ──────────────────────────────────────────────────────────────────

// ComputeSummary recomputes the dashboard aggregate from current rows.
func (s *SQLiteStore) ComputeSummary(ctx context.Context, now time.Time) (*domain.SyncSummary, error) {
	today := now.Format(dateLayout)
	sum := &domain.SyncSummary{}

	row := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM initiatives WHERE archived = 0`)
	if err := row.Scan(&sum.ActiveInitiatives); err != nil {
		return nil, fmt.Errorf("counting initiatives: %w", err)
	}

	row = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM decisions WHERE status = 'open' AND deferred = 0`)
	if err := row.Scan(&sum.OpenDecisions); err != nil {
		return nil, fmt.Errorf("counting decisions: %w", err)
	}

	row = s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM action_items WHERE status != 'done' AND deadline IS NOT NULL AND deadline < ?`, today)
	if err := row.Scan(&sum.OverdueActions); err != nil {
		return nil, fmt.Errorf("counting overdue actions: %w", err)
	}

	row = s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM decisions WHERE status = 'open' AND deferred = 0 AND deadline IS NOT NULL AND deadline < ?`, today)
	if err := row.Scan(&sum.OverdueDecisions); err != nil {
		return nil, fmt.Errorf("counting overdue decisions: %w", err)
	}

	var openActions int
	row = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM action_items WHERE status != 'done'`)
	if err := row.Scan(&openActions); err != nil {
		return nil, fmt.Errorf("counting open actions: %w", err)
	}
	if openActions == 0 {
		sum.OnTrackPct = 100
	} else {
		sum.OnTrackPct = float64(openActions-sum.OverdueActions) / float64(openActions) * 100
	}

	sum.LastSyncDate, sum.NextSyncDate = s.lastSync(ctx)
	return sum, nil
}
