// Package server is a reference implementation of the ops backend consumed
// by the Metronome dashboard. It exists so the client can be run and
// integration-tested end to end; it is a dev fixture, not a production
// persistence design.
package server

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mheikkola/metronome/internal/domain"
)

// Server exposes the dashboard's network surface over HTTP.
type Server struct {
	store *SQLiteStore
}

// New builds the HTTP handler over an opened database.
func New(db *sql.DB) http.Handler {
	s := &Server{store: NewSQLiteStore(db)}

	r := chi.NewRouter()
	r.Get("/summary", s.handleSummary)
	r.Get("/initiatives", s.handleListInitiatives)
	r.Post("/initiatives", s.handleCreateInitiative)
	r.Patch("/initiatives/{id}", s.handlePatchInitiative)
	r.Get("/decisions", s.handleListDecisions)
	r.Post("/decisions", s.handleCreateDecision)
	r.Patch("/decisions", s.handleDecisionCommand)
	r.Get("/key-dates", s.handleListKeyDates)
	r.Post("/key-dates", s.handleCreateKeyDate)
	r.Get("/action-items", s.handleListActionItems)
	r.Post("/action-items", s.handleCreateActionItem)
	r.Patch("/action-items", s.handleActionCommand)
	r.Post("/syncs", s.handleCreateSync)
	return r
}

// errorBody is the failure envelope. Creation handlers put user-actionable
// validation text in Message; the dashboard client surfaces it only there.
type errorBody struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Message: msg})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	sum, err := s.store.ComputeSummary(r.Context(), time.Now())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "computing summary failed")
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

func (s *Server) handleListInitiatives(w http.ResponseWriter, r *http.Request) {
	includeArchived := r.URL.Query().Get("archived") == "true"
	out, err := s.store.ListInitiatives(r.Context(), includeArchived)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "listing initiatives failed")
		return
	}
	if out == nil {
		out = []*domain.Initiative{}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateInitiative(w http.ResponseWriter, r *http.Request) {
	var draft domain.InitiativeDraft
	if !decodeBody(w, r, &draft) {
		return
	}
	if strings.TrimSpace(draft.Title) == "" {
		writeError(w, http.StatusUnprocessableEntity, "title is required")
		return
	}
	if !domain.ValidFunctionTags[string(draft.FunctionTag)] {
		writeError(w, http.StatusUnprocessableEntity, "unknown function tag "+string(draft.FunctionTag))
		return
	}
	if draft.Priority == "" {
		draft.Priority = domain.PriorityStrategic
	}
	created, err := s.store.CreateInitiative(r.Context(), draft)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "creating initiative failed")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handlePatchInitiative(w http.ResponseWriter, r *http.Request) {
	var patch domain.InitiativePatch
	if !decodeBody(w, r, &patch) {
		return
	}
	updated, err := s.store.UpdateInitiative(r.Context(), chi.URLParam(r, "id"), patch)
	if errors.Is(err, ErrNotFound) {
		writeError(w, http.StatusNotFound, "initiative not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "updating initiative failed")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleListDecisions(w http.ResponseWriter, r *http.Request) {
	// Only the open view is served; decided decisions leave this surface.
	out, err := s.store.ListOpenDecisions(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "listing decisions failed")
		return
	}
	if out == nil {
		out = []*domain.Decision{}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateDecision(w http.ResponseWriter, r *http.Request) {
	var d domain.Decision
	if !decodeBody(w, r, &d) {
		return
	}
	if strings.TrimSpace(d.Question) == "" {
		writeError(w, http.StatusUnprocessableEntity, "question is required")
		return
	}
	created, err := s.store.CreateDecision(r.Context(), d)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "creating decision failed")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// decisionCommand mirrors the client's PATCH /decisions body.
type decisionCommand struct {
	Action       string `json:"action"`
	ID           string `json:"id"`
	DecisionText string `json:"decision_text,omitempty"`
}

func (s *Server) handleDecisionCommand(w http.ResponseWriter, r *http.Request) {
	var cmd decisionCommand
	if !decodeBody(w, r, &cmd) {
		return
	}
	switch cmd.Action {
	case "decide":
		if strings.TrimSpace(cmd.DecisionText) == "" {
			writeError(w, http.StatusUnprocessableEntity, "decision_text is required")
			return
		}
		if err := s.store.DecideDecision(r.Context(), cmd.ID, cmd.DecisionText); err != nil {
			writeError(w, http.StatusInternalServerError, "deciding failed")
			return
		}
	case "defer":
		if err := s.store.DeferDecision(r.Context(), cmd.ID); err != nil {
			writeError(w, http.StatusInternalServerError, "deferring failed")
			return
		}
	default:
		writeError(w, http.StatusBadRequest, "unknown action "+cmd.Action)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListKeyDates(w http.ResponseWriter, r *http.Request) {
	from, err1 := time.ParseInLocation(dateLayout, r.URL.Query().Get("from"), time.Local)
	to, err2 := time.ParseInLocation(dateLayout, r.URL.Query().Get("to"), time.Local)
	if err1 != nil || err2 != nil {
		writeError(w, http.StatusBadRequest, "from and to must be YYYY-MM-DD")
		return
	}
	out, err := s.store.ListKeyDates(r.Context(), from, to)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "listing key dates failed")
		return
	}
	if out == nil {
		out = []domain.KeyDate{}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateKeyDate(w http.ResponseWriter, r *http.Request) {
	var kd domain.KeyDate
	if !decodeBody(w, r, &kd) {
		return
	}
	created, err := s.store.CreateKeyDate(r.Context(), kd)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "creating key date failed")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleListActionItems(w http.ResponseWriter, r *http.Request) {
	out, err := s.store.ListActionItems(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "listing action items failed")
		return
	}
	if out == nil {
		out = []domain.ActionItem{}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateActionItem(w http.ResponseWriter, r *http.Request) {
	var a domain.ActionItem
	if !decodeBody(w, r, &a) {
		return
	}
	if strings.TrimSpace(a.Title) == "" || a.InitiativeID == "" {
		writeError(w, http.StatusUnprocessableEntity, "title and initiative_id are required")
		return
	}
	if a.Status == "" {
		a.Status = domain.ActionPending
	}
	if a.Priority == "" {
		a.Priority = domain.ActionNormal
	}
	created, err := s.store.CreateActionItem(r.Context(), a)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "creating action item failed")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// actionCommand mirrors the client's PATCH /action-items body: either a
// toggle command or a direct field edit.
type actionCommand struct {
	Action   string               `json:"action,omitempty"`
	ID       string               `json:"id"`
	Title    *string              `json:"title,omitempty"`
	Status   *domain.ActionStatus `json:"status,omitempty"`
	Deadline *time.Time           `json:"deadline,omitempty"`
}

func (s *Server) handleActionCommand(w http.ResponseWriter, r *http.Request) {
	var cmd actionCommand
	if !decodeBody(w, r, &cmd) {
		return
	}

	var updated *domain.ActionItem
	var err error
	if cmd.Action == "toggle" {
		updated, err = s.store.ToggleActionItem(r.Context(), cmd.ID)
	} else {
		updated, err = s.store.PatchActionItem(r.Context(), cmd.ID, domain.ActionPatch{
			Title:    cmd.Title,
			Status:   cmd.Status,
			Deadline: cmd.Deadline,
		})
	}
	if errors.Is(err, ErrNotFound) {
		writeError(w, http.StatusNotFound, "action item not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "updating action item failed")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleCreateSync(w http.ResponseWriter, r *http.Request) {
	var rec domain.MeetingRecord
	if !decodeBody(w, r, &rec) {
		return
	}
	created, err := s.store.CreateSync(r.Context(), rec)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "recording sync failed")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}
