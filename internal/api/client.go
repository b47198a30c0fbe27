package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/mheikkola/metronome/internal/domain"
)

const dateLayout = "2006-01-02"

// Client is the network surface of the ops backend as consumed by the
// dashboard. Action items are only ever fetched in bulk; grouping by
// initiative happens client-side.
type Client interface {
	FetchSummary(ctx context.Context) (*domain.SyncSummary, error)
	ListInitiatives(ctx context.Context, includeArchived bool) ([]*domain.Initiative, error)
	ListOpenDecisions(ctx context.Context) ([]*domain.Decision, error)
	ListKeyDates(ctx context.Context, from, to time.Time) ([]domain.KeyDate, error)
	ListActionItems(ctx context.Context) ([]domain.ActionItem, error)

	ToggleActionItem(ctx context.Context, id string) (*domain.ActionItem, error)
	UpdateActionItem(ctx context.Context, id string, patch domain.ActionPatch) (*domain.ActionItem, error)
	DecideDecision(ctx context.Context, id, decisionText string) error
	DeferDecision(ctx context.Context, id string) error
	CreateInitiative(ctx context.Context, draft domain.InitiativeDraft) (*domain.Initiative, error)
	UpdateInitiative(ctx context.Context, id string, patch domain.InitiativePatch) (*domain.Initiative, error)
	CreateSync(ctx context.Context, rec domain.MeetingRecord) (*domain.MeetingRecord, error)
}

// httpClient implements Client over the backend's JSON HTTP API.
type httpClient struct {
	cfg  Config
	http *http.Client
}

// NewHTTPClient creates a Client talking to the configured backend.
func NewHTTPClient(cfg Config) Client {
	return &httpClient{
		cfg: cfg,
		http: &http.Client{
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 5 * time.Second,
				}).DialContext,
			},
		},
	}
}

// actionItemCommand is the JSON body for PATCH /action-items.
type actionItemCommand struct {
	Action   string               `json:"action,omitempty"`
	ID       string               `json:"id"`
	Title    *string              `json:"title,omitempty"`
	Status   *domain.ActionStatus `json:"status,omitempty"`
	Deadline *time.Time           `json:"deadline,omitempty"`
}

// decisionCommand is the JSON body for PATCH /decisions.
type decisionCommand struct {
	Action       string `json:"action"`
	ID           string `json:"id"`
	DecisionText string `json:"decision_text,omitempty"`
}

func (c *httpClient) FetchSummary(ctx context.Context) (*domain.SyncSummary, error) {
	var out domain.SyncSummary
	if err := c.do(ctx, http.MethodGet, "/summary", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *httpClient) ListInitiatives(ctx context.Context, includeArchived bool) ([]*domain.Initiative, error) {
	path := "/initiatives?archived=" + strconv.FormatBool(includeArchived)
	var out []*domain.Initiative
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *httpClient) ListOpenDecisions(ctx context.Context) ([]*domain.Decision, error) {
	var out []*domain.Decision
	if err := c.do(ctx, http.MethodGet, "/decisions?status=open", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *httpClient) ListKeyDates(ctx context.Context, from, to time.Time) ([]domain.KeyDate, error) {
	q := url.Values{}
	q.Set("from", from.Format(dateLayout))
	q.Set("to", to.Format(dateLayout))
	var out []domain.KeyDate
	if err := c.do(ctx, http.MethodGet, "/key-dates?"+q.Encode(), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *httpClient) ListActionItems(ctx context.Context) ([]domain.ActionItem, error) {
	var out []domain.ActionItem
	if err := c.do(ctx, http.MethodGet, "/action-items", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *httpClient) ToggleActionItem(ctx context.Context, id string) (*domain.ActionItem, error) {
	body := actionItemCommand{Action: "toggle", ID: id}
	var out domain.ActionItem
	if err := c.do(ctx, http.MethodPatch, "/action-items", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *httpClient) UpdateActionItem(ctx context.Context, id string, patch domain.ActionPatch) (*domain.ActionItem, error) {
	body := actionItemCommand{
		ID:       id,
		Title:    patch.Title,
		Status:   patch.Status,
		Deadline: patch.Deadline,
	}
	var out domain.ActionItem
	if err := c.do(ctx, http.MethodPatch, "/action-items", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *httpClient) DecideDecision(ctx context.Context, id, decisionText string) error {
	body := decisionCommand{Action: "decide", ID: id, DecisionText: decisionText}
	return c.do(ctx, http.MethodPatch, "/decisions", body, nil)
}

func (c *httpClient) DeferDecision(ctx context.Context, id string) error {
	body := decisionCommand{Action: "defer", ID: id}
	return c.do(ctx, http.MethodPatch, "/decisions", body, nil)
}

func (c *httpClient) CreateInitiative(ctx context.Context, draft domain.InitiativeDraft) (*domain.Initiative, error) {
	var out domain.Initiative
	if err := c.doCreate(ctx, "/initiatives", draft, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *httpClient) UpdateInitiative(ctx context.Context, id string, patch domain.InitiativePatch) (*domain.Initiative, error) {
	var out domain.Initiative
	if err := c.do(ctx, http.MethodPatch, "/initiatives/"+url.PathEscape(id), patch, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *httpClient) CreateSync(ctx context.Context, rec domain.MeetingRecord) (*domain.MeetingRecord, error) {
	var out domain.MeetingRecord
	if err := c.do(ctx, http.MethodPost, "/syncs", rec, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// do issues one request with the configured timeout and decodes the response
// into out when out is non-nil. Failure bodies are discarded: the caller only
// learns the error class, never the backend's text.
func (c *httpClient) do(ctx context.Context, method, path string, body, out any) error {
	respBody, status, err := c.roundTrip(ctx, method, path, body)
	if err != nil {
		return err
	}
	if status < 200 || status > 299 {
		return fmt.Errorf("%w: status %d", ErrServerRejected, status)
	}
	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// errorEnvelope is the backend's failure body shape.
type errorEnvelope struct {
	Message string `json:"message"`
}

// doCreate is like do but preserves a server-supplied message on failure,
// since creation errors carry validation feedback meant for the user.
func (c *httpClient) doCreate(ctx context.Context, path string, body, out any) error {
	respBody, status, err := c.roundTrip(ctx, http.MethodPost, path, body)
	if err != nil {
		return err
	}
	if status < 200 || status > 299 {
		var env errorEnvelope
		if json.Unmarshal(respBody, &env) == nil && env.Message != "" {
			return &CreateError{Message: env.Message}
		}
		return fmt.Errorf("%w: status %d", ErrServerRejected, status)
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func (c *httpClient) roundTrip(ctx context.Context, method, path string, body any) ([]byte, int, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(c.cfg.TimeoutMs)*time.Millisecond)
	defer cancel()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, 0, fmt.Errorf("marshaling request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.Endpoint+path, reader)
	if err != nil {
		return nil, 0, fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, 0, ErrTimeout
		}
		if isConnectionError(err) {
			return nil, 0, ErrUnavailable
		}
		return nil, 0, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("reading response: %w", err)
	}
	return respBody, resp.StatusCode, nil
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	var netErr *net.OpError
	return errors.As(err, &netErr)
}
