package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mheikkola/metronome/internal/domain"
)

func testConfig(endpoint string) Config {
	cfg := DefaultConfig()
	cfg.Endpoint = endpoint
	cfg.TimeoutMs = 2000
	return cfg
}

func TestClient_FetchSummary(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/summary", r.URL.Path)
		assert.Equal(t, http.MethodGet, r.Method)
		json.NewEncoder(w).Encode(domain.SyncSummary{
			ActiveInitiatives: 4,
			OpenDecisions:     2,
			OnTrackPct:        87.5,
			LastSyncDate:      "2026-06-08",
		})
	}))
	defer srv.Close()

	client := NewHTTPClient(testConfig(srv.URL))
	sum, err := client.FetchSummary(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 4, sum.ActiveInitiatives)
	assert.Equal(t, 87.5, sum.OnTrackPct)
	assert.Equal(t, "2026-06-08", sum.LastSyncDate)
}

func TestClient_ListInitiatives_ArchivedFlag(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/initiatives", r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("archived"))
		json.NewEncoder(w).Encode([]domain.Initiative{{ID: "i1", Title: "one"}})
	}))
	defer srv.Close()

	client := NewHTTPClient(testConfig(srv.URL))
	out, err := client.ListInitiatives(context.Background(), true)

	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "i1", out[0].ID)
}

func TestClient_ListKeyDates_QueryWindow(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/key-dates", r.URL.Path)
		assert.Equal(t, "2026-06-01", r.URL.Query().Get("from"))
		assert.Equal(t, "2026-06-30", r.URL.Query().Get("to"))
		json.NewEncoder(w).Encode([]domain.KeyDate{})
	}))
	defer srv.Close()

	client := NewHTTPClient(testConfig(srv.URL))
	from := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC)
	_, err := client.ListKeyDates(context.Background(), from, to)

	require.NoError(t, err)
}

func TestClient_ToggleActionItem_SendsCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/action-items", r.URL.Path)
		assert.Equal(t, http.MethodPatch, r.Method)

		var cmd actionItemCommand
		require.NoError(t, json.NewDecoder(r.Body).Decode(&cmd))
		assert.Equal(t, "toggle", cmd.Action)
		assert.Equal(t, "a1", cmd.ID)
		assert.Nil(t, cmd.Status)

		json.NewEncoder(w).Encode(domain.ActionItem{ID: "a1", Status: domain.ActionDone})
	}))
	defer srv.Close()

	client := NewHTTPClient(testConfig(srv.URL))
	out, err := client.ToggleActionItem(context.Background(), "a1")

	require.NoError(t, err)
	assert.Equal(t, domain.ActionDone, out.Status)
}

func TestClient_DecideDecision_SendsText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var cmd decisionCommand
		require.NoError(t, json.NewDecoder(r.Body).Decode(&cmd))
		assert.Equal(t, "decide", cmd.Action)
		assert.Equal(t, "d1", cmd.ID)
		assert.Equal(t, "go with vendor A", cmd.DecisionText)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewHTTPClient(testConfig(srv.URL))
	require.NoError(t, client.DecideDecision(context.Background(), "d1", "go with vendor A"))
}

func TestClient_MutationFailureDiscardsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"message":"stack trace: internal detail"}`))
	}))
	defer srv.Close()

	client := NewHTTPClient(testConfig(srv.URL))
	err := client.DeferDecision(context.Background(), "d1")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrServerRejected)
	assert.NotContains(t, err.Error(), "internal detail")
}

func TestClient_CreateInitiative_PreservesServerMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]string{"message": "title already in use"})
	}))
	defer srv.Close()

	client := NewHTTPClient(testConfig(srv.URL))
	_, err := client.CreateInitiative(context.Background(), domain.InitiativeDraft{Title: "dup"})

	var cerr *CreateError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "title already in use", cerr.Message)
}

func TestClient_CreateInitiative_FallsBackWithoutEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream gone"))
	}))
	defer srv.Close()

	client := NewHTTPClient(testConfig(srv.URL))
	_, err := client.CreateInitiative(context.Background(), domain.InitiativeDraft{Title: "x"})

	assert.ErrorIs(t, err, ErrServerRejected)
}

func TestClient_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.TimeoutMs = 50

	client := NewHTTPClient(cfg)
	_, err := client.FetchSummary(context.Background())

	assert.ErrorIs(t, err, ErrTimeout)
}

func TestClient_Unavailable(t *testing.T) {
	client := NewHTTPClient(testConfig("http://127.0.0.1:1")) // nothing listening
	_, err := client.FetchSummary(context.Background())

	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestClient_BearerToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(domain.SyncSummary{})
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.Token = "tok-123"

	client := NewHTTPClient(cfg)
	_, err := client.FetchSummary(context.Background())
	require.NoError(t, err)
}
