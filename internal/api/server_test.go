package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/k2tech/ailab/internal/hypothesis"
	"github.com/k2tech/ailab/internal/onboarding"
	"github.com/k2tech/ailab/internal/storage/sqlite"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	store, err := sqlite.New(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	srv := NewServer(hypothesis.NewService(store), onboarding.NewService(store), "127.0.0.1:0", "test")
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func doJSON(t *testing.T, ts *httptest.Server, method, path string, body any) (*http.Response, []byte) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, ts.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	var out bytes.Buffer
	_, err = out.ReadFrom(resp.Body)
	require.NoError(t, err)
	return resp, out.Bytes()
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	resp, body := doJSON(t, ts, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var health map[string]any
	require.NoError(t, json.Unmarshal(body, &health))
	assert.Equal(t, "healthy", health["status"])
}

func TestHypothesisCRUD(t *testing.T) {
	ts := newTestServer(t)

	resp, body := doJSON(t, ts, http.MethodPost, "/hypotheses", map[string]any{
		"title":  "Churn model",
		"owners": []map[string]string{{"name": "Dana"}},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var created struct {
		Record struct {
			HypID string `json:"hypId"`
			Stage string `json:"stage"`
		} `json:"record"`
	}
	require.NoError(t, json.Unmarshal(body, &created))
	assert.Equal(t, "HYP-001", created.Record.HypID)
	assert.Equal(t, "IDEATION", created.Record.Stage)

	resp, body = doJSON(t, ts, http.MethodGet, "/hypotheses/"+created.Record.HypID, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = doJSON(t, ts, http.MethodGet, "/hypotheses", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var list []map[string]any
	require.NoError(t, json.Unmarshal(body, &list))
	assert.Len(t, list, 1)

	resp, _ = doJSON(t, ts, http.MethodDelete, "/hypotheses/"+created.Record.HypID+"?actor=Dana", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = doJSON(t, ts, http.MethodGet, "/hypotheses/"+created.Record.HypID, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHypothesisNotFound(t *testing.T) {
	ts := newTestServer(t)
	resp, body := doJSON(t, ts, http.MethodGet, "/hypotheses/HYP-999", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	var errBody map[string]string
	require.NoError(t, json.Unmarshal(body, &errBody))
	assert.Contains(t, errBody["error"], "HYP-999")
}

func TestCreateValidation(t *testing.T) {
	ts := newTestServer(t)
	resp, _ := doJSON(t, ts, http.MethodPost, "/hypotheses", map[string]any{"title": "No owner"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestBlockedTransitionIs400(t *testing.T) {
	ts := newTestServer(t)

	_, body := doJSON(t, ts, http.MethodPost, "/hypotheses", map[string]any{
		"title":  "Gated",
		"owners": []map[string]string{{"name": "Dana"}},
		"gatingChecklist": []map[string]any{
			{"label": "Define KPI", "status": "pending"},
		},
	})
	var created struct {
		Record struct {
			HypID string `json:"hypId"`
		} `json:"record"`
	}
	require.NoError(t, json.Unmarshal(body, &created))

	resp, body := doJSON(t, ts, http.MethodPatch, "/hypotheses/"+created.Record.HypID, map[string]any{
		"stage": "SCOPING",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var errBody map[string]string
	require.NoError(t, json.Unmarshal(body, &errBody))
	assert.Contains(t, errBody["error"], "Define KPI")
}

func TestDashboardEmptyPortfolio(t *testing.T) {
	ts := newTestServer(t)
	resp, _ := doJSON(t, ts, http.MethodGet, "/hypotheses/dashboard", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDashboardRoute(t *testing.T) {
	ts := newTestServer(t)
	doJSON(t, ts, http.MethodPost, "/hypotheses", map[string]any{
		"title":  "One",
		"owners": []map[string]string{{"name": "Dana"}},
	})
	resp, body := doJSON(t, ts, http.MethodGet, "/hypotheses/dashboard", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var dash struct {
		Stages []struct {
			Key string `json:"key"`
		} `json:"stages"`
	}
	require.NoError(t, json.Unmarshal(body, &dash))
	assert.Len(t, dash.Stages, 7)
}

func TestOnboardingSessionFlow(t *testing.T) {
	ts := newTestServer(t)

	resp, body := doJSON(t, ts, http.MethodPost, "/onboarding/sessions", map[string]any{
		"userId":       "user-1",
		"consentGiven": true,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var session struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(body, &session))

	base := "/onboarding/sessions/" + session.ID
	resp, body = doJSON(t, ts, http.MethodPost, base+"/transcript", map[string]any{
		"text": "Our goal is cut costs by 10%.",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var updated struct {
		ExtractedSummary map[string][]string `json:"extractedSummary"`
	}
	require.NoError(t, json.Unmarshal(body, &updated))
	assert.Equal(t, []string{"cut costs by 10%"}, updated.ExtractedSummary["goals"])

	resp, _ = doJSON(t, ts, http.MethodPost, base+"/checklist", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = doJSON(t, ts, http.MethodPost, base+"/voice", map[string]any{
		"command": "set horizon 9",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var voice struct {
		Applied map[string]any `json:"applied"`
	}
	require.NoError(t, json.Unmarshal(body, &voice))
	assert.Equal(t, float64(9), voice.Applied["time_horizon_months"])

	req, err := http.NewRequest(http.MethodGet, ts.URL+base+"/report", nil)
	require.NoError(t, err)
	reportResp, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer reportResp.Body.Close()
	assert.Equal(t, http.StatusOK, reportResp.StatusCode)
	assert.Contains(t, reportResp.Header.Get("Content-Type"), "text/markdown")

	resp, _ = doJSON(t, ts, http.MethodDelete, base, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp, _ = doJSON(t, ts, http.MethodGet, base, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestInvalidBodyIs400(t *testing.T) {
	ts := newTestServer(t)
	req, err := http.NewRequest(http.MethodPost, ts.URL+"/hypotheses", bytes.NewBufferString("{not json"))
	require.NoError(t, err)
	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
