package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spacesedan/ideaflow/internal/models"
)

type mockHandler struct {
	requests []models.IntelligenceRequestEvent
	err      error
}

func (m *mockHandler) Handle(_ context.Context, req models.IntelligenceRequestEvent) (models.IntelligenceResultEvent, error) {
	m.requests = append(m.requests, req)
	return models.IntelligenceResultEvent{QuestionID: req.QuestionID, Success: true}, m.err
}

type mockStats struct {
	sentiment models.SentimentStatsResponse
	ideas     models.IdeaStatsResponse
	err       error
}

func (m *mockStats) SentimentStats(context.Context) (models.SentimentStatsResponse, error) {
	return m.sentiment, m.err
}

func (m *mockStats) IdeaStats(context.Context) (models.IdeaStatsResponse, error) {
	return m.ideas, m.err
}

func newTestServer(t *testing.T, handler RequestHandler, stats StatsStore, ready bool) *Server {
	t.Helper()
	flag := &atomic.Bool{}
	flag.Store(ready)
	return NewServer(":0", handler, stats, flag, time.Second)
}

func do(srv *Server, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)
	return rec
}

func TestHandleEvent_Accepted(t *testing.T) {
	handler := &mockHandler{}
	srv := newTestServer(t, handler, &mockStats{}, true)

	rec := do(srv, http.MethodPost, "/", `{"data":{"jobId":"j1","questionId":"q1","answers":["great product"]}}`)

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.JSONEq(t, `{"accepted":true}`, rec.Body.String())
	require.Len(t, handler.requests, 1)
	assert.Equal(t, "q1", handler.requests[0].QuestionID)
	assert.Equal(t, []string{"great product"}, handler.requests[0].Answers)
}

func TestHandleEvent_InvalidPayload(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `hello`},
		{"missing question", `{"jobId":"j1","answers":[]}`},
		{"fields without payload", `{"data":["type","request"]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := &mockHandler{}
			srv := newTestServer(t, handler, &mockStats{}, true)

			rec := do(srv, http.MethodPost, "/", tt.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			var resp map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.True(t, strings.HasPrefix(resp["error"], "invalid payload: "), resp["error"])
			assert.Empty(t, handler.requests)
		})
	}
}

func TestHandleEvent_PublishFailure(t *testing.T) {
	srv := newTestServer(t, &mockHandler{err: errors.New("xadd failed")}, &mockStats{}, true)

	rec := do(srv, http.MethodPost, "/", `{"jobId":"j1","questionId":"q1","answers":[]}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"failed to publish result event"}`, rec.Body.String())
}

func TestHandleLiveness(t *testing.T) {
	srv := newTestServer(t, &mockHandler{}, &mockStats{}, false)

	rec := do(srv, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestHandleReadiness(t *testing.T) {
	srv := newTestServer(t, &mockHandler{}, &mockStats{}, true)
	rec := do(srv, http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ready", rec.Body.String())

	srv.ready.Store(false)
	rec = do(srv, http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "not ready", rec.Body.String())
}

func TestHandleSentimentStats(t *testing.T) {
	stats := &mockStats{sentiment: models.SentimentStatsResponse{
		Stats: []models.SentimentStat{
			{Sentiment: "POSITIVE", Count: 3, Percentage: 75},
			{Sentiment: "NEGATIVE", Count: 1, Percentage: 25},
		},
		TotalAnalyzed: 4,
	}}
	srv := newTestServer(t, &mockHandler{}, stats, true)

	rec := do(srv, http.MethodGet, "/stats/sentiment", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{
		"stats": [
			{"sentiment":"POSITIVE","count":3,"percentage":75},
			{"sentiment":"NEGATIVE","count":1,"percentage":25}
		],
		"total_analyzed": 4
	}`, rec.Body.String())
}

func TestHandleSentimentStats_Empty(t *testing.T) {
	stats := &mockStats{sentiment: models.SentimentStatsResponse{Stats: []models.SentimentStat{}}}
	srv := newTestServer(t, &mockHandler{}, stats, true)

	rec := do(srv, http.MethodGet, "/stats/sentiment", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"stats":[],"total_analyzed":0}`, rec.Body.String())
}

func TestHandleIdeaStats(t *testing.T) {
	stats := &mockStats{ideas: models.IdeaStatsResponse{
		Ideas:      []models.IdeaStat{{Idea: "Theme around shipping", Frequency: 4}},
		TotalIdeas: 1,
	}}
	srv := newTestServer(t, &mockHandler{}, stats, true)

	rec := do(srv, http.MethodGet, "/stats/ideas", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ideas":[{"idea":"Theme around shipping","frequency":4}],"total_ideas":1}`, rec.Body.String())
}

func TestHandleStats_StoreError(t *testing.T) {
	srv := newTestServer(t, &mockHandler{}, &mockStats{err: errors.New("scan failed")}, true)

	rec := do(srv, http.MethodGet, "/stats/sentiment", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"failed to query sentiment stats: scan failed"}`, rec.Body.String())

	rec = do(srv, http.MethodGet, "/stats/ideas", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"failed to query ideas stats: scan failed"}`, rec.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t, &mockHandler{}, &mockStats{}, true)

	rec := do(srv, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
