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

	"github.com/OliwiaLewandowska/som-monitor/internal/models"
	"github.com/OliwiaLewandowska/som-monitor/internal/storage"
)

type fakeResultStore struct {
	results []models.QueryResult
	err     error
}

func (f *fakeResultStore) SaveResults(ctx context.Context, results []models.QueryResult) error {
	return nil
}

func (f *fakeResultStore) LoadLatest(ctx context.Context) ([]models.QueryResult, error) {
	return f.results, f.err
}

func (f *fakeResultStore) Close(ctx context.Context) error { return nil }

type fakeHistoryStore struct {
	points []models.TimeSeriesPoint
	err    error
}

func (f *fakeHistoryStore) Append(ctx context.Context, rows []storage.HistoryRow) error { return nil }

func (f *fakeHistoryStore) RateSeries(ctx context.Context, brand string, filter storage.SeriesFilter) ([]models.TimeSeriesPoint, error) {
	return f.points, f.err
}

func (f *fakeHistoryStore) Close(ctx context.Context) error { return nil }

func intPtr(i int) *int { return &i }

func surveyResults() []models.QueryResult {
	ts := time.Date(2026, 8, 1, 6, 0, 0, 0, time.UTC)
	mention := func(mentioned bool, pos int) map[string]models.BrandMention {
		m := map[string]models.BrandMention{
			"OpenAI":    {Brand: "OpenAI", Mentioned: mentioned},
			"Anthropic": {Brand: "Anthropic", Mentioned: true, Position: intPtr(0)},
		}
		if mentioned {
			v := m["OpenAI"]
			v.Position = intPtr(pos)
			m["OpenAI"] = v
		}
		return m
	}
	return []models.QueryResult{
		{ID: "1", Timestamp: ts, Category: "general", Model: "m1", Mentions: mention(true, 1), MentionOrder: []string{"Anthropic", "OpenAI"}},
		{ID: "2", Timestamp: ts, Category: "general", Model: "m1", Mentions: mention(false, 0), MentionOrder: []string{"Anthropic"}},
	}
}

func newTestServer(results *fakeResultStore, history *fakeHistoryStore) *Server {
	return NewServer(results, history, Config{
		Brands:          []string{"OpenAI", "Anthropic"},
		ConfidenceLevel: 0.95,
		Alpha:           0.05,
	})
}

func get(t *testing.T, s *Server, path string) (*httptest.ResponseRecorder, APIResponse) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	var body APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec, body
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(&fakeResultStore{}, &fakeHistoryStore{})

	rec, body := get(t, s, "/api/v1/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, body.Success)
}

func TestReportEndpoint(t *testing.T) {
	s := newTestServer(&fakeResultStore{results: surveyResults()}, &fakeHistoryStore{})

	rec, body := get(t, s, "/api/v1/report")
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, body.Success)

	raw, err := json.Marshal(body.Data)
	require.NoError(t, err)
	var resp ReportResponse
	require.NoError(t, json.Unmarshal(raw, &resp))

	require.Len(t, resp.Report.Metrics, 2)
	assert.Equal(t, "Anthropic", resp.Report.Metrics[0].Brand)
	assert.Contains(t, resp.Intervals, "OpenAI")
}

func TestCompareEndpoint(t *testing.T) {
	s := newTestServer(&fakeResultStore{results: surveyResults()}, &fakeHistoryStore{})

	rec, body := get(t, s, "/api/v1/compare?brand_a=Anthropic&brand_b=OpenAI")
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, body.Success)

	rec, body = get(t, s, "/api/v1/compare?brand_a=Anthropic")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, body.Success)
}

func TestTrendEndpoint(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2026, 8, d, 6, 0, 0, 0, time.UTC) }
	history := &fakeHistoryStore{points: []models.TimeSeriesPoint{
		{Timestamp: day(1), Rate: 0.45},
		{Timestamp: day(2), Rate: 0.50},
		{Timestamp: day(3), Rate: 0.52},
		{Timestamp: day(4), Rate: 0.55},
		{Timestamp: day(5), Rate: 0.58},
	}}
	s := newTestServer(&fakeResultStore{}, history)

	rec, body := get(t, s, "/api/v1/trend?brand=OpenAI")
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, body.Success)

	raw, err := json.Marshal(body.Data)
	require.NoError(t, err)
	var resp TrendResponse
	require.NoError(t, json.Unmarshal(raw, &resp))
	assert.Equal(t, models.TrendIncreasing, resp.Trend.Direction)

	rec, body = get(t, s, "/api/v1/trend")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, body.Success)
}

func TestTrendEndpoint_NoHistory(t *testing.T) {
	s := newTestServer(&fakeResultStore{}, &fakeHistoryStore{err: storage.ErrNoHistory})

	rec, body := get(t, s, "/api/v1/trend?brand=OpenAI")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.False(t, body.Success)
}
