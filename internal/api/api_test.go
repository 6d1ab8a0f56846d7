// Shopscope - Behavioral Analytics for E-commerce Event Logs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopscope

package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomtom215/shopscope/internal/analytics"
	"github.com/tomtom215/shopscope/internal/cache"
	"github.com/tomtom215/shopscope/internal/config"
	"github.com/tomtom215/shopscope/internal/events"
	"github.com/tomtom215/shopscope/internal/query"
	"github.com/tomtom215/shopscope/internal/refresh"
	"github.com/tomtom215/shopscope/internal/segment"
)

type fixedSegments struct{ a *segment.Assignment }

func (f fixedSegments) Current() *segment.Assignment { return f.a }

func (f fixedSegments) Counts() []segment.Count {
	out := make([]segment.Count, 0, len(segment.Names))
	for _, n := range segment.Names {
		out = append(out, segment.Count{Segment: string(n), UserCount: f.a.Size(n)})
	}
	return out
}

type fakeReclassifier struct {
	state *segment.State
	err   error
	calls int
}

func (f *fakeReclassifier) Trigger(context.Context) (*segment.State, error) {
	f.calls++
	return f.state, f.err
}

type brokenSource struct{}

func (brokenSource) Scan(context.Context, events.Filter, func(events.Event) error) error {
	return errors.New("disk on fire")
}

func (brokenSource) Fingerprint(context.Context) (string, error) { return "", nil }

// fixture: visitor 1 converts on item 5 in June, visitor 2 views item 6 in July.
func fixture() []events.Event {
	t0 := time.Date(2015, 6, 1, 10, 0, 0, 0, time.UTC)
	return []events.Event{
		{VisitorID: 1, Timestamp: t0, Type: events.View, ItemID: 5, CategoryID: 1},
		{VisitorID: 1, Timestamp: t0.Add(time.Hour), Type: events.AddToCart, ItemID: 5, CategoryID: 1},
		{VisitorID: 1, Timestamp: t0.Add(2 * time.Hour), Type: events.Transaction, ItemID: 5, CategoryID: 1},
		{VisitorID: 2, Timestamp: t0.AddDate(0, 1, 0), Type: events.View, ItemID: 6, CategoryID: 2},
	}
}

func testSegments() fixedSegments {
	return fixedSegments{segment.NewAssignment(map[segment.Name][]int64{
		segment.All:       {1, 2},
		segment.Impulsive: {1},
	})}
}

func newTestServer(t *testing.T, src events.Source, rc Reclassifier, ready ReadinessCheck, security *config.SecurityConfig) *httptest.Server {
	t.Helper()
	segs := testSegments()
	engine := analytics.NewEngine(src, segs)
	results := cache.NewResults(cache.NewMemoryBackend(100, time.Minute), time.Minute)
	service := query.NewService(engine, segs, results)

	if security == nil {
		security = &config.SecurityConfig{RateLimitDisabled: true}
	}
	srv := httptest.NewServer(NewRouter(NewHandler(service, rc, ready), security).Setup())
	t.Cleanup(srv.Close)
	return srv
}

type envelope struct {
	Status   string          `json:"status"`
	Data     json.RawMessage `json:"data"`
	Metadata Metadata        `json:"metadata"`
	Error    *Error          `json:"error"`
}

func do(t *testing.T, srv *httptest.Server, method, path string) (*http.Response, envelope) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), method, srv.URL+path, http.NoBody)
	require.NoError(t, err)
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp, env
}

func get(t *testing.T, srv *httptest.Server, path string) (*http.Response, envelope) {
	t.Helper()
	return do(t, srv, http.MethodGet, path)
}

func TestSegmentsRoute(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, events.NewMemory(fixture()), nil, nil, nil)

	resp, env := get(t, srv, "/api/v1/segments")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "success", env.Status)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var counts []segment.Count
	require.NoError(t, json.Unmarshal(env.Data, &counts))
	assert.Equal(t, []segment.Count{
		{Segment: "All", UserCount: 2},
		{Segment: "Hesitant", UserCount: 0},
		{Segment: "Impulsive", UserCount: 1},
		{Segment: "Collector", UserCount: 0},
	}, counts)
}

func TestFunnelRouteCachesAndEchoesRequestID(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, events.NewMemory(fixture()), nil, nil, nil)

	resp, env := get(t, srv, "/api/v1/funnel?segment=All")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.False(t, env.Metadata.Cached)
	assert.NotEmpty(t, env.Metadata.RequestID)
	assert.Equal(t, resp.Header.Get("X-Request-ID"), env.Metadata.RequestID)

	var stages []analytics.FunnelStage
	require.NoError(t, json.Unmarshal(env.Data, &stages))
	require.Len(t, stages, 3)
	assert.Equal(t, int64(2), stages[0].Count)
	assert.InDelta(t, 50.0, stages[2].Percentage, 0.001)

	_, env = get(t, srv, "/api/v1/funnel?segment=all")
	assert.True(t, env.Metadata.Cached)
}

func TestValidationErrors(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, events.NewMemory(fixture()), nil, nil, nil)

	tests := []struct {
		name  string
		path  string
		field string
	}{
		{name: "limit below range", path: "/api/v1/top-items?limit=2", field: "limit"},
		{name: "limit above range", path: "/api/v1/top-categories?limit=31", field: "limit"},
		{name: "limit not a number", path: "/api/v1/top-items?limit=ten", field: "limit"},
		{name: "unknown metric", path: "/api/v1/top-items?metric=click", field: "metric"},
		{name: "malformed date", path: "/api/v1/funnel?date_from=2015/06/01", field: "date_from"},
		{name: "top_n below range", path: "/api/v1/black-horse-items?top_n=4", field: "top_n"},
		{name: "top_n above range", path: "/api/v1/funnel-stage/view?top_n=21", field: "top_n"},
		{name: "entity id not a number", path: "/api/v1/drilldown/item/abc", field: "entity_id"},
		{name: "negative days", path: "/api/v1/daily-retention?days=-1", field: "days"},
		{name: "bad cohort month", path: "/api/v1/cohort-detail/2015-13", field: "cohort_month"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			resp, env := get(t, srv, tt.path)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, "error", env.Status)
			require.NotNil(t, env.Error)
			assert.Equal(t, ErrCodeValidation, env.Error.Code)
			assert.Equal(t, tt.field, env.Error.Details["field"])
		})
	}
}

func TestInvalidArgumentsFromEngine(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, events.NewMemory(fixture()), nil, nil, nil)

	for _, path := range []string{
		"/api/v1/drilldown/brand/5",
		"/api/v1/funnel-stage/checkout",
		"/api/v1/active-hour/24",
		"/api/v1/active-hour/noon",
	} {
		resp, env := get(t, srv, path)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, path)
		require.NotNil(t, env.Error, path)
		assert.Equal(t, ErrCodeValidation, env.Error.Code, path)
	}
}

func TestDrilldownRoutes(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, events.NewMemory(fixture()), nil, nil, nil)

	resp, env := get(t, srv, "/api/v1/drilldown/item/5")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var profile analytics.Profile
	require.NoError(t, json.Unmarshal(env.Data, &profile))
	assert.Equal(t, "商品 5", profile.EntityLabel)

	resp, env = get(t, srv, "/api/v1/funnel-stage/addtocart?top_n=5")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var stage analytics.FunnelStageDetail
	require.NoError(t, json.Unmarshal(env.Data, &stage))
	assert.Equal(t, int64(1), stage.Count)
	require.NotNil(t, stage.DropoffAnalysis)

	resp, env = get(t, srv, "/api/v1/active-hour/10")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var hour analytics.ActiveHourDetail
	require.NoError(t, json.Unmarshal(env.Data, &hour))
	assert.Equal(t, 10, hour.Hour)

	resp, env = get(t, srv, "/api/v1/cohort-detail/2015-06")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var cohort analytics.CohortDetail
	require.NoError(t, json.Unmarshal(env.Data, &cohort))
	assert.Equal(t, "2015-06", cohort.CohortMonth)
	assert.Equal(t, int64(1), cohort.CohortSize)
}

func TestWindowRoutesRespond(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, events.NewMemory(fixture()), nil, nil, nil)

	for _, path := range []string{
		"/api/v1/top-items",
		"/api/v1/top-categories?metric=view&limit=3",
		"/api/v1/event-counts",
		"/api/v1/active-hours",
		"/api/v1/monthly-sales",
		"/api/v1/daily-active-users?date_from=2015-06-01&date_to=2015-06-30",
		"/api/v1/heatmap",
		"/api/v1/black-horse-items",
		"/api/v1/segment-trend",
		"/api/v1/monthly-retention",
		"/api/v1/daily-retention?days=7",
		"/api/v1/weekday-users?segment=Impulsive",
	} {
		resp, env := get(t, srv, path)
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
		assert.Equal(t, "success", env.Status, path)
	}
}

func TestQueryFailureIsInternalError(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, brokenSource{}, nil, nil, nil)

	resp, env := get(t, srv, "/api/v1/funnel")
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	require.NotNil(t, env.Error)
	assert.Equal(t, ErrCodeInternal, env.Error.Code)
	assert.NotContains(t, env.Error.Message, "disk on fire")
}

func TestReclassify(t *testing.T) {
	t.Parallel()

	t.Run("unavailable", func(t *testing.T) {
		t.Parallel()
		srv := newTestServer(t, events.NewMemory(fixture()), nil, nil, nil)
		resp, env := do(t, srv, http.MethodPost, "/api/v1/admin/reclassify")
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		assert.Equal(t, ErrCodeServiceUnavailable, env.Error.Code)
	})

	t.Run("throttled", func(t *testing.T) {
		t.Parallel()
		rc := &fakeReclassifier{err: refresh.ErrThrottled}
		srv := newTestServer(t, events.NewMemory(fixture()), rc, nil, nil)
		resp, env := do(t, srv, http.MethodPost, "/api/v1/admin/reclassify")
		assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
		assert.Equal(t, ErrCodeTooManyRequests, env.Error.Code)
	})

	t.Run("failure", func(t *testing.T) {
		t.Parallel()
		rc := &fakeReclassifier{err: errors.New("scan failed")}
		srv := newTestServer(t, events.NewMemory(fixture()), rc, nil, nil)
		resp, _ := do(t, srv, http.MethodPost, "/api/v1/admin/reclassify")
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	})

	t.Run("invalidates cache", func(t *testing.T) {
		t.Parallel()
		rc := &fakeReclassifier{state: &segment.State{
			Assignment:   testSegments().a,
			Fingerprint:  segment.Fingerprint{Source: "src", Rules: "rules"},
			ClassifiedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		}}
		srv := newTestServer(t, events.NewMemory(fixture()), rc, nil, nil)

		get(t, srv, "/api/v1/heatmap")
		_, env := get(t, srv, "/api/v1/heatmap")
		require.True(t, env.Metadata.Cached)

		resp, env := do(t, srv, http.MethodPost, "/api/v1/admin/reclassify")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var result ReclassifyResult
		require.NoError(t, json.Unmarshal(env.Data, &result))
		assert.Equal(t, "src", result.Fingerprint.Source)
		assert.Len(t, result.Segments, 4)
		assert.Equal(t, 1, rc.calls)

		_, env = get(t, srv, "/api/v1/heatmap")
		assert.False(t, env.Metadata.Cached)
	})

	t.Run("get not allowed", func(t *testing.T) {
		t.Parallel()
		srv := newTestServer(t, events.NewMemory(fixture()), &fakeReclassifier{}, nil, nil)
		req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, srv.URL+"/api/v1/admin/reclassify", http.NoBody)
		require.NoError(t, err)
		resp, err := srv.Client().Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	})
}

func TestHealthRoutes(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, events.NewMemory(fixture()), nil, nil, nil)
	resp, env := get(t, srv, "/health/live")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var status HealthStatus
	require.NoError(t, json.Unmarshal(env.Data, &status))
	assert.Equal(t, "alive", status.Status)

	resp, _ = get(t, srv, "/health/ready")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	failing := newTestServer(t, events.NewMemory(fixture()), nil, func(context.Context) error {
		return errors.New("no segmentation")
	}, nil)
	resp, env = get(t, failing, "/health/ready")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, ErrCodeServiceUnavailable, env.Error.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, events.NewMemory(fixture()), nil, nil, nil)

	get(t, srv, "/api/v1/funnel")

	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, srv.URL+"/metrics", http.NoBody)
	require.NoError(t, err)
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestNotFound(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, events.NewMemory(fixture()), nil, nil, nil)

	resp, env := get(t, srv, "/api/v1/nope")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, ErrCodeNotFound, env.Error.Code)
}

func TestRateLimitedEnvelope(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, events.NewMemory(fixture()), nil, nil, &config.SecurityConfig{
		RateLimitReqs:   1,
		RateLimitWindow: time.Minute,
	})

	resp, _ := get(t, srv, "/api/v1/segments")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, env := get(t, srv, "/api/v1/segments")
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	require.NotNil(t, env.Error)
	assert.Equal(t, ErrCodeTooManyRequests, env.Error.Code)

	// Probes are outside the limiter.
	resp, _ = get(t, srv, "/health/live")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
