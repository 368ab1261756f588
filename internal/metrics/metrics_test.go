package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_Counters(t *testing.T) {
	m := NewManager()

	m.SourceOutcome("key_metrics", "found")
	m.SourceOutcome("key_metrics", "found")
	m.SourceOutcome("statements", "unavailable")
	m.Resolution("ratios", "available")
	m.Verdict("PASS")
	m.Verdict("FAIL")
	m.Verdict("FAIL")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.sourceOutcomes.WithLabelValues("key_metrics", "found")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.sourceOutcomes.WithLabelValues("statements", "unavailable")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.resolutions.WithLabelValues("ratios", "available")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.verdicts.WithLabelValues("FAIL")))
}

func TestManager_NilIsNoop(t *testing.T) {
	var m *Manager

	assert.NotPanics(t, func() {
		m.SourceOutcome("x", "found")
		m.Resolution("ratios", "unavailable")
		m.Verdict("PASS")
		m.ScreenDuration(time.Second)
		m.HTTPRequest("GET", "/api/health", 200, time.Millisecond)
	})
	assert.Nil(t, m.Registry())

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestManager_Handler(t *testing.T) {
	m := NewManager(WithNamespace("test"))
	m.HTTPRequest("GET", "/api/health", 200, 5*time.Millisecond)
	m.ScreenDuration(250 * time.Millisecond)

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `test_http_requests_total{method="GET",path="/api/health",status="200"} 1`)
	assert.Contains(t, string(body), "test_screen_duration_seconds_count 1")
}
