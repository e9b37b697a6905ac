package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCacheLookupCounts(t *testing.T) {
	m := New()
	m.CacheLookup("discover", true)
	m.CacheLookup("discover", false)
	m.CacheLookup("discover", false)

	if got := testutil.ToFloat64(m.cacheLookups.WithLabelValues("discover", "hit")); got != 1 {
		t.Fatalf("hits = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.cacheLookups.WithLabelValues("discover", "miss")); got != 2 {
		t.Fatalf("misses = %v, want 2", got)
	}
}

func TestObserveUpstreamOutcome(t *testing.T) {
	m := New()
	m.ObserveUpstream("tmdb", "discover", nil, 10*time.Millisecond)
	m.ObserveUpstream("tmdb", "discover", errors.New("boom"), 10*time.Millisecond)

	if got := testutil.ToFloat64(m.upstreamRequests.WithLabelValues("tmdb", "discover", "ok")); got != 1 {
		t.Fatalf("ok = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.upstreamRequests.WithLabelValues("tmdb", "discover", "error")); got != 1 {
		t.Fatalf("error = %v, want 1", got)
	}
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.CacheLookup("items", true)
	m.ObserveUpstream("availability", "get", nil, time.Second)
	m.ObserveHTTP("/", http.StatusOK)
	if m.Registry() != nil {
		t.Fatal("nil metrics should have nil registry")
	}
}

func TestHandlerExposesCounters(t *testing.T) {
	m := New()
	m.ObserveHTTP("/search", http.StatusOK)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `streamfinder_http_requests_total{code="200",route="/search"} 1`) {
		t.Fatalf("counter missing from exposition:\n%s", rec.Body.String())
	}
}
